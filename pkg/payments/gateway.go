// Package payments abstracts the card payment gateway used at checkout.
package payments

import (
	"context"
	"errors"
)

// Webhook event types the enrollment flow reacts to.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// MetadataSource tags every intent created by this service.
const MetadataSource = "rootwork-enrollment"

// ErrGatewayDisabled is returned when no gateway credentials are configured.
var ErrGatewayDisabled = errors.New("payment gateway not configured")

// IntentRequest describes a charge to authorise.
type IntentRequest struct {
	AmountCents    int64
	Currency       string
	Description    string
	ReceiptEmail   string
	Metadata       map[string]string
	IdempotencyKey string
}

// Intent is a gateway payment intent.
type Intent struct {
	ID           string
	ClientSecret string
	AmountCents  int64
	Currency     string
	Status       string
}

// WebhookEvent is a verified gateway notification about a payment intent.
type WebhookEvent struct {
	ID                  string            `json:"id"`
	Type                string            `json:"type"`
	PaymentIntentID     string            `json:"payment_intent_id"`
	AmountCents         int64             `json:"amount_cents"`
	AmountReceivedCents int64             `json:"amount_received_cents"`
	FailureMessage      string            `json:"failure_message,omitempty"`
	Metadata            map[string]string `json:"metadata,omitempty"`
}

// Gateway creates payment intents and verifies webhook deliveries.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
