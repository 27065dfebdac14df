package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// StripeGateway implements Gateway on top of stripe-go.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
	logger        *zap.Logger
}

// NewStripeGateway builds a gateway. An empty secret key yields a gateway
// whose intent creation fails with ErrGatewayDisabled.
func NewStripeGateway(secretKey, webhookSecret string, logger *zap.Logger) *StripeGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	var api *client.API
	if secretKey != "" {
		api = client.New(secretKey, nil)
	}
	return &StripeGateway{api: api, webhookSecret: webhookSecret, logger: logger}
}

// CreatePaymentIntent authorises a card payment of req.AmountCents.
func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	if req.AmountCents <= 0 {
		return nil, fmt.Errorf("payment amount must be positive, got %d cents", req.AmountCents)
	}
	if g.api == nil {
		return nil, ErrGatewayDisabled
	}

	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	if req.ReceiptEmail != "" {
		params.ReceiptEmail = stripe.String(req.ReceiptEmail)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	params.AddMetadata("source", MetadataSource)
	for key, value := range req.Metadata {
		params.AddMetadata(key, value)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("create stripe payment intent: %w", err)
	}
	g.logger.Info("payment intent created", zap.String("payment_intent_id", pi.ID), zap.Int64("amount_cents", pi.Amount))
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountCents:  pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
	}, nil
}

// ParseWebhook verifies the Stripe-Signature header and decodes payment
// intent events. Other event types are returned without intent details.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	if g.webhookSecret == "" {
		return nil, ErrGatewayDisabled
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("verify stripe webhook: %w", err)
	}

	result := &WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if !strings.HasPrefix(result.Type, "payment_intent.") || event.Data == nil {
		return result, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("decode payment intent from event %s: %w", event.ID, err)
	}
	result.PaymentIntentID = pi.ID
	result.AmountCents = pi.Amount
	result.AmountReceivedCents = pi.AmountReceived
	result.Metadata = pi.Metadata
	if pi.LastPaymentError != nil {
		result.FailureMessage = pi.LastPaymentError.Msg
	}
	return result, nil
}
