package dto

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/rootwork-enrollment-api/internal/models"
)

// QuoteRequest captures POST /payments/quote payload.
type QuoteRequest struct {
	Facts             models.EligibilityFacts `json:"facts"`
	PaymentType       string                  `json:"payment_type" validate:"required"`
	IncludeCurriculum bool                    `json:"include_curriculum"`
}

// QuoteResponse pairs the server-side eligibility decision with the price.
type QuoteResponse struct {
	Eligibility models.EligibilityResult `json:"eligibility"`
	Breakdown   models.PaymentBreakdown  `json:"breakdown"`
	Currency    string                   `json:"currency"`
}

// CheckoutRequest captures POST /checkout payload.
type CheckoutRequest struct {
	RegistrationToken string `json:"registration_token" validate:"required"`
	PaymentType       string `json:"payment_type" validate:"required"`
	IncludeCurriculum bool   `json:"include_curriculum"`
}

// CheckoutResponse is returned once the enrollment is recorded. ClientSecret
// is empty when nothing is due now.
type CheckoutResponse struct {
	EnrollmentID    string                   `json:"enrollment_id"`
	StudentID       string                   `json:"student_id"`
	Status          models.EnrollmentStatus  `json:"status"`
	PaymentStatus   models.PaymentStatus     `json:"payment_status"`
	Breakdown       models.PaymentBreakdown  `json:"breakdown"`
	Eligibility     models.EligibilityResult `json:"eligibility"`
	Currency        string                   `json:"currency"`
	PaymentIntentID string                   `json:"payment_intent_id,omitempty"`
	ClientSecret    string                   `json:"client_secret,omitempty"`
}

// WebhookAck acknowledges a gateway delivery.
type WebhookAck struct {
	Received bool   `json:"received"`
	EventID  string `json:"event_id,omitempty"`
}

// PaymentSummary is the money part of a confirmation.
type PaymentSummary struct {
	PaymentType        models.PaymentType   `json:"payment_type"`
	PaymentStatus      models.PaymentStatus `json:"payment_status"`
	Currency           string               `json:"currency"`
	AmountDue          decimal.Decimal      `json:"amount_due"`
	AmountPaid         decimal.Decimal      `json:"amount_paid"`
	BalanceDue         decimal.Decimal      `json:"balance_due"`
	IncludeCurriculum  bool                 `json:"include_curriculum"`
	ScholarshipApplied bool                 `json:"scholarship_applied"`
}
