package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentType is how the registrant chose to pay.
type PaymentType string

const (
	PaymentTypeFull        PaymentType = "full"
	PaymentTypeDeposit     PaymentType = "deposit"
	PaymentTypeScholarship PaymentType = "scholarship"
)

// ParsePaymentType normalises a wire value. "gps" is accepted as an alias of
// the scholarship type.
func ParsePaymentType(raw string) (PaymentType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(PaymentTypeFull):
		return PaymentTypeFull, true
	case string(PaymentTypeDeposit):
		return PaymentTypeDeposit, true
	case string(PaymentTypeScholarship), "gps", "scholarship-covered":
		return PaymentTypeScholarship, true
	default:
		return "", false
	}
}

// PaymentInputs drive the payment calculator.
type PaymentInputs struct {
	ScholarshipApplied bool        `json:"scholarship_applied"`
	IncludeCurriculum  bool        `json:"include_curriculum"`
	PaymentType        PaymentType `json:"payment_type"`
}

// PaymentBreakdown is the deterministic cost breakdown in whole currency units.
type PaymentBreakdown struct {
	PaymentType    PaymentType     `json:"payment_type"`
	SessionCost    decimal.Decimal `json:"session_cost"`
	CurriculumCost decimal.Decimal `json:"curriculum_cost"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DepositAmount  decimal.Decimal `json:"deposit_amount"`
	BalanceDue     decimal.Decimal `json:"balance_due"`
	TotalDueNow    decimal.Decimal `json:"total_due_now"`
}

var hundred = decimal.NewFromInt(100)

// ToCents converts a currency amount to integer cents, rounding half away
// from zero.
func ToCents(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FromCents converts integer cents to a currency amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
