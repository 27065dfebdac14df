package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/rootwork-enrollment-api/internal/models"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/config"
	appErrors "github.com/noah-isme/rootwork-enrollment-api/pkg/errors"
)

// Pricing holds the price constants in whole currency units.
type Pricing struct {
	SessionPrice    decimal.Decimal
	CurriculumPrice decimal.Decimal
	DepositRate     decimal.Decimal
	Currency        string
}

// DefaultPricing is a 75 session, a 35 curriculum add-on and a 50% deposit.
func DefaultPricing() Pricing {
	return Pricing{
		SessionPrice:    decimal.NewFromInt(75),
		CurriculumPrice: decimal.NewFromInt(35),
		DepositRate:     decimal.RequireFromString("0.5"),
		Currency:        "usd",
	}
}

// PricingFromConfig parses the configured prices.
func PricingFromConfig(cfg config.PricingConfig) (Pricing, error) {
	pricing := DefaultPricing()
	parse := func(name, raw string, target *decimal.Decimal) error {
		if strings.TrimSpace(raw) == "" {
			return nil
		}
		value, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("parse %s %q: %w", name, raw, err)
		}
		if value.IsNegative() {
			return fmt.Errorf("%s must not be negative", name)
		}
		*target = value
		return nil
	}
	if err := parse("session price", cfg.SessionPrice, &pricing.SessionPrice); err != nil {
		return Pricing{}, err
	}
	if err := parse("curriculum price", cfg.CurriculumPrice, &pricing.CurriculumPrice); err != nil {
		return Pricing{}, err
	}
	if err := parse("deposit rate", cfg.DepositRate, &pricing.DepositRate); err != nil {
		return Pricing{}, err
	}
	if !pricing.DepositRate.IsPositive() || pricing.DepositRate.GreaterThan(decimal.NewFromInt(1)) {
		return Pricing{}, fmt.Errorf("deposit rate must be in (0, 1], got %s", pricing.DepositRate)
	}
	if cfg.Currency != "" {
		pricing.Currency = cfg.Currency
	}
	return pricing, nil
}

// CalculatePayment computes the cost breakdown. The deposit is rounded up to a
// whole currency unit so the balance never exceeds the amount collected now.
func CalculatePayment(in models.PaymentInputs, pricing Pricing) (models.PaymentBreakdown, error) {
	sessionCost := pricing.SessionPrice
	if in.ScholarshipApplied {
		sessionCost = decimal.Zero
	}
	curriculumCost := decimal.Zero
	if in.IncludeCurriculum {
		curriculumCost = pricing.CurriculumPrice
	}
	subtotal := sessionCost.Add(curriculumCost)

	breakdown := models.PaymentBreakdown{
		PaymentType:    in.PaymentType,
		SessionCost:    sessionCost,
		CurriculumCost: curriculumCost,
		Subtotal:       subtotal,
		DepositAmount:  decimal.Zero,
		BalanceDue:     decimal.Zero,
	}

	switch in.PaymentType {
	case models.PaymentTypeScholarship:
		breakdown.TotalDueNow = curriculumCost
	case models.PaymentTypeDeposit:
		deposit := subtotal.Mul(pricing.DepositRate).Ceil()
		breakdown.DepositAmount = deposit
		breakdown.BalanceDue = subtotal.Sub(deposit)
		breakdown.TotalDueNow = deposit
	case models.PaymentTypeFull:
		breakdown.TotalDueNow = subtotal
	default:
		return models.PaymentBreakdown{}, appErrors.Clone(appErrors.ErrInvalidArgument, fmt.Sprintf("unknown payment type %q", in.PaymentType))
	}
	return breakdown, nil
}
