package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rootwork-enrollment-api/internal/dto"
	"github.com/noah-isme/rootwork-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/rootwork-enrollment-api/pkg/errors"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/roster"
)

func eligibleFacts() models.EligibilityFacts {
	return models.EligibilityFacts{
		SchoolName:           "Robert W. Gadsden Elementary School",
		YearsInGeorgia:       3,
		EnrolledTwoSemesters: true,
	}
}

func TestEligibilityServiceEvaluateRecordsDecision(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewEligibilityService(roster.Default(), DefaultPricing(), nil, metrics, nil)

	result, err := svc.Evaluate(eligibleFacts())
	require.NoError(t, err)
	assert.True(t, result.Eligible)
	assert.Contains(t, scrapeMetrics(t, metrics), `eligibility_decisions_total{eligible="true"} 1`)

	_, err = svc.Evaluate(models.EligibilityFacts{YearsInGeorgia: -1})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEligibilityServiceQuote(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewEligibilityService(nil, DefaultPricing(), nil, metrics, nil)

	resp, err := svc.Quote(dto.QuoteRequest{Facts: eligibleFacts(), PaymentType: "gps", IncludeCurriculum: true})
	require.NoError(t, err)
	assert.True(t, resp.Eligibility.Eligible)
	assert.Equal(t, models.PaymentTypeScholarship, resp.Breakdown.PaymentType)
	assert.True(t, resp.Breakdown.SessionCost.IsZero())
	assert.True(t, decimal.NewFromInt(35).Equal(resp.Breakdown.TotalDueNow))
	assert.Equal(t, "usd", resp.Currency)
	assert.Contains(t, scrapeMetrics(t, metrics), `payment_quotes_total{payment_type="scholarship"} 1`)

	resp, err = svc.Quote(dto.QuoteRequest{Facts: models.EligibilityFacts{}, PaymentType: "deposit"})
	require.NoError(t, err)
	assert.False(t, resp.Eligibility.Eligible)
	assert.True(t, decimal.NewFromInt(38).Equal(resp.Breakdown.DepositAmount))
	assert.True(t, decimal.NewFromInt(37).Equal(resp.Breakdown.BalanceDue))
}

func TestEligibilityServiceQuoteRejectsIneligibleScholarship(t *testing.T) {
	svc := NewEligibilityService(nil, DefaultPricing(), nil, nil, nil)

	facts := eligibleFacts()
	facts.ReceivingOtherScholarship = true
	_, err := svc.Quote(dto.QuoteRequest{Facts: facts, PaymentType: "scholarship"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestEligibilityServiceQuoteRejectsUnknownPaymentType(t *testing.T) {
	svc := NewEligibilityService(nil, DefaultPricing(), nil, nil, nil)

	_, err := svc.Quote(dto.QuoteRequest{Facts: eligibleFacts(), PaymentType: "crypto"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Quote(dto.QuoteRequest{Facts: eligibleFacts()})
	require.Error(t, err)
}

func TestEligibilityServiceScholarshipInfo(t *testing.T) {
	svc := NewEligibilityService(nil, DefaultPricing(), nil, nil, nil)

	info := svc.ScholarshipInfo()
	assert.Equal(t, "2025-11", info.Version)
	assert.Equal(t, "mygeorgiapromise.org", info.Program.ApplicationSite)
	assert.NotEmpty(t, info.QualifyingSchools)
}
