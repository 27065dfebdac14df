package service

import (
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/rootwork-enrollment-api/internal/dto"
	"github.com/noah-isme/rootwork-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/rootwork-enrollment-api/pkg/errors"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/roster"
)

// EligibilityService evaluates scholarship facts and prices enrollments.
type EligibilityService struct {
	roster    *roster.Roster
	pricing   Pricing
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewEligibilityService constructs EligibilityService. A nil roster falls back
// to the embedded one.
func NewEligibilityService(r *roster.Roster, pricing Pricing, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *EligibilityService {
	if r == nil {
		r = roster.Default()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EligibilityService{roster: r, pricing: pricing, validator: validate, metrics: metrics, logger: logger}
}

// Currency returns the configured charge currency.
func (s *EligibilityService) Currency() string {
	return s.pricing.Currency
}

// Roster exposes the loaded scholarship roster.
func (s *EligibilityService) Roster() *roster.Roster {
	return s.roster
}

// Evaluate runs the eligibility rules on submitted facts.
func (s *EligibilityService) Evaluate(facts models.EligibilityFacts) (models.EligibilityResult, error) {
	if err := s.validator.Struct(facts); err != nil {
		return models.EligibilityResult{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid eligibility facts")
	}
	result := EvaluateEligibility(facts, s.roster)
	s.metrics.RecordEligibility(result.Eligible)
	s.logger.Debug("eligibility evaluated",
		zap.Bool("eligible", result.Eligible),
		zap.Bool("school_qualifies", result.SchoolQualifies),
		zap.Int("reasons", len(result.Reasons)),
	)
	return result, nil
}

// Price re-runs eligibility and computes the breakdown for the chosen payment
// type. The scholarship payment type is refused unless the facts are eligible.
func (s *EligibilityService) Price(facts models.EligibilityFacts, rawPaymentType string, includeCurriculum bool) (models.EligibilityResult, models.PaymentBreakdown, error) {
	paymentType, ok := models.ParsePaymentType(rawPaymentType)
	if !ok {
		return models.EligibilityResult{}, models.PaymentBreakdown{}, appErrors.Clone(appErrors.ErrValidation, "payment_type must be one of full, deposit, scholarship")
	}
	result, err := s.Evaluate(facts)
	if err != nil {
		return models.EligibilityResult{}, models.PaymentBreakdown{}, err
	}
	if paymentType == models.PaymentTypeScholarship && !result.Eligible {
		return result, models.PaymentBreakdown{}, appErrors.Clone(appErrors.ErrPreconditionFailed, "scholarship payment requires an eligible student")
	}

	breakdown, err := CalculatePayment(models.PaymentInputs{
		ScholarshipApplied: paymentType == models.PaymentTypeScholarship,
		IncludeCurriculum:  includeCurriculum,
		PaymentType:        paymentType,
	}, s.pricing)
	if err != nil {
		return result, models.PaymentBreakdown{}, err
	}
	return result, breakdown, nil
}

// Quote prices a prospective enrollment.
func (s *EligibilityService) Quote(req dto.QuoteRequest) (*dto.QuoteResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid quote payload")
	}
	result, breakdown, err := s.Price(req.Facts, req.PaymentType, req.IncludeCurriculum)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordQuote(string(breakdown.PaymentType))
	return &dto.QuoteResponse{Eligibility: result, Breakdown: breakdown, Currency: s.pricing.Currency}, nil
}

// ScholarshipInfo returns the program description and school dropdown.
func (s *EligibilityService) ScholarshipInfo() dto.ScholarshipInfoResponse {
	return dto.ScholarshipInfoResponse{
		Version:           s.roster.Version,
		Program:           s.roster.Program,
		QualifyingSchools: s.roster.QualifyingSchools,
		OtherSchools:      s.roster.OtherSchools,
	}
}
