package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/rootwork-enrollment-api/internal/dto"
	"github.com/noah-isme/rootwork-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/rootwork-enrollment-api/pkg/errors"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/payments"
)

// MinimumChargeCents is the smallest amount the gateway accepts.
const MinimumChargeCents = 50

// enrollmentNamespace derives enrollment ids from registration tokens, so a
// retried checkout carries the same id to the gateway.
var enrollmentNamespace = uuid.MustParse("0b7e3f52-8d6a-5c41-a9e2-4f13c8d7b605")

// EnrollmentIDForToken returns the enrollment id a checkout of token creates.
func EnrollmentIDForToken(token string) string {
	return uuid.NewSHA1(enrollmentNamespace, []byte(token)).String()
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type seatStore interface {
	InsertMissing(ctx context.Context, exec sqlx.ExtContext, sessions []models.Session) (int, error)
	ReserveSpot(ctx context.Context, exec sqlx.ExtContext, id string) (bool, error)
}

type studentWriter interface {
	Create(ctx context.Context, exec sqlx.ExtContext, student *models.Student) error
}

type enrollmentWriter interface {
	Create(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) error
}

type enrollmentPricer interface {
	Price(facts models.EligibilityFacts, rawPaymentType string, includeCurriculum bool) (models.EligibilityResult, models.PaymentBreakdown, error)
	Currency() string
}

// CheckoutDeps groups CheckoutService collaborators.
type CheckoutDeps struct {
	Tx          txProvider
	Drafts      draftStore
	Sessions    sessionFinder
	Seats       seatStore
	Students    studentWriter
	Enrollments enrollmentWriter
	Pricer      enrollmentPricer
	Gateway     payments.Gateway
}

// CheckoutService turns a completed registration into an enrollment.
type CheckoutService struct {
	deps      CheckoutDeps
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewCheckoutService constructs CheckoutService.
func NewCheckoutService(deps CheckoutDeps, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *CheckoutService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutService{deps: deps, validator: validate, metrics: metrics, logger: logger, now: time.Now}
}

// Checkout prices the draft, authorises any amount due now and records the
// student and enrollment while taking one seat of the session.
func (s *CheckoutService) Checkout(ctx context.Context, req dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	resp, err := s.checkout(ctx, req)
	paymentType := "unknown"
	if parsed, ok := models.ParsePaymentType(req.PaymentType); ok {
		paymentType = string(parsed)
	}
	switch {
	case err == nil:
		s.metrics.RecordCheckout(paymentType, OutcomeSuccess)
	case appErrors.FromError(err).Status >= 500:
		s.metrics.RecordCheckout(paymentType, OutcomeFailed)
	default:
		s.metrics.RecordCheckout(paymentType, OutcomeRejected)
	}
	return resp, err
}

func (s *CheckoutService) checkout(ctx context.Context, req dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid checkout payload")
	}

	draft, err := s.deps.Drafts.Get(ctx, req.RegistrationToken)
	if err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found or expired")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
	if draft.Step != models.StepReview {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "registration is not complete")
	}

	session, err := s.deps.Sessions.Session(ctx, draft.SessionID)
	if err != nil {
		return nil, err
	}
	if session.AvailableSpots <= 0 {
		return nil, appErrors.ErrSessionFull
	}

	eligibility, breakdown, err := s.deps.Pricer.Price(draft.Facts(), req.PaymentType, req.IncludeCurriculum)
	if err != nil {
		return nil, err
	}

	student := studentFromDraft(draft)
	enrollment := &models.Enrollment{
		ID:                 EnrollmentIDForToken(draft.Token),
		StudentID:          student.ID,
		SessionID:          session.ID,
		PaymentType:        breakdown.PaymentType,
		AmountDueCents:     models.ToCents(breakdown.TotalDueNow),
		BalanceDueCents:    models.ToCents(breakdown.BalanceDue),
		IncludeCurriculum:  req.IncludeCurriculum,
		ScholarshipApplied: breakdown.PaymentType == models.PaymentTypeScholarship,
	}

	var intent *payments.Intent
	if enrollment.AmountDueCents > 0 {
		intent, err = s.authorise(ctx, draft, session, student, enrollment)
		if err != nil {
			return nil, err
		}
		enrollment.PaymentIntentID = &intent.ID
		enrollment.Status = models.EnrollmentStatusPending
		enrollment.PaymentStatus = models.PaymentStatusUnpaid
	} else {
		confirmedAt := s.now().UTC()
		enrollment.Status = models.EnrollmentStatusConfirmed
		enrollment.PaymentStatus = models.PaymentStatusPaidInFull
		if enrollment.ScholarshipApplied {
			enrollment.PaymentStatus = models.PaymentStatusScholarship
		}
		enrollment.ConfirmedAt = &confirmedAt
	}

	if err := s.persist(ctx, session, student, enrollment); err != nil {
		if intent != nil {
			s.logger.Warn("enrollment not recorded after payment intent creation",
				zap.String("payment_intent_id", intent.ID),
				zap.String("session_id", session.ID),
				zap.Error(err),
			)
		}
		return nil, err
	}

	if err := s.deps.Drafts.Delete(ctx, draft.Token); err != nil {
		s.logger.Warn("failed to discard registration draft", zap.String("token", draft.Token), zap.Error(err))
	}
	s.logger.Info("enrollment recorded",
		zap.String("enrollment_id", enrollment.ID),
		zap.String("session_id", session.ID),
		zap.String("payment_type", string(enrollment.PaymentType)),
		zap.Int64("amount_due_cents", enrollment.AmountDueCents),
	)

	resp := &dto.CheckoutResponse{
		EnrollmentID:  enrollment.ID,
		StudentID:     student.ID,
		Status:        enrollment.Status,
		PaymentStatus: enrollment.PaymentStatus,
		Breakdown:     breakdown,
		Eligibility:   eligibility,
		Currency:      s.deps.Pricer.Currency(),
	}
	if intent != nil {
		resp.PaymentIntentID = intent.ID
		resp.ClientSecret = intent.ClientSecret
	}
	return resp, nil
}

func (s *CheckoutService) authorise(ctx context.Context, draft *models.RegistrationDraft, session *models.Session, student *models.Student, enrollment *models.Enrollment) (*payments.Intent, error) {
	if enrollment.AmountDueCents < MinimumChargeCents {
		return nil, appErrors.Clone(appErrors.ErrInvalidArgument, "amount due is below the minimum charge")
	}
	if s.deps.Gateway == nil {
		return nil, appErrors.Wrap(payments.ErrGatewayDisabled, appErrors.ErrPaymentGateway.Code, appErrors.ErrPaymentGateway.Status, "payment gateway unavailable")
	}

	req := payments.IntentRequest{
		AmountCents:  enrollment.AmountDueCents,
		Currency:     s.deps.Pricer.Currency(),
		Description:  "RootWork Framework session on " + session.Date.String(),
		ReceiptEmail: student.ParentEmail,
		Metadata: map[string]string{
			"enrollment_id":      enrollment.ID,
			"session_id":         session.ID,
			"session_date":       session.Date.String(),
			"student_name":       student.FullName(),
			"payment_type":       string(enrollment.PaymentType),
			"include_curriculum": fmt.Sprintf("%t", enrollment.IncludeCurriculum),
		},
	}
	req.IdempotencyKey = intentIdempotencyKey(draft.Token, req)
	intent, err := s.deps.Gateway.CreatePaymentIntent(ctx, req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPaymentGateway.Code, appErrors.ErrPaymentGateway.Status, "failed to create payment intent")
	}
	return intent, nil
}

func (s *CheckoutService) persist(ctx context.Context, session *models.Session, student *models.Student, enrollment *models.Enrollment) (err error) {
	if s.deps.Tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.deps.Tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.deps.Students.Create(ctx, tx, student); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	if _, err = s.deps.Seats.InsertMissing(ctx, tx, []models.Session{*session}); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store session")
	}
	reserved, err := s.deps.Seats.ReserveSpot(ctx, tx, session.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reserve session spot")
	}
	if !reserved {
		err = appErrors.ErrSessionFull
		return err
	}
	if err = s.deps.Enrollments.Create(ctx, tx, enrollment); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}
	if err = tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit enrollment")
	}
	return nil
}

func studentFromDraft(draft *models.RegistrationDraft) *models.Student {
	student := &models.Student{ID: uuid.NewString()}
	if basic := draft.Basic; basic != nil {
		student.FirstName = basic.FirstName
		student.LastName = basic.LastName
		if dob, err := time.Parse(models.DateLayout, basic.DateOfBirth); err == nil {
			student.DateOfBirth = &dob
		}
		student.GradeLevel = optionalString(basic.GradeLevel)
	}
	if school := draft.School; school != nil {
		student.CurrentSchool = optionalString(school.CurrentSchool)
	}
	if guardian := draft.Guardian; guardian != nil {
		student.ParentName = guardian.ParentName
		student.ParentEmail = guardian.ParentEmail
		student.ParentPhone = guardian.ParentPhone
	}
	if emergency := draft.Emergency; emergency != nil {
		student.EmergencyName = emergency.Name
		student.EmergencyPhone = emergency.Phone
		student.EmergencyRelation = emergency.Relation
	}
	if medical := draft.Medical; medical != nil {
		student.Allergies = optionalString(medical.Allergies)
		student.Medications = optionalString(medical.Medications)
		student.SpecialNeeds = optionalString(medical.SpecialNeeds)
	}
	return student
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

// intentIdempotencyKey scopes the gateway key to the token and every request
// parameter. Retrying the same checkout reuses the key; changing the payment
// type, add-on or any registration detail produces a new one.
func intentIdempotencyKey(token string, req payments.IntentRequest) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%s|%s|%s", req.AmountCents, req.Currency, req.Description, req.ReceiptEmail)
	keys := make([]string, 0, len(req.Metadata))
	for k := range req.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(h, "|%s=%s", k, req.Metadata[k])
	}
	return "checkout-" + token + "-" + hex.EncodeToString(h.Sum(nil))[:16]
}
