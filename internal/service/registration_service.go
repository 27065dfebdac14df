package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/rootwork-enrollment-api/internal/dto"
	"github.com/noah-isme/rootwork-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/rootwork-enrollment-api/pkg/errors"
)

type draftStore interface {
	Get(ctx context.Context, token string) (*models.RegistrationDraft, error)
	Save(ctx context.Context, draft *models.RegistrationDraft, ttl time.Duration) error
	Delete(ctx context.Context, token string) error
}

type sessionFinder interface {
	Session(ctx context.Context, id string) (*models.Session, error)
}

// RegistrationService drives the registration wizard. Sections must be filled
// in order; an already completed section may be edited without losing later
// ones.
type RegistrationService struct {
	drafts    draftStore
	sessions  sessionFinder
	ttl       time.Duration
	now       func() time.Time
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRegistrationService constructs RegistrationService.
func NewRegistrationService(drafts draftStore, sessions sessionFinder, ttl time.Duration, validate *validator.Validate, logger *zap.Logger) *RegistrationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RegistrationService{drafts: drafts, sessions: sessions, ttl: ttl, now: time.Now, validator: validate, logger: logger}
}

// Start opens a draft for a session that still has open spots.
func (s *RegistrationService) Start(ctx context.Context, req dto.StartRegistrationRequest) (*models.RegistrationDraft, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	session, err := s.sessions.Session(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if session.AvailableSpots <= 0 {
		return nil, appErrors.ErrSessionFull
	}

	now := s.now().UTC()
	draft := &models.RegistrationDraft{
		Token:     uuid.NewString(),
		SessionID: session.ID,
		Step:      models.StepBasicInfo,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.drafts.Save(ctx, draft, s.ttl); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store registration")
	}
	s.logger.Info("registration started", zap.String("token", draft.Token), zap.String("session_id", session.ID))
	return draft, nil
}

// Get returns a live draft.
func (s *RegistrationService) Get(ctx context.Context, token string) (*models.RegistrationDraft, error) {
	draft, err := s.drafts.Get(ctx, token)
	if err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found or expired")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
	return draft, nil
}

// SaveStep validates and stores one section. Saving the current section
// advances the draft; saving an earlier one only replaces it.
func (s *RegistrationService) SaveStep(ctx context.Context, token string, step models.RegistrationStep, payload []byte) (*models.RegistrationDraft, error) {
	idx := step.Index()
	if idx < 0 || step == models.StepReview {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown registration step %q", step))
	}

	draft, err := s.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if idx > draft.Step.Index() {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("complete %s before %s", draft.Step, step))
	}

	if err := s.applySection(draft, step, payload); err != nil {
		return nil, err
	}
	if step == draft.Step {
		draft.Step = step.Next()
	}
	draft.UpdatedAt = s.now().UTC()

	if err := s.drafts.Save(ctx, draft, s.ttl); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store registration")
	}
	return draft, nil
}

func (s *RegistrationService) applySection(draft *models.RegistrationDraft, step models.RegistrationStep, payload []byte) error {
	var section interface{}
	switch step {
	case models.StepBasicInfo:
		section = &models.BasicInfo{}
	case models.StepSchoolInfo:
		section = &models.SchoolInfo{}
	case models.StepGuardianInfo:
		section = &models.GuardianInfo{}
	case models.StepEmergencyContact:
		section = &models.EmergencyContact{}
	case models.StepMedical:
		section = &models.MedicalInfo{}
	}

	if err := json.Unmarshal(payload, section); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}
	if err := s.validator.Struct(section); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid %s section", step))
	}

	switch v := section.(type) {
	case *models.BasicInfo:
		draft.Basic = v
	case *models.SchoolInfo:
		draft.School = v
	case *models.GuardianInfo:
		draft.Guardian = v
	case *models.EmergencyContact:
		draft.Emergency = v
	case *models.MedicalInfo:
		draft.Medical = v
	}
	return nil
}
