package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/rootwork-enrollment-api/internal/dto"
	"github.com/noah-isme/rootwork-enrollment-api/internal/models"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/config"
	appErrors "github.com/noah-isme/rootwork-enrollment-api/pkg/errors"
)

type sessionStore interface {
	List(ctx context.Context, filter models.SessionFilter) ([]models.Session, error)
	FindByID(ctx context.Context, id string) (*models.Session, error)
	InsertMissing(ctx context.Context, exec sqlx.ExtContext, sessions []models.Session) (int, error)
}

// AvailabilityOptions configures AvailabilityService.
type AvailabilityOptions struct {
	Source      string
	Policy      AvailabilityPolicy
	HorizonDays int
	Location    *time.Location
	Now         func() time.Time
}

// AvailabilityService answers session availability queries. In generated
// mode the policy lays out the window anchored on today and stored rows only
// contribute their booked spot counts; in persisted mode the sessions table is
// authoritative.
type AvailabilityService struct {
	store     sessionStore
	source    string
	policy    AvailabilityPolicy
	horizon   int
	location  *time.Location
	now       func() time.Time
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewAvailabilityService constructs AvailabilityService.
func NewAvailabilityService(store sessionStore, opts AvailabilityOptions, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Source != config.AvailabilitySourcePersisted {
		opts.Source = config.AvailabilitySourceGenerated
	}
	if opts.HorizonDays <= 0 {
		opts.HorizonDays = opts.Policy.HorizonDays
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &AvailabilityService{
		store:     store,
		source:    opts.Source,
		policy:    opts.Policy,
		horizon:   opts.HorizonDays,
		location:  opts.Location,
		now:       opts.Now,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
	}
}

// Today returns the current civil date in the program's time zone.
func (s *AvailabilityService) Today() models.Date {
	return models.DateOf(s.now().In(s.location))
}

// ParseQuery validates listing parameters and converts them into a filter.
func (s *AvailabilityService) ParseQuery(query dto.SessionQuery) (models.SessionFilter, error) {
	if err := s.validator.Struct(query); err != nil {
		return models.SessionFilter{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session query")
	}
	filter := models.SessionFilter{
		GradeLevel:    models.GradeLevel(query.GradeLevel),
		ProgramType:   models.ProgramType(query.ProgramType),
		OnlyAvailable: query.Available,
	}
	if query.From != "" {
		from, err := models.ParseDate(query.From)
		if err != nil {
			return models.SessionFilter{}, appErrors.Clone(appErrors.ErrValidation, "invalid from date")
		}
		filter.From = &from
	}
	if query.To != "" {
		to, err := models.ParseDate(query.To)
		if err != nil {
			return models.SessionFilter{}, appErrors.Clone(appErrors.ErrValidation, "invalid to date")
		}
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return models.SessionFilter{}, appErrors.Clone(appErrors.ErrValidation, "to date must not be before from date")
	}
	return filter, nil
}

// Sessions lists sessions matching the filter in day, slot and band order.
func (s *AvailabilityService) Sessions(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
	if s.source == config.AvailabilitySourcePersisted {
		today := s.Today()
		if filter.To != nil && filter.To.Before(today) {
			return []models.Session{}, nil
		}
		if filter.From == nil || filter.From.Before(today) {
			filter.From = &today
		}
		sessions, err := s.store.List(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
		}
		return sessions, nil
	}

	window, err := s.generatedWindow(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]models.Session, 0, len(window))
	for _, session := range window {
		if matchesSessionFilter(session, filter) {
			matched = append(matched, session)
		}
	}
	return matched, nil
}

// AvailableDates lists the dates with open spots among the matching sessions.
func (s *AvailabilityService) AvailableDates(ctx context.Context, filter models.SessionFilter) ([]models.DateAvailability, error) {
	sessions, err := s.Sessions(ctx, filter)
	if err != nil {
		return nil, err
	}
	return AvailableDates(sessions), nil
}

// SpotsForDate sums the open spots on date.
func (s *AvailabilityService) SpotsForDate(ctx context.Context, date models.Date) (int, error) {
	sessions, err := s.Sessions(ctx, models.SessionFilter{From: &date, To: &date})
	if err != nil {
		return 0, err
	}
	return SpotsForDate(sessions, date), nil
}

// Session returns one bookable session by identifier. Sessions dated before
// today are reported as not found.
func (s *AvailabilityService) Session(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Date.Before(s.Today()) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session has already taken place")
	}
	return session, nil
}

func (s *AvailabilityService) lookup(ctx context.Context, id string) (*models.Session, error) {
	if s.source == config.AvailabilitySourceGenerated {
		window, err := s.generatedWindow(ctx)
		if err != nil {
			return nil, err
		}
		for i := range window {
			if window[i].ID == id {
				return &window[i], nil
			}
		}
	}
	if s.store == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	session, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

// Persist stores a generated window so persisted mode and bookings can use it.
// Rows that already exist keep their booked spots.
func (s *AvailabilityService) Persist(ctx context.Context, req dto.GenerateSessionsRequest) (*dto.GenerateSessionsResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generate payload")
	}
	start := s.Today()
	if req.StartDate != "" {
		parsed, err := models.ParseDate(req.StartDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid start date")
		}
		start = parsed
	}
	horizon := req.HorizonDays
	if horizon == 0 {
		horizon = s.horizon
	}

	sessions, err := GenerateSessions(start, horizon, s.policy)
	if err != nil {
		return nil, err
	}
	inserted, err := s.store.InsertMissing(ctx, nil, sessions)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist sessions")
	}
	s.metrics.RecordSessionsPersisted(inserted)
	s.logger.Info("sessions persisted",
		zap.String("from", start.String()),
		zap.Int("horizon_days", horizon),
		zap.Int("generated", len(sessions)),
		zap.Int("inserted", inserted),
	)

	resp := &dto.GenerateSessionsResponse{From: start, To: start, Generated: len(sessions), Inserted: inserted}
	if horizon > 0 {
		resp.To = start.AddDays(horizon - 1)
	}
	return resp, nil
}

// generatedWindow lays out the rolling window and overlays the spot counts of
// sessions that were already booked.
func (s *AvailabilityService) generatedWindow(ctx context.Context) ([]models.Session, error) {
	sessions, err := GenerateSessions(s.Today(), s.horizon, s.policy)
	if err != nil {
		return nil, err
	}
	if s.store == nil || len(sessions) == 0 {
		return sessions, nil
	}

	from, to := sessions[0].Date, sessions[len(sessions)-1].Date
	stored, err := s.store.List(ctx, models.SessionFilter{From: &from, To: &to})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booked sessions")
	}
	spots := make(map[string]int, len(stored))
	for _, session := range stored {
		spots[session.ID] = session.AvailableSpots
	}
	for i := range sessions {
		if remaining, ok := spots[sessions[i].ID]; ok {
			sessions[i].AvailableSpots = remaining
		}
	}
	return sessions, nil
}
