package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/rootwork-enrollment-api/internal/dto"
	"github.com/noah-isme/rootwork-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/rootwork-enrollment-api/pkg/errors"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/export"
)

type enrollmentRepository interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	ListAll(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error)
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	MarkCancelled(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type seatReleaser interface {
	ReleaseSpot(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
}

var rosterHeaders = []string{
	"Confirmation", "Student", "Parent Email", "Session Date", "Time", "Grade", "Location",
	"Payment Type", "Payment Status", "Status", "Amount Due", "Amount Paid", "Balance Due", "Created At",
}

// EnrollmentService serves the administrative enrollment workflows.
type EnrollmentService struct {
	repo      enrollmentRepository
	seats     seatReleaser
	tx        txProvider
	renderers map[string]datasetRenderer
	currency  string
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, seats seatReleaser, tx txProvider, currency string, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		repo:  repo,
		seats: seats,
		tx:    tx,
		renderers: map[string]datasetRenderer{
			"csv": export.NewCSVExporter(),
			"pdf": export.NewPDFExporter(),
		},
		currency:  currency,
		validator: validate,
		logger:    logger,
	}
}

// ParseQuery validates listing parameters and converts them into a filter.
func (s *EnrollmentService) ParseQuery(query dto.EnrollmentQuery) (models.EnrollmentFilter, error) {
	if err := s.validator.Struct(query); err != nil {
		return models.EnrollmentFilter{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment query")
	}
	filter := models.EnrollmentFilter{
		SessionID:     query.SessionID,
		Status:        models.EnrollmentStatus(query.Status),
		PaymentStatus: models.PaymentStatus(query.PaymentStatus),
		Page:          query.Page,
		PageSize:      query.PageSize,
		SortBy:        query.SortBy,
		SortOrder:     query.SortOrder,
	}
	if query.From != "" {
		from, err := models.ParseDate(query.From)
		if err != nil {
			return models.EnrollmentFilter{}, appErrors.Clone(appErrors.ErrValidation, "invalid from date")
		}
		filter.From = &from
	}
	if query.To != "" {
		to, err := models.ParseDate(query.To)
		if err != nil {
			return models.EnrollmentFilter{}, appErrors.Clone(appErrors.ErrValidation, "invalid to date")
		}
		filter.To = &to
	}
	return filter, nil
}

// List returns enrollments with pagination metadata.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	enrollments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return enrollments, pagination, nil
}

// Export renders every matching enrollment as a roster file.
func (s *EnrollmentService) Export(ctx context.Context, filter models.EnrollmentFilter, format string) (*dto.ExportFile, error) {
	format = strings.ToLower(format)
	if format == "" {
		format = "csv"
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	enrollments, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}

	dataset := export.Dataset{Title: "RootWork Enrollment Roster", Headers: rosterHeaders}
	for _, e := range enrollments {
		session := models.Session{GradeLevel: e.SessionGrade, StartTime: e.SessionStart, EndTime: e.SessionEnd}
		dataset.Append(
			ConfirmationNumber(e.CreatedAt),
			e.StudentName(),
			e.ParentEmail,
			e.SessionDate.String(),
			session.TimeRange(),
			session.GradeLabel(),
			e.SessionLocation,
			string(e.PaymentType),
			string(e.PaymentStatus),
			string(e.Status),
			formatMoney(models.FromCents(e.AmountDueCents), s.currency),
			formatMoney(models.FromCents(e.AmountPaidCents), s.currency),
			formatMoney(models.FromCents(e.BalanceDueCents), s.currency),
			e.CreatedAt.UTC().Format(time.RFC3339),
		)
	}

	content, err := renderer.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
	}
	s.logger.Info("roster exported", zap.String("format", format), zap.Int("rows", len(enrollments)))
	return &dto.ExportFile{
		Filename:    fmt.Sprintf("enrollments-%s.%s", time.Now().UTC().Format("20060102"), format),
		ContentType: renderer.ContentType(),
		Content:     content,
	}, nil
}

// Cancel cancels an enrollment and gives its seat back to the session.
func (s *EnrollmentService) Cancel(ctx context.Context, id string) (result *models.Enrollment, err error) {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if enrollment.Status == models.EnrollmentStatusCancelled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "enrollment already cancelled")
	}
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// The guarded update lets only one concurrent cancel release the seat.
	if err = s.repo.MarkCancelled(ctx, tx, enrollment.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "enrollment already cancelled")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel enrollment")
	}
	if err = s.seats.ReleaseSpot(ctx, tx, enrollment.SessionID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to release session spot")
	}
	if err = tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit cancellation")
	}

	enrollment.Status = models.EnrollmentStatusCancelled
	s.logger.Info("enrollment cancelled", zap.String("enrollment_id", enrollment.ID), zap.String("session_id", enrollment.SessionID))
	return enrollment, nil
}
