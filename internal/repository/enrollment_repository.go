package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/rootwork-enrollment-api/internal/models"
)

const enrollmentColumns = `id, student_id, session_id, payment_intent_id, payment_type, amount_due_cents, amount_paid_cents,
        balance_due_cents, include_curriculum, scholarship_applied, payment_status, status, created_at, confirmed_at`

const enrollmentDetailSelect = `SELECT e.id, e.student_id, e.session_id, e.payment_intent_id, e.payment_type, e.amount_due_cents,
        e.amount_paid_cents, e.balance_due_cents, e.include_curriculum, e.scholarship_applied, e.payment_status, e.status,
        e.created_at, e.confirmed_at,
        st.first_name AS student_first_name, st.last_name AS student_last_name, st.parent_email,
        se.session_date, se.start_time AS session_start_time, se.end_time AS session_end_time,
        se.location AS session_location, se.grade_level AS session_grade_level, se.program_type AS session_program_type`

const enrollmentDetailFrom = `FROM enrollments e
JOIN students st ON st.id = e.student_id
JOIN sessions se ON se.id = e.session_id`

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func enrollmentConditions(filter models.EnrollmentFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.SessionID != "" {
		conditions = append(conditions, fmt.Sprintf("e.session_id = $%d", len(args)+1))
		args = append(args, filter.SessionID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.PaymentStatus != "" {
		conditions = append(conditions, fmt.Sprintf("e.payment_status = $%d", len(args)+1))
		args = append(args, filter.PaymentStatus)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("se.session_date >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("se.session_date <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func enrollmentOrder(filter models.EnrollmentFilter) string {
	allowedSorts := map[string]string{
		"created_at":   "e.created_at",
		"session_date": "se.session_date",
		"student_name": "st.last_name",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "e.created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	return orderBy + " " + order
}

// List returns enrollments filtered by the provided criteria.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	clause, args := enrollmentConditions(filter)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("%s %s%s ORDER BY %s LIMIT %d OFFSET %d", enrollmentDetailSelect, enrollmentDetailFrom, clause, enrollmentOrder(filter), size, offset)

	enrollments := make([]models.EnrollmentDetail, 0)
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s%s", enrollmentDetailFrom, clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return enrollments, total, nil
}

// ListAll returns every enrollment matching the filter without paging.
func (r *EnrollmentRepository) ListAll(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	clause, args := enrollmentConditions(filter)
	query := fmt.Sprintf("%s %s%s ORDER BY %s", enrollmentDetailSelect, enrollmentDetailFrom, clause, enrollmentOrder(filter))

	enrollments := make([]models.EnrollmentDetail, 0)
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, fmt.Errorf("list all enrollments: %w", err)
	}
	return enrollments, nil
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindByPaymentIntentID returns the enrollment paid through a gateway intent.
func (r *EnrollmentRepository) FindByPaymentIntentID(ctx context.Context, intentID string) (*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE payment_intent_id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, intentID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindDetailByID returns an enrollment with student and session info.
func (r *EnrollmentRepository) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	query := enrollmentDetailSelect + "\n" + enrollmentDetailFrom + "\nWHERE e.id = $1"
	var detail models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Create persists a new enrollment record, using exec when it is a transaction.
func (r *EnrollmentRepository) Create(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) error {
	if exec == nil {
		exec = r.db
	}
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = time.Now().UTC()
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusPending
	}
	if enrollment.PaymentStatus == "" {
		enrollment.PaymentStatus = models.PaymentStatusUnpaid
	}
	const query = `INSERT INTO enrollments (` + enrollmentColumns + `)
        VALUES (:id, :student_id, :session_id, :payment_intent_id, :payment_type, :amount_due_cents, :amount_paid_cents,
        :balance_due_cents, :include_curriculum, :scholarship_applied, :payment_status, :status, :created_at, :confirmed_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// MarkPaid confirms a pending enrollment after a successful charge. It
// returns sql.ErrNoRows when the enrollment is no longer pending.
func (r *EnrollmentRepository) MarkPaid(ctx context.Context, id string, paymentStatus models.PaymentStatus, amountPaidCents int64, confirmedAt time.Time) error {
	const query = `UPDATE enrollments SET status = $2, payment_status = $3, amount_paid_cents = $4, confirmed_at = $5 WHERE id = $1 AND status = $6`
	result, err := r.db.ExecContext(ctx, query, id, models.EnrollmentStatusConfirmed, paymentStatus, amountPaidCents, confirmedAt, models.EnrollmentStatusPending)
	if err != nil {
		return fmt.Errorf("mark enrollment paid: %w", err)
	}
	return requireAffected(result, "mark enrollment paid")
}

// UpdatePaymentStatus sets the payment status of a pending enrollment. It
// returns sql.ErrNoRows when the enrollment is no longer pending.
func (r *EnrollmentRepository) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error {
	const query = `UPDATE enrollments SET payment_status = $2 WHERE id = $1 AND status = $3`
	result, err := r.db.ExecContext(ctx, query, id, status, models.EnrollmentStatusPending)
	if err != nil {
		return fmt.Errorf("update enrollment payment status: %w", err)
	}
	return requireAffected(result, "update enrollment payment status")
}

// MarkCancelled cancels an enrollment, using exec when it is a transaction.
// It returns sql.ErrNoRows when the enrollment is already cancelled.
func (r *EnrollmentRepository) MarkCancelled(ctx context.Context, exec sqlx.ExtContext, id string) error {
	if exec == nil {
		exec = r.db
	}
	const query = `UPDATE enrollments SET status = $2 WHERE id = $1 AND status <> $2`
	result, err := exec.ExecContext(ctx, query, id, models.EnrollmentStatusCancelled)
	if err != nil {
		return fmt.Errorf("cancel enrollment: %w", err)
	}
	return requireAffected(result, "cancel enrollment")
}

func requireAffected(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
