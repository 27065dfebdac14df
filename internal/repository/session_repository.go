package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/rootwork-enrollment-api/internal/models"
)

const sessionColumns = `id, session_date, grade_level, program_type, start_time, end_time, location, capacity, available_spots`

// SessionRepository persists bookable sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// List returns sessions matching the filter ordered by day, program, slot and
// grade band.
func (r *SessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
	var conditions []string
	var args []interface{}

	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("session_date >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("session_date <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}
	if filter.GradeLevel != "" {
		conditions = append(conditions, fmt.Sprintf("grade_level = $%d", len(args)+1))
		args = append(args, filter.GradeLevel)
	}
	if filter.ProgramType != "" {
		conditions = append(conditions, fmt.Sprintf("program_type = $%d", len(args)+1))
		args = append(args, filter.ProgramType)
	}
	if filter.OnlyAvailable {
		conditions = append(conditions, "available_spots > 0")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := `SELECT ` + sessionColumns + ` FROM sessions` + clause +
		` ORDER BY session_date ASC, program_type DESC, to_timestamp(start_time, 'HH12:MI AM') ASC, grade_level ASC`

	sessions := make([]models.Session, 0)
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// FindByID returns a session by identifier.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	var session models.Session
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// InsertMissing stores sessions whose id is not yet known and returns how many
// rows were inserted. Existing rows keep their booked spots.
func (r *SessionRepository) InsertMissing(ctx context.Context, exec sqlx.ExtContext, sessions []models.Session) (int, error) {
	if len(sessions) == 0 {
		return 0, nil
	}
	target := r.exec(exec)

	const query = `INSERT INTO sessions (` + sessionColumns + `)
VALUES (:id, :session_date, :grade_level, :program_type, :start_time, :end_time, :location, :capacity, :available_spots)
ON CONFLICT (id) DO NOTHING`

	inserted := 0
	for i := range sessions {
		result, err := sqlx.NamedExecContext(ctx, target, query, &sessions[i])
		if err != nil {
			return inserted, fmt.Errorf("insert session %s: %w", sessions[i].ID, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("insert session rows affected: %w", err)
		}
		inserted += int(affected)
	}
	return inserted, nil
}

// ReserveSpot takes one spot from the session. It reports false when the
// session is full or unknown.
func (r *SessionRepository) ReserveSpot(ctx context.Context, exec sqlx.ExtContext, id string) (bool, error) {
	const query = `UPDATE sessions SET available_spots = available_spots - 1 WHERE id = $1 AND available_spots > 0`
	result, err := r.exec(exec).ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("reserve session spot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reserve session spot rows affected: %w", err)
	}
	return affected == 1, nil
}

// ReleaseSpot returns one spot to the session without exceeding its capacity.
func (r *SessionRepository) ReleaseSpot(ctx context.Context, exec sqlx.ExtContext, id string) error {
	const query = `UPDATE sessions SET available_spots = available_spots + 1 WHERE id = $1 AND available_spots < capacity`
	if _, err := r.exec(exec).ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("release session spot: %w", err)
	}
	return nil
}
