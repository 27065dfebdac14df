package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/rootwork-enrollment-api/internal/models"
)

const studentColumns = `id, first_name, last_name, date_of_birth, grade_level, current_school, parent_name, parent_email, parent_phone,
        emergency_name, emergency_phone, emergency_relation, allergies, medications, special_needs, created_at`

// StudentRepository handles persistence of registrants.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID returns a student by identifier.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create inserts a student, using exec when it is a transaction.
func (r *StudentRepository) Create(ctx context.Context, exec sqlx.ExtContext, student *models.Student) error {
	if exec == nil {
		exec = r.db
	}
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO students (` + studentColumns + `)
        VALUES (:id, :first_name, :last_name, :date_of_birth, :grade_level, :current_school, :parent_name, :parent_email, :parent_phone,
        :emergency_name, :emergency_phone, :emergency_relation, :allergies, :medications, :special_needs, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}
