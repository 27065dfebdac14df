package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rootwork-enrollment-api/internal/models"
)

func TestStudentRepositoryCreateWithinTransaction(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO students").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	student := &models.Student{FirstName: "Ada", LastName: "Lovelace", ParentEmail: "parent@example.com"}
	require.NoError(t, repo.Create(context.Background(), tx, student))
	require.NoError(t, tx.Commit())

	assert.NotEmpty(t, student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "first_name", "last_name", "date_of_birth", "grade_level", "current_school", "parent_name", "parent_email", "parent_phone",
		"emergency_name", "emergency_phone", "emergency_relation", "allergies", "medications", "special_needs", "created_at"}).
		AddRow("stu-1", "Ada", "Lovelace", nil, "4th", nil, "Parent", "parent@example.com", "5550100", "Grand", "5550101", "Grandparent", nil, nil, nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE id = $1")).WithArgs("stu-1").WillReturnRows(rows)

	student, err := repo.FindByID(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", student.FullName())
	require.NotNil(t, student.GradeLevel)
	assert.Equal(t, "4th", *student.GradeLevel)
	assert.Nil(t, student.Allergies)
	assert.NoError(t, mock.ExpectationsWereMet())
}
