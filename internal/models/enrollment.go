package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusPending   EnrollmentStatus = "PENDING"
	EnrollmentStatusConfirmed EnrollmentStatus = "CONFIRMED"
	EnrollmentStatusCancelled EnrollmentStatus = "CANCELLED"
)

// PaymentStatus tracks money collected for an enrollment.
type PaymentStatus string

const (
	PaymentStatusUnpaid      PaymentStatus = "UNPAID"
	PaymentStatusDepositPaid PaymentStatus = "DEPOSIT_PAID"
	PaymentStatusPaidInFull  PaymentStatus = "PAID_IN_FULL"
	PaymentStatusScholarship PaymentStatus = "SCHOLARSHIP"
	PaymentStatusFailed      PaymentStatus = "FAILED"
)

// Enrollment captures a student's booking of a session. Amounts are stored in
// cents.
type Enrollment struct {
	ID                 string           `db:"id" json:"id"`
	StudentID          string           `db:"student_id" json:"student_id"`
	SessionID          string           `db:"session_id" json:"session_id"`
	PaymentIntentID    *string          `db:"payment_intent_id" json:"payment_intent_id,omitempty"`
	PaymentType        PaymentType      `db:"payment_type" json:"payment_type"`
	AmountDueCents     int64            `db:"amount_due_cents" json:"amount_due_cents"`
	AmountPaidCents    int64            `db:"amount_paid_cents" json:"amount_paid_cents"`
	BalanceDueCents    int64            `db:"balance_due_cents" json:"balance_due_cents"`
	IncludeCurriculum  bool             `db:"include_curriculum" json:"include_curriculum"`
	ScholarshipApplied bool             `db:"scholarship_applied" json:"scholarship_applied"`
	PaymentStatus      PaymentStatus    `db:"payment_status" json:"payment_status"`
	Status             EnrollmentStatus `db:"status" json:"status"`
	CreatedAt          time.Time        `db:"created_at" json:"created_at"`
	ConfirmedAt        *time.Time       `db:"confirmed_at" json:"confirmed_at,omitempty"`
}

// EnrollmentDetail enriches Enrollment with student and session info.
type EnrollmentDetail struct {
	Enrollment
	StudentFirstName string      `db:"student_first_name" json:"student_first_name"`
	StudentLastName  string      `db:"student_last_name" json:"student_last_name"`
	ParentEmail      string      `db:"parent_email" json:"parent_email"`
	SessionDate      Date        `db:"session_date" json:"session_date"`
	SessionStart     string      `db:"session_start_time" json:"session_start_time"`
	SessionEnd       string      `db:"session_end_time" json:"session_end_time"`
	SessionLocation  string      `db:"session_location" json:"session_location"`
	SessionGrade     *GradeLevel `db:"session_grade_level" json:"session_grade_level,omitempty"`
	SessionProgram   ProgramType `db:"session_program_type" json:"session_program_type"`
}

// StudentName joins the student's names.
func (d EnrollmentDetail) StudentName() string {
	if d.StudentLastName == "" {
		return d.StudentFirstName
	}
	return d.StudentFirstName + " " + d.StudentLastName
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	SessionID     string
	Status        EnrollmentStatus
	PaymentStatus PaymentStatus
	From          *Date
	To            *Date
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
