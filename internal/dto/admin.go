package dto

// EnrollmentQuery captures GET /admin/enrollments query parameters.
type EnrollmentQuery struct {
	SessionID     string `form:"sessionId"`
	Status        string `form:"status" validate:"omitempty,oneof=PENDING CONFIRMED CANCELLED"`
	PaymentStatus string `form:"paymentStatus" validate:"omitempty,oneof=UNPAID DEPOSIT_PAID PAID_IN_FULL SCHOLARSHIP FAILED"`
	From          string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To            string `form:"to" validate:"omitempty,datetime=2006-01-02"`
	Page          int    `form:"page" validate:"omitempty,min=1"`
	PageSize      int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
	SortBy        string `form:"sortBy" validate:"omitempty,oneof=created_at session_date student_name"`
	SortOrder     string `form:"sortOrder" validate:"omitempty,oneof=asc desc ASC DESC"`
	Format        string `form:"format" validate:"omitempty,oneof=csv pdf"`
}

// ExportFile is a rendered roster export.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
