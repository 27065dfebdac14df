package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rootwork-enrollment-api/internal/dto"
	"github.com/noah-isme/rootwork-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/rootwork-enrollment-api/pkg/errors"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/response"
)

type confirmationService interface {
	Confirmation(ctx context.Context, id string) (*dto.ConfirmationResponse, error)
	Receipt(ctx context.Context, id, token string) ([]byte, string, error)
}

type enrollmentAdminService interface {
	ParseQuery(query dto.EnrollmentQuery) (models.EnrollmentFilter, error)
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error)
	Export(ctx context.Context, filter models.EnrollmentFilter, format string) (*dto.ExportFile, error)
	Cancel(ctx context.Context, id string) (*models.Enrollment, error)
}

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	confirmations confirmationService
	admin         enrollmentAdminService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(confirmations confirmationService, admin enrollmentAdminService) *EnrollmentHandler {
	return &EnrollmentHandler{confirmations: confirmations, admin: admin}
}

// Confirmation godoc
// @Summary Enrollment confirmation
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enrollments/{id}/confirmation [get]
func (h *EnrollmentHandler) Confirmation(c *gin.Context) {
	confirmation, err := h.confirmations.Confirmation(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, confirmation, nil)
}

// Receipt godoc
// @Summary Download a PDF receipt
// @Tags Enrollments
// @Produce application/pdf
// @Param id path string true "Enrollment ID"
// @Param token query string true "Signed receipt token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /enrollments/{id}/receipt [get]
func (h *EnrollmentHandler) Receipt(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	content, filename, err := h.confirmations.Receipt(c.Request.Context(), c.Param("id"), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", content)
}

// List godoc
// @Summary List enrollments
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param sessionId query string false "Filter by session"
// @Param status query string false "PENDING, CONFIRMED or CANCELLED"
// @Param paymentStatus query string false "Filter by payment status"
// @Param from query string false "Session date from"
// @Param to query string false "Session date to"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Param sortBy query string false "created_at, session_date or student_name"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /admin/enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	enrollments, pagination, err := h.admin.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, pagination)
}

// Export godoc
// @Summary Export the enrollment roster
// @Tags Admin
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv or pdf"
// @Success 200 {file} binary
// @Router /admin/enrollments/export [get]
func (h *EnrollmentHandler) Export(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	file, err := h.admin.Export(c.Request.Context(), filter, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

// Cancel godoc
// @Summary Cancel an enrollment
// @Description Cancels the enrollment and returns its seat to the session
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/enrollments/{id}/cancel [post]
func (h *EnrollmentHandler) Cancel(c *gin.Context) {
	enrollment, err := h.admin.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

func (h *EnrollmentHandler) bindFilter(c *gin.Context) (models.EnrollmentFilter, bool) {
	var query dto.EnrollmentQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return models.EnrollmentFilter{}, false
	}
	query.Status = strings.ToUpper(query.Status)
	query.PaymentStatus = strings.ToUpper(query.PaymentStatus)
	filter, err := h.admin.ParseQuery(query)
	if err != nil {
		response.Error(c, err)
		return models.EnrollmentFilter{}, false
	}
	return filter, true
}
