package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rootwork-enrollment-api/internal/dto"
	"github.com/noah-isme/rootwork-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/rootwork-enrollment-api/pkg/errors"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/response"
)

type registrationService interface {
	Start(ctx context.Context, req dto.StartRegistrationRequest) (*models.RegistrationDraft, error)
	Get(ctx context.Context, token string) (*models.RegistrationDraft, error)
	SaveStep(ctx context.Context, token string, step models.RegistrationStep, payload []byte) (*models.RegistrationDraft, error)
}

// RegistrationHandler drives the multi-step registration wizard.
type RegistrationHandler struct {
	service registrationService
}

// NewRegistrationHandler constructs RegistrationHandler.
func NewRegistrationHandler(svc registrationService) *RegistrationHandler {
	return &RegistrationHandler{service: svc}
}

// Start godoc
// @Summary Start a registration
// @Tags Registrations
// @Accept json
// @Produce json
// @Param payload body dto.StartRegistrationRequest true "Session to book"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /registrations [post]
func (h *RegistrationHandler) Start(c *gin.Context) {
	var req dto.StartRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	draft, err := h.service.Start(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, draft)
}

// Get godoc
// @Summary Get a registration draft
// @Tags Registrations
// @Produce json
// @Param token path string true "Registration token"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /registrations/{token} [get]
func (h *RegistrationHandler) Get(c *gin.Context) {
	draft, err := h.service.Get(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft, nil)
}

// SaveStep godoc
// @Summary Save a wizard step
// @Description Steps must be completed in order; earlier steps may be edited
// @Tags Registrations
// @Accept json
// @Produce json
// @Param token path string true "Registration token"
// @Param step path string true "basic-info, school-info, guardian-info, emergency-contact or medical"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /registrations/{token}/steps/{step} [put]
func (h *RegistrationHandler) SaveStep(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unable to read body"))
		return
	}
	draft, err := h.service.SaveStep(c.Request.Context(), c.Param("token"), models.RegistrationStep(c.Param("step")), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft, nil)
}
