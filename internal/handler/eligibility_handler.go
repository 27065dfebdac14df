package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rootwork-enrollment-api/internal/dto"
	"github.com/noah-isme/rootwork-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/rootwork-enrollment-api/pkg/errors"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/response"
)

type eligibilityService interface {
	Evaluate(facts models.EligibilityFacts) (models.EligibilityResult, error)
	Quote(req dto.QuoteRequest) (*dto.QuoteResponse, error)
	ScholarshipInfo() dto.ScholarshipInfoResponse
}

// EligibilityHandler exposes scholarship eligibility and pricing endpoints.
type EligibilityHandler struct {
	service eligibilityService
}

// NewEligibilityHandler constructs EligibilityHandler.
func NewEligibilityHandler(svc eligibilityService) *EligibilityHandler {
	return &EligibilityHandler{service: svc}
}

// Evaluate godoc
// @Summary Check scholarship eligibility
// @Tags Eligibility
// @Accept json
// @Produce json
// @Param payload body models.EligibilityFacts true "Student facts"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /eligibility [post]
func (h *EligibilityHandler) Evaluate(c *gin.Context) {
	var facts models.EligibilityFacts
	if err := c.ShouldBindJSON(&facts); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Evaluate(facts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Quote godoc
// @Summary Price an enrollment
// @Description Re-runs eligibility and returns the payment breakdown
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body dto.QuoteRequest true "Quote request"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /payments/quote [post]
func (h *EligibilityHandler) Quote(c *gin.Context) {
	var req dto.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	quote, err := h.service.Quote(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, quote, nil)
}

// Scholarship godoc
// @Summary Scholarship program information
// @Tags Eligibility
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /scholarship [get]
func (h *EligibilityHandler) Scholarship(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.ScholarshipInfo(), nil)
}
