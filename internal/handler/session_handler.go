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

type availabilityService interface {
	ParseQuery(query dto.SessionQuery) (models.SessionFilter, error)
	Sessions(ctx context.Context, filter models.SessionFilter) ([]models.Session, error)
	AvailableDates(ctx context.Context, filter models.SessionFilter) ([]models.DateAvailability, error)
	SpotsForDate(ctx context.Context, date models.Date) (int, error)
	Session(ctx context.Context, id string) (*models.Session, error)
	Persist(ctx context.Context, req dto.GenerateSessionsRequest) (*dto.GenerateSessionsResponse, error)
}

// SessionHandler exposes session availability endpoints.
type SessionHandler struct {
	service availabilityService
}

// NewSessionHandler constructs SessionHandler.
func NewSessionHandler(svc availabilityService) *SessionHandler {
	return &SessionHandler{service: svc}
}

// List godoc
// @Summary List sessions
// @Description Sessions ordered by date then start time
// @Tags Sessions
// @Produce json
// @Param from query string false "First date (YYYY-MM-DD)"
// @Param to query string false "Last date (YYYY-MM-DD)"
// @Param gradeLevel query string false "G35, G68 or G912"
// @Param programType query string false "K12 or ADULT"
// @Param available query bool false "Only sessions with open spots"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	sessions, err := h.service.Sessions(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// Dates godoc
// @Summary List bookable dates
// @Tags Sessions
// @Produce json
// @Param from query string false "First date (YYYY-MM-DD)"
// @Param to query string false "Last date (YYYY-MM-DD)"
// @Param gradeLevel query string false "G35, G68 or G912"
// @Param programType query string false "K12 or ADULT"
// @Success 200 {object} response.Envelope
// @Router /sessions/dates [get]
func (h *SessionHandler) Dates(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	dates, err := h.service.AvailableDates(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dates, nil)
}

// DateSpots godoc
// @Summary Remaining spots on a date
// @Tags Sessions
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /sessions/dates/{date}/spots [get]
func (h *SessionHandler) DateSpots(c *gin.Context) {
	date, err := models.ParseDate(c.Param("date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD"))
		return
	}
	spots, err := h.service.SpotsForDate(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.DateSpotsResponse{Date: date, AvailableSpots: spots}, nil)
}

// Get godoc
// @Summary Get session
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.service.Session(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Generate godoc
// @Summary Persist generated sessions
// @Description Inserts the generated window into the sessions table, keeping existing rows
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.GenerateSessionsRequest false "Window"
// @Success 201 {object} response.Envelope
// @Router /admin/sessions/generate [post]
func (h *SessionHandler) Generate(c *gin.Context) {
	var req dto.GenerateSessionsRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}
	result, err := h.service.Persist(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

func (h *SessionHandler) bindFilter(c *gin.Context) (models.SessionFilter, bool) {
	var query dto.SessionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return models.SessionFilter{}, false
	}
	filter, err := h.service.ParseQuery(query)
	if err != nil {
		response.Error(c, err)
		return models.SessionFilter{}, false
	}
	return filter, true
}
