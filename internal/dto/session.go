package dto

import "github.com/noah-isme/rootwork-enrollment-api/internal/models"

// SessionQuery captures GET /sessions query parameters.
type SessionQuery struct {
	From        string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To          string `form:"to" validate:"omitempty,datetime=2006-01-02"`
	GradeLevel  string `form:"gradeLevel" validate:"omitempty,oneof=G35 G68 G912"`
	ProgramType string `form:"programType" validate:"omitempty,oneof=K12 ADULT"`
	Available   bool   `form:"available"`
}

// DateSpotsResponse reports remaining spots for one date.
type DateSpotsResponse struct {
	Date           models.Date `json:"date"`
	AvailableSpots int         `json:"available_spots"`
}

// GenerateSessionsRequest captures POST /admin/sessions/generate payload. An
// empty start date means today; a zero horizon means the configured horizon.
type GenerateSessionsRequest struct {
	StartDate   string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	HorizonDays int    `json:"horizon_days" validate:"min=0,max=730"`
}

// GenerateSessionsResponse summarises a persisted generation run.
type GenerateSessionsResponse struct {
	From      models.Date `json:"from"`
	To        models.Date `json:"to"`
	Generated int         `json:"generated"`
	Inserted  int         `json:"inserted"`
}
