package dto

// StartRegistrationRequest captures POST /registrations payload.
type StartRegistrationRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}
