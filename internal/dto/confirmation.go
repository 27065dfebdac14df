package dto

import (
	"time"

	"github.com/noah-isme/rootwork-enrollment-api/internal/models"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/roster"
)

// SessionSummary describes the booked session in a confirmation.
type SessionSummary struct {
	ID          string             `json:"id"`
	Date        models.Date        `json:"date"`
	Time        string             `json:"time"`
	Location    string             `json:"location"`
	Grade       string             `json:"grade"`
	ProgramType models.ProgramType `json:"program_type"`
}

// ScholarshipGuidance explains how to finish a scholarship application.
type ScholarshipGuidance struct {
	NextSteps []string       `json:"next_steps"`
	Reminders []string       `json:"reminders"`
	Program   roster.Program `json:"program"`
}

// ConfirmationResponse is rendered from the stored enrollment.
type ConfirmationResponse struct {
	EnrollmentID       string                  `json:"enrollment_id"`
	ConfirmationNumber string                  `json:"confirmation_number"`
	Status             models.EnrollmentStatus `json:"status"`
	StudentName        string                  `json:"student_name"`
	Session            SessionSummary          `json:"session"`
	Payment            PaymentSummary          `json:"payment"`
	Scholarship        *ScholarshipGuidance    `json:"scholarship,omitempty"`
	WhatToBring        []string                `json:"what_to_bring"`
	ReceiptURL         string                  `json:"receipt_url,omitempty"`
	ReceiptExpiresAt   *time.Time              `json:"receipt_expires_at,omitempty"`
	ConfirmedAt        *time.Time              `json:"confirmed_at,omitempty"`
}

// ScholarshipInfoResponse is returned by GET /scholarship.
type ScholarshipInfoResponse struct {
	Version           string          `json:"version"`
	Program           roster.Program  `json:"program"`
	QualifyingSchools []roster.School `json:"qualifying_schools"`
	OtherSchools      []roster.School `json:"other_schools"`
}
