package service

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/rootwork-enrollment-api/internal/dto"
	"github.com/noah-isme/rootwork-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/rootwork-enrollment-api/pkg/errors"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/export"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/roster"
)

const receiptResource = "receipt"

// WhatToBring lists what students bring to an outdoor session.
var WhatToBring = []string{
	"Water bottle (labeled with student name)",
	"Weather-appropriate outdoor clothing",
	"Snack (we provide one, but extras welcome)",
	"Any necessary medications (clearly labeled)",
}

// ScholarshipReminders accompany the scholarship next steps.
var ScholarshipReminders = []string{
	"Apply as soon as you have all required documents ready",
	"Priority given to families with income ≤ 400% federal poverty level",
	"Once approved, you're in the program until student graduates",
	"Funds are distributed quarterly",
	"Your RootWork registration is confirmed regardless of scholarship approval",
}

type enrollmentDetailReader interface {
	FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error)
}

type receiptSigner interface {
	Generate(subjectID, resource string) (string, time.Time, error)
	Verify(token, subjectID, resource string) error
}

type documentRenderer interface {
	Render(doc export.Document) ([]byte, error)
}

// ConfirmationOptions configures receipt links.
type ConfirmationOptions struct {
	BaseURL   string
	APIPrefix string
	Currency  string
}

// ConfirmationService renders confirmations and receipts from stored
// enrollments.
type ConfirmationService struct {
	enrollments enrollmentDetailReader
	roster      *roster.Roster
	signer      receiptSigner
	renderer    documentRenderer
	opts        ConfirmationOptions
	logger      *zap.Logger
}

// NewConfirmationService constructs ConfirmationService.
func NewConfirmationService(enrollments enrollmentDetailReader, r *roster.Roster, signer receiptSigner, renderer documentRenderer, opts ConfirmationOptions, logger *zap.Logger) *ConfirmationService {
	if r == nil {
		r = roster.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Currency == "" {
		opts.Currency = "usd"
	}
	return &ConfirmationService{enrollments: enrollments, roster: r, signer: signer, renderer: renderer, opts: opts, logger: logger}
}

// Confirmation returns the confirmation view with a signed receipt link.
func (s *ConfirmationService) Confirmation(ctx context.Context, id string) (*dto.ConfirmationResponse, error) {
	detail, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.build(detail)

	if s.signer != nil {
		token, expiresAt, err := s.signer.Generate(detail.ID, receiptResource)
		if err != nil {
			s.logger.Warn("failed to sign receipt link", zap.String("enrollment_id", detail.ID), zap.Error(err))
		} else {
			resp.ReceiptURL = s.receiptURL(detail.ID, token)
			resp.ReceiptExpiresAt = &expiresAt
		}
	}
	return resp, nil
}

// Receipt renders the PDF receipt after checking the signed token.
func (s *ConfirmationService) Receipt(ctx context.Context, id, token string) ([]byte, string, error) {
	if s.signer == nil || token == "" {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "receipt link required")
	}
	if err := s.signer.Verify(token, id, receiptResource); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid or expired receipt link")
	}
	detail, err := s.load(ctx, id)
	if err != nil {
		return nil, "", err
	}
	confirmation := s.build(detail)

	content, err := s.renderer.Render(s.receiptDocument(confirmation, detail))
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render receipt")
	}
	filename := "rootwork-receipt-" + strings.ToLower(confirmation.ConfirmationNumber) + ".pdf"
	return content, filename, nil
}

func (s *ConfirmationService) load(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	detail, err := s.enrollments.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return detail, nil
}

func (s *ConfirmationService) build(detail *models.EnrollmentDetail) *dto.ConfirmationResponse {
	session := models.Session{
		ID:          detail.SessionID,
		Date:        detail.SessionDate,
		GradeLevel:  detail.SessionGrade,
		ProgramType: detail.SessionProgram,
		StartTime:   detail.SessionStart,
		EndTime:     detail.SessionEnd,
		Location:    detail.SessionLocation,
	}
	resp := &dto.ConfirmationResponse{
		EnrollmentID:       detail.ID,
		ConfirmationNumber: ConfirmationNumber(detail.CreatedAt),
		Status:             detail.Status,
		StudentName:        detail.StudentName(),
		Session: dto.SessionSummary{
			ID:          session.ID,
			Date:        session.Date,
			Time:        session.TimeRange(),
			Location:    session.Location,
			Grade:       session.GradeLabel(),
			ProgramType: session.ProgramType,
		},
		Payment: dto.PaymentSummary{
			PaymentType:        detail.PaymentType,
			PaymentStatus:      detail.PaymentStatus,
			Currency:           s.opts.Currency,
			AmountDue:          models.FromCents(detail.AmountDueCents),
			AmountPaid:         models.FromCents(detail.AmountPaidCents),
			BalanceDue:         models.FromCents(detail.BalanceDueCents),
			IncludeCurriculum:  detail.IncludeCurriculum,
			ScholarshipApplied: detail.ScholarshipApplied,
		},
		WhatToBring: WhatToBring,
		ConfirmedAt: detail.ConfirmedAt,
	}
	if detail.ScholarshipApplied {
		resp.Scholarship = &dto.ScholarshipGuidance{
			NextSteps: scholarshipNextSteps(s.roster.Program),
			Reminders: ScholarshipReminders,
			Program:   s.roster.Program,
		}
	}
	return resp
}

func (s *ConfirmationService) receiptURL(id, token string) string {
	return s.opts.BaseURL + s.opts.APIPrefix + "/enrollments/" + url.PathEscape(id) + "/receipt?token=" + url.QueryEscape(token)
}

func (s *ConfirmationService) receiptDocument(c *dto.ConfirmationResponse, detail *models.EnrollmentDetail) export.Document {
	payment := c.Payment
	doc := export.Document{
		Title:    "RootWork Framework Enrollment Receipt",
		Subtitle: "Confirmation " + c.ConfirmationNumber,
		Sections: []export.Section{
			{
				Heading: "Enrollment",
				Fields: []export.Field{
					{Label: "Student", Value: c.StudentName},
					{Label: "Parent email", Value: detail.ParentEmail},
					{Label: "Status", Value: string(c.Status)},
				},
			},
			{
				Heading: "Session",
				Fields: []export.Field{
					{Label: "Date", Value: c.Session.Date.Format("Monday, January 2, 2006")},
					{Label: "Time", Value: c.Session.Time},
					{Label: "Location", Value: c.Session.Location},
					{Label: "Grade", Value: c.Session.Grade},
				},
			},
			{
				Heading: "Payment",
				Fields: []export.Field{
					{Label: "Payment type", Value: string(payment.PaymentType)},
					{Label: "Payment status", Value: string(payment.PaymentStatus)},
					{Label: "Amount due at checkout", Value: formatMoney(payment.AmountDue, payment.Currency)},
					{Label: "Amount paid", Value: formatMoney(payment.AmountPaid, payment.Currency)},
					{Label: "Balance due", Value: formatMoney(payment.BalanceDue, payment.Currency)},
					{Label: "Curriculum add-on", Value: strconv.FormatBool(payment.IncludeCurriculum)},
				},
			},
			{Heading: "What to bring", Bullets: c.WhatToBring},
		},
		Footer: "Thank you for enrolling with RootWork Framework.",
	}
	if c.Scholarship != nil {
		doc.Sections = append(doc.Sections, export.Section{
			Heading: c.Scholarship.Program.Name + " next steps",
			Bullets: c.Scholarship.NextSteps,
		})
	}
	return doc
}

// ConfirmationNumber derives the display number from the enrollment time.
func ConfirmationNumber(createdAt time.Time) string {
	return "RWFW-" + strings.ToUpper(strconv.FormatInt(createdAt.UnixMilli(), 36))
}

func formatMoney(amount decimal.Decimal, currency string) string {
	if strings.EqualFold(currency, "usd") {
		return "$" + amount.StringFixed(2)
	}
	return amount.StringFixed(2) + " " + strings.ToUpper(currency)
}
