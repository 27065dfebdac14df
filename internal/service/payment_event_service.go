package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/rootwork-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/rootwork-enrollment-api/pkg/errors"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/jobs"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/payments"
)

// PaymentEventsQueue names the queue that applies gateway events.
const PaymentEventsQueue = "payment-events"

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type webhookVerifier interface {
	ParseWebhook(payload []byte, signature string) (*payments.WebhookEvent, error)
}

type paymentEnrollmentStore interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	FindByPaymentIntentID(ctx context.Context, intentID string) (*models.Enrollment, error)
	MarkPaid(ctx context.Context, id string, paymentStatus models.PaymentStatus, amountPaidCents int64, confirmedAt time.Time) error
	UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error
}

// PaymentWebhookService verifies gateway deliveries and hands payment intent
// events to the worker queue.
type PaymentWebhookService struct {
	verifier webhookVerifier
	queue    jobDispatcher
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewPaymentWebhookService constructs PaymentWebhookService.
func NewPaymentWebhookService(verifier webhookVerifier, queue jobDispatcher, metrics *MetricsService, logger *zap.Logger) *PaymentWebhookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentWebhookService{verifier: verifier, queue: queue, metrics: metrics, logger: logger}
}

// Receive verifies the signature and enqueues events the enrollment flow
// reacts to. Other event types are acknowledged and dropped.
func (s *PaymentWebhookService) Receive(payload []byte, signature string) (*payments.WebhookEvent, error) {
	if s.verifier == nil {
		return nil, appErrors.Clone(appErrors.ErrPaymentGateway, "payment gateway not configured")
	}
	event, err := s.verifier.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, payments.ErrGatewayDisabled) {
			return nil, appErrors.Wrap(err, appErrors.ErrPaymentGateway.Code, appErrors.ErrPaymentGateway.Status, "payment gateway not configured")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid webhook signature")
	}

	if event.Type != payments.EventPaymentSucceeded && event.Type != payments.EventPaymentFailed {
		s.metrics.RecordWebhookEvent(event.Type, OutcomeIgnored)
		return event, nil
	}
	if err := s.queue.Enqueue(jobs.Job{ID: event.ID, Type: event.Type, Payload: *event}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue payment event")
	}
	s.logger.Info("payment event queued",
		zap.String("event_id", event.ID),
		zap.String("type", event.Type),
		zap.String("payment_intent_id", event.PaymentIntentID),
	)
	return event, nil
}

// PaymentEventWorker applies queued gateway events to enrollments.
type PaymentEventWorker struct {
	enrollments paymentEnrollmentStore
	metrics     *MetricsService
	logger      *zap.Logger
	now         func() time.Time
}

// NewPaymentEventWorker constructs a worker.
func NewPaymentEventWorker(enrollments paymentEnrollmentStore, metrics *MetricsService, logger *zap.Logger) *PaymentEventWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentEventWorker{enrollments: enrollments, metrics: metrics, logger: logger, now: time.Now}
}

// Handle processes a queue job. Returning an error makes the queue retry.
func (w *PaymentEventWorker) Handle(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(payments.WebhookEvent)
	if !ok {
		w.logger.Sugar().Errorw("unexpected payment job payload", "job_id", job.ID, "payload_type", fmt.Sprintf("%T", job.Payload))
		return nil
	}
	outcome, err := w.Apply(ctx, event)
	if err != nil {
		return err
	}
	w.metrics.RecordWebhookEvent(event.Type, outcome)
	return nil
}

// Exhausted records events dropped after every retry failed.
func (w *PaymentEventWorker) Exhausted(job jobs.Job, err error) {
	w.metrics.RecordWebhookEvent(job.Type, OutcomeFailed)
	w.logger.Error("payment event dropped", zap.String("event_id", job.ID), zap.String("type", job.Type), zap.Error(err))
}

// Apply transitions the enrollment paid through the event's payment intent
// and reports the metric outcome. Replayed events leave a confirmed
// enrollment untouched.
func (w *PaymentEventWorker) Apply(ctx context.Context, event payments.WebhookEvent) (string, error) {
	enrollment, err := w.resolve(ctx, event)
	if err != nil {
		return "", err
	}
	if enrollment == nil {
		w.logger.Warn("no enrollment for payment event",
			zap.String("event_id", event.ID),
			zap.String("payment_intent_id", event.PaymentIntentID),
		)
		return OutcomeIgnored, nil
	}
	if enrollment.Status == models.EnrollmentStatusConfirmed || enrollment.Status == models.EnrollmentStatusCancelled {
		return OutcomeIgnored, nil
	}

	switch event.Type {
	case payments.EventPaymentSucceeded:
		status := models.PaymentStatusPaidInFull
		if enrollment.PaymentType == models.PaymentTypeDeposit {
			status = models.PaymentStatusDepositPaid
		}
		paid := event.AmountReceivedCents
		if paid == 0 {
			paid = event.AmountCents
		}
		if err := w.enrollments.MarkPaid(ctx, enrollment.ID, status, paid, w.now().UTC()); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				w.logger.Warn("enrollment left pending before payment applied",
					zap.String("enrollment_id", enrollment.ID),
					zap.String("event_id", event.ID),
				)
				return OutcomeIgnored, nil
			}
			return "", err
		}
		w.logger.Info("enrollment confirmed",
			zap.String("enrollment_id", enrollment.ID),
			zap.String("payment_status", string(status)),
			zap.Int64("amount_paid_cents", paid),
		)
	case payments.EventPaymentFailed:
		if err := w.enrollments.UpdatePaymentStatus(ctx, enrollment.ID, models.PaymentStatusFailed); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return OutcomeIgnored, nil
			}
			return "", err
		}
		w.logger.Warn("enrollment payment failed",
			zap.String("enrollment_id", enrollment.ID),
			zap.String("reason", event.FailureMessage),
		)
	default:
		return OutcomeIgnored, nil
	}
	return OutcomeSuccess, nil
}

func (w *PaymentEventWorker) resolve(ctx context.Context, event payments.WebhookEvent) (*models.Enrollment, error) {
	if event.PaymentIntentID != "" {
		enrollment, err := w.enrollments.FindByPaymentIntentID(ctx, event.PaymentIntentID)
		if err == nil {
			return enrollment, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}
	id := event.Metadata["enrollment_id"]
	if id == "" {
		return nil, nil
	}
	enrollment, err := w.enrollments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return enrollment, nil
}
