package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rootwork-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/rootwork-enrollment-api/pkg/errors"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/jobs"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/payments"
)

type recordingDispatcher struct {
	jobs []jobs.Job
	err  error
}

func (r *recordingDispatcher) Enqueue(job jobs.Job) error {
	if r.err != nil {
		return r.err
	}
	r.jobs = append(r.jobs, job)
	return nil
}

type memoryPaymentStore struct {
	enrollments map[string]*models.Enrollment
	findErr     error
	markErr     error
	// cancelBeforeWrite cancels the enrollment between the worker's read and
	// its write, as an admin acting concurrently would.
	cancelBeforeWrite bool
}

func (m *memoryPaymentStore) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if e, ok := m.enrollments[id]; ok {
		return e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memoryPaymentStore) FindByPaymentIntentID(ctx context.Context, intentID string) (*models.Enrollment, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, e := range m.enrollments {
		if e.PaymentIntentID != nil && *e.PaymentIntentID == intentID {
			return e, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryPaymentStore) MarkPaid(ctx context.Context, id string, paymentStatus models.PaymentStatus, amountPaidCents int64, confirmedAt time.Time) error {
	if m.markErr != nil {
		return m.markErr
	}
	e := m.enrollments[id]
	if m.cancelBeforeWrite {
		e.Status = models.EnrollmentStatusCancelled
	}
	if e.Status != models.EnrollmentStatusPending {
		return sql.ErrNoRows
	}
	e.Status = models.EnrollmentStatusConfirmed
	e.PaymentStatus = paymentStatus
	e.AmountPaidCents = amountPaidCents
	e.ConfirmedAt = &confirmedAt
	return nil
}

func (m *memoryPaymentStore) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error {
	e := m.enrollments[id]
	if m.cancelBeforeWrite {
		e.Status = models.EnrollmentStatusCancelled
	}
	if e.Status != models.EnrollmentStatusPending {
		return sql.ErrNoRows
	}
	e.PaymentStatus = status
	return nil
}

func pendingEnrollment(id, intentID string, paymentType models.PaymentType) *models.Enrollment {
	return &models.Enrollment{
		ID:              id,
		SessionID:       "open",
		PaymentIntentID: &intentID,
		PaymentType:     paymentType,
		AmountDueCents:  3800,
		Status:          models.EnrollmentStatusPending,
		PaymentStatus:   models.PaymentStatusUnpaid,
	}
}

func TestPaymentWebhookEnqueuesIntentEvents(t *testing.T) {
	gateway := &fakeGateway{event: &payments.WebhookEvent{ID: "evt_1", Type: payments.EventPaymentSucceeded, PaymentIntentID: "pi_1"}}
	queue := &recordingDispatcher{}
	svc := NewPaymentWebhookService(gateway, queue, nil, nil)

	event, err := svc.Receive([]byte(`{}`), "sig")
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, payments.EventPaymentSucceeded, queue.jobs[0].Type)
	assert.Equal(t, *gateway.event, queue.jobs[0].Payload)
}

func TestPaymentWebhookIgnoresOtherEvents(t *testing.T) {
	gateway := &fakeGateway{event: &payments.WebhookEvent{ID: "evt_2", Type: "charge.refunded"}}
	queue := &recordingDispatcher{}
	metrics := NewMetricsService()
	svc := NewPaymentWebhookService(gateway, queue, metrics, nil)

	_, err := svc.Receive([]byte(`{}`), "sig")
	require.NoError(t, err)
	assert.Empty(t, queue.jobs)
	assert.Contains(t, scrapeMetrics(t, metrics), `payment_webhook_events_total{outcome="ignored",type="charge.refunded"} 1`)
}

func TestPaymentWebhookRejectsBadSignature(t *testing.T) {
	svc := NewPaymentWebhookService(&fakeGateway{parseErr: errors.New("signature mismatch")}, &recordingDispatcher{}, nil, nil)
	_, err := svc.Receive([]byte(`{}`), "bad")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	svc = NewPaymentWebhookService(&fakeGateway{parseErr: payments.ErrGatewayDisabled}, &recordingDispatcher{}, nil, nil)
	_, err = svc.Receive([]byte(`{}`), "sig")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPaymentGateway.Code, appErrors.FromError(err).Code)
}

func TestPaymentEventWorkerConfirmsDeposit(t *testing.T) {
	store := &memoryPaymentStore{enrollments: map[string]*models.Enrollment{
		"enr-1": pendingEnrollment("enr-1", "pi_1", models.PaymentTypeDeposit),
	}}
	metrics := NewMetricsService()
	worker := NewPaymentEventWorker(store, metrics, nil)

	err := worker.Handle(context.Background(), jobs.Job{ID: "evt_1", Type: payments.EventPaymentSucceeded, Payload: payments.WebhookEvent{
		ID: "evt_1", Type: payments.EventPaymentSucceeded, PaymentIntentID: "pi_1", AmountCents: 3800, AmountReceivedCents: 3800,
	}})
	require.NoError(t, err)

	enrollment := store.enrollments["enr-1"]
	assert.Equal(t, models.EnrollmentStatusConfirmed, enrollment.Status)
	assert.Equal(t, models.PaymentStatusDepositPaid, enrollment.PaymentStatus)
	assert.Equal(t, int64(3800), enrollment.AmountPaidCents)
	assert.NotNil(t, enrollment.ConfirmedAt)
	assert.Contains(t, scrapeMetrics(t, metrics), `payment_webhook_events_total{outcome="success",type="payment_intent.succeeded"} 1`)
}

func TestPaymentEventWorkerFullPaymentAndReplay(t *testing.T) {
	store := &memoryPaymentStore{enrollments: map[string]*models.Enrollment{
		"enr-2": pendingEnrollment("enr-2", "pi_2", models.PaymentTypeFull),
	}}
	worker := NewPaymentEventWorker(store, nil, nil)
	event := payments.WebhookEvent{ID: "evt_2", Type: payments.EventPaymentSucceeded, PaymentIntentID: "pi_2", AmountCents: 7500}

	outcome, err := worker.Apply(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, outcome)
	assert.Equal(t, models.PaymentStatusPaidInFull, store.enrollments["enr-2"].PaymentStatus)
	assert.Equal(t, int64(7500), store.enrollments["enr-2"].AmountPaidCents)

	outcome, err = worker.Apply(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, outcome)
}

func TestPaymentEventWorkerMarksFailure(t *testing.T) {
	store := &memoryPaymentStore{enrollments: map[string]*models.Enrollment{
		"enr-3": pendingEnrollment("enr-3", "pi_3", models.PaymentTypeFull),
	}}
	worker := NewPaymentEventWorker(store, nil, nil)

	outcome, err := worker.Apply(context.Background(), payments.WebhookEvent{
		ID: "evt_3", Type: payments.EventPaymentFailed, PaymentIntentID: "pi_3", FailureMessage: "card declined",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, outcome)
	assert.Equal(t, models.PaymentStatusFailed, store.enrollments["enr-3"].PaymentStatus)
	assert.Equal(t, models.EnrollmentStatusPending, store.enrollments["enr-3"].Status)
}

func TestPaymentEventWorkerFallsBackToMetadata(t *testing.T) {
	enrollment := pendingEnrollment("enr-4", "pi_other", models.PaymentTypeFull)
	store := &memoryPaymentStore{enrollments: map[string]*models.Enrollment{"enr-4": enrollment}}
	worker := NewPaymentEventWorker(store, nil, nil)

	outcome, err := worker.Apply(context.Background(), payments.WebhookEvent{
		ID: "evt_4", Type: payments.EventPaymentSucceeded, PaymentIntentID: "pi_4",
		Metadata: map[string]string{"enrollment_id": "enr-4"}, AmountCents: 7500,
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, outcome)
	assert.Equal(t, models.EnrollmentStatusConfirmed, enrollment.Status)

	outcome, err = worker.Apply(context.Background(), payments.WebhookEvent{ID: "evt_5", Type: payments.EventPaymentSucceeded, PaymentIntentID: "pi_unknown"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, outcome)
}

func TestPaymentEventWorkerReturnsStoreErrorsForRetry(t *testing.T) {
	store := &memoryPaymentStore{findErr: errors.New("db down"), enrollments: map[string]*models.Enrollment{}}
	metrics := NewMetricsService()
	worker := NewPaymentEventWorker(store, metrics, nil)

	job := jobs.Job{ID: "evt_6", Type: payments.EventPaymentSucceeded, Payload: payments.WebhookEvent{ID: "evt_6", Type: payments.EventPaymentSucceeded, PaymentIntentID: "pi_6"}}
	require.Error(t, worker.Handle(context.Background(), job))

	worker.Exhausted(job, errors.New("db down"))
	assert.Contains(t, scrapeMetrics(t, metrics), `payment_webhook_events_total{outcome="failed",type="payment_intent.succeeded"} 1`)
}

func TestPaymentEventWorkerSkipsEnrollmentCancelledMidFlight(t *testing.T) {
	store := &memoryPaymentStore{
		enrollments:       map[string]*models.Enrollment{"enr-1": pendingEnrollment("enr-1", "pi_1", models.PaymentTypeFull)},
		cancelBeforeWrite: true,
	}
	metrics := NewMetricsService()
	worker := NewPaymentEventWorker(store, metrics, nil)

	err := worker.Handle(context.Background(), jobs.Job{ID: "evt_9", Type: payments.EventPaymentSucceeded, Payload: payments.WebhookEvent{
		ID: "evt_9", Type: payments.EventPaymentSucceeded, PaymentIntentID: "pi_1", AmountCents: 11000,
	}})
	require.NoError(t, err)

	enrollment := store.enrollments["enr-1"]
	assert.Equal(t, models.EnrollmentStatusCancelled, enrollment.Status)
	assert.Nil(t, enrollment.ConfirmedAt)
	assert.Contains(t, scrapeMetrics(t, metrics), `payment_webhook_events_total{outcome="ignored",type="payment_intent.succeeded"} 1`)

	enrollment.Status = models.EnrollmentStatusPending
	outcome, err := worker.Apply(context.Background(), payments.WebhookEvent{ID: "evt_10", Type: payments.EventPaymentFailed, PaymentIntentID: "pi_1"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, outcome)
	assert.Equal(t, models.PaymentStatusUnpaid, enrollment.PaymentStatus)
}
