package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rootwork-enrollment-api/internal/dto"
	"github.com/noah-isme/rootwork-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/rootwork-enrollment-api/pkg/errors"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/payments"
)

type checkoutServiceMock struct {
	last dto.CheckoutRequest
	err  error
}

func (m *checkoutServiceMock) Checkout(ctx context.Context, req dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	m.last = req
	if m.err != nil {
		return nil, m.err
	}
	return &dto.CheckoutResponse{
		EnrollmentID:  "enr-1",
		Status:        models.EnrollmentStatusPending,
		PaymentStatus: models.PaymentStatusUnpaid,
		ClientSecret:  "pi_1_secret",
	}, nil
}

type webhookServiceMock struct {
	payload   string
	signature string
	err       error
}

func (m *webhookServiceMock) Receive(payload []byte, signature string) (*payments.WebhookEvent, error) {
	m.payload = string(payload)
	m.signature = signature
	if m.err != nil {
		return nil, m.err
	}
	return &payments.WebhookEvent{ID: "evt_1", Type: payments.EventPaymentSucceeded}, nil
}

func paymentRouter(checkout *checkoutServiceMock, webhooks *webhookServiceMock) *gin.Engine {
	h := NewPaymentHandler(checkout, webhooks)
	r := newTestRouter()
	r.POST("/checkout", h.Checkout)
	r.POST("/webhooks/stripe", h.StripeWebhook)
	return r
}

func TestPaymentHandlerCheckout(t *testing.T) {
	checkout := &checkoutServiceMock{}
	r := paymentRouter(checkout, &webhookServiceMock{})

	body := []byte(`{"registration_token":"tok-1","payment_type":"deposit","include_curriculum":true}`)
	w, env := performRequest(t, r, http.MethodPost, "/checkout", body, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "deposit", checkout.last.PaymentType)
	assert.True(t, checkout.last.IncludeCurriculum)

	var resp dto.CheckoutResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "pi_1_secret", resp.ClientSecret)

	checkout.err = appErrors.Clone(appErrors.ErrPaymentGateway, "payment gateway rejected the intent")
	w, env = performRequest(t, r, http.MethodPost, "/checkout", body, nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, appErrors.ErrPaymentGateway.Code, env.Error.Code)
}

func TestPaymentHandlerWebhookForwardsSignature(t *testing.T) {
	webhooks := &webhookServiceMock{}
	r := paymentRouter(&checkoutServiceMock{}, webhooks)

	payload := `{"id":"evt_1","type":"payment_intent.succeeded"}`
	w, env := performRequest(t, r, http.MethodPost, "/webhooks/stripe", []byte(payload), map[string]string{"Stripe-Signature": "t=1,v1=abc"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, payload, webhooks.payload)
	assert.Equal(t, "t=1,v1=abc", webhooks.signature)
	assert.JSONEq(t, `{"received":true,"event_id":"evt_1"}`, string(env.Data))

	webhooks.err = appErrors.Clone(appErrors.ErrValidation, "invalid webhook signature")
	w, _ = performRequest(t, r, http.MethodPost, "/webhooks/stripe", []byte(payload), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
