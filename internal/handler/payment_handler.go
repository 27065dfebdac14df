package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rootwork-enrollment-api/internal/dto"
	appErrors "github.com/noah-isme/rootwork-enrollment-api/pkg/errors"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/payments"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/response"
)

// maxWebhookBody bounds gateway deliveries.
const maxWebhookBody = 64 << 10

type checkoutService interface {
	Checkout(ctx context.Context, req dto.CheckoutRequest) (*dto.CheckoutResponse, error)
}

type webhookService interface {
	Receive(payload []byte, signature string) (*payments.WebhookEvent, error)
}

// PaymentHandler exposes checkout and the gateway webhook.
type PaymentHandler struct {
	checkout checkoutService
	webhooks webhookService
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(checkout checkoutService, webhooks webhookService) *PaymentHandler {
	return &PaymentHandler{checkout: checkout, webhooks: webhooks}
}

// Checkout godoc
// @Summary Complete a registration
// @Description Records the enrollment and, when money is due, creates a payment intent
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body dto.CheckoutRequest true "Checkout payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /checkout [post]
func (h *PaymentHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.checkout.Checkout(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// StripeWebhook godoc
// @Summary Payment gateway webhook
// @Tags Payments
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Webhook signature"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /webhooks/stripe [post]
func (h *PaymentHandler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unable to read body"))
		return
	}
	event, err := h.webhooks.Receive(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.WebhookAck{Received: true, EventID: event.ID}, nil)
}
