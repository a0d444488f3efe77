package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type PaymentHandler struct {
	paymentService service.PaymentService
	validator      *validator.Validate
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, validator: validator.New()}
}

// InitiatePayment godoc
//
//	@Summary		Open a payment at the order's provider
//	@Description	Creates a PayPal order or Stripe payment intent for the order total and records it as pending.
//	@Tags			Payments
//	@Produce		json
//	@Param			id	path		string						true	"Order ID (UUID)"	Format(uuid)
//	@Success		201	{object}	models.PaymentInitiation	"Provider order to complete on the client"
//	@Failure		400	{object}	response.ErrorResponse		"Invalid order ID or offline payment method"
//	@Failure		401	{object}	response.ErrorResponse		"Authentication required"
//	@Failure		404	{object}	response.ErrorResponse		"Order not found"
//	@Failure		409	{object}	response.ErrorResponse		"Order already paid"
//	@Failure		500	{object}	response.ErrorResponse		"Payment provider or internal error"
//	@Security		BearerAuth
//	@Router			/orders/{id}/payments [post]
func (h *PaymentHandler) InitiatePayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := requireClaims(w, r, logger)
		if !ok {
			return
		}

		orderID, err := utils.ParseID(r, "id")
		if err != nil {
			logger.Warn("Invalid order id", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger = logger.With(slog.String("orderId", orderID.String()))

		initiation, err := h.paymentService.InitiatePayment(r.Context(), orderID, claims.UserID)
		if err != nil {
			logger.Error("Failed to initiate payment", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Payment initiated", slog.String("provider", string(initiation.Provider)), slog.String("providerOrderId", initiation.ProviderOrderID))
		response.Success(w, http.StatusCreated, initiation)
	}
}

// ConfirmPayment godoc
//
//	@Summary		Capture and confirm a payment
//	@Description	Captures the provider order, verifies it and marks the order paid, decrementing stock.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Order ID (UUID)"	Format(uuid)
//	@Param			payment	body		models.ConfirmPaymentRequest	true	"Provider order to capture"
//	@Success		200		{object}	models.Order					"Paid order"
//	@Failure		400		{object}	response.ErrorResponse			"Invalid input or verification failed"
//	@Failure		401		{object}	response.ErrorResponse			"Authentication required"
//	@Failure		404		{object}	response.ErrorResponse			"Order not found"
//	@Failure		409		{object}	response.ErrorResponse			"Order already paid"
//	@Failure		500		{object}	response.ErrorResponse			"Payment provider or internal error"
//	@Security		BearerAuth
//	@Router			/orders/{id}/payments/capture [post]
func (h *PaymentHandler) ConfirmPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := requireClaims(w, r, logger)
		if !ok {
			return
		}

		orderID, err := utils.ParseID(r, "id")
		if err != nil {
			logger.Warn("Invalid order id", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger = logger.With(slog.String("orderId", orderID.String()))

		var req models.ConfirmPaymentRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid confirm payment input")
			return
		}

		order, err := h.paymentService.ConfirmPayment(r.Context(), orderID, claims.UserID, &req)
		if err != nil {
			logger.Error("Failed to confirm payment", slog.String("providerOrderId", req.ProviderOrderID), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Payment confirmed")
		response.Success(w, http.StatusOK, order)
	}
}
