package service

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/cache"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/aaravmahajanofficial/storefront/pkg/sendGrid"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentGateway is a payment provider that can open a payment and later capture it.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal) (*models.GatewayOrder, error)
	Capture(ctx context.Context, providerOrderID string) (*models.CaptureResult, error)
}

type PaymentService interface {
	InitiatePayment(ctx context.Context, orderID, userID uuid.UUID) (*models.PaymentInitiation, error)
	ConfirmPayment(ctx context.Context, orderID, userID uuid.UUID, req *models.ConfirmPaymentRequest) (*models.Order, error)
	MarkOrderPaid(ctx context.Context, orderID uuid.UUID, result *models.PaymentResult) (*models.Order, error)
	MarkOrderPaidManually(ctx context.Context, orderID, adminID uuid.UUID) (*models.Order, error)
	MarkOrderDelivered(ctx context.Context, orderID uuid.UUID) error
}

type paymentService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	outboxRepo  repository.OutboxRepository
	tx          repository.Transactor
	gateways    map[models.PaymentProvider]PaymentGateway
	cache       cache.Cache
	email       sendGrid.EmailService
	now         func() time.Time
}

func NewPaymentService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	outboxRepo repository.OutboxRepository,
	tx repository.Transactor,
	gateways map[models.PaymentProvider]PaymentGateway,
	cache cache.Cache,
	email sendGrid.EmailService,
) PaymentService {
	return &paymentService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		outboxRepo:  outboxRepo,
		tx:          tx,
		gateways:    gateways,
		cache:       cache,
		email:       email,
		now:         time.Now,
	}
}

func (s *paymentService) gatewayFor(method models.PaymentMethod) (models.PaymentProvider, PaymentGateway, error) {

	provider, ok := models.ProviderFor(method)
	if !ok {
		return "", nil, errors.BadRequestError(fmt.Sprintf("%s orders are not paid online", method))
	}

	gateway, ok := s.gateways[provider]
	if !ok {
		return "", nil, errors.BadRequestError(fmt.Sprintf("%s payments are not available", method))
	}

	return provider, gateway, nil
}

// InitiatePayment opens a payment with the provider and records its id as pending on the order.
func (s *paymentService) InitiatePayment(ctx context.Context, orderID, userID uuid.UUID) (*models.PaymentInitiation, error) {

	logger := middleware.LoggerFromContext(ctx)

	order, err := loadOwnedOrder(ctx, s.orderRepo, orderID, userID)
	if err != nil {
		return nil, err
	}

	if order.IsPaid {
		return nil, errors.AlreadyPaidError()
	}

	provider, gateway, err := s.gatewayFor(order.PaymentMethod)
	if err != nil {
		return nil, err
	}

	gatewayOrder, err := gateway.CreateOrder(ctx, order.Prices.TotalPrice)
	if err != nil {
		logger.Error("Failed to create provider payment", slog.String("orderId", orderID.String()), slog.String("provider", string(provider)), slog.Any("error", err))
		return nil, errors.ThirdPartyError("Failed to create payment with provider").WithError(err)
	}

	pending := models.NewProviderPaymentResult(provider, models.ProviderPaymentResult{
		ID:        gatewayOrder.ID,
		PricePaid: decimal.Zero,
	})

	if err := s.orderRepo.SetPaymentResult(ctx, orderID, pending); err != nil {
		if stdErrors.Is(err, repository.ErrAlreadyPaid) {
			return nil, errors.AlreadyPaidError().WithError(err)
		}

		return nil, errors.DatabaseError("Failed to record pending payment").WithError(err)
	}

	logger.Info("Payment initiated", slog.String("orderId", orderID.String()), slog.String("provider", string(provider)), slog.String("providerOrderId", gatewayOrder.ID))

	return &models.PaymentInitiation{
		OrderID:         orderID,
		Provider:        provider,
		ProviderOrderID: gatewayOrder.ID,
		ClientSecret:    gatewayOrder.ClientSecret,
	}, nil
}

// ConfirmPayment captures the provider payment and marks the order paid only when the capture
// matches the pending payment and has completed.
func (s *paymentService) ConfirmPayment(ctx context.Context, orderID, userID uuid.UUID, req *models.ConfirmPaymentRequest) (*models.Order, error) {

	logger := middleware.LoggerFromContext(ctx)

	order, err := loadOwnedOrder(ctx, s.orderRepo, orderID, userID)
	if err != nil {
		return nil, err
	}

	if order.IsPaid {
		return nil, errors.AlreadyPaidError()
	}

	provider, gateway, err := s.gatewayFor(order.PaymentMethod)
	if err != nil {
		return nil, err
	}

	pending := order.PaymentResult.Gateway()
	if pending == nil || order.PaymentResult.Provider != provider {
		return nil, errors.BadRequestError("Payment has not been initiated for this order")
	}

	capture, err := gateway.Capture(ctx, req.ProviderOrderID)
	if err != nil {
		logger.Error("Failed to capture provider payment", slog.String("orderId", orderID.String()), slog.String("provider", string(provider)), slog.Any("error", err))
		return nil, errors.ThirdPartyError("Failed to capture payment with provider").WithError(err)
	}

	if capture.ID != pending.ID || capture.Status != models.CaptureStatusCompleted {
		metrics.PaymentVerificationFailed()
		logger.Warn("Payment verification failed",
			slog.String("orderId", orderID.String()),
			slog.String("expectedId", pending.ID),
			slog.String("capturedId", capture.ID),
			slog.String("status", capture.Status))

		return nil, errors.PaymentVerificationFailedError()
	}

	result := models.NewProviderPaymentResult(provider, models.ProviderPaymentResult{
		ID:           capture.ID,
		Status:       capture.Status,
		EmailAddress: capture.EmailAddress,
		PricePaid:    capture.AmountPaid,
	})

	return s.MarkOrderPaid(ctx, orderID, result)
}

func (s *paymentService) MarkOrderPaid(ctx context.Context, orderID uuid.UUID, result *models.PaymentResult) (*models.Order, error) {

	if err := result.Validate(); err != nil {
		return nil, errors.InternalError("Invalid payment result").WithError(err)
	}

	return s.commitPayment(ctx, orderID, func(*models.Order) *models.PaymentResult { return result })
}

func (s *paymentService) MarkOrderPaidManually(ctx context.Context, orderID, adminID uuid.UUID) (*models.Order, error) {

	return s.commitPayment(ctx, orderID, func(order *models.Order) *models.PaymentResult {
		return models.NewManualPaymentResult(order.PaymentMethod, adminID, s.now().UTC())
	})
}

// commitPayment flips the order to paid and takes its items out of stock, at most once per order.
func (s *paymentService) commitPayment(ctx context.Context, orderID uuid.UUID, resultFor func(*models.Order) *models.PaymentResult) (*models.Order, error) {

	logger := middleware.LoggerFromContext(ctx)
	paidAt := s.now().UTC()

	var paid *models.Order

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {

		order, err := s.orderRepo.GetOrderByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		if order.IsPaid {
			return repository.ErrAlreadyPaid
		}

		for _, item := range order.Items {
			if err := s.productRepo.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				if stdErrors.Is(err, sql.ErrNoRows) {
					return fmt.Errorf("product %s no longer exists", item.ProductID)
				}

				return err
			}
		}

		result := resultFor(order)
		if err := s.orderRepo.MarkPaid(ctx, order.ID, result, paidAt); err != nil {
			return err
		}

		order.IsPaid = true
		order.PaidAt = &paidAt
		order.PaymentResult = result

		event, err := newOrderEvent(models.EventOrderPaid, order)
		if err != nil {
			return err
		}

		if err := s.outboxRepo.InsertEvent(ctx, event); err != nil {
			return err
		}

		paid = order
		return nil
	})

	if err != nil {
		switch {
		case stdErrors.Is(err, sql.ErrNoRows):
			return nil, errors.NotFoundError("Order not found").WithError(err)
		case stdErrors.Is(err, repository.ErrAlreadyPaid):
			return nil, errors.AlreadyPaidError().WithError(err)
		}

		logger.Error("Failed to mark order paid", slog.String("orderId", orderID.String()), slog.Any("error", err))
		return nil, errors.DatabaseError("Failed to mark order paid").WithError(err)
	}

	metrics.PaymentConfirmed(string(paid.PaymentMethod))
	logger.Info("Order paid", slog.String("orderId", orderID.String()), slog.String("provider", string(paid.PaymentResult.Provider)))

	s.invalidateProducts(ctx, paid.Items)

	// reload for the buyer's name and email
	if withUser, err := s.orderRepo.GetOrderByID(ctx, orderID); err != nil {
		logger.Warn("Failed to reload paid order", slog.String("orderId", orderID.String()), slog.Any("error", err))
	} else {
		paid = withUser
		s.sendReceipt(ctx, paid)
	}

	return paid, nil
}

// invalidateProducts drops the cached copies whose stock just changed.
func (s *paymentService) invalidateProducts(ctx context.Context, items []models.OrderItem) {

	keys := make([]string, 0, len(items)+1)
	for _, item := range items {
		keys = append(keys, cache.ProductSlugKey(item.Slug))
	}
	keys = append(keys, cache.LatestProductsKey)

	if err := s.cache.Delete(ctx, keys...); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to invalidate product cache", slog.Any("error", err))
	}
}

func (s *paymentService) sendReceipt(ctx context.Context, order *models.Order) {

	if order.User == nil || order.User.Email == "" {
		return
	}

	if err := s.email.Send(ctx, sendGrid.OrderReceipt(order)); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to send purchase receipt", slog.String("orderId", order.ID.String()), slog.Any("error", err))
	}
}

func (s *paymentService) MarkOrderDelivered(ctx context.Context, orderID uuid.UUID) error {

	logger := middleware.LoggerFromContext(ctx)

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {

		order, err := s.orderRepo.GetOrderByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		if !order.IsPaid {
			return errors.NotYetPaidError()
		}

		if order.IsDelivered {
			return errors.AlreadyDeliveredError()
		}

		if err := s.orderRepo.MarkDelivered(ctx, order.ID, s.now().UTC()); err != nil {
			return err
		}

		event, err := newOrderEvent(models.EventOrderDelivered, order)
		if err != nil {
			return err
		}

		return s.outboxRepo.InsertEvent(ctx, event)
	})

	if err != nil {
		if appErr, ok := errors.IsAppError(err); ok {
			return appErr
		}

		switch {
		case stdErrors.Is(err, sql.ErrNoRows):
			return errors.NotFoundError("Order not found").WithError(err)
		case stdErrors.Is(err, repository.ErrAlreadyDelivered):
			return errors.AlreadyDeliveredError().WithError(err)
		}

		logger.Error("Failed to mark order delivered", slog.String("orderId", orderID.String()), slog.Any("error", err))
		return errors.DatabaseError("Failed to mark order delivered").WithError(err)
	}

	logger.Info("Order delivered", slog.String("orderId", orderID.String()))

	return nil
}
