package service

import (
	"context"
	"database/sql"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/google/uuid"
)

type OrderService interface {
	CreateOrder(ctx context.Context, userID uuid.UUID) (*models.OrderPlacement, error)
	GetOrder(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	ListMyOrders(ctx context.Context, userID uuid.UUID, page, size int) ([]models.Order, int, error)
	ListOrders(ctx context.Context, page, size int) ([]models.Order, int, error)
	GetOrderByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	GetSummary(ctx context.Context) (*models.OrderSummary, error)
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
}

type orderService struct {
	orderRepo  repository.OrderRepository
	cartRepo   repository.CartRepository
	userRepo   repository.UserRepository
	outboxRepo repository.OutboxRepository
	tx         repository.Transactor
}

func NewOrderService(orderRepo repository.OrderRepository, cartRepo repository.CartRepository, userRepo repository.UserRepository, outboxRepo repository.OutboxRepository, tx repository.Transactor) OrderService {
	return &orderService{
		orderRepo:  orderRepo,
		cartRepo:   cartRepo,
		userRepo:   userRepo,
		outboxRepo: outboxRepo,
		tx:         tx,
	}
}

// newOrderEvent builds the outbox row announcing a change to order.
func newOrderEvent(eventType string, order *models.Order) (*models.OutboxEvent, error) {

	payload, err := json.Marshal(models.OrderEventPayload{
		OrderID:       order.ID,
		UserID:        order.UserID,
		PaymentMethod: order.PaymentMethod,
		TotalPrice:    order.Prices.TotalPrice.StringFixed(2),
		OccurredAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	return &models.OutboxEvent{
		ID:          uuid.New(),
		AggregateID: order.ID,
		EventType:   eventType,
		Payload:     payload,
	}, nil
}

func (s *orderService) CreateOrder(ctx context.Context, userID uuid.UUID) (*models.OrderPlacement, error) {

	logger := middleware.LoggerFromContext(ctx)

	cart, err := s.cartRepo.GetCartByOwner(ctx, models.OwnerKey{UserID: &userID})
	if err != nil && !stdErrors.Is(err, sql.ErrNoRows) {
		return nil, errors.DatabaseError("Failed to get cart").WithError(err)
	}

	if cart == nil || len(cart.Items) == 0 {
		return nil, errors.CartEmptyError()
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("User not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to get user").WithError(err)
	}

	if user.Address == nil {
		return nil, errors.NoShippingAddressError()
	}

	if user.PaymentMethod == "" {
		return nil, errors.NoPaymentMethodError()
	}

	order := &models.Order{
		ID:              uuid.New(),
		UserID:          userID,
		ShippingAddress: *user.Address,
		PaymentMethod:   user.PaymentMethod,
		Prices:          cart.Prices,
	}

	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		items = append(items, models.OrderItem{
			OrderID:   order.ID,
			ProductID: line.ProductID,
			Name:      line.Name,
			Slug:      line.Slug,
			Image:     line.Image,
			Price:     line.Price,
			Quantity:  line.Quantity,
		})
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {

		if err := s.orderRepo.CreateOrder(ctx, order); err != nil {
			return err
		}

		if err := s.orderRepo.CreateOrderItems(ctx, order.ID, items); err != nil {
			return err
		}

		// the cart must still be the one that was priced above
		if err := s.cartRepo.ClearCart(ctx, cart.ID, cart.Revision); err != nil {
			return err
		}

		event, err := newOrderEvent(models.EventOrderCreated, order)
		if err != nil {
			return err
		}

		return s.outboxRepo.InsertEvent(ctx, event)
	})

	if err != nil {
		if stdErrors.Is(err, repository.ErrRevisionConflict) {
			return nil, errors.ConflictError("Cart changed while placing the order, please review it and try again").WithError(err)
		}

		logger.Error("Failed to place order", slog.String("userId", userID.String()), slog.Any("error", err))
		return nil, errors.DatabaseError("Failed to place order").WithError(err)
	}

	order.Items = items
	metrics.OrderCreated()

	logger.Info("Order placed", slog.String("orderId", order.ID.String()), slog.String("total", order.Prices.TotalPrice.StringFixed(2)))

	return &models.OrderPlacement{OrderID: order.ID, RedirectTo: "/order/" + order.ID.String()}, nil
}

// GetOrder hides other users' orders behind NotFound.
func (s *orderService) GetOrder(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	return loadOwnedOrder(ctx, s.orderRepo, orderID, userID)
}

func (s *orderService) ListMyOrders(ctx context.Context, userID uuid.UUID, page, size int) ([]models.Order, int, error) {

	orders, total, err := s.orderRepo.ListOrdersByUser(ctx, userID, page, size)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to fetch orders").WithError(err)
	}

	return orders, total, nil
}

func (s *orderService) ListOrders(ctx context.Context, page, size int) ([]models.Order, int, error) {

	orders, total, err := s.orderRepo.ListOrders(ctx, page, size)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to fetch orders").WithError(err)
	}

	return orders, total, nil
}

func (s *orderService) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return loadOrder(ctx, s.orderRepo, orderID)
}

func (s *orderService) GetSummary(ctx context.Context) (*models.OrderSummary, error) {

	summary, err := s.orderRepo.GetSummary(ctx)
	if err != nil {
		return nil, errors.DatabaseError("Failed to build order summary").WithError(err)
	}

	return summary, nil
}

// DeleteOrder removes an order and, through the cascade, its line items.
func (s *orderService) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {

	if err := s.orderRepo.DeleteOrder(ctx, orderID); err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return errors.NotFoundError("Order not found").WithError(err)
		}

		return errors.DatabaseError("Failed to delete order").WithError(err)
	}

	return nil
}

func loadOrder(ctx context.Context, repo repository.OrderRepository, orderID uuid.UUID) (*models.Order, error) {

	order, err := repo.GetOrderByID(ctx, orderID)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Order not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to get order").WithError(err)
	}

	return order, nil
}

func loadOwnedOrder(ctx context.Context, repo repository.OrderRepository, orderID, userID uuid.UUID) (*models.Order, error) {

	order, err := loadOrder(ctx, repo, orderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != userID {
		return nil, errors.NotFoundError("Order not found")
	}

	return order, nil
}
