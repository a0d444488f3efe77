package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/pricing"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/aaravmahajanofficial/storefront/internal/repositories/mocks"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type orderServiceDeps struct {
	orders *mocks.OrderRepository
	carts  *mocks.CartRepository
	users  *mocks.UserRepository
	outbox *mocks.OutboxRepository
	tx     *mocks.Transactor
}

func (d orderServiceDeps) assertExpectations(t *testing.T) {
	d.orders.AssertExpectations(t)
	d.carts.AssertExpectations(t)
	d.users.AssertExpectations(t)
	d.outbox.AssertExpectations(t)
	d.tx.AssertExpectations(t)
}

func setupOrderService() (service.OrderService, orderServiceDeps) {
	deps := orderServiceDeps{
		orders: new(mocks.OrderRepository),
		carts:  new(mocks.CartRepository),
		users:  new(mocks.UserRepository),
		outbox: new(mocks.OutboxRepository),
		tx:     new(mocks.Transactor),
	}

	return service.NewOrderService(deps.orders, deps.carts, deps.users, deps.outbox, deps.tx), deps
}

// runInTx makes the Transactor mock run the unit of work inline.
func runInTx(tx *mocks.Transactor) {
	tx.On("WithinTx", mock.Anything, mock.Anything).Return(func(ctx context.Context, fn func(context.Context) error) error {
		return fn(ctx)
	}).Once()
}

func checkoutUser(userID uuid.UUID) *models.User {
	return &models.User{
		ID:    userID,
		Name:  "Jane Buyer",
		Email: "jane@example.com",
		Address: &models.ShippingAddress{
			FullName:      "Jane Buyer",
			StreetAddress: "1 Market Street",
			City:          "Springfield",
			PostalCode:    "12345",
			Country:       "United States",
		},
		PaymentMethod: models.PaymentMethodPayPal,
	}
}

func checkoutCart(userID uuid.UUID) *models.Cart {
	items := []models.LineItem{{
		ProductID: uuid.New(),
		Name:      "Polo Sporting Stretch Shirt",
		Slug:      "polo-sporting-stretch-shirt",
		Image:     "/images/p1-1.jpg",
		Price:     decimal.RequireFromString("60.00"),
		Quantity:  2,
	}}

	return &models.Cart{ID: uuid.New(), UserID: &userID, Items: items, Prices: pricing.Calculate(items), Revision: 5}
}

func TestOrderService_CreateOrder(t *testing.T) {
	userID := uuid.New()
	owner := models.OwnerKey{UserID: &userID}

	t.Run("Success - Order Placed And Cart Cleared", func(t *testing.T) {
		// Arrange
		orderService, deps := setupOrderService()
		cart := checkoutCart(userID)
		user := checkoutUser(userID)

		deps.carts.On("GetCartByOwner", mock.Anything, owner).Return(cart, nil).Once()
		deps.users.On("GetUserByID", mock.Anything, userID).Return(user, nil).Once()
		runInTx(deps.tx)
		deps.orders.On("CreateOrder", mock.Anything, mock.MatchedBy(func(o *models.Order) bool {
			return o.UserID == userID &&
				o.PaymentMethod == models.PaymentMethodPayPal &&
				o.ShippingAddress == *user.Address &&
				o.Prices.Equal(cart.Prices)
		})).Return(nil).Once()
		deps.orders.On("CreateOrderItems", mock.Anything, mock.AnythingOfType("uuid.UUID"), mock.MatchedBy(func(items []models.OrderItem) bool {
			return len(items) == 1 && items[0].Quantity == 2 && items[0].Price.Equal(decimal.RequireFromString("60.00"))
		})).Return(nil).Once()
		deps.carts.On("ClearCart", mock.Anything, cart.ID, int64(5)).Return(nil).Once()
		deps.outbox.On("InsertEvent", mock.Anything, mock.MatchedBy(func(e *models.OutboxEvent) bool {
			return e.EventType == models.EventOrderCreated
		})).Return(nil).Once()

		// Act
		placement, err := orderService.CreateOrder(t.Context(), userID)

		// Assert
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, placement.OrderID)
		assert.Equal(t, "/order/"+placement.OrderID.String(), placement.RedirectTo)
		deps.assertExpectations(t)
	})

	t.Run("Failure - No Cart", func(t *testing.T) {
		// Arrange
		orderService, deps := setupOrderService()

		deps.carts.On("GetCartByOwner", mock.Anything, owner).Return(nil, sql.ErrNoRows).Once()

		// Act
		placement, err := orderService.CreateOrder(t.Context(), userID)

		// Assert
		assert.Nil(t, placement)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeCartEmpty, appErr.Code)
		assert.Equal(t, "/cart", appErr.RedirectTo)
		deps.users.AssertNotCalled(t, "GetUserByID", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Empty Cart", func(t *testing.T) {
		// Arrange
		orderService, deps := setupOrderService()

		deps.carts.On("GetCartByOwner", mock.Anything, owner).Return(&models.Cart{ID: uuid.New(), UserID: &userID, Items: []models.LineItem{}}, nil).Once()

		// Act
		_, err := orderService.CreateOrder(t.Context(), userID)

		// Assert
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeCartEmpty))
	})

	t.Run("Failure - No Shipping Address", func(t *testing.T) {
		// Arrange
		orderService, deps := setupOrderService()
		user := checkoutUser(userID)
		user.Address = nil

		deps.carts.On("GetCartByOwner", mock.Anything, owner).Return(checkoutCart(userID), nil).Once()
		deps.users.On("GetUserByID", mock.Anything, userID).Return(user, nil).Once()

		// Act
		_, err := orderService.CreateOrder(t.Context(), userID)

		// Assert
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNoShippingAddress, appErr.Code)
		assert.Equal(t, "/shipping-address", appErr.RedirectTo)
		deps.tx.AssertNotCalled(t, "WithinTx", mock.Anything, mock.Anything)
	})

	t.Run("Failure - No Payment Method", func(t *testing.T) {
		// Arrange
		orderService, deps := setupOrderService()
		user := checkoutUser(userID)
		user.PaymentMethod = ""

		deps.carts.On("GetCartByOwner", mock.Anything, owner).Return(checkoutCart(userID), nil).Once()
		deps.users.On("GetUserByID", mock.Anything, userID).Return(user, nil).Once()

		// Act
		_, err := orderService.CreateOrder(t.Context(), userID)

		// Assert
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNoPaymentMethod, appErr.Code)
		assert.Equal(t, "/payment-method", appErr.RedirectTo)
	})

	t.Run("Failure - Cart Changed During Checkout", func(t *testing.T) {
		// Arrange
		orderService, deps := setupOrderService()
		cart := checkoutCart(userID)

		deps.carts.On("GetCartByOwner", mock.Anything, owner).Return(cart, nil).Once()
		deps.users.On("GetUserByID", mock.Anything, userID).Return(checkoutUser(userID), nil).Once()
		runInTx(deps.tx)
		deps.orders.On("CreateOrder", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil).Once()
		deps.orders.On("CreateOrderItems", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
		deps.carts.On("ClearCart", mock.Anything, cart.ID, int64(5)).Return(repository.ErrRevisionConflict).Once()

		// Act
		placement, err := orderService.CreateOrder(t.Context(), userID)

		// Assert
		assert.Nil(t, placement)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeConflict))
		assert.ErrorIs(t, err, repository.ErrRevisionConflict)
		deps.outbox.AssertNotCalled(t, "InsertEvent", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Outbox Insert Aborts The Order", func(t *testing.T) {
		// Arrange
		orderService, deps := setupOrderService()
		cart := checkoutCart(userID)
		dbErr := errors.New("outbox_events does not exist")

		deps.carts.On("GetCartByOwner", mock.Anything, owner).Return(cart, nil).Once()
		deps.users.On("GetUserByID", mock.Anything, userID).Return(checkoutUser(userID), nil).Once()
		runInTx(deps.tx)
		deps.orders.On("CreateOrder", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil).Once()
		deps.orders.On("CreateOrderItems", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
		deps.carts.On("ClearCart", mock.Anything, cart.ID, int64(5)).Return(nil).Once()
		deps.outbox.On("InsertEvent", mock.Anything, mock.Anything).Return(dbErr).Once()

		// Act
		_, err := orderService.CreateOrder(t.Context(), userID)

		// Assert
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeDatabaseError))
		assert.ErrorIs(t, err, dbErr)
		deps.assertExpectations(t)
	})

	t.Run("Success - Placed Order Keeps Its Prices After Repricing", func(t *testing.T) {
		// Arrange
		orderService, deps := setupOrderService()
		cart := checkoutCart(userID)
		product := &models.Product{ID: cart.Items[0].ProductID, Slug: cart.Items[0].Slug, Price: cart.Items[0].Price}

		var stored models.Order
		var storedItems []models.OrderItem

		deps.carts.On("GetCartByOwner", mock.Anything, owner).Return(cart, nil).Once()
		deps.users.On("GetUserByID", mock.Anything, userID).Return(checkoutUser(userID), nil).Once()
		runInTx(deps.tx)
		deps.orders.On("CreateOrder", mock.Anything, mock.AnythingOfType("*models.Order")).
			Run(func(args mock.Arguments) { stored = *args.Get(1).(*models.Order) }).
			Return(nil).Once()
		deps.orders.On("CreateOrderItems", mock.Anything, mock.AnythingOfType("uuid.UUID"), mock.Anything).
			Run(func(args mock.Arguments) { storedItems = args.Get(2).([]models.OrderItem) }).
			Return(nil).Once()
		deps.carts.On("ClearCart", mock.Anything, cart.ID, int64(5)).Return(nil).Once()
		deps.outbox.On("InsertEvent", mock.Anything, mock.Anything).Return(nil).Once()
		deps.orders.On("GetOrderByID", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(func(context.Context, uuid.UUID) (*models.Order, error) {
			reloaded := stored
			reloaded.Items = storedItems
			return &reloaded, nil
		}).Once()

		placement, err := orderService.CreateOrder(t.Context(), userID)
		require.NoError(t, err)

		product.Price = decimal.RequireFromString("75.00")
		cart.Items[0].Price = product.Price

		// Act
		order, err := orderService.GetOrder(t.Context(), placement.OrderID, userID)

		// Assert
		require.NoError(t, err)
		require.Len(t, order.Items, 1)
		assert.Equal(t, product.ID, order.Items[0].ProductID)
		assert.Equal(t, "60.00", order.Items[0].Price.StringFixed(2))
		assert.Equal(t, "138.00", order.Prices.TotalPrice.StringFixed(2))
		deps.assertExpectations(t)
	})
}

func TestOrderService_GetOrder(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	t.Run("Success - Own Order", func(t *testing.T) {
		// Arrange
		orderService, deps := setupOrderService()
		expected := &models.Order{ID: orderID, UserID: userID}

		deps.orders.On("GetOrderByID", mock.Anything, orderID).Return(expected, nil).Once()

		// Act
		order, err := orderService.GetOrder(t.Context(), orderID, userID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, expected, order)
	})

	t.Run("Failure - Another User's Order", func(t *testing.T) {
		// Arrange
		orderService, deps := setupOrderService()

		deps.orders.On("GetOrderByID", mock.Anything, orderID).Return(&models.Order{ID: orderID, UserID: uuid.New()}, nil).Once()

		// Act
		order, err := orderService.GetOrder(t.Context(), orderID, userID)

		// Assert
		assert.Nil(t, order)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeNotFound))
	})

	t.Run("Failure - Missing Order", func(t *testing.T) {
		// Arrange
		orderService, deps := setupOrderService()

		deps.orders.On("GetOrderByID", mock.Anything, orderID).Return(nil, sql.ErrNoRows).Once()

		// Act
		_, err := orderService.GetOrder(t.Context(), orderID, userID)

		// Assert
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeNotFound))
	})
}

func TestOrderService_Listings(t *testing.T) {
	userID := uuid.New()

	t.Run("Success - My Orders", func(t *testing.T) {
		// Arrange
		orderService, deps := setupOrderService()
		expected := []models.Order{{ID: uuid.New(), UserID: userID}}

		deps.orders.On("ListOrdersByUser", mock.Anything, userID, 2, 10).Return(expected, 11, nil).Once()

		// Act
		orders, total, err := orderService.ListMyOrders(t.Context(), userID, 2, 10)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, expected, orders)
		assert.Equal(t, 11, total)
	})

	t.Run("Failure - All Orders Database Error", func(t *testing.T) {
		// Arrange
		orderService, deps := setupOrderService()

		deps.orders.On("ListOrders", mock.Anything, 1, 10).Return(nil, 0, errors.New("timeout")).Once()

		// Act
		orders, total, err := orderService.ListOrders(t.Context(), 1, 10)

		// Assert
		assert.Nil(t, orders)
		assert.Zero(t, total)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeDatabaseError))
	})

	t.Run("Success - Summary", func(t *testing.T) {
		// Arrange
		orderService, deps := setupOrderService()
		expected := &models.OrderSummary{OrdersCount: 3, ProductsCount: 8, UsersCount: 2, TotalSales: decimal.RequireFromString("276.00")}

		deps.orders.On("GetSummary", mock.Anything).Return(expected, nil).Once()

		// Act
		summary, err := orderService.GetSummary(t.Context())

		// Assert
		require.NoError(t, err)
		assert.Equal(t, expected, summary)
	})
}

func TestOrderService_DeleteOrder(t *testing.T) {
	t.Run("Success - Order Removed", func(t *testing.T) {
		// Arrange
		orderService, deps := setupOrderService()
		orderID := uuid.New()

		deps.orders.On("DeleteOrder", mock.Anything, orderID).Return(nil).Once()

		// Act
		err := orderService.DeleteOrder(t.Context(), orderID)

		// Assert
		require.NoError(t, err)
		deps.assertExpectations(t)
	})

	t.Run("Failure - Order Not Found", func(t *testing.T) {
		// Arrange
		orderService, deps := setupOrderService()
		orderID := uuid.New()

		deps.orders.On("DeleteOrder", mock.Anything, orderID).Return(sql.ErrNoRows).Once()

		// Act
		err := orderService.DeleteOrder(t.Context(), orderID)

		// Assert
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeNotFound))
	})

	t.Run("Failure - Database Error", func(t *testing.T) {
		// Arrange
		orderService, deps := setupOrderService()

		deps.orders.On("DeleteOrder", mock.Anything, mock.Anything).Return(errors.New("deadlock detected")).Once()

		// Act
		err := orderService.DeleteOrder(t.Context(), uuid.New())

		// Assert
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeDatabaseError))
	})
}
