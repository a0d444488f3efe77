package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/google/uuid"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateOrderItems(ctx context.Context, orderID uuid.UUID, items []models.OrderItem) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetOrderByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]models.Order, int, error)
	ListOrders(ctx context.Context, page, size int) ([]models.Order, int, error)
	SetPaymentResult(ctx context.Context, id uuid.UUID, result *models.PaymentResult) error
	MarkPaid(ctx context.Context, id uuid.UUID, result *models.PaymentResult, paidAt time.Time) error
	MarkDelivered(ctx context.Context, id uuid.UUID, deliveredAt time.Time) error
	GetSummary(ctx context.Context) (*models.OrderSummary, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
}

type orderRepository struct {
	DB *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepository {
	return &orderRepository{DB: db}
}

const orderColumns = `o.id, o.user_id, o.shipping_address, o.payment_method, o.items_price, o.shipping_price, o.tax_price, o.total_price,
	o.is_paid, o.paid_at, o.is_delivered, o.delivered_at, o.payment_result, o.created_at`

func scanOrder(row rowScanner, extra ...any) (*models.Order, error) {
	order := &models.Order{}

	var addressJSON, resultJSON []byte

	dest := []any{&order.ID, &order.UserID, &addressJSON, &order.PaymentMethod,
		&order.Prices.ItemsPrice, &order.Prices.ShippingPrice, &order.Prices.TaxPrice, &order.Prices.TotalPrice,
		&order.IsPaid, &order.PaidAt, &order.IsDelivered, &order.DeliveredAt, &resultJSON, &order.CreatedAt}

	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(addressJSON, &order.ShippingAddress); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shipping address: %w", err)
	}

	if len(resultJSON) > 0 {
		order.PaymentResult = &models.PaymentResult{}
		if err := json.Unmarshal(resultJSON, order.PaymentResult); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payment result: %w", err)
		}
	}

	return order, nil
}

func (r *orderRepository) CreateOrder(ctx context.Context, order *models.Order) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	addressJSON, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping address: %w", err)
	}

	query := `
		INSERT INTO orders (id, user_id, shipping_address, payment_method, items_price, shipping_price, tax_price, total_price, is_paid, is_delivered, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false, false, NOW())
		RETURNING created_at
	`

	err = conn(ctx, r.DB).QueryRowContext(dbCtx, query, order.ID, order.UserID, addressJSON, order.PaymentMethod,
		order.Prices.ItemsPrice, order.Prices.ShippingPrice, order.Prices.TaxPrice, order.Prices.TotalPrice).Scan(&order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

func (r *orderRepository) CreateOrderItems(ctx context.Context, orderID uuid.UUID, items []models.OrderItem) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO order_items (order_id, product_id, name, slug, image, price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, item := range items {
		if _, err := conn(ctx, r.DB).ExecContext(dbCtx, query, orderID, item.ProductID, item.Name, item.Slug, item.Image, item.Price, item.Quantity); err != nil {
			return fmt.Errorf("failed to insert an order item: %w", err)
		}
	}

	return nil
}

// GetOrderByID loads the order with its items and the buyer's name and email.
func (r *orderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	user := &models.OrderUser{}

	query := `SELECT ` + orderColumns + `, u.name, u.email FROM orders o JOIN users u ON u.id = o.user_id WHERE o.id = $1`

	order, err := scanOrder(conn(ctx, r.DB).QueryRowContext(dbCtx, query, id), &user.Name, &user.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to get the order: %w", err)
	}

	order.User = user

	if order.Items, err = r.getOrderItems(dbCtx, id); err != nil {
		return nil, err
	}

	return order, nil
}

// GetOrderByIDForUpdate locks the order row until the surrounding transaction ends.
func (r *orderRepository) GetOrderByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1 FOR UPDATE`

	order, err := scanOrder(conn(ctx, r.DB).QueryRowContext(dbCtx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to lock the order: %w", err)
	}

	if order.Items, err = r.getOrderItems(dbCtx, id); err != nil {
		return nil, err
	}

	return order, nil
}

// getOrderItems expects a ctx that already carries the DB timeout.
func (r *orderRepository) getOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {

	query := `SELECT product_id, name, slug, image, price, quantity FROM order_items WHERE order_id = $1 ORDER BY id`

	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get the order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem

	for rows.Next() {
		item := models.OrderItem{OrderID: orderID}

		if err := rows.Scan(&item.ProductID, &item.Name, &item.Slug, &item.Image, &item.Price, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

// List the orders of a user, newest first
func (r *orderRepository) ListOrdersByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]models.Order, int, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int
	if err := conn(ctx, r.DB).QueryRowContext(dbCtx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.user_id = $1 ORDER BY o.created_at DESC LIMIT $2 OFFSET $3`

	rows, err := conn(ctx, r.DB).QueryContext(dbCtx, query, userID, size, (page-1)*size)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders, err := collectOrders(rows, false)
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// List every order with its buyer, newest first
func (r *orderRepository) ListOrders(ctx context.Context, page, size int) ([]models.Order, int, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int
	if err := conn(ctx, r.DB).QueryRowContext(dbCtx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := `SELECT ` + orderColumns + `, u.name, u.email FROM orders o JOIN users u ON u.id = o.user_id ORDER BY o.created_at DESC LIMIT $1 OFFSET $2`

	rows, err := conn(ctx, r.DB).QueryContext(dbCtx, query, size, (page-1)*size)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders, err := collectOrders(rows, true)
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func collectOrders(rows *sql.Rows, withUser bool) ([]models.Order, error) {

	orders := []models.Order{}

	for rows.Next() {
		var (
			order *models.Order
			err   error
		)

		if withUser {
			user := &models.OrderUser{}
			order, err = scanOrder(rows, &user.Name, &user.Email)
			if order != nil {
				order.User = user
			}
		} else {
			order, err = scanOrder(rows)
		}

		if err != nil {
			return nil, fmt.Errorf("failed to scan the orders: %w", err)
		}

		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// SetPaymentResult records a pending provider reference on an unpaid order.
func (r *orderRepository) SetPaymentResult(ctx context.Context, id uuid.UUID, result *models.PaymentResult) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal payment result: %w", err)
	}

	res, err := conn(ctx, r.DB).ExecContext(dbCtx, `UPDATE orders SET payment_result = $1 WHERE id = $2 AND is_paid = false`, resultJSON, id)

	return mapZeroRows(expectOneRow(res, err), ErrAlreadyPaid)
}

// MarkPaid is the only place is_paid flips. It never applies twice to the same order.
func (r *orderRepository) MarkPaid(ctx context.Context, id uuid.UUID, result *models.PaymentResult, paidAt time.Time) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal payment result: %w", err)
	}

	res, err := conn(ctx, r.DB).ExecContext(dbCtx,
		`UPDATE orders SET is_paid = true, paid_at = $1, payment_result = $2 WHERE id = $3 AND is_paid = false`,
		paidAt, resultJSON, id)

	return mapZeroRows(expectOneRow(res, err), ErrAlreadyPaid)
}

func (r *orderRepository) MarkDelivered(ctx context.Context, id uuid.UUID, deliveredAt time.Time) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	res, err := conn(ctx, r.DB).ExecContext(dbCtx,
		`UPDATE orders SET is_delivered = true, delivered_at = $1 WHERE id = $2 AND is_paid = true AND is_delivered = false`,
		deliveredAt, id)

	return mapZeroRows(expectOneRow(res, err), ErrAlreadyDelivered)
}

func (r *orderRepository) GetSummary(ctx context.Context) (*models.OrderSummary, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	summary := &models.OrderSummary{}

	query := `
		SELECT
			(SELECT COUNT(*) FROM orders),
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM users),
			(SELECT COALESCE(SUM(total_price), 0) FROM orders)
	`

	if err := conn(ctx, r.DB).QueryRowContext(dbCtx, query).Scan(&summary.OrdersCount, &summary.ProductsCount, &summary.UsersCount, &summary.TotalSales); err != nil {
		return nil, fmt.Errorf("failed to get counts: %w", err)
	}

	salesQuery := `
		SELECT to_char(created_at, 'MM/YY') AS month, SUM(total_price)
		FROM orders
		GROUP BY month
		ORDER BY MIN(created_at)
	`

	rows, err := conn(ctx, r.DB).QueryContext(dbCtx, salesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to get monthly sales: %w", err)
	}
	defer rows.Close()

	summary.SalesData = []models.MonthlySales{}

	for rows.Next() {
		var sales models.MonthlySales
		if err := rows.Scan(&sales.Month, &sales.TotalSales); err != nil {
			return nil, fmt.Errorf("failed to scan monthly sales: %w", err)
		}

		summary.SalesData = append(summary.SalesData, sales)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly sales: %w", err)
	}

	latest, _, err := r.ListOrders(ctx, 1, 6)
	if err != nil {
		return nil, err
	}

	summary.LatestSales = latest

	return summary, nil
}

// DeleteOrder removes the order; its items go with it through ON DELETE CASCADE.
func (r *orderRepository) DeleteOrder(ctx context.Context, id uuid.UUID) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	res, err := conn(ctx, r.DB).ExecContext(dbCtx, `DELETE FROM orders WHERE id = $1`, id)

	return expectOneRow(res, err)
}

func mapZeroRows(err error, target error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return target
	}

	return err
}
