package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodPayPal         PaymentMethod = "PayPal"
	PaymentMethodStripe         PaymentMethod = "Stripe"
	PaymentMethodCashOnDelivery PaymentMethod = "CashOnDelivery"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodPayPal, PaymentMethodStripe, PaymentMethodCashOnDelivery:
		return true
	}

	return false
}

type ShippingAddress struct {
	FullName      string `json:"full_name" validate:"required,min=3,max=120"`
	StreetAddress string `json:"street_address" validate:"required,min=3,max=200"`
	City          string `json:"city" validate:"required,min=3,max=100"`
	PostalCode    string `json:"postal_code" validate:"required,min=3,max=20"`
	Country       string `json:"country" validate:"required,min=3,max=100"`
}

// OrderItem is a snapshot of a cart line taken when the order is placed.
type OrderItem struct {
	OrderID   uuid.UUID       `json:"order_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

type OrderUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Order struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	Prices          Prices          `json:"prices"`
	IsPaid          bool            `json:"is_paid"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	IsDelivered     bool            `json:"is_delivered"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	PaymentResult   *PaymentResult  `json:"payment_result,omitempty"`
	Items           []OrderItem     `json:"items"`
	User            *OrderUser      `json:"user,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// OrderPlacement tells the caller where to go after a successful checkout.
type OrderPlacement struct {
	OrderID    uuid.UUID `json:"order_id"`
	RedirectTo string    `json:"redirect_to"`
}

type MonthlySales struct {
	Month      string          `json:"month"`
	TotalSales decimal.Decimal `json:"total_sales"`
}

type OrderSummary struct {
	OrdersCount   int             `json:"orders_count"`
	ProductsCount int             `json:"products_count"`
	UsersCount    int             `json:"users_count"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	SalesData     []MonthlySales  `json:"sales_data"`
	LatestSales   []Order         `json:"latest_sales"`
}
