package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one product entry in a cart. ProductID is its identity key.
type LineItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

type Cart struct {
	ID            uuid.UUID  `json:"id"`
	UserID        *uuid.UUID `json:"user_id,omitempty"`
	SessionCartID string     `json:"session_cart_id"`
	Items         []LineItem `json:"items"`
	Prices        Prices     `json:"prices"`
	// Revision is bumped on every write and guards conditional updates.
	Revision  int64     `json:"revision"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FindItem returns the index of the line for productID, or -1.
func (c *Cart) FindItem(productID uuid.UUID) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}

	return -1
}

// OwnerKey addresses a cart. When both fields are set the user id wins.
type OwnerKey struct {
	UserID        *uuid.UUID
	SessionCartID string
}

func (k OwnerKey) IsZero() bool {
	return k.UserID == nil && k.SessionCartID == ""
}

type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"omitempty,min=1"`
}

// CartMutation is the result of an add or remove, with a user facing message.
type CartMutation struct {
	Cart    *Cart  `json:"cart"`
	Message string `json:"message"`
}
