package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Category    string          `json:"category"`
	Brand       string          `json:"brand"`
	Description string          `json:"description"`
	Images      []string        `json:"images"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	IsFeatured  bool            `json:"is_featured"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// FirstImage is what a cart line shows for the product.
func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}

	return p.Images[0]
}

// ProductFilter narrows the admin product listing.
type ProductFilter struct {
	Query    string
	Category string
	Page     int
	Size     int
}
