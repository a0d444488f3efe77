// Package pricing derives cart totals from line items.
package pricing

import (
	"errors"
	"fmt"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/shopspring/decimal"
)

var (
	// FreeShippingThreshold is the items price at which shipping becomes free.
	FreeShippingThreshold = decimal.NewFromInt(100)
	FlatShippingPrice     = decimal.NewFromInt(10)
	TaxRate               = decimal.RequireFromString("0.15")
)

var (
	ErrNegativePrice   = errors.New("unit price must not be negative")
	ErrPricePrecision  = errors.New("unit price must have at most two decimal places")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Round2 rounds half away from zero to two decimal places, which is half-up for the
// non-negative amounts handled here.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ValidateItems rejects lines that Calculate must never see.
func ValidateItems(items []models.LineItem) error {
	for _, item := range items {
		if item.Price.IsNegative() {
			return fmt.Errorf("%s: %w", item.Name, ErrNegativePrice)
		}

		if !item.Price.Equal(item.Price.Round(2)) {
			return fmt.Errorf("%s: %w", item.Name, ErrPricePrecision)
		}

		if item.Quantity < 1 {
			return fmt.Errorf("%s: %w", item.Name, ErrInvalidQuantity)
		}
	}

	return nil
}

// Calculate is pure: the same items always yield the same prices.
func Calculate(items []models.LineItem) models.Prices {
	itemsPrice := decimal.Zero
	for _, item := range items {
		itemsPrice = itemsPrice.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	itemsPrice = Round2(itemsPrice)

	shippingPrice := FlatShippingPrice
	if itemsPrice.GreaterThanOrEqual(FreeShippingThreshold) {
		shippingPrice = decimal.Zero
	}

	taxPrice := Round2(TaxRate.Mul(itemsPrice))
	totalPrice := Round2(itemsPrice.Add(shippingPrice).Add(taxPrice))

	return models.Prices{
		ItemsPrice:    itemsPrice,
		ShippingPrice: shippingPrice,
		TaxPrice:      taxPrice,
		TotalPrice:    totalPrice,
	}
}

// Zero is what a cart carries right after checkout empties it.
func Zero() models.Prices {
	return models.Prices{
		ItemsPrice:    decimal.Zero,
		ShippingPrice: decimal.Zero,
		TaxPrice:      decimal.Zero,
		TotalPrice:    decimal.Zero,
	}
}
