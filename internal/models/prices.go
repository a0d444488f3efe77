package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Prices is always derived from a cart's items, never set by a client.
type Prices struct {
	ItemsPrice    decimal.Decimal `json:"items_price"`
	ShippingPrice decimal.Decimal `json:"shipping_price"`
	TaxPrice      decimal.Decimal `json:"tax_price"`
	TotalPrice    decimal.Decimal `json:"total_price"`
}

// MarshalJSON renders every amount with exactly two decimals, e.g. "138.00".
func (p Prices) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ItemsPrice    string `json:"items_price"`
		ShippingPrice string `json:"shipping_price"`
		TaxPrice      string `json:"tax_price"`
		TotalPrice    string `json:"total_price"`
	}{
		ItemsPrice:    p.ItemsPrice.StringFixed(2),
		ShippingPrice: p.ShippingPrice.StringFixed(2),
		TaxPrice:      p.TaxPrice.StringFixed(2),
		TotalPrice:    p.TotalPrice.StringFixed(2),
	})
}

// Equal compares amounts numerically, so 10 and 10.00 match.
func (p Prices) Equal(other Prices) bool {
	return p.ItemsPrice.Equal(other.ItemsPrice) &&
		p.ShippingPrice.Equal(other.ShippingPrice) &&
		p.TaxPrice.Equal(other.TaxPrice) &&
		p.TotalPrice.Equal(other.TotalPrice)
}
