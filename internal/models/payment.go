package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentProvider string

const (
	ProviderPayPal PaymentProvider = "paypal"
	ProviderStripe PaymentProvider = "stripe"
	ProviderManual PaymentProvider = "manual"
)

// CaptureStatusCompleted is the only capture status that marks an order paid.
const CaptureStatusCompleted = "COMPLETED"

type ProviderPaymentResult struct {
	ID           string          `json:"id"`
	Status       string          `json:"status"`
	EmailAddress string          `json:"email_address"`
	PricePaid    decimal.Decimal `json:"price_paid"`
}

type ManualPaymentResult struct {
	Method      PaymentMethod `json:"method"`
	ConfirmedBy uuid.UUID     `json:"confirmed_by"`
	ConfirmedAt time.Time     `json:"confirmed_at"`
}

// PaymentResult is a tagged union: exactly the variant named by Provider is set.
type PaymentResult struct {
	Provider PaymentProvider        `json:"provider"`
	PayPal   *ProviderPaymentResult `json:"paypal,omitempty"`
	Stripe   *ProviderPaymentResult `json:"stripe,omitempty"`
	Manual   *ManualPaymentResult   `json:"manual,omitempty"`
}

var ErrInvalidPaymentResult = errors.New("payment result variant does not match provider")

func NewProviderPaymentResult(provider PaymentProvider, result ProviderPaymentResult) *PaymentResult {
	switch provider {
	case ProviderPayPal:
		return &PaymentResult{Provider: provider, PayPal: &result}
	case ProviderStripe:
		return &PaymentResult{Provider: provider, Stripe: &result}
	}

	return nil
}

func NewManualPaymentResult(method PaymentMethod, adminID uuid.UUID, at time.Time) *PaymentResult {
	return &PaymentResult{
		Provider: ProviderManual,
		Manual:   &ManualPaymentResult{Method: method, ConfirmedBy: adminID, ConfirmedAt: at},
	}
}

// Gateway returns the provider variant, or nil for manual results.
func (r *PaymentResult) Gateway() *ProviderPaymentResult {
	if r == nil {
		return nil
	}

	switch r.Provider {
	case ProviderPayPal:
		return r.PayPal
	case ProviderStripe:
		return r.Stripe
	}

	return nil
}

func (r *PaymentResult) Validate() error {
	set := 0
	for _, present := range []bool{r.PayPal != nil, r.Stripe != nil, r.Manual != nil} {
		if present {
			set++
		}
	}

	if set != 1 {
		return ErrInvalidPaymentResult
	}

	switch r.Provider {
	case ProviderPayPal, ProviderStripe:
		if r.Gateway() == nil {
			return ErrInvalidPaymentResult
		}
	case ProviderManual:
		if r.Manual == nil {
			return ErrInvalidPaymentResult
		}
	default:
		return ErrInvalidPaymentResult
	}

	return nil
}

func ProviderFor(method PaymentMethod) (PaymentProvider, bool) {
	switch method {
	case PaymentMethodPayPal:
		return ProviderPayPal, true
	case PaymentMethodStripe:
		return ProviderStripe, true
	}

	return "", false
}

// PaymentInitiation is handed to the client to complete payment with the provider.
type PaymentInitiation struct {
	OrderID         uuid.UUID       `json:"order_id"`
	Provider        PaymentProvider `json:"provider"`
	ProviderOrderID string          `json:"provider_order_id"`
	ClientSecret    string          `json:"client_secret,omitempty"`
}

type ConfirmPaymentRequest struct {
	ProviderOrderID string `json:"provider_order_id" validate:"required"`
}

// GatewayOrder is a payment created at the provider and awaiting capture.
type GatewayOrder struct {
	ID           string
	Status       string
	ClientSecret string
}

// CaptureResult is the provider's answer to a capture call.
type CaptureResult struct {
	ID           string
	Status       string
	EmailAddress string
	AmountPaid   decimal.Decimal
}
