package stripe

import (
	"context"
	"fmt"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
)

// Client drives a PaymentIntent from creation to a settled state.
type Client interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal) (*models.GatewayOrder, error)
	Capture(ctx context.Context, paymentIntentID string) (*models.CaptureResult, error)
}

type stripeClient struct {
	currency string
}

func NewStripeClient(cfg config.Stripe) Client {
	stripe.Key = cfg.APIKey

	return &stripeClient{currency: cfg.Currency}
}

// CreateOrder opens a PaymentIntent == "planned payment" for the amount in minor units.
func (s *stripeClient) CreateOrder(ctx context.Context, amount decimal.Decimal) (*models.GatewayOrder, error) {
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(amount.Shift(2).Round(0).IntPart()),
		Currency: stripe.String(s.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &models.GatewayOrder{ID: intent.ID, Status: string(intent.Status), ClientSecret: intent.ClientSecret}, nil
}

// Capture reads back the intent the client confirmed. Stripe captures on confirmation, so a
// succeeded intent is reported as COMPLETED and any other status is passed through upper-cased.
func (s *stripeClient) Capture(ctx context.Context, paymentIntentID string) (*models.CaptureResult, error) {
	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{Context: ctx},
	}

	intent, err := paymentintent.Get(paymentIntentID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payment intent: %w", err)
	}

	status := strings.ToUpper(string(intent.Status))
	if intent.Status == stripe.PaymentIntentStatusSucceeded {
		status = models.CaptureStatusCompleted
	}

	return &models.CaptureResult{
		ID:           intent.ID,
		Status:       status,
		EmailAddress: intent.ReceiptEmail,
		AmountPaid:   decimal.New(intent.AmountReceived, -2),
	}, nil
}
