package paypal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	sdk "github.com/plutov/paypal/v4"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

// Client talks to the PayPal Orders v2 API.
type Client interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal) (*models.GatewayOrder, error)
	Capture(ctx context.Context, providerOrderID string) (*models.CaptureResult, error)
	// Ping performs a token exchange, for health checks.
	Ping(ctx context.Context) error
}

type paypalClient struct {
	sdk      *sdk.Client
	currency string
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker[any]
}

// StatusCode extracts the HTTP status of a PayPal error answer, or 0 for transport failures.
func StatusCode(err error) int {
	var errResp *sdk.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return errResp.Response.StatusCode
	}

	return 0
}

func NewClient(cfg config.PayPal) (Client, error) {

	client, err := sdk.NewClient(cfg.ClientID, cfg.ClientSecret, strings.TrimRight(cfg.APIURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to create paypal client: %w", err)
	}

	client.SetHTTPClient(&http.Client{
		Timeout:   cfg.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    "paypal",
		Timeout: cfg.BreakerOpenDelay,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		// a 4xx is the caller's fault, not a sign PayPal is down
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}

			status := StatusCode(err)
			return status > 0 && status < http.StatusInternalServerError
		},
	})

	return &paypalClient{
		sdk:      client,
		currency: cfg.Currency,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.Burst),
		breaker:  breaker,
	}, nil
}

// call waits for the limiter, then runs fn through the breaker.
func (c *paypalClient) call(ctx context.Context, fn func() (any, error)) (any, error) {

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	return c.breaker.Execute(fn)
}

// authenticate fetches a new access token; tokens are never reused across operations.
func (c *paypalClient) authenticate(ctx context.Context) error {

	_, err := c.call(ctx, func() (any, error) {
		return c.sdk.GetAccessToken(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to generate access token: %w", err)
	}

	return nil
}

func (c *paypalClient) Ping(ctx context.Context) error {
	return c.authenticate(ctx)
}

func (c *paypalClient) CreateOrder(ctx context.Context, price decimal.Decimal) (*models.GatewayOrder, error) {

	if err := c.authenticate(ctx); err != nil {
		return nil, err
	}

	units := []sdk.PurchaseUnitRequest{
		{Amount: &sdk.PurchaseUnitAmount{Currency: c.currency, Value: price.StringFixed(2)}},
	}

	res, err := c.call(ctx, func() (any, error) {
		return c.sdk.CreateOrder(ctx, sdk.OrderIntentCapture, units, nil, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create paypal order: %w", err)
	}

	order := res.(*sdk.Order)

	return &models.GatewayOrder{ID: order.ID, Status: order.Status}, nil
}

func (c *paypalClient) Capture(ctx context.Context, providerOrderID string) (*models.CaptureResult, error) {

	if err := c.authenticate(ctx); err != nil {
		return nil, err
	}

	res, err := c.call(ctx, func() (any, error) {
		return c.sdk.CaptureOrder(ctx, providerOrderID, sdk.CaptureOrderRequest{})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to capture paypal order: %w", err)
	}

	captured := res.(*sdk.CaptureOrderResponse)

	result := &models.CaptureResult{
		ID:         captured.ID,
		Status:     captured.Status,
		AmountPaid: decimal.Zero,
	}

	if captured.Payer != nil {
		result.EmailAddress = captured.Payer.EmailAddress
	}

	if value := capturedAmount(captured); value != "" {
		paid, err := decimal.NewFromString(value)
		if err != nil {
			// the capture stands even when its amount is unreadable
			middleware.LoggerFromContext(ctx).Warn("Unreadable paypal capture amount",
				slog.String("providerOrderId", providerOrderID),
				slog.String("value", value),
				slog.String("error", err.Error()),
			)
		} else {
			result.AmountPaid = paid
		}
	}

	return result, nil
}

func capturedAmount(captured *sdk.CaptureOrderResponse) string {

	if len(captured.PurchaseUnits) == 0 || captured.PurchaseUnits[0].Payments == nil {
		return ""
	}

	captures := captured.PurchaseUnits[0].Payments.Captures
	if len(captures) == 0 || captures[0].Amount == nil {
		return ""
	}

	return captures[0].Amount.Value
}
