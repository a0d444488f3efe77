package sendGrid

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const mailSendEndpoint = "/v3/mail/send"

type EmailService interface {
	Send(ctx context.Context, req *models.EmailNotificationRequest) error
}

type emailService struct {
	client  *sendgrid.Client
	from    *mail.Email
	enabled bool
}

// NewEmailService sends through the SendGrid v3 API at cfg.APIURL. Without an API key
// every Send is skipped, so checkouts keep working on machines with no mail account.
func NewEmailService(cfg config.SendGrid) EmailService {

	request := sendgrid.GetRequest(cfg.APIKey, mailSendEndpoint, strings.TrimRight(cfg.APIURL, "/"))
	request.Method = http.MethodPost

	return &emailService{
		client:  &sendgrid.Client{Request: request},
		from:    mail.NewEmail(cfg.FromName, cfg.FromEmail),
		enabled: cfg.APIKey != "",
	}
}

func (e *emailService) Send(ctx context.Context, req *models.EmailNotificationRequest) error {

	logger := middleware.LoggerFromContext(ctx).With(slog.String("category", req.Category))

	if !e.enabled {
		logger.Info("SendGrid not configured, email skipped", slog.String("subject", req.Subject))
		return nil
	}

	resp, err := e.client.SendWithContext(ctx, buildMessage(e.from, req))
	if err != nil {
		return fmt.Errorf("failed to reach sendgrid: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("failed to send email, status code: %d%s", resp.StatusCode, apiErrorMessage(resp.Body))
	}

	logger.Debug("Email accepted by SendGrid", slog.String("messageId", firstHeader(resp.Headers, "X-Message-Id")))

	return nil
}

func buildMessage(from *mail.Email, req *models.EmailNotificationRequest) *mail.SGMailV3 {

	message := mail.NewV3Mail()
	message.SetFrom(from)

	personalization := mail.NewPersonalization()
	personalization.AddTos(mail.NewEmail("", req.To))
	personalization.Subject = req.Subject
	if req.OrderID != "" {
		personalization.SetCustomArg("order_id", req.OrderID)
	}
	message.AddPersonalizations(personalization)

	// text/plain must precede text/html
	message.AddContent(mail.NewContent("text/plain", req.Content))
	if req.HTMLContent != "" {
		message.AddContent(mail.NewContent("text/html", req.HTMLContent))
	}

	if req.Category != "" {
		message.AddCategories(req.Category)
	}

	return message
}

// apiErrorMessage pulls the first message out of a SendGrid error body.
func apiErrorMessage(body string) string {

	var payload struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}

	if err := json.Unmarshal([]byte(body), &payload); err != nil || len(payload.Errors) == 0 {
		return ""
	}

	return ": " + payload.Errors[0].Message
}

func firstHeader(headers map[string][]string, key string) string {
	if values := http.Header(headers).Values(key); len(values) > 0 {
		return values[0]
	}

	return ""
}
