package models

// EmailNotificationRequest is one transactional email to a storefront customer.
type EmailNotificationRequest struct {
	To          string `json:"to" validate:"required,email"`
	Subject     string `json:"subject" validate:"required"`
	Content     string `json:"content" validate:"required"`
	HTMLContent string `json:"html_content"`
	// Category groups messages in SendGrid's activity feed, e.g. "order-receipt".
	Category string `json:"category,omitempty"`
	// OrderID is attached as a custom arg so delivery events can be traced to the order.
	OrderID string `json:"order_id,omitempty"`
}
