package sendGrid

import (
	"fmt"
	"html"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/models"
)

const ReceiptCategory = "order-receipt"

// OrderReceipt renders the purchase receipt for a paid order. The order must carry its
// buyer and items.
func OrderReceipt(order *models.Order) *models.EmailNotificationRequest {

	var text, rows strings.Builder

	fmt.Fprintf(&text, "Thank you for your purchase, %s.\n\nOrder %s\n\n", order.User.Name, order.ID)

	for _, item := range order.Items {
		fmt.Fprintf(&text, "%d x %s  %s\n", item.Quantity, item.Name, item.Price.StringFixed(2))
		fmt.Fprintf(&rows, "<tr><td>%d</td><td>%s</td><td>$%s</td></tr>", item.Quantity, html.EscapeString(item.Name), item.Price.StringFixed(2))
	}

	prices := order.Prices
	fmt.Fprintf(&text, "\nItems: %s\nShipping: %s\nTax: %s\nTotal: %s\n",
		prices.ItemsPrice.StringFixed(2), prices.ShippingPrice.StringFixed(2), prices.TaxPrice.StringFixed(2), prices.TotalPrice.StringFixed(2))

	htmlContent := fmt.Sprintf(`<h1>Thanks for your purchase!</h1>
<p>Order <strong>%s</strong></p>
<table>%s</table>
<p>Items: $%s<br>Shipping: $%s<br>Tax: $%s<br><strong>Total: $%s</strong></p>`,
		order.ID, rows.String(),
		prices.ItemsPrice.StringFixed(2), prices.ShippingPrice.StringFixed(2), prices.TaxPrice.StringFixed(2), prices.TotalPrice.StringFixed(2))

	return &models.EmailNotificationRequest{
		To:          order.User.Email,
		Subject:     fmt.Sprintf("Purchase Receipt %s", order.ID),
		Content:     text.String(),
		HTMLContent: htmlContent,
		Category:    ReceiptCategory,
		OrderID:     order.ID.String(),
	}
}
