package notify

import (
	"fmt"
	"strings"

	"github.com/01moynul/storefront-golang/internal/models"
)

// OrderConfirmation is the mail sent to the customer after checkout.
func OrderConfirmation(o *models.Order) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", o.CustomerName)
	b.WriteString("Thank you for your order. We have received it and will contact you shortly.\n\n")
	writeOrderSummary(&b, o)

	return Message{
		To:      o.CustomerEmail,
		Subject: fmt.Sprintf("Order confirmation #%s", shortID(o.ID)),
		Body:    b.String(),
	}
}

// OrderAlert is the mail sent to the shop admin for a new order.
func OrderAlert(o *models.Order, adminEmail string) Message {
	var b strings.Builder
	b.WriteString("A new order was placed.\n\n")
	fmt.Fprintf(&b, "Customer: %s\nEmail: %s\nPhone: %s\nSource: %s\n", o.CustomerName, o.CustomerEmail, o.CustomerPhone, o.Source)
	if o.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", o.Notes)
	}
	b.WriteString("\n")
	writeOrderSummary(&b, o)

	return Message{
		To:      adminEmail,
		Subject: fmt.Sprintf("New order #%s from %s", shortID(o.ID), o.CustomerName),
		Body:    b.String(),
		ReplyTo: o.CustomerEmail,
	}
}

func writeOrderSummary(b *strings.Builder, o *models.Order) {
	fmt.Fprintf(b, "Order: %s\n", o.ID)
	for _, item := range o.Items {
		fmt.Fprintf(b, "  - %s x %d\n", item.ProductID, item.Quantity)
	}
	fmt.Fprintf(b, "Total: %s\n", o.Total.StringFixed(2))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
