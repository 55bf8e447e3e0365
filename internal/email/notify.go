package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/feriaverde/marketplace/internal/domain"
)

// OrderNotifier composes and sends the post-payment notifications: one
// email to the buyer, one to each vendor with only that vendor's lines.
type OrderNotifier struct {
	sender Sender
	from   string
}

// NewOrderNotifier creates the notifier.
func NewOrderNotifier(sender Sender, from string) *OrderNotifier {
	return &OrderNotifier{sender: sender, from: from}
}

// NotifyCustomer sends the order confirmation to the buyer.
func (n *OrderNotifier) NotifyCustomer(ctx context.Context, order *domain.Order, lines []domain.OrderLine) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Hola %s,\n\n", order.Name)
	fmt.Fprintf(&b, "Recibimos tu pago por el pedido %s.\n\n", order.ID)
	for _, l := range lines {
		fmt.Fprintf(&b, "  %dx %s - $%d", l.Quantity, l.ProductName, l.LineTotal)
		if l.DiscountPercentage > 0 {
			fmt.Fprintf(&b, " (%d%% dcto)", l.DiscountPercentage)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nTotal: $%d\n", order.Amount)
	fmt.Fprintf(&b, "Despacho a: %s\n", order.Address)

	_, err := n.sender.Send(ctx, &Email{
		To:       []string{order.Email},
		From:     n.from,
		Subject:  fmt.Sprintf("Pedido confirmado - $%d", order.Amount),
		TextBody: b.String(),
	})
	return err
}

// NotifyVendor sends one vendor their slice of the order.
func (n *OrderNotifier) NotifyVendor(ctx context.Context, vendor *domain.Vendor, order *domain.Order, lines []domain.OrderLine) error {
	var vendorLines []domain.OrderLine
	var vendorTotal int64
	for _, l := range lines {
		if l.VendorID == vendor.ID {
			vendorLines = append(vendorLines, l)
			vendorTotal += l.LineTotal
		}
	}
	if len(vendorLines) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hola %s,\n\n", vendor.Name)
	fmt.Fprintf(&b, "Tienes un nuevo pedido pagado (%s):\n\n", order.ID)
	for _, l := range vendorLines {
		fmt.Fprintf(&b, "  %dx %s - $%d\n", l.Quantity, l.ProductName, l.LineTotal)
	}
	fmt.Fprintf(&b, "\nTotal de tus productos: $%d\n", vendorTotal)
	fmt.Fprintf(&b, "Cliente: %s, %s, tel %s\n", order.Name, order.Address, order.Phone)

	_, err := n.sender.Send(ctx, &Email{
		To:       []string{vendor.Email},
		From:     n.from,
		Subject:  fmt.Sprintf("Nuevo pedido - $%d", vendorTotal),
		TextBody: b.String(),
	})
	return err
}
