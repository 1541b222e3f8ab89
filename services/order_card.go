package services

import (
	"fmt"
	"strconv"
	"strings"

	"restaurant-backoffice/cart"
	"restaurant-backoffice/lang"
	"restaurant-backoffice/models"
)

// OrderCardButton is one inline button (text + callback_data).
type OrderCardButton struct {
	Text         string
	CallbackData string
}

// OrderCardContent is the text and optional inline keyboard for an order card.
type OrderCardContent struct {
	Text    string
	Buttons [][]OrderCardButton
}

func StatusLabel(langCode, status string) string {
	switch status {
	case OrderStatusNew, OrderStatusPreparing, OrderStatusReady,
		OrderStatusServed, OrderStatusPaid, OrderStatusCancelled:
		return lang.T(langCode, "status_"+status)
	default:
		return status
	}
}

func statusButton(langCode, key string, orderID int64, status string) OrderCardButton {
	return OrderCardButton{
		Text:         lang.T(langCode, key),
		CallbackData: "order_status:" + strconv.FormatInt(orderID, 10) + ":" + status,
	}
}

// BuildKitchenTicket returns the ticket posted to the kitchen chat. Buttons
// move the order through preparing and ready; a ready ticket has none.
func BuildKitchenTicket(o *models.Order, tableLabel string, items []models.OrderItem, langCode string) OrderCardContent {
	if langCode == "" {
		langCode = lang.En
	}
	var b strings.Builder
	fmt.Fprintf(&b, lang.T(langCode, "kt_header"), o.ID, tableLabel)
	b.WriteString("\n\n")
	for _, it := range items {
		fmt.Fprintf(&b, "%d × %s\n", it.Quantity, it.Name)
		for _, m := range it.Modifiers {
			fmt.Fprintf(&b, "   + %s\n", m)
		}
		if it.Instructions != "" {
			fmt.Fprintf(&b, "   ✎ %s\n", it.Instructions)
		}
	}
	b.WriteString("\n" + fmt.Sprintf(lang.T(langCode, "order_status"), StatusLabel(langCode, o.Status)))

	var buttons [][]OrderCardButton
	switch o.Status {
	case OrderStatusNew:
		buttons = [][]OrderCardButton{{statusButton(langCode, "kt_start", o.ID, OrderStatusPreparing)}}
	case OrderStatusPreparing:
		buttons = [][]OrderCardButton{{statusButton(langCode, "kt_ready", o.ID, OrderStatusReady)}}
	}
	return OrderCardContent{Text: b.String(), Buttons: buttons}
}

// BuildStaffCard returns the card a waiter sees for one of their orders,
// with the next actions the floor staff can take.
func BuildStaffCard(o *models.Order, tableLabel string, langCode string) OrderCardContent {
	if langCode == "" {
		langCode = lang.En
	}
	text := fmt.Sprintf(lang.T(langCode, "order_header"), o.ID) + " · " + tableLabel + "\n"
	text += fmt.Sprintf(lang.T(langCode, "order_total"), cart.FormatMoney(o.Total)) + "\n"
	text += fmt.Sprintf(lang.T(langCode, "order_status"), StatusLabel(langCode, o.Status))

	var buttons [][]OrderCardButton
	switch o.Status {
	case OrderStatusNew, OrderStatusPreparing:
		buttons = [][]OrderCardButton{{statusButton(langCode, "btn_cancel", o.ID, OrderStatusCancelled)}}
	case OrderStatusReady:
		buttons = [][]OrderCardButton{{statusButton(langCode, "btn_served", o.ID, OrderStatusServed)}}
	case OrderStatusServed:
		buttons = [][]OrderCardButton{{statusButton(langCode, "btn_paid", o.ID, OrderStatusPaid)}}
	}
	return OrderCardContent{Text: text, Buttons: buttons}
}

// FormatCart renders cart lines and total for chat display.
func FormatCart(c *cart.Cart, langCode string) string {
	if c.IsEmpty() {
		return lang.T(langCode, "cart_empty")
	}
	var b strings.Builder
	b.WriteString(lang.T(langCode, "cart_label") + ":\n")
	for i, l := range c.Lines() {
		fmt.Fprintf(&b, "%d. %s × %d = %s\n", i+1, l.Item.Name, l.Quantity, cart.FormatMoney(l.Subtotal()))
		for _, m := range l.Modifiers {
			fmt.Fprintf(&b, "   + %s (%s)\n", m.Name, cart.FormatMoney(m.PriceDelta))
		}
		if l.Instructions != "" {
			fmt.Fprintf(&b, "   ✎ %s\n", l.Instructions)
		}
	}
	fmt.Fprintf(&b, "\n%s: %s", lang.T(langCode, "total"), cart.FormatMoney(c.Total()))
	return b.String()
}

// ParseStatusCallback parses "order_status:<id>:<status>".
func ParseStatusCallback(data string) (orderID int64, status string, ok bool) {
	parts := strings.Split(data, ":")
	if len(parts) != 3 || parts[0] != "order_status" {
		return 0, "", false
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id <= 0 || parts[2] == "" {
		return 0, "", false
	}
	return id, parts[2], true
}
