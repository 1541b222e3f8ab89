package services

import (
	"strings"
	"testing"

	"restaurant-backoffice/cart"
	"restaurant-backoffice/lang"
	"restaurant-backoffice/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildKitchenTicket(t *testing.T) {
	o := &models.Order{ID: 123, Status: OrderStatusNew}
	items := []models.OrderItem{
		{Name: "Burger", Quantity: 2, Modifiers: []string{"Cheese"}, Instructions: "no onions"},
		{Name: "Fries", Quantity: 1},
	}
	card := BuildKitchenTicket(o, "T4", items, lang.En)

	assert.Contains(t, card.Text, "#123")
	assert.Contains(t, card.Text, "Table T4")
	assert.Contains(t, card.Text, "2 × Burger")
	assert.Contains(t, card.Text, "+ Cheese")
	assert.Contains(t, card.Text, "no onions")
	require.Len(t, card.Buttons, 1)
	assert.Equal(t, "order_status:123:preparing", card.Buttons[0][0].CallbackData)

	o.Status = OrderStatusPreparing
	card = BuildKitchenTicket(o, "T4", items, "")
	require.Len(t, card.Buttons, 1)
	assert.Equal(t, "order_status:123:ready", card.Buttons[0][0].CallbackData)

	o.Status = OrderStatusReady
	assert.Empty(t, BuildKitchenTicket(o, "T4", items, lang.En).Buttons)
}

func TestBuildStaffCard(t *testing.T) {
	o := &models.Order{ID: 7, Total: 1605}
	tests := []struct {
		status string
		want   string
	}{
		{OrderStatusNew, "order_status:7:cancelled"},
		{OrderStatusPreparing, "order_status:7:cancelled"},
		{OrderStatusReady, "order_status:7:served"},
		{OrderStatusServed, "order_status:7:paid"},
		{OrderStatusPaid, ""},
	}
	for _, tt := range tests {
		o.Status = tt.status
		card := BuildStaffCard(o, "12", lang.En)
		assert.Contains(t, card.Text, "16.05")
		if tt.want == "" {
			assert.Empty(t, card.Buttons, tt.status)
			continue
		}
		require.Len(t, card.Buttons, 1, tt.status)
		assert.Equal(t, tt.want, card.Buttons[0][0].CallbackData)
	}
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Tayyor", StatusLabel(lang.Uz, OrderStatusReady))
	assert.Equal(t, "Served", StatusLabel(lang.Uz, OrderStatusServed))
	assert.Equal(t, "odd", StatusLabel(lang.En, "odd"))
}

func TestFormatCart(t *testing.T) {
	c := cart.New()
	assert.Equal(t, lang.T(lang.En, "cart_empty"), FormatCart(c, lang.En))

	burger := cart.MenuItemRef{ID: "1", Name: "Burger", UnitPrice: 500}
	c.Add(burger, "")
	c.Add(burger, "")
	c.Add(burger, "well done", cart.Modifier{Name: "Cheese", PriceDelta: 100})

	text := FormatCart(c, lang.En)
	lines := strings.Split(text, "\n")
	assert.Equal(t, "Order:", lines[0])
	assert.Equal(t, "1. Burger × 2 = 10.00", lines[1])
	assert.Equal(t, "2. Burger × 1 = 6.00", lines[2])
	assert.Contains(t, text, "+ Cheese (1.00)")
	assert.Contains(t, text, "✎ well done")
	assert.True(t, strings.HasSuffix(text, "Total: 16.00"))
}

func TestParseStatusCallback(t *testing.T) {
	id, status, ok := ParseStatusCallback("order_status:42:ready")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "ready", status)

	for _, bad := range []string{"", "order_status:42", "order_status:x:ready", "other:1:ready", "order_status:0:ready", "order_status:1:"} {
		_, _, ok := ParseStatusCallback(bad)
		assert.False(t, ok, bad)
	}
}
