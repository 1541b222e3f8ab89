package bot

import (
	"testing"

	"restaurant-backoffice/lang"
	"restaurant-backoffice/models"
	"restaurant-backoffice/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"15", 1500, true},
		{"15.5", 1550, true},
		{"15.50", 1550, true},
		{"15,05", 1505, true},
		{"12 000", 1200000, true},
		{"-0.50", -50, true},
		{"0", 0, true},
		{"15.", 0, false},
		{".5", 0, false},
		{"1.234", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseMoney(tt.in)
		assert.Equal(t, tt.ok, ok, "parseMoney(%q) ok", tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, "parseMoney(%q)", tt.in)
		}
	}
}

func TestFormatStock(t *testing.T) {
	assert.Equal(t, "No stock items.", formatStock(nil))

	items := []models.StockItem{
		{ID: 1, Name: "Flour", Unit: "kg", Quantity: 12.5, ReorderLevel: 5},
		{ID: 2, Name: "Milk", Unit: "l", Quantity: 2, ReorderLevel: 4},
	}
	assert.Equal(t, "1. Flour: 12.5 kg\n2. Milk: 2 l ⚠️", formatStock(items))
}

func TestAdderCategoryKeyboard(t *testing.T) {
	kb := adderCategoryKeyboard(lang.En)
	require.Len(t, kb.InlineKeyboard, len(models.Categories))
	for i, c := range models.Categories {
		assert.Equal(t, "adder_cat:"+c, *kb.InlineKeyboard[i][0].CallbackData)
	}
}

func TestCardMarkup(t *testing.T) {
	assert.Nil(t, cardMarkup(services.OrderCardContent{Text: "x"}))

	content := services.OrderCardContent{
		Text: "x",
		Buttons: [][]services.OrderCardButton{
			{{Text: "Start", CallbackData: "order_status:5:preparing"}},
		},
	}
	kb := cardMarkup(content)
	require.NotNil(t, kb)
	require.Len(t, kb.InlineKeyboard, 1)
	assert.Equal(t, "Start", kb.InlineKeyboard[0][0].Text)
	assert.Equal(t, "order_status:5:preparing", *kb.InlineKeyboard[0][0].CallbackData)
}
