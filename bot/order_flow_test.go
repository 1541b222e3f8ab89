package bot

import (
	"testing"

	"restaurant-backoffice/cart"
	"restaurant-backoffice/lang"
	"restaurant-backoffice/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTablesKeyboard(t *testing.T) {
	tables := []models.Table{
		{ID: 1, Label: "1", Status: models.TableFree},
		{ID: 2, Label: "2", Status: models.TableOccupied},
		{ID: 3, Label: "3"},
		{ID: 4, Label: "Bar 1"},
	}
	kb := tablesKeyboard(tables)
	require.Len(t, kb.InlineKeyboard, 2)
	assert.Len(t, kb.InlineKeyboard[0], 3)
	assert.Len(t, kb.InlineKeyboard[1], 1)

	assert.Equal(t, "2 •", kb.InlineKeyboard[0][1].Text)
	require.NotNil(t, kb.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, "tbl:4", *kb.InlineKeyboard[1][0].CallbackData)
}

func TestCategoryKeyboard(t *testing.T) {
	kb := categoryKeyboard(lang.En)
	// two rows of categories plus the cart button
	require.Len(t, kb.InlineKeyboard, 3)
	assert.Equal(t, "Starters", kb.InlineKeyboard[0][0].Text)
	assert.Equal(t, "cat:"+models.CategoryDessert, *kb.InlineKeyboard[1][1].CallbackData)
	assert.Equal(t, "cart:show", *kb.InlineKeyboard[2][0].CallbackData)
}

func TestItemsKeyboard(t *testing.T) {
	items := []models.MenuItem{
		{ID: "7", Name: "Burger", Price: 850},
		{ID: "9", Name: "Soup", Price: 400},
	}
	kb := itemsKeyboard(items, lang.En)
	require.Len(t, kb.InlineKeyboard, 3)
	assert.Equal(t, "Burger · 8.50", kb.InlineKeyboard[0][0].Text)
	assert.Equal(t, "item:9", *kb.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, "back:cats", *kb.InlineKeyboard[2][0].CallbackData)
}

func TestModifiersKeyboard(t *testing.T) {
	item := models.MenuItem{ID: "7", Category: models.CategoryFood, Name: "Burger", Price: 850}
	mods := []models.MenuModifier{
		{ID: 1, MenuItemID: "7", Name: "Cheese", PriceDelta: 100},
		{ID: 2, MenuItemID: "7", Name: "No bun", PriceDelta: -50},
	}
	kb := modifiersKeyboard(item, mods, []int64{2}, lang.En)
	require.Len(t, kb.InlineKeyboard, 4)

	assert.Equal(t, "◻️ Cheese (+1.00)", kb.InlineKeyboard[0][0].Text)
	assert.Equal(t, "✅ No bun (-0.50)", kb.InlineKeyboard[1][0].Text)
	assert.Equal(t, "mod:7:2", *kb.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, "pick_add:7", *kb.InlineKeyboard[2][0].CallbackData)
	assert.Equal(t, "pick_note:7", *kb.InlineKeyboard[2][1].CallbackData)
	assert.Equal(t, "cat:food", *kb.InlineKeyboard[3][0].CallbackData)
}

func TestCartKeyboard(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		kb := cartKeyboard(cart.New(), lang.En)
		require.Len(t, kb.InlineKeyboard, 1)
		assert.Equal(t, "cart:menu", *kb.InlineKeyboard[0][0].CallbackData)
	})

	t.Run("lines", func(t *testing.T) {
		c := cart.New()
		c.Add(cart.MenuItemRef{ID: "1", Name: "Burger", UnitPrice: 500}, "")
		c.Add(cart.MenuItemRef{ID: "1", Name: "Burger", UnitPrice: 500}, "")
		c.Add(cart.MenuItemRef{ID: "2", Name: "Tea", UnitPrice: 200}, "no sugar")
		lines := c.Lines()
		require.Len(t, lines, 2)

		kb := cartKeyboard(c, lang.En)
		require.Len(t, kb.InlineKeyboard, 4)
		row := kb.InlineKeyboard[0]
		require.Len(t, row, 4)
		assert.Equal(t, "ln:dec:"+lines[0].ID, *row[0].CallbackData)
		assert.Equal(t, "2", row[1].Text)
		assert.Equal(t, "ln:inc:"+lines[0].ID, *row[2].CallbackData)
		assert.Equal(t, "ln:del:"+lines[0].ID, *row[3].CallbackData)
		assert.Equal(t, "cart:submit", *kb.InlineKeyboard[2][0].CallbackData)
		assert.Equal(t, "cart:clear", *kb.InlineKeyboard[3][0].CallbackData)

		for _, r := range kb.InlineKeyboard {
			for _, btn := range r {
				assert.LessOrEqual(t, len(*btn.CallbackData), 64, "callback data limit")
			}
		}
	})
}

func TestToggleID(t *testing.T) {
	ids := toggleID(nil, 3)
	ids = toggleID(ids, 1)
	ids = toggleID(ids, 2)
	assert.Equal(t, []int64{3, 1, 2}, ids)

	ids = toggleID(ids, 1)
	assert.Equal(t, []int64{3, 2}, ids)

	ids = toggleID(ids, 1)
	assert.Equal(t, []int64{3, 2, 1}, ids)
}

func TestToggleIDDoesNotAliasInput(t *testing.T) {
	orig := []int64{1, 2, 3}
	out := toggleID(orig, 1)
	assert.Equal(t, []int64{2, 3}, out)
	assert.Equal(t, []int64{1, 2, 3}, orig)
}

func TestOrderedModifiers(t *testing.T) {
	mods := []models.MenuModifier{
		{ID: 1, Name: "Cheese"},
		{ID: 2, Name: "Bacon"},
		{ID: 3, Name: "Onion"},
	}
	got := orderedModifiers(mods, []int64{3, 99, 1})
	require.Len(t, got, 2)
	assert.Equal(t, "Onion", got[0].Name)
	assert.Equal(t, "Cheese", got[1].Name)

	assert.Empty(t, orderedModifiers(mods, nil))
}

func TestParseLoginArgs(t *testing.T) {
	tests := []struct {
		args      string
		wantPhone string
		wantPIN   string
		ok        bool
	}{
		{"+998901234567 4821", "+998901234567", "4821", true},
		{"+998 90 123 45 67 4821", "+998 90 123 45 67", "4821", true},
		{"4821", "", "", false},
		{"", "", "", false},
		{"abc 4821", "", "", false},
	}
	for _, tt := range tests {
		phone, pin, ok := parseLoginArgs(tt.args)
		assert.Equal(t, tt.ok, ok, "parseLoginArgs(%q)", tt.args)
		assert.Equal(t, tt.wantPhone, phone, "phone for %q", tt.args)
		assert.Equal(t, tt.wantPIN, pin, "pin for %q", tt.args)
	}
}
