package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"restaurant-backoffice/cart"
	"restaurant-backoffice/lang"
	"restaurant-backoffice/models"
	"restaurant-backoffice/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func tablesKeyboard(tables []models.Table) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, t := range tables {
		label := t.Label
		if t.Status == models.TableOccupied {
			label += " •"
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, "tbl:"+strconv.FormatInt(t.ID, 10)))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func categoryKeyboard(langCode string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(models.Categories); i += 2 {
		var row []tgbotapi.InlineKeyboardButton
		for _, c := range models.Categories[i:min(i+2, len(models.Categories))] {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(lang.T(langCode, "cat_"+c), "cat:"+c))
		}
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(lang.T(langCode, "cart_label"), "cart:show"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func itemsKeyboard(items []models.MenuItem, langCode string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, it := range items {
		text := fmt.Sprintf("%s · %s", it.Name, cart.FormatMoney(it.Price))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(text, "item:"+it.ID)))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(lang.T(langCode, "btn_back"), "back:cats"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// modifiersKeyboard lists the item's add-ons; selected ones carry a check mark.
func modifiersKeyboard(item models.MenuItem, mods []models.MenuModifier, selected []int64, langCode string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, m := range mods {
		mark := "◻️"
		if containsID(selected, m.ID) {
			mark = "✅"
		}
		sign := "+"
		if m.PriceDelta < 0 {
			sign = ""
		}
		text := fmt.Sprintf("%s %s (%s%s)", mark, m.Name, sign, cart.FormatMoney(m.PriceDelta))
		data := fmt.Sprintf("mod:%s:%d", item.ID, m.ID)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(text, data)))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(lang.T(langCode, "btn_add"), "pick_add:"+item.ID),
			tgbotapi.NewInlineKeyboardButtonData(lang.T(langCode, "btn_note"), "pick_note:"+item.ID),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(lang.T(langCode, "btn_back"), "cat:"+item.Category),
		),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// cartKeyboard has one −/+/✕ row per line and the order actions below.
func cartKeyboard(c *cart.Cart, langCode string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, l := range c.Lines() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d. −", i+1), "ln:dec:"+l.ID),
			tgbotapi.NewInlineKeyboardButtonData(strconv.Itoa(l.Quantity), "ln:noop:"+l.ID),
			tgbotapi.NewInlineKeyboardButtonData("+", "ln:inc:"+l.ID),
			tgbotapi.NewInlineKeyboardButtonData("✕", "ln:del:"+l.ID),
		))
	}
	if !c.IsEmpty() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(lang.T(langCode, "btn_submit"), "cart:submit"),
		))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(lang.T(langCode, "btn_clear"), "cart:clear"),
			tgbotapi.NewInlineKeyboardButtonData(lang.T(langCode, "btn_menu"), "cart:menu"),
		))
	} else {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(lang.T(langCode, "btn_menu"), "cart:menu"),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// toggleID adds id at the end or removes it, keeping the selection order.
func toggleID(ids []int64, id int64) []int64 {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return append(ids, id)
}

// orderedModifiers returns the modifiers in the order they were selected.
// Unknown ids are skipped.
func orderedModifiers(mods []models.MenuModifier, selected []int64) []models.MenuModifier {
	byID := make(map[int64]models.MenuModifier, len(mods))
	for _, m := range mods {
		byID[m.ID] = m
	}
	out := make([]models.MenuModifier, 0, len(selected))
	for _, id := range selected {
		if m, ok := byID[id]; ok {
			out = append(out, m)
		}
	}
	return out
}

func (b *Bot) answer(cq *tgbotapi.CallbackQuery, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, text)); err != nil {
		b.log.Debug("answer callback", zap.Error(err))
	}
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil || cq.From == nil {
		return
	}
	chatID, userID, msgID := cq.Message.Chat.ID, cq.From.ID, cq.Message.MessageID
	data := cq.Data
	b.loadLang(ctx, userID)

	switch {
	case strings.HasPrefix(data, "lang:"):
		code := strings.TrimPrefix(data, "lang:")
		if lang.Supported(code) {
			b.setLang(ctx, userID, code)
			b.answer(cq, lang.T(code, "language_changed"))
			b.send(chatID, lang.T(code, "help"))
			return
		}
	case strings.HasPrefix(data, "order_status:"):
		b.handleOrderStatusCallback(ctx, b.api, cq)
		return
	case strings.HasPrefix(data, "tbl:"):
		b.selectTable(ctx, chatID, userID, msgID, strings.TrimPrefix(data, "tbl:"))
	case data == "back:cats", data == "cart:menu":
		b.showCategories(ctx, chatID, userID, msgID)
	case strings.HasPrefix(data, "cat:"):
		b.showItems(ctx, chatID, userID, msgID, strings.TrimPrefix(data, "cat:"))
	case strings.HasPrefix(data, "item:"):
		b.startPick(ctx, chatID, userID, msgID, strings.TrimPrefix(data, "item:"))
	case strings.HasPrefix(data, "mod:"):
		b.toggleModifier(ctx, chatID, userID, msgID, strings.TrimPrefix(data, "mod:"))
	case strings.HasPrefix(data, "pick_note:"):
		b.update(userID, func(s *userState) {
			if s.Pick != nil {
				s.Pick.AwaitingNote = true
			}
		})
		b.sendLang(chatID, userID, "note_prompt")
	case strings.HasPrefix(data, "pick_add:"):
		b.addPicked(ctx, chatID, userID, msgID, strings.TrimPrefix(data, "pick_add:"))
	case strings.HasPrefix(data, "ln:"):
		b.handleLineCallback(ctx, chatID, userID, msgID, strings.TrimPrefix(data, "ln:"))
	case data == "cart:show":
		b.sendCart(ctx, chatID, userID, msgID)
	case data == "cart:clear":
		b.clearCart(ctx, chatID, userID, msgID)
	case data == "cart:submit":
		b.submitCart(ctx, chatID, userID, msgID)
	default:
		b.handleManagerCallback(ctx, chatID, userID, msgID, data)
	}
	b.answer(cq, "")
}

func (b *Bot) selectTable(ctx context.Context, chatID, userID int64, msgID int, idStr string) {
	if _, ok := b.session(ctx, chatID, userID); !ok {
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return
	}
	t, err := services.GetTable(ctx, id)
	if err != nil {
		b.log.Warn("select table", zap.Int64("table_id", id), zap.Error(err))
		return
	}
	b.update(userID, func(s *userState) {
		s.TableID = t.ID
		s.Pick = nil
	})
	l := b.getLang(userID)
	b.editOrSend(chatID, msgID, fmt.Sprintf(lang.T(l, "table_selected"), t.Label)+"\n\n"+lang.T(l, "pick_category"), categoryKeyboard(l))
}

// tableSession is the staff session with a table picked.
func (b *Bot) tableSession(ctx context.Context, chatID, userID int64) (models.Session, bool) {
	sess, ok := b.session(ctx, chatID, userID)
	if !ok {
		return sess, false
	}
	if sess.TableID == 0 {
		b.sendLang(chatID, userID, "pick_table_first")
		return sess, false
	}
	return sess, true
}

func (b *Bot) sendCategories(ctx context.Context, chatID, userID int64) {
	b.showCategories(ctx, chatID, userID, 0)
}

func (b *Bot) showCategories(ctx context.Context, chatID, userID int64, msgID int) {
	if _, ok := b.tableSession(ctx, chatID, userID); !ok {
		return
	}
	l := b.getLang(userID)
	b.editOrSend(chatID, msgID, lang.T(l, "pick_category"), categoryKeyboard(l))
}

func (b *Bot) showItems(ctx context.Context, chatID, userID int64, msgID int, category string) {
	if !models.ValidCategory(category) {
		return
	}
	if _, ok := b.tableSession(ctx, chatID, userID); !ok {
		return
	}
	items, err := services.ListMenuByCategory(ctx, category, true)
	if err != nil {
		b.log.Error("list menu", zap.String("category", category), zap.Error(err))
		return
	}
	l := b.getLang(userID)
	if len(items) == 0 {
		b.editOrSend(chatID, msgID, lang.T(l, "menu_empty"), categoryKeyboard(l))
		return
	}
	b.editOrSend(chatID, msgID, lang.T(l, "cat_"+category), itemsKeyboard(items, l))
}

func (b *Bot) startPick(ctx context.Context, chatID, userID int64, msgID int, itemID string) {
	if _, ok := b.tableSession(ctx, chatID, userID); !ok {
		return
	}
	b.update(userID, func(s *userState) { s.Pick = &pickState{ItemID: itemID} })
	b.showPick(ctx, chatID, userID, msgID)
}

// showPick renders the current pick with its add-ons.
func (b *Bot) showPick(ctx context.Context, chatID, userID int64, msgID int) {
	st := b.state(userID)
	b.usersMu.Lock()
	var pick pickState
	if st.Pick != nil {
		pick = *st.Pick
		pick.ModifierIDs = append([]int64(nil), st.Pick.ModifierIDs...)
	}
	b.usersMu.Unlock()
	if pick.ItemID == "" {
		return
	}
	l := b.getLang(userID)

	item, err := services.GetMenuItem(ctx, pick.ItemID)
	if err != nil {
		b.log.Warn("get menu item", zap.String("item_id", pick.ItemID), zap.Error(err))
		return
	}
	if !item.Available {
		b.sendLang(chatID, userID, "item_unavailable")
		return
	}
	mods, err := services.ListModifiers(ctx, item.ID)
	if err != nil {
		b.log.Error("list modifiers", zap.String("item_id", item.ID), zap.Error(err))
		return
	}
	text := fmt.Sprintf(lang.T(l, "modifiers_prompt"), fmt.Sprintf("%s · %s", item.Name, cart.FormatMoney(item.Price)))
	if pick.Instructions != "" {
		text += "\n✎ " + pick.Instructions
	}
	b.editOrSend(chatID, msgID, text, modifiersKeyboard(*item, mods, pick.ModifierIDs, l))
}

func (b *Bot) toggleModifier(ctx context.Context, chatID, userID int64, msgID int, arg string) {
	itemID, modStr, ok := strings.Cut(arg, ":")
	if !ok {
		return
	}
	modID, err := strconv.ParseInt(modStr, 10, 64)
	if err != nil {
		return
	}
	stale := false
	b.update(userID, func(s *userState) {
		if s.Pick == nil || s.Pick.ItemID != itemID {
			stale = true
			return
		}
		s.Pick.ModifierIDs = toggleID(s.Pick.ModifierIDs, modID)
	})
	if stale {
		b.startPick(ctx, chatID, userID, msgID, itemID)
		return
	}
	b.showPick(ctx, chatID, userID, msgID)
}

// handleNote takes the free-text instructions for the item being picked.
func (b *Bot) handleNote(ctx context.Context, chatID, userID int64, text string) {
	if text == "" {
		return
	}
	saved := false
	b.update(userID, func(s *userState) {
		if s.Pick != nil && s.Pick.AwaitingNote {
			s.Pick.Instructions = text
			s.Pick.AwaitingNote = false
			saved = true
		}
	})
	if !saved {
		b.sendLang(chatID, userID, "help")
		return
	}
	b.sendLang(chatID, userID, "note_saved", text)
	b.showPick(ctx, chatID, userID, 0)
}

func (b *Bot) addPicked(ctx context.Context, chatID, userID int64, msgID int, itemID string) {
	sess, ok := b.tableSession(ctx, chatID, userID)
	if !ok {
		return
	}
	var pick pickState
	b.update(userID, func(s *userState) {
		if s.Pick != nil && s.Pick.ItemID == itemID {
			pick = *s.Pick
		} else {
			pick = pickState{ItemID: itemID}
		}
		s.Pick = nil
	})

	item, err := services.GetMenuItem(ctx, pick.ItemID)
	if err != nil {
		b.log.Warn("get menu item", zap.String("item_id", pick.ItemID), zap.Error(err))
		return
	}
	var mods []models.MenuModifier
	if len(pick.ModifierIDs) > 0 {
		all, err := services.ListModifiers(ctx, item.ID)
		if err != nil {
			b.log.Error("list modifiers", zap.String("item_id", item.ID), zap.Error(err))
			return
		}
		mods = orderedModifiers(all, pick.ModifierIDs)
	}

	c, _, err := b.desk.AddItem(ctx, sess, *item, pick.Instructions, mods)
	if err != nil {
		if errors.Is(err, services.ErrItemUnavailable) {
			b.sendLang(chatID, userID, "item_unavailable")
			return
		}
		b.log.Error("add to cart", zap.Int64("staff_id", sess.StaffID), zap.Error(err))
		return
	}
	l := b.getLang(userID)
	text := fmt.Sprintf(lang.T(l, "added"), item.Name) + "\n\n" + services.FormatCart(c, l)
	b.editOrSend(chatID, msgID, text, cartKeyboard(c, l))
}

func (b *Bot) sendCart(ctx context.Context, chatID, userID int64, msgID int) {
	sess, ok := b.tableSession(ctx, chatID, userID)
	if !ok {
		return
	}
	c, err := b.desk.Cart(ctx, sess)
	if err != nil {
		b.log.Error("load cart", zap.String("cart_key", sess.CartKey()), zap.Error(err))
		return
	}
	l := b.getLang(userID)
	b.editOrSend(chatID, msgID, services.FormatCart(c, l), cartKeyboard(c, l))
}

func (b *Bot) handleLineCallback(ctx context.Context, chatID, userID int64, msgID int, arg string) {
	action, lineID, ok := strings.Cut(arg, ":")
	if !ok || action == "noop" {
		return
	}
	sess, ok := b.tableSession(ctx, chatID, userID)
	if !ok {
		return
	}
	var (
		c   *cart.Cart
		err error
	)
	switch action {
	case "inc":
		c, err = b.desk.Increment(ctx, sess, lineID, 1)
	case "dec":
		c, err = b.desk.Increment(ctx, sess, lineID, -1)
	case "del":
		c, err = b.desk.RemoveLine(ctx, sess, lineID)
	default:
		return
	}
	if err != nil {
		b.log.Error("edit cart line", zap.String("action", action), zap.String("line_id", lineID), zap.Error(err))
		return
	}
	l := b.getLang(userID)
	b.editOrSend(chatID, msgID, services.FormatCart(c, l), cartKeyboard(c, l))
}

func (b *Bot) clearCart(ctx context.Context, chatID, userID int64, msgID int) {
	sess, ok := b.tableSession(ctx, chatID, userID)
	if !ok {
		return
	}
	if err := b.desk.Clear(ctx, sess); err != nil {
		b.log.Error("clear cart", zap.String("cart_key", sess.CartKey()), zap.Error(err))
		return
	}
	l := b.getLang(userID)
	b.editOrSend(chatID, msgID, lang.T(l, "cart_cleared"), categoryKeyboard(l))
}

func (b *Bot) submitCart(ctx context.Context, chatID, userID int64, msgID int) {
	sess, ok := b.tableSession(ctx, chatID, userID)
	if !ok {
		return
	}
	l := b.getLang(userID)
	o, err := b.desk.Submit(ctx, sess)
	if err != nil {
		if services.IsInputError(err) || errors.Is(err, services.ErrEmptyCart) {
			b.sendLang(chatID, userID, "submit_failed", err.Error())
			return
		}
		b.log.Error("submit order", zap.String("cart_key", sess.CartKey()), zap.Error(err))
		b.sendLang(chatID, userID, "submit_failed", "internal error")
		return
	}
	total := cart.FormatMoney(o.Total)
	if cur := b.cfg.Cart.Currency; cur != "" {
		total += " " + cur
	}
	b.editOrSend(chatID, msgID, fmt.Sprintf(lang.T(l, "order_submitted"), o.ID, total), categoryKeyboard(l))
	b.RefreshOrderCards(ctx, o.ID)
}
