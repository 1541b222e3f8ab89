package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"restaurant-backoffice/cart"
	"restaurant-backoffice/lang"
	"restaurant-backoffice/models"
	"restaurant-backoffice/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// adderState is the /additem flow: category, then name, then price.
type adderState struct {
	Step     string // "category", "name", "price"
	Category string
	Name     string
}

const managerHelp = `/additem – add a menu item
/addmod <item_id> <price> <name> – add an add-on
/avail <item_id> on|off – show or hide an item
/addtable <seats> <label>
/addstaff <role> <hourly_rate> <phone> <full name>
/stock – stock levels
/adjust <stock_id> <delta> [reason]
/daily [YYYY-MM-DD]
/payroll – pending payroll
/cancel – stop the current step`

// parseMoney reads "15", "15.5" or "15.50" (spaces allowed as thousands
// separators) into minor units. A leading minus is kept for add-on deltas.
func parseMoney(s string) (int64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" || len(frac) > 2 || (hasFrac && frac == "") {
		return 0, false
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, false
	}
	var f int64
	if frac != "" {
		if len(frac) == 1 {
			frac += "0"
		}
		if f, err = strconv.ParseInt(frac, 10, 64); err != nil {
			return 0, false
		}
	}
	v := w*100 + f
	if neg {
		v = -v
	}
	return v, true
}

func emptyKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
}

func (b *Bot) manager(ctx context.Context, chatID, userID int64) (models.Session, bool) {
	sess, ok := b.session(ctx, chatID, userID)
	if !ok {
		return sess, false
	}
	if !sess.IsManager() {
		b.sendLang(chatID, userID, "not_allowed")
		return sess, false
	}
	return sess, true
}

func (b *Bot) handleManagerCommand(ctx context.Context, chatID, userID int64, cmd, args string) {
	switch cmd {
	case "/cancel":
		b.update(userID, func(s *userState) {
			s.Adder = nil
			s.Pick = nil
		})
		b.send(chatID, "Cancelled.")
	case "/stock":
		b.handleStock(ctx, chatID, userID)
	case "/adjust":
		b.handleAdjust(ctx, chatID, userID, args)
	case "/manage":
		if _, ok := b.manager(ctx, chatID, userID); ok {
			b.send(chatID, managerHelp)
		}
	case "/additem":
		if _, ok := b.manager(ctx, chatID, userID); ok {
			b.update(userID, func(s *userState) { s.Adder = &adderState{Step: "category"} })
			b.sendWithInline(chatID, lang.T(b.getLang(userID), "pick_category"), adderCategoryKeyboard(b.getLang(userID)))
		}
	case "/addmod":
		b.handleAddModifier(ctx, chatID, userID, args)
	case "/avail":
		b.handleAvailability(ctx, chatID, userID, args)
	case "/addtable":
		b.handleAddTable(ctx, chatID, userID, args)
	case "/addstaff":
		b.handleAddStaff(ctx, chatID, userID, args)
	case "/daily":
		b.handleDaily(ctx, chatID, userID, args)
	case "/payroll":
		b.handlePayroll(ctx, chatID, userID)
	default:
		b.sendLang(chatID, userID, "help")
	}
}

func adderCategoryKeyboard(langCode string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, c := range models.Categories {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(lang.T(langCode, "cat_"+c), "adder_cat:"+c),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) handleManagerCallback(ctx context.Context, chatID, userID int64, msgID int, data string) {
	switch {
	case strings.HasPrefix(data, "adder_cat:"):
		category := strings.TrimPrefix(data, "adder_cat:")
		if !models.ValidCategory(category) {
			return
		}
		if _, ok := b.manager(ctx, chatID, userID); !ok {
			return
		}
		b.update(userID, func(s *userState) { s.Adder = &adderState{Step: "name", Category: category} })
		b.editOrSend(chatID, msgID, "Send the item name:", emptyKeyboard())
	case strings.HasPrefix(data, "payroll_paid:"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "payroll_paid:"), 10, 64)
		if err != nil {
			return
		}
		if _, ok := b.manager(ctx, chatID, userID); !ok {
			return
		}
		if err := services.MarkPayrollPaid(ctx, id); err != nil {
			b.send(chatID, "Could not update payroll: "+err.Error())
			return
		}
		b.log.Info("payroll paid", zap.Int64("entry_id", id), zap.Int64("tg_user_id", userID))
		b.editOrSend(chatID, msgID, fmt.Sprintf("Payroll entry %d marked paid.", id), emptyKeyboard())
	}
}

// handleAdderFlow consumes text for an active /additem flow.
func (b *Bot) handleAdderFlow(ctx context.Context, chatID, userID int64, text string) bool {
	st := b.state(userID)
	b.usersMu.Lock()
	var ad adderState
	if st.Adder != nil {
		ad = *st.Adder
	}
	b.usersMu.Unlock()

	switch ad.Step {
	case "name":
		if text == "" {
			return true
		}
		b.update(userID, func(s *userState) {
			if s.Adder != nil {
				s.Adder.Name = text
				s.Adder.Step = "price"
			}
		})
		b.send(chatID, fmt.Sprintf("Enter the price for «%s» (e.g. 12.50):", text))
		return true
	case "price":
		price, ok := parseMoney(text)
		if !ok || price <= 0 {
			b.send(chatID, "Invalid price. Send a number like 12.50.")
			return true
		}
		b.update(userID, func(s *userState) { s.Adder = nil })
		id, err := services.AddMenuItem(ctx, ad.Category, ad.Name, price)
		if err != nil {
			b.log.Error("add menu item", zap.String("name", ad.Name), zap.Error(err))
			b.send(chatID, "Failed to add: "+err.Error())
			return true
		}
		b.log.Info("menu item added", zap.Int64("id", id), zap.String("category", ad.Category))
		b.send(chatID, fmt.Sprintf("✅ Added %s: %s · %s (id %d)", lang.T(b.getLang(userID), "cat_"+ad.Category), ad.Name, cart.FormatMoney(price), id))
		return true
	case "category":
		b.sendWithInline(chatID, lang.T(b.getLang(userID), "pick_category"), adderCategoryKeyboard(b.getLang(userID)))
		return true
	}
	return false
}

func (b *Bot) handleAddModifier(ctx context.Context, chatID, userID int64, args string) {
	if _, ok := b.manager(ctx, chatID, userID); !ok {
		return
	}
	fields := strings.Fields(args)
	if len(fields) < 3 {
		b.send(chatID, "Usage: /addmod <item_id> <price> <name>")
		return
	}
	itemID, err := strconv.ParseInt(fields[0], 10, 64)
	delta, ok := parseMoney(fields[1])
	if err != nil || !ok {
		b.send(chatID, "Usage: /addmod <item_id> <price> <name>")
		return
	}
	name := strings.Join(fields[2:], " ")
	id, err := services.AddModifier(ctx, itemID, name, delta)
	if err != nil {
		b.send(chatID, "Failed to add: "+err.Error())
		return
	}
	b.send(chatID, fmt.Sprintf("✅ Add-on %s (%s) added, id %d.", name, cart.FormatMoney(delta), id))
}

func (b *Bot) handleAvailability(ctx context.Context, chatID, userID int64, args string) {
	if _, ok := b.manager(ctx, chatID, userID); !ok {
		return
	}
	fields := strings.Fields(args)
	if len(fields) != 2 || (fields[1] != "on" && fields[1] != "off") {
		b.send(chatID, "Usage: /avail <item_id> on|off")
		return
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		b.send(chatID, "Usage: /avail <item_id> on|off")
		return
	}
	if err := services.SetMenuItemAvailable(ctx, id, fields[1] == "on"); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			b.send(chatID, "No such item.")
			return
		}
		b.log.Error("set availability", zap.Int64("id", id), zap.Error(err))
		return
	}
	b.send(chatID, fmt.Sprintf("Item %d is now %s.", id, fields[1]))
}

func (b *Bot) handleAddTable(ctx context.Context, chatID, userID int64, args string) {
	if _, ok := b.manager(ctx, chatID, userID); !ok {
		return
	}
	seatsStr, label, _ := strings.Cut(args, " ")
	seats, err := strconv.Atoi(seatsStr)
	label = strings.TrimSpace(label)
	if err != nil || seats <= 0 || label == "" {
		b.send(chatID, "Usage: /addtable <seats> <label>")
		return
	}
	id, err := services.AddTable(ctx, label, seats)
	if err != nil {
		b.send(chatID, "Failed to add: "+err.Error())
		return
	}
	b.send(chatID, fmt.Sprintf("✅ Table %s (%d seats) added, id %d.", label, seats, id))
}

func (b *Bot) handleAddStaff(ctx context.Context, chatID, userID int64, args string) {
	if _, ok := b.manager(ctx, chatID, userID); !ok {
		return
	}
	const usage = "Usage: /addstaff <role> <hourly_rate> <phone> <full name>"
	fields := strings.Fields(args)
	if len(fields) < 4 || !models.ValidRole(fields[0]) {
		b.send(chatID, usage)
		return
	}
	rate, ok := parseMoney(fields[1])
	if !ok || rate < 0 {
		b.send(chatID, usage)
		return
	}
	st, pin, err := services.AddStaff(ctx, strings.Join(fields[3:], " "), fields[2], fields[0], rate)
	if err != nil {
		b.send(chatID, "Failed to add: "+err.Error())
		return
	}
	b.log.Info("staff added", zap.Int64("staff_id", st.ID), zap.String("role", st.Role))
	b.send(chatID, fmt.Sprintf("✅ %s (%s) added. PIN: %s\nShare it privately; it is not shown again.", st.FullName, st.Role, pin))
}

func (b *Bot) handleStock(ctx context.Context, chatID, userID int64) {
	if _, ok := b.session(ctx, chatID, userID); !ok {
		return
	}
	items, err := services.ListStock(ctx)
	if err != nil {
		b.log.Error("list stock", zap.Error(err))
		return
	}
	b.send(chatID, formatStock(items))
}

func formatStock(items []models.StockItem) string {
	if len(items) == 0 {
		return "No stock items."
	}
	var sb strings.Builder
	for _, it := range items {
		mark := ""
		if it.NeedsReorder() {
			mark = " ⚠️"
		}
		fmt.Fprintf(&sb, "%d. %s: %s %s%s\n", it.ID, it.Name,
			strconv.FormatFloat(it.Quantity, 'f', -1, 64), it.Unit, mark)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (b *Bot) handleAdjust(ctx context.Context, chatID, userID int64, args string) {
	sess, ok := b.session(ctx, chatID, userID)
	if !ok {
		return
	}
	const usage = "Usage: /adjust <stock_id> <delta> [reason]"
	fields := strings.Fields(args)
	if len(fields) < 2 {
		b.send(chatID, usage)
		return
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		b.send(chatID, usage)
		return
	}
	delta, err := strconv.ParseFloat(fields[1], 64)
	if err != nil || delta == 0 {
		b.send(chatID, usage)
		return
	}
	item, err := services.AdjustStock(ctx, sess, id, delta, strings.Join(fields[2:], " "))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInsufficientStock):
			b.send(chatID, "Not enough in stock.")
		case errors.Is(err, services.ErrNotFound):
			b.send(chatID, "No such stock item.")
		default:
			b.log.Error("adjust stock", zap.Int64("stock_id", id), zap.Error(err))
		}
		return
	}
	b.send(chatID, formatStock([]models.StockItem{*item}))
}

func (b *Bot) handleDaily(ctx context.Context, chatID, userID int64, args string) {
	if _, ok := b.manager(ctx, chatID, userID); !ok {
		return
	}
	date := strings.TrimSpace(args)
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		b.send(chatID, "Usage: /daily [YYYY-MM-DD]")
		return
	}
	stats, err := services.GetDailyStats(ctx, date)
	if err != nil {
		b.log.Error("daily stats", zap.String("date", date), zap.Error(err))
		return
	}
	b.send(chatID, fmt.Sprintf("📊 %s\nOrders: %d (paid %d, cancelled %d)\nRevenue: %s\nAverage ticket: %s",
		stats.Date, stats.OrdersCount, stats.PaidCount, stats.CancelledCount,
		cart.FormatMoney(stats.Revenue), cart.FormatMoney(stats.AverageTicket)))
}

func (b *Bot) handlePayroll(ctx context.Context, chatID, userID int64) {
	if _, ok := b.manager(ctx, chatID, userID); !ok {
		return
	}
	entries, err := services.ListPayroll(ctx)
	if err != nil {
		b.log.Error("list payroll", zap.Error(err))
		return
	}
	open := services.FilterPayroll(entries, services.PayrollFilter{Status: models.PayrollApproved})
	open = append(open, services.FilterPayroll(entries, services.PayrollFilter{Status: models.PayrollPending})...)
	if len(open) == 0 {
		b.send(chatID, "Nothing to pay.")
		return
	}
	for _, e := range open {
		text := fmt.Sprintf("%s · %s – %s\n%.2f h · %s · %s", e.StaffName,
			e.PeriodStart.Format("2006-01-02"), e.PeriodEnd.Format("2006-01-02"),
			e.Hours, cart.FormatMoney(e.Amount), e.Status)
		if e.Status != models.PayrollApproved {
			b.send(chatID, text)
			continue
		}
		kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💳 Mark paid", fmt.Sprintf("payroll_paid:%d", e.ID)),
		))
		b.sendWithInline(chatID, text, kb)
	}
	b.send(chatID, "Total: "+cart.FormatMoney(services.PayrollTotal(open)))
}
