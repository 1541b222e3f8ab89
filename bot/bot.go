package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"restaurant-backoffice/config"
	"restaurant-backoffice/lang"
	"restaurant-backoffice/models"
	"restaurant-backoffice/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const handlerTimeout = 15 * time.Second

// pickState is the item being configured before it goes into the cart.
type pickState struct {
	ItemID       string
	ModifierIDs  []int64 // selection order
	Instructions string
	AwaitingNote bool
}

type userState struct {
	TableID int64
	Lang    string
	Pick    *pickState
	Adder   *adderState
}

// Bot is the staff order-taking bot (TOKEN). When KITCHEN_TOKEN is set a
// second bot posts tickets to the kitchen chat and takes the cooks' status
// buttons; otherwise the staff bot posts them itself.
type Bot struct {
	api        *tgbotapi.BotAPI
	kitchenAPI *tgbotapi.BotAPI
	cfg        *config.Config
	desk       *services.Desk
	log        *zap.Logger

	users   map[int64]*userState
	usersMu sync.Mutex

	orderLocks sync.Map // map[orderID]*sync.Mutex
}

func New(cfg *config.Config, desk *services.Desk, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("staff bot: %w", err)
	}
	b := &Bot{
		api:   api,
		cfg:   cfg,
		desk:  desk,
		log:   log.Named("bot"),
		users: make(map[int64]*userState),
	}
	if cfg.Telegram.KitchenToken != "" {
		kitchen, err := tgbotapi.NewBotAPI(cfg.Telegram.KitchenToken)
		if err != nil {
			b.log.Warn("kitchen bot disabled", zap.Error(err))
		} else {
			b.kitchenAPI = kitchen
		}
	}
	return b, nil
}

func (b *Bot) setBotCommands() error {
	cfg := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "tables", Description: "Pick a table"},
		tgbotapi.BotCommand{Command: "cart", Description: "Current order"},
		tgbotapi.BotCommand{Command: "orders", Description: "Open orders"},
		tgbotapi.BotCommand{Command: "language", Description: "Language"},
		tgbotapi.BotCommand{Command: "logout", Description: "End session"},
	)
	_, err := b.api.Request(cfg)
	return err
}

// Start polls updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	if err := b.setBotCommands(); err != nil {
		b.log.Warn("set commands", zap.Error(err))
	}
	if b.kitchenAPI != nil {
		go b.startKitchenCallbacks(ctx)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	b.log.Info("staff bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(parent context.Context, update tgbotapi.Update) {
	ctx, cancel := context.WithTimeout(parent, handlerTimeout)
	defer cancel()

	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message == nil || update.Message.From == nil {
		return
	}
	msg := update.Message
	chatID, userID := msg.Chat.ID, msg.From.ID
	b.loadLang(ctx, userID)
	text := strings.TrimSpace(msg.Text)

	if !strings.HasPrefix(text, "/") {
		if b.handleAdderFlow(ctx, chatID, userID, text) {
			return
		}
		b.handleNote(ctx, chatID, userID, text)
		return
	}

	cmd, args, _ := strings.Cut(text, " ")
	args = strings.TrimSpace(args)
	switch cmd {
	case "/start", "/help":
		b.handleStart(ctx, chatID, userID)
	case "/login":
		b.handleLogin(ctx, chatID, userID, args)
	case "/logout":
		b.handleLogout(ctx, chatID, userID)
	case "/language":
		b.handleLanguage(chatID, userID)
	case "/tables":
		b.handleTables(ctx, chatID, userID)
	case "/menu":
		b.sendCategories(ctx, chatID, userID)
	case "/cart":
		b.sendCart(ctx, chatID, userID, 0)
	case "/orders":
		b.handleOrders(ctx, chatID, userID)
	default:
		b.handleManagerCommand(ctx, chatID, userID, cmd, args)
	}
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn("send", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) sendLang(chatID, userID int64, key string, args ...any) {
	text := lang.T(b.getLang(userID), key)
	if len(args) > 0 {
		text = fmt.Sprintf(text, args...)
	}
	b.send(chatID, text)
}

func (b *Bot) sendWithInline(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn("send", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// editOrSend replaces the message the button was pressed on, or sends a new
// one when messageID is 0.
func (b *Bot) editOrSend(chatID int64, messageID int, text string, kb tgbotapi.InlineKeyboardMarkup) {
	if messageID == 0 {
		b.sendWithInline(chatID, text, kb)
		return
	}
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, kb)
	if _, err := b.api.Send(edit); err != nil && !strings.Contains(err.Error(), "not modified") {
		b.sendWithInline(chatID, text, kb)
	}
}

func (b *Bot) state(userID int64) *userState {
	b.usersMu.Lock()
	defer b.usersMu.Unlock()
	st, ok := b.users[userID]
	if !ok {
		st = &userState{}
		b.users[userID] = st
	}
	return st
}

func (b *Bot) update(userID int64, f func(*userState)) {
	st := b.state(userID)
	b.usersMu.Lock()
	f(st)
	b.usersMu.Unlock()
}

func (b *Bot) getLang(userID int64) string {
	st := b.state(userID)
	b.usersMu.Lock()
	defer b.usersMu.Unlock()
	if st.Lang == "" {
		return lang.En
	}
	return st.Lang
}

// loadLang restores the stored language of a user the bot has not seen
// since it started.
func (b *Bot) loadLang(ctx context.Context, userID int64) {
	st := b.state(userID)
	b.usersMu.Lock()
	known := st.Lang != ""
	b.usersMu.Unlock()
	if known {
		return
	}
	code, ok := services.GetChatLanguage(ctx, userID)
	if !ok || !lang.Supported(code) {
		code = lang.En
	}
	b.update(userID, func(s *userState) {
		if s.Lang == "" {
			s.Lang = code
		}
	})
}

func (b *Bot) setLang(ctx context.Context, userID int64, code string) {
	b.update(userID, func(s *userState) { s.Lang = code })
	if err := services.SetChatLanguage(ctx, userID, code); err != nil {
		b.log.Warn("save language", zap.Int64("tg_user_id", userID), zap.Error(err))
	}
}

// session resolves the Telegram user into the acting staff member. ok is
// false (and the user has been told) when the chat is not linked.
func (b *Bot) session(ctx context.Context, chatID, userID int64) (models.Session, bool) {
	st, err := services.GetStaffByTelegram(ctx, userID)
	if err != nil {
		if !errors.Is(err, services.ErrNotFound) {
			b.log.Error("staff lookup", zap.Int64("tg_user_id", userID), zap.Error(err))
		}
		b.sendLang(chatID, userID, "not_logged_in")
		return models.Session{}, false
	}
	s := b.state(userID)
	b.usersMu.Lock()
	tableID := s.TableID
	b.usersMu.Unlock()
	return models.Session{StaffID: st.ID, StaffName: st.FullName, Role: st.Role, TableID: tableID}, true
}

func (b *Bot) handleStart(ctx context.Context, chatID, userID int64) {
	if _, err := services.GetStaffByTelegram(ctx, userID); err != nil {
		b.sendLang(chatID, userID, "welcome")
		return
	}
	b.sendLang(chatID, userID, "help")
}

func (b *Bot) handleLogin(ctx context.Context, chatID, userID int64, args string) {
	phone, pin, ok := parseLoginArgs(args)
	if !ok {
		b.sendLang(chatID, userID, "login_usage")
		return
	}
	st, err := services.AuthenticatePIN(ctx, phone, pin)
	if err != nil {
		var throttled *services.ThrottledError
		switch {
		case errors.As(err, &throttled):
			b.sendLang(chatID, userID, "login_wait", throttled.WaitSeconds)
		case errors.Is(err, services.ErrInvalidPIN):
			b.sendLang(chatID, userID, "login_failed")
		default:
			b.log.Error("login", zap.Error(err))
			b.sendLang(chatID, userID, "login_failed")
		}
		return
	}
	if err := services.LinkTelegram(ctx, st.ID, userID); err != nil {
		b.log.Error("link telegram", zap.Int64("staff_id", st.ID), zap.Error(err))
		b.sendLang(chatID, userID, "login_failed")
		return
	}
	b.log.Info("staff linked", zap.Int64("staff_id", st.ID), zap.Int64("tg_user_id", userID))
	b.sendLang(chatID, userID, "login_ok", st.FullName)
	b.sendLang(chatID, userID, "help")
}

func (b *Bot) handleLogout(ctx context.Context, chatID, userID int64) {
	if err := services.UnlinkTelegram(ctx, userID); err != nil {
		b.log.Error("unlink telegram", zap.Int64("tg_user_id", userID), zap.Error(err))
	}
	b.update(userID, func(s *userState) { *s = userState{Lang: s.Lang} })
	b.sendLang(chatID, userID, "logged_out")
}

func (b *Bot) handleLanguage(chatID, userID int64) {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("O'zbek", "lang:"+lang.Uz),
			tgbotapi.NewInlineKeyboardButtonData("Русский", "lang:"+lang.Ru),
			tgbotapi.NewInlineKeyboardButtonData("English", "lang:"+lang.En),
		),
	)
	b.sendWithInline(chatID, lang.T(b.getLang(userID), "choose_lang"), kb)
}

func (b *Bot) handleTables(ctx context.Context, chatID, userID int64) {
	if _, ok := b.session(ctx, chatID, userID); !ok {
		return
	}
	tables, err := services.ListTables(ctx)
	if err != nil {
		b.log.Error("list tables", zap.Error(err))
		return
	}
	if len(tables) == 0 {
		b.sendLang(chatID, userID, "no_tables")
		return
	}
	b.sendWithInline(chatID, lang.T(b.getLang(userID), "pick_table"), tablesKeyboard(tables))
}

func (b *Bot) handleOrders(ctx context.Context, chatID, userID int64) {
	sess, ok := b.session(ctx, chatID, userID)
	if !ok {
		return
	}
	var staffID int64
	if sess.Role == models.RoleWaiter {
		staffID = sess.StaffID
	}
	orders, err := services.ListOpenOrders(ctx, staffID)
	if err != nil {
		b.log.Error("list open orders", zap.Error(err))
		return
	}
	if len(orders) == 0 {
		b.sendLang(chatID, userID, "no_open_orders")
		return
	}
	l := b.getLang(userID)
	b.send(chatID, lang.T(l, "open_orders"))
	for i := range orders {
		o := &orders[i]
		content := services.BuildStaffCard(o, b.tableLabel(ctx, o.TableID), l)
		b.sendCard(ctx, services.AudienceStaff, o.ID, chatID, content)
	}
}

func (b *Bot) tableLabel(ctx context.Context, tableID int64) string {
	t, err := services.GetTable(ctx, tableID)
	if err != nil {
		return fmt.Sprintf("%d", tableID)
	}
	return t.Label
}

// parseLoginArgs splits "<phone> <pin>"; the phone may contain spaces.
func parseLoginArgs(args string) (phone, pin string, ok bool) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return "", "", false
	}
	pin = fields[len(fields)-1]
	phone = strings.Join(fields[:len(fields)-1], " ")
	if services.NormalizePhone(phone) == "" || pin == "" {
		return "", "", false
	}
	return phone, pin, true
}
