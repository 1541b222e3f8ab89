package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"restaurant-backoffice/lang"
	"restaurant-backoffice/models"
	"restaurant-backoffice/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// apiForAudience picks the bot that owns cards for audience. Kitchen tickets
// go through the kitchen bot when it is configured.
func (b *Bot) apiForAudience(audience string) *tgbotapi.BotAPI {
	if audience == services.AudienceKitchen && b.kitchenAPI != nil {
		return b.kitchenAPI
	}
	return b.api
}

func cardMarkup(c services.OrderCardContent) *tgbotapi.InlineKeyboardMarkup {
	if len(c.Buttons) == 0 {
		return nil
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, row := range c.Buttons {
		var btns []tgbotapi.InlineKeyboardButton
		for _, btn := range row {
			btns = append(btns, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.CallbackData))
		}
		rows = append(rows, btns)
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

// UpsertOrderCard edits the card for (order, audience) in place when one was
// posted before, and posts a new one otherwise. A deleted message is
// re-posted; "message is not modified" is ignored.
func (b *Bot) UpsertOrderCard(ctx context.Context, audience string, orderID int64, chatID int64, content services.OrderCardContent) {
	api := b.apiForAudience(audience)
	log := b.log.With(zap.Int64("order_id", orderID), zap.String("audience", audience))

	ptrChatID, messageID, ok, err := services.GetOrderMessagePointer(ctx, orderID, audience)
	if err != nil {
		log.Error("get card pointer", zap.Error(err))
		return
	}
	if ok {
		edit := tgbotapi.NewEditMessageText(ptrChatID, messageID, content.Text)
		if kb := cardMarkup(content); kb != nil {
			edit.ReplyMarkup = kb
		} else {
			edit.ReplyMarkup = &tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
		}
		_, err = api.Send(edit)
		if err == nil {
			return
		}
		if strings.Contains(err.Error(), "not modified") {
			return
		}
		if !strings.Contains(err.Error(), "not found") {
			log.Warn("edit card", zap.Error(err))
			return
		}
		chatID = ptrChatID
	}
	b.postCard(ctx, api, audience, orderID, chatID, content)
}

// sendCard always posts a fresh card and moves the pointer to it.
func (b *Bot) sendCard(ctx context.Context, audience string, orderID, chatID int64, content services.OrderCardContent) {
	b.postCard(ctx, b.apiForAudience(audience), audience, orderID, chatID, content)
}

func (b *Bot) postCard(ctx context.Context, api *tgbotapi.BotAPI, audience string, orderID, chatID int64, content services.OrderCardContent) {
	msg := tgbotapi.NewMessage(chatID, content.Text)
	if kb := cardMarkup(content); kb != nil {
		msg.ReplyMarkup = *kb
	}
	sent, err := api.Send(msg)
	if err != nil {
		b.log.Warn("send card", zap.Int64("order_id", orderID), zap.String("audience", audience), zap.Error(err))
		return
	}
	if err := services.UpsertOrderMessagePointer(ctx, orderID, audience, chatID, sent.MessageID); err != nil {
		b.log.Error("save card pointer", zap.Int64("order_id", orderID), zap.Error(err))
	}
	if audience == services.AudienceKitchen {
		meta := map[string]any{"sent_via": "kitchen_ticket", "order_id": orderID}
		if err := services.SaveOutboundMessage(ctx, chatID, content.Text, meta); err != nil {
			b.log.Warn("save outbound", zap.Error(err))
		}
	}
}

func (b *Bot) lockOrder(orderID int64) func() {
	v, _ := b.orderLocks.LoadOrStore(orderID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// RefreshOrderCards redraws the kitchen ticket and the waiter's card after
// any order change.
func (b *Bot) RefreshOrderCards(ctx context.Context, orderID int64) {
	unlock := b.lockOrder(orderID)
	defer unlock()

	o, err := services.GetOrder(ctx, orderID)
	if err != nil {
		b.log.Warn("refresh cards: get order", zap.Int64("order_id", orderID), zap.Error(err))
		return
	}
	table := b.tableLabel(ctx, o.TableID)

	if chatID := b.cfg.Telegram.KitchenChatID; chatID != 0 {
		items, err := services.ListOrderItems(ctx, orderID)
		if err != nil {
			b.log.Error("refresh cards: order items", zap.Int64("order_id", orderID), zap.Error(err))
		} else {
			b.UpsertOrderCard(ctx, services.AudienceKitchen, orderID, chatID, services.BuildKitchenTicket(o, table, items, lang.En))
		}
	}

	waiter, err := services.GetStaff(ctx, o.StaffID)
	if err != nil || waiter.TgUserID == nil {
		return
	}
	uid := *waiter.TgUserID
	b.UpsertOrderCard(ctx, services.AudienceStaff, orderID, uid, services.BuildStaffCard(o, table, b.getLang(uid)))
}

// startKitchenCallbacks takes the status buttons pressed on kitchen tickets.
func (b *Bot) startKitchenCallbacks(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = []string{"callback_query"}
	updates := b.kitchenAPI.GetUpdatesChan(u)
	b.log.Info("kitchen bot started", zap.String("username", b.kitchenAPI.Self.UserName))
	for {
		select {
		case <-ctx.Done():
			b.kitchenAPI.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.CallbackQuery == nil || !strings.HasPrefix(update.CallbackQuery.Data, "order_status:") {
				continue
			}
			hctx, cancel := context.WithTimeout(ctx, handlerTimeout)
			b.handleOrderStatusCallback(hctx, b.kitchenAPI, update.CallbackQuery)
			cancel()
		}
	}
}

// handleOrderStatusCallback applies "order_status:<id>:<status>" for the
// staff member who pressed the button and redraws both cards.
func (b *Bot) handleOrderStatusCallback(ctx context.Context, api *tgbotapi.BotAPI, cq *tgbotapi.CallbackQuery) {
	toast := func(text string) {
		if _, err := api.Request(tgbotapi.NewCallback(cq.ID, text)); err != nil {
			b.log.Debug("answer callback", zap.Error(err))
		}
	}
	orderID, status, ok := services.ParseStatusCallback(cq.Data)
	if !ok {
		toast("")
		return
	}
	userID := cq.From.ID
	l := b.getLang(userID)

	st, err := services.GetStaffByTelegram(ctx, userID)
	if err != nil {
		toast(lang.T(l, "not_logged_in"))
		return
	}
	sess := models.Session{StaffID: st.ID, StaffName: st.FullName, Role: st.Role}
	if !services.CanSetStatus(sess.Role, status) {
		toast(lang.T(l, "not_allowed"))
		return
	}

	o, err := b.desk.ChangeStatus(ctx, sess, orderID, status)
	if err != nil {
		if errors.Is(err, services.ErrInvalidTransition) || errors.Is(err, services.ErrNotFound) {
			toast(err.Error())
			b.RefreshOrderCards(ctx, orderID)
			return
		}
		b.log.Error("change status", zap.Int64("order_id", orderID), zap.String("status", status), zap.Error(err))
		toast("error")
		return
	}
	b.log.Info("order status changed",
		zap.Int64("order_id", o.ID), zap.String("status", o.Status), zap.Int64("staff_id", sess.StaffID))
	toast(fmt.Sprintf(lang.T(l, "status_updated"), o.ID, services.StatusLabel(l, o.Status)))
	b.RefreshOrderCards(ctx, orderID)

	if o.Status == services.OrderStatusReady {
		b.notifyReady(ctx, o)
	}
}

// notifyReady tells the waiter the food is ready, once per 30 seconds per order.
func (b *Bot) notifyReady(ctx context.Context, o *models.Order) {
	sent, err := services.SentStatusNoticeWithin30s(ctx, o.ID, o.Status)
	if err != nil {
		b.log.Warn("status notice dedup", zap.Int64("order_id", o.ID), zap.Error(err))
	}
	if sent {
		return
	}
	waiter, err := services.GetStaff(ctx, o.StaffID)
	if err != nil || waiter.TgUserID == nil {
		return
	}
	uid := *waiter.TgUserID
	text := fmt.Sprintf(lang.T(b.getLang(uid), "order_ready"), o.ID, b.tableLabel(ctx, o.TableID))
	b.send(uid, text)
	meta := map[string]any{"sent_via": "order_status_notify", "order_id": o.ID, "status": o.Status}
	if err := services.SaveOutboundMessage(ctx, uid, text, meta); err != nil {
		b.log.Warn("save outbound", zap.Error(err))
	}
}
