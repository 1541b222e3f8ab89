package lang

const (
	Uz = "uz"
	Ru = "ru"
	En = "en"
)

// T returns the message for key in langCode, falling back to English and
// then to the key itself.
func T(langCode, key string) string {
	if m, ok := messages[langCode]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	if s, ok := messages[En][key]; ok {
		return s
	}
	return key
}

func Supported(code string) bool {
	_, ok := messages[code]
	return ok
}

var messages = map[string]map[string]string{
	En: {
		"welcome":          "Back-office bot. Log in with /login <phone> <pin>.",
		"help":             "/tables – pick a table\n/cart – current order\n/orders – open orders\n/logout – end session",
		"login_usage":      "Usage: /login <phone> <pin>",
		"login_ok":         "Welcome, %s.",
		"login_failed":     "Wrong phone or PIN.",
		"login_wait":       "Too many attempts. Try again in %d s.",
		"not_logged_in":    "Please log in first: /login <phone> <pin>",
		"logged_out":       "Session ended.",
		"pick_table":       "Choose a table:",
		"no_tables":        "No tables configured.",
		"table_selected":   "Table %s selected.",
		"pick_table_first": "Choose a table first: /tables",
		"pick_category":    "Choose a category:",
		"menu_empty":       "Nothing in this category.",
		"item_unavailable": "This item is not available.",
		"modifiers_prompt": "%s\nSelect add-ons, then add to order.",
		"btn_add":          "➕ Add to order",
		"added":            "Added: %s",
		"cart_label":       "Order",
		"cart_empty":       "The order is empty.",
		"total":            "Total",
		"btn_submit":       "✅ Send to kitchen",
		"btn_clear":        "🗑 Clear",
		"btn_menu":         "📋 Menu",
		"btn_back":         "⬅️ Back",
		"cart_cleared":     "Order cleared.",
		"order_submitted":  "Order #%d sent to kitchen. Total: %s",
		"submit_failed":    "Could not submit the order: %s",
		"no_open_orders":   "No open orders.",
		"open_orders":      "Open orders:",
		"note_prompt":      "Send the special instructions for this item as a message.",
		"note_saved":       "Instructions saved: %s",
		"status_updated":   "Order #%d: %s",
		"cat_starter":      "Starters",
		"cat_food":         "Mains",
		"cat_drink":        "Drinks",
		"cat_dessert":      "Desserts",
		"status_new":       "New",
		"status_preparing": "Preparing",
		"status_ready":     "Ready",
		"status_served":    "Served",
		"status_paid":      "Paid",
		"status_cancelled": "Cancelled",
		"kt_header":        "🧾 Order #%d · Table %s",
		"kt_start":         "👨‍🍳 Start",
		"kt_ready":         "🔔 Ready",
		"order_header":     "Order #%d",
		"order_total":      "Total: %s",
		"order_status":     "Status: %s",
		"btn_served":       "🍽 Served",
		"btn_paid":         "💳 Paid",
		"btn_cancel":       "✖ Cancel",
		"btn_note":         "✎ Note",
		"order_ready":      "🔔 Order #%d for table %s is ready.",
		"not_allowed":      "Your role cannot do that.",
		"choose_lang":      "Choose a language:",
		"language_changed": "Language changed.",
	},
	Uz: {
		"welcome":          "Boshqaruv boti. Kirish: /login <telefon> <pin>.",
		"login_usage":      "Foydalanish: /login <telefon> <pin>",
		"login_ok":         "Xush kelibsiz, %s.",
		"login_failed":     "Telefon yoki PIN noto'g'ri.",
		"login_wait":       "Juda ko'p urinish. %d soniyadan keyin qayta urinib ko'ring.",
		"not_logged_in":    "Avval kiring: /login <telefon> <pin>",
		"pick_table":       "Stolni tanlang:",
		"table_selected":   "%s-stol tanlandi.",
		"pick_category":    "Bo'limni tanlang:",
		"cart_label":       "Buyurtma",
		"cart_empty":       "Buyurtma bo'sh.",
		"total":            "Jami",
		"btn_submit":       "✅ Oshxonaga yuborish",
		"btn_clear":        "🗑 Tozalash",
		"order_submitted":  "Buyurtma #%d oshxonaga yuborildi. Jami: %s",
		"cat_food":         "Taomlar",
		"cat_drink":        "Ichimliklar",
		"cat_dessert":      "Shirinliklar",
		"status_new":       "Yangi",
		"status_preparing": "Tayyorlanmoqda",
		"status_ready":     "Tayyor",
		"status_paid":      "To'langan",
		"status_cancelled": "Bekor qilindi",
		"btn_note":         "✎ Izoh",
		"order_ready":      "🔔 #%d buyurtma (stol %s) tayyor.",
		"language_changed": "Til o'zgartirildi.",
	},
	Ru: {
		"welcome":          "Бот бэк-офиса. Вход: /login <телефон> <pin>.",
		"login_usage":      "Использование: /login <телефон> <pin>",
		"login_ok":         "Добро пожаловать, %s.",
		"login_failed":     "Неверный телефон или PIN.",
		"login_wait":       "Слишком много попыток. Повторите через %d с.",
		"not_logged_in":    "Сначала войдите: /login <телефон> <pin>",
		"pick_table":       "Выберите стол:",
		"table_selected":   "Выбран стол %s.",
		"pick_category":    "Выберите раздел:",
		"cart_label":       "Заказ",
		"cart_empty":       "Заказ пуст.",
		"total":            "Итого",
		"btn_submit":       "✅ На кухню",
		"btn_clear":        "🗑 Очистить",
		"order_submitted":  "Заказ #%d отправлен на кухню. Итого: %s",
		"cat_food":         "Горячее",
		"cat_drink":        "Напитки",
		"cat_dessert":      "Десерты",
		"status_new":       "Новый",
		"status_preparing": "Готовится",
		"status_ready":     "Готов",
		"status_paid":      "Оплачен",
		"status_cancelled": "Отменён",
		"btn_note":         "✎ Примечание",
		"order_ready":      "🔔 Заказ #%d для стола %s готов.",
		"language_changed": "Язык изменён.",
	},
}
