package services

import (
	"context"

	"restaurant-backoffice/db"
)

// GetChatLanguage returns the language picked with /language by the
// Telegram user. ok is false if none was stored or the lookup failed.
func GetChatLanguage(ctx context.Context, tgUserID int64) (language string, ok bool) {
	err := db.Pool.QueryRow(ctx, `SELECT language FROM chat_languages WHERE tg_user_id = $1`, tgUserID).Scan(&language)
	if err != nil {
		return "", false
	}
	return language, true
}

func SetChatLanguage(ctx context.Context, tgUserID int64, language string) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO chat_languages (tg_user_id, language, selected_at)
		VALUES ($1, $2, now())
		ON CONFLICT (tg_user_id) DO UPDATE SET language = EXCLUDED.language, selected_at = now()`,
		tgUserID, language,
	)
	return err
}
