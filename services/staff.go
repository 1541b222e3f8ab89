package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"restaurant-backoffice/db"
	"restaurant-backoffice/models"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

const staffColumns = `id, full_name, phone, role, hourly_rate, active, tg_user_id, created_at`

func scanStaff(row pgx.Row) (*models.Staff, error) {
	var s models.Staff
	if err := row.Scan(&s.ID, &s.FullName, &s.Phone, &s.Role, &s.HourlyRate, &s.Active, &s.TgUserID, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// NormalizePhone strips spaces, dashes and brackets so "+1 (555) 010-22"
// and "+155501022" are the same login.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(phone) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// AddStaff creates a staff member and returns the generated PIN. The PIN
// is stored only as a bcrypt hash; do not log it.
func AddStaff(ctx context.Context, fullName, phone, role string, hourlyRate int64) (*models.Staff, string, error) {
	fullName = strings.TrimSpace(fullName)
	phone = NormalizePhone(phone)
	if fullName == "" || phone == "" {
		return nil, "", fmt.Errorf("%w: name and phone are required", ErrInvalidInput)
	}
	if !models.ValidRole(role) {
		return nil, "", fmt.Errorf("%w: role %q", ErrInvalidInput, role)
	}
	if hourlyRate < 0 {
		return nil, "", fmt.Errorf("%w: hourly rate must be >= 0", ErrInvalidInput)
	}
	pin, err := GeneratePIN()
	if err != nil {
		return nil, "", fmt.Errorf("generate pin: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash pin: %w", err)
	}
	st, err := scanStaff(db.Pool.QueryRow(ctx, `
		INSERT INTO staff (full_name, phone, role, pin_hash, hourly_rate, active)
		VALUES ($1, $2, $3, $4, $5, true)
		RETURNING `+staffColumns,
		fullName, phone, role, string(hash), hourlyRate,
	))
	if err != nil {
		return nil, "", fmt.Errorf("insert staff: %w", err)
	}
	return st, pin, nil
}

func GetStaff(ctx context.Context, id int64) (*models.Staff, error) {
	st, err := scanStaff(db.Pool.QueryRow(ctx, `SELECT `+staffColumns+` FROM staff WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return st, nil
}

// GetStaffByTelegram returns the active staff member linked to a Telegram user.
func GetStaffByTelegram(ctx context.Context, tgUserID int64) (*models.Staff, error) {
	st, err := scanStaff(db.Pool.QueryRow(ctx, `
		SELECT `+staffColumns+` FROM staff WHERE tg_user_id = $1 AND active`, tgUserID))
	if err != nil {
		return nil, notFound(err)
	}
	return st, nil
}

func ListStaff(ctx context.Context, includeInactive bool) ([]models.Staff, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+staffColumns+` FROM staff
		WHERE active OR $1
		ORDER BY full_name`, includeInactive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Staff
	for rows.Next() {
		st, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *st)
	}
	return out, rows.Err()
}

// AuthenticatePIN checks phone + PIN for an active staff member, with the
// login throttle applied per phone.
func AuthenticatePIN(ctx context.Context, phone, pin string) (*models.Staff, error) {
	phone = NormalizePhone(phone)
	wait, err := LoginThrottleWaitSeconds(ctx, phone)
	if err != nil {
		return nil, err
	}
	if wait > 0 {
		return nil, &ThrottledError{WaitSeconds: wait}
	}

	var hash string
	st, err := scanStaffWithHash(db.Pool.QueryRow(ctx, `
		SELECT `+staffColumns+`, pin_hash FROM staff WHERE phone = $1 AND active`, phone), &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			_ = RecordLoginFailed(ctx, phone)
			return nil, ErrInvalidPIN
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) != nil {
		_ = RecordLoginFailed(ctx, phone)
		return nil, ErrInvalidPIN
	}
	_ = RecordLoginSuccess(ctx, phone)
	return st, nil
}

func scanStaffWithHash(row pgx.Row, hash *string) (*models.Staff, error) {
	var s models.Staff
	if err := row.Scan(&s.ID, &s.FullName, &s.Phone, &s.Role, &s.HourlyRate, &s.Active, &s.TgUserID, &s.CreatedAt, hash); err != nil {
		return nil, err
	}
	return &s, nil
}

// LinkTelegram binds a Telegram account to the staff member, unlinking it
// from anyone else first.
func LinkTelegram(ctx context.Context, staffID, tgUserID int64) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if _, err := tx.Exec(ctx, `UPDATE staff SET tg_user_id = NULL WHERE tg_user_id = $1 AND id <> $2`, tgUserID, staffID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE staff SET tg_user_id = $1 WHERE id = $2`, tgUserID, staffID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func UnlinkTelegram(ctx context.Context, tgUserID int64) error {
	_, err := db.Pool.Exec(ctx, `UPDATE staff SET tg_user_id = NULL WHERE tg_user_id = $1`, tgUserID)
	return err
}

func DeactivateStaff(ctx context.Context, id int64) error {
	tag, err := db.Pool.Exec(ctx, `UPDATE staff SET active = false, tg_user_id = NULL WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetPIN generates and stores a new PIN, returning the plain value once.
func ResetPIN(ctx context.Context, id int64) (string, error) {
	pin, err := GeneratePIN()
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	tag, err := db.Pool.Exec(ctx, `UPDATE staff SET pin_hash = $1 WHERE id = $2`, string(hash), id)
	if err != nil {
		return "", err
	}
	if tag.RowsAffected() == 0 {
		return "", ErrNotFound
	}
	return pin, nil
}
