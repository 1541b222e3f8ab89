package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"restaurant-backoffice/db"

	"github.com/jackc/pgx/v5"
)

const ThrottleCooldownCapSeconds = 30

// ThrottledError carries how long the caller must wait before retrying.
type ThrottledError struct {
	WaitSeconds int
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("too many login attempts, retry in %ds", e.WaitSeconds)
}

func (e *ThrottledError) Unwrap() error { return ErrThrottled }

// LoginThrottleWaitSeconds returns how many seconds the phone must wait before trying again (0 if no cooldown).
func LoginThrottleWaitSeconds(ctx context.Context, phone string) (int, error) {
	var cooldownUntil *time.Time
	err := db.Pool.QueryRow(ctx, `
		SELECT cooldown_until FROM login_throttle WHERE phone = $1`,
		phone,
	).Scan(&cooldownUntil)
	return throttleWait(cooldownUntil, err, time.Now())
}

// throttleWait turns the throttle lookup into a wait. Only a missing row
// means no throttle; lookup failures are returned so login fails closed.
func throttleWait(until *time.Time, scanErr error, now time.Time) (int, error) {
	if errors.Is(scanErr, pgx.ErrNoRows) {
		return 0, nil
	}
	if scanErr != nil {
		return 0, fmt.Errorf("login throttle lookup: %w", scanErr)
	}
	return waitSecondsUntil(until, now), nil
}

func waitSecondsUntil(until *time.Time, now time.Time) int {
	if until == nil || !now.Before(*until) {
		return 0
	}
	return int(until.Sub(now).Seconds()) + 1 // round up
}

// RecordLoginFailed increments fail_count and sets cooldown_until = now() + min(30, 2^fail_count) seconds.
func RecordLoginFailed(ctx context.Context, phone string) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO login_throttle (phone, fail_count, last_failed_at, cooldown_until, updated_at)
		VALUES ($1, 1, now(), now() + (LEAST(30, POWER(2, 1)::int) || ' seconds')::interval, now())
		ON CONFLICT (phone) DO UPDATE SET
			fail_count = login_throttle.fail_count + 1,
			last_failed_at = now(),
			cooldown_until = now() + (LEAST(30, POWER(2, login_throttle.fail_count + 1)::int) || ' seconds')::interval,
			updated_at = now()`,
		phone,
	)
	return err
}

// RecordLoginSuccess resets fail_count and cooldown_until for the phone.
func RecordLoginSuccess(ctx context.Context, phone string) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO login_throttle (phone, fail_count, last_failed_at, cooldown_until, updated_at)
		VALUES ($1, 0, NULL, NULL, now())
		ON CONFLICT (phone) DO UPDATE SET
			fail_count = 0,
			last_failed_at = NULL,
			cooldown_until = NULL,
			updated_at = now()`,
		phone,
	)
	return err
}

// CooldownSecondsForFailCount returns min(30, 2^failCount).
func CooldownSecondsForFailCount(failCount int) int {
	s := int(math.Pow(2, float64(failCount)))
	if s > ThrottleCooldownCapSeconds {
		return ThrottleCooldownCapSeconds
	}
	return s
}
