package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestModifierError(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "menu_modifiers_item_name_key"})
	err := modifierError(dup, 4, " Cheese ")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), `"Cheese"`)

	err = modifierError(&pgconn.PgError{Code: "23503"}, 99, "Bacon")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "99")

	other := &pgconn.PgError{Code: "57014"}
	assert.Same(t, other, modifierError(other, 4, "Cheese"))

	plain := errors.New("conn reset")
	assert.Equal(t, plain, modifierError(plain, 4, "Cheese"))
}
