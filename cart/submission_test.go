package cart

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmission(t *testing.T) {
	c := New()
	c.Add(burger, "")
	c.Add(burger, "")
	c.Add(burger, "no pickles", cheese)

	s := c.Submission()
	require.Len(t, s.Lines, 2)
	assert.Equal(t, SubmissionLine{MenuItemID: "1", Quantity: 2}, s.Lines[0])
	assert.Equal(t, "no pickles", s.Lines[1].Instructions)
	assert.Equal(t, []Modifier{cheese}, s.Lines[1].Modifiers)
	assert.Equal(t, int64(1600), s.ClientTotal)
}

func TestSubmission_Empty(t *testing.T) {
	s := New().Submission()
	assert.NotNil(t, s.Lines)
	assert.Empty(t, s.Lines)
	assert.Zero(t, s.ClientTotal)
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{1600, "16.00"},
		{1605, "16.05"},
		{-250, "-2.50"},
		{123456789, "1234567.89"},
		{-5, "-0.05"},
		{math.MaxInt64, "92233720368547758.07"},
		{math.MinInt64, "-92233720368547758.08"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMoney(tt.in), "FormatMoney(%d)", tt.in)
	}
}
