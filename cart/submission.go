package cart

import (
	"fmt"
	"strconv"
)

// SubmissionLine is what crosses to the order store for one cart line.
type SubmissionLine struct {
	MenuItemID   string     `json:"menu_item_id"`
	Quantity     int        `json:"quantity"`
	Instructions string     `json:"instructions,omitempty"`
	Modifiers    []Modifier `json:"modifiers,omitempty"`
}

// Submission is the finalized cart. ClientTotal is advisory; the order
// store re-prices every line.
type Submission struct {
	Lines       []SubmissionLine `json:"lines"`
	ClientTotal int64            `json:"client_total"`
}

func (c *Cart) Submission() Submission {
	s := Submission{
		Lines:       make([]SubmissionLine, 0, len(c.lines)),
		ClientTotal: c.Total(),
	}
	for _, l := range c.lines {
		l = l.clone()
		s.Lines = append(s.Lines, SubmissionLine{
			MenuItemID:   l.Item.ID,
			Quantity:     l.Quantity,
			Instructions: l.Instructions,
			Modifiers:    l.Modifiers,
		})
	}
	return s
}

// FormatMoney renders minor units with two fractional digits: 1605 -> "16.05".
func FormatMoney(minor int64) string {
	sign := ""
	// uint64 holds the magnitude of math.MinInt64
	abs := uint64(minor)
	if minor < 0 {
		sign = "-"
		abs = -abs
	}
	return fmt.Sprintf("%s%s.%02d", sign, strconv.FormatUint(abs/100, 10), abs%100)
}
