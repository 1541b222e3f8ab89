// Package cart holds the working set of lines a staff member assembles
// into an order before it is submitted.
//
// Prices are int64 minor currency units. A Cart belongs to one session and
// is not safe for concurrent use.
package cart

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Modifier is a named add-on with a price delta (may be negative).
type Modifier struct {
	Name       string `json:"name"`
	PriceDelta int64  `json:"price_delta"`
}

func (m Modifier) Equal(o Modifier) bool {
	return m.Name == o.Name && m.PriceDelta == o.PriceDelta
}

type MenuItemRef struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
}

type Line struct {
	ID           string      `json:"id"`
	Item         MenuItemRef `json:"item"`
	Quantity     int         `json:"quantity"`
	Instructions string      `json:"instructions,omitempty"`
	Modifiers    []Modifier  `json:"modifiers,omitempty"`
}

// UnitTotal is the item price plus all modifier deltas.
func (l Line) UnitTotal() int64 {
	total := l.Item.UnitPrice
	for _, m := range l.Modifiers {
		total += m.PriceDelta
	}
	return total
}

func (l Line) Subtotal() int64 {
	return l.UnitTotal() * int64(l.Quantity)
}

// matches reports whether an add of (itemID, instructions, mods) belongs on l.
// Modifiers are compared position by position.
func (l Line) matches(itemID, instructions string, mods []Modifier) bool {
	if l.Item.ID != itemID || l.Instructions != instructions {
		return false
	}
	if len(l.Modifiers) != len(mods) {
		return false
	}
	for i := range mods {
		if !l.Modifiers[i].Equal(mods[i]) {
			return false
		}
	}
	return true
}

type Cart struct {
	lines []Line
	newID func() string
}

func New() *Cart {
	return &Cart{newID: uuid.NewString}
}

// Add merges into an existing matching line or appends a new one with
// quantity 1. It returns a copy of the affected line.
func (c *Cart) Add(item MenuItemRef, instructions string, mods ...Modifier) Line {
	for i := range c.lines {
		if c.lines[i].matches(item.ID, instructions, mods) {
			c.lines[i].Quantity++
			return c.lines[i].clone()
		}
	}
	line := Line{
		ID:           c.generateID(),
		Item:         item,
		Quantity:     1,
		Instructions: instructions,
	}
	if len(mods) > 0 {
		line.Modifiers = append([]Modifier(nil), mods...)
	}
	c.lines = append(c.lines, line)
	return line.clone()
}

func (c *Cart) Remove(lineID string) {
	for i := range c.lines {
		if c.lines[i].ID == lineID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// UpdateQuantity replaces the line quantity. qty <= 0 removes the line.
func (c *Cart) UpdateQuantity(lineID string, qty int) {
	if qty <= 0 {
		c.Remove(lineID)
		return
	}
	for i := range c.lines {
		if c.lines[i].ID == lineID {
			c.lines[i].Quantity = qty
			return
		}
	}
}

func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) Total() int64 {
	var total int64
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	for i, l := range c.lines {
		out[i] = l.clone()
	}
	return out
}

func (c *Cart) Line(lineID string) (Line, bool) {
	for _, l := range c.lines {
		if l.ID == lineID {
			return l.clone(), true
		}
	}
	return Line{}, false
}

func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

// Quantity is the sum of all line quantities.
func (c *Cart) Quantity() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) generateID() string {
	if c.newID == nil {
		c.newID = uuid.NewString
	}
	return c.newID()
}

func (l Line) clone() Line {
	if l.Modifiers != nil {
		l.Modifiers = append([]Modifier(nil), l.Modifiers...)
	}
	return l
}

type cartJSON struct {
	Lines []Line `json:"lines"`
}

func (c *Cart) MarshalJSON() ([]byte, error) {
	lines := c.lines
	if lines == nil {
		lines = []Line{}
	}
	return json.Marshal(cartJSON{Lines: lines})
}

// UnmarshalJSON restores a stored cart. Lines with a non-positive
// quantity or without an id are dropped.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var raw cartJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode cart: %w", err)
	}
	c.lines = c.lines[:0]
	seen := make(map[string]struct{}, len(raw.Lines))
	for _, l := range raw.Lines {
		if l.ID == "" || l.Quantity <= 0 {
			continue
		}
		if _, dup := seen[l.ID]; dup {
			continue
		}
		seen[l.ID] = struct{}{}
		c.lines = append(c.lines, l)
	}
	if c.newID == nil {
		c.newID = uuid.NewString
	}
	return nil
}
