package services

import (
	"context"
	"fmt"

	"restaurant-backoffice/cart"
	"restaurant-backoffice/events"
	"restaurant-backoffice/models"

	"go.uber.org/zap"
)

type (
	SubmitFunc       func(ctx context.Context, sess models.Session, sub cart.Submission) (*models.Order, error)
	StatusUpdateFunc func(ctx context.Context, sess models.Session, orderID int64, status string) (*models.Order, error)
)

// Desk runs the order-taking flow on top of a CartStore: cart edits for a
// session, submission to the order store and status changes. Both the bot
// and the HTTP API go through it.
type Desk struct {
	carts     CartStore
	events    events.Publisher
	log       *zap.Logger
	submit    SubmitFunc
	setStatus StatusUpdateFunc
}

func NewDesk(carts CartStore, pub events.Publisher, log *zap.Logger) *Desk {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &Desk{
		carts:     carts,
		events:    pub,
		log:       log,
		submit:    SubmitOrder,
		setStatus: UpdateOrderStatus,
	}
}

// WithOrderStore replaces the functions that persist orders.
func (d *Desk) WithOrderStore(submit SubmitFunc, setStatus StatusUpdateFunc) *Desk {
	if submit != nil {
		d.submit = submit
	}
	if setStatus != nil {
		d.setStatus = setStatus
	}
	return d
}

func (d *Desk) Cart(ctx context.Context, sess models.Session) (*cart.Cart, error) {
	c, err := d.carts.Load(ctx, sess.CartKey())
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return c, nil
}

// AddItem adds one unit of item with the chosen modifiers and instructions.
func (d *Desk) AddItem(ctx context.Context, sess models.Session, item models.MenuItem, instructions string, mods []models.MenuModifier) (*cart.Cart, cart.Line, error) {
	return d.AddItems(ctx, sess, item, instructions, mods, 1)
}

// AddItems adds qty units in one load and save, so a failed save leaves the
// cart as it was.
func (d *Desk) AddItems(ctx context.Context, sess models.Session, item models.MenuItem, instructions string, mods []models.MenuModifier, qty int) (*cart.Cart, cart.Line, error) {
	if qty < 1 {
		return nil, cart.Line{}, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}
	if !item.Available {
		return nil, cart.Line{}, fmt.Errorf("%w: %s", ErrItemUnavailable, item.Name)
	}
	for _, m := range mods {
		if m.MenuItemID != item.ID {
			return nil, cart.Line{}, fmt.Errorf("%w: modifier %q does not belong to %s", ErrInvalidInput, m.Name, item.Name)
		}
	}
	c, err := d.Cart(ctx, sess)
	if err != nil {
		return nil, cart.Line{}, err
	}
	line := c.Add(MenuItemRef(item), instructions, CartModifiers(mods)...)
	if qty > 1 {
		c.UpdateQuantity(line.ID, line.Quantity+qty-1)
		line, _ = c.Line(line.ID)
	}
	if err := d.carts.Save(ctx, sess.CartKey(), c); err != nil {
		return nil, cart.Line{}, fmt.Errorf("save cart: %w", err)
	}
	return c, line, nil
}

func (d *Desk) UpdateQuantity(ctx context.Context, sess models.Session, lineID string, qty int) (*cart.Cart, error) {
	return d.mutate(ctx, sess, func(c *cart.Cart) { c.UpdateQuantity(lineID, qty) })
}

// Increment changes a line quantity by delta; reaching zero removes it.
func (d *Desk) Increment(ctx context.Context, sess models.Session, lineID string, delta int) (*cart.Cart, error) {
	return d.mutate(ctx, sess, func(c *cart.Cart) {
		if l, ok := c.Line(lineID); ok {
			c.UpdateQuantity(lineID, l.Quantity+delta)
		}
	})
}

func (d *Desk) RemoveLine(ctx context.Context, sess models.Session, lineID string) (*cart.Cart, error) {
	return d.mutate(ctx, sess, func(c *cart.Cart) { c.Remove(lineID) })
}

func (d *Desk) Clear(ctx context.Context, sess models.Session) error {
	return d.carts.Delete(ctx, sess.CartKey())
}

func (d *Desk) mutate(ctx context.Context, sess models.Session, f func(*cart.Cart)) (*cart.Cart, error) {
	c, err := d.Cart(ctx, sess)
	if err != nil {
		return nil, err
	}
	f(c)
	if c.IsEmpty() {
		err = d.carts.Delete(ctx, sess.CartKey())
	} else {
		err = d.carts.Save(ctx, sess.CartKey(), c)
	}
	if err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return c, nil
}

// Submit hands the session cart to the order store and clears it on
// success. The cart is kept when the store rejects the order.
func (d *Desk) Submit(ctx context.Context, sess models.Session) (*models.Order, error) {
	c, err := d.Cart(ctx, sess)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}
	sub := c.Submission()
	o, err := d.submit(ctx, sess, sub)
	if err != nil {
		return nil, err
	}
	if o.Total != sub.ClientTotal {
		d.log.Info("order repriced",
			zap.Int64("order_id", o.ID),
			zap.Int64("client_total", sub.ClientTotal),
			zap.Int64("total", o.Total))
	}
	if err := d.carts.Delete(ctx, sess.CartKey()); err != nil {
		d.log.Warn("clear submitted cart", zap.String("key", sess.CartKey()), zap.Error(err))
	}
	d.publish(ctx, events.OrderEvent{
		Type: events.TypeOrderSubmitted, OrderID: o.ID, TableID: o.TableID, StaffID: o.StaffID,
		Status: o.Status, Total: o.Total, Items: c.Quantity(),
	})
	return o, nil
}

func (d *Desk) ChangeStatus(ctx context.Context, sess models.Session, orderID int64, status string) (*models.Order, error) {
	o, err := d.setStatus(ctx, sess, orderID, status)
	if err != nil {
		return nil, err
	}
	d.publish(ctx, events.OrderEvent{
		Type: events.TypeOrderStatusChanged, OrderID: o.ID, TableID: o.TableID, StaffID: sess.StaffID,
		Status: o.Status, Total: o.Total,
	})
	return o, nil
}

// publish never fails the caller; the order is already committed.
func (d *Desk) publish(ctx context.Context, e events.OrderEvent) {
	if err := d.events.Publish(ctx, e); err != nil {
		d.log.Error("publish order event", zap.String("type", e.Type), zap.Int64("order_id", e.OrderID), zap.Error(err))
	}
}

func MenuItemRef(it models.MenuItem) cart.MenuItemRef {
	return cart.MenuItemRef{ID: it.ID, Name: it.Name, UnitPrice: it.Price}
}

// CartModifiers converts selected menu modifiers in selection order.
func CartModifiers(mods []models.MenuModifier) []cart.Modifier {
	out := make([]cart.Modifier, 0, len(mods))
	for _, m := range mods {
		out = append(out, cart.Modifier{Name: m.Name, PriceDelta: m.PriceDelta})
	}
	return out
}
