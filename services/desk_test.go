package services

import (
	"context"
	"errors"
	"testing"

	"restaurant-backoffice/cart"
	"restaurant-backoffice/events"
	"restaurant-backoffice/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	events []events.OrderEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.OrderEvent) error {
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

var (
	waiter  = models.Session{StaffID: 3, StaffName: "Ann", Role: models.RoleWaiter, TableID: 9}
	burger  = models.MenuItem{ID: "1", Name: "Burger", Category: models.CategoryFood, Price: 500, Available: true}
	cheeseM = models.MenuModifier{ID: 10, MenuItemID: "1", Name: "Cheese", PriceDelta: 100}
)

func newTestDesk(pub events.Publisher) (*Desk, *MemoryCartStore) {
	store := NewMemoryCartStore()
	return NewDesk(store, pub, zap.NewNop()), store
}

func TestDesk_AddItemMergesAndPersists(t *testing.T) {
	d, _ := newTestDesk(nil)
	ctx := context.Background()

	_, first, err := d.AddItem(ctx, waiter, burger, "", nil)
	require.NoError(t, err)
	_, second, err := d.AddItem(ctx, waiter, burger, "", nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.Quantity)

	_, withCheese, err := d.AddItem(ctx, waiter, burger, "", []models.MenuModifier{cheeseM})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, withCheese.ID)

	c, err := d.Cart(ctx, waiter)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, int64(1600), c.Total())

	other := waiter
	other.TableID = 10
	c, err = d.Cart(ctx, other)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty(), "carts are per table")
}

func TestDesk_AddItemRejects(t *testing.T) {
	d, _ := newTestDesk(nil)
	ctx := context.Background()

	off := burger
	off.Available = false
	_, _, err := d.AddItem(ctx, waiter, off, "", nil)
	assert.ErrorIs(t, err, ErrItemUnavailable)

	foreign := models.MenuModifier{MenuItemID: "2", Name: "Salt"}
	_, _, err = d.AddItem(ctx, waiter, burger, "", []models.MenuModifier{foreign})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDesk_QuantityEdits(t *testing.T) {
	d, store := newTestDesk(nil)
	ctx := context.Background()

	_, line, err := d.AddItem(ctx, waiter, burger, "", nil)
	require.NoError(t, err)

	c, err := d.Increment(ctx, waiter, line.ID, 2)
	require.NoError(t, err)
	l, _ := c.Line(line.ID)
	assert.Equal(t, 3, l.Quantity)

	c, err = d.UpdateQuantity(ctx, waiter, line.ID, 5)
	require.NoError(t, err)
	l, _ = c.Line(line.ID)
	assert.Equal(t, 5, l.Quantity)

	c, err = d.Increment(ctx, waiter, line.ID, -5)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	assert.Empty(t, store.carts, "empty carts are deleted")

	_, line, _ = d.AddItem(ctx, waiter, burger, "", nil)
	c, err = d.UpdateQuantity(ctx, waiter, line.ID, -1)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	_, line, _ = d.AddItem(ctx, waiter, burger, "", nil)
	c, err = d.RemoveLine(ctx, waiter, "nope")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
	c, err = d.RemoveLine(ctx, waiter, line.ID)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestDesk_Clear(t *testing.T) {
	d, _ := newTestDesk(nil)
	ctx := context.Background()
	_, _, _ = d.AddItem(ctx, waiter, burger, "", nil)

	require.NoError(t, d.Clear(ctx, waiter))
	c, err := d.Cart(ctx, waiter)
	require.NoError(t, err)
	assert.Zero(t, c.Total())
}

func TestDesk_Submit(t *testing.T) {
	pub := &recordingPublisher{}
	d, _ := newTestDesk(pub)
	ctx := context.Background()

	var got cart.Submission
	d.WithOrderStore(func(_ context.Context, sess models.Session, sub cart.Submission) (*models.Order, error) {
		got = sub
		return &models.Order{ID: 77, TableID: sess.TableID, StaffID: sess.StaffID, Status: OrderStatusNew, Total: sub.ClientTotal, ClientTotal: sub.ClientTotal}, nil
	}, nil)

	_, _, _ = d.AddItem(ctx, waiter, burger, "", nil)
	_, _, _ = d.AddItem(ctx, waiter, burger, "", nil)
	_, _, _ = d.AddItem(ctx, waiter, burger, "", []models.MenuModifier{cheeseM})

	o, err := d.Submit(ctx, waiter)
	require.NoError(t, err)
	assert.Equal(t, int64(77), o.ID)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, int64(1600), got.ClientTotal)

	c, _ := d.Cart(ctx, waiter)
	assert.True(t, c.IsEmpty(), "cart cleared after submit")

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TypeOrderSubmitted, pub.events[0].Type)
	assert.Equal(t, 3, pub.events[0].Items)
	assert.Equal(t, int64(9), pub.events[0].TableID)
}

func TestDesk_SubmitEmpty(t *testing.T) {
	d, _ := newTestDesk(nil)
	called := false
	d.WithOrderStore(func(context.Context, models.Session, cart.Submission) (*models.Order, error) {
		called = true
		return nil, nil
	}, nil)

	_, err := d.Submit(context.Background(), waiter)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.False(t, called)
}

func TestDesk_SubmitRejectedKeepsCart(t *testing.T) {
	d, _ := newTestDesk(nil)
	ctx := context.Background()
	d.WithOrderStore(func(context.Context, models.Session, cart.Submission) (*models.Order, error) {
		return nil, ErrItemUnavailable
	}, nil)
	_, _, _ = d.AddItem(ctx, waiter, burger, "", nil)

	_, err := d.Submit(ctx, waiter)
	assert.ErrorIs(t, err, ErrItemUnavailable)
	c, _ := d.Cart(ctx, waiter)
	assert.Equal(t, 1, c.Len())
}

func TestDesk_ChangeStatusPublishes(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	d, _ := newTestDesk(pub)
	d.WithOrderStore(nil, func(_ context.Context, _ models.Session, id int64, status string) (*models.Order, error) {
		return &models.Order{ID: id, TableID: 2, Status: status, Total: 900}, nil
	})

	o, err := d.ChangeStatus(context.Background(), waiter, 5, OrderStatusServed)
	require.NoError(t, err, "publish failures do not fail the status change")
	assert.Equal(t, OrderStatusServed, o.Status)
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TypeOrderStatusChanged, pub.events[0].Type)
	assert.Equal(t, waiter.StaffID, pub.events[0].StaffID)
}

func TestDesk_ChangeStatusError(t *testing.T) {
	pub := &recordingPublisher{}
	d, _ := newTestDesk(pub)
	d.WithOrderStore(nil, func(context.Context, models.Session, int64, string) (*models.Order, error) {
		return nil, ErrInvalidTransition
	})
	_, err := d.ChangeStatus(context.Background(), waiter, 5, OrderStatusPaid)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, pub.events)
}

func TestCartModifiers(t *testing.T) {
	mods := CartModifiers([]models.MenuModifier{cheeseM, {Name: "Bacon", PriceDelta: 150}})
	assert.Equal(t, []cart.Modifier{{Name: "Cheese", PriceDelta: 100}, {Name: "Bacon", PriceDelta: 150}}, mods)
	assert.Equal(t, cart.MenuItemRef{ID: "1", Name: "Burger", UnitPrice: 500}, MenuItemRef(burger))
}

type countingStore struct {
	*MemoryCartStore
	saves   int
	saveErr error
}

func (s *countingStore) Save(ctx context.Context, key string, c *cart.Cart) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.MemoryCartStore.Save(ctx, key, c)
}

func TestDesk_AddItemsSavesOnce(t *testing.T) {
	store := &countingStore{MemoryCartStore: NewMemoryCartStore()}
	d := NewDesk(store, nil, zap.NewNop())
	ctx := context.Background()

	c, line, err := d.AddItems(ctx, waiter, burger, "", nil, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, store.saves)
	assert.Equal(t, 3, line.Quantity)
	assert.Equal(t, int64(1500), c.Total())

	// merges onto the existing line
	_, line, err = d.AddItems(ctx, waiter, burger, "", nil, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, line.Quantity)

	_, _, err = d.AddItems(ctx, waiter, burger, "", nil, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDesk_AddItemsFailedSaveLeavesCart(t *testing.T) {
	store := &countingStore{MemoryCartStore: NewMemoryCartStore(), saveErr: errors.New("redis down")}
	d := NewDesk(store, nil, zap.NewNop())
	ctx := context.Background()

	_, _, err := d.AddItems(ctx, waiter, burger, "", nil, 4)
	require.Error(t, err)
	assert.Equal(t, 1, store.saves)

	c, err := d.Cart(ctx, waiter)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}
