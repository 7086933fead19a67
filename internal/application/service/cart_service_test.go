package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/duka-pos/internal/application/service"
	"github.com/sangkips/duka-pos/internal/domain/cart"
	"github.com/sangkips/duka-pos/internal/domain/entity"
	"github.com/sangkips/duka-pos/internal/domain/enum"
	"github.com/sangkips/duka-pos/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInventory struct {
	mu       sync.Mutex
	products map[uuid.UUID]cart.Snapshot
	err      error
}

func newFakeInventory(snaps ...cart.Snapshot) *fakeInventory {
	inv := &fakeInventory{products: make(map[uuid.UUID]cart.Snapshot)}
	for _, s := range snaps {
		inv.products[s.ProductID] = s
	}
	return inv
}

func (f *fakeInventory) Snapshots(ctx context.Context, userID uuid.UUID, ids ...uuid.UUID) ([]cart.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []cart.Snapshot
	for _, id := range ids {
		if s, ok := f.products[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeInventory) setStock(id uuid.UUID, qty int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.products[id]
	s.Quantity = qty
	f.products[id] = s
}

func (f *fakeInventory) delete(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.products, id)
}

type fakeCommitter struct {
	mu      sync.Mutex
	carts   []*cart.Cart
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakeCommitter) Commit(ctx context.Context, c *cart.Cart, userID *uuid.UUID, paymentType enum.PaymentType) (*service.CommitResult, error) {
	if f.started != nil {
		close(f.started)
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.carts = append(f.carts, c)
	return &service.CommitResult{Sale: &entity.Sale{ID: uuid.New(), TotalAmount: c.Totals().TotalAmount}}, nil
}

func snapshot(name string, stock int, price, cost int64) cart.Snapshot {
	return cart.Snapshot{ProductID: uuid.New(), Name: name, SellingPrice: price, CostPrice: cost, Quantity: stock}
}

func setupCarts(t *testing.T, snaps ...cart.Snapshot) (*service.CartService, *fakeInventory, *fakeCommitter, uuid.UUID) {
	t.Helper()
	inv := newFakeInventory(snaps...)
	committer := &fakeCommitter{}
	svc := service.NewCartService(inv, committer, time.Hour, logging.Discard())
	return svc, inv, committer, uuid.New()
}

func TestCartService_EditsAreReconciled(t *testing.T) {
	sugar := snapshot("Sugar", 5, 10000, 6000)
	svc, inv, _, user := setupCarts(t, sugar)
	ctx := context.Background()

	v, err := svc.Open(ctx, user)
	require.NoError(t, err)

	v, err = svc.SetQuantity(ctx, user, v.ID, sugar.ProductID, 999)
	require.NoError(t, err)
	require.Len(t, v.Lines, 1)
	assert.Equal(t, 5, v.Lines[0].Quantity)
	assert.Equal(t, 0, v.Lines[0].Available)
	require.Len(t, v.Outcomes, 1)
	assert.Equal(t, cart.NoticeStockLimitExceeded, v.Outcomes[0].Notice)

	// stock dropped elsewhere; the next edit sees it first
	inv.setStock(sugar.ProductID, 3)
	v, err = svc.Decrement(ctx, user, v.ID, sugar.ProductID)
	require.NoError(t, err)
	assert.Equal(t, 2, v.Lines[0].Quantity)
	assert.Equal(t, 1, v.Lines[0].Available)
	require.Len(t, v.Outcomes, 2)
	assert.Equal(t, cart.NoticeStockLimitExceeded, v.Outcomes[0].Notice)
	assert.Equal(t, 3, v.Outcomes[0].Quantity)

	assert.Equal(t, int64(20000), v.Totals.SubTotal)
	assert.Equal(t, int64(8000), v.Totals.TotalProfit)
}

func TestCartService_UnknownAndVanishedProducts(t *testing.T) {
	milk := snapshot("Milk", 10, 6000, 4500)
	svc, inv, _, user := setupCarts(t, milk)
	ctx := context.Background()

	v, err := svc.Open(ctx, user)
	require.NoError(t, err)

	v, err = svc.Add(ctx, user, v.ID, uuid.New(), 1)
	require.NoError(t, err)
	assert.Empty(t, v.Lines)
	require.Len(t, v.Outcomes, 1)
	assert.Equal(t, cart.NoticeUnknownProduct, v.Outcomes[0].Notice)

	v, err = svc.Add(ctx, user, v.ID, milk.ProductID, 2)
	require.NoError(t, err)
	require.Len(t, v.Lines, 1)

	inv.delete(milk.ProductID)
	v, err = svc.Refresh(ctx, user, v.ID)
	require.NoError(t, err)
	assert.Empty(t, v.Lines)
	require.Len(t, v.Outcomes, 1)
	assert.True(t, v.Outcomes[0].Closed)
}

func TestCartService_PriceLockIn(t *testing.T) {
	bread := snapshot("Bread", 10, 6500, 5000)
	svc, inv, _, user := setupCarts(t, bread)
	ctx := context.Background()

	v, _ := svc.Open(ctx, user)
	_, err := svc.Increment(ctx, user, v.ID, bread.ProductID)
	require.NoError(t, err)

	inv.mu.Lock()
	changed := inv.products[bread.ProductID]
	changed.SellingPrice = 7000
	inv.products[bread.ProductID] = changed
	inv.mu.Unlock()

	v, err = svc.Increment(ctx, user, v.ID, bread.ProductID)
	require.NoError(t, err)
	assert.Equal(t, int64(6500), v.Lines[0].UnitPrice)
	assert.Equal(t, int64(13000), v.Totals.TotalAmount)
}

func TestCartService_TwoStepClear(t *testing.T) {
	eggs := snapshot("Eggs", 30, 1500, 1100)
	svc, _, _, user := setupCarts(t, eggs)
	ctx := context.Background()

	v, _ := svc.Open(ctx, user)
	_, err := svc.Add(ctx, user, v.ID, eggs.ProductID, 6)
	require.NoError(t, err)

	t.Run("Confirm without request is a no-op", func(t *testing.T) {
		v, err := svc.ConfirmClear(ctx, user, v.ID)
		require.NoError(t, err)
		assert.Len(t, v.Lines, 1)
	})

	t.Run("Edit cancels the request", func(t *testing.T) {
		v, err := svc.RequestClear(ctx, user, v.ID)
		require.NoError(t, err)
		assert.True(t, v.ClearPending)

		v, err = svc.Increment(ctx, user, v.ID, eggs.ProductID)
		require.NoError(t, err)
		assert.False(t, v.ClearPending)

		v, err = svc.ConfirmClear(ctx, user, v.ID)
		require.NoError(t, err)
		assert.Equal(t, 7, v.Lines[0].Quantity)
	})

	t.Run("Request then confirm empties the cart", func(t *testing.T) {
		_, err := svc.RequestClear(ctx, user, v.ID)
		require.NoError(t, err)
		v, err := svc.ConfirmClear(ctx, user, v.ID)
		require.NoError(t, err)
		assert.Empty(t, v.Lines)
		assert.False(t, v.ClearPending)
	})
}

func TestCartService_Ownership(t *testing.T) {
	svc, _, _, user := setupCarts(t)
	ctx := context.Background()

	v, err := svc.Open(ctx, user)
	require.NoError(t, err)

	_, err = svc.Get(ctx, uuid.New(), v.ID)
	assert.ErrorIs(t, err, service.ErrCartNotFound)

	_, err = svc.Open(ctx, uuid.Nil)
	assert.ErrorIs(t, err, service.ErrUnauthenticated)

	assert.Equal(t, []uuid.UUID{v.ID}, svc.List(ctx, user))
	require.NoError(t, svc.Discard(ctx, user, v.ID))
	_, err = svc.Get(ctx, user, v.ID)
	assert.ErrorIs(t, err, service.ErrCartNotFound)
}

func TestCartService_Checkout(t *testing.T) {
	soap := snapshot("Soap", 5, 12000, 9000)
	ctx := context.Background()

	t.Run("Success discards the cart", func(t *testing.T) {
		svc, _, committer, user := setupCarts(t, soap)
		v, _ := svc.Open(ctx, user)
		_, err := svc.Add(ctx, user, v.ID, soap.ProductID, 2)
		require.NoError(t, err)

		result, err := svc.Checkout(ctx, user, v.ID, enum.PaymentTypeCash)
		require.NoError(t, err)
		assert.Equal(t, int64(24000), result.Sale.TotalAmount)
		require.Len(t, committer.carts, 1)

		_, err = svc.Get(ctx, user, v.ID)
		assert.ErrorIs(t, err, service.ErrCartNotFound)
	})

	t.Run("Failure keeps the cart", func(t *testing.T) {
		svc, _, committer, user := setupCarts(t, soap)
		committer.err = &service.CommitError{Kind: service.ErrPersistenceFailure, Cause: errors.New("boom")}
		v, _ := svc.Open(ctx, user)
		_, err := svc.Add(ctx, user, v.ID, soap.ProductID, 2)
		require.NoError(t, err)

		_, err = svc.Checkout(ctx, user, v.ID, enum.PaymentTypeCash)
		assert.ErrorIs(t, err, service.ErrPersistenceFailure)

		v, err = svc.Get(ctx, user, v.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, v.Lines[0].Quantity)
	})

	t.Run("Edits are refused while committing", func(t *testing.T) {
		svc, _, committer, user := setupCarts(t, soap)
		committer.started = make(chan struct{})
		committer.release = make(chan struct{})
		v, _ := svc.Open(ctx, user)
		_, err := svc.Add(ctx, user, v.ID, soap.ProductID, 1)
		require.NoError(t, err)

		done := make(chan error, 1)
		go func() {
			_, err := svc.Checkout(ctx, user, v.ID, enum.PaymentTypeCash)
			done <- err
		}()
		<-committer.started

		_, err = svc.Increment(ctx, user, v.ID, soap.ProductID)
		assert.ErrorIs(t, err, service.ErrCartBusy)
		_, err = svc.Checkout(ctx, user, v.ID, enum.PaymentTypeCash)
		assert.ErrorIs(t, err, service.ErrCommitInProgress)
		assert.ErrorIs(t, svc.Discard(ctx, user, v.ID), service.ErrCartBusy)

		close(committer.release)
		require.NoError(t, <-done)
	})
}

func TestCartService_Sweep(t *testing.T) {
	svc, _, _, user := setupCarts(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return now })

	stale, _ := svc.Open(ctx, user)
	now = now.Add(90 * time.Minute)
	fresh, _ := svc.Open(ctx, user)

	assert.Equal(t, 1, svc.Sweep(now))

	_, err := svc.Get(ctx, user, stale.ID)
	assert.ErrorIs(t, err, service.ErrCartNotFound)
	_, err = svc.Get(ctx, user, fresh.ID)
	assert.NoError(t, err)
}

func TestCartService_InventoryErrorLeavesCart(t *testing.T) {
	tea := snapshot("Tea", 10, 2500, 2000)
	svc, inv, _, user := setupCarts(t, tea)
	ctx := context.Background()

	v, _ := svc.Open(ctx, user)
	_, err := svc.Add(ctx, user, v.ID, tea.ProductID, 2)
	require.NoError(t, err)

	inv.err = errors.New("database locked")
	_, err = svc.Increment(ctx, user, v.ID, tea.ProductID)
	assert.Error(t, err)

	inv.err = nil
	v, err = svc.Get(ctx, user, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, v.Lines[0].Quantity)
}
