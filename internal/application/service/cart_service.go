package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/duka-pos/internal/domain/cart"
	"github.com/sangkips/duka-pos/internal/domain/enum"
	"github.com/sangkips/duka-pos/internal/logging"
	"github.com/sirupsen/logrus"
)

// InventoryReader provides fresh product snapshots scoped to a user
type InventoryReader interface {
	Snapshots(ctx context.Context, userID uuid.UUID, ids ...uuid.UUID) ([]cart.Snapshot, error)
}

// SaleCommitter turns a cart into a sale
type SaleCommitter interface {
	Commit(ctx context.Context, c *cart.Cart, userID *uuid.UUID, paymentType enum.PaymentType) (*CommitResult, error)
}

// CartLineView is a cart line plus the stock left to add
type CartLineView struct {
	cart.Line
	Available int
}

// CartView is a point-in-time copy of a cart
type CartView struct {
	ID           uuid.UUID
	Lines        []CartLineView
	Totals       cart.Totals
	ClearPending bool
	// Outcomes lists what the last call changed, including lines clamped
	// or dropped while reconciling with the inventory.
	Outcomes []cart.Outcome
}

type cartEntry struct {
	mu         sync.Mutex
	userID     uuid.UUID
	cart       *cart.Cart
	lastUsed   time.Time
	committing bool
}

// CartService keeps the open carts of every user in memory. Every edit is
// preceded by an inventory read of the affected product so the cart never
// works from stale stock.
type CartService struct {
	inventory InventoryReader
	committer SaleCommitter
	idleTTL   time.Duration
	now       func() time.Time
	log       *logrus.Entry

	mu    sync.Mutex
	carts map[uuid.UUID]*cartEntry
}

// NewCartService creates a new cart service. Carts untouched for idleTTL are
// discarded by Run; zero disables expiry.
func NewCartService(inventory InventoryReader, committer SaleCommitter, idleTTL time.Duration, logger *logging.Logger) *CartService {
	return &CartService{
		inventory: inventory,
		committer: committer,
		idleTTL:   idleTTL,
		now:       time.Now,
		log:       logger.Component("cart"),
		carts:     make(map[uuid.UUID]*cartEntry),
	}
}

// SetClock replaces the time source used for idle tracking
func (s *CartService) SetClock(now func() time.Time) {
	s.now = now
}

// Open creates an empty cart for the user
func (s *CartService) Open(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	entry := &cartEntry{
		userID:   userID,
		cart:     cart.New(),
		lastUsed: s.now(),
	}

	s.mu.Lock()
	s.carts[entry.cart.ID()] = entry
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"cart_id": entry.cart.ID(), "user_id": userID}).Debug("Cart opened")
	return view(entry.cart, nil), nil
}

// Get returns the cart as it is, without reconciling it
func (s *CartService) Get(ctx context.Context, userID, cartID uuid.UUID) (*CartView, error) {
	entry, err := s.entry(userID, cartID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return view(entry.cart, nil), nil
}

// List returns the ids of the user's open carts, oldest activity first
func (s *CartService) List(ctx context.Context, userID uuid.UUID) []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	type open struct {
		id       uuid.UUID
		lastUsed time.Time
	}
	var carts []open
	for id, entry := range s.carts {
		if entry.userID == userID {
			entry.mu.Lock()
			carts = append(carts, open{id: id, lastUsed: entry.lastUsed})
			entry.mu.Unlock()
		}
	}
	sort.Slice(carts, func(i, j int) bool { return carts[i].lastUsed.Before(carts[j].lastUsed) })

	ids := make([]uuid.UUID, 0, len(carts))
	for _, c := range carts {
		ids = append(ids, c.id)
	}
	return ids
}

// Discard drops a cart without selling it
func (s *CartService) Discard(ctx context.Context, userID, cartID uuid.UUID) error {
	entry, err := s.entry(userID, cartID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.committing {
		return ErrCartBusy
	}

	s.remove(cartID)
	return nil
}

// Refresh reconciles every line of the cart with the inventory
func (s *CartService) Refresh(ctx context.Context, userID, cartID uuid.UUID) (*CartView, error) {
	return s.edit(ctx, userID, cartID, nil, func(c *cart.Cart) []cart.Outcome { return nil })
}

// SetQuantity sets the quantity of a product, clamped to stock
func (s *CartService) SetQuantity(ctx context.Context, userID, cartID, productID uuid.UUID, qty int) (*CartView, error) {
	return s.edit(ctx, userID, cartID, &productID, func(c *cart.Cart) []cart.Outcome {
		return []cart.Outcome{c.SetQuantity(productID, qty)}
	})
}

// Add adds qty units of a product, merging with an existing line
func (s *CartService) Add(ctx context.Context, userID, cartID, productID uuid.UUID, qty int) (*CartView, error) {
	return s.edit(ctx, userID, cartID, &productID, func(c *cart.Cart) []cart.Outcome {
		return []cart.Outcome{c.Add(productID, qty)}
	})
}

// Increment adds one unit of a product
func (s *CartService) Increment(ctx context.Context, userID, cartID, productID uuid.UUID) (*CartView, error) {
	return s.edit(ctx, userID, cartID, &productID, func(c *cart.Cart) []cart.Outcome {
		return []cart.Outcome{c.Increment(productID)}
	})
}

// Decrement removes one unit of a product
func (s *CartService) Decrement(ctx context.Context, userID, cartID, productID uuid.UUID) (*CartView, error) {
	return s.edit(ctx, userID, cartID, &productID, func(c *cart.Cart) []cart.Outcome {
		return []cart.Outcome{c.Decrement(productID)}
	})
}

// Remove deletes the line of a product
func (s *CartService) Remove(ctx context.Context, userID, cartID, productID uuid.UUID) (*CartView, error) {
	return s.edit(ctx, userID, cartID, nil, func(c *cart.Cart) []cart.Outcome {
		return []cart.Outcome{c.Remove(productID)}
	})
}

// RequestClear asks for confirmation before emptying the cart
func (s *CartService) RequestClear(ctx context.Context, userID, cartID uuid.UUID) (*CartView, error) {
	return s.local(userID, cartID, func(c *cart.Cart) { c.RequestClear() })
}

// ConfirmClear empties the cart when a clear was requested and nothing
// changed since
func (s *CartService) ConfirmClear(ctx context.Context, userID, cartID uuid.UUID) (*CartView, error) {
	return s.local(userID, cartID, func(c *cart.Cart) { c.ConfirmClear() })
}

// CancelClear drops a pending clear request
func (s *CartService) CancelClear(ctx context.Context, userID, cartID uuid.UUID) (*CartView, error) {
	return s.local(userID, cartID, func(c *cart.Cart) { c.CancelClear() })
}

// Checkout commits the cart as a sale. The cart is discarded on success and
// left untouched on failure. Edits are refused while the commit runs.
func (s *CartService) Checkout(ctx context.Context, userID, cartID uuid.UUID, paymentType enum.PaymentType) (*CommitResult, error) {
	if userID == uuid.Nil {
		return nil, &CommitError{Kind: ErrUnauthenticated}
	}

	entry, err := s.entry(userID, cartID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	if entry.committing {
		entry.mu.Unlock()
		return nil, &CommitError{Kind: ErrCommitInProgress}
	}
	entry.committing = true
	entry.mu.Unlock()

	result, err := s.committer.Commit(ctx, entry.cart, &userID, paymentType)

	entry.mu.Lock()
	entry.committing = false
	entry.lastUsed = s.now()
	entry.mu.Unlock()

	if err != nil {
		return nil, err
	}

	s.remove(cartID)
	return result, nil
}

// Sweep discards carts idle since before now minus the TTL and returns how
// many were dropped
func (s *CartService) Sweep(now time.Time) int {
	if s.idleTTL <= 0 {
		return 0
	}
	cutoff := now.Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for id, entry := range s.carts {
		entry.mu.Lock()
		idle := !entry.committing && entry.lastUsed.Before(cutoff)
		entry.mu.Unlock()
		if idle {
			delete(s.carts, id)
			dropped++
		}
	}
	return dropped
}

// Run sweeps idle carts until ctx is done
func (s *CartService) Run(ctx context.Context) {
	if s.idleTTL <= 0 {
		return
	}

	interval := s.idleTTL / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(s.now()); n > 0 {
				s.log.WithField("carts", n).Info("Discarded idle carts")
			}
		}
	}
}

func (s *CartService) entry(userID, cartID uuid.UUID) (*cartEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.carts[cartID]
	if !ok || entry.userID != userID {
		return nil, ErrCartNotFound
	}
	return entry, nil
}

func (s *CartService) remove(cartID uuid.UUID) {
	s.mu.Lock()
	delete(s.carts, cartID)
	s.mu.Unlock()
}

// edit reconciles the cart with the inventory, then applies op. With a nil
// productID every line is reconciled.
func (s *CartService) edit(ctx context.Context, userID, cartID uuid.UUID, productID *uuid.UUID, op func(c *cart.Cart) []cart.Outcome) (*CartView, error) {
	entry, err := s.entry(userID, cartID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.committing {
		return nil, ErrCartBusy
	}

	var ids []uuid.UUID
	if productID != nil {
		ids = []uuid.UUID{*productID}
	} else {
		for _, line := range entry.cart.Lines() {
			ids = append(ids, line.ProductID)
		}
	}

	outcomes, err := s.reconcile(ctx, entry, ids)
	if err != nil {
		return nil, err
	}
	outcomes = append(outcomes, op(entry.cart)...)
	entry.lastUsed = s.now()

	return view(entry.cart, outcomes), nil
}

func (s *CartService) reconcile(ctx context.Context, entry *cartEntry, ids []uuid.UUID) ([]cart.Outcome, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	snapshots, err := s.inventory.Snapshots(ctx, entry.userID, ids...)
	if err != nil {
		return nil, err
	}

	found := make(map[uuid.UUID]bool, len(snapshots))
	for _, snap := range snapshots {
		found[snap.ProductID] = true
	}

	outcomes := entry.cart.Observe(snapshots...)
	for _, id := range ids {
		if found[id] {
			continue
		}
		if entry.cart.Forget(id) {
			outcomes = append(outcomes, cart.Outcome{ProductID: id, Notice: cart.NoticeUnknownProduct, Closed: entry.cart.IsEmpty()})
		}
	}
	return outcomes, nil
}

// local applies an edit that needs no inventory data
func (s *CartService) local(userID, cartID uuid.UUID, op func(c *cart.Cart)) (*CartView, error) {
	entry, err := s.entry(userID, cartID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.committing {
		return nil, ErrCartBusy
	}

	op(entry.cart)
	entry.lastUsed = s.now()
	return view(entry.cart, nil), nil
}

func view(c *cart.Cart, outcomes []cart.Outcome) *CartView {
	lines := c.Lines()
	v := &CartView{
		ID:           c.ID(),
		Lines:        make([]CartLineView, 0, len(lines)),
		Totals:       c.Totals(),
		ClearPending: c.ClearPending(),
		Outcomes:     outcomes,
	}
	for _, line := range lines {
		available, _ := c.DisplayStock(line.ProductID)
		v.Lines = append(v.Lines, CartLineView{Line: line, Available: available})
	}
	return v
}
