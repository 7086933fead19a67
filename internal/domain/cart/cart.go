// Package cart holds the in-progress sale of a single checkout screen.
//
// A Cart is pure in-memory state: none of its operations touch storage and
// none of them fail. Requests that cannot be honoured in full are clamped and
// reported through the returned Outcome. A Cart is not safe for concurrent
// use; callers serialize access.
package cart

import (
	"github.com/google/uuid"
	"github.com/sangkips/duka-pos/pkg/money"
)

// Notice is an informational condition raised while editing a cart
type Notice int

const (
	NoticeNone Notice = iota
	// NoticeStockLimitExceeded means the requested quantity was clamped to
	// the stock on hand.
	NoticeStockLimitExceeded
	// NoticeUnknownProduct means the product has not been observed in the
	// inventory and the cart was left unchanged.
	NoticeUnknownProduct
)

var noticeNames = map[Notice]string{
	NoticeNone:               "",
	NoticeStockLimitExceeded: "STOCK_LIMIT_EXCEEDED",
	NoticeUnknownProduct:     "UNKNOWN_PRODUCT",
}

func (n Notice) String() string {
	return noticeNames[n]
}

// MarshalText renders the notice name
func (n Notice) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// Snapshot is one product as read from the inventory
type Snapshot struct {
	ProductID    uuid.UUID
	Name         string
	Category     string
	SellingPrice int64 // cents
	CostPrice    int64 // cents
	Quantity     int   // stock on hand
}

// Line is one product staged for sale. Prices are those of the snapshot
// the line was created from.
type Line struct {
	ProductID uuid.UUID
	Name      string
	Category  string
	Quantity  int
	UnitPrice int64
	CostPrice int64
}

// SubTotal is unit price times quantity
func (l Line) SubTotal() int64 {
	return money.Mul(l.UnitPrice, l.Quantity)
}

// Profit is (unit price - cost price) times quantity
func (l Line) Profit() int64 {
	return money.Mul(l.UnitPrice-l.CostPrice, l.Quantity)
}

// Totals of a cart, in cents. TotalAmount equals SubTotal; there is no
// discount or tax layer.
type Totals struct {
	SubTotal    int64
	TotalAmount int64
	TotalProfit int64
}

// Outcome reports the result of a single edit
type Outcome struct {
	ProductID uuid.UUID
	// Quantity now in the cart for ProductID (0 when the line is gone)
	Quantity int
	Notice   Notice
	// Closed is set when the edit removed the last line of the cart
	Closed bool
}

// Cart is an ordered set of lines keyed by product id, together with the
// latest stock snapshot of every product it has seen.
type Cart struct {
	id           uuid.UUID
	order        []uuid.UUID
	lines        map[uuid.UUID]*Line
	stock        map[uuid.UUID]Snapshot
	clearPending bool
}

// New creates an empty cart
func New() *Cart {
	return NewWithID(uuid.New())
}

// NewWithID creates an empty cart with a caller-chosen identity
func NewWithID(id uuid.UUID) *Cart {
	return &Cart{
		id:    id,
		lines: make(map[uuid.UUID]*Line),
		stock: make(map[uuid.UUID]Snapshot),
	}
}

// ID returns the cart identity
func (c *Cart) ID() uuid.UUID {
	return c.id
}

// Observe reconciles the cart against fresh inventory reads. Locked prices
// are kept; a line above the new stock level is clamped and a line clamped
// to zero is dropped. Outcomes are returned only for lines that changed.
func (c *Cart) Observe(snapshots ...Snapshot) []Outcome {
	var outcomes []Outcome
	for _, snap := range snapshots {
		c.stock[snap.ProductID] = snap

		line, ok := c.lines[snap.ProductID]
		if !ok || line.Quantity <= snap.Quantity {
			continue
		}
		qty := snap.Quantity
		if qty < 0 {
			qty = 0
		}
		out := c.apply(snap.ProductID, qty)
		out.Notice = NoticeStockLimitExceeded
		outcomes = append(outcomes, out)
	}
	return outcomes
}

// Forget drops a product that no longer exists in the inventory, together
// with its line. Reports whether a line was removed.
func (c *Cart) Forget(productID uuid.UUID) bool {
	delete(c.stock, productID)
	if _, ok := c.lines[productID]; !ok {
		return false
	}
	c.apply(productID, 0)
	return true
}

// SetQuantity sets the quantity of a product. Negative values count as zero,
// values above stock are clamped, and zero removes the line.
func (c *Cart) SetQuantity(productID uuid.UUID, qty int) Outcome {
	snap, ok := c.stock[productID]
	if !ok {
		return Outcome{ProductID: productID, Notice: NoticeUnknownProduct}
	}
	c.clearPending = false

	notice := NoticeNone
	if qty < 0 {
		qty = 0
	}
	if qty > snap.Quantity {
		qty = snap.Quantity
		notice = NoticeStockLimitExceeded
	}

	out := c.apply(productID, qty)
	out.Notice = notice
	return out
}

// Increment adds one unit, creating the line when needed
func (c *Cart) Increment(productID uuid.UUID) Outcome {
	return c.SetQuantity(productID, c.Quantity(productID)+1)
}

// Decrement removes one unit. Decrementing a product that is not in the cart
// is a no-op.
func (c *Cart) Decrement(productID uuid.UUID) Outcome {
	current := c.Quantity(productID)
	if current == 0 {
		c.clearPending = false
		return Outcome{ProductID: productID}
	}
	return c.SetQuantity(productID, current-1)
}

// Add merges qty into the product's line, creating it when needed.
// Non-positive quantities leave the cart unchanged.
func (c *Cart) Add(productID uuid.UUID, qty int) Outcome {
	if _, ok := c.stock[productID]; !ok {
		return Outcome{ProductID: productID, Notice: NoticeUnknownProduct}
	}
	if qty <= 0 {
		c.clearPending = false
		return Outcome{ProductID: productID, Quantity: c.Quantity(productID)}
	}
	return c.SetQuantity(productID, c.Quantity(productID)+qty)
}

// Remove deletes the product's line unconditionally
func (c *Cart) Remove(productID uuid.UUID) Outcome {
	c.clearPending = false
	return c.apply(productID, 0)
}

// RequestClear is the first step of the two-step clear. It returns false
// when there is nothing to clear.
func (c *Cart) RequestClear() bool {
	if c.IsEmpty() {
		c.clearPending = false
		return false
	}
	c.clearPending = true
	return true
}

// ConfirmClear empties the cart if a clear was requested and no edit
// happened since. It reports whether the cart was cleared.
func (c *Cart) ConfirmClear() bool {
	if !c.clearPending {
		return false
	}
	c.clearPending = false
	c.order = nil
	c.lines = make(map[uuid.UUID]*Line)
	return true
}

// CancelClear drops a pending clear request
func (c *Cart) CancelClear() {
	c.clearPending = false
}

// ClearPending reports whether a clear awaits confirmation
func (c *Cart) ClearPending() bool {
	return c.clearPending
}

// Quantity returns the quantity of a product in the cart
func (c *Cart) Quantity(productID uuid.UUID) int {
	if line, ok := c.lines[productID]; ok {
		return line.Quantity
	}
	return 0
}

// DisplayStock is the stock on hand minus what is already in the cart.
// The second result is false for products never observed.
func (c *Cart) DisplayStock(productID uuid.UUID) (int, bool) {
	snap, ok := c.stock[productID]
	if !ok {
		return 0, false
	}
	return snap.Quantity - c.Quantity(productID), true
}

// Lines returns a copy of the lines in insertion order
func (c *Cart) Lines() []Line {
	lines := make([]Line, 0, len(c.order))
	for _, id := range c.order {
		lines = append(lines, *c.lines[id])
	}
	return lines
}

// Len returns the number of lines
func (c *Cart) Len() int {
	return len(c.order)
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.order) == 0
}

// Totals sums the lines using their locked prices
func (c *Cart) Totals() Totals {
	var t Totals
	for _, id := range c.order {
		line := c.lines[id]
		t.SubTotal += line.SubTotal()
		t.TotalProfit += line.Profit()
	}
	t.TotalAmount = t.SubTotal
	return t
}

// apply moves a line to qty, creating or removing it as needed
func (c *Cart) apply(productID uuid.UUID, qty int) Outcome {
	out := Outcome{ProductID: productID, Quantity: qty}

	line, exists := c.lines[productID]
	switch {
	case qty == 0 && exists:
		delete(c.lines, productID)
		for i, id := range c.order {
			if id == productID {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
		out.Closed = len(c.order) == 0
	case qty == 0:
	case exists:
		line.Quantity = qty
	default:
		snap := c.stock[productID]
		c.lines[productID] = &Line{
			ProductID: productID,
			Name:      snap.Name,
			Category:  snap.Category,
			Quantity:  qty,
			UnitPrice: snap.SellingPrice,
			CostPrice: snap.CostPrice,
		}
		c.order = append(c.order, productID)
	}
	return out
}
