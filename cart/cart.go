// Package cart holds the browsing client's product → quantity mapping and
// persists it to a local snapshot file so a restart rehydrates the basket.
package cart

import (
	"encoding/json"
	"log"
	"os"
	"sort"
	"sync"

	"quickshop/models"

	"github.com/shopspring/decimal"
)

// MaxQuantity caps any single line; mutations clamp instead of erroring.
const MaxQuantity = 100

// Line is one product entry in the cart.
type Line struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	ImageURL  string          `json:"image_url"`
	Quantity  int             `json:"quantity"`
}

// Subtotal is UnitPrice × Quantity, computed on demand.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	mu    sync.Mutex
	path  string
	lines map[uint]Line
}

// New loads the cart snapshot at path. A missing or corrupt snapshot
// degrades to an empty cart rather than failing the session.
func New(path string) *Cart {
	c := &Cart{path: path, lines: make(map[uint]Line)}
	raw, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	if err := json.Unmarshal(raw, &c.lines); err != nil {
		log.Printf("cart: discarding corrupt snapshot %s: %v", path, err)
		c.lines = make(map[uint]Line)
	}
	return c
}

// AddQuantity adjusts a product's quantity by delta, clamped to
// [0, MaxQuantity]. A line that reaches 0 is removed, never stored.
// Returns the resulting quantity.
func (c *Cart) AddQuantity(p models.Product, delta int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.lines[p.ID].Quantity + delta
	if next > MaxQuantity {
		next = MaxQuantity
	}
	if next <= 0 {
		delete(c.lines, p.ID)
		c.save()
		return 0
	}
	c.lines[p.ID] = Line{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		ImageURL:  p.ImageURL,
		Quantity:  next,
	}
	c.save()
	return next
}

// SetQuantity sets a line's quantity outright, with the same clamping.
// Unknown product ids are ignored.
func (c *Cart) SetQuantity(productID uint, qty int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	line, ok := c.lines[productID]
	if !ok {
		return
	}
	if qty > MaxQuantity {
		qty = MaxQuantity
	}
	if qty <= 0 {
		delete(c.lines, productID)
	} else {
		line.Quantity = qty
		c.lines[productID] = line
	}
	c.save()
}

// Remove deletes a line regardless of quantity.
func (c *Cart) Remove(productID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.lines, productID)
	c.save()
}

// Clear empties the cart. Called exactly once after a successful order
// submission so back-navigation cannot double-charge.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = make(map[uint]Line)
	c.save()
}

// Lines returns the cart contents ordered by product id.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Line, 0, len(c.lines))
	for _, l := range c.lines {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

// Count is the sum of all line quantities.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, l := range c.lines {
		total += l.Quantity
	}
	return total
}

// Total is the sum of all line subtotals.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// save persists the snapshot. A write failure is logged, not fatal: the
// in-memory cart stays usable for the rest of the session.
func (c *Cart) save() {
	raw, err := json.Marshal(c.lines)
	if err != nil {
		log.Printf("cart: marshal snapshot: %v", err)
		return
	}
	if err := os.WriteFile(c.path, raw, 0o644); err != nil {
		log.Printf("cart: write snapshot %s: %v", c.path, err)
	}
}
