package poll

import (
	"context"
	"errors"
	"sync"
	"time"

	"quickshop/client"
	"quickshop/models"
)

// Tab selects what the fulfillment console is currently polling.
type Tab string

const (
	TabOrders    Tab = "orders"
	TabCustomers Tab = "customers"
)

// ErrCommandInFlight rejects a second command for an order whose previous
// command has not finished; the console disables that order's buttons.
var ErrCommandInFlight = errors.New("a command for this order is already in flight")

// Lanes are the three fixed fulfillment columns. Cancelled orders do not get
// a lane; they only appear in history views.
var laneOrder = []models.OrderStatus{
	models.StatusProcessing,
	models.StatusReadyForPickup,
	models.StatusDelivered,
}

// Dashboard is the staff fulfillment poller: it refreshes the active tab on
// a fixed interval, serves lane snapshots, and issues transition commands
// with optimistic local patching. The server stays authoritative — every
// refresh overwrites local state wholesale.
type Dashboard struct {
	api      *client.Client
	interval time.Duration

	mu        sync.Mutex
	tab       Tab
	orders    []models.Order
	customers []models.Customer
	inFlight  map[string]bool
	lastErr   map[string]string

	kick chan struct{}

	// OnRefresh fires after every successful poll of the active tab.
	OnRefresh func()
	// OnSessionEnded fires when the bearer token is no longer accepted.
	// Polling halts; the operator must log in again.
	OnSessionEnded func()
}

func NewDashboard(api *client.Client, interval time.Duration) *Dashboard {
	return &Dashboard{
		api:      api,
		interval: interval,
		tab:      TabOrders,
		inFlight: make(map[string]bool),
		lastErr:  make(map[string]string),
		kick:     make(chan struct{}, 1),
	}
}

// Run blocks, refreshing the active tab immediately and then on every tick,
// until the session ends or ctx is cancelled.
func (d *Dashboard) Run(ctx context.Context) error {
	if err := d.refresh(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-d.kick:
		}
		if err := d.refresh(ctx); err != nil {
			return err
		}
	}
}

// refresh polls whichever tab is active. Transient failures keep the old
// snapshot and the schedule; an expired session is terminal.
func (d *Dashboard) refresh(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	d.mu.Lock()
	tab := d.tab
	d.mu.Unlock()

	var err error
	switch tab {
	case TabCustomers:
		var customers []models.Customer
		customers, err = d.api.ListCustomers(ctx)
		if err == nil {
			d.mu.Lock()
			d.customers = customers
			d.mu.Unlock()
		}
	default:
		var orders []models.Order
		orders, err = d.api.ListOrders(ctx)
		if err == nil {
			d.mu.Lock()
			d.orders = orders
			// The authoritative read wins: stale inline errors go away.
			d.lastErr = make(map[string]string)
			d.mu.Unlock()
		}
	}

	switch {
	case err == nil:
		if d.OnRefresh != nil {
			d.OnRefresh()
		}
		return nil
	case errors.Is(err, client.ErrAuthExpired):
		if d.OnSessionEnded != nil {
			d.OnSessionEnded()
		}
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		// Transient: retry on the next tick
		return nil
	}
}

// SetTab switches what gets polled and wakes the loop for an immediate
// refresh. Switching tabs never pauses polling.
func (d *Dashboard) SetTab(tab Tab) {
	d.mu.Lock()
	d.tab = tab
	d.mu.Unlock()
	select {
	case d.kick <- struct{}{}:
	default:
	}
}

// Lanes groups the current order snapshot into the three fixed lanes.
// An empty lane means no data (yet) — there is no separate loading state.
func (d *Dashboard) Lanes() map[models.OrderStatus][]models.Order {
	d.mu.Lock()
	defer d.mu.Unlock()

	lanes := make(map[models.OrderStatus][]models.Order, len(laneOrder))
	for _, status := range laneOrder {
		lanes[status] = nil
	}
	for _, o := range d.orders {
		if _, ok := lanes[o.Status]; ok {
			lanes[o.Status] = append(lanes[o.Status], o)
		}
	}
	return lanes
}

// LaneOrder returns the lane display order.
func LaneOrder() []models.OrderStatus {
	return laneOrder
}

// Customers returns the latest customer snapshot.
func (d *Dashboard) Customers() []models.Customer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.Customer(nil), d.customers...)
}

// InFlight reports whether a command for the order is outstanding.
func (d *Dashboard) InFlight(token string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inFlight[token]
}

// InlineError returns the last per-order command rejection, if any.
func (d *Dashboard) InlineError(token string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr[token]
}

// Advance moves an order from Processing to Ready for Pickup.
func (d *Dashboard) Advance(ctx context.Context, token string) error {
	return d.transition(ctx, token, models.StatusReadyForPickup, "")
}

// Revert pushes a Ready for Pickup order back to Processing.
func (d *Dashboard) Revert(ctx context.Context, token string) error {
	return d.transition(ctx, token, models.StatusProcessing, "")
}

// Deliver marks an order Delivered. Home-delivery orders require the
// customer's hand-off OTP.
func (d *Dashboard) Deliver(ctx context.Context, token, otp string) error {
	return d.transition(ctx, token, models.StatusDelivered, otp)
}

// transition issues one command with a per-order in-flight latch. On success
// the local copy is patched optimistically; the next authoritative refresh
// overwrites it either way. Rejections are recorded as the order's inline
// error and leave local state untouched.
func (d *Dashboard) transition(ctx context.Context, token string, target models.OrderStatus, otp string) error {
	d.mu.Lock()
	if d.inFlight[token] {
		d.mu.Unlock()
		return ErrCommandInFlight
	}
	d.inFlight[token] = true
	d.mu.Unlock()

	updated, err := d.api.TransitionOrder(ctx, token, target, otp)

	d.mu.Lock()
	delete(d.inFlight, token)
	if err == nil {
		for i := range d.orders {
			if d.orders[i].Token == updated.Token {
				d.orders[i] = *updated
				break
			}
		}
		delete(d.lastErr, token)
	} else if !errors.Is(err, context.Canceled) {
		d.lastErr[token] = err.Error()
	}
	d.mu.Unlock()

	if errors.Is(err, client.ErrAuthExpired) && d.OnSessionEnded != nil {
		d.OnSessionEnded()
	}
	return err
}
