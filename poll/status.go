// Package poll implements the two scheduled-fetch components that stand in
// for a push channel: the customer tracking poller and the staff fulfillment
// dashboard. Both are driven by a cancellable context; aborting the context
// aborts the in-flight request so a stale response can never be applied.
package poll

import (
	"context"
	"errors"
	"time"

	"quickshop/client"
	"quickshop/models"
)

// StatusPoller tracks a single order by token on a fixed interval.
//
// Polling halts permanently the first time it observes Ready for Pickup or
// Delivered (firing OnReady exactly once), when the token turns out not to
// exist, or when the order reaches Cancelled. Transient fetch failures are
// silently retried on the next tick.
type StatusPoller struct {
	api      *client.Client
	token    string
	interval time.Duration

	// OnUpdate fires on every successful fetch.
	OnUpdate func(models.Order)
	// OnReady fires at most once, on the first Ready/Delivered observation.
	OnReady func(models.Order)
	// OnNotFound fires once when the token is unknown; the session is over.
	OnNotFound func()

	celebrated bool
}

func NewStatusPoller(api *client.Client, token string, interval time.Duration) *StatusPoller {
	return &StatusPoller{api: api, token: token, interval: interval}
}

// Run blocks, fetching immediately and then on every tick, until the order
// reaches a state that ends tracking or ctx is cancelled. A nil return means
// tracking ended on its own; cancellation surfaces as ctx.Err().
func (p *StatusPoller) Run(ctx context.Context) error {
	if done := p.fetch(ctx); done {
		return ctx.Err()
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if done := p.fetch(ctx); done {
				return ctx.Err()
			}
		}
	}
}

// fetch performs one poll. It reports true when polling must stop.
func (p *StatusPoller) fetch(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	order, err := p.api.Order(ctx, p.token)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			if p.OnNotFound != nil {
				p.OnNotFound()
			}
			return true
		}
		// Transient: keep the schedule, retry next tick
		return false
	}

	if p.OnUpdate != nil {
		p.OnUpdate(*order)
	}

	switch order.Status {
	case models.StatusReadyForPickup, models.StatusDelivered:
		if !p.celebrated {
			p.celebrated = true
			if p.OnReady != nil {
				p.OnReady(*order)
			}
		}
		return true
	case models.StatusCancelled:
		return true
	}
	return false
}

// Cancel requests a customer cancellation of the tracked order.
//
// A client.ErrCancellationBlocked result is expected when staff already
// advanced the order; the caller shows it inline and polling is unaffected.
func (p *StatusPoller) Cancel(ctx context.Context) error {
	return p.api.CancelOrder(ctx, p.token)
}
