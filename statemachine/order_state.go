package statemachine

import (
	"errors"

	"quickshop/models"
)

// Actor identifies who is asking for a transition
type Actor string

const (
	ActorStaff    Actor = "staff"
	ActorCustomer Actor = "customer"
)

// Business-rule rejections. Every failed transition maps to exactly one of
// these; the caller decides how to report it on the wire.
var (
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrOtpMismatch         = errors.New("delivery otp mismatch")
	ErrCancellationBlocked = errors.New("order can no longer be cancelled")
)

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor Actor
}

// validTransitions is the authoritative state machine definition
var validTransitions = []Transition{
	// Staff advances the order to the counter
	{From: models.StatusProcessing, To: models.StatusReadyForPickup, Actor: ActorStaff},
	// Staff can push a ready order back if it was advanced by mistake
	{From: models.StatusReadyForPickup, To: models.StatusProcessing, Actor: ActorStaff},
	// Staff hands the order over (OTP-guarded for home delivery, see Check)
	{From: models.StatusReadyForPickup, To: models.StatusDelivered, Actor: ActorStaff},
	// Customer may cancel only while the order is still Processing
	{From: models.StatusProcessing, To: models.StatusCancelled, Actor: ActorCustomer},
}

// transitionKey is used to look up valid transitions quickly
type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor Actor
}

// Build a lookup map for O(1) validation
var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// IsTerminal reports whether no transition leaves the given state.
func IsTerminal(status models.OrderStatus) bool {
	return len(ValidTransitionsFrom(status)) == 0
}

// Check validates a requested transition against the current order, including
// the guard conditions. A nil error means the transition may be applied.
//
// Re-issuing a command after a prior success lands here with From == To (or
// another pair outside the table) and fails closed with ErrInvalidTransition,
// so a retry after a dropped response never double-transitions.
func Check(order *models.Order, to models.OrderStatus, actor Actor, otp string) error {
	key := transitionKey{From: order.Status, To: to, Actor: actor}
	if !transitionMap[key] {
		// A customer cancel outside the window is a distinct business
		// condition, not a malformed request.
		if actor == ActorCustomer && to == models.StatusCancelled {
			return ErrCancellationBlocked
		}
		return ErrInvalidTransition
	}

	// Final hand-off guard: home-delivery orders authenticate the hand-off
	// with the OTP minted at creation. Pickup orders are verified at the
	// counter out of band.
	if to == models.StatusDelivered && order.DeliveryType == models.DeliveryHome {
		if otp == "" || otp != order.DeliveryOTP {
			return ErrOtpMismatch
		}
	}
	return nil
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
