// Package checkout turns a cart into an order: precondition checks, payload
// build, one call to the create-order boundary, and cart cleanup on success.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"quickshop/cart"
	"quickshop/client"
	"quickshop/models"
)

// ErrEmptyCart blocks checkout before any network call; the caller should
// route the customer back to the catalog.
var ErrEmptyCart = errors.New("cart is empty")

var pincodePattern = regexp.MustCompile(`^\d{6}$`)

// ValidationError names the first missing or invalid submission field.
// It is raised before the create-order boundary is ever called.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

type Options struct {
	Phone        string
	DeliveryType models.DeliveryType
	DeliveryTime models.DeliveryTime
	Address      *models.Address
}

func validate(crt *cart.Cart, opts Options) error {
	if crt.Count() == 0 {
		return ErrEmptyCart
	}
	if opts.DeliveryType != models.DeliveryHome {
		return nil
	}

	addr := opts.Address
	if addr.IsZero() {
		return &ValidationError{Field: "address", Reason: "delivery orders require an address"}
	}
	// Legacy free-text address is accepted as-is
	if addr.Line != "" {
		return nil
	}
	switch {
	case addr.Flat == "":
		return &ValidationError{Field: "flat", Reason: "flat/house number is required"}
	case addr.Road == "":
		return &ValidationError{Field: "road", Reason: "road is required"}
	case addr.Area == "":
		return &ValidationError{Field: "area", Reason: "area is required"}
	case !pincodePattern.MatchString(addr.Pincode):
		return &ValidationError{Field: "pincode", Reason: "pincode must be exactly 6 digits"}
	}
	return nil
}

// Submit validates preconditions, builds the order draft from the cart and
// calls the create-order boundary exactly once.
//
// Only on success is the cart cleared; any failure leaves it intact so the
// customer can fix the problem and retry. The receipt (token, and delivery
// OTP when present) is the only data worth retaining afterwards.
func Submit(ctx context.Context, api *client.Client, crt *cart.Cart, opts Options) (*client.OrderReceipt, error) {
	if err := validate(crt, opts); err != nil {
		return nil, err
	}

	lines := crt.Lines()
	items := make([]client.DraftItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, client.DraftItem{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	draft := client.OrderDraft{
		Phone:        opts.Phone,
		Items:        items,
		Total:        crt.Total(),
		DeliveryType: opts.DeliveryType,
		DeliveryTime: opts.DeliveryTime,
	}
	if opts.DeliveryType == models.DeliveryHome {
		draft.Address = opts.Address
	}

	receipt, err := api.PlaceOrder(ctx, draft)
	if err != nil {
		return nil, err
	}

	crt.Clear()
	return receipt, nil
}
