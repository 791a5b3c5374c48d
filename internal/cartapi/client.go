// Package cartapi defines the remote cart mutation operations the session
// orchestrator depends on, plus a production HTTP implementation and a
// configurable mock. Every mutation returns a full cart snapshot; callers
// replace their view wholesale rather than patching it.
package cartapi

import (
	"context"

	"wallet-checkout/internal/model"
)

// PaymentToken is the opaque wallet authorization payload attached to the
// cart before submission.
type PaymentToken struct {
	Type string `json:"type"` // e.g. "wallet.apple_pay"
	Data string `json:"data"` // base64-encoded token payload
}

// Client abstracts the remote cart mutation API.
//
// Each method may return a *model.ValidationError (structured user errors),
// a *model.TransportError (network failure), or a generic error. None of the
// mutations are idempotent at the transport level; callers must not re-issue
// a mutation whose prior result is unknown.
type Client interface {
	// CartCreate creates a new cart containing a single merchandise line.
	// Used when the checkout target is a variant rather than an existing cart.
	CartCreate(ctx context.Context, merchandiseID string, quantity int) (*model.Cart, error)

	// CartFetch returns the current state of an existing cart.
	// Also used to recover the true remote state after an ambiguous failure.
	CartFetch(ctx context.Context, cartID string) (*model.Cart, error)

	// BuyerIdentityUpdate attaches the buyer's email to the cart.
	BuyerIdentityUpdate(ctx context.Context, cartID, email string) (*model.Cart, error)

	// DeliveryAddressesAdd adds a new selected delivery address.
	// With validate set, the API runs strict address validation.
	DeliveryAddressesAdd(ctx context.Context, cartID string, addr model.PostalAddress, validate bool) (*model.Cart, error)

	// DeliveryAddressesUpdate replaces a previously added address by id.
	DeliveryAddressesUpdate(ctx context.Context, cartID, addressID string, addr model.PostalAddress, validate bool) (*model.Cart, error)

	// SelectedDeliveryOptionsUpdate selects a delivery option within a group.
	SelectedDeliveryOptionsUpdate(ctx context.Context, cartID, groupID, optionHandle string) (*model.Cart, error)

	// PaymentUpdate attaches the payment token and the total it authorizes.
	PaymentUpdate(ctx context.Context, cartID string, total model.Money, token PaymentToken) (*model.Cart, error)

	// PrepareForCompletion re-resolves delivery options and readiness,
	// returning refreshed delivery groups and totals.
	PrepareForCompletion(ctx context.Context, cartID string) (*model.Cart, error)

	// SubmitForCompletion submits the cart and returns the redirect URL of
	// the resulting order status page.
	SubmitForCompletion(ctx context.Context, cartID string) (string, error)

	// RemovePersonalData scrubs buyer-identifying data from an abandoned cart.
	RemovePersonalData(ctx context.Context, cartID string) error
}
