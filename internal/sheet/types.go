// Package sheet translates between cart snapshots and the native payment
// sheet's request/response shapes. Both directions are pure functions; any
// required cart field that is absent produces a descriptive missing-field
// error instead of a substituted default.
package sheet

import (
	"context"

	"wallet-checkout/internal/cartapi"
	"wallet-checkout/internal/model"
)

// ContactField names a buyer detail the sheet can collect and, on error,
// highlight inline.
type ContactField string

const (
	FieldEmail         ContactField = "email"
	FieldPhone         ContactField = "phone"
	FieldName          ContactField = "name"
	FieldPostalAddress ContactField = "postalAddress"
)

// Config carries the merchant-level settings a payment request needs.
// Passed explicitly at session construction; there is no ambient state.
type Config struct {
	MerchantID            string
	CountryCode           string // merchant country, ISO 3166-1 alpha-2
	SupportedNetworks     []string
	RequiredContactFields []ContactField
}

// PaymentRequest is the outbound description handed to the native sheet.
type PaymentRequest struct {
	MerchantID            string
	CountryCode           string
	CurrencyCode          string
	SupportedNetworks     []string
	RequiredContactFields []ContactField
	Shippable             bool
	ShippingMethods       []ShippingMethod
	LineItems             []SummaryItem
}

// ShippingMethod is one selectable delivery option as the sheet shows it.
type ShippingMethod struct {
	Handle string // delivery option handle, echoed back on selection
	Label  string
	Detail string
	Amount model.Money
}

// SummaryItem is one row of the sheet's total breakdown. The final row
// carries the amount the wallet authorizes.
type SummaryItem struct {
	Label  string
	Amount model.Money
	Final  bool
}

// ShippingContact is the (possibly redacted) contact the sheet reports on
// address selection and the full contact it reports on authorization.
type ShippingContact struct {
	GivenName  string
	FamilyName string
	Email      string
	Phone      string
	Address    model.PostalAddress
}

// Authorization is the sheet's payment-authorized payload.
type Authorization struct {
	Token          cartapi.PaymentToken
	Contact        ShippingContact
	BillingAddress *model.PostalAddress
}

// Status reports whether an event was handled successfully.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Update is the orchestrator's synchronous reply to one sheet event:
// refreshed shipping methods and totals on success, field errors when the
// buyer can fix the problem inline.
type Update struct {
	Status          Status
	ShippingMethods []ShippingMethod
	LineItems       []SummaryItem
	Errors          []FieldError
}

// FieldError is a sheet-displayable validation error.
type FieldError struct {
	Field   ContactField
	Message string
}

// Events is the subscription interface the session orchestrator implements.
// The platform sheet serializes these callbacks; handlers are never invoked
// concurrently for one session.
type Events interface {
	// ShippingContactSelected fires on sheet presentation and on every
	// later address change (shippable carts only).
	ShippingContactSelected(ctx context.Context, contact ShippingContact) *Update

	// ShippingMethodSelected fires when the buyer picks a delivery option.
	ShippingMethodSelected(ctx context.Context, method ShippingMethod) *Update

	// PaymentAuthorized fires once the buyer approves payment.
	PaymentAuthorized(ctx context.Context, auth Authorization) *Update

	// Finished fires when the platform dismisses the sheet, regardless of
	// outcome. Returns the hand-off URL presented in the web checkout, or
	// empty when there is nothing to present.
	Finished(ctx context.Context) string
}
