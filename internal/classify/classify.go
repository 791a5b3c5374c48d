// Package classify routes flow errors to one of three dispositions: show
// inline in the payment sheet, interrupt the sheet and fall back to the web
// checkout, or unclassified (the orchestrator treats those as fatal).
package classify

import (
	"errors"
	"strings"
	"unicode/utf8"

	"wallet-checkout/internal/model"
	"wallet-checkout/internal/sheet"
)

// Outcome is the classified disposition of an error.
type Outcome string

const (
	// OutcomeInline: the sheet can surface the violated fields; the buyer
	// fixes them without leaving the sheet.
	OutcomeInline Outcome = "inline"

	// OutcomeInterrupt: abandon the sheet and hand off to the web checkout.
	OutcomeInterrupt Outcome = "interrupt"

	// OutcomeUnclassified: not recognized; abort with one generic error.
	OutcomeUnclassified Outcome = "unclassified"
)

// Reason tags why the sheet was abandoned. Serialized (lowercased) as the
// `reason` query parameter on the fallback checkout URL.
type Reason string

const (
	ReasonOutOfStock           Reason = "OUT_OF_STOCK"
	ReasonUnserviceableAddress Reason = "UNSERVICEABLE_ADDRESS"
	ReasonCurrencyChanged      Reason = "CURRENCY_CHANGED"
	ReasonValidation           Reason = "VALIDATION"
)

// QueryValue returns the reason as it appears in the fallback URL.
func (r Reason) QueryValue() string {
	return strings.ToLower(string(r))
}

// Result is the classification outcome plus its payload.
type Result struct {
	Outcome     Outcome
	FieldErrors []sheet.FieldError // inline only
	Reason      Reason             // interrupt only
	FallbackURL string             // interrupt only, the cart's checkout URL
}

// maxMessageLen bounds inline messages to what sheet UI can render.
const maxMessageLen = 128

// Codes the cart API uses for rejections the sheet cannot represent.
var interruptCodes = map[string]Reason{
	"OUT_OF_STOCK":          ReasonOutOfStock,
	"MERCHANDISE_SOLD_OUT":  ReasonOutOfStock,
	"UNSERVICEABLE_ADDRESS": ReasonUnserviceableAddress,
	"DELIVERY_UNAVAILABLE":  ReasonUnserviceableAddress,
}

// Countries where the sheet collects no postal code, making zip-field
// errors unfixable inline.
var noPostalCodeCountries = map[string]bool{
	"AE": true,
	"HK": true,
	"PA": true,
}

// Classify decides the disposition of err given the currently known
// shipping country and the cart's checkout URL (the interrupt fallback
// target).
//
// Structured validation errors map to inline field errors when every
// violated field is one the sheet can surface; any non-representable
// violation escalates the whole set to an interrupt. Currency drift is
// always an interrupt. Everything else (missing-field contract violations,
// transport failures, unknown errors) is unclassified.
func Classify(err error, shippingCountry, checkoutURL string) Result {
	if err == nil {
		return Result{Outcome: OutcomeUnclassified}
	}

	if errors.Is(err, model.ErrCurrencyChanged) {
		return interrupt(ReasonCurrencyChanged, checkoutURL)
	}

	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return classifyValidation(verr, shippingCountry, checkoutURL)
	}

	return Result{Outcome: OutcomeUnclassified}
}

func classifyValidation(verr *model.ValidationError, shippingCountry, checkoutURL string) Result {
	fieldErrors := make([]sheet.FieldError, 0, len(verr.Errors))

	for _, ue := range verr.Errors {
		if reason, ok := interruptCodes[ue.Code]; ok {
			return interrupt(reason, checkoutURL)
		}

		field, ok := sheetField(ue, shippingCountry)
		if !ok {
			// Violated concept is not sheet-representable.
			return interrupt(ReasonValidation, checkoutURL)
		}
		fieldErrors = append(fieldErrors, sheet.FieldError{
			Field:   field,
			Message: truncate(ue.Message),
		})
	}

	if len(fieldErrors) == 0 {
		return interrupt(ReasonValidation, checkoutURL)
	}
	return Result{Outcome: OutcomeInline, FieldErrors: fieldErrors}
}

func interrupt(reason Reason, checkoutURL string) Result {
	return Result{Outcome: OutcomeInterrupt, Reason: reason, FallbackURL: checkoutURL}
}

// sheetField maps a violated cart field path to the sheet contact field
// that can surface it, if any.
func sheetField(ue model.UserError, shippingCountry string) (sheet.ContactField, bool) {
	path := ue.FieldPath()

	switch {
	case strings.HasSuffix(path, ".email") || path == "email":
		return sheet.FieldEmail, true
	case strings.HasSuffix(path, ".phone") || path == "phone":
		return sheet.FieldPhone, true
	case strings.HasSuffix(path, ".firstName"), strings.HasSuffix(path, ".lastName"):
		return sheet.FieldName, true
	}

	if isAddressPath(path) {
		// Zip errors are unfixable inline where the sheet collects no
		// postal code for the shipping country.
		if strings.HasSuffix(path, ".zip") && noPostalCodeCountries[shippingCountry] {
			return "", false
		}
		return sheet.FieldPostalAddress, true
	}

	return "", false
}

func isAddressPath(path string) bool {
	return strings.Contains(path, "deliveryAddress") ||
		strings.Contains(path, "billingAddress") ||
		strings.Contains(path, "delivery.addresses")
}

func truncate(msg string) string {
	if len(msg) <= maxMessageLen {
		return msg
	}
	// Back up to a rune boundary so the cut never splits a multi-byte rune.
	cut := maxMessageLen - 1
	for cut > 0 && !utf8.RuneStart(msg[cut]) {
		cut--
	}
	return msg[:cut] + "…"
}
