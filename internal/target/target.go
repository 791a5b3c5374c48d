// Package target validates and normalizes the caller-supplied checkout
// target: either an existing cart reference or a single variant plus
// quantity. Resolution is pure and synchronous; an Invalid result is
// terminal and is never repaired in place. Callers re-resolve whenever the
// raw input changes.
package target

import (
	"fmt"
	"strings"
)

// Platform id prefixes. Comparison is case-insensitive.
const (
	cartIDPrefix    = "gid://shopify/cart/"
	variantIDPrefix = "gid://shopify/productvariant/"
)

// Kind discriminates the target union.
type Kind string

const (
	KindCart    Kind = "cart"
	KindVariant Kind = "variant"
	KindInvalid Kind = "invalid"
)

// Target is the resolved checkout target. Immutable once resolved.
type Target struct {
	Kind     Kind
	ID       string // cart or variant id, empty for invalid targets
	Quantity int    // variant targets only
	Reason   string // diagnostic for invalid targets
}

// IsValid reports whether the target resolved to a usable cart or variant.
// Zero-value targets are invalid.
func (t Target) IsValid() bool {
	return t.Kind == KindCart || t.Kind == KindVariant
}

// ResolveCart resolves a cart id string into a target.
func ResolveCart(id string) Target {
	if id == "" {
		return invalid("cart id is empty")
	}
	if !hasPrefixFold(id, cartIDPrefix) {
		return invalid(fmt.Sprintf("cart id %q does not start with %q", id, cartIDPrefix))
	}
	return Target{Kind: KindCart, ID: id}
}

// ResolveVariant resolves a variant id and quantity into a target.
func ResolveVariant(id string, quantity int) Target {
	if id == "" {
		return invalid("variant id is empty")
	}
	if !hasPrefixFold(id, variantIDPrefix) {
		return invalid(fmt.Sprintf("variant id %q does not start with %q", id, variantIDPrefix))
	}
	if quantity <= 0 {
		return invalid(fmt.Sprintf("quantity %d must be greater than zero", quantity))
	}
	return Target{Kind: KindVariant, ID: id, Quantity: quantity}
}

func invalid(reason string) Target {
	return Target{Kind: KindInvalid, Reason: reason}
}

// hasPrefixFold reports whether s starts with prefix, ignoring ASCII case.
func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
