// Package model defines the cart snapshot and shared value types used by the
// wallet checkout core. A snapshot is replaced wholesale after every successful
// mutation so the session always reasons about one consistent view of the cart.
package model

// Cart is the most recently fetched view of the remote cart.
// Owned exclusively by the active session; never patched in place.
type Cart struct {
	ID                string              `json:"id"`
	CheckoutURL       string              `json:"checkout_url"`
	TotalAmount       Money               `json:"total_amount"`
	DeliveryGroups    []DeliveryGroup     `json:"delivery_groups,omitempty"`
	DeliveryAddresses []SelectableAddress `json:"delivery_addresses,omitempty"`
	BuyerIdentity     BuyerIdentity       `json:"buyer_identity"`
	Lines             []CartLine          `json:"lines,omitempty"`
}

// RequiresShipping reports whether the cart has shippable contents.
// Carts with no delivery groups are digital-only and skip address handling.
func (c *Cart) RequiresShipping() bool {
	return len(c.DeliveryGroups) > 0
}

// FirstDeliveryGroup returns the group whose options drive the payment sheet,
// or nil for non-shippable carts.
func (c *Cart) FirstDeliveryGroup() *DeliveryGroup {
	if len(c.DeliveryGroups) == 0 {
		return nil
	}
	return &c.DeliveryGroups[0]
}

// SelectedDeliveryAddress returns the address flagged as selected, or nil.
func (c *Cart) SelectedDeliveryAddress() *SelectableAddress {
	for i := range c.DeliveryAddresses {
		if c.DeliveryAddresses[i].Selected {
			return &c.DeliveryAddresses[i]
		}
	}
	return nil
}

// ShippingCountry returns the country code of the selected delivery address,
// or empty when no address has been attached yet.
func (c *Cart) ShippingCountry() string {
	if addr := c.SelectedDeliveryAddress(); addr != nil {
		return addr.Address.Country
	}
	return ""
}

// DeliveryGroup is a shippable grouping of line items with its own set of
// delivery options and at most one selected option.
type DeliveryGroup struct {
	ID              string           `json:"id"`
	DeliveryOptions []DeliveryOption `json:"delivery_options,omitempty"`
	SelectedOption  *DeliveryOption  `json:"selected_option,omitempty"`
}

// OptionByHandle returns the delivery option with the given handle, or nil.
func (g *DeliveryGroup) OptionByHandle(handle string) *DeliveryOption {
	for i := range g.DeliveryOptions {
		if g.DeliveryOptions[i].Handle == handle {
			return &g.DeliveryOptions[i]
		}
	}
	return nil
}

// DeliveryOption is one selectable shipping method within a delivery group.
type DeliveryOption struct {
	Handle        string `json:"handle"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	EstimatedCost Money  `json:"estimated_cost"`
}

// SelectableAddress is a delivery address stored on the cart.
// The remote API assigns the ID; the session remembers it for later updates.
type SelectableAddress struct {
	ID       string        `json:"id"`
	Selected bool          `json:"selected,omitempty"`
	Address  PostalAddress `json:"address"`
}

// PostalAddress represents a mailing address.
// All fields optional to support international variations.
type PostalAddress struct {
	Address1    string `json:"address1,omitempty"`
	Address2    string `json:"address2,omitempty"`
	City        string `json:"city,omitempty"`
	Province    string `json:"province,omitempty"` // state/province code
	Country     string `json:"country,omitempty"`  // ISO 3166-1 alpha-2
	PostalCode  string `json:"postal_code,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"` // E.164 format
}

// Buyer identity attached to the cart.
type BuyerIdentity struct {
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
}

// CartLine is a product in the cart with quantity and pricing.
type CartLine struct {
	ID            string `json:"id"`
	MerchandiseID string `json:"merchandise_id"`
	Title         string `json:"title,omitempty"`
	Quantity      int    `json:"quantity"`
	Cost          Money  `json:"cost"`
}
