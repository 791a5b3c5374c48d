package sheet

import (
	"wallet-checkout/internal/cartapi"
	"wallet-checkout/internal/model"
)

// Inbound decoding of sheet responses. Each function returns a typed value
// or the missing-field error for whatever the sheet failed to provide.

// DecodeShippingContact extracts the postal address from a sheet contact.
// The sheet redacts street details before authorization, so only the
// fields needed for delivery-option resolution are required here.
func DecodeShippingContact(contact ShippingContact) (model.PostalAddress, error) {
	addr := contact.Address
	if addr.Country == "" {
		return model.PostalAddress{}, model.NewMissingFieldError("shipping contact country")
	}
	if contact.GivenName != "" {
		addr.FirstName = contact.GivenName
	}
	if contact.FamilyName != "" {
		addr.LastName = contact.FamilyName
	}
	if contact.Phone != "" {
		addr.PhoneNumber = contact.Phone
	}
	return addr, nil
}

// DecodeShippingMethod extracts the selected delivery option handle.
func DecodeShippingMethod(method ShippingMethod) (string, error) {
	if method.Handle == "" {
		return "", model.NewMissingFieldError("shipping method identifier")
	}
	return method.Handle, nil
}

// DecodeAuthorization extracts the payment token and buyer email from a
// payment-authorized payload. The email is required; its absence is a hard
// validation failure, not a warning.
func DecodeAuthorization(auth Authorization) (cartapi.PaymentToken, string, error) {
	if auth.Token.Data == "" {
		return cartapi.PaymentToken{}, "", model.NewMissingFieldError("payment token data")
	}
	if auth.Contact.Email == "" {
		return cartapi.PaymentToken{}, "", model.NewMissingFieldError("buyer email")
	}
	return auth.Token, auth.Contact.Email, nil
}
