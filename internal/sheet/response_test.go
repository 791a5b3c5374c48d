package sheet

import (
	"errors"
	"testing"

	"wallet-checkout/internal/cartapi"
	"wallet-checkout/internal/model"
)

func TestDecodeShippingContact(t *testing.T) {
	contact := ShippingContact{
		GivenName:  "Ada",
		FamilyName: "Lovelace",
		Phone:      "+14155550123",
		Address: model.PostalAddress{
			City:       "San Francisco",
			Province:   "CA",
			Country:    "US",
			PostalCode: "94107",
		},
	}

	addr, err := DecodeShippingContact(contact)
	if err != nil {
		t.Fatalf("DecodeShippingContact() error = %v", err)
	}
	if addr.FirstName != "Ada" || addr.LastName != "Lovelace" {
		t.Errorf("name not merged into address: %+v", addr)
	}
	if addr.PhoneNumber != "+14155550123" {
		t.Errorf("PhoneNumber = %q, want contact phone", addr.PhoneNumber)
	}
	if addr.Country != "US" {
		t.Errorf("Country = %q, want US", addr.Country)
	}
}

func TestDecodeShippingContact_MissingCountry(t *testing.T) {
	_, err := DecodeShippingContact(ShippingContact{Address: model.PostalAddress{City: "Berlin"}})
	if !errors.Is(err, model.ErrMissingField) {
		t.Errorf("error = %v, want a missing-field error", err)
	}
}

func TestDecodeShippingMethod(t *testing.T) {
	handle, err := DecodeShippingMethod(ShippingMethod{Handle: "STANDARD"})
	if err != nil {
		t.Fatalf("DecodeShippingMethod() error = %v", err)
	}
	if handle != "STANDARD" {
		t.Errorf("handle = %q, want STANDARD", handle)
	}

	if _, err := DecodeShippingMethod(ShippingMethod{}); !errors.Is(err, model.ErrMissingField) {
		t.Errorf("error = %v, want a missing-field error", err)
	}
}

func TestDecodeAuthorization(t *testing.T) {
	tests := []struct {
		name    string
		auth    Authorization
		wantErr bool
	}{
		{
			name: "complete",
			auth: Authorization{
				Token:   cartapi.PaymentToken{Type: "wallet.apple_pay", Data: "dG9rZW4="},
				Contact: ShippingContact{Email: "a@b.com"},
			},
		},
		{
			name:    "missing token",
			auth:    Authorization{Contact: ShippingContact{Email: "a@b.com"}},
			wantErr: true,
		},
		{
			name:    "missing email",
			auth:    Authorization{Token: cartapi.PaymentToken{Data: "dG9rZW4="}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, email, err := DecodeAuthorization(tt.auth)
			if tt.wantErr {
				if !errors.Is(err, model.ErrMissingField) {
					t.Errorf("error = %v, want a missing-field error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeAuthorization() error = %v", err)
			}
			if token.Data != "dG9rZW4=" {
				t.Errorf("token data = %q", token.Data)
			}
			if email != "a@b.com" {
				t.Errorf("email = %q, want a@b.com", email)
			}
		})
	}
}
