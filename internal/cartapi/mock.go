package cartapi

import (
	"context"

	"wallet-checkout/internal/model"
)

// Mock implements Client for testing.
// Each method can be configured via function fields; unconfigured methods
// return a missing-cart error so tests fail loudly on unexpected calls.
type Mock struct {
	CartCreateFunc                    func(ctx context.Context, merchandiseID string, quantity int) (*model.Cart, error)
	CartFetchFunc                     func(ctx context.Context, cartID string) (*model.Cart, error)
	BuyerIdentityUpdateFunc           func(ctx context.Context, cartID, email string) (*model.Cart, error)
	DeliveryAddressesAddFunc          func(ctx context.Context, cartID string, addr model.PostalAddress, validate bool) (*model.Cart, error)
	DeliveryAddressesUpdateFunc       func(ctx context.Context, cartID, addressID string, addr model.PostalAddress, validate bool) (*model.Cart, error)
	SelectedDeliveryOptionsUpdateFunc func(ctx context.Context, cartID, groupID, optionHandle string) (*model.Cart, error)
	PaymentUpdateFunc                 func(ctx context.Context, cartID string, total model.Money, token PaymentToken) (*model.Cart, error)
	PrepareForCompletionFunc          func(ctx context.Context, cartID string) (*model.Cart, error)
	SubmitForCompletionFunc           func(ctx context.Context, cartID string) (string, error)
	RemovePersonalDataFunc            func(ctx context.Context, cartID string) error
}

func (m *Mock) CartCreate(ctx context.Context, merchandiseID string, quantity int) (*model.Cart, error) {
	if m.CartCreateFunc != nil {
		return m.CartCreateFunc(ctx, merchandiseID, quantity)
	}
	return nil, model.NewMissingFieldError("mock CartCreateFunc")
}

func (m *Mock) CartFetch(ctx context.Context, cartID string) (*model.Cart, error) {
	if m.CartFetchFunc != nil {
		return m.CartFetchFunc(ctx, cartID)
	}
	return nil, model.NewMissingFieldError("mock CartFetchFunc")
}

func (m *Mock) BuyerIdentityUpdate(ctx context.Context, cartID, email string) (*model.Cart, error) {
	if m.BuyerIdentityUpdateFunc != nil {
		return m.BuyerIdentityUpdateFunc(ctx, cartID, email)
	}
	return nil, model.NewMissingFieldError("mock BuyerIdentityUpdateFunc")
}

func (m *Mock) DeliveryAddressesAdd(ctx context.Context, cartID string, addr model.PostalAddress, validate bool) (*model.Cart, error) {
	if m.DeliveryAddressesAddFunc != nil {
		return m.DeliveryAddressesAddFunc(ctx, cartID, addr, validate)
	}
	return nil, model.NewMissingFieldError("mock DeliveryAddressesAddFunc")
}

func (m *Mock) DeliveryAddressesUpdate(ctx context.Context, cartID, addressID string, addr model.PostalAddress, validate bool) (*model.Cart, error) {
	if m.DeliveryAddressesUpdateFunc != nil {
		return m.DeliveryAddressesUpdateFunc(ctx, cartID, addressID, addr, validate)
	}
	return nil, model.NewMissingFieldError("mock DeliveryAddressesUpdateFunc")
}

func (m *Mock) SelectedDeliveryOptionsUpdate(ctx context.Context, cartID, groupID, optionHandle string) (*model.Cart, error) {
	if m.SelectedDeliveryOptionsUpdateFunc != nil {
		return m.SelectedDeliveryOptionsUpdateFunc(ctx, cartID, groupID, optionHandle)
	}
	return nil, model.NewMissingFieldError("mock SelectedDeliveryOptionsUpdateFunc")
}

func (m *Mock) PaymentUpdate(ctx context.Context, cartID string, total model.Money, token PaymentToken) (*model.Cart, error) {
	if m.PaymentUpdateFunc != nil {
		return m.PaymentUpdateFunc(ctx, cartID, total, token)
	}
	return nil, model.NewMissingFieldError("mock PaymentUpdateFunc")
}

func (m *Mock) PrepareForCompletion(ctx context.Context, cartID string) (*model.Cart, error) {
	if m.PrepareForCompletionFunc != nil {
		return m.PrepareForCompletionFunc(ctx, cartID)
	}
	return nil, model.NewMissingFieldError("mock PrepareForCompletionFunc")
}

func (m *Mock) SubmitForCompletion(ctx context.Context, cartID string) (string, error) {
	if m.SubmitForCompletionFunc != nil {
		return m.SubmitForCompletionFunc(ctx, cartID)
	}
	return "", model.NewMissingFieldError("mock SubmitForCompletionFunc")
}

func (m *Mock) RemovePersonalData(ctx context.Context, cartID string) error {
	if m.RemovePersonalDataFunc != nil {
		return m.RemovePersonalDataFunc(ctx, cartID)
	}
	return nil
}

// Verify Mock implements Client interface at compile time.
var _ Client = (*Mock)(nil)
