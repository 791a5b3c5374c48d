package sheet

import (
	"wallet-checkout/internal/model"
)

// BuildPaymentRequest produces the outbound sheet request for the current
// cart snapshot. Fails closed: absent cart, total, or merchant settings
// raise missing-field errors rather than defaulting.
func BuildPaymentRequest(cart *model.Cart, cfg Config) (*PaymentRequest, error) {
	if cart == nil {
		return nil, model.NewMissingFieldError("cart")
	}
	if cfg.MerchantID == "" {
		return nil, model.NewMissingFieldError("merchant identifier")
	}
	if cfg.CountryCode == "" {
		return nil, model.NewMissingFieldError("merchant country code")
	}
	if cart.TotalAmount.IsZero() {
		return nil, model.NewMissingFieldError("cart total")
	}

	items, err := SummaryItems(cart)
	if err != nil {
		return nil, err
	}

	return &PaymentRequest{
		MerchantID:            cfg.MerchantID,
		CountryCode:           cfg.CountryCode,
		CurrencyCode:          cart.TotalAmount.CurrencyCode,
		SupportedNetworks:     cfg.SupportedNetworks,
		RequiredContactFields: cfg.RequiredContactFields,
		Shippable:             cart.RequiresShipping(),
		ShippingMethods:       ShippingMethods(cart),
		LineItems:             items,
	}, nil
}

// ShippingMethods returns the ordered delivery options of the cart's first
// delivery group as sheet shipping methods. Empty for non-shippable carts.
func ShippingMethods(cart *model.Cart) []ShippingMethod {
	group := cart.FirstDeliveryGroup()
	if group == nil {
		return nil
	}

	methods := make([]ShippingMethod, 0, len(group.DeliveryOptions))
	for _, opt := range group.DeliveryOptions {
		methods = append(methods, ShippingMethod{
			Handle: opt.Handle,
			Label:  opt.Title,
			Detail: opt.Description,
			Amount: opt.EstimatedCost,
		})
	}
	return methods
}

// SummaryItems builds the sheet's total breakdown. The rows always sum to
// the cart total: subtotal is derived from total minus selected shipping so
// rounding on the remote side cannot desynchronize the sheet.
func SummaryItems(cart *model.Cart) ([]SummaryItem, error) {
	total := cart.TotalAmount
	if total.CurrencyCode == "" {
		return nil, model.NewMissingFieldError("cart total currency")
	}

	var shipping *model.Money
	if group := cart.FirstDeliveryGroup(); group != nil && group.SelectedOption != nil {
		cost := group.SelectedOption.EstimatedCost
		shipping = &cost
	}

	items := make([]SummaryItem, 0, 3)
	if shipping != nil {
		subtotal := model.NewMoney(total.Amount-shipping.Amount, total.CurrencyCode)
		items = append(items,
			SummaryItem{Label: "Subtotal", Amount: subtotal},
			SummaryItem{Label: "Shipping", Amount: *shipping},
		)
	} else {
		items = append(items, SummaryItem{Label: "Subtotal", Amount: total})
	}
	items = append(items, SummaryItem{Label: "Total", Amount: total, Final: true})

	return items, nil
}
