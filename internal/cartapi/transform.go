package cartapi

import (
	"wallet-checkout/internal/model"
)

// Wire types for the cart API's JSON envelope. Amounts arrive as decimal
// strings in major units and are converted to minor units on decode.

type apiEnvelope struct {
	Cart        *apiCart       `json:"cart,omitempty"`
	RedirectURL string         `json:"redirectUrl,omitempty"`
	UserErrors  []apiUserError `json:"userErrors,omitempty"`
}

type apiUserError struct {
	Field   []string `json:"field,omitempty"`
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
}

type apiCart struct {
	ID             string             `json:"id"`
	CheckoutURL    string             `json:"checkoutUrl"`
	Cost           apiCost            `json:"cost"`
	DeliveryGroups []apiDeliveryGroup `json:"deliveryGroups,omitempty"`
	Delivery       apiDelivery        `json:"delivery"`
	BuyerIdentity  apiBuyerIdentity   `json:"buyerIdentity"`
	Lines          []apiLine          `json:"lines,omitempty"`
}

type apiCost struct {
	TotalAmount apiMoney `json:"totalAmount"`
}

type apiMoney struct {
	Amount       string `json:"amount"` // decimal string, major units
	CurrencyCode string `json:"currencyCode"`
}

type apiDeliveryGroup struct {
	ID                     string              `json:"id"`
	DeliveryOptions        []apiDeliveryOption `json:"deliveryOptions,omitempty"`
	SelectedDeliveryOption *apiDeliveryOption  `json:"selectedDeliveryOption,omitempty"`
}

type apiDeliveryOption struct {
	Handle        string   `json:"handle"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	EstimatedCost apiMoney `json:"estimatedCost"`
}

type apiDelivery struct {
	Addresses []apiSelectableAddress `json:"addresses,omitempty"`
}

type apiSelectableAddress struct {
	ID       string     `json:"id"`
	Selected bool       `json:"selected,omitempty"`
	Address  apiAddress `json:"address"`
}

type apiAddress struct {
	Address1     string `json:"address1,omitempty"`
	Address2     string `json:"address2,omitempty"`
	City         string `json:"city,omitempty"`
	ProvinceCode string `json:"provinceCode,omitempty"`
	CountryCode  string `json:"countryCode,omitempty"`
	Zip          string `json:"zip,omitempty"`
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

type apiBuyerIdentity struct {
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
}

type apiLine struct {
	ID          string         `json:"id"`
	Merchandise apiMerchandise `json:"merchandise"`
	Quantity    int            `json:"quantity"`
	Cost        apiCost        `json:"cost"`
}

type apiMerchandise struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

// cartFromAPI converts a wire cart into the snapshot type.
func cartFromAPI(c *apiCart) *model.Cart {
	if c == nil {
		return nil
	}

	cart := &model.Cart{
		ID:          c.ID,
		CheckoutURL: c.CheckoutURL,
		TotalAmount: moneyFromAPI(c.Cost.TotalAmount),
		BuyerIdentity: model.BuyerIdentity{
			Email:       c.BuyerIdentity.Email,
			PhoneNumber: c.BuyerIdentity.Phone,
			CountryCode: c.BuyerIdentity.CountryCode,
		},
	}

	for _, g := range c.DeliveryGroups {
		group := model.DeliveryGroup{ID: g.ID}
		for _, opt := range g.DeliveryOptions {
			group.DeliveryOptions = append(group.DeliveryOptions, optionFromAPI(opt))
		}
		if g.SelectedDeliveryOption != nil {
			selected := optionFromAPI(*g.SelectedDeliveryOption)
			group.SelectedOption = &selected
		}
		cart.DeliveryGroups = append(cart.DeliveryGroups, group)
	}

	for _, a := range c.Delivery.Addresses {
		cart.DeliveryAddresses = append(cart.DeliveryAddresses, model.SelectableAddress{
			ID:       a.ID,
			Selected: a.Selected,
			Address:  addressFromAPI(a.Address),
		})
	}

	for _, l := range c.Lines {
		cart.Lines = append(cart.Lines, model.CartLine{
			ID:            l.ID,
			MerchandiseID: l.Merchandise.ID,
			Title:         l.Merchandise.Title,
			Quantity:      l.Quantity,
			Cost:          moneyFromAPI(l.Cost.TotalAmount),
		})
	}

	return cart
}

func moneyFromAPI(m apiMoney) model.Money {
	return model.NewMoney(model.ParseCents(m.Amount), m.CurrencyCode)
}

func optionFromAPI(o apiDeliveryOption) model.DeliveryOption {
	return model.DeliveryOption{
		Handle:        o.Handle,
		Title:         o.Title,
		Description:   o.Description,
		EstimatedCost: moneyFromAPI(o.EstimatedCost),
	}
}

func addressFromAPI(a apiAddress) model.PostalAddress {
	return model.PostalAddress{
		Address1:    a.Address1,
		Address2:    a.Address2,
		City:        a.City,
		Province:    a.ProvinceCode,
		Country:     a.CountryCode,
		PostalCode:  a.Zip,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		PhoneNumber: a.Phone,
	}
}

// addressToAPI converts a snapshot address into the wire shape.
func addressToAPI(a model.PostalAddress) apiAddress {
	return apiAddress{
		Address1:     a.Address1,
		Address2:     a.Address2,
		City:         a.City,
		ProvinceCode: a.Province,
		CountryCode:  a.Country,
		Zip:          a.PostalCode,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Phone:        a.PhoneNumber,
	}
}

// userErrorsFromAPI converts wire user errors into the model error type.
// Returns nil when the set is empty.
func userErrorsFromAPI(errs []apiUserError) *model.ValidationError {
	if len(errs) == 0 {
		return nil
	}
	out := &model.ValidationError{Errors: make([]model.UserError, 0, len(errs))}
	for _, ue := range errs {
		out.Errors = append(out.Errors, model.UserError{
			Field:   ue.Field,
			Message: ue.Message,
			Code:    ue.Code,
		})
	}
	return out
}
