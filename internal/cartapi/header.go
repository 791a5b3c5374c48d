package cartapi

import (
	"fmt"

	"github.com/dunglas/httpsfv"
)

// ClientHeader is the request header identifying this SDK to the cart API.
// Value is an RFC 8941 Dictionary: sdk="wallet-checkout";version="x.y.z".
const ClientHeader = "Checkout-Client"

// BuildClientHeader serializes the SDK name and version as a structured
// field dictionary for the Checkout-Client header.
func BuildClientHeader(name, version string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("client name is required")
	}

	item := httpsfv.NewItem(name)
	if version != "" {
		item.Params.Add("version", version)
	}

	dict := httpsfv.NewDictionary()
	dict.Add("sdk", item)

	value, err := httpsfv.Marshal(dict)
	if err != nil {
		return "", fmt.Errorf("marshaling %s header: %w", ClientHeader, err)
	}
	return value, nil
}
