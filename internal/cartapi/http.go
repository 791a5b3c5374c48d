package cartapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"wallet-checkout/internal/model"
	"wallet-checkout/internal/transport"
)

// SDK identity sent in the Checkout-Client header.
const (
	sdkName    = "wallet-checkout"
	sdkVersion = "1.0.0"
)

// defaultTimeout bounds every cart API call. The orchestrator treats a
// timeout like any other classified error.
const defaultTimeout = 30 * time.Second

// Config holds settings for the HTTP cart API client.
type Config struct {
	// StoreURL is the base URL of the merchant's cart API.
	StoreURL string

	// AccessToken authenticates requests (bearer token).
	AccessToken string

	// APIVersion pins the calendar-versioned API surface, e.g. "2025-07".
	APIVersion string

	// Timeout overrides defaultTimeout when non-zero.
	Timeout time.Duration

	// Logger receives request-level debug logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// HTTPClient implements Client against the remote cart API.
//
// The storefront endpoints sit behind CDNs that rate-limit on TLS
// fingerprint, so the client uses the browser-fingerprint transport.
type HTTPClient struct {
	httpClient   *http.Client
	baseURL      string
	accessToken  string
	apiVersion   string
	clientHeader string
	logger       *slog.Logger
}

// NewHTTPClient creates a cart API client with the given configuration.
func NewHTTPClient(cfg Config) (*HTTPClient, error) {
	if cfg.StoreURL == "" {
		return nil, fmt.Errorf("store URL is required")
	}
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("access token is required")
	}
	if cfg.APIVersion == "" {
		return nil, fmt.Errorf("API version is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	clientHeader, err := BuildClientHeader(sdkName, sdkVersion)
	if err != nil {
		return nil, err
	}

	return &HTTPClient{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport.NewBrowserTransport(timeout),
		},
		baseURL:      strings.TrimSuffix(cfg.StoreURL, "/"),
		accessToken:  cfg.AccessToken,
		apiVersion:   cfg.APIVersion,
		clientHeader: clientHeader,
		logger:       logger,
	}, nil
}

// === Operations ===

func (c *HTTPClient) CartCreate(ctx context.Context, merchandiseID string, quantity int) (*model.Cart, error) {
	body := map[string]any{
		"lines": []map[string]any{
			{"merchandiseId": merchandiseID, "quantity": quantity},
		},
	}
	return c.doCart(ctx, "cartCreate", http.MethodPost, "/carts", body)
}

func (c *HTTPClient) CartFetch(ctx context.Context, cartID string) (*model.Cart, error) {
	return c.doCart(ctx, "cartFetch", http.MethodGet, "/carts/"+cartPath(cartID), nil)
}

func (c *HTTPClient) BuyerIdentityUpdate(ctx context.Context, cartID, email string) (*model.Cart, error) {
	body := map[string]any{"buyerIdentity": map[string]any{"email": email}}
	return c.doCart(ctx, "cartBuyerIdentityUpdate", http.MethodPost, "/carts/"+cartPath(cartID)+"/buyer-identity", body)
}

func (c *HTTPClient) DeliveryAddressesAdd(ctx context.Context, cartID string, addr model.PostalAddress, validate bool) (*model.Cart, error) {
	body := map[string]any{
		"address":  addressToAPI(addr),
		"validate": validate,
		"selected": true,
	}
	return c.doCart(ctx, "cartDeliveryAddressesAdd", http.MethodPost, "/carts/"+cartPath(cartID)+"/delivery-addresses", body)
}

func (c *HTTPClient) DeliveryAddressesUpdate(ctx context.Context, cartID, addressID string, addr model.PostalAddress, validate bool) (*model.Cart, error) {
	body := map[string]any{
		"address":  addressToAPI(addr),
		"validate": validate,
		"selected": true,
	}
	return c.doCart(ctx, "cartDeliveryAddressesUpdate", http.MethodPut, "/carts/"+cartPath(cartID)+"/delivery-addresses/"+addressID, body)
}

func (c *HTTPClient) SelectedDeliveryOptionsUpdate(ctx context.Context, cartID, groupID, optionHandle string) (*model.Cart, error) {
	body := map[string]any{
		"deliveryGroupId":      groupID,
		"deliveryOptionHandle": optionHandle,
	}
	return c.doCart(ctx, "cartSelectedDeliveryOptionsUpdate", http.MethodPost, "/carts/"+cartPath(cartID)+"/selected-delivery-options", body)
}

func (c *HTTPClient) PaymentUpdate(ctx context.Context, cartID string, total model.Money, token PaymentToken) (*model.Cart, error) {
	body := map[string]any{
		"amount": apiMoney{Amount: total.Decimal(), CurrencyCode: total.CurrencyCode},
		"token":  token,
	}
	return c.doCart(ctx, "cartPaymentUpdate", http.MethodPost, "/carts/"+cartPath(cartID)+"/payment", body)
}

func (c *HTTPClient) PrepareForCompletion(ctx context.Context, cartID string) (*model.Cart, error) {
	return c.doCart(ctx, "cartPrepareForCompletion", http.MethodPost, "/carts/"+cartPath(cartID)+"/prepare", nil)
}

func (c *HTTPClient) SubmitForCompletion(ctx context.Context, cartID string) (string, error) {
	env, err := c.do(ctx, "cartSubmitForCompletion", http.MethodPost, "/carts/"+cartPath(cartID)+"/submit", map[string]any{
		// Attempt token makes retries after an ambiguous failure safe to dedupe server-side.
		"attemptToken": uuid.NewString(),
	})
	if err != nil {
		return "", err
	}
	if env.RedirectURL == "" {
		return "", model.NewMissingFieldError("submit redirect URL")
	}
	return env.RedirectURL, nil
}

func (c *HTTPClient) RemovePersonalData(ctx context.Context, cartID string) error {
	_, err := c.do(ctx, "cartRemovePersonalData", http.MethodDelete, "/carts/"+cartPath(cartID)+"/personal-data", nil)
	return err
}

// Verify HTTPClient implements Client interface at compile time.
var _ Client = (*HTTPClient)(nil)

// === Request plumbing ===

// doCart executes a request and requires a cart in the response envelope.
func (c *HTTPClient) doCart(ctx context.Context, op, method, path string, body any) (*model.Cart, error) {
	env, err := c.do(ctx, op, method, path, body)
	if err != nil {
		return nil, err
	}
	cart := cartFromAPI(env.Cart)
	if cart == nil {
		return nil, model.NewMissingFieldError(op + " response cart")
	}
	return cart, nil
}

// do executes one cart API request and decodes the shared envelope.
// A non-empty userErrors set is returned as *model.ValidationError even on
// HTTP 200; transport and server failures wrap model.ErrTransport.
func (c *HTTPClient) do(ctx context.Context, op, method, path string, body any) (*apiEnvelope, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encoding request: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	url := c.baseURL + "/api/" + c.apiVersion + path
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%s: building request: %w", op, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set(ClientHeader, c.clientHeader)
	req.Header.Set("X-Request-ID", uuid.NewString())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, model.NewTransportError(op, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("cart API request",
		slog.String("operation", op),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
	)

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, model.NewTransportError(op, err)
	}

	if resp.StatusCode >= 500 {
		return nil, model.NewTransportError(op, fmt.Errorf("server returned %d", resp.StatusCode))
	}

	var env apiEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, model.NewTransportError(op, fmt.Errorf("decoding response: %w", err))
	}

	if verr := userErrorsFromAPI(env.UserErrors); verr != nil {
		return nil, verr
	}
	if resp.StatusCode >= 400 {
		return nil, model.NewTransportError(op, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	return &env, nil
}

// cartPath strips the gid prefix so ids embed cleanly in URL paths.
// "gid://shopify/Cart/abc" → "abc"; opaque ids pass through unchanged.
func cartPath(cartID string) string {
	if i := strings.LastIndex(cartID, "/"); i >= 0 {
		return cartID[i+1:]
	}
	return cartID
}
