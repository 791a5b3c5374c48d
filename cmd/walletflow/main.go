// walletflow drives an accelerated wallet checkout against a live cart API.
// Each command performs a single step of the flow, making it scriptable.
//
// Commands:
//
//	walletflow sheet -target <gid>                     print the payment request the sheet would show
//	walletflow run -target <gid> [flow flags]          simulate the full sheet flow and print the hand-off URL
//
// Examples:
//
//	walletflow sheet -target "gid://shopify/cart/abc123"
//	walletflow run -target "gid://shopify/productvariant/60" -qty 2 \
//	    -email a@b.com -country US -city Portland -zip 97201 -token tok_test
//
// Configuration is loaded the same way as in production: CONFIG_FILE if
// set, otherwise environment variables (development) or Secret Manager
// (production).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"wallet-checkout/internal/cartapi"
	"wallet-checkout/internal/config"
	"wallet-checkout/internal/model"
	"wallet-checkout/internal/session"
	"wallet-checkout/internal/sheet"
	"wallet-checkout/internal/target"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "sheet":
		err = runSheet(args)
	case "run":
		err = runFlow(args)
	case "-h", "-help", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `walletflow - wallet checkout flow driver

Usage:
  walletflow <command> [options]

Commands:
  sheet   Resolve a target and print the payment request the sheet would show
  run     Simulate the full sheet flow and print the hand-off URL

Examples:
  walletflow sheet -target "gid://shopify/cart/abc123"
  walletflow run -target "gid://shopify/productvariant/60" -qty 2 \
      -email a@b.com -country US -city Portland -zip 97201 -token tok_test
`)
}

// setup loads configuration and builds a session wired to the live cart API.
func setup(ctx context.Context, presenter session.FallbackPresenter) (*session.Session, *slog.Logger, error) {
	logger := initLogger()

	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	logger.Info("configuration loaded",
		slog.String("merchant_id", cfg.MerchantID),
		slog.String("environment", cfg.Environment),
	)

	clientCfg := cfg.BuildClientConfig()
	clientCfg.Logger = logger
	client, err := cartapi.NewHTTPClient(clientCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating cart client: %w", err)
	}

	s := session.New(client, presenter, session.Config{
		Sheet:   cfg.BuildSheetConfig(),
		Cleanup: cfg.BuildCleanupConfig(),
	}, logger)
	return s, logger, nil
}

// resolveTarget parses the -target/-qty pair into a checkout target.
func resolveTarget(raw string, qty int) (target.Target, error) {
	var t target.Target
	switch {
	case strings.Contains(strings.ToLower(raw), "/cart/"):
		t = target.ResolveCart(raw)
	default:
		t = target.ResolveVariant(raw, qty)
	}
	if !t.IsValid() {
		return target.Target{}, fmt.Errorf("invalid target %q: %s", raw, t.Reason)
	}
	return t, nil
}

// runSheet prints the payment request for a target without driving the flow.
func runSheet(args []string) error {
	fs := flag.NewFlagSet("sheet", flag.ExitOnError)
	rawTarget := fs.String("target", "", "checkout target (cart or variant gid)")
	qty := fs.Int("qty", 1, "quantity for variant targets")
	fs.Parse(args)

	if *rawTarget == "" {
		return fmt.Errorf("-target is required")
	}

	ctx := context.Background()
	s, _, err := setup(ctx, &printPresenter{})
	if err != nil {
		return err
	}

	t, err := resolveTarget(*rawTarget, *qty)
	if err != nil {
		return err
	}

	req, err := s.Start(ctx, t)
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	// Dismiss without interacting so the cart is left consistent.
	defer s.Finished(ctx)

	out, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// runFlow simulates the platform sheet: address selection, shipping method
// selection, authorization, dismissal.
func runFlow(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	rawTarget := fs.String("target", "", "checkout target (cart or variant gid)")
	qty := fs.Int("qty", 1, "quantity for variant targets")
	email := fs.String("email", "", "buyer email")
	firstName := fs.String("first", "Test", "buyer first name")
	lastName := fs.String("last", "Buyer", "buyer last name")
	country := fs.String("country", "", "shipping country code")
	city := fs.String("city", "", "shipping city")
	address1 := fs.String("address1", "", "shipping street address")
	zip := fs.String("zip", "", "shipping postal code")
	method := fs.String("method", "", "delivery option handle (default: first offered)")
	token := fs.String("token", "", "payment token data")
	fs.Parse(args)

	if *rawTarget == "" {
		return fmt.Errorf("-target is required")
	}
	if *email == "" || *token == "" {
		return fmt.Errorf("-email and -token are required")
	}

	ctx := context.Background()
	presenter := &printPresenter{}
	s, logger, err := setup(ctx, presenter)
	if err != nil {
		return err
	}

	t, err := resolveTarget(*rawTarget, *qty)
	if err != nil {
		return err
	}

	req, err := s.Start(ctx, t)
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	logger.Info("sheet presented",
		slog.String("currency", req.CurrencyCode),
		slog.Bool("shippable", req.Shippable),
		slog.Int("shipping_methods", len(req.ShippingMethods)),
	)

	contact := sheet.ShippingContact{
		GivenName:  *firstName,
		FamilyName: *lastName,
		Email:      *email,
		Address: model.PostalAddress{
			Address1:   *address1,
			City:       *city,
			Country:    *country,
			PostalCode: *zip,
		},
	}

	if req.Shippable {
		upd := s.ShippingContactSelected(ctx, contact)
		if upd.Status != sheet.StatusSuccess {
			logFieldErrors(logger, "address rejected", upd.Errors)
			s.Finished(ctx)
			return fmt.Errorf("shipping address step failed")
		}
		logTotals(logger, "address accepted", upd.LineItems)

		if handle := pickMethod(*method, upd.ShippingMethods); handle != "" {
			upd = s.ShippingMethodSelected(ctx, sheet.ShippingMethod{Handle: handle})
			logTotals(logger, "shipping method applied", upd.LineItems)
		}
	}

	upd := s.PaymentAuthorized(ctx, sheet.Authorization{
		Token:   cartapi.PaymentToken{Type: "wallet", Data: *token},
		Contact: contact,
	})
	if upd.Status != sheet.StatusSuccess {
		logFieldErrors(logger, "authorization rejected", upd.Errors)
	}

	url := s.Finished(ctx)
	if url == "" {
		return fmt.Errorf("flow ended with no hand-off URL")
	}
	return nil
}

func pickMethod(preferred string, methods []sheet.ShippingMethod) string {
	if preferred != "" {
		return preferred
	}
	if len(methods) > 0 {
		return methods[0].Handle
	}
	return ""
}

func logTotals(logger *slog.Logger, msg string, items []sheet.SummaryItem) {
	for _, it := range items {
		if it.Final {
			logger.Info(msg,
				slog.String("total", it.Amount.Decimal()),
				slog.String("currency", it.Amount.CurrencyCode),
			)
			return
		}
	}
}

func logFieldErrors(logger *slog.Logger, msg string, errs []sheet.FieldError) {
	for _, fe := range errs {
		logger.Warn(msg,
			slog.String("field", string(fe.Field)),
			slog.String("message", fe.Message),
		)
	}
}

// printPresenter stands in for the embedded web checkout: it just prints
// the hand-off URL.
type printPresenter struct{}

func (p *printPresenter) Present(_ context.Context, url string) {
	fmt.Println(url)
}

// initLogger creates a structured logger configured for the environment.
// Production uses JSON format for GCP Cloud Logging compatibility.
// Development uses text format for readability.
func initLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	if os.Getenv("ENVIRONMENT") == "production" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
