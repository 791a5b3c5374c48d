// Package config handles loading and validation of checkout configuration.
// Supports both development (env vars) and production (Secret Manager) modes.
package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/go-playground/validator/v10"

	"wallet-checkout/internal/cartapi"
	"wallet-checkout/internal/session"
	"wallet-checkout/internal/sheet"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// defaultAPIVersion pins the calendar-versioned cart API surface when the
// merchant config leaves it unset.
const defaultAPIVersion = "2026-07"

// Config holds everything the checkout core needs at startup.
// Environment determines whether secrets load from env vars (development)
// or Secret Manager (production).
type Config struct {
	Environment string // "development" or "production"
	LogLevel    string // "debug", "info", "warn", "error"

	// GCP settings (required in production)
	GCPProject string
	MerchantID string

	Merchant MerchantConfig `json:"merchant"`
	Wallet   WalletConfig   `json:"wallet"`
	Cleanup  CleanupConfig  `json:"cleanup"`
}

// MerchantConfig holds the cart API credentials for one merchant.
// In production this is loaded from Secret Manager as JSON.
type MerchantConfig struct {
	StoreURL       string `json:"store_url"       validate:"required,url"`
	AccessToken    string `json:"access_token"    validate:"required"`
	APIVersion     string `json:"api_version,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" validate:"omitempty,min=1,max=120"`
}

// WalletConfig holds the payment-sheet settings presented to the wallet.
type WalletConfig struct {
	MerchantID            string   `json:"merchant_id"        validate:"required"`
	CountryCode           string   `json:"country_code"       validate:"required,iso3166_1_alpha2"`
	SupportedNetworks     []string `json:"supported_networks" validate:"required,min=1,dive,required"`
	RequiredContactFields []string `json:"required_contact_fields,omitempty" validate:"dive,oneof=email phone name postalAddress"`
}

// CleanupConfig tunes the personal-data scrub retry schedule.
// Zero values use the session defaults.
type CleanupConfig struct {
	BaseDelayMS int `json:"base_delay_ms,omitempty" validate:"omitempty,min=1"`
	MaxDelayMS  int `json:"max_delay_ms,omitempty"  validate:"omitempty,min=1"`
	MaxAttempts int `json:"max_attempts,omitempty"  validate:"omitempty,min=1,max=10"`
}

// Load reads configuration from file, environment, or Secret Manager.
// Priority: CONFIG_FILE (if set) → ENV vars / Secret Manager.
// Validates all required fields and returns an error if any are missing.
func Load(ctx context.Context) (*Config, error) {
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromFile(configPath)
	}

	cfg := &Config{
		Environment: envOrDefault("ENVIRONMENT", "development"),
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		GCPProject:  os.Getenv("GCP_PROJECT"),
		MerchantID:  os.Getenv("MERCHANT_ID"),
	}

	if cfg.MerchantID == "" {
		return nil, fmt.Errorf("MERCHANT_ID environment variable required")
	}

	var err error
	if cfg.Environment == "production" {
		if cfg.GCPProject == "" {
			return nil, fmt.Errorf("GCP_PROJECT required in production environment")
		}
		err = cfg.loadFromSecretManager(ctx)
	} else {
		err = cfg.loadFromEnv()
	}
	if err != nil {
		return nil, fmt.Errorf("loading merchant config: %w", err)
	}

	if err := cfg.check(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile reads all configuration from a JSON file.
// Used for local development to avoid multiple ENV vars.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var fileConfig struct {
		Environment string         `json:"environment"`
		LogLevel    string         `json:"log_level"`
		MerchantID  string         `json:"merchant_id"`
		Merchant    MerchantConfig `json:"merchant"`
		Wallet      WalletConfig   `json:"wallet"`
		Cleanup     CleanupConfig  `json:"cleanup"`
	}
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg := &Config{
		Environment: withDefault(fileConfig.Environment, "development"),
		LogLevel:    withDefault(fileConfig.LogLevel, "info"),
		MerchantID:  fileConfig.MerchantID,
		Merchant:    fileConfig.Merchant,
		Wallet:      fileConfig.Wallet,
		Cleanup:     fileConfig.Cleanup,
	}
	if cfg.MerchantID == "" {
		return nil, fmt.Errorf("merchant_id is required")
	}

	if err := cfg.check(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromSecretManager fetches merchant config from GCP Secret Manager.
// Secret name format: projects/{project}/secrets/{merchant_id}/versions/latest
func (c *Config) loadFromSecretManager(ctx context.Context) error {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("creating secret manager client: %w", err)
	}
	defer client.Close()

	secretName := fmt.Sprintf("projects/%s/secrets/%s/versions/latest",
		c.GCPProject, c.MerchantID)

	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: secretName,
	})
	if err != nil {
		return fmt.Errorf("accessing secret %s: %w", secretName, err)
	}

	var payload struct {
		Merchant MerchantConfig `json:"merchant"`
		Wallet   WalletConfig   `json:"wallet"`
		Cleanup  CleanupConfig  `json:"cleanup"`
	}
	if err := json.Unmarshal(result.Payload.Data, &payload); err != nil {
		return fmt.Errorf("parsing secret JSON: %w", err)
	}
	c.Merchant = payload.Merchant
	c.Wallet = payload.Wallet
	c.Cleanup = payload.Cleanup
	return nil
}

// loadFromEnv reads merchant and wallet config from individual environment
// variables. Used in development mode for local testing.
func (c *Config) loadFromEnv() error {
	c.Merchant = MerchantConfig{
		StoreURL:    os.Getenv("MERCHANT_STORE_URL"),
		AccessToken: os.Getenv("MERCHANT_ACCESS_TOKEN"),
		APIVersion:  os.Getenv("MERCHANT_API_VERSION"),
	}
	c.Wallet = WalletConfig{
		MerchantID:            os.Getenv("WALLET_MERCHANT_ID"),
		CountryCode:           os.Getenv("WALLET_COUNTRY_CODE"),
		SupportedNetworks:     splitList(os.Getenv("WALLET_SUPPORTED_NETWORKS")),
		RequiredContactFields: splitList(os.Getenv("WALLET_CONTACT_FIELDS")),
	}
	return nil
}

// check validates the assembled configuration via struct tags.
func (c *Config) check() error {
	if err := validate.Struct(c.Merchant); err != nil {
		return fmt.Errorf("merchant config: %w", firstViolation(err))
	}
	if err := validate.Struct(c.Wallet); err != nil {
		return fmt.Errorf("wallet config: %w", firstViolation(err))
	}
	if err := validate.Struct(c.Cleanup); err != nil {
		return fmt.Errorf("cleanup config: %w", firstViolation(err))
	}
	return nil
}

// firstViolation flattens a validator error set to its first entry so
// startup failures read as one actionable message.
func firstViolation(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("field %s failed %q validation", fe.Namespace(), fe.Tag())
	}
	return err
}

// BuildClientConfig creates the cart API client configuration.
func (c *Config) BuildClientConfig() cartapi.Config {
	var timeout time.Duration
	if c.Merchant.TimeoutSeconds > 0 {
		timeout = time.Duration(c.Merchant.TimeoutSeconds) * time.Second
	}
	return cartapi.Config{
		StoreURL:    strings.TrimSuffix(c.Merchant.StoreURL, "/"),
		AccessToken: c.Merchant.AccessToken,
		APIVersion:  withDefault(c.Merchant.APIVersion, defaultAPIVersion),
		Timeout:     timeout,
	}
}

// BuildSheetConfig creates the payment sheet configuration for sessions.
func (c *Config) BuildSheetConfig() sheet.Config {
	fields := make([]sheet.ContactField, 0, len(c.Wallet.RequiredContactFields))
	for _, f := range c.Wallet.RequiredContactFields {
		fields = append(fields, sheet.ContactField(f))
	}
	return sheet.Config{
		MerchantID:            c.Wallet.MerchantID,
		CountryCode:           c.Wallet.CountryCode,
		SupportedNetworks:     c.Wallet.SupportedNetworks,
		RequiredContactFields: fields,
	}
}

// BuildCleanupConfig creates the personal-data scrub retry configuration.
func (c *Config) BuildCleanupConfig() session.CleanupConfig {
	return session.CleanupConfig{
		BaseDelay:   time.Duration(c.Cleanup.BaseDelayMS) * time.Millisecond,
		MaxDelay:    time.Duration(c.Cleanup.MaxDelayMS) * time.Millisecond,
		MaxAttempts: c.Cleanup.MaxAttempts,
	}
}

// splitList parses a comma-separated env value, trimming whitespace.
func splitList(val string) []string {
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// withDefault returns val if non-empty, otherwise defaultVal.
func withDefault(val, defaultVal string) string {
	if val != "" {
		return val
	}
	return defaultVal
}

// envOrDefault returns the environment variable value or the default if not set.
func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
