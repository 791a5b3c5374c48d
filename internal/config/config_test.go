package config

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

func setDevEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("MERCHANT_ID", "test-merchant")
	t.Setenv("MERCHANT_STORE_URL", "https://shop.example.com")
	t.Setenv("MERCHANT_ACCESS_TOKEN", "shpat_test123")
	t.Setenv("WALLET_MERCHANT_ID", "merchant.example.shop")
	t.Setenv("WALLET_COUNTRY_CODE", "US")
	t.Setenv("WALLET_SUPPORTED_NETWORKS", "visa, mastercard")
	t.Setenv("WALLET_CONTACT_FIELDS", "email,postalAddress")
	t.Setenv("LOG_LEVEL", "debug")
}

func TestLoadFromEnv(t *testing.T) {
	setDevEnv(t)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
	if cfg.MerchantID != "test-merchant" {
		t.Errorf("MerchantID = %s, want test-merchant", cfg.MerchantID)
	}
	if cfg.Merchant.StoreURL != "https://shop.example.com" {
		t.Errorf("StoreURL = %s", cfg.Merchant.StoreURL)
	}
	if cfg.Merchant.AccessToken != "shpat_test123" {
		t.Errorf("AccessToken = %s", cfg.Merchant.AccessToken)
	}
	if len(cfg.Wallet.SupportedNetworks) != 2 || cfg.Wallet.SupportedNetworks[1] != "mastercard" {
		t.Errorf("SupportedNetworks = %v, want [visa mastercard]", cfg.Wallet.SupportedNetworks)
	}
	if len(cfg.Wallet.RequiredContactFields) != 2 {
		t.Errorf("RequiredContactFields = %v, want 2 entries", cfg.Wallet.RequiredContactFields)
	}
}

func TestLoadMissingMerchantID(t *testing.T) {
	setDevEnv(t)
	os.Unsetenv("MERCHANT_ID")

	if _, err := Load(context.Background()); err == nil {
		t.Error("expected error for missing MERCHANT_ID")
	}
}

func TestLoadMissingRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		unset   string
		wantErr string
	}{
		{"missing store_url", "MERCHANT_STORE_URL", "StoreURL"},
		{"missing access_token", "MERCHANT_ACCESS_TOKEN", "AccessToken"},
		{"missing wallet merchant id", "WALLET_MERCHANT_ID", "MerchantID"},
		{"missing country code", "WALLET_COUNTRY_CODE", "CountryCode"},
		{"missing networks", "WALLET_SUPPORTED_NETWORKS", "SupportedNetworks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setDevEnv(t)
			os.Unsetenv(tt.unset)

			_, err := Load(context.Background())
			if err == nil {
				t.Fatalf("expected error naming %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"malformed store url", "MERCHANT_STORE_URL", "not a url"},
		{"bad country code", "WALLET_COUNTRY_CODE", "USA"},
		{"unknown contact field", "WALLET_CONTACT_FIELDS", "email,faxNumber"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setDevEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(context.Background()); err == nil {
				t.Errorf("expected validation error for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	content := `{
		"environment": "test",
		"log_level": "debug",
		"merchant_id": "file-merchant",
		"merchant": {
			"store_url": "https://file-shop.com",
			"access_token": "shpat_file",
			"timeout_seconds": 15
		},
		"wallet": {
			"merchant_id": "merchant.file.shop",
			"country_code": "GB",
			"supported_networks": ["visa"]
		},
		"cleanup": {
			"base_delay_ms": 250,
			"max_attempts": 5
		}
	}`

	tmpFile, err := os.CreateTemp(t.TempDir(), "config-*.json")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	tmpFile.Close()

	t.Setenv("CONFIG_FILE", tmpFile.Name())

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.MerchantID != "file-merchant" {
		t.Errorf("MerchantID = %s, want file-merchant", cfg.MerchantID)
	}
	if cfg.Merchant.TimeoutSeconds != 15 {
		t.Errorf("TimeoutSeconds = %d, want 15", cfg.Merchant.TimeoutSeconds)
	}
	if cfg.Wallet.CountryCode != "GB" {
		t.Errorf("CountryCode = %s, want GB", cfg.Wallet.CountryCode)
	}
	if cfg.Cleanup.MaxAttempts != 5 {
		t.Errorf("Cleanup.MaxAttempts = %d, want 5", cfg.Cleanup.MaxAttempts)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	t.Run("file not found", func(t *testing.T) {
		t.Setenv("CONFIG_FILE", "/nonexistent/config.json")
		if _, err := Load(context.Background()); err == nil {
			t.Error("expected error for nonexistent file")
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		tmpFile, _ := os.CreateTemp(t.TempDir(), "config-*.json")
		tmpFile.WriteString("{invalid json")
		tmpFile.Close()

		t.Setenv("CONFIG_FILE", tmpFile.Name())
		if _, err := Load(context.Background()); err == nil {
			t.Error("expected error for invalid JSON")
		}
	})

	t.Run("missing merchant_id", func(t *testing.T) {
		tmpFile, _ := os.CreateTemp(t.TempDir(), "config-*.json")
		tmpFile.WriteString(`{"merchant": {"store_url": "https://x.com", "access_token": "t"}}`)
		tmpFile.Close()

		t.Setenv("CONFIG_FILE", tmpFile.Name())
		_, err := Load(context.Background())
		if err == nil || !strings.Contains(err.Error(), "merchant_id is required") {
			t.Errorf("expected merchant_id error, got: %v", err)
		}
	})
}

func TestBuildClientConfig(t *testing.T) {
	cfg := &Config{
		Merchant: MerchantConfig{
			StoreURL:       "https://shop.example.com/",
			AccessToken:    "shpat_x",
			APIVersion:     "2026-07",
			TimeoutSeconds: 10,
		},
	}

	cc := cfg.BuildClientConfig()
	if cc.StoreURL != "https://shop.example.com" {
		t.Errorf("StoreURL = %s, want trailing slash removed", cc.StoreURL)
	}
	if cc.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cc.Timeout)
	}
	if cc.APIVersion != "2026-07" {
		t.Errorf("APIVersion = %s, want 2026-07", cc.APIVersion)
	}
}

func TestBuildClientConfig_DefaultsAPIVersion(t *testing.T) {
	cfg := &Config{
		Merchant: MerchantConfig{
			StoreURL:    "https://shop.example.com",
			AccessToken: "shpat_x",
		},
	}

	if cc := cfg.BuildClientConfig(); cc.APIVersion != defaultAPIVersion {
		t.Errorf("APIVersion = %q, want default %q", cc.APIVersion, defaultAPIVersion)
	}
}

func TestBuildSheetConfig(t *testing.T) {
	cfg := &Config{
		Wallet: WalletConfig{
			MerchantID:            "merchant.example.shop",
			CountryCode:           "US",
			SupportedNetworks:     []string{"visa"},
			RequiredContactFields: []string{"email", "postalAddress"},
		},
	}

	sc := cfg.BuildSheetConfig()
	if sc.MerchantID != "merchant.example.shop" {
		t.Errorf("MerchantID = %s", sc.MerchantID)
	}
	if len(sc.RequiredContactFields) != 2 || string(sc.RequiredContactFields[1]) != "postalAddress" {
		t.Errorf("RequiredContactFields = %v", sc.RequiredContactFields)
	}
}

func TestBuildCleanupConfig(t *testing.T) {
	cfg := &Config{
		Cleanup: CleanupConfig{BaseDelayMS: 250, MaxDelayMS: 5000, MaxAttempts: 4},
	}

	cc := cfg.BuildCleanupConfig()
	if cc.BaseDelay != 250*time.Millisecond {
		t.Errorf("BaseDelay = %v, want 250ms", cc.BaseDelay)
	}
	if cc.MaxDelay != 5*time.Second {
		t.Errorf("MaxDelay = %v, want 5s", cc.MaxDelay)
	}
	if cc.MaxAttempts != 4 {
		t.Errorf("MaxAttempts = %d, want 4", cc.MaxAttempts)
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"visa", 1},
		{"visa,mastercard", 2},
		{" visa , mastercard , ", 2},
	}

	for _, tt := range tests {
		if got := splitList(tt.in); len(got) != tt.want {
			t.Errorf("splitList(%q) = %v, want %d entries", tt.in, got, tt.want)
		}
	}
}
