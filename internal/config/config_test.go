package config

import (
	"os"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Generation.Seed != 42 {
		t.Errorf("Expected seed 42, got %d", cfg.Generation.Seed)
	}
	if cfg.Generation.CustomerCount != 50000 {
		t.Errorf("Expected customer_count 50000, got %d", cfg.Generation.CustomerCount)
	}
	if cfg.Database.URLEnv != "MERIDIAN_DB_URL" {
		t.Errorf("Expected url_env MERIDIAN_DB_URL, got %s", cfg.Database.URLEnv)
	}
	if cfg.SchemaDir != "db/schema" {
		t.Errorf("Expected schema_dir db/schema, got %s", cfg.SchemaDir)
	}
	if cfg.Generation.GLImbalanceBatch != "BATCH-20241115-ERR" {
		t.Errorf("Expected BATCH-20241115-ERR, got %s", cfg.Generation.GLImbalanceBatch)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate, got %v", err)
	}
}

func TestValidateRejectsBadRatios(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Generation.ArrearsRatio = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for arrears_ratio > 1")
	}

	cfg = DefaultConfig()
	cfg.Generation.PersonalRatio = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for personal ratio 0")
	}

	cfg = DefaultConfig()
	cfg.Generation.CustomerCount = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for zero customer count")
	}
}

func TestValidateRejectsBadDates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Generation.TxnDateStart = "not-a-date"
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for malformed start date")
	}

	cfg = DefaultConfig()
	cfg.Generation.TxnDateStart = "2024-12-31"
	cfg.Generation.TxnDateEnd = "2024-07-01"
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for inverted date window")
	}
}

func TestCustomerSplit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Generation.CustomerCount = 1000
	cfg.Generation.PersonalRatio = 0.85

	if got := cfg.PersonalCustomers(); got != 850 {
		t.Errorf("Expected 850 personal customers, got %d", got)
	}
	if got := cfg.BusinessCustomers(); got != 150 {
		t.Errorf("Expected 150 business customers, got %d", got)
	}
	if cfg.PersonalCustomers()+cfg.BusinessCustomers() != cfg.Generation.CustomerCount {
		t.Error("Personal and business counts should sum to the total")
	}
}

func TestDatabaseURLPrefersEnvironment(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database.URLEnv = "MERIDIAN_TEST_DB_URL"

	os.Setenv("MERIDIAN_TEST_DB_URL", "postgres://env/override")
	defer os.Unsetenv("MERIDIAN_TEST_DB_URL")

	url, err := cfg.DatabaseURL()
	if err != nil {
		t.Fatalf("DatabaseURL returned error: %v", err)
	}
	if url != "postgres://env/override" {
		t.Errorf("Expected the environment URL, got %s", url)
	}
}

func TestDatabaseURLFallsBackToDefault(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database.URLEnv = "MERIDIAN_TEST_DB_URL_UNSET"

	url, err := cfg.DatabaseURL()
	if err != nil {
		t.Fatalf("DatabaseURL returned error: %v", err)
	}
	if url != cfg.Database.DefaultURL {
		t.Errorf("Expected the configured default, got %s", url)
	}

	cfg.Database.DefaultURL = ""
	if _, err := cfg.DatabaseURL(); err == nil {
		t.Error("Expected error with no env var and no default")
	}
}
