package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	unsetEnvWithCleanup(t, "SERVER_PORT")
	unsetEnvWithCleanup(t, "MERCHANT_RATE_LIMIT_PER_MINUTE")
	unsetEnvWithCleanup(t, "CHASE_API_URL")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.ServerPort)
	}
	if cfg.MerchantRateLimitPerMinute != 0 {
		t.Fatalf("expected rate limiting disabled by default, got %d", cfg.MerchantRateLimitPerMinute)
	}
	if cfg.OutcomeEventExchange != "clearinghouse.events" {
		t.Fatalf("unexpected default exchange %q", cfg.OutcomeEventExchange)
	}
	if cfg.ChaseAPIURL == "" || cfg.CitibankAPIURL == "" {
		t.Fatal("expected provider endpoint defaults to be set")
	}
	if cfg.ClearinghouseAcctNum == "" || cfg.ClearinghouseToken == "" {
		t.Fatal("expected clearinghouse identity defaults to be set")
	}
}

func TestLoadConfig_EnvOverridesEndpoints(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setEnvWithCleanup(t, "CHASE_API_URL", "https://chase.internal.test")
	setEnvWithCleanup(t, "CITIBANK_API_URL", "https://citibank.internal.test")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ChaseAPIURL != "https://chase.internal.test" {
		t.Fatalf("expected overridden chase endpoint, got %q", cfg.ChaseAPIURL)
	}
	if cfg.CitibankAPIURL != "https://citibank.internal.test" {
		t.Fatalf("expected overridden citibank endpoint, got %q", cfg.CitibankAPIURL)
	}
}

func TestLoadConfig_NegativeRateLimitIsDisabled(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setEnvWithCleanup(t, "MERCHANT_RATE_LIMIT_PER_MINUTE", "-5")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.MerchantRateLimitPerMinute != 0 {
		t.Fatalf("expected negative limit coerced to zero, got %d", cfg.MerchantRateLimitPerMinute)
	}
}

func setEnvWithCleanup(t *testing.T, key string, value string) {
	t.Helper()
	prev, hadPrev := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
	t.Cleanup(func() {
		if hadPrev {
			os.Setenv(key, prev)
		} else {
			os.Unsetenv(key)
		}
	})
}

func unsetEnvWithCleanup(t *testing.T, key string) {
	t.Helper()
	prev, hadPrev := os.LookupEnv(key)
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("failed to unset %s: %v", key, err)
	}
	t.Cleanup(func() {
		if hadPrev {
			os.Setenv(key, prev)
		}
	})
}
