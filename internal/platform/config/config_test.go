package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ADDR", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("RUN_SEED", "")

	cfg := Load()
	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.Addr)
	}
	if cfg.TokenTTL != 8*time.Hour {
		t.Fatalf("unexpected ttl %v", cfg.TokenTTL)
	}
	if !cfg.RunSeed {
		t.Fatal("expected seed enabled by default")
	}
}

func TestLoadOverridesAndBadValues(t *testing.T) {
	t.Setenv("APP_ADDR", ":9090")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("ACCESS_POLICY_FILE", "/etc/staffhub/policy.yaml")

	cfg := Load()
	if cfg.Addr != ":9090" || cfg.TokenTTL != 30*time.Minute {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.RateLimitPerMinute != 60 {
		t.Fatalf("expected fallback rate limit, got %d", cfg.RateLimitPerMinute)
	}
	if cfg.MetricsEnabled {
		t.Fatal("expected metrics disabled")
	}
	if cfg.AccessPolicyFile != "/etc/staffhub/policy.yaml" {
		t.Fatalf("unexpected policy file %q", cfg.AccessPolicyFile)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		DatabaseURL:        "postgres://localhost/staffhub",
		JWTSecret:          "dev-secret",
		TokenTTL:           time.Hour,
		MaxBodyBytes:       4096,
		RateLimitPerMinute: 10,
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected valid development config, got %v", err)
	}

	cases := map[string]func(c *Config){
		"missing database": func(c *Config) { c.DatabaseURL = "" },
		"missing secret":   func(c *Config) { c.JWTSecret = "" },
		"prod no secret":   func(c *Config) { c.Environment = "production" },
		"prod weak secret": func(c *Config) { c.Environment = "production"; c.JWTSecret = "short" },
		"zero ttl":         func(c *Config) { c.TokenTTL = 0 },
		"tiny body":        func(c *Config) { c.MaxBodyBytes = 10 },
		"zero rate":        func(c *Config) { c.RateLimitPerMinute = 0 },
		"prod weak seed": func(c *Config) {
			c.Environment = "production"
			c.JWTSecret = "0123456789abcdef0123456789abcdef"
			c.RunSeed = true
			c.SeedAdminEmail = "root@example.com"
			c.SeedAdminPassword = "short"
		},
	}
	for name, mutate := range cases {
		cfg := base
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}
