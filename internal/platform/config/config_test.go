package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		DatabaseURL:          "postgres://localhost/hrkey",
		MaxBodyBytes:         1048576,
		RateLimitPerMinute:   60,
		DefaultPeriod:        "102025",
		PDIThreshold:         3.0,
		RecognitionThreshold: 4.5,
	}
}

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("MANAGER_LINK_TTL", "")
	cfg := FromEnv()
	if cfg.ManagerLinkTTL != 30*24*time.Hour {
		t.Fatalf("expected 30 day manager link ttl, got %v", cfg.ManagerLinkTTL)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "https://gestor.thehrkey.tech" {
		t.Fatalf("unexpected default origins: %v", cfg.AllowedOrigins)
	}
	if cfg.DefaultSalaryRegion != "R1" || cfg.DefaultSalaryYear != 2025 {
		t.Fatalf("unexpected salary defaults: %s %d", cfg.DefaultSalaryRegion, cfg.DefaultSalaryYear)
	}
}

func TestFromEnvParsesOriginList(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com/, https://b.example.com,,")
	cfg := FromEnv()
	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.AllowedOrigins)
	}
	if cfg.AllowedOrigins[0] != "https://a.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.AllowedOrigins[0])
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing database", mutate: func(c *Config) { c.DatabaseURL = "" }, wantErr: true},
		{name: "bad period", mutate: func(c *Config) { c.DefaultPeriod = "10-2025" }, wantErr: true},
		{name: "inverted thresholds", mutate: func(c *Config) { c.PDIThreshold = 5 }, wantErr: true},
		{name: "tiny body limit", mutate: func(c *Config) { c.MaxBodyBytes = 10 }, wantErr: true},
		{name: "production without secrets", mutate: func(c *Config) { c.Environment = "production" }, wantErr: true},
		{name: "production with secrets", mutate: func(c *Config) {
			c.Environment = "production"
			c.JWTSecret = "s"
			c.ManagerLinkSecret = "m"
		}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}
