package session

import (
	"errors"
	"testing"
	"time"
)

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if cfg.TTL != 30*24*time.Hour {
		t.Fatalf("unexpected default TTL: %v", cfg.TTL)
	}
	if cfg.TokenBytes != 32 {
		t.Fatalf("unexpected default token bytes: %d", cfg.TokenBytes)
	}
}

func TestLoadConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("GATE_SESSION_TTL", "168h")
	t.Setenv("GATE_SESSION_TOKEN_BYTES", "48")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if cfg.TTL != 168*time.Hour {
		t.Fatalf("TTL override not applied: %v", cfg.TTL)
	}
	if cfg.TokenBytes != 48 {
		t.Fatalf("token bytes override not applied: %d", cfg.TokenBytes)
	}
}

func TestLoadConfigFromEnv_Invalid(t *testing.T) {
	cases := map[string]string{
		"GATE_SESSION_TTL":         "-1h",
		"GATE_SESSION_TOKEN_BYTES": "16", // below the 256-bit floor
	}

	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := LoadConfigFromEnv(); !errors.Is(err, ErrConfig) {
				t.Fatalf("expected ErrConfig for %s=%q, got %v", key, val, err)
			}
		})
	}
}

func TestNewMemoryStore_RejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	if _, err := NewMemoryStore(Config{}); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for zero config, got %v", err)
	}

	cfg := DefaultConfig()
	cfg.TokenBytes = 8
	if _, err := NewMemoryStore(cfg); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for low entropy, got %v", err)
	}
}
