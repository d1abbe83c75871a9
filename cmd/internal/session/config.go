package session

import (
	"os"
	"strconv"
	"time"
)

// Config defines runtime configuration for session issuance.
//
// It is intentionally explicit and environment-driven so production
// deployments can tune lifetime and entropy without code changes.
type Config struct {
	// TTL is the fixed session lifetime; expires_at = created_at + TTL.
	TTL time.Duration

	// TokenBytes is the number of random bytes behind each opaque token.
	// Tokens are hex-encoded, so the stored length is 2*TokenBytes.
	TokenBytes int
}

// DefaultConfig returns the baseline session configuration: 30-day
// sessions with 256-bit tokens.
func DefaultConfig() Config {
	return Config{
		TTL:        30 * 24 * time.Hour,
		TokenBytes: 32,
	}
}

// LoadConfigFromEnv loads session configuration from environment variables.
//
// Optional:
//   - GATE_SESSION_TTL (Go duration string)
//   - GATE_SESSION_TOKEN_BYTES (32..64)
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("GATE_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.TTL = d
	}

	if v := os.Getenv("GATE_SESSION_TOKEN_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 32 || n > 64 {
			return Config{}, ErrConfig
		}
		cfg.TokenBytes = n
	}

	return cfg, nil
}

// validate is applied by store constructors so a zero-value Config cannot
// silently issue short-lived or low-entropy sessions.
func (c Config) validate() error {
	if c.TTL <= 0 {
		return ErrConfig
	}
	if c.TokenBytes < 32 || c.TokenBytes > 64 {
		return ErrConfig
	}
	return nil
}
