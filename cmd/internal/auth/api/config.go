package authapi

import (
	"net/http"
	"os"
	"strconv"
	"strings"
)

// Config controls auth API behavior and cookie policy.
//
// The session cookie defaults are deliberately strict: HttpOnly always,
// Secure on, SameSite=Lax. Secure can only be relaxed explicitly for
// plain-HTTP development setups.
type Config struct {
	CookieName     string
	CookiePath     string
	CookieDomain   string
	CookieSecure   bool
	CookieSameSite http.SameSite

	// TrustProxy controls whether X-Forwarded-For is believed for the
	// client IP recorded on sessions.
	TrustProxy bool

	MaxBodyBytes int64
}

// DefaultConfig returns production-safe defaults.
func DefaultConfig() Config {
	return Config{
		CookieName:     "session_token",
		CookiePath:     "/",
		CookieSecure:   true,
		CookieSameSite: http.SameSiteLaxMode,
		TrustProxy:     false,
		MaxBodyBytes:   1 << 20, // 1 MiB
	}
}

// LoadConfigFromEnv loads auth API config from environment variables.
//
// Optional:
//   - GATE_AUTH_COOKIE_NAME
//   - GATE_AUTH_COOKIE_PATH
//   - GATE_AUTH_COOKIE_DOMAIN
//   - GATE_AUTH_COOKIE_SECURE (bool)
//   - GATE_AUTH_COOKIE_SAMESITE (lax|strict|none)
//   - GATE_AUTH_TRUST_PROXY (bool)
//   - GATE_AUTH_MAX_BODY_BYTES
func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("GATE_AUTH_COOKIE_NAME")); v != "" {
		cfg.CookieName = v
	}
	if v := strings.TrimSpace(os.Getenv("GATE_AUTH_COOKIE_PATH")); v != "" {
		cfg.CookiePath = v
	}
	if v := strings.TrimSpace(os.Getenv("GATE_AUTH_COOKIE_DOMAIN")); v != "" {
		cfg.CookieDomain = v
	}
	if v := strings.TrimSpace(os.Getenv("GATE_AUTH_COOKIE_SECURE")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.CookieSecure = b
		}
	}
	if v := strings.TrimSpace(os.Getenv("GATE_AUTH_COOKIE_SAMESITE")); v != "" {
		cfg.CookieSameSite = parseSameSite(v)
	}
	if v := strings.TrimSpace(os.Getenv("GATE_AUTH_TRUST_PROXY")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.TrustProxy = b
		}
	}
	if v := strings.TrimSpace(os.Getenv("GATE_AUTH_MAX_BODY_BYTES")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxBodyBytes = n
		}
	}

	return cfg
}

func parseSameSite(v string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
