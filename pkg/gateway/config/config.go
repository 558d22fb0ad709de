// Package config loads gateway configuration from the environment.
// Every knob has a DHOZZI_* variable and a default that works for local
// development with an in-memory store.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Addr is the listen address, host:port.
	Addr string

	// GeminiAPIKey authenticates generation and live calls upstream.
	GeminiAPIKey string

	// DatabaseURL is a Postgres DSN. Empty selects the in-memory store.
	DatabaseURL string

	// Stripe checkout wiring. An empty key disables the hosted checkout
	// path; plan activation still works from the KRX balance.
	StripeKey        string
	StripeSuccessURL string
	StripeCancelURL  string

	// CORSAllowedOrigins is the browser origin allowlist. Empty denies
	// cross-origin callers.
	CORSAllowedOrigins map[string]struct{}

	// Per-user request throttling.
	LimitRPS             float64
	LimitBurst           int
	LimitMaxLiveSessions int

	MaxBodyBytes int64

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	HandlerTimeout    time.Duration
	ShutdownGrace     time.Duration

	// Live websocket tuning.
	LiveHandshakeTimeout time.Duration
	LiveWSPingInterval   time.Duration
	LiveWSWriteTimeout   time.Duration
	LiveWSReadTimeout    time.Duration
	LiveMaxFrameBytes    int64
}

func Default() Config {
	return Config{
		Addr:                 ":8080",
		CORSAllowedOrigins:   map[string]struct{}{},
		LimitRPS:             10,
		LimitBurst:           30,
		LimitMaxLiveSessions: 2,
		MaxBodyBytes:         32 << 20,
		ReadHeaderTimeout:    10 * time.Second,
		ReadTimeout:          60 * time.Second,
		HandlerTimeout:       15 * time.Minute,
		ShutdownGrace:        20 * time.Second,
		LiveHandshakeTimeout: 5 * time.Second,
		LiveWSPingInterval:   20 * time.Second,
		LiveWSWriteTimeout:   5 * time.Second,
		LiveWSReadTimeout:    60 * time.Second,
		LiveMaxFrameBytes:    1 << 20,
	}
}

// LoadFromEnv builds a Config from DHOZZI_* variables on top of the
// defaults, validating each as it goes.
func LoadFromEnv() (Config, error) {
	cfg := Default()

	cfg.Addr = envOr("DHOZZI_ADDR", cfg.Addr)
	cfg.GeminiAPIKey = strings.TrimSpace(os.Getenv("DHOZZI_GEMINI_API_KEY"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DHOZZI_DATABASE_URL"))

	cfg.StripeKey = strings.TrimSpace(os.Getenv("DHOZZI_STRIPE_KEY"))
	cfg.StripeSuccessURL = envOr("DHOZZI_STRIPE_SUCCESS_URL", "")
	cfg.StripeCancelURL = envOr("DHOZZI_STRIPE_CANCEL_URL", "")

	for _, origin := range splitCSV(os.Getenv("DHOZZI_CORS_ALLOWED_ORIGINS")) {
		cfg.CORSAllowedOrigins[origin] = struct{}{}
	}

	var err error
	if cfg.LimitRPS, err = envFloat64Or("DHOZZI_LIMIT_RPS", cfg.LimitRPS); err != nil {
		return Config{}, err
	}
	if cfg.LimitBurst, err = envIntOr("DHOZZI_LIMIT_BURST", cfg.LimitBurst); err != nil {
		return Config{}, err
	}
	if cfg.LimitMaxLiveSessions, err = envIntOr("DHOZZI_LIMIT_MAX_LIVE_SESSIONS", cfg.LimitMaxLiveSessions); err != nil {
		return Config{}, err
	}
	if cfg.MaxBodyBytes, err = envInt64Or("DHOZZI_MAX_BODY_BYTES", cfg.MaxBodyBytes); err != nil {
		return Config{}, err
	}
	if cfg.ReadHeaderTimeout, err = envDurationOr("DHOZZI_READ_HEADER_TIMEOUT", cfg.ReadHeaderTimeout); err != nil {
		return Config{}, err
	}
	if cfg.ReadTimeout, err = envDurationOr("DHOZZI_READ_TIMEOUT", cfg.ReadTimeout); err != nil {
		return Config{}, err
	}
	if cfg.HandlerTimeout, err = envDurationOr("DHOZZI_HANDLER_TIMEOUT", cfg.HandlerTimeout); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownGrace, err = envDurationOr("DHOZZI_SHUTDOWN_GRACE", cfg.ShutdownGrace); err != nil {
		return Config{}, err
	}
	if cfg.LiveHandshakeTimeout, err = envDurationOr("DHOZZI_LIVE_HANDSHAKE_TIMEOUT", cfg.LiveHandshakeTimeout); err != nil {
		return Config{}, err
	}
	if cfg.LiveWSPingInterval, err = envDurationOr("DHOZZI_LIVE_WS_PING_INTERVAL", cfg.LiveWSPingInterval); err != nil {
		return Config{}, err
	}
	if cfg.LiveWSWriteTimeout, err = envDurationOr("DHOZZI_LIVE_WS_WRITE_TIMEOUT", cfg.LiveWSWriteTimeout); err != nil {
		return Config{}, err
	}
	if cfg.LiveWSReadTimeout, err = envDurationOr("DHOZZI_LIVE_WS_READ_TIMEOUT", cfg.LiveWSReadTimeout); err != nil {
		return Config{}, err
	}
	if cfg.LiveMaxFrameBytes, err = envInt64Or("DHOZZI_LIVE_MAX_FRAME_BYTES", cfg.LiveMaxFrameBytes); err != nil {
		return Config{}, err
	}

	if cfg.GeminiAPIKey == "" {
		return Config{}, fmt.Errorf("DHOZZI_GEMINI_API_KEY is required")
	}
	if cfg.MaxBodyBytes <= 0 {
		return Config{}, fmt.Errorf("DHOZZI_MAX_BODY_BYTES must be > 0")
	}
	if cfg.LimitRPS < 0 || cfg.LimitBurst < 0 {
		return Config{}, fmt.Errorf("DHOZZI_LIMIT_RPS and DHOZZI_LIMIT_BURST must be >= 0")
	}
	if cfg.ReadHeaderTimeout <= 0 || cfg.ReadTimeout <= 0 || cfg.HandlerTimeout <= 0 {
		return Config{}, fmt.Errorf("timeouts must be > 0")
	}
	if cfg.LiveWSPingInterval <= 0 || cfg.LiveWSWriteTimeout <= 0 || cfg.LiveWSReadTimeout <= 0 {
		return Config{}, fmt.Errorf("live websocket timeouts must be > 0")
	}
	if cfg.LiveMaxFrameBytes <= 0 {
		return Config{}, fmt.Errorf("DHOZZI_LIVE_MAX_FRAME_BYTES must be > 0")
	}

	return cfg, nil
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return def
}

func envIntOr(key string, def int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func envInt64Or(key string, def int64) (int64, error) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func envFloat64Or(key string, def float64) (float64, error) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return f, nil
}

func envDurationOr(key string, def time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 30s or 5m: %w", key, err)
	}
	return d, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
