// Package config loads and validates all environment variables at startup.
// Every other package receives typed values — nothing reads os.Getenv directly.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Delivery modes. Selected once at startup; both workflows honour it.
const (
	ModeLink       = "link"       // email contains a download-link button
	ModeAttachment = "attachment" // email carries the PDF as an attachment
)

// Payment providers.
const (
	ProviderToss   = "toss"
	ProviderStripe = "stripe"
)

// Config is the fully-parsed application configuration.
type Config struct {
	// ── Server ────────────────────────────────────────────────────────────────
	Port string // default "8080"
	Env  string // "development" | "staging" | "production"

	// ── Payment gateway ───────────────────────────────────────────────────────
	PaymentProvider string // "toss" | "stripe"
	TossSecretKey   string // basic-auth user for the Toss confirm endpoint
	StripeSecretKey string
	GatewayTimeout  time.Duration // per-call HTTP timeout, default 15s

	// ── Email (Resend) ────────────────────────────────────────────────────────
	// When ResendAPIKey is empty the server runs with a log-only sender —
	// useful in development, never intended for production.
	ResendAPIKey  string
	EmailFromAddr string // e.g. "guide@claudeguide.kr"
	EmailFromName string // e.g. "Claude 완벽 가이드"

	// ── Guide delivery ────────────────────────────────────────────────────────
	DeliveryMode    string // "link" | "attachment"
	PDFDownloadLink string // required in link mode
	PDFPath         string // required in attachment mode
	GuidePrice      int64  // KRW, shown in direct-delivery emails
}

// Load reads all environment variables and returns a validated Config.
// It automatically loads a .env file from the working directory when present,
// so plain `go run ./cmd/api` works in development without any wrapper.
// Real environment variables always take precedence over .env values.
func Load() (*Config, error) {
	loadDotEnv(".env")

	c := &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("ENV", "development"),
		PaymentProvider: getEnv("PAYMENT_PROVIDER", ProviderToss),
		TossSecretKey:   os.Getenv("TOSS_SECRET_KEY"),
		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		GatewayTimeout:  getEnvAsDuration("GATEWAY_TIMEOUT", 15*time.Second),
		ResendAPIKey:    os.Getenv("RESEND_API_KEY"),
		EmailFromAddr:   getEnv("EMAIL_FROM_ADDR", "guide@claudeguide.kr"),
		EmailFromName:   getEnv("EMAIL_FROM_NAME", "Claude 완벽 가이드"),
		DeliveryMode:    getEnv("DELIVERY_MODE", ModeLink),
		PDFDownloadLink: os.Getenv("PDF_DOWNLOAD_LINK"),
		PDFPath:         getEnv("PDF_PATH", "assets/guide.pdf"),
		GuidePrice:      getEnvAsInt64("GUIDE_PRICE", 5000),
	}

	return c, c.validate()
}

func (c *Config) validate() error {
	var errs []error

	switch c.PaymentProvider {
	case ProviderToss:
		if c.TossSecretKey == "" {
			errs = append(errs, fmt.Errorf("missing required env var: TOSS_SECRET_KEY"))
		}
	case ProviderStripe:
		if c.StripeSecretKey == "" {
			errs = append(errs, fmt.Errorf("missing required env var: STRIPE_SECRET_KEY"))
		}
	default:
		errs = append(errs, fmt.Errorf("PAYMENT_PROVIDER must be %q or %q, got %q",
			ProviderToss, ProviderStripe, c.PaymentProvider))
	}

	switch c.DeliveryMode {
	case ModeLink:
		if c.PDFDownloadLink == "" {
			errs = append(errs, fmt.Errorf("DELIVERY_MODE=link requires PDF_DOWNLOAD_LINK"))
		}
	case ModeAttachment:
		if c.PDFPath == "" {
			errs = append(errs, fmt.Errorf("DELIVERY_MODE=attachment requires PDF_PATH"))
		}
	default:
		errs = append(errs, fmt.Errorf("DELIVERY_MODE must be %q or %q, got %q",
			ModeLink, ModeAttachment, c.DeliveryMode))
	}

	if c.GuidePrice <= 0 {
		errs = append(errs, fmt.Errorf("GUIDE_PRICE must be positive, got %d", c.GuidePrice))
	}

	if c.Env == "production" && c.ResendAPIKey == "" {
		errs = append(errs, fmt.Errorf("missing required env var: RESEND_API_KEY"))
	}

	return errors.Join(errs...)
}

// ─── DOT-ENV LOADER ──────────────────────────────────────────────────────────

// loadDotEnv reads key=value pairs from path and sets them in the environment,
// but only for keys that are not already set. This means real env vars (e.g.
// from Docker / Railway / your shell) always win over the file.
// Missing file, blank lines, and #-comments are all silently ignored.
func loadDotEnv(path string) {
	f, err := os.Open(path)
	if err != nil {
		return // file absent — that's fine
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		// Strip optional surrounding quotes: KEY="value" or KEY='value'
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}
		// Only set if the key isn't already present in the environment.
		if os.Getenv(key) == "" {
			_ = os.Setenv(key, value)
		}
	}
}

// ─── HELPERS ─────────────────────────────────────────────────────────────────

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, err := strconv.ParseInt(os.Getenv(key), 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	// A plain integer is treated as seconds.
	if value, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(value) * time.Second
	}
	// Fall back to Go duration syntax: "30s", "5m", "1h", etc.
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	return defaultValue
}
