// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends selectable with POSTPILOT_STORE.
const (
	StoreSQLite = "sqlite"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr      string
	Store           string
	DBPath          string
	UsersFile       string
	RedisURL        string
	RedisPrefix     string
	UpstreamTimeout time.Duration
	GuestID         string

	OTLPEndpoint string
	OTLPInsecure bool

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	RazorpayKeyID     string
	RazorpayKeySecret string
	RazorpayCurrency  string
	RazorpayBaseURL   string
}

// HasGeminiKey returns true when a Gemini API key is configured. Without one
// the server still starts; generation requests fail with a provider error.
func (c *Config) HasGeminiKey() bool {
	return c.GeminiAPIKey != ""
}

// HasPaymentCredentials returns true when both Razorpay keys are set.
func (c *Config) HasPaymentCredentials() bool {
	return c.RazorpayKeyID != "" && c.RazorpayKeySecret != ""
}

// LoadEnvFile loads variables from path (POSTPILOT_ENV_FILE, else ".env")
// without overriding anything already set. A missing file is not an error.
// Returns the path that was loaded, or "" when none was.
func LoadEnvFile() (string, error) {
	path := ".env"
	if v, ok := os.LookupEnv("POSTPILOT_ENV_FILE"); ok && v != "" {
		path = v
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("load env file %s: %w", path, err)
	}
	return path, nil
}

// Load reads configuration from environment variables and returns a validated
// Config. Every variable is optional:
// POSTPILOT_LISTEN_ADDR (":"+PORT, else ":10000"), POSTPILOT_STORE (sqlite),
// POSTPILOT_DB_PATH (postpilot.db), POSTPILOT_USERS_FILE (users.json),
// POSTPILOT_REDIS_URL (redis://localhost:6379/0), POSTPILOT_REDIS_PREFIX (postpilot),
// POSTPILOT_UPSTREAM_TIMEOUT (30s), POSTPILOT_GUEST_ID (guest),
// POSTPILOT_OTLP_ENDPOINT (host:port, export off when empty), POSTPILOT_OTLP_INSECURE (false),
// GEMINI_API_KEY, GEMINI_MODEL (gemini-2.5-flash), GEMINI_BASE_URL,
// RAZORPAY_KEY_ID, RAZORPAY_KEY_SECRET, RAZORPAY_CURRENCY (INR), RAZORPAY_BASE_URL.
func Load() (*Config, error) {
	listenAddr := ":10000"
	if v, ok := os.LookupEnv("PORT"); ok && v != "" {
		listenAddr = ":" + v
	}
	if v, ok := os.LookupEnv("POSTPILOT_LISTEN_ADDR"); ok && v != "" {
		listenAddr = v
	}

	store := lookupDefault("POSTPILOT_STORE", StoreSQLite)
	switch store {
	case StoreSQLite, StoreFile, StoreRedis:
	default:
		return nil, fmt.Errorf("POSTPILOT_STORE must be one of sqlite, file, redis; got %q", store)
	}

	upstreamTimeout := 30 * time.Second
	if v, ok := os.LookupEnv("POSTPILOT_UPSTREAM_TIMEOUT"); ok && v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("POSTPILOT_UPSTREAM_TIMEOUT has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("POSTPILOT_UPSTREAM_TIMEOUT must be positive, got %s", parsed)
		}
		upstreamTimeout = parsed
	}

	otlpInsecure := false
	if v, ok := os.LookupEnv("POSTPILOT_OTLP_INSECURE"); ok && v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("POSTPILOT_OTLP_INSECURE must be a boolean, got %q: %w", v, err)
		}
		otlpInsecure = parsed
	}

	currency := strings.ToUpper(lookupDefault("RAZORPAY_CURRENCY", "INR"))
	if len(currency) != 3 {
		return nil, fmt.Errorf("RAZORPAY_CURRENCY must be a 3-letter ISO code, got %q", currency)
	}

	return &Config{
		ListenAddr:      listenAddr,
		Store:           store,
		DBPath:          lookupDefault("POSTPILOT_DB_PATH", "postpilot.db"),
		UsersFile:       lookupDefault("POSTPILOT_USERS_FILE", "users.json"),
		RedisURL:        lookupDefault("POSTPILOT_REDIS_URL", "redis://localhost:6379/0"),
		RedisPrefix:     lookupDefault("POSTPILOT_REDIS_PREFIX", "postpilot"),
		UpstreamTimeout: upstreamTimeout,
		GuestID:         strings.TrimSpace(lookupDefault("POSTPILOT_GUEST_ID", "guest")),

		OTLPEndpoint: os.Getenv("POSTPILOT_OTLP_ENDPOINT"),
		OTLPInsecure: otlpInsecure,

		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   lookupDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL: os.Getenv("GEMINI_BASE_URL"),

		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		RazorpayCurrency:  currency,
		RazorpayBaseURL:   os.Getenv("RAZORPAY_BASE_URL"),
	}, nil
}

func lookupDefault(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
