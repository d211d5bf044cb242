package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	AnalysisTimeout    time.Duration
	MaxRequestBodySize int64

	// Analysis
	Workers               int
	DefaultScale          float64
	MinLandmarkVisibility float64

	// Landmark provider
	LandmarkProvider        string
	LandmarkProviderURL     string
	LandmarkHealthURL       string // defaults to /health on the provider host
	LandmarkProviderTimeout time.Duration
	LandmarkSerialize       bool

	// Hosts image_url may point at; empty allows any public host.
	// Entries starting with "." match a domain and its subdomains.
	ImageURLAllowedHosts []string

	// Azure Blob Storage, optional
	AzureAccountName string
	AzureAccountKey  string

	// Rate limiting per client IP
	RateLimitRPS   float64
	RateLimitBurst int

	LogLevel  string
	LogFormat string
	LogFile   string
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// AzureEnabled reports whether blob storage credentials are configured
func (c *Config) AzureEnabled() bool {
	return c.AzureAccountName != "" && c.AzureAccountKey != ""
}

// LoadFromEnv reads .env (if present) and the process environment
func LoadFromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// Set defaults
	cfg := &Config{
		Host:                    getEnvOrDefault("HOST", "0.0.0.0"),
		Port:                    getEnvOrDefault("PORT", "8000"),
		RequestTimeout:          parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		ImageFetchTimeout:       parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		AnalysisTimeout:         parseDurationOrDefault("ANALYSIS_TIMEOUT", 20*time.Second),
		MaxRequestBodySize:      parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB
		Workers:                 int(parseIntOrDefault("WORKERS", 0)),
		DefaultScale:            parseFloatOrDefault("DEFAULT_SCALE", 0.2),
		MinLandmarkVisibility:   parseFloatOrDefault("MIN_LANDMARK_VISIBILITY", 0),
		LandmarkProvider:        getEnvOrDefault("LANDMARK_PROVIDER", "http"),
		LandmarkProviderURL:     getEnvOrDefault("LANDMARK_PROVIDER_URL", "http://localhost:5000/pose"),
		LandmarkHealthURL:       os.Getenv("LANDMARK_PROVIDER_HEALTH_URL"),
		LandmarkProviderTimeout: parseDurationOrDefault("LANDMARK_PROVIDER_TIMEOUT", 10*time.Second),
		LandmarkSerialize:       parseBoolOrDefault("LANDMARK_SERIALIZE", false),
		ImageURLAllowedHosts:    parseListOrDefault("IMAGE_URL_ALLOWED_HOSTS", nil),
		AzureAccountName:        os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureAccountKey:         os.Getenv("AZURE_STORAGE_KEY"),
		RateLimitRPS:            parseFloatOrDefault("RATE_LIMIT_RPS", 10),
		RateLimitBurst:          int(parseIntOrDefault("RATE_LIMIT_BURST", 20)),
		LogLevel:                getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:               getEnvOrDefault("LOG_FORMAT", "json"),
		LogFile:                 os.Getenv("LOG_FILE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges that would otherwise fail late at request time
func (c *Config) Validate() error {
	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 || c.ImageFetchTimeout <= 0 || c.AnalysisTimeout <= 0 || c.LandmarkProviderTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, analysis=%s, landmark=%s)",
			c.RequestTimeout, c.ImageFetchTimeout, c.AnalysisTimeout, c.LandmarkProviderTimeout)
	}
	if c.DefaultScale <= 0 {
		return fmt.Errorf("DEFAULT_SCALE must be > 0 (got %g)", c.DefaultScale)
	}
	if c.MinLandmarkVisibility < 0 || c.MinLandmarkVisibility > 1 {
		return fmt.Errorf("MIN_LANDMARK_VISIBILITY must be within [0,1] (got %g)", c.MinLandmarkVisibility)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit must be > 0 (got rps=%g, burst=%d)", c.RateLimitRPS, c.RateLimitBurst)
	}
	if c.Workers < 0 {
		return fmt.Errorf("WORKERS must be >= 0 (got %d)", c.Workers)
	}
	if (c.AzureAccountName == "") != (c.AzureAccountKey == "") {
		return errors.New("AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY must be set together")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}
