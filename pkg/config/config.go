package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	DatabaseURL string
	JWTSecret   string
	Port        string
	Environment string
	LogLevel    string

	// ScoringConfigPath overrides the embedded scoring defaults when set
	ScoringConfigPath string

	// WebhookURL receives urgent opportunity events; empty means log only
	WebhookURL     string
	ScoreThreshold float64

	// Sources is the comma-separated list of marketplaces to scrape
	Sources          string
	ScrapeDelay      time.Duration
	PipelineInterval time.Duration
	MaxConcurrent    int

	// Security configuration
	AllowedOrigins  string
	TrustedProxies  string
	EnableRateLimit bool
	MaxRequestSize  int64
}

// New creates a new configuration instance from environment variables
func New() *Config {
	return &Config{
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		Port:              getEnv("PORT", "8080"),
		Environment:       getEnv("ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		ScoringConfigPath: getEnv("SCORING_CONFIG_PATH", ""),
		WebhookURL:        getEnv("WEBHOOK_URL", ""),
		ScoreThreshold:    getEnvAsFloat("SCORE_THRESHOLD", 70),
		Sources:           getEnv("SOURCES", "microns,acquire"),
		ScrapeDelay:       getEnvAsDuration("SCRAPE_DELAY", 2*time.Second),
		PipelineInterval:  getEnvAsDuration("PIPELINE_INTERVAL", time.Hour),
		MaxConcurrent:     getEnvAsInt("MAX_CONCURRENT", 10),
		AllowedOrigins:    getEnv("ALLOWED_ORIGINS", ""),
		TrustedProxies:    getEnv("TRUSTED_PROXIES", ""),
		EnableRateLimit:   getEnv("ENABLE_RATE_LIMIT", "true") == "true",
		MaxRequestSize:    getEnvAsInt64("MAX_REQUEST_SIZE", 10*1024*1024),
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// GetSources returns the configured source IDs
func (c *Config) GetSources() []string {
	var out []string
	for _, s := range strings.Split(c.Sources, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// GetAllowedOrigins returns a slice of allowed CORS origins
func (c *Config) GetAllowedOrigins() []string {
	if c.AllowedOrigins == "" {
		return []string{}
	}
	return strings.Split(c.AllowedOrigins, ",")
}

// GetTrustedProxies returns a slice of trusted proxy IPs
func (c *Config) GetTrustedProxies() []string {
	if c.TrustedProxies == "" {
		return []string{}
	}
	return strings.Split(c.TrustedProxies, ",")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
