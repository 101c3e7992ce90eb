package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Typesense  TypesenseConfig
	Enrichment EnrichmentConfig
	Cache      CacheConfig
	Normalizer NormalizerConfig
	OTEL       OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	URL    string
	APIKey string
}

// EnrichmentConfig holds the enrichment collaborator configuration.
// SyncTimeout bounds the initial synchronous attempt; past it the caller
// switches to the asynchronous poll path. MaxPollDuration is the hard
// ceiling for the whole poll loop, after which the job is a timeout
// failure rather than an insufficient-data outcome.
type EnrichmentConfig struct {
	BaseURL         string
	SyncTimeout     time.Duration
	PollInterval    time.Duration
	MaxPollDuration time.Duration
}

// CacheConfig holds cache TTL policy. RecommendationTTL applies to
// freshly fetched recommendations that passed validation; SharedLinkTTL
// applies to entries written for shareable result links. The two
// policies are deliberately separate parameters of each write site.
type CacheConfig struct {
	RecommendationTTL    time.Duration
	SharedLinkTTL        time.Duration
	QueryInterpretTTL    time.Duration
	MemoryTierCapacity   int
	ResponseCacheEnabled bool
}

// NormalizerConfig points at the vocabulary files the query normalizer
// loads at startup.
type NormalizerConfig struct {
	AliasPath    string
	SpellingPath string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "supplement_discovery"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Typesense: TypesenseConfig{
			URL:    getEnv("TYPESENSE_URL", "http://localhost:8108"),
			APIKey: getEnv("TYPESENSE_API_KEY", "xyz"),
		},
		Enrichment: EnrichmentConfig{
			BaseURL:         getEnv("ENRICHMENT_BASE_URL", "http://localhost:9090"),
			SyncTimeout:     getEnvAsDuration("ENRICHMENT_SYNC_TIMEOUT", 30*time.Second),
			PollInterval:    getEnvAsDuration("ENRICHMENT_POLL_INTERVAL", 2*time.Second),
			MaxPollDuration: getEnvAsDuration("ENRICHMENT_MAX_POLL_DURATION", 120*time.Second),
		},
		Cache: CacheConfig{
			RecommendationTTL:    getEnvAsDuration("CACHE_RECOMMENDATION_TTL", 7*24*time.Hour),
			SharedLinkTTL:        getEnvAsDuration("CACHE_SHARED_LINK_TTL", 24*time.Hour),
			QueryInterpretTTL:    getEnvAsDuration("CACHE_QUERY_INTERPRET_TTL", 24*time.Hour),
			MemoryTierCapacity:   getEnvAsInt("CACHE_MEMORY_CAPACITY", 1024),
			ResponseCacheEnabled: getEnvAsBool("CACHE_RESPONSES_ENABLED", true),
		},
		Normalizer: NormalizerConfig{
			AliasPath:    getEnv("NORMALIZER_ALIAS_PATH", "config/supplement_aliases.json"),
			SpellingPath: getEnv("NORMALIZER_SPELLING_PATH", "config/spelling_corrections.json"),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "supplement-discovery"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
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
