package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type ServerConfig struct {
	Port string
}

// BackendConfig points at the store REST API this service aggregates.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type KafkaConfig struct {
	Brokers []string
	GroupID string
	Topics  []string
}

type SecurityConfig struct {
	JWTSecret    string
	JWTPublicKey string
}

// SyncConfig tunes the websocket fan-out layer.
type SyncConfig struct {
	SendBuffer int
	CacheSize  int
	CacheTTL   time.Duration
}

type LoggingConfig struct {
	Level     string
	Format    string
	Directory string
}

type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Kafka    KafkaConfig
	Security SecurityConfig
	Sync     SyncConfig
	Logging  LoggingConfig
}

// Load reads configuration from the environment. Only the backend base URL
// is mandatory; everything else has a workable default.
func Load() (*Config, error) {
	baseURL := strings.TrimSpace(os.Getenv("BACKEND_BASE_URL"))
	if baseURL == "" {
		return nil, fmt.Errorf("BACKEND_BASE_URL is required")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: envString("PORT", "8080"),
		},
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(baseURL, "/"),
			Timeout: envDuration("BACKEND_TIMEOUT", 10*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: envList("KAFKA_BROKERS", envList("KAFKA_BROKER", nil)),
			GroupID: envString("KAFKA_GROUP_ID", "store-admin-ws"),
			Topics:  envList("KAFKA_TOPICS", []string{"store.users", "store.products", "store.orders"}),
		},
		Security: SecurityConfig{
			JWTSecret:    os.Getenv("JWT_SECRET"),
			JWTPublicKey: os.Getenv("JWT_PUBLIC_KEY"),
		},
		Sync: SyncConfig{
			SendBuffer: envInt("WS_SEND_BUFFER", 16),
			CacheSize:  envInt("LOOKUP_CACHE_SIZE", 512),
			CacheTTL:   envDuration("LOOKUP_CACHE_TTL", 30*time.Second),
		},
		Logging: LoggingConfig{
			Level:     envString("LOG_LEVEL", "info"),
			Format:    envString("LOG_FORMAT", "text"),
			Directory: envString("LOG_DIR", "./logs"),
		},
	}

	if cfg.Security.JWTSecret == "" && cfg.Security.JWTPublicKey == "" {
		return nil, fmt.Errorf("JWT_SECRET or JWT_PUBLIC_KEY is required")
	}
	return cfg, nil
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
