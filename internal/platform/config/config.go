package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration sourced from the environment.
type Server struct {
	Addr        string
	DatabaseURL string

	// JWTSigningKey is the single source of truth for signing and verifying
	// session tokens. The server refuses to start without it.
	JWTSigningKey string
	TokenTTL      time.Duration

	Processor ProcessorConfig
	Redis     RedisConfig
	Kafka     KafkaConfig

	CORSAllowedOrigins []string
}

// ProcessorConfig configures the payment processor API client.
type ProcessorConfig struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
}

// RedisConfig configures the optional Redis connection used for webhook
// delivery dedup. Empty URL means Redis is not configured.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the optional audit event sink. Empty Brokers means
// Kafka publishing is disabled.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	addr := os.Getenv("COURSEGATE_ADDR")
	if addr == "" {
		addr = ":5000"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		return Server{}, fmt.Errorf("JWT_SIGNING_KEY is required")
	}

	tokenTTL := time.Hour
	if raw := os.Getenv("TOKEN_TTL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return Server{}, fmt.Errorf("parse TOKEN_TTL: %w", err)
		}
		tokenTTL = parsed
	}

	processorTimeout := 10 * time.Second
	if raw := os.Getenv("PROCESSOR_TIMEOUT"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return Server{}, fmt.Errorf("parse PROCESSOR_TIMEOUT: %w", err)
		}
		processorTimeout = parsed
	}

	return Server{
		Addr:          addr,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSigningKey: jwtSigningKey,
		TokenTTL:      tokenTTL,
		Processor: ProcessorConfig{
			BaseURL:     os.Getenv("PROCESSOR_BASE_URL"),
			AccessToken: os.Getenv("PROCESSOR_ACCESS_TOKEN"),
			Timeout:     processorTimeout,
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:    envList("KAFKA_BROKERS"),
			AuditTopic: envDefault("KAFKA_AUDIT_TOPIC", "coursegate.audit"),
		},
		CORSAllowedOrigins: envListDefault("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}, nil
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func envList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func envListDefault(key string, fallback []string) []string {
	if list := envList(key); list != nil {
		return list
	}
	return fallback
}
