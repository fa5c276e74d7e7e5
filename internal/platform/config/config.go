package config

import (
	"os"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	OracleAdmin   string

	Redis    RedisConfig
	Postgres PostgresConfig
	Kafka    KafkaConfig

	ShutdownTimeout time.Duration
}

// RedisConfig configures the optional invoice read cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig configures the optional durable audit outbox.
type PostgresConfig struct {
	DSN string
}

// KafkaConfig configures the optional audit event sink.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("FINVOICE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	oracleAdmin := os.Getenv("FINVOICE_ORACLE_ADMIN")

	topic := os.Getenv("FINVOICE_KAFKA_TOPIC")
	if topic == "" {
		topic = "finvoice.audit"
	}
	var brokers []string
	if raw := os.Getenv("FINVOICE_KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}

	return Server{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
		OracleAdmin:   oracleAdmin,
		Redis: RedisConfig{
			URL:          os.Getenv("FINVOICE_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Postgres: PostgresConfig{
			DSN: os.Getenv("FINVOICE_POSTGRES_DSN"),
		},
		Kafka: KafkaConfig{
			Brokers: brokers,
			Topic:   topic,
		},
		ShutdownTimeout: 10 * time.Second,
	}
}
