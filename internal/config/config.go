package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Environment string
	Debug       bool
	LogLevel    string

	SecretKey []byte

	DBPath string

	SessionTTL     time.Duration
	RequestTimeout time.Duration

	KafkaAddress string

	ServerPort int
}

// Load reads the environment (plus an optional .env file) into a Config.
// It returns an error only for the conditions the process must not run
// without; everything else falls back to a default.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	cfg := &Config{
		Environment:    EnvDefault("ENVIRONMENT", EnvDevelopment),
		Debug:          EnvBoolDefault("DEBUG", false),
		LogLevel:       EnvDefault("LOG_LEVEL", "info"),
		SecretKey:      []byte(os.Getenv("SECRET_KEY")),
		DBPath:         EnvDefault("DB_PATH", "/tmp/boothouse.db"),
		SessionTTL:     EnvDurationDefault("SESSION_TTL", 24*time.Hour),
		RequestTimeout: EnvDurationDefault("REQUEST_TIMEOUT", 10*time.Second),
		KafkaAddress:   os.Getenv("KAFKA_ADDRESS"),
		ServerPort:     EnvIntDefault("SERVER_PORT", 8080),
	}

	if len(cfg.SecretKey) == 0 {
		return nil, fmt.Errorf("missing required env SECRET_KEY")
	}

	// Internal error detail never leaks in production regardless of DEBUG.
	if cfg.Environment == EnvProduction {
		cfg.Debug = false
	}

	return cfg, nil
}

// MustLoad is Load for main funcs: refusing to serve beats running
// without a signing key.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
