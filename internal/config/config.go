package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress  string
	DatabaseURI string
	RedisAddr   string

	KafkaBrokers []string
	KafkaTopic   string

	GatewayBaseURL    string
	GatewayMerchantID string
	GatewayAPIKey     string
	GatewayTimeout    time.Duration

	AdminKeyHash string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	AdminEmail   string

	TelegramBotToken string
	TelegramChatID   string

	TaxRate         float64
	ShutdownTimeout time.Duration
}

const (
	defaultRunAddress      = ":8080"
	defaultKafkaTopic      = "shop.order.events"
	defaultGatewayTimeout  = 15 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultTaxRate         = 0.10
)

// Load parses configuration from .env file, environment variables and flags.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:        getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:       getString(lookup, "DATABASE_URI", ""),
		RedisAddr:         getString(lookup, "REDIS_ADDR", ""),
		KafkaTopic:        getString(lookup, "KAFKA_TOPIC", defaultKafkaTopic),
		GatewayBaseURL:    getString(lookup, "PAYWAY_BASE_URL", ""),
		GatewayMerchantID: getString(lookup, "PAYWAY_MERCHANT_ID", ""),
		GatewayAPIKey:     getString(lookup, "PAYWAY_API_KEY", ""),
		GatewayTimeout:    getDuration(lookup, "PAYWAY_TIMEOUT", defaultGatewayTimeout),
		AdminKeyHash:      getString(lookup, "ADMIN_KEY_HASH", ""),
		SMTPHost:          getString(lookup, "SMTP_HOST", ""),
		SMTPPort:          getInt(lookup, "SMTP_PORT", 465),
		SMTPUser:          getString(lookup, "SMTP_USER", ""),
		SMTPPassword:      getString(lookup, "SMTP_PASSWORD", ""),
		SMTPFrom:          getString(lookup, "SMTP_FROM", ""),
		AdminEmail:        getString(lookup, "ADMIN_EMAIL", ""),
		TelegramBotToken:  getString(lookup, "TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:    getString(lookup, "TELEGRAM_CHAT_ID", ""),
		TaxRate:           getFloat(lookup, "TAX_RATE", defaultTaxRate),
		ShutdownTimeout:   getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	if brokers := getString(lookup, "KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = splitAndTrim(brokers)
	}

	fs := flag.NewFlagSet("shopcore", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		gatewayTimeoutStr  = cfg.GatewayTimeout.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		brokersStr         = strings.Join(cfg.KafkaBrokers, ",")
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address for payment leases")
	fs.StringVar(&brokersStr, "kafka-brokers", brokersStr, "Comma-separated Kafka broker list")
	fs.StringVar(&cfg.KafkaTopic, "kafka-topic", cfg.KafkaTopic, "Kafka topic for order events")
	fs.StringVar(&cfg.GatewayBaseURL, "r", cfg.GatewayBaseURL, "Payment gateway base URL")
	fs.StringVar(&cfg.GatewayMerchantID, "merchant", cfg.GatewayMerchantID, "Payment gateway merchant id")
	fs.StringVar(&gatewayTimeoutStr, "gateway-timeout", gatewayTimeoutStr, "Payment gateway request timeout")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.GatewayTimeout, err = time.ParseDuration(gatewayTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid gateway timeout: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if brokersStr != "" {
		cfg.KafkaBrokers = splitAndTrim(brokersStr)
	}

	if keyFile, ok := lookup("PAYWAY_API_KEY_FILE"); ok && keyFile != "" {
		content, err := os.ReadFile(keyFile)
		if err != nil {
			return nil, fmt.Errorf("read gateway api key file: %w", err)
		}
		cfg.GatewayAPIKey = strings.TrimSpace(string(content))
	}

	if cfg.GatewayTimeout <= 0 {
		cfg.GatewayTimeout = defaultGatewayTimeout
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.TaxRate < 0 {
		cfg.TaxRate = defaultTaxRate
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.GatewayBaseURL == "" {
		return nil, fmt.Errorf("payment gateway base URL must be provided")
	}

	if cfg.GatewayMerchantID == "" || cfg.GatewayAPIKey == "" {
		return nil, fmt.Errorf("payment gateway merchant credentials must be provided")
	}

	return cfg, nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(lookup envLookup, key string, def float64) float64 {
	if v, ok := lookup(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
