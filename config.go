package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	aws_pkg "github.com/Saroj9823Dangol/event-management-sub001/pkg/aws"

	"github.com/joho/godotenv"
)

const apiCredentialsSecret = "booking/API_CREDENTIALS"

// Config holds all configuration for the booking service.
type Config struct {
	Port           string
	Env            string
	APIGatewayURL  string
	RequestTimeout time.Duration
	APIToken       string

	RedisURL   string
	ReceiptTTL time.Duration
	SessionTTL time.Duration

	BookingURLBase string
	CORSOrigins    []string

	// events: sns, kafka or none
	EventsBackend       string
	BookingSNSTopicARN  string
	KafkaBrokers        []string
	KafkaTopic          string
	CloudWatchEnabled   bool
	CloudWatchNamespace string
	PromoRatePerMinute  int
	UseSecretsManager   bool
}

// LoadConfig reads configuration from the environment (and an optional .env
// file) with an optional Secrets Manager override for the API token.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", "8091"),
		Env:                 getEnv("APP_ENV", "development"),
		APIGatewayURL:       os.Getenv("API_GATEWAY_URL"),
		APIToken:            os.Getenv("API_TOKEN"),
		RedisURL:            os.Getenv("REDIS_URL"),
		BookingURLBase:      os.Getenv("BOOKING_URL_BASE"),
		CORSOrigins:         splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		EventsBackend:       strings.ToLower(getEnv("EVENTS_BACKEND", "none")),
		BookingSNSTopicARN:  os.Getenv("BOOKING_SNS_TOPIC_ARN"),
		KafkaBrokers:        splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:          getEnv("KAFKA_TOPIC", "booking-events"),
		CloudWatchEnabled:   os.Getenv("CLOUDWATCH_ENABLED") == "true",
		CloudWatchNamespace: getEnv("CLOUDWATCH_NAMESPACE", "EventManagement"),
		UseSecretsManager:   os.Getenv("AWS_USE_SECRETS") == "true",
	}

	var err error
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.ReceiptTTL, err = getDuration("RECEIPT_TTL", 720*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.PromoRatePerMinute, err = strconv.Atoi(getEnv("PROMO_RATE_PER_MINUTE", "10")); err != nil || cfg.PromoRatePerMinute <= 0 {
		return nil, fmt.Errorf("PROMO_RATE_PER_MINUTE must be a positive integer")
	}

	if cfg.APIGatewayURL == "" {
		return nil, fmt.Errorf("API_GATEWAY_URL is required")
	}
	switch cfg.EventsBackend {
	case "none":
	case "sns":
		if cfg.BookingSNSTopicARN == "" {
			return nil, fmt.Errorf("BOOKING_SNS_TOPIC_ARN is required when EVENTS_BACKEND=sns")
		}
	case "kafka":
		if len(cfg.KafkaBrokers) == 0 || cfg.KafkaTopic == "" {
			return nil, fmt.Errorf("KAFKA_BROKERS and KAFKA_TOPIC are required when EVENTS_BACKEND=kafka")
		}
	default:
		return nil, fmt.Errorf("unknown EVENTS_BACKEND %q", cfg.EventsBackend)
	}
	return cfg, nil
}

// SecretReader reads a JSON secret as a flat map.
type SecretReader interface {
	GetSecretMap(ctx context.Context, name string) (map[string]string, error)
}

// ApplySecrets overrides credentials with values from Secrets Manager.
func (c *Config) ApplySecrets(ctx context.Context, secrets SecretReader) error {
	m, err := secrets.GetSecretMap(ctx, apiCredentialsSecret)
	if err != nil {
		return err
	}
	if v, ok := m["API_TOKEN"]; ok && v != "" {
		c.APIToken = v
	}
	if v, ok := m["REDIS_URL"]; ok && v != "" {
		c.RedisURL = v
	}
	return nil
}

// loadSecrets applies the Secrets Manager override when AWS_USE_SECRETS=true.
func loadSecrets(ctx context.Context, cfg *Config) error {
	if !cfg.UseSecretsManager {
		return nil
	}
	awsCfg, err := aws_pkg.LoadAWSConfig(ctx)
	if err != nil {
		return err
	}
	return cfg.ApplySecrets(ctx, aws_pkg.NewSecretsClient(awsCfg))
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
