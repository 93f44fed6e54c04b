// Package config loads service configuration from the environment.
// A .env file is read first when present; production deployments may pull
// the text-generation API key from GCP Secret Manager.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Storage backends understood by the durable and session stores.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// Chat deployment modes.
const (
	ChatModeRelay  = "relay"
	ChatModeDirect = "direct"
)

type Config struct {
	Port        string `envconfig:"APP_PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	JWTSecret   string        `envconfig:"JWT_SECRET" default:"change-me"`
	SessionTTL  time.Duration `envconfig:"SESSION_TTL" default:"12h"`
	SessionIdle time.Duration `envconfig:"SESSION_IDLE" default:"30m"`
	BcryptCost  int           `envconfig:"BCRYPT_COST" default:"10"`
	CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`

	DurableBackend string `envconfig:"DURABLE_BACKEND" default:"memory"`
	SessionBackend string `envconfig:"SESSION_BACKEND" default:"memory"`

	DatabaseURL   string `envconfig:"DATABASE_URL"`
	CatalogFeed   bool   `envconfig:"CATALOG_FEED" default:"false"`
	RedisURL      string `envconfig:"REDIS_URL"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	MongoURI      string `envconfig:"MONGO_URI"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"jerseyx"`

	AMQPURL       string `envconfig:"AMQP_URL"`
	OrderExchange string `envconfig:"ORDER_EXCHANGE" default:"jerseyx.orders"`

	ChatMode         string        `envconfig:"CHAT_MODE" default:"relay"`
	ChatRelayURL     string        `envconfig:"CHAT_RELAY_URL" default:"http://localhost:8080/api/chat"`
	ChatCooldown     time.Duration `envconfig:"CHAT_COOLDOWN" default:"30s"`
	ChatBlock        time.Duration `envconfig:"CHAT_BLOCK" default:"5m"`
	GeminiAPIKey     string        `envconfig:"GEMINI_API_KEY"`
	GeminiModel      string        `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`
	GCPProject       string        `envconfig:"GCP_PROJECT"`
	GeminiSecretName string        `envconfig:"GEMINI_SECRET_NAME" default:"gemini-api-key"`
	RelayRate        float64       `envconfig:"RELAY_RATE" default:"0.5"`
	RelayBurst       int           `envconfig:"RELAY_BURST" default:"3"`

	UPIPayeeVPA  string  `envconfig:"UPI_PAYEE_VPA" default:"merchant@upi"`
	UPIPayeeName string  `envconfig:"UPI_PAYEE_NAME" default:"JerseyX Store"`
	ShippingFee  float64 `envconfig:"SHIPPING_FEE" default:"0"`
	Discount     float64 `envconfig:"DISCOUNT" default:"0"`
	DeliveryDays int     `envconfig:"DELIVERY_DAYS" default:"5"`
}

// Load reads .env (if any), decodes the environment and validates the result.
func Load(ctx context.Context) (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, errors.Wrap(err, "decoding environment")
	}

	cfg.normalize()

	if cfg.IsProduction() && cfg.GeminiAPIKey == "" && cfg.GCPProject != "" {
		key, err := loadSecret(ctx, cfg.GCPProject, cfg.GeminiSecretName)
		if err != nil {
			return nil, errors.Wrap(err, "loading gemini key")
		}
		cfg.GeminiAPIKey = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize lower-cases the enumerated settings so callers can compare
// them against the constants directly.
func (c *Config) normalize() {
	c.ChatMode = strings.ToLower(strings.TrimSpace(c.ChatMode))
	c.DurableBackend = strings.ToLower(strings.TrimSpace(c.DurableBackend))
	c.SessionBackend = strings.ToLower(strings.TrimSpace(c.SessionBackend))
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))
}

func (c *Config) IsProduction() bool { return c.Environment == "production" }

// Validate checks backend names and the URLs each selected backend needs.
func (c *Config) Validate() error {
	switch c.DurableBackend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required for the redis durable backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres durable backend")
		}
	case BackendMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required for the mongo durable backend")
		}
	default:
		return errors.Errorf("unsupported durable backend: %s", c.DurableBackend)
	}

	switch c.SessionBackend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required for the redis session backend")
		}
	default:
		return errors.Errorf("unsupported session backend: %s", c.SessionBackend)
	}

	if c.CatalogFeed && c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required when CATALOG_FEED is enabled")
	}

	switch c.ChatMode {
	case ChatModeRelay:
		if c.ChatRelayURL == "" {
			return errors.New("CHAT_RELAY_URL is required in relay chat mode")
		}
	case ChatModeDirect:
	default:
		return errors.Errorf("unsupported chat mode: %s", c.ChatMode)
	}

	if c.IsProduction() && c.JWTSecret == "change-me" {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.DeliveryDays < 0 {
		return errors.New("DELIVERY_DAYS must not be negative")
	}
	return nil
}

func loadSecret(ctx context.Context, project, name string) (string, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return "", errors.Wrap(err, "creating secret manager client")
	}
	defer client.Close()

	secretName := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", project, name)
	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: secretName,
	})
	if err != nil {
		return "", errors.Wrapf(err, "accessing secret %s", secretName)
	}
	return strings.TrimSpace(string(result.Payload.Data)), nil
}
