package config

import (
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/cloud-wave-best-zizon/storefront-service/pkg/tls"
)

// DevJWTSecret is the published default signing key.
const DevJWTSecret = "change-me-in-production"

var ErrInsecureJWTSecret = errors.New("JWT_SECRET must be set to a non-default value when LOCAL_MODE is false")

type Config struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LocalMode       bool          `envconfig:"LOCAL_MODE" default:"true"` // AWS 없이 로컬 실행 모드 (in-memory repositories)

	AWSRegion        string `envconfig:"AWS_REGION" default:"ap-northeast-2"`
	DynamoDBEndpoint string `envconfig:"DYNAMODB_ENDPOINT"` // e.g. http://localhost:8000 for DynamoDB Local
	ProductTableName string `envconfig:"PRODUCT_TABLE_NAME" default:"products-table"`
	CartTableName    string `envconfig:"CART_TABLE_NAME" default:"carts-table"`
	UserTableName    string `envconfig:"USER_TABLE_NAME" default:"users-table"`
	CreateTables     bool   `envconfig:"CREATE_TABLES" default:"false"`

	JWTSecret     string        `envconfig:"JWT_SECRET" default:"change-me-in-production"` // only accepted in LOCAL_MODE
	JWTTTL        time.Duration `envconfig:"JWT_TTL" default:"24h"`
	AdminEmail    string        `envconfig:"ADMIN_EMAIL"`
	AdminPassword string        `envconfig:"ADMIN_PASSWORD"`

	DefaultPageLimit int  `envconfig:"DEFAULT_PAGE_LIMIT" default:"12"`
	MaxPageLimit     int  `envconfig:"MAX_PAGE_LIMIT" default:"100"`
	CartMaxRetries   int  `envconfig:"CART_MAX_RETRIES" default:"3"`
	SeedProducts     bool `envconfig:"SEED_PRODUCTS" default:"false"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	KafkaEnabled bool   `envconfig:"KAFKA_ENABLED" default:"false"`
	KafkaBrokers string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaTopic   string `envconfig:"KAFKA_TOPIC" default:"storefront-events"`

	TLS tls.TLSConfig `envconfig:"TLS"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if !cfg.LocalMode && (cfg.JWTSecret == "" || cfg.JWTSecret == DevJWTSecret) {
		return nil, ErrInsecureJWTSecret
	}
	return &cfg, nil
}
