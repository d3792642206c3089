package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config carries every runtime setting of the apiserver, populated from
// environment variables. In dev a .env file is loaded first.
type Config struct {
	Env            string `env:"ENV" envDefault:"dev"`
	ServerPort     int    `env:"SERVER_PORT" envDefault:"8080"`
	FrontendOrigin string `env:"FRONTEND_ORIGIN" envDefault:"http://127.0.0.1:5500"`

	Database DatabaseConfig `envPrefix:"DB_"`
	Session  SessionConfig  `envPrefix:"SESSION_"`
	Storage  StorageConfig
	Events   EventsConfig
}

// DatabaseConfig configures the Postgres connection.
type DatabaseConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"pookieverse"`
	Password string `env:"PASSWORD" envDefault:"password"`
	DBName   string `env:"NAME" envDefault:"pookieverse_db"`
	UseSSL   bool   `env:"USE_SSL" envDefault:"false"`
}

// SessionConfig configures session cookies and retention.
type SessionConfig struct {
	CookieName string        `env:"COOKIE_NAME" envDefault:"session"`
	TTL        time.Duration `env:"TTL" envDefault:"168h"`
}

// StorageConfig selects and configures the object storage backend that
// hosts uploaded images.
type StorageConfig struct {
	// Backend is "minio" or "gcs".
	Backend string      `env:"STORAGE_BACKEND" envDefault:"minio"`
	Minio   MinioConfig `envPrefix:"MINIO_"`
	GCS     GCSConfig   `envPrefix:"GCS_"`
}

// MinioConfig configures the MinIO backend.
type MinioConfig struct {
	Endpoint  string `env:"ENDPOINT"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	Bucket    string `env:"BUCKET" envDefault:"pookieverse"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
}

// GCSConfig configures the Google Cloud Storage backend.
type GCSConfig struct {
	Bucket          string `env:"BUCKET"`
	ProjectID       string `env:"PROJECT_ID"`
	CredentialsFile string `env:"CREDENTIALS_FILE"`
}

// EventsConfig configures the optional entry-lifecycle event publisher.
// An empty Backend disables publishing entirely.
type EventsConfig struct {
	// Backend is "", "rabbitmq" or "pubsub".
	Backend string `env:"EVENTS_BACKEND"`
	Channel string `env:"EVENTS_CHANNEL" envDefault:"scrapbook.entries"`

	RabbitMQ RabbitMQConfig `envPrefix:"RABBITMQ_"`
	PubSub   PubSubConfig   `envPrefix:"PUBSUB_"`
}

// RabbitMQConfig configures the RabbitMQ event backend.
type RabbitMQConfig struct {
	URL          string `env:"URL"`
	QueueDurable bool   `env:"QUEUE_DURABLE" envDefault:"true"`
}

// PubSubConfig configures the Google Pub/Sub event backend.
type PubSubConfig struct {
	ProjectID       string `env:"PROJECT_ID"`
	CredentialsFile string `env:"CREDENTIALS_FILE"`
}

// LoadConfig reads configuration from the environment.
func LoadConfig() (Config, error) {
	if os.Getenv("ENV") == "dev" || os.Getenv("ENV") == "" {
		_ = godotenv.Load()
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env config: %w", err)
	}
	return cfg, nil
}

// Production reports whether the server runs with production cookie and
// transport policies (HTTPS-only, cross-site cookies).
func (c Config) Production() bool {
	return c.Env == "production"
}
