package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all process-wide settings. It is constructed once at
// startup and passed into each component; nothing reads the environment
// after Load returns.
type Config struct {
	ServerPort  int
	FrontendURL string
	Database    DatabaseConfig
	Auth        AuthConfig
	Email       EmailConfig
	Mail        MailConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

// AuthConfig carries the token signing key and expiry policy.
type AuthConfig struct {
	SecretKey      string
	Algorithm      string
	AccessTokenTTL time.Duration
}

// EmailConfig carries SMTP settings for outbound mail.
type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// MailConfig selects the outbound mail backend.
type MailConfig struct {
	Backend  string
	Queue    string
	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig
}

type RabbitMQConfig struct {
	URL             string
	QueueDurable    bool
	QueueAutoDelete bool
	PrefetchCount   int
}

type PubSubConfig struct {
	ProjectID          string
	CredentialsFile    string
	SubscriptionSuffix string
}

var hmacAlgorithms = map[string]bool{
	"HS256": true,
	"HS384": true,
	"HS512": true,
}

// Load reads configuration from the environment. It returns an error for
// any missing required value so the process refuses to start misconfigured.
func Load() (Config, error) {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	var missing []string
	require := func(key string) string {
		value := strings.TrimSpace(os.Getenv(key))
		if value == "" {
			missing = append(missing, key)
		}
		return value
	}

	cfg := Config{
		ServerPort:  getEnvInt("SERVER_PORT", 8080),
		FrontendURL: require("FRONTEND_URL"),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "donelist"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "donelist_db"),
			UseSSL:   getEnvBool("DB_USE_SSL", false),
		},
		Auth: AuthConfig{
			SecretKey:      require("SECRET_KEY"),
			Algorithm:      getEnv("ALGORITHM", "HS256"),
			AccessTokenTTL: time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		},
		Email: EmailConfig{
			Host:     require("EMAIL_HOST"),
			Port:     getEnvInt("EMAIL_PORT", 587),
			User:     require("EMAIL_USER"),
			Password: require("EMAIL_PASSWORD"),
			From:     require("EMAIL_FROM"),
		},
		Mail: MailConfig{
			Backend: getEnv("MAIL_BACKEND", "smtp"),
			Queue:   getEnv("MAIL_QUEUE", "outbound-email"),
			RabbitMQ: RabbitMQConfig{
				URL:             os.Getenv("RABBITMQ_URL"),
				QueueDurable:    getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
				QueueAutoDelete: getEnvBool("RABBITMQ_QUEUE_AUTO_DELETE", false),
				PrefetchCount:   getEnvInt("RABBITMQ_PREFETCH_COUNT", 0),
			},
			PubSub: PubSubConfig{
				ProjectID:          os.Getenv("PUBSUB_PROJECT_ID"),
				CredentialsFile:    os.Getenv("PUBSUB_CREDENTIALS_FILE"),
				SubscriptionSuffix: os.Getenv("PUBSUB_SUBSCRIPTION_SUFFIX"),
			},
		},
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if !hmacAlgorithms[cfg.Auth.Algorithm] {
		return Config{}, fmt.Errorf("unsupported signing algorithm %q", cfg.Auth.Algorithm)
	}

	switch cfg.Mail.Backend {
	case "smtp":
	case "rabbitmq":
		if strings.TrimSpace(cfg.Mail.RabbitMQ.URL) == "" {
			return Config{}, errors.New("RABBITMQ_URL is required when MAIL_BACKEND=rabbitmq")
		}
	case "pubsub":
		if strings.TrimSpace(cfg.Mail.PubSub.ProjectID) == "" {
			return Config{}, errors.New("PUBSUB_PROJECT_ID is required when MAIL_BACKEND=pubsub")
		}
	default:
		return Config{}, fmt.Errorf("unknown mail backend %q", cfg.Mail.Backend)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		return strings.EqualFold(valueStr, "true") || valueStr == "1"
	}
	return defaultValue
}
