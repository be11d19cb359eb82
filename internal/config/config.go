package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var ErrEmptyEnvironmentVariable = errors.New("empty environment variable")

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Services ServicesConfig
	Media    MediaConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int
}

// DatabaseConfig holds database connection settings.
// The database is optional: when DB_HOST is unset the CRM directory is
// served from the embedded seed data and escalations are not persisted.
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Username string
	Password string
	Name     string
}

// ServicesConfig holds external collaborator API keys and endpoints
type ServicesConfig struct {
	// GeminiAPIKey may be empty; escalation classification then degrades
	// to its fallback verdict instead of calling the model.
	GeminiAPIKey string

	OpenAIAPIKey string

	ResendAPIKey  string
	CodeSender    string
	CodeRecipient string

	WeaviateHost   string
	WeaviateScheme string

	EscalationWebhookURL string

	WebAppURI string
}

// MediaConfig holds the credentials and room settings used to mint
// join tokens for the media room the voice session runs in.
type MediaConfig struct {
	APIKey    string
	APISecret string
	RoomName  string
	AgentName string
}

// Load reads and validates all required environment variables
func Load() (*Config, error) {
	// Load env.local in non-production environments
	if os.Getenv("GO_ENV") != "production" {
		if err := godotenv.Load("env.local"); err != nil {
			return nil, fmt.Errorf("failed to load env.local: %w", err)
		}
	}

	cfg := &Config{}

	// Database configuration (optional)
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Enabled = true
		cfg.Database.Host = host

		var err error
		if cfg.Database.Username, err = requireEnv("DB_USERNAME"); err != nil {
			return nil, err
		}
		if cfg.Database.Password, err = requireEnv("DB_PASSWORD"); err != nil {
			return nil, err
		}
		if cfg.Database.Name, err = requireEnv("DB_NAME"); err != nil {
			return nil, err
		}
	}

	// Services configuration
	var err error
	cfg.Services.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	if cfg.Services.OpenAIAPIKey, err = requireEnv("OPENAI_API_KEY"); err != nil {
		return nil, err
	}
	if cfg.Services.ResendAPIKey, err = requireEnv("RESEND_API_KEY"); err != nil {
		return nil, err
	}
	if cfg.Services.CodeSender, err = requireEnv("VERIFICATION_CODE_SENDER"); err != nil {
		return nil, err
	}
	if cfg.Services.CodeRecipient, err = requireEnv("VERIFICATION_CODE_RECIPIENT"); err != nil {
		return nil, err
	}
	if cfg.Services.EscalationWebhookURL, err = requireEnv("ESCALATION_WEBHOOK_URL"); err != nil {
		return nil, err
	}
	if cfg.Services.WebAppURI, err = requireEnv("WEBAPP_URI"); err != nil {
		return nil, err
	}
	cfg.Services.WeaviateHost = getEnvWithDefault("WEAVIATE_HOST", "localhost:8080")
	cfg.Services.WeaviateScheme = getEnvWithDefault("WEAVIATE_SCHEME", "http")

	// Media room configuration
	if cfg.Media.APIKey, err = requireEnv("MEDIA_API_KEY"); err != nil {
		return nil, err
	}
	if cfg.Media.APISecret, err = requireEnv("MEDIA_API_SECRET"); err != nil {
		return nil, err
	}
	cfg.Media.RoomName = getEnvWithDefault("MEDIA_ROOM_NAME", "support-room")
	cfg.Media.AgentName = getEnvWithDefault("MEDIA_AGENT_NAME", "insurance-voice-agent")

	// Server configuration
	serverPort, err := requireEnv("SERVER_PORT")
	if err != nil {
		return nil, err
	}
	cfg.Server.Port, err = strconv.Atoi(serverPort)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SERVER_PORT: %w", err)
	}

	return cfg, nil
}

// ConnectionString returns a PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s",
		c.Username, c.Password, c.Host, c.Name)
}

// requireEnv retrieves an environment variable or returns an error if empty
func requireEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set: %w", key, ErrEmptyEnvironmentVariable)
	}
	return value, nil
}

// getEnvWithDefault retrieves an environment variable or returns a default value
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
