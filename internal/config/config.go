// internal/config/config.go

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Pipeline    PipelineConfig
	Reddit      RedditConfig
	Twitter     TwitterConfig
	Telegram    TelegramConfig
	OpenAI      OpenAIConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	SSLMode      string
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// PipelineConfig holds collection and analysis configuration
type PipelineConfig struct {
	FetchLimit    int
	FetchInterval time.Duration
	RefreshWindow time.Duration
	SignalWindow  time.Duration
	EventsTopic   string
}

// RedditConfig holds reddit collection configuration
type RedditConfig struct {
	Subreddits []string
}

// TwitterConfig holds twitter API credentials and query configuration
type TwitterConfig struct {
	BearerToken    string
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
	Query          string
}

// TelegramConfig holds telegram bot configuration
type TelegramConfig struct {
	BotToken string
	Channels []string
}

// OpenAIConfig holds model commentary configuration
type OpenAIConfig struct {
	APIKey string
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "memewatch"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
		},
		Pipeline: PipelineConfig{
			FetchLimit:    getEnvAsInt("PIPELINE_FETCH_LIMIT", 20),
			FetchInterval: getEnvAsDuration("PIPELINE_FETCH_INTERVAL", 5*time.Minute),
			RefreshWindow: getEnvAsDuration("PIPELINE_REFRESH_WINDOW", 6*time.Hour),
			SignalWindow:  getEnvAsDuration("PIPELINE_SIGNAL_WINDOW", 24*time.Hour),
			EventsTopic:   getEnv("PIPELINE_EVENTS_TOPIC", "meme.analysis"),
		},
		Reddit: RedditConfig{
			Subreddits: getEnvAsSlice("REDDIT_SUBREDDITS", nil),
		},
		Twitter: TwitterConfig{
			BearerToken:    getEnv("TWITTER_BEARER_TOKEN", ""),
			ConsumerKey:    getEnv("TWITTER_CONSUMER_KEY", ""),
			ConsumerSecret: getEnv("TWITTER_CONSUMER_SECRET", ""),
			AccessToken:    getEnv("TWITTER_ACCESS_TOKEN", ""),
			AccessSecret:   getEnv("TWITTER_ACCESS_SECRET", ""),
			Query:          getEnv("TWITTER_QUERY", ""),
		},
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			Channels: getEnvAsSlice("TELEGRAM_CHANNELS", nil),
		},
		OpenAI: OpenAIConfig{
			APIKey: getEnv("OPENAI_API_KEY", ""),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	if config.Pipeline.FetchInterval < time.Minute {
		return fmt.Errorf("pipeline fetch interval must be at least 1m, got %s", config.Pipeline.FetchInterval)
	}
	if config.Pipeline.SignalWindow <= 0 {
		return fmt.Errorf("pipeline signal window must be positive, got %s", config.Pipeline.SignalWindow)
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
