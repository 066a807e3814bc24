// internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"track-wise-service/internal/domain/entity"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	LogLevel   string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// MongoDB
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// Postgres poll audit, disabled when empty
	PostgresDSN string

	// Scheduling
	SearchWindow entity.SchedulingWindow
	PollTimeout  time.Duration

	// Carrier
	CarrierBaseURL string
	CarrierTimeout time.Duration

	// Telegram
	TelegramBotToken string
	TelegramChatIDs  []string
	TelegramAPIURL   string

	// Gmail
	GmailClientID     string
	GmailClientSecret string
	GmailRefreshToken string
	GmailSender       string
	GmailRecipients   []string

	// AMQP
	AMQPURL      string
	AMQPExchange string

	// Metrics
	MetricsNamespace string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	window, err := loadSearchWindow()
	if err != nil {
		return nil, err
	}

	// Set defaults and override with env vars
	config := &Config{
		AppVersion: getEnv("APP_VERSION", "1.0.0"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		MongoURI:      getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "track_wise"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		PostgresDSN: getEnv("POSTGRES_DSN", ""),

		SearchWindow: window,
		PollTimeout:  time.Duration(getEnvAsInt("POLL_TIMEOUT", 30)) * time.Second,

		CarrierBaseURL: getEnv("CARRIER_BASE_URL", "https://www.msc.com"),
		CarrierTimeout: time.Duration(getEnvAsInt("CARRIER_TIMEOUT", 30)) * time.Second,

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatIDs:  getEnvAsList("TELEGRAM_CHAT_IDS"),
		TelegramAPIURL:   getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),
		GmailSender:       getEnv("GMAIL_SENDER", ""),
		GmailRecipients:   getEnvAsList("GMAIL_RECIPIENTS"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "track_wise.events"),

		MetricsNamespace: getEnv("METRICS_NAMESPACE", "track_wise"),
	}

	return config, nil
}

func loadSearchWindow() (entity.SchedulingWindow, error) {
	start, err := entity.ParseTimeOfDay(getEnv("SEARCH_START_TIME", "08:00:00"))
	if err != nil {
		return entity.SchedulingWindow{}, fmt.Errorf("invalid SEARCH_START_TIME: %w", err)
	}
	end, err := entity.ParseTimeOfDay(getEnv("SEARCH_END_TIME", "20:00:00"))
	if err != nil {
		return entity.SchedulingWindow{}, fmt.Errorf("invalid SEARCH_END_TIME: %w", err)
	}
	if start >= end {
		return entity.SchedulingWindow{}, fmt.Errorf("search window start %s must be before end %s", start, end)
	}
	return entity.SchedulingWindow{
		ID:    getEnv("SEARCH_WINDOW_ID", "default"),
		Start: start,
		End:   end,
	}, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	var values []string
	for _, v := range strings.Split(getEnv(key, ""), ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}
