package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Ai       AIConfig
	Search   SearchConfig
	Live     LiveConfig
	Reminder ReminderConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	EventBus           string // "nats" or "local"
	Timezone           string
	JwtSecret          string
}

type DatabaseConfig struct {
	Connection   string
	StateBackend string // "postgres" or "memory"
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type AIConfig struct {
	LLMProvider   string // "gemini" or "ollama"
	FastModel     string // plain turns, summaries, synthesis
	StrongModel   string // grounded reports
	OllamaBaseURL string
}

type SearchConfig struct {
	SerpApiKey     string
	SerpApiBaseURL string
}

type LiveConfig struct {
	GatewayURL   string
	DefaultVoice string
}

type ReminderConfig struct {
	Interval time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			EventBus:           getEnv("EVENT_BUS", "local"),
			Timezone:           getEnv("APP_TIMEZONE", "America/Sao_Paulo"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection:   getEnv("DB_CONNECTION_STRING", ""),
			StateBackend: getEnv("STATE_BACKEND", "postgres"),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Assistant"),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "gemini"),
			FastModel:     getEnv("LLM_FAST_MODEL", "gemini-2.5-flash"),
			StrongModel:   getEnv("LLM_STRONG_MODEL", "gemini-2.5-pro"),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		},
		Search: SearchConfig{
			SerpApiKey:     getEnv("SERPAPI_API_KEY", ""),
			SerpApiBaseURL: getEnv("SERPAPI_BASE_URL", "https://serpapi.com"),
		},
		Live: LiveConfig{
			GatewayURL:   getEnv("LIVE_GATEWAY_URL", "ws://localhost:8090/live"),
			DefaultVoice: getEnv("LIVE_DEFAULT_VOICE", "Zephyr"),
		},
		Reminder: ReminderConfig{
			Interval: getEnvAsDuration("REMINDER_INTERVAL", 30*time.Second),
		},
	}
}

// Location resolves the configured timezone, falling back to the host zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		log.Printf("[WARN] Unknown APP_TIMEZONE %q, using Local", c.App.Timezone)
		return time.Local
	}
	return loc
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil && value > 0 {
		return value
	}
	return fallback
}
