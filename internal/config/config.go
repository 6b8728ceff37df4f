package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"advisor-chat-be/internal/constant"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Keys      APIKeys
	Ai        AIConfig
	Storage   StorageConfig
	Admin     AdminConfig
	Telemetry TelemetryConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	EventLogFilePath   string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	LinkTitleLookup    bool
	SyncTopic          string
}

type DatabaseConfig struct {
	Driver      string // "sqlite" or "postgres"
	Connection  string
	AutoMigrate bool
}

type APIKeys struct {
	GoogleGemini string
	HuggingFace  string
}

type AIConfig struct {
	LLMProvider   string // "gemini", "ollama" or "huggingface"
	LLMModel      string
	LLMBaseURL    string
	OllamaBaseURL string
	TTSModel      string
	TTSVoice      string
	Temperature   float64
	MaxTokens     int // 0 keeps the provider default
	AudioCacheTTL time.Duration
}

type StorageConfig struct {
	TranscriptBackend string // "database" or "redis"
}

type AdminConfig struct {
	PasswordHash string // bcrypt hash; takes precedence over Password
	Password     string
	JWTSecret    string
	TokenTTL     time.Duration
}

type TelemetryConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			EventLogFilePath:   getEnv("EVENT_LOG_FILE_PATH", "logs/events.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			LinkTitleLookup:    getEnvAsBool("LINK_TITLE_LOOKUP", false),
			SyncTopic:          getEnv("WORKSPACE_SYNC_TOPIC", "WORKSPACE_SYNC"),
		},
		Database: DatabaseConfig{
			Driver:      strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			Connection:  getEnv("DB_CONNECTION_STRING", "advisor.db"),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:      getEnv("LLM_MODEL", "gemini-2.5-flash"),
			LLMBaseURL:    getEnv("LLM_BASE_URL", ""),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			TTSModel:      getEnv("TTS_MODEL", "gemini-2.5-flash-preview-tts"),
			TTSVoice:      getEnv("TTS_VOICE", "Kore"),
			Temperature:   getEnvAsFloat("LLM_TEMPERATURE", constant.AdvisorTemperature),
			MaxTokens:     getEnvAsInt("LLM_MAX_TOKENS", 0),
			AudioCacheTTL: getEnvAsDuration("AUDIO_CACHE_TTL", time.Hour),
		},
		Storage: StorageConfig{
			TranscriptBackend: strings.ToLower(getEnv("TRANSCRIPT_BACKEND", "database")),
		},
		Admin: AdminConfig{
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
			Password:     getEnv("ADMIN_PASSWORD", ""),
			JWTSecret:    getEnv("JWT_SECRET", ""),
			TokenTTL:     getEnvAsDuration("ADMIN_TOKEN_TTL", 12*time.Hour),
		},
		Telemetry: TelemetryConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "advisor-chat-be"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}
