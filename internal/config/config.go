package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"kb-assistant-be/internal/pkg/apperror"

	"github.com/joho/godotenv"
)

type Config struct {
	App          AppConfig
	Chatwork     ChatworkConfig
	Kintone      KintoneConfig
	Ai           AIConfig
	Sheets       SheetsConfig
	Database     DatabaseConfig
	Cache        CacheConfig
	Presentation PresentationConfig
}

type AppConfig struct {
	Port            string
	Environment     string
	LogFilePath     string
	QALogFilePath   string
	NatsURL         string
	JwtSecret       string
	PipelineTimeout time.Duration
	CorsOrigins     string
	OtelEnabled     bool
	OtelEndpoint    string
}

type ChatworkConfig struct {
	BaseURL      string
	APIToken     string
	WebhookToken string // base64 token used to sign webhook bodies
	BotAccountID int64
	BotName      string
}

type KintoneSource struct {
	AppID string
	Token string
}

type KintoneConfig struct {
	Domain           string
	MeetingMinutes   KintoneSource
	Schedule         KintoneSource
	Rulebook         KintoneSource
	ScheduleRecordID string
	MinutesFromDate  string
}

type AIConfig struct {
	LLMProvider     string // "gemini" or "ollama"
	LLMModel        string
	GeminiAPIKey    string
	OllamaBaseURL   string
	Temperature     float64
	MaxOutputTokens int
}

type SheetsConfig struct {
	SpreadsheetID string
	SheetName     string
	Credentials   string // service account JSON
}

type DatabaseConfig struct {
	Connection string
}

type CacheConfig struct {
	Driver   string // "memory" or "redis"
	RedisURL string
	TTL      time.Duration
}

type PresentationConfig struct {
	ReplyPrefix  string
	ReplySuffix  string
	Personality  string // "friendly" or "formal"
	MaxSentences int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:            getEnv("APP_PORT", "3000"),
			Environment:     getEnv("GO_ENV", "development"),
			LogFilePath:     getEnv("LOG_FILE_PATH", "logs/app.log"),
			QALogFilePath:   getEnv("QA_LOG_FILE_PATH", "logs/qa.log"),
			NatsURL:         getEnv("NATS_URL", ""),
			JwtSecret:       getEnv("JWT_SECRET", ""),
			PipelineTimeout: getEnvAsDuration("PIPELINE_TIMEOUT", 60*time.Second),
			CorsOrigins:     getEnv("CORS_ALLOWED_ORIGINS", "*"),
			OtelEnabled:     getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Chatwork: ChatworkConfig{
			BaseURL:      getEnv("CHATWORK_API_BASE_URL", "https://api.chatwork.com/v2"),
			APIToken:     getEnv("CHATWORK_API_TOKEN", ""),
			WebhookToken: getEnv("CHATWORK_WEBHOOK_TOKEN", ""),
			BotAccountID: getEnvAsInt64("CHATWORK_MY_ID", 0),
			BotName:      getEnv("CHATWORK_BOT_NAME", "AIチャット"),
		},
		Kintone: KintoneConfig{
			Domain: getEnv("KINTONE_DOMAIN", ""),
			MeetingMinutes: KintoneSource{
				AppID: getEnv("KINTONE_APP_ID_JM", "117"),
				Token: getEnv("KINTONE_API_TOKEN_JM", ""),
			},
			Schedule: KintoneSource{
				AppID: getEnv("KINTONE_APP_ID_SCHEDULE", "238"),
				Token: getEnv("KINTONE_API_TOKEN_SCHEDULE", ""),
			},
			Rulebook: KintoneSource{
				AppID: getEnv("KINTONE_APP_ID_RULEBOOK", "296"),
				Token: getEnv("KINTONE_API_TOKEN_RULEBOOK", ""),
			},
			ScheduleRecordID: getEnv("KINTONE_SCHEDULE_RECORD_ID", "8"),
			MinutesFromDate:  getEnv("KINTONE_JM_FROM_DATE", "2025-10-01"),
		},
		Ai: AIConfig{
			LLMProvider:     getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:        getEnv("LLM_MODEL", "gemini-2.0-flash"),
			GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
			OllamaBaseURL:   getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			Temperature:     getEnvAsFloat("LLM_TEMPERATURE", 0.3),
			MaxOutputTokens: getEnvAsInt("LLM_MAX_OUTPUT_TOKENS", 1000),
		},
		Sheets: SheetsConfig{
			SpreadsheetID: getEnv("GOOGLE_SHEETS_SPREADSHEET_ID", ""),
			SheetName:     getEnv("GOOGLE_SHEETS_SHEET_NAME", "シート1"),
			Credentials:   getEnv("GOOGLE_SHEETS_CREDENTIALS", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Cache: CacheConfig{
			Driver:   getEnv("CACHE_DRIVER", "memory"),
			RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),
			TTL:      getEnvAsDuration("KNOWLEDGE_CACHE_TTL", time.Hour),
		},
		Presentation: PresentationConfig{
			ReplyPrefix:  getEnv("REPLY_PREFIX", ""),
			ReplySuffix:  getEnv("REPLY_SUFFIX", ""),
			Personality:  getEnv("PERSONALITY_MODE", "friendly"),
			MaxSentences: getEnvAsInt("ANSWER_MAX_SENTENCES", 5),
		},
	}
}

// ValidateChatwork reports the chat platform settings a reply needs.
func (c *Config) ValidateChatwork() error {
	var missing []string
	if c.Chatwork.APIToken == "" {
		missing = append(missing, "CHATWORK_API_TOKEN")
	}
	// Without the bot's own id its replies are not recognized as its own.
	if c.Chatwork.BotAccountID == 0 {
		missing = append(missing, "CHATWORK_MY_ID")
	}
	return newConfigError(missing)
}

// ValidateKintone reports the record-store settings an export needs.
func (c *Config) ValidateKintone() error {
	var missing []string
	if c.Kintone.Domain == "" {
		missing = append(missing, "KINTONE_DOMAIN")
	}
	if c.Kintone.MeetingMinutes.Token == "" {
		missing = append(missing, "KINTONE_API_TOKEN_JM")
	}
	if c.Kintone.Schedule.Token == "" {
		missing = append(missing, "KINTONE_API_TOKEN_SCHEDULE")
	}
	if c.Kintone.Rulebook.Token == "" {
		missing = append(missing, "KINTONE_API_TOKEN_RULEBOOK")
	}
	return newConfigError(missing)
}

func newConfigError(missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	return &apperror.ConfigurationError{Keys: missing}
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

func getEnvAsInt64(key string, fallback int64) int64 {
	strValue := strings.TrimSpace(getEnv(key, ""))
	if value, err := strconv.ParseInt(strValue, 10, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
