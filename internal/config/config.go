package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env             string        `mapstructure:"ENV"`
	Port            string        `mapstructure:"PORT"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	AdminKey        string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed     string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	MaxUploadSizeMB int64         `mapstructure:"MAX_UPLOAD_MB"`

	LogLevel     string `mapstructure:"LOG_LEVEL"`
	LogFormat    string `mapstructure:"LOG_FORMAT"`
	LogFile      string `mapstructure:"LOG_FILE"`
	LogMaxSizeMB int    `mapstructure:"LOG_MAX_SIZE_MB"`

	LLMProvider  string        `mapstructure:"LLM_PROVIDER"`
	LLMBaseURL   string        `mapstructure:"LLM_BASE_URL"`
	LLMAPIKey    string        `mapstructure:"LLM_API_KEY"`
	LLMModel     string        `mapstructure:"LLM_MODEL"`
	LLMMaxTokens int           `mapstructure:"LLM_MAX_TOKENS"`
	LLMTimeout   time.Duration `mapstructure:"LLM_TIMEOUT"`

	KafkaBrokers      string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopicTickets string `mapstructure:"KAFKA_TOPIC_TICKETS"`

	OTelEnabled     bool    `mapstructure:"OTEL_ENABLED"`
	OTelEndpoint    string  `mapstructure:"OTEL_ENDPOINT"`
	OTelInsecure    bool    `mapstructure:"OTEL_INSECURE"`
	OTelSampleRatio float64 `mapstructure:"OTEL_SAMPLE_RATIO"`
}

var keys = []string{
	"ENV", "PORT", "DATABASE_URL", "ADMIN_KEY", "CORS_ALLOWED_ORIGINS", "REQUEST_TIMEOUT", "MAX_UPLOAD_MB",
	"LOG_LEVEL", "LOG_FORMAT", "LOG_FILE", "LOG_MAX_SIZE_MB",
	"LLM_PROVIDER", "LLM_BASE_URL", "LLM_API_KEY", "LLM_MODEL", "LLM_MAX_TOKENS", "LLM_TIMEOUT",
	"KAFKA_BROKERS", "KAFKA_TOPIC_TICKETS",
	"OTEL_ENABLED", "OTEL_ENDPOINT", "OTEL_INSECURE", "OTEL_SAMPLE_RATIO",
}

// Load reads .env (from the working directory or its parent) and the
// process environment. Environment variables win over the file.
func Load() (Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("REQUEST_TIMEOUT", "60s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_MAX_SIZE_MB", 100)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MAX_UPLOAD_MB", 20)
	v.SetDefault("LLM_PROVIDER", "openai")
	v.SetDefault("LLM_MODEL", "gpt-4o")
	v.SetDefault("LLM_TIMEOUT", "45s")
	v.SetDefault("KAFKA_TOPIC_TICKETS", "ticketgate.tickets")
	v.SetDefault("OTEL_ENDPOINT", "localhost:4317")
	v.SetDefault("OTEL_INSECURE", true)
	v.SetDefault("OTEL_SAMPLE_RATIO", 0.1)

	// AutomaticEnv only covers keys viper already knows about during Unmarshal
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.LLMAPIKey) == "" {
		cfg.LLMAPIKey = v.GetString("OPENAI_API_KEY")
	}
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	return cfg, nil
}

// Validate checks what the server and migrations cannot run without.
// A missing LLM key is not an error here; reviews report it per request.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("DATABASE_URL is required")
	}
	switch c.LLMProvider {
	case "openai", "anthropic", "mock":
	default:
		return errors.New("LLM_PROVIDER must be one of openai, anthropic, mock")
	}
	return nil
}

// IsProduction switches gin to release mode in serve.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "prod") || strings.EqualFold(c.Env, "production")
}
