package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port       string `mapstructure:"PORT"`
	Env        string `mapstructure:"ENV"`
	AppVersion string `mapstructure:"APP_VERSION"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	DailyLimit    int           `mapstructure:"DAILY_LIMIT"`
	CooldownHours int           `mapstructure:"COOLDOWN_HOURS"`
	SweepInterval time.Duration `mapstructure:"SWEEP_INTERVAL"`
	UsageIdleTTL  time.Duration `mapstructure:"USAGE_IDLE_TTL"`
	Timezone      string        `mapstructure:"TIMEZONE"`

	AgentProvider  string        `mapstructure:"AGENT_PROVIDER"` // openai, gemini
	AgentTimeout   time.Duration `mapstructure:"AGENT_TIMEOUT"`
	OpenAIAPIKey   string        `mapstructure:"OPENAI_API_KEY"`
	OpenAIBaseURL  string        `mapstructure:"OPENAI_BASE_URL"`
	OpenAIModel    string        `mapstructure:"OPENAI_MODEL"`
	GeminiAPIKey   string        `mapstructure:"GEMINI_API_KEY"`
	GoogleProject  string        `mapstructure:"GOOGLE_CLOUD_PROJECT"`
	GoogleLocation string        `mapstructure:"GOOGLE_CLOUD_LOCATION"`
	GeminiModel    string        `mapstructure:"GEMINI_MODEL"`
	EmbeddingModel string        `mapstructure:"EMBEDDING_MODEL"`

	RedisAddr        string `mapstructure:"REDIS_ADDR"`
	QdrantHost       string `mapstructure:"QDRANT_HOST"`
	QdrantPort       int    `mapstructure:"QDRANT_PORT"`
	QdrantCollection string `mapstructure:"QDRANT_COLLECTION"`
	QdrantVectorSize uint64 `mapstructure:"QDRANT_VECTOR_SIZE"`

	PinataAPIKey     string  `mapstructure:"PINATA_API_KEY"`
	PinataAPISecret  string  `mapstructure:"PINATA_API_SECRET"`
	PinataGatewayURL string  `mapstructure:"PINATA_GATEWAY_URL"`
	PinataRPS        float64 `mapstructure:"PINATA_RPS"`
	ExternalURL      string  `mapstructure:"EXTERNAL_URL"`

	DATMintEnabled bool `mapstructure:"DAT_MINT_ENABLED"`
}

var defaults = map[string]any{
	"PORT":                  "3001",
	"ENV":                   "development",
	"LOG_LEVEL":             "info",
	"DAILY_LIMIT":           2,
	"COOLDOWN_HOURS":        12,
	"SWEEP_INTERVAL":        time.Hour,
	"USAGE_IDLE_TTL":        24 * time.Hour,
	"TIMEZONE":              "Local",
	"AGENT_PROVIDER":        "openai",
	"AGENT_TIMEOUT":         60 * time.Second,
	"OPENAI_MODEL":          "gpt-4",
	"GOOGLE_CLOUD_LOCATION": "us-central1",
	"GEMINI_MODEL":          "gemini-2.5-flash",
	"EMBEDDING_MODEL":       "text-embedding-004",
	"QDRANT_PORT":           6334,
	"QDRANT_COLLECTION":     "festify_greetings",
	"QDRANT_VECTOR_SIZE":    768,
	"PINATA_GATEWAY_URL":    "https://gateway.pinata.cloud",
	"PINATA_RPS":            3.0,
	"EXTERNAL_URL":          "https://festify-ai.vercel.app/",
	"DAT_MINT_ENABLED":      false,
}

// Load reads .env.dev (if present), an optional config.yaml and the process
// environment, in increasing order of precedence.
func Load() (*Config, error) {
	_ = godotenv.Load(".env.dev")

	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.AutomaticEnv()
	// AutomaticEnv only covers keys viper already knows about.
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.AgentProvider = strings.ToLower(strings.TrimSpace(cfg.AgentProvider))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var envKeys = []string{
	"APP_VERSION", "OPENAI_API_KEY", "OPENAI_BASE_URL", "GEMINI_API_KEY",
	"GOOGLE_CLOUD_PROJECT", "REDIS_ADDR", "QDRANT_HOST",
	"PINATA_API_KEY", "PINATA_API_SECRET",
}

func (c *Config) Validate() error {
	if c.DailyLimit < 1 {
		return fmt.Errorf("DAILY_LIMIT must be at least 1, got %d", c.DailyLimit)
	}
	if c.CooldownHours < 0 {
		return fmt.Errorf("COOLDOWN_HOURS must not be negative, got %d", c.CooldownHours)
	}
	if c.UsageIdleTTL <= 0 {
		return fmt.Errorf("USAGE_IDLE_TTL must be positive")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive")
	}
	switch strings.ToLower(c.AgentProvider) {
	case "openai", "gemini":
	default:
		return fmt.Errorf("unknown AGENT_PROVIDER %q", c.AgentProvider)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownHours) * time.Hour
}

func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// GenaiConfigured reports whether Gemini credentials are present.
func (c *Config) GenaiConfigured() bool {
	return c.GeminiAPIKey != "" || c.GoogleProject != ""
}

func (c *Config) PinataConfigured() bool {
	return c.PinataAPIKey != "" && c.PinataAPISecret != ""
}
