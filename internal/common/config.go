package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yogeshhk/MiningResume/constants"
)

// Config holds all application configuration
type Config struct {
	Parser   ParserConfig
	Files    FilesConfig
	Provider ProviderConfig
	LLM      LLMConfig
	Rules    RulesConfig
	Cache    CacheConfig
	Retry    RetryConfig
	Database DatabaseConfig
}

// ParserConfig holds orchestration behavior.
type ParserConfig struct {
	Attributes           []string
	AttributeConcurrency int
	BatchWorkers         int
	FailFast             bool
	ProviderTimeout      time.Duration
}

// FilesConfig holds document reading limits.
type FilesConfig struct {
	MaxFileSizeMB int64
}

// ProviderConfig selects the extraction backend ("rules" or "llm").
type ProviderConfig struct {
	Backend string
}

// LLMConfig holds the model-based backend configuration.
type LLMConfig struct {
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	PromptsFile string
}

// RulesConfig holds the rule-based backend configuration.
type RulesConfig struct {
	ConfigPath string
}

// CacheConfig holds response cache behavior.
type CacheConfig struct {
	Enabled    bool
	Backend    string // "memory" or "lru"
	TTL        time.Duration
	MaxEntries int
}

// RetryConfig holds backoff behavior for provider calls.
type RetryConfig struct {
	MaxAttempts   int
	InitialWait   time.Duration
	BackoffFactor float64
}

// DatabaseConfig holds result persistence configuration.
type DatabaseConfig struct {
	DSN string // postgres://... for pgx, a file path or :memory: for sqlite
}

// LoadConfig loads configuration from environment variables.
// A .env file in the working directory is merged in when present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Parser: ParserConfig{
			Attributes:           getEnvAsSlice("PARSER_ATTRIBUTES", constants.DefaultAttributes),
			AttributeConcurrency: getEnvAsInt("PARSER_ATTRIBUTE_CONCURRENCY", 4),
			BatchWorkers:         getEnvAsInt("PARSER_BATCH_WORKERS", 4),
			FailFast:             getEnvAsBool("PARSER_FAIL_FAST", false),
			ProviderTimeout:      getEnvAsDuration("PARSER_PROVIDER_TIMEOUT", 120*time.Second),
		},
		Files: FilesConfig{
			MaxFileSizeMB: int64(getEnvAsInt("MAX_FILE_SIZE_MB", 10)),
		},
		Provider: ProviderConfig{
			Backend: getEnv("PROVIDER_BACKEND", "rules"),
		},
		LLM: LLMConfig{
			BaseURL:     getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnv("LLM_MODEL", "gpt-4o-mini"),
			APIKey:      getEnv("LLM_API_KEY", ""),
			Temperature: getEnvAsFloat32("LLM_TEMPERATURE", 0.0),
			MaxTokens:   getEnvAsInt("LLM_MAX_TOKENS", 2048),
			Timeout:     getEnvAsDuration("LLM_TIMEOUT", 120*time.Second),
			PromptsFile: getEnv("LLM_PROMPTS_FILE", ""),
		},
		Rules: RulesConfig{
			ConfigPath: getEnv("RULES_CONFIG_PATH", "configs/regex_rules.xml"),
		},
		Cache: CacheConfig{
			Enabled:    getEnvAsBool("CACHE_ENABLED", true),
			Backend:    getEnv("CACHE_BACKEND", "memory"),
			TTL:        getEnvAsDuration("CACHE_TTL", time.Hour),
			MaxEntries: getEnvAsInt("CACHE_MAX_ENTRIES", 4096),
		},
		Retry: RetryConfig{
			MaxAttempts:   getEnvAsInt("RETRY_MAX_ATTEMPTS", 3),
			InitialWait:   getEnvAsDuration("RETRY_INITIAL_WAIT", time.Second),
			BackoffFactor: getEnvAsFloat64("RETRY_BACKOFF_FACTOR", 2.0),
		},
		Database: DatabaseConfig{
			DSN: getEnv("DB_URL", ""),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	if len(c.Parser.Attributes) == 0 {
		return NewAppError("CONFIG_ERROR", "PARSER_ATTRIBUTES must not be empty", ErrConfiguration)
	}
	if c.Parser.AttributeConcurrency < 1 || c.Parser.BatchWorkers < 1 {
		return NewAppError("CONFIG_ERROR", "concurrency bounds must be >= 1", ErrConfiguration)
	}
	switch c.Provider.Backend {
	case "rules", "llm":
	default:
		return NewAppError("CONFIG_ERROR", "PROVIDER_BACKEND must be 'rules' or 'llm'", ErrConfiguration)
	}
	if c.Provider.Backend == "llm" && c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "LLM_API_KEY is required for the llm backend", ErrConfiguration)
	}
	if c.Retry.MaxAttempts < 1 {
		return NewAppError("CONFIG_ERROR", "RETRY_MAX_ATTEMPTS must be >= 1", ErrConfiguration)
	}
	if c.Retry.BackoffFactor <= 0 {
		return NewAppError("CONFIG_ERROR", "RETRY_BACKOFF_FACTOR must be > 0", ErrConfiguration)
	}
	if c.Files.MaxFileSizeMB <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_FILE_SIZE_MB must be > 0", ErrConfiguration)
	}
	return nil
}
