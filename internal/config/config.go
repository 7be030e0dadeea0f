package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/BerylCAtieno/icp-profiler/internal/llm"
)

var ErrMissingAPIKey = errors.New("GEMINI_API_KEY environment variable is required")

type Config struct {
	APIKey         string
	Model          string
	Port           string
	LogLevel       string
	LogFormat      string
	AllowedOrigins []string
	LLMTimeout     time.Duration
	TraceStdout    bool
	PublicURL      string
	ChatIdleTTL    time.Duration
}

// Load reads an optional .env file and then the environment. A missing API key
// is a fatal configuration error for the caller.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIKey:         getEnv("GEMINI_API_KEY", ""),
		Model:          getEnv("GEMINI_MODEL", llm.DefaultModel),
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"*"}),
		LLMTimeout:     getEnvDuration("LLM_TIMEOUT", 60*time.Second),
		TraceStdout:    getEnvBool("TRACE_STDOUT", false),
		PublicURL:      strings.TrimSuffix(getEnv("PUBLIC_URL", ""), "/"),
		ChatIdleTTL:    getEnvDuration("CHAT_IDLE_TTL", 30*time.Minute),
	}

	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return d
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
