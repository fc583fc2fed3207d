// Package config loads application configuration from environment
// variables. All variables use the EXAMGEN_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	Data   DataConfig
	AI     AIConfig
	Cache  CacheConfig
	Export ExportConfig
	Log    LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// DataConfig holds the matrix and bank document locations. When
// DatabaseURL is set the bank uses PostgreSQL instead of the JSON
// file.
type DataConfig struct {
	MatrixPath  string
	BankPath    string
	DatabaseURL string
}

// AIConfig holds configuration for the generation providers.
type AIConfig struct {
	Gemini GeminiConfig
	Ollama OllamaConfig
	// TimeoutSeconds bounds one external generation attempt.
	TimeoutSeconds int
}

// GeminiConfig holds Gemini settings.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// OllamaConfig holds self-hosted Ollama settings.
type OllamaConfig struct {
	Enabled bool
	URL     string
}

// CacheConfig holds the optional Redis/Dragonfly dedup backend.
type CacheConfig struct {
	URL string
}

// ExportConfig holds PDF export settings.
type ExportConfig struct {
	FontPath     string
	FontBoldPath string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with EXAMGEN_
// prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("EXAMGEN_SERVER_PORT", 8080),
			Host: envStr("EXAMGEN_SERVER_HOST", "0.0.0.0"),
		},
		Data: DataConfig{
			MatrixPath:  envStr("EXAMGEN_MATRIX_PATH", "./data/matrix.yaml"),
			BankPath:    envStr("EXAMGEN_BANK_PATH", "./data/questions.json"),
			DatabaseURL: envStr("EXAMGEN_DATABASE_URL", ""),
		},
		AI: AIConfig{
			Gemini: GeminiConfig{
				APIKey: envStr("EXAMGEN_AI_GEMINI_API_KEY", ""),
				Model:  envStr("EXAMGEN_AI_GEMINI_MODEL", ""),
			},
			Ollama: OllamaConfig{
				Enabled: envBool("EXAMGEN_AI_OLLAMA_ENABLED", false),
				URL:     envStr("EXAMGEN_AI_OLLAMA_URL", "http://localhost:11434"),
			},
			TimeoutSeconds: envInt("EXAMGEN_AI_TIMEOUT_SECONDS", 30),
		},
		Cache: CacheConfig{
			URL: envStr("EXAMGEN_CACHE_URL", ""),
		},
		Export: ExportConfig{
			FontPath:     envStr("EXAMGEN_EXPORT_FONT_PATH", ""),
			FontBoldPath: envStr("EXAMGEN_EXPORT_FONT_BOLD_PATH", ""),
		},
		Log: LogConfig{
			Level:  envStr("EXAMGEN_LOG_LEVEL", "info"),
			Format: envStr("EXAMGEN_LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Data.MatrixPath == "" {
		return fmt.Errorf("EXAMGEN_MATRIX_PATH is required")
	}
	if c.Data.BankPath == "" && c.Data.DatabaseURL == "" {
		return fmt.Errorf("EXAMGEN_BANK_PATH or EXAMGEN_DATABASE_URL is required")
	}
	if c.AI.TimeoutSeconds <= 0 {
		return fmt.Errorf("EXAMGEN_AI_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

// HasAIProvider reports whether at least one generation provider is
// configured. The tool works fully offline without one.
func (c *Config) HasAIProvider() bool {
	return c.AI.Gemini.APIKey != "" || c.AI.Ollama.Enabled
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}
