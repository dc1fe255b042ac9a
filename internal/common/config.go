package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	LLM         LLMConfig       `toml:"llm"`
	OpenAI      OpenAIConfig    `toml:"openai"`
	Claude      ClaudeConfig    `toml:"claude"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Embedding   EmbeddingConfig `toml:"embedding"`
	Retrieval   RetrievalConfig `toml:"retrieval"`
	Memory      MemoryConfig    `toml:"memory"`
	Agent       AgentConfig     `toml:"agent"`
	Corpus      CorpusConfig    `toml:"corpus"`
	Backfill    BackfillConfig  `toml:"backfill"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"min=1,max=65535"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Type   string       `toml:"type" validate:"omitempty,oneof=badger"` // Only "badger" is supported
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level" validate:"omitempty,oneof=debug info warn error"`
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for console logs (default: "15:04:05")
	File       string   `toml:"file"`        // Log file path when "file" output is enabled
}

// LLMProvider represents the text generation provider type
type LLMProvider string

const (
	// LLMProviderOpenAI uses an OpenAI compatible chat completions endpoint
	LLMProviderOpenAI LLMProvider = "openai"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
)

// ModelPrice is the USD cost per one million tokens
type ModelPrice struct {
	Input  float64 `toml:"input"`
	Output float64 `toml:"output"`
}

// LLMConfig contains unified configuration for all generation providers
type LLMConfig struct {
	DefaultProvider LLMProvider           `toml:"default_provider" validate:"oneof=openai claude gemini"`
	Timeout         string                `toml:"timeout"`    // Upper bound on a single generation call (default: "30s")
	RateLimit       int                   `toml:"rate_limit"` // Requests per second across all providers, 0 disables limiting
	FallbackModel   string                `toml:"fallback_model" validate:"required"`
	Pricing         map[string]ModelPrice `toml:"pricing"`
}

// OpenAIConfig covers any OpenAI compatible endpoint
type OpenAIConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"` // Overrides the Anthropic API endpoint
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
}

// EmbeddingConfig selects the embedding provider. The corpus must be embedded with the same model.
type EmbeddingConfig struct {
	Provider  string `toml:"provider" validate:"oneof=openai ollama gemini"`
	Model     string `toml:"model" validate:"required"`
	BaseURL   string `toml:"base_url"` // Overrides the provider default endpoint
	Dimension int    `toml:"dimension" validate:"gte=0"`
	Timeout   string `toml:"timeout"`
}

type RetrievalConfig struct {
	SimilarityThreshold float64 `toml:"similarity_threshold" validate:"gte=-1,lte=1"`
	ResultLimit         int     `toml:"result_limit" validate:"min=1"`
}

// MemoryConfig bounds the conversation history forwarded to the model
type MemoryConfig struct {
	MaxRecent int `toml:"max_recent" validate:"min=1"`
	MaxOlder  int `toml:"max_older" validate:"gte=0"`
}

type AgentConfig struct {
	Name        string  `toml:"name" validate:"required"`
	ProductName string  `toml:"product_name"`
	Model       string  `toml:"model" validate:"required"`
	MaxTokens   int     `toml:"max_tokens" validate:"min=1"`
	Temperature float32 `toml:"temperature" validate:"gte=0,lte=2"`
}

// CorpusConfig lists seed files loaded into the corpus store at startup (TOML, YAML or JSON)
type CorpusConfig struct {
	SeedFiles []string `toml:"seed_files"`
}

type BackfillConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // Cron schedule with seconds field
	Limit    int    `toml:"limit"`    // Max documents to embed per run
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8000,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Type: "badger",
			Badger: BadgerConfig{
				Path: "./data/supportdesk",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
			File:       "./logs/supportdesk.log",
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderOpenAI,
			Timeout:         "30s",
			RateLimit:       5,
			FallbackModel:   "gpt-4o",
			Pricing:         DefaultPricing(),
		},
		OpenAI: OpenAIConfig{
			BaseURL: "https://api.openai.com/v1",
		},
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "text-embedding-3-small",
			Dimension: 1536,
			Timeout:   "15s",
		},
		Retrieval: RetrievalConfig{
			SimilarityThreshold: 0.5,
			ResultLimit:         3,
		},
		Memory: MemoryConfig{
			MaxRecent: 4,
			MaxOlder:  4,
		},
		Agent: AgentConfig{
			Name:        "support",
			ProductName: "the app",
			Model:       "gpt-4o",
			MaxTokens:   500,
			Temperature: 0.3,
		},
		Backfill: BackfillConfig{
			Enabled:  false,
			Schedule: "0 */10 * * * *",
			Limit:    50,
		},
	}
}

// DefaultPricing returns the built-in price table in USD per million tokens
func DefaultPricing() map[string]ModelPrice {
	return map[string]ModelPrice{
		"gpt-4o":            {Input: 2.50, Output: 10.00},
		"gpt-4o-mini":       {Input: 0.15, Output: 0.60},
		"gpt-3.5-turbo":     {Input: 0.50, Output: 1.50},
		"claude-sonnet-4-5": {Input: 3.00, Output: 15.00},
		"claude-haiku-4-5":  {Input: 1.00, Output: 5.00},
		"gemini-2.5-flash":  {Input: 0.30, Output: 2.50},
	}
}

// LoadFromFiles loads configuration with priority: default -> file1 -> file2 -> ... -> env
// Later files override earlier files. CLI flags are applied afterwards by ApplyFlagOverrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Unmarshal merges with existing values, later values override
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SUPPORTDESK_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("SUPPORTDESK_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("SUPPORTDESK_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if badgerPath := os.Getenv("SUPPORTDESK_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("SUPPORTDESK_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("SUPPORTDESK_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Provider credentials. The vendor variable names are honoured as a fallback.
	config.OpenAI.APIKey = firstEnv(config.OpenAI.APIKey, "SUPPORTDESK_OPENAI_API_KEY", "OPENAI_API_KEY")
	config.Claude.APIKey = firstEnv(config.Claude.APIKey, "SUPPORTDESK_CLAUDE_API_KEY", "ANTHROPIC_API_KEY")
	config.Gemini.APIKey = firstEnv(config.Gemini.APIKey, "SUPPORTDESK_GEMINI_API_KEY", "GEMINI_API_KEY")

	if provider := os.Getenv("SUPPORTDESK_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}
	if model := os.Getenv("SUPPORTDESK_AGENT_MODEL"); model != "" {
		config.Agent.Model = model
	}
	if provider := os.Getenv("SUPPORTDESK_EMBEDDING_PROVIDER"); provider != "" {
		config.Embedding.Provider = provider
	}
	if model := os.Getenv("SUPPORTDESK_EMBEDDING_MODEL"); model != "" {
		config.Embedding.Model = model
	}
}

// firstEnv returns the first non-empty environment variable, or current when none is set
func firstEnv(current string, names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return current
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks struct constraints and the credentials required by the selected providers
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var missing []string
	switch c.LLM.DefaultProvider {
	case LLMProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			missing = append(missing, "openai.api_key")
		}
	case LLMProviderClaude:
		if c.Claude.APIKey == "" {
			missing = append(missing, "claude.api_key")
		}
	case LLMProviderGemini:
		if c.Gemini.APIKey == "" {
			missing = append(missing, "gemini.api_key")
		}
	}
	switch c.Embedding.Provider {
	case "openai":
		if c.OpenAI.APIKey == "" && !contains(missing, "openai.api_key") {
			missing = append(missing, "openai.api_key")
		}
	case "gemini":
		if c.Gemini.APIKey == "" && !contains(missing, "gemini.api_key") {
			missing = append(missing, "gemini.api_key")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	// An empty table falls back to DefaultPricing, mirroring the price table
	prices := c.LLM.Pricing
	if len(prices) == 0 {
		prices = DefaultPricing()
	}
	if _, ok := prices[c.LLM.FallbackModel]; !ok {
		return fmt.Errorf("llm.fallback_model %q has no entry in llm.pricing", c.LLM.FallbackModel)
	}

	if _, err := c.GenerationTimeout(); err != nil {
		return err
	}
	if c.Backfill.Enabled {
		if _, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow).Parse(c.Backfill.Schedule); err != nil {
			return fmt.Errorf("invalid backfill schedule %q: %w", c.Backfill.Schedule, err)
		}
	}
	return nil
}

// GenerationTimeout parses llm.timeout, defaulting to 30 seconds
func (c *Config) GenerationTimeout() (time.Duration, error) {
	return parseDuration(c.LLM.Timeout, 30*time.Second, "llm.timeout")
}

// EmbeddingTimeout parses embedding.timeout, defaulting to 15 seconds
func (c *Config) EmbeddingTimeout() (time.Duration, error) {
	return parseDuration(c.Embedding.Timeout, 15*time.Second, "embedding.timeout")
}

func parseDuration(value string, fallback time.Duration, key string) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
