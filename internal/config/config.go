// Package config holds runtime configuration for the agent core.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider identifies an LLM or embedding backend.
type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderBedrock   Provider = "bedrock"
)

// Config holds all configuration values.
type Config struct {
	// Agent loop
	AgentEnabled bool
	MaxSteps     int
	Timeout      time.Duration
	LLMProvider  Provider
	LLMModel     string

	// Tools whose staged mutations require explicit user confirmation.
	// Keyed by tool name.
	ConfirmTools map[string]bool

	// Provider credentials / endpoints
	OllamaHost      string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	AWSRegion       string

	// Embedding
	EmbedProvider  Provider
	EmbedModel     string
	EmbedDimension int
	EmbedMaxChars  int
	CacheSize      int
	CacheTTL       time.Duration

	// Episodic memory
	MemoryEnabled       bool
	MaxRetrieve         int
	SimilarityThreshold float64
	RetrievalWindow     int
	RetentionDays       int
	CleanupBatch        int
	CleanupInterval     time.Duration
	ScaleWarn           int
	ScaleCritical       int
	ResponseCap         int
	MemoryHashKey       string

	// SurrealDB connection (durable episode store)
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		AgentEnabled: getEnv("WARDAGENT_ENABLED", "true") == "true",
		MaxSteps:     getEnvInt("WARDAGENT_MAX_STEPS", 5),
		Timeout:      time.Duration(getEnvInt("WARDAGENT_TIMEOUT_MS", 15000)) * time.Millisecond,
		LLMProvider:  Provider(getEnv("WARDAGENT_LLM_PROVIDER", string(ProviderOllama))),
		LLMModel:     getEnv("WARDAGENT_LLM_MODEL", "llama3.1"),

		ConfirmTools: parseToolSet(getEnv("WARDAGENT_CONFIRM_TOOLS", "add_order,add_note,update_patient")),

		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),

		EmbedProvider:  Provider(getEnv("WARDAGENT_EMBED_PROVIDER", string(ProviderOllama))),
		EmbedModel:     getEnv("WARDAGENT_EMBED_MODEL", "all-minilm:l6-v2"),
		EmbedDimension: getEnvInt("WARDAGENT_EMBED_DIMENSION", 384),
		EmbedMaxChars:  getEnvInt("WARDAGENT_EMBED_MAX_CHARS", 8000),
		CacheSize:      getEnvInt("WARDAGENT_EMBED_CACHE_SIZE", 256),
		CacheTTL:       time.Duration(getEnvInt("WARDAGENT_EMBED_CACHE_TTL_S", 600)) * time.Second,

		MemoryEnabled:       getEnv("WARDAGENT_MEMORY_ENABLED", "true") == "true",
		MaxRetrieve:         getEnvInt("WARDAGENT_MEMORY_MAX_RETRIEVE", 5),
		SimilarityThreshold: getEnvFloat("WARDAGENT_MEMORY_SIMILARITY_THRESHOLD", 0.65),
		RetrievalWindow:     getEnvInt("WARDAGENT_MEMORY_RETRIEVAL_WINDOW", 100),
		RetentionDays:       getEnvInt("WARDAGENT_MEMORY_RETENTION_DAYS", 90),
		CleanupBatch:        getEnvInt("WARDAGENT_MEMORY_CLEANUP_BATCH", 50),
		CleanupInterval:     time.Duration(getEnvInt("WARDAGENT_MEMORY_CLEANUP_INTERVAL_S", 3600)) * time.Second,
		ScaleWarn:           getEnvInt("WARDAGENT_MEMORY_SCALE_WARN", 800),
		ScaleCritical:       getEnvInt("WARDAGENT_MEMORY_SCALE_CRITICAL", 1500),
		ResponseCap:         getEnvInt("WARDAGENT_MEMORY_RESPONSE_CAP", 2000),
		MemoryHashKey:       getEnv("WARDAGENT_MEMORY_HASH_KEY", "wardagent-dev-key"),

		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "wardagent"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "memory"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		LogFile:  getEnv("WARDAGENT_LOG_FILE", "/tmp/wardagent.log"),
		LogLevel: parseLogLevel(getEnv("WARDAGENT_LOG_LEVEL", "INFO")),
	}
}

// fileOverrides mirrors the subset of Config settable from a YAML file.
// Nil/empty values mean "keep the environment value".
type fileOverrides struct {
	Enabled             *bool    `yaml:"enabled"`
	MaxSteps            *int     `yaml:"max_steps"`
	TimeoutMS           *int     `yaml:"timeout_ms"`
	LLMProvider         string   `yaml:"llm_provider"`
	LLMModel            string   `yaml:"llm_model"`
	ConfirmTools        []string `yaml:"confirm_tools"`
	EmbedProvider       string   `yaml:"embed_provider"`
	EmbedModel          string   `yaml:"embed_model"`
	EmbedDimension      *int     `yaml:"embed_dimension"`
	MemoryEnabled       *bool    `yaml:"memory_enabled"`
	MaxRetrieve         *int     `yaml:"max_retrieve"`
	SimilarityThreshold *float64 `yaml:"similarity_threshold"`
	RetentionDays       *int     `yaml:"retention_days"`
}

// ApplyFile merges overrides from a YAML file on top of c.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var o fileOverrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if o.Enabled != nil {
		c.AgentEnabled = *o.Enabled
	}
	if o.MaxSteps != nil {
		c.MaxSteps = *o.MaxSteps
	}
	if o.TimeoutMS != nil {
		c.Timeout = time.Duration(*o.TimeoutMS) * time.Millisecond
	}
	if o.LLMProvider != "" {
		c.LLMProvider = Provider(o.LLMProvider)
	}
	if o.LLMModel != "" {
		c.LLMModel = o.LLMModel
	}
	if len(o.ConfirmTools) > 0 {
		c.ConfirmTools = parseToolSet(strings.Join(o.ConfirmTools, ","))
	}
	if o.EmbedProvider != "" {
		c.EmbedProvider = Provider(o.EmbedProvider)
	}
	if o.EmbedModel != "" {
		c.EmbedModel = o.EmbedModel
	}
	if o.EmbedDimension != nil {
		c.EmbedDimension = *o.EmbedDimension
	}
	if o.MemoryEnabled != nil {
		c.MemoryEnabled = *o.MemoryEnabled
	}
	if o.MaxRetrieve != nil {
		c.MaxRetrieve = *o.MaxRetrieve
	}
	if o.SimilarityThreshold != nil {
		c.SimilarityThreshold = *o.SimilarityThreshold
	}
	if o.RetentionDays != nil {
		c.RetentionDays = *o.RetentionDays
	}

	return nil
}

// Retention returns the episode retention window as a duration.
func (c Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// parseToolSet parses a comma-separated list of tool names into a set.
func parseToolSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			set[name] = true
		}
	}
	return set
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
