package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if !cfg.AgentEnabled {
		t.Error("agent should be enabled by default")
	}
	if cfg.MaxSteps != 5 {
		t.Errorf("MaxSteps = %d, want 5", cfg.MaxSteps)
	}
	if cfg.Timeout != 15*time.Second {
		t.Errorf("Timeout = %v, want 15s", cfg.Timeout)
	}
	if cfg.LLMProvider != ProviderOllama {
		t.Errorf("LLMProvider = %s, want ollama", cfg.LLMProvider)
	}
	if cfg.EmbedDimension != 384 {
		t.Errorf("EmbedDimension = %d, want 384", cfg.EmbedDimension)
	}
	if cfg.SimilarityThreshold != 0.65 {
		t.Errorf("SimilarityThreshold = %v, want 0.65", cfg.SimilarityThreshold)
	}
	if cfg.MaxRetrieve != 5 {
		t.Errorf("MaxRetrieve = %d, want 5", cfg.MaxRetrieve)
	}
	if cfg.RetentionDays != 90 {
		t.Errorf("RetentionDays = %d, want 90", cfg.RetentionDays)
	}
	if cfg.RetrievalWindow != 100 {
		t.Errorf("RetrievalWindow = %d, want 100", cfg.RetrievalWindow)
	}

	for _, tool := range []string{"add_order", "add_note", "update_patient"} {
		if !cfg.ConfirmTools[tool] {
			t.Errorf("ConfirmTools should include %s by default", tool)
		}
	}
	if cfg.ConfirmTools["get_vitals"] {
		t.Error("read tools should not require confirmation by default")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("WARDAGENT_MAX_STEPS", "8")
	t.Setenv("WARDAGENT_TIMEOUT_MS", "5000")
	t.Setenv("WARDAGENT_MEMORY_SIMILARITY_THRESHOLD", "0.8")
	t.Setenv("WARDAGENT_ENABLED", "false")

	cfg := Load()

	if cfg.MaxSteps != 8 {
		t.Errorf("MaxSteps = %d, want 8", cfg.MaxSteps)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.SimilarityThreshold != 0.8 {
		t.Errorf("SimilarityThreshold = %v, want 0.8", cfg.SimilarityThreshold)
	}
	if cfg.AgentEnabled {
		t.Error("AgentEnabled should be false")
	}
}

func TestLoad_MalformedEnvFallsBack(t *testing.T) {
	t.Setenv("WARDAGENT_MAX_STEPS", "lots")
	t.Setenv("WARDAGENT_MEMORY_SIMILARITY_THRESHOLD", "high")

	cfg := Load()

	if cfg.MaxSteps != 5 {
		t.Errorf("MaxSteps = %d, want default 5", cfg.MaxSteps)
	}
	if cfg.SimilarityThreshold != 0.65 {
		t.Errorf("SimilarityThreshold = %v, want default 0.65", cfg.SimilarityThreshold)
	}
}

func TestApplyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wardagent.yaml")
	content := []byte(`
max_steps: 7
timeout_ms: 30000
llm_model: llama3.3
confirm_tools:
  - add_order
memory_enabled: false
similarity_threshold: 0.75
retention_days: 30
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := Load()
	if err := cfg.ApplyFile(path); err != nil {
		t.Fatalf("ApplyFile failed: %v", err)
	}

	if cfg.MaxSteps != 7 {
		t.Errorf("MaxSteps = %d, want 7", cfg.MaxSteps)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.LLMModel != "llama3.3" {
		t.Errorf("LLMModel = %s, want llama3.3", cfg.LLMModel)
	}
	if len(cfg.ConfirmTools) != 1 || !cfg.ConfirmTools["add_order"] {
		t.Errorf("ConfirmTools = %v, want only add_order", cfg.ConfirmTools)
	}
	if cfg.MemoryEnabled {
		t.Error("MemoryEnabled should be overridden to false")
	}
	if cfg.SimilarityThreshold != 0.75 {
		t.Errorf("SimilarityThreshold = %v, want 0.75", cfg.SimilarityThreshold)
	}
	if cfg.RetentionDays != 30 {
		t.Errorf("RetentionDays = %d, want 30", cfg.RetentionDays)
	}

	// Untouched keys keep environment values
	if cfg.LLMProvider != ProviderOllama {
		t.Errorf("LLMProvider = %s, want unchanged ollama", cfg.LLMProvider)
	}
}

func TestApplyFile_Errors(t *testing.T) {
	cfg := Load()

	if err := cfg.ApplyFile("/does/not/exist.yaml"); err == nil {
		t.Error("expected error for a missing file")
	}

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("max_steps: [not an int"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := cfg.ApplyFile(bad); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestRetention(t *testing.T) {
	cfg := Config{RetentionDays: 90}
	if got := cfg.Retention(); got != 90*24*time.Hour {
		t.Errorf("Retention() = %v, want 2160h", got)
	}

	cfg.RetentionDays = 0
	if got := cfg.Retention(); got != 0 {
		t.Errorf("Retention() = %v, want 0", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseToolSet(t *testing.T) {
	set := parseToolSet("add_order, add_note ,,update_patient")
	if len(set) != 3 {
		t.Errorf("parseToolSet returned %d entries, want 3", len(set))
	}
	if !set["add_note"] {
		t.Error("whitespace around names should be trimmed")
	}

	if len(parseToolSet("")) != 0 {
		t.Error("empty input should produce an empty set")
	}
}

func TestNewLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.log")

	cfg := Load()
	cfg.LogFile = path
	cfg.LogLevel = slog.LevelInfo

	logger, flush := cfg.NewLogger()
	if logger == nil {
		t.Fatal("expected a logger")
	}
	logger.Info("hello")
	if err := flush(); err != nil {
		t.Errorf("flush returned %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if len(data) == 0 {
		t.Error("log file should contain the JSON record")
	}

	// No file configured: stderr only, flush is a no-op.
	cfg.LogFile = ""
	logger, flush = cfg.NewLogger()
	if logger == nil {
		t.Fatal("expected a stderr-only logger")
	}
	if err := flush(); err != nil {
		t.Errorf("no-op flush returned %v", err)
	}
}
