// Package cli provides the command-line interface for wardagent.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/careops/wardagent/internal/agent"
	"github.com/careops/wardagent/internal/config"
	"github.com/careops/wardagent/internal/db"
	"github.com/careops/wardagent/internal/embed"
	"github.com/careops/wardagent/internal/llm"
	"github.com/careops/wardagent/internal/memory"
	"github.com/careops/wardagent/internal/metrics"
	"github.com/careops/wardagent/internal/tools"
	"github.com/careops/wardagent/internal/vectorstore"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose    bool
	configFile string
	ephemeral  bool

	// Global config and shared components, built in PersistentPreRunE
	cfg      config.Config
	logger   *slog.Logger
	logFlush func() error
	dbClient *db.Client
	stats    *metrics.Collector
	memStore *memory.Store
	agentSvc *agent.Service
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "wardagent",
	Short: "Clinical workflow assistant for ward rounds",
	Long: `Wardagent is a conversational assistant for hospital ward workflows.

It answers questions about patients on the board, stages orders and notes
for explicit confirmation, and remembers de-identified past interactions
per doctor so repeated questions get faster, more tailored answers.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		if configFile != "" {
			if err := cfg.ApplyFile(configFile); err != nil {
				return fmt.Errorf("apply config file: %w", err)
			}
		}
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}

		logger, logFlush = cfg.NewLogger()

		return buildServices(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if dbClient != nil {
			if err := dbClient.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
		if logFlush != nil {
			if err := logFlush(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// buildServices wires the agent stack: embedder, memory store, model,
// tool executor. With --ephemeral the episode store lives in process
// memory instead of SurrealDB.
func buildServices(ctx context.Context) error {
	stats = metrics.NewCollector()

	var backend memory.Backend
	if ephemeral || !cfg.MemoryEnabled {
		backend = memory.NewMemoryBackend()
	} else {
		var err error
		dbClient, err = db.NewClient(ctx, db.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}, logger)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		if err := dbClient.InitSchema(ctx, cfg.EmbedDimension); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}
		backend = dbClient
	}

	var embedBackend embed.Backend
	if cfg.MemoryEnabled {
		var err error
		if cfg.EmbedProvider == config.ProviderBedrock {
			embedBackend, err = llm.NewBedrockEmbedder(ctx, cfg)
		} else {
			embedBackend, err = llm.NewEmbedder(cfg)
		}
		if err != nil {
			logger.Warn("embedder unavailable, memory retrieval disabled", "error", err)
			embedBackend = nil
		}
	}

	var embedSvc *embed.Service
	if embedBackend != nil {
		embedSvc = embed.NewService(embedBackend, cfg.CacheSize, cfg.CacheTTL, cfg.EmbedMaxChars, logger, stats)
	}

	memStore = memory.NewStore(backend, embedSvc, vectorstore.NewMemory(), cfg, logger, stats)

	model, err := llm.NewModel(cfg)
	if err != nil {
		return fmt.Errorf("init model: %w", err)
	}

	executor := tools.NewExecutor(tools.NewRegistry(), cfg.ConfirmTools, logger, stats)
	agentSvc = agent.NewService(model, executor, memStore, cfg, logger, stats)
	return nil
}

// ExecuteContext runs the root command under a cancellable context so
// shutdown signals propagate into running commands.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep episodes in process memory instead of SurrealDB")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(outcomeCmd)
}

// exitWithError prints an error message and exits with code 1.
func exitWithError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
