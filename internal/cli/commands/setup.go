package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bertiewooster/polars/internal/cli/config"
	"github.com/bertiewooster/polars/internal/corpus"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
	Corpus *corpus.Store
}

// NewCommandContext creates a CommandContext with the failure corpus opened.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	store, err := openCorpus(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		_ = store.Close()
	}

	return &CommandContext{
		Cfg:    cfg,
		Logger: logger,
		Corpus: store,
	}, cleanup, nil
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	outDir := getEnvOrDefault("POLARS_OUT_DIR", config.DefaultOutDir)
	corpusPath := getEnvOrDefault("POLARS_CORPUS_PATH", config.DefaultCorpusFile)
	verbose := os.Getenv("POLARS_VERBOSE") == "true"

	var seed uint64
	if v := os.Getenv("POLARS_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			seed = n
		}
	}

	return &config.Config{
		Seed:       seed,
		Verbose:    verbose,
		OutDir:     outDir,
		CorpusPath: corpusPath,
		Generate:   config.DefaultGenConfig(),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// openCorpus opens the failure corpus database, creating its directory first.
func openCorpus(cfg *config.Config, logger *slog.Logger) (*corpus.Store, error) {
	corpusDir := filepath.Dir(cfg.CorpusPath)
	if corpusDir != "." && corpusDir != "" {
		if err := os.MkdirAll(corpusDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create corpus directory: %w", err)
		}
	}
	return corpus.Open(cfg.CorpusPath, logger)
}

// addGenerationFlags registers the flags that override the generate section
// of the configuration. The config loader maps them onto generate.* keys.
func addGenerationFlags(cmd *cobra.Command) {
	cmd.Flags().Int("rows", -1, "Exact row count (-1 draws one)")
	cmd.Flags().Int("min-rows", -1, "Lower row bound")
	cmd.Flags().Int("max-rows", -1, "Upper row bound")
	cmd.Flags().Int("cols", -1, "Exact column count (-1 draws one)")
	cmd.Flags().Int("min-cols", -1, "Lower column bound")
	cmd.Flags().Int("max-cols", -1, "Upper column bound")
	cmd.Flags().Bool("lazy", false, "Draw lazy frames")
	cmd.Flags().String("chunked", "", "Chunking mode (always|never)")
	cmd.Flags().Float64("null-probability", 0, "Null chance in [0, 1]")
	cmd.Flags().Bool("allow-infinity", true, "Permit non-finite floats")
	cmd.Flags().StringSlice("dtypes", nil, "Allowed dtypes (comma separated)")
	cmd.Flags().StringSlice("exclude", nil, "Excluded dtypes (comma separated)")
}
