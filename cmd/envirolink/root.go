package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jgoulah/envirolink/internal/ai"
	"github.com/jgoulah/envirolink/internal/cache"
	"github.com/jgoulah/envirolink/internal/config"
	"github.com/jgoulah/envirolink/internal/database"
	"github.com/jgoulah/envirolink/internal/pipeline"
)

var (
	cfgFile string
	dbPath  string
	verbose bool

	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "envirolink",
	Short: "Energy, food and carbon insights for a sustainable household",
	Long: `EnviroLink tracks household energy usage and food inventory in a local SQLite
database and uses a generative AI provider to turn them into plain-text insights,
recipes and chat answers. Every feature keeps working offline with built-in fallbacks.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; API keys may come from the real environment
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env file: %w", err)
		}

		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			Level(level).
			With().
			Timestamp().
			Logger()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (default is ./data.db)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// getDBPath returns the database file path (local directory)
func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	return "data.db"
}

// loadConfig loads the configuration file
func loadConfig() (*config.Config, error) {
	return config.Load(getConfigPath())
}

// saveConfig saves the configuration file
func saveConfig(cfg *config.Config) error {
	return config.Save(getConfigPath(), cfg)
}

// openDB opens the database connection
func openDB() (*database.DB, error) {
	path := getDBPath()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	return database.New(path)
}

// newPipeline builds the generation pipeline for the configured provider.
// The returned cleanup closes the insight cache, if one was opened.
func newPipeline(cfg *config.Config) (*pipeline.Pipeline, func(), error) {
	gen, err := ai.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating ai client: %w", err)
	}

	var opts []pipeline.Option
	cleanup := func() {}
	if cfg.Redis.Enabled {
		c := cache.NewRedis(cfg)
		opts = append(opts, pipeline.WithCache(c))
		cleanup = func() { c.Close() }
		logger.Debug().Str("addr", cfg.Redis.Addr).Msg("insight cache enabled")
	}

	return pipeline.New(gen, logger, opts...), cleanup, nil
}

// commandContext is cancelled on SIGINT or SIGTERM
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := logger.WithContext(cmd.Context())
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

func printHeader(name string) {
	fmt.Printf("=== %s started at %s ===\n", name, time.Now().Format("2006-01-02 15:04:05 MST"))
}
