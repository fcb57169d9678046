package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rebeliceyang/qbsearch/internal/app"
	"github.com/rebeliceyang/qbsearch/internal/catalog"
	"github.com/rebeliceyang/qbsearch/internal/config"
	"github.com/rebeliceyang/qbsearch/internal/db/connection"
	"github.com/rebeliceyang/qbsearch/internal/favorites"
	"github.com/rebeliceyang/qbsearch/internal/history"
	"github.com/rebeliceyang/qbsearch/internal/logger"
	"github.com/rebeliceyang/qbsearch/internal/models"
)

// Version is set during build with -ldflags
var version = "dev"

var (
	configPath  string
	catalogPath string
	filterJSON  string
)

var rootCmd = &cobra.Command{
	Use:   "qbsearch",
	Short: "Build log filters from a tag-based search bar",
	Long: `qbsearch turns search text such as "service.name = checkout" into filter tags.
Keys and sample values come from a YAML catalog or a PostgreSQL table, and the
resulting filter is shown as an expression and a parameterized WHERE clause.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of qbsearch",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "qbsearch version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "YAML catalog of keys and values")
	rootCmd.Flags().StringVar(&filterJSON, "filter", "", "initial filter as TagFilter JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newParseCommand())
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return nil, err
	}
	if catalogPath != "" {
		cfg.Catalog.File = catalogPath
	}
	return cfg, nil
}

// loadCatalog reads keys from the configured file, or from PostgreSQL when a table is configured
func loadCatalog(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*catalog.Catalog, *connection.Pool, error) {
	if cfg.Catalog.File != "" {
		cat, err := catalog.LoadFile(cfg.Catalog.File)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("file", cfg.Catalog.File).Int("keys", len(cat.Keys)).Msg("catalog loaded")
		return cat, nil, nil
	}

	if !cfg.Catalog.UsePostgres() {
		return &catalog.Catalog{}, nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Catalog.TimeoutMs)*time.Millisecond)
	defer cancel()

	pool, err := connection.NewPool(ctx, cfg.Catalog.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cat, err := catalog.FromPostgres(ctx, pool, cfg.Catalog.Schema, cfg.Catalog.Table, cfg.Catalog.SampleLimit)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	log.Info().
		Str("table", cfg.Catalog.Schema+"."+cfg.Catalog.Table).
		Int("keys", len(cat.Keys)).
		Msg("catalog discovered")
	return cat, pool, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, closer, err := logger.New(logger.Config{Level: cfg.Log.Level, File: cfg.Log.File, Pretty: cfg.Log.Pretty})
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	var initial models.TagFilter
	if filterJSON != "" {
		if err := json.Unmarshal([]byte(filterJSON), &initial); err != nil {
			return fmt.Errorf("invalid --filter: %w", err)
		}
	}

	cat, pool, err := loadCatalog(cmd.Context(), cfg, log)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	if pool != nil {
		defer pool.Close()
	}

	deps := app.Deps{
		Config:  cfg,
		Logger:  log,
		Catalog: cat,
		Pool:    pool,
		Initial: initial,
	}

	if cfg.History.Enabled {
		if err := os.MkdirAll(filepath.Dir(cfg.History.Path), 0755); err != nil {
			return fmt.Errorf("failed to create history directory: %w", err)
		}
		store, err := history.NewStore(cfg.History.Path)
		if err != nil {
			log.Warn().Err(err).Msg("history disabled")
		} else {
			defer func() { _ = store.Close() }()
			deps.History = store
		}
	}

	if dir, err := config.GetConfigPath(); err == nil {
		saved, err := favorites.NewManager(dir)
		if err != nil {
			log.Warn().Err(err).Msg("saved filters disabled")
		} else {
			deps.Saved = saved
		}
	}

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.MouseEnabled {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	p := tea.NewProgram(app.New(deps), opts...)
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("failed to run the terminal user interface: %w", err)
	}

	if a, ok := final.(*app.App); ok {
		return writeFilter(cmd.OutOrStdout(), a.Filters())
	}
	return nil
}

func writeFilter(w io.Writer, f models.TagFilter) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(f)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
