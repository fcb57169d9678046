package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/rebeliceyang/qbsearch/internal/models"
)

// Config holds all application configuration
type Config struct {
	UI      UIConfig      `mapstructure:"ui"`
	Search  SearchConfig  `mapstructure:"search"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	History HistoryConfig `mapstructure:"history"`
	Log     LogConfig     `mapstructure:"log"`
}

type UIConfig struct {
	Theme        string `mapstructure:"theme"`
	MouseEnabled bool   `mapstructure:"mouse_enabled"`
	Width        int    `mapstructure:"width"`
}

type SearchConfig struct {
	Placeholder    string                   `mapstructure:"placeholder"`
	MaxSuggestions int                      `mapstructure:"max_suggestions"`
	WhereClause    models.WhereClauseConfig `mapstructure:"where_clause"`
}

type CatalogConfig struct {
	File        string                  `mapstructure:"file"`
	Postgres    models.ConnectionConfig `mapstructure:"postgres"`
	Schema      string                  `mapstructure:"schema"`
	Table       string                  `mapstructure:"table"`
	SampleLimit int                     `mapstructure:"sample_limit"`
	TimeoutMs   int                     `mapstructure:"timeout_ms"`
}

type HistoryConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxEntries int    `mapstructure:"max_entries"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	File   string `mapstructure:"file"`
	Pretty bool   `mapstructure:"pretty"`
}

// UsePostgres reports whether attribute keys come from a PostgreSQL table
func (c CatalogConfig) UsePostgres() bool {
	return c.Table != "" && (c.Postgres.DSN != "" || c.Postgres.Host != "")
}

// GetDefaults returns a Config with all default values
func GetDefaults() *Config {
	return &Config{
		UI: UIConfig{
			Theme:        "default",
			MouseEnabled: false,
			Width:        100,
		},
		Search: SearchConfig{
			Placeholder:    "Search Filter : select options from suggested values, for IN/NOT IN operators - press \"Enter\" after selecting options",
			MaxSuggestions: 10,
			WhereClause: models.WhereClauseConfig{
				CustomKey: "body",
				CustomOp:  models.OpContains,
			},
		},
		Catalog: CatalogConfig{
			Schema:      "public",
			SampleLimit: 20,
			TimeoutMs:   5000,
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: 1000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := GetDefaults()
	v.SetDefault("ui.theme", d.UI.Theme)
	v.SetDefault("ui.mouse_enabled", d.UI.MouseEnabled)
	v.SetDefault("ui.width", d.UI.Width)
	v.SetDefault("search.placeholder", d.Search.Placeholder)
	v.SetDefault("search.max_suggestions", d.Search.MaxSuggestions)
	v.SetDefault("search.where_clause.custom_key", d.Search.WhereClause.CustomKey)
	v.SetDefault("search.where_clause.custom_op", string(d.Search.WhereClause.CustomOp))
	v.SetDefault("catalog.file", "")
	v.SetDefault("catalog.schema", d.Catalog.Schema)
	v.SetDefault("catalog.table", "")
	v.SetDefault("catalog.sample_limit", d.Catalog.SampleLimit)
	v.SetDefault("catalog.timeout_ms", d.Catalog.TimeoutMs)
	v.SetDefault("catalog.postgres.dsn", "")
	v.SetDefault("catalog.postgres.host", "")
	v.SetDefault("catalog.postgres.port", 5432)
	v.SetDefault("catalog.postgres.ssl_mode", "prefer")
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.path", "")
	v.SetDefault("history.max_entries", d.History.MaxEntries)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", "")
	v.SetDefault("log.pretty", false)
}

// Load loads configuration from the standard locations
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads configuration from an explicit file, or searches the standard locations when path is empty
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("QBSEARCH")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Add config paths in priority order
		if configDir, err := GetConfigPath(); err == nil {
			v.AddConfigPath(configDir)
		}
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	// Read config (it's okay if file doesn't exist, we have defaults)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.fillPaths()
	return &cfg, nil
}

// fillPaths points history and log files into the config directory when unset
func (c *Config) fillPaths() {
	dir, err := GetConfigPath()
	if err != nil {
		return
	}
	if c.History.Path == "" {
		c.History.Path = filepath.Join(dir, "history.db")
	}
	if c.Log.File == "" {
		c.Log.File = filepath.Join(dir, "qbsearch.log")
	}
}

// GetConfigPath returns the user config directory path
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "qbsearch"), nil
}
