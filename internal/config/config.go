package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/dotcommander/evalpanel/internal/snapshot"
	"github.com/dotcommander/evalpanel/internal/template"
	"github.com/dotcommander/evalpanel/internal/types"
)

// Config represents the evalpanel configuration
type Config struct {
	DataDir      string `mapstructure:"dataDir"`
	Store        string `mapstructure:"store"`
	Format       string `mapstructure:"format"`
	Output       string `mapstructure:"output"`
	Quiet        bool   `mapstructure:"quiet"`
	Verbose      bool   `mapstructure:"verbose"`
	Listen       string `mapstructure:"listen"`
	KeyLayout    string `mapstructure:"keyLayout"`
	TemplateGlob string `mapstructure:"templateGlob"`
}

// LoadConfig loads configuration from various sources
func LoadConfig(dataDir string) (*Config, error) {
	// Load .env if present; real environment variables win
	_ = godotenv.Load()

	// Set default values
	homeDir, _ := os.UserHomeDir()
	viper.SetDefault("dataDir", filepath.Join(homeDir, ".evalpanel"))
	viper.SetDefault("store", types.StoreFile)
	viper.SetDefault("format", types.FormatConsole)
	viper.SetDefault("output", "")
	viper.SetDefault("quiet", false)
	viper.SetDefault("verbose", false)
	viper.SetDefault("listen", "127.0.0.1:8080")
	viper.SetDefault("keyLayout", snapshot.DefaultKeyLayout)
	viper.SetDefault("templateGlob", template.DefaultPattern)

	// Nearest config file in the working directory or above
	if path := FindConfigFile("."); path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// Environment variables
	viper.SetEnvPrefix("EVALPANEL")
	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Override data directory if provided
	if dataDir != "" {
		config.DataDir = dataDir
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	switch config.Format {
	case types.FormatConsole, types.FormatJSON, types.FormatMarkdown:
	default:
		return fmt.Errorf("invalid format: %s. Must be 'console', 'json', or 'markdown'", config.Format)
	}

	if config.Store != types.StoreFile && config.Store != types.StoreSQLite {
		return fmt.Errorf("invalid store: %s. Must be 'file' or 'sqlite'", config.Store)
	}

	if strings.TrimSpace(config.DataDir) == "" {
		return fmt.Errorf("data directory must not be empty")
	}

	if strings.TrimSpace(config.Listen) == "" {
		return fmt.Errorf("listen address must not be empty")
	}

	if !doublestar.ValidatePattern(config.TemplateGlob) {
		return fmt.Errorf("invalid template glob: %q", config.TemplateGlob)
	}

	// A layout that drops every field would map all snapshots to one key
	probe := time.Date(2001, 2, 3, 4, 5, 6, 0, time.UTC)
	if config.KeyLayout == "" || probe.Format(config.KeyLayout) == config.KeyLayout {
		return fmt.Errorf("invalid key layout: %q", config.KeyLayout)
	}

	return nil
}
