package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	Port          int    `mapstructure:"port" yaml:"port"`
	BodyLimitMB   int    `mapstructure:"body_limit_mb" yaml:"body_limit_mb"`
	DefaultBins   int    `mapstructure:"default_bins" yaml:"default_bins"`
	SessionTTLMin int    `mapstructure:"session_ttl_min" yaml:"session_ttl_min"`
	PreviewRows   int    `mapstructure:"preview_rows" yaml:"preview_rows"`
	MaxRows       int    `mapstructure:"max_rows" yaml:"max_rows"`
	SamplePath    string `mapstructure:"sample_path" yaml:"sample_path"`

	// Logging
	LogFile    string `mapstructure:"log_file" yaml:"log_file"`
	Production bool   `mapstructure:"production" yaml:"production"`

	// Chart sizing in inches
	ChartWidthIn float64 `mapstructure:"chart_width_in" yaml:"chart_width_in"`
	RowHeightIn  float64 `mapstructure:"row_height_in" yaml:"row_height_in"`

	// Numeric locale; empty means "." decimal and no thousands separator
	Decimal   string `mapstructure:"decimal" yaml:"decimal"`
	Thousands string `mapstructure:"thousands" yaml:"thousands"`
}

// Dir returns ~/.histx.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".histx"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.histx/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env (including .env) > config file > defaults. Command flags
// are applied on top by the caller.
func Load(cfgFile string) (*Global, error) {
	// .env in the working directory is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("HISTX")
	v.AutomaticEnv()

	v.SetDefault("port", 8501)
	v.SetDefault("body_limit_mb", 200)
	v.SetDefault("default_bins", 20)
	v.SetDefault("session_ttl_min", 60)
	v.SetDefault("preview_rows", 5)
	v.SetDefault("max_rows", 200000)
	v.SetDefault("sample_path", "")
	v.SetDefault("log_file", "")
	v.SetDefault("production", false)
	v.SetDefault("chart_width_in", 14.0)
	v.SetDefault("row_height_in", 4.0)
	v.SetDefault("decimal", "")
	v.SetDefault("thousands", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks value ranges that would otherwise surface as confusing
// failures deep inside a request.
func (c *Global) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.DefaultBins < 5 || c.DefaultBins > 100 {
		return fmt.Errorf("invalid default_bins: %d (must be 5-100)", c.DefaultBins)
	}
	if c.BodyLimitMB <= 0 {
		return fmt.Errorf("invalid body_limit_mb: %d", c.BodyLimitMB)
	}
	if c.SessionTTLMin <= 0 {
		return fmt.Errorf("invalid session_ttl_min: %d", c.SessionTTLMin)
	}
	if c.MaxRows < 0 || c.PreviewRows < 0 {
		return fmt.Errorf("max_rows and preview_rows must not be negative")
	}
	if c.ChartWidthIn <= 0 || c.RowHeightIn <= 0 {
		return fmt.Errorf("chart_width_in and row_height_in must be positive")
	}
	if len([]rune(c.Decimal)) > 1 || len([]rune(c.Thousands)) > 1 {
		return fmt.Errorf("decimal and thousands must be a single character")
	}
	if c.Decimal != "" && c.Decimal == c.Thousands {
		return fmt.Errorf("decimal and thousands separators must differ")
	}
	return nil
}
