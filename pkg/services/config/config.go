package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the recognized pipeline configuration.
type Config struct {
	AllowedOutputDir   string `mapstructure:"allowed_output_dir"`
	TempRoot           string `mapstructure:"temp_root"`
	LogDir             string `mapstructure:"log_dir"`
	FontsDir           string `mapstructure:"fonts_dir"`
	MaxDataRows        int    `mapstructure:"max_data_rows"`
	MaxBarCategories   int    `mapstructure:"max_bar_categories"`
	MaxPieCategories   int    `mapstructure:"max_pie_categories"`
	LogRetentionDays   int    `mapstructure:"log_retention_days"`
	TempFileTTLSeconds int    `mapstructure:"temp_file_ttl_seconds"`
	ChartWidth         int    `mapstructure:"chart_width"`
	ChartHeight        int    `mapstructure:"chart_height"`
	ChartsDisabled     bool   `mapstructure:"charts_disabled"`
	LockRetries        int    `mapstructure:"lock_retries"`

	AmountField   string `mapstructure:"amount_field"`
	DateField     string `mapstructure:"date_field"`
	CategoryField string `mapstructure:"category_field"`
	EntityField   string `mapstructure:"entity_field"`
}

func Default() Config {
	cfg := Config{}
	applyDefaults(&cfg)
	return cfg
}

// Load reads the config file at path. A missing path yields defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return &cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.MaxDataRows == 0 {
		cfg.MaxDataRows = 50
	}
	if cfg.MaxBarCategories == 0 {
		cfg.MaxBarCategories = 20
	}
	if cfg.MaxPieCategories == 0 {
		cfg.MaxPieCategories = 10
	}
	if cfg.LogRetentionDays == 0 {
		cfg.LogRetentionDays = 7
	}
	if cfg.TempFileTTLSeconds == 0 {
		cfg.TempFileTTLSeconds = 86400
	}
	if cfg.ChartWidth == 0 {
		cfg.ChartWidth = 600
	}
	if cfg.ChartHeight == 0 {
		cfg.ChartHeight = 300
	}
	if cfg.LockRetries == 0 {
		cfg.LockRetries = 10
	}
	if cfg.AmountField == "" {
		cfg.AmountField = "amount"
	}
	if cfg.DateField == "" {
		cfg.DateField = "date"
	}
	if cfg.CategoryField == "" {
		cfg.CategoryField = "category"
	}
	if cfg.EntityField == "" {
		cfg.EntityField = "product"
	}
}

// Validate rejects settings no run could proceed with. These surface
// before any work begins.
func (c *Config) Validate() error {
	if c.MaxDataRows < 0 || c.MaxBarCategories < 0 || c.MaxPieCategories < 0 {
		return fmt.Errorf("row and category caps must be non-negative")
	}
	if c.LogRetentionDays < 0 || c.TempFileTTLSeconds < 0 {
		return fmt.Errorf("retention settings must be non-negative")
	}
	if c.ChartWidth < 0 || c.ChartHeight < 0 {
		return fmt.Errorf("chart dimensions must be non-negative")
	}
	return nil
}
