package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"interest-rate-history/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App     AppConfig      `mapstructure:"app"`
	Logging logging.Config `mapstructure:"logging"`
	Source  SourceConfig   `mapstructure:"source"`
	Store   StoreConfig    `mapstructure:"store"`
	Report  ReportConfig   `mapstructure:"report"`
	Export  ExportConfig   `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// SourceConfig describes the remote rate archive.
type SourceConfig struct {
	URL            string        `mapstructure:"url"`
	ReferenceID    string        `mapstructure:"reference_id"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// StoreConfig locates the flat-file stores.
type StoreConfig struct {
	RecordsPath  string `mapstructure:"records_path"`
	YearlyPath   string `mapstructure:"yearly_path"`
	YearlyPlaces int32  `mapstructure:"yearly_places"`
}

// ReportConfig tunes the console report.
type ReportConfig struct {
	RatePlaces int32 `mapstructure:"rate_places"`
}

// ExportConfig sets chart export behaviour.
type ExportConfig struct {
	PNGPath string `mapstructure:"png_path"`
	Width   int    `mapstructure:"width"`
	Height  int    `mapstructure:"height"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RATEHIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "ratehist")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("source.url", "https://static.nbp.pl/dane/stopy/stopy_procentowe_archiwum.xml")
	v.SetDefault("source.reference_id", "ref")
	v.SetDefault("source.request_timeout", "0s")
	v.SetDefault("source.user_agent", "ratehist/1.0")

	v.SetDefault("store.records_path", "interest_rates.csv")
	v.SetDefault("store.yearly_path", "interest_rates_yearly_avg.csv")
	v.SetDefault("store.yearly_places", 4)

	v.SetDefault("report.rate_places", 2)

	v.SetDefault("export.png_path", "interest_rates.png")
	v.SetDefault("export.width", 1280)
	v.SetDefault("export.height", 720)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Source.URL) == "" {
		return fmt.Errorf("source.url must be set")
	}
	if strings.TrimSpace(c.Source.ReferenceID) == "" {
		return fmt.Errorf("source.reference_id must be set")
	}
	if c.Source.RequestTimeout < 0 {
		return fmt.Errorf("source.request_timeout cannot be negative")
	}
	if c.Store.RecordsPath == "" {
		return fmt.Errorf("store.records_path must be set")
	}
	if c.Store.YearlyPath == "" {
		return fmt.Errorf("store.yearly_path must be set")
	}
	if c.Store.YearlyPlaces < 0 {
		return fmt.Errorf("store.yearly_places cannot be negative")
	}
	if c.Report.RatePlaces < 0 {
		return fmt.Errorf("report.rate_places cannot be negative")
	}
	if c.Export.Width <= 0 || c.Export.Height <= 0 {
		return fmt.Errorf("export.width and export.height must be greater than zero")
	}
	return nil
}

// ResolvePath returns either the CLI override or the configured default.
func ResolvePath(override, configured string) string {
	if override != "" {
		return override
	}
	return configured
}
