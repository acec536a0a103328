package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port string `mapstructure:"port" yaml:"port"`

	Download  DownloadConfig  `mapstructure:"download" yaml:"download"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Store     StoreConfig     `mapstructure:"store" yaml:"store"`
	Retention RetentionConfig `mapstructure:"retention" yaml:"retention"`
	Scrape    ScrapeConfig    `mapstructure:"scrape" yaml:"scrape"`
}

type DownloadConfig struct {
	OutDir         string        `mapstructure:"out_dir" yaml:"out_dir"`
	Workers        int           `mapstructure:"workers" yaml:"workers"`
	SegmentTimeout time.Duration `mapstructure:"segment_timeout" yaml:"segment_timeout"`
	OutputName     string        `mapstructure:"output_name" yaml:"output_name"`
}

type LogConfig struct {
	Path          string `mapstructure:"path" yaml:"path"`
	Level         string `mapstructure:"level" yaml:"level"`
	IncludeStdout bool   `mapstructure:"include_stdout" yaml:"include_stdout"`
}

type StoreConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver      string `mapstructure:"driver" yaml:"driver"`
	SQLitePath  string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	PostgresDSN string `mapstructure:"postgres_dsn" yaml:"postgres_dsn"`
}

type RetentionConfig struct {
	JobTTL        time.Duration `mapstructure:"job_ttl" yaml:"job_ttl"`
	TokenTTL      time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval"`
}

type ScrapeConfig struct {
	// AllowedHosts restricts which page hosts may be scraped for playlist
	// URLs. Empty means any host.
	AllowedHosts []string      `mapstructure:"allowed_hosts" yaml:"allowed_hosts"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Load reads the YAML config at path, applying defaults and HLSGET_*
// environment overrides. A missing file is only an error when the path was
// given explicitly; the default path falls back to pure defaults so the CLI
// works without a config file.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = "config.yaml"
	}

	v := viper.New()

	v.SetDefault("port", "3005")
	v.SetDefault("download.out_dir", "./data")
	v.SetDefault("download.workers", 4)
	v.SetDefault("download.segment_timeout", "30s")
	v.SetDefault("download.output_name", "merged_video.ts")
	v.SetDefault("log.path", "hlsget.log")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.include_stdout", true)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "./data/hlsget.db")
	v.SetDefault("retention.job_ttl", "24h")
	v.SetDefault("retention.token_ttl", "1h")
	v.SetDefault("retention.sweep_interval", "1m")
	v.SetDefault("scrape.timeout", "30s")

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	v.SetEnvPrefix("HLSGET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Download.OutDir == "" {
		c.Download.OutDir = "./data"
	}

	if c.Download.Workers <= 0 {
		c.Download.Workers = 4
	}

	if c.Download.SegmentTimeout <= 0 {
		c.Download.SegmentTimeout = 30 * time.Second
	}

	if c.Download.OutputName == "" {
		c.Download.OutputName = "merged_video.ts"
	}

	switch c.Store.Driver {
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("store: sqlite_path is required with the sqlite driver")
		}
	case "postgres":
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("store: postgres_dsn is required with the postgres driver")
		}
	default:
		return fmt.Errorf("store: unknown driver %q (want sqlite or postgres)", c.Store.Driver)
	}

	if c.Retention.SweepInterval <= 0 {
		c.Retention.SweepInterval = time.Minute
	}

	return nil
}
