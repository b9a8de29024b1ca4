// Package config holds the settings of the tzmatch command.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"

	"cloudeng.io/cmdutil/cmdyaml"
	"github.com/joho/godotenv"

	"github.com/ngrash/tzmatch/zoneinfo"
)

// Config is the configuration of the tzmatch command.
type Config struct {
	// ZoneInfo is a zoneinfo directory or zip archive. Empty means the
	// first of zoneinfo.DefaultSources that exists.
	ZoneInfo string `yaml:"zoneinfo"`
	// TZData is a tzdata release tarball. When set it is compiled and used
	// instead of ZoneInfo.
	TZData string `yaml:"tzdata"`
	// Horizon is the last year for which recurring rules are expanded.
	Horizon  int    `yaml:"horizon"`
	CacheDir string `yaml:"cache_dir"`
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	cacheDir, err := os.UserCacheDir()
	if err == nil {
		cacheDir += string(os.PathSeparator) + "tzmatch"
	}
	return Config{
		Horizon:  zoneinfo.DefaultHorizon,
		CacheDir: cacheDir,
		LogLevel: "warn",
	}
}

// Load returns the default configuration overridden, in this order, by the
// variables of a .env file in the working directory, the TZMATCH_*
// environment variables and the YAML file, if one is named.
func Load(ctx context.Context, file string) (Config, error) {
	return load(ctx, file, ".env")
}

func load(ctx context.Context, file, dotenv string) (Config, error) {
	cfg := Default()
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("%s: %w", dotenv, err)
	}
	if err := cfg.fromEnv(); err != nil {
		return Config{}, err
	}
	if file != "" {
		if err := cmdyaml.ParseConfigFile(ctx, file, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) fromEnv() error {
	for name, field := range map[string]*string{
		"TZMATCH_ZONEINFO":  &c.ZoneInfo,
		"TZMATCH_TZDATA":    &c.TZData,
		"TZMATCH_CACHE":     &c.CacheDir,
		"TZMATCH_LOG_LEVEL": &c.LogLevel,
	} {
		if v, ok := os.LookupEnv(name); ok {
			*field = v
		}
	}
	if v, ok := os.LookupEnv("TZMATCH_HORIZON"); ok {
		h, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TZMATCH_HORIZON: %w", err)
		}
		c.Horizon = h
	}
	return nil
}

// Validate checks the horizon and the log level.
func (c Config) Validate() error {
	var errs []error
	if c.Horizon < 1970 {
		errs = append(errs, fmt.Errorf("horizon: %d is before 1970", c.Horizon))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level returns the log level named by LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return l, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}
