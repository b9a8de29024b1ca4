package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"cloudeng.io/logging/ctxlog"

	"github.com/ngrash/tzmatch/internal/config"
	"github.com/ngrash/tzmatch/tzc"
	"github.com/ngrash/tzmatch/tzdb/ianadist"
	"github.com/ngrash/tzmatch/zoneinfo"
)

// ConfigFlags are shared by all commands that consult a zone database.
type ConfigFlags struct {
	Config   string `subcmd:"config,,YAML configuration file"`
	ZoneInfo string `subcmd:"zoneinfo,,zoneinfo directory or zip archive, overrides the configuration"`
	TZData   string `subcmd:"tzdata,,tzdata release tarball to compile instead of using zoneinfo, 'cache' for the fetched release"`
	Ref      string `subcmd:"ref,,reference time as RFC 3339 or Unix milliseconds, defaults to now"`
}

// setup loads the configuration, applies the flags and installs the logger.
func setup(ctx context.Context, fv *ConfigFlags) (context.Context, config.Config, error) {
	cfg, err := config.Load(ctx, fv.Config)
	if err != nil {
		return ctx, cfg, err
	}
	if fv.ZoneInfo != "" {
		cfg.ZoneInfo = fv.ZoneInfo
	}
	if fv.TZData != "" {
		cfg.TZData = fv.TZData
	}
	level, err := cfg.Level()
	if err != nil {
		return ctx, cfg, err
	}
	ctx = ctxlog.NewJSONLogger(ctx, os.Stderr, &slog.HandlerOptions{Level: level})
	return ctx, cfg, nil
}

// openDB opens the zone database selected by cfg.
func openDB(ctx context.Context, cfg config.Config) (*zoneinfo.DB, error) {
	if cfg.TZData == "" {
		db, err := zoneinfo.Open(cfg.ZoneInfo, zoneinfo.WithHorizon(cfg.Horizon))
		if err != nil {
			return nil, err
		}
		ctxlog.Info(ctx, "opened zoneinfo", "path", cfg.ZoneInfo, "zones", len(db.Names()))
		return db, nil
	}
	path := cfg.TZData
	if path == "cache" {
		path = cachedRelease(cfg)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	release, err := ianadist.ReadArchive(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	src, err := release.Parse()
	if err != nil {
		return nil, err
	}
	db, err := zoneinfo.Compiled(src, tzc.WithMaxYear(cfg.Horizon))
	if err != nil {
		return nil, fmt.Errorf("tzdata %s: %w", release.Version, err)
	}
	ctxlog.Info(ctx, "compiled tzdata", "version", release.Version, "zones", len(db.Names()))
	return db, nil
}

func cachedRelease(cfg config.Config) string {
	return filepath.Join(cfg.CacheDir, "tzdata-latest.tar.gz")
}

// parseRef parses an RFC 3339 time or Unix milliseconds. Empty means now.
func parseRef(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--ref: %q is neither RFC 3339 nor Unix milliseconds", s)
	}
	return t, nil
}

// formatOffset formats an offset in minutes west of UTC as UTC±hh:mm.
func formatOffset(west int) string {
	east := -west
	sign := '+'
	if east < 0 {
		sign, east = '-', -east
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, east/60, east%60)
}
