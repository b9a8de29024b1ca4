package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"cloudeng.io/logging/ctxlog"

	"github.com/ngrash/tzmatch/tzdb/ianadist"
)

type FetchFlags struct {
	Config string `subcmd:"config,,YAML configuration file"`
}

type Fetch struct {
	out    io.Writer
	client *ianadist.Client
}

// Run downloads the latest release into the cache directory unless the
// cached copy still has the current ETag.
func (f *Fetch) Run(ctx context.Context, flags any, _ []string) error {
	fv := flags.(*FetchFlags)
	ctx, cfg, err := setup(ctx, &ConfigFlags{Config: fv.Config})
	if err != nil {
		return err
	}
	if cfg.CacheDir == "" {
		return fmt.Errorf("no cache directory configured")
	}
	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		return err
	}
	path := cachedRelease(cfg)
	etagPath := path + ".etag"
	etag, err := os.ReadFile(etagPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		// Without the tarball the ETag is meaningless.
		etag = nil
	}

	client := f.client
	if client == nil {
		client = ianadist.DefaultClient
	}
	body, newEtag, err := client.Download(ctx, "tzdata-latest.tar.gz", strings.TrimSpace(string(etag)))
	if err != nil {
		return err
	}
	if body == nil {
		ctxlog.Info(ctx, "tzdata is up to date", "path", path, "etag", newEtag)
		_, err := fmt.Fprintf(f.out, "%s is up to date\n", path)
		return err
	}
	defer body.Close()

	tmp, err := os.CreateTemp(cfg.CacheDir, ".tzdata-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	// Check the download is a release before replacing the cached copy.
	release, err := ianadist.ReadArchive(io.TeeReader(body, tmp))
	if err != nil {
		tmp.Close()
		return err
	}
	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	if err := os.WriteFile(etagPath, []byte(newEtag+"\n"), 0o644); err != nil {
		return err
	}
	ctxlog.Info(ctx, "fetched tzdata", "version", release.Version, "path", path, "etag", newEtag)
	_, err = fmt.Fprintf(f.out, "fetched tzdata %s into %s\n", release.Version, filepath.Dir(path))
	return err
}
