package zoneinfo

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ngrash/tzmatch/timeline"
	"github.com/ngrash/tzmatch/tzif"
)

type options struct {
	horizon int
}

// Option configures FS and Open.
type Option func(*options)

// WithHorizon sets the last year for which the TZ strings of TZif footers are
// expanded into transitions.
func WithHorizon(year int) Option {
	return func(o *options) { o.horizon = year }
}

// skip lists files and directories of a zoneinfo tree that are not zones of
// their own.
var skip = map[string]bool{
	"posix":      true,
	"right":      true,
	"localtime":  true,
	"posixrules": true,
}

// FS returns a database of the TZif files in fsys. Files are recognized by
// their magic; names are slash-separated paths relative to the root of fsys.
func FS(fsys fs.FS, opts ...Option) (*DB, error) {
	o := options{horizon: DefaultHorizon}
	for _, fn := range opts {
		fn(&o)
	}

	var names []string
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == "." {
			return nil
		}
		if skip[path] {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ok, err := isTZif(fsys, path)
		if err != nil {
			return err
		}
		if ok {
			names = append(names, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning zoneinfo: %w", err)
	}

	return newDB(names, func(name string) (timeline.Timeline, error) {
		buf, err := fs.ReadFile(fsys, name)
		if err != nil {
			return timeline.Timeline{}, err
		}
		data, err := tzif.DecodeData(bytes.NewReader(buf))
		if err != nil {
			return timeline.Timeline{}, fmt.Errorf("%s: %w", name, err)
		}
		return FromTZif(name, data, o.horizon)
	}), nil
}

func isTZif(fsys fs.FS, path string) (bool, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	var magic [4]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return false, nil
	}
	return magic == tzif.Magic, nil
}

// DefaultSources returns the locations Open searches when given no path.
func DefaultSources() []string {
	var dirs []string
	if env := os.Getenv("ZONEINFO"); env != "" {
		dirs = append(dirs, env)
	}
	dirs = append(dirs,
		"/usr/share/zoneinfo",
		"/usr/lib/zoneinfo",
		"/usr/share/lib/zoneinfo",
		filepath.Join(runtime.GOROOT(), "lib", "time", "zoneinfo.zip"),
	)
	return dirs
}

// Open returns a database of the zoneinfo directory or zip archive at path.
// An empty path selects the first of DefaultSources that exists.
func Open(path string, opts ...Option) (*DB, error) {
	if path != "" {
		return open(path, opts)
	}
	for _, p := range DefaultSources() {
		if _, err := os.Stat(p); err == nil {
			return open(p, opts)
		}
	}
	return nil, errors.New("no zoneinfo database found")
}

func open(path string, opts []Option) (*DB, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return FS(os.DirFS(path), opts...)
	}
	if !strings.HasSuffix(path, ".zip") {
		return nil, fmt.Errorf("%s: not a directory or zip archive", path)
	}
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	db, err := FS(zr, opts...)
	if err != nil {
		zr.Close()
		return nil, err
	}
	db.closer = zr
	return db, nil
}
