package match

import (
	"context"
	"runtime"
	"time"

	"cloudeng.io/logging/ctxlog"
	"cloudeng.io/sync/errgroup"

	"github.com/ngrash/tzmatch/ctz"
	"github.com/ngrash/tzmatch/timeline"
)

// Database is a set of named zone timelines.
type Database interface {
	// Names returns the zone names in the order they are searched.
	Names() []string
	Lookup(name string) (timeline.Timeline, error)
}

type options struct {
	ref         time.Time
	concurrency int
}

// Option configures Find and FindAll.
type Option func(*options)

// WithReference sets the instant around which zones are compared.
// The default is the current time.
func WithReference(t time.Time) Option {
	return func(o *options) { o.ref = t }
}

// WithConcurrency bounds the number of zones FindAll evaluates at once.
// The default is runtime.GOMAXPROCS(0).
func WithConcurrency(n int) Option {
	return func(o *options) { o.concurrency = n }
}

func newOptions(opts []Option) options {
	o := options{concurrency: runtime.GOMAXPROCS(0)}
	for _, fn := range opts {
		fn(&o)
	}
	if o.ref.IsZero() {
		o.ref = time.Now()
	}
	if o.concurrency < 1 {
		o.concurrency = 1
	}
	return o
}

// Find returns the name of the first zone of db, in the order of db.Names,
// that is compatible with z. It returns "" if there is none. The only errors
// are a *ctz.ValidationError for a malformed z and the error of ctx.
//
// Zones that fail to load are logged and skipped.
func Find(ctx context.Context, db Database, z ctz.CustomTimeZone, opts ...Option) (string, error) {
	if err := z.Validate(); err != nil {
		return "", err
	}
	o := newOptions(opts)
	for _, name := range db.Names() {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if lookupCompatible(ctx, db, name, z, o.ref) {
			return name, nil
		}
	}
	return "", nil
}

// FindAll is like Find but returns all compatible zones in the order of
// db.Names. Zones are evaluated concurrently.
func FindAll(ctx context.Context, db Database, z ctz.CustomTimeZone, opts ...Option) ([]string, error) {
	if err := z.Validate(); err != nil {
		return nil, err
	}
	o := newOptions(opts)
	names := db.Names()
	found := make([]bool, len(names))
	g := errgroup.WithConcurrency(&errgroup.T{}, o.concurrency)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			found[i] = lookupCompatible(ctx, db, name, z, o.ref)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var matches []string
	for i, ok := range found {
		if ok {
			matches = append(matches, names[i])
		}
	}
	return matches, nil
}

func lookupCompatible(ctx context.Context, db Database, name string, z ctz.CustomTimeZone, ref time.Time) bool {
	tl, err := db.Lookup(name)
	if err != nil {
		ctxlog.Logger(ctx).Warn("skipping zone", "zone", name, "error", err)
		return false
	}
	if !Compatible(tl, z, ref) {
		return false
	}
	ctxlog.Logger(ctx).Debug("compatible zone", "zone", name, "rule", z.Name, "ref", ref)
	return true
}
