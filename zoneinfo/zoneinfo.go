// Package zoneinfo provides zone databases for matching: the TZif files of a
// zoneinfo directory or zip archive, compiled tzdata source, or timelines
// held in memory.
package zoneinfo

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"

	"github.com/ngrash/tzmatch/timeline"
	"github.com/ngrash/tzmatch/tzc"
	"github.com/ngrash/tzmatch/tzdata"
)

// ErrUnknownZone is returned by Lookup for names not in the database.
var ErrUnknownZone = errors.New("unknown zone")

// DefaultHorizon is the last year for which rules of TZif footers are expanded.
const DefaultHorizon = tzc.DefaultMaxYear

// DB is a zone database. Zones are loaded on first lookup and cached.
// A DB is safe for concurrent use.
type DB struct {
	names  []string
	load   func(name string) (timeline.Timeline, error)
	closer io.Closer

	mu    sync.Mutex
	cache map[string]*entry
}

type entry struct {
	once sync.Once
	tl   timeline.Timeline
	err  error
}

func newDB(names []string, load func(string) (timeline.Timeline, error)) *DB {
	slices.Sort(names)
	return &DB{names: names, load: load, cache: make(map[string]*entry, len(names))}
}

// Names returns the zone names in lexical order.
func (db *DB) Names() []string {
	return slices.Clone(db.names)
}

// Lookup returns the timeline of the named zone.
func (db *DB) Lookup(name string) (timeline.Timeline, error) {
	if _, found := slices.BinarySearch(db.names, name); !found {
		return timeline.Timeline{}, fmt.Errorf("%w: %s", ErrUnknownZone, name)
	}
	db.mu.Lock()
	e, ok := db.cache[name]
	if !ok {
		e = &entry{}
		db.cache[name] = e
	}
	db.mu.Unlock()
	e.once.Do(func() {
		e.tl, e.err = db.load(name)
	})
	return e.tl, e.err
}

// Close releases the files held by the database.
func (db *DB) Close() error {
	if db.closer == nil {
		return nil
	}
	return db.closer.Close()
}

// Map returns a database of the given timelines.
func Map(m map[string]timeline.Timeline) *DB {
	return newDB(slices.Collect(maps.Keys(m)), func(name string) (timeline.Timeline, error) {
		return m[name], nil
	})
}

// Compiled compiles f and returns a database of its zones and links.
func Compiled(f tzdata.File, opts ...tzc.Option) (*DB, error) {
	zones, err := tzc.Compile(f, opts...)
	if err != nil {
		return nil, err
	}
	return Map(zones), nil
}
