// Package dataset owns the process-wide cached sheet snapshot.
package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"sheetdash/internal/sheet"
	"sheetdash/internal/table"
)

// DefaultTTL is the cache lifetime used when none is configured.
const DefaultTTL = 300 * time.Second

// Snapshot is one fetched and parsed export.
type Snapshot struct {
	Table     *table.Table
	Raw       string
	FetchedAt time.Time
}

// RefreshHook observes every successful refetch. Hook errors are logged and
// never fail the read that triggered the refresh.
type RefreshHook func(ctx context.Context, snap Snapshot) error

// Options configures a Cache.
type Options struct {
	DocumentID string
	SheetName  string
	TTL        time.Duration
	Parse      table.ParseOptions
	// Coalesce makes concurrent misses share a single fetch. When false two
	// simultaneous misses both fetch and the last one to finish wins.
	Coalesce  bool
	OnRefresh RefreshHook
	Logger    *slog.Logger
	Now       func() time.Time
}

type entry struct {
	table     *table.Table
	fetchedAt time.Time
}

// Cache is a single-slot TTL cache over the sheet export. The slot is swapped
// atomically; readers see either no entry or a complete one.
type Cache struct {
	fetcher sheet.Fetcher
	opts    Options
	current atomic.Pointer[entry]
	group   singleflight.Group
}

// New constructs an empty cache.
func New(fetcher sheet.Fetcher, opts Options) *Cache {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Cache{fetcher: fetcher, opts: opts}
}

// TTL returns the configured lifetime.
func (c *Cache) TTL() time.Duration { return c.opts.TTL }

// DocumentID returns the source document identifier.
func (c *Cache) DocumentID() string { return c.opts.DocumentID }

// SheetName returns the source sheet name.
func (c *Cache) SheetName() string { return c.opts.SheetName }

// FetchedAt reports when the cached entry was fetched.
func (c *Cache) FetchedAt() (time.Time, bool) {
	e := c.current.Load()
	if e == nil {
		return time.Time{}, false
	}
	return e.fetchedAt, true
}

// Seed installs a previously fetched table, e.g. one restored from the
// snapshot archive. The original fetch time is kept so expiry is unchanged.
func (c *Cache) Seed(t *table.Table, fetchedAt time.Time) {
	if t == nil {
		return
	}
	c.current.Store(&entry{table: t, fetchedAt: fetchedAt})
}

// Get returns a private copy of the cached table, refetching when forced, when
// the slot is empty, or when the entry is older than the TTL. On failure the
// existing entry is left untouched.
func (c *Cache) Get(ctx context.Context, force bool) (*table.Table, error) {
	if !force {
		if e := c.fresh(); e != nil {
			c.log().Debug("dataset cache hit", "age", c.opts.Now().Sub(e.fetchedAt))
			return e.table.Clone(), nil
		}
	}

	e, err := c.refresh(ctx, force)
	if err != nil {
		return nil, err
	}
	return e.table.Clone(), nil
}

func (c *Cache) fresh() *entry {
	e := c.current.Load()
	if e == nil || c.opts.Now().Sub(e.fetchedAt) >= c.opts.TTL {
		return nil
	}
	return e
}

// refresh loads a new entry. With Coalesce the shared flight runs detached
// from the first caller's context, so one cancelled request does not fail the
// callers that joined it; each caller still stops waiting when its own
// context ends. The fetcher's own timeout bounds the flight.
func (c *Cache) refresh(ctx context.Context, force bool) (*entry, error) {
	if !c.opts.Coalesce {
		return c.load(ctx)
	}
	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan("refresh", func() (any, error) {
		// A caller that lost the race to a flight that already finished.
		if e := c.fresh(); e != nil && !force {
			return e, nil
		}
		return c.load(flightCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.log().Debug("dataset refresh shared with concurrent caller")
		}
		return res.Val.(*entry), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) load(ctx context.Context) (*entry, error) {
	start := time.Now()
	c.log().Info("refreshing dataset", "document_id", c.opts.DocumentID, "sheet", c.opts.SheetName)

	raw, err := c.fetcher.Fetch(ctx, c.opts.DocumentID, c.opts.SheetName)
	if err != nil {
		c.log().Warn("dataset fetch failed", "error", err)
		return nil, &IngestionError{Stage: StageFetch, Err: err}
	}

	parsed, err := table.ParseString(raw, c.opts.Parse)
	if err != nil {
		c.log().Warn("dataset parse failed", "error", err)
		return nil, &IngestionError{Stage: StageParse, Err: err}
	}

	e := &entry{table: parsed, fetchedAt: c.opts.Now()}
	c.current.Store(e)

	c.log().Info("dataset refreshed",
		"rows", parsed.Len(),
		"columns", len(parsed.Columns),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if c.opts.OnRefresh != nil {
		snap := Snapshot{Table: parsed, Raw: raw, FetchedAt: e.fetchedAt}
		if err := c.opts.OnRefresh(ctx, snap); err != nil {
			c.log().Warn("dataset refresh hook failed", "error", fmt.Errorf("on refresh: %w", err))
		}
	}

	return e, nil
}

func (c *Cache) log() *slog.Logger {
	if c != nil && c.opts.Logger != nil {
		return c.opts.Logger
	}
	return slog.Default()
}
