package cache

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yungbote/acadboost-backend/internal/platform/logger"
)

// DefaultFlightTimeout bounds a shared fetch once it no longer follows the
// request that started it.
const DefaultFlightTimeout = 3 * time.Minute

// Cache wraps a Store with read-through memoization. Concurrent misses for the
// same session and key share one fetch.
type Cache struct {
	log           *logger.Logger
	store         Store
	group         singleflight.Group
	flightTimeout time.Duration
}

type Option func(*Cache)

// WithFlightTimeout overrides DefaultFlightTimeout. Non-positive values are ignored.
func WithFlightTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.flightTimeout = d
		}
	}
}

func New(log *logger.Logger, store Store, opts ...Option) *Cache {
	c := &Cache{
		log:           log.With("service", "ResponseCache"),
		store:         store,
		flightTimeout: DefaultFlightTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) Store() Store { return c.store }

// ReadThrough returns the cached entry for (session, key) when present.
// Otherwise it calls fetch once and stores whatever entry fetch produced,
// success or terminal failure. An error from fetch is returned uncached.
// Store failures are logged and never fail the request. hit reports whether
// the entry came from the store.
//
// The shared fetch runs detached from any single caller, bounded by the
// flight timeout, so one caller going away cannot fail the others or leave a
// half-finished outcome in the store. A caller whose ctx ends stops waiting
// and gets ctx.Err(); the fetch still completes and fills the slot.
func (c *Cache) ReadThrough(ctx context.Context, session, key string, fetch func(ctx context.Context) (Entry, error)) (entry Entry, hit bool, err error) {
	session = strings.TrimSpace(session)
	if session == "" {
		e, err := fetch(ctx)
		return e, false, err
	}

	if e, ok, gerr := c.store.Get(ctx, session, key); gerr != nil {
		c.log.Warn("Cache read failed", "session_id", session, "key", key, "error", gerr.Error())
	} else if ok {
		return e, true, nil
	}

	type flight struct {
		entry Entry
		hit   bool
	}
	ch := c.group.DoChan(session+"\x00"+key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.flightTimeout)
		defer cancel()

		// A concurrent flight may have filled the slot between our Get and Do.
		if e, ok, gerr := c.store.Get(fctx, session, key); gerr == nil && ok {
			return flight{entry: e, hit: true}, nil
		}
		e, err := fetch(fctx)
		if err != nil {
			return nil, err
		}
		if perr := c.store.Put(fctx, session, key, e); perr != nil {
			c.log.Warn("Cache write failed", "session_id", session, "key", key, "error", perr.Error())
		}
		return flight{entry: e}, nil
	})

	select {
	case <-ctx.Done():
		return Entry{}, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Entry{}, false, res.Err
		}
		f := res.Val.(flight)
		return f.entry, f.hit, nil
	}
}

func (c *Cache) Clear(ctx context.Context, session string) error {
	session = strings.TrimSpace(session)
	if session == "" {
		return nil
	}
	return c.store.Clear(ctx, session)
}
