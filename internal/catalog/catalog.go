// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/apex/log"

	"github.com/staranto/gitforge/internal/cache"
	"github.com/staranto/gitforge/internal/progress"
	"github.com/staranto/gitforge/internal/resolve"
)

// Catalog ties a Manager and a Fetcher together into the refresh, load and
// lookup flow used by every command.
type Catalog struct {
	manager *cache.Manager
	fetcher Fetcher
	persist bool
	maxAge  time.Duration
	status  io.Writer
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithPersist turns saving and loading of indexes on or off. When off every
// Index call fetches.
func WithPersist(on bool) Option {
	return func(c *Catalog) { c.persist = on }
}

// WithMaxAge sets the max age used for kinds that do not carry their own.
func WithMaxAge(d time.Duration) Option {
	return func(c *Catalog) { c.maxAge = d }
}

// WithStatus sets where refresh notices are written. Defaults to stderr.
func WithStatus(w io.Writer) Option {
	return func(c *Catalog) { c.status = w }
}

// New returns a Catalog over m and f.
func New(m *cache.Manager, f Fetcher, opts ...Option) *Catalog {
	c := &Catalog{
		manager: m,
		fetcher: f,
		persist: true,
		maxAge:  30 * 24 * time.Hour,
		status:  os.Stderr,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Manager returns the underlying cache manager.
func (c *Catalog) Manager() *cache.Manager {
	return c.manager
}

// MaxAge returns the effective max age for k.
func (c *Catalog) MaxAge(k Kind) time.Duration {
	if k.MaxAge > 0 {
		return k.MaxAge
	}
	return c.maxAge
}

// Index returns the template index for k. A fresh persisted index is loaded;
// a stale, missing or unreadable one is rebuilt from the remote and saved.
// force always rebuilds. A failed rebuild leaves the persisted file as it was.
func (c *Catalog) Index(ctx context.Context, k Kind, force bool) (*cache.Cache[string], error) {
	if c.persist && !force {
		update, err := cache.ShouldUpdate[string](c.manager, k.CacheName, c.MaxAge(k))
		if err != nil {
			var pe *cache.ParseError
			if !errors.As(err, &pe) {
				return nil, err
			}
			log.WithError(err).WithField("cache", k.CacheName).Warn("discarding unreadable cache")
			update = true
		}
		if !update {
			log.WithField("cache", k.CacheName).Debug("using cached index")
			return cache.Load[string](c.manager, k.CacheName)
		}
	}

	idx, err := c.Refresh(ctx, k)
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// Refresh rebuilds the index for k from the remote and, when persisting,
// saves it.
func (c *Catalog) Refresh(ctx context.Context, k Kind) (*cache.Cache[string], error) {
	var idx *cache.Cache[string]
	err := progress.Run(fmt.Sprintf("Updating %s cache...", k.Title), func() error {
		var err error
		idx, err = k.build(ctx, k, c.fetcher)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update %s cache: %w", k.Title, err)
	}

	if c.persist {
		if err := cache.Save(c.manager, k.CacheName, idx); err != nil {
			return nil, err
		}
	}

	fmt.Fprintf(c.status, "%s cache updated (%d templates available).\n", capitalize(k.Title), idx.Len())
	return idx, nil
}

// Resolve finds the index payload for a user supplied template name. A
// trailing template extension is ignored.
func (c *Catalog) Resolve(k Kind, idx *cache.Cache[string], name string) (string, error) {
	return resolve.Template(k.TrimExt(name), idx, k.ListHint)
}

// Content resolves name against idx and fetches the template body.
func (c *Catalog) Content(ctx context.Context, k Kind, idx *cache.Cache[string], name string) (string, error) {
	data, err := c.Resolve(k, idx, name)
	if err != nil {
		return "", err
	}

	log.WithFields(log.Fields{"kind": k.Name, "name": name, "data": data}).Debug("fetching template")
	body, err := k.content(ctx, k, c.fetcher, data)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s %s: %w", k.Title, name, err)
	}
	return body, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
