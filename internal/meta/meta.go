// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package meta

import (
	"context"
	"io"
	"os"

	"github.com/staranto/gitforge/internal/cache"
	"github.com/staranto/gitforge/internal/cacheutil"
	"github.com/staranto/gitforge/internal/catalog"
	"github.com/staranto/gitforge/internal/config"
)

// Meta are the meta-options that are available on all or most commands. It
// is built once in InitApp and handed to every command builder.
type Meta struct {
	Args        []string
	Config      config.Type
	Context     context.Context
	StartingDir string

	// CacheDir is resolved once at startup.
	CacheDir string
	Fetcher  catalog.Fetcher
}

// Manager returns a cache manager rooted at CacheDir.
func (m Meta) Manager() *cache.Manager {
	return cache.NewManager(m.CacheDir)
}

// Catalog returns a catalog over CacheDir and Fetcher. Refresh notices go to
// status.
func (m Meta) Catalog(status io.Writer) *catalog.Catalog {
	if status == nil {
		status = os.Stderr
	}
	return catalog.New(m.Manager(), m.Fetcher,
		catalog.WithPersist(cacheutil.Enabled()),
		catalog.WithMaxAge(cacheutil.MaxAge()),
		catalog.WithStatus(status),
	)
}
