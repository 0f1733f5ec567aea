// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/apex/log"
)

const fileExt = ".json"

// ParseError is returned when a cache file exists but cannot be decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse cache file: %s\n\nCaused by:\n    %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Info describes a persisted cache without decoding its payloads.
type Info struct {
	Name        string
	Path        string
	Size        int64
	Entries     int
	LastUpdated time.Time
}

// Manager maps cache names to <dir>/<name>.json. It holds nothing in memory
// between calls; every load and save round-trips through the file.
type Manager struct {
	dir string
}

// NewManager returns a Manager rooted at dir. The directory is not created
// until something is saved.
func NewManager(dir string) *Manager {
	return &Manager{dir: dir}
}

// Dir returns the directory the manager owns.
func (m *Manager) Dir() string {
	return m.dir
}

// EnsureDir creates the cache directory and its parents if needed.
func (m *Manager) EnsureDir() error {
	if err := os.MkdirAll(m.dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create cache directory %s: %w", m.dir, err)
	}
	return nil
}

// Path returns the file backing the named cache. No I/O is performed.
func (m *Manager) Path(name string) string {
	return filepath.Join(m.dir, name+fileExt)
}

// Exists reports whether the named cache has a backing file.
func (m *Manager) Exists(name string) bool {
	info, err := os.Stat(m.Path(name))
	return err == nil && !info.IsDir()
}

// Load reads the named cache. A missing file yields an empty cache.
func Load[T any](m *Manager, name string) (*Cache[T], error) {
	p := m.Path(name)

	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debugf("no cache file at %s", p)
			return New[T](), nil
		}
		return nil, fmt.Errorf("failed to read cache file %s: %w", p, err)
	}

	c := New[T]()
	if err := json.Unmarshal(b, c); err != nil {
		return nil, &ParseError{Path: p, Err: err}
	}
	if c.Entries == nil {
		c.Entries = make(map[string]*Entry[T])
	}
	for _, k := range c.Keys() {
		if c.Entries[k] == nil {
			return nil, &ParseError{Path: p, Err: fmt.Errorf("entry %q is null", k)}
		}
	}

	log.Debugf("loaded cache %s (%d entries)", name, c.Len())
	return c, nil
}

// Save writes c as the named cache, replacing any previous content. The write
// goes to a temp file in the same directory which is then renamed over the
// target.
func Save[T any](m *Manager, name string, c *Cache[T]) error {
	if err := m.EnsureDir(); err != nil {
		return err
	}

	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize cache %s: %w", name, err)
	}

	p := m.Path(name)
	tmp, err := os.CreateTemp(m.dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write cache file %s: %w", p, err)
	}
	tmpName := tmp.Name()

	// CreateTemp opens with 0600; caches are ordinary user files.
	err = tmp.Chmod(0o644)
	if err == nil {
		_, err = tmp.Write(b)
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write cache file %s: %w", p, err)
	}

	if err := os.Rename(tmpName, p); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write cache file %s: %w", p, err)
	}

	log.Debugf("saved cache %s (%d entries) to %s", name, c.Len(), p)
	return nil
}

// Clear removes the named cache file. A missing file is not an error.
func (m *Manager) Clear(name string) error {
	p := m.Path(name)
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove cache file %s: %w", p, err)
	}
	return nil
}

// ClearAll removes the whole cache directory.
func (m *Manager) ClearAll() error {
	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("failed to remove cache directory %s: %w", m.dir, err)
	}
	return nil
}

// Size returns the byte length of the named cache file, or 0 if there is none.
func (m *Manager) Size(name string) (int64, error) {
	p := m.Path(name)
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get cache file metadata %s: %w", p, err)
	}
	return info.Size(), nil
}

// List returns the sorted names of every cache file in the directory. A
// missing directory yields an empty list.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read cache directory %s: %w", m.dir, err)
	}

	names := []string{}
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		n := e.Name()
		if strings.HasPrefix(n, ".") || filepath.Ext(n) != fileExt {
			continue
		}
		names = append(names, strings.TrimSuffix(n, fileExt))
	}
	sort.Strings(names)
	return names, nil
}

// ShouldUpdate reports whether the named cache needs to be fetched again:
// either there is no file yet or the stored cache is older than maxAge.
// Payloads are decoded as T, so a file that Load[T] would reject is reported
// as a *ParseError here too.
func ShouldUpdate[T any](m *Manager, name string, maxAge time.Duration) (bool, error) {
	if !m.Exists(name) {
		log.Debugf("cache %s does not exist", name)
		return true, nil
	}

	c, err := Load[T](m, name)
	if err != nil {
		return false, err
	}

	stale := c.IsStale(maxAge)
	log.WithFields(log.Fields{
		"cache":        name,
		"last_updated": c.Metadata.LastUpdated,
		"stale":        stale,
	}).Debug("staleness check")
	return stale, nil
}

// Info loads the summary of the named cache.
func (m *Manager) Info(name string) (Info, error) {
	info := Info{Name: name, Path: m.Path(name)}

	size, err := m.Size(name)
	if err != nil {
		return info, err
	}
	info.Size = size

	c, err := Load[json.RawMessage](m, name)
	if err != nil {
		return info, err
	}
	info.Entries = c.Len()
	if c.Metadata.LastUpdated > 0 {
		info.LastUpdated = time.Unix(int64(c.Metadata.LastUpdated), 0) //nolint:gosec
	}
	return info, nil
}
