// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"sort"
	"time"
)

// nowFunc is the clock used for entry timestamps and staleness checks.
var nowFunc = time.Now

// Metadata summarizes a Cache. It is recomputed after every mutation.
type Metadata struct {
	LastUpdated  uint64 `json:"last_updated"`
	TotalEntries int    `json:"total_entries"`
}

// Entry is a single cached payload along with the time it was written and
// free-form tags.
type Entry[T any] struct {
	Data      T                 `json:"data"`
	Timestamp uint64            `json:"timestamp"`
	Metadata  map[string]string `json:"metadata"`
}

// Item is a key/payload pair returned by FilterByMetadata.
type Item[T any] struct {
	Key  string
	Data T
}

// Cache is an in-memory keyed store with TTL semantics. It knows nothing about
// persistence; see Manager for that.
type Cache[T any] struct {
	Metadata Metadata             `json:"metadata"`
	Entries  map[string]*Entry[T] `json:"entries"`
}

// New returns an empty cache that has never been updated.
func New[T any]() *Cache[T] {
	return &Cache[T]{
		Entries: make(map[string]*Entry[T]),
	}
}

// Insert stores data under key with no tags, replacing any existing entry.
func (c *Cache[T]) Insert(key string, data T) {
	c.InsertWithMetadata(key, data, nil)
}

// InsertWithMetadata stores data under key with the given tags, replacing any
// existing entry. The entry is stamped with the current time.
func (c *Cache[T]) InsertWithMetadata(key string, data T, metadata map[string]string) {
	if c.Entries == nil {
		c.Entries = make(map[string]*Entry[T])
	}

	tags := make(map[string]string, len(metadata))
	for k, v := range metadata {
		tags[k] = v
	}

	c.Entries[key] = &Entry[T]{
		Data:      data,
		Timestamp: now(),
		Metadata:  tags,
	}
	c.updateMetadata()
}

// Get returns the payload stored under key. A miss is not an error.
func (c *Cache[T]) Get(key string) (T, bool) {
	if entry, ok := c.Entries[key]; ok {
		return entry.Data, true
	}
	var zero T
	return zero, false
}

// GetEntry returns the full entry stored under key.
func (c *Cache[T]) GetEntry(key string) (*Entry[T], bool) {
	entry, ok := c.Entries[key]
	return entry, ok
}

// Contains reports whether key is present.
func (c *Cache[T]) Contains(key string) bool {
	_, ok := c.Entries[key]
	return ok
}

// Remove deletes key and returns the entry that was there, if any. The summary
// is refreshed whether or not anything was removed.
func (c *Cache[T]) Remove(key string) (*Entry[T], bool) {
	entry, ok := c.Entries[key]
	delete(c.Entries, key)
	c.updateMetadata()
	return entry, ok
}

// Keys returns a sorted snapshot of all keys.
func (c *Cache[T]) Keys() []string {
	keys := make([]string, 0, len(c.Entries))
	for k := range c.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of entries.
func (c *Cache[T]) Len() int {
	return len(c.Entries)
}

// IsEmpty reports whether the cache has no entries.
func (c *Cache[T]) IsEmpty() bool {
	return len(c.Entries) == 0
}

// Clear drops every entry.
func (c *Cache[T]) Clear() {
	c.Entries = make(map[string]*Entry[T])
	c.updateMetadata()
}

// IsStale reports whether the cache was last updated more than maxAge ago.
// Timestamps are whole seconds, so maxAge is truncated to seconds; a
// sub-second maxAge behaves as 0. A last-updated time in the future is never
// stale.
func (c *Cache[T]) IsStale(maxAge time.Duration) bool {
	return expired(c.Metadata.LastUpdated, maxAge)
}

// IsEntryStale reports whether the entry under key is older than maxAge,
// truncated to whole seconds as in IsStale. Missing entries are always stale.
func (c *Cache[T]) IsEntryStale(key string, maxAge time.Duration) bool {
	entry, ok := c.Entries[key]
	if !ok {
		return true
	}
	return expired(entry.Timestamp, maxAge)
}

// FilterByMetadata returns the entries whose tag exactly equals value, sorted
// by key. Entries without the tag are excluded.
func (c *Cache[T]) FilterByMetadata(tag, value string) []Item[T] {
	var items []Item[T]
	for _, key := range c.Keys() {
		entry := c.Entries[key]
		if v, ok := entry.Metadata[tag]; ok && v == value {
			items = append(items, Item[T]{Key: key, Data: entry.Data})
		}
	}
	return items
}

func (c *Cache[T]) updateMetadata() {
	c.Metadata.LastUpdated = now()
	c.Metadata.TotalEntries = len(c.Entries)
}

// expired compares the age of stamp against maxAge using saturating
// subtraction so clock skew reads as fresh.
func expired(stamp uint64, maxAge time.Duration) bool {
	current := now()
	if stamp >= current {
		return false
	}
	limit := uint64(0)
	if maxAge > 0 {
		limit = uint64(maxAge / time.Second)
	}
	return current-stamp > limit
}

func now() uint64 {
	sec := nowFunc().Unix()
	if sec < 0 {
		return 0
	}
	return uint64(sec)
}
