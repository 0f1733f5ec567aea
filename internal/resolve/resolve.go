// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/gitforge/internal/cache"
)

// ErrNotFound matches any NotFoundError via errors.Is.
var ErrNotFound = errors.New("template not found")

// NotFoundError reports a name that matched nothing in the index.
type NotFoundError struct {
	// Name is the name exactly as the user typed it.
	Name string
	// Hint is the command that lists what is available.
	Hint string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("Template '%s' not found in cache.", e.Name)
	if e.Hint != "" {
		msg += fmt.Sprintf(" Try `%s` to view available templates.", e.Hint)
	}
	return msg
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Template finds the payload in c that best matches name. Lookups are tried in
// a fixed order and the first hit wins:
//
//  1. the lower-cased name as is
//  2. the lower-cased name with every '/' replaced by '-'
//  3. the part after the last '/' ("Global/Windows" -> "windows")
//  4. a scan of every key (sorted), lower-cased, accepting equality with 1 or
//     2, the key ending with 1, or 1 ending with the key
func Template(name string, c *cache.Cache[string], hint string) (string, error) {
	normalized := strings.ToLower(name)
	if strings.TrimSpace(normalized) == "" || c == nil {
		return "", &NotFoundError{Name: name, Hint: hint}
	}
	dashed := strings.ReplaceAll(normalized, "/", "-")

	for _, key := range []string{normalized, dashed} {
		if data, ok := c.Get(key); ok {
			log.Debugf("resolved %q by exact key %q", name, key)
			return data, nil
		}
	}

	if i := strings.LastIndex(normalized, "/"); i >= 0 {
		bare := normalized[i+1:]
		if data, ok := c.Get(bare); ok {
			log.Debugf("resolved %q by bare name %q", name, bare)
			return data, nil
		}
	}

	for _, key := range c.Keys() {
		lower := strings.ToLower(key)
		if lower == normalized ||
			lower == dashed ||
			strings.HasSuffix(lower, normalized) ||
			strings.HasSuffix(normalized, lower) {
			log.Debugf("resolved %q by scan to key %q", name, key)
			data, _ := c.Get(key)
			return data, nil
		}
	}

	return "", &NotFoundError{Name: name, Hint: hint}
}
