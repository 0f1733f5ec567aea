// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"
	"github.com/mitchellh/go-homedir"

	"github.com/staranto/gitforge/internal/config"
)

// DefaultMaxAge is how long a template index is trusted before it is fetched
// again.
const DefaultMaxAge = 30 * 24 * time.Hour

// ErrNoHome is returned when the home directory cannot be determined.
var ErrNoHome = errors.New("unable to determine home directory")

// Dir resolves the cache directory.
// Precedence:
//  1. GITFORGE_CACHE_DIR, if set and non-empty
//  2. <home>/.local/share/gitforge
//
// It is meant to be called once at startup and the result handed to
// cache.NewManager.
func Dir() (string, error) {
	if c, ok := os.LookupEnv("GITFORGE_CACHE_DIR"); ok && c != "" {
		return c, nil
	}

	home, err := homedir.Dir()
	if err != nil || home == "" {
		if err == nil {
			err = errors.New("empty home directory")
		}
		return "", fmt.Errorf("%w: %v", ErrNoHome, err)
	}

	return filepath.Join(home, ".local", "share", "gitforge"), nil
}

// Enabled returns true unless GITFORGE_CACHE explicitly disables it
// ("0"/"false") or the config file sets cache.enabled to false.
func Enabled() bool {
	if enabled, ok := os.LookupEnv("GITFORGE_CACHE"); ok {
		return enabled == "" || (enabled != "0" && enabled != "false")
	}
	if v, err := config.GetBool("cache.enabled"); err == nil {
		return v
	}
	return true
}

// MaxAge returns the configured index lifetime, cache.max_age, falling back to
// DefaultMaxAge.
func MaxAge() time.Duration {
	d, err := config.GetDuration("cache.max_age", DefaultMaxAge)
	if err != nil || d <= 0 {
		log.Debugf("using default cache max age %s", DefaultMaxAge)
		return DefaultMaxAge
	}
	return d
}
