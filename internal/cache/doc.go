// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cache provides a generic keyed store of timestamped entries and a
// Manager that persists named stores as JSON files in a single directory. It
// is used to avoid repeated remote index fetches between invocations.
package cache
