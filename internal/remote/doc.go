// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package remote fetches template indexes and template bodies over HTTP.
package remote
