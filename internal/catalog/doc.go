// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package catalog knows where each family of templates lives remotely, builds
// and persists their indexes, and fetches template bodies.
package catalog
