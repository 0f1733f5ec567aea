// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package scaffold writes fetched templates into a repository.
package scaffold
