// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package resolve maps a loosely typed template name onto an entry of a cached
// template index whose keys are not consistently cased or prefixed.
package resolve
