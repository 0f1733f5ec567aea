// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package version

import "fmt"

// Version and Commit are set at build time with -ldflags.
var (
	Version = "0.1.0"
	Commit  = "dev"
)

// Full returns the version line printed by --version.
func Full() string {
	return fmt.Sprintf("gitforge %s (%s)", Version, Commit)
}
