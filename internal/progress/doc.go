// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package progress draws spinners and single line prompts on the terminal.
package progress
