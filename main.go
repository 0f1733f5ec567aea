// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/gitforge/internal/cache"
	"github.com/staranto/gitforge/internal/cacheutil"
	"github.com/staranto/gitforge/internal/command"
	"github.com/staranto/gitforge/internal/config"
	mylog "github.com/staranto/gitforge/internal/log"
	"github.com/staranto/gitforge/internal/version"
)

var ctx = context.Background()

func main() {
	os.Exit(realMain())
}

func realMain() int {
	mylog.InitLogger()

	args := os.Args

	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "No command specified.")
		args = append(args, "--help")
	} else {
		args = mangleArguments(args)
	}

	// Short-circuit --version/-v.
	if len(args) == 2 && (args[1] == "--version" || args[1] == "-v") {
		fmt.Println(version.Full())
		return 0
	}

	// Best-effort: pre-create cache directory when caching is enabled.
	if cacheutil.Enabled() {
		if dir, err := cacheutil.Dir(); err == nil {
			if err := cache.NewManager(dir).EnsureDir(); err != nil {
				// Non-fatal: print to stderr and continue.
				fmt.Fprintln(os.Stderr, err)
			}
		}
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	return 0
}

// mangleArguments expands a named set of default arguments from the config
// file. "gitforge add gitignore @team rust" inserts the list stored at
// add.team, and without an @set the list at add.defaults is used. The set is
// inserted after the template kind so the flags land on the leaf command.
func mangleArguments(args []string) []string {
	for _, a := range args {
		if a == "--help" || a == "-h" {
			return args
		}
	}

	idx := 2
	if len(args) > 2 && !strings.HasPrefix(args[2], "-") && !strings.HasPrefix(args[2], "@") {
		idx = 3
	}

	set := "defaults"
	working := make([]string, 0, len(args))
	for _, a := range args {
		if strings.HasPrefix(a, "@") && len(a) > 1 {
			set = a[1:]
			continue
		}
		working = append(working, a)
	}
	if idx > len(working) {
		idx = len(working)
	}

	setArgs, _ := config.GetStringSlice(working[1] + "." + set)
	var expanded []string
	for _, arg := range setArgs {
		expanded = append(expanded, strings.Fields(arg)...)
	}

	out := make([]string, 0, len(working)+len(expanded))
	out = append(out, working[:idx]...)
	out = append(out, expanded...)
	out = append(out, working[idx:]...)

	log.Debugf("set=%s, args=%v", set, out)
	return out
}
