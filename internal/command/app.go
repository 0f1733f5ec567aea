// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT
package command

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/gitforge/internal/cacheutil"
	"github.com/staranto/gitforge/internal/config"
	"github.com/staranto/gitforge/internal/meta"
	"github.com/staranto/gitforge/internal/remote"
	"github.com/staranto/gitforge/internal/version"
)

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	sd, _ := os.Getwd()

	// The arg[1] immediately following the binary (arg[0]) is the gitforge
	// subcommand and also represents the namespace key to be used when
	// retrieving config values. arg[1] could be -h/--help, so ignore it if it
	// appears to be a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	config.Config.Namespace = ns
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Debug("running without a config file")
		cfg = config.Config
	}

	dir, err := cacheutil.Dir()
	if err != nil {
		return nil, err
	}

	timeout, _ := config.GetDuration("http.timeout", remote.DefaultTimeout)
	ua, _ := config.GetString("http.user_agent", remote.DefaultUserAgent)

	meta := meta.Meta{
		Args:        args,
		Config:      cfg,
		Context:     ctx,
		StartingDir: sd,
		CacheDir:    dir,
		Fetcher:     remote.New(remote.WithTimeout(timeout), remote.WithUserAgent(ua)),
	}
	log.WithFields(log.Fields{"config": cfg.Source, "cache": dir, "ns": ns}).Debug("initialized")

	app := &cli.Command{
		Name:  "gitforge",
		Usage: "Add gitignore, issue, pull request and license templates to a repository",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "gitforge version info",
				HideDefault: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("version") {
				fmt.Fprintln(stdout(cmd), version.Full())
				return nil
			}
			return cli.ShowAppHelp(cmd)
		},
	}

	app.Commands = append(app.Commands,
		AddCommandBuilder(meta),
		ListCommandBuilder(meta),
		PreviewCommandBuilder(meta),
		CacheCommandBuilder(meta),
		CompletionCommandBuilder(meta),
	)

	// Make sure flags are sorted for the --help text.
	var sortFlags func(cmds []*cli.Command)
	sortFlags = func(cmds []*cli.Command) {
		for _, cmd := range cmds {
			sort.Slice(cmd.Flags, func(i, j int) bool {
				return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
			})
			sortFlags(cmd.Commands)
		}
	}
	sortFlags(app.Commands)

	return app, nil
}
