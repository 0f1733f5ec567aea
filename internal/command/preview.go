// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/gitforge/internal/catalog"
	"github.com/staranto/gitforge/internal/meta"
	"github.com/staranto/gitforge/internal/scaffold"
)

// PreviewCommandAction returns the action for "preview <kind>". Bodies are
// written to stdout; several templates are separated by a header line.
func PreviewCommandAction(k catalog.Kind) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		m := GetMeta(cmd)
		names := cmd.Args().Slice()
		if err := requireNames(k, names); err != nil {
			return err
		}

		cat := m.Catalog(stderr(cmd))
		idx, err := cat.Index(ctx, k, cmd.Bool("update-cache"))
		if err != nil {
			return err
		}

		templates, err := fetchTemplates(ctx, cat, k, idx, names, stderr(cmd))
		if err != nil {
			return err
		}

		var params map[string]string
		if k.Name == catalog.License.Name {
			if params, err = scaffold.ParseParams(cmd.StringSlice("param")); err != nil {
				return err
			}
		}

		out := stdout(cmd)
		for i, t := range templates {
			body := t.Body
			if len(params) > 0 {
				body, _ = scaffold.Fill(body, params)
			}

			if len(templates) > 1 {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "===== %s =====\n", t.Name)
			}
			fmt.Fprint(out, body)
			if !strings.HasSuffix(body, "\n") {
				fmt.Fprintln(out)
			}
		}
		return nil
	}
}

// PreviewCommandBuilder constructs the "preview" command and one subcommand
// per template kind.
func PreviewCommandBuilder(meta meta.Meta) *cli.Command {
	cmd := &cli.Command{
		Name:      "preview",
		Aliases:   []string{"show"},
		Usage:     "print templates without writing them",
		UsageText: "gitforge preview <gitignore|issue|pr|license> <names...> [options]",
	}

	for _, k := range catalog.Kinds() {
		var flags []cli.Flag
		if k.Name == catalog.License.Name {
			flags = append(flags, &cli.StringSliceFlag{
				Name:    "param",
				Aliases: []string{"p"},
				Usage:   "placeholder value as key=value",
			})
		}

		cmd.Commands = append(cmd.Commands, (&KindCommandBuilder{
			Kind:      k,
			Verb:      "preview",
			Usage:     fmt.Sprintf("print one or more %ss", k.Title),
			ArgsUsage: "<names...> [options]",
			Flags:     flags,
			Action:    PreviewCommandAction,
			Meta:      meta,
		}).Build())
	}

	return cmd
}
