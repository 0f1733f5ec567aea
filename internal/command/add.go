// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/gitforge/internal/catalog"
	"github.com/staranto/gitforge/internal/meta"
	"github.com/staranto/gitforge/internal/progress"
	"github.com/staranto/gitforge/internal/scaffold"
)

// AddCommandAction returns the action for "add <kind>". It resolves and
// fetches each named template and writes it into the repository.
func AddCommandAction(k catalog.Kind) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		m := GetMeta(cmd)
		names := cmd.Args().Slice()
		all := k.Name == catalog.Gitignore.Name && cmd.Bool("all")

		if !all {
			if err := requireNames(k, names); err != nil {
				return err
			}
		}

		outputs := cmd.StringSlice("output")
		if len(outputs) > 0 && !all && len(outputs) != len(names) {
			return scaffold.ErrOutputMismatch
		}

		cat := m.Catalog(stderr(cmd))
		idx, err := cat.Index(ctx, k, cmd.Bool("update-cache"))
		if err != nil {
			return err
		}
		if all {
			names = idx.Keys()
		}

		templates, err := fetchTemplates(ctx, cat, k, idx, names, stderr(cmd))
		if err != nil {
			return err
		}

		opts := scaffold.Options{
			Dir:    cmd.String("dir"),
			Force:  cmd.Bool("force"),
			Append: k.Name == catalog.Gitignore.Name && cmd.Bool("append"),
		}

		var list []scaffold.Template
		for _, t := range templates {
			list = append(list, t.Template)
			if len(outputs) > 0 {
				opts.Outputs = append(opts.Outputs, outputs[t.pos])
			}
		}

		log.WithFields(log.Fields{"kind": k.Name, "templates": len(list)}).Debug("writing templates")

		switch k.Name {
		case catalog.Gitignore.Name:
			return addGitignore(cmd, list, opts)
		case catalog.License.Name:
			return addLicense(cmd, list, opts)
		default:
			return addFiles(cmd, k, list, opts)
		}
	}
}

func addGitignore(cmd *cli.Command, templates []scaffold.Template, opts scaffold.Options) error {
	written, err := scaffold.Gitignore(templates, opts)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(templates))
	for _, t := range templates {
		names = append(names, t.Name)
	}
	fmt.Fprintf(stdout(cmd), "✓ Added gitignore templates: %s to %s\n",
		strings.Join(names, ", "), strings.Join(written, ", "))
	return nil
}

func addFiles(cmd *cli.Command, k catalog.Kind, templates []scaffold.Template, opts scaffold.Options) error {
	write := scaffold.Issue
	if k.Name == catalog.PR.Name {
		write = scaffold.PR
	}

	written, err := write(templates, opts)
	for i, p := range written {
		fmt.Fprintf(stdout(cmd), "✓ Added %s %s to %s\n", k.Title, templates[i].Name, p)
	}
	return err
}

func addLicense(cmd *cli.Command, templates []scaffold.Template, opts scaffold.Options) error {
	params, err := scaffold.ParseParams(cmd.StringSlice("param"))
	if err != nil {
		return err
	}

	out := stdout(cmd)
	for i, t := range templates {
		body, report := scaffold.Fill(t.Body, params)

		if cmd.Bool("interactive") && len(report.Missing) > 0 {
			prompted, err := promptPlaceholders(report.Missing)
			if err != nil {
				return err
			}
			var more scaffold.FillReport
			body, more = scaffold.Fill(body, prompted)
			report.Filled = append(report.Filled, more.Filled...)
			report.Missing = more.Missing
		}

		for _, u := range report.Unused {
			fmt.Fprintf(out, "Warning: unused parameter '%s' for license %s\n", u, t.Name)
		}
		if len(report.Filled) > 0 {
			fmt.Fprintf(out, "Filled %s\n", strings.Join(report.Filled, ", "))
		}
		if len(report.Missing) > 0 {
			fmt.Fprintf(out, "Unfilled placeholders in %s: %s\n", t.Name, strings.Join(report.Missing, ", "))
		}

		templates[i].Body = body
	}

	written, err := scaffold.License(templates, opts)
	for i, p := range written {
		fmt.Fprintf(out, "License %s has been added to %s.\n", templates[i].Name, p)
	}
	return err
}

// promptPlaceholders asks for each missing placeholder. The year defaults to
// the current one.
func promptPlaceholders(missing []string) (map[string]string, error) {
	values := make(map[string]string, len(missing))
	for _, p := range missing {
		def := ""
		if p == "year" {
			def = strconv.Itoa(time.Now().Year())
		}
		v, err := progress.Prompt(fmt.Sprintf("Enter value for %s:", p), def)
		if err != nil {
			if errors.Is(err, progress.ErrNotInteractive) {
				return nil, fmt.Errorf("--interactive needs a terminal: %w", err)
			}
			return nil, err
		}
		if v != "" {
			values[p] = v
		}
	}
	return values, nil
}

// AddCommandBuilder constructs the "add" command and one subcommand per
// template kind.
func AddCommandBuilder(meta meta.Meta) *cli.Command {
	cmd := &cli.Command{
		Name:      "add",
		Usage:     "add templates to the repository",
		UsageText: "gitforge add <gitignore|issue|pr|license> [names...] [options]",
	}

	for _, k := range catalog.Kinds() {
		flags := NewWriteFlags("add", meta.Config.Source)
		usage := fmt.Sprintf("add one or more %ss", k.Title)

		switch k.Name {
		case catalog.Gitignore.Name:
			flags = append(flags,
				&cli.BoolFlag{
					Name:        "append",
					Aliases:     []string{"a"},
					Usage:       "append to an existing .gitignore",
					HideDefault: true,
				},
				&cli.BoolFlag{
					Name:        "all",
					Usage:       "add every available template",
					HideDefault: true,
				},
			)
		case catalog.License.Name:
			flags = append(flags,
				&cli.StringSliceFlag{
					Name:    "param",
					Aliases: []string{"p"},
					Usage:   "placeholder value as key=value (year, fullname, project, email, projecturl, description)",
				},
				&cli.BoolFlag{
					Name:        "interactive",
					Aliases:     []string{"i"},
					Usage:       "prompt for placeholders that are not filled",
					HideDefault: true,
				},
			)
		}

		cmd.Commands = append(cmd.Commands, (&KindCommandBuilder{
			Kind:      k,
			Verb:      "add",
			Usage:     usage,
			ArgsUsage: "[names...] [options]",
			Flags:     flags,
			Action:    AddCommandAction,
			Meta:      meta,
		}).Build())
	}

	return cmd
}
