// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/gitforge/internal/cache"
	"github.com/staranto/gitforge/internal/catalog"
	"github.com/staranto/gitforge/internal/meta"
	"github.com/staranto/gitforge/internal/resolve"
	"github.com/staranto/gitforge/internal/scaffold"
)

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// stdout returns the writer for command results.
func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// stderr returns the writer for notices and per-item errors.
func stderr(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

// KindCommandBuilder constructs the per-kind leaf under add, list and
// preview. Every leaf shares the same metadata wiring.
type KindCommandBuilder struct {
	Kind      catalog.Kind
	Verb      string
	Usage     string
	ArgsUsage string
	Flags     []cli.Flag
	Action    func(catalog.Kind) cli.ActionFunc
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (kcb *KindCommandBuilder) Build() *cli.Command {
	return &cli.Command{
		Name:      kcb.Kind.Name,
		Aliases:   kindAliases(kcb.Kind),
		Usage:     kcb.Usage,
		UsageText: fmt.Sprintf("gitforge %s %s %s", kcb.Verb, kcb.Kind.Name, kcb.ArgsUsage),
		Metadata: map[string]any{
			"meta": kcb.Meta,
		},
		Flags:  append(kcb.Flags, updateCacheFlag()),
		Action: kcb.Action(kcb.Kind),
	}
}

func kindAliases(k catalog.Kind) []string {
	switch k.Name {
	case "gitignore":
		return []string{"gitignores"}
	case "issue":
		return []string{"issues", "issue-template"}
	case "pr":
		return []string{"prs", "pr-template"}
	case "license":
		return []string{"licenses"}
	}
	return nil
}

// fetched is a template body paired with the position of its name in the
// requested list.
type fetched struct {
	scaffold.Template
	pos int
}

// fetchTemplates resolves and fetches each name. Names that resolve to
// nothing are reported on w and skipped; any other failure aborts. It fails
// when no name could be fetched.
func fetchTemplates(
	ctx context.Context,
	cat *catalog.Catalog,
	k catalog.Kind,
	idx *cache.Cache[string],
	names []string,
	w io.Writer,
) ([]fetched, error) {
	var out []fetched
	for i, name := range names {
		body, err := cat.Content(ctx, k, idx, name)
		if err != nil {
			if errors.Is(err, resolve.ErrNotFound) {
				log.WithField("name", name).Debug("skipping unknown template")
				fmt.Fprintf(w, "Error: %v\n", err)
				continue
			}
			return nil, err
		}
		out = append(out, fetched{
			Template: scaffold.Template{Name: k.TrimExt(name), Body: body},
			pos:      i,
		})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no valid %ss given, try `%s`", k.Title, k.ListHint)
	}
	return out, nil
}

// requireNames fails when no template names were given.
func requireNames(k catalog.Kind, names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("no %s specified, try `%s`", k.Title, k.ListHint)
	}
	return nil
}
