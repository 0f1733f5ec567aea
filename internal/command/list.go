// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/gitforge/internal/cache"
	"github.com/staranto/gitforge/internal/catalog"
	"github.com/staranto/gitforge/internal/meta"
	"github.com/staranto/gitforge/internal/output"
)

// listColumns are the emitted columns per kind.
var listColumns = map[string][]string{
	"gitignore": {"name", "category", "path"},
	"issue":     {"name", "file"},
	"pr":        {"name", "file"},
	"license":   {"name", "spdx_id", "title", "featured"},
}

// ListCommandAction returns the action for "list <kind>".
func ListCommandAction(k catalog.Kind) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		m := GetMeta(cmd)

		idx, err := m.Catalog(stderr(cmd)).Index(ctx, k, cmd.Bool("update-cache"))
		if err != nil {
			return err
		}

		items := selectItems(k, idx, cmd)
		rows := make([]map[string]interface{}, 0, len(items))
		for _, it := range items {
			rows = append(rows, listRow(k, idx, it))
		}

		if len(rows) == 0 {
			fmt.Fprintf(stderr(cmd), "No %ss found.\n", k.Title)
			return nil
		}

		return output.SliceDiceSpit(stdout(cmd), rows, listColumns[k.Name], output.OptionsFrom(cmd))
	}
}

// selectItems applies the kind specific filter flags.
func selectItems(k catalog.Kind, idx *cache.Cache[string], cmd *cli.Command) []cache.Item[string] {
	var items []cache.Item[string]

	switch k.Name {
	case catalog.Gitignore.Name:
		for _, category := range []string{"root", "global", "community"} {
			if cmd.Bool(category) {
				items = append(items, idx.FilterByMetadata(catalog.TagCategory, category)...)
			}
		}
		if cmd.Bool("root") || cmd.Bool("global") || cmd.Bool("community") {
			return items
		}
	case catalog.License.Name:
		if cmd.Bool("popular") {
			items = idx.FilterByMetadata(catalog.TagFeatured, "true")
		} else {
			items = allItems(idx)
		}
		if term := strings.ToLower(cmd.String("search")); term != "" {
			var matched []cache.Item[string]
			for _, it := range items {
				e, _ := idx.GetEntry(it.Key)
				if strings.Contains(it.Key, term) || strings.Contains(strings.ToLower(e.Metadata[catalog.TagName]), term) {
					matched = append(matched, it)
				}
			}
			items = matched
		}
		return items
	}

	return allItems(idx)
}

func allItems(idx *cache.Cache[string]) []cache.Item[string] {
	keys := idx.Keys()
	items := make([]cache.Item[string], 0, len(keys))
	for _, key := range keys {
		data, _ := idx.Get(key)
		items = append(items, cache.Item[string]{Key: key, Data: data})
	}
	return items
}

func listRow(k catalog.Kind, idx *cache.Cache[string], it cache.Item[string]) map[string]interface{} {
	e, _ := idx.GetEntry(it.Key)
	var md map[string]string
	if e != nil {
		md = e.Metadata
	}

	switch k.Name {
	case catalog.Gitignore.Name:
		return map[string]interface{}{"name": it.Key, "category": md[catalog.TagCategory], "path": it.Data}
	case catalog.License.Name:
		return map[string]interface{}{
			"name":     it.Key,
			"spdx_id":  md[catalog.TagSPDX],
			"title":    md[catalog.TagName],
			"featured": md[catalog.TagFeatured],
		}
	default:
		return map[string]interface{}{"name": it.Key, "file": it.Data}
	}
}

// ListCommandBuilder constructs the "list" command and one subcommand per
// template kind.
func ListCommandBuilder(meta meta.Meta) *cli.Command {
	cmd := &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "list available templates",
		UsageText: "gitforge list <gitignore|issue|pr|license> [options]",
	}

	for _, k := range catalog.Kinds() {
		flags := NewGlobalFlags("list", meta.Config.Source)

		switch k.Name {
		case catalog.Gitignore.Name:
			flags = append(flags,
				&cli.BoolFlag{Name: "root", Usage: "only top level templates", HideDefault: true},
				&cli.BoolFlag{Name: "global", Aliases: []string{"g"}, Usage: "only Global templates", HideDefault: true},
				&cli.BoolFlag{Name: "community", Usage: "only community templates", HideDefault: true},
			)
		case catalog.License.Name:
			flags = append(flags,
				&cli.BoolFlag{Name: "popular", Aliases: []string{"p"}, Usage: "only licenses featured by GitHub", HideDefault: true},
				&cli.StringFlag{Name: "search", Usage: "only licenses whose key or name contains the term"},
			)
		}

		cmd.Commands = append(cmd.Commands, (&KindCommandBuilder{
			Kind:      k,
			Verb:      "list",
			Usage:     fmt.Sprintf("list available %ss", k.Title),
			ArgsUsage: "[options]",
			Flags:     flags,
			Action:    ListCommandAction,
			Meta:      meta,
		}).Build())
	}

	return cmd
}
