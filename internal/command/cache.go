// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/gitforge/internal/cache"
	"github.com/staranto/gitforge/internal/cacheutil"
	"github.com/staranto/gitforge/internal/catalog"
	"github.com/staranto/gitforge/internal/meta"
	"github.com/staranto/gitforge/internal/output"
)

// cacheName maps a kind name or alias to its cache name. Anything else is
// taken as a cache name as is.
func cacheName(arg string) string {
	if k, ok := catalog.Lookup(arg); ok {
		return k.CacheName
	}
	return arg
}

// CacheListAction lists every persisted cache with its size, entry count
// and age.
func CacheListAction(ctx context.Context, cmd *cli.Command) error {
	mgr := GetMeta(cmd).Manager()

	names, err := mgr.List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintf(stderr(cmd), "No caches in %s.\n", mgr.Dir())
		return nil
	}

	rows := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		row := map[string]interface{}{"name": name}
		info, err := mgr.Info(name)
		if err != nil {
			var pe *cache.ParseError
			if !errors.As(err, &pe) {
				return err
			}
			log.WithError(err).Warn("unreadable cache")
			row["status"] = "corrupt"
		} else {
			row["entries"] = info.Entries
			row["size"] = humanize.Bytes(uint64(info.Size)) //nolint:gosec
			row["updated"] = humanize.Time(info.LastUpdated)
			row["status"] = staleness(info)
		}
		rows = append(rows, row)
	}

	return output.SliceDiceSpit(stdout(cmd), rows,
		[]string{"name", "entries", "size", "updated", "status"}, output.OptionsFrom(cmd))
}

func staleness(info cache.Info) string {
	if info.LastUpdated.IsZero() {
		return "empty"
	}
	if time.Since(info.LastUpdated) > cacheutil.MaxAge() {
		return "stale"
	}
	return "fresh"
}

// CacheInfoAction prints the details of one cache.
func CacheInfoAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() == 0 {
		return errors.New("cache name required, try `gitforge cache list`")
	}
	mgr := GetMeta(cmd).Manager()
	name := cacheName(cmd.Args().First())

	if !mgr.Exists(name) {
		return fmt.Errorf("cache %s does not exist", name)
	}
	info, err := mgr.Info(name)
	if err != nil {
		return err
	}

	out := stdout(cmd)
	fmt.Fprintf(out, "Name:     %s\n", info.Name)
	fmt.Fprintf(out, "Path:     %s\n", info.Path)
	fmt.Fprintf(out, "Size:     %s (%d bytes)\n", humanize.Bytes(uint64(info.Size)), info.Size) //nolint:gosec
	fmt.Fprintf(out, "Entries:  %d\n", info.Entries)
	if !info.LastUpdated.IsZero() {
		fmt.Fprintf(out, "Updated:  %s (%s)\n", info.LastUpdated.Format(time.RFC3339), humanize.Time(info.LastUpdated))
	}
	fmt.Fprintf(out, "Status:   %s\n", staleness(info))
	return nil
}

// CachePathAction prints the cache directory, or the file of one cache.
func CachePathAction(ctx context.Context, cmd *cli.Command) error {
	mgr := GetMeta(cmd).Manager()
	if cmd.NArg() == 0 {
		fmt.Fprintln(stdout(cmd), mgr.Dir())
		return nil
	}
	fmt.Fprintln(stdout(cmd), mgr.Path(cacheName(cmd.Args().First())))
	return nil
}

// CacheClearAction removes one cache, or the whole directory with --all.
func CacheClearAction(ctx context.Context, cmd *cli.Command) error {
	mgr := GetMeta(cmd).Manager()

	if cmd.Bool("all") {
		if err := mgr.ClearAll(); err != nil {
			return err
		}
		fmt.Fprintf(stdout(cmd), "Cleared all caches in %s.\n", mgr.Dir())
		return nil
	}

	if cmd.NArg() == 0 {
		return errors.New("cache name or --all required")
	}

	for _, arg := range cmd.Args().Slice() {
		name := cacheName(arg)
		if err := mgr.Clear(name); err != nil {
			return err
		}
		fmt.Fprintf(stdout(cmd), "Cleared %s.\n", name)
	}
	return nil
}

// CacheRefreshAction rebuilds the index of each named kind, or all kinds
// when none is named. --diff prints what changed.
func CacheRefreshAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	cat := m.Catalog(stderr(cmd))

	var kinds []catalog.Kind
	if cmd.NArg() == 0 {
		kinds = catalog.Kinds()
	}
	for _, arg := range cmd.Args().Slice() {
		k, ok := catalog.Lookup(arg)
		if !ok {
			return fmt.Errorf("unknown template kind %q", arg)
		}
		kinds = append(kinds, k)
	}

	for _, k := range kinds {
		var before *cache.Cache[string]
		if cmd.Bool("diff") {
			var err error
			if before, err = cache.Load[string](cat.Manager(), k.CacheName); err != nil {
				log.WithError(err).Warn("diffing against an empty index")
				before = cache.New[string]()
			}
		}

		after, err := cat.Refresh(ctx, k)
		if err != nil {
			return err
		}

		if before == nil {
			continue
		}
		diff, err := catalog.Diff(before, after)
		if err != nil {
			return err
		}
		if diff == "" {
			fmt.Fprintf(stdout(cmd), "No changes to %s index.\n", k.Title)
			continue
		}
		fmt.Fprint(stdout(cmd), diff)
	}
	return nil
}

// CacheCommandBuilder constructs the "cache" command and its subcommands.
func CacheCommandBuilder(meta meta.Meta) *cli.Command {
	md := map[string]any{"meta": meta}

	return &cli.Command{
		Name:      "cache",
		Usage:     "inspect and manage the template index cache",
		UsageText: "gitforge cache <list|info|path|clear|refresh> [options]",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Aliases:   []string{"ls"},
				Usage:     "list cached indexes",
				UsageText: "gitforge cache list [options]",
				Metadata:  md,
				Flags:     NewGlobalFlags("cache", meta.Config.Source),
				Action:    CacheListAction,
			},
			{
				Name:      "info",
				Usage:     "show details of a cached index",
				UsageText: "gitforge cache info <name>",
				Metadata:  md,
				Action:    CacheInfoAction,
			},
			{
				Name:      "path",
				Usage:     "print the cache directory or the file of one index",
				UsageText: "gitforge cache path [name]",
				Metadata:  md,
				Action:    CachePathAction,
			},
			{
				Name:      "clear",
				Usage:     "remove cached indexes",
				UsageText: "gitforge cache clear <name...> | --all",
				Metadata:  md,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Usage: "remove the whole cache directory", HideDefault: true},
				},
				Action: CacheClearAction,
			},
			{
				Name:      "refresh",
				Usage:     "fetch template indexes again",
				UsageText: "gitforge cache refresh [gitignore|issue|pr|license...] [--diff]",
				Metadata:  md,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "diff", Usage: "show what changed", HideDefault: true},
				},
				Action: CacheRefreshAction,
			},
		},
	}
}
