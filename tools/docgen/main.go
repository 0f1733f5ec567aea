// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"
	"github.com/urfave/cli/v3"

	"github.com/staranto/gitforge/internal/command"
)

// Minimal doc generator:
// - Walks the gitforge command tree
// - Generates:
//   - docs/man/share/man1/gitforge-<cmd>.1 via md2man
//   - docs/tldr/gitforge-<cmd>.md from the usage line of every subcommand

func main() {
	var (
		repoRoot           string
		writeOnlyIfChanged bool
	)

	flag.StringVar(&repoRoot, "root", ".", "repo root (default current dir)")
	flag.BoolVar(&writeOnlyIfChanged, "only-if-changed", true, "only write files if content changed")
	flag.Parse()

	manOutDir := filepath.Join(repoRoot, "docs", "man", "share", "man1")
	tldrOutDir := filepath.Join(repoRoot, "docs", "tldr")

	if err := os.MkdirAll(manOutDir, 0o755); err != nil {
		fatalf("creating man output dir: %v", err)
	}
	if err := os.MkdirAll(tldrOutDir, 0o755); err != nil {
		fatalf("creating tldr output dir: %v", err)
	}

	app, err := command.InitApp(context.Background(), []string{"gitforge"})
	if err != nil {
		fatalf("building command tree: %v", err)
	}

	var processed int
	for _, cmd := range app.Commands {
		if cmd.Hidden {
			continue
		}

		md := buildMarkdown(cmd)
		manPath := filepath.Join(manOutDir, fmt.Sprintf("gitforge-%s.1", cmd.Name))
		if err := writeFileIfChanged(manPath, md2man.Render([]byte(md)), writeOnlyIfChanged); err != nil {
			fatalf("writing man page for %s: %v", cmd.Name, err)
		}

		tldr := buildTLDR(cmd)
		tldrPath := filepath.Join(tldrOutDir, fmt.Sprintf("gitforge-%s.md", cmd.Name))
		if err := writeFileIfChanged(tldrPath, []byte(tldr), writeOnlyIfChanged); err != nil {
			fatalf("writing TLDR for %s: %v", cmd.Name, err)
		}

		processed++
	}

	if processed == 0 {
		fatalf("no commands found")
	}
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}

func writeFileIfChanged(path string, new []byte, onlyIfChanged bool) error {
	if !onlyIfChanged {
		return os.WriteFile(path, new, 0o644)
	}
	old, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return os.WriteFile(path, new, 0o644)
		}
		return err
	}
	if bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(new)) {
		return nil
	}
	return os.WriteFile(path, new, 0o644)
}

// buildMarkdown renders one top level command in the go-md2man title block
// format followed by a section per subcommand.
func buildMarkdown(cmd *cli.Command) string {
	var b strings.Builder
	fmt.Fprintf(&b, "gitforge-%s 1 \"\" \"gitforge\" \"User Commands\"\n", cmd.Name)
	b.WriteString("==================================================\n\n")

	b.WriteString("# NAME\n\n")
	fmt.Fprintf(&b, "gitforge-%s - %s\n\n", cmd.Name, cmd.Usage)

	b.WriteString("# SYNOPSIS\n\n")
	fmt.Fprintf(&b, "`%s`\n\n", usageLine(cmd))

	if len(cmd.Aliases) > 0 {
		fmt.Fprintf(&b, "Aliases: %s\n\n", strings.Join(cmd.Aliases, ", "))
	}

	writeFlags(&b, cmd.Flags)

	if len(cmd.Commands) > 0 {
		b.WriteString("# COMMANDS\n\n")
		for _, sub := range cmd.Commands {
			fmt.Fprintf(&b, "## %s\n\n", sub.Name)
			fmt.Fprintf(&b, "%s\n\n", sub.Usage)
			fmt.Fprintf(&b, "`%s`\n\n", usageLine(sub))
			writeFlags(&b, sub.Flags)
		}
	}

	b.WriteString("# SEE ALSO\n\n")
	b.WriteString("gitforge(1)\n")
	return b.String()
}

func writeFlags(b *strings.Builder, flags []cli.Flag) {
	if len(flags) == 0 {
		return
	}
	b.WriteString("**Options**\n\n")
	for _, f := range flags {
		names := f.Names()
		parts := make([]string, 0, len(names))
		for _, n := range names {
			if len(n) == 1 {
				parts = append(parts, "-"+n)
			} else {
				parts = append(parts, "--"+n)
			}
		}
		usage := ""
		if df, ok := f.(interface{ GetUsage() string }); ok {
			usage = df.GetUsage()
		}
		fmt.Fprintf(b, "**%s**\n: %s\n\n", strings.Join(parts, ", "), usage)
	}
}

func usageLine(cmd *cli.Command) string {
	if cmd.UsageText != "" {
		return cmd.UsageText
	}
	return "gitforge " + cmd.Name
}

func buildTLDR(cmd *cli.Command) string {
	var b strings.Builder
	b.WriteString("# gitforge-" + cmd.Name + "\n\n")
	if cmd.Usage != "" {
		b.WriteString("> " + capitalize(cmd.Usage) + ".\n")
	} else {
		b.WriteString("> gitforge " + cmd.Name + "\n")
	}
	b.WriteString("> More information: https://github.com/staranto/gitforge.\n\n")

	if len(cmd.Commands) == 0 {
		b.WriteString("- " + capitalize(cmd.Usage) + ":\n\n")
		b.WriteString("`" + sanitizeCommand(usageLine(cmd)) + "`\n")
		return b.String()
	}

	for i, sub := range cmd.Commands {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + capitalize(strings.TrimSpace(sub.Usage)) + ":\n\n")
		b.WriteString("`" + sanitizeCommand(usageLine(sub)) + "`\n")
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func sanitizeCommand(s string) string {
	// Replace angle-bracket placeholders with {{...}}.
	s = strings.NewReplacer("<", "{{", ">", "}}").Replace(s)
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
