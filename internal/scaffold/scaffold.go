// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
)

var (
	// ErrExists is returned when a target file is present and neither Force
	// nor Append was given.
	ErrExists = errors.New("already exists, use --force or --append")

	// ErrOutputMismatch is returned when explicit output names are given but
	// their count differs from the number of templates.
	ErrOutputMismatch = errors.New("The number of templates and output file names must match.") //nolint:staticcheck
)

// Template is a resolved template ready to be written.
type Template struct {
	// Name is the name the user asked for.
	Name string
	Body string
}

// Options controls where and how templates are written.
type Options struct {
	// Dir is the base directory. Defaults depend on the kind.
	Dir string
	// Outputs are explicit file names, one per template.
	Outputs []string
	Force   bool
	Append  bool
}

func (o Options) checkOutputs(n int) error {
	if len(o.Outputs) > 0 && len(o.Outputs) != n {
		return fmt.Errorf("%w (%d templates, %d output names)", ErrOutputMismatch, n, len(o.Outputs))
	}
	return nil
}

// target joins name onto dir unless name is absolute.
func target(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// withExt appends ext to name unless it already ends in one of exts.
func withExt(name string, exts ...string) string {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return name
		}
	}
	return name + exts[0]
}

// writeFile writes content to path, creating parent directories. An existing
// file is replaced with Force, extended with Append, and otherwise reported
// as ErrExists.
func writeFile(path, content string, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(path), err)
	}

	info, err := os.Stat(path)
	exists := err == nil
	if exists && info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}

	switch {
	case exists && opts.Append:
		return appendFile(path, content)
	case exists && !opts.Force:
		return fmt.Errorf("%s %w", path, ErrExists)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.WithField("path", path).Debug("wrote file")
	return nil
}

func appendFile(path, content string) error {
	existing, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644) //nolint:gosec
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var sep string
	switch {
	case len(existing) == 0:
	case strings.HasSuffix(string(existing), "\n"):
		sep = "\n"
	default:
		sep = "\n\n"
	}

	if _, err := f.WriteString(sep + content); err != nil {
		return fmt.Errorf("failed to append to %s: %w", path, err)
	}
	log.WithField("path", path).Debug("appended to file")
	return nil
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

// GitignoreSection renders one template as a headed .gitignore section.
func GitignoreSection(t Template) string {
	return fmt.Sprintf("# ===== %s =====\n%s", t.Name, ensureNewline(t.Body))
}

// Gitignore writes templates into a single merged .gitignore under Dir, or
// one file per template when Outputs are given. It returns the written paths.
func Gitignore(templates []Template, opts Options) ([]string, error) {
	if err := opts.checkOutputs(len(templates)); err != nil {
		return nil, err
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	if len(opts.Outputs) > 0 {
		var written []string
		for i, t := range templates {
			p := target(dir, opts.Outputs[i])
			if err := writeFile(p, GitignoreSection(t), opts); err != nil {
				return written, err
			}
			written = append(written, p)
		}
		return written, nil
	}

	sections := make([]string, 0, len(templates))
	for _, t := range templates {
		sections = append(sections, GitignoreSection(t))
	}

	p := filepath.Join(dir, ".gitignore")
	if err := writeFile(p, strings.Join(sections, "\n"), opts); err != nil {
		return nil, err
	}
	return []string{p}, nil
}

// Issue writes each template as <name>.yml under Dir, which defaults to
// .github/ISSUE_TEMPLATE.
func Issue(templates []Template, opts Options) ([]string, error) {
	if err := opts.checkOutputs(len(templates)); err != nil {
		return nil, err
	}
	dir := opts.Dir
	if dir == "" {
		dir = filepath.Join(".github", "ISSUE_TEMPLATE")
	}

	var written []string
	for i, t := range templates {
		name := t.Name
		if len(opts.Outputs) > 0 {
			name = opts.Outputs[i]
		}
		p := target(dir, withExt(name, ".yml", ".yaml"))
		if err := writeFile(p, ensureNewline(t.Body), opts); err != nil {
			return written, err
		}
		written = append(written, p)
	}
	return written, nil
}

// PR writes pull request templates. A single template becomes
// pull_request_template.md under Dir (default .github); several go to
// PULL_REQUEST_TEMPLATE/<name>.md.
func PR(templates []Template, opts Options) ([]string, error) {
	if err := opts.checkOutputs(len(templates)); err != nil {
		return nil, err
	}
	dir := opts.Dir
	if dir == "" {
		dir = ".github"
	}

	var written []string
	for i, t := range templates {
		var p string
		switch {
		case len(opts.Outputs) > 0:
			p = target(dir, withExt(opts.Outputs[i], ".md"))
		case len(templates) == 1:
			p = filepath.Join(dir, "pull_request_template.md")
		default:
			p = filepath.Join(dir, "PULL_REQUEST_TEMPLATE", withExt(t.Name, ".md"))
		}
		if err := writeFile(p, ensureNewline(t.Body), opts); err != nil {
			return written, err
		}
		written = append(written, p)
	}
	return written, nil
}

// License writes license bodies. A single license becomes LICENSE under Dir
// (default "."); several become LICENSE-<NAME>.
func License(templates []Template, opts Options) ([]string, error) {
	if err := opts.checkOutputs(len(templates)); err != nil {
		return nil, err
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	var written []string
	for i, t := range templates {
		var p string
		switch {
		case len(opts.Outputs) > 0:
			p = target(dir, opts.Outputs[i])
		case len(templates) == 1:
			p = filepath.Join(dir, "LICENSE")
		default:
			p = filepath.Join(dir, "LICENSE-"+strings.ToUpper(strings.ReplaceAll(t.Name, ".", "-")))
		}
		if err := writeFile(p, ensureNewline(t.Body), opts); err != nil {
			return written, err
		}
		written = append(written, p)
	}
	return written, nil
}
