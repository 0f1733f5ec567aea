// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/gitforge/internal/config"
	"github.com/staranto/gitforge/internal/scaffold"
)

// templateServer serves canned GitHub API and raw responses keyed by path and
// query.
type templateServer struct {
	mu     sync.Mutex
	bodies map[string]string
	hits   map[string]int
}

func (s *templateServer) set(key, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies[key] = body
}

func (s *templateServer) count(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[key]
}

func (s *templateServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Path
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}

	s.mu.Lock()
	s.hits[key]++
	body, ok := s.bodies[key]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write([]byte(body))
}

// setupApp starts a template server, writes a gitforge.yaml pointing every
// kind at it and isolates the cache directory.
func setupApp(t *testing.T) *templateServer {
	t.Helper()

	ts := &templateServer{
		bodies: map[string]string{
			"/api/gitignore": `[
				{"name": "Rust.gitignore", "type": "file"},
				{"name": "Go.gitignore", "type": "file"},
				{"name": "README.md", "type": "file"},
				{"name": "Global", "type": "dir"}
			]`,
			"/api/gitignore/Global":        `[{"name": "Windows.gitignore", "type": "file"}]`,
			"/api/gitignore/community":     `[{"name": "Nix.gitignore", "type": "file"}]`,
			"/raw/gitignore/Rust.gitignore": "/target\n",
			"/raw/gitignore/Go.gitignore":   "*.test\n",
			"/raw/gitignore/Global/Windows.gitignore": "Thumbs.db\n",

			"/api/issue":                `[{"name": "bug_report.yml"}, {"name": "README.md"}]`,
			"/raw/issue/bug_report.yml": "name: Bug report\n",

			"/api/pr":            `[{"name": "default.md"}, {"name": "feature.md"}]`,
			"/raw/pr/default.md": "## Summary\n",
			"/raw/pr/feature.md": "## Feature\n",

			"/api/license": `[
				{"key": "mit", "name": "MIT License", "spdx_id": "MIT"},
				{"key": "gpl-3.0", "name": "GNU General Public License v3.0", "spdx_id": "GPL-3.0"}
			]`,
			"/api/license?featured=true": `[{"key": "mit"}]`,
			"/api/license/mit":           `{"key": "mit", "body": "Copyright (c) [year] [fullname]\n"}`,
		},
		hits: map[string]int{},
	}
	srv := httptest.NewServer(ts)
	t.Cleanup(srv.Close)

	var cfg strings.Builder
	cfg.WriteString("catalog:\n")
	for _, kind := range []string{"gitignore", "issue", "pr"} {
		fmt.Fprintf(&cfg, "  %s:\n    index_url: %s/api/%s\n    content_url: %s/raw/%s\n",
			kind, srv.URL, kind, srv.URL, kind)
	}
	fmt.Fprintf(&cfg, "  license:\n    index_url: %s/api/license\n    content_url: %s/api/license\n",
		srv.URL, srv.URL)

	cfgPath := filepath.Join(t.TempDir(), "gitforge.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg.String()), 0o600))

	t.Setenv("GITFORGE_CFG", cfgPath)
	t.Setenv("GITFORGE_CACHE_DIR", t.TempDir())
	t.Setenv("GITFORGE_NO_SPINNER", "1")
	t.Setenv("GITFORGE_CACHE", "")
	config.Config = config.Type{}
	t.Cleanup(func() { config.Config = config.Type{} })

	return ts
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	argv := append([]string{"gitforge"}, args...)
	config.Config = config.Type{}
	app, err := InitApp(context.Background(), argv)
	require.NoError(t, err)

	var out, errOut bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &errOut
	err = app.Run(context.Background(), argv)
	return out.String(), errOut.String(), err
}

func TestListGitignore(t *testing.T) {
	setupApp(t)

	out, errOut, err := run(t, "list", "gitignore", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Gitignore template cache updated (4 templates available).")
	assert.Contains(t, out, `"name": "global-windows"`)
	assert.Contains(t, out, `"path": "Global/Windows.gitignore"`)
	assert.NotContains(t, out, "readme")

	out, _, err = run(t, "list", "gitignore", "--global", "-o", "raw")
	require.NoError(t, err)
	assert.Equal(t, "global-windows\n", out)
}

func TestListUsesCache(t *testing.T) {
	ts := setupApp(t)

	_, _, err := run(t, "list", "pr", "-o", "raw")
	require.NoError(t, err)
	_, errOut, err := run(t, "list", "pr", "-o", "raw")
	require.NoError(t, err)
	assert.NotContains(t, errOut, "cache updated")
	assert.Equal(t, 1, ts.count("/api/pr"))

	_, errOut, err = run(t, "list", "pr", "-u", "-o", "raw")
	require.NoError(t, err)
	assert.Contains(t, errOut, "cache updated")
	assert.Equal(t, 2, ts.count("/api/pr"))
}

func TestListLicense(t *testing.T) {
	setupApp(t)

	out, _, err := run(t, "list", "license", "--popular", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"spdx_id": "MIT"`)
	assert.NotContains(t, out, "gpl-3.0")

	out, _, err = run(t, "list", "license", "--search", "gnu", "-o", "raw")
	require.NoError(t, err)
	assert.Equal(t, "gpl-3.0\n", out)
}

func TestListBadOutput(t *testing.T) {
	setupApp(t)

	_, _, err := run(t, "list", "issue", "-o", "xml")
	assert.Error(t, err)
}

func TestAddGitignore(t *testing.T) {
	setupApp(t)
	dir := t.TempDir()

	out, _, err := run(t, "add", "gitignore", "-d", dir, "rust", "Global/Windows")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Added gitignore templates: rust, Global/Windows to")

	b, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, "# ===== rust =====\n/target\n\n# ===== Global/Windows =====\nThumbs.db\n", string(b))

	// A second add without --force or --append refuses to overwrite.
	_, _, err = run(t, "add", "gitignore", "-d", dir, "go")
	assert.ErrorIs(t, err, scaffold.ErrExists)

	_, _, err = run(t, "add", "gitignore", "-d", dir, "-a", "go")
	require.NoError(t, err)
	b, err = os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(b), "Thumbs.db\n\n# ===== go =====\n*.test\n"))
}

func TestAddMixedNames(t *testing.T) {
	setupApp(t)
	dir := t.TempDir()

	_, errOut, err := run(t, "add", "gitignore", "-d", dir, "rust", "nosuch")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Error: Template 'nosuch' not found in cache.")

	b, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "# ===== rust =====")
	assert.NotContains(t, string(b), "nosuch")

	_, _, err = run(t, "add", "gitignore", "-d", t.TempDir(), "nosuch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no valid gitignore templates given")
}

func TestAddOutputMismatch(t *testing.T) {
	ts := setupApp(t)

	_, _, err := run(t, "add", "gitignore", "-d", t.TempDir(), "-o", "a.gitignore", "rust", "go")
	assert.True(t, errors.Is(err, scaffold.ErrOutputMismatch))
	assert.Equal(t, 0, ts.count("/api/gitignore"))
}

func TestAddOutputsPairedAfterInvalid(t *testing.T) {
	setupApp(t)
	dir := t.TempDir()

	_, _, err := run(t, "add", "gitignore", "-d", dir, "-o", "one", "-o", "two", "nosuch", "rust")
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(dir, "one"))
	b, err := os.ReadFile(filepath.Join(dir, "two"))
	require.NoError(t, err)
	assert.Equal(t, "# ===== rust =====\n/target\n", string(b))
}

func TestAddIssueAndPR(t *testing.T) {
	setupApp(t)
	dir := t.TempDir()

	out, _, err := run(t, "add", "issue", "-d", dir, "bug_report.yml")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Added issue template bug_report to")
	assert.FileExists(t, filepath.Join(dir, "bug_report.yml"))

	_, _, err = run(t, "add", "pr", "-d", dir, "default")
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(dir, "pull_request_template.md"))
	require.NoError(t, err)
	assert.Equal(t, "## Summary\n", string(b))

	_, _, err = run(t, "add", "pr", "-d", dir, "default", "feature")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "PULL_REQUEST_TEMPLATE", "default.md"))
	assert.FileExists(t, filepath.Join(dir, "PULL_REQUEST_TEMPLATE", "feature.md"))
}

func TestAddLicense(t *testing.T) {
	setupApp(t)
	dir := t.TempDir()

	out, _, err := run(t, "add", "license", "-d", dir,
		"-p", "year=2025", "-p", "copyright-holders=Jane Doe", "-p", "color=blue", "mit")
	require.NoError(t, err)
	assert.Contains(t, out, "Warning: unused parameter 'color' for license mit")
	assert.Contains(t, out, "Filled fullname, year")
	assert.Contains(t, out, "License mit has been added to")

	b, err := os.ReadFile(filepath.Join(dir, "LICENSE"))
	require.NoError(t, err)
	assert.Equal(t, "Copyright (c) 2025 Jane Doe\n", string(b))
}

func TestAddLicenseUnfilled(t *testing.T) {
	setupApp(t)
	dir := t.TempDir()

	out, _, err := run(t, "add", "license", "-d", dir, "mit")
	require.NoError(t, err)
	assert.Contains(t, out, "Unfilled placeholders in mit: year, fullname")
}

func TestAddRequiresNames(t *testing.T) {
	setupApp(t)

	_, _, err := run(t, "add", "issue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gitforge list issue")
}

func TestPreview(t *testing.T) {
	setupApp(t)

	out, _, err := run(t, "preview", "gitignore", "rust")
	require.NoError(t, err)
	assert.Equal(t, "/target\n", out)

	out, _, err = run(t, "preview", "gitignore", "rust", "go")
	require.NoError(t, err)
	assert.Equal(t, "===== rust =====\n/target\n\n===== go =====\n*.test\n", out)

	out, _, err = run(t, "preview", "license", "-p", "year=1999", "mit")
	require.NoError(t, err)
	assert.Equal(t, "Copyright (c) 1999 [fullname]\n", out)
}

func TestCacheCommands(t *testing.T) {
	setupApp(t)

	_, _, err := run(t, "list", "gitignore", "-o", "raw")
	require.NoError(t, err)

	out, _, err := run(t, "cache", "list", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "gitignore_templates"`)
	assert.Contains(t, out, `"status": "fresh"`)

	out, _, err = run(t, "cache", "info", "gitignore")
	require.NoError(t, err)
	assert.Contains(t, out, "Entries:  4")

	out, _, err = run(t, "cache", "path", "gitignore")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(os.Getenv("GITFORGE_CACHE_DIR"), "gitignore_templates.json")+"\n", out)

	out, _, err = run(t, "cache", "clear", "gitignore")
	require.NoError(t, err)
	assert.Equal(t, "Cleared gitignore_templates.\n", out)
	assert.NoFileExists(t, filepath.Join(os.Getenv("GITFORGE_CACHE_DIR"), "gitignore_templates.json"))

	_, _, err = run(t, "cache", "info", "gitignore")
	assert.Error(t, err)
}

func TestCacheRefreshDiff(t *testing.T) {
	ts := setupApp(t)

	_, _, err := run(t, "list", "gitignore", "-o", "raw")
	require.NoError(t, err)

	out, _, err := run(t, "cache", "refresh", "--diff", "gitignore")
	require.NoError(t, err)
	assert.Equal(t, "No changes to gitignore template index.\n", out)

	ts.set("/api/gitignore/community", `[
		{"name": "Nix.gitignore", "type": "file"},
		{"name": "Zig.gitignore", "type": "file"}
	]`)
	out, _, err = run(t, "cache", "refresh", "--diff", "gitignore")
	require.NoError(t, err)
	assert.Contains(t, out, "community-zig")
	assert.Contains(t, out, "community/Zig.gitignore")
}

func TestCacheRefreshUnknownKind(t *testing.T) {
	setupApp(t)

	_, _, err := run(t, "cache", "refresh", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown template kind "nope"`)
}

func TestCompletionAndVersion(t *testing.T) {
	setupApp(t)

	out, _, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "complete -F _gitforge gitforge")

	out, _, err = run(t, "completion", "zsh")
	require.NoError(t, err)
	assert.Contains(t, out, "compdef _gitforge gitforge")

	_, _, err = run(t, "completion", "fish")
	assert.Error(t, err)

	out, _, err = run(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "gitforge ")
}
