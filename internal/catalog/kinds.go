// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/staranto/gitforge/internal/cache"
	"github.com/staranto/gitforge/internal/config"
)

const (
	gitignoreAPI = "https://api.github.com/repos/github/gitignore/contents"
	gitignoreRaw = "https://raw.githubusercontent.com/github/gitignore/main"

	templatesAPI = "https://api.github.com/repos/rafaeljohn9/gitforge/contents/templates"
	templatesRaw = "https://raw.githubusercontent.com/rafaeljohn9/gitforge/main/templates"

	licensesAPI = "https://api.github.com/licenses"
)

// Metadata tags written on index entries.
const (
	TagCategory = "category"
	TagExt      = "ext"
	TagName     = "name"
	TagSPDX     = "spdx_id"
	TagFeatured = "featured"
)

// Fetcher is the remote collaborator used to build indexes and pull bodies.
type Fetcher interface {
	FetchContent(ctx context.Context, url string) (string, error)
	FetchJSON(ctx context.Context, url string) (gjson.Result, error)
}

// Kind describes one family of remote templates: where its index lives, how
// it is cached, and how a template body is fetched.
type Kind struct {
	// Name is the CLI name, e.g. "gitignore".
	Name string
	// Title is used in user facing messages.
	Title string
	// CacheName is the Manager name of the index.
	CacheName string
	// Exts are template file extensions. The first is canonical. A trailing
	// one is dropped from user input before resolving.
	Exts []string
	// ListHint is the command that lists the templates of this kind.
	ListHint string
	// MaxAge overrides the catalog max age when non-zero.
	MaxAge time.Duration

	IndexURL   string
	ContentURL string

	build   func(ctx context.Context, k Kind, f Fetcher) (*cache.Cache[string], error)
	content func(ctx context.Context, k Kind, f Fetcher, data string) (string, error)
}

var (
	Gitignore = Kind{
		Name:       "gitignore",
		Title:      "gitignore template",
		CacheName:  "gitignore_templates",
		Exts:       []string{".gitignore"},
		ListHint:   "gitforge list gitignore",
		IndexURL:   gitignoreAPI,
		ContentURL: gitignoreRaw,
		build:      buildGitignore,
		content:    rawContent,
	}

	Issue = Kind{
		Name:       "issue",
		Title:      "issue template",
		CacheName:  "issue_templates",
		Exts:       []string{".yml", ".yaml"},
		ListHint:   "gitforge list issue",
		IndexURL:   templatesAPI + "/issue-templates",
		ContentURL: templatesRaw + "/issue-templates",
		build:      buildDirectory,
		content:    rawContent,
	}

	PR = Kind{
		Name:       "pr",
		Title:      "pull request template",
		CacheName:  "pr_templates",
		Exts:       []string{".md"},
		ListHint:   "gitforge list pr",
		IndexURL:   templatesAPI + "/pr-templates",
		ContentURL: templatesRaw + "/pr-templates",
		build:      buildDirectory,
		content:    rawContent,
	}

	License = Kind{
		Name:       "license",
		Title:      "license",
		CacheName:  "licenses",
		ListHint:   "gitforge list license",
		IndexURL:   licensesAPI,
		ContentURL: licensesAPI,
		build:      buildLicenses,
		content:    licenseContent,
	}
)

var aliases = map[string]*Kind{
	"gitignore":      &Gitignore,
	"gitignores":     &Gitignore,
	"issue":          &Issue,
	"issues":         &Issue,
	"issue-template": &Issue,
	"pr":             &PR,
	"prs":            &PR,
	"pr-template":    &PR,
	"license":        &License,
	"licenses":       &License,
}

// Kinds returns every kind with config overrides applied.
func Kinds() []Kind {
	return []Kind{
		withOverrides(Gitignore),
		withOverrides(Issue),
		withOverrides(PR),
		withOverrides(License),
	}
}

// Lookup finds a kind by name or alias, with config overrides applied.
func Lookup(name string) (Kind, bool) {
	k, ok := aliases[strings.ToLower(name)]
	if !ok {
		return Kind{}, false
	}
	return withOverrides(*k), true
}

// withOverrides applies catalog.<name>.index_url and content_url from the
// config file.
func withOverrides(k Kind) Kind {
	k.IndexURL, _ = config.GetString("catalog."+k.Name+".index_url", k.IndexURL)
	k.ContentURL, _ = config.GetString("catalog."+k.Name+".content_url", k.ContentURL)
	return k
}

// TrimExt drops a trailing template extension from name.
func (k Kind) TrimExt(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range k.Exts {
		if strings.HasSuffix(lower, ext) && len(name) > len(ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// DefaultExt returns the canonical extension, or "" for kinds without one.
func (k Kind) DefaultExt() string {
	if len(k.Exts) == 0 {
		return ""
	}
	return k.Exts[0]
}

func (k Kind) hasExt(file string) (string, bool) {
	lower := strings.ToLower(file)
	for _, ext := range k.Exts {
		if strings.HasSuffix(lower, ext) {
			return ext, true
		}
	}
	return "", false
}

// gitignoreFolders are the folders of github/gitignore that hold templates,
// with the key prefix and category tag of each.
var gitignoreFolders = []struct {
	folder   string
	category string
}{
	{"", "root"},
	{"Global", "global"},
	{"community", "community"},
}

// buildGitignore indexes github/gitignore. Root templates are keyed by their
// lower-cased name; folder templates get "<folder>-" prepended.
func buildGitignore(ctx context.Context, k Kind, f Fetcher) (*cache.Cache[string], error) {
	idx := cache.New[string]()

	for _, folder := range gitignoreFolders {
		url := k.IndexURL
		if folder.folder != "" {
			url += "/" + folder.folder
		}

		doc, err := f.FetchJSON(ctx, url)
		if err != nil {
			return nil, err
		}
		if !doc.IsArray() {
			return nil, fmt.Errorf("unexpected index format from %s", url)
		}

		for _, entry := range doc.Array() {
			name := entry.Get("name").String()
			if entry.Get("type").Exists() && entry.Get("type").String() != "file" {
				continue
			}
			ext, ok := k.hasExt(name)
			if !ok || len(name) == len(ext) {
				continue
			}

			template := strings.ToLower(name[:len(name)-len(ext)])
			key, full := template, name
			if folder.folder != "" {
				key = strings.ToLower(folder.folder) + "-" + template
				full = folder.folder + "/" + name
			}

			idx.InsertWithMetadata(key, full, map[string]string{TagCategory: folder.category})
		}
	}

	return idx, nil
}

// buildDirectory indexes a single contents API directory listing. Keys are
// lower-cased file names without extension; the payload is the file name.
func buildDirectory(ctx context.Context, k Kind, f Fetcher) (*cache.Cache[string], error) {
	doc, err := f.FetchJSON(ctx, k.IndexURL)
	if err != nil {
		return nil, err
	}
	if !doc.IsArray() {
		return nil, fmt.Errorf("unexpected index format from %s", k.IndexURL)
	}

	idx := cache.New[string]()
	for _, entry := range doc.Array() {
		name := entry.Get("name").String()
		ext, ok := k.hasExt(name)
		if !ok || len(name) == len(ext) {
			continue
		}
		key := strings.ToLower(name[:len(name)-len(ext)])
		idx.InsertWithMetadata(key, name, map[string]string{TagExt: ext})
	}
	return idx, nil
}

// buildLicenses indexes the GitHub licenses API. The payload is the license
// key; name, SPDX id and whether GitHub features it are kept as tags.
func buildLicenses(ctx context.Context, k Kind, f Fetcher) (*cache.Cache[string], error) {
	all, err := f.FetchJSON(ctx, k.IndexURL)
	if err != nil {
		return nil, err
	}
	featured, err := f.FetchJSON(ctx, k.IndexURL+"?featured=true")
	if err != nil {
		return nil, err
	}

	popular := map[string]bool{}
	for _, l := range featured.Array() {
		popular[l.Get("key").String()] = true
	}

	idx := cache.New[string]()
	for _, l := range all.Array() {
		key := l.Get("key").String()
		if key == "" {
			continue
		}
		idx.InsertWithMetadata(strings.ToLower(key), key, map[string]string{
			TagName:     l.Get("name").String(),
			TagSPDX:     l.Get("spdx_id").String(),
			TagFeatured: fmt.Sprintf("%t", popular[key]),
		})
	}
	return idx, nil
}

func rawContent(ctx context.Context, k Kind, f Fetcher, data string) (string, error) {
	return f.FetchContent(ctx, k.ContentURL+"/"+path.Clean(data))
}

func licenseContent(ctx context.Context, k Kind, f Fetcher, data string) (string, error) {
	doc, err := f.FetchJSON(ctx, k.ContentURL+"/"+data)
	if err != nil {
		return "", err
	}
	body := doc.Get("body")
	if !body.Exists() {
		return "", fmt.Errorf("license %s has no body", data)
	}
	return body.String(), nil
}
