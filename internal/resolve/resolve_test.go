// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package resolve

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/gitforge/internal/cache"
)

func index(pairs ...string) *cache.Cache[string] {
	c := cache.New[string]()
	for i := 0; i+1 < len(pairs); i += 2 {
		c.Insert(pairs[i], pairs[i+1])
	}
	return c
}

func TestTemplate(t *testing.T) {
	tests := []struct {
		name  string
		cache *cache.Cache[string]
		input string
		want  string
	}{
		{
			name:  "exact",
			cache: index("rust", "Rust.gitignore"),
			input: "rust",
			want:  "Rust.gitignore",
		},
		{
			name:  "case varied",
			cache: index("rust", "Rust.gitignore"),
			input: "Rust",
			want:  "Rust.gitignore",
		},
		{
			name:  "category with dash key",
			cache: index("global-windows", "Global/Windows.gitignore", "windows", "Windows.gitignore"),
			input: "Global/Windows",
			want:  "Global/Windows.gitignore",
		},
		{
			name:  "category falls back to bare name",
			cache: index("windows", "Windows.gitignore"),
			input: "Global/Windows",
			want:  "Windows.gitignore",
		},
		{
			name:  "verbatim key with slash wins over dash key",
			cache: index("global/windows", "A", "global-windows", "B"),
			input: "GLOBAL/windows",
			want:  "A",
		},
		{
			name:  "scan: mixed case stored key",
			cache: index("VisualStudio", "VisualStudio.gitignore"),
			input: "visualstudio",
			want:  "VisualStudio.gitignore",
		},
		{
			name:  "scan: stored key ends with input",
			cache: index("community-golang-hugo", "community/Golang/Hugo.gitignore"),
			input: "hugo",
			want:  "community/Golang/Hugo.gitignore",
		},
		{
			name:  "scan: input ends with stored key",
			cache: index("go", "Go.gitignore"),
			input: "my-go",
			want:  "Go.gitignore",
		},
		{
			name:  "scan: dash normalized mixed case",
			cache: index("Global-MacOS", "Global/macOS.gitignore"),
			input: "global/macos",
			want:  "Global/macOS.gitignore",
		},
		{
			name:  "exact beats suffix",
			cache: index("ada", "Ada.gitignore", "nevada", "Nevada.gitignore"),
			input: "ada",
			want:  "Ada.gitignore",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Template(tt.input, tt.cache, "gitforge list gitignore")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTemplate_NotFound(t *testing.T) {
	c := index("rust", "Rust.gitignore", "python", "Python.gitignore", "global-windows", "Global/Windows.gitignore")

	_, err := Template("not-a-template", c, "gitforge list gitignore")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "not-a-template", nf.Name)
	assert.Contains(t, err.Error(), "'not-a-template'")
	assert.Contains(t, err.Error(), "gitforge list gitignore")
}

func TestTemplate_NotFoundKeepsOriginalCase(t *testing.T) {
	_, err := Template("Not-A-Template", index("rust", "x"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'Not-A-Template'")
	assert.NotContains(t, err.Error(), "Try")
}

func TestTemplate_Empty(t *testing.T) {
	c := index("rust", "Rust.gitignore")

	for _, in := range []string{"", "   "} {
		_, err := Template(in, c, "")
		assert.True(t, errors.Is(err, ErrNotFound), "input %q", in)
	}

	_, err := Template("rust", nil, "")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = Template("rust", cache.New[string](), "")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestTemplate_ScanOrderIsSorted(t *testing.T) {
	// Both keys end with "script"; the scan walks keys in sorted order.
	c := index("typescript", "TypeScript.gitignore", "coffeescript", "CoffeeScript.gitignore")

	got, err := Template("script", c, "")
	require.NoError(t, err)
	assert.Equal(t, "CoffeeScript.gitignore", got)
}
