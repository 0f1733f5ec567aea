// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestConfig points GITFORGE_CFG at a testdata file and resets the global
// Config so the next lookup reloads it.
func setupTestConfig(t *testing.T, testdataFile string) {
	t.Helper()

	absPath, err := filepath.Abs(filepath.Join("testdata", testdataFile))
	require.NoError(t, err, "failed to get absolute path for test config")

	t.Setenv("GITFORGE_CFG", absPath)
	Config = Type{}
	t.Cleanup(func() { Config = Type{} })
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		testFile  string
		checkFunc func(*testing.T, Type)
	}{
		{
			name:     "simple values",
			testFile: "simple.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				assert.NotEmpty(t, cfg.Source)
				assert.Equal(t, "json", cfg.Data["output"])
				assert.Equal(t, 2, cfg.Data["padding"])
			},
		},
		{
			name:     "nested structure",
			testFile: "nested.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				c, ok := cfg.Data["cache"].(map[string]interface{})
				assert.True(t, ok, "cache should be a map")
				assert.Equal(t, "48h", c["max_age"])
			},
		},
		{
			name:     "mixed types",
			testFile: "mixed-types.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				assert.Equal(t, "gitforge", cfg.Data["name"])
				assert.Equal(t, true, cfg.Data["enabled"])
				assert.Equal(t, 30.5, cfg.Data["timeout"])
				tags, ok := cfg.Data["tags"].([]interface{})
				assert.True(t, ok)
				assert.Len(t, tags, 2)
			},
		},
		{
			name:     "empty file",
			testFile: "empty.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				assert.NotEmpty(t, cfg.Source, "should have a source path")
				assert.Empty(t, cfg.Data)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestConfig(t, tt.testFile)

			cfg, err := Load()
			require.NoError(t, err)
			tt.checkFunc(t, cfg)
		})
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	t.Setenv("GITFORGE_CFG", "/nonexistent/path/gitforge.yaml")
	Config = Type{}

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoad_CfgIsDirectory(t *testing.T) {
	t.Setenv("GITFORGE_CFG", t.TempDir())
	Config = Type{}

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "points to a directory")
}

func TestLoad_SearchPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GITFORGE_CFG", "")
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("APPDATA", "")
	t.Setenv("HOME", dir)
	Config = Type{}
	t.Cleanup(func() { Config = Type{} })

	_, err := Load()
	assert.Error(t, err)

	writeFile(t, filepath.Join(dir, "gitforge.yaml"), "output: toml\n")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "gitforge.yaml"), cfg.Source)
}

func TestGetString(t *testing.T) {
	tests := []struct {
		name         string
		testFile     string
		key          string
		defaultValue []string
		want         string
		wantErr      bool
	}{
		{name: "simple", testFile: "simple.yaml", key: "output", want: "json"},
		{name: "nested", testFile: "nested.yaml", key: "http.user_agent", want: "gitforge-test"},
		{name: "missing with default", testFile: "simple.yaml", key: "missing", defaultValue: []string{"text"}, want: "text"},
		{name: "missing without default", testFile: "simple.yaml", key: "missing", wantErr: true},
		{name: "non-string", testFile: "mixed-types.yaml", key: "version", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestConfig(t, tt.testFile)

			got, err := GetString(tt.key, tt.defaultValue...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetInt(t *testing.T) {
	setupTestConfig(t, "mixed-types.yaml")

	v, err := GetInt("version")
	assert.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = GetInt("timeout")
	assert.NoError(t, err)
	assert.Equal(t, 30, v)

	v, err = GetInt("missing", 7)
	assert.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = GetInt("name")
	assert.Error(t, err)
}

func TestGetBool(t *testing.T) {
	setupTestConfig(t, "nested.yaml")

	v, err := GetBool("cache.enabled")
	assert.NoError(t, err)
	assert.False(t, v)

	v, err = GetBool("missing", true)
	assert.NoError(t, err)
	assert.True(t, v)

	_, err = GetBool("cache.max_age")
	assert.Error(t, err)
}

func TestGetDuration(t *testing.T) {
	setupTestConfig(t, "nested.yaml")

	d, err := GetDuration("cache.max_age")
	assert.NoError(t, err)
	assert.Equal(t, 48*time.Hour, d)

	d, err = GetDuration("http.timeout")
	assert.NoError(t, err)
	assert.Equal(t, 10*time.Second, d)

	d, err = GetDuration("missing", time.Minute)
	assert.NoError(t, err)
	assert.Equal(t, time.Minute, d)

	_, err = GetDuration("http.user_agent")
	assert.Error(t, err)
}

func TestNamespace(t *testing.T) {
	setupTestConfig(t, "nested.yaml")
	_, err := Load()
	require.NoError(t, err)

	Config.Namespace = "list"
	v, err := GetString("output")
	assert.NoError(t, err)
	assert.Equal(t, "yaml", v, "namespaced key wins")

	v, err = GetString("http.user_agent")
	assert.NoError(t, err)
	assert.Equal(t, "gitforge-test", v, "falls back to the global key")
}

func TestGetStringSlice(t *testing.T) {
	setupTestConfig(t, "mixed-types.yaml")

	v, err := GetStringSlice("tags")
	assert.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, v)

	v, err = GetStringSlice("name")
	assert.NoError(t, err)
	assert.Equal(t, []string{"gitforge"}, v)

	v, err = GetStringSlice("missing", []string{"x"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"x"}, v)

	_, err = GetStringSlice("version")
	assert.Error(t, err)
}
