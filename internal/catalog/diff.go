// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"

	"github.com/staranto/gitforge/internal/cache"
)

// Diff renders the difference between two indexes as an annotated JSON
// listing of key to payload. It returns "" when the key sets and payloads
// match.
func Diff(before, after *cache.Cache[string]) (string, error) {
	left, err := json.Marshal(flatten(before))
	if err != nil {
		return "", err
	}
	right, err := json.Marshal(flatten(after))
	if err != nil {
		return "", err
	}

	d, err := gojsondiff.New().Compare(left, right)
	if err != nil {
		return "", fmt.Errorf("failed to compare indexes: %w", err)
	}
	if !d.Modified() {
		return "", nil
	}

	var leftObj map[string]interface{}
	if err := json.Unmarshal(left, &leftObj); err != nil {
		return "", err
	}

	f := formatter.NewAsciiFormatter(leftObj, formatter.AsciiFormatterConfig{
		ShowArrayIndex: false,
		Coloring:       false,
	})
	return f.Format(d)
}

func flatten(c *cache.Cache[string]) map[string]string {
	out := map[string]string{}
	if c == nil {
		return out
	}
	for _, k := range c.Keys() {
		v, _ := c.Get(k)
		out[k] = v
	}
	return out
}
