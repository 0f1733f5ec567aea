// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJammedFlagValidator(t *testing.T) {
	assert.NoError(t, JammedFlagValidator("json"))
	assert.NoError(t, JammedFlagValidator("-name"))
	assert.Error(t, JammedFlagValidator("--sort"))
}

func TestOutputValidator(t *testing.T) {
	for _, f := range []string{"text", "json", "yaml", "toml", "raw"} {
		assert.NoError(t, OutputValidator(f), f)
	}
	assert.Error(t, OutputValidator("xml"))
}

func TestFlagValidators(t *testing.T) {
	assert.NoError(t, FlagValidators("yaml", JammedFlagValidator, OutputValidator))
	assert.EqualError(t, FlagValidators("--output", JammedFlagValidator, OutputValidator),
		"must not begin with '--'")
}
