package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyFlagsKeepsConfigValuesForUnsetFlags(t *testing.T) {
	cfg := &Config{Verbose: true, Quiet: false, Output: "json"}

	nothingChanged := func(string) bool { return false }
	cfg.ApplyFlags(nothingChanged, false, false, false, "")

	// verbose came from the config file and must survive the default
	// flag value.
	assert.True(t, cfg.Verbose)
	assert.False(t, cfg.Quiet)
	assert.Equal(t, "json", cfg.Output)
}

func TestApplyFlagsOverridesWhenSet(t *testing.T) {
	cfg := &Config{Verbose: true}

	changed := func(name string) bool { return name == "verbose" || name == "quiet" }
	cfg.ApplyFlags(changed, false, true, false, "text")

	assert.False(t, cfg.Verbose)
	assert.True(t, cfg.Quiet)
	assert.Equal(t, "text", cfg.Output)
}

func TestApplyFlagsEmptyOutputKeepsExisting(t *testing.T) {
	cfg := &Config{Output: "json"}

	cfg.ApplyFlags(func(string) bool { return true }, false, false, false, "")

	assert.Equal(t, "json", cfg.Output)
}
