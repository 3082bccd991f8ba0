package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryAddGetRemove(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	s := &Session{ID: "abc"}
	r.Add(s)
	assert.Equal(t, 1, r.Len())

	got, err := r.Get("abc")
	require.NoError(t, err)
	assert.Same(t, s, got)

	r.Remove("abc")
	assert.Equal(t, 0, r.Len())
	_, err = r.Get("abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRegistryRemoveUnknownIsNoOp(t *testing.T) {
	r := NewRegistry()
	r.Remove("never-added")
	assert.Equal(t, 0, r.Len())
}

func TestConfigFromEnvDefaults(t *testing.T) {
	t.Setenv("USER_INPUT_TIMEOUT", "")
	t.Setenv("REQUIRE_CONFIRMATION", "")
	t.Setenv("PROMPT_ON_EMPTY", "")
	t.Setenv("CONTINUOUS_CAPTURE", "")

	cfg := ConfigFromEnv()
	assert.Equal(t, "5m0s", cfg.InputTimeout.String())
	assert.False(t, cfg.RequireConfirmation)
	assert.True(t, cfg.PromptOnEmpty)
	assert.False(t, cfg.ContinuousCapture)
}

func TestConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("USER_INPUT_TIMEOUT", "90s")
	t.Setenv("REQUIRE_CONFIRMATION", "true")
	t.Setenv("PROMPT_ON_EMPTY", "false")
	t.Setenv("CONTINUOUS_CAPTURE", "1")

	cfg := ConfigFromEnv()
	assert.Equal(t, "1m30s", cfg.InputTimeout.String())
	assert.True(t, cfg.RequireConfirmation)
	assert.False(t, cfg.PromptOnEmpty)
	assert.True(t, cfg.ContinuousCapture)
}

func TestConfigFromEnvBadValuesFallBack(t *testing.T) {
	t.Setenv("USER_INPUT_TIMEOUT", "soon")
	t.Setenv("PROMPT_ON_EMPTY", "definitely")

	cfg := ConfigFromEnv()
	assert.Equal(t, "5m0s", cfg.InputTimeout.String())
	assert.True(t, cfg.PromptOnEmpty)
}
