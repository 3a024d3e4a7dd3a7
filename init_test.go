package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/llmexplain/internal/config"
)

func TestInitCreatesFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "llmexplain.yaml")

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"init", path}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "wrote default configuration")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# llmexplain configuration.")
	assert.Contains(t, string(data), "capable_model: gpt-4o")
}

func TestInitRoundTrips(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "llmexplain.yaml")

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"init", path}, &stdout, &stderr))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	def := config.Default()
	assert.Equal(t, def.Budget, cfg.Budget)
	assert.Equal(t, def.LLM.Timeout, cfg.LLM.Timeout)
	assert.Equal(t, def.LLM.CapableModel, cfg.LLM.CapableModel)
}

func TestInitRefusesOverwrite(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "llmexplain.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mine\n"), 0o644))

	var stdout, stderr bytes.Buffer
	err := run([]string{"init", path}, &stdout, &stderr)
	require.ErrorContains(t, err, "already exists")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "mine\n", string(data))

	require.NoError(t, run([]string{"init", "--force", path}, &stdout, &stderr))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "max_context_tokens: 100000")
}

func TestInitDryRun(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "llmexplain.yaml")

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"init", "--dry-run", path}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "fast_model: gpt-4o-mini")

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "dry run must not write")
}
