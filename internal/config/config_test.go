package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("LLMEXPLAIN_LLM_API_KEY", "")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoadFileAndEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "llmexplain.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  fast_model: small-model
  capable_model: big-model
  timeout: 30s
budget:
  max_context_tokens: 5000
`), 0o644))

	t.Setenv("LLMEXPLAIN_BUDGET_SUMMARY_CONCURRENCY", "4")
	t.Setenv("LLMEXPLAIN_LLM_CAPABLE_MODEL", "env-model")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "small-model", cfg.LLM.FastModel)
	assert.Equal(t, "env-model", cfg.LLM.CapableModel)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 5000, cfg.Budget.MaxContextTokens)
	assert.Equal(t, 4, cfg.Budget.SummaryConcurrency)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.InDelta(t, 0.1, cfg.LLM.Temperature, 1e-9)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := Default()
	valid.LLM.APIKey = "sk-test"

	tests := []struct {
		name    string
		mutate  func(*Config)
		missing bool
		wantErr bool
	}{
		{"valid", func(*Config) {}, false, false},
		{"no key", func(c *Config) { c.LLM.APIKey = "" }, true, true},
		{"no fast model", func(c *Config) { c.LLM.FastModel = "" }, true, true},
		{"no capable model", func(c *Config) { c.LLM.CapableModel = "" }, true, true},
		{"no base url", func(c *Config) { c.LLM.BaseURL = "" }, true, true},
		{"bad temperature", func(c *Config) { c.LLM.Temperature = 3 }, false, true},
		{"negative budget", func(c *Config) { c.Budget.MaxContextTokens = -1 }, false, true},
		{"zero concurrency", func(c *Config) { c.Budget.SummaryConcurrency = 0 }, false, true},
		{"zero budget allowed", func(c *Config) { c.Budget.MaxContextTokens = 0 }, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.missing, errors.Is(err, ErrConfigurationMissing))
		})
	}
}

func TestRedactedYAML(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.LLM.APIKey = "sk-secret"

	out, err := cfg.Redacted().YAML()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "sk-secret")
	assert.Equal(t, "sk-secret", cfg.LLM.APIKey, "Redacted must not modify the receiver")

	var decoded Config
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, "gpt-4o", decoded.LLM.CapableModel)
	assert.Equal(t, 100_000, decoded.Budget.MaxContextTokens)
}
