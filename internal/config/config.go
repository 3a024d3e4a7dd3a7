// Package config loads llmexplain configuration from defaults, an optional
// YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. LLMEXPLAIN_LLM_API_KEY.
const EnvPrefix = "LLMEXPLAIN"

// ErrConfigurationMissing reports that required configuration, such as the
// API credential, is absent. It is detected before any network call.
var ErrConfigurationMissing = errors.New("configuration missing")

// Config is the complete llmexplain configuration.
type Config struct {
	LLM    LLMConfig    `mapstructure:"llm" yaml:"llm"`
	Budget BudgetConfig `mapstructure:"budget" yaml:"budget"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
}

// LLMConfig configures the completion endpoint and the two model tiers.
type LLMConfig struct {
	BaseURL           string        `mapstructure:"base_url" yaml:"base_url"`
	APIKey            string        `mapstructure:"api_key" yaml:"api_key"`
	FastModel         string        `mapstructure:"fast_model" yaml:"fast_model"`
	CapableModel      string        `mapstructure:"capable_model" yaml:"capable_model"`
	Temperature       float64       `mapstructure:"temperature" yaml:"temperature"`
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	MaxRetries        int           `mapstructure:"max_retries" yaml:"max_retries"`
}

// BudgetConfig configures the context budget decision.
type BudgetConfig struct {
	MaxContextTokens   int    `mapstructure:"max_context_tokens" yaml:"max_context_tokens"`
	Encoding           string `mapstructure:"encoding" yaml:"encoding"`
	SummaryConcurrency int    `mapstructure:"summary_concurrency" yaml:"summary_concurrency"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LLM: LLMConfig{
			BaseURL:           "https://api.openai.com/v1",
			FastModel:         "gpt-4o-mini",
			CapableModel:      "gpt-4o",
			Temperature:       0.1,
			Timeout:           120 * time.Second,
			RequestsPerSecond: 2,
			MaxRetries:        3,
		},
		Budget: BudgetConfig{
			MaxContextTokens:   100_000,
			SummaryConcurrency: 1,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Load reads configuration. path may be empty, in which case only defaults
// and the environment are used. The credential falls back to OPENAI_API_KEY
// when LLMEXPLAIN_LLM_API_KEY is unset. Load does not validate.
func Load(path string) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("llm.base_url", def.LLM.BaseURL)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.fast_model", def.LLM.FastModel)
	v.SetDefault("llm.capable_model", def.LLM.CapableModel)
	v.SetDefault("llm.temperature", def.LLM.Temperature)
	v.SetDefault("llm.timeout", def.LLM.Timeout)
	v.SetDefault("llm.requests_per_second", def.LLM.RequestsPerSecond)
	v.SetDefault("llm.max_retries", def.LLM.MaxRetries)
	v.SetDefault("budget.max_context_tokens", def.Budget.MaxContextTokens)
	v.SetDefault("budget.encoding", def.Budget.Encoding)
	v.SetDefault("budget.summary_concurrency", def.Budget.SummaryConcurrency)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	return &cfg, nil
}

// Validate checks the configuration once, before any client is built.
// Missing required values wrap ErrConfigurationMissing.
func (c *Config) Validate() error {
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	if c.Budget.MaxContextTokens < 0 {
		return fmt.Errorf("budget.max_context_tokens must not be negative, got %d", c.Budget.MaxContextTokens)
	}
	if c.Budget.SummaryConcurrency < 1 {
		return fmt.Errorf("budget.summary_concurrency must be at least 1, got %d", c.Budget.SummaryConcurrency)
	}
	return nil
}

// Validate checks the completion endpoint configuration.
func (c *LLMConfig) Validate() error {
	switch {
	case c.APIKey == "":
		return fmt.Errorf("%w: llm.api_key (set %s_LLM_API_KEY or OPENAI_API_KEY)", ErrConfigurationMissing, EnvPrefix)
	case c.BaseURL == "":
		return fmt.Errorf("%w: llm.base_url", ErrConfigurationMissing)
	case c.FastModel == "":
		return fmt.Errorf("%w: llm.fast_model", ErrConfigurationMissing)
	case c.CapableModel == "":
		return fmt.Errorf("%w: llm.capable_model", ErrConfigurationMissing)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2, got %g", c.Temperature)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("llm.max_retries must not be negative, got %d", c.MaxRetries)
	}
	return nil
}

// Redacted returns a copy of c with the credential masked.
func (c Config) Redacted() Config {
	if c.LLM.APIKey != "" {
		c.LLM.APIKey = "********"
	}
	return c
}

// YAML renders c as YAML.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
