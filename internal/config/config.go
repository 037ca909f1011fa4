// Package config loads aictx settings from an optional YAML file and
// AICTX_* environment variables.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"

	// EnvPrefix is prepended to upper-cased keys, e.g. AICTX_TOKEN_BUDGET.
	EnvPrefix = "AICTX"
	// DefaultConfigName is searched for in the working directory when no path is given.
	DefaultConfigName = "aictx"
)

// Config holds every setting of the aictx CLI.
type Config struct {
	Provider     string `mapstructure:"provider"`
	Model        string `mapstructure:"model"`
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	MaxTokens    int    `mapstructure:"max_tokens"`
	TokenBudget  int    `mapstructure:"token_budget"` // ≤ 0 sends the full history
	SystemPrompt string `mapstructure:"system_prompt"`
	MaxMessages  int    `mapstructure:"max_messages"` // < 0 is unbounded
	Speaker      string `mapstructure:"speaker"`
	Transcript   string `mapstructure:"transcript"` // relative to DataRoot
	DataRoot     string `mapstructure:"data_root"`
	LogLevel     string `mapstructure:"log_level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", ProviderAnthropic)
	v.SetDefault("model", "")
	v.SetDefault("api_key", "")
	v.SetDefault("base_url", "")
	v.SetDefault("max_tokens", 1024)
	v.SetDefault("token_budget", 8000)
	v.SetDefault("system_prompt", "")
	v.SetDefault("max_messages", -1)
	v.SetDefault("speaker", "default")
	v.SetDefault("transcript", "conversation.json")
	v.SetDefault("data_root", ".")
	v.SetDefault("log_level", "info")
}

// Load reads path (or ./aictx.yaml when path is empty and it exists), applies
// defaults and environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "config: read")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "config: decode")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderAnthropic, ProviderOpenAI:
	default:
		return errors.Errorf("config: unknown provider %q", c.Provider)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrapf(err, "config: log_level %q", c.LogLevel)
	}
	if c.Transcript == "" {
		return errors.New("config: transcript must not be empty")
	}
	if c.MaxTokens < 0 {
		return errors.Errorf("config: max_tokens %d is negative", c.MaxTokens)
	}
	return nil
}

// Level returns the parsed log level; invalid levels fall back to info.
func (c *Config) Level() zerolog.Level {
	l, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return l
}

// Bounded reports whether the history has a retention bound.
func (c *Config) Bounded() bool { return c.MaxMessages >= 0 }
