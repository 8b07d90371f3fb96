// Package config loads service configuration from a YAML file plus
// ATTACHE_-prefixed environment variables. Every key has a default, so
// the zero configuration runs out of the box with the mock model and
// in-memory stores.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g.
// ATTACHE_SERVER_ADDR.
const EnvPrefix = "ATTACHE"

// Config is the full service configuration tree.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Model     ModelConfig     `mapstructure:"model"`
	Memory    MemoryConfig    `mapstructure:"memory"`
	Tools     ToolsConfig     `mapstructure:"tools"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// ModelConfig selects and parameterizes the model adapter.
type ModelConfig struct {
	// Provider is one of "mock", "openai", "anthropic".
	Provider string `mapstructure:"provider"`

	// Name is the provider-specific model identifier.
	Name string `mapstructure:"name"`

	// APIKey overrides the provider's environment credential.
	APIKey string `mapstructure:"api_key"`

	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`

	// MaxCallsPerTurn bounds model calls within one turn; 0 is
	// unlimited.
	MaxCallsPerTurn int `mapstructure:"max_calls_per_turn"`
}

// MemoryConfig configures session storage and compaction.
type MemoryConfig struct {
	// Strategy is one of "recency", "importance", "summarizer".
	Strategy string `mapstructure:"strategy"`

	// Keep is the survivor budget for compaction.
	Keep int `mapstructure:"keep"`

	// Bank is one of "memory", "file", "redis".
	Bank string `mapstructure:"bank"`

	// BankPath is the JSON file for the file bank.
	BankPath string `mapstructure:"bank_path"`

	// CheckpointDir enables session checkpoints when set.
	CheckpointDir string `mapstructure:"checkpoint_dir"`

	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig carries connection details for the Redis bank.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ToolsConfig parameterizes the bundled tools.
type ToolsConfig struct {
	// FilesRoot confines read_file to a directory when set.
	FilesRoot string `mapstructure:"files_root"`

	// FileMaxBytes caps read_file payloads; 0 is unlimited.
	FileMaxBytes int64 `mapstructure:"file_max_bytes"`

	// EmailSignature signs drafted emails.
	EmailSignature string `mapstructure:"email_signature"`
}

// SchedulerConfig configures the background compaction janitor.
type SchedulerConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Schedule  string        `mapstructure:"schedule"`
	IdleAfter time.Duration `mapstructure:"idle_after"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`

	// Format is "text" or "json".
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")

	v.SetDefault("model.provider", "mock")
	v.SetDefault("model.name", "")
	v.SetDefault("model.api_key", "")
	v.SetDefault("model.temperature", 0.7)
	v.SetDefault("model.max_tokens", 1024)
	v.SetDefault("model.max_calls_per_turn", 0)

	v.SetDefault("memory.strategy", "recency")
	v.SetDefault("memory.keep", 10)
	v.SetDefault("memory.bank", "memory")
	v.SetDefault("memory.bank_path", "")
	v.SetDefault("memory.checkpoint_dir", "")
	v.SetDefault("memory.redis.addr", "localhost:6379")
	v.SetDefault("memory.redis.password", "")
	v.SetDefault("memory.redis.db", 0)

	v.SetDefault("tools.files_root", "")
	v.SetDefault("tools.file_max_bytes", 0)
	v.SetDefault("tools.email_signature", "")

	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.schedule", "*/5 * * * *")
	v.SetDefault("scheduler.idle_after", "30m")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Load reads the configuration. With an explicit path the file must
// exist; with an empty path the well-known locations are searched and a
// missing file falls back to defaults. Environment variables win over
// file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("attache")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.attache")
		v.AddConfigPath("/etc/attache")

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks enum fields and numeric bounds.
func (c *Config) Validate() error {
	switch c.Model.Provider {
	case "mock", "openai", "anthropic":
	default:
		return fmt.Errorf("unknown model provider: %s", c.Model.Provider)
	}

	switch c.Memory.Strategy {
	case "recency", "importance", "summarizer":
	default:
		return fmt.Errorf("unknown compaction strategy: %s", c.Memory.Strategy)
	}

	switch c.Memory.Bank {
	case "memory", "redis":
	case "file":
		if c.Memory.BankPath == "" {
			return errors.New("memory.bank_path is required for the file bank")
		}
	default:
		return fmt.Errorf("unknown memory bank: %s", c.Memory.Bank)
	}

	if c.Memory.Keep < 0 {
		return errors.New("memory.keep must not be negative")
	}

	return nil
}
