package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config describes the top-level application configuration loaded from YAML and ENV.
type Config struct {
	Version   string                    `mapstructure:"version"`
	Providers map[string]ProviderConfig `mapstructure:"providers"`
	Models    map[string]ModelConfig    `mapstructure:"models"`
	Agent     AgentConfig               `mapstructure:"agent"`
	Docstore  DocstoreConfig            `mapstructure:"docstore"`
	Tools     ToolsConfig               `mapstructure:"tools"`
	Logging   LoggingConfig             `mapstructure:"logging"`
	Server    ServerConfig              `mapstructure:"server"`
}

// ProviderConfig represents LLM provider configuration such as OpenAI, Ollama, or custom gateways.
type ProviderConfig struct {
	Type    string        `mapstructure:"type"`     // openai, openrouter, ollama, vllm, lmstudio, custom
	BaseURL string        `mapstructure:"base_url"` // API base URL
	APIKey  string        `mapstructure:"api_key"`  // optional API key
	Timeout time.Duration `mapstructure:"timeout"`  // request timeout
}

// ModelConfig binds a logical model name to a provider entry and model parameters.
type ModelConfig struct {
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Default     bool    `mapstructure:"default"`
}

// AgentConfig describes default loop parameters for daemon-hosted agents.
type AgentConfig struct {
	Variant       string  `mapstructure:"variant"`        // default variant served when a request names none
	Model         string  `mapstructure:"model"`          // logical model id ("" = registry default)
	MaxIterations int     `mapstructure:"max_iterations"` // 0 = unbounded
	RepairRetry   string  `mapstructure:"repair_retry"`   // auto, on, off
	MaxTokens     int     `mapstructure:"max_tokens"`
	Temperature   float64 `mapstructure:"temperature"`
	// File optionally points at a JSON/YAML agent definition that overrides
	// the settings above for the default variant.
	File string `mapstructure:"file"`
}

// DocstoreConfig configures the document store backing the react-docstore variant.
type DocstoreConfig struct {
	Path string `mapstructure:"path"` // directory of plain-text documents (title = file name)
}

// ToolsConfig configures builtin tools offered to the zero-shot variant.
type ToolsConfig struct {
	AllowExec          bool     `mapstructure:"allow_exec"`
	AllowedCommands    []string `mapstructure:"allowed_commands"`
	DeniedCommands     []string `mapstructure:"denied_commands"`
	WorkingDir         string   `mapstructure:"working_dir"`
	ExecTimeoutSeconds int      `mapstructure:"exec_timeout_seconds"`
}

// LoggingConfig controls logger behaviour.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // console or json
}

// ServerConfig describes daemon settings.
type ServerConfig struct {
	Addr           string `mapstructure:"addr"`
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
	Transport      string `mapstructure:"transport"` // connect or ndjson
}

// KnownVariants lists the agent variant names accepted in configuration.
var KnownVariants = []string{
	"zero-shot-react-description",
	"react-docstore",
	"self-ask-with-search",
}

// Load reads configuration from the provided path or defaults to configs/config.yaml.
// Environment variables override file values (prefix: REAGENT_, dots replaced with underscores).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("REAGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("configs")
	} else {
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && path == "" {
			v.SetConfigName("config.example")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else {
			return nil, fmt.Errorf("read config: %w", err)
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

// setDefaults populates sensible defaults for optional fields.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("agent.variant", "zero-shot-react-description")
	v.SetDefault("agent.model", "")
	v.SetDefault("agent.max_iterations", 15)
	v.SetDefault("agent.repair_retry", "auto")
	v.SetDefault("agent.max_tokens", 512)
	v.SetDefault("agent.temperature", 0)

	v.SetDefault("docstore.path", "")

	v.SetDefault("tools.allow_exec", false)
	v.SetDefault("tools.exec_timeout_seconds", 30)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.metrics_enabled", true)
	v.SetDefault("server.transport", "connect")
}

// Validate performs basic sanity checks on configuration values.
func (c *Config) Validate() error {
	if len(c.Providers) == 0 {
		return errors.New("at least one provider must be configured")
	}

	if len(c.Models) == 0 {
		return errors.New("at least one model must be defined")
	}

	var defaultFound bool
	for name, p := range c.Providers {
		if p.Type == "" {
			return fmt.Errorf("provider %q must define type", name)
		}
	}

	for name, m := range c.Models {
		if m.Provider == "" {
			return fmt.Errorf("model %q must reference provider", name)
		}

		if _, ok := c.Providers[m.Provider]; !ok {
			return fmt.Errorf("model %q references unknown provider %q", name, m.Provider)
		}

		if m.Temperature < 0 || m.Temperature > 2 {
			return fmt.Errorf("model %q temperature must be within [0,2]", name)
		}

		if m.MaxTokens < 0 {
			return fmt.Errorf("model %q max_tokens cannot be negative", name)
		}

		if m.Default {
			defaultFound = true
		}
	}

	if !defaultFound {
		return errors.New("at least one model should be marked as default")
	}

	if c.Agent.Model != "" {
		if _, ok := c.Models[c.Agent.Model]; !ok {
			return fmt.Errorf("agent references unknown model %q", c.Agent.Model)
		}
	}

	if !validVariant(c.Agent.Variant) {
		return fmt.Errorf("agent.variant must be one of %s, got %q", strings.Join(KnownVariants, ", "), c.Agent.Variant)
	}

	if c.Agent.MaxIterations < 0 {
		return errors.New("agent.max_iterations must be >= 0")
	}

	switch strings.ToLower(strings.TrimSpace(c.Agent.RepairRetry)) {
	case "", "auto", "on", "off":
	default:
		return fmt.Errorf("agent.repair_retry must be one of auto, on, off, got %q", c.Agent.RepairRetry)
	}

	if c.Tools.ExecTimeoutSeconds <= 0 {
		return errors.New("tools.exec_timeout_seconds must be > 0")
	}

	switch strings.ToLower(strings.TrimSpace(c.Server.Transport)) {
	case "", "connect", "ndjson":
	default:
		return fmt.Errorf("server.transport must be one of connect or ndjson, got %q", c.Server.Transport)
	}

	return nil
}

func validVariant(name string) bool {
	for _, v := range KnownVariants {
		if v == name {
			return true
		}
	}
	return false
}
