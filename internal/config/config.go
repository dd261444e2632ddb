package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"

	"github.com/pkoster/apiref/codegen"
)

type Config struct {
	Spec      string         `koanf:"spec"`
	BaseURL   string         `koanf:"base-url"`
	Output    string         `koanf:"output"`
	LogLevel  string         `koanf:"log-level"`
	Templates TemplateConfig `koanf:"templates"`
	Example   ExampleConfig  `koanf:"example"`
}

type TemplateConfig struct {
	Dir string `koanf:"dir"`
}

type ExampleConfig struct {
	Stack string `koanf:"stack"`
}

// BindCommonFlags binds the flags shared by every subcommand.
func BindCommonFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringP("config", "c", "", "Config file path (default: apiref.yaml)")
	flags.StringP("spec", "s", "", "OpenAPI document path or URL")
	flags.String("base-url", "", "API base URL shown in the reference and examples")
	flags.StringP("output", "o", "", "Output file (default: stdout)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("templates", "", "Custom example templates directory")
}

// Load layers the config file, APIREF_* environment variables and
// command flags, later sources winning.
func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		configFile, _ = cmd.PersistentFlags().GetString("config")
	}
	if configFile == "" {
		if _, err := os.Stat("apiref.yaml"); err == nil {
			configFile = "apiref.yaml"
		}
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if envMap := buildEnvMap(); len(envMap) > 0 {
		if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
			return nil, fmt.Errorf("loading environment: %w", err)
		}
	}

	if flagsMap := buildFlagsMap(cmd); len(flagsMap) > 0 {
		if err := k.Load(confmap.Provider(flagsMap, "."), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envVars maps environment variables onto config keys. The set is
// explicit so supported variables stay greppable.
var envVars = map[string]string{
	"APIREF_SPEC":          "spec",
	"APIREF_BASE_URL":      "base-url",
	"APIREF_OUTPUT":        "output",
	"APIREF_LOG_LEVEL":     "log-level",
	"APIREF_TEMPLATES_DIR": "templates.dir",
	"APIREF_EXAMPLE_STACK": "example.stack",
}

func buildEnvMap() map[string]any {
	m := make(map[string]any)
	for env, key := range envVars {
		if v := os.Getenv(env); v != "" {
			m[key] = v
		}
	}
	return m
}

func buildFlagsMap(cmd *cobra.Command) map[string]any {
	m := make(map[string]any)

	getString := func(name string) string {
		if v, err := cmd.Flags().GetString(name); err == nil && v != "" {
			return v
		}
		if v, err := cmd.PersistentFlags().GetString(name); err == nil && v != "" {
			return v
		}
		return ""
	}

	if v := getString("spec"); v != "" {
		m["spec"] = v
	}
	if v := getString("base-url"); v != "" {
		m["base-url"] = v
	}
	if v := getString("output"); v != "" {
		m["output"] = v
	}
	if v := getString("log-level"); v != "" {
		m["log-level"] = v
	}
	if v := getString("templates"); v != "" {
		m["templates.dir"] = v
	}
	if v := getString("stack"); v != "" {
		m["example.stack"] = v
	}

	return m
}

func (c *Config) Validate() error {
	if c.Spec == "" {
		return fmt.Errorf("spec document is required")
	}

	validLevels := map[string]bool{"": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.LogLevel)
	}

	if c.Example.Stack != "" {
		if _, ok := codegen.LookupStack(c.Example.Stack); !ok {
			return &codegen.UnknownStackError{Stack: c.Example.Stack}
		}
	}

	return nil
}

// Level converts the configured log level. Empty means info.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
