// Package config layers defaults, an optional config file, JSONATOR_*
// environment variables and command-line flags into one Config.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"jsonator/internal/canonical"
	"jsonator/internal/logging"
	"jsonator/internal/processor"
)

const (
	// FileName is the config file discovered in the search directory,
	// with any extension viper understands (.toml, .yaml, .yml, .json).
	FileName  = ".jsonator"
	EnvPrefix = "JSONATOR"
)

type Config struct {
	Format  FormatConfig   `mapstructure:"format" toml:"format" yaml:"format"`
	Run     RunConfig      `mapstructure:"run" toml:"run" yaml:"run"`
	Logging logging.Config `mapstructure:"logging" toml:"logging" yaml:"logging"`
}

type FormatConfig struct {
	SortKeys bool `mapstructure:"sort_keys" toml:"sort_keys" yaml:"sort_keys"`
	// Indent is the number of spaces per level. Ignored when Tab, NoIndent
	// or Compact is set.
	Indent      int  `mapstructure:"indent" toml:"indent" yaml:"indent"`
	Tab         bool `mapstructure:"tab" toml:"tab" yaml:"tab"`
	NoIndent    bool `mapstructure:"no_indent" toml:"no_indent" yaml:"no_indent"`
	Compact     bool `mapstructure:"compact" toml:"compact" yaml:"compact"`
	EnsureASCII bool `mapstructure:"ensure_ascii" toml:"ensure_ascii" yaml:"ensure_ascii"`
}

type RunConfig struct {
	Check     bool `mapstructure:"check" toml:"check" yaml:"check"`
	Diff      bool `mapstructure:"diff" toml:"diff" yaml:"diff"`
	Color     bool `mapstructure:"color" toml:"color" yaml:"color"`
	Recursive bool `mapstructure:"recursive" toml:"recursive" yaml:"recursive"`
	// Workers is the size of the worker pool, 0 means one per CPU.
	Workers  int  `mapstructure:"workers" toml:"workers" yaml:"workers"`
	Progress bool `mapstructure:"progress" toml:"progress" yaml:"progress"`
	Quiet    bool `mapstructure:"quiet" toml:"quiet" yaml:"quiet"`
}

func Default() *Config {
	return &Config{
		Format: FormatConfig{
			Indent:      4,
			EnsureASCII: true,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load reads configuration. An explicit path must exist; otherwise FileName
// is looked up in searchDir and silently skipped when absent.
func Load(path, searchDir string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		if searchDir == "" {
			searchDir = "."
		}
		v.AddConfigPath(searchDir)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("format.sort_keys", d.Format.SortKeys)
	v.SetDefault("format.indent", d.Format.Indent)
	v.SetDefault("format.tab", d.Format.Tab)
	v.SetDefault("format.no_indent", d.Format.NoIndent)
	v.SetDefault("format.compact", d.Format.Compact)
	v.SetDefault("format.ensure_ascii", d.Format.EnsureASCII)

	v.SetDefault("run.check", d.Run.Check)
	v.SetDefault("run.diff", d.Run.Diff)
	v.SetDefault("run.color", d.Run.Color)
	v.SetDefault("run.recursive", d.Run.Recursive)
	v.SetDefault("run.workers", d.Run.Workers)
	v.SetDefault("run.progress", d.Run.Progress)
	v.SetDefault("run.quiet", d.Run.Quiet)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)
	v.SetDefault("logging.file_path", d.Logging.FilePath)
}

// Validate checks values a config file or the environment could get wrong.
func (c *Config) Validate() error {
	if c.Format.Indent < 0 {
		return &ConfigError{Field: "format.indent", Message: "must not be negative"}
	}

	layouts := 0
	for _, set := range []bool{c.Format.Tab, c.Format.NoIndent, c.Format.Compact} {
		if set {
			layouts++
		}
	}
	if layouts > 1 {
		return &ConfigError{Field: "format", Message: "tab, no_indent and compact are mutually exclusive"}
	}

	if c.Run.Workers < 0 {
		return &ConfigError{Field: "run.workers", Message: "must not be negative"}
	}

	if !logging.ValidLevel(c.Logging.Level) {
		return &ConfigError{Field: "logging.level", Message: fmt.Sprintf("unknown level %q", c.Logging.Level)}
	}
	if !logging.ValidFormat(c.Logging.Format) {
		return &ConfigError{Field: "logging.format", Message: fmt.Sprintf("unknown format %q", c.Logging.Format)}
	}
	if !logging.ValidOutput(c.Logging.Output) {
		return &ConfigError{Field: "logging.output", Message: fmt.Sprintf("unknown output %q", c.Logging.Output)}
	}
	if c.Logging.Output == "file" && c.Logging.FilePath == "" {
		return &ConfigError{Field: "logging.file_path", Message: "required when output is file"}
	}
	return nil
}

func (c *Config) FormatOptions() canonical.Options {
	opts := canonical.Options{
		SortKeys:    c.Format.SortKeys,
		EnsureASCII: c.Format.EnsureASCII,
	}
	switch {
	case c.Format.Compact:
		opts.Indent = canonical.Compact()
	case c.Format.NoIndent:
		opts.Indent = canonical.NoIndent()
	case c.Format.Tab:
		opts.Indent = canonical.Tab()
	default:
		opts.Indent = canonical.Spaces(c.Format.Indent)
	}
	return opts
}

func (c *Config) Mode() processor.Mode {
	return processor.Mode{
		CheckOnly: c.Run.Check,
		ShowDiff:  c.Run.Diff,
		Colorize:  c.Run.Color,
	}
}

// Dump renders the configuration as "toml" or "yaml".
func (c *Config) Dump(format string) ([]byte, error) {
	switch format {
	case "toml":
		return toml.Marshal(c)
	case "yaml", "yml":
		return yaml.Marshal(c)
	default:
		return nil, &ConfigError{Field: "output", Message: fmt.Sprintf("unsupported format %q", format)}
	}
}

type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
