// Package config loads settings for the catalogue command.
//
// Settings are layered in increasing precedence:
//
//  1. built-in defaults
//  2. a .env file in the working directory (optional)
//  3. CATALOGUE_* environment variables
//  4. a TOML or YAML config file passed with --config
//  5. command-line flags (applied by the caller)
//
// Example catalogue.toml:
//
//	dir = "data/catalogue"
//	file = "build/catalogue.json"
//	indent = "  "
//	debounce = "500ms"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/catalogue/pkg/errors"
)

// Environment variables read by Load.
const (
	EnvDir      = "CATALOGUE_DIR"
	EnvFile     = "CATALOGUE_FILE"
	EnvIndent   = "CATALOGUE_INDENT"
	EnvDebounce = "CATALOGUE_DEBOUNCE"
)

const (
	// DefaultImplodeFile is where implode writes when no file is given.
	DefaultImplodeFile = "catalogue_import.json"

	// DefaultDebounce is how long watch mode waits for changes to settle.
	DefaultDebounce = 300 * time.Millisecond

	// StdStream selects stdout for implode and stdin for explode.
	StdStream = "-"
)

// Mode selects the operation.
type Mode string

const (
	ModeImplode Mode = "implode"
	ModeExplode Mode = "explode"
)

// Config holds everything the command needs to run one operation.
type Config struct {
	Dir      string   `toml:"dir" yaml:"dir"`
	File     string   `toml:"file" yaml:"file"`
	Indent   string   `toml:"indent" yaml:"indent"`
	Verbose  bool     `toml:"verbose" yaml:"verbose"`
	Debounce Duration `toml:"debounce" yaml:"debounce"`
}

// Duration is a time.Duration that decodes from strings like "500ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{Debounce: Duration(DefaultDebounce)}
}

// Load builds a Config from defaults, .env, the environment and, if path is
// not empty, the config file at path.
func Load(path string) (Config, error) {
	cfg := Default()

	// .env is optional.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvDir)); v != "" {
		c.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvFile)); v != "" {
		c.File = v
	}
	if v, ok := os.LookupEnv(EnvIndent); ok {
		c.Indent = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDebounce)); v != "" {
		if err := c.Debounce.UnmarshalText([]byte(v)); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", EnvDebounce)
		}
	}
	return nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, c)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unsupported config format %q (use .toml, .yaml or .yml)", ext)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	return nil
}

// Validate checks the settings required by mode and fills mode-specific
// defaults.
func (c *Config) Validate(mode Mode) error {
	if c.Dir == "" {
		return errors.New(errors.ErrCodeInvalidInput, "a catalogue directory is required (--dir)")
	}
	if c.Debounce < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "debounce must not be negative")
	}

	switch mode {
	case ModeImplode:
		if c.File == "" {
			c.File = DefaultImplodeFile
		}
	case ModeExplode:
		if c.File == "" {
			return errors.New(errors.ErrCodeInvalidInput, "a catalogue file is required for explode (--file)")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "one of --implode or --explode is required")
	}
	return nil
}

// String renders the config for debug logs.
func (c Config) String() string {
	return fmt.Sprintf("dir=%q file=%q indent=%q debounce=%s", c.Dir, c.File, c.Indent, time.Duration(c.Debounce))
}
