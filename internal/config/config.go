// Package config loads filmtag settings from TOML.
//
// Values come from, in increasing priority: built-in defaults, the config
// file (~/.config/filmtag/config.toml or ./filmtag.toml), then command-line
// flags applied by the cmd package. A missing config file is not an error.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/choiway/filmtag/internal/roll"
)

//go:embed sample_config.toml
var sampleConfig string

// ExifTool configures the external metadata tool.
type ExifTool struct {
	Binary     string `toml:"binary"`
	ConfigPath string `toml:"config_path"`
}

// Images configures how frame numbers map to files.
type Images struct {
	Extension string `toml:"extension"`
	Pattern   string `toml:"pattern"`
	InPlace   bool   `toml:"inplace"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Ledger configures the optional record of runs. An empty DSN disables it.
type Ledger struct {
	DSN string `toml:"dsn"`
}

// Config encapsulates all configuration values for filmtag.
type Config struct {
	ExifTool ExifTool `toml:"exiftool"`
	Images   Images   `toml:"images"`
	Logging  Logging  `toml:"logging"`
	Ledger   Ledger   `toml:"ledger"`
}

const (
	defaultBinary    = "exiftool"
	defaultExtension = "jpg"
	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with built-in defaults.
func Default() Config {
	return Config{
		ExifTool: ExifTool{Binary: defaultBinary},
		Images: Images{
			Extension: defaultExtension,
			Pattern:   roll.DefaultPattern,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/filmtag/config.toml")
}

// Load locates and parses a configuration file. It returns the config, the
// path that was considered and whether that file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.Normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

// Normalize trims values, restores defaults for blanks and expands paths.
func (c *Config) Normalize() error {
	def := Default()

	c.ExifTool.Binary = strings.TrimSpace(c.ExifTool.Binary)
	if c.ExifTool.Binary == "" {
		c.ExifTool.Binary = def.ExifTool.Binary
	}
	if p := strings.TrimSpace(c.ExifTool.ConfigPath); p != "" {
		expanded, err := ExpandPath(p)
		if err != nil {
			return err
		}
		c.ExifTool.ConfigPath = expanded
	}

	c.Images.Extension = strings.TrimPrefix(strings.TrimSpace(c.Images.Extension), ".")
	if c.Images.Extension == "" {
		c.Images.Extension = def.Images.Extension
	}
	if c.Images.Pattern == "" {
		c.Images.Pattern = def.Images.Pattern
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = def.Logging.Format
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}

	c.Ledger.DSN = strings.TrimSpace(c.Ledger.DSN)
	if c.Ledger.DSN != "" && !isURL(c.Ledger.DSN) {
		expanded, err := ExpandPath(c.Ledger.DSN)
		if err != nil {
			return err
		}
		c.Ledger.DSN = expanded
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := roll.ParsePattern(c.Images.Pattern); err != nil {
		return fmt.Errorf("images.pattern: %w", err)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

// CreateSample writes the sample configuration to path.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("filmtag.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// ExpandPath resolves a leading ~ and makes the path absolute.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

func isURL(value string) bool {
	return strings.Contains(value, "://")
}
