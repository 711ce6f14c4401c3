// Package config loads the screenshot server settings from defaults, an
// optional YAML file and SCREENSHOT_MCP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables recognised by ApplyEnv.
const (
	EnvConfigFile = "SCREENSHOT_MCP_CONFIG"
	EnvLogLevel   = "SCREENSHOT_MCP_LOG_LEVEL"
	EnvLogFormat  = "SCREENSHOT_MCP_LOG_FORMAT"
	EnvLogFile    = "SCREENSHOT_MCP_LOG_FILE"
	EnvOutputDir  = "SCREENSHOT_MCP_DIR"
	EnvWSLDistro  = "SCREENSHOT_MCP_WSL_DISTRO"
)

// Containment selects whether a resolved save path must stay inside its base
// directory.
type Containment string

const (
	// ContainmentStrict rejects targets outside the base directory.
	ContainmentStrict Containment = "strict"
	// ContainmentOff trusts the caller and skips the check.
	ContainmentOff Containment = "off"
)

// Enforced reports whether the containment check runs.
func (c Containment) Enforced() bool {
	return c != ContainmentOff
}

// Config is the complete server configuration.
type Config struct {
	Output      OutputConfig      `yaml:"output"`
	Containment ContainmentConfig `yaml:"containment"`
	WSL         WSLConfig         `yaml:"wsl"`
	Logging     LoggingConfig     `yaml:"logging"`

	// Source records where the configuration came from.
	Source string `yaml:"-"`
}

// OutputConfig holds the default file locations.
type OutputConfig struct {
	// Dir is where take_screenshot_and_return_path writes.
	Dir string `yaml:"dir"`
	// Name is the default file name for path-based saves.
	Name string `yaml:"name"`
	// LatestName is the default file name for take_screenshot_and_return_path.
	LatestName string `yaml:"latest_name"`
}

// ContainmentConfig makes the per-operation trust boundary explicit.
type ContainmentConfig struct {
	SavePath   Containment `yaml:"save_path"`
	ReturnPath Containment `yaml:"return_path"`
	WSL        Containment `yaml:"wsl"`
}

// WSLConfig controls POSIX to UNC path translation.
type WSLConfig struct {
	// Distro forces the distribution name and skips detection.
	Distro string `yaml:"distro"`
	// DefaultDistro is used when detection yields nothing.
	DefaultDistro string `yaml:"default_distro"`
	// DetectTimeoutSeconds bounds the wsl.exe lookup.
	DetectTimeoutSeconds int `yaml:"detect_timeout_seconds"`
}

// LoggingConfig defines log verbosity, format and the optional append-mode file.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Output: OutputConfig{
			Dir:        filepath.Join(os.TempDir(), "screenshot-mcp"),
			Name:       "screenshot.jpg",
			LatestName: "latest_screenshot.jpg",
		},
		Containment: ContainmentConfig{
			SavePath:   ContainmentStrict,
			ReturnPath: ContainmentStrict,
			WSL:        ContainmentOff,
		},
		WSL: WSLConfig{
			DefaultDistro:        "Ubuntu",
			DetectTimeoutSeconds: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Source: "<defaults>",
	}
}

// Load returns the defaults overlaid with the YAML file at path. An empty
// path yields the defaults; a named file that does not exist is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("config file %q not found", path)
		}
		return cfg, fmt.Errorf("read config file %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %q: %w", path, err)
	}
	cfg.Source = path
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overlays SCREENSHOT_MCP_* variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.Logging.Level = v
	}
	if v := strings.TrimSpace(getenv(EnvLogFormat)); v != "" {
		c.Logging.Format = v
	}
	if v := strings.TrimSpace(getenv(EnvLogFile)); v != "" {
		c.Logging.File = v
	}
	if v := strings.TrimSpace(getenv(EnvOutputDir)); v != "" {
		c.Output.Dir = v
	}
	if v := strings.TrimSpace(getenv(EnvWSLDistro)); v != "" {
		c.WSL.Distro = v
	}
	c.normalize()
}

// Validate ensures the configuration is usable.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Output.Dir) == "" {
		return errors.New("output.dir must not be empty")
	}
	if strings.TrimSpace(c.Output.Name) == "" {
		return errors.New("output.name must not be empty")
	}
	if strings.TrimSpace(c.Output.LatestName) == "" {
		return errors.New("output.latest_name must not be empty")
	}

	for key, v := range map[string]Containment{
		"containment.save_path":   c.Containment.SavePath,
		"containment.return_path": c.Containment.ReturnPath,
		"containment.wsl":         c.Containment.WSL,
	} {
		if v != ContainmentStrict && v != ContainmentOff {
			return fmt.Errorf("%s must be %q or %q, got %q", key, ContainmentStrict, ContainmentOff, v)
		}
	}

	if strings.TrimSpace(c.WSL.DefaultDistro) == "" {
		return errors.New("wsl.default_distro must not be empty")
	}
	if c.WSL.DetectTimeoutSeconds <= 0 {
		return errors.New("wsl.detect_timeout_seconds must be positive")
	}

	if _, err := NormalizeLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if _, err := NormalizeFormat(c.Logging.Format); err != nil {
		return err
	}
	return nil
}

// NormalizeLogLevel lowercases level and checks it is one slog understands.
func NormalizeLogLevel(level string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(level))
	switch normalized {
	case "":
		return "info", nil
	case "debug", "info", "warn", "error":
		return normalized, nil
	default:
		return "", fmt.Errorf("unsupported log level %q", level)
	}
}

// NormalizeFormat lowercases format and maps aliases.
func NormalizeFormat(format string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(format))
	switch normalized {
	case "", "text", "console":
		return "text", nil
	case "json":
		return "json", nil
	default:
		return "", fmt.Errorf("unsupported log format %q", format)
	}
}

func (c *Config) normalize() {
	c.Containment.SavePath = Containment(strings.ToLower(strings.TrimSpace(string(c.Containment.SavePath))))
	c.Containment.ReturnPath = Containment(strings.ToLower(strings.TrimSpace(string(c.Containment.ReturnPath))))
	c.Containment.WSL = Containment(strings.ToLower(strings.TrimSpace(string(c.Containment.WSL))))
	c.WSL.Distro = strings.TrimSpace(c.WSL.Distro)
	c.WSL.DefaultDistro = strings.TrimSpace(c.WSL.DefaultDistro)
	c.Output.Dir = strings.TrimSpace(c.Output.Dir)
}
