package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all configuration for resgen
type Config struct {
	ProjectDir   string   `mapstructure:"project_dir"`
	ResourceDir  string   `mapstructure:"resource_dir"`
	PlatformsDir string   `mapstructure:"platforms_dir"`
	ConfigXML    string   `mapstructure:"config_xml"`
	Manifest     string   `mapstructure:"manifest"`    // empty: embedded default manifest
	Unresolved   string   `mapstructure:"unresolved"`  // "fail" or "skip"
	Concurrency  int      `mapstructure:"concurrency"` // 0: runtime.NumCPU()
	Exclude      []string `mapstructure:"exclude"`     // doublestar globs relative to resource_dir
}

var defaultConfig = Config{
	ProjectDir:   ".",
	ResourceDir:  "resources",
	PlatformsDir: "platforms",
	ConfigXML:    "config.xml",
	Manifest:     "",
	Unresolved:   "fail",
	Concurrency:  0,
	Exclude:      []string{},
}

// flagBindings maps config keys to the command flags that override them.
var flagBindings = map[string]string{
	"project_dir": "project",
	"manifest":    "manifest",
	"unresolved":  "unresolved",
	"concurrency": "concurrency",
	"exclude":     "exclude",
}

// Default returns a copy of the built-in configuration.
func Default() *Config {
	c := defaultConfig
	c.Exclude = append([]string{}, defaultConfig.Exclude...)
	return &c
}

// LoadConfig loads configuration from defaults, resgen.yaml, RESGEN_*
// environment variables and, when flags is non-nil, any flags the user set.
// A --config flag points at an explicit file instead of the search paths.
func LoadConfig(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("project_dir", defaultConfig.ProjectDir)
	v.SetDefault("resource_dir", defaultConfig.ResourceDir)
	v.SetDefault("platforms_dir", defaultConfig.PlatformsDir)
	v.SetDefault("config_xml", defaultConfig.ConfigXML)
	v.SetDefault("manifest", defaultConfig.Manifest)
	v.SetDefault("unresolved", defaultConfig.Unresolved)
	v.SetDefault("concurrency", defaultConfig.Concurrency)
	v.SetDefault("exclude", defaultConfig.Exclude)

	explicit := ""
	if flags != nil {
		if f := flags.Lookup("config"); f != nil && f.Changed {
			explicit = f.Value.String()
		}
	}

	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigName("resgen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")     // Current directory
		v.AddConfigPath("$HOME") // Home directory
		if configDir, err := GetConfigDir(); err == nil {
			v.AddConfigPath(configDir)
		}
	}

	// Environment variables
	v.SetEnvPrefix("RESGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagBindings {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag --%s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks values that viper cannot type-check.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Unresolved) {
	case "fail", "skip", "":
	default:
		return fmt.Errorf("invalid unresolved policy %q (expected fail|skip)", c.Unresolved)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must be >= 0, got %d", c.Concurrency)
	}
	for _, pattern := range c.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}
	return nil
}

// GetConfigDir returns the user-level config directory
// ($XDG_CONFIG_HOME/resgen, falling back to ~/.config/resgen).
func GetConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "resgen"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %v", err)
	}
	return filepath.Join(home, ".config", "resgen"), nil
}
