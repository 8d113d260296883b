package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/mdbear/internal/foundation/errors"
)

// DefaultConfigFile is the config path used when none is given on the command line.
const DefaultConfigFile = "config.toml"

const (
	defaultContentDir = "content"
	defaultThemeDir   = "theme"
	defaultPort       = 3000
	defaultDebounce   = 100 * time.Millisecond
)

// Config is the site configuration. It is loaded once per build and never mutated afterwards.
type Config struct {
	SiteIcon   string     `toml:"site_icon" yaml:"site_icon"`
	SiteName   string     `toml:"site_name" yaml:"site_name"`
	Author     string     `toml:"author" yaml:"author"`
	OutputDir  string     `toml:"output_dir" yaml:"output_dir"`
	ContentDir string     `toml:"content_dir" yaml:"content_dir"`
	ThemeDir   string     `toml:"theme_dir" yaml:"theme_dir"`
	Nav        []NavEntry `toml:"nav" yaml:"nav"`

	Build BuildConfig `toml:"build" yaml:"build"`
	Serve ServeConfig `toml:"serve" yaml:"serve"`

	// Root is the directory holding the config file. Relative directories resolve against it.
	Root string `toml:"-" yaml:"-"`
}

// BuildConfig holds optional build behaviour.
type BuildConfig struct {
	// CheckLinks scans the rendered output for relative links to missing files.
	CheckLinks bool `toml:"check_links" yaml:"check_links"`
	// HardWraps renders Markdown soft line breaks as <br>.
	HardWraps bool `toml:"hard_wraps" yaml:"hard_wraps"`
}

// ServeConfig holds defaults for the serve command.
type ServeConfig struct {
	Port       int    `toml:"port" yaml:"port"`
	Debounce   string `toml:"debounce" yaml:"debounce"`
	LiveReload *bool  `toml:"live_reload" yaml:"live_reload"`
	HistoryDB  string `toml:"history_db" yaml:"history_db"`
	// Open launches the default browser once the server is listening.
	Open bool `toml:"open" yaml:"open"`

	// DebounceWindow is Debounce parsed during Load.
	DebounceWindow time.Duration `toml:"-" yaml:"-"`
}

// LiveReloadEnabled reports whether the live-reload script is injected (default true).
func (s ServeConfig) LiveReloadEnabled() bool {
	return s.LiveReload == nil || *s.LiveReload
}

// Load reads, expands and validates the configuration at path.
//
// .env and .env.local next to the config file are loaded first when present;
// existing environment variables are never overwritten. ${VAR} references in the
// file are expanded before decoding.
func Load(path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "cannot resolve config path").
			Fatal().WithContext("path", path).Build()
	}
	root := filepath.Dir(abs)
	loadEnvFiles(root)

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "cannot read config file").
			Fatal().WithContext("path", path).Build()
	}

	cfg, err := Parse(expandEnv(data), formatFor(abs))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "cannot parse config file").
			Fatal().WithContext("path", path).Build()
	}
	cfg.Root = root

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Format identifies a config file syntax.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

func formatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Parse decodes raw config bytes without defaults or validation.
func Parse(data []byte, format Format) (*Config, error) {
	var cfg Config
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	return &cfg, nil
}

func (c *Config) finalize() error {
	c.applyDefaults()
	if c.Serve.Debounce != "" {
		d, err := time.ParseDuration(c.Serve.Debounce)
		if err != nil || d < 0 {
			return errors.ConfigError("serve.debounce must be a non-negative duration").
				WithCause(err).WithContext("value", c.Serve.Debounce).Build()
		}
		c.Serve.DebounceWindow = d
	}
	return c.Validate()
}

func (c *Config) applyDefaults() {
	if c.ContentDir == "" {
		c.ContentDir = defaultContentDir
	}
	if c.ThemeDir == "" {
		c.ThemeDir = defaultThemeDir
	}
	if c.Serve.Port == 0 {
		c.Serve.Port = defaultPort
	}
	if c.Serve.Debounce == "" {
		c.Serve.DebounceWindow = defaultDebounce
	}
}

// ContentPath returns the resolved content root.
func (c *Config) ContentPath() string { return c.resolve(c.ContentDir) }

// ThemePath returns the resolved theme root.
func (c *Config) ThemePath() string { return c.resolve(c.ThemeDir) }

// OutputPath returns the resolved output directory.
func (c *Config) OutputPath() string { return c.resolve(c.OutputDir) }

func (c *Config) resolve(dir string) string {
	if filepath.IsAbs(dir) || c.Root == "" {
		return filepath.Clean(dir)
	}
	return filepath.Join(c.Root, dir)
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces ${VAR} with its value (empty when unset). Bare $words are
// left as written.
func expandEnv(data []byte) []byte {
	return envRef.ReplaceAllFunc(data, func(m []byte) []byte {
		return []byte(os.Getenv(string(m[2 : len(m)-1])))
	})
}

func loadEnvFiles(dir string) {
	for _, name := range []string{".env", ".env.local"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			fmt.Fprintf(os.Stderr, "Note: could not load %s: %v\n", p, err)
		}
	}
}
