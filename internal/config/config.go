// Package config loads ipamkit configuration.
//
// The file is looked up in this order:
//   - an explicit path (the --config flag)
//   - $IPAMKIT_CONFIG
//   - $XDG_CONFIG_HOME/ipamkit/config.yaml
//   - ~/.config/ipamkit/config.yaml
//
// A missing file yields Default(). IPAMKIT_URL overrides the backend URL.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/joshuapare/ipamkit/internal/logger"
	"github.com/joshuapare/ipamkit/pkg/preftree"
)

// Environment variables consulted by Load.
const (
	EnvConfig = "IPAMKIT_CONFIG"
	EnvURL    = "IPAMKIT_URL"
)

const appName = "ipamkit"

// BackendConfig locates the NIPAP web backend.
type BackendConfig struct {
	URL     string        `yaml:"url" validate:"required,url"`
	Timeout time.Duration `yaml:"timeout,omitempty" validate:"gte=0"`
}

// SearchConfig tunes the prefix list.
type SearchConfig struct {
	BatchSize       int           `yaml:"batch_size" validate:"gte=2"`
	Debounce        time.Duration `yaml:"debounce" validate:"gte=0"`
	RevealThreshold int           `yaml:"reveal_threshold" validate:"gte=1"`
	ParentsDepth    string        `yaml:"parents_depth" validate:"oneof=none immediate all"`
	ChildrenDepth   string        `yaml:"children_depth" validate:"oneof=none immediate all"`
	CollapsedTypes  []string      `yaml:"collapsed_types,omitempty" validate:"dive,oneof=reservation assignment host"`
}

// LogConfig controls the file logger.
type LogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir,omitempty"`
}

// Config is the top-level configuration.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Search  SearchConfig  `yaml:"search"`
	Log     LogConfig     `yaml:"log"`

	// Source is the file the configuration was read from, if any.
	Source string `yaml:"-"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Backend: BackendConfig{
			URL:     "http://localhost:5000",
			Timeout: 30 * time.Second,
		},
		Search: SearchConfig{
			BatchSize:       preftree.DefaultBatchSize,
			Debounce:        preftree.DefaultDebounce,
			RevealThreshold: preftree.DefaultRevealThreshold,
			ParentsDepth:    "all",
			ChildrenDepth:   "none",
			CollapsedTypes:  []string{"assignment"},
		},
	}
}

// Dir returns the XDG config directory for ipamkit.
func Dir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// Path resolves the config file to read. explicit wins when non-empty.
func Path(explicit string) string {
	if explicit != "" {
		return expandHome(explicit)
	}
	if p := os.Getenv(EnvConfig); p != "" {
		return expandHome(p)
	}
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the configuration, applies environment overrides and validates
// the result. An explicitly named file must exist.
func Load(explicit string) (Config, error) {
	path := Path(explicit)
	cfg, err := LoadFrom(path)
	if err != nil {
		return cfg, err
	}
	if explicit != "" && cfg.Source == "" {
		return cfg, fmt.Errorf("config file %s not found", path)
	}

	if u := os.Getenv(EnvURL); u != "" {
		cfg.Backend.URL = u
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFrom reads config from a specific path without validating it.
// Returns Default() if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("no config file", "path", path)
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.Source = path
	cfg.Log.Dir = expandHome(cfg.Log.Dir)

	logger.Debug("loaded config", "path", path)
	return cfg, nil
}

// SaveTo writes the config to path, creating parent directories.
func SaveTo(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

var validate = validator.New()

// Validate checks field constraints and reports every violation.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fieldPath(fe.Namespace()), fe.ActualTag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// fieldPath drops the root type name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// Options converts the search section to controller options.
func (s SearchConfig) Options() preftree.Options {
	opts := preftree.DefaultOptions()
	opts.BatchSize = s.BatchSize
	opts.RevealThreshold = s.RevealThreshold
	if s.CollapsedTypes != nil {
		opts.CollapsedTypes = append([]string(nil), s.CollapsedTypes...)
	}
	return opts
}

// Filters returns the configured search depths. Invalid values fall back
// to the defaults; Validate reports them.
func (s SearchConfig) Filters() preftree.Filters {
	f := preftree.Filters{ParentsDepth: preftree.DepthAll, ChildrenDepth: preftree.DepthNone}
	if d, err := preftree.ParseDepth(s.ParentsDepth); err == nil {
		f.ParentsDepth = d
	}
	if d, err := preftree.ParseDepth(s.ChildrenDepth); err == nil {
		f.ChildrenDepth = d
	}
	return f
}

// LoggerOptions converts the log section.
func (l LogConfig) LoggerOptions() logger.Options {
	return logger.Options{Enabled: l.Enabled, LogDir: l.Dir}
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
