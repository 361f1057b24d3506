package config

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vtree/internal/errors"
)

// File names searched by Load, in order.
var FileNames = []string{"vtree.json", "vtree.yaml", "vtree.yml"}

const (
	DefaultLogLevel     = "info"
	DefaultFrameBudget  = 16 * time.Millisecond
	DefaultTickInterval = time.Second
	DefaultTitle        = "vtree demo"
	DefaultInspectAddr  = "127.0.0.1:7070"
	DefaultNamespace    = "vtree"
)

// Format is a configuration file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Config is the complete vtree configuration.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty"`

	// FrameBudget delays low priority renders.
	FrameBudget Duration `json:"frame_budget,omitempty" yaml:"frame_budget,omitempty"`

	// TickInterval is how often the demo root receives a Tick.
	TickInterval Duration `json:"tick_interval,omitempty" yaml:"tick_interval,omitempty"`

	Demo    DemoConfig    `json:"demo" yaml:"demo"`
	Inspect InspectConfig `json:"inspect" yaml:"inspect"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	path  string
	level *slog.LevelVar
}

// DemoConfig configures the bundled multi-view demo.
type DemoConfig struct {
	Title string   `json:"title,omitempty" yaml:"title,omitempty"`
	Items []string `json:"items,omitempty" yaml:"items,omitempty"`
}

// InspectConfig configures the HTTP inspector.
type InspectConfig struct {
	Enabled bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Addr    string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// MetricsConfig configures Prometheus metric names.
type MetricsConfig struct {
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// Duration is a time.Duration written as a string such as "16ms".
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"16ms\": %w", err)
	}
	return d.parse(s)
}

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	if err := d.parse(s); err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	return nil
}

func (d *Duration) parse(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// New returns a Config with every default filled in.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load loads the first of FileNames found in dir.
func Load(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("V004").
		WithDetail("No " + strings.Join(FileNames, ", ") + " found in " + dir + ".").
		WithSuggestion("Run `vtree config > vtree.yaml` to write one.")
}

// LoadFile loads one configuration file. The format follows the extension.
func LoadFile(path string) (*Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("V004").Wrap(err)
		}
		return nil, errors.New("V001").Wrap(err)
	}
	c, err := Parse(data, format)
	if err != nil {
		if e, ok := err.(*errors.Error); ok && e.Code == "V001" {
			e.WithLocationFromError(path, e.Wrapped)
		}
		return nil, err
	}
	c.path = path
	return c, nil
}

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New("V002").WithDetail(fmt.Sprintf("%q has no .json, .yaml or .yml extension.", path))
}

// Parse decodes and validates a configuration.
func Parse(data []byte, format Format) (*Config, error) {
	c := &Config{}
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, c)
	case FormatYAML:
		err = yaml.Unmarshal(data, c)
	default:
		return nil, errors.New("V002")
	}
	if err != nil {
		return nil, errors.New("V001").Wrap(err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Encode writes c in format.
func (c *Config) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}
		return enc.Close()
	}
	return errors.New("V002")
}

// SaveTo writes c to path in the format its extension implies.
func (c *Config) SaveTo(path string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.New("V001").Wrap(err)
	}
	if err := c.Encode(f, format); err != nil {
		f.Close()
		return errors.New("V001").Wrap(err)
	}
	if err := f.Close(); err != nil {
		return errors.New("V001").Wrap(err)
	}
	c.path = path
	return nil
}

// Path returns the file c was loaded from or saved to.
func (c *Config) Path() string {
	return c.path
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.FrameBudget == 0 {
		c.FrameBudget = Duration(DefaultFrameBudget)
	}
	if c.TickInterval == 0 {
		c.TickInterval = Duration(DefaultTickInterval)
	}
	if c.Demo.Title == "" {
		c.Demo.Title = DefaultTitle
	}
	if c.Demo.Items == nil {
		c.Demo.Items = []string{"apples", "bread", "cheese"}
	}
	if c.Inspect.Addr == "" {
		c.Inspect.Addr = DefaultInspectAddr
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.LogLevel); err != nil {
		return errors.New("V003").Wrap(err).
			WithSuggestion("Use one of debug, info, warn or error.")
	}
	if c.FrameBudget < 0 {
		return errors.New("V003").Wrap(fmt.Errorf("frame_budget %s is negative", c.FrameBudget))
	}
	if c.TickInterval < Duration(time.Millisecond) {
		return errors.New("V003").Wrap(fmt.Errorf("tick_interval %s is below 1ms", c.TickInterval))
	}
	seen := make(map[string]bool, len(c.Demo.Items))
	for _, item := range c.Demo.Items {
		if item == "" {
			return errors.New("V003").Wrap(fmt.Errorf("demo.items contains an empty item"))
		}
		if seen[item] {
			return errors.New("V003").Wrap(fmt.Errorf("demo.items contains %q twice", item)).
				WithSuggestion("Items are keyed by their text, so each must be unique.")
		}
		seen[item] = true
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(s))
	return l, err
}

// LevelVar returns the log level as a variable, so it can be changed while
// a logger built from it is in use.
func (c *Config) LevelVar() *slog.LevelVar {
	if c.level == nil {
		c.level = new(slog.LevelVar)
		if l, err := parseLevel(c.LogLevel); err == nil {
			c.level.Set(l)
		}
	}
	return c.level
}

// SetLogLevel changes the level of loggers built by Logger.
func (c *Config) SetLogLevel(s string) error {
	l, err := parseLevel(s)
	if err != nil {
		return errors.New("V003").Wrap(err)
	}
	c.LogLevel = s
	c.LevelVar().Set(l)
	return nil
}

// Logger returns a text logger writing to w at the configured level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.LevelVar()}))
}
