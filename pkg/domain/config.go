package domain

import (
	"github.com/google/uuid"
)

// Config is the immutable configuration of one run.
type Config struct {
	id        string
	logLevel  Level
	flags     Flags
	className string
	path      string
}

// ConfigOption configures a Config during construction.
type ConfigOption func(*Config)

// WithID sets the run identifier. A random UUID is used otherwise.
func WithID(id string) ConfigOption {
	return func(c *Config) {
		if id != "" {
			c.id = id
		}
	}
}

// WithLogLevel sets the threshold of the run's message log.
func WithLogLevel(l Level) ConfigOption {
	return func(c *Config) {
		c.logLevel = l
	}
}

// WithFlags sets the run flags. The map is copied.
func WithFlags(m map[string]any) ConfigOption {
	return func(c *Config) {
		c.flags = NewFlags(m)
	}
}

// WithFlagSet sets the run flags from an existing set.
func WithFlagSet(f Flags) ConfigOption {
	return func(c *Config) {
		c.flags = f
	}
}

// WithClassName records the name of the script that runs under this config.
func WithClassName(name string) ConfigOption {
	return func(c *Config) {
		c.className = name
	}
}

// WithPath records where the script was loaded from, if anywhere.
func WithPath(path string) ConfigOption {
	return func(c *Config) {
		c.path = path
	}
}

// NewConfig builds a Config. Defaults: random id, DefaultLevel, no flags.
func NewConfig(opts ...ConfigOption) *Config {
	c := &Config{logLevel: DefaultLevel}
	for _, opt := range opts {
		opt(c)
	}
	if c.id == "" {
		c.id = uuid.New().String()
	}
	return c
}

func (c *Config) ID() string        { return c.id }
func (c *Config) LogLevel() Level   { return c.logLevel }
func (c *Config) Flags() Flags      { return c.flags }
func (c *Config) ClassName() string { return c.className }
func (c *Config) Path() string      { return c.path }

// ConfigSnapshot is the serializable form of a Config.
type ConfigSnapshot struct {
	ID        string         `json:"id" yaml:"id"`
	LogLevel  Level          `json:"log_level" yaml:"log_level"`
	Flags     map[string]any `json:"flags" yaml:"flags"`
	ClassName string         `json:"class_name,omitempty" yaml:"class_name,omitempty"`
	Path      string         `json:"path,omitempty" yaml:"path,omitempty"`
}

// Snapshot returns a detached, serializable copy of the config.
func (c *Config) Snapshot() ConfigSnapshot {
	return ConfigSnapshot{
		ID:        c.id,
		LogLevel:  c.logLevel,
		Flags:     c.flags.Map(),
		ClassName: c.className,
		Path:      c.path,
	}
}
