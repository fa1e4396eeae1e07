// Package config handles stackmap.toml configuration for the merge tools.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/speakeasy-api/stackmap/frametype"
)

// FileName is the configuration file looked up by FindAndLoad.
const FileName = "stackmap.toml"

// Config represents a stackmap.toml file.
type Config struct {
	Merge Merge `toml:"merge"`
	Log   Log   `toml:"log"`

	// Path is the file the configuration was read from (set at load time).
	Path string `toml:"-"`
}

// Merge configures joins and frame merges.
type Merge struct {
	Strict      bool  `toml:"strict"`
	Memo        *bool `toml:"memo"`
	Parallelism int   `toml:"parallelism"`
}

// Log configures logging.
type Log struct {
	Level    string `toml:"level"`
	MaxSlots int    `toml:"max-slots"`
}

// Load parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	c.Path = path
	return c, nil
}

// Parse decodes configuration from TOML text. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var c Config
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %s", undecoded[0])
	}
	if c.Merge.Parallelism < 0 {
		return nil, fmt.Errorf("merge.parallelism must not be negative, got %d", c.Merge.Parallelism)
	}
	if c.Log.MaxSlots < 0 {
		return nil, fmt.Errorf("log.max-slots must not be negative, got %d", c.Log.MaxSlots)
	}
	return &c, nil
}

// FindAndLoad walks up from startDir to find a stackmap.toml file,
// then loads and returns it. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// Options returns the frametype options this configuration asks for.
// Settings left out of the file keep their defaults.
func (c *Config) Options() frametype.Options {
	opts := frametype.DefaultOptions()
	if c == nil {
		return opts
	}
	opts.Strict = c.Merge.Strict
	if c.Merge.Memo != nil {
		opts.EnableMemo = *c.Merge.Memo
	}
	if c.Merge.Parallelism > 0 {
		opts.Parallelism = c.Merge.Parallelism
	}
	if c.Log.Level != "" {
		opts.LogLevel = c.Log.Level
	}
	if c.Log.MaxSlots > 0 {
		opts.LogMaxSlots = c.Log.MaxSlots
	}
	return opts
}
