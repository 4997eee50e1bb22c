package content

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/anima-content/engine/core"
)

// Config configures a ContentManager. It can be loaded from a TOML file:
//
//	root-directory = "Content"
//	log-level = "debug"
//	raw-fallback = true
//	watch = false
type Config struct {
	// RootDirectory is prefixed to every asset name.
	RootDirectory string `toml:"root-directory" json:"root-directory"`
	// LogLevel is one of debug, info, warn, error. The logger is process wide,
	// so managers never apply it themselves; see ApplyLogLevel.
	LogLevel string `toml:"log-level" json:"log-level"`
	// RawFallback enables loading source images and fonts when no usable
	// container exists.
	RawFallback bool `toml:"raw-fallback" json:"raw-fallback"`
	// Watch reloads cached assets when their files change. It only applies
	// to the file system provider.
	Watch bool `toml:"watch" json:"watch"`
}

// ApplyLogLevel sets the shared logger to c.LogLevel. An empty level keeps
// the current one. Call it once per process, not per manager.
func (c *Config) ApplyLogLevel() error {
	if c.LogLevel == "" {
		return nil
	}
	if err := core.SetLogLevel(c.LogLevel); err != nil {
		return errors.Wrapf(err, "log level %q", c.LogLevel)
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		RootDirectory: "Content",
		LogLevel:      "info",
		RawFallback:   true,
	}
}

// LoadConfig reads a TOML config file. Keys missing from the file keep their
// default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}
