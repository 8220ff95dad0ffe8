package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// statusToken is the shortest prefix an asis file read must be able to hold.
const statusToken = len("Status: ")

type (
	NET struct {
		// SocketPath is the filesystem path of the unix socket to listen on. A stale
		// file at the path is removed before binding.
		SocketPath string `toml:"socket_path" json:"socket_path"`
		// ReadBufferSize is the size of a single read, both from the connection and
		// from an asis file. The request line and the status line of an asis file must
		// each fit into a single read.
		ReadBufferSize int `toml:"read_buffer_size" json:"read_buffer_size"`
		// ReadTimeout limits how long a single read from the connection may block. Zero
		// disables it, so a silent peer holds its connection forever.
		ReadTimeout Duration `toml:"read_timeout" json:"read_timeout" test:"nullable"`
		// AcceptLoopInterruptPeriod controls how often will the Accept() call be interrupted
		// in order to check whether it's time to stop. Defaults to 5 seconds.
		AcceptLoopInterruptPeriod Duration `toml:"accept_loop_interrupt_period" json:"accept_loop_interrupt_period"`
	}

	FS struct {
		// Root is the directory request targets are resolved against.
		Root string `toml:"root" json:"root"`
		// IndexFile is tried first, as <target>/<IndexFile>.
		IndexFile string `toml:"index_file" json:"index_file"`
		// Extension is appended to the target if no index file exists.
		Extension string `toml:"extension" json:"extension"`
	}

	Log struct {
		Level  string `toml:"level" json:"level"`
		Format string `toml:"format" json:"format"`
	}
)

// Config holds everything the server needs to know to run.
//
// You should modify defaults (returned via Default()) instead of initializing
// the config manually.
type Config struct {
	NET NET `toml:"net" json:"net"`
	FS  FS  `toml:"fs" json:"fs"`
	Log Log `toml:"log" json:"log"`
}

// Default returns default config.
func Default() *Config {
	return &Config{
		NET: NET{
			SocketPath:                "./socket",
			ReadBufferSize:            1024,
			AcceptLoopInterruptPeriod: Duration(5 * time.Second),
		},
		FS: FS{
			Root:      ".",
			IndexFile: "index.asis",
			Extension: ".asis",
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a TOML file at path on top of the defaults. Keys missing in the
// file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err = toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	switch {
	case len(c.NET.SocketPath) == 0:
		return errors.New("config: empty socket path")
	case c.NET.ReadBufferSize <= statusToken:
		return fmt.Errorf("config: read buffer size must be greater than %d", statusToken)
	case c.NET.ReadTimeout < 0:
		return errors.New("config: negative read timeout")
	case c.NET.AcceptLoopInterruptPeriod <= 0:
		return errors.New("config: accept loop interrupt period must be positive")
	case len(c.FS.Root) == 0:
		return errors.New("config: empty root directory")
	case len(c.FS.IndexFile) == 0:
		return errors.New("config: empty index file name")
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}

	return nil
}

// SlogLevel parses the configured level name.
func (l Log) SlogLevel() (level slog.Level, err error) {
	if err = level.UnmarshalText([]byte(l.Level)); err != nil {
		return level, fmt.Errorf("config: bad log level %q: %w", l.Level, err)
	}

	return level, nil
}

// Duration is a time.Duration which is written as a string ("90s", "5m") in
// config files.
type Duration time.Duration

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}

	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}
