package config

import (
	"bytes"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/wudi/riskmatrix/filters"
	"github.com/wudi/riskmatrix/raster"
)

var ErrInvalidConfig = goerr.New("invalid configuration")

// Config is the runtime configuration of the export tool and server.
type Config struct {
	Render Render `toml:"render"`
	Export Export `toml:"export"`
	Log    Log    `toml:"log"`
	Server Server `toml:"server"`
}

type Render struct {
	Width       int `toml:"width"`
	JPEGQuality int `toml:"jpeg_quality"`
}

type Export struct {
	Filename string `toml:"filename"`
}

type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type Server struct {
	Addr         string `toml:"addr"`
	MaxBodyBytes int64  `toml:"max_body_bytes"`
}

func Default() Config {
	return Config{
		Render: Render{Width: raster.DefaultWidth, JPEGQuality: filters.DefaultQuality},
		Export: Export{Filename: "matriz-de-riscos.pdf"},
		Log:    Log{Level: "info", Format: "console"},
		Server: Server{Addr: ":8080", MaxBodyBytes: 1 << 20},
	}
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if c.Render.Width < raster.MinWidth || c.Render.Width > filters.MaxImageDimension {
		return goerr.Wrap(ErrInvalidConfig, "render.width out of range", goerr.V("width", c.Render.Width), goerr.V("min", raster.MinWidth), goerr.V("max", filters.MaxImageDimension))
	}
	if c.Render.JPEGQuality < 1 || c.Render.JPEGQuality > 100 {
		return goerr.Wrap(ErrInvalidConfig, "render.jpeg_quality must be between 1 and 100", goerr.V("jpeg_quality", c.Render.JPEGQuality))
	}
	if strings.TrimSpace(c.Export.Filename) == "" {
		return goerr.Wrap(ErrInvalidConfig, "export.filename is required")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return goerr.Wrap(ErrInvalidConfig, "unknown log.level", goerr.V("level", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		return goerr.Wrap(ErrInvalidConfig, "unknown log.format", goerr.V("format", c.Log.Format))
	}
	if c.Server.Addr == "" {
		return goerr.Wrap(ErrInvalidConfig, "server.addr is required")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return goerr.Wrap(ErrInvalidConfig, "server.max_body_bytes must be positive", goerr.V("max_body_bytes", c.Server.MaxBodyBytes))
	}
	return nil
}

// Parse decodes TOML over the defaults, so absent keys keep their default
// values, and validates the result. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config", goerr.V("cause", err.Error()))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads a TOML file. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		return &cfg, nil
	}
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V("path", path))
	}
	return cfg, nil
}
