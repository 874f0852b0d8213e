// Package cli wires configuration, logging and the export pipeline into the
// riskmatrix command.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/wudi/riskmatrix/config"
	"github.com/wudi/riskmatrix/export"
	"github.com/wudi/riskmatrix/observability"
)

// runtime is the state shared by every subcommand once Before has run.
type runtime struct {
	cfg    config.Config
	logger observability.Logger

	configPath string
	logLevel   string
	logFormat  string
}

func (rt *runtime) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to a TOML configuration file",
			Sources:     cli.EnvVars("RISKMATRIX_CONFIG"),
			Destination: &rt.configPath,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Sources:     cli.EnvVars("RISKMATRIX_LOG_LEVEL"),
			Destination: &rt.logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console, json)",
			Sources:     cli.EnvVars("RISKMATRIX_LOG_FORMAT"),
			Destination: &rt.logFormat,
		},
	}
}

// configure loads the file config, applies flag overrides and builds the
// logger on w.
func (rt *runtime) configure(w io.Writer) error {
	cfg, err := config.Load(rt.configPath)
	if err != nil {
		return err
	}
	if rt.logLevel != "" {
		cfg.Log.Level = rt.logLevel
	}
	if rt.logFormat != "" {
		cfg.Log.Format = rt.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Log.Level, cfg.Log.Format, w)
	if err != nil {
		return goerr.Wrap(err, "failed to configure logger")
	}
	rt.cfg = *cfg
	rt.logger = logger
	return nil
}

func (rt *runtime) exporter(opts ...export.Option) (*export.Exporter, error) {
	base := []export.Option{
		export.WithLogger(rt.logger),
		export.WithWidth(rt.cfg.Render.Width),
		export.WithQuality(rt.cfg.Render.JPEGQuality),
	}
	return export.New(append(base, opts...)...)
}

func Run(ctx context.Context, args []string, version string) error {
	return run(ctx, args, version, os.Stdin, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, version string, stdin io.Reader, stdout, stderr io.Writer) error {
	rt := &runtime{logger: observability.NopLogger{}}

	app := &cli.Command{
		Name:      "riskmatrix",
		Usage:     "Render risk matrices to single page PDF reports",
		Version:   version,
		Flags:     rt.flags(),
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if err := rt.configure(stderr); err != nil {
				return ctx, err
			}
			rt.logger.Debug("starting riskmatrix",
				observability.String("version", version),
				observability.String("config", rt.configPath))
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdExport(rt),
			cmdServe(rt),
			cmdVerify(rt),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		rt.logger.Error("failed to run riskmatrix", observability.Error("error", err))
		return err
	}
	return nil
}
