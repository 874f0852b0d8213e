package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v3"

	"github.com/wudi/riskmatrix/export"
	"github.com/wudi/riskmatrix/observability"
	"github.com/wudi/riskmatrix/server"
)

const shutdownTimeout = 10 * time.Second

func cmdServe(rt *runtime) *cli.Command {
	var addr string

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the HTTP export server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "HTTP server address (default: server.addr from config)",
				Sources:     cli.EnvVars("RISKMATRIX_ADDR"),
				Destination: &addr,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if addr == "" {
				addr = rt.cfg.Server.Addr
			}
			handler, err := newHandler(rt)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			errCh := make(chan error, 1)
			go func() {
				rt.logger.Info("starting http server", observability.String("addr", addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- goerr.Wrap(err, "failed to start server", goerr.V("addr", addr))
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				rt.logger.Info("received shutdown signal", observability.String("signal", sig.String()))
			case <-ctx.Done():
				rt.logger.Info("context cancelled, shutting down")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}
			rt.logger.Info("server shutdown completed")
			return nil
		},
	}
}

// newHandler builds the export server with its own metrics registry.
func newHandler(rt *runtime) (http.Handler, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec := observability.NewPrometheusRecorder(reg)

	exp, err := rt.exporter(
		export.WithRecorder(rec),
		export.WithTracer(observability.NewLogTracer(rt.logger, rec)),
	)
	if err != nil {
		return nil, err
	}

	return server.New(exp,
		server.WithLogger(rt.logger),
		server.WithGatherer(reg),
		server.WithFilename(rt.cfg.Export.Filename),
		server.WithMaxBodyBytes(rt.cfg.Server.MaxBodyBytes),
	), nil
}
