package cli

import (
	"context"
	"image/png"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/wudi/riskmatrix/export"
	"github.com/wudi/riskmatrix/filters"
	"github.com/wudi/riskmatrix/observability"
	"github.com/wudi/riskmatrix/raster"
	"github.com/wudi/riskmatrix/risk"
)

// previewWidth bounds the PNG written by --preview.
const previewWidth = 700

func cmdExport(rt *runtime) *cli.Command {
	var input, description, output, preview string

	return &cli.Command{
		Name:  "export",
		Usage: "Export a risk list (JSON) to a PDF risk matrix",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "input",
				Aliases:     []string{"i"},
				Usage:       "JSON file with {description, risks} or a bare risk array; - reads stdin",
				Value:       "-",
				Destination: &input,
			},
			&cli.StringFlag{
				Name:        "description",
				Aliases:     []string{"d"},
				Usage:       "Object description; overrides the one in the input",
				Destination: &description,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "Output PDF path; - writes stdout (default: export.filename from config)",
				Destination: &output,
			},
			&cli.StringFlag{
				Name:        "preview",
				Usage:       "Also write a downscaled PNG of the matrix to this path",
				Destination: &preview,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			payload, err := readPayload(c.Root().Reader, input)
			if err != nil {
				return err
			}
			if description != "" {
				payload.Description = description
			}

			tracer := observability.NewLogTracer(rt.logger, observability.NopRecorder{})
			exp, err := rt.exporter(export.WithTracer(tracer))
			if err != nil {
				return err
			}
			pdf, err := exp.Export(ctx, payload.Description, payload.Risks)
			if err != nil {
				return err
			}

			if output == "" {
				output = rt.cfg.Export.Filename
			}
			if output == "-" {
				if _, err := c.Root().Writer.Write(pdf); err != nil {
					return goerr.Wrap(err, "failed to write pdf")
				}
			} else if err := os.WriteFile(output, pdf, 0o644); err != nil {
				return goerr.Wrap(err, "failed to write pdf", goerr.V("path", output))
			}
			rt.logger.Info("exported risk matrix",
				observability.String("output", output),
				observability.Int("risks", len(payload.Risks)),
				observability.Int("bytes", len(pdf)))

			if preview != "" {
				if err := writePreview(rt, preview, payload); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func readPayload(stdin io.Reader, path string) (*risk.Payload, error) {
	if path == "" || path == "-" {
		return risk.DecodePayload(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open input", goerr.V("path", path))
	}
	defer f.Close()
	return risk.DecodePayload(f)
}

func writePreview(rt *runtime, path string, payload *risk.Payload) error {
	r, err := raster.NewRenderer(raster.Options{Width: rt.cfg.Render.Width})
	if err != nil {
		return err
	}
	img, err := r.Render(payload.Description, payload.Risks)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return goerr.Wrap(err, "failed to create preview", goerr.V("path", path))
	}
	defer f.Close()
	if err := png.Encode(f, filters.Downscale(img, previewWidth)); err != nil {
		return goerr.Wrap(err, "failed to encode preview", goerr.V("path", path))
	}
	rt.logger.Info("wrote preview", observability.String("path", path))
	return nil
}
