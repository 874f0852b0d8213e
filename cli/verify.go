package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/wudi/riskmatrix/observability"
	"github.com/wudi/riskmatrix/writer"
	"github.com/wudi/riskmatrix/xref"
)

var (
	ErrMissingArgument = goerr.New("missing argument")
	ErrPageCheck       = goerr.New("page check failed")
)

func cmdVerify(rt *runtime) *cli.Command {
	var repair bool
	var margin float64

	return &cli.Command{
		Name:      "verify",
		Usage:     "Check the structure and the page placement of an exported PDF",
		ArgsUsage: "<file.pdf>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "repair",
				Usage:       "When the xref table is unusable, list the objects recovered by scanning the body",
				Destination: &repair,
			},
			&cli.FloatFlag{
				Name:        "margin",
				Usage:       "Page margin in points the image must stay inside",
				Value:       writer.DefaultMargin,
				Destination: &margin,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			path := c.Args().First()
			if path == "" {
				return goerr.Wrap(ErrMissingArgument, "verify needs a pdf path")
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return goerr.Wrap(err, "failed to read pdf", goerr.V("path", path))
			}

			out := c.Root().Writer
			report, verr := xref.Verify(data)
			printReport(out, path, report)
			if verr != nil {
				if repair && errors.Is(verr, xref.ErrMalformed) {
					if tbl, err := xref.Repair(data); err == nil {
						fmt.Fprintf(out, "recovered objects: %v\n", tbl.Objects())
					}
				}
				rt.logger.Warn("pdf failed verification",
					observability.String("path", path),
					observability.Int("issues", len(report.Issues)))
				return verr
			}

			issues, err := inspectPage(ctx, data, margin)
			if err != nil {
				return goerr.Wrap(err, "failed to inspect page", goerr.V("path", path))
			}
			for _, issue := range issues {
				fmt.Fprintf(out, "  %s\n", issue)
			}
			if len(issues) > 0 {
				rt.logger.Warn("pdf page check failed",
					observability.String("path", path),
					observability.Int("issues", len(issues)))
				return goerr.Wrap(ErrPageCheck, "verify", goerr.V("path", path), goerr.V("first", issues[0]))
			}
			fmt.Fprintln(out, "ok")
			return nil
		},
	}
}

func printReport(w io.Writer, path string, r *xref.Report) {
	if r == nil {
		fmt.Fprintf(w, "%s: unreadable\n", path)
		return
	}
	fmt.Fprintf(w, "%s: PDF %s, %d objects, root %d %d R, xref at %d\n",
		path, r.Version, len(r.Objects), r.Root.Num, r.Root.Gen, r.XRefOffset)
	for _, issue := range r.Issues {
		fmt.Fprintf(w, "  %s\n", issue)
	}
}
