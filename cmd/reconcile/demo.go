package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reconcile/internal/demo"
	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/dom/htmldom"
	"github.com/vango-dev/reconcile/pkg/render"
)

func demoCmd() *cobra.Command {
	var (
		ticks   int
		html    bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Render the demo list and step it",
		Long: `Render the grocery list demo into an in-memory document and
apply a number of ticks, printing a summary of every pass.

Examples:
  reconcile demo
  reconcile demo --ticks=8 --html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ticks < 0 {
				return errors.New("X001").WithDetailf("--ticks must not be negative, got %d", ticks)
			}
			return runDemo(cmd.Context(), cmd.OutOrStdout(), ticks, html, verbose)
		},
	}

	cmd.Flags().IntVarP(&ticks, "ticks", "n", 4, "Number of ticks to apply")
	cmd.Flags().BoolVar(&html, "html", false, "Print the final document body")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every pass")

	return cmd
}

func runDemo(ctx context.Context, w io.Writer, ticks int, html, verbose bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	app := demo.NewApp()
	doc := htmldom.NewDocument()
	c, err := render.New(doc.Body(),
		render.WithLoader(app.Registry),
		render.WithLogger(newLogger(cfg, os.Stderr, verbose)),
		render.WithBatchDelay(cfg.BatchDelay()))
	if err != nil {
		return err
	}
	defer c.Close(context.Background())

	rc, err := c.Render(ctx, app.View()).Await(ctx)
	if err != nil {
		return err
	}
	printPass(w, 0, rc)

	for i := 1; i <= ticks; i++ {
		rcs, err := app.Tick(ctx, c)
		if err != nil {
			return err
		}
		for _, rc := range rcs {
			printPass(w, i, rc)
		}
	}

	if html {
		var markup string
		if err := c.Do(ctx, func() { markup = htmldom.InnerHTML(doc.Body()) }); err != nil {
			return err
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, markup)
	}
	return nil
}

func printPass(w io.Writer, tick int, rc *render.RenderContext) {
	perf := rc.Perf()
	success(w, "tick %d  %-6s ops=%d created=%d moved=%d removed=%d rendered=%d  %s",
		tick, rc.Kind(), perf.Operations, perf.Created, perf.Moved, perf.Removed,
		perf.ComponentsRendered, perf.Duration)
	for _, err := range rc.Errors() {
		warn(w, "%v", err)
	}
}
