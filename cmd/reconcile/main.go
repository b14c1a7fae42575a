package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reconcile/internal/config"
	"github.com/vango-dev/reconcile/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┬─┐┌─┐┌─┐┌─┐┌┐┌┌─┐┬┬  ┌─┐
  ├┬┘├┤ │  │ │││││  ││  ├┤
  ┴└─└─┘└─┘└─┘┘└┘└─┘┴┴─┘└─┘
`

// configPath is the --config flag shared by all commands.
var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Print(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Incremental view reconciliation engine",
		Long: `reconcile drives the incremental reconciliation engine.

It renders the demo application into an in-memory document,
benchmarks keyed list updates and serves the inspector:

  • Keyed child reconciliation with stable node identity
  • Component hosts with named slot projection
  • Batched re-renders through a dirty-host scheduler
  • Await-in-place for asynchronous subtrees`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Config file (default: nearest reconcile.json or reconcile.yaml)")

	rootCmd.AddCommand(
		demoCmd(),
		benchCmd(),
		serveCmd(),
		configCmd(),
		codesCmd(),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig loads --config, or the nearest project config, or the
// defaults, and validates it.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		var dir string
		if dir, err = os.Getwd(); err != nil {
			return nil, err
		}
		cfg, err = config.LoadOrDefault(dir)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the logger from cfg; verbose forces debug records.
func newLogger(cfg *config.Config, w io.Writer, verbose bool) *slog.Logger {
	if verbose {
		cfg.Log.Level = "debug"
	}
	return cfg.Logger(w)
}

// printBanner prints the ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
