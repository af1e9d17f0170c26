package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/urlkit/internal/config"
	"github.com/vango-dev/urlkit/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦ ╦┬─┐┬  ┬┌─┬┌┬┐
  ║ ║├┬┘│  ├┴┐│ │
  ╚═╝┴└─┴─┘┴ ┴┴ ┴
`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	dir     string
	verbose bool
	noColor bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "urlkit",
		Short: "Parse, build and inspect URLs and query strings",
		Long: `urlkit parses and serializes URL query strings and decomposes URLs.

Use it from the terminal or run it as a service:

  • parse, encode, segments and check work on a single URL
  • serve exposes the codec over HTTP and a WebSocket location channel
  • batch decomposes URL lists read from local disk or S3
  • store lists, prints and removes the objects batch works on`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				errors.DisableColors()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.dir, "dir", "C", ".", "Project directory containing urlkit.json")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored error output")

	rootCmd.AddCommand(
		parseCmd(opts),
		encodeCmd(opts),
		segmentsCmd(opts),
		checkCmd(opts),
		serveCmd(opts),
		batchCmd(opts),
		storeCmd(opts),
		certCmd(opts),
		initCmd(opts),
		versionCmd(),
	)

	return rootCmd
}

// loadConfig reads urlkit.json from the project directory, falling back to
// defaults when there is none.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	return config.LoadOrDefault(o.dir)
}

// logger writes text logs to the command's stderr.
func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// exactArgs is cobra.ExactArgs with coded errors.
func exactArgs(n int, names ...string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return errors.New("U081").
				WithDetail(fmt.Sprintf("%s needs %s", cmd.Name(), names[len(args)])).
				WithSuggestion("Run 'urlkit " + cmd.Name() + " --help'")
		}
		if len(args) > n {
			return errors.New("U080").
				WithDetail(fmt.Sprintf("%s takes %d argument(s), got %d", cmd.Name(), n, len(args))).
				WithSuggestion("Quote URLs that contain spaces or '&'")
		}
		return nil
	}
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printBanner prints the urlkit ASCII art banner.
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
