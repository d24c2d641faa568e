// metadata-smoke posts a fixed test URL to the extract_metadata cloud
// function with the caller's ID token and prints what comes back.
//
//	metadata-smoke [flags] <id-token>
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/curate/metadata-smoke/invoker"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const name = "metadata-smoke"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, nil))
}

// run returns the process exit code. Request and decode failures are reported
// on stdout and still exit 0; only a missing token or a bad flag does not.
func run(args []string, stdout, stderr io.Writer, httpClient *http.Client) int {
	settings := invoker.DefaultSettings()
	var verbose bool

	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&settings.Endpoint, "endpoint", settings.Endpoint, "extract function URL")
	flagSet.StringVar(&settings.TestURL, "url", settings.TestURL, "page to extract metadata from")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log request details to stderr")
	flagSet.Usage = func() { printUsage(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	idToken := flagSet.Arg(0)
	if idToken == "" {
		fmt.Fprintln(stdout, "Please provide an ID token as argument")
		printUsage(stdout, flagSet)
		return 1
	}

	logger := newLogger(stderr, verbose)
	defer func() { _ = logger.Sync() }()

	inv := invoker.NewInvoker(logger, httpClient, settings)
	resp, err := inv.Invoke(context.Background(), idToken)
	if err == nil {
		err = invoker.Print(stdout, resp)
	}
	if err != nil {
		logger.Debug("invocation failed", zap.Error(err))
		fmt.Fprintf(stdout, "Error: %v\n", err)
	}
	return 0
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, "usage: %s [flags] <id-token>\n\nFlags:\n", name)
	fmt.Fprint(w, flagSet.FlagUsages())
}

// newLogger keeps stdout for the response; logs go to stderr
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(w),
		level,
	)
	return zap.New(core)
}
