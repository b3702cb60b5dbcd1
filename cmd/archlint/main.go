package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// version is set by goreleaser at build time.
var version = "dev"

// errBelowThreshold is returned by analyze when the score is under
// --fail-under.
var errBelowThreshold = errors.New("score below threshold")

// extraCommands are added to the root command by build-tag specific files.
var extraCommands []func(app *app) *cobra.Command

// app carries the process-wide writers and flags shared by subcommands.
type app struct {
	stdout  io.Writer
	stderr  io.Writer
	verbose bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.Is(err, errBelowThreshold) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(&app{stdout: stdout, stderr: stderr})
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "archlint",
		Short:         "Architecture-quality analyzer: dependency cycles, coupling risk and a health score",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newAnalyzeCmd(a),
		newGraphCmd(a),
		newServeCmd(a),
		newVersionCmd(a),
	)
	for _, fn := range extraCommands {
		root.AddCommand(fn(a))
	}
	return root
}

// logger returns a text logger on stderr: debug level with --verbose,
// warnings only otherwise.
func (a *app) logger() *slog.Logger {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(a.stdout, version)
		},
	}
}

// rootArg returns the analysis root named by args, defaulting to ".".
func rootArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
