// Package root wires the command line interface.
package root

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/YNCK000/strudel-studio/pkg/environment"
)

type rootFlags struct {
	debugMode  bool
	configPath string
}

func NewRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "strudel-studio",
		Short: "strudel-studio - AI assistant for Strudel live-coding patterns",
		Long:  "strudel-studio generates and validates Strudel music patterns, either from the command line or as an HTTP API",
		Example: `  strudel-studio generate "a four on the floor house beat"
  strudel-studio validate pattern.js
  strudel-studio api --listen :8765`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			flags.setupLogging(cmd.ErrOrStderr())
		},
		// If no subcommand is specified, show help
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().BoolVarP(&flags.debugMode, "debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to a YAML config file")

	cmd.AddCommand(newGenerateCmd(&flags))
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newGenresCmd())
	cmd.AddCommand(newAPICmd(&flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func Execute(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, args ...string) error {
	rootCmd := NewRootCmd()
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetContext(ctx)
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		return processErr(ctx, err, stderr)
	}
	return nil
}

func processErr(ctx context.Context, err error, stderr io.Writer) error {
	var envErr *environment.RequiredEnvError

	switch {
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.As(err, &envErr):
		fmt.Fprintln(stderr, "The following environment variables must be set:")
		for _, v := range envErr.Missing {
			fmt.Fprintf(stderr, " - %s\n", v)
		}
	case errors.As(err, &RuntimeError{}):
		// Runtime errors have already been printed by the command itself
	default:
		fmt.Fprintln(stderr, err)
	}

	return err
}

// setupLogging configures slog. Debug logs go to stderr; without --debug all
// logging is discarded so command output stays clean.
func (f *rootFlags) setupLogging(stderr io.Writer) {
	if !f.debugMode {
		slog.SetDefault(slog.New(slog.DiscardHandler))
		return
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

// RuntimeError wraps errors already reported to the user to distinguish them
// from usage errors.
type RuntimeError struct {
	Err error
}

func (e RuntimeError) Error() string {
	return e.Err.Error()
}

func (e RuntimeError) Unwrap() error {
	return e.Err
}
