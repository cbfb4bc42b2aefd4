package root

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/YNCK000/strudel-studio/pkg/cli"
	"github.com/YNCK000/strudel-studio/pkg/validator"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a Strudel pattern file",
		Long:  `Validate Strudel pattern code without calling a model. Pass "-" to read from stdin.`,
		Example: `  strudel-studio validate pattern.js
  cat pattern.js | strudel-studio validate -`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cli.NewPrinter(cmd.OutOrStdout())

	var (
		code []byte
		err  error
	)
	if args[0] == "-" {
		code, err = io.ReadAll(cmd.InOrStdin())
	} else {
		code, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("reading pattern: %w", err)
	}

	res := validator.Validate(string(code))
	out.PrintValidation(res)

	if !res.Valid {
		return RuntimeError{Err: fmt.Errorf("validation failed")}
	}
	return nil
}
