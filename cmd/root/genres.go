package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YNCK000/strudel-studio/pkg/cli"
	"github.com/YNCK000/strudel-studio/pkg/reference"
)

func newGenresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "genres [genre]",
		Short: "List known genres or print one genre guide",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runGenres,
	}
}

func runGenres(cmd *cobra.Command, args []string) error {
	out := cli.NewPrinter(cmd.OutOrStdout())

	if len(args) == 0 {
		for _, genre := range reference.Keys() {
			out.Println(genre)
		}
		return nil
	}

	doc, ok := reference.Lookup(args[0])
	if !ok {
		out.Printf("Unknown genre %q. Known genres:\n", args[0])
		for _, genre := range reference.Keys() {
			out.Printf(" - %s\n", genre)
		}
		return RuntimeError{Err: fmt.Errorf("unknown genre %q", args[0])}
	}

	out.Println(doc)
	return nil
}
