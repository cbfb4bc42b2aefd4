package root

import (
	"cmp"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/YNCK000/strudel-studio/pkg/cli"
	"github.com/YNCK000/strudel-studio/pkg/server"
)

type apiFlags struct {
	root       *rootFlags
	listenAddr string
}

func newAPICmd(root *rootFlags) *cobra.Command {
	flags := apiFlags{root: root}

	cmd := &cobra.Command{
		Use:   "api",
		Short: "Start the HTTP API server",
		Long:  "Start the server that exposes pattern generation and validation over HTTP",
		Args:  cobra.NoArgs,
		RunE:  flags.run,
	}

	cmd.Flags().StringVarP(&flags.listenAddr, "listen", "l", "", "Address to listen on (overrides the config file)")

	return cmd
}

func (f *apiFlags) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cli.NewPrinter(cmd.OutOrStdout())

	p, cfg, err := buildProvider(ctx, f.root.configPath)
	if err != nil {
		return err
	}

	syncBudget, err := cfg.SyncBudget()
	if err != nil {
		return err
	}
	streamBudget, err := cfg.StreamBudget()
	if err != nil {
		return err
	}

	s := server.New(p, newRegistry())
	s.SetBudgets(syncBudget, streamBudget)

	addr := cmp.Or(f.listenAddr, cfg.ListenAddr())
	ln, err := server.Listen(ctx, addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	out.Println("Listening on " + ln.Addr().String())
	slog.Debug("Starting server", "addr", ln.Addr().String())

	return s.Serve(ctx, ln)
}
