package root

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/YNCK000/strudel-studio/pkg/cli"
	"github.com/YNCK000/strudel-studio/pkg/config"
	"github.com/YNCK000/strudel-studio/pkg/environment"
	"github.com/YNCK000/strudel-studio/pkg/provider"
	"github.com/YNCK000/strudel-studio/pkg/provider/anthropic"
	"github.com/YNCK000/strudel-studio/pkg/runtime"
	"github.com/YNCK000/strudel-studio/pkg/session"
	"github.com/YNCK000/strudel-studio/pkg/tools"
	"github.com/YNCK000/strudel-studio/pkg/tools/builtin"
)

type generateFlags struct {
	root *rootFlags
	fast bool
}

func newGenerateCmd(root *rootFlags) *cobra.Command {
	flags := generateFlags{root: root}

	cmd := &cobra.Command{
		Use:   "generate <prompt>...",
		Short: "Generate a Strudel pattern from a prompt",
		Example: `  strudel-studio generate "a minimal techno loop at 132 bpm"
  strudel-studio generate --fast "simple house beat"`,
		Args: cobra.MinimumNArgs(1),
		RunE: flags.run,
	}

	cmd.Flags().BoolVar(&flags.fast, "fast", false, "Use the fast budget instead of the patient one")

	return cmd
}

func (f *generateFlags) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cli.NewPrinter(cmd.OutOrStdout())

	p, cfg, err := buildProvider(ctx, f.root.configPath)
	if err != nil {
		return err
	}

	resolveBudget := cfg.StreamBudget
	if f.fast {
		resolveBudget = cfg.SyncBudget
	}
	budget, err := resolveBudget()
	if err != nil {
		return err
	}

	rt := runtime.New(p, newRegistry(), budget)
	sess := session.New(session.WithUserMessage(strings.Join(args, " ")))

	failed := false
	for ev := range rt.RunStream(ctx, sess) {
		out.PrintEvent(ev)
		if _, ok := ev.(*runtime.ErrorEvent); ok {
			failed = true
		}
	}
	if failed {
		return RuntimeError{Err: fmt.Errorf("generation failed")}
	}

	return nil
}

func buildProvider(ctx context.Context, configPath string) (provider.Provider, *config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	p, err := anthropic.NewClient(ctx, anthropic.Config{
		Model:     cfg.Model.Name,
		BaseURL:   cfg.Model.BaseURL,
		MaxTokens: cfg.Model.MaxTokens,
	}, environment.NewOS())
	if err != nil {
		return nil, nil, err
	}

	return p, cfg, nil
}

func newRegistry() *tools.Registry {
	return tools.NewRegistry(
		builtin.NewGenreLookupTool(),
		builtin.NewValidateTool(),
	)
}
