package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arclabs561/runctl/pkg/services/provider"
)

// NewLifecycleCmds returns the start/stop/terminate commands. Each acts
// on a single resource ID and relies on the provider's retry policy to
// absorb transient API failures.
func NewLifecycleCmds(registry provider.Registry) []*cobra.Command {
	ops := []struct {
		use   string
		short string
		call  func(provider.Provider, context.Context, string) error
	}{
		{
			use:   "start <resource-id>",
			short: "Start a stopped resource",
			call: func(p provider.Provider, ctx context.Context, id string) error {
				return p.Start(ctx, id)
			},
		},
		{
			use:   "stop <resource-id>",
			short: "Stop a running resource without destroying it",
			call: func(p provider.Provider, ctx context.Context, id string) error {
				return p.Stop(ctx, id)
			},
		},
		{
			use:   "terminate <resource-id>",
			short: "Destroy a resource",
			call: func(p provider.Provider, ctx context.Context, id string) error {
				return p.Terminate(ctx, id)
			},
		},
	}

	cmds := make([]*cobra.Command, 0, len(ops))
	for _, op := range ops {
		op := op
		var profilePath, providerName string

		cmd := &cobra.Command{
			Use:   op.use,
			Short: op.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()

				prov, err := registry.Create(ctx, providerName, profilePath)
				if err != nil {
					return fmt.Errorf("failed to create provider %q: %w", providerName, err)
				}
				if err := op.call(prov, ctx, args[0]); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", args[0])
				return nil
			},
		}

		cmd.Flags().StringVar(&profilePath, "profile", "", "Path to the runctl profile")
		cmd.Flags().StringVar(&providerName, "provider", "aws", "Provider to use (aws, runpod)")
		_ = cmd.MarkFlagRequired("profile")

		cmds = append(cmds, cmd)
	}
	return cmds
}
