package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arclabs561/runctl/pkg/services/provider"
)

type SyncCmd struct {
	profilePath string
	provider    string
	registry    provider.Registry
}

func NewSyncCmd(registry provider.Registry) *cobra.Command {
	sc := &SyncCmd{registry: registry}
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull the provider's current fleet view and report what it sees",
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.profilePath, "profile", "", "Path to the runctl profile")
	cmd.Flags().StringVar(&sc.provider, "provider", "aws", "Provider to query (aws, runpod)")

	_ = cmd.MarkFlagRequired("profile")

	return cmd
}

func (sc *SyncCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	prov, tr, err := buildFleet(ctx, sc.registry, sc.provider, sc.profilePath)
	if err != nil {
		return err
	}

	resources := tr.List()
	fmt.Fprintf(cmd.OutOrStdout(), "Synced %d resources from %s:\n", len(resources), prov.Name())
	for _, r := range resources {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s  %-12s %s\n", r.Status.ID, r.Status.State, r.Status.Name)
	}
	return nil
}
