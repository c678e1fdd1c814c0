package commands

import (
	"github.com/spf13/cobra"

	"github.com/arclabs561/runctl/pkg/runtime/terminal/export"
	"github.com/arclabs561/runctl/pkg/services/costreport"
	"github.com/arclabs561/runctl/pkg/services/provider"
)

type StatusCmd struct {
	profilePath string
	provider    string
	registry    provider.Registry
	reporter    *export.Reporter
}

func NewStatusCmd(registry provider.Registry, reporter *export.Reporter) *cobra.Command {
	sc := &StatusCmd{registry: registry, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show every tracked resource with its state and accrued cost",
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.profilePath, "profile", "", "Path to the runctl profile")
	cmd.Flags().StringVar(&sc.provider, "provider", "aws", "Provider to query (aws, runpod)")

	_ = cmd.MarkFlagRequired("profile")

	return cmd
}

func (sc *StatusCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	_, tr, err := buildFleet(ctx, sc.registry, sc.provider, sc.profilePath)
	if err != nil {
		return err
	}

	return sc.reporter.Handle(costreport.Build(tr))
}
