package commands

import (
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/cobra"

	"github.com/arclabs561/runctl/pkg/runtime/terminal/export"
	"github.com/arclabs561/runctl/pkg/services/costreport"
	"github.com/arclabs561/runctl/pkg/services/provider"
)

type CostCmd struct {
	profilePath string
	provider    string
	reconcile   bool
	days        int
	registry    provider.Registry
	reporter    *export.Reporter
}

func NewCostCmd(registry provider.Registry, reporter *export.Reporter) *cobra.Command {
	cc := &CostCmd{registry: registry, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Report accumulated fleet cost",
		RunE:  cc.run,
	}

	cmd.Flags().StringVar(&cc.profilePath, "profile", "", "Path to the runctl profile")
	cmd.Flags().StringVar(&cc.provider, "provider", "aws", "Provider to query (aws, runpod)")
	cmd.Flags().BoolVar(&cc.reconcile, "reconcile", false, "Compare tracked estimate against Cost Explorer actuals (aws only)")
	cmd.Flags().IntVar(&cc.days, "days", 7, "Trailing window for reconciliation, in days")

	_ = cmd.MarkFlagRequired("profile")

	return cmd
}

func (cc *CostCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	_, tr, err := buildFleet(ctx, cc.registry, cc.provider, cc.profilePath)
	if err != nil {
		return err
	}

	if err := cc.reporter.Handle(costreport.Build(tr)); err != nil {
		return err
	}

	if !cc.reconcile {
		return nil
	}
	if cc.provider != "aws" {
		return fmt.Errorf("reconciliation requires the aws provider, got %q", cc.provider)
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	rec, err := costreport.NewReconciler(cfg).Reconcile(ctx, tr, cc.days)
	if err != nil {
		return fmt.Errorf("failed to reconcile costs: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"\nReconciliation over %d days:\n  tracked estimate: $%.4f\n  billed (Cost Explorer): $%.4f\n  delta: $%.4f\n",
		rec.Days, rec.TrackedCost, rec.BilledCost, rec.Delta)
	return nil
}
