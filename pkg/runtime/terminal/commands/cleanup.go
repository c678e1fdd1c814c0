package commands

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/arclabs561/runctl/pkg/models/domain"
	"github.com/arclabs561/runctl/pkg/runtime/terminal/export"
	"github.com/arclabs561/runctl/pkg/services/cleanup"
	"github.com/arclabs561/runctl/pkg/services/provider"
)

type CleanupCmd struct {
	profilePath string
	provider    string
	dryRun      bool
	force       bool
	all         bool
	minAgeMin   int
	protect     []string
	registry    provider.Registry
	reporter    *export.Reporter
}

func NewCleanupCmd(registry provider.Registry, reporter *export.Reporter) *cobra.Command {
	cc := &CleanupCmd{registry: registry, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "cleanup [resource-id...]",
		Short: "Tear down resources that are safe to delete",
		Long: `Classifies each candidate as deletable or skipped, then terminates
the approved subset. Explicit and tag-based protection always hold;
--force bypasses only the minimum-age grace period.`,
		RunE: cc.run,
	}

	cmd.Flags().StringVar(&cc.profilePath, "profile", "", "Path to the runctl profile")
	cmd.Flags().StringVar(&cc.provider, "provider", "aws", "Provider to query (aws, runpod)")
	cmd.Flags().BoolVar(&cc.dryRun, "dry-run", false, "Preview the classification without deleting anything")
	cmd.Flags().BoolVar(&cc.force, "force", false, "Bypass the minimum-age grace period")
	cmd.Flags().BoolVar(&cc.all, "all", false, "Consider every tracked resource a candidate")
	cmd.Flags().IntVar(&cc.minAgeMin, "min-age", 5, "Minimum resource age in minutes before deletion is allowed")
	cmd.Flags().StringSliceVar(&cc.protect, "protect", nil, "Resource IDs to protect explicitly (repeatable)")

	_ = cmd.MarkFlagRequired("profile")

	return cmd
}

func (cc *CleanupCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := zerolog.Ctx(ctx)

	prov, tr, err := buildFleet(ctx, cc.registry, cc.provider, cc.profilePath)
	if err != nil {
		return err
	}

	candidates := args
	if cc.all {
		for _, r := range tr.List() {
			candidates = append(candidates, r.Status.ID)
		}
	}
	if len(candidates) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No cleanup candidates. Pass resource IDs or --all.")
		return nil
	}

	safety := cleanup.WithMinAge(time.Duration(cc.minAgeMin) * time.Minute)
	for _, id := range cc.protect {
		safety.Protect(id)
	}

	result, err := cleanup.SafeCleanup(ctx, candidates, tr, safety, cc.dryRun, cc.force)
	if err != nil {
		return fmt.Errorf("cleanup classification failed: %w", err)
	}

	// Classification is shared between preview and execute; only the
	// execute path touches the cloud.
	if !cc.dryRun {
		executed := result.Deleted[:0]
		for _, id := range result.Deleted {
			if err := prov.Terminate(ctx, id); err != nil {
				logger.Error().Err(err).Str("resource_id", id).Msg("termination failed")
				result.Errors = append(result.Errors, domain.CleanupError{ID: id, Err: err.Error()})
				continue
			}
			if err := tr.Remove(id); err != nil {
				logger.Warn().Err(err).Str("resource_id", id).Msg("tracker removal failed")
			}
			executed = append(executed, id)
		}
		result.Deleted = executed
	}

	return cc.reporter.HandleCleanup(result, cc.dryRun)
}
