package cleanup

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/arclabs561/runctl/pkg/models/domain"
)

// SafeCleanup classifies each candidate ID independently as deletable
// or skipped. It never removes tracker entries and never calls a cloud
// API, in dry-run and live mode alike; the same classification backs
// both preview and execute paths. One bad candidate never aborts the
// batch: its error is recorded and processing continues.
func SafeCleanup(
	ctx context.Context,
	ids []string,
	tracker TagReader,
	safety *Safety,
	dryRun bool,
	force bool,
) (*domain.CleanupResult, error) {
	logger := zerolog.Ctx(ctx)
	result := &domain.CleanupResult{}

	for _, id := range ids {
		var createdAt *time.Time
		if r, ok := tracker.GetByID(id); ok {
			t := r.CreatedAt
			createdAt = &t
		}

		ok, err := safety.CanDelete(id, tracker, createdAt, force)
		if err != nil {
			result.Errors = append(result.Errors, domain.CleanupError{ID: id, Err: err.Error()})
			continue
		}
		if !ok {
			reason := safety.skipReason(createdAt, force)
			logger.Debug().Str("resource_id", id).Str("reason", reason).Msg("cleanup candidate skipped")
			result.Skipped = append(result.Skipped, domain.SkippedResource{ID: id, Reason: reason})
			continue
		}

		result.Deleted = append(result.Deleted, id)
	}

	logger.Info().
		Bool("dry_run", dryRun).
		Int("deletable", len(result.Deleted)).
		Int("skipped", len(result.Skipped)).
		Int("errors", len(result.Errors)).
		Msg("cleanup classification complete")

	return result, nil
}
