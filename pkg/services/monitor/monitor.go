// Package monitor keeps the tracker in sync with what the provider
// actually reports: it registers resources the tracker has never seen
// and folds state changes into existing records. The polling cadence is
// the caller's choice.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/arclabs561/runctl/pkg/errdefs"
	"github.com/arclabs561/runctl/pkg/models/domain"
	"github.com/arclabs561/runctl/pkg/services/provider"
	"github.com/arclabs561/runctl/pkg/services/tracker"
)

type Monitor struct {
	provider provider.Provider
	tracker  *tracker.Tracker
}

func New(p provider.Provider, t *tracker.Tracker) *Monitor {
	return &Monitor{provider: p, tracker: t}
}

// Sync pulls the provider's view of the fleet and merges it into the
// tracker. Per-resource failures are logged and skipped so one bad
// record never aborts the whole pass.
func (m *Monitor) Sync(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	statuses, err := m.provider.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list %s resources: %w", m.provider.Name(), err)
	}

	for _, status := range statuses {
		if m.tracker.Exists(status.ID) {
			if err := m.tracker.UpdateState(status.ID, status.State); err != nil {
				logger.Warn().Err(err).Str("resource_id", status.ID).Msg("state update failed during sync")
			}
			continue
		}
		if err := m.tracker.Register(status); err != nil && !errdefs.IsConflict(err) {
			logger.Warn().Err(err).Str("resource_id", status.ID).Msg("registration failed during sync")
		}
	}

	logger.Debug().
		Str("provider", m.provider.Name()).
		Int("resources", len(statuses)).
		Msg("fleet sync complete")
	return nil
}

// Record appends a usage sample for a tracked resource.
func (m *Monitor) Record(id string, usage domain.ResourceUsage) error {
	return m.tracker.UpdateUsage(id, usage)
}

// Run syncs on the given interval until the context is cancelled. The
// first sync happens immediately.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) error {
	logger := zerolog.Ctx(ctx)

	if err := m.Sync(ctx); err != nil {
		logger.Error().Err(err).Msg("initial fleet sync failed")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := m.Sync(ctx); err != nil {
				logger.Error().Err(err).Msg("fleet sync failed")
			}
		}
	}
}
