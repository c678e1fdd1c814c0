package commands

import (
	"context"
	"fmt"

	"github.com/arclabs561/runctl/pkg/services/monitor"
	"github.com/arclabs561/runctl/pkg/services/provider"
	"github.com/arclabs561/runctl/pkg/services/tracker"
)

// buildFleet creates a provider from the registry, seeds a fresh
// tracker from the provider's current view and returns both. Tracker
// state is per-process: every CLI invocation starts from a sync.
func buildFleet(
	ctx context.Context,
	registry provider.Registry,
	providerName, profilePath string,
) (provider.Provider, *tracker.Tracker, error) {
	prov, err := registry.Create(ctx, providerName, profilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create provider %q: %w", providerName, err)
	}

	tr := tracker.New()
	if err := monitor.New(prov, tr).Sync(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to sync fleet: %w", err)
	}
	return prov, tr, nil
}
