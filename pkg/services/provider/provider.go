// Package provider defines the boundary to the cloud vendors: producing
// provider-agnostic resource status snapshots and performing lifecycle
// mutations. Implementations wrap every outbound call in a retry policy
// sized for cloud APIs so transient failures are absorbed while
// malformed requests fail fast.
package provider

import (
	"context"

	"github.com/arclabs561/runctl/pkg/models/domain"
)

// LaunchSpec describes the resource to rent.
type LaunchSpec struct {
	Name         string
	InstanceType string
	DiskGB       int
	Tags         []domain.Tag
}

// Provider is a single cloud vendor's view of the rented fleet.
type Provider interface {
	// Name identifies the provider ("aws", "runpod").
	Name() string
	// Create rents a new resource and returns its ID.
	Create(ctx context.Context, spec LaunchSpec) (string, error)
	// List translates the provider's describe API into status snapshots
	// for every resource under management.
	List(ctx context.Context) ([]domain.ResourceStatus, error)
	// Describe returns the status of a single resource.
	Describe(ctx context.Context, id string) (*domain.ResourceStatus, error)
	// Start boots a stopped resource.
	Start(ctx context.Context, id string) error
	// Stop shuts a running resource down without destroying it.
	Stop(ctx context.Context, id string) error
	// Terminate destroys the resource. Callers remove it from the
	// tracker only after this succeeds.
	Terminate(ctx context.Context, id string) error
}
