package domain

import "time"

// ResourceState is the lifecycle state of a rented compute resource,
// normalized across providers.
type ResourceState string

const (
	StateStarting    ResourceState = "starting"
	StateRunning     ResourceState = "running"
	StateStopped     ResourceState = "stopped"
	StateTerminating ResourceState = "terminating"
	StateTerminated  ResourceState = "terminated"
	StateUnknown     ResourceState = "unknown"
)

// Tag is a single key/value pair attached to a resource. Order is
// preserved as reported by the provider.
type Tag struct {
	Key   string
	Value string
}

// ResourceStatus is a provider-agnostic snapshot of a resource, produced
// by translating a provider "describe" response. IDs are globally unique
// within a tracker.
type ResourceStatus struct {
	ID           string
	Name         string
	State        ResourceState
	InstanceType string
	LaunchTime   *time.Time
	CostPerHour  float64
	PublicIP     string
	Tags         []Tag
}

// ResourceUsage is a point-in-time utilization sample. Purely
// observational; it never feeds into cost.
type ResourceUsage struct {
	CPUPercent     float64
	MemoryMB       float64
	GPUUtilization *float64
	NetworkInMB    float64
	NetworkOutMB   float64
	Timestamp      time.Time
}

// TrackedResource is a snapshot of a tracker record: the last reported
// status plus tracker-owned bookkeeping. AccumulatedCost follows the
// freeze-on-stop rule described in the tracker package.
type TrackedResource struct {
	Status          ResourceStatus
	CreatedAt       time.Time
	UsageHistory    []ResourceUsage
	AccumulatedCost float64
	Tags            map[string]string
}
