// Package tracker keeps the in-memory registry of every resource runctl
// has created: state, tags, usage samples and accumulated cost. It is
// the only shared mutable state in the core and is safe for concurrent
// use. State lives only for the process lifetime; the tracker never
// talks to a cloud API itself.
//
// Cost accounting: while a resource is running, accumulated cost is
// recomputed on every read as rate x hours since the original launch
// time. The instant the state leaves running, the value freezes; it
// stays frozen until the resource runs again, at which point
// recomputation from the original launch time resumes. A stop/restart
// cycle therefore bills the stopped interval too once the resource is
// running again; this matches the established accounting behavior and
// is flagged as a known inaccuracy rather than silently changed.
package tracker

import (
	"sort"
	"sync"
	"time"

	"github.com/arclabs561/runctl/pkg/errdefs"
	"github.com/arclabs561/runctl/pkg/models/domain"
)

// maxUsageHistory bounds the per-resource usage sample history; the
// oldest sample is evicted once the cap is reached.
const maxUsageHistory = 1000

type trackedResource struct {
	status          domain.ResourceStatus
	createdAt       time.Time
	tags            map[string]string
	usageHistory    []domain.ResourceUsage
	accumulatedCost float64
}

// Tracker is the concurrent resource registry. A single coarse lock
// guards the map; fleets are tens to low hundreds of resources, so
// per-key locking buys nothing here.
type Tracker struct {
	mu        sync.Mutex
	resources map[string]*trackedResource

	now func() time.Time
}

func New() *Tracker {
	return &Tracker{
		resources: make(map[string]*trackedResource),
		now:       time.Now,
	}
}

// Register inserts a new tracked resource. It fails with a conflict
// error if the ID is already tracked.
func (t *Tracker) Register(status domain.ResourceStatus) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.resources[status.ID]; ok {
		return &errdefs.ConflictError{Resource: "resource", ID: status.ID}
	}

	r := &trackedResource{
		status:    cloneStatus(status),
		createdAt: t.now(),
		tags:      tagIndex(status.Tags),
	}
	t.refreshCost(r)
	t.resources[status.ID] = r
	return nil
}

// Exists reports whether the ID is currently tracked.
func (t *Tracker) Exists(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.resources[id]
	return ok
}

// GetByID returns a snapshot of the tracked resource, refreshing its
// accumulated cost first if it is running.
func (t *Tracker) GetByID(id string) (domain.TrackedResource, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.resources[id]
	if !ok {
		return domain.TrackedResource{}, false
	}
	t.refreshCost(r)
	return snapshot(r), true
}

// GetRunning returns snapshots of all resources currently in the
// running state, costs refreshed, ordered by ID.
func (t *Tracker) GetRunning() []domain.TrackedResource {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []domain.TrackedResource
	for _, r := range t.resources {
		if r.status.State != domain.StateRunning {
			continue
		}
		t.refreshCost(r)
		out = append(out, snapshot(r))
	}
	sortByID(out)
	return out
}

// GetByTag returns snapshots of every resource carrying the exact
// (key, value) tag pair, regardless of state, ordered by ID.
func (t *Tracker) GetByTag(key, value string) []domain.TrackedResource {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []domain.TrackedResource
	for _, r := range t.resources {
		if v, ok := r.tags[key]; !ok || v != value {
			continue
		}
		t.refreshCost(r)
		out = append(out, snapshot(r))
	}
	sortByID(out)
	return out
}

// List returns snapshots of every tracked resource, costs refreshed,
// ordered by ID.
func (t *Tracker) List() []domain.TrackedResource {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]domain.TrackedResource, 0, len(t.resources))
	for _, r := range t.resources {
		t.refreshCost(r)
		out = append(out, snapshot(r))
	}
	sortByID(out)
	return out
}

// GetTotalCost refreshes every running resource's cost and returns the
// sum of accumulated cost across the whole fleet, frozen values included.
func (t *Tracker) GetTotalCost() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	var total float64
	for _, r := range t.resources {
		t.refreshCost(r)
		total += r.accumulatedCost
	}
	return total
}

// RefreshCosts recomputes accumulated cost for every running resource.
// Non-running resources keep their frozen values.
func (t *Tracker) RefreshCosts() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, r := range t.resources {
		t.refreshCost(r)
	}
}

// UpdateState transitions a resource to a new state. Leaving the
// running state freezes the accumulated cost at the value accrued this
// instant; all other status fields are preserved.
func (t *Tracker) UpdateState(id string, state domain.ResourceState) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.resources[id]
	if !ok {
		return &errdefs.NotFoundError{Resource: "resource", ID: id}
	}

	if r.status.State == domain.StateRunning && state != domain.StateRunning {
		r.accumulatedCost = t.accruedCost(r)
	}
	r.status.State = state
	return nil
}

// UpdateUsage appends a usage sample to the resource's history,
// evicting the oldest sample once the history is full.
func (t *Tracker) UpdateUsage(id string, usage domain.ResourceUsage) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.resources[id]
	if !ok {
		return &errdefs.NotFoundError{Resource: "resource", ID: id}
	}

	r.usageHistory = append(r.usageHistory, usage)
	if len(r.usageHistory) > maxUsageHistory {
		r.usageHistory = append(r.usageHistory[:0], r.usageHistory[1:]...)
	}
	return nil
}

// Remove deletes the tracked record. Callers do this only after the
// real cloud-side deletion succeeded.
func (t *Tracker) Remove(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.resources[id]; !ok {
		return &errdefs.NotFoundError{Resource: "resource", ID: id}
	}
	delete(t.resources, id)
	return nil
}

// refreshCost recomputes accumulated cost for running resources.
// Callers must hold t.mu.
func (t *Tracker) refreshCost(r *trackedResource) {
	if r.status.State == domain.StateRunning {
		r.accumulatedCost = t.accruedCost(r)
	}
}

// accruedCost computes rate x hours since the original launch time.
func (t *Tracker) accruedCost(r *trackedResource) float64 {
	if r.status.LaunchTime == nil {
		return 0
	}
	hours := t.now().Sub(*r.status.LaunchTime).Hours()
	if hours < 0 {
		return 0
	}
	return r.status.CostPerHour * hours
}

func tagIndex(tags []domain.Tag) map[string]string {
	index := make(map[string]string, len(tags))
	for _, tag := range tags {
		index[tag.Key] = tag.Value
	}
	return index
}

func cloneStatus(status domain.ResourceStatus) domain.ResourceStatus {
	out := status
	if status.LaunchTime != nil {
		lt := *status.LaunchTime
		out.LaunchTime = &lt
	}
	out.Tags = append([]domain.Tag(nil), status.Tags...)
	return out
}

// snapshot deep-copies a record so callers never observe interior state.
func snapshot(r *trackedResource) domain.TrackedResource {
	tags := make(map[string]string, len(r.tags))
	for k, v := range r.tags {
		tags[k] = v
	}
	return domain.TrackedResource{
		Status:          cloneStatus(r.status),
		CreatedAt:       r.createdAt,
		UsageHistory:    append([]domain.ResourceUsage(nil), r.usageHistory...),
		AccumulatedCost: r.accumulatedCost,
		Tags:            tags,
	}
}

func sortByID(resources []domain.TrackedResource) {
	sort.Slice(resources, func(i, j int) bool {
		return resources[i].Status.ID < resources[j].Status.ID
	})
}
