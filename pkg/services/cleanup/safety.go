// Package cleanup decides whether a tracked resource may be destroyed.
// The Safety policy answers per-ID questions; SafeCleanup classifies a
// batch. Classification never deletes anything: callers perform the
// real cloud deletion and tracker removal for approved IDs only, which
// keeps dry-run mode side-effect free.
package cleanup

import (
	"fmt"
	"sync"
	"time"

	"github.com/arclabs561/runctl/pkg/models/domain"
)

// DefaultMinAge is the grace period protecting freshly created
// resources from racing their own creation.
const DefaultMinAge = 5 * time.Minute

// protectedTagValue guards only when the tag value is exactly "true".
const protectedTagValue = "true"

// protectedTagKeys is the tag vocabulary expressing operator intent.
// Kept as data so extending it never touches the checking code.
var protectedTagKeys = []string{
	"runctl:protected",
	"runctl:important",
	"runctl:persistent",
}

// TagReader is the tracker view the safety policy needs: read-only
// access to per-resource snapshots.
type TagReader interface {
	GetByID(id string) (domain.TrackedResource, bool)
}

// Safety holds the deletion policy: an explicit protection set, the
// protected-tag convention and a minimum-age grace period.
type Safety struct {
	mu        sync.Mutex
	protected map[string]struct{}
	minAge    time.Duration

	now func() time.Time
}

// NewSafety returns a policy with the default 5 minute grace period.
func NewSafety() *Safety {
	return &Safety{
		protected: make(map[string]struct{}),
		minAge:    DefaultMinAge,
		now:       time.Now,
	}
}

// WithMinAge returns a policy with a caller-chosen grace period. Zero
// disables the age check entirely.
func WithMinAge(minAge time.Duration) *Safety {
	s := NewSafety()
	s.minAge = minAge
	return s
}

// Protect adds an ID to the explicit protection set. Explicit
// protection is never overridable, not even by force.
func (s *Safety) Protect(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.protected[id] = struct{}{}
}

// MinAge returns the configured grace period.
func (s *Safety) MinAge() time.Duration {
	return s.minAge
}

// CanDelete reports whether the resource may be destroyed right now.
// force bypasses only the minimum-age grace period: age protection
// exists to avoid racing a just-issued creation, while explicit and
// tag-based protection express operator intent and must never be
// silently overridden. A resource absent from the tracker is deletable;
// missing tracking data is not itself a protection signal.
func (s *Safety) CanDelete(id string, tracker TagReader, createdAt *time.Time, force bool) (bool, error) {
	s.mu.Lock()
	_, explicit := s.protected[id]
	s.mu.Unlock()
	if explicit {
		return false, nil
	}

	if r, ok := tracker.GetByID(id); ok {
		for _, key := range protectedTagKeys {
			if r.Tags[key] == protectedTagValue {
				return false, nil
			}
		}
	}

	if createdAt == nil {
		return true, nil
	}

	if !force {
		if age := s.now().Sub(*createdAt); age < s.minAge {
			return false, nil
		}
	}

	return true, nil
}

// skipReason explains a negative CanDelete verdict for operator output.
func (s *Safety) skipReason(createdAt *time.Time, force bool) string {
	if createdAt != nil && !force {
		if age := s.now().Sub(*createdAt); age < s.minAge {
			return fmt.Sprintf("too young (%s old, minimum %s)",
				age.Round(time.Second), s.minAge)
		}
	}
	return "protected"
}
