package cleanup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arclabs561/runctl/pkg/models/domain"
)

// fakeFleet is a minimal TagReader backed by a map.
type fakeFleet map[string]domain.TrackedResource

func (f fakeFleet) GetByID(id string) (domain.TrackedResource, bool) {
	r, ok := f[id]
	return r, ok
}

func tracked(id string, age time.Duration, tags map[string]string) domain.TrackedResource {
	return domain.TrackedResource{
		Status:    domain.ResourceStatus{ID: id, State: domain.StateStopped},
		CreatedAt: time.Now().Add(-age),
		Tags:      tags,
	}
}

func TestSafety_CanDelete(t *testing.T) {
	oldEnough := time.Now().Add(-time.Hour)
	fresh := time.Now().Add(-30 * time.Second)

	t.Run("explicit protection wins over everything", func(t *testing.T) {
		s := NewSafety()
		s.Protect("i-1")

		ok, err := s.CanDelete("i-1", fakeFleet{}, &oldEnough, true)
		require.NoError(t, err)
		assert.False(t, ok, "force must not override explicit protection")
	})

	t.Run("protected tag blocks deletion even with force", func(t *testing.T) {
		for _, key := range protectedTagKeys {
			fleet := fakeFleet{
				"i-1": tracked("i-1", time.Hour, map[string]string{key: "true"}),
			}

			ok, err := NewSafety().CanDelete("i-1", fleet, &oldEnough, true)
			require.NoError(t, err)
			assert.False(t, ok, "tag %s should protect", key)
		}
	})

	t.Run("protected tag with non-true value does not protect", func(t *testing.T) {
		fleet := fakeFleet{
			"i-1": tracked("i-1", time.Hour, map[string]string{"runctl:protected": "yes"}),
		}

		ok, err := NewSafety().CanDelete("i-1", fleet, &oldEnough, false)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("untracked resource is deletable", func(t *testing.T) {
		ok, err := NewSafety().CanDelete("ghost", fakeFleet{}, nil, false)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("young resource is blocked without force", func(t *testing.T) {
		ok, err := NewSafety().CanDelete("i-1", fakeFleet{}, &fresh, false)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("force bypasses only the age check", func(t *testing.T) {
		ok, err := NewSafety().CanDelete("i-1", fakeFleet{}, &fresh, true)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("resource older than the grace period is deletable", func(t *testing.T) {
		ok, err := NewSafety().CanDelete("i-1", fakeFleet{}, &oldEnough, false)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("zero min age disables the age check", func(t *testing.T) {
		justBorn := time.Now()
		ok, err := WithMinAge(0).CanDelete("i-1", fakeFleet{}, &justBorn, false)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestSafety_SkipReason(t *testing.T) {
	s := NewSafety()

	fresh := time.Now().Add(-90 * time.Second)
	assert.Contains(t, s.skipReason(&fresh, false), "too young")

	old := time.Now().Add(-time.Hour)
	assert.Equal(t, "protected", s.skipReason(&old, false))
	assert.Equal(t, "protected", s.skipReason(nil, false))
	assert.Equal(t, "protected", s.skipReason(&fresh, true))
}

func TestSafeCleanup(t *testing.T) {
	ctx := context.Background()

	t.Run("classifies a mixed batch", func(t *testing.T) {
		fleet := fakeFleet{
			"a": tracked("a", time.Hour, nil),
			"b": tracked("b", time.Hour, map[string]string{"runctl:protected": "true"}),
			"c": tracked("c", time.Minute, nil),
		}

		result, err := SafeCleanup(ctx, []string{"a", "b", "c", "ghost"}, fleet, NewSafety(), true, false)
		require.NoError(t, err)

		assert.Equal(t, []string{"a", "ghost"}, result.Deleted)
		require.Len(t, result.Skipped, 2)
		assert.Equal(t, "b", result.Skipped[0].ID)
		assert.Equal(t, "protected", result.Skipped[0].Reason)
		assert.Equal(t, "c", result.Skipped[1].ID)
		assert.Contains(t, result.Skipped[1].Reason, "too young")
		assert.Empty(t, result.Errors)
	})

	t.Run("dry run and live classify identically", func(t *testing.T) {
		fleet := fakeFleet{
			"a": tracked("a", time.Hour, nil),
			"b": tracked("b", time.Second, nil),
		}
		safety := NewSafety()
		ids := []string{"a", "b"}

		preview, err := SafeCleanup(ctx, ids, fleet, safety, true, false)
		require.NoError(t, err)
		live, err := SafeCleanup(ctx, ids, fleet, safety, false, false)
		require.NoError(t, err)

		assert.Equal(t, preview.Deleted, live.Deleted)
		assert.Equal(t, preview.Skipped, live.Skipped)
	})

	t.Run("force approves young but never protected", func(t *testing.T) {
		fleet := fakeFleet{
			"young":     tracked("young", time.Second, nil),
			"important": tracked("important", time.Hour, map[string]string{"runctl:important": "true"}),
		}

		result, err := SafeCleanup(ctx, []string{"young", "important"}, fleet, NewSafety(), false, true)
		require.NoError(t, err)

		assert.Equal(t, []string{"young"}, result.Deleted)
		require.Len(t, result.Skipped, 1)
		assert.Equal(t, "important", result.Skipped[0].ID)
	})

	t.Run("empty batch yields empty result", func(t *testing.T) {
		result, err := SafeCleanup(ctx, nil, fakeFleet{}, NewSafety(), true, false)
		require.NoError(t, err)
		assert.Empty(t, result.Deleted)
		assert.Empty(t, result.Skipped)
		assert.Empty(t, result.Errors)
	})

	t.Run("never mutates the fleet", func(t *testing.T) {
		fleet := fakeFleet{"a": tracked("a", time.Hour, nil)}

		_, err := SafeCleanup(ctx, []string{"a"}, fleet, NewSafety(), false, false)
		require.NoError(t, err)

		_, still := fleet.GetByID("a")
		assert.True(t, still, "classification must not remove tracked entries")
	})
}
