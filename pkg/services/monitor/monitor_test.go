package monitor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arclabs561/runctl/pkg/errdefs"
	"github.com/arclabs561/runctl/pkg/models/domain"
	"github.com/arclabs561/runctl/pkg/services/provider"
	"github.com/arclabs561/runctl/pkg/services/tracker"
)

type fakeProvider struct {
	statuses []domain.ResourceStatus
	listErr  error
	calls    atomic.Int64
}

func (f *fakeProvider) Name() string { return "fake" }
func (f *fakeProvider) List(context.Context) ([]domain.ResourceStatus, error) {
	f.calls.Add(1)
	return f.statuses, f.listErr
}
func (f *fakeProvider) Create(context.Context, provider.LaunchSpec) (string, error) {
	return "", errors.New("not implemented")
}
func (f *fakeProvider) Describe(context.Context, string) (*domain.ResourceStatus, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeProvider) Start(context.Context, string) error     { return nil }
func (f *fakeProvider) Stop(context.Context, string) error      { return nil }
func (f *fakeProvider) Terminate(context.Context, string) error { return nil }

func running(id string) domain.ResourceStatus {
	launch := time.Now().Add(-time.Hour)
	return domain.ResourceStatus{
		ID:          id,
		State:       domain.StateRunning,
		CostPerHour: 1,
		LaunchTime:  &launch,
	}
}

func TestMonitor_Sync(t *testing.T) {
	ctx := context.Background()

	t.Run("registers unseen resources", func(t *testing.T) {
		tr := tracker.New()
		p := &fakeProvider{statuses: []domain.ResourceStatus{running("i-1"), running("i-2")}}

		require.NoError(t, New(p, tr).Sync(ctx))

		assert.True(t, tr.Exists("i-1"))
		assert.True(t, tr.Exists("i-2"))
	})

	t.Run("updates state of known resources", func(t *testing.T) {
		tr := tracker.New()
		require.NoError(t, tr.Register(running("i-1")))

		stopped := running("i-1")
		stopped.State = domain.StateStopped
		p := &fakeProvider{statuses: []domain.ResourceStatus{stopped}}

		require.NoError(t, New(p, tr).Sync(ctx))

		r, ok := tr.GetByID("i-1")
		require.True(t, ok)
		assert.Equal(t, domain.StateStopped, r.Status.State)
	})

	t.Run("sync freezes cost when provider reports a stop", func(t *testing.T) {
		tr := tracker.New()
		require.NoError(t, tr.Register(running("i-1")))

		stopped := running("i-1")
		stopped.State = domain.StateStopped
		m := New(&fakeProvider{statuses: []domain.ResourceStatus{stopped}}, tr)
		require.NoError(t, m.Sync(ctx))

		r, _ := tr.GetByID("i-1")
		frozen := r.AccumulatedCost
		assert.InDelta(t, 1.0, frozen, 0.01)

		r, _ = tr.GetByID("i-1")
		assert.Equal(t, frozen, r.AccumulatedCost)
	})

	t.Run("list failure aborts the pass", func(t *testing.T) {
		tr := tracker.New()
		p := &fakeProvider{listErr: &errdefs.CloudProviderError{Provider: "fake", Message: "throttled"}}

		err := New(p, tr).Sync(ctx)
		require.Error(t, err)
		assert.True(t, errdefs.IsRetryable(err))
	})

	t.Run("resources the provider no longer reports are kept", func(t *testing.T) {
		tr := tracker.New()
		require.NoError(t, tr.Register(running("i-old")))

		p := &fakeProvider{statuses: []domain.ResourceStatus{running("i-new")}}
		require.NoError(t, New(p, tr).Sync(ctx))

		assert.True(t, tr.Exists("i-old"), "sync never removes tracker entries")
		assert.True(t, tr.Exists("i-new"))
	})
}

func TestMonitor_Record(t *testing.T) {
	tr := tracker.New()
	require.NoError(t, tr.Register(running("i-1")))
	m := New(&fakeProvider{}, tr)

	require.NoError(t, m.Record("i-1", domain.ResourceUsage{CPUPercent: 40}))

	r, _ := tr.GetByID("i-1")
	require.Len(t, r.UsageHistory, 1)
	assert.Equal(t, 40.0, r.UsageHistory[0].CPUPercent)

	err := m.Record("i-missing", domain.ResourceUsage{})
	assert.True(t, errdefs.IsNotFound(err))
}

func TestMonitor_Run(t *testing.T) {
	tr := tracker.New()
	p := &fakeProvider{statuses: []domain.ResourceStatus{running("i-1")}}
	m := New(p, tr)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, 5*time.Millisecond) }()

	assert.Eventually(t, func() bool { return p.calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
	assert.True(t, tr.Exists("i-1"))
}
