package costreport

import (
	"context"
	"errors"
	"testing"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arclabs561/runctl/pkg/errdefs"
	"github.com/arclabs561/runctl/pkg/models/domain"
	"github.com/arclabs561/runctl/pkg/services/retry"
)

type fakeFleet struct {
	resources []domain.TrackedResource
	total     float64
}

func (f *fakeFleet) List() []domain.TrackedResource { return f.resources }
func (f *fakeFleet) GetTotalCost() float64          { return f.total }

func trackedResource(id string, state domain.ResourceState, cost float64, age time.Duration) domain.TrackedResource {
	return domain.TrackedResource{
		Status: domain.ResourceStatus{
			ID:           id,
			State:        state,
			InstanceType: "g5.xlarge",
			CostPerHour:  1.006,
		},
		CreatedAt:       time.Now().Add(-age),
		AccumulatedCost: cost,
		UsageHistory:    []domain.ResourceUsage{{CPUPercent: 50}},
	}
}

func TestBuild(t *testing.T) {
	t.Run("one section per resource, totals summed", func(t *testing.T) {
		fleet := &fakeFleet{resources: []domain.TrackedResource{
			trackedResource("i-a", domain.StateRunning, 2.5, 48*time.Hour),
			trackedResource("i-b", domain.StateStopped, 1.5, time.Hour),
		}}

		report := Build(fleet)

		assert.Equal(t, "Fleet Cost Report", report.Title)
		assert.Equal(t, "USD", report.Currency)
		require.Len(t, report.Sections, 2)
		assert.InDelta(t, 4.0, report.TotalAmount, 1e-9)

		section := report.Sections[0]
		assert.Equal(t, "Resource: i-a", section.Title)
		assert.Equal(t, "running", section.Summary["State"])
		assert.Equal(t, 2.5, section.Summary["Accumulated Cost"])
		require.Len(t, section.Details, 3)
		assert.Equal(t, "Cost", section.Details[0].Name)
		assert.Equal(t, 1, section.Details[2].Value, "one usage sample recorded")
	})

	t.Run("period starts at the oldest resource", func(t *testing.T) {
		fleet := &fakeFleet{resources: []domain.TrackedResource{
			trackedResource("i-a", domain.StateRunning, 0, time.Hour),
			trackedResource("i-b", domain.StateRunning, 0, 72*time.Hour),
		}}

		report := Build(fleet)
		assert.WithinDuration(t, time.Now().Add(-72*time.Hour), report.Period.Start, time.Minute)
		assert.Equal(t, 4, report.Period.Duration)
	})

	t.Run("empty fleet yields an empty report", func(t *testing.T) {
		report := Build(&fakeFleet{})
		assert.Empty(t, report.Sections)
		assert.Zero(t, report.TotalAmount)
		assert.Equal(t, 1, report.Period.Duration)
	})
}

type fakeCostExplorer struct {
	fn func(*costexplorer.GetCostAndUsageInput) (*costexplorer.GetCostAndUsageOutput, error)
}

func (f *fakeCostExplorer) GetCostAndUsage(_ context.Context, params *costexplorer.GetCostAndUsageInput, _ ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error) {
	return f.fn(params)
}

func dailyCosts(amounts ...string) *costexplorer.GetCostAndUsageOutput {
	out := &costexplorer.GetCostAndUsageOutput{}
	for _, amount := range amounts {
		out.ResultsByTime = append(out.ResultsByTime, types.ResultByTime{
			Total: map[string]types.MetricValue{
				"UnblendedCost": {Amount: awssdk.String(amount), Unit: awssdk.String("USD")},
			},
		})
	}
	return out
}

func TestReconciler_Reconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("sums billed days and computes the delta", func(t *testing.T) {
		var captured *costexplorer.GetCostAndUsageInput
		r := &Reconciler{
			client: &fakeCostExplorer{fn: func(in *costexplorer.GetCostAndUsageInput) (*costexplorer.GetCostAndUsageOutput, error) {
				captured = in
				return dailyCosts("1.20", "0.80", "2.00"), nil
			}},
			retry: retry.NoRetry{},
		}

		rec, err := r.Reconcile(ctx, &fakeFleet{total: 3.5}, 3)
		require.NoError(t, err)

		assert.Equal(t, 3, rec.Days)
		assert.InDelta(t, 3.5, rec.TrackedCost, 1e-9)
		assert.InDelta(t, 4.0, rec.BilledCost, 1e-9)
		assert.InDelta(t, -0.5, rec.Delta, 1e-9)

		require.NotNil(t, captured)
		assert.Equal(t, types.GranularityDaily, captured.Granularity)
		assert.Equal(t, []string{"UnblendedCost"}, captured.Metrics)
		require.NotNil(t, captured.Filter)
		require.Len(t, captured.Filter.And, 2)
		assert.Equal(t, []string{ec2ServiceFilter}, captured.Filter.And[0].Dimensions.Values)
		assert.Equal(t, []string{"Credit", "Refund"}, captured.Filter.And[1].Not.Dimensions.Values)
	})

	t.Run("rejects a non-positive window", func(t *testing.T) {
		r := &Reconciler{client: &fakeCostExplorer{}, retry: retry.NoRetry{}}
		_, err := r.Reconcile(ctx, &fakeFleet{}, 0)
		assert.True(t, errdefs.IsValidation(err))
	})

	t.Run("wraps API failures as provider errors", func(t *testing.T) {
		r := &Reconciler{
			client: &fakeCostExplorer{fn: func(*costexplorer.GetCostAndUsageInput) (*costexplorer.GetCostAndUsageOutput, error) {
				return nil, errors.New("AccessDenied")
			}},
			retry: retry.NoRetry{},
		}
		_, err := r.Reconcile(ctx, &fakeFleet{}, 7)
		require.Error(t, err)
		assert.True(t, errdefs.IsRetryable(err))
	})

	t.Run("days without the metric are skipped", func(t *testing.T) {
		out := dailyCosts("1.00")
		out.ResultsByTime = append(out.ResultsByTime, types.ResultByTime{})
		r := &Reconciler{
			client: &fakeCostExplorer{fn: func(*costexplorer.GetCostAndUsageInput) (*costexplorer.GetCostAndUsageOutput, error) {
				return out, nil
			}},
			retry: retry.NoRetry{},
		}

		rec, err := r.Reconcile(ctx, &fakeFleet{}, 2)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, rec.BilledCost, 1e-9)
	})
}
