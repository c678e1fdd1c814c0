package costreport

import (
	"context"
	"fmt"
	"strconv"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer/types"

	"github.com/arclabs561/runctl/pkg/errdefs"
	"github.com/arclabs561/runctl/pkg/services/retry"
)

// ec2ServiceFilter is the Cost Explorer dimension value for EC2 compute.
const ec2ServiceFilter = "Amazon Elastic Compute Cloud - Compute"

type costExplorerAPI interface {
	GetCostAndUsage(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error)
}

// Reconciler compares the tracker's running estimate against billed
// actuals from Cost Explorer. The tracked figure is an estimate built
// from static rates; the billed figure lags by up to a day but is
// authoritative.
type Reconciler struct {
	client costExplorerAPI
	retry  retry.Policy
}

func NewReconciler(cfg awssdk.Config) *Reconciler {
	return &Reconciler{
		client: costexplorer.NewFromConfig(cfg),
		retry:  retry.ForCloudAPI(),
	}
}

// Reconciliation holds both cost figures along with their divergence.
type Reconciliation struct {
	Days        int
	TrackedCost float64
	BilledCost  float64
	Delta       float64
}

// Reconcile fetches billed EC2 compute cost for the trailing window and
// compares it with the tracker's estimate.
func (r *Reconciler) Reconcile(ctx context.Context, fleet FleetView, days int) (*Reconciliation, error) {
	if days <= 0 {
		return nil, &errdefs.ValidationError{Field: "days", Reason: "must be positive"}
	}

	billed, err := r.billedCost(ctx, days)
	if err != nil {
		return nil, err
	}

	tracked := fleet.GetTotalCost()
	return &Reconciliation{
		Days:        days,
		TrackedCost: tracked,
		BilledCost:  billed,
		Delta:       tracked - billed,
	}, nil
}

func (r *Reconciler) billedCost(ctx context.Context, days int) (float64, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &types.DateInterval{
			Start: awssdk.String(start.Format("2006-01-02")),
			End:   awssdk.String(end.Format("2006-01-02")),
		},
		Granularity: types.GranularityDaily,
		Metrics:     []string{"UnblendedCost"},
		Filter: &types.Expression{
			And: []types.Expression{
				{
					Dimensions: &types.DimensionValues{
						Key:    types.DimensionService,
						Values: []string{ec2ServiceFilter},
					},
				},
				{
					Not: &types.Expression{
						Dimensions: &types.DimensionValues{
							Key:    types.DimensionRecordType,
							Values: []string{"Credit", "Refund"},
						},
					},
				},
			},
		},
	}

	result, err := retry.Do(ctx, r.retry, func(ctx context.Context) (*costexplorer.GetCostAndUsageOutput, error) {
		out, err := r.client.GetCostAndUsage(ctx, input)
		if err != nil {
			return nil, &errdefs.CloudProviderError{
				Provider: "aws",
				Message:  "failed to get cost and usage",
				Err:      err,
			}
		}
		return out, nil
	})
	if err != nil {
		return 0, err
	}

	var total float64
	for _, resultByTime := range result.ResultsByTime {
		metric, ok := resultByTime.Total["UnblendedCost"]
		if !ok {
			continue
		}
		amount, err := strconv.ParseFloat(awssdk.ToString(metric.Amount), 64)
		if err != nil {
			return 0, fmt.Errorf("failed to parse cost amount: %w", err)
		}
		total += amount
	}
	return total, nil
}
