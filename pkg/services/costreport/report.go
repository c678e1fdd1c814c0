// Package costreport assembles fleet cost reports from tracker
// snapshots and, optionally, reconciles the tracked estimate against
// AWS Cost Explorer actuals.
package costreport

import (
	"fmt"
	"time"

	"github.com/arclabs561/runctl/pkg/models/domain"
)

// FleetView is the tracker surface the report builder reads.
type FleetView interface {
	List() []domain.TrackedResource
	GetTotalCost() float64
}

// Build assembles a report over the whole tracked fleet, one section
// per resource.
func Build(fleet FleetView) *domain.Report {
	resources := fleet.List()

	report := &domain.Report{
		Title:    "Fleet Cost Report",
		Currency: "USD",
		Period: domain.TimePeriod{
			End: time.Now(),
		},
		Sections: make([]domain.ReportSection, 0, len(resources)),
	}

	for _, r := range resources {
		age := time.Since(r.CreatedAt)

		section := domain.ReportSection{
			Title: fmt.Sprintf("Resource: %s", r.Status.ID),
			Summary: map[string]interface{}{
				"State":            string(r.Status.State),
				"Instance Type":    r.Status.InstanceType,
				"Accumulated Cost": r.AccumulatedCost,
				"Hourly Rate":      r.Status.CostPerHour,
				"Tracked For":      age.Round(time.Minute).String(),
			},
			Details: []domain.ReportDetail{
				{
					Name:        "Cost",
					Value:       r.AccumulatedCost,
					Unit:        "USD",
					Description: "Cost accrued since launch",
				},
				{
					Name:        "Rate",
					Value:       r.Status.CostPerHour,
					Unit:        "USD/hour",
					Description: fmt.Sprintf("On-demand rate for %s", r.Status.InstanceType),
				},
				{
					Name:        "Usage Samples",
					Value:       len(r.UsageHistory),
					Unit:        "samples",
					Description: "Utilization samples recorded",
				},
			},
			Metadata: map[string]interface{}{
				"ResourceID": r.Status.ID,
				"State":      string(r.Status.State),
			},
		}

		if report.Period.Start.IsZero() || r.CreatedAt.Before(report.Period.Start) {
			report.Period.Start = r.CreatedAt
		}
		report.TotalAmount += r.AccumulatedCost
		report.Sections = append(report.Sections, section)
	}

	if report.Period.Start.IsZero() {
		report.Period.Start = report.Period.End
	}
	report.Period.Duration = int(report.Period.End.Sub(report.Period.Start).Hours()/24) + 1

	return report
}
