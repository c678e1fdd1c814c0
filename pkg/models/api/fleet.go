package api

import "time"

type TrackedResource struct {
	ID              string            `json:"id"`
	Name            string            `json:"name,omitempty"`
	State           string            `json:"state"`
	InstanceType    string            `json:"instance_type,omitempty"`
	LaunchTime      *time.Time        `json:"launch_time,omitempty"`
	CostPerHour     float64           `json:"cost_per_hour"`
	PublicIP        string            `json:"public_ip,omitempty"`
	Tags            map[string]string `json:"tags,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	AccumulatedCost float64           `json:"accumulated_cost"`
	UsageSamples    int               `json:"usage_samples"`
}

type ResourceCost struct {
	ID              string  `json:"id"`
	State           string  `json:"state"`
	AccumulatedCost float64 `json:"accumulated_cost"`
}

type FleetCost struct {
	TotalCost float64        `json:"total_cost"`
	Resources []ResourceCost `json:"resources"`
}

type CleanupPreviewRequest struct {
	IDs           []string `json:"ids"`
	Force         bool     `json:"force"`
	MinAgeMinutes *int     `json:"min_age_minutes,omitempty"`
}

type SkippedResource struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

type CleanupError struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

type CleanupPreview struct {
	Deletable []string          `json:"deletable"`
	Skipped   []SkippedResource `json:"skipped"`
	Errors    []CleanupError    `json:"errors"`
}
