// Package runpod implements the provider boundary against the RunPod
// REST API. Pods map onto the same provider-agnostic status snapshots
// as EC2 instances.
package runpod

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/arclabs561/runctl/pkg/errdefs"
	"github.com/arclabs561/runctl/pkg/models/domain"
	"github.com/arclabs561/runctl/pkg/services/config"
	"github.com/arclabs561/runctl/pkg/services/provider"
	"github.com/arclabs561/runctl/pkg/services/retry"
)

const requestTimeout = 30 * time.Second

type runpodProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
	retry   retry.Policy
}

// New creates a RunPod provider talking to the given API endpoint.
func New(baseURL, apiKey string) provider.Provider {
	return &runpodProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: requestTimeout},
		retry:   retry.ForCloudAPI(),
	}
}

// Factory builds the RunPod provider from a runctl profile. The API key
// is read from the environment variable the profile names, never from
// the profile file itself.
func Factory(ctx context.Context, profilePath string) (provider.Provider, error) {
	profile, err := config.LoadProfile(profilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	apiKey := os.Getenv(profile.RunPodAPIKeyEnv)
	if apiKey == "" {
		return nil, &errdefs.ValidationError{
			Field:  "runpod api key",
			Reason: fmt.Sprintf("environment variable %s is not set", profile.RunPodAPIKeyEnv),
		}
	}

	return New(profile.RunPodEndpoint, apiKey), nil
}

// pod is the subset of the RunPod pod object runctl consumes.
type pod struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	DesiredStatus string  `json:"desiredStatus"`
	CostPerHr     float64 `json:"costPerHr"`
	PublicIP      string  `json:"publicIp"`
	LastStartedAt string  `json:"lastStartedAt"`
	Machine       struct {
		GpuTypeID string `json:"gpuTypeId"`
	} `json:"machine"`
}

func (p *runpodProvider) Name() string {
	return "runpod"
}

func (p *runpodProvider) List(ctx context.Context) ([]domain.ResourceStatus, error) {
	var pods []pod
	if err := p.get(ctx, "/pods", &pods); err != nil {
		return nil, err
	}

	statuses := make([]domain.ResourceStatus, 0, len(pods))
	for _, pd := range pods {
		statuses = append(statuses, pd.toStatus())
	}
	return statuses, nil
}

func (p *runpodProvider) Describe(ctx context.Context, id string) (*domain.ResourceStatus, error) {
	if id == "" {
		return nil, &errdefs.ValidationError{Field: "pod id", Reason: "must not be empty"}
	}

	var pd pod
	if err := p.get(ctx, "/pods/"+id, &pd); err != nil {
		return nil, err
	}
	status := pd.toStatus()
	return &status, nil
}

func (p *runpodProvider) Start(ctx context.Context, id string) error {
	if id == "" {
		return &errdefs.ValidationError{Field: "pod id", Reason: "must not be empty"}
	}
	return p.retry.Execute(ctx, func(ctx context.Context) error {
		return p.send(ctx, http.MethodPost, "/pods/"+id+"/start")
	})
}

func (p *runpodProvider) Stop(ctx context.Context, id string) error {
	if id == "" {
		return &errdefs.ValidationError{Field: "pod id", Reason: "must not be empty"}
	}
	return p.retry.Execute(ctx, func(ctx context.Context) error {
		return p.send(ctx, http.MethodPost, "/pods/"+id+"/stop")
	})
}

func (p *runpodProvider) Terminate(ctx context.Context, id string) error {
	if id == "" {
		return &errdefs.ValidationError{Field: "pod id", Reason: "must not be empty"}
	}
	return p.retry.Execute(ctx, func(ctx context.Context) error {
		return p.send(ctx, http.MethodDelete, "/pods/"+id)
	})
}

func (pd pod) toStatus() domain.ResourceStatus {
	var launchTime *time.Time
	if pd.LastStartedAt != "" {
		if t, err := time.Parse(time.RFC3339, pd.LastStartedAt); err == nil {
			launchTime = &t
		}
	}

	return domain.ResourceStatus{
		ID:           pd.ID,
		Name:         pd.Name,
		State:        mapPodStatus(pd.DesiredStatus),
		InstanceType: pd.Machine.GpuTypeID,
		LaunchTime:   launchTime,
		CostPerHour:  pd.CostPerHr,
		PublicIP:     pd.PublicIP,
	}
}

func mapPodStatus(status string) domain.ResourceState {
	switch status {
	case "CREATED":
		return domain.StateStarting
	case "RUNNING":
		return domain.StateRunning
	case "EXITED", "STOPPED":
		return domain.StateStopped
	case "TERMINATED":
		return domain.StateTerminated
	default:
		return domain.StateUnknown
	}
}

// get performs a retried GET and decodes the JSON body into out.
func (p *runpodProvider) get(ctx context.Context, path string, out any) error {
	return p.retry.Execute(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+p.apiKey)

		resp, err := p.client.Do(req)
		if err != nil {
			return wrapAPIError("GET "+path, err)
		}
		defer resp.Body.Close()

		if err := checkResponse(path, resp); err != nil {
			return err
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response for %s: %w", path, err)
		}
		return nil
	})
}

// send performs a body-less mutation request.
func (p *runpodProvider) send(ctx context.Context, method, path string) error {
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return wrapAPIError(method+" "+path, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return checkResponse(path, resp)
}

// checkResponse classifies non-2xx responses: throttling and server
// errors are transient, 404 maps to not-found, the rest of the 4xx
// range is a caller mistake and never retried.
func checkResponse(path string, resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return &errdefs.NotFoundError{Resource: "pod", ID: path}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return wrapAPIError(path, fmt.Errorf("unexpected status %s", resp.Status))
	default:
		return &errdefs.ValidationError{
			Field:  "request",
			Reason: fmt.Sprintf("%s returned %s", path, resp.Status),
		}
	}
}

func wrapAPIError(op string, err error) error {
	return &errdefs.CloudProviderError{
		Provider: "runpod",
		Message:  fmt.Sprintf("call failed: %s", op),
		Err:      err,
	}
}
