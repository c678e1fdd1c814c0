package runpod

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/arclabs561/runctl/pkg/errdefs"
	"github.com/arclabs561/runctl/pkg/services/provider"
)

// defaultImage is the container image pods boot when the caller does
// not choose one.
const defaultImage = "runpod/pytorch:2.1.0-py3.10-cuda11.8.0-devel-ubuntu22.04"

type createPodRequest struct {
	Name            string `json:"name"`
	ImageName       string `json:"imageName"`
	GpuTypeID       string `json:"gpuTypeId"`
	ContainerDiskGB int    `json:"containerDiskInGb,omitempty"`
}

func (p *runpodProvider) Create(ctx context.Context, spec provider.LaunchSpec) (string, error) {
	if spec.InstanceType == "" {
		return "", &errdefs.ValidationError{Field: "gpu type", Reason: "must not be empty"}
	}

	body, err := json.Marshal(createPodRequest{
		Name:            spec.Name,
		ImageName:       defaultImage,
		GpuTypeID:       spec.InstanceType,
		ContainerDiskGB: spec.DiskGB,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode create request: %w", err)
	}

	var created pod
	err = p.retry.Execute(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/pods", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := p.client.Do(req)
		if err != nil {
			return wrapAPIError("POST /pods", err)
		}
		defer resp.Body.Close()

		if err := checkResponse("/pods", resp); err != nil {
			return err
		}
		return json.NewDecoder(resp.Body).Decode(&created)
	})
	if err != nil {
		return "", err
	}
	return created.ID, nil
}
