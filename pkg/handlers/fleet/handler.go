// Package fleet exposes read-only fleet endpoints plus a side-effect
// free cleanup preview over the tracker and safety policy.
package fleet

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/arclabs561/runctl/pkg/models/api"
	"github.com/arclabs561/runctl/pkg/models/domain"
	"github.com/arclabs561/runctl/pkg/services/cleanup"
	"github.com/arclabs561/runctl/pkg/services/tracker"
)

type Handler struct {
	tracker *tracker.Tracker
	safety  *cleanup.Safety
}

func NewHandler(tr *tracker.Tracker, safety *cleanup.Safety) *Handler {
	return &Handler{
		tracker: tr,
		safety:  safety,
	}
}

func (h *Handler) ListFleet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	resources := h.tracker.List()
	response := make([]api.TrackedResource, 0, len(resources))
	for _, res := range resources {
		response = append(response, toAPI(res))
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error().
			Err(err).
			Msg("failed to encode fleet")
	}
}

func (h *Handler) GetResource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	id := chi.URLParam(r, "id")

	res, ok := h.tracker.GetByID(id)
	if !ok {
		http.Error(w, "resource not found", http.StatusNotFound)
		return
	}

	if err := json.NewEncoder(w).Encode(toAPI(res)); err != nil {
		logger.Error().
			Err(err).
			Str("resource_id", id).
			Msg("failed to encode resource")
	}
}

func (h *Handler) GetFleetCost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	resources := h.tracker.List()
	response := api.FleetCost{
		TotalCost: h.tracker.GetTotalCost(),
		Resources: make([]api.ResourceCost, 0, len(resources)),
	}
	for _, res := range resources {
		response.Resources = append(response.Resources, api.ResourceCost{
			ID:              res.Status.ID,
			State:           string(res.Status.State),
			AccumulatedCost: res.AccumulatedCost,
		})
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error().
			Err(err).
			Msg("failed to encode fleet cost")
	}
}

// PreviewCleanup classifies the requested IDs without deleting
// anything; it is the HTTP face of the dry-run path.
func (h *Handler) PreviewCleanup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var req api.CleanupPreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.IDs) == 0 {
		http.Error(w, "ids must not be empty", http.StatusBadRequest)
		return
	}

	safety := h.safety
	if req.MinAgeMinutes != nil {
		safety = cleanup.WithMinAge(time.Duration(*req.MinAgeMinutes) * time.Minute)
	}

	result, err := cleanup.SafeCleanup(ctx, req.IDs, h.tracker, safety, true, req.Force)
	if err != nil {
		logger.Error().Err(err).Msg("cleanup preview failed")
		http.Error(w, "cleanup preview failed", http.StatusInternalServerError)
		return
	}

	response := api.CleanupPreview{
		Deletable: result.Deleted,
		Skipped:   make([]api.SkippedResource, 0, len(result.Skipped)),
		Errors:    make([]api.CleanupError, 0, len(result.Errors)),
	}
	for _, s := range result.Skipped {
		response.Skipped = append(response.Skipped, api.SkippedResource{ID: s.ID, Reason: s.Reason})
	}
	for _, e := range result.Errors {
		response.Errors = append(response.Errors, api.CleanupError{ID: e.ID, Error: e.Err})
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error().
			Err(err).
			Msg("failed to encode cleanup preview")
	}
}

func toAPI(res domain.TrackedResource) api.TrackedResource {
	return api.TrackedResource{
		ID:              res.Status.ID,
		Name:            res.Status.Name,
		State:           string(res.Status.State),
		InstanceType:    res.Status.InstanceType,
		LaunchTime:      res.Status.LaunchTime,
		CostPerHour:     res.Status.CostPerHour,
		PublicIP:        res.Status.PublicIP,
		Tags:            res.Tags,
		CreatedAt:       res.CreatedAt,
		AccumulatedCost: res.AccumulatedCost,
		UsageSamples:    len(res.UsageHistory),
	}
}
