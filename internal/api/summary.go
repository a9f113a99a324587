package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/fullmind/atlas/internal/summary"
)

// Summary endpoints: numeric rollups, filter dropdown options, and
// fit-to-states bounds. All read-only; parameters come from the live
// view state so the panel always matches the map.

type RollupOutput struct {
	Body summary.Rollup
}

type OptionsOutput struct {
	Body summary.FilterOptions
}

type BoundsOutput struct {
	Body struct {
		Bounds *summary.Bounds `json:"bounds" doc:"Geographic bounds of the filtered states; null when no rows match"`
	}
}

// RegisterSummary registers summary and filter-option routes.
func (h *APIHandler) RegisterSummary(api huma.API) {
	huma.Get(api, "/api/v1/summary", h.GetSummary, huma.OperationTags("summary"))
	huma.Get(api, "/api/v1/summary/options", h.GetFilterOptions, huma.OperationTags("summary"))
	huma.Get(api, "/api/v1/summary/bounds", h.GetStateBounds, huma.OperationTags("summary"))
}

func (h *APIHandler) GetSummary(ctx context.Context, input *struct{}) (*RollupOutput, error) {
	if h.svc.Summary == nil {
		return nil, huma.Error503ServiceUnavailable("Database not available")
	}
	rollup, err := h.svc.Summary.Rollup(ctx, summary.ParamsFromSnapshot(h.svc.Store.Snapshot()))
	if err != nil {
		return nil, huma.Error500InternalServerError("Rollup failed", err)
	}
	return &RollupOutput{Body: rollup}, nil
}

func (h *APIHandler) GetFilterOptions(ctx context.Context, input *struct{}) (*OptionsOutput, error) {
	if h.svc.Summary == nil {
		return nil, huma.Error503ServiceUnavailable("Database not available")
	}
	opts, err := h.svc.Summary.FilterOptions(ctx, h.svc.Store.FiscalYear())
	if err != nil {
		return nil, huma.Error500InternalServerError("Filter options failed", err)
	}
	return &OptionsOutput{Body: opts}, nil
}

// GetStateBounds returns the bounding box of the currently filtered states
// so the client can fit the camera to them.
func (h *APIHandler) GetStateBounds(ctx context.Context, input *struct{}) (*BoundsOutput, error) {
	if h.svc.Summary == nil {
		return nil, huma.Error503ServiceUnavailable("Database not available")
	}
	bounds, ok, err := h.svc.Summary.StateBounds(ctx, h.svc.Store.Filters().States)
	if err != nil {
		return nil, huma.Error500InternalServerError("Bounds query failed", err)
	}
	out := &BoundsOutput{}
	if ok {
		out.Body.Bounds = &bounds
	}
	return out, nil
}
