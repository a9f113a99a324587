package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/fullmind/atlas/internal/maplayer"
	"github.com/fullmind/atlas/internal/viewstate"
)

// View-state endpoints: the store's named actions over REST. The store
// stays the single source of truth; handlers never hold state of their own.

type SnapshotOutput struct {
	Body viewstate.Snapshot
}

type DirtyBody struct {
	UnsavedChanges bool `json:"unsavedChanges" doc:"Whether the live state differs from the last captured baseline"`
}

type VendorInput struct {
	Vendor string `path:"vendor" enum:"fullmind,proximity,elevate,tbt" doc:"Vendor ID"`
}

type SignalInput struct {
	Signal string `path:"signal" enum:"enrollment,ell,swd,expenditure" doc:"Signal ID"`
}

type FiltersInput struct {
	Body viewstate.FilterState
}

type FiscalYearInput struct {
	Body struct {
		Year int `json:"year" minimum:"2000" maximum:"2100" doc:"Fiscal year"`
	}
}

type CompareInput struct {
	Body viewstate.CompareState
}

type EngagementInput struct {
	Vendor string `path:"vendor" enum:"fullmind,proximity,elevate,tbt" doc:"Vendor ID"`
	Body   struct {
		Engagements []string `json:"engagements" doc:"UI engagement ids to show for this vendor"`
	}
}

type PalettesInput struct {
	Body struct {
		VendorPalettes  map[maplayer.VendorID]string  `json:"vendorPalettes,omitempty" doc:"Palette id per vendor"`
		VendorOpacities map[maplayer.VendorID]float64 `json:"vendorOpacities,omitempty" doc:"Base opacity per vendor"`
		SignalPalette   string                        `json:"signalPalette,omitempty" doc:"Signal palette id"`
	}
}

type OverridesInput struct {
	Body struct {
		Colors    map[string]string  `json:"colors,omitempty" doc:"Color overrides keyed by layerId:category"`
		Opacities map[string]float64 `json:"opacities,omitempty" doc:"Opacity overrides keyed by layerId:category"`
	}
}

// RegisterViewState registers view-state read and mutation routes.
func (h *APIHandler) RegisterViewState(api huma.API) {
	huma.Get(api, "/api/v1/view", h.GetViewState, huma.OperationTags("view-state"))
	huma.Put(api, "/api/v1/view", h.ApplyViewState, huma.OperationTags("view-state"))
	huma.Get(api, "/api/v1/view/dirty", h.GetDirty, huma.OperationTags("view-state"))
	huma.Post(api, "/api/v1/view/capture", h.CaptureViewState, huma.OperationTags("view-state"))

	huma.Post(api, "/api/v1/view/vendors/{vendor}/toggle", h.ToggleVendor, huma.OperationTags("view-state"))
	huma.Post(api, "/api/v1/view/signals/{signal}/toggle", h.ToggleSignal, huma.OperationTags("view-state"))
	huma.Put(api, "/api/v1/view/vendors/{vendor}/engagements", h.SetEngagements, huma.OperationTags("view-state"))
	huma.Put(api, "/api/v1/view/filters", h.SetFilters, huma.OperationTags("view-state"))
	huma.Put(api, "/api/v1/view/fiscal-year", h.SetFiscalYear, huma.OperationTags("view-state"))
	huma.Put(api, "/api/v1/view/compare", h.SetCompare, huma.OperationTags("view-state"))
	huma.Put(api, "/api/v1/view/palettes", h.SetPalettes, huma.OperationTags("view-state"))
	huma.Put(api, "/api/v1/view/overrides", h.SetOverrides, huma.OperationTags("view-state"))
}

func (h *APIHandler) GetViewState(ctx context.Context, input *struct{}) (*SnapshotOutput, error) {
	return &SnapshotOutput{Body: h.svc.Store.Snapshot()}, nil
}

func (h *APIHandler) ApplyViewState(ctx context.Context, input *struct{ Body viewstate.Snapshot }) (*SnapshotOutput, error) {
	h.svc.Store.Apply(input.Body)
	return &SnapshotOutput{Body: h.svc.Store.Snapshot()}, nil
}

func (h *APIHandler) GetDirty(ctx context.Context, input *struct{}) (*struct{ Body DirtyBody }, error) {
	return &struct{ Body DirtyBody }{Body: DirtyBody{
		UnsavedChanges: h.svc.Store.HasUnsavedChanges(),
	}}, nil
}

func (h *APIHandler) CaptureViewState(ctx context.Context, input *struct{}) (*struct{ Body MessageBody }, error) {
	h.svc.Store.Capture()
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Baseline captured"}}, nil
}

func (h *APIHandler) ToggleVendor(ctx context.Context, input *VendorInput) (*SnapshotOutput, error) {
	if !maplayer.IsVendor(input.Vendor) {
		return nil, huma.Error422UnprocessableEntity("unknown vendor: " + input.Vendor)
	}
	h.svc.Store.ToggleVendor(maplayer.VendorID(input.Vendor))
	return &SnapshotOutput{Body: h.svc.Store.Snapshot()}, nil
}

func (h *APIHandler) ToggleSignal(ctx context.Context, input *SignalInput) (*SnapshotOutput, error) {
	if !maplayer.IsSignal(input.Signal) {
		return nil, huma.Error422UnprocessableEntity("unknown signal: " + input.Signal)
	}
	h.svc.Store.SetSignal(maplayer.SignalID(input.Signal))
	return &SnapshotOutput{Body: h.svc.Store.Snapshot()}, nil
}

func (h *APIHandler) SetEngagements(ctx context.Context, input *EngagementInput) (*SnapshotOutput, error) {
	if !maplayer.IsVendor(input.Vendor) {
		return nil, huma.Error422UnprocessableEntity("unknown vendor: " + input.Vendor)
	}
	h.svc.Store.SetEngagementFilters(maplayer.VendorID(input.Vendor), input.Body.Engagements)
	return &SnapshotOutput{Body: h.svc.Store.Snapshot()}, nil
}

func (h *APIHandler) SetFilters(ctx context.Context, input *FiltersInput) (*SnapshotOutput, error) {
	h.svc.Store.SetOwnerFilter(input.Body.Owner)
	h.svc.Store.SetPlanFilter(input.Body.PlanID)
	h.svc.Store.SetStateFilters(input.Body.States)
	h.svc.Store.SetAccountTypes(input.Body.AccountTypes)
	return &SnapshotOutput{Body: h.svc.Store.Snapshot()}, nil
}

func (h *APIHandler) SetFiscalYear(ctx context.Context, input *FiscalYearInput) (*SnapshotOutput, error) {
	h.svc.Store.SetFiscalYear(input.Body.Year)
	return &SnapshotOutput{Body: h.svc.Store.Snapshot()}, nil
}

func (h *APIHandler) SetCompare(ctx context.Context, input *CompareInput) (*SnapshotOutput, error) {
	h.svc.Store.SetCompareEnabled(input.Body.Enabled)
	if input.Body.View != "" {
		h.svc.Store.SetCompareView(input.Body.View)
	}
	if input.Body.YearA != 0 || input.Body.YearB != 0 {
		h.svc.Store.SetCompareYears(input.Body.YearA, input.Body.YearB)
	}
	return &SnapshotOutput{Body: h.svc.Store.Snapshot()}, nil
}

func (h *APIHandler) SetPalettes(ctx context.Context, input *PalettesInput) (*SnapshotOutput, error) {
	for v, id := range input.Body.VendorPalettes {
		h.svc.Store.SetVendorPalette(v, id)
	}
	for v, o := range input.Body.VendorOpacities {
		h.svc.Store.SetVendorOpacity(v, o)
	}
	if input.Body.SignalPalette != "" {
		h.svc.Store.SetSignalPalette(input.Body.SignalPalette)
	}
	return &SnapshotOutput{Body: h.svc.Store.Snapshot()}, nil
}

func (h *APIHandler) SetOverrides(ctx context.Context, input *OverridesInput) (*SnapshotOutput, error) {
	for key, color := range input.Body.Colors {
		h.svc.Store.SetCategoryColor(key, color)
	}
	for key, opacity := range input.Body.Opacities {
		h.svc.Store.SetCategoryOpacity(key, opacity)
	}
	return &SnapshotOutput{Body: h.svc.Store.Snapshot()}, nil
}
