package editor

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/fullmind/atlas/internal/humastar"
	"github.com/fullmind/atlas/internal/maplayer"
	"github.com/fullmind/atlas/internal/templates"
	"github.com/fullmind/atlas/internal/viewstate"
)

// LegendHandler drives the legend panel. Toggling a vendor or signal mutates
// the store, repaints the legend fragment, and nudges the client to refetch
// the compiled style.
type LegendHandler struct {
	humastar.Handler
	store *viewstate.Store
}

func NewLegendHandler(store *viewstate.Store, renderer *templates.Renderer) *LegendHandler {
	return &LegendHandler{
		Handler: humastar.Handler{Renderer: renderer},
		store:   store,
	}
}

func (h *LegendHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/editor/legend", h.GetLegend, huma.OperationTags("editor"))
	huma.Post(api, "/api/v1/editor/vendors/{vendor}/toggle", h.ToggleVendor, huma.OperationTags("editor"))
	huma.Post(api, "/api/v1/editor/signals/{signal}/toggle", h.ToggleSignal, huma.OperationTags("editor"))
	huma.Post(api, "/api/v1/editor/palette", h.SetPalette, huma.OperationTags("editor"))
	huma.Post(api, "/api/v1/editor/category-color", h.SetCategoryColor, huma.OperationTags("editor"))
	huma.Post(api, "/api/v1/editor/category-opacity", h.SetCategoryOpacity, huma.OperationTags("editor"))
	huma.Post(api, "/api/v1/editor/vendors/{vendor}/engagements", h.SetEngagements, huma.OperationTags("editor"))
	huma.Post(api, "/api/v1/editor/fiscal-year", h.SetFiscalYear, huma.OperationTags("editor"))
}

func (h *LegendHandler) GetLegend(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		sse.Patch(h.renderLegend(), "#legend")
	}), nil
}

type VendorToggleInput struct {
	Vendor string `path:"vendor" enum:"fullmind,proximity,elevate,tbt" doc:"Vendor ID"`
}

func (h *LegendHandler) ToggleVendor(ctx context.Context, input *VendorToggleInput) (*huma.StreamResponse, error) {
	if !maplayer.IsVendor(input.Vendor) {
		return nil, huma.Error422UnprocessableEntity("unknown vendor: " + input.Vendor)
	}
	return h.Stream(func(sse humastar.SSE) {
		h.store.ToggleVendor(maplayer.VendorID(input.Vendor))
		h.patchState(sse)
	}), nil
}

type SignalToggleInput struct {
	Signal string `path:"signal" enum:"enrollment,ell,swd,expenditure" doc:"Signal ID"`
}

func (h *LegendHandler) ToggleSignal(ctx context.Context, input *SignalToggleInput) (*huma.StreamResponse, error) {
	if !maplayer.IsSignal(input.Signal) {
		return nil, huma.Error422UnprocessableEntity("unknown signal: " + input.Signal)
	}
	return h.Stream(func(sse humastar.SSE) {
		h.store.SetSignal(maplayer.SignalID(input.Signal))
		h.patchState(sse)
	}), nil
}

// SetPalette switches a vendor palette or the signal palette, from signals
// {vendor, palette} or {signalpalette}.
func (h *LegendHandler) SetPalette(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	return h.Stream(func(sse humastar.SSE) {
		if vendor := signals.String("vendor"); vendor != "" && maplayer.IsVendor(vendor) {
			h.store.SetVendorPalette(maplayer.VendorID(vendor), signals.String("palette"))
		}
		if sp := signals.String("signalpalette"); sp != "" {
			h.store.SetSignalPalette(sp)
		}
		h.patchState(sse)
	}), nil
}

// SetCategoryColor applies a single category color override from signals
// {categorykey, color}. An empty color clears the override.
func (h *LegendHandler) SetCategoryColor(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	key := signals.String("categorykey")
	if _, _, ok := maplayer.SplitCategoryKey(key); !ok {
		return nil, huma.Error400BadRequest("Invalid category key: " + key)
	}
	return h.Stream(func(sse humastar.SSE) {
		h.store.SetCategoryColor(key, signals.String("color"))
		h.patchState(sse)
	}), nil
}

// SetCategoryOpacity applies a per-category opacity override from signals
// {categorykey, opacity}. A missing or zero opacity clears the override.
func (h *LegendHandler) SetCategoryOpacity(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	key := signals.String("categorykey")
	if _, _, ok := maplayer.SplitCategoryKey(key); !ok {
		return nil, huma.Error400BadRequest("Invalid category key: " + key)
	}
	opacity := signals.Float("opacity")
	if opacity < 0 || opacity > 1 {
		return nil, huma.Error422UnprocessableEntity("opacity must be between 0 and 1")
	}
	return h.Stream(func(sse humastar.SSE) {
		if !signals.Has("opacity") || opacity == 0 {
			h.store.ClearCategoryOpacity(key)
		} else {
			h.store.SetCategoryOpacity(key, opacity)
		}
		h.patchState(sse)
	}), nil
}

// EngagementEditInput pairs the vendor path parameter with raw signals.
type EngagementEditInput struct {
	Vendor  string `path:"vendor" enum:"fullmind,proximity,elevate,tbt" doc:"Vendor ID"`
	RawBody []byte
}

// SetEngagements replaces a vendor's engagement selection from signals
// {engagements: [...]}. An empty list clears the filter.
func (h *LegendHandler) SetEngagements(ctx context.Context, input *EngagementEditInput) (*huma.StreamResponse, error) {
	if !maplayer.IsVendor(input.Vendor) {
		return nil, huma.Error422UnprocessableEntity("unknown vendor: " + input.Vendor)
	}
	signals, err := humastar.ParseSignals(input.RawBody)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid request data: " + err.Error())
	}
	return h.Stream(func(sse humastar.SSE) {
		h.store.SetEngagementFilters(maplayer.VendorID(input.Vendor), signals.Strings("engagements"))
		h.patchState(sse)
	}), nil
}

// SetFiscalYear selects the viewed fiscal year from signals {fiscalyear}.
func (h *LegendHandler) SetFiscalYear(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	year := signals.Int("fiscalyear")
	if year < 2000 || year > 2100 {
		return nil, huma.Error422UnprocessableEntity("fiscal year out of range")
	}
	return h.Stream(func(sse humastar.SSE) {
		h.store.SetFiscalYear(year)
		h.patchState(sse)
	}), nil
}

func (h *LegendHandler) patchState(sse humastar.SSE) {
	sse.Patch(h.renderLegend(), "#legend")
	sse.Signals(map[string]any{"unsavedChanges": h.store.HasUnsavedChanges()})
	sse.DispatchCustomEvent("style-changed", map[string]any{})
}

// LegendRowData feeds the legend-row fragment: one swatch per category.
type LegendRowData struct {
	Key      string
	Category string
	Color    string
	Opacity  float64
}

// LegendSectionData feeds the legend-section fragment header.
type LegendSectionData struct {
	LayerID string
	Label   string
	Rows    []LegendRowData
}

func (h *LegendHandler) renderLegend() string {
	var sections []LegendSectionData
	overrides := h.store.CategoryColors()
	opacities := h.store.CategoryOpacities()

	for _, v := range h.store.ActiveVendors() {
		layer := maplayer.VendorLayer(v)
		palette := h.store.VendorPalette(v)
		rows := make([]LegendRowData, 0, len(layer.Categories))
		for _, cat := range layer.Categories {
			key := maplayer.CategoryKey(layer.ID, cat)
			color, ok := overrides[key]
			if !ok {
				color, ok = maplayer.DefaultVendorCategoryColor(v, palette, cat)
				if !ok {
					continue
				}
			}
			opacity := h.store.VendorOpacity(v)
			if o, ok := opacities[key]; ok {
				opacity = o
			}
			rows = append(rows, LegendRowData{Key: key, Category: cat, Color: color, Opacity: opacity})
		}
		sections = append(sections, LegendSectionData{
			LayerID: layer.ID, Label: palette.Label, Rows: rows,
		})
	}

	if sig := h.store.ActiveSignal(); sig != "" {
		layer := maplayer.SignalLayer(sig)
		palette := h.store.SignalPalette()
		rows := make([]LegendRowData, 0, len(layer.Categories))
		for _, cat := range layer.Categories {
			key := maplayer.CategoryKey(layer.ID, cat)
			color, ok := overrides[key]
			if !ok {
				color, ok = maplayer.DefaultSignalCategoryColor(sig, palette, cat)
				if !ok {
					continue
				}
			}
			opacity := layer.DefaultOpacity
			if o, ok := opacities[key]; ok {
				opacity = o
			}
			rows = append(rows, LegendRowData{Key: key, Category: cat, Color: color, Opacity: opacity})
		}
		sections = append(sections, LegendSectionData{
			LayerID: layer.ID, Label: palette.Label, Rows: rows,
		})
	}

	items := make([]any, len(sections))
	for i, section := range sections {
		items[i] = section
	}
	return h.RenderList("legend-section", items,
		"Nothing on the map", "Toggle a vendor or signal layer")
}
