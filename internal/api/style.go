package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/fullmind/atlas/internal/expr"
	"github.com/fullmind/atlas/internal/maplayer"
)

// Style endpoints compile the live view state into renderer-ready layer
// specs. Clients re-fetch after any state mutation; compilation is pure so
// the same state always yields the same style document.

type StyleOutput struct {
	Body struct {
		Layers []expr.LayerSpec `json:"layers" doc:"Compiled layer specs in paint order"`
	}
}

type PaletteListOutput struct {
	Body struct {
		Vendor []maplayer.VendorPalette `json:"vendor" doc:"Available vendor palettes"`
		Signal []maplayer.SignalPalette `json:"signal" doc:"Available signal palettes"`
	}
}

// RegisterStyle registers compiled-style routes.
func (h *APIHandler) RegisterStyle(api huma.API) {
	huma.Get(api, "/api/v1/style/layers", h.GetStyleLayers, huma.OperationTags("style"))
	huma.Get(api, "/api/v1/style/palettes", h.GetPalettes, huma.OperationTags("style"))
}

// GetStyleLayers compiles the full layer set for the current state: one
// fill layer per active vendor in toggle order, the signal layer when one
// is active, and the account point layer last.
func (h *APIHandler) GetStyleLayers(ctx context.Context, input *struct{}) (*StyleOutput, error) {
	st := h.svc.Store
	filters := st.Filters()
	filter := expr.Filter(filters.Owner, filters.PlanID, filters.States)
	colors := st.CategoryColors()
	opacities := st.CategoryOpacities()

	active := st.ActiveVendors()
	layers := make([]expr.LayerSpec, 0, len(active)+2)
	for _, v := range active {
		layer := maplayer.VendorLayer(v)
		layer.DefaultOpacity = st.VendorOpacity(v)

		// Selected palette supplies the per-category defaults; explicit
		// overrides win on top of it.
		effective := maplayer.DefaultVendorColors(v, st.VendorPalette(v))
		for k, c := range colors {
			effective[k] = c
		}

		// The vendor's engagement selection narrows its layer to the
		// mapped tile categories, on top of the shared sub-filters.
		vendorFilter := expr.And(filter,
			expr.EngagementFilter(v, st.EngagementCategories(v)))

		layers = append(layers, expr.LayerSpec{
			ID:     string(v),
			Type:   "fill",
			Filter: vendorFilter,
			Paint: expr.Paint{
				"fill-color":   expr.VendorFillFromCategories(v, effective),
				"fill-opacity": expr.CategoryOpacity(layer, opacities),
			},
		})
	}

	if sig := st.ActiveSignal(); sig != "" {
		layer := maplayer.SignalLayer(sig)
		layers = append(layers, expr.LayerSpec{
			ID:     string(sig),
			Type:   "fill",
			Filter: filter,
			Paint: expr.Paint{
				"fill-color":   expr.SignalFillFromCategories(sig, st.SignalPalette().ID, colors),
				"fill-opacity": expr.CategoryOpacity(layer, opacities),
			},
		})
	}

	layers = append(layers, expr.AccountPointLayer(active))

	out := &StyleOutput{}
	out.Body.Layers = layers
	return out, nil
}

func (h *APIHandler) GetPalettes(ctx context.Context, input *struct{}) (*PaletteListOutput, error) {
	out := &PaletteListOutput{}
	out.Body.Vendor = maplayer.VendorPalettes()
	out.Body.Signal = maplayer.SignalPalettes()
	return out, nil
}
