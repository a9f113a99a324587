package expr

import (
	"github.com/fullmind/atlas/internal/maplayer"
)

// transparent is the fill used for categories a match expression does not
// recognize. Features never disappear into an undefined paint state.
const transparent = "rgba(0,0,0,0)"

// FallbackPointColor colors account points when no vendor is active.
const FallbackPointColor = "#8B7AB8"

// VendorFill compiles a fill-color match expression for a vendor layer from
// a palette, mapping every category the vendor defines through the fixed
// stop-index table and falling back to transparent.
func VendorFill(v maplayer.VendorID, p maplayer.VendorPalette) Expr {
	layer := maplayer.VendorLayer(v)
	cases := make([]Case, 0, len(layer.Categories))
	for _, cat := range layer.Categories {
		color, ok := maplayer.DefaultVendorCategoryColor(v, p, cat)
		if !ok {
			continue
		}
		cases = append(cases, Case{Label: cat, Output: Lit{color}})
	}
	return Match{
		Input:   Get{layer.TileProperty},
		Cases:   cases,
		Default: Lit{transparent},
	}
}

// VendorFillFromCategories compiles a vendor fill expression where each
// category resolves to its override color when the override map holds a
// "<vendorId>:<category>" entry, and to its canonical default otherwise.
// Keys belonging to other layers are ignored.
func VendorFillFromCategories(v maplayer.VendorID, overrides map[string]string) Expr {
	layer := maplayer.VendorLayer(v)
	palette := maplayer.VendorPaletteByID(maplayer.DefaultPaletteID(v))
	cases := make([]Case, 0, len(layer.Categories))
	for _, cat := range layer.Categories {
		color, ok := overrides[maplayer.CategoryKey(layer.ID, cat)]
		if !ok {
			color, ok = maplayer.DefaultVendorCategoryColor(v, palette, cat)
			if !ok {
				continue
			}
		}
		cases = append(cases, Case{Label: cat, Output: Lit{color}})
	}
	return Match{
		Input:   Get{layer.TileProperty},
		Cases:   cases,
		Default: Lit{transparent},
	}
}

// SignalFill compiles a fill-color match expression for a signal layer,
// mapping buckets stop-for-stop onto the palette ramp.
func SignalFill(s maplayer.SignalID, p maplayer.SignalPalette) Expr {
	layer := maplayer.SignalLayer(s)
	cases := make([]Case, 0, len(layer.Categories))
	for _, cat := range layer.Categories {
		color, ok := maplayer.DefaultSignalCategoryColor(s, p, cat)
		if !ok {
			continue
		}
		cases = append(cases, Case{Label: cat, Output: Lit{color}})
	}
	return Match{
		Input:   Get{layer.TileProperty},
		Cases:   cases,
		Default: Lit{transparent},
	}
}

// SignalFillFromCategories is the override-aware variant of SignalFill,
// resolving each bucket through the override map before the palette default.
func SignalFillFromCategories(s maplayer.SignalID, paletteID string, overrides map[string]string) Expr {
	layer := maplayer.SignalLayer(s)
	palette := maplayer.SignalPaletteByID(paletteID)
	cases := make([]Case, 0, len(layer.Categories))
	for _, cat := range layer.Categories {
		color, ok := overrides[maplayer.CategoryKey(layer.ID, cat)]
		if !ok {
			color, ok = maplayer.DefaultSignalCategoryColor(s, palette, cat)
			if !ok {
				continue
			}
		}
		cases = append(cases, Case{Label: cat, Output: Lit{color}})
	}
	return Match{
		Input:   Get{layer.TileProperty},
		Cases:   cases,
		Default: Lit{transparent},
	}
}

// CategoryOpacity compiles a fill-opacity expression for a layer. With no
// matching overrides it is the layer's default opacity as a bare literal;
// with overrides it is a match expression over the overridden categories,
// falling back to the layer default for everything unlisted.
func CategoryOpacity(layer maplayer.LayerDef, overrides map[string]float64) Expr {
	var cases []Case
	for _, cat := range layer.Categories {
		if v, ok := overrides[maplayer.CategoryKey(layer.ID, cat)]; ok {
			cases = append(cases, Case{Label: cat, Output: Lit{v}})
		}
	}
	if len(cases) == 0 {
		return Lit{layer.DefaultOpacity}
	}
	return Match{
		Input:   Get{layer.TileProperty},
		Cases:   cases,
		Default: Lit{layer.DefaultOpacity},
	}
}

// Filter combines the active owner/plan/state filters into one predicate.
// It returns nil when no filter is active (show everything), the bare
// condition when exactly one is active, and an "all" wrapper otherwise.
// Empty strings count as inactive.
func Filter(owner, planID string, states []string) Expr {
	var conds []Expr
	if len(states) > 0 {
		conds = append(conds, In{
			Needle:   Get{"state_abbrev"},
			Haystack: ArrayLit{states},
		})
	}
	if owner != "" {
		conds = append(conds, Eq{Get{"sales_executive"}, Lit{owner}})
	}
	if planID != "" {
		// plan_ids is a comma-joined string that may be absent on a
		// feature; coalesce keeps index-of away from null.
		conds = append(conds, Neq{
			Left: IndexOf{
				Needle:   Lit{planID},
				Haystack: Coalesce{[]Expr{Get{"plan_ids"}, Lit{""}}},
			},
			Right: Lit{-1},
		})
	}
	switch len(conds) {
	case 0:
		return nil
	case 1:
		return conds[0]
	default:
		return All{conds}
	}
}

// EngagementFilter restricts a vendor layer to the tile category values its
// engagement selection maps to. Callers pass the already-aliased category
// list; nil means no engagement filter is active for the vendor.
func EngagementFilter(v maplayer.VendorID, categories []string) Expr {
	if len(categories) == 0 {
		return nil
	}
	return In{
		Needle:   Get{v.TileProperty()},
		Haystack: ArrayLit{categories},
	}
}

// And combines predicates, skipping nil entries: nil when none remain, the
// bare condition when one does, an "all" wrapper otherwise.
func And(conds ...Expr) Expr {
	var kept []Expr
	for _, c := range conds {
		if c != nil {
			kept = append(kept, c)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return All{kept}
	}
}

// Paint maps renderer paint property names to expressions.
type Paint map[string]Expr

// LayerSpec is a renderable layer specification for point ("account")
// features.
type LayerSpec struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Filter Expr   `json:"filter"`
	Paint  Paint  `json:"paint"`
}

// AccountPointLayer builds the circle layer for non-polygon account
// features. Points take the base color of the first active vendor in
// insertion order, or a fixed fallback when no vendor is active. District
// polygons are excluded by filter.
func AccountPointLayer(active []maplayer.VendorID) LayerSpec {
	color := FallbackPointColor
	if len(active) > 0 {
		color = maplayer.VendorBaseColor(active[0])
	}
	return LayerSpec{
		ID:     "accounts",
		Type:   "circle",
		Filter: Neq{Get{"account_type"}, Lit{"district"}},
		Paint: Paint{
			"circle-color": Lit{color},
			"circle-radius": Interpolate{
				Input: Zoom{},
				Stops: []Stop{
					{Input: 4, Output: Lit{2.5}},
					{Input: 8, Output: Lit{4.0}},
					{Input: 12, Output: Lit{7.0}},
				},
			},
			"circle-opacity":      Lit{0.9},
			"circle-stroke-width": Lit{1.0},
			"circle-stroke-color": Lit{"#FFFFFF"},
		},
	}
}
