// Package maplayer defines the static vendor/signal layer model and the
// named color palettes used to encode engagement categories on the map.
package maplayer

import "strings"

// VendorID identifies a commercial provider whose per-district engagement
// status is encoded in the vector tiles.
type VendorID string

const (
	VendorFullmind  VendorID = "fullmind"
	VendorProximity VendorID = "proximity"
	VendorElevate   VendorID = "elevate"
	VendorTBT       VendorID = "tbt"
)

// Vendors lists every known vendor. Fullmind is the operator; the rest are
// competitors.
func Vendors() []VendorID {
	return []VendorID{VendorFullmind, VendorProximity, VendorElevate, VendorTBT}
}

// IsVendor reports whether id names a known vendor.
func IsVendor(id string) bool {
	switch VendorID(id) {
	case VendorFullmind, VendorProximity, VendorElevate, VendorTBT:
		return true
	}
	return false
}

// IsCompetitor reports whether v is a competitor of the operator.
func (v VendorID) IsCompetitor() bool {
	return v != VendorFullmind
}

// TileProperty returns the tile feature property this vendor's category is
// read from, e.g. "fullmind_category".
func (v VendorID) TileProperty() string {
	return string(v) + "_category"
}

// SignalID identifies a district trend/quartile indicator unrelated to any
// vendor relationship. At most one signal is active at a time.
type SignalID string

const (
	SignalEnrollment  SignalID = "enrollment"
	SignalELL         SignalID = "ell"
	SignalSWD         SignalID = "swd"
	SignalExpenditure SignalID = "expenditure"
)

// Signals lists every known signal.
func Signals() []SignalID {
	return []SignalID{SignalEnrollment, SignalELL, SignalSWD, SignalExpenditure}
}

// IsSignal reports whether id names a known signal.
func IsSignal(id string) bool {
	switch SignalID(id) {
	case SignalEnrollment, SignalELL, SignalSWD, SignalExpenditure:
		return true
	}
	return false
}

// TileProperty returns the tile feature property this signal is read from,
// e.g. "enrollment_signal".
func (s SignalID) TileProperty() string {
	return string(s) + "_signal"
}

// IsQuartile reports whether the signal uses 4 quartile buckets rather than
// the 5 growth-trend buckets.
func (s SignalID) IsQuartile() bool {
	return s == SignalExpenditure
}

// Engagement category values as they appear in tile properties. Fullmind has
// ten (including target); competitors have nine (churned instead of lapsed,
// no target).
var (
	fullmindCategories = []string{
		"target",
		"lapsed",
		"new_business_pipeline",
		"new",
		"renewal_pipeline",
		"expansion_pipeline",
		"multi_year_flat",
		"winback_pipeline",
		"multi_year_growing",
		"multi_year_shrinking",
	}

	competitorCategories = []string{
		"churned",
		"new_business_pipeline",
		"new",
		"renewal_pipeline",
		"expansion_pipeline",
		"multi_year_flat",
		"winback_pipeline",
		"multi_year_growing",
		"multi_year_shrinking",
	}

	// growthBuckets are ordered strongest growth to strongest decline,
	// matching SignalPalette.GrowthStops stop-for-stop.
	growthBuckets = []string{
		"strong_growth",
		"growth",
		"stable",
		"decline",
		"strong_decline",
	}

	// quartileBuckets are ordered highest to lowest spend, matching
	// SignalPalette.ExpenditureStops stop-for-stop.
	quartileBuckets = []string{
		"top_quartile",
		"second_quartile",
		"third_quartile",
		"bottom_quartile",
	}
)

// engagementAliases maps UI-facing engagement names to the raw tile category
// values they correspond to. Unlisted names pass through unchanged.
var engagementAliases = map[string][]string{
	"first_year": {"new"},
}

// EngagementToCategories maps UI engagement ids to raw tile category values,
// flattening any one-to-many aliases. Unknown ids pass through unchanged.
func EngagementToCategories(engagements []string) []string {
	out := make([]string, 0, len(engagements))
	for _, e := range engagements {
		if mapped, ok := engagementAliases[e]; ok {
			out = append(out, mapped...)
			continue
		}
		out = append(out, e)
	}
	return out
}

// Default fill opacities per layer family.
const (
	DefaultVendorOpacity  = 0.75
	DefaultElevateOpacity = 0.8
	DefaultSignalOpacity  = 0.55
)

// LayerDef describes one renderable layer: which tile property it reads,
// which categorical values are valid for it, and its default fill opacity.
type LayerDef struct {
	ID             string
	TileProperty   string
	Categories     []string
	DefaultOpacity float64
}

// VendorLayer returns the layer definition for a vendor.
func VendorLayer(v VendorID) LayerDef {
	cats := competitorCategories
	if v == VendorFullmind {
		cats = fullmindCategories
	}
	opacity := DefaultVendorOpacity
	if v == VendorElevate {
		opacity = DefaultElevateOpacity
	}
	return LayerDef{
		ID:             string(v),
		TileProperty:   v.TileProperty(),
		Categories:     cats,
		DefaultOpacity: opacity,
	}
}

// SignalLayer returns the layer definition for a signal.
func SignalLayer(s SignalID) LayerDef {
	cats := growthBuckets
	if s.IsQuartile() {
		cats = quartileBuckets
	}
	return LayerDef{
		ID:             string(s),
		TileProperty:   s.TileProperty(),
		Categories:     cats,
		DefaultOpacity: DefaultSignalOpacity,
	}
}

// CategoryKey builds the composite "<layerId>:<category>" identity used for
// per-category color/opacity overrides.
func CategoryKey(layerID, category string) string {
	return layerID + ":" + category
}

// SplitCategoryKey splits a composite key into layer id and category name.
// The layer id may itself contain a colon (locale layers use
// "locale:<localeId>"), so the split is on the last separator.
func SplitCategoryKey(key string) (layerID, category string, ok bool) {
	i := strings.LastIndex(key, ":")
	if i <= 0 || i == len(key)-1 {
		return "", "", false
	}
	return key[:i], key[i+1:], true
}
