// Package viewstate holds the single source of truth for every
// user-adjustable map view parameter and compiles nothing itself: consumers
// read snapshots and hand slices of them to the expression compiler.
package viewstate

import (
	"encoding/json"

	"github.com/fullmind/atlas/internal/maplayer"
)

// Compare view kinds.
const (
	CompareSideBySide = "side_by_side"
	CompareChanges    = "changes"
)

// FilterState holds the owner/plan/state/account-type sub-filters. Empty
// strings and empty lists mean "no filter".
type FilterState struct {
	Owner        string   `json:"owner"`
	PlanID       string   `json:"planId"`
	States       []string `json:"states"`
	AccountTypes []string `json:"accountTypes"`
}

// CompareState holds the fiscal-year comparison parameters. YearA equal to
// YearB is a display-only warning state, not rejected here.
type CompareState struct {
	Enabled bool   `json:"enabled"`
	View    string `json:"view"`
	YearA   int    `json:"yearA"`
	YearB   int    `json:"yearB"`
}

// UIState carries panel/layout flags. Not part of the hard core but captured
// in snapshots so saved views restore the full workspace.
type UIState struct {
	ConfigOpen  bool `json:"configOpen"`
	LegendOpen  bool `json:"legendOpen"`
	SummaryOpen bool `json:"summaryOpen"`
}

// Snapshot is the full serializable view state. It round-trips through
// serialize → deserialize → Apply without loss; saved views (local and
// remote) persist exactly this shape.
type Snapshot struct {
	// ActiveVendors is insertion-ordered: "first active vendor" rules
	// (point coloring) depend on this order, not on set iteration.
	ActiveVendors []maplayer.VendorID `json:"activeVendors"`

	// ActiveSignal is empty when no signal is shown. Signals are mutually
	// exclusive with each other, orthogonal to vendors.
	ActiveSignal maplayer.SignalID `json:"activeSignal,omitempty"`

	VisibleLocales     []string `json:"visibleLocales"`
	VisibleSchoolTypes []string `json:"visibleSchoolTypes"`

	Filters FilterState `json:"filters"`

	// EngagementFilters lists the UI engagement ids shown per vendor. An
	// absent or empty list means no engagement filtering for that vendor.
	EngagementFilters map[maplayer.VendorID][]string `json:"engagementFilters"`

	FiscalYear int          `json:"fiscalYear"`
	Compare    CompareState `json:"compare"`

	VendorPalettes  map[maplayer.VendorID]string  `json:"vendorPalettes"`
	VendorOpacities map[maplayer.VendorID]float64 `json:"vendorOpacities"`
	SignalPalette   string                        `json:"signalPalette"`

	// Per-category overrides keyed by "<layerId>:<category>". Keys for
	// categories a layer does not define are carried but ignored by the
	// compiler.
	CategoryColors    map[string]string  `json:"categoryColors"`
	CategoryOpacities map[string]float64 `json:"categoryOpacities"`

	UI UIState `json:"ui"`
}

// DefaultFiscalYear is the fiscal year shown before any selection.
const DefaultFiscalYear = 2026

// DefaultSnapshot returns the initial view state: the operator's own layer
// active, no signal, all locales and school types visible, canonical
// palettes and opacities.
func DefaultSnapshot() Snapshot {
	s := Snapshot{
		ActiveVendors:      []maplayer.VendorID{maplayer.VendorFullmind},
		VisibleLocales:     []string{"city", "suburb", "town", "rural"},
		VisibleSchoolTypes: []string{"public", "charter"},
		Filters:            FilterState{States: []string{}, AccountTypes: []string{}},
		EngagementFilters:  map[maplayer.VendorID][]string{},
		FiscalYear:         DefaultFiscalYear,
		Compare: CompareState{
			View:  CompareSideBySide,
			YearA: DefaultFiscalYear - 1,
			YearB: DefaultFiscalYear,
		},
		VendorPalettes:    map[maplayer.VendorID]string{},
		VendorOpacities:   map[maplayer.VendorID]float64{},
		SignalPalette:     maplayer.DefaultSignalPaletteID,
		CategoryColors:    map[string]string{},
		CategoryOpacities: map[string]float64{},
	}
	for _, v := range maplayer.Vendors() {
		s.VendorPalettes[v] = maplayer.DefaultPaletteID(v)
		s.VendorOpacities[v] = maplayer.VendorLayer(v).DefaultOpacity
	}
	return s
}

// clone returns a deep copy of the snapshot. Copies come back normalized:
// append-style copying cannot be allowed to turn an empty collection into a
// nil one, or baseline comparison would flag a change that never happened.
func (s Snapshot) clone() Snapshot {
	out := s
	out.ActiveVendors = append([]maplayer.VendorID(nil), s.ActiveVendors...)
	out.VisibleLocales = append([]string(nil), s.VisibleLocales...)
	out.VisibleSchoolTypes = append([]string(nil), s.VisibleSchoolTypes...)
	out.Filters.States = append([]string(nil), s.Filters.States...)
	out.Filters.AccountTypes = append([]string(nil), s.Filters.AccountTypes...)
	out.EngagementFilters = make(map[maplayer.VendorID][]string, len(s.EngagementFilters))
	for k, v := range s.EngagementFilters {
		out.EngagementFilters[k] = append([]string(nil), v...)
	}
	out.VendorPalettes = copyMap(s.VendorPalettes)
	out.VendorOpacities = copyMap(s.VendorOpacities)
	out.CategoryColors = copyMap(s.CategoryColors)
	out.CategoryOpacities = copyMap(s.CategoryOpacities)
	out.normalize()
	return out
}

// normalize replaces nil collections with empty ones so deep comparison and
// serialization treat "absent" and "empty" identically.
func (s *Snapshot) normalize() {
	if s.ActiveVendors == nil {
		s.ActiveVendors = []maplayer.VendorID{}
	}
	if s.VisibleLocales == nil {
		s.VisibleLocales = []string{}
	}
	if s.VisibleSchoolTypes == nil {
		s.VisibleSchoolTypes = []string{}
	}
	if s.Filters.States == nil {
		s.Filters.States = []string{}
	}
	if s.Filters.AccountTypes == nil {
		s.Filters.AccountTypes = []string{}
	}
	if s.EngagementFilters == nil {
		s.EngagementFilters = map[maplayer.VendorID][]string{}
	}
	for k, v := range s.EngagementFilters {
		if v == nil {
			s.EngagementFilters[k] = []string{}
		}
	}
	if s.VendorPalettes == nil {
		s.VendorPalettes = map[maplayer.VendorID]string{}
	}
	if s.VendorOpacities == nil {
		s.VendorOpacities = map[maplayer.VendorID]float64{}
	}
	if s.CategoryColors == nil {
		s.CategoryColors = map[string]string{}
	}
	if s.CategoryOpacities == nil {
		s.CategoryOpacities = map[string]float64{}
	}
}

// DecodeSnapshotInto unmarshals persisted snapshot JSON over base, so fields
// missing from an older saved shape keep base's values instead of zeroing.
// Malformed JSON returns an error and leaves base usable.
func DecodeSnapshotInto(data []byte, base Snapshot) (Snapshot, error) {
	out := base.clone()
	if err := json.Unmarshal(data, &out); err != nil {
		return base, err
	}
	out.normalize()
	return out, nil
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
