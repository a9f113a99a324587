package viewstate

import (
	"reflect"
	"sync"

	"github.com/fullmind/atlas/internal/maplayer"
)

// Event names the state axis a mutation touched. Subscribers receive events
// in the order the mutations were issued.
type Event struct {
	Field string
}

// Field names carried by change events.
const (
	FieldVendors     = "vendors"
	FieldSignal      = "signal"
	FieldLocales     = "locales"
	FieldSchoolTypes = "schoolTypes"
	FieldFilters     = "filters"
	FieldEngagement  = "engagement"
	FieldFiscalYear  = "fiscalYear"
	FieldCompare     = "compare"
	FieldPalettes    = "palettes"
	FieldOverrides   = "overrides"
	FieldUI          = "ui"
	FieldSnapshot    = "snapshot"
)

// PaletteFields lists the event fields the palette-preference persister
// watches.
var PaletteFields = map[string]bool{
	FieldPalettes:  true,
	FieldOverrides: true,
}

// Store is the single mutable container for all view parameters. All
// mutation goes through named actions; reads return copies. Independent
// axes stay orthogonal: toggling a vendor never resets its engagement
// filters, palette choice, or overrides.
type Store struct {
	mu       sync.RWMutex
	cur      Snapshot
	baseline Snapshot

	subMu sync.RWMutex
	subs  map[chan Event]struct{}
}

// NewStore creates a store holding the default view state, with the baseline
// captured so a fresh store reports no unsaved changes.
func NewStore() *Store {
	s := DefaultSnapshot()
	return &Store{
		cur:      s,
		baseline: s.clone(),
		subs:     make(map[chan Event]struct{}),
	}
}

// Subscribe returns a buffered channel receiving one event per mutation.
// Slow subscribers are skipped rather than blocking mutators.
func (st *Store) Subscribe() chan Event {
	ch := make(chan Event, 32)
	st.subMu.Lock()
	st.subs[ch] = struct{}{}
	st.subMu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (st *Store) Unsubscribe(ch chan Event) {
	st.subMu.Lock()
	delete(st.subs, ch)
	st.subMu.Unlock()
	close(ch)
}

func (st *Store) publish(field string) {
	st.subMu.RLock()
	defer st.subMu.RUnlock()
	for ch := range st.subs {
		select {
		case ch <- Event{Field: field}:
		default:
		}
	}
}

// mutate runs fn under the write lock and publishes the field event after
// the lock is released, preserving issue order for same-goroutine calls.
func (st *Store) mutate(field string, fn func(*Snapshot)) {
	st.mu.Lock()
	fn(&st.cur)
	st.mu.Unlock()
	st.publish(field)
}

// --- vendors -------------------------------------------------------------

// ToggleVendor activates or deactivates a vendor layer, preserving the
// insertion order of the active sequence.
func (st *Store) ToggleVendor(v maplayer.VendorID) {
	st.mutate(FieldVendors, func(s *Snapshot) {
		for i, a := range s.ActiveVendors {
			if a == v {
				s.ActiveVendors = append(s.ActiveVendors[:i], s.ActiveVendors[i+1:]...)
				return
			}
		}
		s.ActiveVendors = append(s.ActiveVendors, v)
	})
}

// SetVendorActive forces a vendor's active state.
func (st *Store) SetVendorActive(v maplayer.VendorID, active bool) {
	if st.IsVendorActive(v) != active {
		st.ToggleVendor(v)
	}
}

// IsVendorActive reports whether a vendor layer is shown.
func (st *Store) IsVendorActive(v maplayer.VendorID) bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	for _, a := range st.cur.ActiveVendors {
		if a == v {
			return true
		}
	}
	return false
}

// ActiveVendors returns the insertion-ordered active vendor sequence.
func (st *Store) ActiveVendors() []maplayer.VendorID {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return append([]maplayer.VendorID(nil), st.cur.ActiveVendors...)
}

// --- signal --------------------------------------------------------------

// SetSignal activates a signal, clearing any previously active one. Setting
// the already-active signal deactivates it (toggle-to-off).
func (st *Store) SetSignal(sig maplayer.SignalID) {
	st.mutate(FieldSignal, func(s *Snapshot) {
		if s.ActiveSignal == sig {
			s.ActiveSignal = ""
			return
		}
		s.ActiveSignal = sig
	})
}

// ClearSignal deactivates any active signal.
func (st *Store) ClearSignal() {
	st.mutate(FieldSignal, func(s *Snapshot) { s.ActiveSignal = "" })
}

// ActiveSignal returns the active signal id, empty if none.
func (st *Store) ActiveSignal() maplayer.SignalID {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.cur.ActiveSignal
}

// --- locales and school types ---------------------------------------------

// ToggleLocale flips visibility of one locale.
func (st *Store) ToggleLocale(locale string) {
	st.mutate(FieldLocales, func(s *Snapshot) {
		s.VisibleLocales = toggleMember(s.VisibleLocales, locale)
	})
}

// SetLocales replaces the visible locale set.
func (st *Store) SetLocales(locales []string) {
	st.mutate(FieldLocales, func(s *Snapshot) {
		s.VisibleLocales = append([]string{}, locales...)
	})
}

// ToggleSchoolType flips visibility of one school type.
func (st *Store) ToggleSchoolType(kind string) {
	st.mutate(FieldSchoolTypes, func(s *Snapshot) {
		s.VisibleSchoolTypes = toggleMember(s.VisibleSchoolTypes, kind)
	})
}

// SetSchoolTypes replaces the visible school-type set.
func (st *Store) SetSchoolTypes(kinds []string) {
	st.mutate(FieldSchoolTypes, func(s *Snapshot) {
		s.VisibleSchoolTypes = append([]string{}, kinds...)
	})
}

// --- filters ---------------------------------------------------------------

// SetOwnerFilter sets or clears (empty string) the sales-executive filter.
func (st *Store) SetOwnerFilter(owner string) {
	st.mutate(FieldFilters, func(s *Snapshot) { s.Filters.Owner = owner })
}

// SetPlanFilter sets or clears (empty string) the territory-plan filter.
func (st *Store) SetPlanFilter(planID string) {
	st.mutate(FieldFilters, func(s *Snapshot) { s.Filters.PlanID = planID })
}

// ToggleStateFilter flips one state abbreviation in the multi-select.
func (st *Store) ToggleStateFilter(abbrev string) {
	st.mutate(FieldFilters, func(s *Snapshot) {
		s.Filters.States = toggleMember(s.Filters.States, abbrev)
	})
}

// SetStateFilters replaces the state multi-select.
func (st *Store) SetStateFilters(abbrevs []string) {
	st.mutate(FieldFilters, func(s *Snapshot) {
		s.Filters.States = append([]string{}, abbrevs...)
	})
}

// SetAccountTypes replaces the account-type multi-select.
func (st *Store) SetAccountTypes(kinds []string) {
	st.mutate(FieldFilters, func(s *Snapshot) {
		s.Filters.AccountTypes = append([]string{}, kinds...)
	})
}

// Filters returns a copy of the current filter state.
func (st *Store) Filters() FilterState {
	st.mu.RLock()
	defer st.mu.RUnlock()
	f := st.cur.Filters
	f.States = append([]string(nil), f.States...)
	f.AccountTypes = append([]string(nil), f.AccountTypes...)
	return f
}

// --- engagement filters -----------------------------------------------------

// ToggleEngagementFilter flips one engagement id in a vendor's filter list.
// The list survives the vendor being deactivated.
func (st *Store) ToggleEngagementFilter(v maplayer.VendorID, engagement string) {
	st.mutate(FieldEngagement, func(s *Snapshot) {
		s.EngagementFilters[v] = toggleMember(s.EngagementFilters[v], engagement)
	})
}

// SetEngagementFilters replaces a vendor's engagement filter list.
func (st *Store) SetEngagementFilters(v maplayer.VendorID, engagements []string) {
	st.mutate(FieldEngagement, func(s *Snapshot) {
		s.EngagementFilters[v] = append([]string{}, engagements...)
	})
}

// EngagementFilters returns a copy of a vendor's engagement filter list.
func (st *Store) EngagementFilters(v maplayer.VendorID) []string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return append([]string(nil), st.cur.EngagementFilters[v]...)
}

// EngagementCategories returns the raw tile category values a vendor's
// engagement filter selects, after alias mapping.
func (st *Store) EngagementCategories(v maplayer.VendorID) []string {
	return maplayer.EngagementToCategories(st.EngagementFilters(v))
}

// --- fiscal year and comparison ---------------------------------------------

// SetFiscalYear selects the fiscal year being viewed.
func (st *Store) SetFiscalYear(year int) {
	st.mutate(FieldFiscalYear, func(s *Snapshot) { s.FiscalYear = year })
}

// FiscalYear returns the selected fiscal year.
func (st *Store) FiscalYear() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.cur.FiscalYear
}

// SetCompareEnabled enters or exits comparison mode.
func (st *Store) SetCompareEnabled(enabled bool) {
	st.mutate(FieldCompare, func(s *Snapshot) { s.Compare.Enabled = enabled })
}

// SetCompareView selects side-by-side or changes-diff rendering.
func (st *Store) SetCompareView(view string) {
	st.mutate(FieldCompare, func(s *Snapshot) { s.Compare.View = view })
}

// SetCompareYears sets the two fiscal years being compared. Equal years are
// accepted; the UI surfaces that as a warning, not the store.
func (st *Store) SetCompareYears(a, b int) {
	st.mutate(FieldCompare, func(s *Snapshot) {
		s.Compare.YearA, s.Compare.YearB = a, b
	})
}

// Compare returns the comparison-mode parameters.
func (st *Store) Compare() CompareState {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.cur.Compare
}

// --- palettes, opacities, overrides ------------------------------------------

// SetVendorPalette selects a vendor's palette by id.
func (st *Store) SetVendorPalette(v maplayer.VendorID, paletteID string) {
	st.mutate(FieldPalettes, func(s *Snapshot) { s.VendorPalettes[v] = paletteID })
}

// VendorPalette returns a vendor's selected palette, resolved with fallback.
func (st *Store) VendorPalette(v maplayer.VendorID) maplayer.VendorPalette {
	st.mu.RLock()
	id, ok := st.cur.VendorPalettes[v]
	st.mu.RUnlock()
	if !ok {
		id = maplayer.DefaultPaletteID(v)
	}
	return maplayer.VendorPaletteByID(id)
}

// SetVendorOpacity sets a vendor layer's base opacity.
func (st *Store) SetVendorOpacity(v maplayer.VendorID, opacity float64) {
	st.mutate(FieldPalettes, func(s *Snapshot) { s.VendorOpacities[v] = opacity })
}

// VendorOpacity returns a vendor layer's base opacity, defaulting per layer.
func (st *Store) VendorOpacity(v maplayer.VendorID) float64 {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if o, ok := st.cur.VendorOpacities[v]; ok {
		return o
	}
	return maplayer.VendorLayer(v).DefaultOpacity
}

// SetSignalPalette selects the signal palette by id.
func (st *Store) SetSignalPalette(paletteID string) {
	st.mutate(FieldPalettes, func(s *Snapshot) { s.SignalPalette = paletteID })
}

// SignalPalette returns the selected signal palette, resolved with fallback.
func (st *Store) SignalPalette() maplayer.SignalPalette {
	st.mu.RLock()
	id := st.cur.SignalPalette
	st.mu.RUnlock()
	return maplayer.SignalPaletteByID(id)
}

// SetCategoryColor sets a per-category color override keyed by
// "<layerId>:<category>". An empty color clears the override.
func (st *Store) SetCategoryColor(key, color string) {
	st.mutate(FieldOverrides, func(s *Snapshot) {
		if color == "" {
			delete(s.CategoryColors, key)
			return
		}
		s.CategoryColors[key] = color
	})
}

// SetCategoryOpacity sets a per-category opacity override.
func (st *Store) SetCategoryOpacity(key string, opacity float64) {
	st.mutate(FieldOverrides, func(s *Snapshot) { s.CategoryOpacities[key] = opacity })
}

// ClearCategoryOpacity removes a per-category opacity override.
func (st *Store) ClearCategoryOpacity(key string) {
	st.mutate(FieldOverrides, func(s *Snapshot) { delete(s.CategoryOpacities, key) })
}

// CategoryColors returns a copy of the color override map.
func (st *Store) CategoryColors() map[string]string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return copyMap(st.cur.CategoryColors)
}

// CategoryOpacities returns a copy of the opacity override map.
func (st *Store) CategoryOpacities() map[string]float64 {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return copyMap(st.cur.CategoryOpacities)
}

// InitPalettePreferences bulk-applies a persisted preferences blob. Called
// once at startup before any layer is compiled; zero-valued fields leave
// defaults in place.
func (st *Store) InitPalettePreferences(
	vendorPalettes map[maplayer.VendorID]string,
	vendorOpacities map[maplayer.VendorID]float64,
	signalPalette string,
	categoryColors map[string]string,
	categoryOpacities map[string]float64,
) {
	st.mutate(FieldPalettes, func(s *Snapshot) {
		for v, id := range vendorPalettes {
			s.VendorPalettes[v] = id
		}
		for v, o := range vendorOpacities {
			s.VendorOpacities[v] = o
		}
		if signalPalette != "" {
			s.SignalPalette = signalPalette
		}
		for k, c := range categoryColors {
			s.CategoryColors[k] = c
		}
		for k, o := range categoryOpacities {
			s.CategoryOpacities[k] = o
		}
	})
}

// --- UI flags ----------------------------------------------------------------

// SetUI replaces the panel/layout flags.
func (st *Store) SetUI(ui UIState) {
	st.mutate(FieldUI, func(s *Snapshot) { s.UI = ui })
}

// --- snapshots, baseline, unsaved changes -------------------------------------

// Snapshot returns a deep copy of the full current state.
func (st *Store) Snapshot() Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.cur.clone()
}

// Apply restores every field from a snapshot. Collections arrive normalized
// so a legacy snapshot with absent fields never leaves nil maps behind.
func (st *Store) Apply(s Snapshot) {
	c := s.clone()
	st.mu.Lock()
	st.cur = c
	st.mu.Unlock()
	st.publish(FieldSnapshot)
}

// Capture stores the current state as the last-saved baseline for
// unsaved-changes detection. Called on every explicit save and load.
func (st *Store) Capture() {
	st.mu.Lock()
	st.baseline = st.cur.clone()
	st.mu.Unlock()
}

// HasUnsavedChanges deep-compares live state against the last captured
// baseline, field by field. Both sides are compared as normalized clones so
// a mutation that set a collection to nil never differs from empty.
func (st *Store) HasUnsavedChanges() bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return !reflect.DeepEqual(st.cur.clone(), st.baseline.clone())
}

func toggleMember(list []string, member string) []string {
	for i, m := range list {
		if m == member {
			return append(list[:i], list[i+1:]...)
		}
	}
	return append(list, member)
}
