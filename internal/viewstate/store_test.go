package viewstate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fullmind/atlas/internal/maplayer"
)

func TestVendorToggling(t *testing.T) {
	t.Run("toggle preserves insertion order", func(t *testing.T) {
		st := NewStore()
		st.ToggleVendor(maplayer.VendorFullmind) // default-on, so off
		st.ToggleVendor(maplayer.VendorProximity)
		st.ToggleVendor(maplayer.VendorFullmind)
		st.ToggleVendor(maplayer.VendorTBT)

		assert.Equal(t,
			[]maplayer.VendorID{maplayer.VendorProximity, maplayer.VendorFullmind, maplayer.VendorTBT},
			st.ActiveVendors())
	})

	t.Run("removing from the middle keeps the rest ordered", func(t *testing.T) {
		st := NewStore()
		st.ToggleVendor(maplayer.VendorProximity)
		st.ToggleVendor(maplayer.VendorTBT)
		require.Equal(t,
			[]maplayer.VendorID{maplayer.VendorFullmind, maplayer.VendorProximity, maplayer.VendorTBT},
			st.ActiveVendors())

		st.ToggleVendor(maplayer.VendorProximity)
		assert.Equal(t,
			[]maplayer.VendorID{maplayer.VendorFullmind, maplayer.VendorTBT},
			st.ActiveVendors())
	})

	t.Run("SetVendorActive is idempotent", func(t *testing.T) {
		st := NewStore()
		st.SetVendorActive(maplayer.VendorProximity, true)
		st.SetVendorActive(maplayer.VendorProximity, true)
		assert.Equal(t,
			[]maplayer.VendorID{maplayer.VendorFullmind, maplayer.VendorProximity},
			st.ActiveVendors())

		st.SetVendorActive(maplayer.VendorElevate, false)
		assert.False(t, st.IsVendorActive(maplayer.VendorElevate))
	})
}

func TestSignalSelection(t *testing.T) {
	st := NewStore()
	assert.Empty(t, st.ActiveSignal())

	st.SetSignal(maplayer.SignalEnrollment)
	assert.Equal(t, maplayer.SignalEnrollment, st.ActiveSignal())

	// selecting another replaces, not stacks
	st.SetSignal(maplayer.SignalExpenditure)
	assert.Equal(t, maplayer.SignalExpenditure, st.ActiveSignal())

	// selecting the active one toggles it off
	st.SetSignal(maplayer.SignalExpenditure)
	assert.Empty(t, st.ActiveSignal())

	t.Run("signals are orthogonal to vendors", func(t *testing.T) {
		st := NewStore()
		st.SetSignal(maplayer.SignalELL)
		st.ToggleVendor(maplayer.VendorProximity)
		assert.Equal(t, maplayer.SignalELL, st.ActiveSignal())
		st.SetSignal(maplayer.SignalELL)
		assert.Equal(t,
			[]maplayer.VendorID{maplayer.VendorFullmind, maplayer.VendorProximity},
			st.ActiveVendors())
	})
}

func TestEngagementFilters(t *testing.T) {
	st := NewStore()
	st.SetEngagementFilters(maplayer.VendorFullmind, []string{"first_year", "lapsed"})

	assert.Equal(t, []string{"first_year", "lapsed"},
		st.EngagementFilters(maplayer.VendorFullmind))
	assert.Equal(t, []string{"new", "lapsed"},
		st.EngagementCategories(maplayer.VendorFullmind))

	st.ToggleEngagementFilter(maplayer.VendorFullmind, "lapsed")
	assert.Equal(t, []string{"first_year"}, st.EngagementFilters(maplayer.VendorFullmind))
}

func TestPalettePreferences(t *testing.T) {
	t.Run("defaults are the canonical palettes", func(t *testing.T) {
		st := NewStore()
		assert.Equal(t, "plum", st.VendorPalette(maplayer.VendorFullmind).ID)
		assert.Equal(t, "ember", st.VendorPalette(maplayer.VendorElevate).ID)
		assert.Equal(t, "mint-coral", st.SignalPalette().ID)
		assert.Equal(t, 0.8, st.VendorOpacity(maplayer.VendorElevate))
	})

	t.Run("unknown palette ids resolve to the fallback", func(t *testing.T) {
		st := NewStore()
		st.SetVendorPalette(maplayer.VendorFullmind, "bogus")
		assert.Equal(t, "plum", st.VendorPalette(maplayer.VendorFullmind).ID)
		st.SetSignalPalette("bogus")
		assert.Equal(t, "mint-coral", st.SignalPalette().ID)
	})

	t.Run("category overrides set and clear", func(t *testing.T) {
		st := NewStore()
		st.SetCategoryColor("fullmind:new", "#123456")
		assert.Equal(t, map[string]string{"fullmind:new": "#123456"}, st.CategoryColors())

		st.SetCategoryColor("fullmind:new", "")
		assert.Empty(t, st.CategoryColors())

		st.SetCategoryOpacity("fullmind:new", 0.3)
		assert.Equal(t, map[string]float64{"fullmind:new": 0.3}, st.CategoryOpacities())
		st.ClearCategoryOpacity("fullmind:new")
		assert.Empty(t, st.CategoryOpacities())
	})
}

func TestSnapshotRoundTrip(t *testing.T) {
	st := NewStore()
	st.ToggleVendor(maplayer.VendorProximity)
	st.SetSignal(maplayer.SignalEnrollment)
	st.SetOwnerFilter("rivera")
	st.SetStateFilters([]string{"TX", "OK"})
	st.SetEngagementFilters(maplayer.VendorFullmind, []string{"first_year"})
	st.SetFiscalYear(2027)
	st.SetCompareEnabled(true)
	st.SetCompareYears(2025, 2027)
	st.SetVendorPalette(maplayer.VendorProximity, "slate")
	st.SetCategoryColor("fullmind:new", "#123456")
	st.SetCategoryOpacity("proximity:churned", 0.2)

	data, err := json.Marshal(st.Snapshot())
	require.NoError(t, err)

	restored, err := DecodeSnapshotInto(data, DefaultSnapshot())
	require.NoError(t, err)

	st2 := NewStore()
	st2.Apply(restored)
	assert.Equal(t, st.Snapshot(), st2.Snapshot())
}

func TestDecodeSnapshotInto(t *testing.T) {
	t.Run("missing fields keep base values", func(t *testing.T) {
		out, err := DecodeSnapshotInto([]byte(`{"fiscalYear":2024}`), DefaultSnapshot())
		require.NoError(t, err)
		assert.Equal(t, 2024, out.FiscalYear)
		assert.Equal(t, []maplayer.VendorID{maplayer.VendorFullmind}, out.ActiveVendors)
		assert.Equal(t, "mint-coral", out.SignalPalette)
	})

	t.Run("malformed JSON returns base", func(t *testing.T) {
		base := DefaultSnapshot()
		out, err := DecodeSnapshotInto([]byte(`{nope`), base)
		assert.Error(t, err)
		assert.Equal(t, base.FiscalYear, out.FiscalYear)
	})

	t.Run("unknown fields are ignored", func(t *testing.T) {
		_, err := DecodeSnapshotInto([]byte(`{"legacyField":true,"fiscalYear":2025}`), DefaultSnapshot())
		assert.NoError(t, err)
	})
}

func TestUnsavedChanges(t *testing.T) {
	st := NewStore()
	assert.False(t, st.HasUnsavedChanges())

	st.ToggleVendor(maplayer.VendorProximity)
	assert.True(t, st.HasUnsavedChanges())

	t.Run("capture resets the baseline", func(t *testing.T) {
		st.Capture()
		assert.False(t, st.HasUnsavedChanges())
	})

	t.Run("capture is idempotent with empty collections", func(t *testing.T) {
		st := NewStore()
		st.Capture()
		assert.False(t, st.HasUnsavedChanges())
		st.Capture()
		assert.False(t, st.HasUnsavedChanges())
	})

	t.Run("nil and empty collections compare equal", func(t *testing.T) {
		st := NewStore()
		st.Capture()
		st.SetStateFilters(nil)
		assert.False(t, st.HasUnsavedChanges())
		st.SetStateFilters([]string{})
		assert.False(t, st.HasUnsavedChanges())
	})

	t.Run("reverting to the baseline clears the flag", func(t *testing.T) {
		st.SetFiscalYear(2030)
		assert.True(t, st.HasUnsavedChanges())
		st.SetFiscalYear(DefaultFiscalYear)
		assert.False(t, st.HasUnsavedChanges())
	})

	t.Run("apply replaces state without capturing", func(t *testing.T) {
		st := NewStore()
		s := DefaultSnapshot()
		s.FiscalYear = 2031
		st.Apply(s)
		assert.True(t, st.HasUnsavedChanges())
		assert.Equal(t, 2031, st.FiscalYear())
	})
}

func TestSubscribe(t *testing.T) {
	st := NewStore()
	ch := st.Subscribe()
	defer st.Unsubscribe(ch)

	st.ToggleVendor(maplayer.VendorProximity)

	select {
	case ev := <-ch:
		assert.Equal(t, FieldVendors, ev.Field)
	default:
		t.Fatal("expected a buffered event")
	}

	t.Run("snapshot application publishes a single event", func(t *testing.T) {
		st.Apply(DefaultSnapshot())
		select {
		case ev := <-ch:
			assert.Equal(t, FieldSnapshot, ev.Field)
		default:
			t.Fatal("expected a snapshot event")
		}
	})
}

func TestSnapshotIsolation(t *testing.T) {
	st := NewStore()
	snap := st.Snapshot()
	snap.CategoryColors["fullmind:new"] = "#mutated"
	snap.ActiveVendors = append(snap.ActiveVendors, maplayer.VendorTBT)

	assert.Empty(t, st.CategoryColors())
	assert.Equal(t, []maplayer.VendorID{maplayer.VendorFullmind}, st.ActiveVendors())
}
