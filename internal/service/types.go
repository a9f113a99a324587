// Package service contains persistence services for saved views and palette
// preferences.
package service

import (
	"time"

	"github.com/fullmind/atlas/internal/maplayer"
	"github.com/fullmind/atlas/internal/viewstate"
)

// SavedView is a named, persisted snapshot of the full view configuration.
type SavedView struct {
	ID          string             `json:"id,omitempty" doc:"Unique view identifier"`
	Name        string             `json:"name" required:"true" minLength:"1" maxLength:"100" doc:"Display name" example:"Northeast renewals"`
	Description string             `json:"description,omitempty" doc:"Optional description"`
	IsShared    bool               `json:"isShared" doc:"Whether the view is visible to the whole team"`
	CreatedAt   time.Time          `json:"createdAt,omitempty" doc:"Creation timestamp"`
	State       viewstate.Snapshot `json:"state" doc:"Captured view state"`
}

// ViewSummary is the list-entry shape for saved views.
type ViewSummary struct {
	ID       string `json:"id" doc:"Unique view identifier"`
	Name     string `json:"name" doc:"Display name"`
	IsShared bool   `json:"isShared" doc:"Whether the view is shared"`
}

// PalettePrefs is the small auto-persisted preference blob: palette and
// opacity choices plus per-category overrides. Loaded once at startup before
// the first layer compile so a returning user sees their palettes
// immediately.
type PalettePrefs struct {
	VendorPalettes    map[maplayer.VendorID]string  `json:"vendorPalettes"`
	VendorOpacities   map[maplayer.VendorID]float64 `json:"vendorOpacities"`
	SignalPalette     string                        `json:"signalPalette"`
	CategoryColors    map[string]string             `json:"categoryColors"`
	CategoryOpacities map[string]float64            `json:"categoryOpacities"`
}
