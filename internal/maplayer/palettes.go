package maplayer

// VendorPalette is a named 7-stop color ramp for a vendor layer, ordered
// lightest to darkest. Stop indices carry fixed meaning per category (see
// defaultStopIndex below).
type VendorPalette struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	BaseColor string    `json:"baseColor"`
	DotColor  string    `json:"dotColor"`
	Stops     [7]string `json:"stops"`
}

// SignalPalette is a named ramp pair for signal layers: five growth-trend
// stops and four expenditure-quartile stops.
type SignalPalette struct {
	ID               string    `json:"id"`
	Label            string    `json:"label"`
	GrowthStops      [5]string `json:"growthStops"`
	ExpenditureStops [4]string `json:"expenditureStops"`
	DotColor         string    `json:"dotColor"`
}

// Fallback palette ids used when a lookup misses. Lookups never fail.
const (
	DefaultVendorPaletteID = "plum"
	DefaultSignalPaletteID = "mint-coral"
)

var vendorPalettes = map[string]VendorPalette{
	"plum": {
		ID:        "plum",
		Label:     "Plum",
		BaseColor: "#7C4D8F",
		DotColor:  "#5E3A6E",
		Stops: [7]string{
			"#F3E8F7", "#E0C7EA", "#C9A0D9", "#AF77C4", "#9458AB", "#7C4D8F", "#5E3A6E",
		},
	},
	"ocean": {
		ID:        "ocean",
		Label:     "Ocean",
		BaseColor: "#2E6F95",
		DotColor:  "#1F4E6B",
		Stops: [7]string{
			"#E3F1F7", "#BCDDEC", "#8FC4DC", "#5FA8C9", "#3D8BB0", "#2E6F95", "#1F4E6B",
		},
	},
	"ember": {
		ID:        "ember",
		Label:     "Ember",
		BaseColor: "#C75133",
		DotColor:  "#94351F",
		Stops: [7]string{
			"#FBEAE4", "#F5C9B9", "#EDA288", "#E0785A", "#D3603F", "#C75133", "#94351F",
		},
	},
	"forest": {
		ID:        "forest",
		Label:     "Forest",
		BaseColor: "#3E7C4F",
		DotColor:  "#2A5738",
		Stops: [7]string{
			"#E7F3EA", "#C4E2CC", "#9CCCAA", "#6FB184", "#519766", "#3E7C4F", "#2A5738",
		},
	},
	"slate": {
		ID:        "slate",
		Label:     "Slate",
		BaseColor: "#5B6B7C",
		DotColor:  "#3E4B59",
		Stops: [7]string{
			"#ECF0F3", "#D2DAE2", "#B0BDC9", "#8B9CAC", "#6F8294", "#5B6B7C", "#3E4B59",
		},
	},
}

var signalPalettes = map[string]SignalPalette{
	"mint-coral": {
		ID:    "mint-coral",
		Label: "Mint / Coral",
		GrowthStops: [5]string{
			"#1D8A6B", "#6FC2A1", "#E8E4D8", "#F09B7E", "#D94F3D",
		},
		ExpenditureStops: [4]string{
			"#0F6E5C", "#5BAF97", "#C5DCCF", "#EFF5EE",
		},
		DotColor: "#1D8A6B",
	},
	"dusk": {
		ID:    "dusk",
		Label: "Dusk",
		GrowthStops: [5]string{
			"#3B4C9B", "#7E8CC4", "#E6E2EE", "#C98BB0", "#A8336E",
		},
		ExpenditureStops: [4]string{
			"#2B3A7A", "#6C7BB5", "#BFC6E0", "#EDEFF7",
		},
		DotColor: "#3B4C9B",
	},
	"harvest": {
		ID:    "harvest",
		Label: "Harvest",
		GrowthStops: [5]string{
			"#8A6D1D", "#C2A95F", "#EEE8D5", "#C97E4A", "#9B3D22",
		},
		ExpenditureStops: [4]string{
			"#6E520F", "#AF945B", "#DCD2B4", "#F5F1E4",
		},
		DotColor: "#8A6D1D",
	},
}

// vendorDefaultPalette assigns each vendor its canonical palette so the four
// vendors stay visually distinct before any user palette choice.
var vendorDefaultPalette = map[VendorID]string{
	VendorFullmind:  "plum",
	VendorProximity: "ocean",
	VendorElevate:   "ember",
	VendorTBT:       "forest",
}

// DefaultPaletteID returns the canonical palette id for a vendor.
func DefaultPaletteID(v VendorID) string {
	if id, ok := vendorDefaultPalette[v]; ok {
		return id
	}
	return DefaultVendorPaletteID
}

// VendorBaseColor returns the base fill color of a vendor's canonical
// palette, used for point features and legend dots.
func VendorBaseColor(v VendorID) string {
	return VendorPaletteByID(DefaultPaletteID(v)).BaseColor
}

// VendorPaletteByID returns the named vendor palette, falling back to the
// default palette for unknown ids.
func VendorPaletteByID(id string) VendorPalette {
	if p, ok := vendorPalettes[id]; ok {
		return p
	}
	return vendorPalettes[DefaultVendorPaletteID]
}

// SignalPaletteByID returns the named signal palette, falling back to the
// default palette for unknown ids.
func SignalPaletteByID(id string) SignalPalette {
	if p, ok := signalPalettes[id]; ok {
		return p
	}
	return signalPalettes[DefaultSignalPaletteID]
}

// VendorPalettes returns all vendor palettes in a stable order.
func VendorPalettes() []VendorPalette {
	return []VendorPalette{
		vendorPalettes["plum"],
		vendorPalettes["ocean"],
		vendorPalettes["ember"],
		vendorPalettes["forest"],
		vendorPalettes["slate"],
	}
}

// SignalPalettes returns all signal palettes in a stable order.
func SignalPalettes() []SignalPalette {
	return []SignalPalette{
		signalPalettes["mint-coral"],
		signalPalettes["dusk"],
		signalPalettes["harvest"],
	}
}

// Accent colors for the sub-bucketed pipeline/multi-year categories. These
// are the same for every vendor and every palette so the winback/growing/
// shrinking bands read identically across side-by-side vendor comparisons.
const (
	AccentWinback   = "#FFB347"
	AccentGrowing   = "#4ECDC4"
	AccentShrinking = "#F37167"
)

var accentColors = map[string]string{
	"winback_pipeline":     AccentWinback,
	"multi_year_growing":   AccentGrowing,
	"multi_year_shrinking": AccentShrinking,
}

// Stop-index assignments per category. This table is a fixed contract:
// saved views and the test suite assert exact color-per-category mappings.
var fullmindStopIndex = map[string]int{
	"target":                0,
	"lapsed":                1,
	"new_business_pipeline": 2,
	"new":                   3,
	"renewal_pipeline":      4,
	"expansion_pipeline":    5,
	"multi_year_flat":       6,
}

var competitorStopIndex = map[string]int{
	"churned":               0,
	"new_business_pipeline": 2,
	"new":                   4,
	"renewal_pipeline":      4,
	"expansion_pipeline":    5,
	"multi_year_flat":       5,
}

// DefaultVendorCategoryColor resolves the canonical color of a single vendor
// category under the given palette. ok is false for categories the vendor
// does not define.
func DefaultVendorCategoryColor(v VendorID, p VendorPalette, category string) (string, bool) {
	if c, ok := accentColors[category]; ok {
		return c, true
	}
	stops := competitorStopIndex
	if v == VendorFullmind {
		stops = fullmindStopIndex
	}
	i, ok := stops[category]
	if !ok {
		return "", false
	}
	return p.Stops[i], true
}

// DefaultVendorColors expands a vendor palette into the flat
// "<vendorId>:<category>" -> color map covering every category the vendor
// defines.
func DefaultVendorColors(v VendorID, p VendorPalette) map[string]string {
	layer := VendorLayer(v)
	out := make(map[string]string, len(layer.Categories))
	for _, cat := range layer.Categories {
		if c, ok := DefaultVendorCategoryColor(v, p, cat); ok {
			out[CategoryKey(layer.ID, cat)] = c
		}
	}
	return out
}

// DefaultSignalCategoryColor resolves the canonical color of a single signal
// bucket under the given palette. Buckets map stop-for-stop onto the ramp.
func DefaultSignalCategoryColor(s SignalID, p SignalPalette, category string) (string, bool) {
	layer := SignalLayer(s)
	for i, cat := range layer.Categories {
		if cat != category {
			continue
		}
		if s.IsQuartile() {
			return p.ExpenditureStops[i], true
		}
		return p.GrowthStops[i], true
	}
	return "", false
}

// DefaultSignalColors expands a signal palette into the flat
// "<signalId>:<bucket>" -> color map.
func DefaultSignalColors(s SignalID, p SignalPalette) map[string]string {
	layer := SignalLayer(s)
	out := make(map[string]string, len(layer.Categories))
	for _, cat := range layer.Categories {
		if c, ok := DefaultSignalCategoryColor(s, p, cat); ok {
			out[CategoryKey(layer.ID, cat)] = c
		}
	}
	return out
}
