package service

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/fullmind/atlas/internal/viewstate"
)

// PrefsService persists the palette-preference blob. Reads degrade to empty
// preferences; writes are fire-and-forget from the store's point of view and
// never propagate to the rendering path.
type PrefsService struct {
	dataDir string
	mu      sync.Mutex
	done    chan struct{}
}

// NewPrefsService creates a new preference service.
func NewPrefsService(dataDir string) *PrefsService {
	return &PrefsService{dataDir: dataDir, done: make(chan struct{})}
}

func (s *PrefsService) configFile() string {
	return filepath.Join(s.dataDir, "palette_prefs.json")
}

// Load reads the persisted preferences. Missing or corrupt data returns the
// zero value.
func (s *PrefsService) Load() PalettePrefs {
	var prefs PalettePrefs
	data, err := os.ReadFile(s.configFile())
	if err != nil {
		return prefs
	}
	if err := json.Unmarshal(data, &prefs); err != nil {
		return PalettePrefs{}
	}
	return prefs
}

// Save persists the preferences blob.
func (s *PrefsService) Save(prefs PalettePrefs) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.configFile(), data, 0644)
}

// ApplyTo bulk-initializes a store's palette fields from the persisted blob.
// Call once at startup, before the first layer compile.
func (s *PrefsService) ApplyTo(store *viewstate.Store) {
	p := s.Load()
	store.InitPalettePreferences(
		p.VendorPalettes,
		p.VendorOpacities,
		p.SignalPalette,
		p.CategoryColors,
		p.CategoryOpacities,
	)
}

// prefsFromStore captures the preference-relevant slice of store state.
func prefsFromStore(store *viewstate.Store) PalettePrefs {
	snap := store.Snapshot()
	return PalettePrefs{
		VendorPalettes:    snap.VendorPalettes,
		VendorOpacities:   snap.VendorOpacities,
		SignalPalette:     snap.SignalPalette,
		CategoryColors:    snap.CategoryColors,
		CategoryOpacities: snap.CategoryOpacities,
	}
}

// Watch subscribes to store change events and re-persists the preference
// blob whenever a palette or override field changes. Write failures are
// dropped; persistence must never crash a mutator. Returns a stop function
// that detaches the observer.
func (s *PrefsService) Watch(store *viewstate.Store) (stop func()) {
	ch := store.Subscribe()

	go func() {
		for {
			select {
			case <-s.done:
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if !viewstate.PaletteFields[ev.Field] && ev.Field != viewstate.FieldSnapshot {
					continue
				}
				if err := s.Save(prefsFromStore(store)); err == nil {
					DefaultBus.Publish(Event{Resource: ResourcePrefs, Action: "saved"})
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(s.done)
			store.Unsubscribe(ch)
		})
	}
}
