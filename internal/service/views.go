package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ViewService manages saved view configurations. Views are held as an
// ordered list and persisted as one JSON file under the data directory; a
// missing or corrupt file loads as an empty list, never an error.
type ViewService struct {
	dataDir string
	views   []SavedView
	mu      sync.RWMutex
}

// NewViewService creates a new view service.
func NewViewService(dataDir string) *ViewService {
	s := &ViewService{dataDir: dataDir}
	s.loadFromDisk()
	return s
}

// List returns summaries of all saved views in save order.
func (s *ViewService) List() []ViewSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ViewSummary, len(s.views))
	for i, v := range s.views {
		out[i] = ViewSummary{ID: v.ID, Name: v.Name, IsShared: v.IsShared}
	}
	return out
}

// Get returns a saved view with its full state blob.
func (s *ViewService) Get(id string) (SavedView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, v := range s.views {
		if v.ID == id {
			return v, true
		}
	}
	return SavedView{}, false
}

// Create appends a new saved view and persists the list.
func (s *ViewService) Create(view SavedView) (SavedView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if view.ID == "" {
		view.ID = uuid.NewString()
	}
	for _, v := range s.views {
		if v.ID == view.ID {
			return SavedView{}, fmt.Errorf("view with ID %q already exists", view.ID)
		}
	}
	if view.CreatedAt.IsZero() {
		view.CreatedAt = time.Now().UTC()
	}

	s.views = append(s.views, view)
	if err := s.saveToDisk(); err != nil {
		s.views = s.views[:len(s.views)-1]
		return SavedView{}, err
	}
	return view, nil
}

// Delete removes a saved view by ID.
func (s *ViewService) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, v := range s.views {
		if v.ID == id {
			s.views = append(s.views[:i], s.views[i+1:]...)
			return s.saveToDisk()
		}
	}
	return fmt.Errorf("view %q not found", id)
}

// configFile returns the path to the saved views file.
func (s *ViewService) configFile() string {
	return filepath.Join(s.dataDir, "map_views.json")
}

// loadFromDisk loads saved views from disk.
func (s *ViewService) loadFromDisk() {
	data, err := os.ReadFile(s.configFile())
	if err != nil {
		return // File doesn't exist yet, start empty
	}

	var views []SavedView
	if err := json.Unmarshal(data, &views); err != nil {
		return // Invalid JSON, start empty
	}
	s.views = views
}

// saveToDisk persists the whole view list atomically from the caller's
// perspective.
func (s *ViewService) saveToDisk() error {
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s.views, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.configFile(), data, 0644)
}
