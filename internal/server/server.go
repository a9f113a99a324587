// Package server assembles the atlas HTTP server: Huma REST API, Datastar
// SSE panel routes, static assets, and tile passthrough.
package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/fullmind/atlas/internal/api"
	"github.com/fullmind/atlas/internal/api/editor"
	"github.com/fullmind/atlas/internal/db"
	"github.com/fullmind/atlas/internal/service"
	"github.com/fullmind/atlas/internal/summary"
	"github.com/fullmind/atlas/internal/templates"
	"github.com/fullmind/atlas/internal/viewstate"
)

// Config holds the server configuration.
type Config struct {
	Host    string
	Port    string
	DataDir string
	WebDir  string // Path to web/ directory for static files and templates
}

// Server is the atlas HTTP server.
type Server struct {
	config    Config
	mux       *http.ServeMux
	humaAPI   huma.API
	db        *sql.DB
	store     *viewstate.Store
	services  *api.Services
	renderer  *templates.Renderer
	stopPrefs func()
}

// New creates a new atlas server.
func New(cfg Config) *Server {
	mux := http.NewServeMux()

	// Huma API with the humago (pure stdlib) adapter
	humaConfig := huma.DefaultConfig("atlas API", "1.0.0")
	humaConfig.Info.Description = "Territory dashboard API for map view state, compiled layer styles, saved views, and summary rollups."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, api.LinkTransformer())
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}

	humaAPI := humago.New(mux, humaConfig)

	store := viewstate.NewStore()
	views := service.NewViewService(cfg.DataDir)
	prefs := service.NewPrefsService(cfg.DataDir)

	services := &api.Services{
		Store: store,
		Views: views,
		Prefs: prefs,
	}

	// Template renderer for the SSE panel handlers
	var renderer *templates.Renderer
	if cfg.WebDir != "" {
		fragmentsDir := filepath.Join(cfg.WebDir, "templates", "fragments")
		if r, err := templates.New(fragmentsDir); err == nil {
			renderer = r
			fmt.Printf("Loaded fragment templates from %s\n", fragmentsDir)
		}
	}

	s := &Server{
		config:   cfg,
		mux:      mux,
		humaAPI:  humaAPI,
		store:    store,
		services: services,
		renderer: renderer,
	}

	// DuckDB is optional; the dashboard runs without summaries when absent.
	conn, err := db.Get(db.Config{
		DataDir: cfg.DataDir,
		DBName:  "atlas",
	})
	if err == nil {
		s.db = conn
		services.DB = conn
		services.Summary = summary.NewAggregator(conn)
	}

	// Restore palette preferences into the store, then persist changes as
	// they happen.
	prefs.ApplyTo(store)
	store.Capture()
	s.stopPrefs = prefs.Watch(store)

	s.routes()
	return s
}

// OpenAPI exposes the generated spec for the export subcommand.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Close closes server resources.
func (s *Server) Close() error {
	if s.stopPrefs != nil {
		s.stopPrefs()
	}
	return db.Close()
}

func (s *Server) routes() {
	// Huma REST API routes (OpenAPI-documented JSON endpoints)
	api.RegisterRoutes(s.humaAPI, s.services)

	// Datastar SSE panel routes
	if s.renderer != nil {
		editor.NewLegendHandler(s.store, s.renderer).RegisterRoutes(s.humaAPI)
		editor.NewViewPanelHandler(s.store, s.services.Views, s.renderer).RegisterRoutes(s.humaAPI)
		editor.NewEventHandler(s.store, s.services.Views, s.renderer).RegisterRoutes(s.humaAPI)
	}

	// Static files and prebuilt vector tiles
	if s.config.WebDir != "" {
		staticDir := filepath.Join(s.config.WebDir, "static")
		s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}
	tilesDir := filepath.Join(s.config.DataDir, "tiles")
	s.mux.Handle("/tiles/", http.StripPrefix("/tiles/", s.handleTiles(tilesDir)))

	// Page routes
	s.mux.HandleFunc("/dashboard", s.handleDashboard)
	s.mux.HandleFunc("/", s.handleRoot)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": "atlas",
		"status":  "running",
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	templatePath := filepath.Join(s.config.WebDir, "templates", "dashboard.html")
	http.ServeFile(w, r, templatePath)
}

// handleTiles serves prebuilt PMTiles/MVT files with the CORS and range
// headers map clients need.
func (s *Server) handleTiles(tilesDir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Range")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range, Accept-Ranges")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		http.FileServer(http.Dir(tilesDir)).ServeHTTP(w, r)
	})
}
