// Package api defines the Huma API routes and handlers.
package api

import (
	"context"
	"database/sql"

	"github.com/danielgtaylor/huma/v2"

	"github.com/fullmind/atlas/internal/service"
	"github.com/fullmind/atlas/internal/summary"
	"github.com/fullmind/atlas/internal/viewstate"
)

// Services holds the dependencies API handlers talk to.
type Services struct {
	Store   *viewstate.Store
	Views   *service.ViewService
	Prefs   *service.PrefsService
	Summary *summary.Aggregator
	DB      *sql.DB
}

// RegisterRoutes registers every REST route with Huma. Register* methods on
// the handler are auto-discovered.
func RegisterRoutes(api huma.API, svc *Services) {
	huma.AutoRegister(api, NewAPIHandler(svc))
	if svc.DB != nil {
		NewDBHandler(svc.DB).RegisterRoutes(api)
	}
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

type MessageBody struct {
	Message string `json:"message" doc:"Result message"`
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}

type InfoBody struct {
	Name     string   `json:"name" doc:"Service name"`
	Version  string   `json:"version" doc:"Service version"`
	DB       bool     `json:"db" doc:"Whether the analytics database is available"`
	Features []string `json:"features" doc:"Available features"`
}

func (h *APIHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	return &struct{ Body InfoBody }{Body: InfoBody{
		Name:    "atlas",
		Version: "0.1.0",
		DB:      h.svc != nil && h.svc.DB != nil,
		Features: []string{
			"view-state",
			"style-compiler",
			"map-views",
			"summary",
			"duckdb",
		},
	}}, nil
}
