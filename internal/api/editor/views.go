// Package editor contains Datastar SSE handlers for the live dashboard panel.
package editor

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/fullmind/atlas/internal/humastar"
	"github.com/fullmind/atlas/internal/service"
	"github.com/fullmind/atlas/internal/templates"
	"github.com/fullmind/atlas/internal/viewstate"
)

// ViewPanelHandler drives the saved-views panel: listing, saving the live
// state under a name, loading, and deleting.
type ViewPanelHandler struct {
	humastar.Handler
	store *viewstate.Store
	views *service.ViewService
}

func NewViewPanelHandler(store *viewstate.Store, views *service.ViewService, renderer *templates.Renderer) *ViewPanelHandler {
	return &ViewPanelHandler{
		Handler: humastar.Handler{Renderer: renderer},
		store:   store,
		views:   views,
	}
}

func (h *ViewPanelHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/editor/views", h.ListViews, huma.OperationTags("editor"))
	huma.Post(api, "/api/v1/editor/views", h.SaveView, huma.OperationTags("editor"))
	huma.Post(api, "/api/v1/editor/views/{id}/load", h.LoadView, huma.OperationTags("editor"))
	huma.Delete(api, "/api/v1/editor/views/{id}", h.DeleteView, huma.OperationTags("editor"))
}

func (h *ViewPanelHandler) ListViews(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		sse.Patch(h.renderViewList(), "#view-list")
	}), nil
}

// SaveView captures the live view state under the submitted name.
func (h *ViewPanelHandler) SaveView(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	name := signals.String("viewname")
	if name == "" {
		return nil, huma.Error400BadRequest("View name is required")
	}

	return h.Stream(func(sse humastar.SSE) {
		created, err := h.views.Create(service.SavedView{
			Name:        name,
			Description: signals.String("viewdescription"),
			IsShared:    signals.Bool("viewshared"),
			State:       h.store.Snapshot(),
		})
		if err != nil {
			sse.Error(err.Error())
			return
		}
		h.store.Capture()

		sse.Signals(map[string]any{
			"viewname":        "",
			"viewdescription": "",
			"success":         "View '" + created.Name + "' saved",
			"unsavedChanges":  false,
		})
		sse.Patch(h.renderViewList(), "#view-list")
		sse.DispatchCustomEvent("view-changed", map[string]any{
			"action": "created", "id": created.ID, "name": created.Name,
		})
	}), nil
}

type ViewIDInput struct {
	ID string `path:"id" doc:"Saved view ID"`
}

// LoadView applies a saved view into the live store and tells the client to
// restyle.
func (h *ViewPanelHandler) LoadView(ctx context.Context, input *ViewIDInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		view, ok := h.views.Get(input.ID)
		if !ok {
			sse.Error("View not found")
			return
		}
		h.store.Apply(view.State)
		h.store.Capture()

		sse.Success("View '" + view.Name + "' loaded")
		sse.Signals(map[string]any{"unsavedChanges": false})
		sse.DispatchCustomEvent("view-changed", map[string]any{
			"action": "loaded", "id": view.ID,
		})
	}), nil
}

func (h *ViewPanelHandler) DeleteView(ctx context.Context, input *ViewIDInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		if err := h.views.Delete(input.ID); err != nil {
			sse.Error(err.Error())
			return
		}
		sse.RemoveElementByID("view-" + input.ID)
		sse.Success("View deleted")
		sse.DispatchCustomEvent("view-changed", map[string]any{
			"action": "deleted", "id": input.ID,
		})
	}), nil
}

// ViewCardData feeds the view-card fragment.
type ViewCardData struct {
	ID       string
	Name     string
	IsShared bool
}

func (h *ViewPanelHandler) renderViewList() string {
	summaries := h.views.List()
	items := make([]any, len(summaries))
	for i, v := range summaries {
		items[i] = ViewCardData{ID: v.ID, Name: v.Name, IsShared: v.IsShared}
	}
	return h.RenderList("view-card", items,
		"No saved views", "Save the current view to get started")
}
