package editor

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/fullmind/atlas/internal/humastar"
	"github.com/fullmind/atlas/internal/service"
	"github.com/fullmind/atlas/internal/templates"
	"github.com/fullmind/atlas/internal/viewstate"
)

// EventHandler streams store and service changes to the dashboard via SSE.
// One long-lived connection per client keeps the legend, the saved-view
// list, and the unsaved-changes badge current without polling.
type EventHandler struct {
	humastar.Handler
	store *viewstate.Store
	views *service.ViewService
}

func NewEventHandler(store *viewstate.Store, views *service.ViewService, renderer *templates.Renderer) *EventHandler {
	return &EventHandler{
		Handler: humastar.Handler{Renderer: renderer},
		store:   store,
		views:   views,
	}
}

func (h *EventHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/editor/events", h.Events,
		huma.OperationTags("editor"),
	)
}

func (h *EventHandler) Events(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			sse := humastar.NewSSE(humaCtx)

			busCh := service.DefaultBus.Subscribe()
			defer service.DefaultBus.Unsubscribe(busCh)
			storeCh := h.store.Subscribe()
			defer h.store.Unsubscribe(storeCh)

			legend := NewLegendHandler(h.store, h.Renderer)
			views := NewViewPanelHandler(h.store, h.views, h.Renderer)

			for {
				select {
				case <-ctx.Done():
					return
				case ev := <-busCh:
					if ev.Resource == service.ResourceViews {
						sse.Patch(views.renderViewList(), "#view-list")
					}
					sse.DispatchCustomEvent("resource-changed", map[string]any{
						"resource": string(ev.Resource),
						"action":   ev.Action,
						"id":       ev.ID,
					})
				case ev := <-storeCh:
					sse.Patch(legend.renderLegend(), "#legend")
					sse.Signals(map[string]any{
						"unsavedChanges": h.store.HasUnsavedChanges(),
					})
					sse.DispatchCustomEvent("state-changed", map[string]any{
						"field": ev.Field,
					})
				}
			}
		},
	}, nil
}
