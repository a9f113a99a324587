package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/fullmind/atlas/internal/service"
	"github.com/fullmind/atlas/internal/viewstate"
)

// Map-view endpoints: the remote saved-view tier. Create captures the
// current store state unless an explicit state blob is supplied; loading a
// view applies its state back into the store and recaptures the baseline.

type ViewIDInput struct {
	ID string `path:"id" doc:"Saved view ID"`
}

type CreateViewInput struct {
	Body struct {
		Name        string              `json:"name" required:"true" minLength:"1" maxLength:"100" doc:"Display name"`
		Description string              `json:"description,omitempty" doc:"Optional description"`
		IsShared    bool                `json:"isShared,omitempty" doc:"Whether the view is visible to the whole team"`
		State       *viewstate.Snapshot `json:"state,omitempty" doc:"View state to capture; defaults to the live state"`
	}
}

type CreatedViewBody struct {
	ID      string `json:"id" doc:"Generated view ID"`
	Message string `json:"message" doc:"Result message"`
}

type ViewListOutput struct {
	Body []service.ViewSummary
}

type ViewOutput struct {
	Body service.SavedView
}

// RegisterViews registers saved-view CRUD routes.
func (h *APIHandler) RegisterViews(api huma.API) {
	huma.Get(api, "/api/v1/views", h.ListViews, huma.OperationTags("views"))
	huma.Post(api, "/api/v1/views", h.CreateView, huma.OperationTags("views"))
	huma.Get(api, "/api/v1/views/{id}", h.GetView, huma.OperationTags("views"))
	huma.Post(api, "/api/v1/views/{id}/load", h.LoadView, huma.OperationTags("views"))
	huma.Delete(api, "/api/v1/views/{id}", h.DeleteView, huma.OperationTags("views"))
}

func (h *APIHandler) ListViews(ctx context.Context, input *struct{}) (*ViewListOutput, error) {
	if h.svc == nil || h.svc.Views == nil {
		return &ViewListOutput{Body: []service.ViewSummary{}}, nil
	}
	return &ViewListOutput{Body: h.svc.Views.List()}, nil
}

func (h *APIHandler) CreateView(ctx context.Context, input *CreateViewInput) (*struct{ Body CreatedViewBody }, error) {
	if h.svc == nil || h.svc.Views == nil {
		return nil, huma.Error400BadRequest("service not available")
	}

	state := h.svc.Store.Snapshot()
	if input.Body.State != nil {
		state = *input.Body.State
	}

	created, err := h.svc.Views.Create(service.SavedView{
		Name:        input.Body.Name,
		Description: input.Body.Description,
		IsShared:    input.Body.IsShared,
		State:       state,
	})
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	// Saving establishes the new unsaved-changes baseline.
	if input.Body.State == nil {
		h.svc.Store.Capture()
	}
	service.DefaultBus.Publish(service.Event{Resource: service.ResourceViews, Action: "created", ID: created.ID})

	return &struct{ Body CreatedViewBody }{Body: CreatedViewBody{
		ID: created.ID, Message: "View saved",
	}}, nil
}

func (h *APIHandler) GetView(ctx context.Context, input *ViewIDInput) (*ViewOutput, error) {
	if h.svc == nil || h.svc.Views == nil {
		return nil, huma.Error404NotFound("service not available")
	}
	view, ok := h.svc.Views.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("view not found")
	}
	return &ViewOutput{Body: view}, nil
}

// LoadView applies a saved view's state into the live store.
func (h *APIHandler) LoadView(ctx context.Context, input *ViewIDInput) (*struct{ Body MessageBody }, error) {
	if h.svc == nil || h.svc.Views == nil {
		return nil, huma.Error404NotFound("service not available")
	}
	view, ok := h.svc.Views.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("view not found")
	}

	h.svc.Store.Apply(view.State)
	h.svc.Store.Capture()
	service.DefaultBus.Publish(service.Event{Resource: service.ResourceViews, Action: "loaded", ID: view.ID})

	return &struct{ Body MessageBody }{Body: MessageBody{Message: "View loaded"}}, nil
}

func (h *APIHandler) DeleteView(ctx context.Context, input *ViewIDInput) (*struct{ Body MessageBody }, error) {
	if h.svc == nil || h.svc.Views == nil {
		return nil, huma.Error400BadRequest("service not available")
	}
	if err := h.svc.Views.Delete(input.ID); err != nil {
		return nil, huma.Error404NotFound(err.Error())
	}
	service.DefaultBus.Publish(service.Event{Resource: service.ResourceViews, Action: "deleted", ID: input.ID})
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "View deleted"}}, nil
}
