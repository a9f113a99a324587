// Package atlasclient is a small hand-written client for the atlas API.
// It covers the endpoints dashboard automations actually call; anything
// else can go through the OpenAPI spec exported by `atlas spec`.
package atlasclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Client talks to a running atlas server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the given base URL, e.g. "http://localhost:8094".
func New(baseURL string) *Client {
	return &Client{baseURL: baseURL, http: http.DefaultClient}
}

// WithHTTPClient swaps the underlying HTTP client (timeouts, transports).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, bytes.TrimSpace(data))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Health is the /health response body.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.do(ctx, http.MethodGet, "/health", nil, &out)
	return out, err
}

// Info is the /api/v1/info response body.
type Info struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	DB       bool     `json:"db"`
	Features []string `json:"features"`
}

func (c *Client) GetInfo(ctx context.Context) (Info, error) {
	var out Info
	err := c.do(ctx, http.MethodGet, "/api/v1/info", nil, &out)
	return out, err
}

// ViewState is the raw view-state snapshot. The client treats it as opaque
// JSON so it never lags behind server-side state fields.
type ViewState map[string]any

func (c *Client) GetViewState(ctx context.Context) (ViewState, error) {
	var out ViewState
	err := c.do(ctx, http.MethodGet, "/api/v1/view", nil, &out)
	return out, err
}

func (c *Client) ApplyViewState(ctx context.Context, state ViewState) (ViewState, error) {
	var out ViewState
	err := c.do(ctx, http.MethodPut, "/api/v1/view", state, &out)
	return out, err
}

func (c *Client) ToggleVendor(ctx context.Context, vendor string) (ViewState, error) {
	var out ViewState
	err := c.do(ctx, http.MethodPost, "/api/v1/view/vendors/"+vendor+"/toggle", nil, &out)
	return out, err
}

func (c *Client) ToggleSignal(ctx context.Context, signal string) (ViewState, error) {
	var out ViewState
	err := c.do(ctx, http.MethodPost, "/api/v1/view/signals/"+signal+"/toggle", nil, &out)
	return out, err
}

// StyleLayers is the compiled style document: renderer-ready layer specs.
type StyleLayers struct {
	Layers []json.RawMessage `json:"layers"`
}

func (c *Client) GetStyleLayers(ctx context.Context) (StyleLayers, error) {
	var out StyleLayers
	err := c.do(ctx, http.MethodGet, "/api/v1/style/layers", nil, &out)
	return out, err
}

// ViewSummary is one row in the saved-view list.
type ViewSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsShared bool   `json:"isShared"`
}

func (c *Client) ListViews(ctx context.Context) ([]ViewSummary, error) {
	var out []ViewSummary
	err := c.do(ctx, http.MethodGet, "/api/v1/views", nil, &out)
	return out, err
}

// CreateViewRequest names a view to save; State nil captures the live state.
type CreateViewRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsShared    bool      `json:"isShared"`
	State       ViewState `json:"state,omitempty"`
}

// CreatedView is the create-view response body.
type CreatedView struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

func (c *Client) CreateView(ctx context.Context, req CreateViewRequest) (CreatedView, error) {
	var out CreatedView
	err := c.do(ctx, http.MethodPost, "/api/v1/views", req, &out)
	return out, err
}

func (c *Client) LoadView(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/views/"+id+"/load", nil, nil)
}

func (c *Client) DeleteView(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/views/"+id, nil, nil)
}

// Totals is one summary metric set.
type Totals struct {
	Districts  int     `json:"districts"`
	Revenue    float64 `json:"revenue"`
	Enrollment int64   `json:"enrollment"`
}

// Summary is the /api/v1/summary response body.
type Summary struct {
	Filtered   Totals `json:"filtered"`
	Unfiltered Totals `json:"unfiltered"`
}

func (c *Client) GetSummary(ctx context.Context) (Summary, error) {
	var out Summary
	err := c.do(ctx, http.MethodGet, "/api/v1/summary", nil, &out)
	return out, err
}
