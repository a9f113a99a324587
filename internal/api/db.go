package api

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// DBHandler exposes the analytics database behind the summary rollups:
// table discovery, bounded previews, and ad-hoc read-only queries for
// territory analysis. Mutating statements are rejected; the dashboard
// never writes to district metrics.
type DBHandler struct {
	db *sql.DB
}

// NewDBHandler creates a handler over the analytics database.
func NewDBHandler(db *sql.DB) *DBHandler {
	return &DBHandler{db: db}
}

// RegisterRoutes registers analytics database routes.
func (h *DBHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/tables", h.ListTables, huma.OperationTags("analytics"))
	huma.Get(api, "/api/v1/tables/{name}/preview", h.PreviewTable, huma.OperationTags("analytics"))
	huma.Post(api, "/api/v1/query", h.Query, huma.OperationTags("analytics"))
}

type TablesBody struct {
	Tables []string `json:"tables" doc:"Available analytics tables"`
}

type TablesOutput struct {
	Body TablesBody
}

// ListTables returns the analytics tables, district_metrics among them.
func (h *DBHandler) ListTables(ctx context.Context, input *struct{}) (*TablesOutput, error) {
	if h.db == nil {
		return nil, huma.Error503ServiceUnavailable("Analytics database not available")
	}

	rows, err := h.db.QueryContext(ctx, "SHOW TABLES")
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list tables", err)
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, huma.Error500InternalServerError("Failed to read table name", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, huma.Error500InternalServerError("Failed to list tables", err)
	}

	return &TablesOutput{Body: TablesBody{Tables: tables}}, nil
}

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type PreviewInput struct {
	Name  string `path:"name" doc:"Table name" example:"district_metrics"`
	Limit int    `query:"limit" default:"20" minimum:"1" maximum:"500" doc:"Maximum rows returned"`
}

type ResultBody struct {
	Columns []string         `json:"columns" doc:"Column names"`
	Rows    []map[string]any `json:"rows" doc:"Result rows"`
	Count   int              `json:"count" doc:"Number of rows returned"`
}

type ResultOutput struct {
	Body ResultBody
}

// PreviewTable returns the first rows of a table for inspection.
func (h *DBHandler) PreviewTable(ctx context.Context, input *PreviewInput) (*ResultOutput, error) {
	if h.db == nil {
		return nil, huma.Error503ServiceUnavailable("Analytics database not available")
	}
	if !tableName.MatchString(input.Name) {
		return nil, huma.Error422UnprocessableEntity("invalid table name: " + input.Name)
	}

	limit := input.Limit
	if limit == 0 {
		limit = 20
	}
	rows, err := h.db.QueryContext(ctx,
		fmt.Sprintf("SELECT * FROM %s LIMIT %d", input.Name, limit))
	if err != nil {
		return nil, huma.Error400BadRequest("Preview failed: " + err.Error())
	}
	defer rows.Close()

	body, err := collectRows(rows)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to read rows", err)
	}
	return &ResultOutput{Body: body}, nil
}

type QueryInput struct {
	Body struct {
		Query string `json:"query" required:"true" doc:"Read-only SQL query" example:"SELECT state_abbrev, COUNT(*) FROM district_metrics GROUP BY 1"`
	}
}

// Query runs an ad-hoc read-only query against the analytics database.
func (h *DBHandler) Query(ctx context.Context, input *QueryInput) (*ResultOutput, error) {
	if h.db == nil {
		return nil, huma.Error503ServiceUnavailable("Analytics database not available")
	}
	if !readOnlyQuery(input.Body.Query) {
		return nil, huma.Error422UnprocessableEntity("only read-only queries are allowed")
	}

	rows, err := h.db.QueryContext(ctx, input.Body.Query)
	if err != nil {
		return nil, huma.Error400BadRequest("Query failed: " + err.Error())
	}
	defer rows.Close()

	body, err := collectRows(rows)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to read rows", err)
	}
	return &ResultOutput{Body: body}, nil
}

// readOnlyQuery accepts SELECT-shaped statements only. This is a first
// gate, not a sandbox; the analytics connection itself has no write path
// the dashboard depends on.
func readOnlyQuery(q string) bool {
	head := strings.ToUpper(strings.TrimSpace(q))
	for _, prefix := range []string{"SELECT", "WITH", "SHOW", "DESCRIBE"} {
		if strings.HasPrefix(head, prefix) {
			return true
		}
	}
	return false
}

// collectRows drains rows into a column list and generic row maps.
func collectRows(rows *sql.Rows) (ResultBody, error) {
	columns, err := rows.Columns()
	if err != nil {
		return ResultBody{}, err
	}

	results := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return ResultBody{}, err
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return ResultBody{}, err
	}

	return ResultBody{Columns: columns, Rows: results, Count: len(results)}, nil
}
