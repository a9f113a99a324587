package api

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// database/sql rows cannot be constructed directly, so the analytics
// endpoints are tested against a canned-response driver.

type dbRespondFunc func(query string) (cols []string, data [][]driver.Value, err error)

type dbFakeConn struct {
	mu      sync.Mutex
	respond dbRespondFunc
	queries []string
}

func (c *dbFakeConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (c *dbFakeConn) Close() error                        { return nil }
func (c *dbFakeConn) Begin() (driver.Tx, error)           { return nil, errors.New("not supported") }

func (c *dbFakeConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	c.mu.Lock()
	c.queries = append(c.queries, query)
	respond := c.respond
	c.mu.Unlock()

	cols, data, err := respond(query)
	if err != nil {
		return nil, err
	}
	return &dbFakeRows{cols: cols, data: data}, nil
}

func (c *dbFakeConn) captured() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.queries...)
}

type dbFakeRows struct {
	cols []string
	data [][]driver.Value
	pos  int
}

func (r *dbFakeRows) Columns() []string { return r.cols }
func (r *dbFakeRows) Close() error      { return nil }

func (r *dbFakeRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.data) {
		return io.EOF
	}
	copy(dest, r.data[r.pos])
	r.pos++
	return nil
}

type dbFakeDriver struct{}

var (
	dbFakeConnsMu sync.Mutex
	dbFakeConns   = map[string]*dbFakeConn{}
	dbFakeSeq     int
	dbFakeOnce    sync.Once
)

func (dbFakeDriver) Open(dsn string) (driver.Conn, error) {
	dbFakeConnsMu.Lock()
	defer dbFakeConnsMu.Unlock()
	conn, ok := dbFakeConns[dsn]
	if !ok {
		return nil, fmt.Errorf("unknown dsn %q", dsn)
	}
	return conn, nil
}

func analyticsFakeDB(t *testing.T, respond dbRespondFunc) (*sql.DB, *dbFakeConn) {
	t.Helper()
	dbFakeOnce.Do(func() { sql.Register("analyticsfake", dbFakeDriver{}) })

	conn := &dbFakeConn{respond: respond}
	dbFakeConnsMu.Lock()
	dbFakeSeq++
	dsn := fmt.Sprintf("conn-%d", dbFakeSeq)
	dbFakeConns[dsn] = conn
	dbFakeConnsMu.Unlock()

	db, err := sql.Open("analyticsfake", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, conn
}

func TestDBEndpoints(t *testing.T) {
	db, conn := analyticsFakeDB(t, func(query string) ([]string, [][]driver.Value, error) {
		if strings.Contains(query, "SHOW TABLES") {
			return []string{"name"}, [][]driver.Value{{"district_metrics"}}, nil
		}
		return []string{"leaid", "vendor"}, [][]driver.Value{
			{"4808940", "fullmind"},
			{"0612345", "proximity"},
		}, nil
	})
	_, api := humatest.New(t)
	NewDBHandler(db).RegisterRoutes(api)

	t.Run("tables lists the analytics schema", func(t *testing.T) {
		resp := api.Get("/api/v1/tables")
		require.Equal(t, http.StatusOK, resp.Code)

		var body TablesBody
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, []string{"district_metrics"}, body.Tables)
	})

	t.Run("preview is bounded and name-checked", func(t *testing.T) {
		resp := api.Get("/api/v1/tables/district_metrics/preview?limit=2")
		require.Equal(t, http.StatusOK, resp.Code)

		var body ResultBody
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, []string{"leaid", "vendor"}, body.Columns)
		assert.Equal(t, 2, body.Count)

		queries := conn.captured()
		assert.Equal(t, "SELECT * FROM district_metrics LIMIT 2", queries[len(queries)-1])

		resp = api.Get("/api/v1/tables/metrics%3B%20DROP/preview")
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})

	t.Run("query accepts read-only statements", func(t *testing.T) {
		resp := api.Post("/api/v1/query", map[string]any{
			"query": "SELECT leaid, vendor FROM district_metrics",
		})
		require.Equal(t, http.StatusOK, resp.Code)

		var body ResultBody
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, 2, body.Count)
		assert.Equal(t, "fullmind", body.Rows[0]["vendor"])
	})

	t.Run("query rejects mutations", func(t *testing.T) {
		before := len(conn.captured())
		resp := api.Post("/api/v1/query", map[string]any{
			"query": "DELETE FROM district_metrics",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
		assert.Len(t, conn.captured(), before, "rejected statement never reaches the database")
	})

	t.Run("nil database degrades to 503", func(t *testing.T) {
		_, api := humatest.New(t)
		NewDBHandler(nil).RegisterRoutes(api)
		assert.Equal(t, http.StatusServiceUnavailable, api.Get("/api/v1/tables").Code)
	})
}
