package summary

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fullmind/atlas/internal/maplayer"
	"github.com/fullmind/atlas/internal/viewstate"
)

// The aggregator only needs QueryContext, but database/sql rows cannot be
// constructed directly, so tests run against a canned-response driver.

type respondFunc func(query string, args []driver.Value) ([][]driver.Value, error)

type capturedQuery struct {
	Query string
	Args  []driver.Value
}

type fakeConn struct {
	mu      sync.Mutex
	respond respondFunc
	queries []capturedQuery
}

func (c *fakeConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (c *fakeConn) Close() error                        { return nil }
func (c *fakeConn) Begin() (driver.Tx, error)           { return nil, errors.New("not supported") }

func (c *fakeConn) QueryContext(_ context.Context, query string, named []driver.NamedValue) (driver.Rows, error) {
	args := make([]driver.Value, len(named))
	for i, nv := range named {
		args[i] = nv.Value
	}
	c.mu.Lock()
	c.queries = append(c.queries, capturedQuery{Query: query, Args: args})
	respond := c.respond
	c.mu.Unlock()

	data, err := respond(query, args)
	if err != nil {
		return nil, err
	}
	return &fakeRows{data: data}, nil
}

func (c *fakeConn) captured() []capturedQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]capturedQuery(nil), c.queries...)
}

type fakeRows struct {
	data [][]driver.Value
	i    int
}

func (r *fakeRows) Columns() []string {
	if len(r.data) == 0 {
		return []string{}
	}
	cols := make([]string, len(r.data[0]))
	for i := range cols {
		cols[i] = fmt.Sprintf("c%d", i)
	}
	return cols
}

func (r *fakeRows) Close() error { return nil }

func (r *fakeRows) Next(dest []driver.Value) error {
	if r.i >= len(r.data) {
		return io.EOF
	}
	copy(dest, r.data[r.i])
	r.i++
	return nil
}

type fakeDriver struct{}

var (
	fakeConnsMu sync.Mutex
	fakeConns   = map[string]*fakeConn{}
	registerDrv sync.Once
	connSeq     int
)

func (fakeDriver) Open(name string) (driver.Conn, error) {
	fakeConnsMu.Lock()
	defer fakeConnsMu.Unlock()
	return fakeConns[name], nil
}

// fakeDB opens a *sql.DB backed by the given responder.
func fakeDB(t *testing.T, respond respondFunc) (*sql.DB, *fakeConn) {
	t.Helper()
	registerDrv.Do(func() { sql.Register("summaryfake", fakeDriver{}) })

	conn := &fakeConn{respond: respond}
	fakeConnsMu.Lock()
	connSeq++
	name := fmt.Sprintf("conn-%d", connSeq)
	fakeConns[name] = conn
	fakeConnsMu.Unlock()

	db, err := sql.Open("summaryfake", name)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, conn
}

func TestParamsFromSnapshot(t *testing.T) {
	s := viewstate.DefaultSnapshot()
	s.ActiveVendors = []maplayer.VendorID{maplayer.VendorFullmind, maplayer.VendorTBT}
	s.FiscalYear = 2027
	s.Filters.Owner = "rivera"
	s.Filters.PlanID = "plan-7"
	s.Filters.States = []string{"TX"}

	p := ParamsFromSnapshot(s)
	assert.Equal(t, s.ActiveVendors, p.Vendors)
	assert.Equal(t, 2027, p.FiscalYear)
	assert.Equal(t, "rivera", p.Owner)
	assert.Equal(t, "plan-7", p.PlanID)
	assert.Equal(t, []string{"TX"}, p.States)
	assert.Nil(t, p.Engagements)

	t.Run("engagement filters map to raw categories", func(t *testing.T) {
		s.EngagementFilters[maplayer.VendorFullmind] = []string{"first_year", "renewal_pipeline"}
		p := ParamsFromSnapshot(s)
		assert.Equal(t, []string{"new", "renewal_pipeline"}, p.Engagements[maplayer.VendorFullmind])
		assert.NotContains(t, p.Engagements, maplayer.VendorTBT)
	})
}

func TestRollupNoVendors(t *testing.T) {
	db, conn := fakeDB(t, func(string, []driver.Value) ([][]driver.Value, error) {
		return nil, errors.New("should not be queried")
	})
	agg := NewAggregator(db)

	out, err := agg.Rollup(context.Background(), Params{FiscalYear: 2026})
	require.NoError(t, err)
	assert.Equal(t, Rollup{}, out)
	assert.Empty(t, conn.captured())
}

func TestRollupSingleVendor(t *testing.T) {
	db, conn := fakeDB(t, func(query string, args []driver.Value) ([][]driver.Value, error) {
		// owner filter present marks the filtered query
		if strings.Contains(query, "sales_executive") {
			return [][]driver.Value{{int64(12), 345.5, int64(9000)}}, nil
		}
		return [][]driver.Value{{int64(40), 1000.0, int64(50000)}}, nil
	})
	agg := NewAggregator(db)

	out, err := agg.Rollup(context.Background(), Params{
		Vendors:    []maplayer.VendorID{maplayer.VendorFullmind},
		FiscalYear: 2026,
		Owner:      "rivera",
	})
	require.NoError(t, err)

	assert.Equal(t, Totals{Districts: 12, Revenue: 345.5, Enrollment: 9000}, out.Filtered)
	assert.Equal(t, Totals{Districts: 40, Revenue: 1000.0, Enrollment: 50000}, out.Unfiltered)
	assert.Nil(t, out.ByVendor, "no per-vendor breakdown for a single vendor")

	queries := conn.captured()
	require.Len(t, queries, 2)
	assert.Contains(t, queries[0].Query, "vendor IN (?)")
	assert.Equal(t, []driver.Value{"fullmind", int64(2026), "rivera"}, queries[0].Args)
	// unfiltered drops the owner condition
	assert.NotContains(t, queries[1].Query, "sales_executive")
	assert.Equal(t, []driver.Value{"fullmind", int64(2026)}, queries[1].Args)
}

func TestRollupVendorBreakdown(t *testing.T) {
	db, _ := fakeDB(t, func(query string, args []driver.Value) ([][]driver.Value, error) {
		if strings.Contains(query, "vendor = ?") && args[0] == "proximity" {
			return [][]driver.Value{{int64(5), 50.0, int64(500)}}, nil
		}
		return [][]driver.Value{{int64(20), 200.0, int64(2000)}}, nil
	})
	agg := NewAggregator(db)

	out, err := agg.Rollup(context.Background(), Params{
		Vendors:    []maplayer.VendorID{maplayer.VendorFullmind, maplayer.VendorProximity},
		FiscalYear: 2026,
	})
	require.NoError(t, err)

	require.Len(t, out.ByVendor, 2)
	assert.Equal(t, Totals{Districts: 5, Revenue: 50.0, Enrollment: 500},
		out.ByVendor[maplayer.VendorProximity].Filtered)
	assert.Equal(t, Totals{Districts: 20, Revenue: 200.0, Enrollment: 2000},
		out.ByVendor[maplayer.VendorFullmind].Filtered)
}

func TestRollupPlanAndStateConditions(t *testing.T) {
	db, conn := fakeDB(t, func(string, []driver.Value) ([][]driver.Value, error) {
		return [][]driver.Value{{int64(1), 1.0, int64(1)}}, nil
	})
	agg := NewAggregator(db)

	_, err := agg.Rollup(context.Background(), Params{
		Vendors:    []maplayer.VendorID{maplayer.VendorFullmind},
		FiscalYear: 2026,
		PlanID:     "plan-7",
		States:     []string{"TX", "OK"},
	})
	require.NoError(t, err)

	filtered := conn.captured()[0]
	assert.Contains(t, filtered.Query, "COALESCE(plan_ids, '') LIKE")
	assert.Contains(t, filtered.Query, "state_abbrev IN (?, ?)")
	assert.Equal(t, []driver.Value{"fullmind", int64(2026), "plan-7", "TX", "OK"}, filtered.Args)
}

func TestRollupEngagementConditions(t *testing.T) {
	db, conn := fakeDB(t, func(string, []driver.Value) ([][]driver.Value, error) {
		return [][]driver.Value{{int64(1), 1.0, int64(1)}}, nil
	})
	agg := NewAggregator(db)

	t.Run("single vendor narrows to mapped categories", func(t *testing.T) {
		_, err := agg.Rollup(context.Background(), Params{
			Vendors:    []maplayer.VendorID{maplayer.VendorFullmind},
			FiscalYear: 2026,
			Engagements: map[maplayer.VendorID][]string{
				maplayer.VendorFullmind: {"new", "renewal_pipeline"},
			},
		})
		require.NoError(t, err)

		queries := conn.captured()
		require.Len(t, queries, 2)
		// the engagement clause only binds the combined query here since a
		// single vendor skips the per-vendor breakdown
		assert.Contains(t, queries[0].Query, "category IN (?, ?)")
		assert.Equal(t, []driver.Value{"fullmind", "new", "renewal_pipeline", int64(2026)}, queries[0].Args)
		// unfiltered totals ignore engagements like every other sub-filter
		assert.NotContains(t, queries[1].Query, "category IN")
		assert.Equal(t, []driver.Value{"fullmind", int64(2026)}, queries[1].Args)
	})

	t.Run("mixed vendors get per-vendor disjuncts", func(t *testing.T) {
		db, conn := fakeDB(t, func(string, []driver.Value) ([][]driver.Value, error) {
			return [][]driver.Value{{int64(1), 1.0, int64(1)}}, nil
		})
		agg := NewAggregator(db)

		_, err := agg.Rollup(context.Background(), Params{
			Vendors:    []maplayer.VendorID{maplayer.VendorFullmind, maplayer.VendorProximity},
			FiscalYear: 2026,
			Engagements: map[maplayer.VendorID][]string{
				maplayer.VendorFullmind: {"new"},
			},
		})
		require.NoError(t, err)

		queries := conn.captured()
		assert.Contains(t, queries[0].Query, "((vendor = ? AND category IN (?)) OR vendor = ?)")
		assert.Equal(t, []driver.Value{"fullmind", "new", "proximity", int64(2026)}, queries[0].Args)

		// per-vendor breakdown binds only that vendor's categories
		require.Len(t, queries, 6)
		assert.Contains(t, queries[2].Query, "category IN (?)")
		assert.Equal(t, []driver.Value{"fullmind", "new", int64(2026)}, queries[2].Args)
		assert.NotContains(t, queries[4].Query, "category IN")
		assert.Equal(t, []driver.Value{"proximity", int64(2026)}, queries[4].Args)
	})
}

func TestFilterOptions(t *testing.T) {
	db, _ := fakeDB(t, func(query string, _ []driver.Value) ([][]driver.Value, error) {
		switch {
		case strings.Contains(query, "sales_executive"):
			return [][]driver.Value{{"chen"}, {"rivera"}}, nil
		case strings.Contains(query, "state_abbrev"):
			return [][]driver.Value{{"OK"}, {"TX"}}, nil
		default:
			return [][]driver.Value{{"plan-1"}, {"plan-7"}}, nil
		}
	})
	agg := NewAggregator(db)

	opts, err := agg.FilterOptions(context.Background(), 2026)
	require.NoError(t, err)
	assert.Equal(t, []string{"chen", "rivera"}, opts.Owners)
	assert.Equal(t, []string{"OK", "TX"}, opts.States)
	assert.Equal(t, []string{"plan-1", "plan-7"}, opts.Plans)
}

func TestStateBounds(t *testing.T) {
	t.Run("box spans all centroids", func(t *testing.T) {
		db, conn := fakeDB(t, func(string, []driver.Value) ([][]driver.Value, error) {
			return [][]driver.Value{
				{-101.8, 35.2},
				{-95.3, 29.7},
				{-97.5, 35.4},
			}, nil
		})
		agg := NewAggregator(db)

		bounds, ok, err := agg.StateBounds(context.Background(), []string{"TX", "OK"})
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, Bounds{West: -101.8, South: 29.7, East: -95.3, North: 35.4}, bounds)

		q := conn.captured()[0]
		assert.Contains(t, q.Query, "state_abbrev IN (?, ?)")
		assert.Equal(t, []driver.Value{"TX", "OK"}, q.Args)
	})

	t.Run("no centroids yields not-ok", func(t *testing.T) {
		db, _ := fakeDB(t, func(string, []driver.Value) ([][]driver.Value, error) {
			return nil, nil
		})
		agg := NewAggregator(db)

		_, ok, err := agg.StateBounds(context.Background(), nil)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
