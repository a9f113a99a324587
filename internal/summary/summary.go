// Package summary derives filtered and unfiltered numeric rollups from the
// current view state. It reads the store and the analytics database; it
// never mutates either.
package summary

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/fullmind/atlas/internal/maplayer"
	"github.com/fullmind/atlas/internal/viewstate"
)

// Querier is the database surface the aggregator needs. *sql.DB satisfies it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Params are the filter-relevant store fields a rollup depends on.
// Engagements holds the already alias-mapped tile category values per
// vendor; an absent or empty list means no engagement filter.
type Params struct {
	Vendors     []maplayer.VendorID            `json:"vendors"`
	FiscalYear  int                            `json:"fiscalYear"`
	Owner       string                         `json:"owner,omitempty"`
	PlanID      string                         `json:"planId,omitempty"`
	States      []string                       `json:"states,omitempty"`
	Engagements map[maplayer.VendorID][]string `json:"engagements,omitempty"`
}

// ParamsFromSnapshot extracts rollup parameters from a view-state snapshot,
// mapping each vendor's engagement filter to its raw category values.
func ParamsFromSnapshot(s viewstate.Snapshot) Params {
	p := Params{
		Vendors:    s.ActiveVendors,
		FiscalYear: s.FiscalYear,
		Owner:      s.Filters.Owner,
		PlanID:     s.Filters.PlanID,
		States:     s.Filters.States,
	}
	for v, engagements := range s.EngagementFilters {
		cats := maplayer.EngagementToCategories(engagements)
		if len(cats) == 0 {
			continue
		}
		if p.Engagements == nil {
			p.Engagements = make(map[maplayer.VendorID][]string)
		}
		p.Engagements[v] = cats
	}
	return p
}

// Totals is one metric set: district count, revenue, enrollment.
type Totals struct {
	Districts  int     `json:"districts"`
	Revenue    float64 `json:"revenue"`
	Enrollment int64   `json:"enrollment"`
}

// Rollup pairs filtered totals (all active filters) with unfiltered totals
// (vendor and fiscal year only), so the UI can show "N of M". ByVendor is
// populated when two or more vendors are active.
type Rollup struct {
	Filtered   Totals                        `json:"filtered"`
	Unfiltered Totals                        `json:"unfiltered"`
	ByVendor   map[maplayer.VendorID]VendorRollup `json:"byVendor,omitempty"`
}

// VendorRollup is the per-vendor breakdown entry.
type VendorRollup struct {
	Filtered   Totals `json:"filtered"`
	Unfiltered Totals `json:"unfiltered"`
}

// Aggregator computes rollups against the district metrics table.
type Aggregator struct {
	db Querier
}

// NewAggregator creates an aggregator over the given database.
func NewAggregator(db Querier) *Aggregator {
	return &Aggregator{db: db}
}

// Rollup computes the filtered and unfiltered totals for the given
// parameters, plus the per-vendor breakdown when multiple vendors are
// active. No active vendor yields zero totals.
func (a *Aggregator) Rollup(ctx context.Context, p Params) (Rollup, error) {
	var out Rollup
	if len(p.Vendors) == 0 {
		return out, nil
	}

	filtered, err := a.totals(ctx, p, true, "")
	if err != nil {
		return out, err
	}
	unfiltered, err := a.totals(ctx, p, false, "")
	if err != nil {
		return out, err
	}
	out.Filtered, out.Unfiltered = filtered, unfiltered

	if len(p.Vendors) >= 2 {
		out.ByVendor = make(map[maplayer.VendorID]VendorRollup, len(p.Vendors))
		for _, v := range p.Vendors {
			f, err := a.totals(ctx, p, true, string(v))
			if err != nil {
				return out, err
			}
			u, err := a.totals(ctx, p, false, string(v))
			if err != nil {
				return out, err
			}
			out.ByVendor[v] = VendorRollup{Filtered: f, Unfiltered: u}
		}
	}
	return out, nil
}

// marks returns n comma-joined SQL placeholders.
func marks(n int) string {
	return strings.Join(slices.Repeat([]string{"?"}, n), ", ")
}

// totals runs one aggregate query. withSubFilters adds the owner/plan/state
// and engagement conditions; vendor narrows to a single vendor for the
// breakdown.
func (a *Aggregator) totals(ctx context.Context, p Params, withSubFilters bool, vendor string) (Totals, error) {
	var (
		conds []string
		args  []any
	)

	if vendor != "" {
		conds = append(conds, "vendor = ?")
		args = append(args, vendor)
		if withSubFilters {
			if cats := p.Engagements[maplayer.VendorID(vendor)]; len(cats) > 0 {
				conds = append(conds, fmt.Sprintf("category IN (%s)", marks(len(cats))))
				for _, c := range cats {
					args = append(args, c)
				}
			}
		}
	} else if withSubFilters && len(p.Engagements) > 0 {
		// Engagement filters are per vendor, so the combined query needs
		// one disjunct per vendor instead of a flat IN list.
		parts := make([]string, 0, len(p.Vendors))
		for _, v := range p.Vendors {
			cats := p.Engagements[v]
			if len(cats) == 0 {
				parts = append(parts, "vendor = ?")
				args = append(args, string(v))
				continue
			}
			parts = append(parts, fmt.Sprintf("(vendor = ? AND category IN (%s))", marks(len(cats))))
			args = append(args, string(v))
			for _, c := range cats {
				args = append(args, c)
			}
		}
		conds = append(conds, "("+strings.Join(parts, " OR ")+")")
	} else {
		conds = append(conds, fmt.Sprintf("vendor IN (%s)", marks(len(p.Vendors))))
		for _, v := range p.Vendors {
			args = append(args, string(v))
		}
	}

	conds = append(conds, "fiscal_year = ?")
	args = append(args, p.FiscalYear)

	if withSubFilters {
		if p.Owner != "" {
			conds = append(conds, "sales_executive = ?")
			args = append(args, p.Owner)
		}
		if p.PlanID != "" {
			// plan_ids is comma-joined and may be NULL.
			conds = append(conds, "COALESCE(plan_ids, '') LIKE '%' || ? || '%'")
			args = append(args, p.PlanID)
		}
		if len(p.States) > 0 {
			conds = append(conds, fmt.Sprintf("state_abbrev IN (%s)", marks(len(p.States))))
			for _, s := range p.States {
				args = append(args, s)
			}
		}
	}

	query := fmt.Sprintf(`
		SELECT COUNT(DISTINCT leaid),
		       COALESCE(SUM(revenue), 0),
		       COALESCE(SUM(enrollment), 0)
		FROM district_metrics
		WHERE %s`, strings.Join(conds, " AND "))

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Totals{}, fmt.Errorf("summary query: %w", err)
	}
	defer rows.Close()

	var t Totals
	if rows.Next() {
		if err := rows.Scan(&t.Districts, &t.Revenue, &t.Enrollment); err != nil {
			return Totals{}, fmt.Errorf("summary scan: %w", err)
		}
	}
	return t, rows.Err()
}

// FilterOptions are the distinct values available for filter dropdowns.
type FilterOptions struct {
	Owners []string `json:"owners"`
	States []string `json:"states"`
	Plans  []string `json:"plans"`
}

// FilterOptions lists the distinct owners, states, and plan ids present in
// the metrics table for the given fiscal year.
func (a *Aggregator) FilterOptions(ctx context.Context, fiscalYear int) (FilterOptions, error) {
	var opts FilterOptions

	owners, err := a.distinct(ctx, "sales_executive", fiscalYear)
	if err != nil {
		return opts, err
	}
	states, err := a.distinct(ctx, "state_abbrev", fiscalYear)
	if err != nil {
		return opts, err
	}
	opts.Owners, opts.States = owners, states

	// plan_ids is comma-joined per row; split before deduplicating.
	rows, err := a.db.QueryContext(ctx, `
		SELECT DISTINCT TRIM(p) FROM district_metrics,
		UNNEST(STRING_SPLIT(COALESCE(plan_ids, ''), ',')) AS t(p)
		WHERE fiscal_year = ? AND TRIM(p) <> ''
		ORDER BY 1`, fiscalYear)
	if err != nil {
		return opts, fmt.Errorf("plan options: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err == nil {
			opts.Plans = append(opts.Plans, p)
		}
	}
	return opts, rows.Err()
}

func (a *Aggregator) distinct(ctx context.Context, column string, fiscalYear int) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT %s FROM district_metrics
		WHERE fiscal_year = ? AND %s IS NOT NULL AND %s <> ''
		ORDER BY 1`, column, column, column)
	rows, err := a.db.QueryContext(ctx, query, fiscalYear)
	if err != nil {
		return nil, fmt.Errorf("%s options: %w", column, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err == nil {
			out = append(out, v)
		}
	}
	return out, rows.Err()
}
