package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

// Bounds is a lng/lat bounding box for initial camera framing.
type Bounds struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// StateBounds computes the bounding box of all district centroids in the
// given states (or every district when the list is empty), for fitting the
// comparison-mode cameras to the filtered territory. ok is false when no
// district has a known centroid.
func (a *Aggregator) StateBounds(ctx context.Context, states []string) (Bounds, bool, error) {
	query := `
		SELECT lng, lat FROM district_metrics
		WHERE lng IS NOT NULL AND lat IS NOT NULL`
	var args []any
	if len(states) > 0 {
		placeholders := make([]string, len(states))
		for i, s := range states {
			placeholders[i] = "?"
			args = append(args, s)
		}
		query += fmt.Sprintf(" AND state_abbrev IN (%s)", strings.Join(placeholders, ", "))
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Bounds{}, false, fmt.Errorf("bounds query: %w", err)
	}
	defer rows.Close()

	var points orb.MultiPoint
	for rows.Next() {
		var lng, lat float64
		if err := rows.Scan(&lng, &lat); err != nil {
			continue
		}
		points = append(points, orb.Point{lng, lat})
	}
	if err := rows.Err(); err != nil {
		return Bounds{}, false, err
	}
	if len(points) == 0 {
		return Bounds{}, false, nil
	}

	b := points.Bound()
	return Bounds{
		West:  b.Min[0],
		South: b.Min[1],
		East:  b.Max[0],
		North: b.Max[1],
	}, true, nil
}
