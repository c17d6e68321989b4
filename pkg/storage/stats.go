package storage

import (
	"context"
)

// StatRow is one line of the stats report.
type StatRow struct {
	Retailer string
	Category string
	Offers   int
	Matched  int
}

// Stats returns per-retailer, per-category offer counts.
func (d *DB) Stats(ctx context.Context) ([]StatRow, error) {
	rows, err := d.sql.QueryContext(ctx, `
		SELECT retailer, category, COUNT(*),
		       SUM(CASE WHEN component_id IS NOT NULL THEN 1 ELSE 0 END)
		FROM retailer_offers
		GROUP BY retailer, category
		ORDER BY retailer, category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []StatRow
	for rows.Next() {
		var s StatRow
		if err := rows.Scan(&s.Retailer, &s.Category, &s.Offers, &s.Matched); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
