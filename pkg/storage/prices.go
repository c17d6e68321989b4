package storage

import (
	"context"
	"database/sql"
	"errors"
)

// AddObservation appends one price point. Observations are never updated or
// deleted by normal operation.
func (d *DB) AddObservation(ctx context.Context, componentID int64, retailer string, price int64, currency string) error {
	if currency == "" {
		currency = defaultCurrency
	}
	_, err := d.sql.ExecContext(ctx, `
		INSERT INTO price_observations(component_id, retailer, price, currency)
		VALUES(?, ?, ?, ?)`, componentID, retailer, price, currency)
	return err
}

// PriceHistory returns the most recent k observations for a component,
// newest first.
func (d *DB) PriceHistory(ctx context.Context, componentID int64, k int) ([]Observation, error) {
	rows, err := d.sql.QueryContext(ctx, `
		SELECT id, component_id, retailer, price, currency, observed_at
		FROM price_observations WHERE component_id = ?
		ORDER BY observed_at DESC, id DESC LIMIT ?`, componentID, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var obs []Observation
	for rows.Next() {
		var o Observation
		var observedAt string
		if err := rows.Scan(&o.ID, &o.ComponentID, &o.Retailer, &o.Price, &o.Currency, &observedAt); err != nil {
			return nil, err
		}
		o.ObservedAt = parseTime(observedAt)
		obs = append(obs, o)
	}
	return obs, rows.Err()
}

// CheapestOffer returns the lowest-priced in-stock offer for a component, or
// nil when no offer qualifies. Ties break on offer id so repeated calls pick
// the same row.
func (d *DB) CheapestOffer(ctx context.Context, componentID int64) (*LowestPrice, error) {
	row := d.sql.QueryRowContext(ctx, `
		SELECT price, currency, retailer, url FROM retailer_offers
		WHERE component_id = ? AND available = 1 AND price IS NOT NULL
		ORDER BY price, id LIMIT 1`, componentID)

	var lp LowestPrice
	err := row.Scan(&lp.Price, &lp.Currency, &lp.Retailer, &lp.URL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lp, nil
}

// PriceRange returns the min and max in-stock price across a category's
// offers, for building a price-range filter control. ok is false when the
// category has no priced offers.
func (d *DB) PriceRange(ctx context.Context, category string) (min, max int64, ok bool, err error) {
	row := d.sql.QueryRowContext(ctx, `
		SELECT MIN(price), MAX(price) FROM retailer_offers
		WHERE category = ? COLLATE NOCASE AND available = 1 AND price IS NOT NULL`, category)

	var lo, hi sql.NullInt64
	if err = row.Scan(&lo, &hi); err != nil {
		return 0, 0, false, err
	}
	if !lo.Valid {
		return 0, 0, false, nil
	}
	return lo.Int64, hi.Int64, true, nil
}

// BestDeals returns in-stock, discounted, matched offers sorted ascending by
// price, capped to limit.
func (d *DB) BestDeals(ctx context.Context, limit int) ([]Deal, error) {
	rows, err := d.sql.QueryContext(ctx, `
		SELECT o.id, o.retailer, o.retailer_name, o.url, o.price, o.regular_price,
		       o.currency, COALESCE(o.image_url, ''), o.available, o.category,
		       COALESCE(o.model_name, ''), o.component_id, o.first_seen_at, o.last_seen_at,
		       k.name
		FROM retailer_offers o JOIN components k ON k.id = o.component_id
		WHERE o.available = 1 AND o.price IS NOT NULL
		  AND o.regular_price IS NOT NULL AND o.regular_price > o.price
		ORDER BY o.price, o.id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deals []Deal
	for rows.Next() {
		var dl Deal
		var available int
		var componentID sql.NullInt64
		var firstSeen, lastSeen string
		if err := rows.Scan(&dl.ID, &dl.Retailer, &dl.RetailerName, &dl.URL, &dl.Price,
			&dl.RegularPrice, &dl.Currency, &dl.ImageURL, &available, &dl.Category,
			&dl.ModelName, &componentID, &firstSeen, &lastSeen, &dl.ComponentName); err != nil {
			return nil, err
		}
		dl.Available = available == 1
		if componentID.Valid {
			dl.ComponentID = &componentID.Int64
		}
		dl.FirstSeenAt = parseTime(firstSeen)
		dl.LastSeenAt = parseTime(lastSeen)
		deals = append(deals, dl)
	}
	return deals, rows.Err()
}
