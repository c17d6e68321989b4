package storage

import (
	"context"
	"database/sql"
	"errors"
)

// UpsertOffers imports a batch of normalized retailer offers. The identity
// key is (retailer, retailer_name, url); repeated scrape runs update the
// existing row instead of duplicating it. Each row is its own statement, so
// an interrupted batch leaves prior upserts applied. The component reference
// is never touched here. When an already-matched offer comes back with a
// price, a price observation is appended so history keeps accruing.
func (d *DB) UpsertOffers(ctx context.Context, inputs []OfferInput) (created, updated int, err error) {
	for _, in := range inputs {
		currency := in.Currency
		if currency == "" {
			currency = defaultCurrency
		}

		var id int64
		var componentID sql.NullInt64
		err = d.sql.QueryRowContext(ctx, `
			SELECT id, component_id FROM retailer_offers
			WHERE retailer = ? AND retailer_name = ? AND url = ?`,
			in.Retailer, in.RetailerName, in.URL).Scan(&id, &componentID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if _, err = d.sql.ExecContext(ctx, `
				INSERT INTO retailer_offers(retailer, retailer_name, url, price, regular_price, currency, image_url, available, category, model_name)
				VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				in.Retailer, in.RetailerName, in.URL, in.Price, in.RegularPrice, currency,
				nullIfEmpty(in.ImageURL), boolToInt(in.Available), in.Category, nullIfEmpty(in.ModelName)); err != nil {
				return created, updated, err
			}
			created++
		case err != nil:
			return created, updated, err
		default:
			// An empty incoming model never clears one extracted earlier.
			if _, err = d.sql.ExecContext(ctx, `
				UPDATE retailer_offers
				SET price = ?, regular_price = ?, currency = ?, image_url = ?,
				    available = ?, category = ?,
				    model_name = COALESCE(?, model_name),
				    last_seen_at = CURRENT_TIMESTAMP
				WHERE id = ?`,
				in.Price, in.RegularPrice, currency, nullIfEmpty(in.ImageURL),
				boolToInt(in.Available), in.Category, nullIfEmpty(in.ModelName), id); err != nil {
				return created, updated, err
			}
			updated++

			if componentID.Valid && in.Price != nil {
				if err = d.AddObservation(ctx, componentID.Int64, in.Retailer, *in.Price, currency); err != nil {
					return created, updated, err
				}
			}
		}
	}
	return created, updated, nil
}

// UnmatchedOffers returns a snapshot of offers that lack a component
// reference, optionally scoped to one category.
func (d *DB) UnmatchedOffers(ctx context.Context, category string) ([]Offer, error) {
	query := `
		SELECT id, retailer, retailer_name, url, price, regular_price, currency,
		       COALESCE(image_url, ''), available, category, COALESCE(model_name, ''),
		       component_id, first_seen_at, last_seen_at
		FROM retailer_offers WHERE component_id IS NULL`
	args := []any{}
	if category != "" {
		query += " AND category = ? COLLATE NOCASE"
		args = append(args, category)
	}
	query += " ORDER BY id"
	return d.queryOffers(ctx, query, args...)
}

// OffersForComponent returns all offers matched to one component, cheapest
// first with unpriced offers last.
func (d *DB) OffersForComponent(ctx context.Context, componentID int64) ([]Offer, error) {
	return d.queryOffers(ctx, `
		SELECT id, retailer, retailer_name, url, price, regular_price, currency,
		       COALESCE(image_url, ''), available, category, COALESCE(model_name, ''),
		       component_id, first_seen_at, last_seen_at
		FROM retailer_offers WHERE component_id = ?
		ORDER BY price IS NULL, price, id`, componentID)
}

// AssignComponent sets an offer's component reference. The reference is
// set-once: a second assignment is a no-op and reports false.
func (d *DB) AssignComponent(ctx context.Context, offerID, componentID int64) (bool, error) {
	res, err := d.sql.ExecContext(ctx, `
		UPDATE retailer_offers SET component_id = ?
		WHERE id = ? AND component_id IS NULL`, componentID, offerID)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (d *DB) queryOffers(ctx context.Context, query string, args ...any) ([]Offer, error) {
	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []Offer
	for rows.Next() {
		var o Offer
		var available int
		var componentID sql.NullInt64
		var firstSeen, lastSeen string
		if err := rows.Scan(&o.ID, &o.Retailer, &o.RetailerName, &o.URL, &o.Price,
			&o.RegularPrice, &o.Currency, &o.ImageURL, &available, &o.Category,
			&o.ModelName, &componentID, &firstSeen, &lastSeen); err != nil {
			return nil, err
		}
		o.Available = available == 1
		if componentID.Valid {
			o.ComponentID = &componentID.Int64
		}
		o.FirstSeenAt = parseTime(firstSeen)
		o.LastSeenAt = parseTime(lastSeen)
		offers = append(offers, o)
	}
	return offers, rows.Err()
}
