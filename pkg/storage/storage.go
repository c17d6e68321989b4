package storage

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

const defaultCurrency = "BDT"

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS categories (
  id        INTEGER PRIMARY KEY,
  name      TEXT NOT NULL UNIQUE,
  slug      TEXT NOT NULL,
  image_url TEXT
);
CREATE TABLE IF NOT EXISTS components (
  id          INTEGER PRIMARY KEY,
  category_id INTEGER NOT NULL REFERENCES categories(id),
  name        TEXT NOT NULL,
  brand       TEXT NOT NULL DEFAULT '',
  model       TEXT NOT NULL DEFAULT '',
  specs       TEXT NOT NULL DEFAULT '{}',
  created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(name, brand, model, category_id)
);
CREATE INDEX IF NOT EXISTS idx_components_category ON components(category_id);
CREATE TABLE IF NOT EXISTS retailer_offers (
  id            INTEGER PRIMARY KEY,
  retailer      TEXT NOT NULL,
  retailer_name TEXT NOT NULL,
  url           TEXT NOT NULL,
  price         INTEGER,
  regular_price INTEGER,
  currency      TEXT NOT NULL DEFAULT 'BDT',
  image_url     TEXT,
  available     INTEGER NOT NULL CHECK (available IN (0,1)),
  category      TEXT NOT NULL,
  model_name    TEXT,
  component_id  INTEGER REFERENCES components(id),
  first_seen_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  last_seen_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(retailer, retailer_name, url)
);
CREATE INDEX IF NOT EXISTS idx_offers_component ON retailer_offers(component_id);
CREATE INDEX IF NOT EXISTS idx_offers_category ON retailer_offers(category);
CREATE TABLE IF NOT EXISTS price_observations (
  id           INTEGER PRIMARY KEY,
  component_id INTEGER NOT NULL REFERENCES components(id),
  retailer     TEXT NOT NULL,
  price        INTEGER NOT NULL,
  currency     TEXT NOT NULL DEFAULT 'BDT',
  observed_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_obs_component ON price_observations(component_id, observed_at);
    `); err != nil {
		return nil, err
	}
	d := &DB{sql: db}
	if err := d.seedCategories(); err != nil {
		return nil, err
	}
	return d, nil
}

// seedCategories inserts the fixed category set. Idempotent.
func (d *DB) seedCategories() error {
	seed := []struct{ name, slug string }{
		{"CPU", "cpu"},
		{"Memory", "memory"},
		{"Monitor", "monitor"},
	}
	for _, c := range seed {
		if _, err := d.sql.Exec(
			"INSERT OR IGNORE INTO categories(name, slug) VALUES(?, ?)", c.name, c.slug); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// ListCategories returns all categories with their component counts.
func (d *DB) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := d.sql.QueryContext(ctx, `
		SELECT c.id, c.name, c.slug, COALESCE(c.image_url, ''), COUNT(k.id)
		FROM categories c
		LEFT JOIN components k ON k.category_id = c.id
		GROUP BY c.id ORDER BY c.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.ImageURL, &c.ComponentCount); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (d *DB) categoryID(ctx context.Context, name string) (int64, error) {
	var id int64
	err := d.sql.QueryRowContext(ctx,
		"SELECT id FROM categories WHERE name = ? COLLATE NOCASE", name).Scan(&id)
	return id, err
}

// parseTime handles the SQLite CURRENT_TIMESTAMP format, falling back to
// RFC3339 and then the zero time.
func parseTime(s string) time.Time {
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
