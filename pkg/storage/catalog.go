package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/partscope/partscope/internal/utils"
)

// ImportResult reports the outcome of a catalog import batch.
type ImportResult struct {
	Added   int
	Updated int
	Skipped int
}

// UpsertComponents imports a category-tagged batch of canonical catalog
// records. The identity key is (name, brand, model, category): re-importing
// an identical batch updates rows in place. Records without a name are
// skipped; a missing brand defaults to the first word of the name.
func (d *DB) UpsertComponents(ctx context.Context, category string, inputs []ComponentInput) (ImportResult, error) {
	var res ImportResult

	catID, err := d.categoryID(ctx, category)
	if err != nil {
		return res, fmt.Errorf("unknown category %q: %w", category, err)
	}

	for _, in := range inputs {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			utils.Log.Warn("catalog import: skipping record without a name")
			res.Skipped++
			continue
		}
		brand := strings.TrimSpace(in.Brand)
		if brand == "" {
			brand = strings.Fields(name)[0]
		}

		specs := in.Specs
		if specs == nil {
			specs = map[string]string{}
		}
		specsJSON, err := json.Marshal(specs)
		if err != nil {
			res.Skipped++
			continue
		}

		var id int64
		err = d.sql.QueryRowContext(ctx, `
			SELECT id FROM components
			WHERE name = ? AND brand = ? AND model = ? AND category_id = ?`,
			name, brand, in.Model, catID).Scan(&id)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if _, err := d.sql.ExecContext(ctx, `
				INSERT INTO components(category_id, name, brand, model, specs)
				VALUES(?, ?, ?, ?, ?)`,
				catID, name, brand, in.Model, string(specsJSON)); err != nil {
				return res, err
			}
			res.Added++
		case err != nil:
			return res, err
		default:
			if _, err := d.sql.ExecContext(ctx, `
				UPDATE components SET specs = ?, updated_at = CURRENT_TIMESTAMP
				WHERE id = ?`, string(specsJSON), id); err != nil {
				return res, err
			}
			res.Updated++
		}
	}
	return res, nil
}

// ComponentsByCategory returns a category's components ordered by id. With an
// empty category it returns the full catalog, still in id order so matching
// stays deterministic.
func (d *DB) ComponentsByCategory(ctx context.Context, category string) ([]Component, error) {
	query := `
		SELECT k.id, c.name, k.name, k.brand, k.model, k.specs
		FROM components k JOIN categories c ON c.id = k.category_id`
	args := []any{}
	if category != "" {
		query += " WHERE c.name = ? COLLATE NOCASE"
		args = append(args, category)
	}
	query += " ORDER BY k.id"

	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comps []Component
	for rows.Next() {
		c, err := scanComponent(rows)
		if err != nil {
			return nil, err
		}
		comps = append(comps, c)
	}
	return comps, rows.Err()
}

// GetComponent returns one component by id.
func (d *DB) GetComponent(ctx context.Context, id int64) (Component, error) {
	row := d.sql.QueryRowContext(ctx, `
		SELECT k.id, c.name, k.name, k.brand, k.model, k.specs
		FROM components k JOIN categories c ON c.id = k.category_id
		WHERE k.id = ?`, id)

	var c Component
	var specsJSON string
	if err := row.Scan(&c.ID, &c.Category, &c.Name, &c.Brand, &c.Model, &specsJSON); err != nil {
		return c, err
	}
	if err := json.Unmarshal([]byte(specsJSON), &c.Specs); err != nil {
		c.Specs = map[string]string{}
	}
	return c, nil
}

func scanComponent(rows *sql.Rows) (Component, error) {
	var c Component
	var specsJSON string
	if err := rows.Scan(&c.ID, &c.Category, &c.Name, &c.Brand, &c.Model, &specsJSON); err != nil {
		return c, err
	}
	if err := json.Unmarshal([]byte(specsJSON), &c.Specs); err != nil {
		// A malformed specs blob degrades to an empty mapping rather than
		// failing the whole query.
		c.Specs = map[string]string{}
	}
	return c, nil
}
