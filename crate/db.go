package crate

import (
	"context"
	"database/sql"
	"fmt"
)

// LoadFromDB reads enabled crates and their items from the crates and
// crate_items tables.
func LoadFromDB(ctx context.Context, db *sql.DB) ([]Config, error) {
	if db == nil {
		return nil, fmt.Errorf("no db")
	}
	rows, err := db.QueryContext(ctx, `
		SELECT c.crate_id, COALESCE(c.name, ''), i.item_id, COALESCE(i.name, ''), i.weight,
		       COALESCE(i.rarity, ''), COALESCE(i.image, '')
		FROM crates c
		JOIN crate_items i ON i.crate_id = c.crate_id
		WHERE c.enabled = true
		ORDER BY c.crate_id, i.position, i.item_id
	`)
	if err != nil {
		return nil, fmt.Errorf("query crates: %w", err)
	}
	defer rows.Close()

	var out []Config
	index := map[string]int{}
	for rows.Next() {
		var crateID, crateName string
		var it Item
		if err := rows.Scan(&crateID, &crateName, &it.ID, &it.Name, &it.Weight, &it.Rarity, &it.Image); err != nil {
			return nil, fmt.Errorf("scan crate row: %w", err)
		}
		i, ok := index[crateID]
		if !ok {
			i = len(out)
			index[crateID] = i
			out = append(out, Config{ID: crateID, Name: crateName})
		}
		out[i].Items = append(out[i].Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read crate rows: %w", err)
	}
	return out, nil
}

// SaveToDB upserts a crate and replaces its item pool in one transaction.
func SaveToDB(ctx context.Context, db *sql.DB, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO crates (crate_id, name, enabled)
		VALUES ($1, $2, true)
		ON CONFLICT (crate_id) DO UPDATE
		SET name = EXCLUDED.name, enabled = true, updated_at = now()
	`, cfg.ID, cfg.Name); err != nil {
		return fmt.Errorf("upsert crate %s: %w", cfg.ID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM crate_items WHERE crate_id = $1`, cfg.ID); err != nil {
		return fmt.Errorf("clear items of %s: %w", cfg.ID, err)
	}
	for pos, it := range cfg.Items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO crate_items (crate_id, item_id, name, weight, rarity, image, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, cfg.ID, it.ID, it.Name, it.Weight, it.Rarity, it.Image, pos); err != nil {
			return fmt.Errorf("insert item %d of %s: %w", it.ID, cfg.ID, err)
		}
	}
	return tx.Commit()
}
