package imodel

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema is the table layout SQLiteProvider reads. It is a flattened view of a
// BIS repository: one row per subject, model partition, category, sub-category,
// definition container and geometric element.
const Schema = `
CREATE TABLE IF NOT EXISTS subjects (
	id TEXT PRIMARY KEY,
	parent_id TEXT,
	label TEXT NOT NULL DEFAULT '',
	target_partition_id TEXT,
	hide_in_hierarchy INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS models (
	id TEXT PRIMARY KEY,
	parent_id TEXT,
	label TEXT NOT NULL DEFAULT '',
	is_private INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS definition_containers (
	id TEXT PRIMARY KEY,
	parent_id TEXT,
	label TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS categories (
	id TEXT PRIMARY KEY,
	label TEXT NOT NULL DEFAULT '',
	definition_container_id TEXT
);

CREATE TABLE IF NOT EXISTS sub_categories (
	id TEXT PRIMARY KEY,
	category_id TEXT NOT NULL,
	label TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS elements (
	id TEXT PRIMARY KEY,
	model_id TEXT NOT NULL,
	category_id TEXT NOT NULL,
	parent_id TEXT,
	class_name TEXT NOT NULL,
	label TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_elements_model_category ON elements (model_id, category_id);
CREATE INDEX IF NOT EXISTS idx_elements_parent ON elements (parent_id);
`

// SeedSQLite creates the schema on db and inserts every row of the fixture in
// a single transaction.
func SeedSQLite(ctx context.Context, db *sql.DB, f Fixture) (err error) {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, s := range f.Subjects {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO subjects (id, parent_id, label, target_partition_id, hide_in_hierarchy) VALUES (?, ?, ?, ?, ?)`,
			s.ID, nullable(s.ParentID), s.Label, nullable(s.TargetPartitionID), s.HideInHierarchy); err != nil {
			return fmt.Errorf("insert subject %s: %w", s.ID, err)
		}
	}
	for _, m := range f.Models {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO models (id, parent_id, label, is_private) VALUES (?, ?, ?, ?)`,
			m.ID, nullable(m.ParentID), m.Label, m.IsPrivate); err != nil {
			return fmt.Errorf("insert model %s: %w", m.ID, err)
		}
	}
	for _, d := range f.DefinitionContainers {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO definition_containers (id, parent_id, label) VALUES (?, ?, ?)`,
			d.ID, nullable(d.ParentID), d.Label); err != nil {
			return fmt.Errorf("insert definition container %s: %w", d.ID, err)
		}
	}
	for _, c := range f.Categories {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO categories (id, label, definition_container_id) VALUES (?, ?, ?)`,
			c.ID, c.Label, nullable(c.DefinitionContainerID)); err != nil {
			return fmt.Errorf("insert category %s: %w", c.ID, err)
		}
	}
	for _, sc := range f.SubCategories {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO sub_categories (id, category_id, label) VALUES (?, ?, ?)`,
			sc.ID, sc.CategoryID, sc.Label); err != nil {
			return fmt.Errorf("insert sub-category %s: %w", sc.ID, err)
		}
	}
	for _, e := range f.Elements {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO elements (id, model_id, category_id, parent_id, class_name, label) VALUES (?, ?, ?, ?, ?, ?)`,
			e.ID, e.ModelID, e.CategoryID, nullable(e.ParentID), e.ClassName, e.Label); err != nil {
			return fmt.Errorf("insert element %s: %w", e.ID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
