package imodel

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver, WAL-friendly
)

// SQLiteProvider reads the hierarchy directly from a SQLite database laid out
// per Schema, in read-only WAL mode. A connection is opened per call so the
// file can be replaced underneath a running session.
type SQLiteProvider struct {
	dbPath string
	dsn    string
}

var _ QueryProvider = (*SQLiteProvider)(nil)

// NewSQLiteProvider constructs a provider for dbPath. A valid dbPath is required.
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	trimmed := strings.TrimSpace(dbPath)
	if trimmed == "" {
		return nil, fmt.Errorf("dbPath is required")
	}
	return &SQLiteProvider{
		dbPath: trimmed,
		dsn:    buildSQLiteDSN(trimmed),
	}, nil
}

// Path returns the database file the provider reads.
func (p *SQLiteProvider) Path() string {
	return p.dbPath
}

// buildSQLiteDSN creates a read-only WAL DSN for the given path.
func buildSQLiteDSN(dbPath string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(dbPath),
	}
	q := url.Values{}
	q.Set("mode", "ro")
	q.Set("_journal_mode", "WAL")
	q.Set("_busy_timeout", "3000")
	q.Set("cache", "shared")
	u.RawQuery = q.Encode()
	return u.String()
}

func (p *SQLiteProvider) openDB(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("sqlite", p.dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return db, nil
}

// withDB opens a connection, runs fn and wraps any failure as a query error.
func (p *SQLiteProvider) withDB(ctx context.Context, op string, fn func(*sql.DB) error) error {
	db, err := p.openDB(ctx)
	if err != nil {
		return queryError(op, err)
	}
	defer func() {
		_ = db.Close()
	}()
	if err := fn(db); err != nil {
		return queryError(op, err)
	}
	return nil
}

func (p *SQLiteProvider) QueryAllSubjects(ctx context.Context) ([]SubjectRow, error) {
	var out []SubjectRow
	err := p.withDB(ctx, "subjects", func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `
			SELECT id, COALESCE(parent_id, ''), label, COALESCE(target_partition_id, ''), hide_in_hierarchy
			FROM subjects
			ORDER BY label, id
		`)
		if err != nil {
			return err
		}
		defer func() {
			_ = rows.Close()
		}()
		for rows.Next() {
			var s SubjectRow
			if err := rows.Scan(&s.ID, &s.ParentID, &s.Label, &s.TargetPartitionID, &s.HideInHierarchy); err != nil {
				return fmt.Errorf("scan subject: %w", err)
			}
			out = append(out, s)
		}
		return rows.Err()
	})
	return out, err
}

func (p *SQLiteProvider) QueryAllModels(ctx context.Context) ([]ModelRow, error) {
	var out []ModelRow
	err := p.withDB(ctx, "models", func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `
			SELECT id, COALESCE(parent_id, ''), label
			FROM models
			WHERE is_private = 0
			ORDER BY label, id
		`)
		if err != nil {
			return err
		}
		defer func() {
			_ = rows.Close()
		}()
		for rows.Next() {
			var m ModelRow
			if err := rows.Scan(&m.ID, &m.ParentID, &m.Label); err != nil {
				return fmt.Errorf("scan model: %w", err)
			}
			out = append(out, m)
		}
		return rows.Err()
	})
	return out, err
}

func (p *SQLiteProvider) QueryModelCategories(ctx context.Context, modelID string) ([]CategoryRow, error) {
	var out []CategoryRow
	err := p.withDB(ctx, "model categories", func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `
			SELECT DISTINCT c.id, c.label, COALESCE(c.definition_container_id, '')
			FROM categories c
			INNER JOIN elements e ON e.category_id = c.id
			WHERE e.model_id = ? AND e.parent_id IS NULL
			ORDER BY c.label, c.id
		`, modelID)
		if err != nil {
			return err
		}
		out, err = scanCategories(rows)
		return err
	})
	return out, err
}

func (p *SQLiteProvider) QueryAllCategories(ctx context.Context) ([]CategoryRow, error) {
	var out []CategoryRow
	err := p.withDB(ctx, "categories", func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `
			SELECT id, label, COALESCE(definition_container_id, '')
			FROM categories
			ORDER BY label, id
		`)
		if err != nil {
			return err
		}
		out, err = scanCategories(rows)
		return err
	})
	return out, err
}

func scanCategories(rows *sql.Rows) ([]CategoryRow, error) {
	defer func() {
		_ = rows.Close()
	}()
	var out []CategoryRow
	for rows.Next() {
		var c CategoryRow
		if err := rows.Scan(&c.ID, &c.Label, &c.DefinitionContainerID); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const elementColumns = `e.id, e.model_id, e.category_id, COALESCE(e.parent_id, ''), e.class_name, e.label,
	EXISTS (SELECT 1 FROM elements c WHERE c.parent_id = e.id)`

func scanElements(rows *sql.Rows) ([]ElementRow, error) {
	defer func() {
		_ = rows.Close()
	}()
	var out []ElementRow
	for rows.Next() {
		var e ElementRow
		if err := rows.Scan(&e.ID, &e.ModelID, &e.CategoryID, &e.ParentID, &e.ClassName, &e.Label, &e.HasChildren); err != nil {
			return nil, fmt.Errorf("scan element: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (p *SQLiteProvider) QueryCategoryElements(ctx context.Context, categoryID, modelID string) ([]ElementRow, error) {
	var out []ElementRow
	err := p.withDB(ctx, "category elements", func(db *sql.DB) error {
		query := `SELECT ` + elementColumns + ` FROM elements e WHERE e.category_id = ? AND e.parent_id IS NULL`
		args := []any{categoryID}
		if modelID != "" {
			query += ` AND e.model_id = ?`
			args = append(args, modelID)
		}
		query += ` ORDER BY e.label, e.id`
		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		out, err = scanElements(rows)
		return err
	})
	return out, err
}

func (p *SQLiteProvider) QueryElementChildren(ctx context.Context, elementID string) ([]ElementRow, error) {
	var out []ElementRow
	err := p.withDB(ctx, "element children", func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `SELECT `+elementColumns+` FROM elements e WHERE e.parent_id = ? ORDER BY e.label, e.id`, elementID)
		if err != nil {
			return err
		}
		out, err = scanElements(rows)
		return err
	})
	return out, err
}

func (p *SQLiteProvider) QueryGroupedElements(ctx context.Context, key GroupingKey) ([]string, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	var ids []string
	err := p.withDB(ctx, "grouped elements", func(db *sql.DB) error {
		query := `SELECT e.id FROM elements e WHERE e.class_name = ?`
		args := []any{key.ClassName}
		if key.ParentElementID != "" {
			query += ` AND e.parent_id = ?`
			args = append(args, key.ParentElementID)
		} else {
			query += ` AND e.parent_id IS NULL AND e.category_id = ?`
			args = append(args, key.CategoryID)
			if key.ModelID != "" {
				query += ` AND e.model_id = ?`
				args = append(args, key.ModelID)
			}
		}
		query += ` ORDER BY e.label, e.id`
		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer func() {
			_ = rows.Close()
		}()
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return fmt.Errorf("scan element id: %w", err)
			}
			ids = append(ids, id)
		}
		return rows.Err()
	})
	return ids, err
}

func (p *SQLiteProvider) QueryElementInfo(ctx context.Context, elementIDs []string) ([]ElementRow, error) {
	if len(elementIDs) == 0 {
		return []ElementRow{}, nil
	}
	var out []ElementRow
	err := p.withDB(ctx, "element info", func(db *sql.DB) error {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(elementIDs)), ",")
		args := make([]any, len(elementIDs))
		for i, id := range elementIDs {
			args[i] = id
		}
		rows, err := db.QueryContext(ctx, `SELECT `+elementColumns+` FROM elements e WHERE e.id IN (`+placeholders+`)`, args...)
		if err != nil {
			return err
		}
		out, err = scanElements(rows)
		return err
	})
	return out, err
}

func (p *SQLiteProvider) QuerySubCategories(ctx context.Context, categoryID string) ([]SubCategoryRow, error) {
	var out []SubCategoryRow
	err := p.withDB(ctx, "sub-categories", func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `
			SELECT id, category_id, label
			FROM sub_categories
			WHERE category_id = ?
			ORDER BY label, id
		`, categoryID)
		if err != nil {
			return err
		}
		defer func() {
			_ = rows.Close()
		}()
		for rows.Next() {
			var sc SubCategoryRow
			if err := rows.Scan(&sc.ID, &sc.CategoryID, &sc.Label); err != nil {
				return fmt.Errorf("scan sub-category: %w", err)
			}
			out = append(out, sc)
		}
		return rows.Err()
	})
	return out, err
}

func (p *SQLiteProvider) QueryDefinitionContainers(ctx context.Context) ([]DefinitionContainerRow, error) {
	var out []DefinitionContainerRow
	err := p.withDB(ctx, "definition containers", func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `
			SELECT id, COALESCE(parent_id, ''), label
			FROM definition_containers
			ORDER BY label, id
		`)
		if err != nil {
			return err
		}
		defer func() {
			_ = rows.Close()
		}()
		for rows.Next() {
			var d DefinitionContainerRow
			if err := rows.Scan(&d.ID, &d.ParentID, &d.Label); err != nil {
				return fmt.Errorf("scan definition container: %w", err)
			}
			out = append(out, d)
		}
		return rows.Err()
	})
	return out, err
}
