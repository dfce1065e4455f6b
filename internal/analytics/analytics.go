// Package analytics aggregates resolved annotation documents into an
// in-memory SQLite table and answers distribution queries over it.
package analytics

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/annohub/anno/internal/models"
	_ "modernc.org/sqlite"
)

// DB is an in-memory instance table. One row is stored per instance
// attribute; an instance without attributes is stored as a single row with
// empty attribute columns.
type DB struct {
	db *sql.DB
}

// ClassCount is a row of ClassDistribution.
type ClassCount struct {
	ClassName string
	Instances int
}

// AttributeCount is a row of AttributeDistribution.
type AttributeCount struct {
	Group     string
	Attribute string
	Count     int
}

// Open creates an empty in-memory database.
func Open(ctx context.Context) (*DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	schema := `
	CREATE TABLE instances (
		image TEXT NOT NULL,
		instance_idx INTEGER NOT NULL,
		type TEXT,
		class_name TEXT,
		class_id INTEGER,
		attribute_group TEXT,
		attribute_name TEXT
	);
	CREATE INDEX idx_instances_class ON instances(class_name);
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close releases the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Load inserts the instances of doc under image. Documents without an
// instances array contribute nothing.
func (d *DB) Load(ctx context.Context, image string, doc models.Document) error {
	instances, _ := doc[models.KeyInstances].([]interface{})
	if len(instances) == 0 {
		return nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO instances
		(image, instance_idx, type, class_name, class_id, attribute_group, attribute_name)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, raw := range instances {
		inst, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		typ, _ := inst[models.KeyType].(string)
		className, _ := inst[models.KeyClassName].(string)
		classID := toNullInt(inst[models.KeyClassID])

		attrs, _ := inst[models.KeyAttributes].([]interface{})
		if len(attrs) == 0 {
			if _, err := stmt.ExecContext(ctx, image, i, typ, className, classID, nil, nil); err != nil {
				return fmt.Errorf("insert instance: %w", err)
			}
			continue
		}
		for _, a := range attrs {
			attr, _ := a.(map[string]interface{})
			group, _ := attr[models.KeyGroupName].(string)
			name, _ := attr[models.KeyName].(string)
			if _, err := stmt.ExecContext(ctx, image, i, typ, className, classID, group, name); err != nil {
				return fmt.Errorf("insert instance: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ClassDistribution counts instances per class name, most frequent first.
// Instances without a class are reported under the empty name.
func (d *DB) ClassDistribution(ctx context.Context) ([]ClassCount, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT class_name, COUNT(DISTINCT image || ':' || instance_idx) AS n
		FROM instances
		GROUP BY class_name
		ORDER BY n DESC, class_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query class distribution: %w", err)
	}
	defer rows.Close()

	var out []ClassCount
	for rows.Next() {
		var c ClassCount
		if err := rows.Scan(&c.ClassName, &c.Instances); err != nil {
			return nil, fmt.Errorf("scan class count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AttributeDistribution counts attribute usage within one class.
func (d *DB) AttributeDistribution(ctx context.Context, className string) ([]AttributeCount, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT attribute_group, attribute_name, COUNT(*) AS n
		FROM instances
		WHERE class_name = ? AND attribute_group IS NOT NULL
		GROUP BY attribute_group, attribute_name
		ORDER BY n DESC, attribute_group ASC, attribute_name ASC`, className)
	if err != nil {
		return nil, fmt.Errorf("query attribute distribution: %w", err)
	}
	defer rows.Close()

	var out []AttributeCount
	for rows.Next() {
		var c AttributeCount
		if err := rows.Scan(&c.Group, &c.Attribute, &c.Count); err != nil {
			return nil, fmt.Errorf("scan attribute count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Images returns the number of distinct images with at least one instance.
func (d *DB) Images(ctx context.Context) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT image) FROM instances").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count images: %w", err)
	}
	return n, nil
}

func toNullInt(v interface{}) sql.NullInt64 {
	switch n := v.(type) {
	case int:
		return sql.NullInt64{Int64: int64(n), Valid: true}
	case float64:
		return sql.NullInt64{Int64: int64(n), Valid: true}
	case interface{ Int64() (int64, error) }:
		if i, err := n.Int64(); err == nil {
			return sql.NullInt64{Int64: i, Valid: true}
		}
	}
	return sql.NullInt64{}
}
