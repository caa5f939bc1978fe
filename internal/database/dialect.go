package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/victorlunam/schemr/internal/config"
	"github.com/victorlunam/schemr/internal/models"
)

// Dialect holds the driver-specific metadata queries.
type Dialect interface {
	DriverName() string
	DSN(params config.ConnectionParameters) string
	ListTables(ctx context.Context, db *sql.DB, params config.ConnectionParameters) ([]string, error)
	Columns(ctx context.Context, db *sql.DB, params config.ConnectionParameters, table string) ([]models.Column, error)
	PrimaryKey(ctx context.Context, db *sql.DB, params config.ConnectionParameters, table string) ([]string, error)
	Indexes(ctx context.Context, db *sql.DB, params config.ConnectionParameters, table string) ([]models.Index, error)
}

func GetDialect(driver string) (Dialect, error) {
	switch driver {
	case "mysql":
		return &MySQL{}, nil
	case "postgres":
		return &Postgres{}, nil
	case "sqlite":
		return &SQLite{}, nil
	case "sqlserver":
		return &SQLServer{}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

func queryStrings(ctx context.Context, db *sql.DB, query string, args ...any) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// queryColumns scans (name, type, nullable, default) rows.
func queryColumns(ctx context.Context, db *sql.DB, query string, args ...any) ([]models.Column, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []models.Column
	for rows.Next() {
		var col models.Column
		var def sql.NullString
		if err := rows.Scan(&col.Name, &col.DataType, &col.IsNullable, &def); err != nil {
			return nil, err
		}
		if def.Valid {
			col.DefaultValue = &def.String
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

// queryIndexes scans (index, column, unique) rows ordered by index name and
// key position, grouping consecutive rows into one index.
func queryIndexes(ctx context.Context, db *sql.DB, query string, args ...any) ([]models.Index, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []models.Index
	for rows.Next() {
		var name, column string
		var unique bool
		if err := rows.Scan(&name, &column, &unique); err != nil {
			return nil, err
		}
		if n := len(indexes); n > 0 && indexes[n-1].Name == name {
			indexes[n-1].Columns = append(indexes[n-1].Columns, column)
			continue
		}
		indexes = append(indexes, models.Index{Name: name, Columns: []string{column}, IsUnique: unique})
	}
	return indexes, rows.Err()
}
