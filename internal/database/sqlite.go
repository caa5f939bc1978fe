package database

import (
	"context"
	"database/sql"
	"net/url"
	"sort"

	_ "github.com/mattn/go-sqlite3"

	"github.com/victorlunam/schemr/internal/config"
	"github.com/victorlunam/schemr/internal/models"
)

type SQLite struct{}

func (SQLite) DriverName() string { return "sqlite3" }

func (SQLite) DSN(params config.ConnectionParameters) string {
	path := params.Path
	if path == "" {
		path = params.Database
	}
	if len(params.Params) == 0 {
		return path
	}

	q := url.Values{}
	for k, v := range params.Params {
		q.Set(k, v)
	}
	return "file:" + path + "?" + q.Encode()
}

func (SQLite) ListTables(ctx context.Context, db *sql.DB, _ config.ConnectionParameters) ([]string, error) {
	return queryStrings(ctx, db, "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'")
}

func (SQLite) Columns(ctx context.Context, db *sql.DB, _ config.ConnectionParameters, table string) ([]models.Column, error) {
	return queryColumns(ctx, db, `SELECT name, type, "notnull" = 0, dflt_value FROM pragma_table_info(?) ORDER BY cid`, table)
}

func (SQLite) PrimaryKey(ctx context.Context, db *sql.DB, _ config.ConnectionParameters, table string) ([]string, error) {
	return queryStrings(ctx, db, `SELECT name FROM pragma_table_info(?) WHERE pk > 0 ORDER BY pk`, table)
}

func (SQLite) Indexes(ctx context.Context, db *sql.DB, _ config.ConnectionParameters, table string) ([]models.Index, error) {
	rows, err := db.QueryContext(ctx, `SELECT name, "unique" FROM pragma_index_list(?) WHERE origin != 'pk'`, table)
	if err != nil {
		return nil, err
	}

	var indexes []models.Index
	for rows.Next() {
		var idx models.Index
		if err := rows.Scan(&idx.Name, &idx.IsUnique); err != nil {
			rows.Close()
			return nil, err
		}
		indexes = append(indexes, idx)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// index columns are read after the list is closed; the pool may hold a
	// single connection
	for i := range indexes {
		cols, err := queryStrings(ctx, db, `SELECT name FROM pragma_index_info(?) ORDER BY seqno`, indexes[i].Name)
		if err != nil {
			return nil, err
		}
		indexes[i].Columns = cols
	}
	sort.Slice(indexes, func(i, j int) bool { return indexes[i].Name < indexes[j].Name })

	return indexes, nil
}
