package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	"github.com/lib/pq"

	"github.com/victorlunam/schemr/internal/config"
	"github.com/victorlunam/schemr/internal/models"
)

// Postgres reads tables from the connection's current schema.
type Postgres struct{}

func (Postgres) DriverName() string { return "postgres" }

func (Postgres) DSN(params config.ConnectionParameters) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(params.User, params.Password),
		Host:   fmt.Sprintf("%s:%d", params.Host, params.Port),
		Path:   "/" + params.Database,
	}
	q := url.Values{}
	for k, v := range params.Params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (Postgres) ListTables(ctx context.Context, db *sql.DB, _ config.ConnectionParameters) ([]string, error) {
	return queryStrings(ctx, db, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
	`)
}

func (Postgres) Columns(ctx context.Context, db *sql.DB, _ config.ConnectionParameters, table string) ([]models.Column, error) {
	return queryColumns(ctx, db, `
		SELECT a.attname, format_type(a.atttypid, a.atttypmod), NOT a.attnotnull, pg_get_expr(d.adbin, d.adrelid)
		FROM pg_attribute a
		LEFT JOIN pg_attrdef d ON d.adrelid = a.attrelid AND d.adnum = a.attnum
		WHERE a.attrelid = $1::regclass AND a.attnum > 0 AND NOT a.attisdropped
		ORDER BY a.attnum
	`, pq.QuoteIdentifier(table))
}

func (Postgres) PrimaryKey(ctx context.Context, db *sql.DB, _ config.ConnectionParameters, table string) ([]string, error) {
	return queryStrings(ctx, db, `
		SELECT a.attname
		FROM pg_index i
		JOIN LATERAL unnest(i.indkey) WITH ORDINALITY AS k(attnum, ord) ON true
		JOIN pg_attribute a ON a.attrelid = i.indrelid AND a.attnum = k.attnum
		WHERE i.indrelid = $1::regclass AND i.indisprimary
		ORDER BY k.ord
	`, pq.QuoteIdentifier(table))
}

func (Postgres) Indexes(ctx context.Context, db *sql.DB, _ config.ConnectionParameters, table string) ([]models.Index, error) {
	return queryIndexes(ctx, db, `
		SELECT c.relname, a.attname, i.indisunique
		FROM pg_index i
		JOIN pg_class c ON c.oid = i.indexrelid
		JOIN LATERAL unnest(i.indkey) WITH ORDINALITY AS k(attnum, ord) ON true
		JOIN pg_attribute a ON a.attrelid = i.indrelid AND a.attnum = k.attnum
		WHERE i.indrelid = $1::regclass AND NOT i.indisprimary
		ORDER BY c.relname, k.ord
	`, pq.QuoteIdentifier(table))
}
