package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/denisenkom/go-mssqldb"

	"github.com/victorlunam/schemr/internal/config"
	"github.com/victorlunam/schemr/internal/models"
)

// SQLServer reads user tables of the dbo schema.
type SQLServer struct{}

func (SQLServer) DriverName() string { return "sqlserver" }

func (SQLServer) DSN(params config.ConnectionParameters) string {
	query := url.Values{}
	query.Add("app name", "schemr")
	query.Add("database", params.Database)
	query.Add("TrustServerCertificate", "true")
	for k, v := range params.Params {
		query.Set(k, v)
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(params.User, params.Password),
		Host:     fmt.Sprintf("%s:%d", params.Host, params.Port),
		RawQuery: query.Encode(),
	}
	return u.String()
}

func (SQLServer) ListTables(ctx context.Context, db *sql.DB, _ config.ConnectionParameters) ([]string, error) {
	return queryStrings(ctx, db, `
	SELECT t.name
	FROM sys.tables t
	WHERE t.is_ms_shipped = 0 AND SCHEMA_NAME(t.schema_id) = 'dbo'
	`)
}

func (SQLServer) Columns(ctx context.Context, db *sql.DB, _ config.ConnectionParameters, table string) ([]models.Column, error) {
	return queryColumns(ctx, db, `
	SELECT
		c.name,
		tp.name +
		CASE
			WHEN tp.name IN ('varchar', 'char', 'varbinary', 'binary') THEN '(' +
				CASE WHEN c.max_length = -1 THEN 'max' ELSE CAST(c.max_length AS VARCHAR(10)) END + ')'
			WHEN tp.name IN ('nvarchar', 'nchar') THEN '(' +
				CASE WHEN c.max_length = -1 THEN 'max' ELSE CAST(c.max_length/2 AS VARCHAR(10)) END + ')'
			WHEN tp.name IN ('decimal', 'numeric') THEN '(' + CAST(c.precision AS VARCHAR(10)) + ',' + CAST(c.scale AS VARCHAR(10)) + ')'
			ELSE ''
		END,
		c.is_nullable,
		dc.definition
	FROM
		sys.columns c
	JOIN
		sys.types tp ON c.user_type_id = tp.user_type_id
	LEFT JOIN
		sys.default_constraints dc ON c.default_object_id = dc.object_id
	WHERE
		c.object_id = OBJECT_ID(@table)
	ORDER BY
		c.column_id
	`, sql.Named("table", qualified(table)))
}

func (SQLServer) PrimaryKey(ctx context.Context, db *sql.DB, _ config.ConnectionParameters, table string) ([]string, error) {
	return queryStrings(ctx, db, `
	SELECT c.name
	FROM sys.indexes i
	JOIN sys.index_columns ic ON i.object_id = ic.object_id AND i.index_id = ic.index_id
	JOIN sys.columns c ON ic.object_id = c.object_id AND ic.column_id = c.column_id
	WHERE i.object_id = OBJECT_ID(@table) AND i.is_primary_key = 1
	ORDER BY ic.key_ordinal
	`, sql.Named("table", qualified(table)))
}

func (SQLServer) Indexes(ctx context.Context, db *sql.DB, _ config.ConnectionParameters, table string) ([]models.Index, error) {
	return queryIndexes(ctx, db, `
	SELECT i.name, c.name, i.is_unique
	FROM sys.indexes i
	JOIN sys.index_columns ic ON i.object_id = ic.object_id AND i.index_id = ic.index_id
	JOIN sys.columns c ON ic.object_id = c.object_id AND ic.column_id = c.column_id
	WHERE i.object_id = OBJECT_ID(@table)
		AND i.is_primary_key = 0
		AND i.name IS NOT NULL
		AND ic.is_included_column = 0
	ORDER BY i.name, ic.key_ordinal
	`, sql.Named("table", qualified(table)))
}

func qualified(table string) string {
	return "[dbo].[" + table + "]"
}
