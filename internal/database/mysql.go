package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/victorlunam/schemr/internal/config"
	"github.com/victorlunam/schemr/internal/models"
)

type MySQL struct{}

func (MySQL) DriverName() string { return "mysql" }

func (MySQL) DSN(params config.ConnectionParameters) string {
	cfg := mysql.NewConfig()
	cfg.User = params.User
	cfg.Passwd = params.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", params.Host, params.Port)
	cfg.DBName = params.Database
	if len(params.Params) > 0 {
		cfg.Params = params.Params
	}
	return cfg.FormatDSN()
}

func (MySQL) ListTables(ctx context.Context, db *sql.DB, params config.ConnectionParameters) ([]string, error) {
	return queryStrings(ctx, db, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
	`, params.Database)
}

func (MySQL) Columns(ctx context.Context, db *sql.DB, params config.ConnectionParameters, table string) ([]models.Column, error) {
	return queryColumns(ctx, db, `
		SELECT column_name, column_type, is_nullable = 'YES', column_default
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position
	`, params.Database, table)
}

func (MySQL) PrimaryKey(ctx context.Context, db *sql.DB, params config.ConnectionParameters, table string) ([]string, error) {
	return queryStrings(ctx, db, `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ? AND table_name = ? AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position
	`, params.Database, table)
}

func (MySQL) Indexes(ctx context.Context, db *sql.DB, params config.ConnectionParameters, table string) ([]models.Index, error) {
	return queryIndexes(ctx, db, `
		SELECT index_name, column_name, non_unique = 0
		FROM information_schema.statistics
		WHERE table_schema = ? AND table_name = ? AND index_name != 'PRIMARY'
		ORDER BY index_name, seq_in_index
	`, params.Database, table)
}
