package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"

	"github.com/victorlunam/schemr/internal/config"
	"github.com/victorlunam/schemr/internal/models"
	"github.com/victorlunam/schemr/internal/snapshot"
)

type Database struct {
	Config  config.ConnectionParameters
	DB      *sql.DB
	dialect Dialect
}

func Connect(params config.ConnectionParameters) (*Database, error) {
	dialect, err := GetDialect(params.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.DriverName(), dialect.DSN(params))
	if err != nil {
		return nil, err
	}

	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Database{
		Config:  params,
		DB:      db,
		dialect: dialect,
	}, nil
}

func (d *Database) Close() error {
	return d.DB.Close()
}

// ListTables returns the base tables of the configured database, sorted.
func (d *Database) ListTables(ctx context.Context) ([]string, error) {
	tables, err := d.dialect.ListTables(ctx, d.DB, d.Config)
	if err != nil {
		return nil, err
	}
	sort.Strings(tables)
	return tables, nil
}

func (d *Database) GetTableSchema(ctx context.Context, name string) (models.TableSchema, error) {
	table := models.TableSchema{Name: name}
	var err error

	table.Columns, err = d.dialect.Columns(ctx, d.DB, d.Config, name)
	if err != nil {
		return table, fmt.Errorf("error reading columns of %s: %w", name, err)
	}
	table.PrimaryKey, err = d.dialect.PrimaryKey(ctx, d.DB, d.Config, name)
	if err != nil {
		return table, fmt.Errorf("error reading primary key of %s: %w", name, err)
	}
	table.Indexes, err = d.dialect.Indexes(ctx, d.DB, d.Config, name)
	if err != nil {
		return table, fmt.Errorf("error reading indexes of %s: %w", name, err)
	}

	if table.Columns == nil {
		table.Columns = []models.Column{}
	}
	if table.PrimaryKey == nil {
		table.PrimaryKey = []string{}
	}
	if table.Indexes == nil {
		table.Indexes = []models.Index{}
	}

	return table, nil
}

// Extract reads the structure of every table.
func (d *Database) Extract(ctx context.Context) (models.SnapshotManifest, []models.TableSchema, error) {
	names, err := d.ListTables(ctx)
	if err != nil {
		return models.SnapshotManifest{}, nil, fmt.Errorf("error listing tables: %w", err)
	}

	tables := make([]models.TableSchema, 0, len(names))
	for _, name := range names {
		table, err := d.GetTableSchema(ctx, name)
		if err != nil {
			return models.SnapshotManifest{}, nil, err
		}
		slog.Debug("table extracted",
			slog.String("env", d.Config.Name),
			slog.String("table", name),
			slog.Int("columns", len(table.Columns)),
			slog.Int("indexes", len(table.Indexes)),
		)
		tables = append(tables, table)
	}

	return models.SnapshotManifest{Tables: names}, tables, nil
}

// Dump extracts the database and stores it as a snapshot. The manifest is
// written last so a failed dump never looks complete.
func Dump(ctx context.Context, d *Database, w *snapshot.Writer) (models.SnapshotManifest, error) {
	manifest, tables, err := d.Extract(ctx)
	if err != nil {
		return manifest, err
	}

	for _, table := range tables {
		if err := w.WriteTable(table); err != nil {
			return manifest, fmt.Errorf("error writing table %s: %w", table.Name, err)
		}
	}
	if err := w.WriteManifest(manifest); err != nil {
		return manifest, err
	}

	slog.Info("schema dumped",
		slog.String("env", d.Config.Name),
		slog.String("path", w.Path()),
		slog.Int("table_count", len(tables)),
	)
	return manifest, nil
}
