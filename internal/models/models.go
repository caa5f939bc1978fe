package models

import (
	"fmt"
	"slices"
)

// Column is one column of a captured table.
type Column struct {
	Name         string  `json:"name"`
	DataType     string  `json:"dataType"`
	IsNullable   bool    `json:"isNullable"`
	DefaultValue *string `json:"defaultValue"`
}

// Index is a secondary index. Columns keep key order.
type Index struct {
	Name     string   `json:"name"`
	Columns  []string `json:"columns"`
	IsUnique bool     `json:"isUnique"`
}

type TableSchema struct {
	Name       string   `json:"name"`
	Columns    []Column `json:"columns"`
	PrimaryKey []string `json:"primaryKey"`
	Indexes    []Index  `json:"indexes"`
}

// SnapshotManifest lists the tables present in one snapshot.
type SnapshotManifest struct {
	Tables []string `json:"tables"`
}

// DuplicateError reports a table document that repeats a column or index name.
type DuplicateError struct {
	Table string
	Kind  string // "column" or "index"
	Name  string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("incomplete table %s: duplicate %s %q", e.Table, e.Kind, e.Name)
}

// Validate checks that column names and index names are unique within the table.
func (t TableSchema) Validate() error {
	seen := make(map[string]struct{}, len(t.Columns))
	for _, col := range t.Columns {
		if _, ok := seen[col.Name]; ok {
			return &DuplicateError{Table: t.Name, Kind: "column", Name: col.Name}
		}
		seen[col.Name] = struct{}{}
	}

	seen = make(map[string]struct{}, len(t.Indexes))
	for _, idx := range t.Indexes {
		if _, ok := seen[idx.Name]; ok {
			return &DuplicateError{Table: t.Name, Kind: "index", Name: idx.Name}
		}
		seen[idx.Name] = struct{}{}
	}

	return nil
}

func (t TableSchema) ColumnsByName() map[string]Column {
	m := make(map[string]Column, len(t.Columns))
	for _, col := range t.Columns {
		m[col.Name] = col
	}
	return m
}

func (t TableSchema) IndexesByName() map[string]Index {
	m := make(map[string]Index, len(t.Indexes))
	for _, idx := range t.Indexes {
		m[idx.Name] = idx
	}
	return m
}

// Change holds the value seen in environment A and in environment B.
type Change[T any] struct {
	A T
	B T
}

type ColumnDiff struct {
	Name     string
	DataType *Change[string]
	Nullable *Change[bool]
	Default  *Change[*string]
}

func (d ColumnDiff) IsEmpty() bool {
	return d.DataType == nil && d.Nullable == nil && d.Default == nil
}

type IndexDiff struct {
	Name    string
	Columns *Change[[]string]
	Unique  *Change[bool]
}

func (d IndexDiff) IsEmpty() bool {
	return d.Columns == nil && d.Unique == nil
}

// TableDiff collects the differences of one table present in both environments.
type TableDiff struct {
	Name           string
	ColumnsOnlyInA []string
	ColumnsOnlyInB []string
	Columns        []ColumnDiff
	IndexesOnlyInA []Index
	IndexesOnlyInB []Index
	Indexes        []IndexDiff
	PrimaryKey     *Change[[]string]
}

func (d TableDiff) IsEmpty() bool {
	return len(d.ColumnsOnlyInA) == 0 &&
		len(d.ColumnsOnlyInB) == 0 &&
		len(d.Columns) == 0 &&
		len(d.IndexesOnlyInA) == 0 &&
		len(d.IndexesOnlyInB) == 0 &&
		len(d.Indexes) == 0 &&
		d.PrimaryKey == nil
}

// Summary lists the tables present in only one environment.
type Summary struct {
	OnlyInA []string
	OnlyInB []string
}

func (s Summary) IsEmpty() bool {
	return len(s.OnlyInA) == 0 && len(s.OnlyInB) == 0
}

type DiffResult struct {
	EnvA    string
	EnvB    string
	Summary Summary
	Tables  []TableDiff
}

// HasDifferences reports whether anything differs between the two environments.
func (r *DiffResult) HasDifferences() bool {
	return !r.Summary.IsEmpty() || len(r.Tables) > 0
}

// Table returns the diff for the named table, if one was produced.
func (r *DiffResult) Table(name string) (TableDiff, bool) {
	i := slices.IndexFunc(r.Tables, func(t TableDiff) bool { return t.Name == name })
	if i < 0 {
		return TableDiff{}, false
	}
	return r.Tables[i], true
}
