package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/victorlunam/schemr/internal/models"
)

func strPtr(s string) *string { return &s }

func usersTable() models.TableSchema {
	return models.TableSchema{
		Name: "users",
		Columns: []models.Column{
			{Name: "id", DataType: "int", IsNullable: false},
			{Name: "email", DataType: "varchar(255)", IsNullable: true, DefaultValue: strPtr("")},
		},
		PrimaryKey: []string{"id"},
		Indexes: []models.Index{
			{Name: "idx_email", Columns: []string{"email"}, IsUnique: true},
		},
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	assert.NilError(t, os.MkdirAll(filepath.Dir(path), 0755))
	assert.NilError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestDir_RoundTrip(t *testing.T) {
	base := t.TempDir()

	w, err := Create(base, "qa")
	assert.NilError(t, err)
	assert.NilError(t, w.WriteManifest(models.SnapshotManifest{Tables: []string{"users"}}))
	assert.NilError(t, w.WriteTable(usersTable()))

	d := Open(base, "qa")
	assert.Equal(t, d.Environment(), "qa")
	assert.Equal(t, d.Path(), filepath.Join(base, "qa"))

	manifest, err := d.LoadManifest()
	assert.NilError(t, err)
	assert.DeepEqual(t, manifest.Tables, []string{"users"})

	table, err := d.LoadTable("users")
	assert.NilError(t, err)
	assert.DeepEqual(t, table, usersTable())
	assert.Assert(t, table.Columns[0].DefaultValue == nil)
	assert.Equal(t, *table.Columns[1].DefaultValue, "")
}

func TestDir_ReadsDocumentFieldNames(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "prod", ManifestFile), `{"tables": ["accounts"]}`)
	writeFile(t, filepath.Join(base, "prod", "accounts.json"), `{
		"name": "accounts",
		"columns": [
			{"name": "status", "dataType": "varchar(20)", "isNullable": false, "defaultValue": null},
			{"name": "kind", "dataType": "int", "isNullable": true, "defaultValue": "0"}
		],
		"primaryKey": ["id"],
		"indexes": [{"name": "idx_ab", "columns": ["b", "a"], "isUnique": false}]
	}`)

	table, err := Open(base, "prod").LoadTable("accounts")
	assert.NilError(t, err)
	assert.Equal(t, table.Columns[0].DataType, "varchar(20)")
	assert.Assert(t, table.Columns[0].DefaultValue == nil)
	assert.Equal(t, *table.Columns[1].DefaultValue, "0")
	assert.DeepEqual(t, table.Indexes[0].Columns, []string{"b", "a"})
	assert.DeepEqual(t, table.PrimaryKey, []string{"id"})
}

func TestDir_LoadManifestErrors(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "broken", ManifestFile), `{"tables": [`)

	for _, env := range []string{"absent", "broken"} {
		t.Run(env, func(t *testing.T) {
			_, err := Open(base, env).LoadManifest()
			assert.Assert(t, errors.Is(err, ErrMissingSnapshot))
			assert.Assert(t, !errors.Is(err, ErrCorruptSnapshot))
			assert.Assert(t, is.Contains(err.Error(), "env '"+env+"'"))

			var serr *Error
			assert.Assert(t, errors.As(err, &serr))
			assert.Equal(t, serr.Environment, env)
			assert.Equal(t, serr.Table, "")
		})
	}

	_, err := Open(base, "absent").LoadManifest()
	assert.Assert(t, errors.Is(err, os.ErrNotExist))
}

func TestDir_LoadTableErrors(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "qa")
	writeFile(t, filepath.Join(dir, ManifestFile), `{"tables": ["a", "b", "c", "d"]}`)
	writeFile(t, filepath.Join(dir, "b.json"), `not json`)
	writeFile(t, filepath.Join(dir, "c.json"), `{"name": "other", "columns": []}`)
	writeFile(t, filepath.Join(dir, "d.json"), `{"name": "d", "columns": [{"name": "x"}, {"name": "x"}]}`)

	tests := []struct {
		table   string
		wantMsg string
	}{
		{table: "a", wantMsg: "no such file"},
		{table: "b", wantMsg: "invalid character"},
		{table: "c", wantMsg: "document describes table 'other'"},
		{table: "d", wantMsg: `duplicate column "x"`},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			_, err := Open(base, "qa").LoadTable(tt.table)
			assert.Assert(t, errors.Is(err, ErrCorruptSnapshot))
			assert.ErrorContains(t, err, "env 'qa'")
			assert.ErrorContains(t, err, "table '"+tt.table+"'")
			assert.ErrorContains(t, err, tt.wantMsg)
		})
	}

	_, err := Open(base, "qa").LoadTable("d")
	var dup *models.DuplicateError
	assert.Assert(t, errors.As(err, &dup))
}

func TestWriter_SortsManifestAndRejectsDuplicates(t *testing.T) {
	base := t.TempDir()
	w, err := Create(base, "qa")
	assert.NilError(t, err)

	assert.NilError(t, w.WriteManifest(models.SnapshotManifest{Tables: []string{"z", "a", "m"}}))
	manifest, err := Open(base, "qa").LoadManifest()
	assert.NilError(t, err)
	assert.DeepEqual(t, manifest.Tables, []string{"a", "m", "z"})

	bad := models.TableSchema{Name: "t", Indexes: []models.Index{{Name: "i"}, {Name: "i"}}}
	assert.ErrorContains(t, w.WriteTable(bad), `duplicate index "i"`)

	_, err = os.Stat(filepath.Join(base, "qa", "t.json"))
	assert.Assert(t, errors.Is(err, os.ErrNotExist))
}

func TestEnvironments(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "qa", ManifestFile), `{"tables": []}`)
	writeFile(t, filepath.Join(base, "prod", ManifestFile), `{"tables": []}`)
	writeFile(t, filepath.Join(base, "scratch", "notes.txt"), `x`)
	writeFile(t, filepath.Join(base, "loose.json"), `{}`)

	envs, err := Environments(base)
	assert.NilError(t, err)
	assert.DeepEqual(t, envs, []string{"prod", "qa"})

	envs, err = Environments(filepath.Join(base, "nope"))
	assert.NilError(t, err)
	assert.Assert(t, is.Len(envs, 0))
}

func TestMemory(t *testing.T) {
	m := NewMemory("qa", usersTable())
	m.Extra = []string{"ghost"}

	manifest, err := m.LoadManifest()
	assert.NilError(t, err)
	assert.DeepEqual(t, manifest.Tables, []string{"ghost", "users"})

	_, err = m.LoadTable("ghost")
	assert.Assert(t, errors.Is(err, ErrCorruptSnapshot))

	_, err = (&Memory{Env: "prod"}).LoadManifest()
	assert.Assert(t, errors.Is(err, ErrMissingSnapshot))
	assert.ErrorContains(t, err, "env 'prod'")
}
