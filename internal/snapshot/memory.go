package snapshot

import (
	"errors"
	"sort"

	"github.com/victorlunam/schemr/internal/models"
)

// Memory is a Reader over tables held in memory. A nil Tables map behaves like
// a missing snapshot.
type Memory struct {
	Env    string
	Tables map[string]models.TableSchema
	// Unlisted tables exist as documents but are left out of the manifest.
	Unlisted []string
	// Extra names are listed in the manifest without a document.
	Extra []string
}

func NewMemory(env string, tables ...models.TableSchema) *Memory {
	m := &Memory{Env: env, Tables: make(map[string]models.TableSchema, len(tables))}
	for _, t := range tables {
		m.Tables[t.Name] = t
	}
	return m
}

func (m *Memory) Environment() string { return m.Env }

func (m *Memory) LoadManifest() (models.SnapshotManifest, error) {
	if m.Tables == nil {
		return models.SnapshotManifest{}, missing(m.Env, "memory", errors.New("no tables"))
	}

	var manifest models.SnapshotManifest
	for name := range m.Tables {
		if !contains(m.Unlisted, name) {
			manifest.Tables = append(manifest.Tables, name)
		}
	}
	manifest.Tables = append(manifest.Tables, m.Extra...)
	sort.Strings(manifest.Tables)

	return manifest, nil
}

func (m *Memory) LoadTable(name string) (models.TableSchema, error) {
	table, ok := m.Tables[name]
	if !ok {
		return table, corrupt(m.Env, name, "memory", errors.New("no document"))
	}
	if err := checkTable(name, table); err != nil {
		return table, corrupt(m.Env, name, "memory", err)
	}
	return table, nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
