package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/victorlunam/schemr/internal/models"
)

const (
	// DefaultRoot is the directory snapshots live under unless told otherwise.
	DefaultRoot = "schemr-dumps"

	ManifestFile = "_index.json"
)

// Reader is the read side of a snapshot, the only thing the comparator needs.
type Reader interface {
	Environment() string
	LoadManifest() (models.SnapshotManifest, error)
	LoadTable(name string) (models.TableSchema, error)
}

// Dir reads a snapshot stored as <base>/<environment>/.
type Dir struct {
	env  string
	path string
}

func Open(base, env string) *Dir {
	return &Dir{env: env, path: filepath.Join(base, env)}
}

func (d *Dir) Environment() string { return d.env }

func (d *Dir) Path() string { return d.path }

func (d *Dir) LoadManifest() (models.SnapshotManifest, error) {
	var manifest models.SnapshotManifest

	path := filepath.Join(d.path, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return manifest, missing(d.env, path, err)
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return manifest, missing(d.env, path, err)
	}

	return manifest, nil
}

func (d *Dir) LoadTable(name string) (models.TableSchema, error) {
	var table models.TableSchema

	path := filepath.Join(d.path, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return table, corrupt(d.env, name, path, err)
	}
	if err := json.Unmarshal(data, &table); err != nil {
		return table, corrupt(d.env, name, path, err)
	}
	if err := checkTable(name, table); err != nil {
		return table, corrupt(d.env, name, path, err)
	}

	return table, nil
}

func checkTable(name string, table models.TableSchema) error {
	if table.Name != name {
		return fmt.Errorf("document describes table '%s'", table.Name)
	}
	return table.Validate()
}

// Environments lists the environments under base that hold a manifest.
func Environments(base string) ([]string, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading snapshot root %s: %w", base, err)
	}

	var envs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(base, entry.Name(), ManifestFile)); err == nil {
			envs = append(envs, entry.Name())
		}
	}
	sort.Strings(envs)

	return envs, nil
}
