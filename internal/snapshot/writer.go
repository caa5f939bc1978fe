package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/victorlunam/schemr/internal/models"
)

// Writer stores a snapshot in the layout Dir reads.
type Writer struct {
	env  string
	path string
}

// Create makes <base>/<env>/ and returns a Writer for it.
func Create(base, env string) (*Writer, error) {
	path := filepath.Join(base, env)
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("error creating snapshot directory: %w", err)
	}
	return &Writer{env: env, path: path}, nil
}

func (w *Writer) Path() string { return w.path }

func (w *Writer) WriteManifest(manifest models.SnapshotManifest) error {
	tables := append([]string(nil), manifest.Tables...)
	sort.Strings(tables)
	if tables == nil {
		tables = []string{}
	}
	return writeJSON(filepath.Join(w.path, ManifestFile), models.SnapshotManifest{Tables: tables})
}

func (w *Writer) WriteTable(table models.TableSchema) error {
	if err := table.Validate(); err != nil {
		return err
	}
	return writeJSON(filepath.Join(w.path, table.Name+".json"), table)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return nil
}
