package comparator

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"github.com/victorlunam/schemr/internal/models"
	"github.com/victorlunam/schemr/internal/snapshot"
)

type Comparator struct {
	Source snapshot.Reader
	Target snapshot.Reader
	Logger *slog.Logger
}

func NewComparator(source, target snapshot.Reader, logger *slog.Logger) *Comparator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Comparator{
		Source: source,
		Target: target,
		Logger: logger,
	}
}

// Compare diffs the two snapshots. Any load error aborts the comparison and is
// returned as is; no partial result is produced.
func Compare(a, b snapshot.Reader) (*models.DiffResult, error) {
	return NewComparator(a, b, nil).Compare()
}

func (c *Comparator) Compare() (*models.DiffResult, error) {
	envA, envB := c.Source.Environment(), c.Target.Environment()

	manifestA, err := c.Source.LoadManifest()
	if err != nil {
		return nil, err
	}
	manifestB, err := c.Target.LoadManifest()
	if err != nil {
		return nil, err
	}

	tablesA := toSet(manifestA.Tables)
	tablesB := toSet(manifestB.Tables)

	result := &models.DiffResult{
		EnvA: envA,
		EnvB: envB,
		Summary: models.Summary{
			OnlyInA: difference(tablesA, tablesB),
			OnlyInB: difference(tablesB, tablesA),
		},
	}
	common := intersection(tablesA, tablesB)

	c.Logger.Debug("comparing snapshots",
		"env_a", envA,
		"env_b", envB,
		"only_a", len(result.Summary.OnlyInA),
		"only_b", len(result.Summary.OnlyInB),
		"common", len(common),
	)

	for _, name := range common {
		tableA, err := c.Source.LoadTable(name)
		if err != nil {
			return nil, err
		}
		tableB, err := c.Target.LoadTable(name)
		if err != nil {
			return nil, err
		}

		diff := CompareTables(tableA, tableB)
		if diff.IsEmpty() {
			continue
		}
		c.Logger.Debug("table differs", "table", name)
		result.Tables = append(result.Tables, diff)
	}

	return result, nil
}

// CompareTables diffs two versions of the same table.
func CompareTables(a, b models.TableSchema) models.TableDiff {
	diff := models.TableDiff{Name: a.Name}

	colsA, colsB := a.ColumnsByName(), b.ColumnsByName()
	diff.ColumnsOnlyInA = difference(colsA, colsB)
	diff.ColumnsOnlyInB = difference(colsB, colsA)
	for _, name := range intersection(colsA, colsB) {
		if d := compareColumns(colsA[name], colsB[name]); !d.IsEmpty() {
			diff.Columns = append(diff.Columns, d)
		}
	}

	idxA, idxB := a.IndexesByName(), b.IndexesByName()
	for _, name := range difference(idxA, idxB) {
		diff.IndexesOnlyInA = append(diff.IndexesOnlyInA, idxA[name])
	}
	for _, name := range difference(idxB, idxA) {
		diff.IndexesOnlyInB = append(diff.IndexesOnlyInB, idxB[name])
	}
	for _, name := range intersection(idxA, idxB) {
		if d := compareIndexes(idxA[name], idxB[name]); !d.IsEmpty() {
			diff.Indexes = append(diff.Indexes, d)
		}
	}

	if !slices.Equal(a.PrimaryKey, b.PrimaryKey) {
		diff.PrimaryKey = &models.Change[[]string]{A: a.PrimaryKey, B: b.PrimaryKey}
	}

	return diff
}

func compareColumns(a, b models.Column) models.ColumnDiff {
	d := models.ColumnDiff{Name: a.Name}
	if a.DataType != b.DataType {
		d.DataType = &models.Change[string]{A: a.DataType, B: b.DataType}
	}
	if a.IsNullable != b.IsNullable {
		d.Nullable = &models.Change[bool]{A: a.IsNullable, B: b.IsNullable}
	}
	if !equalDefault(a.DefaultValue, b.DefaultValue) {
		d.Default = &models.Change[*string]{A: a.DefaultValue, B: b.DefaultValue}
	}
	return d
}

// equalDefault treats an absent default and an empty one as different values.
func equalDefault(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func compareIndexes(a, b models.Index) models.IndexDiff {
	d := models.IndexDiff{Name: a.Name}
	if !slices.Equal(a.Columns, b.Columns) {
		d.Columns = &models.Change[[]string]{A: a.Columns, B: b.Columns}
	}
	if a.IsUnique != b.IsUnique {
		d.Unique = &models.Change[bool]{A: a.IsUnique, B: b.IsUnique}
	}
	return d
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// difference returns the sorted keys of a that are not in b.
func difference[A, B any](a map[string]A, b map[string]B) []string {
	var keys []string
	for k := range a {
		if _, ok := b[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// intersection returns the sorted keys present in both a and b.
func intersection[A, B any](a map[string]A, b map[string]B) []string {
	var keys []string
	for k := range a {
		if _, ok := b[k]; ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Describe gives a one-line description of a comparison, used in log output.
func Describe(r *models.DiffResult) string {
	return fmt.Sprintf("%s vs %s: %d only in %s, %d only in %s, %d tables differ",
		r.EnvA, r.EnvB,
		len(r.Summary.OnlyInA), r.EnvA,
		len(r.Summary.OnlyInB), r.EnvB,
		len(r.Tables))
}
