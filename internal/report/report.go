package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/victorlunam/schemr/internal/models"
)

// DefaultFile is where the CLI writes the HTML report.
const DefaultFile = "schema_diff_report.html"

// Section is one titled block of the report: the summary or a single table.
type Section struct {
	Title string
	Lines []string
}

// Sections renders the result once; both output forms are built from it.
func Sections(r *models.DiffResult) []Section {
	sections := []Section{{Title: "Summary", Lines: summaryLines(r)}}
	for _, t := range r.Tables {
		sections = append(sections, Section{Title: t.Name, Lines: tableLines(r, t)})
	}
	return sections
}

// ConsoleLines flattens the result into printable lines. Table sections are
// separated by a blank line and their differences indented under a header.
func ConsoleLines(r *models.DiffResult) []string {
	sections := Sections(r)

	lines := append([]string{}, sections[0].Lines...)
	for _, s := range sections[1:] {
		lines = append(lines, "", "Table: "+s.Title)
		lines = append(lines, s.Lines...)
	}
	return lines
}

var documentTemplate = template.Must(template.New("report").Parse(
	`<!DOCTYPE html><html><head><meta charset="utf-8"><title>Schema Diff Report</title></head><body>` +
		`<h1>Schema diff: {{.EnvA}} vs {{.EnvB}}</h1>` +
		`{{range .Sections}}<details open><summary><strong>{{.Title}}</strong></summary><pre>{{.Body}}</pre></details>{{end}}` +
		`</body></html>`,
))

type documentSection struct {
	Title string
	Body  string
}

// Document renders the result as a self-contained HTML page with one
// collapsible section per table, Summary first.
func Document(r *models.DiffResult) string {
	data := struct {
		EnvA, EnvB string
		Sections   []documentSection
	}{EnvA: r.EnvA, EnvB: r.EnvB}

	for _, s := range Sections(r) {
		data.Sections = append(data.Sections, documentSection{
			Title: s.Title,
			Body:  strings.Join(s.Lines, "\n"),
		})
	}

	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, data); err != nil {
		// only strings flow into the template
		panic(err)
	}
	return buf.String()
}

func summaryLines(r *models.DiffResult) []string {
	lines := []string{fmt.Sprintf("Comparing '%s' vs '%s'", r.EnvA, r.EnvB)}
	if len(r.Summary.OnlyInA) > 0 {
		lines = append(lines, fmt.Sprintf("Tables only in %s: %s", r.EnvA, quoteList(r.Summary.OnlyInA)))
	}
	if len(r.Summary.OnlyInB) > 0 {
		lines = append(lines, fmt.Sprintf("Tables only in %s: %s", r.EnvB, quoteList(r.Summary.OnlyInB)))
	}
	if !r.HasDifferences() {
		lines = append(lines, "No differences found")
	}
	return lines
}

func tableLines(r *models.DiffResult, t models.TableDiff) []string {
	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, "  "+fmt.Sprintf(format, args...))
	}

	if len(t.ColumnsOnlyInA) > 0 {
		add("Columns only in %s: %s", r.EnvA, quoteList(t.ColumnsOnlyInA))
	}
	if len(t.ColumnsOnlyInB) > 0 {
		add("Columns only in %s: %s", r.EnvB, quoteList(t.ColumnsOnlyInB))
	}
	for _, c := range t.Columns {
		add("Column '%s': %s", c.Name, columnChanges(c))
	}

	if len(t.IndexesOnlyInA) > 0 {
		add("Indexes only in %s: %s", r.EnvA, indexList(t.IndexesOnlyInA))
	}
	if len(t.IndexesOnlyInB) > 0 {
		add("Indexes only in %s: %s", r.EnvB, indexList(t.IndexesOnlyInB))
	}
	for _, i := range t.Indexes {
		add("Index '%s': %s", i.Name, indexChanges(i))
	}

	if t.PrimaryKey != nil {
		add("Primary key: %s vs %s", columnList(t.PrimaryKey.A), columnList(t.PrimaryKey.B))
	}
	return lines
}

func columnChanges(c models.ColumnDiff) string {
	var parts []string
	if c.DataType != nil {
		parts = append(parts, fmt.Sprintf("type %s vs %s", c.DataType.A, c.DataType.B))
	}
	if c.Nullable != nil {
		parts = append(parts, fmt.Sprintf("nullable %t vs %t", c.Nullable.A, c.Nullable.B))
	}
	if c.Default != nil {
		parts = append(parts, fmt.Sprintf("default %s vs %s", defaultValue(c.Default.A), defaultValue(c.Default.B)))
	}
	return strings.Join(parts, ", ")
}

func indexChanges(i models.IndexDiff) string {
	var parts []string
	if i.Columns != nil {
		parts = append(parts, fmt.Sprintf("columns %s vs %s", columnList(i.Columns.A), columnList(i.Columns.B)))
	}
	if i.Unique != nil {
		parts = append(parts, fmt.Sprintf("unique %t vs %t", i.Unique.A, i.Unique.B))
	}
	return strings.Join(parts, ", ")
}

// defaultValue prints NULL for an absent default and a quoted string otherwise,
// so an empty default stays visible.
func defaultValue(v *string) string {
	if v == nil {
		return "NULL"
	}
	return strconv.Quote(*v)
}

func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = strconv.Quote(n)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func columnList(cols []string) string {
	return "(" + strings.Join(cols, ", ") + ")"
}

func indexList(indexes []models.Index) string {
	parts := make([]string, len(indexes))
	for i, idx := range indexes {
		parts[i] = idx.Name + " " + columnList(idx.Columns)
		if idx.IsUnique {
			parts[i] += " UNIQUE"
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
