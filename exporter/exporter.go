// Package exporter flattens generated entities into tabular records for
// file download. It carries no business logic: field selection and renaming
// happen in the entities themselves via the Tabular interface.
package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"
)

// Field is one named cell of a flat export row.
type Field struct {
	Name  string
	Value string
}

// Tabular is implemented by any generated entity that can flatten itself
// into an ordered list of named fields.
type Tabular interface {
	Row() []Field
}

// Table is a flat tabular arrangement of one entity list.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Batch is one export: a table plus a flat key-value properties block.
// The generation timestamp is an explicit input so that assembling the same
// entity list twice yields byte-identical output.
type Batch struct {
	Table       Table
	GeneratedAt time.Time
	RunID       string
}

// Assemble arranges entities into a table. Every entity must expose the same
// columns in the same order as the first one.
func Assemble(name string, items []Tabular) (Table, error) {
	table := Table{Name: name}
	for i, item := range items {
		row := item.Row()
		if i == 0 {
			table.Columns = make([]string, len(row))
			for j, f := range row {
				table.Columns[j] = f.Name
			}
		}
		if len(row) != len(table.Columns) {
			return Table{}, fmt.Errorf("exporter: row %d has %d fields, table %s has %d columns", i, len(row), name, len(table.Columns))
		}
		values := make([]string, len(row))
		for j, f := range row {
			if f.Name != table.Columns[j] {
				return Table{}, fmt.Errorf("exporter: row %d column %d is %q, table %s expects %q", i, j, f.Name, name, table.Columns[j])
			}
			values[j] = f.Value
		}
		table.Rows = append(table.Rows, values)
	}
	return table, nil
}

// CSV renders the table with a header line.
func (t Table) CSV() (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Columns); err != nil {
		return "", fmt.Errorf("exporter: write header: %w", err)
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("exporter: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("exporter: flush: %w", err)
	}
	return buf.String(), nil
}

// Properties renders the flat key-value configuration block for the batch.
func (b Batch) Properties() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "export=%s\n", b.Table.Name)
	fmt.Fprintf(&sb, "generated_at=%s\n", b.GeneratedAt.UTC().Format(time.RFC3339))
	if b.RunID != "" {
		fmt.Fprintf(&sb, "run_id=%s\n", b.RunID)
	}
	fmt.Fprintf(&sb, "rows=%d\n", len(b.Table.Rows))
	return sb.String()
}
