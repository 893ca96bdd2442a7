// Package frame compares tabular query results.
//
// It backs acceptance tests that check a computed result against an expected
// table: cells are compared exactly except floating-point values, which use a
// relative tolerance, and nulls, which compare equal to each other. By default
// both tables are put into a canonical column and row order first so the
// comparison ignores ordering.
package frame

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Table is an in-memory tabular result.
type Table struct {
	Columns []string
	Rows    [][]any
}

// New creates a table from column names and rows.
func New(columns []string, rows ...[]any) *Table {
	return &Table{Columns: columns, Rows: rows}
}

// FromRows drains rows into a Table. []byte values are converted to strings.
// The caller still owns rows and must close it.
func FromRows(rows *sql.Rows) (*Table, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	t := &Table{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row %d: %w", len(t.Rows), err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		t.Rows = append(t.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	return len(t.Columns)
}

// ColumnIndex returns the position of a column, or -1 if absent.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Markdown renders the table as a markdown table.
func (t *Table) Markdown() string {
	w := table.NewWriter()

	header := make(table.Row, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = col
	}
	w.AppendHeader(header)

	for _, r := range t.Rows {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = formatValue(v)
		}
		w.AppendRow(row)
	}

	return w.RenderMarkdown()
}

func (t *Table) String() string {
	return t.Markdown()
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return strings.TrimSpace(fmt.Sprintf("%v", v))
}
