// Package compound holds the core of the Lipinski analyzer: the tabular
// compound model, SMILES column detection and the per-row Rule-of-Five
// classification.  It performs no I/O; tables arrive already loaded and
// reports leave as plain values.
package compound

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/turtacn/lipinski-analyzer/pkg/errors"
)

// CellKind discriminates the value stored in a Cell.
type CellKind int

const (
	CellNull CellKind = iota
	CellString
	CellNumber
)

func (k CellKind) String() string {
	switch k {
	case CellString:
		return "string"
	case CellNumber:
		return "number"
	default:
		return "null"
	}
}

// Cell is a single table value. Raw keeps the text the value was read from so
// the table can be written back without reformatting numbers.
type Cell struct {
	Kind CellKind
	Str  string
	Num  float64
	Raw  string
}

// NullCell returns an absent value.
func NullCell() Cell { return Cell{Kind: CellNull} }

// StringCell returns a string value.
func StringCell(s string) Cell { return Cell{Kind: CellString, Str: s, Raw: s} }

// NumberCell returns a numeric value.
func NumberCell(f float64) Cell {
	return Cell{Kind: CellNumber, Num: f, Raw: strconv.FormatFloat(f, 'f', -1, 64)}
}

// InferCell classifies raw text the way spreadsheet loaders do: empty text is
// null, text that parses as a finite number is a number, anything else is a
// string. The raw text is preserved in every case.
func InferCell(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Cell{Kind: CellNull, Raw: raw}
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !isNaNOrInf(trimmed) {
		return Cell{Kind: CellNumber, Num: f, Raw: raw}
	}
	return Cell{Kind: CellString, Str: raw, Raw: raw}
}

// isNaNOrInf rejects the spellings strconv accepts but tabular loaders keep as text.
func isNaNOrInf(s string) bool {
	switch strings.ToLower(strings.TrimLeft(s, "+-")) {
	case "nan", "inf", "infinity":
		return true
	}
	return false
}

// Text returns the cell rendered for output.
func (c Cell) Text() string {
	if c.Raw != "" || c.Kind == CellNull {
		return c.Raw
	}
	if c.Kind == CellNumber {
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	}
	return c.Str
}

// Row is one table row aligned with CompoundTable.Columns.
type Row []Cell

// CompoundTable is an ordered set of rows sharing one column set.
// It is never mutated by the detector or the analyzer.
type CompoundTable struct {
	Columns []string
	Rows    []Row
}

// NewCompoundTable validates that every row has exactly one cell per column.
func NewCompoundTable(columns []string, rows []Row) (*CompoundTable, error) {
	if len(columns) == 0 {
		return nil, errors.New(errors.ErrCodeTableEmpty, errors.DefaultMessageForCode(errors.ErrCodeTableEmpty))
	}
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, errors.New(errors.ErrCodeTableMalformed, "row width does not match header").
				WithDetail(fmt.Sprintf("row=%d cells=%d columns=%d", i+1, len(r), len(columns)))
		}
	}
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &CompoundTable{Columns: cols, Rows: rows}, nil
}

// Len returns the number of rows.
func (t *CompoundTable) Len() int { return len(t.Rows) }

// ColumnIndex returns the position of name, or -1. Matching is exact.
func (t *CompoundTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether name is one of the table's columns.
func (t *CompoundTable) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Value returns the cell at (row, column). Unknown columns yield a null cell.
func (t *CompoundTable) Value(row int, column string) Cell {
	idx := t.ColumnIndex(column)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return NullCell()
	}
	return t.Rows[row][idx]
}

//Personal.AI order the ending
