package tabular

import (
	"bufio"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/turtacn/lipinski-analyzer/internal/domain/compound"
	"github.com/turtacn/lipinski-analyzer/pkg/errors"
)

// ReadOptions tune table loading.
type ReadOptions struct {
	// MaxRows rejects tables with more data rows. Zero means unlimited.
	MaxRows int
	// Sheet selects a workbook sheet; empty means the first sheet.
	Sheet string
	// Delimiter overrides the delimiter for delimited text.
	Delimiter rune
}

// Read loads a table from r, choosing the reader from name's extension.
// Every cell is typed with compound.InferCell; the header row names the
// columns, with blank names replaced by "Unnamed: i" and duplicates suffixed
// ".1", ".2" and so on.
func Read(name string, r io.Reader, opts ReadOptions) (*compound.CompoundTable, error) {
	format, err := FormatFromName(name)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatXLSX:
		return readXLSX(r, opts)
	case FormatTSV:
		if opts.Delimiter == 0 {
			opts.Delimiter = '\t'
		}
	}
	sniff := strings.EqualFold(filepath.Ext(name), ".txt")
	return readDelimited(r, opts, sniff)
}

// ─────────────────────────────────────────────────────────────────────────────
// Delimited text
// ─────────────────────────────────────────────────────────────────────────────

func readDelimited(r io.Reader, opts ReadOptions, sniff bool) (*compound.CompoundTable, error) {
	br := bufio.NewReader(r)
	comma := opts.Delimiter
	if comma == 0 {
		comma = ','
		if sniff {
			comma = sniffDelimiter(br)
		}
	}

	cr := csv.NewReader(br)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if stderrors.Is(err, io.EOF) {
		return nil, errors.New(errors.ErrCodeTableEmpty, "no columns to parse from file")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTableMalformed, "read header")
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	columns := normalizeHeader(header)

	var rows []compound.Row
	for {
		rec, err := cr.Read()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeTableMalformed, "read record")
		}
		if len(rec) > len(columns) {
			line, _ := cr.FieldPos(0)
			return nil, errors.Newf(errors.ErrCodeTableMalformed,
				"expected %d fields in line %d, saw %d", len(columns), line, len(rec))
		}
		if opts.MaxRows > 0 && len(rows) >= opts.MaxRows {
			return nil, tooLarge(opts.MaxRows)
		}
		rows = append(rows, toRow(rec, len(columns)))
	}
	return compound.NewCompoundTable(columns, rows)
}

// sniffDelimiter counts candidate delimiters on the first line without
// consuming it.
func sniffDelimiter(br *bufio.Reader) rune {
	peek, _ := br.Peek(64 * 1024)
	line := string(peek)
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}
	best, bestCount := ',', 0
	for _, c := range []rune{',', '\t', ';', '|'} {
		if n := strings.Count(line, string(c)); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}

// ─────────────────────────────────────────────────────────────────────────────
// Workbooks
// ─────────────────────────────────────────────────────────────────────────────

func readXLSX(r io.Reader, opts ReadOptions) (*compound.CompoundTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTableMalformed, "open workbook")
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, errors.Newf(errors.ErrCodeTableMalformed, "sheet %q not found", sheet)
	}

	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTableMalformed, "read sheet "+sheet)
	}
	if len(raw) == 0 || len(raw[0]) == 0 {
		return nil, errors.New(errors.ErrCodeTableEmpty, "no columns to parse from sheet "+sheet)
	}

	// GetRows trims trailing empty cells; the widest row sets the width.
	width := 0
	for _, rec := range raw {
		if len(rec) > width {
			width = len(rec)
		}
	}
	header := make([]string, width)
	copy(header, raw[0])
	columns := normalizeHeader(header)

	var rows []compound.Row
	for _, rec := range raw[1:] {
		if blank(rec) {
			continue
		}
		if opts.MaxRows > 0 && len(rows) >= opts.MaxRows {
			return nil, tooLarge(opts.MaxRows)
		}
		rows = append(rows, toRow(rec, width))
	}
	return compound.NewCompoundTable(columns, rows)
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func toRow(rec []string, width int) compound.Row {
	row := make(compound.Row, width)
	for i := range row {
		if i < len(rec) {
			row[i] = compound.InferCell(rec[i])
		} else {
			row[i] = compound.NullCell()
		}
	}
	return row
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := h
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n+1)
		} else {
			seen[name] = 0
		}
		out[i] = name
	}
	return out
}

func tooLarge(limit int) error {
	return errors.Newf(errors.ErrCodeTableTooLarge, "table exceeds %d rows", limit)
}

//Personal.AI order the ending
