package tabular

import (
	"encoding/csv"
	"io"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/turtacn/lipinski-analyzer/internal/domain/compound"
	"github.com/turtacn/lipinski-analyzer/pkg/errors"
)

// SheetName is the worksheet written to exported workbooks.
const SheetName = "Sheet1"

// Write serializes report in format f: source columns first, then the
// computed columns, rows in input order.
func Write(w io.Writer, f Format, report *compound.AnalysisReport) error {
	if report == nil {
		return errors.InvalidParam("report is required")
	}
	switch f {
	case FormatCSV, FormatTSV:
		return writeDelimited(w, f.delimiter(), report)
	case FormatXLSX:
		return writeXLSX(w, report)
	}
	return errors.Newf(errors.ErrCodeFormatUnsupported, "unsupported format %q", f)
}

func writeDelimited(w io.Writer, comma rune, report *compound.AnalysisReport) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(report.Header()); err != nil {
		return errors.Wrap(err, errors.ErrCodeTableWriteFailed, "write header")
	}
	for _, rec := range report.Records() {
		if err := cw.Write(rec); err != nil {
			return errors.Wrap(err, errors.ErrCodeTableWriteFailed, "write record")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, errors.ErrCodeTableWriteFailed, "flush")
	}
	return nil
}

func writeXLSX(w io.Writer, report *compound.AnalysisReport) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeTableWriteFailed, "open stream writer")
	}

	header := report.Header()
	values := make([]interface{}, len(header))
	for i, h := range header {
		values[i] = h
	}
	if err := sw.SetRow("A1", values); err != nil {
		return errors.Wrap(err, errors.ErrCodeTableWriteFailed, "write header")
	}

	for i, row := range report.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeTableWriteFailed, "cell name")
		}
		if err := sw.SetRow(cell, typedValues(row)); err != nil {
			return errors.Wrap(err, errors.ErrCodeTableWriteFailed, "write row")
		}
	}
	if err := sw.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrCodeTableWriteFailed, "flush sheet")
	}
	if err := f.Write(w); err != nil {
		return errors.Wrap(err, errors.ErrCodeTableWriteFailed, "write workbook")
	}
	return nil
}

// typedValues keeps numbers numeric so spreadsheet users can sort and filter.
func typedValues(row compound.AnalysisRow) []interface{} {
	out := make([]interface{}, 0, len(row.Cells)+len(compound.ComputedColumns))
	for _, c := range row.Cells {
		switch c.Kind {
		case compound.CellNumber:
			out = append(out, c.Num)
		case compound.CellString:
			out = append(out, c.Str)
		default:
			out = append(out, nil)
		}
	}
	out = append(out, row.Valid)
	if d := row.Descriptors; d != nil {
		out = append(out, round4(d.MolWt), round4(d.LogP), d.HDonors, d.HAcceptors)
	} else {
		out = append(out, nil, nil, nil, nil)
	}
	return append(out, row.ViolationCount, string(row.Result))
}

func round4(f float64) float64 { return math.Round(f*1e4) / 1e4 }

//Personal.AI order the ending
