// Package tabular loads compound tables from delimited text and spreadsheet
// files and writes analyzed reports back in the same formats.
package tabular

import (
	"path/filepath"
	"strings"

	"github.com/turtacn/lipinski-analyzer/pkg/errors"
)

// Format identifies a supported file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

// DefaultExportName is the base name used for exported results.
const DefaultExportName = "lipinski_results"

// FormatFromName picks the format from a file name's extension.
// ".txt" is read as delimited text with the delimiter sniffed from the header.
func FormatFromName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".tsv", ".tab":
		return FormatTSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	}
	return "", errors.Newf(errors.ErrCodeFormatUnsupported, "unsupported file type %q", filepath.Ext(name)).
		WithDetail("file=" + name)
}

// ParseFormat accepts a format name such as "csv" or ".xlsx".
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	if f.Valid() {
		return f, nil
	}
	return "", errors.Newf(errors.ErrCodeFormatUnsupported, "unsupported format %q", s)
}

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	switch f {
	case FormatCSV, FormatTSV, FormatXLSX:
		return true
	}
	return false
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string { return "." + string(f) }

// ContentType returns the MIME type used when serving f.
func (f Format) ContentType() string {
	switch f {
	case FormatTSV:
		return "text/tab-separated-values"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// ExportName is the download file name for results in format f.
func (f Format) ExportName() string { return DefaultExportName + f.Extension() }

func (f Format) delimiter() rune {
	if f == FormatTSV {
		return '\t'
	}
	return ','
}

//Personal.AI order the ending
