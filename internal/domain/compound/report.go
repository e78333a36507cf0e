package compound

import (
	"math"
	"strconv"
)

// Computed column names, in output order after the source columns.
const (
	ColSMILESValid        = "SMILES_Valid"
	ColMolWt              = "MolWt"
	ColLogP               = "LogP"
	ColNumHDonors         = "NumHDonors"
	ColNumHAcceptors      = "NumHAcceptors"
	ColLipinskiViolations = "LipinskiViolations"
	ColLipinskiResult     = "LipinskiResult"
)

// ComputedColumns is the fixed suffix appended to every analyzed table.
var ComputedColumns = []string{
	ColSMILESValid,
	ColMolWt,
	ColLogP,
	ColNumHDonors,
	ColNumHAcceptors,
	ColLipinskiViolations,
	ColLipinskiResult,
}

// AnalysisRow is the outcome for one input row.
type AnalysisRow struct {
	// Index is the zero-based position of the source row.
	Index int
	// Cells are the source values, untouched.
	Cells Row
	// SMILES is the trimmed input string; empty when the cell held no string.
	SMILES string
	Valid  bool
	// Descriptors is nil unless Valid.
	Descriptors    *Descriptors
	Violations     []Violation
	ViolationCount int
	Result         Result
	// Error describes a descriptor-engine failure that invalidated the row.
	Error string
}

func invalidRow(index int, cells Row, smiles string) AnalysisRow {
	return AnalysisRow{
		Index:  index,
		Cells:  cells,
		SMILES: smiles,
		Result: ResultInvalid,
	}
}

func scoredRow(index int, cells Row, smiles string, d Descriptors) AnalysisRow {
	v := Violations(d)
	desc := d
	return AnalysisRow{
		Index:          index,
		Cells:          cells,
		SMILES:         smiles,
		Valid:          true,
		Descriptors:    &desc,
		Violations:     v,
		ViolationCount: len(v),
		Result:         Classify(len(v)),
	}
}

// AnalysisReport is the ordered result of one analysis call.
type AnalysisReport struct {
	Columns      []string
	SmilesColumn string
	Rows         []AnalysisRow
}

// Counts are aggregate totals over a report's rows.
type Counts struct {
	Total   int `json:"total"`
	Valid   int `json:"valid"`
	Invalid int `json:"invalid"`
	Pass    int `json:"pass"`
	Fail    int `json:"fail"`
}

// Counts folds over the rows. Nothing is cached, so the totals always agree
// with the row sequence.
func (r *AnalysisReport) Counts() Counts {
	var c Counts
	for _, row := range r.Rows {
		c.Total++
		if row.Valid {
			c.Valid++
		} else {
			c.Invalid++
		}
		switch row.Result {
		case ResultPass:
			c.Pass++
		case ResultFail:
			c.Fail++
		}
	}
	return c
}

// ResultCount is one bar of the result distribution.
type ResultCount struct {
	Result Result `json:"result"`
	Count  int    `json:"count"`
}

// Summary is the headline view of a report.
type Summary struct {
	Counts
	// ValidPercent is Valid/Total*100, 0 for an empty table.
	ValidPercent float64 `json:"valid_percent"`
	// PassRate is Pass/Valid*100, 0 when nothing was valid.
	PassRate     float64       `json:"pass_rate"`
	Distribution []ResultCount `json:"distribution"`
}

// Summarize derives the Summary from the report's rows.
func (r *AnalysisReport) Summarize() Summary {
	c := r.Counts()
	s := Summary{Counts: c}
	if c.Total > 0 {
		s.ValidPercent = float64(c.Valid) / float64(c.Total) * 100
	}
	if c.Valid > 0 {
		s.PassRate = float64(c.Pass) / float64(c.Valid) * 100
	}
	s.Distribution = []ResultCount{
		{Result: ResultPass, Count: c.Pass},
		{Result: ResultFail, Count: c.Fail},
		{Result: ResultInvalid, Count: c.Invalid},
	}
	return s
}

// Header returns the output column order: source columns then ComputedColumns.
func (r *AnalysisReport) Header() []string {
	h := make([]string, 0, len(r.Columns)+len(ComputedColumns))
	h = append(h, r.Columns...)
	return append(h, ComputedColumns...)
}

// Records renders every row as text aligned with Header.
func (r *AnalysisReport) Records() [][]string {
	out := make([][]string, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.Record()
	}
	return out
}

// Record renders the row's source cells followed by the computed columns.
// Absent descriptors render as empty cells.
func (row AnalysisRow) Record() []string {
	rec := make([]string, 0, len(row.Cells)+len(ComputedColumns))
	for _, c := range row.Cells {
		rec = append(rec, c.Text())
	}
	rec = append(rec, formatBool(row.Valid))
	if row.Descriptors != nil {
		d := row.Descriptors
		rec = append(rec,
			FormatFloat(d.MolWt),
			FormatFloat(d.LogP),
			strconv.Itoa(d.HDonors),
			strconv.Itoa(d.HAcceptors),
		)
	} else {
		rec = append(rec, "", "", "", "")
	}
	return append(rec, strconv.Itoa(row.ViolationCount), string(row.Result))
}

// FormatFloat rounds to four decimals and drops trailing zeros.
func FormatFloat(f float64) string {
	r := math.Round(f*1e4) / 1e4
	if r == 0 {
		r = 0 // no "-0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

//Personal.AI order the ending
