package analysis

import (
	"github.com/turtacn/lipinski-analyzer/internal/domain/compound"
	"github.com/turtacn/lipinski-analyzer/pkg/types/lipinski"
)

func toCounts(c compound.Counts) lipinski.Counts {
	return lipinski.Counts{Total: c.Total, Valid: c.Valid, Invalid: c.Invalid, Pass: c.Pass, Fail: c.Fail}
}

// SummaryResponse converts s to its wire form.
func SummaryResponse(s compound.Summary) lipinski.Summary {
	out := lipinski.Summary{
		Counts:       toCounts(s.Counts),
		ValidPercent: s.ValidPercent,
		PassRate:     s.PassRate,
		Distribution: make([]lipinski.ResultCount, 0, len(s.Distribution)),
	}
	for _, d := range s.Distribution {
		out.Distribution = append(out.Distribution, lipinski.ResultCount{Result: string(d.Result), Count: d.Count})
	}
	return out
}

// RunResponse converts r to its wire form.
func RunResponse(r *compound.AnalysisRun) lipinski.Run {
	return lipinski.Run{
		ID:           r.ID,
		FileName:     r.FileName,
		SmilesColumn: r.SmilesColumn,
		Detected:     r.Detected,
		Counts:       toCounts(r.Counts),
		ExportKey:    r.ExportKey,
		DurationMS:   r.Duration.Milliseconds(),
		CreatedAt:    r.CreatedAt,
	}
}

// RunsResponse converts runs to their wire form.
func RunsResponse(runs []*compound.AnalysisRun) []lipinski.Run {
	out := make([]lipinski.Run, 0, len(runs))
	for _, r := range runs {
		out = append(out, RunResponse(r))
	}
	return out
}

// CandidatesResponse converts detector matches to their wire form.
func CandidatesResponse(matches []compound.ColumnMatch) []lipinski.ColumnCandidate {
	out := make([]lipinski.ColumnCandidate, 0, len(matches))
	for _, m := range matches {
		out = append(out, lipinski.ColumnCandidate{Column: m.Column, Phase: string(m.Phase), Term: m.Term})
	}
	return out
}

// RowsResponse converts the first n rows of report. A negative n yields none.
func RowsResponse(report *compound.AnalysisReport, n int) []lipinski.Row {
	if n < 0 {
		n = 0
	}
	if n > len(report.Rows) {
		n = len(report.Rows)
	}
	out := make([]lipinski.Row, 0, n)
	for _, row := range report.Rows[:n] {
		r := lipinski.Row{
			Index:  row.Index,
			SMILES: row.SMILES,
			Valid:  row.Valid,
			Count:  row.ViolationCount,
			Result: string(row.Result),
			Values: make(map[string]interface{}, len(row.Cells)),
		}
		if d := row.Descriptors; d != nil {
			r.Descriptors = &lipinski.Descriptors{
				MolWt:      d.MolWt,
				LogP:       d.LogP,
				HDonors:    d.HDonors,
				HAcceptors: d.HAcceptors,
			}
		}
		for _, v := range row.Violations {
			r.Violations = append(r.Violations, string(v))
		}
		for i, c := range row.Cells {
			switch c.Kind {
			case compound.CellString:
				r.Values[report.Columns[i]] = c.Str
			case compound.CellNumber:
				r.Values[report.Columns[i]] = c.Num
			}
		}
		out = append(out, r)
	}
	return out
}

// Response converts res to the API response, carrying the first preview rows.
func (res *AnalyzeResult) Response(preview int) lipinski.AnalysisResponse {
	return lipinski.AnalysisResponse{
		Run:        RunResponse(res.Run),
		Summary:    SummaryResponse(res.Summary),
		Columns:    res.Report.Columns,
		Candidates: CandidatesResponse(res.Candidates),
		Rows:       RowsResponse(res.Report, preview),
		ExportKey:  res.ExportKey,
		Warnings:   res.Warnings,
	}
}

// Response converts r to the API response.
func (r *DetectResult) Response() lipinski.DetectResponse {
	return lipinski.DetectResponse{
		Column:     r.Column,
		Candidates: CandidatesResponse(r.Candidates),
		Columns:    r.Columns,
	}
}

//Personal.AI order the ending
