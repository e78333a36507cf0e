package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/lipinski-analyzer/internal/domain/compound"
	"github.com/turtacn/lipinski-analyzer/pkg/types/lipinski"
)

func TestAnalyzeResult_Response(t *testing.T) {
	report := &compound.AnalysisReport{
		Columns:      []string{"ID", "SMILES", "Note"},
		SmilesColumn: "SMILES",
		Rows: []compound.AnalysisRow{
			{
				Index:       0,
				Cells:       compound.Row{compound.NumberCell(7), compound.StringCell("CCO"), compound.NullCell()},
				SMILES:      "CCO",
				Valid:       true,
				Descriptors: &compound.Descriptors{MolWt: 46.069, LogP: -0.0014, HDonors: 1, HAcceptors: 1},
				Result:      compound.ResultPass,
			},
			{
				Index:  1,
				Cells:  compound.Row{compound.NumberCell(8), compound.StringCell("??"), compound.StringCell("bad")},
				SMILES: "??",
				Result: compound.ResultInvalid,
			},
		},
	}
	res := &AnalyzeResult{
		Run:     compound.NewAnalysisRun("a.csv", report, true, 2*time.Second),
		Report:  report,
		Summary: report.Summarize(),
		Candidates: []compound.ColumnMatch{
			{Column: "SMILES", Phase: compound.PhaseExact, Term: "smiles"},
		},
		Warnings: []string{"export failed: boom"},
	}

	resp := res.Response(1)
	assert.Equal(t, res.Run.ID, resp.Run.ID)
	assert.Equal(t, int64(2000), resp.Run.DurationMS)
	assert.Equal(t, lipinski.Counts{Total: 2, Valid: 1, Invalid: 1, Pass: 1}, resp.Summary.Counts)
	assert.Equal(t, []lipinski.ColumnCandidate{{Column: "SMILES", Phase: "exact", Term: "smiles"}}, resp.Candidates)
	assert.Equal(t, []string{"export failed: boom"}, resp.Warnings)

	require.Len(t, resp.Rows, 1)
	row := resp.Rows[0]
	assert.Equal(t, map[string]interface{}{"ID": 7.0, "SMILES": "CCO"}, row.Values)
	require.NotNil(t, row.Descriptors)
	assert.Equal(t, 1, row.Descriptors.HDonors)

	assert.Len(t, res.Response(10).Rows, 2)
	assert.Empty(t, res.Response(0).Rows)

	assert.NotPanics(t, func() {
		assert.Empty(t, RowsResponse(report, -1))
	})
}

func TestDetectResult_Response(t *testing.T) {
	r := &DetectResult{
		Column:     "smi",
		Candidates: []compound.ColumnMatch{{Column: "smi", Phase: compound.PhaseExact, Term: "smi"}},
		Columns:    []string{"id", "smi"},
	}
	resp := r.Response()
	assert.Equal(t, "smi", resp.Column)
	assert.Equal(t, []string{"id", "smi"}, resp.Columns)
	assert.Len(t, resp.Candidates, 1)
}

//Personal.AI order the ending
