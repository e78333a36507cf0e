package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/lipinski-analyzer/pkg/types/lipinski"
)

func TestDetect_Columns(t *testing.T) {
	tests := []struct {
		name    string
		columns string
		want    string
	}{
		{"exact match", "ID,Name,Smiles", "Smiles"},
		{"exact beats earlier substring", "structure_note,Smiles!", "Smiles!"},
		{"substring fallback", "id,my_smiles_col", "my_smiles_col"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, &localFactory{}, "-f", "text", "detect", "--columns", tt.columns)
			require.NoError(t, res.err, res.stderr)
			assert.Equal(t, tt.want+"\n", res.stdout)
		})
	}
}

func TestDetect_TableOutputListsCandidates(t *testing.T) {
	res := runCLI(t, &localFactory{}, "-v", "detect", "--columns", "smiles,structure_smiles,Name")
	require.NoError(t, res.err, res.stderr)

	assert.Contains(t, res.stdout, "SMILES column: smiles")
	assert.Contains(t, res.stdout, "structure_smiles")
	assert.Contains(t, res.stdout, "substring")
	assert.Contains(t, res.stdout, "Columns: smiles, structure_smiles, Name")
}

func TestDetect_FromFileHeader(t *testing.T) {
	input := writeTemp(t, "library.csv", compoundsCSV)

	res := runCLI(t, &localFactory{}, "-f", "json", "detect", "-i", input)
	require.NoError(t, res.err, res.stderr)

	var resp lipinski.DetectResponse
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	assert.Equal(t, "Canonical_SMILES", resp.Column)
	assert.Equal(t, []string{"ID", "Name", "Canonical_SMILES"}, resp.Columns)
}

func TestDetect_Errors(t *testing.T) {
	input := writeTemp(t, "library.csv", compoundsCSV)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no column found", []string{"detect", "--columns", "ID,Name,Weight"}, "No valid SMILES column found"},
		{"no source", []string{"detect"}, "one of --input or --columns is required"},
		{"both sources", []string{"detect", "-i", input, "--columns", "a"}, "none of the others can be"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, &localFactory{}, tt.args...)
			require.Error(t, res.err)
			assert.Contains(t, res.stderr, tt.wantErr)
		})
	}
}

//Personal.AI order the ending
