package compound

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/lipinski-analyzer/pkg/errors"
)

func TestColumnDetector_Detect(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		columns []string
		want    string
	}{
		{"exact structure", []string{"ID", "Structure", "Name"}, "Structure"},
		{"exact smiles uppercase", []string{"ID", "SMILES"}, "SMILES"},
		{"normalized punctuation", []string{"id", "S.M.I.L.E.S"}, "S.M.I.L.E.S"},
		{"normalized spacing", []string{"compound", " smi "}, " smi "},
		{"normalized underscore", []string{"Smile_"}, "Smile_"},
		{"substring fallback", []string{"id", "isosmiles"}, "isosmiles"},
		{"substring keeps punctuation", []string{"name", "canonical_smiles"}, "canonical_smiles"},
		{"exact beats earlier substring", []string{"isosmiles_code", "smiles"}, "smiles"},
		{"first exact wins", []string{"SMILES", "smi"}, "SMILES"},
		{"first substring wins", []string{"mol_structure_v2", "smiles_iso"}, "mol_structure_v2"},
		{"structure substring", []string{"ChemicalStructure", "id"}, "ChemicalStructure"},
	}

	d := NewColumnDetector()
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := d.Detect(tc.columns)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestColumnDetector_NoMatch(t *testing.T) {
	t.Parallel()

	for _, cols := range [][]string{nil, {}, {"ID", "Name", "MW"}, {"sm", "structur"}} {
		_, err := NewColumnDetector().Detect(cols)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeNoSmilesColumn))

		var ae *errors.AppError
		require.True(t, errors.As(err, &ae))
		assert.Equal(t,
			"No valid SMILES column found. Please ensure your CSV contains a column with SMILES strings.",
			ae.Message)
	}
}

func TestColumnDetector_SinglePhaseOneMatchAlwaysReturned(t *testing.T) {
	t.Parallel()

	fillers := []string{"ID", "Name", "MW", "Notes"}
	for _, term := range []string{"smiles", "SMI", "Smile", "STRUCTURE"} {
		for pos := 0; pos <= len(fillers); pos++ {
			cols := append([]string{}, fillers[:pos]...)
			cols = append(cols, term)
			cols = append(cols, fillers[pos:]...)

			got, err := NewColumnDetector().Detect(cols)
			require.NoError(t, err)
			assert.Equal(t, term, got)
		}
	}
}

func TestColumnDetector_Candidates(t *testing.T) {
	t.Parallel()

	d := NewColumnDetector()
	cols := []string{"isosmiles", "ID", "Smiles", "structure_img", "SMI"}

	got := d.Candidates(cols)
	require.Len(t, got, 4)
	assert.Equal(t, ColumnMatch{Column: "Smiles", Phase: PhaseExact, Term: "smiles"}, got[0])
	assert.Equal(t, ColumnMatch{Column: "SMI", Phase: PhaseExact, Term: "smi"}, got[1])
	assert.Equal(t, ColumnMatch{Column: "isosmiles", Phase: PhaseSubstring, Term: "smiles"}, got[2])
	assert.Equal(t, ColumnMatch{Column: "structure_img", Phase: PhaseSubstring, Term: "structure"}, got[3])

	detected, err := d.Detect(cols)
	require.NoError(t, err)
	assert.Equal(t, got[0].Column, detected)

	assert.Empty(t, d.Candidates([]string{"a", "b"}))
}

func TestNormalizeColumnName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "smiles", normalizeColumnName("S-M-I-L-E-S"))
	assert.Equal(t, "smiles2", normalizeColumnName(" Smiles (2) "))
	assert.Equal(t, "", normalizeColumnName("--"))
	assert.Equal(t, "structure", normalizeColumnName("Structure\u00e9"))
}

//Personal.AI order the ending
