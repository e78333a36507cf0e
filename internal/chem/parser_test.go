package chem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/lipinski-analyzer/pkg/errors"
)

func TestParse_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		smiles    string
		wantAtoms int
		wantBonds int
	}{
		{"ethanol", "CCO", 3, 2},
		{"benzene", "c1ccccc1", 6, 6},
		{"kekule benzene", "C1=CC=CC=C1", 6, 6},
		{"branches", "CC(C)(C)C", 5, 4},
		{"two digit ring", "C%10CCCCC%10", 6, 6},
		{"disconnected salt", "[Na+].[Cl-]", 2, 0},
		{"bracket with isotope and chirality", "[13C@@H](O)(Cl)F", 4, 3},
		{"explicit hydrogen folded", "C[H]", 1, 0},
		{"pyrrole", "c1cc[nH]c1", 5, 5},
		{"pyridone", "O=c1cc[nH]cc1", 7, 7},
		{"pyridine oxide", "[O-][n+]1ccccc1", 7, 7},
		{"naphthalene", "c1ccc2ccccc2c1", 10, 11},
		{"caffeine", "Cn1cnc2c1c(=O)n(C)c(=O)n2C", 14, 15},
		{"stereo bonds", "F/C=C/F", 4, 3},
		{"atom class", "[CH3:1]C", 2, 1},
		{"title after whitespace", "CCO ethanol", 3, 2},
		{"branch inside branch", "CC(C(C)C)C", 6, 5},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, err := Parse(tt.smiles)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAtoms, m.NumAtoms())
			assert.Len(t, m.Bonds, tt.wantBonds)
			assert.Equal(t, tt.smiles, m.SMILES())
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		smiles string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"unclosed ring", "C1CC"},
		{"unclosed branch", "C((C)"},
		{"unmatched close", "C)C"},
		{"branch first", "(C)C"},
		{"unknown organic symbol", "Xx"},
		{"unknown bracket element", "[Zz]"},
		{"unclosed bracket", "[CH4"},
		{"double bond symbol", "C==C"},
		{"leading bond", "=C"},
		{"trailing bond", "CC="},
		{"pentavalent carbon", "C(C)(C)(C)(C)C"},
		{"hypervalent oxygen", "CO(C)C"},
		{"aromatic outside ring", "cc"},
		{"odd aromatic ring", "c1cccc1"},
		{"pyrrole without hydrogen", "n1cccc1"},
		{"ring closes on itself", "C11"},
		{"duplicate ring bond", "C12CC12"},
		{"malformed ring number", "C%1CC"},
		{"conflicting ring bonds", "C=1CCCCC#1"},
		{"lowercase word", "hello"},
		{"empty branch", "C()C"},
		{"branch directly inside branch", "C((C))"},
		{"isotope too long", "[99999999999999999999C]"},
		{"four digit isotope", "[1234C]"},
		{"charge too long", "[C-99999999999999999999]"},
		{"three digit charge", "[N+100]"},
		{"hydrogen count too long", "[CH99999999999999999999]"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, err := Parse(tt.smiles)
			require.Error(t, err)
			assert.Nil(t, m)
			assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidSMILES), "got %v", err)
		})
	}
}

func TestParse_ImplicitHydrogens(t *testing.T) {
	t.Parallel()

	m, err := Parse("CC(=O)O")
	require.NoError(t, err)
	require.Equal(t, 4, m.NumAtoms())
	assert.Equal(t, 3, m.Atoms[0].TotalH())
	assert.Equal(t, 0, m.Atoms[1].TotalH())
	assert.Equal(t, 0, m.Atoms[2].TotalH())
	assert.Equal(t, 1, m.Atoms[3].TotalH())

	m, err = Parse("[NH4+]")
	require.NoError(t, err)
	assert.Equal(t, 4, m.Atoms[0].TotalH())
	assert.Equal(t, 1, m.Atoms[0].Charge)

	m, err = Parse("CS(=O)(=O)C")
	require.NoError(t, err)
	assert.Equal(t, 0, m.Atoms[1].TotalH(), "sulfone sulfur takes valence 6")
}

func TestParse_Rings(t *testing.T) {
	t.Parallel()

	m, err := Parse("C1CC1C")
	require.NoError(t, err)
	assert.True(t, m.Atoms[0].InRing)
	assert.True(t, m.Atoms[2].InRing)
	assert.False(t, m.Atoms[3].InRing)

	m, err = Parse("c1ccccc1c1ccccc1")
	require.NoError(t, err)
	idx := m.bondIndex(5, 6)
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, BondSingle, m.Bonds[idx].Order, "inter-ring bond is not aromatic")
}

func TestParse_KekuleIsAromatized(t *testing.T) {
	t.Parallel()

	for _, smi := range []string{"C1=CC=CC=C1", "C1=CC=NC=C1", "C1=CNC=C1", "C1=COC=C1"} {
		m, err := Parse(smi)
		require.NoError(t, err, smi)
		for i, a := range m.Atoms {
			assert.True(t, a.Aromatic, "%s atom %d", smi, i)
		}
	}

	for _, smi := range []string{"C1=CCC=C1", "O=C1C=CC(=O)C=C1", "C1=CC=CC=CC=C1"} {
		m, err := Parse(smi)
		require.NoError(t, err, smi)
		for _, a := range m.Atoms {
			assert.False(t, a.Aromatic && a.Symbol == "C", smi)
		}
	}
}

func TestParser_Capability(t *testing.T) {
	t.Parallel()

	p := NewParser()
	s, ok := p.Parse("CCO")
	require.True(t, ok)
	assert.Equal(t, "CCO", s.SMILES())

	s, ok = p.Parse("C1CC")
	assert.False(t, ok)
	assert.Nil(t, s)

	assert.NoError(t, p.Validate("c1ccccc1"))
	assert.Error(t, p.Validate("c1cccc1"))
}

func TestAllowedValences(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []int{4}, allowedValences("C", 0))
	assert.Equal(t, []int{4}, allowedValences("N", 1))
	assert.Equal(t, []int{2}, allowedValences("N", -1))
	assert.Equal(t, []int{3}, allowedValences("O", 1))
	assert.Equal(t, []int{1}, allowedValences("O", -1))
	assert.Equal(t, []int{3}, allowedValences("C", -1))
	assert.Equal(t, []int{4}, allowedValences("B", -1))
	assert.Nil(t, allowedValences("Fe", 2))
}

//Personal.AI order the ending
