// Package chem is the cheminformatics engine behind the analyzer: a SMILES
// parser that sanitizes structures (valence, ring closure, aromaticity) and
// the four Rule-of-Five descriptors computed over the parsed graph.
package chem

import (
	"github.com/turtacn/lipinski-analyzer/internal/domain/compound"
	"github.com/turtacn/lipinski-analyzer/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Structure parsing capability
// ─────────────────────────────────────────────────────────────────────────────

// Parse implements compound.StructureParser. Any syntax or sanitization
// failure yields ok == false.
func (p *Parser) Parse(smiles string) (compound.Structure, bool) {
	m, err := Parse(smiles)
	if err != nil {
		return nil, false
	}
	return m, true
}

// Validate returns the reason a SMILES string is rejected, or nil.
func (p *Parser) Validate(smiles string) error {
	_, err := Parse(smiles)
	return err
}

// ─────────────────────────────────────────────────────────────────────────────
// Descriptor capability
// ─────────────────────────────────────────────────────────────────────────────

// Engine computes Rule-of-Five descriptors. It is stateless.
type Engine struct{}

// NewEngine returns an Engine.
func NewEngine() *Engine { return &Engine{} }

// Compute implements compound.DescriptorEngine. Structures produced by another
// parser are re-parsed from their SMILES.
func (e *Engine) Compute(s compound.Structure) (compound.Descriptors, error) {
	if s == nil {
		return compound.Descriptors{}, errors.New(errors.ErrCodeStructureUnsupported, "nil structure")
	}
	m, ok := s.(*Molecule)
	if !ok || m == nil {
		parsed, err := Parse(s.SMILES())
		if err != nil {
			return compound.Descriptors{}, errors.Wrap(err, errors.ErrCodeDescriptorFailed, "structure could not be re-parsed")
		}
		m = parsed
	}
	return Describe(m), nil
}

// Describe computes all four descriptors for an already parsed molecule.
func Describe(m *Molecule) compound.Descriptors {
	return compound.Descriptors{
		MolWt:      MolWt(m),
		LogP:       CrippenLogP(m),
		HDonors:    NumHDonors(m),
		HAcceptors: NumHAcceptors(m),
	}
}

var (
	_ compound.StructureParser  = (*Parser)(nil)
	_ compound.DescriptorEngine = (*Engine)(nil)
)

//Personal.AI order the ending
