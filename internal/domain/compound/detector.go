package compound

import (
	"strings"

	"github.com/turtacn/lipinski-analyzer/pkg/errors"
)

// canonicalNames are the column names recognised as holding SMILES, in
// priority order for substring matching.
var canonicalNames = []string{"smiles", "smi", "smile", "structure"}

// MatchPhase records which detection phase accepted a column.
type MatchPhase string

const (
	// PhaseExact means the alphanumeric-normalized name equals a canonical name.
	PhaseExact MatchPhase = "exact"
	// PhaseSubstring means the lowercased name contains a canonical name.
	PhaseSubstring MatchPhase = "substring"
)

// ColumnMatch is one column accepted by the detector.
type ColumnMatch struct {
	Column string     `json:"column"`
	Phase  MatchPhase `json:"phase"`
	Term   string     `json:"term"`
}

// ColumnDetector picks the column most likely to contain SMILES strings.
// The zero value is ready to use.
type ColumnDetector struct{}

// NewColumnDetector returns a ColumnDetector.
func NewColumnDetector() *ColumnDetector { return &ColumnDetector{} }

// ErrNoSmilesColumn is returned when neither phase accepts any column.
func ErrNoSmilesColumn() *errors.AppError {
	return errors.New(errors.ErrCodeNoSmilesColumn, errors.DefaultMessageForCode(errors.ErrCodeNoSmilesColumn))
}

// Detect returns the first column whose normalized name equals a canonical
// name; failing that, the first column whose lowercased name contains one.
// Ties inside a phase go to the earlier column.
func (d *ColumnDetector) Detect(columns []string) (string, error) {
	for _, col := range columns {
		if _, ok := exactTerm(col); ok {
			return col, nil
		}
	}
	for _, col := range columns {
		if _, ok := substringTerm(col); ok {
			return col, nil
		}
	}
	return "", ErrNoSmilesColumn()
}

// Candidates lists every accepted column: exact matches first, then substring
// matches, each group in input order. Detect always returns Candidates()[0].
func (d *ColumnDetector) Candidates(columns []string) []ColumnMatch {
	var exact, partial []ColumnMatch
	for _, col := range columns {
		if term, ok := exactTerm(col); ok {
			exact = append(exact, ColumnMatch{Column: col, Phase: PhaseExact, Term: term})
			continue
		}
		if term, ok := substringTerm(col); ok {
			partial = append(partial, ColumnMatch{Column: col, Phase: PhaseSubstring, Term: term})
		}
	}
	return append(exact, partial...)
}

func exactTerm(col string) (string, bool) {
	norm := normalizeColumnName(col)
	for _, term := range canonicalNames {
		if norm == term {
			return term, true
		}
	}
	return "", false
}

func substringTerm(col string) (string, bool) {
	lower := strings.ToLower(col)
	for _, term := range canonicalNames {
		if strings.Contains(lower, term) {
			return term, true
		}
	}
	return "", false
}

// normalizeColumnName keeps ASCII letters and digits and lowercases them.
func normalizeColumnName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + ('a' - 'A'))
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteByte(c)
		}
	}
	return b.String()
}

//Personal.AI order the ending
