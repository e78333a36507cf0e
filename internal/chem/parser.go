package chem

import (
	"strings"
	"unicode"

	"github.com/turtacn/lipinski-analyzer/pkg/errors"
)

// branchOpening is an open '(' with the atom it hangs from and how many atoms
// existed when it opened.
type branchOpening struct {
	atom  int
	atoms int
}

// Digit limits inside bracket atoms.
const (
	maxIsotopeDigits = 3
	maxHCountDigits  = 1
	maxChargeDigits  = 2
)

type ringOpening struct {
	atom  int
	order BondOrder // 0 when no bond symbol preceded the digit
	pos   int
}

// parser is single-use; Parse creates one per input.
type parser struct {
	src     string
	pos     int
	mol     *Molecule
	prev    int
	pending BondOrder
	branch  []branchOpening
	rings   map[int]ringOpening
}

// Parse reads a SMILES string and returns the sanitized molecule. Anything
// after the first whitespace is treated as a title and ignored.
func Parse(smiles string) (*Molecule, error) {
	src := strings.TrimSpace(smiles)
	if i := strings.IndexFunc(src, unicode.IsSpace); i >= 0 {
		src = src[:i]
	}
	if src == "" {
		return nil, errors.New(errors.ErrCodeInvalidSMILES, "empty SMILES")
	}
	p := &parser{
		src:   src,
		mol:   &Molecule{smiles: smiles},
		prev:  -1,
		rings: make(map[int]ringOpening),
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	if err := sanitize(p.mol); err != nil {
		return nil, err
	}
	return p.mol, nil
}

func (p *parser) fail(format string, args ...interface{}) error {
	return errors.Newf(errors.ErrCodeInvalidSMILES, format, args...).
		WithDetail("smiles=" + p.src)
}

func (p *parser) run() error {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '(':
			if p.prev < 0 {
				return p.fail("branch opened before any atom at position %d", p.pos)
			}
			if p.pending != 0 {
				return p.fail("bond symbol before branch at position %d", p.pos)
			}
			if n := len(p.branch); n > 0 && p.branch[n-1].atoms == len(p.mol.Atoms) {
				return p.fail("branch opened directly inside another branch at position %d", p.pos)
			}
			p.branch = append(p.branch, branchOpening{atom: p.prev, atoms: len(p.mol.Atoms)})
			p.pos++
		case c == ')':
			if len(p.branch) == 0 {
				return p.fail("unmatched ')' at position %d", p.pos)
			}
			if p.pending != 0 {
				return p.fail("dangling bond at position %d", p.pos)
			}
			open := p.branch[len(p.branch)-1]
			if open.atoms == len(p.mol.Atoms) {
				return p.fail("empty branch at position %d", p.pos)
			}
			p.prev = open.atom
			p.branch = p.branch[:len(p.branch)-1]
			p.pos++
		case c == '.':
			if p.pending != 0 {
				return p.fail("bond symbol before '.' at position %d", p.pos)
			}
			p.prev = -1
			p.pos++
		case isBondSymbol(c):
			if p.pending != 0 {
				return p.fail("consecutive bond symbols at position %d", p.pos)
			}
			if p.prev < 0 {
				return p.fail("bond symbol without a preceding atom at position %d", p.pos)
			}
			p.pending = bondFor(c)
			p.pos++
		case c >= '0' && c <= '9', c == '%':
			if err := p.ringClosure(); err != nil {
				return err
			}
		case c == '[':
			if err := p.bracketAtom(); err != nil {
				return err
			}
		default:
			if err := p.organicAtom(); err != nil {
				return err
			}
		}
	}

	switch {
	case p.pending != 0:
		return p.fail("dangling bond at end of input")
	case len(p.branch) > 0:
		return p.fail("unclosed branch")
	case len(p.rings) > 0:
		for n, open := range p.rings {
			return p.fail("unclosed ring %d opened at position %d", n, open.pos)
		}
	case len(p.mol.Atoms) == 0:
		return p.fail("no atoms")
	}
	return nil
}

func isBondSymbol(c byte) bool {
	switch c {
	case '-', '=', '#', '$', ':', '/', '\\':
		return true
	}
	return false
}

func bondFor(c byte) BondOrder {
	switch c {
	case '=':
		return BondDouble
	case '#':
		return BondTriple
	case '$':
		return BondQuadruple
	case ':':
		return BondAromatic
	default:
		return BondSingle
	}
}

func (p *parser) addAtom(a Atom) error {
	idx := len(p.mol.Atoms)
	p.mol.Atoms = append(p.mol.Atoms, a)
	if p.prev >= 0 {
		order := p.pending
		if order == 0 {
			order = p.defaultOrder(p.prev, idx)
		}
		p.mol.Bonds = append(p.mol.Bonds, Bond{A: p.prev, B: idx, Order: order})
	}
	p.prev = idx
	p.pending = 0
	return nil
}

func (p *parser) defaultOrder(a, b int) BondOrder {
	if p.mol.Atoms[a].Aromatic && p.mol.Atoms[b].Aromatic {
		return BondAromatic
	}
	return BondSingle
}

func (p *parser) organicAtom() error {
	rest := p.src[p.pos:]
	for _, two := range []string{"Cl", "Br"} {
		if strings.HasPrefix(rest, two) {
			p.pos += 2
			return p.addAtom(Atom{Symbol: two})
		}
	}
	c := rest[:1]
	if organicSubset[c] {
		p.pos++
		return p.addAtom(Atom{Symbol: c})
	}
	if el, ok := aromaticSymbols[c]; ok {
		p.pos++
		return p.addAtom(Atom{Symbol: el, Aromatic: true})
	}
	return p.fail("unexpected character %q at position %d", c, p.pos)
}

func (p *parser) ringClosure() error {
	start := p.pos
	if p.prev < 0 {
		return p.fail("ring bond without a preceding atom at position %d", start)
	}
	var n int
	if p.src[p.pos] == '%' {
		if p.pos+2 >= len(p.src) || !isDigit(p.src[p.pos+1]) || !isDigit(p.src[p.pos+2]) {
			return p.fail("malformed ring number at position %d", start)
		}
		n = int(p.src[p.pos+1]-'0')*10 + int(p.src[p.pos+2]-'0')
		p.pos += 3
	} else {
		n = int(p.src[p.pos] - '0')
		p.pos++
	}

	open, ok := p.rings[n]
	if !ok {
		p.rings[n] = ringOpening{atom: p.prev, order: p.pending, pos: start}
		p.pending = 0
		return nil
	}
	delete(p.rings, n)

	if open.atom == p.prev {
		return p.fail("ring %d closes on its own atom at position %d", n, start)
	}
	order := open.order
	switch {
	case order == 0:
		order = p.pending
	case p.pending != 0 && p.pending != order:
		return p.fail("conflicting ring bond orders for ring %d", n)
	}
	if order == 0 {
		order = p.defaultOrder(open.atom, p.prev)
	}
	for _, b := range p.mol.Bonds {
		if (b.A == open.atom && b.B == p.prev) || (b.A == p.prev && b.B == open.atom) {
			return p.fail("duplicate bond from ring %d at position %d", n, start)
		}
	}
	p.mol.Bonds = append(p.mol.Bonds, Bond{A: open.atom, B: p.prev, Order: order})
	p.pending = 0
	return nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// readNumber reads the digits of s starting at i. ok is false when there are
// more than max of them.
func readNumber(s string, i, max int) (n, next int, ok bool) {
	start := i
	for i < len(s) && isDigit(s[i]) {
		if i-start == max {
			return 0, i, false
		}
		n = n*10 + int(s[i]-'0')
		i++
	}
	return n, i, true
}

// bracketAtom reads [isotope? symbol chirality? hcount? charge? class?].
func (p *parser) bracketAtom() error {
	start := p.pos
	end := strings.IndexByte(p.src[p.pos:], ']')
	if end < 0 {
		return p.fail("unclosed bracket atom at position %d", start)
	}
	body := p.src[p.pos+1 : p.pos+end]
	p.pos += end + 1

	i := 0
	var a Atom
	a.Bracket = true

	isotope, i, ok := readNumber(body, i, maxIsotopeDigits)
	if !ok {
		return p.fail("isotope too long in bracket atom at position %d", start)
	}
	a.Isotope = isotope

	sym, aromatic, n := bracketSymbol(body[i:])
	if n == 0 {
		return p.fail("unknown element in bracket atom at position %d", start)
	}
	a.Symbol, a.Aromatic = sym, aromatic
	i += n

	// Chirality carries no weight in the descriptors; skip it.
	for i < len(body) && body[i] == '@' {
		i++
	}
	if i+1 < len(body) && isChiralClass(body[i:i+2]) {
		i += 2
		for i < len(body) && isDigit(body[i]) {
			i++
		}
	}

	if i < len(body) && body[i] == 'H' {
		i++
		a.HCount = 1
		if i < len(body) && isDigit(body[i]) {
			if a.HCount, i, ok = readNumber(body, i, maxHCountDigits); !ok {
				return p.fail("hydrogen count too long in bracket atom at position %d", start)
			}
		}
	}

	if i < len(body) && (body[i] == '+' || body[i] == '-') {
		sign := 1
		if body[i] == '-' {
			sign = -1
		}
		signChar := body[i]
		i++
		mag := 1
		switch {
		case i < len(body) && isDigit(body[i]):
			if mag, i, ok = readNumber(body, i, maxChargeDigits); !ok {
				return p.fail("charge too long in bracket atom at position %d", start)
			}
		default:
			for i < len(body) && body[i] == signChar {
				mag++
				i++
			}
		}
		a.Charge = sign * mag
	}

	if i < len(body) && body[i] == ':' {
		i++
		if i == len(body) || !isDigit(body[i]) {
			return p.fail("malformed atom class at position %d", start)
		}
		for i < len(body) && isDigit(body[i]) {
			i++
		}
	}

	if i != len(body) {
		return p.fail("unexpected %q in bracket atom at position %d", body[i:], start)
	}
	return p.addAtom(a)
}

// bracketSymbol returns the element, aromaticity and consumed length.
func bracketSymbol(s string) (string, bool, int) {
	if s == "" {
		return "", false, 0
	}
	if len(s) >= 2 {
		if el, ok := aromaticSymbols[s[:2]]; ok {
			return el, true, 2
		}
		if _, ok := elements[s[:2]]; ok && unicode.IsUpper(rune(s[0])) {
			return s[:2], false, 2
		}
	}
	if el, ok := aromaticSymbols[s[:1]]; ok {
		return el, true, 1
	}
	if _, ok := elements[s[:1]]; ok {
		return s[:1], false, 1
	}
	return "", false, 0
}

func isChiralClass(s string) bool {
	switch s {
	case "TH", "AL", "SP", "TB", "OH":
		return true
	}
	return false
}

// Parser adapts Parse to the analyzer's structure-parsing capability.
type Parser struct{}

// NewParser returns a Parser.
func NewParser() *Parser { return &Parser{} }

//Personal.AI order the ending
