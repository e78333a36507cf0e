package chem

// BondOrder is the multiplicity of a bond. Aromatic bonds are tracked apart
// from single and double so ring perception and typing can tell them apart.
type BondOrder int

const (
	BondSingle BondOrder = iota + 1
	BondDouble
	BondTriple
	BondQuadruple
	BondAromatic
)

// valence is the bond's contribution to an atom's explicit valence when the
// aromatic pi electron is accounted for separately.
func (o BondOrder) valence() int {
	switch o {
	case BondDouble:
		return 2
	case BondTriple:
		return 3
	case BondQuadruple:
		return 4
	default:
		return 1
	}
}

// Atom is one heavy atom (or a hydrogen kept as an explicit node).
type Atom struct {
	Symbol   string
	Aromatic bool
	Bracket  bool
	Isotope  int
	Charge   int
	// HCount is the hydrogen count written in brackets plus any explicit
	// hydrogen atoms folded into this atom.
	HCount int
	// ImplicitH is derived from the default valence for organic-subset atoms.
	ImplicitH int
	InRing    bool
}

// TotalH is every hydrogen attached to the atom.
func (a *Atom) TotalH() int { return a.HCount + a.ImplicitH }

// Bond joins two atoms by index into Molecule.Atoms.
type Bond struct {
	A, B   int
	Order  BondOrder
	InRing bool
}

// Other returns the atom across the bond from i.
func (b *Bond) Other(i int) int {
	if b.A == i {
		return b.B
	}
	return b.A
}

// Molecule is a parsed, sanitized structure. It implements compound.Structure.
type Molecule struct {
	Atoms  []Atom
	Bonds  []Bond
	smiles string
	// adj[i] holds the indices into Bonds of the bonds touching atom i.
	adj [][]int
}

// SMILES returns the string the molecule was parsed from.
func (m *Molecule) SMILES() string { return m.smiles }

// NumAtoms is the heavy-atom count after hydrogen folding.
func (m *Molecule) NumAtoms() int { return len(m.Atoms) }

func (m *Molecule) buildAdjacency() {
	m.adj = make([][]int, len(m.Atoms))
	for bi, b := range m.Bonds {
		m.adj[b.A] = append(m.adj[b.A], bi)
		m.adj[b.B] = append(m.adj[b.B], bi)
	}
}

// Degree is the number of explicit neighbours of atom i.
func (m *Molecule) Degree(i int) int { return len(m.adj[i]) }

// explicitValence sums bond contributions with aromatic bonds counted once.
func (m *Molecule) explicitValence(i int) int {
	v := 0
	for _, bi := range m.adj[i] {
		v += m.Bonds[bi].Order.valence()
	}
	return v
}

// hasExocyclicDouble reports a non-aromatic double bond on atom i.
func (m *Molecule) hasExocyclicDouble(i int) bool {
	for _, bi := range m.adj[i] {
		if m.Bonds[bi].Order == BondDouble {
			return true
		}
	}
	return false
}

// neighbors calls fn for each neighbour of atom i with the connecting bond.
func (m *Molecule) neighbors(i int, fn func(j int, b *Bond)) {
	for _, bi := range m.adj[i] {
		b := &m.Bonds[bi]
		fn(b.Other(i), b)
	}
}

// perceiveRings marks every bond whose endpoints stay connected once the bond
// is removed, and the atoms on those bonds, as ring members.
func (m *Molecule) perceiveRings() {
	for bi := range m.Bonds {
		b := &m.Bonds[bi]
		if m.connectedWithout(b.A, b.B, bi) {
			b.InRing = true
			m.Atoms[b.A].InRing = true
			m.Atoms[b.B].InRing = true
		}
	}
}

// connectedWithout reports whether a and b stay connected once bond skip is
// removed.
func (m *Molecule) connectedWithout(a, b, skip int) bool {
	seen := make([]bool, len(m.Atoms))
	queue := []int{a}
	seen[a] = true
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, bi := range m.adj[cur] {
			if bi == skip {
				continue
			}
			next := m.Bonds[bi].Other(cur)
			if next == b {
				return true
			}
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

//Personal.AI order the ending
