package chem

// maxAromaticRing bounds the cycles considered for aromaticity.
const maxAromaticRing = 7

var aromatizable = map[string]bool{
	"C": true, "N": true, "O": true, "S": true, "P": true,
	"Se": true, "As": true, "Te": true, "B": true,
}

// aromatize perceives Huckel-aromatic rings in Kekule input and rewrites them
// with aromatic atoms and bonds, so descriptor typing sees the same graph for
// "C1=CC=CC=C1" and "c1ccccc1". Rings are evaluated on the original bond
// orders; a ring fused to an already perceived ring may count the shared
// exocyclic double bond toward its own pi system.
func aromatize(m *Molecule) {
	cycles := m.simpleCycles(maxAromaticRing)
	if len(cycles) == 0 {
		return
	}
	perceived := make([]bool, len(m.Atoms))
	done := make([]bool, len(cycles))
	aromaticBond := make(map[int]bool)

	for changed := true; changed; {
		changed = false
		for ci, cycle := range cycles {
			if done[ci] {
				continue
			}
			e, ok := ringElectrons(m, cycle, perceived)
			if !ok || e < 2 || (e-2)%4 != 0 {
				continue
			}
			done[ci] = true
			changed = true
			for k, a := range cycle {
				perceived[a] = true
				next := cycle[(k+1)%len(cycle)]
				if bi := m.bondIndex(a, next); bi >= 0 {
					aromaticBond[bi] = true
				}
			}
		}
	}

	for i, p := range perceived {
		if p {
			m.Atoms[i].Aromatic = true
		}
	}
	for bi := range aromaticBond {
		m.Bonds[bi].Order = BondAromatic
	}
}

// ringElectrons counts the pi electrons a ring would hold. ok is false when
// any atom rules the ring out.
func ringElectrons(m *Molecule, cycle []int, perceived []bool) (int, bool) {
	n := len(cycle)
	electrons := 0
	for k, i := range cycle {
		a := &m.Atoms[i]
		if a.Aromatic || !aromatizable[a.Symbol] {
			return 0, false
		}
		prev, next := cycle[(k+n-1)%n], cycle[(k+1)%n]

		inCycleDouble := false
		exo := -1
		for _, bi := range m.adj[i] {
			b := &m.Bonds[bi]
			switch b.Order {
			case BondTriple, BondQuadruple:
				return 0, false
			case BondDouble:
				j := b.Other(i)
				if j == prev || j == next {
					inCycleDouble = true
				} else {
					exo = j
				}
			}
		}

		switch {
		case inCycleDouble:
			electrons++
		case exo >= 0:
			partner := &m.Atoms[exo]
			switch {
			case perceived[exo] || partner.Aromatic:
				electrons++
			case a.Symbol == "C" && (partner.Symbol == "O" || partner.Symbol == "N" || partner.Symbol == "S"):
				// exocyclic carbonyl-like carbon donates nothing
			default:
				return 0, false
			}
		default:
			c, ok := lonePairElectrons(m, i)
			if !ok {
				return 0, false
			}
			electrons += c
		}
	}
	return electrons, true
}

// lonePairElectrons is the contribution of a ring atom with no double bond.
func lonePairElectrons(m *Molecule, i int) (int, bool) {
	a := &m.Atoms[i]
	switch a.Symbol {
	case "C":
		switch a.Charge {
		case -1:
			return 2, true
		case 1:
			return 0, true
		}
	case "N", "P", "As":
		if a.Charge == 0 && m.Degree(i)+a.TotalH() == 3 {
			return 2, true
		}
	case "O", "S", "Se", "Te":
		if a.Charge == 0 && m.Degree(i) == 2 {
			return 2, true
		}
	case "B":
		if a.Charge == 0 {
			return 0, true
		}
	}
	return 0, false
}

// simpleCycles enumerates ring cycles of at most maxSize atoms. Each cycle is
// reported once, starting from its lowest atom index.
func (m *Molecule) simpleCycles(maxSize int) [][]int {
	var cycles [][]int
	onPath := make([]bool, len(m.Atoms))
	var path []int

	var walk func(start, cur int)
	walk = func(start, cur int) {
		for _, bi := range m.adj[cur] {
			b := &m.Bonds[bi]
			if !b.InRing {
				continue
			}
			next := b.Other(cur)
			if next == start && len(path) >= 3 {
				if path[1] < path[len(path)-1] {
					cycles = append(cycles, append([]int(nil), path...))
				}
				continue
			}
			if next <= start || onPath[next] || len(path) >= maxSize {
				continue
			}
			onPath[next] = true
			path = append(path, next)
			walk(start, next)
			path = path[:len(path)-1]
			onPath[next] = false
		}
	}

	for s := range m.Atoms {
		if !m.Atoms[s].InRing {
			continue
		}
		path = append(path[:0], s)
		onPath[s] = true
		walk(s, s)
		onPath[s] = false
	}
	return cycles
}

// bondIndex returns the index of the bond joining a and b, or -1.
func (m *Molecule) bondIndex(a, b int) int {
	for _, bi := range m.adj[a] {
		if m.Bonds[bi].Other(a) == b {
			return bi
		}
	}
	return -1
}

//Personal.AI order the ending
