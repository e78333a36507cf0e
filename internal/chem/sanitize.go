package chem

import (
	"github.com/turtacn/lipinski-analyzer/pkg/errors"
)

// kekuleBudget caps the matching search. Fused systems large enough to hit it
// are accepted without a complete search.
const kekuleBudget = 1 << 17

// sanitize turns the raw parse graph into a chemically checked molecule:
// explicit hydrogens are folded into their heavy atom, rings are perceived,
// implicit hydrogens assigned, valences checked, aromatic systems
// kekulized and Kekule rings aromatized.
func sanitize(m *Molecule) error {
	m.buildAdjacency()
	foldHydrogens(m)
	m.buildAdjacency()
	m.perceiveRings()

	for bi := range m.Bonds {
		b := &m.Bonds[bi]
		if b.Order != BondAromatic {
			continue
		}
		if !m.Atoms[b.A].Aromatic || !m.Atoms[b.B].Aromatic {
			return invalid(m, "aromatic bond between non-aromatic atoms")
		}
		if !b.InRing {
			b.Order = BondSingle
		}
	}
	for i := range m.Atoms {
		if m.Atoms[i].Aromatic && !m.Atoms[i].InRing {
			return invalid(m, "non-ring atom %d marked aromatic", i)
		}
	}

	for i := range m.Atoms {
		if err := assignImplicitH(m, i); err != nil {
			return err
		}
	}
	for i := range m.Atoms {
		if err := checkValence(m, i); err != nil {
			return err
		}
	}
	if err := kekulize(m); err != nil {
		return err
	}
	aromatize(m)
	return nil
}

func invalid(m *Molecule, format string, args ...interface{}) error {
	return errors.Newf(errors.ErrCodeInvalidSMILES, format, args...).
		WithDetail("smiles=" + m.smiles)
}

// foldHydrogens removes neutral, unlabelled hydrogen atoms singly bonded to a
// heavy atom and counts them on that atom instead.
func foldHydrogens(m *Molecule) {
	remove := make([]bool, len(m.Atoms))
	folded := false
	for i, a := range m.Atoms {
		if a.Symbol != "H" || a.Isotope != 0 || a.Charge != 0 || a.HCount != 0 || m.Degree(i) != 1 {
			continue
		}
		b := m.Bonds[m.adj[i][0]]
		j := b.Other(i)
		if m.Atoms[j].Symbol == "H" || b.Order != BondSingle {
			continue
		}
		remove[i] = true
		m.Atoms[j].HCount++
		folded = true
	}
	if !folded {
		return
	}

	index := make([]int, len(m.Atoms))
	atoms := m.Atoms[:0:0]
	for i, a := range m.Atoms {
		if remove[i] {
			index[i] = -1
			continue
		}
		index[i] = len(atoms)
		atoms = append(atoms, a)
	}
	bonds := m.Bonds[:0:0]
	for _, b := range m.Bonds {
		if remove[b.A] || remove[b.B] {
			continue
		}
		b.A, b.B = index[b.A], index[b.B]
		bonds = append(bonds, b)
	}
	m.Atoms, m.Bonds = atoms, bonds
}

// needsDouble reports whether an aromatic atom must take part in a double
// bond in the Kekule form.
func needsDouble(m *Molecule, i int) bool {
	a := &m.Atoms[i]
	if !a.Aromatic || m.hasExocyclicDouble(i) {
		return false
	}
	switch a.Symbol {
	case "C", "Si":
		return a.Charge == 0
	case "N", "P", "As":
		switch {
		case a.Charge > 0:
			return true
		case a.Charge < 0:
			return false
		}
		return a.TotalH() == 0 && m.Degree(i) == 2
	case "O", "S", "Se", "Te":
		return a.Charge > 0
	}
	return false
}

func assignImplicitH(m *Molecule, i int) error {
	a := &m.Atoms[i]
	if a.Bracket {
		return nil
	}
	vals := elements[a.Symbol].Valences
	v := m.explicitValence(i) + a.HCount

	if a.Aromatic {
		target := vals[0]
		if needsDouble(m, i) {
			target--
		}
		if h := target - v; h > 0 {
			a.ImplicitH = h
		}
		return nil
	}
	for _, t := range vals {
		if t >= v {
			a.ImplicitH = t - v
			return nil
		}
	}
	return invalid(m, "explicit valence %d for %s exceeds the allowed maximum", v, a.Symbol)
}

func checkValence(m *Molecule, i int) error {
	a := &m.Atoms[i]
	allowed := allowedValences(a.Symbol, a.Charge)
	if allowed == nil {
		return nil
	}
	total := m.explicitValence(i) + a.TotalH()
	if a.Aromatic && needsDouble(m, i) {
		total++
	}
	if limit := allowed[len(allowed)-1]; total > limit {
		return invalid(m, "valence %d for %s%s exceeds %d", total, a.Symbol, chargeSuffix(a.Charge), limit)
	}
	return nil
}

func chargeSuffix(q int) string {
	switch {
	case q > 0:
		return "+"
	case q < 0:
		return "-"
	}
	return ""
}

// kekulize checks that the aromatic atoms needing a double bond can be paired
// along aromatic bonds, which is a perfect matching on those atoms.
func kekulize(m *Molecule) error {
	n := len(m.Atoms)
	needy := make([]bool, n)
	count := 0
	for i := range m.Atoms {
		if needsDouble(m, i) {
			needy[i] = true
			count++
		}
	}
	if count == 0 {
		return nil
	}

	nbrs := make([][]int, n)
	for _, b := range m.Bonds {
		if b.Order == BondAromatic && needy[b.A] && needy[b.B] {
			nbrs[b.A] = append(nbrs[b.A], b.B)
			nbrs[b.B] = append(nbrs[b.B], b.A)
		}
	}

	// Each connected component needs an even number of atoms.
	seen := make([]bool, n)
	for start := range needy {
		if !needy[start] || seen[start] {
			continue
		}
		size := 0
		queue := []int{start}
		seen[start] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			size++
			for _, nb := range nbrs[cur] {
				if !seen[nb] {
					seen[nb] = true
					queue = append(queue, nb)
				}
			}
		}
		if size%2 != 0 {
			return invalid(m, "cannot kekulize aromatic system at atom %d", start)
		}
	}

	match := make([]int, n)
	for i := range match {
		match[i] = -1
	}
	budget := kekuleBudget
	var solve func() bool
	solve = func() bool {
		u := -1
		for i := range needy {
			if needy[i] && match[i] < 0 {
				u = i
				break
			}
		}
		if u < 0 {
			return true
		}
		for _, v := range nbrs[u] {
			if match[v] >= 0 {
				continue
			}
			if budget--; budget < 0 {
				return true
			}
			match[u], match[v] = v, u
			if solve() {
				return true
			}
			match[u], match[v] = -1, -1
		}
		return false
	}
	if !solve() {
		return invalid(m, "cannot kekulize aromatic system")
	}
	return nil
}

//Personal.AI order the ending
