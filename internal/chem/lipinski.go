package chem

// MolWt is the average molecular weight including every hydrogen. A labelled
// isotope contributes its mass number.
func MolWt(m *Molecule) float64 {
	var w float64
	for i := range m.Atoms {
		a := &m.Atoms[i]
		if a.Isotope > 0 {
			w += float64(a.Isotope)
		} else {
			w += elements[a.Symbol].Weight
		}
		w += float64(a.TotalH()) * hydrogenWeight
	}
	return w
}

// totalValence counts bond orders plus attached hydrogens.
func (m *Molecule) totalValence(i int) int {
	return m.explicitValence(i) + m.Atoms[i].TotalH()
}

// NumHDonors counts N-H, O-H and S-H donors:
//   - aliphatic N carrying H with valence 3, or +1 with valence 4
//   - neutral aliphatic O or S with exactly one H
//   - neutral aromatic n with one H
func NumHDonors(m *Molecule) int {
	count := 0
	for i := range m.Atoms {
		a := &m.Atoms[i]
		h := a.TotalH()
		switch {
		case a.Aromatic:
			if a.Symbol == "N" && h == 1 && a.Charge == 0 {
				count++
			}
		case a.Symbol == "N":
			v := m.totalValence(i)
			if h > 0 && (v == 3 || (a.Charge == 1 && v == 4)) {
				count++
			}
		case a.Symbol == "O" || a.Symbol == "S":
			if h == 1 && a.Charge == 0 {
				count++
			}
		}
	}
	return count
}

// NumHAcceptors counts acceptors:
//   - aliphatic O or S with one H and valence 2, unless bonded to an atom
//     double-bonded to O, N, P or S (acid hydroxyls)
//   - aliphatic O or S with no H and valence 2, or any negative charge
//   - aliphatic N of valence 3 that is not an amide-like nitrogen
//   - neutral aromatic n without H, o and s
//   - fluorine
func NumHAcceptors(m *Molecule) int {
	count := 0
	for i := range m.Atoms {
		if isAcceptor(m, i) {
			count++
		}
	}
	return count
}

func isAcceptor(m *Molecule, i int) bool {
	a := &m.Atoms[i]
	h := a.TotalH()
	if a.Symbol == "F" {
		return true
	}
	if a.Aromatic {
		switch a.Symbol {
		case "N":
			return h == 0 && a.Charge == 0
		case "O", "S":
			return a.Charge == 0
		}
		return false
	}

	switch a.Symbol {
	case "O", "S":
		v := m.totalValence(i)
		switch {
		case a.Charge < 0:
			return true
		case h == 0 && v == 2:
			return true
		case h == 1 && v == 2:
			accept := false
			m.neighbors(i, func(j int, b *Bond) {
				if b.Order == BondSingle && !hasDoubleToHetero(m, j, i, false) {
					accept = true
				}
			})
			return accept
		}
	case "N":
		if m.totalValence(i) != 3 {
			return false
		}
		amide := false
		m.neighbors(i, func(j int, b *Bond) {
			if b.Order == BondSingle && hasDoubleToHetero(m, j, i, true) {
				amide = true
			}
		})
		return !amide
	}
	return false
}

// hasDoubleToHetero reports a double bond from atom j to an aliphatic O, N,
// P or S other than skip. With acyclicOnly, ring double bonds are ignored.
func hasDoubleToHetero(m *Molecule, j, skip int, acyclicOnly bool) bool {
	found := false
	m.neighbors(j, func(k int, b *Bond) {
		if k == skip || b.Order != BondDouble || (acyclicOnly && b.InRing) {
			return
		}
		if isAliphatic(&m.Atoms[k], "O", "N", "P", "S") {
			found = true
		}
	})
	return found
}

//Personal.AI order the ending
