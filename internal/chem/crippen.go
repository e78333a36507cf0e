package chem

// Wildman-Crippen atom contributions to logP (J. Chem. Inf. Comput. Sci.
// 1999, 39, 868). Types are assigned in table order; the first match wins.
const (
	crC1  = 0.1441
	crC2  = 0.0
	crC3  = -0.2035
	crC4  = -0.2051
	crC5  = -0.2783
	crC6  = 0.1551
	crC7  = 0.00170
	crC8  = 0.08452
	crC9  = -0.1444
	crC10 = -0.0516
	crC11 = 0.1193
	crC12 = -0.0967
	crC13 = -0.5443
	crC14 = 0.0
	crC15 = 0.2450
	crC16 = 0.1980
	crC17 = 0.0
	crC18 = 0.1581
	crC19 = 0.2955
	crC20 = 0.2713
	crC21 = 0.1360
	crC22 = 0.4619
	crC23 = 0.5437
	crC24 = 0.1893
	crC25 = -0.8186
	crC26 = 0.2640
	crC27 = 0.2148
	crCS  = 0.08129

	crH1 = 0.1230
	crH2 = -0.2677
	crH3 = 0.2142
	crH4 = 0.2980
	crHS = 0.1125

	crN1  = -1.0190
	crN2  = -0.7096
	crN3  = -1.0270
	crN4  = -0.5188
	crN5  = 0.08387
	crN6  = 0.1836
	crN7  = -0.3187
	crN8  = -0.4458
	crN9  = 0.01508
	crN10 = -1.950
	crN11 = -0.3239
	crN12 = -1.119
	crN13 = -0.3396
	crN14 = 0.2887
	crNS  = -0.4806

	crO1  = 0.1552
	crO2  = -0.2893
	crO3  = -0.0684
	crO4  = -0.4195
	crO5  = 0.0335
	crO6  = -0.3339
	crO7  = -1.189
	crO8  = 0.1788
	crO9  = -0.1526
	crO10 = 0.1129
	crO11 = 0.4833
	crO12 = -1.326
	crOS  = -0.1188

	crF   = 0.4202
	crCl  = 0.6895
	crBr  = 0.8456
	crI   = 0.8857
	crHal = -2.996
	crP   = 0.8612
	crS1  = 0.6482
	crS2  = -0.0024
	crS3  = 0.6237
	crMe1 = -0.3808
	crMe2 = -0.0025
)

// CrippenLogP sums atom contributions, hydrogens included.
func CrippenLogP(m *Molecule) float64 {
	var logP float64
	for i := range m.Atoms {
		a := &m.Atoms[i]
		if a.Symbol == "H" {
			logP += hydrogenNodeContribution(m, i)
			continue
		}
		logP += heavyContribution(m, i)
		if h := a.TotalH(); h > 0 {
			logP += float64(h) * hydrogenContribution(m, i)
		}
	}
	return logP
}

// neighbourView is the local environment the typing rules inspect.
type neighbourView struct {
	idx   int
	atom  *Atom
	order BondOrder
}

func (m *Molecule) view(i int) []neighbourView {
	out := make([]neighbourView, 0, len(m.adj[i]))
	m.neighbors(i, func(j int, b *Bond) {
		out = append(out, neighbourView{idx: j, atom: &m.Atoms[j], order: b.Order})
	})
	return out
}

func isAliphatic(a *Atom, symbols ...string) bool {
	if a.Aromatic {
		return false
	}
	if len(symbols) == 0 {
		return true
	}
	for _, s := range symbols {
		if a.Symbol == s {
			return true
		}
	}
	return false
}

var heteroForCarbon = []string{"N", "O", "P", "S", "F", "Cl", "Br", "I"}

func heavyContribution(m *Molecule, i int) float64 {
	a := &m.Atoms[i]
	switch a.Symbol {
	case "C":
		if a.Aromatic {
			return aromaticCarbonType(m, i)
		}
		return aliphaticCarbonType(m, i)
	case "N":
		return nitrogenType(m, i)
	case "O":
		return oxygenType(m, i)
	case "F", "Cl", "Br", "I":
		return halogenType(a)
	case "P":
		return crP
	case "S":
		switch {
		case a.Aromatic:
			return crS3
		case a.Charge != 0:
			return crS2
		}
		return crS1
	case "Li", "Na", "K", "Rb", "Cs":
		if a.Charge > 0 {
			return crHal
		}
		return crMe1
	case "Be", "Mg", "Ca", "Sr", "Ba":
		return crMe1
	}
	return crMe2
}

func halogenType(a *Atom) float64 {
	if a.Charge < 0 || (a.Symbol == "I" && a.Charge > 0) {
		return crHal
	}
	switch a.Symbol {
	case "F":
		return crF
	case "Cl":
		return crCl
	case "Br":
		return crBr
	}
	return crI
}

func aliphaticCarbonType(m *Molecule, i int) float64 {
	a := &m.Atoms[i]
	h := a.TotalH()
	nb := m.view(i)
	deg := len(nb)
	sp3 := deg+h == 4 && m.explicitValence(i) == deg

	allAliphaticC, allAliphatic, hasHetero, hasAromatic := true, true, false, false
	var doubleC, doubleHetero, doubleAromatic, triple bool
	otherElement := false
	for _, n := range nb {
		if !isAliphatic(n.atom, "C") {
			allAliphaticC = false
		}
		if n.atom.Aromatic {
			allAliphatic = false
			hasAromatic = true
		}
		if isAliphatic(n.atom, heteroForCarbon...) {
			hasHetero = true
		}
		if !n.atom.Aromatic && !isAliphatic(n.atom, "C", "N", "O", "P", "S", "F", "Cl", "Br", "I", "H") {
			otherElement = true
		}
		switch n.order {
		case BondDouble:
			switch {
			case n.atom.Symbol == "C" && n.atom.Aromatic:
				doubleAromatic = true
			case n.atom.Symbol == "C":
				doubleC = true
			case !n.atom.Aromatic:
				doubleHetero = true
			}
		case BondTriple:
			triple = true
		}
	}

	switch {
	case h == 4:
		return crC1
	case sp3 && allAliphaticC && ((h == 3 && deg == 1) || (h == 2 && deg == 2)):
		return crC1
	case sp3 && allAliphaticC && ((h == 1 && deg == 3) || (h == 0 && deg == 4)):
		return crC2
	case sp3 && hasHetero && allAliphatic && (h == 3 || h == 2):
		return crC3
	case sp3 && hasHetero && allAliphatic && (h == 1 || h == 0):
		return crC4
	case doubleHetero:
		return crC5
	case doubleC && allAliphatic:
		return crC6
	case triple:
		return crC7
	case sp3 && hasAromatic && h == 3:
		if nb[0].atom.Symbol == "C" {
			return crC8
		}
		return crC9
	case sp3 && hasAromatic && h == 2:
		return crC10
	case sp3 && hasAromatic && h == 1:
		return crC11
	case sp3 && hasAromatic && h == 0:
		return crC12
	case (doubleC && hasAromatic) || doubleAromatic:
		return crC26
	case sp3 && otherElement:
		return crC27
	}
	return crCS
}

func aromaticCarbonType(m *Molecule, i int) float64 {
	a := &m.Atoms[i]
	h := a.TotalH()
	nb := m.view(i)

	aromaticBonds := 0
	var single, double *Atom
	for _, n := range nb {
		switch n.order {
		case BondAromatic:
			aromaticBonds++
		case BondSingle:
			single = n.atom
		case BondDouble:
			double = n.atom
		}
	}

	if h == 0 && single != nil && !single.Aromatic &&
		!isAliphatic(single, "C", "N", "O", "S", "F", "Cl", "Br", "I", "H") {
		return crC13
	}
	for _, n := range nb {
		switch n.atom.Symbol {
		case "F":
			return crC14
		case "Cl":
			return crC15
		case "Br":
			return crC16
		case "I":
			return crC17
		}
	}
	switch {
	case h > 0:
		return crC18
	case aromaticBonds >= 3:
		return crC19
	case single != nil && single.Aromatic:
		return crC20
	case single != nil && single.Symbol == "C":
		return crC21
	case single != nil && single.Symbol == "N":
		return crC22
	case single != nil && single.Symbol == "O":
		return crC23
	case single != nil && single.Symbol == "S":
		return crC24
	case double != nil && (double.Symbol == "C" || double.Symbol == "N" || double.Symbol == "O"):
		return crC25
	}
	return crCS
}

func nitrogenType(m *Molecule, i int) float64 {
	a := &m.Atoms[i]
	if a.Aromatic {
		switch {
		case a.Charge == 0:
			return crN11
		case a.Charge > 0:
			return crN12
		}
		return crNS
	}

	h := a.TotalH()
	nb := m.view(i)
	deg := len(nb)
	var anyAromatic, double, triple bool
	for _, n := range nb {
		if n.atom.Aromatic {
			anyAromatic = true
		}
		switch n.order {
		case BondDouble:
			double = true
		case BondTriple:
			triple = true
		}
	}

	if a.Charge == 0 {
		switch {
		case h == 2 && deg == 1 && !anyAromatic:
			return crN1
		case h == 1 && deg == 2 && !double && !anyAromatic:
			return crN2
		case h == 2 && deg == 1 && anyAromatic:
			return crN3
		case h == 1 && deg == 2 && !double && anyAromatic:
			return crN4
		case h == 1 && double:
			return crN5
		case h == 0 && double && deg == 2:
			return crN6
		case h == 0 && deg == 3 && !double && !anyAromatic:
			return crN7
		case h == 0 && deg == 3 && !double && anyAromatic:
			return crN8
		case triple:
			return crN9
		}
		return crNS
	}

	if a.Charge > 0 {
		switch {
		case h > 0:
			return crN10
		case deg == 4 || (double && deg == 3):
			return crN13
		case triple:
			return crN14
		}
		return crNS
	}
	return crN14
}

func oxygenType(m *Molecule, i int) float64 {
	a := &m.Atoms[i]
	if a.Aromatic {
		return crO1
	}
	if a.TotalH() > 0 {
		return crO2
	}
	nb := m.view(i)

	if len(nb) == 2 && nb[0].order == BondSingle && nb[1].order == BondSingle {
		if nb[0].atom.Aromatic || nb[1].atom.Aromatic {
			return crO4
		}
		return crO3
	}

	if len(nb) == 1 && nb[0].order == BondDouble {
		x := nb[0]
		switch {
		case x.atom.Symbol == "N" || x.atom.Symbol == "O":
			return crO5
		case x.atom.Symbol == "C" && x.atom.Aromatic:
			return crO8
		case x.atom.Symbol == "C":
			return carbonylOxygenType(m, x.idx, i)
		}
		return crOS
	}

	if len(nb) == 1 && a.Charge < 0 {
		x := nb[0]
		switch x.atom.Symbol {
		case "N":
			return crO5
		case "S":
			return crO6
		case "P":
			return crO7
		case "C":
			for _, n := range m.view(x.idx) {
				if n.idx != i && n.order == BondDouble && n.atom.Symbol == "O" {
					return crO12
				}
			}
		}
	}
	return crOS
}

// carbonylOxygenType types the oxygen o double-bonded to aliphatic carbon c.
func carbonylOxygenType(m *Molecule, c, o int) float64 {
	var others []neighbourView
	for _, n := range m.view(c) {
		if n.idx != o {
			others = append(others, n)
		}
	}
	if len(others) == 0 {
		return crO9
	}
	for _, n := range others {
		if n.atom.Aromatic {
			return crO10
		}
	}
	for _, n := range others {
		if n.atom.Symbol == "C" {
			return crO9
		}
	}
	if len(others) == 1 && others[0].order == BondDouble && others[0].atom.Symbol == "O" {
		return crO9
	}
	if len(others) == 2 {
		return crO11
	}
	return crOS
}

// hydrogenContribution types a hydrogen attached to heavy atom i.
func hydrogenContribution(m *Molecule, i int) float64 {
	a := &m.Atoms[i]
	switch a.Symbol {
	case "C", "H":
		return crH1
	case "N":
		return crH3
	case "O":
		return hydroxylHydrogenType(m, i)
	}
	return crH2
}

func hydroxylHydrogenType(m *Molecule, o int) float64 {
	nb := m.view(o)
	if len(nb) == 0 {
		return crHS
	}
	x := nb[0]
	switch {
	case x.atom.Symbol == "N":
		return crH3
	case x.atom.Symbol == "O" || x.atom.Symbol == "S":
		return crH4
	case x.atom.Symbol == "C" && !x.atom.Aromatic:
		for _, n := range m.view(x.idx) {
			if n.idx == o || n.order != BondDouble {
				continue
			}
			switch n.atom.Symbol {
			case "C", "N", "O", "S":
				return crH4
			}
		}
		if m.Degree(x.idx)+x.atom.TotalH() == 4 {
			return crH2
		}
		return crHS
	}
	return crH2
}

func hydrogenNodeContribution(m *Molecule, i int) float64 {
	if m.Degree(i) != 1 {
		return crHS
	}
	var parent int
	m.neighbors(i, func(j int, _ *Bond) { parent = j })
	return hydrogenContribution(m, parent)
}

//Personal.AI order the ending
