package chem

// element describes the properties the engine needs for one element.
type element struct {
	Number int
	Weight float64
	// Valences are the allowed neutral valences in ascending order. Nil means
	// the element is not valence-checked (metals and noble gases).
	Valences []int
	// Group drives how a formal charge shifts the allowed valences.
	Group int
}

// hydrogenWeight is the average atomic weight of hydrogen.
const hydrogenWeight = 1.008

// elements holds IUPAC average atomic weights.
var elements = map[string]element{
	"H":  {1, 1.008, []int{1}, 1},
	"He": {2, 4.003, nil, 18},
	"Li": {3, 6.941, []int{1}, 1},
	"Be": {4, 9.012, []int{2}, 2},
	"B":  {5, 10.812, []int{3}, 13},
	"C":  {6, 12.011, []int{4}, 14},
	"N":  {7, 14.007, []int{3}, 15},
	"O":  {8, 15.999, []int{2}, 16},
	"F":  {9, 18.998, []int{1}, 17},
	"Ne": {10, 20.18, nil, 18},
	"Na": {11, 22.99, []int{1}, 1},
	"Mg": {12, 24.305, []int{2}, 2},
	"Al": {13, 26.982, []int{3}, 13},
	"Si": {14, 28.086, []int{4}, 14},
	"P":  {15, 30.974, []int{3, 5, 7}, 15},
	"S":  {16, 32.067, []int{2, 4, 6}, 16},
	"Cl": {17, 35.453, []int{1}, 17},
	"Ar": {18, 39.948, nil, 18},
	"K":  {19, 39.098, []int{1}, 1},
	"Ca": {20, 40.078, []int{2}, 2},
	"Ti": {22, 47.867, nil, 4},
	"Cr": {24, 51.996, nil, 6},
	"Mn": {25, 54.938, nil, 7},
	"Fe": {26, 55.845, nil, 8},
	"Co": {27, 58.933, nil, 9},
	"Ni": {28, 58.693, nil, 10},
	"Cu": {29, 63.546, nil, 11},
	"Zn": {30, 65.39, nil, 12},
	"Ga": {31, 69.723, []int{3}, 13},
	"Ge": {32, 72.61, []int{4}, 14},
	"As": {33, 74.922, []int{3, 5, 7}, 15},
	"Se": {34, 78.96, []int{2, 4, 6}, 16},
	"Br": {35, 79.904, []int{1}, 17},
	"Kr": {36, 83.8, nil, 18},
	"Rb": {37, 85.468, []int{1}, 1},
	"Sr": {38, 87.62, []int{2}, 2},
	"Ag": {47, 107.868, nil, 11},
	"Cd": {48, 112.411, nil, 12},
	"Sn": {50, 118.71, nil, 14},
	"Sb": {51, 121.76, []int{3, 5, 7}, 15},
	"Te": {52, 127.6, []int{2, 4, 6}, 16},
	"I":  {53, 126.904, []int{1, 3, 5}, 17},
	"Xe": {54, 131.29, nil, 18},
	"Cs": {55, 132.905, []int{1}, 1},
	"Ba": {56, 137.327, []int{2}, 2},
	"Pt": {78, 195.078, nil, 10},
	"Au": {79, 196.967, nil, 11},
	"Hg": {80, 200.59, nil, 12},
	"Pb": {82, 207.2, nil, 14},
	"Bi": {83, 208.98, nil, 15},
}

// organicSubset lists the elements that may appear outside brackets.
var organicSubset = map[string]bool{
	"B": true, "C": true, "N": true, "O": true, "P": true, "S": true,
	"F": true, "Cl": true, "Br": true, "I": true,
}

// aromaticSymbols maps lowercase aromatic symbols to their element.
// The two-letter forms are only legal inside brackets.
var aromaticSymbols = map[string]string{
	"b": "B", "c": "C", "n": "N", "o": "O", "p": "P", "s": "S",
	"se": "Se", "as": "As", "te": "Te",
}

// allowedValences returns the valences permitted for symbol carrying charge.
// Charge shifts valence the way the isoelectronic neighbour behaves: N+ is
// tetravalent like C, O- is monovalent like F, C- is trivalent like N.
func allowedValences(symbol string, charge int) []int {
	el, ok := elements[symbol]
	if !ok || el.Valences == nil {
		return nil
	}
	if charge == 0 {
		return el.Valences
	}
	var shift int
	switch {
	case el.Group == 13:
		shift = -charge
	case el.Group == 14:
		shift = -abs(charge)
	case el.Group >= 15 && el.Group <= 17:
		shift = charge
	default:
		shift = -abs(charge)
	}
	out := make([]int, 0, len(el.Valences))
	for _, v := range el.Valences {
		if nv := v + shift; nv >= 0 {
			out = append(out, nv)
		}
	}
	if len(out) == 0 {
		out = append(out, 0)
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

//Personal.AI order the ending
