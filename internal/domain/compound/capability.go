package compound

// Structure is a parsed molecular structure. The analyzer treats it as opaque;
// SMILES returns the input it was parsed from so decorators can key on it.
type Structure interface {
	SMILES() string
}

// StructureParser turns SMILES text into a Structure. Parse reports false,
// and never panics, for input that is not a valid SMILES string.
type StructureParser interface {
	Parse(smiles string) (Structure, bool)
}

// DescriptorEngine computes the four Rule-of-Five descriptors for a structure
// accepted by the paired StructureParser.
type DescriptorEngine interface {
	Compute(s Structure) (Descriptors, error)
}

// Descriptors are the molecular properties scored by the Rule of Five.
type Descriptors struct {
	MolWt      float64 `json:"mol_wt"`
	LogP       float64 `json:"log_p"`
	HDonors    int     `json:"h_donors"`
	HAcceptors int     `json:"h_acceptors"`
}

//Personal.AI order the ending
