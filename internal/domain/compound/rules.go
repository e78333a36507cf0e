package compound

// Result is the classification assigned to an analyzed row.
type Result string

const (
	ResultPass    Result = "Pass"
	ResultFail    Result = "Fail"
	ResultInvalid Result = "Invalid SMILES"
)

// Results lists every Result in report order.
var Results = []Result{ResultPass, ResultFail, ResultInvalid}

// Rule-of-Five thresholds. A descriptor strictly greater than its limit is a violation.
const (
	MaxMolWt      = 500.0
	MaxLogP       = 5.0
	MaxHDonors    = 5
	MaxHAcceptors = 10
)

// Violation names one failed Rule-of-Five criterion.
type Violation string

const (
	ViolationMolWt      Violation = "MolWt>500"
	ViolationLogP       Violation = "LogP>5"
	ViolationHDonors    Violation = "HDonors>5"
	ViolationHAcceptors Violation = "HAcceptors>10"
)

// Violations tests the four criteria independently and returns the failed ones
// in a fixed order. Every criterion is evaluated; there is no early exit.
func Violations(d Descriptors) []Violation {
	var v []Violation
	if d.MolWt > MaxMolWt {
		v = append(v, ViolationMolWt)
	}
	if d.LogP > MaxLogP {
		v = append(v, ViolationLogP)
	}
	if d.HDonors > MaxHDonors {
		v = append(v, ViolationHDonors)
	}
	if d.HAcceptors > MaxHAcceptors {
		v = append(v, ViolationHAcceptors)
	}
	return v
}

// Classify maps a violation count to Pass or Fail.
func Classify(violations int) Result {
	if violations == 0 {
		return ResultPass
	}
	return ResultFail
}

//Personal.AI order the ending
