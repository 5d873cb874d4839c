package model

// Grade is the letter grade assigned to a composite score.
//
// Design decision: We use string constants rather than iota-based
// integers because the grade is primarily a display value. The ladder
// comparison happens once, in GradeForScore, so there is nothing to
// gain from ordinal arithmetic.
type Grade string

const (
	// GradeAPlus is awarded at 90 and above.
	GradeAPlus Grade = "A+"

	// GradeA is awarded at 80 and above.
	GradeA Grade = "A"

	// GradeB is awarded at 70 and above.
	GradeB Grade = "B"

	// GradeC is awarded at 60 and above.
	GradeC Grade = "C"

	// GradeD is awarded at 50 and above.
	GradeD Grade = "D"

	// GradeF is awarded below 50.
	GradeF Grade = "F"
)

// GradeForScore maps a composite score to its letter grade.
// Thresholds are inclusive: exactly 90.0 earns an A+.
func GradeForScore(score float64) Grade {
	switch {
	case score >= 90:
		return GradeAPlus
	case score >= 80:
		return GradeA
	case score >= 70:
		return GradeB
	case score >= 60:
		return GradeC
	case score >= 50:
		return GradeD
	default:
		return GradeF
	}
}

// gradeDescriptions gives each grade a short verdict for report output.
var gradeDescriptions = map[Grade]string{
	GradeAPlus: "Exceptional page quality across all dimensions.",
	GradeA:     "Strong page quality with minor gaps.",
	GradeB:     "Good page quality with clear room to improve.",
	GradeC:     "Average page quality; several dimensions need work.",
	GradeD:     "Weak page quality; significant issues found.",
	GradeF:     "Poor page quality; fundamental issues across dimensions.",
}

// Description returns a one-line verdict for the grade. Unknown grades
// return an empty string.
func (g Grade) Description() string {
	return gradeDescriptions[g]
}

// String returns the letter grade as plain text.
func (g Grade) String() string {
	return string(g)
}
