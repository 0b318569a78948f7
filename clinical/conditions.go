package clinical

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// Patient condition lists arrive as free text; these are the synonyms
// recognized for each canonical tag.
var (
	HTNConditionNames = []string{"Hypertension", "HTN"}
	DMConditionNames  = []string{"Diabetes", "Diabetes Mellitus Type 2", "DM"}

	htnSynonyms = mapset.NewSet(HTNConditionNames...)
	dmSynonyms  = mapset.NewSet(DMConditionNames...)
)

// NormalizeConditions maps free-text condition labels to the sorted
// canonical tag set (DM, HTN). Unrecognized labels are dropped.
func NormalizeConditions(conditions []string) []string {
	normalized := mapset.NewSet[string]()
	for _, condition := range conditions {
		if htnSynonyms.Contains(condition) {
			normalized.Add(string(DiagnosisHTN))
		}
		if dmSynonyms.Contains(condition) {
			normalized.Add(string(DiagnosisDM))
		}
	}

	result := normalized.ToSlice()
	sort.Strings(result)
	return result
}

// DiagnosisFromConditions derives the visit diagnosis tag from a
// patient's condition list. Returns an empty diagnosis when no chronic
// condition is on file.
func DiagnosisFromConditions(conditions []string) Diagnosis {
	hasHTN := false
	hasDM := false
	for _, condition := range conditions {
		if htnSynonyms.Contains(condition) {
			hasHTN = true
		}
		if dmSynonyms.Contains(condition) {
			hasDM = true
		}
	}

	switch {
	case hasHTN && hasDM:
		return DiagnosisBoth
	case hasHTN:
		return DiagnosisHTN
	case hasDM:
		return DiagnosisDM
	default:
		return ""
	}
}

// HasHTN reports whether the diagnosis covers hypertension.
func (d Diagnosis) HasHTN() bool {
	return d == DiagnosisHTN || d == DiagnosisBoth
}

// HasDM reports whether the diagnosis covers diabetes.
func (d Diagnosis) HasDM() bool {
	return d == DiagnosisDM || d == DiagnosisBoth
}
