package clinical

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Finding is a single validation result. Errors block persistence;
// warnings and infos are surfaced alongside a successful save.
type Finding struct {
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

type Findings []Finding

// Blocking returns the error-severity findings.
func (f Findings) Blocking() Findings {
	var blocking Findings
	for _, finding := range f {
		if finding.Severity == SeverityError {
			blocking = append(blocking, finding)
		}
	}
	return blocking
}

// Notices returns the non-blocking findings.
func (f Findings) Notices() Findings {
	var notices Findings
	for _, finding := range f {
		if finding.Severity != SeverityError {
			notices = append(notices, finding)
		}
	}
	return notices
}

// VisitDraft is the subset of a visit the validator inspects.
type VisitDraft struct {
	PatientId     string
	VisitType     string
	VisitDate     *time.Time
	NextVisitDate *time.Time
	Vitals        Vitals
}

// ValidateVisit runs every clinical rule independently and returns all
// findings; rules never short-circuit each other.
func ValidateVisit(draft VisitDraft, now time.Time) Findings {
	var findings Findings
	findings = append(findings, validateBloodPressure(draft.Vitals)...)
	findings = append(findings, validateGlucose(draft.Vitals)...)
	findings = append(findings, validateAnthropometrics(draft.Vitals)...)
	if draft.VisitDate != nil {
		findings = append(findings, validateDates(*draft.VisitDate, draft.NextVisitDate, now)...)
	}
	findings = append(findings, validateRequired(draft)...)
	return findings
}

func validateBloodPressure(vitals Vitals) Findings {
	var findings Findings

	if s := vitals.Systolic; s != nil {
		if *s < 70 || *s > 250 {
			findings = append(findings, Finding{
				Field:    "systolic",
				Message:  fmt.Sprintf("Systolic BP %d mmHg is outside normal range (70-250). Please verify.", *s),
				Severity: SeverityWarning,
			})
		} else if *s < 90 {
			findings = append(findings, Finding{
				Field:    "systolic",
				Message:  fmt.Sprintf("Systolic BP %d mmHg indicates hypotension. Verify reading.", *s),
				Severity: SeverityInfo,
			})
		}
	}

	if d := vitals.Diastolic; d != nil {
		if *d < 40 || *d > 150 {
			findings = append(findings, Finding{
				Field:    "diastolic",
				Message:  fmt.Sprintf("Diastolic BP %d mmHg is outside normal range (40-150). Please verify.", *d),
				Severity: SeverityWarning,
			})
		} else if *d < 60 {
			findings = append(findings, Finding{
				Field:    "diastolic",
				Message:  fmt.Sprintf("Diastolic BP %d mmHg indicates hypotension. Verify reading.", *d),
				Severity: SeverityInfo,
			})
		}
	}

	// Physiologically invalid readings block the save.
	if vitals.Systolic != nil && vitals.Diastolic != nil && *vitals.Diastolic >= *vitals.Systolic {
		findings = append(findings, Finding{
			Field:    "blood_pressure",
			Message:  "Diastolic BP cannot be greater than or equal to systolic BP.",
			Severity: SeverityError,
		})
	}

	return findings
}

func validateGlucose(vitals Vitals) Findings {
	var findings Findings

	if g := vitals.Glucose; g != nil {
		if *g < 0 || *g > 600 {
			findings = append(findings, Finding{
				Field:    "glucose",
				Message:  fmt.Sprintf("Glucose %g mg/dL is outside valid range (0-600). Please verify.", *g),
				Severity: SeverityError,
			})
		} else if *g > 400 {
			findings = append(findings, Finding{
				Field:    "glucose",
				Message:  fmt.Sprintf("Glucose %g mg/dL is extremely high. Verify reading and consider immediate referral.", *g),
				Severity: SeverityWarning,
			})
		} else if *g < 70 {
			findings = append(findings, Finding{
				Field:    "glucose",
				Message:  fmt.Sprintf("Glucose %g mg/dL indicates hypoglycemia. Verify and monitor patient.", *g),
				Severity: SeverityWarning,
			})
		}

		if t := vitals.GlucoseType; t != nil {
			switch {
			case strings.EqualFold(*t, GlucoseTypeFasting):
				if *g > 400 {
					findings = append(findings, Finding{
						Field:    "glucose",
						Message:  fmt.Sprintf("Fasting glucose %g mg/dL is abnormally high.", *g),
						Severity: SeverityWarning,
					})
				} else if *g >= 126 {
					findings = append(findings, Finding{
						Field:    "glucose",
						Message:  fmt.Sprintf("Fasting glucose %g mg/dL meets diabetes criteria (>=126 mg/dL).", *g),
						Severity: SeverityInfo,
					})
				}
			case strings.EqualFold(*t, GlucoseTypeRandom):
				if *g >= 200 {
					findings = append(findings, Finding{
						Field:    "glucose",
						Message:  fmt.Sprintf("Random glucose %g mg/dL meets diabetes criteria (>=200 mg/dL).", *g),
						Severity: SeverityInfo,
					})
				}
			}
		}
	}

	if g := vitals.GlucoseRandom; g != nil {
		if *g < 0 || *g > 600 {
			findings = append(findings, Finding{
				Field:    "glucose_random",
				Message:  fmt.Sprintf("Random glucose %g mg/dL is outside valid range (0-600). Please verify.", *g),
				Severity: SeverityError,
			})
		} else if *g >= 200 {
			findings = append(findings, Finding{
				Field:    "glucose_random",
				Message:  fmt.Sprintf("Random glucose %g mg/dL meets diabetes criteria (>=200 mg/dL).", *g),
				Severity: SeverityInfo,
			})
		}
	}

	if g := vitals.GlucoseFasting; g != nil {
		if *g < 0 || *g > 600 {
			findings = append(findings, Finding{
				Field:    "glucose_fasting",
				Message:  fmt.Sprintf("Fasting glucose %g mg/dL is outside valid range (0-600). Please verify.", *g),
				Severity: SeverityError,
			})
		} else if *g >= 126 {
			findings = append(findings, Finding{
				Field:    "glucose_fasting",
				Message:  fmt.Sprintf("Fasting glucose %g mg/dL meets diabetes criteria (>=126 mg/dL).", *g),
				Severity: SeverityInfo,
			})
		}
	}

	return findings
}

func validateAnthropometrics(vitals Vitals) Findings {
	var findings Findings

	if w := vitals.Weight; w != nil && (*w < 20 || *w > 300) {
		findings = append(findings, Finding{
			Field:    "weight",
			Message:  fmt.Sprintf("Weight %g kg is outside typical range. Please verify.", *w),
			Severity: SeverityWarning,
		})
	}

	if h := vitals.Height; h != nil && (*h < 100 || *h > 250) {
		findings = append(findings, Finding{
			Field:    "height",
			Message:  fmt.Sprintf("Height %g cm is outside typical adult range. Please verify.", *h),
			Severity: SeverityWarning,
		})
	}

	if vitals.Weight != nil && vitals.Height != nil && *vitals.Height != 0 {
		heightM := *vitals.Height / 100
		calculated := *vitals.Weight / (heightM * heightM)

		if vitals.Bmi != nil && math.Abs(calculated-*vitals.Bmi) > 0.5 {
			findings = append(findings, Finding{
				Field:    "bmi",
				Message:  fmt.Sprintf("Provided BMI %.1f does not match calculated BMI %.1f.", *vitals.Bmi, calculated),
				Severity: SeverityWarning,
			})
		}

		if calculated < 16 {
			findings = append(findings, Finding{
				Field:    "bmi",
				Message:  fmt.Sprintf("BMI %.1f indicates severe underweight.", calculated),
				Severity: SeverityWarning,
			})
		} else if calculated > 40 {
			findings = append(findings, Finding{
				Field:    "bmi",
				Message:  fmt.Sprintf("BMI %.1f indicates severe obesity.", calculated),
				Severity: SeverityWarning,
			})
		}
	}

	return findings
}

func validateDates(visitDate time.Time, nextVisitDate *time.Time, now time.Time) Findings {
	var findings Findings

	if visitDate.After(now) {
		findings = append(findings, Finding{
			Field:    "visit_date",
			Message:  "Visit date cannot be in the future.",
			Severity: SeverityError,
		})
	}

	if nextVisitDate != nil {
		if !nextVisitDate.After(now) {
			findings = append(findings, Finding{
				Field:    "next_visit_date",
				Message:  "Next visit date must be in the future.",
				Severity: SeverityError,
			})
		}
		if !nextVisitDate.After(visitDate) {
			findings = append(findings, Finding{
				Field:    "next_visit_date",
				Message:  "Next visit date must be after current visit date.",
				Severity: SeverityError,
			})
		}
	}

	return findings
}

func validateRequired(draft VisitDraft) Findings {
	var findings Findings

	if strings.TrimSpace(draft.PatientId) == "" {
		findings = append(findings, Finding{
			Field:    "patient_id",
			Message:  "Required field 'patient_id' is missing or empty.",
			Severity: SeverityError,
		})
	}
	if strings.TrimSpace(draft.VisitType) == "" {
		findings = append(findings, Finding{
			Field:    "visit_type",
			Message:  "Required field 'visit_type' is missing or empty.",
			Severity: SeverityError,
		})
	}

	return findings
}
