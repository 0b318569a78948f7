package clinical

import (
	"math"
	"strings"
	"time"
)

// Default next-visit reasons when the caller doesn't supply one.
const (
	ReasonRoutineFollowUp     = "Routine follow-up"
	ReasonMonitorUncontrolled = "Monitor uncontrolled condition"
)

// RandomGlucose resolves the random blood glucose reading: the
// dedicated field wins, otherwise the generic reading typed as random.
func (v Vitals) RandomGlucose() *float64 {
	if v.GlucoseRandom != nil {
		return v.GlucoseRandom
	}
	if v.Glucose != nil && v.GlucoseType != nil && strings.EqualFold(*v.GlucoseType, GlucoseTypeRandom) {
		return v.Glucose
	}
	return nil
}

// FastingGlucose resolves the fasting blood glucose reading.
func (v Vitals) FastingGlucose() *float64 {
	if v.GlucoseFasting != nil {
		return v.GlucoseFasting
	}
	if v.Glucose != nil && v.GlucoseType != nil && strings.EqualFold(*v.GlucoseType, GlucoseTypeFasting) {
		return v.Glucose
	}
	return nil
}

// MergedGlucose is the single glucose value used for risk tiering:
// generic reading first, then random, then fasting. Control status
// deliberately does NOT use this merge; it checks random and fasting
// independently.
func (v Vitals) MergedGlucose() *float64 {
	if v.Glucose != nil {
		return v.Glucose
	}
	if random := v.RandomGlucose(); random != nil {
		return random
	}
	return v.FastingGlucose()
}

// ComputeBMI fills the derived BMI (1 decimal) when weight and height
// are present and no BMI was supplied.
func (v *Vitals) ComputeBMI() {
	if v.Bmi != nil || v.Weight == nil || v.Height == nil || *v.Height == 0 {
		return
	}
	heightM := *v.Height / 100
	bmi := math.Round(*v.Weight/(heightM*heightM)*10) / 10
	v.Bmi = &bmi
}

// DeriveRiskTier classifies a visit's vitals. Tiers are evaluated in
// strict severity order; the first match wins.
func DeriveRiskTier(vitals Vitals) RiskTier {
	systolic := vitals.Systolic
	diastolic := vitals.Diastolic
	glucose := vitals.MergedGlucose()

	if (systolic != nil && *systolic >= 180) ||
		(diastolic != nil && *diastolic >= 110) ||
		(glucose != nil && *glucose >= 300) {
		return RiskVeryHigh
	}

	if (systolic != nil && *systolic >= 160) ||
		(diastolic != nil && *diastolic >= 100) ||
		(glucose != nil && *glucose >= 250) {
		return RiskHigh
	}

	if (systolic != nil && *systolic >= 140) ||
		(diastolic != nil && *diastolic >= 90) ||
		(glucose != nil && *glucose >= 200) {
		return RiskElevated
	}

	return RiskNormal
}

// ControlInputs carries everything control-status derivation needs.
type ControlInputs struct {
	Vitals                    Vitals
	Diagnosis                 Diagnosis
	MedicationsProvided       *bool
	MedicationsTakenRegularly *bool
	HasCurrentMedications     bool
}

// DeriveControlStatus determines whether the condition is controlled.
// Two mutually exclusive paths: once either medication flag is present
// the adherence truth table applies and vitals thresholds are bypassed
// entirely; otherwise thresholds against the diagnosis decide.
func DeriveControlStatus(in ControlInputs) ControlStatus {
	if in.MedicationsProvided != nil || in.MedicationsTakenRegularly != nil {
		return controlFromAdherence(in)
	}
	return controlFromThresholds(in.Vitals, in.Diagnosis)
}

func controlFromAdherence(in ControlInputs) ControlStatus {
	provided := in.MedicationsProvided
	taken := in.MedicationsTakenRegularly

	if provided != nil && *provided && taken != nil && *taken {
		return Controlled
	}
	if in.HasCurrentMedications && provided != nil && !*provided {
		return Uncontrolled
	}
	if provided != nil && !*provided && taken != nil && !*taken {
		return Unassigned
	}
	if taken != nil && !*taken {
		return Uncontrolled
	}
	return Unassigned
}

func controlFromThresholds(vitals Vitals, diagnosis Diagnosis) ControlStatus {
	if diagnosis.HasHTN() {
		if vitals.Systolic != nil && *vitals.Systolic >= 140 {
			return Uncontrolled
		}
		if vitals.Diastolic != nil && *vitals.Diastolic >= 90 {
			return Uncontrolled
		}
	}

	if diagnosis.HasDM() {
		if vitals.Glucose != nil && *vitals.Glucose >= 200 {
			return Uncontrolled
		}
		if random := vitals.RandomGlucose(); random != nil && *random >= 200 {
			return Uncontrolled
		}
		if fasting := vitals.FastingGlucose(); fasting != nil && *fasting >= 126 {
			return Uncontrolled
		}
	}

	return Controlled
}

// DeriveFollowUpFlag flags a visit for follow-up when any trigger
// threshold is met.
func DeriveFollowUpFlag(vitals Vitals) bool {
	if vitals.Systolic != nil && vitals.Diastolic != nil &&
		*vitals.Systolic >= 140 && *vitals.Diastolic >= 90 {
		return true
	}
	if random := vitals.RandomGlucose(); random != nil && *random >= 200 {
		return true
	}
	if fasting := vitals.FastingGlucose(); fasting != nil && *fasting >= 126 {
		return true
	}
	if vitals.Bmi != nil && *vitals.Bmi >= 30 {
		return true
	}
	return false
}

// NextVisitSchedule recommends the next visit date and default reason.
// Uncontrolled patients return sooner the higher their risk tier.
func NextVisitSchedule(control ControlStatus, risk RiskTier, visitDate time.Time) (time.Time, string) {
	if control == Uncontrolled {
		switch risk {
		case RiskVeryHigh:
			return visitDate.AddDate(0, 0, 7), ReasonMonitorUncontrolled
		case RiskHigh:
			return visitDate.AddDate(0, 0, 14), ReasonMonitorUncontrolled
		default:
			return visitDate.AddDate(0, 0, 28), ReasonMonitorUncontrolled
		}
	}
	if control == Controlled {
		return visitDate.AddDate(0, 0, 84), ReasonRoutineFollowUp
	}
	return visitDate.AddDate(0, 0, 84), ReasonMonitorUncontrolled
}
