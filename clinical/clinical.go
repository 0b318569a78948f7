package clinical

// Risk tiers in ascending severity. Tier derivation always picks the
// most severe matching tier.
type RiskTier string

const (
	RiskNormal   RiskTier = "Normal"
	RiskElevated RiskTier = "Elevated"
	RiskHigh     RiskTier = "High"
	RiskVeryHigh RiskTier = "Very High"
)

type ControlStatus string

const (
	Controlled   ControlStatus = "Controlled"
	Uncontrolled ControlStatus = "Uncontrolled"
	Unassigned   ControlStatus = "Unassigned"
)

// Diagnosis is the normalized condition tag for a visit.
type Diagnosis string

const (
	DiagnosisHTN  Diagnosis = "HTN"
	DiagnosisDM   Diagnosis = "DM"
	DiagnosisBoth Diagnosis = "HTN+DM"
)

const (
	GlucoseTypeRandom  = "Random"
	GlucoseTypeFasting = "Fasting"
)

// Vitals is the measurement snapshot embedded in a visit. All fields
// are optional; absent measurements stay nil rather than zero.
type Vitals struct {
	Systolic       *int     `bson:"systolic,omitempty" json:"systolic,omitempty"`
	Diastolic      *int     `bson:"diastolic,omitempty" json:"diastolic,omitempty"`
	Glucose        *float64 `bson:"glucose,omitempty" json:"glucose,omitempty"`
	GlucoseType    *string  `bson:"glucose_type,omitempty" json:"glucose_type,omitempty"`
	GlucoseRandom  *float64 `bson:"glucose_random,omitempty" json:"glucose_random,omitempty"`
	GlucoseFasting *float64 `bson:"glucose_fasting,omitempty" json:"glucose_fasting,omitempty"`
	Weight         *float64 `bson:"weight,omitempty" json:"weight,omitempty"`
	Height         *float64 `bson:"height,omitempty" json:"height,omitempty"`
	Bmi            *float64 `bson:"bmi,omitempty" json:"bmi,omitempty"`
}
