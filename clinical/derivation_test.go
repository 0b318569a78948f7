package clinical_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/healthhive/registry/clinical"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }
func boolPtr(v bool) *bool        { return &v }

var _ = Describe("Risk tier derivation", func() {
	It("returns Normal when no vitals are present", func() {
		Expect(clinical.DeriveRiskTier(clinical.Vitals{})).To(Equal(clinical.RiskNormal))
	})

	It("returns Normal for readings under every threshold", func() {
		vitals := clinical.Vitals{
			Systolic:  intPtr(120),
			Diastolic: intPtr(75),
			Glucose:   floatPtr(110),
		}
		Expect(clinical.DeriveRiskTier(vitals)).To(Equal(clinical.RiskNormal))
	})

	It("classifies elevated blood pressure", func() {
		vitals := clinical.Vitals{Systolic: intPtr(145), Diastolic: intPtr(85)}
		Expect(clinical.DeriveRiskTier(vitals)).To(Equal(clinical.RiskElevated))
	})

	It("classifies high diastolic pressure", func() {
		vitals := clinical.Vitals{Systolic: intPtr(130), Diastolic: intPtr(105)}
		Expect(clinical.DeriveRiskTier(vitals)).To(Equal(clinical.RiskHigh))
	})

	It("picks the most severe tier when thresholds disagree", func() {
		vitals := clinical.Vitals{
			Systolic: intPtr(185),
			Glucose:  floatPtr(150),
		}
		Expect(clinical.DeriveRiskTier(vitals)).To(Equal(clinical.RiskVeryHigh))
	})

	It("classifies very high glucose readings", func() {
		vitals := clinical.Vitals{Glucose: floatPtr(320)}
		Expect(clinical.DeriveRiskTier(vitals)).To(Equal(clinical.RiskVeryHigh))
	})

	It("prefers the generic glucose reading over typed fields", func() {
		vitals := clinical.Vitals{
			Glucose:        floatPtr(120),
			GlucoseRandom:  floatPtr(320),
			GlucoseFasting: floatPtr(310),
		}
		Expect(clinical.DeriveRiskTier(vitals)).To(Equal(clinical.RiskNormal))
	})

	It("falls back to the random reading when no generic value exists", func() {
		vitals := clinical.Vitals{
			GlucoseRandom:  floatPtr(260),
			GlucoseFasting: floatPtr(100),
		}
		Expect(clinical.DeriveRiskTier(vitals)).To(Equal(clinical.RiskHigh))
	})

	It("falls back to the fasting reading last", func() {
		vitals := clinical.Vitals{GlucoseFasting: floatPtr(210)}
		Expect(clinical.DeriveRiskTier(vitals)).To(Equal(clinical.RiskElevated))
	})

	It("uses a typed generic reading as the random value", func() {
		vitals := clinical.Vitals{
			Glucose:     floatPtr(255),
			GlucoseType: strPtr("random"),
		}
		Expect(vitals.RandomGlucose()).To(HaveValue(Equal(255.0)))
		Expect(clinical.DeriveRiskTier(vitals)).To(Equal(clinical.RiskHigh))
	})
})

var _ = Describe("Control status derivation", func() {
	Context("with medication flags present", func() {
		It("is Controlled when medications are provided and taken regularly", func() {
			in := clinical.ControlInputs{
				Vitals: clinical.Vitals{
					Systolic: intPtr(190),
					Glucose:  floatPtr(350),
				},
				Diagnosis:                 clinical.DiagnosisBoth,
				MedicationsProvided:       boolPtr(true),
				MedicationsTakenRegularly: boolPtr(true),
			}
			Expect(clinical.DeriveControlStatus(in)).To(Equal(clinical.Controlled))
		})

		It("is Uncontrolled when medications are on file but not dispensed", func() {
			in := clinical.ControlInputs{
				Diagnosis:             clinical.DiagnosisHTN,
				MedicationsProvided:   boolPtr(false),
				HasCurrentMedications: true,
			}
			Expect(clinical.DeriveControlStatus(in)).To(Equal(clinical.Uncontrolled))
		})

		It("is Unassigned when neither dispensed nor taken and none on file", func() {
			in := clinical.ControlInputs{
				Diagnosis:                 clinical.DiagnosisHTN,
				MedicationsProvided:       boolPtr(false),
				MedicationsTakenRegularly: boolPtr(false),
			}
			Expect(clinical.DeriveControlStatus(in)).To(Equal(clinical.Unassigned))
		})

		It("is Uncontrolled when dispensed but not taken regularly", func() {
			in := clinical.ControlInputs{
				Diagnosis:                 clinical.DiagnosisDM,
				MedicationsProvided:       boolPtr(true),
				MedicationsTakenRegularly: boolPtr(false),
			}
			Expect(clinical.DeriveControlStatus(in)).To(Equal(clinical.Uncontrolled))
		})

		It("bypasses vitals thresholds entirely", func() {
			in := clinical.ControlInputs{
				Vitals:                    clinical.Vitals{Systolic: intPtr(200), Diastolic: intPtr(120)},
				Diagnosis:                 clinical.DiagnosisHTN,
				MedicationsProvided:       boolPtr(true),
				MedicationsTakenRegularly: boolPtr(true),
			}
			Expect(clinical.DeriveControlStatus(in)).To(Equal(clinical.Controlled))
		})
	})

	Context("without medication flags", func() {
		It("is Uncontrolled for hypertension at systolic 150", func() {
			in := clinical.ControlInputs{
				Vitals:    clinical.Vitals{Systolic: intPtr(150), Diastolic: intPtr(85)},
				Diagnosis: clinical.DiagnosisHTN,
			}
			Expect(clinical.DeriveControlStatus(in)).To(Equal(clinical.Uncontrolled))
		})

		It("is Controlled for hypertension at 120/70", func() {
			in := clinical.ControlInputs{
				Vitals:    clinical.Vitals{Systolic: intPtr(120), Diastolic: intPtr(70)},
				Diagnosis: clinical.DiagnosisHTN,
			}
			Expect(clinical.DeriveControlStatus(in)).To(Equal(clinical.Controlled))
		})

		It("ignores glucose thresholds for a pure hypertension diagnosis", func() {
			in := clinical.ControlInputs{
				Vitals:    clinical.Vitals{Systolic: intPtr(120), Glucose: floatPtr(350)},
				Diagnosis: clinical.DiagnosisHTN,
			}
			Expect(clinical.DeriveControlStatus(in)).To(Equal(clinical.Controlled))
		})

		It("is Uncontrolled for diabetes at fasting glucose 130", func() {
			in := clinical.ControlInputs{
				Vitals:    clinical.Vitals{GlucoseFasting: floatPtr(130)},
				Diagnosis: clinical.DiagnosisDM,
			}
			Expect(clinical.DeriveControlStatus(in)).To(Equal(clinical.Uncontrolled))
		})

		It("checks random and fasting readings independently", func() {
			in := clinical.ControlInputs{
				Vitals: clinical.Vitals{
					GlucoseRandom:  floatPtr(150),
					GlucoseFasting: floatPtr(126),
				},
				Diagnosis: clinical.DiagnosisDM,
			}
			Expect(clinical.DeriveControlStatus(in)).To(Equal(clinical.Uncontrolled))
		})

		It("checks both conditions for a combined diagnosis", func() {
			in := clinical.ControlInputs{
				Vitals: clinical.Vitals{
					Systolic:      intPtr(120),
					Diastolic:     intPtr(70),
					GlucoseRandom: floatPtr(210),
				},
				Diagnosis: clinical.DiagnosisBoth,
			}
			Expect(clinical.DeriveControlStatus(in)).To(Equal(clinical.Uncontrolled))
		})
	})
})

var _ = Describe("Follow-up flag", func() {
	It("requires both blood pressure readings over threshold", func() {
		Expect(clinical.DeriveFollowUpFlag(clinical.Vitals{
			Systolic:  intPtr(150),
			Diastolic: intPtr(85),
		})).To(BeFalse())

		Expect(clinical.DeriveFollowUpFlag(clinical.Vitals{
			Systolic:  intPtr(150),
			Diastolic: intPtr(95),
		})).To(BeTrue())
	})

	It("flags high random glucose", func() {
		Expect(clinical.DeriveFollowUpFlag(clinical.Vitals{
			GlucoseRandom: floatPtr(200),
		})).To(BeTrue())
	})

	It("flags diabetic-range fasting glucose", func() {
		Expect(clinical.DeriveFollowUpFlag(clinical.Vitals{
			GlucoseFasting: floatPtr(126),
		})).To(BeTrue())
	})

	It("flags obesity alone", func() {
		Expect(clinical.DeriveFollowUpFlag(clinical.Vitals{
			Bmi: floatPtr(31),
		})).To(BeTrue())
	})

	It("stays unflagged for normal vitals", func() {
		Expect(clinical.DeriveFollowUpFlag(clinical.Vitals{
			Systolic:       intPtr(118),
			Diastolic:      intPtr(76),
			GlucoseFasting: floatPtr(95),
			Bmi:            floatPtr(24.5),
		})).To(BeFalse())
	})
})

var _ = Describe("Next visit schedule", func() {
	visitDate := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

	It("schedules uncontrolled very-high-risk patients in one week", func() {
		next, reason := clinical.NextVisitSchedule(clinical.Uncontrolled, clinical.RiskVeryHigh, visitDate)
		Expect(next).To(Equal(visitDate.AddDate(0, 0, 7)))
		Expect(reason).To(Equal(clinical.ReasonMonitorUncontrolled))
	})

	It("schedules uncontrolled high-risk patients in two weeks", func() {
		next, _ := clinical.NextVisitSchedule(clinical.Uncontrolled, clinical.RiskHigh, visitDate)
		Expect(next).To(Equal(visitDate.AddDate(0, 0, 14)))
	})

	It("schedules other uncontrolled patients in four weeks", func() {
		next, _ := clinical.NextVisitSchedule(clinical.Uncontrolled, clinical.RiskElevated, visitDate)
		Expect(next).To(Equal(visitDate.AddDate(0, 0, 28)))
	})

	It("schedules controlled patients in twelve weeks with a routine reason", func() {
		next, reason := clinical.NextVisitSchedule(clinical.Controlled, clinical.RiskNormal, visitDate)
		Expect(next).To(Equal(visitDate.AddDate(0, 0, 84)))
		Expect(reason).To(Equal(clinical.ReasonRoutineFollowUp))
	})

	It("schedules unassigned patients in twelve weeks with a monitoring reason", func() {
		next, reason := clinical.NextVisitSchedule(clinical.Unassigned, clinical.RiskNormal, visitDate)
		Expect(next).To(Equal(visitDate.AddDate(0, 0, 84)))
		Expect(reason).To(Equal(clinical.ReasonMonitorUncontrolled))
	})
})

var _ = Describe("BMI computation", func() {
	It("derives BMI from weight and height", func() {
		vitals := clinical.Vitals{Weight: floatPtr(70), Height: floatPtr(170)}
		vitals.ComputeBMI()
		Expect(vitals.Bmi).To(HaveValue(Equal(24.2)))
	})

	It("keeps a supplied BMI", func() {
		vitals := clinical.Vitals{Weight: floatPtr(70), Height: floatPtr(170), Bmi: floatPtr(30)}
		vitals.ComputeBMI()
		Expect(vitals.Bmi).To(HaveValue(Equal(30.0)))
	})

	It("leaves BMI unset without both measurements", func() {
		vitals := clinical.Vitals{Weight: floatPtr(70)}
		vitals.ComputeBMI()
		Expect(vitals.Bmi).To(BeNil())
	})
})

var _ = Describe("Condition normalization", func() {
	It("maps synonyms to canonical tags", func() {
		Expect(clinical.NormalizeConditions([]string{"Hypertension", "Diabetes Mellitus Type 2"})).
			To(Equal([]string{"DM", "HTN"}))
	})

	It("drops unrecognized labels", func() {
		Expect(clinical.NormalizeConditions([]string{"Asthma", "HTN"})).To(Equal([]string{"HTN"}))
	})

	It("deduplicates repeated synonyms", func() {
		Expect(clinical.NormalizeConditions([]string{"DM", "Diabetes"})).To(Equal([]string{"DM"}))
	})

	It("derives a combined diagnosis", func() {
		Expect(clinical.DiagnosisFromConditions([]string{"HTN", "Diabetes"})).To(Equal(clinical.DiagnosisBoth))
	})

	It("returns an empty diagnosis for no known conditions", func() {
		Expect(clinical.DiagnosisFromConditions([]string{"Asthma"})).To(Equal(clinical.Diagnosis("")))
	})
})
