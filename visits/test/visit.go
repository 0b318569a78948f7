package test

import (
	"time"

	"github.com/healthhive/registry/clinical"
	"github.com/healthhive/registry/test"
	"github.com/healthhive/registry/visits"
)

func intp(v int) *int {
	return &v
}

func floatp(v float64) *float64 {
	return &v
}

// RandomVisit returns an unrecorded visit draft with plausible vitals.
func RandomVisit(patientId string) visits.Visit {
	visitDate := test.Faker.Time().TimeBetween(
		time.Now().AddDate(0, -6, 0),
		time.Now().AddDate(0, 0, -1),
	)
	return visits.Visit{
		PatientId: patientId,
		VisitType: test.Pick([]string{
			visits.VisitTypeScreening,
			visits.VisitTypeFollowUp,
			visits.VisitTypeEducation,
		}),
		VisitDate: visitDate.UTC(),
		Vitals: clinical.Vitals{
			Systolic:  intp(test.Rand.Intn(80) + 100),
			Diastolic: intp(test.Rand.Intn(40) + 60),
			Weight:    floatp(float64(test.Rand.Intn(60) + 45)),
			Height:    floatp(float64(test.Rand.Intn(40) + 145)),
		},
	}
}
