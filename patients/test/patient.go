package test

import (
	"time"

	"github.com/healthhive/registry/patients"
	"github.com/healthhive/registry/test"
)

var barangays = []string{"Poblacion", "San Isidro", "Malaya", "Bagong Silang", "Riverside"}

var conditionSets = [][]string{
	{"HTN"},
	{"DM"},
	{"HTN", "DM"},
	{"Hypertension"},
	{"Diabetes"},
}

func strp(s string) *string {
	return &s
}

func RandomBarangay() string {
	return test.Pick(barangays)
}

func RandomPatient() patients.Patient {
	dob := test.Faker.Time().TimeBetween(
		time.Now().AddDate(-80, 0, 0),
		time.Now().AddDate(-30, 0, 0),
	)
	age := int(time.Since(dob).Hours() / 24 / 365)
	return patients.Patient{
		PatientId:     patients.NewPatientId(time.Now()),
		FirstName:     test.Faker.Person().FirstName(),
		LastName:      test.Faker.Person().LastName(),
		DateOfBirth:   &dob,
		Age:           &age,
		Sex:           test.Pick([]string{"male", "female"}),
		Barangay:      RandomBarangay(),
		Purok:         strp(test.Faker.Address().BuildingNumber()),
		ContactNumber: strp(test.Faker.Phone().Number()),
		Conditions:    test.Pick(conditionSets),
		IsActive:      true,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
}
