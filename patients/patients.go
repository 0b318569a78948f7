package patients

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/healthhive/registry/access"
	"github.com/healthhive/registry/errors"
	"github.com/healthhive/registry/store"
)

var (
	ErrNotFound  = fmt.Errorf("%w: patient not found", errors.NotFound)
	ErrDuplicate = fmt.Errorf("%w: patient already registered", errors.Conflict)
)

//go:generate mockgen --build_flags=--mod=mod -source=./patients.go -destination=./test/mock_service.go -package test Service

type Patient struct {
	PatientId           string          `bson:"patient_id" json:"patient_id"`
	FirstName           string          `bson:"first_name" json:"first_name"`
	MiddleName          *string         `bson:"middle_name,omitempty" json:"middle_name,omitempty"`
	LastName            string          `bson:"last_name" json:"last_name"`
	DateOfBirth         *time.Time      `bson:"date_of_birth,omitempty" json:"date_of_birth,omitempty"`
	Age                 *int            `bson:"age,omitempty" json:"age,omitempty"`
	Sex                 string          `bson:"sex" json:"sex"`
	Barangay            string          `bson:"barangay" json:"barangay"`
	Purok               *string         `bson:"purok,omitempty" json:"purok,omitempty"`
	Address             *string         `bson:"address,omitempty" json:"address,omitempty"`
	ContactNumber       *string         `bson:"contact_number,omitempty" json:"contact_number,omitempty"`
	Occupation          *string         `bson:"occupation,omitempty" json:"occupation,omitempty"`
	EducationLevel      *string         `bson:"education_level,omitempty" json:"education_level,omitempty"`
	MaritalStatus       *string         `bson:"marital_status,omitempty" json:"marital_status,omitempty"`
	Conditions          []string        `bson:"conditions" json:"conditions"`
	RiskLevel           *string         `bson:"risk_level,omitempty" json:"risk_level,omitempty"`
	CurrentMedications  []string        `bson:"current_medications,omitempty" json:"current_medications,omitempty"`
	PreviousMedications []string        `bson:"previous_medications,omitempty" json:"previous_medications,omitempty"`
	MedicationsProvided *bool           `bson:"medications_provided,omitempty" json:"medications_provided,omitempty"`
	MedicationsTaken    *bool           `bson:"medications_taken_regularly,omitempty" json:"medications_taken_regularly,omitempty"`
	FlaggedForFollowUp  bool            `bson:"flagged_for_follow_up" json:"flagged_for_follow_up"`
	ConsentRecords      []ConsentRecord `bson:"consent_records,omitempty" json:"consent_records,omitempty"`
	IsActive            bool            `bson:"is_active" json:"is_active"`
	CreatedAt           time.Time       `bson:"created_at" json:"created_at"`
	CreatedBy           string          `bson:"created_by,omitempty" json:"created_by,omitempty"`
	UpdatedAt           time.Time       `bson:"updated_at" json:"updated_at"`
	UpdatedBy           string          `bson:"updated_by,omitempty" json:"updated_by,omitempty"`
}

// ConsentRecord tracks a granted or revoked data-use consent.
type ConsentRecord struct {
	ConsentType string    `bson:"consent_type" json:"consent_type"`
	Granted     bool      `bson:"granted" json:"granted"`
	Date        time.Time `bson:"date" json:"date"`
	RecordedBy  string    `bson:"recorded_by" json:"recorded_by"`
}

// Snapshot holds the patient fields that mirror the latest visit.
type Snapshot struct {
	RiskLevel           *string
	FlaggedForFollowUp  *bool
	CurrentMedications  []string
	PreviousMedications []string
	MedicationsProvided *bool
	MedicationsTaken    *bool
}

// ListItem is a patient row enriched with latest-visit data.
type ListItem struct {
	Patient         `bson:",inline"`
	LastVisitDate   *time.Time `bson:"last_visit_date,omitempty" json:"last_visit_date,omitempty"`
	NextVisitDate   *time.Time `bson:"next_visit_date,omitempty" json:"next_visit_date,omitempty"`
	ControlStatus   *string    `bson:"control_status,omitempty" json:"control_status,omitempty"`
	LatestSystolic  *int       `bson:"latest_systolic,omitempty" json:"latest_systolic,omitempty"`
	LatestDiastolic *int       `bson:"latest_diastolic,omitempty" json:"latest_diastolic,omitempty"`
	LatestGlucose   *float64   `bson:"latest_glucose,omitempty" json:"latest_glucose,omitempty"`
}

// Filter narrows patient queries. Region scoping is always applied.
type Filter struct {
	Region          access.RegionFilter
	Condition       *string
	RiskLevel       *string
	Search          *string
	IncludeInactive bool
}

type Service interface {
	Create(ctx context.Context, patient *Patient) (*Patient, error)
	Get(ctx context.Context, caller access.Caller, patientId string) (*Patient, error)
	List(ctx context.Context, filter *Filter, pagination store.Pagination) ([]*Patient, int64, error)
	Update(ctx context.Context, caller access.Caller, patientId string, update *Patient) (*Patient, error)
	UpdateSnapshot(ctx context.Context, patientId string, snapshot *Snapshot) error
	Deactivate(ctx context.Context, caller access.Caller, patientId string) error
}

// NewPatientId generates a patient identifier.
func NewPatientId(now time.Time) string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("PAT-%d-%s", now.Unix(), suffix)
}

// FullName joins the patient's name parts for search and display.
func (p *Patient) FullName() string {
	parts := []string{p.FirstName}
	if p.MiddleName != nil && *p.MiddleName != "" {
		parts = append(parts, *p.MiddleName)
	}
	parts = append(parts, p.LastName)
	return strings.Join(parts, " ")
}
