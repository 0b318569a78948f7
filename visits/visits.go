package visits

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/healthhive/registry/access"
	"github.com/healthhive/registry/clinical"
	"github.com/healthhive/registry/errors"
	"github.com/healthhive/registry/store"
)

var (
	ErrNotFound  = fmt.Errorf("%w: visit not found", errors.NotFound)
	ErrDuplicate = fmt.Errorf("%w: visit already exists", errors.Conflict)
)

const (
	VisitTypeScreening = "screening"
	VisitTypeFollowUp  = "follow_up"
	VisitTypeEducation = "education"
)

const (
	SyncStatusPending  = "pending"
	SyncStatusSynced   = "synced"
	SyncStatusFailed   = "failed"
	SyncStatusConflict = "conflict"
)

//go:generate mockgen --build_flags=--mod=mod -source=./visits.go -destination=./test/mock_service.go -package test -aux_files=github.com/healthhive/registry/visits=repo.go Service

// Visit is an append-only clinical encounter record. Vitals are a
// nested value object in both the document and the wire shape.
type Visit struct {
	VisitId   string          `bson:"visit_id" json:"visit_id"`
	PatientId string          `bson:"patient_id" json:"patient_id"`
	VisitType string          `bson:"visit_type" json:"visit_type"`
	VisitDate time.Time       `bson:"visit_date" json:"visit_date"`
	Barangay  string          `bson:"barangay,omitempty" json:"barangay,omitempty"`
	Vitals    clinical.Vitals `bson:"vitals" json:"vitals"`

	Diagnosis          clinical.Diagnosis     `bson:"diagnosis,omitempty" json:"diagnosis,omitempty"`
	RiskTier           clinical.RiskTier      `bson:"risk_tier,omitempty" json:"risk_tier,omitempty"`
	ControlStatus      clinical.ControlStatus `bson:"control_status,omitempty" json:"control_status,omitempty"`
	FlaggedForFollowUp bool                   `bson:"flagged_for_follow_up" json:"flagged_for_follow_up"`

	CurrentMedications      []string              `bson:"current_medications,omitempty" json:"current_medications,omitempty"`
	PreviousMedications     []string              `bson:"previous_medications,omitempty" json:"previous_medications,omitempty"`
	MedicationsDispensed    []MedicationDispensed `bson:"medications_dispensed,omitempty" json:"medications_dispensed,omitempty"`
	MedicationsProvided     *bool                 `bson:"medications_provided,omitempty" json:"medications_provided,omitempty"`
	MedicationsTaken        *bool                 `bson:"medications_taken_regularly,omitempty" json:"medications_taken_regularly,omitempty"`
	NewMedicationPrescribed *string               `bson:"new_medication_prescribed,omitempty" json:"new_medication_prescribed,omitempty"`

	Treatment          *string    `bson:"treatment,omitempty" json:"treatment,omitempty"`
	NextVisitDate      *time.Time `bson:"next_visit_date,omitempty" json:"next_visit_date,omitempty"`
	NextVisitReason    *string    `bson:"next_visit_reason,omitempty" json:"next_visit_reason,omitempty"`
	ComplicationsNoted *string    `bson:"complications_noted,omitempty" json:"complications_noted,omitempty"`
	ClinicalNotes      *string    `bson:"clinical_notes,omitempty" json:"clinical_notes,omitempty"`

	RecordedBy     string     `bson:"recorded_by" json:"recorded_by"`
	RecordedByRole string     `bson:"recorded_by_role" json:"recorded_by_role"`
	SyncStatus     string     `bson:"sync_status" json:"sync_status"`
	SyncedAt       *time.Time `bson:"synced_at,omitempty" json:"synced_at,omitempty"`
	CreatedAt      time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `bson:"updated_at" json:"updated_at"`
}

// MedicationDispensed is a single line item handed out during a visit.
type MedicationDispensed struct {
	Name     string `bson:"name" json:"name"`
	Quantity int    `bson:"quantity" json:"quantity"`
	Unit     string `bson:"unit,omitempty" json:"unit,omitempty"`
}

// Filter narrows visit queries. Barangay is the caller's requested
// region; Region is the resolved scope the repository enforces.
type Filter struct {
	Barangay  *string
	Region    access.RegionFilter
	PatientId *string
	VisitType *string
	From      *time.Time
	To        *time.Time
}

// RecordResult couples a persisted visit with the non-blocking
// validation findings surfaced to the caller.
type RecordResult struct {
	Visit    *Visit            `json:"visit"`
	Warnings clinical.Findings `json:"warnings"`
}

// BulkSyncError reports a single failed item without aborting the
// batch.
type BulkSyncError struct {
	Index   int    `json:"index"`
	VisitId string `json:"visit_id,omitempty"`
	Message string `json:"message"`
}

// BulkSyncConflict reports an item whose supplied id already exists,
// attaching the record it collided with.
type BulkSyncConflict struct {
	Index    int    `json:"index"`
	VisitId  string `json:"visit_id"`
	Existing *Visit `json:"existing"`
}

// BulkSyncResult partitions a batch into disjoint outcome lists.
type BulkSyncResult struct {
	Success   []*Visit           `json:"success"`
	Errors    []BulkSyncError    `json:"errors"`
	Conflicts []BulkSyncConflict `json:"conflicts"`
}

// HistoryPoint is one visit's measurements in a patient trend series.
type HistoryPoint struct {
	VisitDate time.Time `json:"visit_date"`
	Systolic  *int      `json:"systolic,omitempty"`
	Diastolic *int      `json:"diastolic,omitempty"`
	Glucose   *float64  `json:"glucose,omitempty"`
	Weight    *float64  `json:"weight,omitempty"`
	Bmi       *float64  `json:"bmi,omitempty"`
}

// History is a patient's measurement trend over their visit timeline.
type History struct {
	PatientId string         `json:"patient_id"`
	Points    []HistoryPoint `json:"points"`
}

type Service interface {
	Record(ctx context.Context, caller access.Caller, visit *Visit) (*RecordResult, error)
	Get(ctx context.Context, caller access.Caller, visitId string) (*Visit, error)
	List(ctx context.Context, caller access.Caller, filter *Filter, pagination store.Pagination) ([]*Visit, error)
	ListByPatient(ctx context.Context, caller access.Caller, patientId string) ([]*Visit, error)
	ClinicalHistory(ctx context.Context, caller access.Caller, patientId string) (*History, error)
	BulkSync(ctx context.Context, caller access.Caller, batch []*Visit) (*BulkSyncResult, error)
}

// NewVisitId generates a visit identifier.
func NewVisitId(now time.Time) string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("VISIT-%d-%s", now.Unix(), suffix)
}
