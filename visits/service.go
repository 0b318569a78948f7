package visits

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/healthhive/registry/access"
	"github.com/healthhive/registry/audit"
	"github.com/healthhive/registry/clinical"
	"github.com/healthhive/registry/errors"
	"github.com/healthhive/registry/patients"
	"github.com/healthhive/registry/store"
)

type service struct {
	repo     Repository
	patients patients.Repository
	recorder audit.Recorder
	logger   *zap.SugaredLogger
}

var _ Service = &service{}

type ServiceParams struct {
	fx.In

	Repo     Repository
	Patients patients.Repository
	Recorder audit.Recorder
	Logger   *zap.SugaredLogger
}

func NewService(p ServiceParams) (Service, error) {
	return &service{
		repo:     p.Repo,
		patients: p.Patients,
		recorder: p.Recorder,
		logger:   p.Logger,
	}, nil
}

func (s *service) Record(ctx context.Context, caller access.Caller, visit *Visit) (*RecordResult, error) {
	result, err := s.record(ctx, caller, visit)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("visit recorded",
		"visitId", result.Visit.VisitId,
		"patientId", result.Visit.PatientId,
		"riskTier", result.Visit.RiskTier,
	)
	return result, nil
}

// record runs the full ingestion pipeline for a single visit:
// authorize, validate, derive, persist, update the patient snapshot,
// audit. The audit write is best-effort and never rolls back the visit.
func (s *service) record(ctx context.Context, caller access.Caller, visit *Visit) (*RecordResult, error) {
	patient, err := s.patients.Get(ctx, visit.PatientId)
	if err != nil {
		return nil, err
	}
	if !access.CanAccessRegion(caller, patient.Barangay) {
		return nil, fmt.Errorf("%w: no access to barangay: %s", errors.Forbidden, patient.Barangay)
	}

	findings := clinical.ValidateVisit(clinical.VisitDraft{
		PatientId:     visit.PatientId,
		VisitType:     visit.VisitType,
		VisitDate:     &visit.VisitDate,
		NextVisitDate: visit.NextVisitDate,
		Vitals:        visit.Vitals,
	}, time.Now().UTC())
	if blocking := findings.Blocking(); len(blocking) > 0 {
		return nil, blockingError(blocking)
	}

	s.derive(visit, patient)

	now := time.Now().UTC()
	visit.Barangay = patient.Barangay
	visit.RecordedBy = caller.Id
	visit.RecordedByRole = string(caller.Role)
	visit.SyncStatus = SyncStatusSynced
	visit.SyncedAt = &now

	persisted, err := s.repo.Insert(ctx, visit)
	if err != nil {
		return nil, err
	}

	if err := s.updatePatientSnapshot(ctx, patient, persisted); err != nil {
		// The visit is already durable; the snapshot can be rebuilt
		// from it, so surface the inconsistency without failing.
		s.logger.Errorw("unable to update patient snapshot",
			"visitId", persisted.VisitId,
			"patientId", persisted.PatientId,
			zap.Error(err),
		)
	}

	s.recorder.TryRecord(ctx, &audit.Entry{
		Action:       audit.ActionCreate,
		ResourceType: audit.ResourceVisit,
		ResourceId:   persisted.VisitId,
		UserId:       caller.Id,
		UserRole:     string(caller.Role),
		Barangay:     persisted.Barangay,
	})

	return &RecordResult{
		Visit:    persisted,
		Warnings: findings.Notices(),
	}, nil
}

// derive fills every clinical field the caller left empty.
func (s *service) derive(visit *Visit, patient *patients.Patient) {
	if visit.Diagnosis == "" {
		visit.Diagnosis = clinical.DiagnosisFromConditions(patient.Conditions)
	}

	visit.Vitals.ComputeBMI()
	visit.RiskTier = clinical.DeriveRiskTier(visit.Vitals)
	visit.ControlStatus = clinical.DeriveControlStatus(clinical.ControlInputs{
		Vitals:                    visit.Vitals,
		Diagnosis:                 visit.Diagnosis,
		MedicationsProvided:       visit.MedicationsProvided,
		MedicationsTakenRegularly: visit.MedicationsTaken,
		HasCurrentMedications:     len(patient.CurrentMedications) > 0,
	})
	visit.FlaggedForFollowUp = clinical.DeriveFollowUpFlag(visit.Vitals)

	if visit.NextVisitDate == nil {
		nextDate, reason := clinical.NextVisitSchedule(visit.ControlStatus, visit.RiskTier, visit.VisitDate)
		visit.NextVisitDate = &nextDate
		if visit.NextVisitReason == nil {
			visit.NextVisitReason = &reason
		}
	}
}

// updatePatientSnapshot mirrors the latest visit onto the patient
// record. Medication fields fall back to the existing values when the
// visit does not mention them.
func (s *service) updatePatientSnapshot(ctx context.Context, patient *patients.Patient, visit *Visit) error {
	riskLevel := string(visit.RiskTier)
	flagged := visit.FlaggedForFollowUp

	snapshot := &patients.Snapshot{
		RiskLevel:          &riskLevel,
		FlaggedForFollowUp: &flagged,
	}
	if visit.CurrentMedications != nil {
		snapshot.CurrentMedications = visit.CurrentMedications
	}
	if visit.PreviousMedications != nil {
		snapshot.PreviousMedications = visit.PreviousMedications
	}
	if visit.MedicationsProvided != nil {
		snapshot.MedicationsProvided = visit.MedicationsProvided
	}
	if visit.MedicationsTaken != nil {
		snapshot.MedicationsTaken = visit.MedicationsTaken
	}

	return s.patients.UpdateSnapshot(ctx, patient.PatientId, snapshot)
}

func (s *service) Get(ctx context.Context, caller access.Caller, visitId string) (*Visit, error) {
	visit, err := s.repo.Get(ctx, visitId)
	if err != nil {
		return nil, err
	}
	if !access.CanAccessRegion(caller, visit.Barangay) {
		return nil, fmt.Errorf("%w: no access to barangay: %s", errors.Forbidden, visit.Barangay)
	}

	return visit, nil
}

func (s *service) List(ctx context.Context, caller access.Caller, filter *Filter, pagination store.Pagination) ([]*Visit, error) {
	scope, err := access.ResolveScope(caller, filter.Barangay)
	if err != nil {
		return nil, err
	}
	filter.Region = scope

	return s.repo.List(ctx, filter, pagination)
}

func (s *service) ListByPatient(ctx context.Context, caller access.Caller, patientId string) ([]*Visit, error) {
	patient, err := s.patients.Get(ctx, patientId)
	if err != nil {
		return nil, err
	}
	if !access.CanAccessRegion(caller, patient.Barangay) {
		return nil, fmt.Errorf("%w: no access to barangay: %s", errors.Forbidden, patient.Barangay)
	}

	return s.repo.ListByPatient(ctx, patientId)
}

func (s *service) ClinicalHistory(ctx context.Context, caller access.Caller, patientId string) (*History, error) {
	visits, err := s.ListByPatient(ctx, caller, patientId)
	if err != nil {
		return nil, err
	}

	history := &History{
		PatientId: patientId,
		Points:    make([]HistoryPoint, 0, len(visits)),
	}
	for _, visit := range visits {
		history.Points = append(history.Points, HistoryPoint{
			VisitDate: visit.VisitDate,
			Systolic:  visit.Vitals.Systolic,
			Diastolic: visit.Vitals.Diastolic,
			Glucose:   visit.Vitals.MergedGlucose(),
			Weight:    visit.Vitals.Weight,
			Bmi:       visit.Vitals.Bmi,
		})
	}

	return history, nil
}

func blockingError(blocking clinical.Findings) error {
	fields := make([]string, 0, len(blocking))
	for _, finding := range blocking {
		fields = append(fields, finding.Field)
	}
	return fmt.Errorf("%w: validation failed: %s", errors.BadRequest, strings.Join(fields, ", "))
}
