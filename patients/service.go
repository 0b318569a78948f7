package patients

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/healthhive/registry/access"
	"github.com/healthhive/registry/audit"
	"github.com/healthhive/registry/clinical"
	"github.com/healthhive/registry/errors"
	"github.com/healthhive/registry/store"
)

type service struct {
	repo     Repository
	recorder audit.Recorder
	logger   *zap.SugaredLogger
}

var _ Service = &service{}

type ServiceParams struct {
	fx.In

	Repo     Repository
	Recorder audit.Recorder
	Logger   *zap.SugaredLogger
}

func NewService(p ServiceParams) (Service, error) {
	return &service{
		repo:     p.Repo,
		recorder: p.Recorder,
		logger:   p.Logger,
	}, nil
}

func (s *service) Create(ctx context.Context, patient *Patient) (*Patient, error) {
	patient.Conditions = normalizedOrOriginal(patient.Conditions)

	created, err := s.repo.Create(ctx, patient)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("patient registered",
		"patientId", created.PatientId,
		"barangay", created.Barangay,
	)

	s.recordAudit(ctx, audit.ActionCreate, created, nil)
	return created, nil
}

func (s *service) Get(ctx context.Context, caller access.Caller, patientId string) (*Patient, error) {
	patient, err := s.repo.Get(ctx, patientId)
	if err != nil {
		return nil, err
	}
	if !access.CanAccessRegion(caller, patient.Barangay) {
		return nil, fmt.Errorf("%w: no access to barangay: %s", errors.Forbidden, patient.Barangay)
	}

	s.recordAudit(ctx, audit.ActionView, patient, nil)
	return patient, nil
}

func (s *service) List(ctx context.Context, filter *Filter, pagination store.Pagination) ([]*Patient, int64, error) {
	return s.repo.List(ctx, filter, pagination)
}

func (s *service) Update(ctx context.Context, caller access.Caller, patientId string, update *Patient) (*Patient, error) {
	update.Conditions = normalizedOrOriginal(update.Conditions)

	existing, err := s.repo.Get(ctx, patientId)
	if err != nil {
		return nil, err
	}
	if !access.CanAccessRegion(caller, existing.Barangay) {
		return nil, fmt.Errorf("%w: no access to barangay: %s", errors.Forbidden, existing.Barangay)
	}
	if update.Barangay != "" && !access.CanAccessRegion(caller, update.Barangay) {
		return nil, fmt.Errorf("%w: no access to barangay: %s", errors.Forbidden, update.Barangay)
	}

	updated, err := s.repo.Update(ctx, patientId, update)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("patient updated", "patientId", patientId)

	s.recordAudit(ctx, audit.ActionUpdate, updated, diffPatients(existing, updated))
	return updated, nil
}

func (s *service) UpdateSnapshot(ctx context.Context, patientId string, snapshot *Snapshot) error {
	return s.repo.UpdateSnapshot(ctx, patientId, snapshot)
}

func (s *service) Deactivate(ctx context.Context, caller access.Caller, patientId string) error {
	patient, err := s.repo.Get(ctx, patientId)
	if err != nil {
		return err
	}
	if !access.CanAccessRegion(caller, patient.Barangay) {
		return fmt.Errorf("%w: no access to barangay: %s", errors.Forbidden, patient.Barangay)
	}

	if err := s.repo.Deactivate(ctx, patientId); err != nil {
		return err
	}
	s.logger.Infow("patient deactivated", "patientId", patientId)

	s.recordAudit(ctx, audit.ActionUpdate, patient, map[string]interface{}{
		"is_active": map[string]interface{}{"before": true, "after": false},
	})
	return nil
}

func (s *service) recordAudit(ctx context.Context, action string, patient *Patient, changes map[string]interface{}) {
	caller, err := access.CallerFromContext(ctx)
	if err != nil {
		// Internal callers (CLI, background jobs) carry no identity.
		return
	}

	s.recorder.TryRecord(ctx, &audit.Entry{
		Action:       action,
		ResourceType: audit.ResourcePatient,
		ResourceId:   patient.PatientId,
		UserId:       caller.Id,
		UserRole:     string(caller.Role),
		Barangay:     patient.Barangay,
		ChangesMade:  changes,
	})
}

// diffPatients records before/after values for the fields the update
// endpoint can change.
func diffPatients(before, after *Patient) map[string]interface{} {
	changes := map[string]interface{}{}

	record := func(field string, b, a interface{}, changed bool) {
		if changed {
			changes[field] = map[string]interface{}{"before": b, "after": a}
		}
	}

	record("first_name", before.FirstName, after.FirstName, before.FirstName != after.FirstName)
	record("last_name", before.LastName, after.LastName, before.LastName != after.LastName)
	record("sex", before.Sex, after.Sex, before.Sex != after.Sex)
	record("barangay", before.Barangay, after.Barangay, before.Barangay != after.Barangay)
	record("conditions", before.Conditions, after.Conditions, !equalStrings(before.Conditions, after.Conditions))

	if len(changes) == 0 {
		return nil
	}
	return changes
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// normalizedOrOriginal keeps the caller's labels when none of them are
// recognized chronic conditions. Recognized labels collapse to their
// canonical tags.
func normalizedOrOriginal(conditions []string) []string {
	normalized := clinical.NormalizeConditions(conditions)
	if len(normalized) == 0 {
		return conditions
	}
	return normalized
}
