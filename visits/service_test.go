package visits_test

import (
	"context"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/healthhive/registry/access"
	"github.com/healthhive/registry/audit"
	auditTest "github.com/healthhive/registry/audit/test"
	"github.com/healthhive/registry/clinical"
	"github.com/healthhive/registry/errors"
	"github.com/healthhive/registry/patients"
	patientsTest "github.com/healthhive/registry/patients/test"
	"github.com/healthhive/registry/visits"
	visitsTest "github.com/healthhive/registry/visits/test"
)

var _ = Describe("Visits service", func() {
	var ctrl *gomock.Controller
	var repo *visitsTest.MockRepository
	var patientsRepo *patientsTest.MockRepository
	var recorder *auditTest.MockRecorder
	var service visits.Service

	var patient patients.Patient
	var caller access.Caller
	var ctx context.Context

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		repo = visitsTest.NewMockRepository(ctrl)
		patientsRepo = patientsTest.NewMockRepository(ctrl)
		recorder = auditTest.NewMockRecorder(ctrl)

		var err error
		service, err = visits.NewService(visits.ServiceParams{
			Repo:     repo,
			Patients: patientsRepo,
			Recorder: recorder,
			Logger:   zap.NewNop().Sugar(),
		})
		Expect(err).ToNot(HaveOccurred())

		patient = patientsTest.RandomPatient()
		patient.Conditions = []string{"HTN"}
		caller = access.Caller{
			Id:              "USR-001",
			Role:            access.RoleFieldWorker,
			AssignedRegions: []string{patient.Barangay},
		}
		ctx = context.Background()
	})

	AfterEach(func() {
		ctrl.Finish()
	})

	Describe("Record", func() {
		var visit visits.Visit

		BeforeEach(func() {
			visit = visitsTest.RandomVisit(patient.PatientId)
		})

		It("persists a derived visit and updates the patient snapshot", func() {
			visit.Vitals.Systolic = intPtr(150)
			visit.Vitals.Diastolic = intPtr(85)

			patientsRepo.EXPECT().Get(gomock.Any(), patient.PatientId).Return(&patient, nil)
			repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, v *visits.Visit) (*visits.Visit, error) {
					return v, nil
				})
			patientsRepo.EXPECT().UpdateSnapshot(gomock.Any(), patient.PatientId, gomock.Any()).
				DoAndReturn(func(_ context.Context, _ string, snapshot *patients.Snapshot) error {
					Expect(snapshot.RiskLevel).To(HaveValue(Equal("Elevated")))
					return nil
				})
			recorder.EXPECT().TryRecord(gomock.Any(), gomock.Any()).
				Do(func(_ context.Context, entry *audit.Entry) {
					Expect(entry.Action).To(Equal(audit.ActionCreate))
					Expect(entry.ResourceType).To(Equal(audit.ResourceVisit))
					Expect(entry.UserId).To(Equal(caller.Id))
				})

			result, err := service.Record(ctx, caller, &visit)
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Visit.Diagnosis).To(Equal(clinical.DiagnosisHTN))
			Expect(result.Visit.RiskTier).To(Equal(clinical.RiskElevated))
			Expect(result.Visit.ControlStatus).To(Equal(clinical.Uncontrolled))
			Expect(result.Visit.SyncStatus).To(Equal(visits.SyncStatusSynced))
			Expect(result.Visit.Barangay).To(Equal(patient.Barangay))
			Expect(result.Visit.RecordedBy).To(Equal(caller.Id))
		})

		It("fills the next visit schedule from the visit date", func() {
			visit.Vitals.Systolic = intPtr(185)
			visit.Vitals.Diastolic = intPtr(95)

			patientsRepo.EXPECT().Get(gomock.Any(), patient.PatientId).Return(&patient, nil)
			repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, v *visits.Visit) (*visits.Visit, error) {
					return v, nil
				})
			patientsRepo.EXPECT().UpdateSnapshot(gomock.Any(), patient.PatientId, gomock.Any()).Return(nil)
			recorder.EXPECT().TryRecord(gomock.Any(), gomock.Any())

			result, err := service.Record(ctx, caller, &visit)
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Visit.RiskTier).To(Equal(clinical.RiskVeryHigh))
			Expect(result.Visit.NextVisitDate).To(HaveValue(Equal(visit.VisitDate.AddDate(0, 0, 7))))
			Expect(result.Visit.NextVisitReason).To(HaveValue(Equal(clinical.ReasonMonitorUncontrolled)))
		})

		It("returns surviving warnings alongside the visit", func() {
			visit.Vitals.Systolic = intPtr(85)
			visit.Vitals.Diastolic = intPtr(65)

			patientsRepo.EXPECT().Get(gomock.Any(), patient.PatientId).Return(&patient, nil)
			repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, v *visits.Visit) (*visits.Visit, error) {
					return v, nil
				})
			patientsRepo.EXPECT().UpdateSnapshot(gomock.Any(), patient.PatientId, gomock.Any()).Return(nil)
			recorder.EXPECT().TryRecord(gomock.Any(), gomock.Any())

			result, err := service.Record(ctx, caller, &visit)
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Warnings).ToNot(BeEmpty())
			Expect(result.Warnings[0].Field).To(Equal("systolic"))
		})

		It("rejects blocking validation findings without persisting", func() {
			visit.Vitals.Systolic = intPtr(100)
			visit.Vitals.Diastolic = intPtr(110)

			patientsRepo.EXPECT().Get(gomock.Any(), patient.PatientId).Return(&patient, nil)

			_, err := service.Record(ctx, caller, &visit)
			Expect(err).To(MatchError(errors.BadRequest))
			Expect(err.Error()).To(ContainSubstring("blood_pressure"))
		})

		It("refuses callers outside the patient's barangay", func() {
			caller.AssignedRegions = []string{"Somewhere Else"}

			patientsRepo.EXPECT().Get(gomock.Any(), patient.PatientId).Return(&patient, nil)

			_, err := service.Record(ctx, caller, &visit)
			Expect(err).To(MatchError(errors.Forbidden))
		})

		It("fails when the patient does not exist", func() {
			patientsRepo.EXPECT().Get(gomock.Any(), patient.PatientId).Return(nil, patients.ErrNotFound)

			_, err := service.Record(ctx, caller, &visit)
			Expect(err).To(MatchError(errors.NotFound))
		})

		It("keeps the visit when the snapshot update fails", func() {
			patientsRepo.EXPECT().Get(gomock.Any(), patient.PatientId).Return(&patient, nil)
			repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, v *visits.Visit) (*visits.Visit, error) {
					return v, nil
				})
			patientsRepo.EXPECT().UpdateSnapshot(gomock.Any(), patient.PatientId, gomock.Any()).
				Return(patients.ErrNotFound)
			recorder.EXPECT().TryRecord(gomock.Any(), gomock.Any())

			result, err := service.Record(ctx, caller, &visit)
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Visit).ToNot(BeNil())
		})
	})

	Describe("BulkSync", func() {
		It("partitions a batch into disjoint outcome lists", func() {
			ok := visitsTest.RandomVisit(patient.PatientId)
			duplicate := visitsTest.RandomVisit(patient.PatientId)
			duplicate.VisitId = "VISIT-1700000000-deadbeef"
			missing := visitsTest.RandomVisit("PAT-does-not-exist")

			existing := duplicate
			existing.SyncStatus = visits.SyncStatusSynced

			patientsRepo.EXPECT().Get(gomock.Any(), ok.PatientId).Return(&patient, nil)
			repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, v *visits.Visit) (*visits.Visit, error) {
					return v, nil
				})
			patientsRepo.EXPECT().UpdateSnapshot(gomock.Any(), patient.PatientId, gomock.Any()).Return(nil)
			recorder.EXPECT().TryRecord(gomock.Any(), gomock.Any())

			repo.EXPECT().Get(gomock.Any(), duplicate.VisitId).Return(&existing, nil)

			patientsRepo.EXPECT().Get(gomock.Any(), missing.PatientId).Return(nil, patients.ErrNotFound)

			result, err := service.BulkSync(ctx, caller, []*visits.Visit{&ok, &duplicate, &missing})
			Expect(err).ToNot(HaveOccurred())

			Expect(result.Success).To(HaveLen(1))
			Expect(result.Conflicts).To(HaveLen(1))
			Expect(result.Conflicts[0].Index).To(Equal(1))
			Expect(result.Conflicts[0].VisitId).To(Equal(duplicate.VisitId))
			Expect(result.Conflicts[0].Existing).To(Equal(&existing))
			Expect(result.Errors).To(HaveLen(1))
			Expect(result.Errors[0].Index).To(Equal(2))
		})

		It("reports an error instead of re-recording when the duplicate check fails", func() {
			item := visitsTest.RandomVisit(patient.PatientId)
			item.VisitId = "VISIT-1700000000-cafe0001"

			repo.EXPECT().Get(gomock.Any(), item.VisitId).
				Return(nil, fmt.Errorf("connection reset"))

			result, err := service.BulkSync(ctx, caller, []*visits.Visit{&item})
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Success).To(BeEmpty())
			Expect(result.Conflicts).To(BeEmpty())
			Expect(result.Errors).To(HaveLen(1))
			Expect(result.Errors[0].VisitId).To(Equal(item.VisitId))
		})

		It("returns empty lists for an empty batch", func() {
			result, err := service.BulkSync(ctx, caller, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Success).To(BeEmpty())
			Expect(result.Errors).To(BeEmpty())
			Expect(result.Conflicts).To(BeEmpty())
		})

		It("isolates item failures from the rest of the batch", func() {
			bad := visitsTest.RandomVisit(patient.PatientId)
			bad.Vitals.Systolic = intPtr(100)
			bad.Vitals.Diastolic = intPtr(120)
			good := visitsTest.RandomVisit(patient.PatientId)

			patientsRepo.EXPECT().Get(gomock.Any(), patient.PatientId).Return(&patient, nil).Times(2)
			repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, v *visits.Visit) (*visits.Visit, error) {
					return v, nil
				})
			patientsRepo.EXPECT().UpdateSnapshot(gomock.Any(), patient.PatientId, gomock.Any()).Return(nil)
			recorder.EXPECT().TryRecord(gomock.Any(), gomock.Any())

			result, err := service.BulkSync(ctx, caller, []*visits.Visit{&bad, &good})
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Errors).To(HaveLen(1))
			Expect(result.Errors[0].Index).To(Equal(0))
			Expect(result.Success).To(HaveLen(1))
		})
	})

	Describe("Get", func() {
		It("refuses visits outside the caller's scope", func() {
			visit := visitsTest.RandomVisit(patient.PatientId)
			visit.VisitId = "VISIT-1700000000-0badcafe"
			visit.Barangay = "Somewhere Else"

			repo.EXPECT().Get(gomock.Any(), visit.VisitId).Return(&visit, nil)

			_, err := service.Get(ctx, caller, visit.VisitId)
			Expect(err).To(MatchError(errors.Forbidden))
		})
	})

	Describe("ClinicalHistory", func() {
		It("builds a chronological measurement series", func() {
			first := visitsTest.RandomVisit(patient.PatientId)
			first.VisitDate = time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
			second := visitsTest.RandomVisit(patient.PatientId)
			second.VisitDate = time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)

			patientsRepo.EXPECT().Get(gomock.Any(), patient.PatientId).Return(&patient, nil)
			repo.EXPECT().ListByPatient(gomock.Any(), patient.PatientId).
				Return([]*visits.Visit{&first, &second}, nil)

			history, err := service.ClinicalHistory(ctx, caller, patient.PatientId)
			Expect(err).ToNot(HaveOccurred())
			Expect(history.PatientId).To(Equal(patient.PatientId))
			Expect(history.Points).To(HaveLen(2))
			Expect(history.Points[0].VisitDate).To(Equal(first.VisitDate))
			Expect(history.Points[1].VisitDate).To(Equal(second.VisitDate))
		})
	})
})

func intPtr(v int) *int { return &v }
