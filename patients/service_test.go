package patients_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/healthhive/registry/access"
	"github.com/healthhive/registry/audit"
	auditTest "github.com/healthhive/registry/audit/test"
	"github.com/healthhive/registry/errors"
	"github.com/healthhive/registry/patients"
	patientsTest "github.com/healthhive/registry/patients/test"
)

var _ = Describe("Patients service", func() {
	var ctrl *gomock.Controller
	var repo *patientsTest.MockRepository
	var recorder *auditTest.MockRecorder
	var service patients.Service

	var caller access.Caller
	var ctx context.Context

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		repo = patientsTest.NewMockRepository(ctrl)
		recorder = auditTest.NewMockRecorder(ctrl)

		var err error
		service, err = patients.NewService(patients.ServiceParams{
			Repo:     repo,
			Recorder: recorder,
			Logger:   zap.NewNop().Sugar(),
		})
		Expect(err).ToNot(HaveOccurred())

		caller = access.Caller{
			Id:              "USR-001",
			Role:            access.RoleNurse,
			AssignedRegions: []string{"Poblacion", "Riverside"},
		}
		ctx = access.WithCaller(context.Background(), caller)
	})

	AfterEach(func() {
		ctrl.Finish()
	})

	Describe("Create", func() {
		var patient patients.Patient

		BeforeEach(func() {
			patient = patientsTest.RandomPatient()
			patient.Conditions = []string{"Hypertension", "Diabetes Mellitus Type 2"}
		})

		It("normalizes conditions and audits the registration", func() {
			repo.EXPECT().Create(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, p *patients.Patient) (*patients.Patient, error) {
					Expect(p.Conditions).To(Equal([]string{"DM", "HTN"}))
					return p, nil
				})
			recorder.EXPECT().TryRecord(gomock.Any(), gomock.Any()).
				Do(func(_ context.Context, entry *audit.Entry) {
					Expect(entry.Action).To(Equal(audit.ActionCreate))
					Expect(entry.ResourceType).To(Equal(audit.ResourcePatient))
					Expect(entry.UserId).To(Equal(caller.Id))
					Expect(entry.Barangay).To(Equal(patient.Barangay))
				})

			created, err := service.Create(ctx, &patient)
			Expect(err).ToNot(HaveOccurred())
			Expect(created.Conditions).To(Equal([]string{"DM", "HTN"}))
		})

		It("keeps unrecognized condition labels as supplied", func() {
			patient.Conditions = []string{"Asthma"}

			repo.EXPECT().Create(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, p *patients.Patient) (*patients.Patient, error) {
					Expect(p.Conditions).To(Equal([]string{"Asthma"}))
					return p, nil
				})
			recorder.EXPECT().TryRecord(gomock.Any(), gomock.Any())

			_, err := service.Create(ctx, &patient)
			Expect(err).ToNot(HaveOccurred())
		})

		It("surfaces duplicate registrations as conflicts", func() {
			repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, patients.ErrDuplicate)

			_, err := service.Create(ctx, &patient)
			Expect(err).To(MatchError(errors.Conflict))
		})

		It("skips the audit trail for internal callers", func() {
			repo.EXPECT().Create(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, p *patients.Patient) (*patients.Patient, error) {
					return p, nil
				})

			_, err := service.Create(context.Background(), &patient)
			Expect(err).ToNot(HaveOccurred())
		})
	})

	Describe("Get", func() {
		It("audits the view", func() {
			patient := patientsTest.RandomPatient()
			patient.Barangay = "Poblacion"

			repo.EXPECT().Get(gomock.Any(), patient.PatientId).Return(&patient, nil)
			recorder.EXPECT().TryRecord(gomock.Any(), gomock.Any()).
				Do(func(_ context.Context, entry *audit.Entry) {
					Expect(entry.Action).To(Equal(audit.ActionView))
					Expect(entry.ResourceId).To(Equal(patient.PatientId))
				})

			result, err := service.Get(ctx, caller, patient.PatientId)
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(Equal(&patient))
		})

		It("refuses callers outside the patient's barangay without auditing", func() {
			patient := patientsTest.RandomPatient()
			patient.Barangay = "San Isidro"

			repo.EXPECT().Get(gomock.Any(), patient.PatientId).Return(&patient, nil)

			_, err := service.Get(ctx, caller, patient.PatientId)
			Expect(err).To(MatchError(errors.Forbidden))
		})
	})

	Describe("Update", func() {
		It("records changed fields in the audit entry", func() {
			existing := patientsTest.RandomPatient()
			existing.Barangay = "Poblacion"
			update := existing
			update.Barangay = "Riverside"

			repo.EXPECT().Get(gomock.Any(), existing.PatientId).Return(&existing, nil)
			repo.EXPECT().Update(gomock.Any(), existing.PatientId, gomock.Any()).Return(&update, nil)
			recorder.EXPECT().TryRecord(gomock.Any(), gomock.Any()).
				Do(func(_ context.Context, entry *audit.Entry) {
					Expect(entry.Action).To(Equal(audit.ActionUpdate))
					Expect(entry.ChangesMade).To(HaveKey("barangay"))
				})

			updated, err := service.Update(ctx, caller, existing.PatientId, &update)
			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Barangay).To(Equal("Riverside"))
		})

		It("surfaces missing patients", func() {
			update := patientsTest.RandomPatient()
			repo.EXPECT().Get(gomock.Any(), update.PatientId).Return(nil, patients.ErrNotFound)

			_, err := service.Update(ctx, caller, update.PatientId, &update)
			Expect(err).To(MatchError(errors.NotFound))
		})

		It("refuses moving a patient into an unassigned barangay", func() {
			existing := patientsTest.RandomPatient()
			existing.Barangay = "Poblacion"
			update := existing
			update.Barangay = "San Isidro"

			repo.EXPECT().Get(gomock.Any(), existing.PatientId).Return(&existing, nil)

			_, err := service.Update(ctx, caller, existing.PatientId, &update)
			Expect(err).To(MatchError(errors.Forbidden))
		})
	})

	Describe("Deactivate", func() {
		It("audits the deactivation with the is_active transition", func() {
			patient := patientsTest.RandomPatient()
			patient.Barangay = "Poblacion"

			repo.EXPECT().Get(gomock.Any(), patient.PatientId).Return(&patient, nil)
			repo.EXPECT().Deactivate(gomock.Any(), patient.PatientId).Return(nil)
			recorder.EXPECT().TryRecord(gomock.Any(), gomock.Any()).
				Do(func(_ context.Context, entry *audit.Entry) {
					Expect(entry.ChangesMade).To(HaveKey("is_active"))
				})

			Expect(service.Deactivate(ctx, caller, patient.PatientId)).To(Succeed())
		})
	})

	Describe("UpdateSnapshot", func() {
		It("passes through without touching the audit trail", func() {
			patient := patientsTest.RandomPatient()
			snapshot := &patients.Snapshot{}

			repo.EXPECT().UpdateSnapshot(gomock.Any(), patient.PatientId, snapshot).Return(nil)

			Expect(service.UpdateSnapshot(ctx, patient.PatientId, snapshot)).To(Succeed())
		})
	})
})
