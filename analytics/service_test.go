package analytics_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/healthhive/registry/access"
	"github.com/healthhive/registry/analytics"
	analyticsTest "github.com/healthhive/registry/analytics/test"
	"github.com/healthhive/registry/clinical"
	"github.com/healthhive/registry/errors"
	"github.com/healthhive/registry/patients"
	"github.com/healthhive/registry/store"
	"github.com/healthhive/registry/visits"
)

var _ = Describe("Analytics service", func() {
	var ctrl *gomock.Controller
	var repo *analyticsTest.MockRepository
	var service analytics.Service

	var caller access.Caller
	var ctx context.Context

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		repo = analyticsTest.NewMockRepository(ctrl)

		aggregator, err := analytics.NewVisitAggregator(repo, &store.Config{
			AggregationMode: store.AggregationModeMemory,
		})
		Expect(err).ToNot(HaveOccurred())

		service, err = analytics.NewService(analytics.ServiceParams{
			Repo:       repo,
			Aggregator: aggregator,
			Logger:     zap.NewNop().Sugar(),
		})
		Expect(err).ToNot(HaveOccurred())

		caller = access.Caller{
			Id:   "USR-001",
			Role: access.RoleSupervisor,
		}
		ctx = context.Background()
	})

	AfterEach(func() {
		ctrl.Finish()
	})

	Describe("CohortRetention", func() {
		It("returns a zero-valued structure for an empty cohort", func() {
			repo.EXPECT().PatientIds(gomock.Any(), gomock.Any()).Return([]string{}, nil)

			result, err := service.CohortRetention(ctx, caller, 12)
			Expect(err).ToNot(HaveOccurred())
			Expect(result.CohortSize).To(Equal(0))
			Expect(result.Retention).To(BeEmpty())
		})

		It("computes retention against trailing windows", func() {
			repo.EXPECT().PatientIds(gomock.Any(), gomock.Any()).
				Return([]string{"PAT-0001", "PAT-0002"}, nil)

			recent := visits.Visit{
				PatientId: "PAT-0001",
				VisitDate: time.Now().UTC().AddDate(0, 0, -30),
			}
			repo.EXPECT().FindVisits(gomock.Any(), gomock.Any()).
				Return([]*visits.Visit{&recent}, nil).
				Times(2)

			result, err := service.CohortRetention(ctx, caller, 12)
			Expect(err).ToNot(HaveOccurred())
			Expect(result.CohortSize).To(Equal(2))
			Expect(result.Retention).To(HaveKey("6_months"))
			Expect(result.Retention).To(HaveKey("12_months"))
			Expect(result.Retention["6_months"].Retained).To(Equal(1))
			Expect(result.Retention["6_months"].Rate).To(Equal(50.0))
		})
	})

	Describe("Overview", func() {
		It("returns zero-valued totals for an empty scope", func() {
			repo.EXPECT().CountPatients(gomock.Any(), gomock.Any()).
				Return(int64(0), nil).
				Times(4)
			repo.EXPECT().PatientIds(gomock.Any(), gomock.Any()).Return([]string{}, nil)

			result, err := service.Overview(ctx, caller, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(result.TotalPatients).To(Equal(int64(0)))
			Expect(result.ActiveCases).To(Equal(0))
			Expect(result.ControlRate).To(Equal(0.0))
			Expect(result.DataCompleteness).To(Equal(0.0))
		})

		It("derives the control rate from the latest visit per patient", func() {
			repo.EXPECT().CountPatients(gomock.Any(), gomock.Any()).
				Return(int64(2), nil).
				Times(4)
			repo.EXPECT().PatientIds(gomock.Any(), gomock.Any()).
				Return([]string{"PAT-0001", "PAT-0002"}, nil)
			repo.EXPECT().CountVisits(gomock.Any(), gomock.Any()).Return(int64(3), nil)

			controlled := visits.Visit{
				PatientId:     "PAT-0001",
				VisitDate:     time.Now().UTC().AddDate(0, 0, -10),
				ControlStatus: clinical.Controlled,
			}
			uncontrolled := visits.Visit{
				PatientId:     "PAT-0002",
				VisitDate:     time.Now().UTC().AddDate(0, 0, -5),
				ControlStatus: clinical.Uncontrolled,
			}
			repo.EXPECT().FindVisits(gomock.Any(), gomock.Any()).
				Return([]*visits.Visit{&controlled, &uncontrolled}, nil)

			result, err := service.Overview(ctx, caller, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(result.ActiveCases).To(Equal(2))
			Expect(result.ControlledPatients).To(Equal(1))
			Expect(result.UncontrolledPatients).To(Equal(1))
			Expect(result.ControlRate).To(Equal(50.0))
			Expect(result.MonthlyScreenings).To(Equal(int64(3)))
			Expect(result.DataCompleteness).To(Equal(100.0))
		})
	})

	Describe("Trends", func() {
		It("rejects unknown conditions", func() {
			_, err := service.Trends(ctx, caller, "copd", nil, 12)
			Expect(err).To(MatchError(errors.BadRequest))
		})
	})

	Describe("RiskDistribution", func() {
		It("groups patients by risk level with a bucket for missing values", func() {
			high := "High"
			all := []*patients.Patient{
				{PatientId: "PAT-0001", RiskLevel: &high},
				{PatientId: "PAT-0002", RiskLevel: &high},
				{PatientId: "PAT-0003"},
			}
			repo.EXPECT().FindPatients(gomock.Any(), bson.M{"is_active": true}).Return(all, nil)

			result, err := service.RiskDistribution(ctx, caller, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Distribution).To(ConsistOf(
				analytics.RiskBucket{RiskLevel: "High", Count: 2},
				analytics.RiskBucket{RiskLevel: "Unknown", Count: 1},
			))
		})
	})
})
