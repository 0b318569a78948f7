package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/tealeg/xlsx/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/healthhive/registry/access"
	"github.com/healthhive/registry/clinical"
	"github.com/healthhive/registry/errors"
)

var (
	htnDiagnoses = mapset.NewSet(string(clinical.DiagnosisHTN), string(clinical.DiagnosisBoth))
	dmDiagnoses  = mapset.NewSet(string(clinical.DiagnosisDM), string(clinical.DiagnosisBoth))
)

type service struct {
	repo       Repository
	aggregator VisitAggregator
	logger     *zap.SugaredLogger
}

var _ Service = &service{}

type ServiceParams struct {
	fx.In

	Repo       Repository
	Aggregator VisitAggregator
	Logger     *zap.SugaredLogger
}

func NewService(p ServiceParams) (Service, error) {
	return &service{
		repo:       p.Repo,
		aggregator: p.Aggregator,
		logger:     p.Logger,
	}, nil
}

// patientScope builds the base patient selector for the caller's
// resolved region filter. Active patients only.
func patientScope(caller access.Caller, barangay *string) (bson.M, error) {
	scope, err := access.ResolveScope(caller, barangay)
	if err != nil {
		return nil, err
	}

	selector := scope.Selector("barangay")
	selector["is_active"] = true
	return selector, nil
}

func withConditions(selector bson.M, names []string) bson.M {
	narrowed := bson.M{}
	for k, v := range selector {
		narrowed[k] = v
	}
	narrowed["conditions"] = bson.M{"$in": names}
	return narrowed
}

func (s *service) Overview(ctx context.Context, caller access.Caller, barangay *string) (*Overview, error) {
	selector, err := patientScope(caller, barangay)
	if err != nil {
		return nil, err
	}

	totalPatients, err := s.repo.CountPatients(ctx, selector)
	if err != nil {
		return nil, err
	}
	totalHTN, err := s.repo.CountPatients(ctx, withConditions(selector, clinical.HTNConditionNames))
	if err != nil {
		return nil, err
	}
	totalDM, err := s.repo.CountPatients(ctx, withConditions(selector, clinical.DMConditionNames))
	if err != nil {
		return nil, err
	}

	bothSelector := bson.M{}
	for k, v := range selector {
		bothSelector[k] = v
	}
	bothSelector["$and"] = bson.A{
		bson.M{"conditions": bson.M{"$in": clinical.HTNConditionNames}},
		bson.M{"conditions": bson.M{"$in": clinical.DMConditionNames}},
	}
	totalBoth, err := s.repo.CountPatients(ctx, bothSelector)
	if err != nil {
		return nil, err
	}

	patientIds, err := s.repo.PatientIds(ctx, selector)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthlyScreenings := int64(0)
	if len(patientIds) > 0 {
		monthlyScreenings, err = s.repo.CountVisits(ctx, bson.M{
			"patient_id": bson.M{"$in": patientIds},
			"visit_date": bson.M{"$gte": monthStart},
		})
		if err != nil {
			return nil, err
		}
	}

	// The latest-visit join is computed once and feeds every
	// downstream metric in the response.
	latest, err := s.aggregator.LatestPerPatient(ctx, patientIds)
	if err != nil {
		return nil, err
	}

	controlled := 0
	overdue := 0
	for _, visit := range latest {
		if visit.ControlStatus == clinical.Controlled {
			controlled++
		}
		if visit.NextVisitDate != nil && visit.NextVisitDate.Before(now) {
			overdue++
		}
	}
	withVisits := len(latest)

	controlRate := 0.0
	if withVisits > 0 {
		controlRate = round1(float64(controlled) / float64(withVisits) * 100)
	}
	completeness := 0.0
	if totalPatients > 0 {
		completeness = round1(float64(withVisits) / float64(totalPatients) * 100)
	}

	return &Overview{
		TotalPatients:        totalPatients,
		ActiveCases:          withVisits,
		HTNPatients:          totalHTN,
		DMPatients:           totalDM,
		BothConditions:       totalBoth,
		ControlRate:          controlRate,
		ControlledPatients:   controlled,
		UncontrolledPatients: withVisits - controlled,
		MonthlyScreenings:    monthlyScreenings,
		OverdueFollowUps:     overdue,
		DataCompleteness:     completeness,
	}, nil
}

func (s *service) Trends(ctx context.Context, caller access.Caller, condition string, barangay *string, months int) (*Trends, error) {
	var conditionNames []string
	var diagnoses mapset.Set[string]
	var label string

	switch condition {
	case "htn":
		conditionNames = clinical.HTNConditionNames
		diagnoses = htnDiagnoses
		label = "Hypertension"
	case "dm":
		conditionNames = clinical.DMConditionNames
		diagnoses = dmDiagnoses
		label = "Diabetes Mellitus"
	default:
		return nil, fmt.Errorf("%w: unknown condition: %s", errors.BadRequest, condition)
	}

	selector, err := patientScope(caller, barangay)
	if err != nil {
		return nil, err
	}

	patientIds, err := s.repo.PatientIds(ctx, withConditions(selector, conditionNames))
	if err != nil {
		return nil, err
	}

	since := time.Now().UTC().AddDate(0, 0, -months*30)
	buckets, err := s.aggregator.TrendBuckets(ctx, patientIds, diagnoses, since)
	if err != nil {
		return nil, err
	}

	return &Trends{
		Condition: label,
		Months:    months,
		Trends:    TrendPointsFromBuckets(buckets),
	}, nil
}

func (s *service) CohortRetention(ctx context.Context, caller access.Caller, months int) (*CohortRetention, error) {
	now := time.Now().UTC()
	cohortStart := now.AddDate(0, 0, -months*30)
	cohortEnd := cohortStart.AddDate(0, 0, 30)

	scope, err := access.ResolveScope(caller, nil)
	if err != nil {
		return nil, err
	}
	selector := scope.Selector("barangay")
	selector["created_at"] = bson.M{"$gte": cohortStart, "$lt": cohortEnd}

	patientIds, err := s.repo.PatientIds(ctx, selector)
	if err != nil {
		return nil, err
	}

	cohortSize := len(patientIds)
	if cohortSize == 0 {
		return &CohortRetention{
			CohortSize: 0,
			Retention:  map[string]RetentionWindow{},
		}, nil
	}

	// Retention windows trail from now rather than from each
	// patient's enrollment anniversary.
	retained6, err := s.aggregator.DistinctPatientsWithVisitSince(ctx, patientIds, now.AddDate(0, 0, -180))
	if err != nil {
		return nil, err
	}
	retained12, err := s.aggregator.DistinctPatientsWithVisitSince(ctx, patientIds, now.AddDate(0, 0, -365))
	if err != nil {
		return nil, err
	}

	return &CohortRetention{
		CohortSize:   cohortSize,
		CohortPeriod: cohortStart.Format("2006-01"),
		Retention: map[string]RetentionWindow{
			"6_months": {
				Retained: retained6,
				Rate:     round1(float64(retained6) / float64(cohortSize) * 100),
			},
			"12_months": {
				Retained: retained12,
				Rate:     round1(float64(retained12) / float64(cohortSize) * 100),
			},
		},
	}, nil
}

func (s *service) RiskDistribution(ctx context.Context, caller access.Caller, barangay *string) (*RiskDistribution, error) {
	selector, err := patientScope(caller, barangay)
	if err != nil {
		return nil, err
	}

	all, err := s.repo.FindPatients(ctx, selector)
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for _, patient := range all {
		level := "Unknown"
		if patient.RiskLevel != nil && *patient.RiskLevel != "" {
			level = *patient.RiskLevel
		}
		counts[level]++
	}

	distribution := make([]RiskBucket, 0, len(counts))
	for level, count := range counts {
		distribution = append(distribution, RiskBucket{RiskLevel: level, Count: count})
	}
	sort.Slice(distribution, func(i, j int) bool {
		return distribution[i].RiskLevel < distribution[j].RiskLevel
	})

	return &RiskDistribution{Distribution: distribution}, nil
}

func (s *service) Adherence(ctx context.Context, caller access.Caller) (*Adherence, error) {
	now := time.Now().UTC()

	dm, err := s.adherenceGroup(ctx, caller, clinical.DMConditionNames, now)
	if err != nil {
		return nil, err
	}
	htn, err := s.adherenceGroup(ctx, caller, clinical.HTNConditionNames, now)
	if err != nil {
		return nil, err
	}

	return &Adherence{DM: dm, HTN: htn}, nil
}

func (s *service) adherenceGroup(ctx context.Context, caller access.Caller, conditionNames []string, now time.Time) ([]AdherenceBucket, error) {
	selector, err := patientScope(caller, nil)
	if err != nil {
		return nil, err
	}

	patientIds, err := s.repo.PatientIds(ctx, withConditions(selector, conditionNames))
	if err != nil {
		return nil, err
	}

	counts := map[string]int{
		AdherenceGood:     0,
		AdherenceModerate: 0,
		AdherencePoor:     0,
	}

	if len(patientIds) > 0 {
		latest, err := s.aggregator.LatestPerPatient(ctx, patientIds)
		if err != nil {
			return nil, err
		}
		for _, patientId := range patientIds {
			counts[ClassifyAdherence(latest[patientId], now)]++
		}
	}

	total := len(patientIds)
	buckets := make([]AdherenceBucket, 0, 3)
	for _, category := range []string{AdherenceGood, AdherenceModerate, AdherencePoor} {
		buckets = append(buckets, AdherenceBucket{
			Category: category,
			Count:    counts[category],
			Percent:  percent(counts[category], total),
		})
	}
	return buckets, nil
}

func (s *service) RegionSummary(ctx context.Context, caller access.Caller) ([]*RegionSummary, error) {
	regionSelector := bson.M{}
	if caller.Role.IsRegionRestricted() {
		regionSelector["name"] = bson.M{"$in": caller.AssignedRegions}
	}

	all, err := s.repo.FindRegions(ctx, regionSelector)
	if err != nil {
		return nil, err
	}

	summaries := make([]*RegionSummary, 0, len(all))
	for _, region := range all {
		base := bson.M{"barangay": region.Name, "is_active": true}

		total, err := s.repo.CountPatients(ctx, base)
		if err != nil {
			return nil, err
		}
		htn, err := s.repo.CountPatients(ctx, withConditions(base, clinical.HTNConditionNames))
		if err != nil {
			return nil, err
		}
		dm, err := s.repo.CountPatients(ctx, withConditions(base, clinical.DMConditionNames))
		if err != nil {
			return nil, err
		}

		highRiskSelector := bson.M{
			"barangay":   region.Name,
			"is_active":  true,
			"risk_level": bson.M{"$in": []string{string(clinical.RiskHigh), string(clinical.RiskVeryHigh)}},
		}
		highRisk, err := s.repo.CountPatients(ctx, highRiskSelector)
		if err != nil {
			return nil, err
		}

		summaries = append(summaries, &RegionSummary{
			Barangay:         region.Name,
			Cluster:          region.Cluster,
			TotalPatients:    total,
			HTNPatients:      htn,
			DMPatients:       dm,
			HighRiskPatients: highRisk,
			Population:       region.Population,
		})
	}

	return summaries, nil
}

func (s *service) ExportOverviewReport(ctx context.Context, caller access.Caller) (*xlsx.File, error) {
	overview, err := s.Overview(ctx, caller, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to build overview for export: %w", err)
	}
	distributions, err := s.Distributions(ctx, caller, 12)
	if err != nil {
		return nil, fmt.Errorf("unable to build distributions for export: %w", err)
	}

	report := NewReport(overview, distributions, time.Now())
	file, err := report.Generate()
	if err != nil {
		return nil, fmt.Errorf("unable to generate report: %w", err)
	}

	s.logger.Infow("generated overview report", "userId", caller.Id)
	return file, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
