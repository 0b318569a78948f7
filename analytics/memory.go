package analytics

import (
	"context"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/healthhive/registry/visits"
)

// memoryAggregator runs plain finds and computes the group-bys client
// side with the pure rollup functions. Used when the backing store has
// no native aggregation support.
type memoryAggregator struct {
	repo Repository
}

var _ VisitAggregator = &memoryAggregator{}

func (a *memoryAggregator) LatestPerPatient(ctx context.Context, patientIds []string) (map[string]*visits.Visit, error) {
	if len(patientIds) == 0 {
		return map[string]*visits.Visit{}, nil
	}

	all, err := a.repo.FindVisits(ctx, bson.M{"patient_id": bson.M{"$in": patientIds}})
	if err != nil {
		return nil, err
	}
	return LatestVisitPerPatient(all), nil
}

func (a *memoryAggregator) TrendBuckets(ctx context.Context, patientIds []string, diagnoses mapset.Set[string], since time.Time) ([]TrendBucket, error) {
	if len(patientIds) == 0 {
		return []TrendBucket{}, nil
	}

	all, err := a.repo.FindVisits(ctx, bson.M{
		"patient_id": bson.M{"$in": patientIds},
		"visit_date": bson.M{"$gte": since},
	})
	if err != nil {
		return nil, err
	}
	return TrendBucketsFromVisits(all, diagnoses, since), nil
}

func (a *memoryAggregator) DistinctPatientsWithVisitSince(ctx context.Context, patientIds []string, since time.Time) (int, error) {
	if len(patientIds) == 0 {
		return 0, nil
	}

	all, err := a.repo.FindVisits(ctx, bson.M{
		"patient_id": bson.M{"$in": patientIds},
		"visit_date": bson.M{"$gte": since},
	})
	if err != nil {
		return 0, err
	}
	return DistinctPatients(all), nil
}
