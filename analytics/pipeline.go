package analytics

import (
	"context"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/healthhive/registry/clinical"
	"github.com/healthhive/registry/visits"
)

// pipelineAggregator pushes the group-bys down to the document store.
// Every pipeline mirrors the corresponding rollup function stage for
// stage.
type pipelineAggregator struct {
	repo Repository
}

var _ VisitAggregator = &pipelineAggregator{}

func (a *pipelineAggregator) LatestPerPatient(ctx context.Context, patientIds []string) (map[string]*visits.Visit, error) {
	if len(patientIds) == 0 {
		return map[string]*visits.Visit{}, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"patient_id": bson.M{"$in": patientIds}}}},
		{{Key: "$sort", Value: bson.D{{Key: "visit_date", Value: -1}}}},
		{{Key: "$group", Value: bson.M{
			"_id":          "$patient_id",
			"latest_visit": bson.M{"$first": "$$ROOT"},
		}}},
	}

	var groups []struct {
		PatientId string        `bson:"_id"`
		Latest    *visits.Visit `bson:"latest_visit"`
	}
	if err := a.repo.AggregateVisits(ctx, pipeline, &groups); err != nil {
		return nil, err
	}

	latest := make(map[string]*visits.Visit, len(groups))
	for _, group := range groups {
		latest[group.PatientId] = group.Latest
	}
	return latest, nil
}

func (a *pipelineAggregator) TrendBuckets(ctx context.Context, patientIds []string, diagnoses mapset.Set[string], since time.Time) ([]TrendBucket, error) {
	if len(patientIds) == 0 {
		return []TrendBucket{}, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"patient_id": bson.M{"$in": patientIds},
			"visit_date": bson.M{"$gte": since},
			"diagnosis":  bson.M{"$in": diagnoses.ToSlice()},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"year":           bson.M{"$year": "$visit_date"},
				"month":          bson.M{"$month": "$visit_date"},
				"control_status": "$control_status",
			},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "_id.year", Value: 1},
			{Key: "_id.month", Value: 1},
			{Key: "_id.control_status", Value: 1},
		}}},
	}

	var groups []struct {
		Id struct {
			Year          int    `bson:"year"`
			Month         int    `bson:"month"`
			ControlStatus string `bson:"control_status"`
		} `bson:"_id"`
		Count int `bson:"count"`
	}
	if err := a.repo.AggregateVisits(ctx, pipeline, &groups); err != nil {
		return nil, err
	}

	buckets := make([]TrendBucket, 0, len(groups))
	for _, group := range groups {
		buckets = append(buckets, TrendBucket{
			Year:          group.Id.Year,
			Month:         group.Id.Month,
			ControlStatus: clinical.ControlStatus(group.Id.ControlStatus),
			Count:         group.Count,
		})
	}
	return buckets, nil
}

func (a *pipelineAggregator) DistinctPatientsWithVisitSince(ctx context.Context, patientIds []string, since time.Time) (int, error) {
	if len(patientIds) == 0 {
		return 0, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"patient_id": bson.M{"$in": patientIds},
			"visit_date": bson.M{"$gte": since},
		}}},
		{{Key: "$group", Value: bson.M{"_id": "$patient_id"}}},
		{{Key: "$count", Value: "total"}},
	}

	var result []struct {
		Total int `bson:"total"`
	}
	if err := a.repo.AggregateVisits(ctx, pipeline, &result); err != nil {
		return 0, err
	}
	if len(result) == 0 {
		return 0, nil
	}
	return result[0].Total, nil
}
