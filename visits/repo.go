package visits

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"

	"github.com/healthhive/registry/access"
	"github.com/healthhive/registry/store"
)

const visitsCollectionName = "visits"

//go:generate mockgen --build_flags=--mod=mod -source=./repo.go -destination=./test/mock_repository.go -package test -aux_files=github.com/healthhive/registry/visits=visits.go MockRepository

type Repository interface {
	Insert(ctx context.Context, visit *Visit) (*Visit, error)
	Get(ctx context.Context, visitId string) (*Visit, error)
	List(ctx context.Context, filter *Filter, pagination store.Pagination) ([]*Visit, error)
	ListByPatient(ctx context.Context, patientId string) ([]*Visit, error)
	LatestPerPatient(ctx context.Context, region access.RegionFilter) (map[string]*Visit, error)
}

func NewRepository(db *mongo.Database, cfg *store.Config, lifecycle fx.Lifecycle) (Repository, error) {
	repo := &repository{
		collection: db.Collection(visitsCollectionName),
		config:     cfg,
	}

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return repo.Initialize(ctx)
		},
	})

	return repo, nil
}

type repository struct {
	collection *mongo.Collection
	config     *store.Config
}

func (r *repository) Initialize(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "visit_id", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("UniqueVisitId"),
		},
		{
			Keys: bson.D{
				{Key: "patient_id", Value: 1},
				{Key: "visit_date", Value: -1},
			},
			Options: options.Index().
				SetName("PatientTimeline"),
		},
		{
			Keys: bson.D{
				{Key: "barangay", Value: 1},
				{Key: "visit_date", Value: -1},
			},
			Options: options.Index().
				SetName("BarangayTimeline"),
		},
	})
	return err
}

func (r *repository) Insert(ctx context.Context, visit *Visit) (*Visit, error) {
	if visit.VisitId != "" {
		count, err := r.collection.CountDocuments(ctx, bson.M{"visit_id": visit.VisitId})
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrDuplicate
		}
	}

	now := time.Now().UTC()
	visit.CreatedAt = now
	visit.UpdatedAt = now
	if visit.VisitId == "" {
		visit.VisitId = NewVisitId(now)
	}

	if _, err := r.collection.InsertOne(ctx, visit); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	return r.Get(ctx, visit.VisitId)
}

func (r *repository) Get(ctx context.Context, visitId string) (*Visit, error) {
	visit := &Visit{}
	err := r.collection.FindOne(ctx, bson.M{"visit_id": visitId}).Decode(visit)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	return visit, nil
}

func (r *repository) List(ctx context.Context, filter *Filter, pagination store.Pagination) ([]*Visit, error) {
	selector := filter.selector()

	opts := options.Find().
		SetLimit(int64(pagination.Limit)).
		SetSkip(int64(pagination.Offset)).
		SetSort(bson.D{{Key: "visit_date", Value: -1}})

	cursor, err := r.collection.Find(ctx, selector, opts)
	if err != nil {
		return nil, err
	}

	var result []*Visit
	if err = cursor.All(ctx, &result); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *repository) ListByPatient(ctx context.Context, patientId string) ([]*Visit, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "visit_date", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"patient_id": patientId}, opts)
	if err != nil {
		return nil, err
	}

	var result []*Visit
	if err = cursor.All(ctx, &result); err != nil {
		return nil, err
	}

	return result, nil
}

// LatestPerPatient resolves each patient's chronologically latest visit
// inside the given scope. The native pipeline is used when the backing
// store supports aggregation, otherwise the join runs client side.
func (r *repository) LatestPerPatient(ctx context.Context, region access.RegionFilter) (map[string]*Visit, error) {
	if r.config.AggregationMode == store.AggregationModeMemory {
		return r.latestPerPatientInMemory(ctx, region)
	}
	return r.latestPerPatientPipeline(ctx, region)
}

func (r *repository) latestPerPatientPipeline(ctx context.Context, region access.RegionFilter) (map[string]*Visit, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: region.Selector("barangay")}},
		{{Key: "$sort", Value: bson.D{
			{Key: "visit_date", Value: -1},
			{Key: "created_at", Value: -1},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":    "$patient_id",
			"latest": bson.M{"$first": "$$ROOT"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	var groups []struct {
		PatientId string `bson:"_id"`
		Latest    *Visit `bson:"latest"`
	}
	if err = cursor.All(ctx, &groups); err != nil {
		return nil, err
	}

	latest := make(map[string]*Visit, len(groups))
	for _, group := range groups {
		latest[group.PatientId] = group.Latest
	}
	return latest, nil
}

func (r *repository) latestPerPatientInMemory(ctx context.Context, region access.RegionFilter) (map[string]*Visit, error) {
	opts := options.Find().
		SetSort(bson.D{
			{Key: "visit_date", Value: -1},
			{Key: "created_at", Value: -1},
		})

	cursor, err := r.collection.Find(ctx, region.Selector("barangay"), opts)
	if err != nil {
		return nil, err
	}

	latest := map[string]*Visit{}
	for cursor.Next(ctx) {
		visit := &Visit{}
		if err := cursor.Decode(visit); err != nil {
			return nil, err
		}
		if _, ok := latest[visit.PatientId]; !ok {
			latest[visit.PatientId] = visit
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return latest, nil
}

func (f *Filter) selector() bson.M {
	selector := f.Region.Selector("barangay")
	if f.PatientId != nil {
		selector["patient_id"] = *f.PatientId
	}
	if f.VisitType != nil {
		selector["visit_type"] = *f.VisitType
	}

	dateRange := bson.M{}
	if f.From != nil {
		dateRange["$gte"] = *f.From
	}
	if f.To != nil {
		dateRange["$lte"] = *f.To
	}
	if len(dateRange) > 0 {
		selector["visit_date"] = dateRange
	}

	return selector
}
