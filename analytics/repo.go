package analytics

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/healthhive/registry/patients"
	"github.com/healthhive/registry/regions"
	"github.com/healthhive/registry/visits"
)

//go:generate mockgen --build_flags=--mod=mod -source=./repo.go -destination=./test/mock_repository.go -package test Repository

// Repository reads the patient, visit and barangay collections for
// aggregation. Analytics never writes.
type Repository interface {
	FindPatients(ctx context.Context, selector bson.M) ([]*patients.Patient, error)
	PatientIds(ctx context.Context, selector bson.M) ([]string, error)
	CountPatients(ctx context.Context, selector bson.M) (int64, error)
	FindVisits(ctx context.Context, selector bson.M) ([]*visits.Visit, error)
	CountVisits(ctx context.Context, selector bson.M) (int64, error)
	AggregateVisits(ctx context.Context, pipeline mongo.Pipeline, results interface{}) error
	FindRegions(ctx context.Context, selector bson.M) ([]*regions.Region, error)
}

type repository struct {
	patients *mongo.Collection
	visits   *mongo.Collection
	regions  *mongo.Collection
}

func NewRepository(db *mongo.Database) (Repository, error) {
	return &repository{
		patients: db.Collection("patients"),
		visits:   db.Collection("visits"),
		regions:  db.Collection("barangays"),
	}, nil
}

func (r *repository) FindPatients(ctx context.Context, selector bson.M) ([]*patients.Patient, error) {
	cursor, err := r.patients.Find(ctx, selector)
	if err != nil {
		return nil, err
	}

	var result []*patients.Patient
	if err = cursor.All(ctx, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *repository) PatientIds(ctx context.Context, selector bson.M) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.M{"patient_id": 1})

	cursor, err := r.patients.Find(ctx, selector, opts)
	if err != nil {
		return nil, err
	}

	ids := []string{}
	for cursor.Next(ctx) {
		var doc struct {
			PatientId string `bson:"patient_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		if doc.PatientId != "" {
			ids = append(ids, doc.PatientId)
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) CountPatients(ctx context.Context, selector bson.M) (int64, error) {
	return r.patients.CountDocuments(ctx, selector)
}

func (r *repository) FindVisits(ctx context.Context, selector bson.M) ([]*visits.Visit, error) {
	cursor, err := r.visits.Find(ctx, selector)
	if err != nil {
		return nil, err
	}

	var result []*visits.Visit
	if err = cursor.All(ctx, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *repository) CountVisits(ctx context.Context, selector bson.M) (int64, error) {
	return r.visits.CountDocuments(ctx, selector)
}

func (r *repository) AggregateVisits(ctx context.Context, pipeline mongo.Pipeline, results interface{}) error {
	cursor, err := r.visits.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	return cursor.All(ctx, results)
}

func (r *repository) FindRegions(ctx context.Context, selector bson.M) ([]*regions.Region, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.regions.Find(ctx, selector, opts)
	if err != nil {
		return nil, err
	}

	var result []*regions.Region
	if err = cursor.All(ctx, &result); err != nil {
		return nil, err
	}
	return result, nil
}
