package regions

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
)

const regionsCollectionName = "barangays"

type Repository interface {
	Service
}

func NewRepository(db *mongo.Database, lifecycle fx.Lifecycle) (Repository, error) {
	repo := &repository{
		collection: db.Collection(regionsCollectionName),
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
}

func (r *repository) Initialize(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "name", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("UniqueBarangayName"),
		},
	})
	return err
}

func (r *repository) Get(ctx context.Context, name string) (*Region, error) {
	region := &Region{}
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(region)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	return region, nil
}

func (r *repository) List(ctx context.Context) ([]*Region, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}

	var result []*Region
	if err = cursor.All(ctx, &result); err != nil {
		return nil, err
	}

	return result, nil
}
