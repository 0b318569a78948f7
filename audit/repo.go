package audit

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"

	"github.com/healthhive/registry/store"
)

const auditCollectionName = "audit_logs"

type Repository interface {
	Insert(ctx context.Context, entry *Entry) error
	List(ctx context.Context, filter *Filter, pagination store.Pagination) ([]*Entry, error)
}

// Filter narrows audit queries. Nil fields match everything.
type Filter struct {
	ResourceType *string
	ResourceId   *string
	UserId       *string
}

func NewRepository(db *mongo.Database, lifecycle fx.Lifecycle) (Repository, error) {
	repo := &repository{
		collection: db.Collection(auditCollectionName),
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
				{Key: "log_id", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("UniqueLogId"),
		},
		{
			Keys: bson.D{
				{Key: "resource_type", Value: 1},
				{Key: "resource_id", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().
				SetName("ResourceTimeline"),
		},
	})
	return err
}

func (r *repository) Insert(ctx context.Context, entry *Entry) error {
	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

func (r *repository) List(ctx context.Context, filter *Filter, pagination store.Pagination) ([]*Entry, error) {
	selector := bson.M{}
	if filter != nil {
		if filter.ResourceType != nil {
			selector["resource_type"] = *filter.ResourceType
		}
		if filter.ResourceId != nil {
			selector["resource_id"] = *filter.ResourceId
		}
		if filter.UserId != nil {
			selector["user_id"] = *filter.UserId
		}
	}

	opts := options.Find().
		SetLimit(int64(pagination.Limit)).
		SetSkip(int64(pagination.Offset)).
		SetSort(bson.D{{Key: "timestamp", Value: -1}})

	cursor, err := r.collection.Find(ctx, selector, opts)
	if err != nil {
		return nil, err
	}

	var entries []*Entry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}
