package withdraw

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection("withdraws")}
}

func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "seller.id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create withdraw indexes: %w", err)
	}
	return nil
}

func (m *MongoRepository) Create(ctx context.Context, req Request) error {
	if _, err := m.collection.InsertOne(ctx, req); err != nil {
		return fmt.Errorf("failed to insert withdraw request: %w", err)
	}
	return nil
}

func (m *MongoRepository) GetByID(ctx context.Context, id string) (Request, error) {
	var req Request
	if err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&req); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Request{}, ErrNotFound
		}
		return Request{}, fmt.Errorf("failed to get withdraw request: %w", err)
	}
	return req, nil
}

func (m *MongoRepository) MarkSucceeded(ctx context.Context, id string, at time.Time) (Request, error) {
	var req Request
	err := m.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": StatusPending},
		bson.M{"$set": bson.M{"status": StatusSucceed, "updated_at": at}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, err := m.GetByID(ctx, id); err != nil {
			return Request{}, err
		}
		return Request{}, ErrAlreadySucceeded
	}
	if err != nil {
		return Request{}, fmt.Errorf("failed to approve withdraw request: %w", err)
	}
	return req, nil
}

func (m *MongoRepository) List(ctx context.Context) ([]Request, error) {
	return m.find(ctx, bson.M{})
}

func (m *MongoRepository) ListBySeller(ctx context.Context, sellerID string) ([]Request, error) {
	return m.find(ctx, bson.M{"seller.id": sellerID})
}

func (m *MongoRepository) find(ctx context.Context, filter bson.M) ([]Request, error) {
	cur, err := m.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list withdraw requests: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]Request, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode withdraw requests: %w", err)
	}
	return out, nil
}
