package order

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection("orders")}
}

func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user.id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "shop_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "delivered_at", Value: -1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}
	return nil
}

func (m *MongoRepository) CreateMany(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	docs := make([]interface{}, len(orders))
	for i := range orders {
		docs[i] = orders[i]
	}
	if _, err := m.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert orders: %w", err)
	}
	return nil
}

func (m *MongoRepository) GetByID(ctx context.Context, id string) (Order, error) {
	var o Order
	if err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("failed to get order: %w", err)
	}
	return o, nil
}

func (m *MongoRepository) Update(ctx context.Context, ord Order) (Order, error) {
	expected := ord.Version
	ord.Version++
	res, err := m.collection.ReplaceOne(ctx, bson.M{"_id": ord.ID, "version": expected}, ord)
	if err != nil {
		return Order{}, fmt.Errorf("failed to update order: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, err := m.GetByID(ctx, ord.ID); err != nil {
			return Order{}, err
		}
		return Order{}, ErrVersionConflict
	}
	return ord, nil
}

func (m *MongoRepository) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return m.find(ctx, bson.M{"user.id": userID}, bson.D{{Key: "created_at", Value: -1}})
}

func (m *MongoRepository) ListByShop(ctx context.Context, shopID string) ([]Order, error) {
	return m.find(ctx, bson.M{"shop_id": shopID}, bson.D{{Key: "created_at", Value: -1}})
}

func (m *MongoRepository) ListAll(ctx context.Context) ([]Order, error) {
	return m.find(ctx, bson.M{}, bson.D{{Key: "delivered_at", Value: -1}, {Key: "created_at", Value: -1}})
}

func (m *MongoRepository) find(ctx context.Context, filter bson.M, sort bson.D) ([]Order, error) {
	cur, err := m.collection.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cur.Close(ctx)

	orders := make([]Order, 0)
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}
