package user

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
	return &MongoRepository{collection: db.Collection("users")}
}

func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

func (m *MongoRepository) Create(ctx context.Context, u User) (User, error) {
	if u.Addresses == nil {
		u.Addresses = []Address{}
	}
	if _, err := m.collection.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return User{}, ErrEmailExists
		}
		return User{}, fmt.Errorf("failed to insert user: %w", err)
	}
	return u, nil
}

func (m *MongoRepository) GetByID(ctx context.Context, id string) (User, error) {
	return m.findOne(ctx, bson.M{"_id": id})
}

func (m *MongoRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	return m.findOne(ctx, bson.M{"email": email})
}

func (m *MongoRepository) findOne(ctx context.Context, filter bson.M) (User, error) {
	var u User
	if err := m.collection.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// AddAddress pushes addr only when no address of the same type exists, in
// one conditional update.
func (m *MongoRepository) AddAddress(ctx context.Context, userID string, addr Address) error {
	res, err := m.collection.UpdateOne(ctx,
		bson.M{"_id": userID, "addresses.address_type": bson.M{"$ne": addr.AddressType}},
		bson.M{"$push": bson.M{"addresses": addr}},
	)
	if err != nil {
		return fmt.Errorf("failed to add address: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, err := m.GetByID(ctx, userID); err != nil {
			return err
		}
		return ErrAddressTypeExists
	}
	return nil
}

func (m *MongoRepository) RemoveAddress(ctx context.Context, userID, addressID string) error {
	res, err := m.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"addresses": bson.M{"id": addressID}}},
	)
	if err != nil {
		return fmt.Errorf("failed to remove address: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
