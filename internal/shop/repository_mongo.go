package shop

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepository struct {
	collection *mongo.Collection
}

// shopDocument stores the balance as Decimal128 so $inc and $gte work on
// exact cents.
type shopDocument struct {
	Shop             `bson:",inline"`
	AvailableBalance primitive.Decimal128 `bson:"available_balance"`
}

func toDocument(s Shop) (shopDocument, error) {
	balance, err := toDecimal128(decimal.NewFromFloat(s.AvailableBalance))
	if err != nil {
		return shopDocument{}, err
	}
	return shopDocument{Shop: s, AvailableBalance: balance}, nil
}

func (d shopDocument) shop() Shop {
	s := d.Shop
	if balance, err := decimal.NewFromString(d.AvailableBalance.String()); err == nil {
		s.AvailableBalance = balance.InexactFloat64()
	}
	return s
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.StringFixed(2))
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("invalid amount %s: %w", d, err)
	}
	return v, nil
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection("shops")}
}

func (m *MongoRepository) Create(ctx context.Context, s Shop) (Shop, error) {
	if s.Transactions == nil {
		s.Transactions = []Transaction{}
	}
	doc, err := toDocument(s)
	if err != nil {
		return Shop{}, err
	}
	if _, err := m.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return Shop{}, ErrEmailExists
		}
		return Shop{}, fmt.Errorf("failed to insert shop: %w", err)
	}
	return s, nil
}

func (m *MongoRepository) GetByID(ctx context.Context, id string) (Shop, error) {
	return m.findOne(ctx, bson.M{"_id": id})
}

func (m *MongoRepository) GetByEmail(ctx context.Context, email string) (Shop, error) {
	return m.findOne(ctx, bson.M{"email": email})
}

func (m *MongoRepository) findOne(ctx context.Context, filter bson.M) (Shop, error) {
	var doc shopDocument
	if err := m.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Shop{}, ErrNotFound
		}
		return Shop{}, fmt.Errorf("failed to get shop: %w", err)
	}
	return doc.shop(), nil
}

func (m *MongoRepository) Credit(ctx context.Context, id string, amount decimal.Decimal) error {
	inc, err := toDecimal128(amount)
	if err != nil {
		return err
	}
	res, err := m.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"available_balance": inc}},
	)
	if err != nil {
		return fmt.Errorf("failed to credit shop: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Debit only matches when the balance covers the amount, so concurrent
// debits can never drive it negative.
func (m *MongoRepository) Debit(ctx context.Context, id string, amount decimal.Decimal) error {
	floor, err := toDecimal128(amount)
	if err != nil {
		return err
	}
	dec, err := toDecimal128(amount.Neg())
	if err != nil {
		return err
	}
	res, err := m.collection.UpdateOne(ctx,
		bson.M{"_id": id, "available_balance": bson.M{"$gte": floor}},
		bson.M{"$inc": bson.M{"available_balance": dec}},
	)
	if err != nil {
		return fmt.Errorf("failed to debit shop: %w", err)
	}
	if res.MatchedCount == 0 {
		return m.missOrInsufficient(ctx, id)
	}
	return nil
}

func (m *MongoRepository) missOrInsufficient(ctx context.Context, id string) error {
	n, err := m.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to check shop: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrInsufficientFunds
}

func (m *MongoRepository) AppendTransaction(ctx context.Context, id string, txn Transaction) error {
	res, err := m.collection.UpdateOne(ctx,
		bson.M{"_id": id, "transactions.id": bson.M{"$ne": txn.ID}},
		bson.M{"$push": bson.M{"transactions": txn}},
	)
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	if res.MatchedCount == 0 {
		n, err := m.collection.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("failed to check shop: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		// already recorded
	}
	return nil
}

func (m *MongoRepository) SetWithdrawMethod(ctx context.Context, id string, method *WithdrawMethod) (Shop, error) {
	update := bson.M{"$set": bson.M{"withdraw_method": method}}
	if method == nil {
		update = bson.M{"$unset": bson.M{"withdraw_method": ""}}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc shopDocument
	if err := m.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Shop{}, ErrNotFound
		}
		return Shop{}, fmt.Errorf("failed to update withdraw method: %w", err)
	}
	return doc.shop(), nil
}

func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
