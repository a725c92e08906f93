package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection("products")}
}

func (m *MongoRepository) Create(ctx context.Context, p Product) (Product, error) {
	if _, err := m.collection.InsertOne(ctx, p); err != nil {
		return Product{}, fmt.Errorf("failed to insert product: %w", err)
	}
	return p, nil
}

func (m *MongoRepository) GetByID(ctx context.Context, id string) (Product, error) {
	var p Product
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

func (m *MongoRepository) List(ctx context.Context) ([]Product, error) {
	return m.find(ctx, bson.M{})
}

func (m *MongoRepository) ListByShop(ctx context.Context, shopID string) ([]Product, error) {
	return m.find(ctx, bson.M{"shop_id": shopID})
}

func (m *MongoRepository) find(ctx context.Context, filter bson.M) ([]Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	out := make([]Product, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return out, nil
}

// AdjustStock checks that every product exists, then applies all $inc
// updates in one ordered bulk write. Called inside a transaction the two
// steps see the same snapshot.
func (m *MongoRepository) AdjustStock(ctx context.Context, adjustments []StockAdjustment) error {
	if len(adjustments) == 0 {
		return nil
	}
	ids := lo.Uniq(lo.Map(adjustments, func(a StockAdjustment, _ int) string { return a.ProductID }))

	n, err := m.collection.CountDocuments(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if int(n) != len(ids) {
		return ErrNotFound
	}

	models := make([]mongo.WriteModel, 0, len(adjustments))
	for _, a := range adjustments {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": a.ProductID}).
			SetUpdate(bson.M{"$inc": bson.M{"stock": a.StockDelta, "sold_out": a.SoldOutDelta}}))
	}
	if _, err := m.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true)); err != nil {
		return fmt.Errorf("failed to adjust stock: %w", err)
	}
	return nil
}

// UpsertReview swaps the user's review and recomputes ratings in a single
// pipeline update.
func (m *MongoRepository) UpsertReview(ctx context.Context, productID string, review Review) (Product, error) {
	doc := bson.M{
		"user_id":    review.UserID,
		"user_name":  review.UserName,
		"rating":     review.Rating,
		"comment":    review.Comment,
		"created_at": review.CreatedAt,
	}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"reviews": bson.M{"$concatArrays": bson.A{
				bson.M{"$filter": bson.M{
					"input": bson.M{"$ifNull": bson.A{"$reviews", bson.A{}}},
					"cond":  bson.M{"$ne": bson.A{"$$this.user_id", review.UserID}},
				}},
				bson.A{bson.M{"$literal": doc}},
			}},
		}}},
		{{Key: "$set", Value: bson.M{"ratings": bson.M{"$avg": "$reviews.rating"}}}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p Product
	err := m.collection.FindOneAndUpdate(ctx, bson.M{"_id": productID}, pipeline, opts).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("failed to upsert review: %w", err)
	}
	return p, nil
}

func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "shop_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	}
	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
