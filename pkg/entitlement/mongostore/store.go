package mongostore

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/reqmarket/entitlements/pkg/entitlement"
)

// collectionName is the backing collection for usage counters; a unique
// compound index on (user_id, period) is created by EnsureIndexes.
const collectionName = "usage_counters"

// UsageStore implements entitlement.UsageStore on MongoDB. Increments use
// a $inc upsert with findOneAndUpdate, which MongoDB applies atomically per
// document, so concurrent callers never lose updates.
type UsageStore struct {
	coll *mongo.Collection
}

// NewUsageStore creates a store over the usage_counters collection of the
// given database.
func NewUsageStore(db *mongo.Database) *UsageStore {
	return &UsageStore{coll: db.Collection(collectionName)}
}

// EnsureIndexes creates the unique (user_id, period) index. Call once at
// startup; MongoDB treats existing identical indexes as a no-op.
func (s *UsageStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "period", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return storeErr(err)
	}
	return nil
}

type counterDoc struct {
	Count int64 `bson:"count"`
}

func filter(userID uuid.UUID, period entitlement.Period) bson.D {
	return bson.D{
		{Key: "user_id", Value: userID.String()},
		{Key: "period", Value: string(period)},
	}
}

func (s *UsageStore) GetCount(ctx context.Context, userID uuid.UUID, period entitlement.Period) (int64, error) {
	if err := period.Validate(); err != nil {
		return 0, err
	}

	var doc counterDoc
	err := s.coll.FindOne(ctx, filter(userID, period)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, storeErr(err)
	}
	return doc.Count, nil
}

func (s *UsageStore) IncrementAndGet(ctx context.Context, userID uuid.UUID, period entitlement.Period) (int64, error) {
	if err := period.Validate(); err != nil {
		return 0, err
	}

	update := bson.D{
		{Key: "$inc", Value: bson.D{{Key: "count", Value: int64(1)}}},
		{Key: "$currentDate", Value: bson.D{{Key: "updated_at", Value: true}}},
	}

	var doc counterDoc
	err := s.coll.FindOneAndUpdate(ctx, filter(userID, period), update,
		options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, storeErr(err)
	}
	return doc.Count, nil
}

func (s *UsageStore) Reset(ctx context.Context, userID uuid.UUID, period entitlement.Period) error {
	if err := period.Validate(); err != nil {
		return err
	}

	if _, err := s.coll.DeleteOne(ctx, filter(userID, period)); err != nil {
		return storeErr(err)
	}
	return nil
}

// PruneBefore deletes counters for periods older than the cutoff.
// Lexicographic comparison is valid because periods are fixed-width YYYYMM.
func (s *UsageStore) PruneBefore(ctx context.Context, cutoff entitlement.Period) (int64, error) {
	if err := cutoff.Validate(); err != nil {
		return 0, err
	}

	res, err := s.coll.DeleteMany(ctx, bson.D{
		{Key: "period", Value: bson.D{{Key: "$lt", Value: string(cutoff)}}},
	})
	if err != nil {
		return 0, storeErr(err)
	}
	return res.DeletedCount, nil
}

func storeErr(err error) error {
	return errors.Join(entitlement.ErrStoreUnavailable, err)
}
