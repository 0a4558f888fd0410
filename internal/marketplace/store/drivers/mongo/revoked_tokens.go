package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type revokedTokenDoc struct {
	Fingerprint string    `bson:"_id"`
	ExpiresAt   time.Time `bson:"expiresAt"`
	RevokedAt   time.Time `bson:"revokedAt"`
}

// revokedTokensRepo relies on the TTL index on expiresAt for eventual cleanup;
// the server's TTL monitor runs about once a minute, so lookups still filter
// on expiry.
type revokedTokensRepo struct {
	coll *mongo.Collection
}

func (r *revokedTokensRepo) RevokeToken(ctx context.Context, fingerprint string, expiresAt time.Time) error {
	_, err := r.coll.InsertOne(ctx, revokedTokenDoc{
		Fingerprint: fingerprint,
		ExpiresAt:   expiresAt.UTC(),
		RevokedAt:   time.Now().UTC(),
	})
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

func (r *revokedTokensRepo) IsTokenRevoked(ctx context.Context, fingerprint string, now time.Time) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{
		{Key: "_id", Value: fingerprint},
		{Key: "expiresAt", Value: bson.D{{Key: "$gt", Value: now.UTC()}}},
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *revokedTokensRepo) DeleteExpiredRevokedTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.D{
		{Key: "expiresAt", Value: bson.D{{Key: "$lte", Value: now.UTC()}}},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
