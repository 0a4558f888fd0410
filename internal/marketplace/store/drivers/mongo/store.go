package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/ponliv/marketplace/internal/marketplace/store"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	usersCollection         = "users"
	booksCollection         = "books"
	revokedTokensCollection = "revoked_tokens"

	indexTimeout = 30 * time.Second
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ store.Store = (*Store)(nil)

// NewStore connects to uri and pings the primary before returning.
func NewStore(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &Store{client: client, db: client.Database(database)}, nil
}

func (s *Store) Close() error { return s.client.Disconnect(context.Background()) }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Users() store.Users {
	return &usersRepo{coll: s.db.Collection(usersCollection)}
}

func (s *Store) Books() store.Books {
	return &booksRepo{coll: s.db.Collection(booksCollection)}
}

func (s *Store) RevokedTokens() store.RevokedTokens {
	return &revokedTokensRepo{coll: s.db.Collection(revokedTokensCollection)}
}

// ApplyMigrations creates the collection indexes. Creating an index that
// already exists with the same options is a no-op on the server.
func (s *Store) ApplyMigrations() error {
	ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName("users_email_unique").SetUnique(true),
			},
		},
		booksCollection: {
			{
				Keys: bson.D{{Key: "isbn", Value: 1}},
				Options: options.Index().
					SetName("books_isbn_live_unique").
					SetUnique(true).
					SetPartialFilterExpression(bson.D{
						{Key: "isbn", Value: bson.D{{Key: "$exists", Value: true}}},
						{Key: "isDeleted", Value: false},
					}),
			},
			{
				Keys:    bson.D{{Key: "title", Value: 1}, {Key: "createdAt", Value: 1}},
				Options: options.Index().SetName("books_title"),
			},
			{
				Keys:    bson.D{{Key: "sellerId", Value: 1}},
				Options: options.Index().SetName("books_seller"),
			},
		},
		revokedTokensCollection: {
			{
				Keys:    bson.D{{Key: "expiresAt", Value: 1}},
				Options: options.Index().SetName("revoked_tokens_ttl").SetExpireAfterSeconds(0),
			},
		},
	}

	for name, models := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}

func mapNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return err
}

func mapDuplicate(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrAlreadyExists
	}
	return err
}
