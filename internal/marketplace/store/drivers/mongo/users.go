package mongo

import (
	"context"
	"time"

	"github.com/ponliv/marketplace/internal/marketplace/domain"
	"github.com/ponliv/marketplace/internal/marketplace/store"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type userDoc struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"passwordHash"`
	Name         string    `bson:"name"`
	Address      string    `bson:"address"`
	PhoneNumber  string    `bson:"phoneNumber"`
	NationalID   string    `bson:"nif"`
	Website      string    `bson:"website,omitempty"`
	Role         string    `bson:"role"`
	Status       string    `bson:"status"`
	Director     string    `bson:"director,omitempty"`
	SchoolType   string    `bson:"schoolType,omitempty"`
	Company      string    `bson:"company,omitempty"`
	Children     []string  `bson:"children,omitempty"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

func fromUser(u domain.User) userDoc {
	return userDoc{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Name:         u.Name,
		Address:      u.Address,
		PhoneNumber:  u.PhoneNumber,
		NationalID:   u.NationalID,
		Website:      u.Website,
		Role:         string(u.Role),
		Status:       string(u.Status),
		Director:     u.Director,
		SchoolType:   string(u.SchoolType),
		Company:      u.Company,
		Children:     u.Children,
		CreatedAt:    u.CreatedAt.UTC(),
		UpdatedAt:    u.UpdatedAt.UTC(),
	}
}

func (d userDoc) user() domain.User {
	return domain.User{
		ID:           d.ID,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Name:         d.Name,
		Address:      d.Address,
		PhoneNumber:  d.PhoneNumber,
		NationalID:   d.NationalID,
		Website:      d.Website,
		Role:         domain.Role(d.Role),
		Status:       domain.UserStatus(d.Status),
		Director:     d.Director,
		SchoolType:   domain.SchoolType(d.SchoolType),
		Company:      d.Company,
		Children:     d.Children,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

type usersRepo struct {
	coll *mongo.Collection
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.coll.InsertOne(ctx, fromUser(u))
	return mapDuplicate(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *usersRepo) findOne(ctx context.Context, filter bson.D) (domain.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return doc.user(), nil
}

// UpdateUser replaces the whole document. The role is carried over unchanged
// because the caller loaded it from the same record.
func (r *usersRepo) UpdateUser(ctx context.Context, u domain.User) error {
	res, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: u.ID}}, fromUser(u))
	if err != nil {
		return mapDuplicate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) DeleteUser(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
