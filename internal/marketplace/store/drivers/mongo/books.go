package mongo

import (
	"context"
	"regexp"
	"time"

	"github.com/ponliv/marketplace/internal/marketplace/domain"
	"github.com/ponliv/marketplace/internal/marketplace/store"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type bookDoc struct {
	ID                    string    `bson:"_id"`
	Title                 string    `bson:"title"`
	Description           string    `bson:"description"`
	Author                string    `bson:"author"`
	ISBN                  string    `bson:"isbn,omitempty"`
	Category              string    `bson:"category"`
	PublishedYear         int       `bson:"publishedYear"`
	Condition             string    `bson:"condition"`
	CoverImage            string    `bson:"coverImage,omitempty"`
	Price                 float64   `bson:"price"`
	SellerID              string    `bson:"sellerId"`
	IsVerified            bool      `bson:"isVerified"`
	SchoolLevel           string    `bson:"schoolLevel,omitempty"`
	OfficialListReference string    `bson:"officialListReference,omitempty"`
	IsDeleted             bool      `bson:"isDeleted"`
	CreatedAt             time.Time `bson:"createdAt"`
	UpdatedAt             time.Time `bson:"updatedAt"`
}

func fromBook(b domain.Book) bookDoc {
	return bookDoc{
		ID:                    b.ID,
		Title:                 b.Title,
		Description:           b.Description,
		Author:                b.Author,
		ISBN:                  b.ISBN,
		Category:              b.Category,
		PublishedYear:         b.PublishedYear,
		Condition:             string(b.Condition),
		CoverImage:            b.CoverImage,
		Price:                 b.Price,
		SellerID:              b.SellerID,
		IsVerified:            b.IsVerified,
		SchoolLevel:           b.SchoolLevel,
		OfficialListReference: b.OfficialListReference,
		IsDeleted:             b.IsDeleted,
		CreatedAt:             b.CreatedAt.UTC(),
		UpdatedAt:             b.UpdatedAt.UTC(),
	}
}

func (d bookDoc) book() domain.Book {
	return domain.Book{
		ID:                    d.ID,
		Title:                 d.Title,
		Description:           d.Description,
		Author:                d.Author,
		ISBN:                  d.ISBN,
		Category:              d.Category,
		PublishedYear:         d.PublishedYear,
		Condition:             domain.Condition(d.Condition),
		CoverImage:            d.CoverImage,
		Price:                 d.Price,
		SellerID:              d.SellerID,
		IsVerified:            d.IsVerified,
		SchoolLevel:           d.SchoolLevel,
		OfficialListReference: d.OfficialListReference,
		IsDeleted:             d.IsDeleted,
		CreatedAt:             d.CreatedAt.UTC(),
		UpdatedAt:             d.UpdatedAt.UTC(),
	}
}

var oldestFirst = bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}

type booksRepo struct {
	coll *mongo.Collection
}

func (r *booksRepo) CreateBook(ctx context.Context, b domain.Book) error {
	_, err := r.coll.InsertOne(ctx, fromBook(b))
	return mapDuplicate(err)
}

func (r *booksRepo) GetBookByID(ctx context.Context, id string) (domain.Book, error) {
	return r.findOne(ctx, live(bson.E{Key: "_id", Value: id}))
}

func (r *booksRepo) GetBookByISBN(ctx context.Context, isbn string) (domain.Book, error) {
	return r.findOne(ctx, live(bson.E{Key: "isbn", Value: isbn}))
}

func (r *booksRepo) GetBookByTitle(ctx context.Context, title string) (domain.Book, error) {
	return r.findOne(ctx, live(bson.E{Key: "title", Value: title}))
}

func (r *booksRepo) findOne(ctx context.Context, filter bson.D) (domain.Book, error) {
	var doc bookDoc
	err := r.coll.FindOne(ctx, filter, options.FindOne().SetSort(oldestFirst)).Decode(&doc)
	if err != nil {
		return domain.Book{}, mapNotFound(err)
	}
	return doc.book(), nil
}

func (r *booksRepo) UpdateBook(ctx context.Context, b domain.Book) error {
	res, err := r.coll.ReplaceOne(ctx, live(bson.E{Key: "_id", Value: b.ID}), fromBook(b))
	if err != nil {
		return mapDuplicate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *booksRepo) SoftDeleteBook(ctx context.Context, id string, at time.Time) error {
	res, err := r.coll.UpdateOne(ctx,
		live(bson.E{Key: "_id", Value: id}),
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "isDeleted", Value: true},
			{Key: "updatedAt", Value: at.UTC()},
		}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *booksRepo) SearchBooks(ctx context.Context, f domain.BookFilter) ([]domain.Book, error) {
	filter := live()

	if f.Query != "" {
		pattern := bson.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: pattern}},
			bson.D{{Key: "isbn", Value: pattern}},
			bson.D{{Key: "description", Value: pattern}},
		}})
	}
	if f.Category != "" {
		filter = append(filter, bson.E{Key: "category", Value: f.Category})
	}
	if f.Condition != "" {
		filter = append(filter, bson.E{Key: "condition", Value: string(f.Condition)})
	}
	if f.PriceMin != nil || f.PriceMax != nil {
		price := bson.D{}
		if f.PriceMin != nil {
			price = append(price, bson.E{Key: "$gte", Value: *f.PriceMin})
		}
		if f.PriceMax != nil {
			price = append(price, bson.E{Key: "$lte", Value: *f.PriceMax})
		}
		filter = append(filter, bson.E{Key: "price", Value: price})
	}
	if f.PublishedYear != 0 {
		filter = append(filter, bson.E{Key: "publishedYear", Value: f.PublishedYear})
	}
	if f.SchoolLevel != "" {
		filter = append(filter, bson.E{Key: "schoolLevel", Value: f.SchoolLevel})
	}

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(oldestFirst))
	if err != nil {
		return nil, err
	}

	var docs []bookDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]domain.Book, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.book())
	}
	return out, nil
}

func live(conds ...bson.E) bson.D {
	return append(bson.D{{Key: "isDeleted", Value: false}}, conds...)
}
