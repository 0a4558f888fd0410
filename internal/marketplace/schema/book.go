package schema

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/ponliv/marketplace/internal/marketplace/domain"
)

// BookInput is the listing payload for create and update.
type BookInput struct {
	Title                 string   `json:"title" validate:"required,min=2"`
	Description           string   `json:"description" validate:"required,min=10"`
	Author                string   `json:"author" validate:"required,min=2"`
	ISBN                  string   `json:"isbn" validate:"omitempty,len=13"`
	Category              string   `json:"category" validate:"required,min=2"`
	PublishedYear         int      `json:"publishedYear" validate:"required,gte=1900,notfuture_year"`
	Condition             string   `json:"condition" validate:"required,oneof=new like_new good fair poor"`
	CoverImage            string   `json:"coverImage" validate:"omitempty,url"`
	Price                 *float64 `json:"price" validate:"required,gte=0"`
	SellerID              string   `json:"sellerId"`
	SchoolLevel           string   `json:"schoolLevel"`
	OfficialListReference string   `json:"officialListReference" validate:"omitempty,min=2"`
	IsVerified            *bool    `json:"isVerified"`
}

func (b *BookInput) normalize() {
	trim(&b.Title, &b.Description, &b.Author, &b.ISBN, &b.Category, &b.Condition,
		&b.CoverImage, &b.SellerID, &b.SchoolLevel, &b.OfficialListReference)
	b.ISBN = strings.ReplaceAll(b.ISBN, "-", "")
}

func (b *BookInput) book() domain.Book {
	out := domain.Book{
		Title:                 b.Title,
		Description:           b.Description,
		Author:                b.Author,
		ISBN:                  b.ISBN,
		Category:              b.Category,
		PublishedYear:         b.PublishedYear,
		Condition:             domain.Condition(b.Condition),
		CoverImage:            b.CoverImage,
		SellerID:              b.SellerID,
		SchoolLevel:           b.SchoolLevel,
		OfficialListReference: b.OfficialListReference,
	}
	if b.Price != nil {
		out.Price = *b.Price
	}
	if b.IsVerified != nil {
		out.IsVerified = *b.IsVerified
	}
	return out
}

// ValidateBook checks a new listing. SellerID is whatever the client sent;
// the caller decides whether to honour it.
func ValidateBook(payload []byte) (domain.Book, error) {
	raw, err := parseObject(payload)
	if err != nil {
		return domain.Book{}, err
	}

	var in BookInput
	c := newCollector()
	checkStruct(raw, &in, c)
	if err := c.err(); err != nil {
		return domain.Book{}, err
	}
	return in.book(), nil
}

// ValidateBookPatch checks the supplied members of a listing update.
// Ownership cannot be transferred through an update.
func ValidateBookPatch(payload []byte) (domain.BookPatch, error) {
	raw, err := parseObject(payload)
	if err != nil {
		return domain.BookPatch{}, err
	}

	var in BookInput
	c := newCollector()
	if _, ok := raw["sellerId"]; ok {
		c.add(-1, "sellerId", RuleImmutable, "cannot be changed")
	}
	present := checkPresent(raw, &in, c)
	if err := c.err(); err != nil {
		return domain.BookPatch{}, err
	}

	var p domain.BookPatch
	for _, f := range present {
		switch f.name {
		case "title":
			p.Title = &in.Title
		case "description":
			p.Description = &in.Description
		case "author":
			p.Author = &in.Author
		case "isbn":
			p.ISBN = &in.ISBN
		case "category":
			p.Category = &in.Category
		case "publishedYear":
			p.PublishedYear = &in.PublishedYear
		case "condition":
			cond := domain.Condition(in.Condition)
			p.Condition = &cond
		case "coverImage":
			p.CoverImage = &in.CoverImage
		case "price":
			p.Price = in.Price
		case "schoolLevel":
			p.SchoolLevel = &in.SchoolLevel
		case "officialListReference":
			p.OfficialListReference = &in.OfficialListReference
		case "isVerified":
			p.IsVerified = in.IsVerified
		}
	}
	return p, nil
}

// ParseBookFilter reads catalogue search parameters. q is required.
func ParseBookFilter(q url.Values) (domain.BookFilter, error) {
	c := newCollector()
	f := domain.BookFilter{
		Query:       strings.TrimSpace(q.Get("q")),
		Category:    strings.TrimSpace(q.Get("category")),
		SchoolLevel: strings.TrimSpace(q.Get("schoolLevel")),
	}
	if f.Query == "" {
		c.add(0, "q", "required", "is required")
	}

	if s := strings.TrimSpace(q.Get("condition")); s != "" {
		if err := validate.Var(s, "oneof=new like_new good fair poor"); err != nil {
			c.add(1, "condition", "oneof", message("oneof", "new like_new good fair poor", ""))
		}
		f.Condition = domain.Condition(s)
	}

	price := func(pos int, name string) *float64 {
		s := strings.TrimSpace(q.Get(name))
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 {
			c.add(pos, name, "gte", "must be a number >= 0")
			return nil
		}
		return &v
	}
	f.PriceMin = price(2, "priceMin")
	f.PriceMax = price(3, "priceMax")
	if f.PriceMin != nil && f.PriceMax != nil && *f.PriceMin > *f.PriceMax {
		c.add(3, "priceMax", "gtefield", "must not be below priceMin")
	}

	if s := strings.TrimSpace(q.Get("publishedYear")); s != "" {
		year, err := strconv.Atoi(s)
		if err != nil {
			c.add(4, "publishedYear", RuleType, "must be an integer")
		}
		f.PublishedYear = year
	}

	if err := c.err(); err != nil {
		return domain.BookFilter{}, err
	}
	return f, nil
}
