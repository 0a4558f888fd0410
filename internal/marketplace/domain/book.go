package domain

import "time"

type Condition string

const (
	ConditionNew     Condition = "new"
	ConditionLikeNew Condition = "like_new"
	ConditionGood    Condition = "good"
	ConditionFair    Condition = "fair"
	ConditionPoor    Condition = "poor"
)

// Book is a listing put up by a seller. Deletion is soft.
type Book struct {
	ID                    string
	Title                 string
	Description           string
	Author                string
	ISBN                  string // empty when not provided, unique otherwise
	Category              string
	PublishedYear         int
	Condition             Condition
	CoverImage            string
	Price                 float64
	SellerID              string
	IsVerified            bool
	SchoolLevel           string
	OfficialListReference string
	IsDeleted             bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// IsISBNProvided is derived rather than stored separately.
func (b Book) IsISBNProvided() bool { return b.ISBN != "" }

// BookPatch carries the fields supplied to an update. Nil means unchanged.
type BookPatch struct {
	Title                 *string
	Description           *string
	Author                *string
	ISBN                  *string
	Category              *string
	PublishedYear         *int
	Condition             *Condition
	CoverImage            *string
	Price                 *float64
	SchoolLevel           *string
	OfficialListReference *string
	IsVerified            *bool
}

func (p BookPatch) IsEmpty() bool { return p == BookPatch{} }

// Apply copies every non-nil field onto b.
func (p BookPatch) Apply(b *Book) {
	set(&b.Title, p.Title)
	set(&b.Description, p.Description)
	set(&b.Author, p.Author)
	set(&b.ISBN, p.ISBN)
	set(&b.Category, p.Category)
	set(&b.PublishedYear, p.PublishedYear)
	set(&b.Condition, p.Condition)
	set(&b.CoverImage, p.CoverImage)
	set(&b.Price, p.Price)
	set(&b.SchoolLevel, p.SchoolLevel)
	set(&b.OfficialListReference, p.OfficialListReference)
	set(&b.IsVerified, p.IsVerified)
}

// BookFilter narrows a catalogue search. Query is matched case-insensitively
// as a substring of title, ISBN or description; zero-valued filters are ignored.
type BookFilter struct {
	Query         string
	Category      string
	Condition     Condition
	PriceMin      *float64
	PriceMax      *float64
	PublishedYear int
	SchoolLevel   string
}
