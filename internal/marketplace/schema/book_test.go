package schema

import (
	"net/url"
	"testing"
	"time"

	"github.com/ponliv/marketplace/internal/marketplace/domain"
	"github.com/stretchr/testify/require"
)

func pinYear(t *testing.T, year int) {
	t.Helper()
	prev := now
	now = func() time.Time { return time.Date(year, 6, 1, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = prev })
}

const validBook = `{
	"title": "Matemática A",
	"description": "Manual do 10.º ano, pouco usado",
	"author": "Porto Editora",
	"isbn": "978-972-0-41234-5",
	"category": "school",
	"publishedYear": 2020,
	"condition": "like_new",
	"price": 12.5,
	"schoolLevel": "secondary"
}`

func TestValidateBook(t *testing.T) {
	pinYear(t, 2025)

	b, err := ValidateBook([]byte(validBook))
	require.NoError(t, err)
	require.Equal(t, "9789720412345", b.ISBN)
	require.True(t, b.IsISBNProvided())
	require.Equal(t, domain.ConditionLikeNew, b.Condition)
	require.InDelta(t, 12.5, b.Price, 0.0001)
	require.False(t, b.IsVerified)
}

func TestValidateBook_Violations(t *testing.T) {
	pinYear(t, 2025)

	_, err := ValidateBook([]byte(`{
		"title": "M",
		"description": "short",
		"isbn": "123",
		"publishedYear": 2030,
		"condition": "mint",
		"price": -1,
		"coverImage": "not a url"
	}`))

	ve, ok := err.(*ValidationError)
	require.True(t, ok)
	want := map[string]string{
		"title":         "min",
		"description":   "min",
		"author":        "required",
		"isbn":          "len",
		"category":      "required",
		"publishedYear": tagNotFutureYear,
		"condition":     "oneof",
		"coverImage":    "url",
		"price":         "gte",
	}
	got := map[string]string{}
	for _, v := range ve.Violations {
		got[v.Field] = v.Rule
	}
	require.Equal(t, want, got)
}

func TestValidateBook_PriceZeroAndYearFloor(t *testing.T) {
	pinYear(t, 2025)

	_, err := ValidateBook([]byte(`{"title":"Livro","description":"dez letras!","author":"Eu","category":"misc","publishedYear":1899,"condition":"good","price":0}`))
	ve, ok := err.(*ValidationError)
	require.True(t, ok)
	require.Len(t, ve.Violations, 1)
	require.Equal(t, "publishedYear", ve.Violations[0].Field)
	require.Equal(t, "gte", ve.Violations[0].Rule)

	_, err = ValidateBook([]byte(`{"title":"Livro","description":"dez letras!","author":"Eu","category":"misc","publishedYear":1900,"condition":"good","price":0}`))
	require.NoError(t, err)
}

func TestValidateBookPatch(t *testing.T) {
	pinYear(t, 2025)

	p, err := ValidateBookPatch([]byte(`{"price": 3, "condition": "fair", "isVerified": true}`))
	require.NoError(t, err)
	require.InDelta(t, 3.0, *p.Price, 0.0001)
	require.Equal(t, domain.ConditionFair, *p.Condition)
	require.True(t, *p.IsVerified)
	require.Nil(t, p.Title)

	_, err = ValidateBookPatch([]byte(`{"sellerId": "someone", "title": "x"}`))
	ve, ok := err.(*ValidationError)
	require.True(t, ok)
	require.True(t, ve.Has("sellerId"))
	require.True(t, ve.Has("title"))
}

func TestParseBookFilter(t *testing.T) {
	f, err := ParseBookFilter(url.Values{
		"q":             {" math "},
		"condition":     {"good"},
		"priceMin":      {"1"},
		"priceMax":      {"20.5"},
		"publishedYear": {"2020"},
		"category":      {"school"},
	})
	require.NoError(t, err)
	require.Equal(t, "math", f.Query)
	require.Equal(t, domain.ConditionGood, f.Condition)
	require.InDelta(t, 1.0, *f.PriceMin, 0.0001)
	require.InDelta(t, 20.5, *f.PriceMax, 0.0001)
	require.Equal(t, 2020, f.PublishedYear)

	_, err = ParseBookFilter(url.Values{})
	ve, ok := err.(*ValidationError)
	require.True(t, ok)
	require.True(t, ve.Has("q"))

	_, err = ParseBookFilter(url.Values{"q": {"x"}, "priceMin": {"-2"}, "condition": {"mint"}, "publishedYear": {"abc"}})
	ve, ok = err.(*ValidationError)
	require.True(t, ok)
	require.Len(t, ve.Violations, 3)

	_, err = ParseBookFilter(url.Values{"q": {"x"}, "priceMin": {"10"}, "priceMax": {"5"}})
	ve, ok = err.(*ValidationError)
	require.True(t, ok)
	require.True(t, ve.Has("priceMax"))
}
