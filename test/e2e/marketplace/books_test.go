package marketplace_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/ponliv/marketplace/pkg/marketsdk"
	"github.com/stretchr/testify/require"
)

func TestBookCatalog(t *testing.T) {
	client := setupMarketplace(t, withEnv(relaxedLimits))
	ctx := t.Context()

	seller := signUp(t, client, "seller", "loja@example.com")
	student := signUp(t, client, "student", "aluno@example.com")

	_, err := student.CreateBook(ctx, listing("Português 9", ""))
	assertAPIError(t, err, http.StatusForbidden, marketsdk.KindForbidden)

	book, err := seller.CreateBook(ctx, listing("Matemática A 10", "978-9720000001"))
	require.NoError(t, err)
	require.Equal(t, "9789720000001", book.ISBN)
	require.Equal(t, seller.User().ID, book.SellerID)

	_, err = seller.CreateBook(ctx, listing("Outro livro", "9789720000001"))
	assertAPIError(t, err, http.StatusBadRequest, marketsdk.KindDuplicateISBN)

	// Listings without an ISBN never collide.
	_, err = seller.CreateBook(ctx, listing("Caderno de atividades", ""))
	require.NoError(t, err)
	_, err = seller.CreateBook(ctx, listing("Caderno de atividades", ""))
	require.NoError(t, err)

	got, err := client.GetBookByISBN(ctx, "978-9720000001")
	require.NoError(t, err)
	require.Equal(t, book.ID, got.ID)

	got, err = client.GetBookByTitle(ctx, "Matemática A 10")
	require.NoError(t, err)
	require.Equal(t, book.ID, got.ID)

	results, err := client.SearchBooks(ctx, url.Values{"q": {"caderno"}})
	require.NoError(t, err)
	require.Len(t, results, 2)

	updated, err := seller.UpdateBook(ctx, book.ID, marketsdk.BookRequest{Price: marketsdk.Ptr(8.0)})
	require.NoError(t, err)
	require.InDelta(t, 8.0, updated.Price, 0.0001)

	require.NoError(t, seller.DeleteBook(ctx, book.ID))
	_, err = client.GetBook(ctx, book.ID)
	assertAPIError(t, err, http.StatusNotFound, marketsdk.KindNotFound)

	// The ISBN is free again once its listing is gone.
	_, err = seller.CreateBook(ctx, listing("Matemática A 10", "9789720000001"))
	require.NoError(t, err)
}

func TestSearchRequiresQuery(t *testing.T) {
	client := setupMarketplace(t)

	_, err := client.SearchBooks(t.Context(), url.Values{})
	assertAPIError(t, err, http.StatusBadRequest, marketsdk.KindValidation)
}
