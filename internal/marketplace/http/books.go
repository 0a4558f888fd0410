package http

import (
	"net/http"

	"github.com/ponliv/marketplace/internal/marketplace/service"
	"github.com/ponliv/marketplace/pkg/httpx"
	"github.com/ponliv/marketplace/pkg/marketsdk"
)

type BooksHandler struct {
	Books *service.BookService
}

// HandleCreate lists a book.
//
//	@Summary		Create listing
//	@Description	Sellers list under their own id. Admins may set sellerId and isVerified.
//	@Tags			Books
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		marketsdk.BookRequest	true	"Listing"
//	@Success		201		{object}	marketsdk.BookResponse
//	@Failure		400		{object}	httpx.ErrorResponse	"validation_error or duplicate_isbn"
//	@Failure		401		{object}	httpx.ErrorResponse
//	@Failure		403		{object}	httpx.ErrorResponse
//	@Router			/api/books [post].
func (h *BooksHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	body, err := httpx.ReadBody(w, r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	b, err := h.Books.Create(r.Context(), a, body)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, marketsdk.BookResponse{Book: toBook(b)})
}

// HandleGet fetches a live listing by id.
//
//	@Summary	Get listing
//	@Tags		Books
//	@Produce	json
//	@Param		id	path		string	true	"Book id"
//	@Success	200	{object}	marketsdk.BookResponse
//	@Failure	404	{object}	httpx.ErrorResponse
//	@Router		/api/books/{id} [get].
func (h *BooksHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	b, err := h.Books.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, marketsdk.BookResponse{Book: toBook(b)})
}

// HandleGetByISBN
//
//	@Summary	Get listing by ISBN
//	@Tags		Books
//	@Produce	json
//	@Param		isbn	path		string	true	"ISBN-13, hyphens allowed"
//	@Success	200		{object}	marketsdk.BookResponse
//	@Failure	404		{object}	httpx.ErrorResponse
//	@Router		/api/books/isbn/{isbn} [get].
func (h *BooksHandler) HandleGetByISBN(w http.ResponseWriter, r *http.Request) {
	b, err := h.Books.GetByISBN(r.Context(), r.PathValue("isbn"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, marketsdk.BookResponse{Book: toBook(b)})
}

// HandleGetByTitle
//
//	@Summary		Get listing by title
//	@Description	Exact title match. When several listings share a title the oldest is returned.
//	@Tags			Books
//	@Produce		json
//	@Param			title	path		string	true	"Title"
//	@Success		200		{object}	marketsdk.BookResponse
//	@Failure		404		{object}	httpx.ErrorResponse
//	@Router			/api/books/title/{title} [get].
func (h *BooksHandler) HandleGetByTitle(w http.ResponseWriter, r *http.Request) {
	b, err := h.Books.GetByTitle(r.Context(), r.PathValue("title"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, marketsdk.BookResponse{Book: toBook(b)})
}

// HandleSearch
//
//	@Summary		Search listings
//	@Description	Case-insensitive substring match over title, ISBN and description, oldest first.
//	@Tags			Books
//	@Produce		json
//	@Param			q				query		string	true	"Search text"
//	@Param			category		query		string	false	"Category"
//	@Param			condition		query		string	false	"Condition"	Enums(new, like_new, good, fair, poor)
//	@Param			priceMin		query		number	false	"Minimum price"
//	@Param			priceMax		query		number	false	"Maximum price"
//	@Param			publishedYear	query		int		false	"Publication year"
//	@Param			schoolLevel		query		string	false	"School level"
//	@Success		200				{object}	marketsdk.BookListResponse
//	@Failure		400				{object}	httpx.ErrorResponse
//	@Router			/api/books/search [get].
func (h *BooksHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	books, err := h.Books.Search(r.Context(), r.URL.Query())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, marketsdk.BookListResponse{Books: toBooks(books)})
}

// HandleUpdate
//
//	@Summary		Update listing
//	@Description	Partial update by the owning seller or an admin. Only admins may change isVerified.
//	@Tags			Books
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Book id"
//	@Param			request	body		marketsdk.BookRequest	true	"Members to change"
//	@Success		200		{object}	marketsdk.BookResponse
//	@Failure		400		{object}	httpx.ErrorResponse
//	@Failure		403		{object}	httpx.ErrorResponse
//	@Failure		404		{object}	httpx.ErrorResponse
//	@Router			/api/books/{id} [put].
func (h *BooksHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	body, err := httpx.ReadBody(w, r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	b, err := h.Books.Update(r.Context(), a, r.PathValue("id"), body)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, marketsdk.BookResponse{Book: toBook(b)})
}

// HandleDelete
//
//	@Summary	Delete listing
//	@Tags		Books
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"Book id"
//	@Success	200	{object}	marketsdk.MessageResponse
//	@Failure	403	{object}	httpx.ErrorResponse
//	@Failure	404	{object}	httpx.ErrorResponse
//	@Router		/api/books/{id} [delete].
func (h *BooksHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	if err := h.Books.Delete(r.Context(), a, r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, marketsdk.MessageResponse{Message: "book deleted"})
}
