package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/ponliv/marketplace/internal/marketplace/domain"
)

type booksRepo struct {
	db *sql.DB
}

const bookColumns = `id, title, description, author, isbn, category, published_year, condition,
	cover_image, price, seller_id, is_verified, school_level, official_list_reference,
	is_deleted, created_at, updated_at`

func (r *booksRepo) CreateBook(ctx context.Context, b domain.Book) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO books (`+bookColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Title, b.Description, b.Author, nullable(b.ISBN), b.Category, b.PublishedYear,
		string(b.Condition), b.CoverImage, b.Price, b.SellerID, b.IsVerified, b.SchoolLevel,
		b.OfficialListReference, b.IsDeleted, toMillis(b.CreatedAt), toMillis(b.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *booksRepo) GetBookByID(ctx context.Context, id string) (domain.Book, error) {
	return r.getOne(ctx, `id = ?`, id)
}

func (r *booksRepo) GetBookByISBN(ctx context.Context, isbn string) (domain.Book, error) {
	return r.getOne(ctx, `isbn = ?`, isbn)
}

func (r *booksRepo) GetBookByTitle(ctx context.Context, title string) (domain.Book, error) {
	return r.getOne(ctx, `title = ?`, title)
}

func (r *booksRepo) getOne(ctx context.Context, where string, arg any) (domain.Book, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE is_deleted = 0 AND `+where+` ORDER BY created_at, id LIMIT 1`, arg)
	b, err := scanBook(row)
	return b, mapNotFound(err)
}

func (r *booksRepo) UpdateBook(ctx context.Context, b domain.Book) error {
	res, err := r.db.ExecContext(ctx, `UPDATE books SET
		title = ?, description = ?, author = ?, isbn = ?, category = ?, published_year = ?,
		condition = ?, cover_image = ?, price = ?, is_verified = ?, school_level = ?,
		official_list_reference = ?, updated_at = ?
		WHERE id = ? AND is_deleted = 0`,
		b.Title, b.Description, b.Author, nullable(b.ISBN), b.Category, b.PublishedYear,
		string(b.Condition), b.CoverImage, b.Price, b.IsVerified, b.SchoolLevel,
		b.OfficialListReference, toMillis(b.UpdatedAt), b.ID,
	)
	return requireAffected(res, mapConstraint(err))
}

func (r *booksRepo) SoftDeleteBook(ctx context.Context, id string, at time.Time) error {
	return requireAffected(r.db.ExecContext(ctx,
		`UPDATE books SET is_deleted = 1, updated_at = ? WHERE id = ? AND is_deleted = 0`,
		toMillis(at), id,
	))
}

func (r *booksRepo) SearchBooks(ctx context.Context, f domain.BookFilter) ([]domain.Book, error) {
	var (
		where = []string{`is_deleted = 0`}
		args  []any
	)

	if f.Query != "" {
		pattern := "%" + escapeLike(strings.ToLower(f.Query)) + "%"
		where = append(where, `(foldcase(title) LIKE ? ESCAPE '\' OR foldcase(coalesce(isbn, '')) LIKE ? ESCAPE '\' OR foldcase(description) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}
	if f.Category != "" {
		where = append(where, `category = ?`)
		args = append(args, f.Category)
	}
	if f.Condition != "" {
		where = append(where, `condition = ?`)
		args = append(args, string(f.Condition))
	}
	if f.PriceMin != nil {
		where = append(where, `price >= ?`)
		args = append(args, *f.PriceMin)
	}
	if f.PriceMax != nil {
		where = append(where, `price <= ?`)
		args = append(args, *f.PriceMax)
	}
	if f.PublishedYear != 0 {
		where = append(where, `published_year = ?`)
		args = append(args, f.PublishedYear)
	}
	if f.SchoolLevel != "" {
		where = append(where, `school_level = ?`)
		args = append(args, f.SchoolLevel)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE `+strings.Join(where, " AND ")+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(s scanner) (domain.Book, error) {
	var (
		b                    domain.Book
		isbn                 sql.NullString
		condition            string
		createdAt, updatedAt int64
	)
	err := s.Scan(
		&b.ID, &b.Title, &b.Description, &b.Author, &isbn, &b.Category, &b.PublishedYear, &condition,
		&b.CoverImage, &b.Price, &b.SellerID, &b.IsVerified, &b.SchoolLevel, &b.OfficialListReference,
		&b.IsDeleted, &createdAt, &updatedAt,
	)
	if err != nil {
		return domain.Book{}, err
	}

	b.ISBN = isbn.String
	b.Condition = domain.Condition(condition)
	b.CreatedAt = fromMillis(createdAt)
	b.UpdatedAt = fromMillis(updatedAt)
	return b, nil
}

// nullable stores empty strings as NULL so the partial unique index skips them.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
