package http

import (
	"github.com/ponliv/marketplace/internal/marketplace/domain"
	"github.com/ponliv/marketplace/pkg/marketsdk"
)

// toProfile is the only way a user leaves the service; the password hash
// is dropped here.
func toProfile(u domain.User) marketsdk.UserProfile {
	return marketsdk.UserProfile{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Address:     u.Address,
		PhoneNumber: u.PhoneNumber,
		NIF:         u.NationalID,
		Website:     u.Website,
		Role:        string(u.Role),
		Status:      string(u.Status),
		Director:    u.Director,
		SchoolType:  string(u.SchoolType),
		Company:     u.Company,
		Children:    u.Children,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func toBook(b domain.Book) marketsdk.Book {
	return marketsdk.Book{
		ID:                    b.ID,
		Title:                 b.Title,
		Description:           b.Description,
		Author:                b.Author,
		ISBN:                  b.ISBN,
		IsISBNProvided:        b.IsISBNProvided(),
		Category:              b.Category,
		PublishedYear:         b.PublishedYear,
		Condition:             string(b.Condition),
		CoverImage:            b.CoverImage,
		Price:                 b.Price,
		SellerID:              b.SellerID,
		IsVerified:            b.IsVerified,
		SchoolLevel:           b.SchoolLevel,
		OfficialListReference: b.OfficialListReference,
		CreatedAt:             b.CreatedAt,
		UpdatedAt:             b.UpdatedAt,
	}
}

func toBooks(books []domain.Book) []marketsdk.Book {
	out := make([]marketsdk.Book, len(books))
	for i, b := range books {
		out[i] = toBook(b)
	}
	return out
}
