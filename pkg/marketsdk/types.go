package marketsdk

import "time"

// UserProfile is the public projection of a user. It never carries the
// password hash.
type UserProfile struct {
	ID          string    `json:"id" example:"01JBX3Z8Q4T6V0N2M5K7H9G1F3"`
	Email       string    `json:"email" example:"ana@example.com"`
	Name        string    `json:"name" example:"Ana Silva"`
	Address     string    `json:"address"`
	PhoneNumber string    `json:"phoneNumber" example:"912345678"`
	NIF         string    `json:"nif" example:"1234567890"`
	Website     string    `json:"website,omitempty"`
	Role        string    `json:"role" example:"student" enums:"student,parent,sponsor,school,seller,admin"`
	Status      string    `json:"status" example:"active"`
	Director    string    `json:"director,omitempty"`
	SchoolType  string    `json:"schoolType,omitempty" enums:"kindergarden,primary,secondary,university"`
	Company     string    `json:"company,omitempty"`
	Children    []string  `json:"children,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// LoginRequest is the body of POST /api/users/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token     string      `json:"token"`
	TokenType string      `json:"tokenType" example:"Bearer"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      UserProfile `json:"user"`
}

// RegisterRequest is a registration payload. Role selects which of the
// role-specific fields apply.
type RegisterRequest struct {
	Role        string   `json:"role"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	Address     string   `json:"address"`
	PhoneNumber string   `json:"phoneNumber"`
	NIF         string   `json:"nif"`
	Website     string   `json:"website,omitempty"`
	Director    string   `json:"director,omitempty"`
	SchoolType  string   `json:"schoolType,omitempty"`
	Company     string   `json:"company,omitempty"`
	Children    []string `json:"children,omitempty"`
}

// Book is a catalogue listing.
type Book struct {
	ID                    string    `json:"id"`
	Title                 string    `json:"title" example:"Matemática A 10"`
	Description           string    `json:"description"`
	Author                string    `json:"author"`
	ISBN                  string    `json:"isbn,omitempty" example:"9789720000001"`
	IsISBNProvided        bool      `json:"isIsbnProvided"`
	Category              string    `json:"category"`
	PublishedYear         int       `json:"publishedYear" example:"2021"`
	Condition             string    `json:"condition" enums:"new,like_new,good,fair,poor"`
	CoverImage            string    `json:"coverImage,omitempty"`
	Price                 float64   `json:"price" example:"12.5"`
	SellerID              string    `json:"sellerId"`
	IsVerified            bool      `json:"isVerified"`
	SchoolLevel           string    `json:"schoolLevel,omitempty"`
	OfficialListReference string    `json:"officialListReference,omitempty"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// BookRequest is the create/update payload. On update, only non-nil
// members are sent.
type BookRequest struct {
	Title                 *string  `json:"title,omitempty"`
	Description           *string  `json:"description,omitempty"`
	Author                *string  `json:"author,omitempty"`
	ISBN                  *string  `json:"isbn,omitempty"`
	Category              *string  `json:"category,omitempty"`
	PublishedYear         *int     `json:"publishedYear,omitempty"`
	Condition             *string  `json:"condition,omitempty"`
	CoverImage            *string  `json:"coverImage,omitempty"`
	Price                 *float64 `json:"price,omitempty"`
	SellerID              *string  `json:"sellerId,omitempty"`
	SchoolLevel           *string  `json:"schoolLevel,omitempty"`
	OfficialListReference *string  `json:"officialListReference,omitempty"`
	IsVerified            *bool    `json:"isVerified,omitempty"`
}

type BookResponse struct {
	Book Book `json:"book"`
}

type BookListResponse struct {
	Books []Book `json:"books"`
}

// MessageResponse confirms operations that return no resource.
type MessageResponse struct {
	Message string `json:"message" example:"user deleted"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status" example:"ok"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports per-dependency readiness.
type HealthChecks struct {
	Database string `json:"database"`
	Ledger   string `json:"ledger"`
}

// Ptr returns a pointer to v, handy for building BookRequest values.
func Ptr[T any](v T) *T { return &v }
