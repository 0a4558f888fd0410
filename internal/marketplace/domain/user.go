package domain

import (
	"slices"
	"time"
)

// Role is the single role a user holds. The set is closed.
type Role string

const (
	RoleStudent Role = "student"
	RoleParent  Role = "parent"
	RoleSponsor Role = "sponsor"
	RoleSchool  Role = "school"
	RoleSeller  Role = "seller"
	RoleAdmin   Role = "admin"
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleStudent, RoleParent, RoleSponsor, RoleSchool, RoleSeller, RoleAdmin}

func (r Role) Valid() bool    { return slices.Contains(Roles, r) }
func (r Role) String() string { return string(r) }

type SchoolType string

const (
	SchoolKindergarden SchoolType = "kindergarden"
	SchoolPrimary      SchoolType = "primary"
	SchoolSecondary    SchoolType = "secondary"
	SchoolUniversity   SchoolType = "university"
)

type UserStatus string

const StatusActive UserStatus = "active"

type User struct {
	ID           string
	Email        string // trimmed + lowercased, unique
	PasswordHash string // argon2id PHC, or bcrypt for imported accounts
	Name         string
	Address      string
	PhoneNumber  string
	NationalID   string
	Website      string
	Role         Role
	Status       UserStatus

	// school only
	Director   string
	SchoolType SchoolType

	// sponsor only
	Company string

	// parent only
	Children []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserPatch carries the fields supplied to an update. Nil means unchanged.
// Password is plaintext and must be hashed by the caller before Apply.
type UserPatch struct {
	Name        *string
	Email       *string
	Password    *string
	Address     *string
	PhoneNumber *string
	NationalID  *string
	Website     *string
	Director    *string
	SchoolType  *SchoolType
	Company     *string
	Children    *[]string
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p == UserPatch{}
}

// Apply copies every non-nil profile field onto u. Password is ignored.
func (p UserPatch) Apply(u *User) {
	set(&u.Name, p.Name)
	set(&u.Email, p.Email)
	set(&u.Address, p.Address)
	set(&u.PhoneNumber, p.PhoneNumber)
	set(&u.NationalID, p.NationalID)
	set(&u.Website, p.Website)
	set(&u.Director, p.Director)
	set(&u.SchoolType, p.SchoolType)
	set(&u.Company, p.Company)
	if p.Children != nil {
		u.Children = slices.Clone(*p.Children)
	}
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
