package schema

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/ponliv/marketplace/internal/marketplace/domain"
)

// Base holds the fields every role shares.
type Base struct {
	Name        string     `json:"name" validate:"required,min=2"`
	Email       string     `json:"email" validate:"required,email"`
	Password    string     `json:"password" validate:"required,min=6"`
	Address     string     `json:"address" validate:"required,min=3"`
	PhoneNumber string     `json:"phoneNumber" validate:"required,number,min=8,max=15"`
	NIF         string     `json:"nif" validate:"required,number,len=10"`
	Website     string     `json:"website" validate:"omitempty,url"`
	CreatedAt   *time.Time `json:"createdAt"`
}

// Password is never trimmed: leading and trailing spaces are part of it.
func (b *Base) normalize() {
	trim(&b.Name, &b.Email, &b.Address, &b.PhoneNumber, &b.NIF, &b.Website)
	b.Email = strings.ToLower(b.Email)
}

func (b *Base) sealed() {}

func (b *Base) PlainPassword() string { return b.Password }

func (b *Base) user(role domain.Role, now time.Time) domain.User {
	created := now
	if b.CreatedAt != nil && !b.CreatedAt.IsZero() {
		created = b.CreatedAt.UTC()
	}
	return domain.User{
		Email:       b.Email,
		Name:        b.Name,
		Address:     b.Address,
		PhoneNumber: b.PhoneNumber,
		NationalID:  b.NIF,
		Website:     b.Website,
		Role:        role,
		Status:      domain.StatusActive,
		CreatedAt:   created,
		UpdatedAt:   now,
	}
}

// Profile is a validated registration payload for exactly one role.
// Implementations are the role structs below; the set is closed.
type Profile interface {
	Role() domain.Role

	// User builds the record to persist. PasswordHash is left empty.
	User(now time.Time) domain.User

	// PlainPassword is the password to hash.
	PlainPassword() string

	sealed()
	normalize()
}

type Student struct{ Base }

type Parent struct {
	Base
	Children []string `json:"children" validate:"omitempty,dive,required"`
}

type Sponsor struct {
	Base
	Company string `json:"company"`
}

type School struct {
	Base
	Director   string `json:"director" validate:"required,min=2"`
	SchoolType string `json:"schoolType" validate:"required,oneof=kindergarden primary secondary university"`
}

type Seller struct{ Base }

type Admin struct{ Base }

func (*Student) Role() domain.Role { return domain.RoleStudent }
func (*Parent) Role() domain.Role  { return domain.RoleParent }
func (*Sponsor) Role() domain.Role { return domain.RoleSponsor }
func (*School) Role() domain.Role  { return domain.RoleSchool }
func (*Seller) Role() domain.Role  { return domain.RoleSeller }
func (*Admin) Role() domain.Role   { return domain.RoleAdmin }

func (p *Student) User(now time.Time) domain.User { return p.user(p.Role(), now) }
func (p *Seller) User(now time.Time) domain.User  { return p.user(p.Role(), now) }
func (p *Admin) User(now time.Time) domain.User   { return p.user(p.Role(), now) }

func (p *Parent) User(now time.Time) domain.User {
	u := p.user(p.Role(), now)
	u.Children = p.Children
	return u
}

func (p *Sponsor) User(now time.Time) domain.User {
	u := p.user(p.Role(), now)
	u.Company = p.Company
	return u
}

func (p *School) User(now time.Time) domain.User {
	u := p.user(p.Role(), now)
	u.Director = p.Director
	u.SchoolType = domain.SchoolType(p.SchoolType)
	return u
}

func (p *Parent) normalize() {
	p.Base.normalize()
	for i := range p.Children {
		p.Children[i] = strings.TrimSpace(p.Children[i])
	}
}

func (p *Sponsor) normalize() {
	p.Base.normalize()
	trim(&p.Company)
}

func (p *School) normalize() {
	p.Base.normalize()
	trim(&p.Director, &p.SchoolType)
}

// newProfile returns an empty variant for role.
func newProfile(role domain.Role) (Profile, bool) {
	switch role {
	case domain.RoleStudent:
		return &Student{}, true
	case domain.RoleParent:
		return &Parent{}, true
	case domain.RoleSponsor:
		return &Sponsor{}, true
	case domain.RoleSchool:
		return &School{}, true
	case domain.RoleSeller:
		return &Seller{}, true
	case domain.RoleAdmin:
		return &Admin{}, true
	default:
		return nil, false
	}
}

func unknownRole() error {
	names := make([]string, len(domain.Roles))
	for i, r := range domain.Roles {
		names[i] = string(r)
	}
	return single("role", RuleUnknownRole, "must be one of: "+strings.Join(names, ", "))
}

// Validate checks a registration payload. The "role" member selects the
// variant; every failing field is reported, not just the first.
func Validate(payload []byte) (Profile, error) {
	raw, err := parseObject(payload)
	if err != nil {
		return nil, err
	}

	var role string
	if msg, ok := raw["role"]; ok {
		_ = json.Unmarshal(msg, &role)
	}
	r := domain.Role(strings.TrimSpace(role))
	if !r.Valid() {
		return nil, unknownRole()
	}
	p, _ := newProfile(r)

	c := newCollector()
	checkStruct(raw, p, c)
	if err := c.err(); err != nil {
		return nil, err
	}
	return p, nil
}

// ValidatePatch checks an update payload against role's schema. Only the
// members present are validated; the role itself cannot change.
func ValidatePatch(role domain.Role, payload []byte) (domain.UserPatch, error) {
	raw, err := parseObject(payload)
	if err != nil {
		return domain.UserPatch{}, err
	}
	if !role.Valid() {
		return domain.UserPatch{}, unknownRole()
	}
	p, _ := newProfile(role)

	c := newCollector()
	if msg, ok := raw["role"]; ok {
		var requested string
		if json.Unmarshal(msg, &requested) != nil || domain.Role(strings.TrimSpace(requested)) != role {
			c.add(-1, "role", RuleImmutable, "cannot be changed")
		}
	}

	present := checkPresent(raw, p, c)
	if err := c.err(); err != nil {
		return domain.UserPatch{}, err
	}
	return buildPatch(p, present), nil
}

func buildPatch(p Profile, present []field) domain.UserPatch {
	v := reflect.ValueOf(p).Elem()
	str := func(f field) *string {
		s := v.FieldByIndex(f.index).String()
		return &s
	}

	var patch domain.UserPatch
	for _, f := range present {
		switch f.name {
		case "name":
			patch.Name = str(f)
		case "email":
			patch.Email = str(f)
		case "password":
			patch.Password = str(f)
		case "address":
			patch.Address = str(f)
		case "phoneNumber":
			patch.PhoneNumber = str(f)
		case "nif":
			patch.NationalID = str(f)
		case "website":
			patch.Website = str(f)
		case "director":
			patch.Director = str(f)
		case "company":
			patch.Company = str(f)
		case "schoolType":
			st := domain.SchoolType(*str(f))
			patch.SchoolType = &st
		case "children":
			kids, _ := v.FieldByIndex(f.index).Interface().([]string)
			patch.Children = &kids
		}
	}
	return patch
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) normalize() {
	trim(&c.Email)
	c.Email = strings.ToLower(c.Email)
}

// ValidateCredentials checks the shape of a login payload only.
func ValidateCredentials(payload []byte) (Credentials, error) {
	raw, err := parseObject(payload)
	if err != nil {
		return Credentials{}, err
	}

	var creds Credentials
	c := newCollector()
	checkStruct(raw, &creds, c)
	if err := c.err(); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}
