package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/ponliv/marketplace/internal/marketplace/domain"
)

type usersRepo struct {
	db *sql.DB
}

const userColumns = `id, email, password_hash, name, address, phone_number, national_id,
	website, role, status, director, school_type, company, children, created_at, updated_at`

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	children, err := encodeChildren(u.Children)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.Address, u.PhoneNumber, u.NationalID,
		u.Website, string(u.Role), string(u.Status), u.Director, string(u.SchoolType), u.Company,
		children, toMillis(u.CreatedAt), toMillis(u.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *usersRepo) UpdateUser(ctx context.Context, u domain.User) error {
	children, err := encodeChildren(u.Children)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `UPDATE users SET
		email = ?, password_hash = ?, name = ?, address = ?, phone_number = ?, national_id = ?,
		website = ?, status = ?, director = ?, school_type = ?, company = ?, children = ?, updated_at = ?
		WHERE id = ?`,
		u.Email, u.PasswordHash, u.Name, u.Address, u.PhoneNumber, u.NationalID,
		u.Website, string(u.Status), u.Director, string(u.SchoolType), u.Company, children,
		toMillis(u.UpdatedAt), u.ID,
	)
	return requireAffected(res, mapConstraint(err))
}

func (r *usersRepo) DeleteUser(ctx context.Context, id string) error {
	return requireAffected(r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id))
}

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u                              domain.User
		role, status, schoolType, kids string
		createdAt, updatedAt           int64
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Address, &u.PhoneNumber, &u.NationalID,
		&u.Website, &role, &status, &u.Director, &schoolType, &u.Company, &kids, &createdAt, &updatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	if err := json.Unmarshal([]byte(kids), &u.Children); err != nil {
		return domain.User{}, err
	}
	if len(u.Children) == 0 {
		u.Children = nil
	}
	u.Role = domain.Role(role)
	u.Status = domain.UserStatus(status)
	u.SchoolType = domain.SchoolType(schoolType)
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return u, nil
}

func encodeChildren(children []string) (string, error) {
	if children == nil {
		children = []string{}
	}
	b, err := json.Marshal(children)
	return string(b), err
}
