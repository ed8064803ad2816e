package userservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var (
	ErrDuplicateEmail = errors.New("duplicate email")
	ErrNotFound       = errors.New("user not found")
)

func newUserModel(db *sql.DB) *UserModel {
	return &UserModel{db: db}
}

func uniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" && pqErr.Constraint == constraint
	}
	return false
}

func (m *UserModel) insert(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (name, email, password, bio, avatar)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at, version`

	args := []any{
		u.Name,
		u.Email,
		u.Password.hash,
		u.Bio,
		u.Avatar,
	}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.Version)
	if err != nil {
		switch {
		case uniqueViolation(err, "users_email_key"):
			return ErrDuplicateEmail
		default:
			return err
		}
	}
	return nil
}

// getByEmail also selects the password hash, it is the only read used for credential checks.
func (m *UserModel) getByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, name, email, password, bio, avatar, created_at, updated_at, version
		FROM users
		WHERE email = $1`

	var u User

	err := m.db.QueryRowContext(ctx, query, email).Scan(&u.ID, &u.Name, &u.Email, &u.Password.hash, &u.Bio, &u.Avatar, &u.CreatedAt, &u.UpdatedAt, &u.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}

func (m *UserModel) getByID(ctx context.Context, id int64) (*User, error) {
	query := `
		SELECT id, name, email, bio, avatar, created_at, updated_at, version
		FROM users
		WHERE id = $1`

	var u User

	err := m.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email, &u.Bio, &u.Avatar, &u.CreatedAt, &u.UpdatedAt, &u.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}

// update writes the profile fields. The password column only changes when u carries a new hash.
func (m *UserModel) update(ctx context.Context, u *User) error {
	query := `
		UPDATE users
		SET name = $1, bio = $2, avatar = $3, password = COALESCE($4, password), updated_at = NOW(), version = version + 1
		WHERE id = $5
		RETURNING updated_at, version`

	var hash any
	if u.Password.hash != nil {
		hash = u.Password.hash
	}

	err := m.db.QueryRowContext(ctx, query, u.Name, u.Bio, u.Avatar, hash, u.ID).Scan(&u.UpdatedAt, &u.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrNotFound
		default:
			return err
		}
	}

	return nil
}
