package userservice

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/sushihentaime/haerin/internal/common"
)

const (
	DefaultTokenTTL time.Duration = 30 * 24 * time.Hour
)

var (
	AnonymousUser = User{}
)

type UserService struct {
	m      *UserModel
	tokens *TokenIssuer
	mb     common.MessageProducer
	c      *common.Cache
	logger *slog.Logger
}

type UserModel struct {
	db *sql.DB
}

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  Password  `json:"-"`
	Bio       string    `json:"bio"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"-"`
}

type Password struct {
	Plain string `json:"-"`
	hash  []byte `json:"-"`
}

type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	Bio      string
}

// UpdateProfileRequest leaves nil fields unchanged.
type UpdateProfileRequest struct {
	Name     *string
	Bio      *string
	Avatar   *string
	Password *string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
