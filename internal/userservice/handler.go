package userservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/sushihentaime/haerin/internal/common"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
)

func NewUserService(db *sql.DB, mb common.MessageProducer, c *common.Cache, tokens *TokenIssuer, logger *slog.Logger) *UserService {
	return &UserService{
		m:      newUserModel(db),
		tokens: tokens,
		mb:     mb,
		c:      c,
		logger: logger,
	}
}

// Register creates a user account, issues a session token and publishes a user.created event.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)

	v := common.NewValidator()
	validateName(v, req.Name)
	validateEmail(v, req.Email)
	validatePassword(v, req.Password)
	validateBio(v, req.Bio)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	u := User{
		Name:  req.Name,
		Email: req.Email,
		Bio:   req.Bio,
	}

	err := u.Password.set(req.Password)
	if err != nil {
		return nil, err
	}

	err = s.m.insert(ctx, &u)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, err
	}

	// the account exists at this point, a lost welcome mail must not fail the registration
	s.publishUserCreated(ctx, &u)

	return &AuthResult{User: &u, Token: token}, nil
}

func (s *UserService) publishUserCreated(ctx context.Context, u *User) {
	msg, err := json.Marshal(common.UserCreatedEvent{Email: u.Email, Name: u.Name})
	if err != nil {
		s.logger.Error("could not marshal user.created event", slog.String("error", err.Error()))
		return
	}

	err = s.mb.Publish(ctx, msg, common.UserCreatedKey, common.UserExchange)
	if err != nil {
		s.logger.Error("could not publish user.created event", slog.Int64("user_id", u.ID), slog.String("error", err.Error()))
	}
}

// Login checks the credentials and issues a new session token.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)

	v := common.NewValidator()
	v.Check(email != "", "email", "must be provided")
	v.Check(password != "", "password", "must be provided")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	user, err := s.m.getByEmail(ctx, email)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, ErrInvalidCredentials
		default:
			return nil, err
		}
	}

	ok, err := user.Password.compare(password)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token}, nil
}

// GetProfile returns the user without the password hash.
func (s *UserService) GetProfile(ctx context.Context, id int64) (*User, error) {
	v := common.NewValidator()
	validateID(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if cached, ok := s.c.Get(common.CacheKeyUser(id)); ok {
		u := cached.(User)
		return &u, nil
	}

	u, err := s.m.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.CacheKeyUser(id), *u)

	return u, nil
}

// UpdateProfile changes the provided fields only.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, req UpdateProfileRequest) (*User, error) {
	v := common.NewValidator()
	validateID(v, id, "id")
	if req.Name != nil {
		*req.Name = strings.TrimSpace(*req.Name)
		validateName(v, *req.Name)
	}
	if req.Bio != nil {
		validateBio(v, *req.Bio)
	}
	if req.Avatar != nil {
		validateAvatar(v, *req.Avatar)
	}
	if req.Password != nil {
		validatePassword(v, *req.Password)
	}
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	u, err := s.m.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	renamed := req.Name != nil && *req.Name != u.Name
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Bio != nil {
		u.Bio = *req.Bio
	}
	if req.Avatar != nil {
		u.Avatar = *req.Avatar
	}
	if req.Password != nil {
		if err := u.Password.set(*req.Password); err != nil {
			return nil, err
		}
	}

	err = s.m.update(ctx, u)
	if err != nil {
		return nil, err
	}

	s.c.Delete(common.CacheKeyUser(id))
	if renamed {
		s.c.FlushBlogs()
	}

	return u, nil
}

// Authenticate resolves a session token to its user.
func (s *UserService) Authenticate(ctx context.Context, token string) (*User, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	u, err := s.GetProfile(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, ErrInvalidToken
		default:
			return nil, err
		}
	}

	return u, nil
}

func (u *User) IsAnonymous() bool {
	return u == nil || u.ID == AnonymousUser.ID
}
