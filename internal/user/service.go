package user

import (
	"context"
	"errors"
	"strings"

	"warnetbook/internal/apperr"
	"warnetbook/internal/auth"
	"warnetbook/internal/db"
	"warnetbook/internal/logger"
	"warnetbook/internal/membership"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error)
	RegisterMember(ctx context.Context, req RegisterMemberRequest) (*LoginResponse, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*LoginResponse, error)
	GetByID(ctx context.Context, userID int) (*User, error)
	CreateOperator(ctx context.Context, fullName, email, password string) (*User, error)
}

type service struct {
	repo        Repository
	memberships membership.Repository
	tx          db.Transactor
	keys        auth.Keys
}

func NewService(repo Repository, memberships membership.Repository, tx db.Transactor, jwtSecret, refreshSecret string) Service {
	return &service{
		repo:        repo,
		memberships: memberships,
		tx:          tx,
		keys:        auth.Keys{AccessSecret: jwtSecret, RefreshSecret: refreshSecret},
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error) {
	u, err := s.create(ctx, req, auth.RolePatron)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(u)
}

// RegisterMember creates a member account together with its first venue
// membership. Neither row is kept if the other fails.
func (s *service) RegisterMember(ctx context.Context, req RegisterMemberRequest) (*LoginResponse, error) {
	var u *User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if u, err = s.create(ctx, req.RegisterRequest, auth.RoleMember); err != nil {
			return err
		}
		_, err = s.memberships.Create(ctx, u.ID, req.VenueID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("member registered", "user_id", u.ID, "venue_id", req.VenueID)
	return s.issueTokens(u)
}

func (s *service) CreateOperator(ctx context.Context, fullName, email, password string) (*User, error) {
	if len(password) < 8 {
		return nil, apperr.Validation("password must be at least 8 characters")
	}
	return s.create(ctx, RegisterRequest{FullName: fullName, Email: email, Password: password}, auth.RoleOperator)
}

func (s *service) create(ctx context.Context, req RegisterRequest, role auth.Role) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, strings.TrimSpace(req.FullName), email, passwordHash, role)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	u, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(u)
}

// RefreshToken reloads the account so a role change since the last login
// lands in the new access token.
func (s *service) RefreshToken(ctx context.Context, refreshToken string) (*LoginResponse, error) {
	claims, err := s.keys.ParseRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.keys.Access(u.Identity(), u.Email)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{AccessToken: accessToken, User: *u}, nil
}

func (s *service) GetByID(ctx context.Context, userID int) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *service) issueTokens(u *User) (*LoginResponse, error) {
	pair, err := s.keys.Issue(u.Identity(), u.Email)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		User:         *u,
	}, nil
}
