package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	issuer   = "warnetbook-api"
	audience = "warnetbook-clients"

	AccessTokenTTL  = 30 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

type tokenKind string

const (
	kindAccess  tokenKind = "access"
	kindRefresh tokenKind = "refresh"
)

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenKind = errors.New("wrong token kind")
	ErrMissingSecret  = errors.New("token secret is not configured")
)

// Claims is the JWT body. Role is checked against the closed Role set on parse.
type Claims struct {
	UserID int       `json:"user_id"`
	Email  string    `json:"email"`
	Role   Role      `json:"role"`
	Kind   tokenKind `json:"token_type"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() Identity {
	return Identity{UserID: c.UserID, Role: c.Role}
}

type TokenPair struct {
	Access  string
	Refresh string
}

// Keys signs and verifies account tokens. Access and refresh tokens are
// signed with separate secrets so one cannot stand in for the other.
type Keys struct {
	AccessSecret  string
	RefreshSecret string

	now func() time.Time
}

func (k Keys) clock() time.Time {
	if k.now != nil {
		return k.now()
	}
	return time.Now()
}

func (k Keys) secret(kind tokenKind) (string, error) {
	s := k.AccessSecret
	if kind == kindRefresh {
		s = k.RefreshSecret
	}
	if s == "" {
		return "", ErrMissingSecret
	}
	return s, nil
}

func (k Keys) sign(id Identity, email string, kind tokenKind, ttl time.Duration) (string, error) {
	secret, err := k.secret(kind)
	if err != nil {
		return "", err
	}

	now := k.clock()
	claims := &Claims{
		UserID: id.UserID,
		Email:  email,
		Role:   id.Role,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Access issues a short-lived access token.
func (k Keys) Access(id Identity, email string) (string, error) {
	return k.sign(id, email, kindAccess, AccessTokenTTL)
}

// Issue returns a fresh access and refresh token for a login.
func (k Keys) Issue(id Identity, email string) (TokenPair, error) {
	access, err := k.Access(id, email)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := k.sign(id, email, kindRefresh, RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

func (k Keys) ParseAccess(token string) (*Claims, error) {
	return k.parse(token, kindAccess)
}

func (k Keys) ParseRefresh(token string) (*Claims, error) {
	return k.parse(token, kindRefresh)
}

func (k Keys) parse(token string, want tokenKind) (*Claims, error) {
	secret, err := k.secret(want)
	if err != nil {
		return nil, err
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(k.clock),
	)

	claims := &Claims{}
	_, err = parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case err != nil:
		return nil, errors.Join(ErrInvalidToken, err)
	case !claims.Role.Valid():
		return nil, ErrInvalidToken
	case claims.Kind != want:
		return nil, ErrWrongTokenKind
	}
	return claims, nil
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPassword(hashedPassword, plainPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword)) == nil
}
