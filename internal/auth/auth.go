// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

// Package auth implements password sign-up/sign-in and bearer token
// verification for the API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/bonial-oss/vendor-risk/internal/store"
	"github.com/bonial-oss/vendor-risk/internal/types"
)

const (
	TokenType        = "bearer"
	MinPasswordLen   = 8
	DefaultIssuer    = "vendor-risk"
	DefaultTokenTTL  = 24 * time.Hour
	minSecretLength  = 16
	maxPasswordBytes = 72
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = fmt.Errorf("password must be %d to %d characters", MinPasswordLen, maxPasswordBytes)
	ErrMissingToken       = errors.New("missing bearer token")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Profiles is the profile storage used by Service.
type Profiles interface {
	Create(ctx context.Context, p *types.Profile) error
	Get(ctx context.Context, id string) (*types.Profile, error)
	GetByEmail(ctx context.Context, email string) (*types.Profile, error)
}

// Config configures token signing.
type Config struct {
	Secret     string
	Issuer     string
	TokenTTL   time.Duration
	BcryptCost int
}

// Claims are the JWT claims issued for a session.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Service issues and verifies sessions.
type Service struct {
	profiles Profiles
	secret   []byte
	issuer   string
	ttl      time.Duration
	cost     int
	now      func() time.Time
}

// NewService creates a Service. The secret must be at least 16 bytes.
func NewService(profiles Profiles, cfg Config) (*Service, error) {
	if len(cfg.Secret) < minSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes", minSecretLength)
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultIssuer
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		profiles: profiles,
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		ttl:      cfg.TokenTTL,
		cost:     cfg.BcryptCost,
		now:      time.Now,
	}, nil
}

// SignUp registers a new profile and returns a session for it.
func (s *Service) SignUp(ctx context.Context, creds types.Credentials) (*types.Session, error) {
	if len(creds.Password) < MinPasswordLen || len(creds.Password) > maxPasswordBytes {
		return nil, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	p := &types.Profile{
		Email:        creds.Email,
		FullName:     strings.TrimSpace(creds.FullName),
		Company:      strings.TrimSpace(creds.Company),
		PasswordHash: string(hash),
	}
	if err := s.profiles.Create(ctx, p); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return s.issue(p)
}

// SignIn checks the password and returns a fresh session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*types.Session, error) {
	p, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(p)
}

func (s *Service) issue(p *types.Profile) (*types.Session, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := Claims{
		Email: p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}
	return &types.Session{
		AccessToken: signed,
		TokenType:   TokenType,
		ExpiresAt:   expires.UTC().Truncate(time.Second),
		User:        *p,
	}, nil
}

// Verify parses and validates a token, returning the authenticated user.
func (s *Service) Verify(token string) (User, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return User{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return User{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return User{ID: claims.Subject, Email: claims.Email}, nil
}

// Profile returns the stored profile for an authenticated user.
func (s *Service) Profile(ctx context.Context, u User) (*types.Profile, error) {
	return s.profiles.Get(ctx, u.ID)
}
