// Package auth implements the dashboard's stub login. Any non-empty email and
// password pair is accepted; a successful login raises the persisted
// "authenticated" flag and hands out a signed session token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Boluski2/lendsqr-admin/internal/config"
	"github.com/Boluski2/lendsqr-admin/internal/kv"
)

// FlagKey is the storage key of the authenticated flag.
const FlagKey = "lendsqr_auth"

const issuer = "lendsqr-admin"

var (
	// ErrMissingCredentials is returned when email or password is empty.
	ErrMissingCredentials = errors.New("email and password are required")
	// ErrInvalidToken is returned for tokens that fail verification.
	ErrInvalidToken = errors.New("invalid session token")
)

// Claims are carried by every session token.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Session is the result of a successful login.
type Session struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Service issues and verifies sessions.
type Service struct {
	store  kv.Store
	secret []byte
	ttl    time.Duration
	delay  time.Duration
	nowFn  func() time.Time
	logger *slog.Logger
}

// New builds a Service persisting the flag in store. Without a configured
// secret a random one is generated, so tokens do not survive a restart.
func New(store kv.Store, cfg config.AuthConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("component", "auth")

	secret := cfg.TokenSecret
	if secret == "" {
		secret = uuid.NewString()
		logger.Warn("no token secret configured, using an ephemeral one")
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Service{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		delay:  cfg.LoginDelay,
		nowFn:  time.Now,
		logger: logger,
	}
}

// Login accepts any non-empty credentials after the simulated delay.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	if email == "" || password == "" {
		return Session{}, ErrMissingCredentials
	}
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Session{}, ctx.Err()
		case <-timer.C:
		}
	}

	if err := s.store.Set(ctx, FlagKey, []byte("true")); err != nil {
		return Session{}, fmt.Errorf("persist auth flag: %w", err)
	}

	now := s.nowFn()
	expiresAt := now.Add(s.ttl)
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   email,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info("login", "email", email)
	return Session{Token: token, Email: email, ExpiresAt: expiresAt}, nil
}

// Authenticated reports whether the flag is raised. Unreadable storage counts as logged out.
func (s *Service) Authenticated(ctx context.Context) bool {
	raw, err := s.store.Get(ctx, FlagKey)
	if err != nil {
		if !kv.IsNotFound(err) {
			s.logger.Warn("auth flag unreadable", "error", err)
		}
		return false
	}
	return string(raw) == "true"
}

// Logout lowers the flag.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.Delete(ctx, FlagKey); err != nil {
		return fmt.Errorf("clear auth flag: %w", err)
	}
	return nil
}

// ValidateToken verifies signature, issuer and expiry.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.nowFn))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
