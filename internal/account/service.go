// internal/account/service.go
//
// Signup, credential verification, and bearer-token issuance.
//
// Passwords are stored as bcrypt hashes.  Tokens are HS256 JWTs carrying
// the account ID as the subject; the HTTP layer verifies them on every
// authenticated route.
package account

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sriox/platform/internal/resource"
)

// ErrBadCredentials covers both an unknown username and a wrong password,
// so callers cannot probe which accounts exist.
var ErrBadCredentials = errors.New("invalid username or password")

// ErrBadToken is returned for expired, malformed, or mis-signed tokens.
var ErrBadToken = errors.New("invalid or expired token")

var (
	usernameRE = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,30}$`)
	emailRE    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// ValidationError reports a rejected signup field.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Service implements account lifecycle on top of Store.
type Service struct {
	store    *Store
	secret   []byte
	tokenTTL time.Duration
	log      *zap.SugaredLogger
}

// NewService wires the store with the JWT signing secret and token TTL.
func NewService(store *Store, secret []byte, tokenTTL time.Duration, log *zap.SugaredLogger) *Service {
	return &Service{store: store, secret: secret, tokenTTL: tokenTTL, log: log}
}

// Signup validates the fields, hashes the password, and creates the row.
func (s *Service) Signup(ctx context.Context, username, email, password string) (*Account, error) {
	if !usernameRE.MatchString(username) {
		return nil, &ValidationError{Reason: "Username must be 3-30 characters (letters, numbers, hyphen, underscore)."}
	}
	if !emailRE.MatchString(email) {
		return nil, &ValidationError{Reason: "Invalid email address."}
	}
	if len(password) < 8 {
		return nil, &ValidationError{Reason: "Password must be at least 8 characters."}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	a := &Account{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := s.store.Create(ctx, a); err != nil {
		return nil, err
	}
	s.log.Infow("account created", "account", a.ID, "username", username)
	return a, nil
}

// ByID fetches the account behind a verified token subject.
func (s *Service) ByID(ctx context.Context, id int64) (*Account, error) {
	return s.store.ByID(ctx, id)
}

// Authenticate verifies the credentials and returns the account.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Account, error) {
	a, err := s.store.ByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if !a.IsActive {
		return nil, ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	return a, nil
}

// IssueToken signs a bearer token for the account.
func (s *Service) IssueToken(a *Account) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(a.ID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// VerifyToken parses and validates a bearer token, returning the account
// ID it was issued for.
func (s *Service) VerifyToken(raw string) (int64, error) {
	tok, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil || !tok.Valid {
		return 0, ErrBadToken
	}
	claims, ok := tok.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return 0, ErrBadToken
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrBadToken
	}
	return id, nil
}
