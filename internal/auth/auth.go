package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"machine-maintenance-backend/internal/model"
	"machine-maintenance-backend/internal/store"
)

// ErrInvalidCredentials is returned for an unknown username or a wrong
// password; callers must not distinguish the two.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrInvalidToken is returned for missing, malformed or expired session
// tokens.
var ErrInvalidToken = errors.New("invalid session token")

// Identity is the authenticated console user as seen by the rest of the
// application.
type Identity struct {
	Username string
	Role     model.Role
}

// Service verifies credentials and issues signed session tokens.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService creates an auth service signing tokens with the given secret.
func NewService(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl}
}

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Login verifies the credentials against the user table and returns a
// session token plus the resolved identity.
func (s *Service) Login(ctx context.Context, st store.Store, username, password string) (string, *Identity, error) {
	user, err := st.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	id := Identity{Username: user.Username, Role: user.Role}
	token, err := s.IssueToken(id)
	if err != nil {
		return "", nil, err
	}
	return token, &id, nil
}

// IssueToken signs a session token for the given identity.
func (s *Service) IssueToken(id Identity) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Role: string(id.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ParseToken validates a session token and returns the identity it carries.
func (s *Service) ParseToken(token string) (*Identity, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &Identity{Username: claims.Subject, Role: model.Role(claims.Role)}, nil
}
