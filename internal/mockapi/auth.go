package mockapi

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apierr "github.com/victorgomez09/healthflow/internal/auth"
	authmodels "github.com/victorgomez09/healthflow/internal/auth/models"
)

const issuer = "healthflow-mock"

var (
	demoHashOnce sync.Once
	demoHash     []byte
	demoHashErr  error
)

// passwordHash hashes DemoPassword once per process; every fixture user shares it.
func passwordHash() ([]byte, error) {
	demoHashOnce.Do(func() {
		demoHash, demoHashErr = bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	})
	return demoHash, demoHashErr
}

// Claims are the JWT claims minted by the mock API. Subject holds the user ID.
type Claims struct {
	Role authmodels.Role `json:"role"`
	jwt.RegisteredClaims
}

type userRecord struct {
	authmodels.User
	passwordHash []byte
}

// issuedToken is an access token and its refresh token.
type issuedToken struct {
	Token        string
	RefreshToken string
	ExpiresAt    time.Time
}

// authService authenticates fixture users and mints, validates and revokes tokens.
type authService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	byEmail map[string]*userRecord
	byID    map[string]*userRecord
	revoked map[string]time.Time // jti -> token expiry
}

func newAuthService(users []authmodels.User, secret []byte, ttl time.Duration) (*authService, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	hash, err := passwordHash()
	if err != nil {
		return nil, fmt.Errorf("failed to hash demo password: %w", err)
	}

	s := &authService{
		secret:  secret,
		ttl:     ttl,
		now:     time.Now,
		byEmail: make(map[string]*userRecord, len(users)),
		byID:    make(map[string]*userRecord, len(users)),
		revoked: make(map[string]time.Time),
	}
	for _, u := range users {
		rec := &userRecord{User: u, passwordHash: hash}
		s.byEmail[strings.ToLower(u.Email)] = rec
		s.byID[u.ID] = rec
	}
	return s, nil
}

// authenticate checks the email/password pair and stamps the user's last login.
func (s *authService) authenticate(email, password string) (*authmodels.User, error) {
	s.mu.Lock()
	rec, ok := s.byEmail[strings.ToLower(email)]
	s.mu.Unlock()
	if !ok {
		return nil, apierr.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(rec.passwordHash, []byte(password)); err != nil {
		return nil, apierr.ErrInvalidCredentials
	}
	if !rec.IsActive {
		return nil, apierr.ErrUserInactive
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	rec.LastLogin = &now
	u := rec.User
	return &u, nil
}

// issue signs a new access token for user. The refresh token is opaque; renewal goes
// through the bearer token.
func (s *authService) issue(user *authmodels.User) (*issuedToken, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &issuedToken{Token: signed, RefreshToken: uuid.NewString(), ExpiresAt: expiresAt}, nil
}

// validate verifies the signature, expiry and revocation status of an access token.
func (s *authService) validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apierr.ErrInvalidToken
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, apierr.ErrInvalidToken
	}

	s.mu.Lock()
	_, revoked := s.revoked[claims.ID]
	s.mu.Unlock()
	if revoked {
		return nil, apierr.ErrRevokedToken
	}
	return claims, nil
}

// user returns a copy of the user with id, rejecting disabled accounts.
func (s *authService) user(id string) (*authmodels.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return nil, apierr.ErrUserNotFound
	}
	if !rec.IsActive {
		return nil, apierr.ErrUserInactive
	}
	u := rec.User
	return &u, nil
}

// revoke marks the token as signed out until its natural expiry, and forgets revocations
// that have expired on their own.
func (s *authService) revoke(claims *Claims) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for jti, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, jti)
		}
	}

	exp := now.Add(s.ttl)
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	s.revoked[claims.ID] = exp
}
