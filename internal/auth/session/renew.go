package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/victorgomez09/healthflow/internal/auth"
)

// TokenExpiry reads the exp claim of a JWT without verifying its signature. The client
// never holds the signing key; the server remains the authority on validity.
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}

	switch exp := claims["exp"].(type) {
	case float64:
		return time.Unix(int64(exp), 0), nil
	case json.Number:
		v, err := exp.Int64()
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: exp: %v", auth.ErrInvalidToken, err)
		}
		return time.Unix(v, 0), nil
	case nil:
		return time.Time{}, auth.ErrNoExpiry
	default:
		return time.Time{}, fmt.Errorf("%w: exp has type %T", auth.ErrInvalidToken, exp)
	}
}

// renewIfDue runs on the renewal task. Tokens that are not JWTs, or carry no exp, are
// left alone.
func (s *Store) renewIfDue(ctx context.Context) {
	token := s.client.Token()
	if token == "" {
		return
	}

	exp, err := TokenExpiry(token)
	if err != nil {
		if !errors.Is(err, auth.ErrNoExpiry) {
			s.logger.Debug("Token expiry unreadable, skipping renewal", zap.Error(err))
		}
		return
	}

	if s.now().Add(s.opts.RenewBefore).Before(exp) {
		return
	}

	s.logger.Debug("Token close to expiry, renewing", zap.Time("exp", exp))
	if err := s.RenewToken(ctx); err != nil {
		s.logger.Warn("Token renewal failed", zap.Error(err))
	}
}
