package mockapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/victorgomez09/healthflow/internal/api"
	apierr "github.com/victorgomez09/healthflow/internal/auth"
	authmodels "github.com/victorgomez09/healthflow/internal/auth/models"
	"github.com/victorgomez09/healthflow/internal/auth/validation"
	"github.com/victorgomez09/healthflow/internal/models"
)

const (
	maxBody  = 1 << 20
	maxLimit = 100
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// respond writes a success envelope around data.
func respond(w http.ResponseWriter, data any, meta *models.Meta) {
	writeJSON(w, http.StatusOK, api.Response[any]{Data: data, Success: true, Meta: meta})
}

// fail writes an error envelope. The client surfaces message verbatim.
func fail(w http.ResponseWriter, status int, message string, errs ...string) {
	writeJSON(w, status, api.Response[any]{Success: false, Message: message, Errors: errs})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Auth

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds authmodels.Credentials
	if err := decodeBody(r, &creds); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	creds = validation.Normalize(creds)
	if err := s.validator.Validate(creds); err != nil {
		fail(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	user, err := s.auth.authenticate(creds.Email, creds.Password)
	if err != nil {
		switch {
		case errors.Is(err, apierr.ErrInvalidCredentials):
			fail(w, http.StatusUnauthorized, "Invalid email or password")
		case errors.Is(err, apierr.ErrUserInactive):
			fail(w, http.StatusForbidden, "Account is disabled")
		default:
			s.logger.Error("Login failed", zap.Error(err))
			fail(w, http.StatusInternalServerError, "Authentication failed")
		}
		return
	}

	token, err := s.auth.issue(user)
	if err != nil {
		s.logger.Error("Failed to sign token", zap.Error(err))
		fail(w, http.StatusInternalServerError, "Authentication failed")
		return
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	respond(w, authmodels.LoginResponse{
		User:         user,
		Token:        token.Token,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.ExpiresAt,
	}, nil)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	s.auth.revoke(claims)
	writeJSON(w, http.StatusOK, api.Response[any]{Success: true, Message: "Logged out"})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	user, err := s.auth.user(claims.Subject)
	if err != nil {
		s.userError(w, err)
		return
	}
	respond(w, user, nil)
}

// refreshToken trades a valid bearer token for a new one and revokes the old one.
func (s *Server) refreshToken(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	user, err := s.auth.user(claims.Subject)
	if err != nil {
		s.userError(w, err)
		return
	}

	token, err := s.auth.issue(user)
	if err != nil {
		s.logger.Error("Failed to sign token", zap.Error(err))
		fail(w, http.StatusInternalServerError, "Error refreshing token")
		return
	}
	s.auth.revoke(claims)

	respond(w, authmodels.RefreshResponse{Token: token.Token, ExpiresAt: token.ExpiresAt}, nil)
}

func (s *Server) userError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apierr.ErrUserNotFound):
		fail(w, http.StatusUnauthorized, "User not found")
	case errors.Is(err, apierr.ErrUserInactive):
		fail(w, http.StatusForbidden, "Account is disabled")
	default:
		fail(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

// Query helpers

// matches reports whether the query leaves key unset or names have, ignoring case.
func matches(q url.Values, key, have string) bool {
	want := q.Get(key)
	return want == "" || strings.EqualFold(want, have)
}

// inRange compares an ISO date or timestamp against the dateFrom/dateTo bounds by prefix.
func inRange(q url.Values, fromKey, toKey, value string) bool {
	if from := q.Get(fromKey); from != "" && value[:min(len(from), len(value))] < from {
		return false
	}
	if to := q.Get(toKey); to != "" && value[:min(len(to), len(value))] > to {
		return false
	}
	return true
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func parsePagination(q url.Values) (models.Pagination, error) {
	p := models.Pagination{
		Page:      1,
		SortBy:    q.Get("sortBy"),
		SortOrder: models.SortOrder(strings.ToLower(q.Get("sortOrder"))),
	}

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, fmt.Errorf("page must be a positive integer: %q", v)
		}
		p.Page = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxLimit {
			return p, fmt.Errorf("limit must be between 1 and %d: %q", maxLimit, v)
		}
		p.Limit = n
	}
	switch p.SortOrder {
	case "", models.SortAsc, models.SortDesc:
	default:
		return p, fmt.Errorf("sortOrder must be asc or desc: %q", p.SortOrder)
	}
	return p, nil
}

// list sorts and pages items and writes them with a meta block. Unknown sort keys leave
// the fixture order. Without a limit every item is returned on one page.
func list[T any](w http.ResponseWriter, r *http.Request, items []T, sorts map[string]func(a, b T) int) {
	p, err := parsePagination(r.URL.Query())
	if err != nil {
		fail(w, http.StatusBadRequest, "Invalid query", err.Error())
		return
	}

	if cmp, ok := sorts[p.SortBy]; ok {
		if p.SortOrder == models.SortDesc {
			asc := cmp
			cmp = func(a, b T) int { return asc(b, a) }
		}
		slices.SortStableFunc(items, cmp)
	}

	total := len(items)
	limit := p.Limit
	if limit == 0 {
		limit = max(total, 1)
	}
	// pages past the end are empty; checking first keeps (Page-1)*limit from overflowing
	start := total
	if p.Page-1 <= total/limit {
		start = min((p.Page-1)*limit, total)
	}
	end := min(start+limit, total)

	respond(w, items[start:end], &models.Meta{
		Page:       p.Page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	})
}
