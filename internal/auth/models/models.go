package models

import (
	"errors"
	"time"
)

type Role string

const (
	RoleAdmin           Role = "admin"
	RoleAnalyst         Role = "analyst"
	RoleFacilityManager Role = "facility_manager"
	RoleViewer          Role = "viewer"
)

// User is always replaced wholesale from server responses.
type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Role        Role       `json:"role"`
	Permissions []string   `json:"permissions"`
	State       string     `json:"state,omitempty"`
	LGA         string     `json:"lga,omitempty"`
	FacilityIDs []string   `json:"facilityIds,omitempty"`
	LastLogin   *time.Time `json:"lastLogin,omitempty"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// HasPermission reports whether the user holds permission p.
func (u *User) HasPermission(p string) bool {
	for _, have := range u.Permissions {
		if have == p {
			return true
		}
	}
	return false
}

// Validate rejects payloads missing the fields the client relies on.
func (u *User) Validate() error {
	if u == nil {
		return errors.New("user is missing")
	}
	if u.ID == "" {
		return errors.New("user id is missing")
	}
	if u.Email == "" {
		return errors.New("user email is missing")
	}
	return nil
}

// Credentials is the body of POST /auth/login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User         *User     `json:"user"`
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type RefreshResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// EventAction names a session transition recorded in the local audit trail.
type EventAction string

const (
	EventLogin     EventAction = "login"
	EventLogout    EventAction = "logout"
	EventBootstrap EventAction = "bootstrap"
	EventRenew     EventAction = "renew"
)

type EventStatus string

const (
	StatusSuccess EventStatus = "success"
	StatusFailure EventStatus = "failure"
)

// SessionEvent is one row of the session_events table.
type SessionEvent struct {
	ID        int64       `json:"id"`
	Action    EventAction `json:"action"`
	Status    EventStatus `json:"status"`
	Email     string      `json:"email"`
	Details   string      `json:"details"`
	CreatedAt time.Time   `json:"created_at"`
}
