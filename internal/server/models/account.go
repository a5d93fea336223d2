// Package models holds the records persisted by the identity store and the
// values returned by the auth services.
package models

import (
	"net/mail"
	"strings"
	"time"
)

// Role is the small enumerated privilege level carried by an account.
type Role int32

const (
	RoleUnspecified Role = 0
	RoleUser        Role = 1
	RoleAdmin       Role = 2
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAdmin:
		return "admin"
	default:
		return "unspecified"
	}
}

// Account is the profile identity. It never carries secret material.
type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

const maxEmailLength = 254

// NormalizeEmail trims and lower-cases email and reports whether the result
// is a bare "local@domain" address.
func NormalizeEmail(email string) (string, bool) {
	e := strings.ToLower(strings.TrimSpace(email))
	if e == "" || len(e) > maxEmailLength {
		return e, false
	}

	addr, err := mail.ParseAddress(e)
	if err != nil || addr.Address != e || addr.Name != "" {
		return e, false
	}

	local, domain, ok := strings.Cut(e, "@")
	if !ok || local == "" || domain == "" {
		return e, false
	}
	return e, true
}
