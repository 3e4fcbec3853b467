// Package models defines server-side data models persisted in the local
// identity store or handed between auth components.
package models

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is a local identity record.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	// TOTPSecret is the base32 second-factor secret; empty when 2FA is off.
	TOTPSecret string
	Roles      []string
	// HardwareID references the bound hardware record, nil when unbound.
	HardwareID *int64
	// GameToken is the opaque game-access token rotated on every login.
	GameToken string
	// ExternalToken caches the last access token confirmed by the
	// external identity service.
	ExternalToken string
	CreatedAt     time.Time

	// Transient users are synthesized from an external identity and never
	// written to the store.
	Transient bool
}

// LoginUpdate carries the user fields rewritten after a successful login.
// Zero-valued fields are left untouched.
type LoginUpdate struct {
	GameToken     string
	ExternalToken string
	Roles         []string
}

func (l LoginUpdate) Empty() bool {
	return l.GameToken == "" && l.ExternalToken == "" && l.Roles == nil
}

// Apply copies the update onto u.
func (l LoginUpdate) Apply(u *User) {
	if l.GameToken != "" {
		u.GameToken = l.GameToken
	}
	if l.ExternalToken != "" {
		u.ExternalToken = l.ExternalToken
	}
	if l.Roles != nil {
		u.Roles = slices.Clone(l.Roles)
	}
}

func (u *User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// AddRole appends role unless present and reports whether it was added.
func (u *User) AddRole(role string) bool {
	if role == "" || u.HasRole(role) {
		return false
	}
	u.Roles = append(u.Roles, role)
	return true
}

// JoinRoles and SplitRoles convert between Roles and the stored column.
func JoinRoles(roles []string) string {
	return strings.Join(roles, ",")
}

func SplitRoles(s string) []string {
	var roles []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}
