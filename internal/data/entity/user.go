package entity

import (
	"time"
)

type UserRole string

const (
	UserRoleGuest UserRole = "guest"
	UserRoleHost  UserRole = "host"
	UserRoleAdmin UserRole = "admin"
)

// UserStatus carries the host-reliability escalation ladder:
// warning -> 7-day suspension -> 30-day suspension -> permanent removal.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusWarned    UserStatus = "warned"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusRemoved   UserStatus = "removed"
)

// User mirrors what the identity provider owns; the core only mutates the
// reliability fields.
type User struct {
	Base
	Email          string     `db:"email"`
	Role           UserRole   `db:"role"`
	Status         UserStatus `db:"status"`
	SuspendedUntil *time.Time `db:"suspended_until"`
}
