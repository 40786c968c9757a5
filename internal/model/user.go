package model

import "time"

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. The json tags are omitted here because these structs
// are used internally by the repository layer; handlers define
// separate response types with appropriate JSON tags and never
// expose the password hash.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name.
//  Email        – unique email address, stored lower-cased so that
//                 lookups are case-insensitive.
//  PasswordHash – bcrypt hashed password.
//  RoleID       – foreign key into the roles table (required, never zero).
//  RoleName     – name of the role, joined in on reads for convenience.
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	RoleID       uint8     // users.role_id (references roles.id)
	RoleName     string    // roles.name (joined, not a users column)
	CreatedAt    time.Time // users.created_at
}

// Role represents a row in the `roles` table. Roles are immutable
// reference data seeded once at startup; users reference them via
// the RoleID foreign key.
//
// Fields:
//  ID          – numeric identifier of the role.
//  Name        – unique role name (ADMIN, MANAGER or USER).
//  Description – human readable description.
//  CreatedAt   – timestamp of seeding.
type Role struct {
	ID          uint8     // roles.id
	Name        string    // roles.name
	Description string    // roles.description
	CreatedAt   time.Time // roles.created_at
}

// Role names recognised by the service. The set is closed: any
// registration request naming an unknown role falls back to RoleUser.
const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleUser    = "USER"
)
