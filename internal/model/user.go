package model

import "time"

// Roles stored in users.role.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an application user record as stored in the `users`
// table.  Password holds the bcrypt hash and is never serialized.
//
// Fields:
//   - ID: primary key identifier of the user.
//   - Username: display name chosen at registration.
//   - Email: unique email address, stored lower-cased.
//   - Password: bcrypt hash of the password.
//   - Role: "user" or "admin".
//   - CreatedAt: timestamp of creation.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidRole reports whether r is one of the roles understood by the API.
func ValidRole(r string) bool { return r == RoleUser || r == RoleAdmin }
