// Package auth contains domain-level types for the client session: roles, the
// authenticated identity, the persisted session record and the session state machine.
// It is pure and free of framework/adapter concerns.
package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Role represents an application's authorization role.
// Keep string form: it is what the backend sends and what the store persists.
type Role string

const (
	RoleReader Role = "Reader"
	RoleAuthor Role = "Author"
	RoleAdmin  Role = "Admin"
)

// Roles lists every valid role.
func Roles() []Role { return []Role{RoleReader, RoleAuthor, RoleAdmin} }

// Valid reports set membership. Nothing else about a role is checked client-side.
func (r Role) Valid() bool {
	switch r {
	case RoleReader, RoleAuthor, RoleAdmin:
		return true
	default:
		return false
	}
}

func (r Role) String() string { return string(r) }

// ParseRole returns the role named s if it is a member of the role set.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.TrimSpace(s))
	return r, r.Valid()
}

// UserID is an opaque user identifier. The backend may send it as a JSON number or string.
type UserID string

// UnmarshalJSON accepts both `7` and `"7"`.
func (id *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("user id must be a string or number: %w", err)
	}
	*id = UserID(n.String())
	return nil
}

// Identity is the authenticated principal as asserted by the backend.
type Identity struct {
	ID       UserID `json:"id"`
	UserName string `json:"userName"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Role     Role   `json:"role"`
}

// DisplayName prefers the profile name and falls back to the user name.
func (i Identity) DisplayName() string {
	if n := strings.TrimSpace(i.Name); n != "" {
		return n
	}
	return i.UserName
}

// SessionRecord is the token plus identity pair written to and read from the credential store.
type SessionRecord struct {
	Token    string
	Identity Identity
}

// Complete reports whether the record can back an authenticated session.
func (r SessionRecord) Complete() bool {
	return strings.TrimSpace(r.Token) != "" && r.Identity.ID != "" && r.Identity.Role.Valid()
}

// LoginInput is what the user types into the sign-in form.
type LoginInput struct {
	Identifier string `json:"identifier"`
	Secret     string `json:"secret"`
}

// Profile is the nested registration sub-record.
type Profile struct {
	Name        string `json:"name"`
	Gender      string `json:"gender"`
	Age         int    `json:"age"`
	PhoneNumber string `json:"phoneNumber"`
}

// Registration is the new-account payload. ConfirmPassword only feeds validation.
type Registration struct {
	UserName        string  `json:"userName"`
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	ConfirmPassword string  `json:"-"`
	Role            Role    `json:"role"`
	Profile         Profile `json:"registration"`
}

// Confirmation is the backend's acknowledgement of a registration.
type Confirmation struct {
	Message string          `json:"message,omitempty"`
	UserID  UserID          `json:"userId,omitempty"`
	Raw     json.RawMessage `json:"-"`
}
