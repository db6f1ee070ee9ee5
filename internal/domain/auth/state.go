package auth

import (
	"errors"
	"fmt"
)

// Status is the authentication status of the session. Exactly one holds at any time.
type Status string

const (
	StatusAnonymous     Status = "anonymous"
	StatusPending       Status = "pending"
	StatusAuthenticated Status = "authenticated"
	StatusFailed        Status = "failed"
)

// Attempt identifies which request a Pending session is waiting on.
type Attempt string

const (
	AttemptNone     Attempt = ""
	AttemptLogin    Attempt = "login"
	AttemptRegister Attempt = "register"
)

// State is the in-memory session. It is replaced wholesale on every transition.
type State struct {
	Status Status
	// Loading stays true until startup rehydration has finished.
	Loading   bool
	Attempt   Attempt
	Identity  *Identity
	Token     string
	LastError string
}

// Initial returns the state a process starts in.
func Initial() State {
	return State{Status: StatusAnonymous, Loading: true}
}

// IsAuthenticated reports whether the session holds a verified identity.
func (s State) IsAuthenticated() bool { return s.Status == StatusAuthenticated }

// Role returns the session role, if any.
func (s State) Role() (Role, bool) {
	if s.Identity == nil {
		return "", false
	}
	return s.Identity.Role, true
}

// HasRole compares exactly against the session role.
func (s State) HasRole(r Role) bool {
	got, ok := s.Role()
	return ok && got == r
}

// HasAnyRole reports whether the session role is in rs.
func (s State) HasAnyRole(rs ...Role) bool {
	got, ok := s.Role()
	if !ok {
		return false
	}
	for _, r := range rs {
		if r == got {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can never mutate a shared identity.
func (s State) Clone() State {
	if s.Identity != nil {
		id := *s.Identity
		s.Identity = &id
	}
	return s
}

var errInvariant = errors.New("session invariant violated")

// Check reports the first violated invariant, or nil.
func (s State) Check() error {
	hasIdentity := s.Identity != nil
	hasToken := s.Token != ""
	switch {
	case hasIdentity != hasToken:
		return fmt.Errorf("%w: identity present=%t token present=%t", errInvariant, hasIdentity, hasToken)
	case hasIdentity != (s.Status == StatusAuthenticated):
		return fmt.Errorf("%w: identity present=%t in status %s", errInvariant, hasIdentity, s.Status)
	case hasIdentity && !s.Identity.Role.Valid():
		return fmt.Errorf("%w: role %q outside the role set", errInvariant, s.Identity.Role)
	case (s.Attempt != AttemptNone) != (s.Status == StatusPending):
		return fmt.Errorf("%w: attempt %q in status %s", errInvariant, s.Attempt, s.Status)
	case s.LastError != "" && s.Status != StatusFailed:
		return fmt.Errorf("%w: error message outside failed status", errInvariant)
	}
	return nil
}
