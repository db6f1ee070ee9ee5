package auth

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIllegalTransition is returned by Reduce when an event is not accepted in the current state.
var ErrIllegalTransition = errors.New("illegal session transition")

// Messages shown when a failed attempt carries no message of its own.
const (
	MsgLoginFailed        = "Login failed"
	MsgRegistrationFailed = "Registration failed"
)

// Event is a discrete input to the session state machine.
// The set is closed: only the types in this file implement it.
type Event interface {
	Name() string
	isEvent()
}

// StartupNoSession reports that rehydration found nothing usable in the store.
type StartupNoSession struct{}

// StartupWithSession reports that rehydration found a complete record.
type StartupWithSession struct{ Record SessionRecord }

// LoginRequested starts a login attempt.
type LoginRequested struct{}

// LoginSucceeded resolves a login attempt with the backend-asserted record.
type LoginSucceeded struct{ Record SessionRecord }

// LoginFailed resolves a login attempt with a displayable message.
type LoginFailed struct{ Message string }

// RegisterRequested starts a registration attempt.
type RegisterRequested struct{}

// RegisterSucceeded resolves a registration attempt. It never authenticates.
type RegisterSucceeded struct{}

// RegisterFailed resolves a registration attempt with a displayable message.
type RegisterFailed struct{ Message string }

// LoggedOut ends the session from any state.
type LoggedOut struct{}

// ErrorCleared dismisses the last error.
type ErrorCleared struct{}

func (StartupNoSession) Name() string   { return "startup_no_session" }
func (StartupWithSession) Name() string { return "startup_with_session" }
func (LoginRequested) Name() string     { return "login_requested" }
func (LoginSucceeded) Name() string     { return "login_succeeded" }
func (LoginFailed) Name() string        { return "login_failed" }
func (RegisterRequested) Name() string  { return "register_requested" }
func (RegisterSucceeded) Name() string  { return "register_succeeded" }
func (RegisterFailed) Name() string     { return "register_failed" }
func (LoggedOut) Name() string          { return "logout" }
func (ErrorCleared) Name() string       { return "error_cleared" }

func (StartupNoSession) isEvent()   {}
func (StartupWithSession) isEvent() {}
func (LoginRequested) isEvent()     {}
func (LoginSucceeded) isEvent()     {}
func (LoginFailed) isEvent()        {}
func (RegisterRequested) isEvent()  {}
func (RegisterSucceeded) isEvent()  {}
func (RegisterFailed) isEvent()     {}
func (LoggedOut) isEvent()          {}
func (ErrorCleared) isEvent()       {}

// Reduce is the session transition function. It is pure: on an illegal event it
// returns s unchanged together with ErrIllegalTransition.
func Reduce(s State, ev Event) (State, error) {
	switch e := ev.(type) {
	case StartupNoSession:
		if !s.Loading {
			return s, illegal(s, ev)
		}
		return anonymous(), nil

	case StartupWithSession:
		if !s.Loading {
			return s, illegal(s, ev)
		}
		if !e.Record.Complete() {
			return anonymous(), nil
		}
		return authenticated(e.Record), nil

	case LoginRequested:
		return begin(s, ev, AttemptLogin)

	case RegisterRequested:
		return begin(s, ev, AttemptRegister)

	case LoginSucceeded:
		if !pendingOn(s, AttemptLogin) || !e.Record.Complete() {
			return s, illegal(s, ev)
		}
		return authenticated(e.Record), nil

	case LoginFailed:
		if !pendingOn(s, AttemptLogin) {
			return s, illegal(s, ev)
		}
		return failed(e.Message, MsgLoginFailed), nil

	case RegisterSucceeded:
		if !pendingOn(s, AttemptRegister) {
			return s, illegal(s, ev)
		}
		return anonymous(), nil

	case RegisterFailed:
		if !pendingOn(s, AttemptRegister) {
			return s, illegal(s, ev)
		}
		return failed(e.Message, MsgRegistrationFailed), nil

	case LoggedOut:
		return anonymous(), nil

	case ErrorCleared:
		if s.Status != StatusFailed {
			return s, nil
		}
		return anonymous(), nil

	default:
		return s, fmt.Errorf("%w: unknown event %T", ErrIllegalTransition, ev)
	}
}

func begin(s State, ev Event, attempt Attempt) (State, error) {
	if s.Loading {
		return s, illegal(s, ev)
	}
	if s.Status != StatusAnonymous && s.Status != StatusFailed {
		return s, illegal(s, ev)
	}
	return State{Status: StatusPending, Attempt: attempt}, nil
}

func pendingOn(s State, attempt Attempt) bool {
	return s.Status == StatusPending && s.Attempt == attempt
}

func anonymous() State { return State{Status: StatusAnonymous} }

func authenticated(rec SessionRecord) State {
	id := rec.Identity
	return State{Status: StatusAuthenticated, Identity: &id, Token: rec.Token}
}

func failed(msg, fallback string) State {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		msg = fallback
	}
	return State{Status: StatusFailed, LastError: msg}
}

func illegal(s State, ev Event) error {
	if s.Loading {
		return fmt.Errorf("%w: %s while loading", ErrIllegalTransition, ev.Name())
	}
	return fmt.Errorf("%w: %s in status %s", ErrIllegalTransition, ev.Name(), s.Status)
}
