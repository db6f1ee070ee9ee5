// Package session owns the single in-memory session. Every transition goes
// through a Manager, which serialises them and broadcasts each new state.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pentopublic/pentopublic-client/internal/domain/access"
	"github.com/pentopublic/pentopublic-client/internal/domain/auth"
	apperrors "github.com/pentopublic/pentopublic-client/internal/errors"
	"github.com/pentopublic/pentopublic-client/internal/observability/metrics"
)

const (
	msgBusy          = "Another request is already in progress"
	msgLoading       = "Please wait, your session is still loading"
	msgAlreadySigned = "You are already signed in"
)

// Service is the network and storage side the Manager drives.
type Service interface {
	Authenticate(ctx context.Context, in auth.LoginInput) (auth.SessionRecord, error)
	Persist(ctx context.Context, rec auth.SessionRecord) error
	Register(ctx context.Context, reg auth.Registration) (auth.Confirmation, error)
	Logout(ctx context.Context) error
	Restore(ctx context.Context) (auth.SessionRecord, bool)
}

// Result is what Login and Register hand back to the UI layer.
// Failures never escape as errors: Error carries the displayable message.
type Result[T any] struct {
	Success bool                `json:"success"`
	Data    T                   `json:"data,omitempty"`
	Error   string              `json:"error,omitempty"`
	Code    apperrors.ErrorCode `json:"code,omitempty"`
	// Field names the offending input for validation failures.
	Field string `json:"field,omitempty"`
	// Discarded is set when a logout superseded the attempt while it was in flight.
	Discarded bool `json:"discarded,omitempty"`
}

// Options groups dependencies for Manager.
type Options struct {
	Service Service
	Logger  *slog.Logger
	Metrics *metrics.SessionRecorder
}

// Manager is the session facade. Construct one per process and pass it explicitly.
type Manager struct {
	svc     Service
	logger  *slog.Logger
	metrics *metrics.SessionRecorder

	mu    sync.Mutex
	state auth.State
	// generation is bumped by every attempt start and by logout. A resolution
	// carrying an older generation is stale and must not be applied.
	generation uint64
	subs       map[uint64]chan auth.State
	nextSub    uint64
}

// New constructs a Manager in the initial loading state.
func New(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		svc:     opts.Service,
		logger:  logger.With("component", "session"),
		metrics: opts.Metrics,
		state:   auth.Initial(),
		subs:    make(map[uint64]chan auth.State),
	}
}

// Start rehydrates the session from the credential store. No network call is made.
// A logout issued while the store is being read wins.
func (m *Manager) Start(ctx context.Context) auth.State {
	rec, ok := m.svc.Restore(ctx)

	var ev auth.Event = auth.StartupNoSession{}
	if ok {
		ev = auth.StartupWithSession{Record: rec}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.apply(ev); err != nil {
		m.logger.DebugContext(ctx, "startup result discarded", "error", err)
		m.metrics.EmitAttempt(metrics.AttemptMetric{Operation: "startup", Result: metrics.ResultDiscarded})
		return m.state.Clone()
	}
	result := "anonymous"
	if m.state.IsAuthenticated() {
		result = "restored"
	}
	m.logger.InfoContext(ctx, "session rehydrated", "result", result)
	m.metrics.EmitAttempt(metrics.AttemptMetric{Operation: "startup", Result: metrics.ResultSuccess})
	return m.state.Clone()
}

// Session returns a copy of the current state.
func (m *Manager) Session() auth.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// Login validates in, asks the backend, and applies the outcome unless a logout
// superseded the attempt. Credentials are persisted only when the outcome is applied.
func (m *Manager) Login(ctx context.Context, in auth.LoginInput) Result[auth.Identity] {
	if err := in.Validate(); err != nil {
		return failure[auth.Identity](err, "")
	}

	gen, err := m.begin(auth.LoginRequested{})
	if err != nil {
		m.metrics.EmitAttempt(metrics.AttemptMetric{Operation: "login", Result: metrics.ResultRejected})
		return failure[auth.Identity](err, msgBusy)
	}
	attemptID := uuid.NewString()
	m.logger.DebugContext(ctx, "login started", "attempt_id", attemptID)

	start := time.Now()
	rec, authErr := m.svc.Authenticate(ctx, in)
	elapsed := time.Since(start)

	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.generation {
		m.logger.DebugContext(ctx, "stale login result discarded", "attempt_id", attemptID)
		m.metrics.EmitAttempt(metrics.AttemptMetric{Operation: "login", Result: metrics.ResultDiscarded, Duration: elapsed})
		return Result[auth.Identity]{Discarded: true, Code: apperrors.ErrCodeStale}
	}

	if authErr == nil {
		if err := m.svc.Persist(ctx, rec); err != nil {
			authErr = err
		}
	}
	if authErr != nil {
		msg := apperrors.Message(authErr, auth.MsgLoginFailed)
		m.mustApply(ctx, auth.LoginFailed{Message: msg})
		m.logger.InfoContext(ctx, "login failed", "attempt_id", attemptID, "code", string(apperrors.CodeOf(authErr)))
		m.metrics.EmitAttempt(metrics.AttemptMetric{Operation: "login", Result: metrics.ResultError, Duration: elapsed, Err: authErr})
		return failure[auth.Identity](authErr, auth.MsgLoginFailed)
	}

	m.mustApply(ctx, auth.LoginSucceeded{Record: rec})
	m.logger.InfoContext(ctx, "login succeeded", "attempt_id", attemptID, "user_id", string(rec.Identity.ID), "role", string(rec.Identity.Role))
	m.metrics.EmitAttempt(metrics.AttemptMetric{Operation: "login", Result: metrics.ResultSuccess, Duration: elapsed})
	return Result[auth.Identity]{Success: true, Data: rec.Identity}
}

// Register validates reg and forwards it. Success leaves the session signed out:
// the caller must send the user to the login page.
func (m *Manager) Register(ctx context.Context, reg auth.Registration) Result[auth.Confirmation] {
	if err := reg.Validate(); err != nil {
		return failure[auth.Confirmation](err, "")
	}

	gen, err := m.begin(auth.RegisterRequested{})
	if err != nil {
		m.metrics.EmitAttempt(metrics.AttemptMetric{Operation: "register", Result: metrics.ResultRejected})
		return failure[auth.Confirmation](err, msgBusy)
	}
	attemptID := uuid.NewString()
	m.logger.DebugContext(ctx, "registration started", "attempt_id", attemptID)

	start := time.Now()
	conf, regErr := m.svc.Register(ctx, reg)
	elapsed := time.Since(start)

	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.generation {
		m.logger.DebugContext(ctx, "stale registration result discarded", "attempt_id", attemptID)
		m.metrics.EmitAttempt(metrics.AttemptMetric{Operation: "register", Result: metrics.ResultDiscarded, Duration: elapsed})
		return Result[auth.Confirmation]{Discarded: true, Code: apperrors.ErrCodeStale}
	}

	if regErr != nil {
		m.mustApply(ctx, auth.RegisterFailed{Message: apperrors.Message(regErr, auth.MsgRegistrationFailed)})
		m.logger.InfoContext(ctx, "registration failed", "attempt_id", attemptID, "code", string(apperrors.CodeOf(regErr)))
		m.metrics.EmitAttempt(metrics.AttemptMetric{Operation: "register", Result: metrics.ResultError, Duration: elapsed, Err: regErr})
		return failure[auth.Confirmation](regErr, auth.MsgRegistrationFailed)
	}

	m.mustApply(ctx, auth.RegisterSucceeded{})
	m.logger.InfoContext(ctx, "registration succeeded", "attempt_id", attemptID)
	m.metrics.EmitAttempt(metrics.AttemptMetric{Operation: "register", Result: metrics.ResultSuccess, Duration: elapsed})
	return Result[auth.Confirmation]{Success: true, Data: conf}
}

// Logout resets the session from any state and clears the credential store.
// Any attempt still in flight is invalidated. The returned error only reports
// a storage failure; the in-memory session is signed out regardless.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.generation++
	m.mustApply(ctx, auth.LoggedOut{})
	err := m.svc.Logout(ctx)
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	m.metrics.EmitAttempt(metrics.AttemptMetric{Operation: "logout", Result: result, Err: err})
	m.logger.InfoContext(ctx, "logged out")
	return err
}

// ClearError dismisses the last error. It is a no-op unless the session failed.
func (m *Manager) ClearError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mustApply(context.Background(), auth.ErrorCleared{})
}

// HasRole compares exactly against the session role.
func (m *Manager) HasRole(r auth.Role) bool {
	return m.Session().HasRole(r)
}

// HasAnyRole reports whether the session role is one of rs.
func (m *Manager) HasAnyRole(rs ...auth.Role) bool {
	return m.Session().HasAnyRole(rs...)
}

// Authorize runs the access gate against the current session.
func (m *Manager) Authorize(req access.Requirement) access.Decision {
	return access.Decide(m.Session(), req)
}

// Subscribe returns a channel that receives the current state immediately and
// then every new state. Slow readers only ever see the latest state.
// The returned func unsubscribes and closes the channel.
func (m *Manager) Subscribe() (<-chan auth.State, func()) {
	ch := make(chan auth.State, 1)

	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	ch <- m.state.Clone()
	m.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// begin applies a request event and returns the generation the attempt belongs to.
// A rejected request yields a conflict error explaining why.
func (m *Manager) begin(ev auth.Event) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.apply(ev); err != nil {
		switch {
		case m.state.Loading:
			return 0, &apperrors.AppError{Code: apperrors.ErrCodeConflict, Message: msgLoading, Cause: err}
		case m.state.IsAuthenticated():
			return 0, &apperrors.AppError{Code: apperrors.ErrCodeConflict, Message: msgAlreadySigned, Cause: err}
		default:
			return 0, &apperrors.AppError{Code: apperrors.ErrCodeConflict, Message: msgBusy, Cause: err}
		}
	}
	m.generation++
	return m.generation, nil
}

// apply runs the state machine. Callers hold m.mu.
func (m *Manager) apply(ev auth.Event) error {
	prev := m.state
	next, err := auth.Reduce(prev, ev)
	if err != nil {
		return err
	}
	m.state = next
	m.metrics.EmitTransition(ev.Name(), string(prev.Status), string(next.Status))
	for _, ch := range m.subs {
		offer(ch, next.Clone())
	}
	return nil
}

// mustApply is for events that are legal by construction at the call site.
func (m *Manager) mustApply(ctx context.Context, ev auth.Event) {
	if err := m.apply(ev); err != nil {
		m.logger.ErrorContext(ctx, "unexpected session transition failure", "event", ev.Name(), "error", err)
	}
}

// offer replaces whatever is buffered with s.
func offer(ch chan auth.State, s auth.State) {
	select {
	case ch <- s:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- s:
	default:
	}
}

func failure[T any](err error, fallback string) Result[T] {
	return Result[T]{Error: apperrors.Message(err, fallback), Code: apperrors.CodeOf(err), Field: apperrors.FieldOf(err)}
}
