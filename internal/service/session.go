package service

import (
	"context"
	"fmt"
	"log/slog"

	domainauth "github.com/pentopublic/pentopublic-client/internal/domain/auth"
	apperrors "github.com/pentopublic/pentopublic-client/internal/errors"
	"github.com/pentopublic/pentopublic-client/internal/ports"
)

const msgSaveFailed = "Unable to save your session"

// SessionServiceOptions groups dependencies for SessionService.
type SessionServiceOptions struct {
	Backend ports.Backend
	Store   ports.CredentialStore
	Logger  *slog.Logger
}

// SessionService performs the network and storage side of logging in and out.
// It holds no session state; callers decide which results to apply.
type SessionService struct {
	backend ports.Backend
	store   ports.CredentialStore
	logger  *slog.Logger
}

// NewSessionService constructs a new SessionService.
func NewSessionService(opts SessionServiceOptions) *SessionService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{
		backend: opts.Backend,
		store:   opts.Store,
		logger:  logger.With("component", "session_service"),
	}
}

// Authenticate asks the backend to verify in. It never writes to the store.
// Every error is an *apperrors.AppError with a displayable message.
func (s *SessionService) Authenticate(ctx context.Context, in domainauth.LoginInput) (domainauth.SessionRecord, error) {
	rec, err := s.backend.Login(ctx, in)
	if err != nil {
		return domainauth.SessionRecord{}, apperrors.Normalize(err, apperrors.ErrCodeTransport, domainauth.MsgLoginFailed)
	}
	if !rec.Complete() {
		s.logger.WarnContext(ctx, "backend login response incomplete",
			"has_token", rec.Token != "",
			"has_user", rec.Identity.ID != "",
			"role", string(rec.Identity.Role))
		return domainauth.SessionRecord{}, apperrors.Credential(domainauth.MsgLoginFailed)
	}
	return rec, nil
}

// Persist writes rec to the credential store as one record.
func (s *SessionService) Persist(ctx context.Context, rec domainauth.SessionRecord) error {
	if err := s.store.Save(ctx, rec); err != nil {
		s.logger.ErrorContext(ctx, "persist session failed", "error", err)
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, msgSaveFailed)
	}
	return nil
}

// Login authenticates and persists in one step.
func (s *SessionService) Login(ctx context.Context, in domainauth.LoginInput) (domainauth.SessionRecord, error) {
	rec, err := s.Authenticate(ctx, in)
	if err != nil {
		return domainauth.SessionRecord{}, err
	}
	if err := s.Persist(ctx, rec); err != nil {
		return domainauth.SessionRecord{}, err
	}
	return rec, nil
}

// Register forwards reg to the backend. It never touches the credential store.
func (s *SessionService) Register(ctx context.Context, reg domainauth.Registration) (domainauth.Confirmation, error) {
	conf, err := s.backend.Register(ctx, reg)
	if err != nil {
		return domainauth.Confirmation{}, apperrors.Normalize(err, apperrors.ErrCodeTransport, domainauth.MsgRegistrationFailed)
	}
	return conf, nil
}

// Logout clears the credential store. The backend is not involved.
func (s *SessionService) Logout(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		s.logger.ErrorContext(ctx, "clear stored session failed", "error", err)
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

// Restore reads the stored record for startup rehydration. No network call is made.
func (s *SessionService) Restore(ctx context.Context) (domainauth.SessionRecord, bool) {
	return s.store.Load(ctx)
}
