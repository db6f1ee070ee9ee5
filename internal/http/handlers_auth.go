package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/pentopublic/pentopublic-client/internal/domain/access"
	"github.com/pentopublic/pentopublic-client/internal/domain/auth"
	apperrors "github.com/pentopublic/pentopublic-client/internal/errors"
	"github.com/pentopublic/pentopublic-client/internal/session"
)

// SessionFacade is the part of session.Manager the HTTP layer drives.
type SessionFacade interface {
	Session() auth.State
	Login(ctx context.Context, in auth.LoginInput) session.Result[auth.Identity]
	Register(ctx context.Context, reg auth.Registration) session.Result[auth.Confirmation]
	Logout(ctx context.Context) error
	ClearError()
}

var _ SessionFacade = (*session.Manager)(nil)

// AuthHandlers serves the session API.
type AuthHandlers struct {
	Session SessionFacade
	Logger  *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// SessionView is the public projection of the session. The token is never exposed.
type SessionView struct {
	Status    auth.Status       `json:"status"`
	Loading   bool              `json:"loading"`
	Attempt   auth.Attempt      `json:"attempt,omitempty"`
	User      *auth.Identity    `json:"user,omitempty"`
	Error     string            `json:"error,omitempty"`
	Dashboard string            `json:"dashboard,omitempty"`
	Menu      []access.MenuItem `json:"menu"`
}

// NewSessionView projects s for clients.
func NewSessionView(s auth.State) SessionView {
	v := SessionView{
		Status:  s.Status,
		Loading: s.Loading,
		Attempt: s.Attempt,
		User:    s.Identity,
		Error:   s.LastError,
		Menu:    access.Menu(s),
	}
	if role, ok := s.Role(); ok {
		v.Dashboard = access.DashboardPath(role)
	}
	return v
}

// GetSession handles GET /api/auth/session.
func (h *AuthHandlers) GetSession(w http.ResponseWriter, _ *http.Request) {
	WriteData(w, http.StatusOK, NewSessionView(h.Session.Session()))
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Secret     string `json:"secret"`
}

type loginResponse struct {
	User     auth.Identity `json:"user"`
	Redirect string        `json:"redirect"`
}

// Login handles POST /api/auth/login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	res := h.Session.Login(r.Context(), auth.LoginInput{Identifier: req.Identifier, Secret: req.Secret})
	if !res.Success {
		writeFailure(w, res)
		return
	}

	redirect := access.DashboardPath(res.Data.Role)
	if target := r.URL.Query().Get("redirect_uri"); target != "" {
		redirect = access.SafeRedirectPath(target)
	}
	WriteData(w, http.StatusOK, loginResponse{User: res.Data, Redirect: redirect})
}

type registerRequest struct {
	UserName        string       `json:"userName"`
	Email           string       `json:"email"`
	Password        string       `json:"password"`
	ConfirmPassword string       `json:"confirmPassword"`
	Role            auth.Role    `json:"role"`
	Registration    auth.Profile `json:"registration"`
}

type registerResponse struct {
	Message  string      `json:"message"`
	UserID   auth.UserID `json:"userId,omitempty"`
	Redirect string      `json:"redirect"`
}

// Register handles POST /api/auth/register. A successful registration does not
// sign the user in; the response points at the login page.
func (h *AuthHandlers) Register(loginPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if !DecodeJSON(w, r, &req) {
			return
		}

		res := h.Session.Register(r.Context(), auth.Registration{
			UserName:        req.UserName,
			Email:           req.Email,
			Password:        req.Password,
			ConfirmPassword: req.ConfirmPassword,
			Role:            req.Role,
			Profile:         req.Registration,
		})
		if !res.Success {
			writeFailure(w, res)
			return
		}

		WriteData(w, http.StatusCreated, registerResponse{
			Message:  res.Data.Message,
			UserID:   res.Data.UserID,
			Redirect: loginPath,
		})
	}
}

// Logout handles POST /api/auth/logout. The session is anonymous afterwards
// even when clearing the store fails.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Session.Logout(r.Context()); err != nil {
		h.logger().WarnContext(r.Context(), "logout did not clear stored credentials", "error", err)
	}
	WriteData(w, http.StatusOK, NewSessionView(h.Session.Session()))
}

// ClearError handles DELETE /api/auth/error.
func (h *AuthHandlers) ClearError(w http.ResponseWriter, _ *http.Request) {
	h.Session.ClearError()
	WriteData(w, http.StatusOK, NewSessionView(h.Session.Session()))
}

func writeFailure[T any](w http.ResponseWriter, res session.Result[T]) {
	if res.Discarded {
		// Superseded by a logout; the caller only needs the current session.
		WriteJSON(w, http.StatusConflict, envelope{Code: apperrors.ErrCodeStale})
		return
	}
	WriteError(w, ErrorParams{Err: &apperrors.AppError{Code: res.Code, Message: res.Error, Field: res.Field}})
}
