package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pentopublic/pentopublic-client/config"
	"github.com/pentopublic/pentopublic-client/internal/domain/auth"
)

func newCommandContext(t *testing.T, mutate func(*config.AppConfig)) (*commandContext, *bytes.Buffer) {
	t.Helper()
	cfg := config.AppConfig{
		Auth: config.AuthConfig{
			Mode:    config.AuthModeMock,
			DevAuth: config.DevAuthConfig{Users: "ana:secret1:Reader;ben:secret2:Author", TokenTTL: time.Hour, SigningKey: "test-key"},
		},
		Store: config.StoreConfig{
			Driver:              config.StoreDriverFile,
			Path:                filepath.Join(t.TempDir(), "credentials.json"),
			RejectExpiredTokens: true,
		},
	}
	if mutate != nil {
		mutate(&cfg)
	}
	cfg.Sanitize()

	var out bytes.Buffer
	return &commandContext{
		Ctx:    context.Background(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: cfg,
		Out:    &out,
	}, &out
}

func TestParseLoginFlags(t *testing.T) {
	opts, err := parseLoginFlags([]string{"-u", "ana", "-p", "pw"}, nil)
	require.NoError(t, err)
	assert.Equal(t, loginOptions{Identifier: "ana", Secret: "pw"}, opts)

	opts, err = parseLoginFlags([]string{"-u", "ana"}, strings.NewReader("from-stdin\n"))
	require.NoError(t, err)
	assert.Equal(t, "from-stdin", opts.Secret)
}

func TestParseRegisterFlags(t *testing.T) {
	reg, err := parseRegisterFlags([]string{
		"-u", "cara", "-e", "cara@example.com", "-p", "hunter22", "-role", "Author",
		"-name", "Cara", "-gender", "Female", "-age", "31", "-phone", "+1 555 000 1111",
	})
	require.NoError(t, err)
	assert.Equal(t, "hunter22", reg.ConfirmPassword)
	assert.Equal(t, auth.RoleAuthor, reg.Role)
	assert.Equal(t, 31, reg.Profile.Age)
	require.NoError(t, reg.Validate())
}

func TestCommands_SessionLifecycle(t *testing.T) {
	cmdCtx, out := newCommandContext(t, nil)

	require.ErrorIs(t, runWhoami(cmdCtx, nil), errNotSignedIn)

	require.NoError(t, runCheck(cmdCtx, []string{"/profile"}))
	assert.Contains(t, out.String(), "/profile: redirect_login -> /login?redirect_uri=%2Fprofile")
	out.Reset()

	require.Error(t, runLogin(cmdCtx, []string{"-u", "ana", "-p", "wrong"}))

	require.NoError(t, runLogin(cmdCtx, []string{"-u", "ana", "-p", "secret1"}))
	assert.Contains(t, out.String(), "Signed in as ana (Reader). Dashboard: /reader/dashboard")
	out.Reset()

	require.NoError(t, runWhoami(cmdCtx, nil))
	assert.Regexp(t, `Role\s+Reader`, out.String())
	out.Reset()

	require.NoError(t, runCheck(cmdCtx, []string{"/author/upload"}))
	assert.Contains(t, out.String(), "/author/upload: redirect_unauthorized -> /unauthorized")
	out.Reset()

	require.NoError(t, runRoutes(cmdCtx, nil))
	routes := out.String()
	assert.Regexp(t, `/reader/dashboard\s+Reader\s+allow`, routes)
	assert.Regexp(t, `/admin/dashboard\s+Admin\s+redirect_unauthorized`, routes)
	out.Reset()

	require.NoError(t, runLogout(cmdCtx, nil))
	require.ErrorIs(t, runWhoami(cmdCtx, nil), errNotSignedIn)
}

func TestCommands_Register(t *testing.T) {
	cmdCtx, out := newCommandContext(t, nil)

	require.NoError(t, runRegister(cmdCtx, []string{
		"-u", "cara", "-e", "cara@example.com", "-p", "hunter22",
		"-name", "Cara", "-gender", "Female", "-age", "31", "-phone", "+1 555 000 1111",
	}))
	assert.Contains(t, out.String(), "Please log in")

	// Registration never signs in.
	require.ErrorIs(t, runWhoami(cmdCtx, nil), errNotSignedIn)

	err := runRegister(cmdCtx, []string{"-u", "dan", "-e", "dan@example.com", "-p", "short"})
	require.Error(t, err)
}

func TestCommands_CheckUsage(t *testing.T) {
	cmdCtx, _ := newCommandContext(t, nil)
	require.Error(t, runCheck(cmdCtx, nil))
	require.Error(t, runAPI(cmdCtx, nil))
}

func TestCommands_APIRequiresHTTPMode(t *testing.T) {
	cmdCtx, _ := newCommandContext(t, nil)
	require.NoError(t, runLogin(cmdCtx, []string{"-u", "ana", "-p", "secret1"}))

	err := runAPI(cmdCtx, []string{"/books"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_MODE=http")
}

func TestCommands_APIUsesStoredToken(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"token": "opaque-token",
				"user":  map[string]any{"id": 3, "userName": "ana", "role": "Reader"},
			})
		case "/api/books":
			if r.Header.Get("Authorization") != "Bearer opaque-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = io.WriteString(w, `[{"id":1}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(backend.Close)

	cmdCtx, out := newCommandContext(t, func(cfg *config.AppConfig) {
		cfg.Auth.Mode = config.AuthModeHTTP
		cfg.Backend = config.BackendConfig{URL: backend.URL + "/api"}
	})

	require.ErrorIs(t, runAPI(cmdCtx, []string{"/books"}), errNotSignedIn)

	require.NoError(t, runLogin(cmdCtx, []string{"-u", "ana", "-p", "pw"}))
	out.Reset()

	require.NoError(t, runAPI(cmdCtx, []string{"/books"}))
	assert.Equal(t, "[{\"id\":1}]\n", out.String())

	out.Reset()
	require.Error(t, runAPI(cmdCtx, []string{"/missing"}))
}

func TestPrintUsage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printUsage(&buf))
	for name := range commands() {
		assert.Contains(t, buf.String(), "  "+name)
	}
}
