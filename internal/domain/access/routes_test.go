package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pentopublic "github.com/pentopublic/pentopublic-client"
	"github.com/pentopublic/pentopublic-client/internal/domain/auth"
)

func defaultTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := ParseTable(pentopublic.DefaultRoutes)
	require.NoError(t, err)
	return tbl
}

func TestParseTable_Default(t *testing.T) {
	tbl := defaultTable(t)

	assert.Equal(t, "/login", tbl.LoginPath)
	assert.Equal(t, "/unauthorized", tbl.UnauthorizedPath)

	r, ok := tbl.Match("/admin/dashboard")
	require.True(t, ok)
	assert.Equal(t, auth.RoleAdmin, r.Role)
	assert.False(t, r.Public)
}

func TestParseTable_Errors(t *testing.T) {
	tests := map[string]string{
		"unknown field":     "routes:\n  - path: /x\n    requires: Admin\n",
		"relative path":     "routes:\n  - path: x\n",
		"duplicate":         "routes:\n  - path: /x\n  - path: /x\n",
		"unknown role":      "routes:\n  - path: /x\n    role: Editor\n",
		"unknown set role":  "routes:\n  - path: /x\n    roles: [Reader, editor]\n",
		"public with role":  "routes:\n  - path: /x\n    public: true\n    role: Admin\n",
		"absolute login":    "login_path: https://evil.example/login\nroutes: []\n",
		"protocol relative": "unauthorized_path: //evil.example\nroutes: []\n",
		"not yaml":          "routes: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseTable([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestTable_Match(t *testing.T) {
	tbl := defaultTable(t)

	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"/", "/", true},
		{"/books", "/books", true},
		{"/books/", "/books", true},
		{"/books/42", "/books/:id", true},
		{"/books/42/read", "/books/:id/read", true},
		{"/books/42/read?page=3", "/books/:id/read", true},
		{"/books/42/edit", "", false},
		{"/nowhere", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r, ok := tbl.Match(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, r.Path)
		})
	}
}

func TestTable_MatchWildcard(t *testing.T) {
	tbl, err := ParseTable([]byte("routes:\n  - path: /admin/*\n    role: Admin\n"))
	require.NoError(t, err)

	for _, p := range []string{"/admin", "/admin/users", "/admin/users/9"} {
		_, ok := tbl.Match(p)
		assert.True(t, ok, p)
	}
	_, ok := tbl.Match("/author")
	assert.False(t, ok)
}

func TestTable_Resolve(t *testing.T) {
	tbl := defaultTable(t)

	out := tbl.Resolve(auth.State{Status: auth.StatusAnonymous}, "/books/9/read")
	assert.True(t, out.Found)
	assert.Equal(t, RedirectLogin, out.Decision)
	assert.Equal(t, "/login?redirect_uri=%2Fbooks%2F9%2Fread", out.Location)

	out = tbl.Resolve(signedIn(auth.RoleAuthor), "/reader/dashboard")
	assert.Equal(t, RedirectUnauthorized, out.Decision)
	assert.Equal(t, "/unauthorized", out.Location)

	out = tbl.Resolve(signedIn(auth.RoleAuthor), "/author/upload")
	assert.Equal(t, Allow, out.Decision)
	assert.Empty(t, out.Location)

	out = tbl.Resolve(auth.Initial(), "/profile")
	assert.Equal(t, ShowLoading, out.Decision)

	out = tbl.Resolve(signedIn(auth.RoleReader), "/missing")
	assert.False(t, out.Found)
	assert.Equal(t, Allow, out.Decision)
}

func TestSafeRedirectPath(t *testing.T) {
	tests := map[string]string{
		"":                       "/",
		"/books/1":               "/books/1",
		"/books?q=go":            "/books?q=go",
		"https://evil.example/x": "/",
		"//evil.example/x":       "/",
		"books":                  "/",
		"javascript:alert(1)":    "/",
		`/\evil.example`:         "/",
		`/\/evil.example`:        "/",
		`/books\..\admin`:        "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, SafeRedirectPath(in), in)
	}
}
