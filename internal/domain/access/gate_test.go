package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pentopublic/pentopublic-client/internal/domain/auth"
)

func signedIn(role auth.Role) auth.State {
	return auth.State{
		Status:   auth.StatusAuthenticated,
		Identity: &auth.Identity{ID: "7", UserName: "alice", Role: role},
		Token:    "t1",
	}
}

func TestDecide(t *testing.T) {
	anonymous := auth.State{Status: auth.StatusAnonymous}
	pending := auth.State{Status: auth.StatusPending, Attempt: auth.AttemptLogin}

	tests := []struct {
		name  string
		state auth.State
		req   Requirement
		want  Decision
	}{
		{"loading beats everything", auth.Initial(), RequireRole(auth.RoleAdmin), ShowLoading},
		{"loading on public route", auth.Initial(), Public, ShowLoading},
		{"anonymous on protected route", anonymous, Authenticated(), RedirectLogin},
		{"pending counts as signed out", pending, Authenticated(), RedirectLogin},
		{"anonymous on role route", anonymous, RequireRole(auth.RoleReader), RedirectLogin},
		{"anonymous on public route", anonymous, Public, Allow},
		{"reader on author route", signedIn(auth.RoleReader), RequireRole(auth.RoleAuthor), RedirectUnauthorized},
		{"admin on admin route", signedIn(auth.RoleAdmin), RequireRole(auth.RoleAdmin), Allow},
		{"admin gets no implicit bypass", signedIn(auth.RoleAdmin), RequireRole(auth.RoleAuthor), RedirectUnauthorized},
		{"role set match", signedIn(auth.RoleAuthor), RequireAnyRole(auth.RoleAuthor, auth.RoleAdmin), Allow},
		{"role set miss", signedIn(auth.RoleReader), RequireAnyRole(auth.RoleAuthor, auth.RoleAdmin), RedirectUnauthorized},
		{"any signed in user", signedIn(auth.RoleReader), Authenticated(), Allow},
		{"role and set both met", signedIn(auth.RoleAuthor), Requirement{RequiresAuth: true, Role: auth.RoleAuthor, Roles: []auth.Role{auth.RoleAuthor, auth.RoleAdmin}}, Allow},
		{"set met but role missed", signedIn(auth.RoleAdmin), Requirement{RequiresAuth: true, Role: auth.RoleAuthor, Roles: []auth.Role{auth.RoleAuthor, auth.RoleAdmin}}, RedirectUnauthorized},
		{"role met but set missed", signedIn(auth.RoleReader), Requirement{RequiresAuth: true, Role: auth.RoleReader, Roles: []auth.Role{auth.RoleAuthor}}, RedirectUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.state, tt.req))
		})
	}
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "show_loading", ShowLoading.String())
	assert.Equal(t, "redirect_login", RedirectLogin.String())
	assert.Equal(t, "redirect_unauthorized", RedirectUnauthorized.String())
	assert.Equal(t, "unknown", Decision(42).String())
}

func TestRequireAnyRole_CopiesInput(t *testing.T) {
	roles := []auth.Role{auth.RoleAuthor}
	req := RequireAnyRole(roles...)
	roles[0] = auth.RoleReader

	assert.Equal(t, []auth.Role{auth.RoleAuthor}, req.Roles)
}
