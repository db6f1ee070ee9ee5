package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pentopublic/pentopublic-client/internal/domain/auth"
)

func TestDashboardPath(t *testing.T) {
	assert.Equal(t, "/reader/dashboard", DashboardPath(auth.RoleReader))
	assert.Equal(t, "/author/dashboard", DashboardPath(auth.RoleAuthor))
	assert.Equal(t, "/admin/dashboard", DashboardPath(auth.RoleAdmin))
	assert.Equal(t, "/", DashboardPath(""))
}

func labels(items []MenuItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Label)
	}
	return out
}

func TestMenu(t *testing.T) {
	assert.Equal(t, []string{"Home", "Books", "Search"}, labels(Menu(auth.State{Status: auth.StatusAnonymous})))
	assert.Equal(t,
		[]string{"Home", "Books", "Search", "Dashboard", "Profile", "Subscription"},
		labels(Menu(signedIn(auth.RoleReader))))

	author := Menu(signedIn(auth.RoleAuthor))
	assert.Equal(t, []string{"Home", "Books", "Search", "Dashboard", "Profile"}, labels(author))
	assert.Equal(t, "/author/dashboard", author[3].Path)
}

func TestBookPolicy(t *testing.T) {
	no := false
	yes := true
	own := Book{AuthorID: "7"}
	locked := Book{AuthorID: "8", AllowDownload: &no}

	assert.False(t, CanReadBook(auth.State{Status: auth.StatusAnonymous}, own))
	assert.True(t, CanReadBook(signedIn(auth.RoleAuthor), own))
	assert.True(t, CanReadBook(signedIn(auth.RoleAdmin), locked))
	assert.True(t, CanReadBook(signedIn(auth.RoleReader), locked))

	assert.False(t, CanDownloadBook(signedIn(auth.RoleReader), locked))
	assert.True(t, CanDownloadBook(signedIn(auth.RoleReader), Book{AllowDownload: &yes}))
	assert.True(t, CanDownloadBook(signedIn(auth.RoleReader), Book{}))
	assert.False(t, CanDownloadBook(auth.State{Status: auth.StatusAnonymous}, Book{}))
}
