package access

import "github.com/pentopublic/pentopublic-client/internal/domain/auth"

// DashboardPath is where each role lands after signing in.
func DashboardPath(r auth.Role) string {
	switch r {
	case auth.RoleReader:
		return "/reader/dashboard"
	case auth.RoleAuthor:
		return "/author/dashboard"
	case auth.RoleAdmin:
		return "/admin/dashboard"
	default:
		return "/"
	}
}

// MenuItem is one entry of the top navigation.
type MenuItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// Menu lists the navigation entries visible for s.
func Menu(s auth.State) []MenuItem {
	items := []MenuItem{
		{Label: "Home", Path: "/"},
		{Label: "Books", Path: "/books"},
		{Label: "Search", Path: "/search"},
	}
	if !s.IsAuthenticated() {
		return items
	}
	role, _ := s.Role()
	items = append(items,
		MenuItem{Label: "Dashboard", Path: DashboardPath(role)},
		MenuItem{Label: "Profile", Path: "/profile"},
	)
	if role == auth.RoleReader {
		items = append(items, MenuItem{Label: "Subscription", Path: "/subscription"})
	}
	return items
}
