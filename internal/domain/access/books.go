package access

import "github.com/pentopublic/pentopublic-client/internal/domain/auth"

// Book carries the fields the reading policy looks at.
type Book struct {
	AuthorID auth.UserID
	// AllowDownload nil means the author has not restricted downloads.
	AllowDownload *bool
}

// CanReadBook is the book reader policy. Admins are let through here on purpose;
// the gate itself never grants Admin anything implicitly.
func CanReadBook(s auth.State, b Book) bool {
	if !s.IsAuthenticated() {
		return false
	}
	if s.HasRole(auth.RoleAdmin) {
		return true
	}
	if s.HasRole(auth.RoleAuthor) && b.AuthorID != "" && s.Identity.ID == b.AuthorID {
		return true
	}
	// Readers get access through their subscription, which the backend enforces.
	return true
}

// CanDownloadBook requires read access and a book that permits downloads.
func CanDownloadBook(s auth.State, b Book) bool {
	if !CanReadBook(s, b) {
		return false
	}
	return b.AllowDownload == nil || *b.AllowDownload
}
