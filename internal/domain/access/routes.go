package access

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pentopublic/pentopublic-client/internal/domain/auth"
)

const (
	defaultLoginPath        = "/login"
	defaultUnauthorizedPath = "/unauthorized"
	redirectParam           = "redirect_uri"
)

// Route is one entry of the navigation table.
type Route struct {
	Path  string `yaml:"path"`
	Title string `yaml:"title,omitempty"`
	// Public routes skip the authentication check. Routes are protected unless marked.
	Public bool        `yaml:"public,omitempty"`
	Role   auth.Role   `yaml:"role,omitempty"`
	Roles  []auth.Role `yaml:"roles,omitempty"`

	segments []string
}

// Requirement converts the route declaration into a gate requirement.
func (r Route) Requirement() Requirement {
	return Requirement{RequiresAuth: !r.Public, Role: r.Role, Roles: r.Roles}
}

// Table is an ordered set of routes plus the two redirect targets.
type Table struct {
	LoginPath        string  `yaml:"login_path"`
	UnauthorizedPath string  `yaml:"unauthorized_path"`
	Routes           []Route `yaml:"routes"`
}

// Outcome is a decision resolved against a concrete path.
type Outcome struct {
	Decision Decision
	Route    Route
	Found    bool
	// Location is set for the two redirect decisions.
	Location string
}

// ParseTable decodes and validates a YAML route table.
func ParseTable(data []byte) (*Table, error) {
	var t Table
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decode route table: %w", err)
	}
	if err := t.compile(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Table) compile() error {
	if t.LoginPath == "" {
		t.LoginPath = defaultLoginPath
	}
	if t.UnauthorizedPath == "" {
		t.UnauthorizedPath = defaultUnauthorizedPath
	}
	if SafeRedirectPath(t.LoginPath) != t.LoginPath {
		return fmt.Errorf("login_path %q must be a relative path", t.LoginPath)
	}
	if SafeRedirectPath(t.UnauthorizedPath) != t.UnauthorizedPath {
		return fmt.Errorf("unauthorized_path %q must be a relative path", t.UnauthorizedPath)
	}

	var errs []error
	seen := make(map[string]bool, len(t.Routes))
	for i := range t.Routes {
		r := &t.Routes[i]
		if !strings.HasPrefix(r.Path, "/") {
			errs = append(errs, fmt.Errorf("route %d: path %q must start with /", i, r.Path))
			continue
		}
		if seen[r.Path] {
			errs = append(errs, fmt.Errorf("route %q declared twice", r.Path))
		}
		seen[r.Path] = true
		if r.Role != "" && !r.Role.Valid() {
			errs = append(errs, fmt.Errorf("route %q: unknown role %q", r.Path, r.Role))
		}
		for _, role := range r.Roles {
			if !role.Valid() {
				errs = append(errs, fmt.Errorf("route %q: unknown role %q", r.Path, role))
			}
		}
		if r.Public && (r.Role != "" || len(r.Roles) > 0) {
			errs = append(errs, fmt.Errorf("route %q: public routes cannot require a role", r.Path))
		}
		r.segments = splitPath(r.Path)
	}
	return errors.Join(errs...)
}

// Match returns the first route whose pattern matches path.
// Patterns support `:name` for a single segment and a trailing `*` for any suffix.
func (t *Table) Match(path string) (Route, bool) {
	if u, err := url.Parse(path); err == nil {
		path = u.Path
	}
	segs := splitPath(path)
	for _, r := range t.Routes {
		if matchSegments(r.segments, segs) {
			return r, true
		}
	}
	return Route{}, false
}

// Resolve runs the gate for path. Unknown paths report Found=false with an Allow
// decision so the caller can render its own not-found page.
func (t *Table) Resolve(s auth.State, path string) Outcome {
	route, ok := t.Match(path)
	if !ok {
		return Outcome{Decision: Allow}
	}
	out := Outcome{Decision: Decide(s, route.Requirement()), Route: route, Found: true}
	switch out.Decision {
	case RedirectLogin:
		out.Location = t.LoginLocation(path)
	case RedirectUnauthorized:
		out.Location = t.UnauthorizedPath
	}
	return out
}

// LoginLocation is the login page URL that returns the user to from after signing in.
func (t *Table) LoginLocation(from string) string {
	return t.LoginPath + "?" + url.Values{redirectParam: {SafeRedirectPath(from)}}.Encode()
}

// SafeRedirectPath only allows same-origin relative paths; anything else becomes "/".
func SafeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	// Browsers read "/\host" as "//host".
	if strings.ContainsRune(candidate, '\\') {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") ||
		strings.HasPrefix(candidate, "//") {
		return "/"
	}
	return candidate
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func matchSegments(pattern, segs []string) bool {
	for i, p := range pattern {
		if p == "*" && i == len(pattern)-1 {
			return true
		}
		if i >= len(segs) {
			return false
		}
		if strings.HasPrefix(p, ":") {
			if segs[i] == "" {
				return false
			}
			continue
		}
		if p != segs[i] {
			return false
		}
	}
	return len(pattern) == len(segs)
}
