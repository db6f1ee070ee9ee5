package httpx

import (
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/pentopublic/pentopublic-client/internal/domain/access"
	"github.com/pentopublic/pentopublic-client/internal/domain/auth"
)

// loadingRetryAfter is sent with 503 while the session is still rehydrating.
const loadingRetryAfter = 1

// Guard runs every page request through the route table before rendering.
type Guard struct {
	Session SessionFacade
	Routes  *access.Table
	Logger  *slog.Logger
}

func (g *Guard) logger() *slog.Logger {
	if g != nil && g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

func (g *Guard) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	state := g.Session.Session()
	out := g.Routes.Resolve(state, r.URL.RequestURI())
	if !out.Found {
		g.render(w, http.StatusNotFound, newPage(state, "Not Found", r.URL.Path))
		return
	}

	switch out.Decision {
	case access.ShowLoading:
		w.Header().Set("Retry-After", strconv.Itoa(loadingRetryAfter))
		g.render(w, http.StatusServiceUnavailable, newPage(state, "Loading", r.URL.Path))
	case access.RedirectLogin, access.RedirectUnauthorized:
		g.logger().DebugContext(r.Context(), "route redirected",
			"path", r.URL.Path, "decision", out.Decision.String())
		http.Redirect(w, r, out.Location, http.StatusSeeOther)
	default:
		g.render(w, http.StatusOK, newPage(state, out.Route.Title, r.URL.Path))
	}
}

func (g *Guard) render(w http.ResponseWriter, status int, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, p); err != nil {
		g.logger().Error("render page", "error", err, "path", p.Path)
	}
}

type page struct {
	Title  string
	Path   string
	User   string
	Role   auth.Role
	Status auth.Status
	Error  string
	Menu   []access.MenuItem
}

func newPage(s auth.State, title, path string) page {
	if title == "" {
		title = path
	}
	p := page{Title: title, Path: path, Status: s.Status, Error: s.LastError, Menu: access.Menu(s)}
	if s.Identity != nil {
		p.User = s.Identity.DisplayName()
		p.Role = s.Identity.Role
	}
	return p
}

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}} | PenToPublic</title></head>
<body>
<nav>{{range .Menu}}<a href="{{.Path}}">{{.Label}}</a> {{end}}</nav>
<header>{{if .User}}Signed in as {{.User}} ({{.Role}}){{else}}Not signed in{{end}}</header>
<main data-path="{{.Path}}" data-status="{{.Status}}">
<h1>{{.Title}}</h1>
{{if .Error}}<p role="alert">{{.Error}}</p>{{end}}
</main>
</body>
</html>
`))
