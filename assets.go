// Package pentopublic provides embedded defaults for production builds.
package pentopublic

import _ "embed"

// DefaultRoutes is the navigation table used when ROUTES_FILE is unset.
//
//go:embed routes.yaml
var DefaultRoutes []byte
