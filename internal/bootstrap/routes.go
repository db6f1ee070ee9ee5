package bootstrap

import (
	"fmt"
	"os"

	pentopublic "github.com/pentopublic/pentopublic-client"
	"github.com/pentopublic/pentopublic-client/config"
	"github.com/pentopublic/pentopublic-client/internal/domain/access"
)

// LoadRoutes parses ROUTES_FILE, or the embedded table when it is unset,
// then applies the login and unauthorized path overrides.
func LoadRoutes(cfg config.HTTPConfig) (*access.Table, error) {
	data := pentopublic.DefaultRoutes
	if cfg.RoutesFile != "" {
		b, err := os.ReadFile(cfg.RoutesFile)
		if err != nil {
			return nil, fmt.Errorf("read routes file: %w", err)
		}
		data = b
	}

	table, err := access.ParseTable(data)
	if err != nil {
		return nil, fmt.Errorf("parse routes: %w", err)
	}

	if cfg.LoginPath != "" {
		if access.SafeRedirectPath(cfg.LoginPath) != cfg.LoginPath {
			return nil, fmt.Errorf("login path %q must be a relative path", cfg.LoginPath)
		}
		table.LoginPath = cfg.LoginPath
	}
	if cfg.UnauthorizedPath != "" {
		if access.SafeRedirectPath(cfg.UnauthorizedPath) != cfg.UnauthorizedPath {
			return nil, fmt.Errorf("unauthorized path %q must be a relative path", cfg.UnauthorizedPath)
		}
		table.UnauthorizedPath = cfg.UnauthorizedPath
	}
	return table, nil
}
