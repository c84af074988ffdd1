// Package storage selects and wraps the concrete persistence backends.
package storage

import (
	"net/url"
	"strings"

	"github.com/workdeck/planner/internal/storage/postgres"
	"github.com/workdeck/planner/internal/storage/sqlite"
)

// NewSQLiteStore creates a SQLite-backed provider at the given path.
func NewSQLiteStore(path string) Provider {
	return sqlite.NewStore(path)
}

// NewPostgresStore creates a PostgreSQL-backed provider for the given
// connection string.
func NewPostgresStore(connStr string) Provider {
	return postgres.NewStore(connStr)
}

// IsPostgresDSN reports whether the config value looks like a PostgreSQL
// connection string rather than a file path.
func IsPostgresDSN(s string) bool {
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://")
}

// HasEmbeddedCredentials reports whether a PostgreSQL connection string
// carries a password inline. Those are rejected; credentials come from the
// environment or the OS keyring.
func HasEmbeddedCredentials(connStr string) bool {
	u, err := url.Parse(connStr)
	if err != nil {
		return false
	}
	if u.User == nil {
		return false
	}
	_, hasPassword := u.User.Password()
	return hasPassword
}
