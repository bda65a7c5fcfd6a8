package repository

import "context"

// Repositories holds all repository instances.
type Repositories struct {
	User UserRepository
	Post PostRepository
}

// Database is the lifecycle surface shared by the SQL backends.
type Database interface {
	Ping(ctx context.Context) error
	Health(ctx context.Context) error
	Migrate(ctx context.Context) error
	MigrationStatus(ctx context.Context) (MigrationStatus, error)
	Close() error
}

// MigrationStatus reports the applied schema version against the newest
// embedded migration.
type MigrationStatus struct {
	Current int
	Latest  int
}

// Pending reports whether migrations remain to be applied.
func (s MigrationStatus) Pending() bool {
	return s.Current < s.Latest
}
