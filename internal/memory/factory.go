package memory

import (
	"context"
	"fmt"
)

// Options selects and configures a store backend.
type Options struct {
	Backend     string // sqlite | postgres | memory
	DBPath      string
	DatabaseURL string
	UserName    string
}

// NewStore builds the configured backend. SQLite is the default: a single
// file on disk that survives restarts without any server to run.
func NewStore(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", "sqlite":
		return NewSQLiteStore(opts.DBPath, opts.UserName)
	case "postgres":
		return NewPostgresStore(ctx, opts.DatabaseURL, opts.UserName)
	case "memory":
		return NewInMemoryStore(opts.UserName), nil
	default:
		return nil, fmt.Errorf("unsupported memory backend %q", opts.Backend)
	}
}
