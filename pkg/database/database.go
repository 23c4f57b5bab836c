package database

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("key not found")
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// KV is a flat string key/value store.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

const (
	DriverBadger   = "badger"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Options selects and configures a KV backend.
type Options struct {
	Driver      string
	Path        string
	MongoURI    string
	MongoDB     string
	PostgresURL string
}

// Open returns the backend named by opts.Driver, ready for use.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch opts.Driver {
	case DriverBadger, "":
		return OpenBadger(opts.Path)
	case DriverMongo:
		return OpenMongo(ctx, opts.MongoURI, opts.MongoDB)
	case DriverPostgres:
		return OpenPostgres(ctx, opts.PostgresURL)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}
