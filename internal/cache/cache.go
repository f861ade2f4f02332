// Package cache keeps raw source responses so a season can be re-aggregated
// without touching the network.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"f1stats/internal/config"
)

var (
	// ErrMiss is returned by Get when no response is stored for the key.
	ErrMiss = errors.New("cache miss")
	// ErrUnknownBackend is returned for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown cache backend")
)

// Cache stores one raw response body per (season, endpoint).
type Cache interface {
	Get(ctx context.Context, season int, endpoint string) ([]byte, error)
	Put(ctx context.Context, season int, endpoint string, body []byte) error
	Close() error
}

// Open builds the backend named in cfg. A disabled cache yields Nop.
func Open(cfg config.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		return Nop{}, nil
	}

	switch strings.ToLower(cfg.Backend) {
	case config.CacheBackendFile, "":
		return NewFileCache(cfg.Dir), nil
	case config.CacheBackendSQLite:
		c, err := OpenSQLite(cfg.Dir)
		if err != nil {
			return nil, err
		}

		return c, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, int, string) ([]byte, error) { return nil, ErrMiss }
func (Nop) Put(context.Context, int, string, []byte) error  { return nil }
func (Nop) Close() error                                    { return nil }
