// Package cache stores the answers of the remote captioning and color-scheme
// services between passes.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Backend defines the interface for cache implementations.
type Backend interface {
	// Get retrieves a value from the cache.
	// Returns (value, found, error).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL; ttl <= 0 keeps it until evicted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	// Close releases connections and background goroutines.
	Close() error
}

// Kinds accepted by Open.
const (
	KindMemory = "memory"
	KindRedis  = "redis"
	KindDisk   = "disk"
	KindNone   = "none"
)

// ErrUnknownKind is returned by Open for an unsupported backend name.
var ErrUnknownKind = errors.New("unknown cache backend")

// Options selects and configures a backend.
type Options struct {
	Kind     string // memory (default), redis, disk, none
	RedisURL string
	Dir      string // disk cache directory; empty selects the user cache dir
	Prefix   string // key prefix for shared backends
	MaxSize  int    // memory backend entry limit
}

// Open creates the backend described by opts.
func Open(opts Options, logger *zerolog.Logger) (Backend, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	switch opts.Kind {
	case "", KindMemory:
		return NewMemory(opts.MaxSize, 10*time.Minute), nil
	case KindRedis:
		prefix := opts.Prefix
		if prefix == "" {
			prefix = "ably:"
		}
		r, err := NewRedis(opts.RedisURL, prefix)
		if err != nil {
			return nil, err
		}
		logger.Debug().Str("prefix", prefix).Msg("redis cache connected")
		return r, nil
	case KindDisk:
		return OpenDisk(opts.Dir)
	case KindNone:
		return Nop{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, opts.Kind)
}

// Nop caches nothing.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Nop) Delete(context.Context, string) error { return nil }
func (Nop) Close() error { return nil }
