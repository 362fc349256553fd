// Package cache stores simulation results keyed by scene content.
//
// Three backends implement [Cache]:
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP API
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// Keys are built by a [Keyer] so that callers never format them by hand.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// TTLTrace is how long a simulated trace stays cached. Traces are a pure
// function of the scene, so the limit only bounds disk and memory use.
const TTLTrace = 7 * 24 * time.Hour

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// TraceKeyOpts holds the inputs besides the scene that change a trace.
type TraceKeyOpts struct {
	Version string `json:"version"`
}

// Keyer builds cache keys.
type Keyer interface {
	// TraceKey is the key of the trace for a scene fingerprint.
	TraceKey(fingerprint string, opts TraceKeyOpts) string
	// TraceIDKey maps a trace ID issued by the API to its fingerprint key.
	TraceIDKey(id string) string
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// TraceKey is "trace:<sha256 of fingerprint and opts>", so a new build
// version never reads traces recorded by an older one.
func (DefaultKeyer) TraceKey(fingerprint string, opts TraceKeyOpts) string {
	data, _ := json.Marshal(struct {
		Fingerprint string       `json:"fingerprint"`
		Opts        TraceKeyOpts `json:"opts"`
	}{fingerprint, opts})
	return "trace:" + Hash(data)
}

// TraceIDKey is "traceid:<id>".
func (DefaultKeyer) TraceIDKey(id string) string {
	return "traceid:" + id
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// NullCache misses on every Get. Runners given one play every scene.
type NullCache struct{}

// NewNullCache returns a cache that keeps no traces.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NullCache) Delete(context.Context, string) error { return nil }

func (NullCache) Close() error { return nil }
