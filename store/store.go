// Package store persists the client session to Redis as three independent
// string entries: the bearer token, the serialized profile, and the
// permission list. The three entries are written together and read back as a
// unit; a partial set is treated as no session at all.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable is returned when the Redis backend cannot be reached.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ErrSessionIncomplete is returned by Load when one or more of the three
// session entries is missing or fails to parse. Callers must treat this as
// "no persisted session" and clear any remaining entries.
var ErrSessionIncomplete = errors.New("persisted session incomplete")

const (
	tokenKeySuffix       = ":token"
	profileKeySuffix     = ":profile"
	permissionsKeySuffix = ":permissions"
)

// Snapshot is the serialized form of the session written to durable storage.
// Profile is an opaque JSON document owned by the caller.
type Snapshot struct {
	Token       string
	Profile     []byte
	Permissions []string
}

// Store is a Redis-backed adapter for the three session entries.
//
// Store instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Store struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewStore creates a session Store backed by the given Redis client. prefix
// namespaces the three keys; ttl, when positive, caps the lifetime of every
// entry (zero means no expiry).
func NewStore(client redis.UniversalClient, prefix string, ttl time.Duration) *Store {
	if prefix == "" {
		prefix = "pa"
	}
	return &Store{
		redis:  client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *Store) tokenKey() string       { return s.prefix + tokenKeySuffix }
func (s *Store) profileKey() string     { return s.prefix + profileKeySuffix }
func (s *Store) permissionsKey() string { return s.prefix + permissionsKeySuffix }

// Save writes all three entries in one transaction so a reader never
// observes a half-written session.
//
//	Performance: 3 Redis SETs in a single MULTI/EXEC.
func (s *Store) Save(ctx context.Context, snap Snapshot) error {
	perms, err := json.Marshal(snap.Permissions)
	if err != nil {
		return err
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.tokenKey(), snap.Token, s.ttl)
		pipe.Set(ctx, s.profileKey(), snap.Profile, s.ttl)
		pipe.Set(ctx, s.permissionsKey(), perms, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Load reads the three entries back as a unit. Any missing entry or a
// permission list that fails to parse yields ErrSessionIncomplete; the
// caller is responsible for clearing leftovers via Delete.
//
//	Performance: 3 Redis GETs in one pipeline.
func (s *Store) Load(ctx context.Context) (Snapshot, error) {
	pipe := s.redis.Pipeline()
	tokenCmd := pipe.Get(ctx, s.tokenKey())
	profileCmd := pipe.Get(ctx, s.profileKey())
	permsCmd := pipe.Get(ctx, s.permissionsKey())

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	token, err := tokenCmd.Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Snapshot{}, ErrSessionIncomplete
		}
		return Snapshot{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if token == "" {
		return Snapshot{}, ErrSessionIncomplete
	}

	profile, err := profileCmd.Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Snapshot{}, ErrSessionIncomplete
		}
		return Snapshot{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	permsRaw, err := permsCmd.Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Snapshot{}, ErrSessionIncomplete
		}
		return Snapshot{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	var perms []string
	if err := json.Unmarshal(permsRaw, &perms); err != nil {
		return Snapshot{}, ErrSessionIncomplete
	}

	return Snapshot{
		Token:       token,
		Profile:     profile,
		Permissions: perms,
	}, nil
}

// Delete removes all three entries. Deleting an absent session is a no-op,
// never an error.
//
//	Performance: 1 Redis DEL covering three keys.
func (s *Store) Delete(ctx context.Context) error {
	err := s.redis.Del(ctx, s.tokenKey(), s.profileKey(), s.permissionsKey()).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}
