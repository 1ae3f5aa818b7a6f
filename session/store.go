package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when the session key is absent or expired.
var ErrSessionNotFound = errors.New("session not found")

// ErrRedisUnavailable is an exported constant or variable used by the session store.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ErrSessionCorrupt is returned when the stored session blob does not decode.
var ErrSessionCorrupt = errors.New("session corrupt")

const deleteSessionScript = `
local existed = redis.call("EXISTS", KEYS[1])
redis.call("SREM", KEYS[2], ARGV[1])
if existed == 1 then
  redis.call("DEL", KEYS[1])
end
return existed
`

var deleteSessionLua = redis.NewScript(deleteSessionScript)

const deleteAllForUserScript = `
local ids = redis.call("SMEMBERS", KEYS[1])
local removed = 0
for _, id in ipairs(ids) do
  removed = removed + redis.call("DEL", ARGV[1] .. id)
end
redis.call("DEL", KEYS[1])
return removed
`

var deleteAllForUserLua = redis.NewScript(deleteAllForUserScript)

type Store struct {
	redis  redis.UniversalClient
	prefix string
}

func NewStore(redisClient redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "af"
	}
	return &Store{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *Store) sessionKeyPrefix() string {
	return s.prefix + ":s:"
}

func (s *Store) key(sessionID string) string {
	return s.sessionKeyPrefix() + sessionID
}

func (s *Store) userKey(userID string) string {
	return s.prefix + ":u:" + userID
}

// Save writes the session and registers it in the per-user index. The
// index key carries the same TTL so it cannot outlive its last session
// by more than one lifetime.
func (s *Store) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("session ttl must be positive")
	}

	encoded, err := Encode(sess)
	if err != nil {
		return err
	}

	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, s.key(sess.SessionID), encoded, ttl)
	pipe.SAdd(ctx, s.userKey(sess.UserID), sess.SessionID)
	pipe.Expire(ctx, s.userKey(sess.UserID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Update rewrites the session blob in place, keeping the remaining TTL.
// Used when the account projection changes mid-session.
func (s *Store) Update(ctx context.Context, sess *Session) error {
	encoded, err := Encode(sess)
	if err != nil {
		return err
	}

	ok, err := s.redis.SetXX(ctx, s.key(sess.SessionID), encoded, redis.KeepTTL).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if !ok {
		return ErrSessionNotFound
	}

	return nil
}

func (s *Store) Get(ctx context.Context, sessionID string) (*Session, error) {
	data, err := s.redis.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	sess, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionCorrupt, err)
	}
	// The blob does not carry its own ID; the key is authoritative.
	sess.SessionID = sessionID

	if sess.ExpiresAt > 0 && time.Now().Unix() > sess.ExpiresAt {
		// Redis TTL should have reaped this already; clean up lazily.
		_, _ = s.Delete(ctx, sess.UserID, sessionID)
		return nil, ErrSessionNotFound
	}

	return sess, nil
}

// Delete removes one session. Idempotent; reports whether the session
// key existed.
func (s *Store) Delete(ctx context.Context, userID, sessionID string) (bool, error) {
	result, err := deleteSessionLua.Run(ctx, s.redis,
		[]string{s.key(sessionID), s.userKey(userID)},
		sessionID,
	).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return result == 1, nil
}

// DeleteAllForUser removes every session registered for the user and
// the index itself. Returns the number of sessions removed.
func (s *Store) DeleteAllForUser(ctx context.Context, userID string) (int, error) {
	result, err := deleteAllForUserLua.Run(ctx, s.redis,
		[]string{s.userKey(userID)},
		s.sessionKeyPrefix(),
	).Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return int(result), nil
}

// ActiveSessionIDs lists the session IDs currently indexed for the
// user. Entries whose session key already expired may linger until the
// next Delete or DeleteAllForUser.
func (s *Store) ActiveSessionIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.redis.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return ids, nil
}
