package stores

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	tokenRecordVersionV1 = 1
)

var (
	ErrTokenNotFound         = errors.New("token record not found")
	ErrTokenRedisUnavailable = errors.New("token redis unavailable")
)

// TokenKind selects the key namespace a token lives in. All kinds share
// one record layout and one set of atomic operations.
type TokenKind int

const (
	KindVerification TokenKind = iota
	KindTwoFactor
	KindPasswordReset
)

func (k TokenKind) segment() string {
	switch k {
	case KindTwoFactor:
		return "2fa"
	case KindPasswordReset:
		return "rst"
	default:
		return "ver"
	}
}

// createTokenLua atomically supersedes any active token for the same
// kind+email and inserts the new record.
// KEYS[1] = email index key
// KEYS[2] = new value key
// ARGV[1] = encoded record
// ARGV[2] = ttl in milliseconds
// ARGV[3] = value key prefix (for deleting the superseded record)
// ARGV[4] = new token value
var createTokenLua = redis.NewScript(`
local old = redis.call('GET', KEYS[1])
if old then
  redis.call('DEL', ARGV[3] .. old)
end
redis.call('SET', KEYS[2], ARGV[1], 'PX', ARGV[2])
redis.call('SET', KEYS[1], ARGV[4], 'PX', ARGV[2])
return 1
`)

// claimTokenLua atomically claims a record: GET then DEL. At most one
// concurrent caller observes the record bytes; the rest get not_found.
// KEYS[1] = value key
var claimTokenLua = redis.NewScript(`
local data = redis.call('GET', KEYS[1])
if not data then
  return {err='not_found'}
end
redis.call('DEL', KEYS[1])
return data
`)

// unindexEmailLua drops the per-email index entry only while it still
// points at the removed value. A stale index is harmless (it resolves
// to not-found) so callers treat failures as best-effort.
// KEYS[1] = email index key
// ARGV[1] = token value
var unindexEmailLua = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
  redis.call('DEL', KEYS[1])
end
return 1
`)

// TokenRecord is one issued token. ExpiresAt is the logical expiry;
// the Redis key outlives it by the configured retention window so
// validators can tell expired from never-issued.
type TokenRecord struct {
	ID        string
	Email     string
	Value     string
	ExpiresAt int64
	Kind      TokenKind
}

type TokenStore struct {
	redis  redis.UniversalClient
	prefix string
}

func NewTokenStore(redisClient redis.UniversalClient, prefix string) *TokenStore {
	if prefix == "" {
		prefix = "aft"
	}
	return &TokenStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *TokenStore) valueKeyPrefix(kind TokenKind) string {
	return s.prefix + ":" + kind.segment() + ":v:"
}

func (s *TokenStore) valueKey(kind TokenKind, value string) string {
	return s.valueKeyPrefix(kind) + value
}

func (s *TokenStore) emailKey(kind TokenKind, email string) string {
	return s.prefix + ":" + kind.segment() + ":e:" + email
}

// Create inserts the record and atomically deletes any previously
// active token of the same kind for the same email. The physical key
// TTL is ttl+retention; ExpiresAt on the record marks logical expiry.
func (s *TokenStore) Create(
	ctx context.Context,
	kind TokenKind,
	record *TokenRecord,
	ttl time.Duration,
	retention time.Duration,
) error {
	record.Kind = kind
	encoded, err := encodeTokenRecord(record)
	if err != nil {
		return err
	}

	px := (ttl + retention).Milliseconds()
	if px <= 0 {
		return errors.New("token ttl must be positive")
	}

	err = createTokenLua.Run(ctx, s.redis,
		[]string{s.emailKey(kind, record.Email), s.valueKey(kind, record.Value)},
		encoded,
		px,
		s.valueKeyPrefix(kind),
		record.Value,
	).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTokenRedisUnavailable, err)
	}

	return nil
}

// GetByValue is a pure read; it never mutates the record.
func (s *TokenStore) GetByValue(ctx context.Context, kind TokenKind, value string) (*TokenRecord, error) {
	data, err := s.redis.Get(ctx, s.valueKey(kind, value)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenRedisUnavailable, err)
	}

	return decodeTokenRecord(data, kind)
}

// GetActiveByEmail resolves the per-email index to the single active
// record for kind+email.
func (s *TokenStore) GetActiveByEmail(ctx context.Context, kind TokenKind, email string) (*TokenRecord, error) {
	value, err := s.redis.Get(ctx, s.emailKey(kind, email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenRedisUnavailable, err)
	}

	return s.GetByValue(ctx, kind, value)
}

// Consume atomically claims and removes the record. Under concurrent
// calls exactly one caller receives the record; the rest get
// ErrTokenNotFound.
func (s *TokenStore) Consume(ctx context.Context, kind TokenKind, value string) (*TokenRecord, error) {
	result, err := claimTokenLua.Run(ctx, s.redis,
		[]string{s.valueKey(kind, value)},
	).Result()
	if err != nil {
		if err.Error() == "not_found" {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenRedisUnavailable, err)
	}

	data, ok := result.(string)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected lua result type", ErrTokenRedisUnavailable)
	}

	record, err := decodeTokenRecord([]byte(data), kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenRedisUnavailable, err)
	}

	s.unindexEmail(ctx, kind, record.Email, value)
	return record, nil
}

// Delete removes the record if present. It is idempotent and reports
// whether a row was actually removed.
func (s *TokenStore) Delete(ctx context.Context, kind TokenKind, value string) (bool, error) {
	result, err := claimTokenLua.Run(ctx, s.redis,
		[]string{s.valueKey(kind, value)},
	).Result()
	if err != nil {
		if err.Error() == "not_found" {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrTokenRedisUnavailable, err)
	}

	data, ok := result.(string)
	if !ok {
		return false, fmt.Errorf("%w: unexpected lua result type", ErrTokenRedisUnavailable)
	}

	if record, decErr := decodeTokenRecord([]byte(data), kind); decErr == nil {
		s.unindexEmail(ctx, kind, record.Email, value)
	}
	return true, nil
}

func (s *TokenStore) unindexEmail(ctx context.Context, kind TokenKind, email, value string) {
	_ = unindexEmailLua.Run(ctx, s.redis,
		[]string{s.emailKey(kind, email)},
		value,
	).Err()
}

func encodeTokenRecord(record *TokenRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(tokenRecordVersionV1)
	buf.WriteByte(byte(record.Kind))

	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt); err != nil {
		return nil, err
	}

	for _, field := range []string{record.ID, record.Email, record.Value} {
		if len(field) > 65535 {
			return nil, errors.New("token record field too long")
		}
		if err := binary.Write(&buf, binary.BigEndian, uint16(len(field))); err != nil {
			return nil, err
		}
		buf.WriteString(field)
	}

	return buf.Bytes(), nil
}

func decodeTokenRecord(data []byte, expectedKind TokenKind) (*TokenRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != tokenRecordVersionV1 {
		return nil, errors.New("invalid token record version")
	}

	kind, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if TokenKind(kind) != expectedKind {
		// A namespace mix-up is indistinguishable from corruption.
		return nil, errors.New("token record kind mismatch")
	}

	record := &TokenRecord{Kind: expectedKind}

	if err := binary.Read(reader, binary.BigEndian, &record.ExpiresAt); err != nil {
		return nil, err
	}

	for _, field := range []*string{&record.ID, &record.Email, &record.Value} {
		var fieldLen uint16
		if err := binary.Read(reader, binary.BigEndian, &fieldLen); err != nil {
			return nil, err
		}
		raw := make([]byte, fieldLen)
		if _, err := io.ReadFull(reader, raw); err != nil {
			return nil, err
		}
		*field = string(raw)
	}

	return record, nil
}
