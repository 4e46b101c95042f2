package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/acadboost-backend/internal/platform/logger"
)

const sessionKeyPrefix = "acadboost:session:"

// RedisStore keeps one hash per session. The hash expires after ttl of
// inactivity, which is how a session ends.
type RedisStore struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewRedisStore(log *logger.Logger, addr string, ttl time.Duration) (*RedisStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStoreWithClient(log, rdb, ttl), nil
}

func NewRedisStoreWithClient(log *logger.Logger, rdb *goredis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{
		log: log.With("service", "RedisSessionCache"),
		rdb: rdb,
		ttl: ttl,
	}
}

func sessionKey(session string) string { return sessionKeyPrefix + session }

func (s *RedisStore) Get(ctx context.Context, session, key string) (Entry, bool, error) {
	raw, err := s.rdb.HGet(ctx, sessionKey(session), key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("redis hget: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		s.log.Warn("Dropping undecodable cache entry", "session_id", session, "key", key, "error", err.Error())
		_ = s.rdb.HDel(ctx, sessionKey(session), key).Err()
		return Entry{}, false, nil
	}
	if err := s.rdb.Expire(ctx, sessionKey(session), s.ttl).Err(); err != nil {
		s.log.Debug("Session expiry refresh failed", "session_id", session, "error", err.Error())
	}
	return e, true, nil
}

func (s *RedisStore) Put(ctx context.Context, session, key string, e Entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	_, err = s.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.HSet(ctx, sessionKey(session), key, raw)
		p.Expire(ctx, sessionKey(session), s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, session string) error {
	if err := s.rdb.Del(ctx, sessionKey(session)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.rdb.Close() }
