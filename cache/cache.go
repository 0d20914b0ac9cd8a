package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
	log "github.com/sirupsen/logrus"
)

const keyNamespace = "adboard"

var ErrorInvalidPrefix = errors.New("invalid cache key prefix")

// Key groups cache entries by concern so invalidation can target a
// whole prefix (i.e. every metrics response) without touching others.
type Key struct {
	Prefix string
	Suffix string
}

func NewKey(prefix, suffix string) (*Key, error) {
	if prefix == "" {
		return nil, ErrorInvalidPrefix
	}
	return &Key{Prefix: prefix, Suffix: suffix}, nil
}

func (key *Key) Key() (string, error) {
	if key.Prefix == "" {
		return "", ErrorInvalidPrefix
	}
	if key.Suffix == "" {
		return fmt.Sprintf("%s:%s", keyNamespace, key.Prefix), nil
	}
	return fmt.Sprintf("%s:%s:%s", keyNamespace, key.Prefix, key.Suffix), nil
}

// ResponseCache is a best-effort, TTL-bounded cache for the read-only
// metric endpoints. A nil *ResponseCache is valid and disabled; every
// error degrades to a miss so a flaky redis never fails a request.
type ResponseCache struct {
	pool *redis.Pool
	ttl  time.Duration
}

func NewResponseCache(pool *redis.Pool, ttl time.Duration) *ResponseCache {
	if pool == nil {
		return nil
	}
	return &ResponseCache{pool: pool, ttl: ttl}
}

func (cache *ResponseCache) Get(key *Key) ([]byte, bool) {
	if cache == nil {
		return nil, false
	}
	keyString, err := key.Key()
	if err != nil {
		return nil, false
	}
	conn := cache.pool.Get()
	defer conn.Close()

	payload, err := redis.Bytes(conn.Do("GET", keyString))
	if err != nil {
		if err != redis.ErrNil {
			log.WithError(err).WithField("key", keyString).Warn("Cache read failed.")
		}
		return nil, false
	}
	return payload, true
}

func (cache *ResponseCache) Set(key *Key, payload []byte) {
	if cache == nil {
		return
	}
	keyString, err := key.Key()
	if err != nil {
		return
	}
	conn := cache.pool.Get()
	defer conn.Close()

	_, err = conn.Do("SETEX", keyString, int(cache.ttl.Seconds()), payload)
	if err != nil {
		log.WithError(err).WithField("key", keyString).Warn("Cache write failed.")
	}
}

// InvalidatePrefix drops every entry under a prefix. Mapping mutations
// call this so stale pretty names never outlive a mapping change by
// more than one request.
func (cache *ResponseCache) InvalidatePrefix(prefix string) {
	if cache == nil {
		return
	}
	conn := cache.pool.Get()
	defer conn.Close()

	pattern := fmt.Sprintf("%s:%s:*", keyNamespace, prefix)
	cursor := 0
	for {
		values, err := redis.Values(conn.Do("SCAN", cursor, "MATCH", pattern, "COUNT", 100))
		if err != nil {
			log.WithError(err).WithField("pattern", pattern).Warn("Cache invalidation scan failed.")
			return
		}
		var keys []string
		if _, err := redis.Scan(values, &cursor, &keys); err != nil {
			log.WithError(err).Warn("Cache invalidation scan decode failed.")
			return
		}
		for _, key := range keys {
			if _, err := conn.Do("DEL", key); err != nil {
				log.WithError(err).WithField("key", key).Warn("Cache delete failed.")
			}
		}
		if cursor == 0 {
			return
		}
	}
}

// NewPool builds the redigo pool the entrypoint hands to the cache.
func NewPool(host string, port int) *redis.Pool {
	return &redis.Pool{
		MaxIdle:     10,
		MaxActive:   50,
		IdleTimeout: 240 * time.Second,
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", fmt.Sprintf("%s:%d", host, port),
				redis.DialConnectTimeout(5*time.Second),
				redis.DialReadTimeout(2*time.Second),
				redis.DialWriteTimeout(2*time.Second))
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}
}
