package session

import (
	"context"
	"time"

	"github.com/coocood/freecache"
)

const minCacheBytes = 512 * 1024

// FreecacheStore keeps sessions in process memory. Eviction under memory
// pressure is acceptable; see the package comment.
type FreecacheStore struct {
	cache *freecache.Cache
	ttl   int
}

func NewFreecacheStore(sizeMB int, ttl time.Duration) *FreecacheStore {
	return newFreecacheStore(freecache.NewCache(cacheBytes(sizeMB)), ttl)
}

func newFreecacheStore(cache *freecache.Cache, ttl time.Duration) *FreecacheStore {
	return &FreecacheStore{cache: cache, ttl: max(int(ttl.Seconds()), 1)}
}

func cacheBytes(sizeMB int) int {
	return max(sizeMB*1024*1024, minCacheBytes)
}

func (s *FreecacheStore) Put(_ context.Context, tokenID, responseID string) error {
	if err := s.cache.Set([]byte(tokenPrefix+tokenID), []byte(responseID), s.ttl); err != nil {
		return err
	}
	return s.cache.Set([]byte(responsePrefix+responseID), []byte(tokenID), s.ttl)
}

func (s *FreecacheStore) Lookup(_ context.Context, tokenID string) (string, bool) {
	v, err := s.cache.Get([]byte(tokenPrefix + tokenID))
	if err != nil {
		return "", false
	}
	return string(v), true
}

func (s *FreecacheStore) TokenFor(_ context.Context, responseID string) (string, bool) {
	v, err := s.cache.Get([]byte(responsePrefix + responseID))
	if err != nil {
		return "", false
	}
	return string(v), true
}

func (s *FreecacheStore) Delete(ctx context.Context, responseID string) error {
	if tokenID, ok := s.TokenFor(ctx, responseID); ok {
		s.cache.Del([]byte(tokenPrefix + tokenID))
	}
	s.cache.Del([]byte(responsePrefix + responseID))
	return nil
}

func (s *FreecacheStore) Close() error {
	s.cache.Clear()
	return nil
}
