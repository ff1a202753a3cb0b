// Package session maps admission tokens to the response they resumed into.
// Entries are advisory: a miss only costs a ledger lookup, so every backend
// may evict at will.
package session

import (
	"context"
	"fmt"
	"surveycore/internal/providers"
	"surveycore/internal/structures"
)

const (
	tokenPrefix    = "survey:session:tok:"
	responsePrefix = "survey:session:rsp:"
)

type StoreInterface interface {
	Put(ctx context.Context, tokenID, responseID string) error
	Lookup(ctx context.Context, tokenID string) (string, bool)
	TokenFor(ctx context.Context, responseID string) (string, bool)
	Delete(ctx context.Context, responseID string) error
	Close() error
}

func NewSessionStore(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) (StoreInterface, func(), error) {
	var (
		inner StoreInterface
		err   error
	)
	switch conf.Session.Driver {
	case "redis":
		inner, err = NewRedisStore(conf.Session.RedisURL, conf.Session.TTL, logger)
	case "freecache", "":
		inner = NewFreecacheStore(conf.Session.CacheSize, conf.Session.TTL)
	default:
		err = fmt.Errorf("unknown session driver %q", conf.Session.Driver)
	}
	if err != nil {
		return nil, nil, err
	}

	logger.Infof(providers.TypeApp, "Session store initialized: driver=%s ttl=%s", conf.Session.Driver, conf.Session.TTL)
	cleanup := func() {
		if err := inner.Close(); err != nil {
			logger.Errorf(providers.TypeApp, "Failed to close session store: %v", err)
		}
	}
	return &MetricsStore{inner: inner, metrics: metrics}, cleanup, nil
}

// MetricsStore counts lookup hits and misses.
type MetricsStore struct {
	inner   StoreInterface
	metrics providers.MetricsProviderInterface
}

func (s *MetricsStore) Put(ctx context.Context, tokenID, responseID string) error {
	return s.inner.Put(ctx, tokenID, responseID)
}

func (s *MetricsStore) Lookup(ctx context.Context, tokenID string) (string, bool) {
	id, ok := s.inner.Lookup(ctx, tokenID)
	if ok {
		s.metrics.IncSessionHits()
	} else {
		s.metrics.IncSessionMisses()
	}
	return id, ok
}

func (s *MetricsStore) TokenFor(ctx context.Context, responseID string) (string, bool) {
	return s.inner.TokenFor(ctx, responseID)
}

func (s *MetricsStore) Delete(ctx context.Context, responseID string) error {
	return s.inner.Delete(ctx, responseID)
}

func (s *MetricsStore) Close() error {
	return s.inner.Close()
}
