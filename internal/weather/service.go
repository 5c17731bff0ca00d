package weather

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultTTL is how long a live reading is reused.
const DefaultTTL = 15 * time.Minute

// Fetcher returns live weather. *Client satisfies it.
type Fetcher interface {
	Current(ctx context.Context, location string) (Reading, error)
}

// Service serves readings from the cache, then the API, then DefaultReading.
type Service struct {
	fetcher Fetcher
	cache   Cache
	ttl     time.Duration
	logger  *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithCache replaces the in-memory cache.
func WithCache(c Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithTTL sets how long live readings are cached.
func WithTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a Service around fetcher.
func NewService(fetcher Fetcher, opts ...Option) *Service {
	s := &Service{
		fetcher: fetcher,
		cache:   NewMemoryCache(),
		ttl:     DefaultTTL,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current never fails. Cache and API errors are logged and the default
// reading is returned instead.
func (s *Service) Current(ctx context.Context, location string) Reading {
	cached, ok, err := s.cache.Get(ctx, location)
	if err != nil {
		s.logger.Warn("weather cache read failed", zap.Error(err))
	}
	if ok {
		return cached
	}

	r, err := s.fetcher.Current(ctx, location)
	if err != nil {
		s.logger.Warn("falling back to default weather", zap.String("location", location), zap.Error(err))
		return DefaultReading()
	}

	if err := s.cache.Set(ctx, location, r, s.ttl); err != nil {
		s.logger.Warn("weather cache write failed", zap.Error(err))
	}
	return r
}
