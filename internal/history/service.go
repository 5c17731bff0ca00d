package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/justestif/moodtune/internal/mood"
)

// Service is the history access layer used by the API and the orchestrator.
type Service struct {
	store  Store
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the function used to decide what "today" is.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
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

// NewService creates a history service over store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record aggregates a questionnaire and saves it as today's entry,
// replacing any earlier entry for the same day.
func (s *Service) Record(ctx context.Context, in mood.Input) (Entry, mood.Result, error) {
	res := mood.Aggregate(in)
	entry := NewEntry(DateKey(s.now()), res, in.Keywords, in.Lyric, in.Note)

	if err := s.store.Upsert(ctx, entry); err != nil {
		return Entry{}, mood.Result{}, fmt.Errorf("saving entry for %s: %w", entry.Date, err)
	}

	s.logger.Info("recorded mood entry",
		zap.String("date", entry.Date),
		zap.String("result", entry.Result),
		zap.Float64("score", res.Score),
	)
	return entry, res, nil
}

// Today returns today's entry, or nil if none has been recorded.
func (s *Service) Today(ctx context.Context) (*Entry, error) {
	e, err := s.store.GetByDate(ctx, DateKey(s.now()))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading today's entry: %w", err)
	}
	return e, nil
}

// Get returns the entry for date. Returns ErrNotFound when absent.
func (s *Service) Get(ctx context.Context, date string) (*Entry, error) {
	if err := ValidateDate(date); err != nil {
		return nil, err
	}
	return s.store.GetByDate(ctx, date)
}

// Month returns all entries whose date falls in month ("YYYY-MM").
func (s *Service) Month(ctx context.Context, month string) ([]Entry, error) {
	pattern, err := MonthPattern(month)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.GetForMonth(ctx, pattern)
	if err != nil {
		return nil, fmt.Errorf("loading entries for %s: %w", month, err)
	}
	return entries, nil
}

// Save upserts an entry after validating its date.
func (s *Service) Save(ctx context.Context, e Entry) error {
	if err := ValidateDate(e.Date); err != nil {
		return err
	}
	return s.store.Upsert(ctx, e)
}
