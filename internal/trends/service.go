package trends

import (
	"context"
	"fmt"

	"github.com/justestif/moodtune/internal/history"
)

// MonthReader loads a month of entries. *history.Service satisfies it.
type MonthReader interface {
	Month(ctx context.Context, month string) ([]history.Entry, error)
}

// Report is the trend view for one month.
type Report struct {
	Summary  Summary         `json:"summary"`
	Phases   []Phase         `json:"phases"`
	Outliers []history.Entry `json:"outliers"`
}

// Service builds monthly reports.
type Service struct {
	entries MonthReader
	cfg     Config
}

// NewService creates a Service.
func NewService(entries MonthReader, cfg Config) *Service {
	return &Service{entries: entries, cfg: cfg}
}

// Month loads entries for month ("YYYY-MM") and returns its report.
// Phases and Outliers are never nil.
func (s *Service) Month(ctx context.Context, month string) (*Report, error) {
	entries, err := s.entries.Month(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("loading month: %w", err)
	}

	phases, outliers := DetectPhases(entries, s.cfg)
	if phases == nil {
		phases = []Phase{}
	}
	if outliers == nil {
		outliers = []history.Entry{}
	}

	return &Report{
		Summary:  Summarize(month, entries),
		Phases:   phases,
		Outliers: outliers,
	}, nil
}
