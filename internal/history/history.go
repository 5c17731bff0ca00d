// Package history stores one mood entry per calendar day.
package history

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/justestif/moodtune/internal/mood"
)

// DateLayout is the layout of entry keys.
const DateLayout = "2006-01-02"

// Common errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidDate  = errors.New("invalid date, want YYYY-MM-DD")
	ErrInvalidMonth = errors.New("invalid month, want YYYY-MM")
)

var monthRE = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Entry is the persisted reading for one day.
type Entry struct {
	Date     string   `json:"date"`
	Happy    float64  `json:"happy"`
	Sad      float64  `json:"sad"`
	Calm     float64  `json:"calm"`
	Excited  float64  `json:"excited"`
	Result   string   `json:"result"`
	Keywords []string `json:"keywords"`
	Activity *string  `json:"activity"` // chosen lyric, nil when none
	Note     string   `json:"note"`
}

// Vector returns the entry's emotion reading.
func (e Entry) Vector() mood.Vector {
	return mood.Vector{Happy: e.Happy, Sad: e.Sad, Calm: e.Calm, Excited: e.Excited}
}

// Label returns the stored result as a mood label.
func (e Entry) Label() mood.Label {
	if l, ok := mood.ParseLabel(e.Result); ok {
		return l
	}
	return mood.Dominant(e.Vector())
}

// NewEntry builds the entry for a completed questionnaire.
func NewEntry(date string, res mood.Result, keywords []string, lyric, note string) Entry {
	e := Entry{
		Date:     date,
		Happy:    res.Vector.Happy,
		Sad:      res.Vector.Sad,
		Calm:     res.Vector.Calm,
		Excited:  res.Vector.Excited,
		Result:   string(res.Label),
		Keywords: append([]string{}, keywords...),
		Note:     note,
	}
	if lyric != "" {
		e.Activity = &lyric
	}
	return e
}

// Store persists entries keyed by date. Upsert replaces any entry with the
// same date.
type Store interface {
	Upsert(ctx context.Context, e Entry) error
	GetByDate(ctx context.Context, date string) (*Entry, error)
	GetForMonth(ctx context.Context, pattern string) ([]Entry, error)
}

// DateKey formats t as an entry key.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ValidateDate checks that date is a real YYYY-MM-DD day.
func ValidateDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return nil
}

// MonthPattern turns "2025-04" (or "2025-04%") into the prefix pattern
// "2025-04%" used by month queries.
func MonthPattern(month string) (string, error) {
	m := strings.TrimSuffix(strings.TrimSpace(month), "%")
	if !monthRE.MatchString(m) {
		return "", fmt.Errorf("%w: %q", ErrInvalidMonth, month)
	}
	return m + "%", nil
}
