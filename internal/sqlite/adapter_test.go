package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/justestif/moodtune/internal/history"
)

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	a, err := NewAdapter(filepath.Join(t.TempDir(), "moods.db"))
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func strPtr(s string) *string { return &s }

func TestAdapter_UpsertAndGet(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	want := history.Entry{
		Date:     "2025-04-12",
		Happy:    0.72,
		Sad:      0.05,
		Calm:     0.37,
		Excited:  0.65,
		Result:   "happy",
		Keywords: []string{"Road trip", "Hiking in the forest", "Road trip"},
		Activity: strPtr("Here comes the sun"),
		Note:     "sunny",
	}
	if err := a.Upsert(ctx, want); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := a.GetByDate(ctx, "2025-04-12")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(*got, want) {
		t.Errorf("got %+v, want %+v", *got, want)
	}
}

func TestAdapter_UpsertReplaces(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	first := history.Entry{Date: "2025-04-12", Happy: 0.9, Result: "happy", Keywords: []string{"Road trip", "Meditation"}, Activity: strPtr("Here comes the sun")}
	second := history.Entry{Date: "2025-04-12", Sad: 0.8, Result: "sad", Keywords: []string{"Staying in bed"}}

	for _, e := range []history.Entry{first, second} {
		if err := a.Upsert(ctx, e); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	got, err := a.GetByDate(ctx, "2025-04-12")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Result != "sad" || got.Happy != 0 {
		t.Errorf("entry not replaced: %+v", *got)
	}
	if !reflect.DeepEqual(got.Keywords, []string{"Staying in bed"}) {
		t.Errorf("Keywords = %v, want only the new keyword", got.Keywords)
	}
	if got.Activity != nil {
		t.Errorf("Activity = %q, want nil", *got.Activity)
	}

	month, err := a.GetForMonth(ctx, "2025-04%")
	if err != nil {
		t.Fatalf("month: %v", err)
	}
	if len(month) != 1 {
		t.Errorf("month has %d entries, want 1", len(month))
	}
}

func TestAdapter_GetByDateNotFound(t *testing.T) {
	a := newTestAdapter(t)
	_, err := a.GetByDate(context.Background(), "2025-01-01")
	if !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAdapter_GetForMonth(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	dates := []string{"2025-05-01", "2025-04-30", "2025-04-01", "2025-03-31"}
	for _, d := range dates {
		e := history.Entry{Date: d, Result: "calm", Keywords: []string{"Meditation"}}
		if err := a.Upsert(ctx, e); err != nil {
			t.Fatalf("upsert %s: %v", d, err)
		}
	}

	got, err := a.GetForMonth(ctx, "2025-04%")
	if err != nil {
		t.Fatalf("month: %v", err)
	}
	var gotDates []string
	for _, e := range got {
		gotDates = append(gotDates, e.Date)
		if !reflect.DeepEqual(e.Keywords, []string{"Meditation"}) {
			t.Errorf("%s keywords = %v", e.Date, e.Keywords)
		}
	}
	if want := []string{"2025-04-01", "2025-04-30"}; !reflect.DeepEqual(gotDates, want) {
		t.Errorf("dates = %v, want %v", gotDates, want)
	}

	empty, err := a.GetForMonth(ctx, "2024-12%")
	if err != nil {
		t.Fatalf("empty month: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no entries, got %d", len(empty))
	}
}

func TestAdapter_WorksWithHistoryService(t *testing.T) {
	a := newTestAdapter(t)
	svc := history.NewService(a)

	if _, err := svc.Get(context.Background(), "2025-04-01"); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound through service, got %v", err)
	}
}
