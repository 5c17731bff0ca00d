package trends

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/justestif/moodtune/internal/history"
	"github.com/justestif/moodtune/internal/mood"
)

func entry(day int, v mood.Vector) history.Entry {
	return history.Entry{
		Date:    fmt.Sprintf("2025-04-%02d", day),
		Happy:   v.Happy,
		Sad:     v.Sad,
		Calm:    v.Calm,
		Excited: v.Excited,
		Result:  string(mood.Dominant(v)),
	}
}

var (
	happyV = mood.Vector{Happy: 0.9, Sad: 0.05, Calm: 0.3, Excited: 0.4}
	sadV   = mood.Vector{Happy: 0.1, Sad: 0.8, Calm: 0.2, Excited: 0.05}
	calmV  = mood.Vector{Happy: 0.3, Sad: 0.1, Calm: 0.9, Excited: 0.1}
)

func TestSummarize(t *testing.T) {
	entries := []history.Entry{
		entry(1, happyV),
		entry(2, happyV),
		entry(3, calmV),
		entry(4, sadV),
	}

	s := Summarize("2025-04", entries)

	if s.Entries != 4 || s.Month != "2025-04" {
		t.Errorf("Summarize() = %+v", s)
	}
	want := map[string]int{"happy": 2, "relaxed": 1, "sad": 1}
	for k, n := range want {
		if s.Counts[k] != n {
			t.Errorf("Counts[%s] = %d, want %d", k, s.Counts[k], n)
		}
	}
	if s.TopMood != "happy" {
		t.Errorf("TopMood = %q, want happy", s.TopMood)
	}

	wantHappy := (0.9 + 0.9 + 0.3 + 0.1) / 4
	if math.Abs(s.Average.Happy-wantHappy) > 1e-9 {
		t.Errorf("Average.Happy = %v, want %v", s.Average.Happy, wantHappy)
	}
	if s.AverageScore <= 0 || s.AverageScore > 100 {
		t.Errorf("AverageScore = %v", s.AverageScore)
	}
}

func TestSummarize_Ties(t *testing.T) {
	s := Summarize("2025-04", []history.Entry{entry(1, calmV), entry(2, sadV)})
	if s.TopMood != "sad" {
		t.Errorf("TopMood = %q, want sad (earlier in label order)", s.TopMood)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize("2025-04", nil)
	if s.Entries != 0 || s.TopMood != "" || len(s.Counts) != 0 || s.Counts == nil {
		t.Errorf("Summarize(nil) = %+v", s)
	}
}

func TestDetectPhases(t *testing.T) {
	tests := []struct {
		name         string
		entries      []history.Entry
		cfg          Config
		wantPhases   int
		wantOutliers int
	}{
		{
			name:    "empty input",
			entries: nil,
			cfg:     DefaultConfig(),
		},
		{
			name:         "fewer entries than clusters",
			entries:      []history.Entry{entry(1, happyV), entry(2, sadV)},
			cfg:          DefaultConfig(),
			wantOutliers: 2,
		},
		{
			name: "single cluster",
			entries: []history.Entry{
				entry(3, happyV), entry(1, happyV), entry(2, happyV), entry(4, happyV),
			},
			cfg:        Config{NumClusters: 1, MinClusterSize: 3},
			wantPhases: 1,
		},
		{
			name: "cluster below minimum size",
			entries: []history.Entry{
				entry(1, happyV), entry(2, happyV),
			},
			cfg:          Config{NumClusters: 1, MinClusterSize: 3},
			wantOutliers: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			phases, outliers := DetectPhases(tt.entries, tt.cfg)
			if len(phases) != tt.wantPhases {
				t.Errorf("phases = %d, want %d", len(phases), tt.wantPhases)
			}
			if len(outliers) != tt.wantOutliers {
				t.Errorf("outliers = %d, want %d", len(outliers), tt.wantOutliers)
			}
		})
	}
}

func TestDetectPhases_SinglePhaseDetails(t *testing.T) {
	entries := []history.Entry{entry(9, happyV), entry(1, happyV), entry(5, happyV)}

	phases, _ := DetectPhases(entries, Config{NumClusters: 1, MinClusterSize: 1})
	if len(phases) != 1 {
		t.Fatalf("phases = %d, want 1", len(phases))
	}
	p := phases[0]
	if p.Mood != "happy" || p.Start != "2025-04-01" || p.End != "2025-04-09" {
		t.Errorf("phase = %+v", p)
	}
	if p.Name != "Happy: 2025-04-01 to 2025-04-09" {
		t.Errorf("Name = %q", p.Name)
	}
	got, want := p.Centroid.Components(), happyV.Components()
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("Centroid = %+v, want %+v", p.Centroid, happyV)
			break
		}
	}
	if p.Entries[0].Date != "2025-04-01" || p.Entries[2].Date != "2025-04-09" {
		t.Error("entries not sorted by date")
	}
}

func TestDetectPhases_KeepsEveryEntry(t *testing.T) {
	var entries []history.Entry
	for day := 1; day <= 12; day++ {
		v := happyV
		switch day % 3 {
		case 1:
			v = sadV
		case 2:
			v = calmV
		}
		entries = append(entries, entry(day, v))
	}

	phases, outliers := DetectPhases(entries, Config{NumClusters: 3, MinClusterSize: 2})
	total := len(outliers)
	for _, p := range phases {
		total += len(p.Entries)
	}
	if total != len(entries) {
		t.Errorf("phases and outliers hold %d entries, want %d", total, len(entries))
	}
	for i := 1; i < len(phases); i++ {
		if phases[i-1].Start > phases[i].Start {
			t.Error("phases not ordered by start date")
		}
	}
}

func TestPhaseName(t *testing.T) {
	if got := phaseName("relaxed", "2025-04-02", "2025-04-02"); got != "Relaxed: 2025-04-02" {
		t.Errorf("phaseName() = %q", got)
	}
	if got := phaseName("sad", "2025-04-02", "2025-04-20"); got != "Sad: 2025-04-02 to 2025-04-20" {
		t.Errorf("phaseName() = %q", got)
	}
}

type monthStub struct {
	entries []history.Entry
	err     error
}

func (m monthStub) Month(context.Context, string) ([]history.Entry, error) {
	return m.entries, m.err
}

func TestService_Month(t *testing.T) {
	s := NewService(monthStub{entries: []history.Entry{entry(1, happyV)}}, DefaultConfig())
	r, err := s.Month(context.Background(), "2025-04")
	if err != nil {
		t.Fatal(err)
	}
	if r.Summary.Entries != 1 || r.Phases == nil || len(r.Outliers) != 1 {
		t.Errorf("Month() = %+v", r)
	}

	s = NewService(monthStub{err: history.ErrInvalidMonth}, DefaultConfig())
	if _, err := s.Month(context.Background(), "bad"); !errors.Is(err, history.ErrInvalidMonth) {
		t.Errorf("error = %v, want ErrInvalidMonth", err)
	}
}

func TestDetectPhases_SingleClusterIsStable(t *testing.T) {
	entries := []history.Entry{entry(1, sadV), entry(2, sadV), entry(3, sadV), entry(4, sadV)}

	for run := 0; run < 50; run++ {
		phases, outliers := DetectPhases(entries, Config{NumClusters: 1, MinClusterSize: 1})
		if len(phases) != 1 || len(outliers) != 0 {
			t.Fatalf("run %d: phases = %d, outliers = %d", run, len(phases), len(outliers))
		}
		if phases[0].Mood != "sad" || phases[0].Name != "Sad: 2025-04-01 to 2025-04-04" {
			t.Fatalf("run %d: phase = %q (%s)", run, phases[0].Name, phases[0].Mood)
		}
	}
}
