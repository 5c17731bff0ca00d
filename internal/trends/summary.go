// Package trends summarizes a month of mood entries for the calendar view.
package trends

import (
	"github.com/justestif/moodtune/internal/history"
	"github.com/justestif/moodtune/internal/mood"
)

// labelOrder fixes tie-breaking for the most frequent label.
var labelOrder = []mood.Label{mood.Happy, mood.Sad, mood.Excited, mood.Calm, mood.Angry}

// Summary describes one month of entries. Counts are keyed by display name.
type Summary struct {
	Month        string         `json:"month"`
	Entries      int            `json:"entries"`
	Counts       map[string]int `json:"counts"`
	Average      mood.Vector    `json:"average"`
	AverageScore float64        `json:"averageScore"`
	TopMood      string         `json:"topMood,omitempty"`
}

// Summarize counts labels and averages vectors over entries.
func Summarize(month string, entries []history.Entry) Summary {
	s := Summary{Month: month, Entries: len(entries), Counts: map[string]int{}}
	if len(entries) == 0 {
		return s
	}

	byLabel := make(map[mood.Label]int)
	vectors := make([]mood.Vector, len(entries))
	var scoreSum float64
	for i, e := range entries {
		v := e.Vector()
		vectors[i] = v
		scoreSum += mood.Score(v)

		l := e.Label()
		byLabel[l]++
		s.Counts[l.Display()]++
	}

	s.Average = mood.Mean(vectors)
	s.AverageScore = scoreSum / float64(len(entries))

	best := 0
	for _, l := range labelOrder {
		if n := byLabel[l]; n > best {
			best = n
			s.TopMood = l.Display()
		}
	}
	return s
}
