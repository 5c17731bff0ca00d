// Package params maps a mood and an intensity onto music search parameters.
package params

import (
	"strings"

	"github.com/justestif/moodtune/internal/mood"
)

const (
	minIntensity = 1
	maxIntensity = 5
)

// Params are the seeds and audio targets sent to the recommendation service.
type Params struct {
	Genres  []string `json:"genres"`
	Valence float64  `json:"valence"`
	Energy  float64  `json:"energy"`
}

// SeedString returns the genres as a comma-separated seed list.
func (p Params) SeedString() string {
	return strings.Join(p.Genres, ",")
}

// Default is used for labels without a mapping.
func Default() Params {
	return Params{Genres: []string{"pop", "rock"}, Valence: 0.5, Energy: 0.5}
}

// ClampIntensity bounds an intensity to 1..5.
func ClampIntensity(intensity int) int {
	return min(max(intensity, minIntensity), maxIntensity)
}

// ForMood maps a mood label and intensity onto search parameters.
// Labels are matched case-insensitively and "relaxed" is read as calm.
// Unknown labels get Default.
func ForMood(label string, intensity int) Params {
	n := float64(ClampIntensity(intensity)) / maxIntensity

	l, ok := mood.ParseLabel(label)
	if !ok {
		return Default()
	}

	var p Params
	switch l {
	case mood.Happy:
		p = Params{Genres: []string{"pop", "happy"}, Valence: 0.7 + n*0.3, Energy: 0.6 + n*0.4}
	case mood.Sad:
		p = Params{Genres: []string{"acoustic", "sad"}, Valence: 0.35 - n*0.25, Energy: 0.4 - n*0.25}
	case mood.Calm:
		p = Params{Genres: []string{"chill", "ambient"}, Valence: 0.45 + n*0.15, Energy: 0.35 - n*0.2}
	case mood.Excited:
		p = Params{Genres: []string{"dance", "edm"}, Valence: 0.6 + n*0.35, Energy: 0.7 + n*0.3}
	case mood.Angry:
		p = Params{Genres: []string{"metal", "rock"}, Valence: 0.3 - n*0.2, Energy: 0.7 + n*0.3}
	default:
		return Default()
	}

	p.Valence = clampUnit(p.Valence)
	p.Energy = clampUnit(p.Energy)
	return p
}

func clampUnit(v float64) float64 {
	return min(max(v, 0), 1)
}
