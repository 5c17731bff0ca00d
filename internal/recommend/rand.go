package recommend

import (
	"math"
	"math/rand"
)

// Rand is the randomness used to vary AI prompts. *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// NewRand returns a Rand seeded with seed.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Jitter perturbs score by a uniform offset in [-5, 5) and clamps the result
// to [0, 100]. Repeated prompts in a session differ on purpose. NaN scores
// are read as 50.
func Jitter(r Rand, score float64) float64 {
	if math.IsNaN(score) {
		score = 50
	}
	j := score + r.Float64()*10 - 5
	return min(max(j, 0), 100)
}

// MoodBucket names the mood band a 0-100 score falls in.
func MoodBucket(score float64) string {
	switch {
	case score >= 80:
		return "happy"
	case score >= 60:
		return "relaxed"
	case score >= 40:
		return "neutral"
	case score >= 20:
		return "melancholic"
	default:
		return "sad"
	}
}

// SampleKeywords returns a random subset of keywords. Lists of two or fewer
// are returned whole; longer lists keep between 2 and len(keywords) entries
// in shuffled order.
func SampleKeywords(r Rand, keywords []string) []string {
	out := append([]string{}, keywords...)
	if len(out) <= 2 {
		return out
	}

	count := 2 + r.Intn(len(out)-1)
	for i := len(out) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out[:count]
}
