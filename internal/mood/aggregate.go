package mood

import (
	"math"
	"strings"
)

// Label is the dominant mood derived from a Vector.
type Label string

// Calm is the internal name; it is shown to users as "relaxed".
const (
	Happy   Label = "happy"
	Sad     Label = "sad"
	Calm    Label = "calm"
	Excited Label = "excited"
	Angry   Label = "angry"
)

// Display returns the user-facing name of the label.
func (l Label) Display() string {
	if l == Calm {
		return "relaxed"
	}
	return string(l)
}

// ParseLabel reads a label, accepting either name for Calm.
func ParseLabel(s string) (Label, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "happy":
		return Happy, true
	case "sad":
		return Sad, true
	case "calm", "relaxed":
		return Calm, true
	case "excited":
		return Excited, true
	case "angry":
		return Angry, true
	}
	return "", false
}

// Input holds the raw questionnaire answers.
type Input struct {
	Slider   float64  `json:"slider"`
	Keywords []string `json:"keywords"`
	Lyric    string   `json:"lyric"`
	Note     string   `json:"note"`
}

// Result is the aggregated reading for one questionnaire.
type Result struct {
	Vector  Vector  `json:"vector"`
	Label   Label   `json:"label"`
	Score   float64 `json:"score"`
	Sources int     `json:"sources"`
}

// Aggregate averages the slider band, every known keyword and the lyric (if
// known) into one vector. Unknown keywords and lyrics are skipped. The note is
// not scored.
func Aggregate(in Input) Result {
	sources := []Vector{SliderVector(in.Slider)}
	for _, k := range in.Keywords {
		if v, ok := KeywordVector(k); ok {
			sources = append(sources, v)
		}
	}
	if in.Lyric != "" {
		if v, ok := LyricVector(in.Lyric); ok {
			sources = append(sources, v)
		}
	}

	avg := Mean(sources)
	return Result{
		Vector:  avg,
		Label:   Dominant(avg),
		Score:   Score(avg),
		Sources: len(sources),
	}
}

// Dominant picks the label of the strongest component. Rules are checked in
// order happy, sad, excited, calm so ties resolve to the earlier label.
// Angry is only reachable when a component is NaN.
func Dominant(v Vector) Label {
	h, s, c, e := v.Happy, v.Sad, v.Calm, v.Excited
	switch {
	case h >= s && h >= c && h >= e:
		return Happy
	case s >= h && s >= c && s >= e:
		return Sad
	case e >= h && e >= s && e >= c:
		return Excited
	case c >= h && c >= s && c >= e:
		return Calm
	default:
		return Angry
	}
}

// Score maps a vector onto the 0-100 scale used for prompting.
func Score(v Vector) float64 {
	if v.hasNaN() {
		return 50
	}
	score := v.Happy*30 + v.Excited*25 + v.Calm*15 - v.Sad*30 + 50
	return math.Min(math.Max(score, 0), 100)
}
