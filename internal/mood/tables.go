package mood

import (
	"math"
	"strings"
)

// sliderBand covers slider values in [lower, upper).
type sliderBand struct {
	name   string
	lower  float64
	upper  float64
	vector Vector
}

// sliderBands runs from "very sad" to "very happy" along the slider axis.
var sliderBands = []sliderBand{
	{name: "very sad", lower: 0.0, upper: 0.2, vector: Vector{Happy: 0.05, Sad: 0.85, Calm: 0.2, Excited: 0.05}},
	{name: "sad", lower: 0.2, upper: 0.4, vector: Vector{Happy: 0.2, Sad: 0.6, Calm: 0.35, Excited: 0.1}},
	{name: "neutral", lower: 0.4, upper: 0.6, vector: Vector{Happy: 0.35, Sad: 0.3, Calm: 0.55, Excited: 0.25}},
	{name: "happy", lower: 0.6, upper: 0.8, vector: Vector{Happy: 0.65, Sad: 0.15, Calm: 0.4, Excited: 0.45}},
	{name: "very happy", lower: 0.8, upper: 1.0, vector: Vector{Happy: 0.85, Sad: 0.05, Calm: 0.3, Excited: 0.7}},
}

type entry struct {
	text   string
	vector Vector
}

// keywordTable holds the activity tags offered by the questionnaire.
var keywordTable = []entry{
	{"Hiking in the forest", Vector{Happy: 0.6, Sad: 0.05, Calm: 0.6, Excited: 0.5}},
	{"Coffee with a friend", Vector{Happy: 0.7, Sad: 0.05, Calm: 0.5, Excited: 0.3}},
	{"Dancing all night", Vector{Happy: 0.75, Sad: 0.0, Calm: 0.05, Excited: 0.95}},
	{"Reading by the window", Vector{Happy: 0.35, Sad: 0.15, Calm: 0.9, Excited: 0.05}},
	{"Walking in the rain", Vector{Happy: 0.2, Sad: 0.55, Calm: 0.6, Excited: 0.1}},
	{"Staying in bed", Vector{Happy: 0.1, Sad: 0.65, Calm: 0.4, Excited: 0.0}},
	{"Road trip", Vector{Happy: 0.7, Sad: 0.05, Calm: 0.2, Excited: 0.85}},
	{"Meditation", Vector{Happy: 0.3, Sad: 0.05, Calm: 0.95, Excited: 0.0}},
	{"Missing someone", Vector{Happy: 0.05, Sad: 0.9, Calm: 0.2, Excited: 0.05}},
	{"Workout at the gym", Vector{Happy: 0.5, Sad: 0.05, Calm: 0.1, Excited: 0.9}},
	{"Cooking dinner", Vector{Happy: 0.55, Sad: 0.05, Calm: 0.65, Excited: 0.2}},
	{"Late night overthinking", Vector{Happy: 0.05, Sad: 0.7, Calm: 0.15, Excited: 0.2}},
}

// lyricTable holds the lyric lines the user can pick from.
var lyricTable = []entry{
	{"We are children unafraid of this world", Vector{Happy: 0.7, Sad: 0.05, Calm: 0.2, Excited: 0.75}},
	{"Let it be, let it be", Vector{Happy: 0.3, Sad: 0.2, Calm: 0.85, Excited: 0.05}},
	{"Tonight we are young", Vector{Happy: 0.75, Sad: 0.0, Calm: 0.05, Excited: 0.9}},
	{"Hello darkness, my old friend", Vector{Happy: 0.05, Sad: 0.85, Calm: 0.35, Excited: 0.0}},
	{"Here comes the sun", Vector{Happy: 0.9, Sad: 0.0, Calm: 0.5, Excited: 0.35}},
	{"Everybody hurts sometimes", Vector{Happy: 0.1, Sad: 0.75, Calm: 0.3, Excited: 0.05}},
}

var (
	keywordIndex = indexTable(keywordTable)
	lyricIndex   = indexTable(lyricTable)
)

func indexTable(table []entry) map[string]Vector {
	idx := make(map[string]Vector, len(table))
	for _, e := range table {
		idx[normalizeKey(e.text)] = e.vector
	}
	return idx
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SliderVector returns the band vector for a slider position.
// The value is clamped to [0,1]; NaN is read as the midpoint.
func SliderVector(value float64) Vector {
	if math.IsNaN(value) {
		value = 0.5
	}
	value = min(max(value, 0), 1)
	for _, b := range sliderBands {
		if value >= b.lower && value < b.upper {
			return b.vector
		}
	}
	return sliderBands[len(sliderBands)-1].vector
}

// KeywordVector looks up a keyword tag.
func KeywordVector(keyword string) (Vector, bool) {
	v, ok := keywordIndex[normalizeKey(keyword)]
	return v, ok
}

// LyricVector looks up a lyric line.
func LyricVector(lyric string) (Vector, bool) {
	v, ok := lyricIndex[normalizeKey(lyric)]
	return v, ok
}

// Keywords lists the known keyword tags in display order.
func Keywords() []string {
	return texts(keywordTable)
}

// Lyrics lists the known lyric lines in display order.
func Lyrics() []string {
	return texts(lyricTable)
}

func texts(table []entry) []string {
	out := make([]string, len(table))
	for i, e := range table {
		out[i] = e.text
	}
	return out
}
