// Package mood turns questionnaire answers into an emotion reading.
package mood

import "math"

// Vector is a reading across the four tracked emotions.
// Components are conceptually in [0,1] but are not clamped before aggregation.
type Vector struct {
	Happy   float64 `json:"happy"`
	Sad     float64 `json:"sad"`
	Calm    float64 `json:"calm"`
	Excited float64 `json:"excited"`
}

// Add returns the componentwise sum of v and o.
func (v Vector) Add(o Vector) Vector {
	return Vector{
		Happy:   v.Happy + o.Happy,
		Sad:     v.Sad + o.Sad,
		Calm:    v.Calm + o.Calm,
		Excited: v.Excited + o.Excited,
	}
}

// Scale returns v with every component multiplied by f.
func (v Vector) Scale(f float64) Vector {
	return Vector{
		Happy:   v.Happy * f,
		Sad:     v.Sad * f,
		Calm:    v.Calm * f,
		Excited: v.Excited * f,
	}
}

// Components returns the vector in happy, sad, calm, excited order.
func (v Vector) Components() [4]float64 {
	return [4]float64{v.Happy, v.Sad, v.Calm, v.Excited}
}

// Mean averages the given vectors. The divisor is floored at 1 so an empty
// input yields the zero vector.
func Mean(vs []Vector) Vector {
	var sum Vector
	for _, v := range vs {
		sum = sum.Add(v)
	}
	count := max(1, len(vs))
	return sum.Scale(1 / float64(count))
}

func (v Vector) hasNaN() bool {
	for _, c := range v.Components() {
		if math.IsNaN(c) {
			return true
		}
	}
	return false
}
