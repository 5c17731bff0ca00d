package trends

import (
	"fmt"
	"slices"
	"strings"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/justestif/moodtune/internal/history"
	"github.com/justestif/moodtune/internal/mood"
)

// Config holds phase detection parameters.
type Config struct {
	NumClusters    int // Number of clusters to create (default: 3)
	MinClusterSize int // Minimum entries per phase (smaller clusters become outliers)
}

// DefaultConfig returns the recommended default configuration.
func DefaultConfig() Config {
	return Config{
		NumClusters:    3,
		MinClusterSize: 3,
	}
}

// Phase is a run of days with similar emotion vectors.
type Phase struct {
	Name     string          `json:"name"` // "Happy: 2025-04-01 to 2025-04-09"
	Mood     string          `json:"mood"`
	Centroid mood.Vector     `json:"centroid"`
	Start    string          `json:"start"`
	End      string          `json:"end"`
	Entries  []history.Entry `json:"entries"`
}

type entryObservation struct {
	entry  history.Entry
	coords clusters.Coordinates
}

func (o entryObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o entryObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// DetectPhases groups entries by emotion vector using k-means clustering.
// Returns phases ordered by start date and the entries that fit none.
func DetectPhases(entries []history.Entry, cfg Config) ([]Phase, []history.Entry) {
	if len(entries) == 0 {
		return nil, nil
	}
	if cfg.NumClusters <= 0 {
		cfg.NumClusters = DefaultConfig().NumClusters
	}

	if len(entries) < cfg.NumClusters {
		return nil, slices.Clone(entries)
	}

	var obs clusters.Observations
	for _, e := range entries {
		c := e.Vector().Components()
		obs = append(obs, entryObservation{entry: e, coords: clusters.Coordinates(c[:])})
	}

	km := kmeans.New()
	result, err := km.Partition(obs, cfg.NumClusters)
	if err != nil {
		return nil, slices.Clone(entries)
	}

	var phases []Phase
	var outliers []history.Entry

	for _, cluster := range result {
		var members []history.Entry
		for _, o := range cluster.Observations {
			if eo, ok := o.(entryObservation); ok {
				members = append(members, eo.entry)
			}
		}
		if len(members) == 0 {
			continue
		}
		if len(members) < cfg.MinClusterSize {
			outliers = append(outliers, members...)
			continue
		}

		slices.SortFunc(members, func(a, b history.Entry) int {
			return compareDates(a.Date, b.Date)
		})

		// kmeans leaves Center at its random seed when no assignment
		// changes, so the centroid is taken from the members.
		vectors := make([]mood.Vector, len(members))
		for i, m := range members {
			vectors[i] = m.Vector()
		}
		centroid := mood.Mean(vectors)
		label := mood.Dominant(centroid).Display()
		start, end := members[0].Date, members[len(members)-1].Date

		phases = append(phases, Phase{
			Name:     phaseName(label, start, end),
			Mood:     label,
			Centroid: centroid,
			Start:    start,
			End:      end,
			Entries:  members,
		})
	}

	slices.SortFunc(phases, func(a, b Phase) int {
		return compareDates(a.Start, b.Start)
	})
	slices.SortFunc(outliers, func(a, b history.Entry) int {
		return compareDates(a.Date, b.Date)
	})

	return phases, outliers
}

// Date keys are ISO dates, so string order is date order.
func compareDates(a, b string) int {
	return strings.Compare(a, b)
}

// phaseName capitalizes the label and appends the date range.
func phaseName(label, start, end string) string {
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	if start == end {
		return fmt.Sprintf("%s: %s", label, start)
	}
	return fmt.Sprintf("%s: %s to %s", label, start, end)
}
