package task

import (
	"sort"

	"github.com/elilab/mediakit/internal/clock"
)

const topN = 5

// Count pairs a name with how often it occurs.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Report summarises a project's task history.
type Report struct {
	Tasks int `json:"tasks"`

	// Completed is how many tasks contributed to AverageDelayDays.
	Completed int `json:"completed"`

	// AverageDelayDays is the mean of completion date minus due date.
	// Negative means early.
	AverageDelayDays float64 `json:"averageDelayDays"`

	ArtistCounts []Count `json:"artistCounts"`
	TopNames     []Count `json:"topNames"`
	TopArtists   []Count `json:"topArtists"`
}

// Analyze builds a Report. Tasks without a parseable due date or a
// "Completed on" status do not affect the average.
func Analyze(tasks []*Task) *Report {
	r := &Report{Tasks: len(tasks)}

	total := 0
	names := map[string]int{}
	artists := map[string]int{}
	for _, t := range tasks {
		names[t.Name]++
		artists[t.Artist]++

		done, ok := CompletedOn(t.Status)
		if !ok {
			continue
		}
		due, err := clock.ParseDate(t.DueDate)
		if err != nil {
			continue
		}
		total += clock.DaysBetween(due, done)
		r.Completed++
	}
	if r.Completed > 0 {
		r.AverageDelayDays = float64(total) / float64(r.Completed)
	}

	r.ArtistCounts = counts(artists)
	sort.Slice(r.ArtistCounts, func(i, j int) bool { return r.ArtistCounts[i].Name < r.ArtistCounts[j].Name })
	r.TopNames = top(names, topN)
	r.TopArtists = top(artists, topN)
	return r
}

func counts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for name, n := range m {
		out = append(out, Count{Name: name, Count: n})
	}
	return out
}

// top returns the n most frequent names, ties broken alphabetically.
func top(m map[string]int, n int) []Count {
	out := counts(m)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
