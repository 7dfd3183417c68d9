package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyze(t *testing.T) {
	tasks := []*Task{
		{Name: "layout", Artist: "Ana", DueDate: "2024-06-10", Status: "Completed on 2024-06-12"},
		{Name: "layout", Artist: "Bo", DueDate: "2024-06-10", Status: "Completed on 2024-06-09"},
		{Name: "lighting", Artist: "Ana", DueDate: "2024-06-10", Status: StatusInProgress},
		{Name: "comp", Artist: "Cy", DueDate: "not a date", Status: "Completed on 2024-06-12"},
		{Name: "fx", Artist: "Bo", DueDate: "2024-06-01", Status: "Completed on garbage"},
	}

	r := Analyze(tasks)

	assert.Equal(t, 5, r.Tasks)
	assert.Equal(t, 2, r.Completed)
	assert.InDelta(t, 0.5, r.AverageDelayDays, 1e-9)
	assert.Equal(t, []Count{{"Ana", 2}, {"Bo", 2}, {"Cy", 1}}, r.ArtistCounts)
	assert.Equal(t, []Count{{"layout", 2}, {"comp", 1}, {"fx", 1}, {"lighting", 1}}, r.TopNames)
	assert.Equal(t, []Count{{"Ana", 2}, {"Bo", 2}, {"Cy", 1}}, r.TopArtists)
}

func TestAnalyze_TopIsCappedAtFive(t *testing.T) {
	var tasks []*Task
	for _, n := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		tasks = append(tasks, &Task{Name: n, Artist: n})
	}

	r := Analyze(tasks)
	assert.Len(t, r.TopNames, 5)
	assert.Equal(t, "a", r.TopNames[0].Name)
	assert.Len(t, r.ArtistCounts, 7)
	assert.Zero(t, r.AverageDelayDays)
}
