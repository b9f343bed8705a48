package journal

import (
	"fmt"
	"sort"
)

// NoDataLabel is the single label of an empty series.
const NoDataLabel = "No Data"

// Series is the chart view of a journal window. Labels, Drinks and Feelings
// always have the same length.
type Series struct {
	Labels   []string  `json:"labels"`
	Drinks   []float64 `json:"drinks"`
	Feelings []float64 `json:"feelings"`
	Empty    bool      `json:"empty"`
}

// DeriveSeries sorts a copy of entries by date, keeps the trailing window of
// entries with a valid date (all of them when window <= 0) and maps each to a
// month-day label, its drink count and a mood score. Mood scores are scaled
// so Fantastic lines up with the highest drink count, with a floor of 5.
func DeriveSeries(entries []Entry, window int) Series {
	valid := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if _, ok := ParseDate(e.Date); ok {
			valid = append(valid, e)
		}
	}
	sort.SliceStable(valid, func(i, j int) bool { return valid[i].Date < valid[j].Date })

	if window > 0 && len(valid) > window {
		valid = valid[len(valid)-window:]
	}
	if len(valid) == 0 {
		return Series{
			Labels:   []string{NoDataLabel},
			Drinks:   []float64{0},
			Feelings: []float64{0},
			Empty:    true,
		}
	}

	s := Series{
		Labels:   make([]string, len(valid)),
		Drinks:   make([]float64, len(valid)),
		Feelings: make([]float64, len(valid)),
	}
	maxDrinks := 0.0
	for i, e := range valid {
		d, _ := ParseDate(e.Date)
		s.Labels[i] = fmt.Sprintf("%d-%d", int(d.Month()), d.Day())
		s.Drinks[i] = float64(max(e.Amount, 0))
		maxDrinks = max(maxDrinks, s.Drinks[i])
	}

	k := ScaleFactor(maxDrinks)
	for i, e := range valid {
		s.Feelings[i] = float64(e.Feeling.Score()) * k
	}
	return s
}

// ScaleFactor is the per-series multiplier applied to mood scores.
func ScaleFactor(maxDrinks float64) float64 {
	return max(maxDrinks, float64(len(Moods))) / float64(len(Moods))
}
