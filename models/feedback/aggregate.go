package feedback

import (
	"strconv"
	"strings"

	"github.com/feedbackdesk/feedback-backend/types"
	"github.com/shopspring/decimal"
)

const (
	feedbackSeparator = " | "
	nameSeparator     = ": "
)

// FlattenFeedbackText joins per-individual text into "A: x | B: y" following
// the order of individuals. Individuals without text keep an empty entry.
func FlattenFeedbackText(individuals []string, texts types.TextMap) string {
	parts := make([]string, 0, len(individuals))
	for _, name := range individuals {
		text, _ := texts.Get(name)
		parts = append(parts, name+nameSeparator+strings.TrimSpace(text))
	}
	return strings.Join(parts, feedbackSeparator)
}

// UnflattenFeedbackText splits a flattened feedback string back into
// per-individual text for display. Segments are anchored on the known
// individual names first; a segment that does not start a new entry belongs
// to the previous one, since the text itself may contain the separator.
func UnflattenFeedbackText(individuals []string, flat string) types.TextMap {
	out := types.TextMap{}
	if strings.TrimSpace(flat) == "" {
		return out
	}

	current := ""
	started := false
	for _, segment := range strings.Split(flat, feedbackSeparator) {
		name, text, ok := splitSegment(individuals, segment)
		if !ok && started {
			prev, _ := out.Get(current)
			out = out.Set(current, prev+feedbackSeparator+segment)
			continue
		}
		if !ok {
			name, text = "", segment
		}
		current = name
		started = true
		out = out.Set(name, text)
	}
	return out
}

func splitSegment(individuals []string, segment string) (string, string, bool) {
	best := ""
	for _, name := range individuals {
		if strings.HasPrefix(segment, name+nameSeparator) && len(name) > len(best) {
			best = name
		}
	}
	if best != "" {
		return best, strings.TrimPrefix(segment, best+nameSeparator), true
	}
	if len(individuals) > 0 {
		return "", "", false
	}
	name, text, ok := strings.Cut(segment, nameSeparator)
	return name, text, ok
}

// FormatRatingsForExport renders "Name: 4, Name2: 5" in insertion order.
func FormatRatingsForExport(ratings types.RatingMap) string {
	parts := make([]string, 0, len(ratings))
	for _, r := range ratings {
		parts = append(parts, r.Name+nameSeparator+strconv.Itoa(r.Value))
	}
	return strings.Join(parts, ", ")
}

// RatingAverage returns the mean rating across all individuals. The second
// result is false when the map is empty: that means no data, not zero.
func RatingAverage(ratings types.RatingMap) (float64, bool) {
	if len(ratings) == 0 {
		return 0, false
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Value
	}
	return float64(sum) / float64(len(ratings)), true
}

// RoundRating rounds an average to two decimal places for display and export.
func RoundRating(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

type accumulator struct {
	records int
	sums    map[types.RatingDimension]int64
	counts  map[types.RatingDimension]int64
}

func (a *accumulator) mean(dim types.RatingDimension) *float64 {
	n := a.counts[dim]
	if n == 0 {
		return nil
	}
	avg, _ := decimal.NewFromInt(a.sums[dim]).
		Div(decimal.NewFromInt(n)).
		Round(2).
		Float64()
	return &avg
}

// SummarizeIndividuals computes per-individual mean ratings across records,
// in order of first appearance. Historical names no longer on the roster are
// included as stored.
func SummarizeIndividuals(records []types.FeedbackRecord) []types.IndividualSummary {
	order := []string{}
	acc := map[string]*accumulator{}

	for _, rec := range records {
		for _, name := range rec.Individuals {
			a, ok := acc[name]
			if !ok {
				a = &accumulator{
					sums:   map[types.RatingDimension]int64{},
					counts: map[types.RatingDimension]int64{},
				}
				acc[name] = a
				order = append(order, name)
			}
			a.records++
			for _, dim := range types.RatingDimensions {
				if v, ok := rec.Rating(dim).Get(name); ok {
					a.sums[dim] += int64(v)
					a.counts[dim]++
				}
			}
		}
	}

	out := make([]types.IndividualSummary, 0, len(order))
	for _, name := range order {
		a := acc[name]
		out = append(out, types.IndividualSummary{
			Name:            name,
			Records:         a.records,
			Professionalism: a.mean(types.DimensionProfessionalism),
			ResponseTime:    a.mean(types.DimensionResponseTime),
			OverallServices: a.mean(types.DimensionOverallServices),
		})
	}
	return out
}

// CountRecommendations tallies the recommend answers of a record set.
func CountRecommendations(records []types.FeedbackRecord) map[string]int {
	counts := map[string]int{
		string(types.RecommendYes):   0,
		string(types.RecommendNo):    0,
		string(types.RecommendMaybe): 0,
	}
	for _, rec := range records {
		if rec.Recommend != "" {
			counts[rec.Recommend]++
		}
	}
	return counts
}
