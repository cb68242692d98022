package analysis

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"pagepulse/internal/domain"
)

// TopAndBottom returns the k highest and k lowest scored records. Top is
// sorted by sentiment descending and bottom ascending. Both come from one
// stable ordering, so they never share a record when len(records) >= 2k.
func TopAndBottom(records []domain.SentimentRecord, k int) (top, bottom []domain.SentimentRecord) {
	sorted := make([]domain.SentimentRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Sentiment > sorted[j].Sentiment })

	n := min(k, len(sorted))
	top = sorted[:n]

	bottom = make([]domain.SentimentRecord, 0, n)
	for i := len(sorted) - 1; i >= len(sorted)-n; i-- {
		bottom = append(bottom, sorted[i])
	}

	return top, bottom
}

type CommenterCount struct {
	Name  string
	Count int
}

// TopCommenters counts records per commenter and returns the k most
// frequent, ties broken by name. Records without a name are not counted.
func TopCommenters(records []domain.SentimentRecord, k int) []CommenterCount {
	counts := map[string]int{}
	for _, r := range records {
		if r.CommenterName == nil {
			continue
		}
		counts[*r.CommenterName]++
	}

	out := make([]CommenterCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, CommenterCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})

	if len(out) > k {
		out = out[:k]
	}
	return out
}

// Series is one dataset's sentiment values.
type Series struct {
	Name   string
	Values []float64
}

// Sentiments returns the scores in record order.
func Sentiments(records []domain.SentimentRecord) []float64 {
	values := make([]float64, len(records))
	for i, r := range records {
		values[i] = r.Sentiment
	}
	return values
}

// MeanSentiment is false when there is nothing to average.
func MeanSentiment(records []domain.SentimentRecord) (float64, bool) {
	if len(records) == 0 {
		return 0, false
	}
	return stat.Mean(Sentiments(records), nil), true
}
