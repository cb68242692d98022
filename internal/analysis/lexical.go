package analysis

import (
	"sort"
)

// DefaultTopK is how many of each dataset's most frequent words are ranked.
const DefaultTopK = 500

// RankWords returns the topK most frequent words over texts, most frequent
// first. Equal counts keep first-occurrence order.
func RankWords(texts []string, topK int) []string {
	counts := map[string]int{}
	var order []string

	for _, text := range texts {
		for _, tok := range WordTokens(text) {
			if counts[tok] == 0 {
				order = append(order, tok)
			}
			counts[tok]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })

	if len(order) > topK {
		order = order[:topK]
	}
	return order
}

// RankDiff is the rank of a word in the first list minus its rank in the
// second. Negative values mark words more typical of the first dataset.
type RankDiff struct {
	Word string
	Diff int
}

// CompareRanks ranks every word of the union of ranked1 and ranked2. A word
// missing from a list ranks len(list) there. The result is sorted by Diff
// ascending; equal differences keep union order (ranked1 first, then the
// words only in ranked2).
func CompareRanks(ranked1, ranked2 []string) []RankDiff {
	pos1 := positions(ranked1)
	pos2 := positions(ranked2)

	union := make([]string, 0, len(ranked1)+len(ranked2))
	union = append(union, ranked1...)
	for _, w := range ranked2 {
		if _, ok := pos1[w]; !ok {
			union = append(union, w)
		}
	}

	diffs := make([]RankDiff, len(union))
	for i, w := range union {
		diffs[i] = RankDiff{Word: w, Diff: rank(pos1, w, len(ranked1)) - rank(pos2, w, len(ranked2))}
	}

	sort.SliceStable(diffs, func(i, j int) bool { return diffs[i].Diff < diffs[j].Diff })
	return diffs
}

func positions(words []string) map[string]int {
	pos := make(map[string]int, len(words))
	for i, w := range words {
		if _, ok := pos[w]; !ok {
			pos[w] = i
		}
	}
	return pos
}

func rank(pos map[string]int, w string, absent int) int {
	if r, ok := pos[w]; ok {
		return r
	}
	return absent
}

// Pair names two datasets to compare, A before B in name order.
type Pair struct {
	A, B string
}

// Pairs returns every unordered pair of names once. names must be sorted.
func Pairs(names []string) []Pair {
	var out []Pair
	for i := range names {
		for j := i + 1; j < len(names); j++ {
			out = append(out, Pair{A: names[i], B: names[j]})
		}
	}
	return out
}
