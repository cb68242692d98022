package analysis

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	lower = cases.Lower(language.Und)

	// Runs of two or more word characters.
	countToken = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]{2,}`)

	// Words, clitics such as 's and 're, ellipses, then any other single
	// non-space rune (punctuation, symbols, emoji).
	wordToken = regexp.MustCompile(`\.\.\.|[\p{L}\p{M}\p{N}_]+|'[\p{L}]+|[^\s\p{L}\p{M}\p{N}_]`)
)

// Lower folds text to lower case.
func Lower(text string) string {
	return lower.String(text)
}

// CountTokens splits lower-cased text into the terms counted for topics.
// Single-character words are ignored.
func CountTokens(text string) []string {
	return countToken.FindAllString(Lower(text), -1)
}

// WordTokens splits lower-cased text into words and punctuation, splitting
// contractions the way treebank tokenisers do: "don't" gives "do", "n't".
func WordTokens(text string) []string {
	raw := wordToken.FindAllString(Lower(text), -1)

	out := make([]string, 0, len(raw))
	for i, tok := range raw {
		if i+1 < len(raw) && raw[i+1] == "'t" && len(tok) > 1 && strings.HasSuffix(tok, "n") {
			out = append(out, tok[:len(tok)-1])
			continue
		}
		if tok == "'t" && i > 0 && strings.HasSuffix(raw[i-1], "n") && len(raw[i-1]) > 1 {
			out = append(out, "n't")
			continue
		}
		out = append(out, tok)
	}

	return out
}
