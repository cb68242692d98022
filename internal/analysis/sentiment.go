package analysis

import (
	"strings"

	"github.com/jonreiter/govader"

	"pagepulse/internal/domain"
)

// ScoreMemo memoises scores by text.
type ScoreMemo interface {
	GetOrCompute(text string, compute func(string) float64) float64
}

// Scorer rates comment text with the VADER compound polarity score.
type Scorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
	memo     ScoreMemo
}

// NewScorer creates a scorer. memo may be nil.
func NewScorer(memo ScoreMemo) *Scorer {
	return &Scorer{
		analyzer: govader.NewSentimentIntensityAnalyzer(),
		memo:     memo,
	}
}

// Polarity returns the compound score of text in [-1, 1].
func (s *Scorer) Polarity(text string) float64 {
	if s.memo != nil {
		return s.memo.GetOrCompute(text, s.compound)
	}
	return s.compound(text)
}

func (s *Scorer) compound(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	score := s.analyzer.PolarityScores(text).Compound
	switch {
	case score > 1:
		return 1
	case score < -1:
		return -1
	}
	return score
}

// Score rates every comment that has text, keeping input order. Comments
// without text are dropped.
func (s *Scorer) Score(comments []domain.Comment) []domain.SentimentRecord {
	records := make([]domain.SentimentRecord, 0, len(comments))

	for _, c := range comments {
		if c.CommentText == nil {
			continue
		}
		records = append(records, domain.SentimentRecord{
			Row:           len(records),
			Text:          *c.CommentText,
			CommenterName: c.CommenterName,
			HasImage:      c.HasImage,
			Reactions:     c.Reactions,
			Sentiment:     s.Polarity(*c.CommentText),
		})
	}

	return records
}
