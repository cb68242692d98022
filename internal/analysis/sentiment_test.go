package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagepulse/internal/domain"
)

type countingMemo struct {
	scores map[string]float64
	calls  int
}

func (m *countingMemo) GetOrCompute(text string, compute func(string) float64) float64 {
	if v, ok := m.scores[text]; ok {
		return v
	}
	m.calls++
	v := compute(text)
	m.scores[text] = v
	return v
}

func TestScorer_Score_RangeAndOrder(t *testing.T) {
	// Arrange
	texts := []string{
		"I love this, it is the BEST thing ever!!! :)",
		"This is terrible, awful, horrible and I hate it",
		"The store opens at nine.",
		"",
		"😡😡😡",
	}
	var comments []domain.Comment
	for _, text := range texts {
		comments = append(comments, domain.Comment{CommentText: sp(text)})
	}
	comments = append(comments, domain.Comment{CommenterName: sp("no text")})

	// Act
	records := NewScorer(nil).Score(comments)

	// Assert
	require.Len(t, records, len(texts), "comments without text are dropped")
	for i, r := range records {
		assert.Equal(t, texts[i], r.Text)
		assert.Equal(t, i, r.Row)
		assert.GreaterOrEqual(t, r.Sentiment, -1.0)
		assert.LessOrEqual(t, r.Sentiment, 1.0)
	}
	assert.Greater(t, records[0].Sentiment, 0.5)
	assert.Less(t, records[1].Sentiment, -0.5)
	assert.Equal(t, 0.0, records[2].Sentiment)
}

func TestScorer_UsesMemo(t *testing.T) {
	// Arrange
	memo := &countingMemo{scores: map[string]float64{}}
	s := NewScorer(memo)
	var comments []domain.Comment
	for i := 0; i < 5; i++ {
		comments = append(comments, domain.Comment{CommentText: sp("thanks")})
	}
	comments = append(comments, domain.Comment{CommentText: sp(fmt.Sprint("thanks ", 2))})

	// Act
	records := s.Score(comments)

	// Assert
	assert.Len(t, records, 6)
	assert.Equal(t, 2, memo.calls)
}
