// Package report writes analysis results under the results directory.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"pagepulse/internal/analysis"
	"pagepulse/internal/domain"
)

// Writer writes result files into one directory.
type Writer struct {
	dir string
}

// NewWriter creates dir when missing.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create results dir: %w", err)
	}
	return &Writer{dir: dir}, nil
}

var sentimentHeader = []string{"", "text", "commenter_name", "has_image", "reactions", "sentiment"}

// FullSentiments writes every scored comment of a dataset.
func (w *Writer) FullSentiments(dataset string, records []domain.SentimentRecord) (string, error) {
	return w.sentiments(dataset+"_full_sent_df.csv", records)
}

// TopComments writes the highest scored comments.
func (w *Writer) TopComments(dataset string, k int, records []domain.SentimentRecord) (string, error) {
	return w.sentiments(fmt.Sprintf("%s_top_%d_comments.csv", dataset, k), records)
}

// BottomComments writes the lowest scored comments.
func (w *Writer) BottomComments(dataset string, k int, records []domain.SentimentRecord) (string, error) {
	return w.sentiments(fmt.Sprintf("%s_bottom_%d_comments.csv", dataset, k), records)
}

func (w *Writer) sentiments(name string, records []domain.SentimentRecord) (string, error) {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			strconv.Itoa(r.Row),
			r.Text,
			optional(r.CommenterName),
			strconv.FormatBool(r.HasImage),
			optional(r.Reactions),
			strconv.FormatFloat(r.Sentiment, 'f', -1, 64),
		})
	}
	return w.write(name, sentimentHeader, rows)
}

// TopCommenters writes comment counts per commenter.
func (w *Writer) TopCommenters(dataset string, k int, counts []analysis.CommenterCount) (string, error) {
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Name, strconv.Itoa(c.Count)})
	}
	return w.write(fmt.Sprintf("%s_top_%d_commenters.csv", dataset, k), []string{"commenter_name", "count"}, rows)
}

// TopicWords writes one row per topic with its top words.
func (w *Writer) TopicWords(dataset string, topWords int, topics []analysis.Topic) (string, error) {
	header := []string{"topic"}
	for i := 1; i <= topWords; i++ {
		header = append(header, "word_"+strconv.Itoa(i))
	}

	rows := make([][]string, 0, len(topics))
	for _, t := range topics {
		row := make([]string, len(header))
		row[0] = "Topic " + strconv.Itoa(t.Index)
		copy(row[1:], t.Words)
		rows = append(rows, row)
	}
	return w.write(dataset+"_characteristic_topic_words.csv", header, rows)
}

// RankDifferences writes the word rank comparison of two datasets.
func (w *Writer) RankDifferences(a, b string, topK int, diffs []analysis.RankDiff) (string, error) {
	rows := make([][]string, 0, len(diffs))
	for _, d := range diffs {
		rows = append(rows, []string{d.Word, strconv.Itoa(d.Diff)})
	}
	name := fmt.Sprintf("%s_vs_%s_most_popular_%d_words.csv", a, b, topK)
	return w.write(name, []string{"word", "rank_difference"}, rows)
}

func (w *Writer) write(name string, header []string, rows [][]string) (string, error) {
	return w.replace(name, func(out io.Writer) error {
		cw := csv.NewWriter(out)
		if err := cw.Write(header); err != nil {
			return err
		}
		return cw.WriteAll(rows)
	})
}

// replace fills a temp file in the results dir and renames it over name, so
// a failed or interrupted write keeps the previous file intact.
func (w *Writer) replace(name string, fill func(out io.Writer) error) (string, error) {
	path := filepath.Join(w.dir, name)

	tmp, err := os.CreateTemp(w.dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if err := fill(tmp); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename %s: %w", name, err)
	}
	return path, nil
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
