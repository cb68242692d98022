package usecases

import (
	"context"
	"fmt"

	"pagepulse/internal/analysis"
	"pagepulse/internal/domain"
	"pagepulse/pkg/log"
)

// DatasetLoader reads every scraped dataset.
type DatasetLoader interface {
	LoadDatasets() ([]domain.Dataset, error)
}

// SentimentScorer scores comments that have text.
type SentimentScorer interface {
	Score(comments []domain.Comment) []domain.SentimentRecord
}

// ReportSink writes analysis results and returns the written path.
type ReportSink interface {
	FullSentiments(dataset string, records []domain.SentimentRecord) (string, error)
	TopComments(dataset string, k int, records []domain.SentimentRecord) (string, error)
	BottomComments(dataset string, k int, records []domain.SentimentRecord) (string, error)
	TopCommenters(dataset string, k int, counts []analysis.CommenterCount) (string, error)
	TopicWords(dataset string, topWords int, topics []analysis.Topic) (string, error)
	RankDifferences(a, b string, topK int, diffs []analysis.RankDiff) (string, error)
	SentimentHistogram(series []analysis.Series) (string, error)
}

type AnalyzeOptions struct {
	Flatten       analysis.FlattenOptions
	TopComments   int
	TopCommenters int
	Topics        analysis.TopicModel
	LexicalTopK   int
}

// AnalysisSummary lists the files written by a run.
type AnalysisSummary struct {
	Datasets []string
	Files    []string
}

// AnalyzeDatasetsUseCase produces every report for every dataset, then
// compares each pair of datasets.
type AnalyzeDatasetsUseCase struct {
	loader DatasetLoader
	scorer SentimentScorer
	sink   ReportSink
	opts   AnalyzeOptions
}

// NewAnalyzeDatasetsUseCase creates a new AnalyzeDatasetsUseCase.
func NewAnalyzeDatasetsUseCase(loader DatasetLoader, scorer SentimentScorer, sink ReportSink, opts AnalyzeOptions) *AnalyzeDatasetsUseCase {
	return &AnalyzeDatasetsUseCase{loader: loader, scorer: scorer, sink: sink, opts: opts}
}

// Execute fails on the first unreadable dataset or unwritable report.
func (uc *AnalyzeDatasetsUseCase) Execute(ctx context.Context) (AnalysisSummary, error) {
	var summary AnalysisSummary

	datasets, err := uc.loader.LoadDatasets()
	if err != nil {
		return summary, fmt.Errorf("load datasets: %w", err)
	}

	ranked := make(map[string][]string, len(datasets))
	series := make([]analysis.Series, 0, len(datasets))

	for _, ds := range datasets {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		dsCtx := log.WithFields(ctx, "dataset", ds.Name)

		records, files, err := uc.analyze(dsCtx, ds)
		summary.Files = append(summary.Files, files...)
		if err != nil {
			return summary, fmt.Errorf("dataset %s: %w", ds.Name, err)
		}

		texts := make([]string, len(records))
		for i, r := range records {
			texts[i] = r.Text
		}
		ranked[ds.Name] = analysis.RankWords(texts, uc.opts.LexicalTopK)
		series = append(series, analysis.Series{Name: ds.Name, Values: analysis.Sentiments(records)})
		summary.Datasets = append(summary.Datasets, ds.Name)
	}

	path, err := uc.sink.SentimentHistogram(series)
	if err != nil {
		return summary, err
	}
	summary.Files = append(summary.Files, path)

	for _, pair := range analysis.Pairs(summary.Datasets) {
		diffs := analysis.CompareRanks(ranked[pair.A], ranked[pair.B])
		path, err := uc.sink.RankDifferences(pair.A, pair.B, uc.opts.LexicalTopK, diffs)
		if err != nil {
			return summary, err
		}
		summary.Files = append(summary.Files, path)
		log.GlobalDebugCtx(ctx, "datasets compared", "a", pair.A, "b", pair.B, "words", len(diffs))
	}

	log.GlobalInfoCtx(ctx, "analysis complete", "datasets", len(summary.Datasets), "files", len(summary.Files))
	return summary, nil
}

// analyze writes the per-dataset reports and returns the scored records.
func (uc *AnalyzeDatasetsUseCase) analyze(ctx context.Context, ds domain.Dataset) ([]domain.SentimentRecord, []string, error) {
	var files []string
	collect := func(path string, err error) error {
		if err == nil {
			files = append(files, path)
		}
		return err
	}

	comments := analysis.Flatten(ds, uc.opts.Flatten)
	records := uc.scorer.Score(comments)

	if mean, ok := analysis.MeanSentiment(records); ok {
		log.GlobalInfoCtx(ctx, "average sentiment", "mean", mean, "comments", len(records), "posts", len(ds.Posts))
	} else {
		log.GlobalWarnCtx(ctx, "dataset has no scored comments", "posts", len(ds.Posts))
	}

	if err := collect(uc.sink.FullSentiments(ds.Name, records)); err != nil {
		return records, files, err
	}

	top, bottom := analysis.TopAndBottom(records, uc.opts.TopComments)
	if err := collect(uc.sink.TopComments(ds.Name, uc.opts.TopComments, top)); err != nil {
		return records, files, err
	}
	if err := collect(uc.sink.BottomComments(ds.Name, uc.opts.TopComments, bottom)); err != nil {
		return records, files, err
	}

	commenters := analysis.TopCommenters(records, uc.opts.TopCommenters)
	if err := collect(uc.sink.TopCommenters(ds.Name, uc.opts.TopCommenters, commenters)); err != nil {
		return records, files, err
	}

	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Text
	}
	topics := uc.opts.Topics.Fit(texts)
	if err := collect(uc.sink.TopicWords(ds.Name, uc.opts.Topics.TopWords, topics)); err != nil {
		return records, files, err
	}

	return records, files, nil
}
