package usecases_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"pagepulse/internal/adapters/browser"
	"pagepulse/internal/adapters/scraper"
	"pagepulse/internal/analysis"
	"pagepulse/internal/domain"
	"pagepulse/internal/usecases"
)

// MockSession records navigation and fails on configured URLs.
type MockSession struct {
	url      string
	failURLs map[string]bool
}

func (m *MockSession) Navigate(ctx context.Context, url string) error {
	if m.failURLs[url] {
		return domain.ErrNavigationFailed
	}
	m.url = url
	return nil
}
func (m *MockSession) CurrentURL(ctx context.Context) (string, error) { return m.url, nil }
func (m *MockSession) ScrollToBottom(ctx context.Context) error       { return nil }
func (m *MockSession) Count(ctx context.Context, el browser.Element) (int, error) {
	return 0, nil
}
func (m *MockSession) Attribute(ctx context.Context, el browser.Element, name string) (*string, error) {
	return nil, nil
}
func (m *MockSession) Text(ctx context.Context, el browser.Element) (*string, error) {
	return nil, nil
}
func (m *MockSession) Click(ctx context.Context, el browser.Element) (bool, error) { return false, nil }
func (m *MockSession) ClickAll(ctx context.Context, el browser.Element) (int, error) {
	return 0, nil
}
func (m *MockSession) WaitVisible(ctx context.Context, el browser.Element, timeout time.Duration) bool {
	return false
}
func (m *MockSession) WaitGone(ctx context.Context, el browser.Element, timeout time.Duration) bool {
	return true
}

// MockBrowser hands out one shared MockSession.
type MockBrowser struct {
	session  *MockSession
	sessions int
}

func (m *MockBrowser) WithSession(ctx context.Context, fn func(ctx context.Context, s browser.Session) error) error {
	m.sessions++
	return fn(ctx, m.session)
}
func (m *MockBrowser) Name() string { return "mock" }
func (m *MockBrowser) Close()       {}

type MockScroller struct {
	cutoff time.Time
	err    error
}

func (m *MockScroller) ScrollUntil(ctx context.Context, s browser.Session, cutoff time.Time) (scraper.ScrollResult, error) {
	m.cutoff = cutoff
	return scraper.ScrollResult{Scrolls: 3, Reached: true}, m.err
}

type MockFeed struct {
	links []string
}

func (m *MockFeed) PostLinks(ctx context.Context, s browser.Session) ([]string, error) {
	return m.links, nil
}
func (m *MockFeed) PageName(ctx context.Context, s browser.Session, pageURL string) string {
	return "Acme Corp"
}

type MockExtractor struct{}

func (m *MockExtractor) Extract(ctx context.Context, s browser.Session, postURL, pageName string) (domain.Post, error) {
	return domain.Post{PostLink: postURL, PageName: pageName, PostType: domain.ClassifyPostType(postURL)}, nil
}

// MockStore keeps saved posts in memory.
type MockStore struct {
	page    string
	links   []string
	posts   map[int]domain.Post
	saveErr error
}

func NewMockStore() *MockStore {
	return &MockStore{posts: map[int]domain.Post{}}
}

func (m *MockStore) SaveLinks(page string, links []string) error {
	m.page = page
	m.links = links
	return nil
}

func (m *MockStore) SavePost(page string, index int, post domain.Post) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.posts[index] = post
	return nil
}

// ScrapePageUseCase tests

func newScrape(b *MockBrowser, links []string, store *MockStore) *usecases.ScrapePageUseCase {
	return usecases.NewScrapePageUseCase(b, &MockScroller{}, &MockFeed{links: links}, &MockExtractor{}, store)
}

func TestScrapePageUseCase_Execute_SavesEveryPost(t *testing.T) {
	// Arrange
	b := &MockBrowser{session: &MockSession{}}
	store := NewMockStore()
	links := []string{"https://fb.com/acme/posts/1", "https://fb.com/acme/videos/2"}
	uc := newScrape(b, links, store)

	// Act
	summary, err := uc.Execute(context.Background(), "https://www.facebook.com/acme/", time.Now())

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.page != "acme" {
		t.Errorf("page: got %q, want acme", store.page)
	}
	if summary.Saved != 2 || summary.Failed != 0 || summary.Links != 2 {
		t.Errorf("summary: got %+v", summary)
	}
	if store.posts[1].PostType != domain.PostTypeVideos {
		t.Errorf("post 1 type: got %v", store.posts[1].PostType)
	}
	if store.posts[0].PageName != "Acme Corp" {
		t.Errorf("page name: got %q", store.posts[0].PageName)
	}
	if b.sessions != 3 {
		t.Errorf("sessions: got %d, want 3 (feed + one per post)", b.sessions)
	}
}

func TestScrapePageUseCase_Execute_PageLoadFailureSkipsPost(t *testing.T) {
	// Arrange
	b := &MockBrowser{session: &MockSession{failURLs: map[string]bool{"https://fb.com/acme/posts/1": true}}}
	store := NewMockStore()
	uc := newScrape(b, []string{"https://fb.com/acme/posts/1", "https://fb.com/acme/posts/2"}, store)

	// Act
	summary, err := uc.Execute(context.Background(), "https://www.facebook.com/acme", time.Now())

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Failed != 1 || summary.Saved != 1 {
		t.Errorf("summary: got %+v", summary)
	}
	if _, ok := store.posts[1]; !ok {
		t.Error("post 1 keeps its index")
	}
}

func TestScrapePageUseCase_Execute_InvalidPageURL(t *testing.T) {
	// Arrange
	uc := newScrape(&MockBrowser{session: &MockSession{}}, nil, NewMockStore())

	// Act
	_, err := uc.Execute(context.Background(), "not a url", time.Now())

	// Assert
	if !errors.Is(err, domain.ErrInvalidPageURL) {
		t.Errorf("got %v, want ErrInvalidPageURL", err)
	}
}

func TestScrapePageUseCase_Execute_FeedLoadFailure(t *testing.T) {
	// Arrange
	pageURL := "https://www.facebook.com/acme"
	b := &MockBrowser{session: &MockSession{failURLs: map[string]bool{pageURL: true}}}
	store := NewMockStore()
	uc := newScrape(b, []string{"x"}, store)

	// Act
	_, err := uc.Execute(context.Background(), pageURL, time.Now())

	// Assert
	if !errors.Is(err, domain.ErrNavigationFailed) {
		t.Errorf("got %v, want ErrNavigationFailed", err)
	}
	if store.links != nil {
		t.Error("links must not be saved when the feed fails")
	}
}

func TestScrapePageUseCase_Execute_StoreFailureAborts(t *testing.T) {
	// Arrange
	store := NewMockStore()
	store.saveErr = errors.New("disk full")
	uc := newScrape(&MockBrowser{session: &MockSession{}}, []string{"https://fb.com/acme/posts/1"}, store)

	// Act
	_, err := uc.Execute(context.Background(), "https://www.facebook.com/acme", time.Now())

	// Assert
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("got %v, want disk full", err)
	}
}

func TestScrapePageUseCase_Execute_CancelledStopsBeforeNextPost(t *testing.T) {
	// Arrange
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := NewMockStore()
	uc := newScrape(&MockBrowser{session: &MockSession{}}, []string{"https://fb.com/acme/posts/1"}, store)

	// Act
	_, err := uc.Execute(ctx, "https://www.facebook.com/acme", time.Now())

	// Assert
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
	if len(store.posts) != 0 {
		t.Errorf("posts: got %d, want 0", len(store.posts))
	}
}

// AnalyzeDatasetsUseCase tests

type MockLoader struct {
	datasets []domain.Dataset
	err      error
}

func (m *MockLoader) LoadDatasets() ([]domain.Dataset, error) { return m.datasets, m.err }

// FixedScorer scores every comment 0.5 and drops those without text.
type FixedScorer struct{}

func (FixedScorer) Score(comments []domain.Comment) []domain.SentimentRecord {
	var out []domain.SentimentRecord
	for _, c := range comments {
		if c.CommentText == nil {
			continue
		}
		out = append(out, domain.SentimentRecord{Row: len(out), Text: *c.CommentText, CommenterName: c.CommenterName, Sentiment: 0.5})
	}
	return out
}

// MockSink records what would be written.
type MockSink struct {
	full   map[string][]domain.SentimentRecord
	pairs  []string
	series []analysis.Series
	failOn string
}

func NewMockSink() *MockSink {
	return &MockSink{full: map[string][]domain.SentimentRecord{}}
}

func (m *MockSink) path(name string) (string, error) {
	if m.failOn != "" && strings.Contains(name, m.failOn) {
		return "", errors.New("write failed: " + name)
	}
	return "results/" + name, nil
}

func (m *MockSink) FullSentiments(d string, r []domain.SentimentRecord) (string, error) {
	m.full[d] = r
	return m.path(d + "_full")
}
func (m *MockSink) TopComments(d string, k int, r []domain.SentimentRecord) (string, error) {
	return m.path(d + "_top")
}
func (m *MockSink) BottomComments(d string, k int, r []domain.SentimentRecord) (string, error) {
	return m.path(d + "_bottom")
}
func (m *MockSink) TopCommenters(d string, k int, c []analysis.CommenterCount) (string, error) {
	return m.path(d + "_commenters")
}
func (m *MockSink) TopicWords(d string, n int, topics []analysis.Topic) (string, error) {
	return m.path(d + "_topics")
}
func (m *MockSink) RankDifferences(a, b string, k int, d []analysis.RankDiff) (string, error) {
	m.pairs = append(m.pairs, a+"_vs_"+b)
	return m.path(a + "_vs_" + b)
}
func (m *MockSink) SentimentHistogram(s []analysis.Series) (string, error) {
	m.series = s
	return m.path("sentiments")
}

func sp(s string) *string { return &s }

func datasetWithSelfComment(name string) domain.Dataset {
	replies := []domain.Comment{{CommenterName: sp("Zed"), CommentText: sp("reply")}}
	return domain.Dataset{Name: name, Posts: []domain.Post{{
		PageName: "Page " + name,
		CommentData: []domain.Comment{
			{CommenterName: sp("Ann"), CommentText: sp("nice"), Replies: &replies},
			{CommenterName: sp("Page " + name), CommentText: sp("thanks"), Replies: &[]domain.Comment{}},
			{CommenterName: sp("Bob"), CommentText: sp("meh"), Replies: &[]domain.Comment{}},
		},
	}}}
}

func analyzeOptions() usecases.AnalyzeOptions {
	topics := analysis.DefaultTopicModel()
	topics.Iterations = 5
	return usecases.AnalyzeOptions{
		Flatten:       analysis.FlattenOptions{Policy: analysis.PolicyPageName},
		TopComments:   20,
		TopCommenters: 20,
		Topics:        topics,
		LexicalTopK:   500,
	}
}

func TestAnalyzeDatasetsUseCase_Execute_WritesAllReports(t *testing.T) {
	// Arrange
	loader := &MockLoader{datasets: []domain.Dataset{
		datasetWithSelfComment("a"),
		datasetWithSelfComment("b"),
		datasetWithSelfComment("c"),
	}}
	sink := NewMockSink()
	uc := usecases.NewAnalyzeDatasetsUseCase(loader, FixedScorer{}, sink, analyzeOptions())

	// Act
	summary, err := uc.Execute(context.Background())

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summary.Datasets) != 3 {
		t.Errorf("datasets: got %v", summary.Datasets)
	}
	// 5 per dataset + histogram + 3 pairs
	if len(summary.Files) != 19 {
		t.Errorf("files: got %d, want 19", len(summary.Files))
	}
	wantPairs := []string{"a_vs_b", "a_vs_c", "b_vs_c"}
	if strings.Join(sink.pairs, ",") != strings.Join(wantPairs, ",") {
		t.Errorf("pairs: got %v, want %v", sink.pairs, wantPairs)
	}
	if len(sink.series) != 3 {
		t.Errorf("series: got %d, want 3", len(sink.series))
	}
}

func TestAnalyzeDatasetsUseCase_Execute_ExcludesSelfComments(t *testing.T) {
	// Arrange
	sink := NewMockSink()
	loader := &MockLoader{datasets: []domain.Dataset{datasetWithSelfComment("a")}}
	uc := usecases.NewAnalyzeDatasetsUseCase(loader, FixedScorer{}, sink, analyzeOptions())

	// Act
	_, err := uc.Execute(context.Background())

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got []string
	for _, r := range sink.full["a"] {
		got = append(got, *r.CommenterName)
	}
	if strings.Join(got, ",") != "Ann,Zed,Bob" {
		t.Errorf("records: got %v, want [Ann Zed Bob]", got)
	}
}

func TestAnalyzeDatasetsUseCase_Execute_LoadError(t *testing.T) {
	// Arrange
	loader := &MockLoader{err: domain.ErrMalformedPost}
	uc := usecases.NewAnalyzeDatasetsUseCase(loader, FixedScorer{}, NewMockSink(), analyzeOptions())

	// Act
	_, err := uc.Execute(context.Background())

	// Assert
	if !errors.Is(err, domain.ErrMalformedPost) {
		t.Errorf("got %v, want ErrMalformedPost", err)
	}
}

func TestAnalyzeDatasetsUseCase_Execute_WriteErrorAborts(t *testing.T) {
	// Arrange
	sink := NewMockSink()
	sink.failOn = "a_topics"
	loader := &MockLoader{datasets: []domain.Dataset{datasetWithSelfComment("a"), datasetWithSelfComment("b")}}
	uc := usecases.NewAnalyzeDatasetsUseCase(loader, FixedScorer{}, sink, analyzeOptions())

	// Act
	summary, err := uc.Execute(context.Background())

	// Assert
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := sink.full["b"]; ok {
		t.Error("dataset b must not be analysed after a failure")
	}
	if len(summary.Files) != 4 {
		t.Errorf("files: got %d, want 4 written before the failure", len(summary.Files))
	}
}
