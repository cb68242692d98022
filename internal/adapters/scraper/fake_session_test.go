package scraper

import (
	"context"
	"sync"
	"time"

	"pagepulse/internal/adapters/browser"
)

// fakeSession answers lookups from maps keyed by the exact XPath the code
// under test composes. Hooks let a test change the page on scroll or click.
type fakeSession struct {
	mu sync.Mutex

	url    string
	counts map[string]int
	attrs  map[string]string // "<xpath>@<name>"
	texts  map[string]string

	scrolls  int
	clicked  []string
	onScroll func(f *fakeSession)
	onClick  func(f *fakeSession, xpath string) int
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		counts: map[string]int{},
		attrs:  map[string]string{},
		texts:  map[string]string{},
	}
}

func (f *fakeSession) setAttr(el browser.Element, name, value string) {
	f.attrs[el.XPath+"@"+name] = value
	if f.counts[el.XPath] == 0 {
		f.counts[el.XPath] = 1
	}
}

func (f *fakeSession) setText(el browser.Element, value string) {
	f.texts[el.XPath] = value
	if f.counts[el.XPath] == 0 {
		f.counts[el.XPath] = 1
	}
}

func (f *fakeSession) Navigate(_ context.Context, url string) error {
	f.url = url
	return nil
}

func (f *fakeSession) CurrentURL(context.Context) (string, error) { return f.url, nil }

func (f *fakeSession) ScrollToBottom(context.Context) error {
	f.mu.Lock()
	f.scrolls++
	hook := f.onScroll
	f.mu.Unlock()

	if hook != nil {
		hook(f)
	}
	return nil
}

func (f *fakeSession) Count(_ context.Context, el browser.Element) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[el.XPath], nil
}

func (f *fakeSession) Attribute(_ context.Context, el browser.Element, name string) (*string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.attrs[el.XPath+"@"+name]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (f *fakeSession) Text(_ context.Context, el browser.Element) (*string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.texts[el.XPath]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (f *fakeSession) Click(_ context.Context, el browser.Element) (bool, error) {
	f.mu.Lock()
	f.clicked = append(f.clicked, el.XPath)
	found := f.counts[el.XPath] > 0
	f.mu.Unlock()
	return found, nil
}

func (f *fakeSession) ClickAll(_ context.Context, el browser.Element) (int, error) {
	f.mu.Lock()
	f.clicked = append(f.clicked, el.XPath)
	hook := f.onClick
	n := f.counts[el.XPath]
	f.mu.Unlock()

	if hook != nil {
		return hook(f, el.XPath), nil
	}
	return n, nil
}

func (f *fakeSession) WaitVisible(ctx context.Context, el browser.Element, _ time.Duration) bool {
	n, _ := f.Count(ctx, el)
	return n > 0
}

func (f *fakeSession) WaitGone(ctx context.Context, el browser.Element, _ time.Duration) bool {
	n, _ := f.Count(ctx, el)
	return n == 0
}

// testSelectors keeps XPaths short so expectations stay readable.
func testSelectors() *SelectorConfig {
	var s Selectors
	s.Feed.Post = ".//post"
	s.Feed.Loading = "//loading"
	s.Feed.Timestamp = ".//ts"
	s.Feed.PageTitle = "//title"

	s.Post.Link = ".//comments-link"
	s.Post.LinkFallback = ".//ts/.."
	s.Post.Message = ".//message"
	s.Post.NoteDate = ".//note-date"
	s.Post.NoteBody = ".//note-body"
	s.Post.Video = ".//video"
	s.Post.AttachmentLink = ".//attachment"
	s.Post.Reactions = ".//reactions"
	s.Post.CommentsCount = ".//comments-count"
	s.Post.Shares = ".//shares"

	s.Comments.Comment = ".//comment"
	s.Comments.Reply = "../..//reply"
	s.Comments.ToExpand = ".//expand"
	s.Comments.MoreReplies = ".//more-replies"
	s.Comments.Text = ".//text"
	s.Comments.Image = ".//image"
	s.Comments.Reactions = ".//likes"
	s.Comments.Commenter = ".//name"

	return NewSelectorConfig(s)
}
