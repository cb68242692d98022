package scraper

import (
	"context"
	"strings"

	"pagepulse/internal/adapters/browser"
	"pagepulse/internal/domain"
)

// CollectPostLinks reads one link per loaded post, in feed order, without
// duplicates. The comments-count anchor is preferred; posts without one fall
// back to the anchor around the timestamp.
func CollectPostLinks(ctx context.Context, s browser.Session, selectors *SelectorConfig) ([]string, error) {
	sel := selectors.Current()
	posts := browser.Document.Find(sel.Feed.Post)

	n, err := s.Count(ctx, posts)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, n)
	links := make([]string, 0, n)

	for i := 0; i < n; i++ {
		post := posts.Nth(i)

		href, _ := s.Attribute(ctx, post.Find(sel.Post.Link), "href")
		if href == nil || *href == "" {
			href, _ = s.Attribute(ctx, post.Find(sel.Post.LinkFallback), "href")
		}
		if href == nil || *href == "" {
			continue
		}

		link := strings.TrimSpace(*href)
		if seen[link] {
			continue
		}
		seen[link] = true
		links = append(links, link)
	}

	return links, nil
}

// PageDisplayName reads the page title shown on the feed. It falls back to
// the URL segment when the title cannot be read.
func PageDisplayName(ctx context.Context, s browser.Session, selectors *SelectorConfig, pageURL string) string {
	sel := selectors.Current()

	if title, err := s.Text(ctx, browser.Document.Find(sel.Feed.PageTitle)); err == nil && title != nil && *title != "" {
		return *title
	}

	name, err := domain.PageNameFromURL(pageURL)
	if err != nil {
		return ""
	}
	return name
}

// Feed reads a loaded page feed.
type Feed struct {
	selectors *SelectorConfig
}

func NewFeed(selectors *SelectorConfig) *Feed {
	return &Feed{selectors: selectors}
}

func (f *Feed) PostLinks(ctx context.Context, s browser.Session) ([]string, error) {
	return CollectPostLinks(ctx, s, f.selectors)
}

func (f *Feed) PageName(ctx context.Context, s browser.Session, pageURL string) string {
	return PageDisplayName(ctx, s, f.selectors, pageURL)
}
