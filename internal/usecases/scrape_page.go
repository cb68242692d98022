package usecases

import (
	"context"
	"fmt"
	"time"

	"pagepulse/internal/adapters/browser"
	"pagepulse/internal/adapters/scraper"
	"pagepulse/internal/domain"
	"pagepulse/pkg/log"
)

// FeedScroller loads a page feed back to a cutoff date.
type FeedScroller interface {
	ScrollUntil(ctx context.Context, s browser.Session, cutoff time.Time) (scraper.ScrollResult, error)
}

// FeedReader reads post links and the page name off a loaded feed.
type FeedReader interface {
	PostLinks(ctx context.Context, s browser.Session) ([]string, error)
	PageName(ctx context.Context, s browser.Session, pageURL string) string
}

// PostExtractor reads the post a session is showing.
type PostExtractor interface {
	Extract(ctx context.Context, s browser.Session, postURL, pageName string) (domain.Post, error)
}

// PostStore persists scraped links and posts.
type PostStore interface {
	SaveLinks(page string, links []string) error
	SavePost(page string, index int, post domain.Post) error
}

// ScrapeSummary reports what one run produced.
type ScrapeSummary struct {
	Page    string
	Scroll  scraper.ScrollResult
	Links   int
	Saved   int
	Failed  int
	Elapsed time.Duration
}

// ScrapePageUseCase scrapes every post of a page newer than a cutoff.
type ScrapePageUseCase struct {
	browser   browser.Browser
	scroller  FeedScroller
	feed      FeedReader
	extractor PostExtractor
	store     PostStore
}

// NewScrapePageUseCase creates a new ScrapePageUseCase.
func NewScrapePageUseCase(b browser.Browser, scroller FeedScroller, feed FeedReader, extractor PostExtractor, store PostStore) *ScrapePageUseCase {
	return &ScrapePageUseCase{
		browser:   b,
		scroller:  scroller,
		feed:      feed,
		extractor: extractor,
		store:     store,
	}
}

// Execute loads the feed, saves the post links, then visits and saves each
// post in turn. A post that fails to load is logged and skipped; posts
// already saved are kept if the run stops early.
func (uc *ScrapePageUseCase) Execute(ctx context.Context, pageURL string, cutoff time.Time) (ScrapeSummary, error) {
	start := time.Now()

	page, err := domain.PageNameFromURL(pageURL)
	if err != nil {
		return ScrapeSummary{}, fmt.Errorf("%s: %w", pageURL, err)
	}

	summary := ScrapeSummary{Page: page}
	ctx = log.WithFields(ctx, "page", page, "browser", uc.browser.Name())

	var (
		links    []string
		pageName string
	)
	err = uc.browser.WithSession(ctx, func(ctx context.Context, s browser.Session) error {
		if err := s.Navigate(ctx, pageURL); err != nil {
			return err
		}

		res, err := uc.scroller.ScrollUntil(ctx, s, cutoff)
		summary.Scroll = res
		if err != nil {
			return err
		}

		pageName = uc.feed.PageName(ctx, s, pageURL)
		links, err = uc.feed.PostLinks(ctx, s)
		return err
	})
	if err != nil {
		return summary, fmt.Errorf("load feed: %w", err)
	}

	summary.Links = len(links)
	if err := uc.store.SaveLinks(page, links); err != nil {
		return summary, fmt.Errorf("save post links: %w", err)
	}
	log.GlobalInfoCtx(ctx, "post links collected", "links", len(links), "page_name", pageName, "scrolls", summary.Scroll.Scrolls)

	for i, link := range links {
		if err := ctx.Err(); err != nil {
			summary.Elapsed = time.Since(start)
			return summary, err
		}

		postCtx := log.WithFields(ctx, "index", i, "post_link", link)

		var post domain.Post
		err := uc.browser.WithSession(postCtx, func(ctx context.Context, s browser.Session) error {
			if err := s.Navigate(ctx, link); err != nil {
				return err
			}
			p, err := uc.extractor.Extract(ctx, s, link, pageName)
			post = p
			return err
		})
		if err != nil {
			if ctx.Err() != nil {
				summary.Elapsed = time.Since(start)
				return summary, ctx.Err()
			}
			summary.Failed++
			log.GlobalErrorCtx(postCtx, "post scrape failed", "error", err)
			continue
		}

		if err := uc.store.SavePost(page, i, post); err != nil {
			summary.Elapsed = time.Since(start)
			return summary, fmt.Errorf("save post %d: %w", i, err)
		}
		summary.Saved++
		log.GlobalInfoCtx(postCtx, "post saved", "comments", len(post.CommentData), "progress", fmt.Sprintf("%d/%d", i+1, len(links)))
	}

	summary.Elapsed = time.Since(start)
	return summary, nil
}
