package scraper

import (
	"context"
	"time"

	"pagepulse/internal/adapters/browser"
	"pagepulse/internal/domain"
	"pagepulse/pkg/log"
)

const (
	DefaultMaxScrolls     = 1000
	DefaultLoadingTimeout = 7 * time.Second
	DefaultScrollSettle   = 100 * time.Millisecond
)

// ScrollResult describes how far back the feed was loaded.
type ScrollResult struct {
	Scrolls  int
	LastDate *time.Time
	// Reached is true when the last dated post is at or before the cutoff.
	Reached bool
}

// ScrollController loads older posts until the feed reaches a cutoff date.
type ScrollController struct {
	selectors      *SelectorConfig
	MaxScrolls     int
	LoadingTimeout time.Duration
	Settle         time.Duration
}

func NewScrollController(selectors *SelectorConfig, maxScrolls int) *ScrollController {
	if maxScrolls <= 0 {
		maxScrolls = DefaultMaxScrolls
	}
	return &ScrollController{
		selectors:      selectors,
		MaxScrolls:     maxScrolls,
		LoadingTimeout: DefaultLoadingTimeout,
		Settle:         DefaultScrollSettle,
	}
}

// ScrollUntil scrolls the feed until the last dated post is not after
// cutoff. Hitting MaxScrolls is not an error: the feed loaded so far is used.
func (c *ScrollController) ScrollUntil(ctx context.Context, s browser.Session, cutoff time.Time) (ScrollResult, error) {
	sel := c.selectors.Current()
	var res ScrollResult

	for {
		if err := s.ScrollToBottom(ctx); err != nil {
			return res, err
		}
		res.Scrolls++

		select {
		case <-ctx.Done():
			return res, ctx.Err()
		case <-time.After(c.Settle):
		}

		s.WaitGone(ctx, browser.Document.Find(sel.Feed.Loading), c.LoadingTimeout)

		last, ok := c.lastPostDate(ctx, s, sel)
		if !ok {
			log.GlobalWarnCtx(ctx, "no dated post in feed, stopping scroll", "scrolls", res.Scrolls)
			return res, nil
		}
		res.LastDate = &last

		if !last.After(cutoff) {
			res.Reached = true
			log.GlobalInfoCtx(ctx, "cutoff reached", "scrolls", res.Scrolls, "last_date", last.Format(time.DateOnly))
			return res, nil
		}

		if res.Scrolls >= c.MaxScrolls {
			log.GlobalWarnCtx(ctx, "scroll ceiling hit before cutoff",
				"scrolls", res.Scrolls,
				"last_date", last.Format(time.DateOnly),
				"cutoff", cutoff.Format(time.DateOnly),
			)
			return res, nil
		}

		log.GlobalDebugCtx(ctx, "scrolled", "scrolls", res.Scrolls, "last_date", last.Format(time.DateOnly))
	}
}

// lastPostDate walks back from the last loaded post to the first one whose
// timestamp can be read and parsed. The walk is bounded by the number of
// loaded posts.
func (c *ScrollController) lastPostDate(ctx context.Context, s browser.Session, sel Selectors) (time.Time, bool) {
	posts := browser.Document.Find(sel.Feed.Post)

	n, err := s.Count(ctx, posts)
	if err != nil {
		return time.Time{}, false
	}

	for k := 0; k < n; k++ {
		title, err := s.Attribute(ctx, posts.FromEnd(k).Find(sel.Feed.Timestamp), "title")
		if err != nil || title == nil {
			continue
		}
		t, err := domain.ParseDate(*title)
		if err != nil {
			continue
		}
		return t, true
	}

	return time.Time{}, false
}
