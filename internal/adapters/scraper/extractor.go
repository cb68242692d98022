package scraper

import (
	"context"
	"time"

	"pagepulse/internal/adapters/browser"
	"pagepulse/internal/domain"
	"pagepulse/pkg/log"
)

const (
	DefaultExpandPolls     = 80
	DefaultExpandPoll      = 100 * time.Millisecond
	DefaultLinkWait        = 10 * time.Second
	DefaultCommentWait     = 5 * time.Second
	defaultLoadingWait     = 10 * time.Second
	DefaultMaxExpandRounds = 1000
)

// Extractor reads one post page into a domain.Post. Elements that cannot be
// found leave their field nil; only driver failures are returned.
type Extractor struct {
	selectors *SelectorConfig
	excluded  map[string]struct{}

	ExpandPolls     int
	ExpandPoll      time.Duration
	LinkWait        time.Duration
	CommentWait     time.Duration
	MaxExpandRounds int
}

// NewExtractor drops top-level comments written by any of excludedNames,
// together with their replies.
func NewExtractor(selectors *SelectorConfig, excludedNames []string) *Extractor {
	excluded := make(map[string]struct{}, len(excludedNames))
	for _, name := range excludedNames {
		excluded[name] = struct{}{}
	}

	return &Extractor{
		selectors:       selectors,
		excluded:        excluded,
		ExpandPolls:     DefaultExpandPolls,
		ExpandPoll:      DefaultExpandPoll,
		LinkWait:        DefaultLinkWait,
		CommentWait:     DefaultCommentWait,
		MaxExpandRounds: DefaultMaxExpandRounds,
	}
}

// Extract reads the post the session is currently showing.
func (x *Extractor) Extract(ctx context.Context, s browser.Session, postURL, pageName string) (domain.Post, error) {
	sel := x.selectors.Current()
	post := browser.Document.Find(sel.Feed.Post).Nth(0)

	s.WaitVisible(ctx, post.Find(sel.Post.Link), x.LinkWait)

	p := domain.Post{
		PostLink:    postURL,
		PostType:    domain.ClassifyPostType(postURL),
		PageName:    pageName,
		CommentData: []domain.Comment{},
	}

	x.readBody(ctx, s, sel, post, &p)
	x.readAttachment(ctx, s, sel, post, &p)

	p.NumReactions = x.text(ctx, s, post.Find(sel.Post.Reactions))
	p.NumComments = x.text(ctx, s, post.Find(sel.Post.CommentsCount))
	p.NumShares = x.text(ctx, s, post.Find(sel.Post.Shares))

	if err := x.openComments(ctx, s, sel, post); err != nil {
		return p, err
	}
	if err := x.expandComments(ctx, s, sel, post); err != nil {
		return p, err
	}

	comments := post.Find(sel.Comments.Comment)
	n, err := s.Count(ctx, comments)
	if err != nil {
		n = 0
	}
	for i := 0; i < n; i++ {
		c, keep := x.comment(ctx, s, sel, comments.Nth(i), false)
		if keep {
			p.CommentData = append(p.CommentData, c)
		}
	}

	if current, err := s.CurrentURL(ctx); err == nil && current != "" {
		p.PostLink = current
	}

	log.GlobalDebugCtx(ctx, "post extracted",
		"post_type", string(p.PostType),
		"comments", len(p.CommentData),
		"is_video", p.IsVideo,
		"is_link", p.IsLink,
	)

	return p, nil
}

// readBody fills the date and text. Notes keep them under their own markup.
func (x *Extractor) readBody(ctx context.Context, s browser.Session, sel Selectors, post browser.Element, p *domain.Post) {
	if p.PostType == domain.PostTypeNotes {
		p.DateText = x.text(ctx, s, post.Find(sel.Post.NoteDate))
		p.PostText = cleanPtr(x.text(ctx, s, post.Find(sel.Post.NoteBody)))
	} else {
		p.DateText = x.attr(ctx, s, post.Find(sel.Feed.Timestamp), "title")
		p.PostText = cleanPtr(x.text(ctx, s, post.Find(sel.Post.Message)))
	}

	if p.DateText != nil {
		if t, err := domain.ParseDate(*p.DateText); err == nil {
			p.Date = &t
		}
	}
}

// readAttachment sets is_video, or else is_link with its destination.
func (x *Extractor) readAttachment(ctx context.Context, s browser.Session, sel Selectors, post browser.Element, p *domain.Post) {
	if x.exists(ctx, s, post.Find(sel.Post.Video)) {
		p.IsVideo = true
		return
	}

	if dest := x.attr(ctx, s, post.Find(sel.Post.AttachmentLink), "href"); dest != nil {
		p.IsLink = true
		p.LinkDestination = dest
	}
}

// openComments clicks the comments control once when no comment is shown
// yet, then waits for the first comment.
func (x *Extractor) openComments(ctx context.Context, s browser.Session, sel Selectors, post browser.Element) error {
	comments := post.Find(sel.Comments.Comment)

	if !x.exists(ctx, s, comments) {
		if _, err := s.Click(ctx, post.Find(sel.Post.Link)); err != nil {
			log.GlobalDebugCtx(ctx, "open comments click failed", "error", err)
		}
	}

	s.WaitVisible(ctx, comments, x.CommentWait)

	// Two passes settle lazily rendered comment threads.
	for i := 0; i < 2; i++ {
		if err := s.ScrollToBottom(ctx); err != nil {
			return err
		}
	}
	return nil
}

// expandComments clicks every "to expand" marker until none are left or a
// click pass no longer changes how many are shown.
func (x *Extractor) expandComments(ctx context.Context, s browser.Session, sel Selectors, post browser.Element) error {
	markers := post.Find(sel.Comments.ToExpand)
	loading := browser.Document.Find(sel.Feed.Loading)

	for round := 0; round < x.MaxExpandRounds; round++ {
		before, err := s.Count(ctx, markers)
		if err != nil || before < 1 {
			break
		}

		s.WaitGone(ctx, loading, defaultLoadingWait)

		clicked, err := s.ClickAll(ctx, markers)
		if err != nil {
			log.GlobalDebugCtx(ctx, "expand click failed", "error", err)
		} else if clicked == 0 {
			break
		}

		changed, err := x.waitCountChange(ctx, s, markers, before)
		if err != nil {
			return err
		}
		if !changed {
			break
		}
	}

	if _, err := s.ClickAll(ctx, post.Find(sel.Comments.MoreReplies)); err != nil {
		log.GlobalDebugCtx(ctx, "more replies click failed", "error", err)
	}
	return nil
}

// waitCountChange polls until the number of nodes matched by el differs from
// before, at most ExpandPolls times.
func (x *Extractor) waitCountChange(ctx context.Context, s browser.Session, el browser.Element, before int) (bool, error) {
	for i := 0; i < x.ExpandPolls; i++ {
		if n, err := s.Count(ctx, el); err == nil && n != before {
			return true, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(x.ExpandPoll):
		}
	}
	return false, nil
}

func (x *Extractor) text(ctx context.Context, s browser.Session, el browser.Element) *string {
	v, err := s.Text(ctx, el)
	if err != nil {
		return nil
	}
	return v
}

func (x *Extractor) attr(ctx context.Context, s browser.Session, el browser.Element, name string) *string {
	v, err := s.Attribute(ctx, el, name)
	if err != nil {
		return nil
	}
	return v
}

func (x *Extractor) exists(ctx context.Context, s browser.Session, el browser.Element) bool {
	n, err := s.Count(ctx, el)
	return err == nil && n > 0
}
