package scraper

import (
	"context"

	"pagepulse/internal/adapters/browser"
	"pagepulse/internal/domain"
)

// comment reads one comment. Replies are read with isReply set, which stops
// the descent so nesting is never deeper than one level. keep is false when
// the commenter is excluded.
func (x *Extractor) comment(ctx context.Context, s browser.Session, sel Selectors, el browser.Element, isReply bool) (c domain.Comment, keep bool) {
	c = domain.Comment{
		CommentText:   cleanPtr(x.text(ctx, s, el.Find(sel.Comments.Text))),
		CommenterName: x.text(ctx, s, el.Find(sel.Comments.Commenter)),
		HasImage:      x.exists(ctx, s, el.Find(sel.Comments.Image)),
		Reactions:     x.text(ctx, s, el.Find(sel.Comments.Reactions)),
	}

	if !isReply && x.isExcluded(c.CommenterName) {
		return c, false
	}
	if isReply {
		return c, true
	}

	replies := []domain.Comment{}
	replyEls := el.Find(sel.Comments.Reply)

	n, err := s.Count(ctx, replyEls)
	if err != nil {
		n = 0
	}
	for i := 0; i < n; i++ {
		r, _ := x.comment(ctx, s, sel, replyEls.Nth(i), true)
		replies = append(replies, r)
	}
	c.Replies = &replies

	return c, true
}

func (x *Extractor) isExcluded(name *string) bool {
	if name == nil {
		return false
	}
	_, ok := x.excluded[*name]
	return ok
}
