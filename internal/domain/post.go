// Package domain holds the scraped records and the rules shared by the
// scraper and the analyzer.
package domain

import "time"

// PostType is derived from the post URL.
type PostType string

const (
	PostTypePhotos PostType = "photos"
	PostTypeVideos PostType = "videos"
	PostTypePosts  PostType = "posts"
	PostTypeNotes  PostType = "notes"
	PostTypeOther  PostType = "other"
)

// Post is one scraped page post. It is written once, right after extraction,
// and only read afterwards.
type Post struct {
	PostLink        string     `json:"post_link"`
	PostType        PostType   `json:"post_type"`
	Date            *time.Time `json:"date"`
	DateText        *string    `json:"date_text"`
	IsVideo         bool       `json:"is_video"`
	IsLink          bool       `json:"is_link"`
	LinkDestination *string    `json:"link_destination"`
	PostText        *string    `json:"post_text"`
	NumReactions    *string    `json:"num_reactions"`
	NumComments     *string    `json:"num_comments"`
	NumShares       *string    `json:"num_shares"`
	PageName        string     `json:"page_name"`
	CommentData     []Comment  `json:"comment_data"`
}

// Comment is a top-level comment or a reply. Replies is non-nil only on
// top-level comments, so replies serialise without a "replies" key and
// nesting never goes deeper than one level.
type Comment struct {
	CommentText   *string    `json:"comment_text"`
	CommenterName *string    `json:"commenter_name"`
	HasImage      bool       `json:"has_image"`
	Reactions     *string    `json:"reactions"`
	Replies       *[]Comment `json:"replies,omitempty"`
}

// IsReply reports whether the comment was extracted as a reply.
func (c Comment) IsReply() bool {
	return c.Replies == nil
}

// ReplyList returns the replies, or nil for a reply.
func (c Comment) ReplyList() []Comment {
	if c.Replies == nil {
		return nil
	}
	return *c.Replies
}

// Name returns the commenter name or "" when it could not be read.
func (c Comment) Name() string {
	if c.CommenterName == nil {
		return ""
	}
	return *c.CommenterName
}

// Dataset is every post scraped from one source page.
type Dataset struct {
	Name  string
	Posts []Post
}

// SentimentRecord is one scored comment or reply. Row is its position in
// the dataset's full table.
type SentimentRecord struct {
	Row           int
	Text          string
	CommenterName *string
	HasImage      bool
	Reactions     *string
	Sentiment     float64
}
