// Package analysis turns scraped datasets into scored comment tables, topic
// words and cross-dataset word rankings.
package analysis

import (
	"fmt"
	"strings"

	"pagepulse/internal/domain"
)

// ExclusionPolicy decides which top-level comments count as written by the
// page itself.
type ExclusionPolicy string

const (
	// PolicyPageName excludes comments whose commenter is the post's page.
	PolicyPageName ExclusionPolicy = "page_name"
	// PolicyOperatorSubstring excludes comments whose commenter name
	// contains any configured operator name.
	PolicyOperatorSubstring ExclusionPolicy = "operator_substring"
)

// ParseExclusionPolicy accepts "" as PolicyPageName.
func ParseExclusionPolicy(s string) (ExclusionPolicy, error) {
	switch ExclusionPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyPageName:
		return PolicyPageName, nil
	case PolicyOperatorSubstring:
		return PolicyOperatorSubstring, nil
	default:
		return "", fmt.Errorf("unknown exclusion policy %q", s)
	}
}

type FlattenOptions struct {
	Policy        ExclusionPolicy
	OperatorNames []string
	// KeepRepliesOfExcluded keeps the replies under an excluded comment.
	KeepRepliesOfExcluded bool
}

// Flatten lists a dataset's comments post by post, each top-level comment
// followed by its replies.
func Flatten(ds domain.Dataset, opts FlattenOptions) []domain.Comment {
	var out []domain.Comment

	for _, post := range ds.Posts {
		for _, c := range post.CommentData {
			excluded := opts.excludes(post, c)
			if !excluded {
				out = append(out, c)
			}
			if excluded && !opts.KeepRepliesOfExcluded {
				continue
			}
			out = append(out, c.ReplyList()...)
		}
	}

	return out
}

func (o FlattenOptions) excludes(post domain.Post, c domain.Comment) bool {
	if c.CommenterName == nil {
		return false
	}
	name := *c.CommenterName

	if o.Policy == PolicyOperatorSubstring {
		for _, op := range o.OperatorNames {
			if op != "" && strings.Contains(name, op) {
				return true
			}
		}
		return false
	}

	return name == post.PageName
}
