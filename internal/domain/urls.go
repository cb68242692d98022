package domain

import (
	"net/url"
	"strings"
)

// postTypeMarkers are checked in order; the first path marker found wins.
var postTypeMarkers = []struct {
	marker string
	kind   PostType
}{
	{"/videos/", PostTypeVideos},
	{"/photos/", PostTypePhotos},
	{"/posts/", PostTypePosts},
	{"/notes/", PostTypeNotes},
}

// ClassifyPostType derives the post type from the post URL.
func ClassifyPostType(postURL string) PostType {
	for _, m := range postTypeMarkers {
		if strings.Contains(postURL, m.marker) {
			return m.kind
		}
	}
	return PostTypeOther
}

// PageNameFromURL returns the first path segment of a page URL, which names
// the dataset directory. "https://www.facebook.com/acme/?ref=x" gives "acme".
func PageNameFromURL(pageURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || u.Host == "" {
		return "", ErrInvalidPageURL
	}

	for _, seg := range strings.Split(u.Path, "/") {
		if seg == "" || seg == "pg" {
			continue
		}
		if strings.ContainsAny(seg, `\:*?"<>|`) || seg == "." || seg == ".." {
			return "", ErrInvalidPageURL
		}
		return seg, nil
	}

	return "", ErrInvalidPageURL
}
