// Package fixtures provides page markup for browser integration tests.
// The markup follows the structure matched by the default selectors.
package fixtures

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// FeedPost is one post shown on a page feed.
type FeedPost struct {
	Link string
	// Title is the full timestamp shown on hover, e.g.
	// "Tuesday, March 3, 2020 at 10:04 AM".
	Title string
	// NoCommentsLink drops the comments-count anchor so the timestamp anchor
	// is the only link.
	NoCommentsLink bool
}

// FeedPage renders a page feed with the given posts, newest first.
func FeedPage(pageName string, posts []FeedPost) string {
	var b strings.Builder
	for _, p := range posts {
		b.WriteString(`<div class="_5pcr userContentWrapper">`)
		fmt.Fprintf(&b, `<a href="%s"><abbr title="%s"><span class="timestampContent">%s</span></abbr></a>`, p.Link, p.Title, p.Title)
		if !p.NoCommentsLink {
			fmt.Fprintf(&b, `<a class="_3hg- _42ft" href="%s">3 Comments</a>`, p.Link)
		}
		b.WriteString(`</div>`)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>%[1]s</title></head>
<body>
<h1 id="seo_h1_tag"><a href="#"><span>%[1]s</span></a></h1>
%[2]s
</body>
</html>
`, pageName, b.String())
}

// PostPage renders a single post with a link attachment, counters, two
// comments (one by the page itself, with a reply) and an expander that
// reveals one more comment when clicked.
func PostPage(pageName string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>%[1]s</title>
<script>
function expandComments(el) {
  var more = document.getElementById("more");
  more.innerHTML = '<li><div><div aria-label="Comment">' +
    '<a class="_6qw4">Cat</a> <span dir="ltr">Late to this   one</span>' +
    '</div></div></li>';
  el.remove();
}
</script>
</head>
<body>
<div class="_5pcr userContentWrapper">
  <a href="https://www.facebook.com/acme/posts/1"><abbr title="Tuesday, March 3, 2020 at 10:04 AM"><span class="timestampContent">3 March 2020</span></abbr></a>
  <div data-testid="post_message"><p>We are launching   today.</p></div>
  <div class="attachment"><a href="https://example.com/launch">example.com</a></div>
  <a data-testid="UFI2ReactionsCount/root"><span>icons</span><span><span><span>1.2K</span></span></span></a>
  <a class="_3hg- _42ft" href="https://www.facebook.com/acme/posts/1">34 Comments</a>
  <a data-testid="UFI2SharesCount/root">5 Shares</a>
  <ul>
    <li>
      <div><div aria-label="Comment">
        <a class="_6qw4">Ann</a> <span dir="ltr">Love it</span>
        <span class="_1lld">3</span>
        <div class="_2txe"><img src="data:,"></div>
      </div></div>
      <ul>
        <li><div aria-label="Comment reply"><a class="_6qw4">Bob</a> <span dir="ltr">Same here</span></div></li>
      </ul>
    </li>
    <li>
      <div><div aria-label="Comment">
        <a class="_6qw4">%[1]s</a> <span dir="ltr">Thanks everyone</span>
      </div></div>
      <ul>
        <li><div aria-label="Comment reply"><a class="_6qw4">Dan</a> <span dir="ltr">When?</span></div></li>
      </ul>
    </li>
  </ul>
  <ul id="more"></ul>
  <span class="_4ssp" onclick="expandComments(this)">View 1 more comment</span>
</div>
</body>
</html>
`, pageName)
}

// DataURL wraps markup in a data: URL a browser can navigate to.
func DataURL(html string) string {
	return "data:text/html;charset=utf-8;base64," + base64.StdEncoding.EncodeToString([]byte(html))
}
