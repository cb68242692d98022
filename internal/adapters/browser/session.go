// Package browser drives a live page through either chromedp (Chrome) or
// playwright-go (Firefox) behind one Session interface. Elements are
// addressed by absolute XPath expressions so every call is a fresh DOM
// lookup and stale handles cannot occur.
package browser

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Element addresses zero or more DOM nodes with an XPath expression.
// The zero value is the document.
type Element struct {
	XPath string
}

// Document is the root element.
var Document = Element{}

// Find resolves a path relative to e. Paths starting with "." are taken
// relative to e, as are parent steps like "../..". Paths starting with "/"
// are absolute.
func (e Element) Find(rel string) Element {
	switch {
	case strings.HasPrefix(rel, "./"):
		return Element{XPath: e.XPath + rel[1:]}
	case strings.HasPrefix(rel, ".."):
		if e.XPath == "" {
			return Element{XPath: "/" + rel}
		}
		return Element{XPath: e.XPath + "/" + rel}
	case strings.HasPrefix(rel, "/"):
		return Element{XPath: rel}
	case e.XPath == "":
		return Element{XPath: "//" + rel}
	default:
		return Element{XPath: e.XPath + "/" + rel}
	}
}

// Nth selects the i-th (0-based) node matched by e.
func (e Element) Nth(i int) Element {
	return Element{XPath: fmt.Sprintf("(%s)[%d]", e.XPath, i+1)}
}

// FromEnd selects the node k positions before the last one; FromEnd(0) is
// the last node.
func (e Element) FromEnd(k int) Element {
	if k == 0 {
		return Element{XPath: fmt.Sprintf("(%s)[last()]", e.XPath)}
	}
	return Element{XPath: fmt.Sprintf("(%s)[last()-%d]", e.XPath, k)}
}

func (e Element) String() string {
	if e.XPath == "" {
		return "document"
	}
	return e.XPath
}

// Session is one open page. Lookups that match nothing are not errors:
// Attribute and Text return nil and Click returns false. A returned error
// means the driver itself failed.
type Session interface {
	Navigate(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)
	ScrollToBottom(ctx context.Context) error

	Count(ctx context.Context, el Element) (int, error)
	Attribute(ctx context.Context, el Element, name string) (*string, error)
	Text(ctx context.Context, el Element) (*string, error)

	// Click clicks the first node matched by el.
	Click(ctx context.Context, el Element) (bool, error)
	// ClickAll clicks every node matched by el, last first, through a script
	// click so overlays cannot intercept it. It returns how many were clicked.
	ClickAll(ctx context.Context, el Element) (int, error)

	// WaitVisible and WaitGone poll until the condition holds or the timeout
	// elapses. They report whether the condition held and never fail.
	WaitVisible(ctx context.Context, el Element, timeout time.Duration) bool
	WaitGone(ctx context.Context, el Element, timeout time.Duration) bool
}

// Browser hands out one Session at a time over a single browser process.
type Browser interface {
	WithSession(ctx context.Context, fn func(ctx context.Context, s Session) error) error
	Name() string
	Close()
}
