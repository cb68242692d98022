package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"pagepulse/internal/domain"
	"pagepulse/pkg/log"

	"github.com/playwright-community/playwright-go"
)

// FirefoxPool runs a single Firefox instance through playwright and hands
// out one isolated browser context (and page) per WithSession call.
type FirefoxPool struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    Options

	mu sync.Mutex
}

// NewFirefoxPool starts the playwright driver and launches Firefox.
func NewFirefoxPool(o Options) (*FirefoxPool, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("%w: starting playwright: %v", domain.ErrBrowserUnavailable, err)
	}

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(o.Headless),
	}
	if path := ResolveExecutable(o, "firefox"); path != "" {
		log.GlobalInfo("firefox using custom executable", "path", path)
		launch.ExecutablePath = playwright.String(path)
	}

	b, err := pw.Firefox.Launch(launch)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("%w: launching firefox: %v", domain.ErrBrowserUnavailable, err)
	}

	log.GlobalInfo("firefox started")
	return &FirefoxPool{pw: pw, browser: b, opts: o}, nil
}

func (fp *FirefoxPool) Name() string { return "firefox" }

// WithSession runs fn against a fresh page in its own browser context.
func (fp *FirefoxPool) WithSession(ctx context.Context, fn func(ctx context.Context, s Session) error) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	bctx, err := fp.browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: fp.opts.Width, Height: fp.opts.Height},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBrowserUnavailable, err)
	}
	defer bctx.Close()

	page, err := bctx.NewPage()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBrowserUnavailable, err)
	}

	return fn(ctx, &firefoxSession{page: page})
}

// Close shuts Firefox and the playwright driver down.
func (fp *FirefoxPool) Close() {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	if fp.browser != nil {
		_ = fp.browser.Close()
		fp.browser = nil
	}
	if fp.pw != nil {
		_ = fp.pw.Stop()
		fp.pw = nil
		log.GlobalInfo("firefox stopped")
	}
}

// firefoxSession implements Session on one playwright page. Playwright calls
// are not context aware, so ctx is checked before each of them.
type firefoxSession struct {
	page playwright.Page
}

// eval runs script and decodes its result into out.
func (s *firefoxSession) eval(ctx context.Context, script string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	res, err := s.page.Evaluate(script)
	if err != nil || out == nil {
		return err
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (s *firefoxSession) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	}); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrNavigationFailed, url, err)
	}
	return nil
}

func (s *firefoxSession) CurrentURL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.page.URL(), nil
}

func (s *firefoxSession) ScrollToBottom(ctx context.Context) error {
	return s.eval(ctx, scriptScrollToBottom, nil)
}

func (s *firefoxSession) Count(ctx context.Context, el Element) (int, error) {
	var n int
	err := s.eval(ctx, invoke(scriptCount, el.XPath), &n)
	return n, err
}

func (s *firefoxSession) Attribute(ctx context.Context, el Element, name string) (*string, error) {
	var res lookup
	if err := s.eval(ctx, invoke(scriptAttribute, el.XPath, name), &res); err != nil {
		return nil, err
	}
	return res.ptr(false), nil
}

func (s *firefoxSession) Text(ctx context.Context, el Element) (*string, error) {
	var res lookup
	if err := s.eval(ctx, invoke(scriptText, el.XPath), &res); err != nil {
		return nil, err
	}
	return res.ptr(true), nil
}

func (s *firefoxSession) Click(ctx context.Context, el Element) (bool, error) {
	var clicked bool
	err := s.eval(ctx, invoke(scriptClickFirst, el.XPath), &clicked)
	return clicked, err
}

func (s *firefoxSession) ClickAll(ctx context.Context, el Element) (int, error) {
	var n int
	err := s.eval(ctx, invoke(scriptClickAll, el.XPath), &n)
	return n, err
}

// WaitVisible uses playwright's own locator wait.
func (s *firefoxSession) WaitVisible(ctx context.Context, el Element, timeout time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	err := s.page.Locator("xpath=" + el.XPath).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	return err == nil
}

func (s *firefoxSession) WaitGone(ctx context.Context, el Element, timeout time.Duration) bool {
	return poll(ctx, timeout, func(ctx context.Context) (bool, error) {
		var visible bool
		err := s.eval(ctx, invoke(scriptVisible, el.XPath), &visible)
		return !visible, err
	})
}
