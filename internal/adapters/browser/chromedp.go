package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pagepulse/internal/domain"
	"pagepulse/pkg/log"

	"github.com/chromedp/chromedp"
)

// ChromePool keeps a single Chrome process and serialises tab usage, one tab
// per WithSession call.
type ChromePool struct {
	allocCtx context.Context
	ctx      context.Context
	cancel   context.CancelFunc
	opts     []chromedp.ExecAllocatorOption

	mu     sync.Mutex
	tabSem chan struct{}
}

// NewChromePool starts Chrome with the given options.
func NewChromePool(o Options) (*ChromePool, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", o.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("no-first-run", true),
		chromedp.WindowSize(o.Width, o.Height),
	)

	if o.DisableImages {
		opts = append(opts, chromedp.Flag("blink-settings", "imagesEnabled=false"))
	}

	if path := ResolveExecutable(o, "chrome"); path != "" {
		log.GlobalInfo("chrome using custom executable", "path", path)
		opts = append(opts, chromedp.ExecPath(path))
	}

	bp := &ChromePool{
		opts:   opts,
		tabSem: make(chan struct{}, 1),
	}

	if err := bp.start(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBrowserUnavailable, err)
	}

	return bp, nil
}

// NewRemoteChromePool attaches to an already running Chrome through its
// DevTools websocket URL.
func NewRemoteChromePool(wsURL string) (*ChromePool, error) {
	allocCtx, cancel := chromedp.NewRemoteAllocator(context.Background(), wsURL)
	ctx, _ := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %v", domain.ErrBrowserUnavailable, err)
	}

	return &ChromePool{
		allocCtx: allocCtx,
		ctx:      ctx,
		cancel:   cancel,
		tabSem:   make(chan struct{}, 1),
	}, nil
}

func (bp *ChromePool) Name() string { return "chrome" }

// start launches (or relaunches) the Chrome process.
func (bp *ChromePool) start() error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.cancel != nil {
		bp.cancel()
	}

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), bp.opts...)
	ctx, _ := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(ctx); err != nil {
		cancel()
		return err
	}

	bp.allocCtx = allocCtx
	bp.ctx = ctx
	bp.cancel = cancel

	log.GlobalInfo("chrome started")
	return nil
}

// WithSession runs fn with exclusive use of a fresh tab. The tab is closed
// when fn returns or ctx is cancelled.
func (bp *ChromePool) WithSession(ctx context.Context, fn func(ctx context.Context, s Session) error) error {
	select {
	case bp.tabSem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-bp.tabSem }()

	tabCtx, tabCancel, err := bp.acquireTab()
	if err != nil {
		return err
	}
	defer tabCancel()

	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	tabCtx = mergeValues(tabCtx, ctx)
	return fn(tabCtx, &chromeSession{tab: tabCtx})
}

// acquireTab opens a tab, restarting Chrome once if the tab is unusable.
func (bp *ChromePool) acquireTab() (context.Context, context.CancelFunc, error) {
	bp.mu.Lock()
	tabCtx, tabCancel := chromedp.NewContext(bp.ctx)
	bp.mu.Unlock()

	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		log.GlobalWarn("chrome tab failed, restarting", "error", err)

		if bp.opts == nil {
			return nil, nil, fmt.Errorf("%w: %v", domain.ErrBrowserUnavailable, err)
		}
		if restartErr := bp.start(); restartErr != nil {
			log.GlobalError("chrome restart failed", "error", restartErr)
			return nil, nil, fmt.Errorf("%w: %v", domain.ErrBrowserUnavailable, restartErr)
		}

		bp.mu.Lock()
		tabCtx, tabCancel = chromedp.NewContext(bp.ctx)
		bp.mu.Unlock()
	}

	return tabCtx, tabCancel, nil
}

// Close shuts Chrome down.
func (bp *ChromePool) Close() {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.cancel != nil {
		bp.cancel()
		bp.cancel = nil
		log.GlobalInfo("chrome stopped")
	}
}

// chromeSession implements Session on one chromedp tab.
type chromeSession struct {
	tab context.Context
}

// run executes actions on ctx when it carries the chromedp target, and on
// the tab context otherwise.
func (s *chromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	if chromedp.FromContext(ctx) == nil {
		ctx = s.tab
	}
	return chromedp.Run(ctx, actions...)
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrNavigationFailed, url, err)
	}
	return nil
}

func (s *chromeSession) CurrentURL(ctx context.Context) (string, error) {
	var url string
	err := s.run(ctx, chromedp.Location(&url))
	return url, err
}

func (s *chromeSession) ScrollToBottom(ctx context.Context) error {
	return s.run(ctx, chromedp.Evaluate(scriptScrollToBottom, nil))
}

func (s *chromeSession) Count(ctx context.Context, el Element) (int, error) {
	var n int
	err := s.run(ctx, chromedp.Evaluate(invoke(scriptCount, el.XPath), &n))
	return n, err
}

func (s *chromeSession) Attribute(ctx context.Context, el Element, name string) (*string, error) {
	var res lookup
	if err := s.run(ctx, chromedp.Evaluate(invoke(scriptAttribute, el.XPath, name), &res)); err != nil {
		return nil, err
	}
	return res.ptr(false), nil
}

func (s *chromeSession) Text(ctx context.Context, el Element) (*string, error) {
	var res lookup
	if err := s.run(ctx, chromedp.Evaluate(invoke(scriptText, el.XPath), &res)); err != nil {
		return nil, err
	}
	return res.ptr(true), nil
}

func (s *chromeSession) Click(ctx context.Context, el Element) (bool, error) {
	var clicked bool
	err := s.run(ctx, chromedp.Evaluate(invoke(scriptClickFirst, el.XPath), &clicked))
	return clicked, err
}

func (s *chromeSession) ClickAll(ctx context.Context, el Element) (int, error) {
	var n int
	err := s.run(ctx, chromedp.Evaluate(invoke(scriptClickAll, el.XPath), &n))
	return n, err
}

func (s *chromeSession) WaitVisible(ctx context.Context, el Element, timeout time.Duration) bool {
	return poll(ctx, timeout, func(ctx context.Context) (bool, error) {
		var visible bool
		err := s.run(ctx, chromedp.Evaluate(invoke(scriptVisible, el.XPath), &visible))
		return visible, err
	})
}

func (s *chromeSession) WaitGone(ctx context.Context, el Element, timeout time.Duration) bool {
	return poll(ctx, timeout, func(ctx context.Context) (bool, error) {
		var visible bool
		err := s.run(ctx, chromedp.Evaluate(invoke(scriptVisible, el.XPath), &visible))
		return !visible, err
	})
}

// valuesCtx carries the chromedp target of one context and the values
// (run id, log fields) of another.
type valuesCtx struct {
	context.Context
	values context.Context
}

func (c valuesCtx) Value(key any) any {
	if v := c.Context.Value(key); v != nil {
		return v
	}
	return c.values.Value(key)
}

func mergeValues(base, values context.Context) context.Context {
	return valuesCtx{Context: base, values: values}
}
