package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pagepulse/internal/adapters/browser"
	"pagepulse/internal/adapters/scraper"
	"pagepulse/internal/adapters/storage"
	"pagepulse/internal/config"
	"pagepulse/internal/domain"
	"pagepulse/internal/usecases"
	"pagepulse/pkg/log"
	"pagepulse/pkg/log/transporters"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		useChrome  = flag.Bool("chrome", false, "drive Chrome through chromedp instead of Firefox through playwright")
		windows    = flag.Bool("windows", false, "bundled browser binaries carry a .exe suffix")
		pageURL    = flag.String("page_url", "", "page to scrape, e.g. https://www.facebook.com/acme/ (required)")
		cutoffArg  = flag.String("cutoff_date", "", "scrape posts newer than this date, e.g. 2020-01-31 (required)")
		configPath = flag.String("config", config.DefaultPath, "path to the YAML config")
	)
	flag.Parse()

	if *pageURL == "" || *cutoffArg == "" {
		fmt.Fprintln(os.Stderr, "--page_url and --cutoff_date are required")
		flag.Usage()
		return 2
	}

	boot := transporters.NewLogger("console", log.Info)
	log.SetDefault(boot)

	cfg, err := config.Load(*configPath)
	if err != nil {
		boot.Fatal("invalid config", "error", err)
		boot.Close()
		return 1
	}

	logger := transporters.NewLogger(cfg.Log.Format, cfg.LogLevel()).Named("scraper")
	log.SetDefault(logger)
	boot.Close()
	defer logger.Close()

	cutoff, err := domain.ParseDate(*cutoffArg)
	if err != nil {
		logger.Fatal("invalid --cutoff_date", "value", *cutoffArg, "error", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, runID := log.NewRun(ctx)

	selectors, err := loadSelectors(cfg.Scraper.SelectorsFile)
	if err != nil {
		logger.Fatal("invalid selectors", "path", cfg.Scraper.SelectorsFile, "error", err)
		return 1
	}
	go selectors.Watch(ctx, cfg.SelectorReloadInterval())

	b, err := openBrowser(cfg, *useChrome, *windows)
	if err != nil {
		logger.Fatal("browser unavailable", "error", err)
		return 1
	}
	defer b.Close()

	uc := usecases.NewScrapePageUseCase(
		b,
		scraper.NewScrollController(selectors, cfg.Scraper.MaxScrolls),
		scraper.NewFeed(selectors),
		scraper.NewExtractor(selectors, cfg.Scraper.ExcludedCommenters),
		storage.NewFileStore(cfg.DataDir),
	)

	logger.InfoCtx(ctx, "scrape started",
		"run_id", runID,
		"page_url", *pageURL,
		"cutoff", cutoff.Format(time.DateOnly),
		"browser", b.Name(),
	)

	summary, err := uc.Execute(ctx, *pageURL, cutoff)

	fields := []any{
		"page", summary.Page,
		"scrolls", summary.Scroll.Scrolls,
		"cutoff_reached", summary.Scroll.Reached,
		"links", summary.Links,
		"saved", summary.Saved,
		"failed", summary.Failed,
		"elapsed", summary.Elapsed.Round(time.Second).String(),
	}
	switch {
	case errors.Is(err, context.Canceled):
		logger.WarnCtx(ctx, "scrape interrupted", fields...)
		return 130
	case err != nil:
		logger.ErrorCtx(ctx, "scrape failed", append(fields, "error", err)...)
		return 1
	}

	logger.InfoCtx(ctx, "scrape finished", fields...)
	return 0
}

// loadSelectors falls back to the built-in selectors when the file is absent.
func loadSelectors(path string) (*scraper.SelectorConfig, error) {
	selectors, err := scraper.LoadSelectors(path)
	if errors.Is(err, os.ErrNotExist) {
		log.GlobalWarn("selectors file not found, using built-in selectors", "path", path)
		return scraper.NewSelectorConfig(scraper.DefaultSelectors()), nil
	}
	return selectors, err
}

func openBrowser(cfg *config.Config, useChrome, windows bool) (browser.Browser, error) {
	opts := browser.Options{
		Dir:      cfg.Browser.Dir,
		Windows:  windows,
		Headless: *cfg.Browser.Headless,
		Width:    cfg.Browser.Width,
		Height:   cfg.Browser.Height,
	}

	if useChrome {
		opts.ExecPath = cfg.Browser.ChromePath
		opts.DisableImages = true
		return browser.NewChromePool(opts)
	}

	opts.ExecPath = cfg.Browser.FirefoxPath
	return browser.NewFirefoxPool(opts)
}
