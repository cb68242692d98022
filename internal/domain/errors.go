package domain

import "errors"

var (
	// ErrInvalidPageURL is returned when the page URL has no usable page segment.
	ErrInvalidPageURL = errors.New("invalid page URL")

	// ErrInvalidDate is returned when a date string matches none of the known layouts.
	ErrInvalidDate = errors.New("unrecognised date format")

	// ErrNavigationFailed is returned when the browser could not load a page.
	ErrNavigationFailed = errors.New("failed to load page")

	// ErrBrowserUnavailable is returned when no browser session could be started.
	ErrBrowserUnavailable = errors.New("browser unavailable")

	// ErrNoDatasets is returned when the data directory holds no dataset directories.
	ErrNoDatasets = errors.New("no datasets found")

	// ErrMalformedPost is returned when a post document cannot be decoded.
	ErrMalformedPost = errors.New("malformed post document")
)
