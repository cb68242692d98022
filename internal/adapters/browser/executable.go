package browser

import (
	"os"
	"path/filepath"
)

// Options configures how a browser process is launched.
type Options struct {
	// ExecPath overrides the browser binary. Empty means the driver default.
	ExecPath string
	// Dir is searched for a bundled browser binary when ExecPath is empty.
	Dir string
	// Windows appends ".exe" to bundled binary names.
	Windows bool
	// Headless runs without a visible window.
	Headless bool
	// DisableImages stops the browser from fetching images.
	DisableImages bool
	Width, Height int
}

// ResolveExecutable returns opts.ExecPath, or the bundled binary name in
// opts.Dir when present, or "" to let the driver locate the browser.
func ResolveExecutable(opts Options, name string) string {
	if opts.ExecPath != "" {
		return opts.ExecPath
	}
	if opts.Dir == "" {
		return ""
	}
	if opts.Windows {
		name += ".exe"
	}
	path := filepath.Join(opts.Dir, name)
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path
	}
	return ""
}
