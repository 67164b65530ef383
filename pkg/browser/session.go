package browser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Session owns the Playwright driver, the browser process and the single page
// used by a run. It is not safe for concurrent use.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page

	// CreatedAt is the timestamp when the session was launched
	CreatedAt time.Time

	closeOnce sync.Once
	closeErr  error
}

// Launch starts Playwright, launches Chromium and opens a page.
// The returned session must be closed by the caller.
func Launch(opts Options) (*Session, error) {
	opts = withDefaults(opts)

	// Discard driver output so it does not interleave with the console log
	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if !opts.SkipInstall {
		if err := playwright.Install(runOpts); err != nil {
			return nil, fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(launchOptions(opts))
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	context, err := browser.NewContext(contextOptions(opts))
	if err != nil {
		browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	page.SetDefaultTimeout(milliseconds(opts.Timeout))

	return &Session{
		pw:        pw,
		browser:   browser,
		context:   context,
		page:      page,
		CreatedAt: time.Now(),
	}, nil
}

// Page returns the driver for the session's page.
func (s *Session) Page() Page {
	return &playwrightPage{page: s.page}
}

// SaveStorageState writes cookies and local storage to path so a later run
// can reuse the authenticated session.
func (s *Session) SaveStorageState(path string) error {
	if _, err := s.context.StorageState(path); err != nil {
		return fmt.Errorf("failed to save storage state: %w", err)
	}
	return nil
}

// Close releases the page, context, browser and driver. Safe to call multiple times.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if err := s.page.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := s.context.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := s.browser.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := s.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
		if len(errs) > 0 {
			s.closeErr = fmt.Errorf("errors closing session: %w", errors.Join(errs...))
		}
	})
	return s.closeErr
}

func withDefaults(opts Options) Options {
	if opts.Viewport == nil {
		opts.Viewport = &Viewport{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		}
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Args == nil {
		opts.Args = DefaultArgs
	}
	return opts
}

func launchOptions(opts Options) playwright.BrowserTypeLaunchOptions {
	return playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     opts.Args,
	}
}

func contextOptions(opts Options) playwright.BrowserNewContextOptions {
	contextOpts := playwright.BrowserNewContextOptions{}

	if opts.Viewport != nil {
		contextOpts.Viewport = &playwright.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		}
	}

	if opts.UserAgent != "" {
		contextOpts.UserAgent = playwright.String(opts.UserAgent)
	}

	// A missing state file just means nobody has logged in yet
	if opts.StorageStatePath != "" {
		if info, err := os.Stat(opts.StorageStatePath); err == nil && !info.IsDir() {
			contextOpts.StorageStatePath = playwright.String(opts.StorageStatePath)
		}
	}

	return contextOpts
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
