package browser

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/playwright-community/playwright-go"
)

// playwrightPage adapts a playwright.Page to Page.
type playwrightPage struct {
	page playwright.Page
}

// Navigate navigates the page to the specified URL.
func (p *playwrightPage) Navigate(url string, opts NavigateOptions) error {
	gotoOpts := playwright.PageGotoOptions{}

	if opts.WaitUntil != "" {
		waitUntil := playwright.WaitUntilState(opts.WaitUntil)
		gotoOpts.WaitUntil = &waitUntil
	}

	if opts.Timeout > 0 {
		gotoOpts.Timeout = playwright.Float(milliseconds(opts.Timeout))
	}

	if _, err := p.page.Goto(url, gotoOpts); err != nil {
		return wrapError("navigation to "+url, err)
	}
	return nil
}

// Locate builds a locator for sel. Pattern errors are deferred to the element's actions.
func (p *playwrightPage) Locate(sel Selector) Element {
	name, err := sel.matcher()
	if err != nil {
		return &playwrightElement{sel: sel, err: err}
	}

	var locator playwright.Locator
	switch sel.By {
	case ByRole:
		opts := playwright.PageGetByRoleOptions{}
		if name != nil {
			opts.Name = name
		}
		if sel.Exact {
			opts.Exact = playwright.Bool(true)
		}
		locator = p.page.GetByRole(playwright.AriaRole(sel.Role), opts)
	case ByPlaceholder:
		locator = p.page.GetByPlaceholder(name, playwright.PageGetByPlaceholderOptions{
			Exact: playwright.Bool(sel.Exact),
		})
	case ByText:
		locator = p.page.GetByText(name, playwright.PageGetByTextOptions{
			Exact: playwright.Bool(sel.Exact),
		})
	case ByCSS:
		locator = p.page.Locator(sel.Value)
	default:
		return &playwrightElement{sel: sel, err: fmt.Errorf("unknown selector strategy %q", sel.By)}
	}

	// Loose names can match several nodes; the workflow always wants the first
	return &playwrightElement{sel: sel, locator: locator.First()}
}

// WaitForURL waits until the page finished navigating to url.
func (p *playwrightPage) WaitForURL(url string, timeout time.Duration) error {
	opts := playwright.PageWaitForURLOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}
	if timeout > 0 {
		opts.Timeout = playwright.Float(milliseconds(timeout))
	}

	if err := p.page.WaitForURL(url, opts); err != nil {
		return wrapError("wait for url "+url, err)
	}
	return nil
}

// UploadViaChooser clicks through trigger and hands files to the chooser it opens.
func (p *playwrightPage) UploadViaChooser(trigger func() error, files ...string) error {
	chooser, err := p.page.ExpectFileChooser(trigger)
	if err != nil {
		return wrapError("file chooser", err)
	}

	if err := chooser.SetFiles(files); err != nil {
		return wrapError("set files", err)
	}
	return nil
}

// Screenshot captures the page to path.
func (p *playwrightPage) Screenshot(path string, fullPage bool) error {
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(fullPage),
	})
	if err != nil {
		return wrapError("screenshot", err)
	}
	return nil
}

// URL returns the current page URL.
func (p *playwrightPage) URL() string {
	return p.page.URL()
}

// playwrightElement adapts a playwright.Locator to Element.
type playwrightElement struct {
	sel     Selector
	locator playwright.Locator
	err     error
}

func (e *playwrightElement) WaitVisible(timeout time.Duration) error {
	if e.err != nil {
		return e.err
	}

	opts := playwright.LocatorWaitForOptions{
		State: playwright.WaitForSelectorStateVisible,
	}
	if timeout > 0 {
		opts.Timeout = playwright.Float(milliseconds(timeout))
	}

	return e.wrap("wait visible", e.locator.WaitFor(opts))
}

func (e *playwrightElement) IsVisible() (bool, error) {
	if e.err != nil {
		return false, e.err
	}

	visible, err := e.locator.IsVisible()
	if err != nil {
		return false, e.wrap("visibility check", err)
	}
	return visible, nil
}

func (e *playwrightElement) Click() error {
	if e.err != nil {
		return e.err
	}
	return e.wrap("click", e.locator.Click())
}

func (e *playwrightElement) Fill(text string) error {
	if e.err != nil {
		return e.err
	}
	return e.wrap("fill", e.locator.Fill(text))
}

func (e *playwrightElement) Clear() error {
	if e.err != nil {
		return e.err
	}
	return e.wrap("clear", e.locator.Clear())
}

func (e *playwrightElement) TypeSequentially(text string, opts TypeOptions) error {
	if e.err != nil {
		return e.err
	}

	// Timeout 0 disables the playwright deadline, which long bodies rely on
	return e.wrap("type", e.locator.PressSequentially(text, playwright.LocatorPressSequentiallyOptions{
		Delay:   playwright.Float(milliseconds(opts.Delay)),
		Timeout: playwright.Float(milliseconds(opts.Timeout)),
	}))
}

func (e *playwrightElement) Press(key string) error {
	if e.err != nil {
		return e.err
	}
	return e.wrap("press "+key, e.locator.Press(key))
}

func (e *playwrightElement) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return wrapError(fmt.Sprintf("%s on %s", op, e.sel), err)
}

// wrapError maps playwright timeouts onto ErrTimeout while keeping the original cause.
func wrapError(op string, err error) error {
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%s failed: %w: %w", op, ErrTimeout, err)
	}
	return fmt.Errorf("%s failed: %w", op, err)
}

// matcher returns the value handed to playwright's get-by helpers: a compiled
// pattern when one is set, the plain value otherwise, or nil when both are empty.
func (s Selector) matcher() (interface{}, error) {
	if s.Pattern != "" {
		re, err := compilePattern(s.Pattern)
		if err != nil {
			return nil, err
		}
		return re, nil
	}
	if s.Value == "" {
		return nil, nil
	}
	return s.Value, nil
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid selector pattern %q: %w", pattern, err)
	}
	return re, nil
}
