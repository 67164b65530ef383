package browser

import (
	"errors"
	"time"
)

// ErrTimeout is wrapped by every error caused by a bounded wait expiring.
var ErrTimeout = errors.New("timeout")

// Page is the browser capability consumed by the posting workflow.
// All site interaction passes through it.
type Page interface {
	// Navigate loads url in the current page.
	Navigate(url string, opts NavigateOptions) error

	// Locate returns a lazily resolved element. It never fails; resolution
	// errors surface from the element's actions.
	Locate(sel Selector) Element

	// WaitForURL blocks until the page URL equals url or the timeout expires.
	WaitForURL(url string, timeout time.Duration) error

	// UploadViaChooser runs trigger, waits for the file chooser it opens and
	// supplies files to it.
	UploadViaChooser(trigger func() error, files ...string) error

	// Screenshot writes a PNG of the page to path.
	Screenshot(path string, fullPage bool) error

	// URL returns the current page URL.
	URL() string
}

// Element is a handle to something on the page.
type Element interface {
	// WaitVisible blocks until the element is visible. A zero timeout uses
	// the page default.
	WaitVisible(timeout time.Duration) error

	// IsVisible reports whether the element is visible right now.
	IsVisible() (bool, error)

	Click() error
	Fill(text string) error
	Clear() error

	// TypeSequentially types text key by key so that input listeners fire
	// for every character.
	TypeSequentially(text string, opts TypeOptions) error

	// Press sends a single key, e.g. "Enter".
	Press(key string) error
}

// IsTimeout reports whether err was caused by an expired wait.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
