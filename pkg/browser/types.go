package browser

import (
	"fmt"
	"time"
)

// By identifies the strategy used to resolve a Selector.
type By string

const (
	// ByRole matches elements by ARIA role and accessible name
	ByRole By = "role"

	// ByPlaceholder matches inputs by their placeholder text
	ByPlaceholder By = "placeholder"

	// ByText matches elements by their visible text
	ByText By = "text"

	// ByCSS matches elements with a CSS selector
	ByCSS By = "css"
)

// Selector describes how to find an element on the page.
type Selector struct {
	// By is the lookup strategy
	By By `yaml:"by" json:"by"`

	// Role is the ARIA role (only for ByRole), e.g. "button" or "link"
	Role string `yaml:"role,omitempty" json:"role,omitempty"`

	// Value is the accessible name, placeholder, text or CSS selector
	Value string `yaml:"value,omitempty" json:"value,omitempty"`

	// Pattern is a regular expression used instead of Value for loose matching
	Pattern string `yaml:"pattern,omitempty" json:"pattern,omitempty"`

	// Exact requires a full, case-sensitive match of Value
	Exact bool `yaml:"exact,omitempty" json:"exact,omitempty"`
}

// Role returns a selector matching an ARIA role with the given accessible name.
func Role(role, name string) Selector {
	return Selector{By: ByRole, Role: role, Value: name}
}

// Placeholder returns a selector matching an input by placeholder.
func Placeholder(text string) Selector {
	return Selector{By: ByPlaceholder, Value: text}
}

// Text returns a selector matching visible text.
func Text(text string) Selector {
	return Selector{By: ByText, Value: text}
}

// CSS returns a selector matching a CSS expression.
func CSS(expr string) Selector {
	return Selector{By: ByCSS, Value: expr}
}

// Validate checks that the selector can be resolved.
func (s Selector) Validate() error {
	switch s.By {
	case ByRole:
		if s.Role == "" {
			return fmt.Errorf("role selector requires a role")
		}
	case ByPlaceholder, ByText:
		if s.Value == "" && s.Pattern == "" {
			return fmt.Errorf("%s selector requires a value or pattern", s.By)
		}
	case ByCSS:
		if s.Value == "" {
			return fmt.Errorf("css selector requires a value")
		}
		if s.Pattern != "" {
			return fmt.Errorf("css selector does not support patterns")
		}
	default:
		return fmt.Errorf("unknown selector strategy %q (must be 'role', 'placeholder', 'text', or 'css')", s.By)
	}

	if s.Pattern != "" {
		if _, err := compilePattern(s.Pattern); err != nil {
			return err
		}
	}
	return nil
}

// String renders the selector for logs.
func (s Selector) String() string {
	name := s.Value
	if s.Pattern != "" {
		name = "/" + s.Pattern + "/"
	}
	if s.By == ByRole {
		return fmt.Sprintf("role=%s[name=%q]", s.Role, name)
	}
	return fmt.Sprintf("%s=%s", s.By, name)
}

// Options configures a new browser session.
type Options struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Args are extra Chromium command line switches
	Args []string

	// UserAgent overrides the browser user agent when non-empty
	UserAgent string

	// Viewport sets the initial viewport size
	Viewport *Viewport

	// Timeout is the default timeout for page operations
	Timeout time.Duration

	// StorageStatePath loads cookies and local storage from this file when it exists
	StorageStatePath string

	// SkipInstall skips downloading the Playwright driver and browsers
	SkipInstall bool
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// NavigateOptions configures page navigation behavior.
type NavigateOptions struct {
	// WaitUntil specifies when to consider navigation successful
	// Valid values: "load", "domcontentloaded", "networkidle", "commit"
	WaitUntil string

	// Timeout bounds the navigation (0 means the page default)
	Timeout time.Duration
}

// TypeOptions configures sequential key entry.
type TypeOptions struct {
	// Delay is the pause between key presses
	Delay time.Duration

	// Timeout bounds the whole typing action; zero disables the timeout
	Timeout time.Duration
}

// Default values for sessions
const (
	DefaultTimeout        = 30 * time.Second
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
)

// DefaultArgs are the Chromium switches needed to run inside containers.
var DefaultArgs = []string{
	"--no-sandbox",
	"--disable-setuid-sandbox",
	"--disable-dev-shm-usage",
}
