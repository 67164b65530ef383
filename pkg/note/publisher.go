// Package note drives the note.com posting workflow through a browser.Page:
// login, editor population and the publish-confirmation state machine.
package note

import (
	"context"
	"time"

	"github.com/entrhq/postnote/pkg/browser"
	"github.com/entrhq/postnote/pkg/config"
	"github.com/entrhq/postnote/pkg/post"
	"github.com/gobwas/glob"
	"golang.org/x/time/rate"
)

// Logger is the logging surface the workflow writes to.
type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

// Result describes a finished (or failed) run.
type Result struct {
	// Mode is "publish" or "draft"
	Mode string

	// LoggedIn is true when the login form had to be submitted
	LoggedIn bool

	// Thumbnail is true when an image was uploaded
	Thumbnail bool

	// Attempts is the number of tries needed to open the publish confirmation
	Attempts int

	// TagsSubmitted lists the tags entered, in submission order
	TagsSubmitted []string

	// Verified is true when the final URL matched the published-article pattern
	Verified bool

	FinalURL string
}

// Publisher runs the posting workflow. It holds no per-run state and the
// configuration it was built with never changes.
type Publisher struct {
	cfg       config.Config
	log       Logger
	published glob.Glob

	// sleep waits for settle and backoff intervals
	sleep func(ctx context.Context, d time.Duration) error

	// afterLogin runs once a fresh login succeeded
	afterLogin func() error

	// newPacer spaces tag entries
	newPacer func(interval time.Duration) pacer
}

// pacer blocks until the next action is allowed.
type pacer interface {
	Wait(ctx context.Context) error
}

func newRateLimiter(interval time.Duration) pacer {
	return rate.NewLimiter(rate.Every(interval), 1)
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.log = l
		}
	}
}

// WithLoginHook registers fn to run after the login form was submitted
// successfully, e.g. to persist the session cookies.
func WithLoginHook(fn func() error) Option {
	return func(p *Publisher) {
		p.afterLogin = fn
	}
}

// NewPublisher creates a publisher for cfg.
func NewPublisher(cfg config.Config, opts ...Option) *Publisher {
	p := &Publisher{
		cfg:      cfg,
		log:      nopLogger{},
		sleep:    sleepContext,
		newPacer: newRateLimiter,
	}

	for _, opt := range opts {
		opt(p)
	}

	if pattern := cfg.Site.PublishedURLPattern; pattern != "" {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			p.log.Warnf("Invalid published URL pattern %q, completion will not be verified: %v", pattern, err)
		} else {
			p.published = g
		}
	}
	return p
}

// Run authenticates, fills the editor and finalizes the post. It stops at the
// first failure; the returned Result is never nil and records how far the run got.
func (p *Publisher) Run(ctx context.Context, page browser.Page, creds config.Credentials, req post.Request) (*Result, error) {
	res := &Result{Mode: req.Mode()}

	loggedIn, err := p.EnsureAuthenticated(ctx, page, creds)
	if err != nil {
		p.log.Errorf("Login failed: %v", err)
		return res, err
	}
	res.LoggedIn = loggedIn

	if loggedIn && p.afterLogin != nil {
		if hookErr := p.afterLogin(); hookErr != nil {
			p.log.Warnf("Post-login hook failed: %v", hookErr)
		}
	}

	uploaded, err := p.PopulateEditor(ctx, page, req)
	res.Thumbnail = uploaded
	if err != nil {
		p.log.Errorf("Editor population failed: %v", err)
		return res, err
	}

	final, err := p.Finalize(ctx, page, req)
	res.Attempts = final.Attempts
	res.TagsSubmitted = final.TagsSubmitted
	res.Verified = final.Verified
	res.FinalURL = final.FinalURL
	if err != nil {
		p.log.Errorf("Finalize failed [%s]: %v", ErrorCode(err), err)
		return res, err
	}

	return res, nil
}

// settle waits a fixed interval so the target application can catch up.
func (p *Publisher) settle(ctx context.Context, d time.Duration) error {
	return p.sleep(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
