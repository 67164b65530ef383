package note

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/entrhq/postnote/pkg/browser"
	"github.com/entrhq/postnote/pkg/config"
)

// fakePage is a scripted browser.Page. Elements are keyed by selector string;
// an element is visible when its visibility func returns true.
type fakePage struct {
	url    string
	events []string

	visible   map[string]func() bool
	waitErrs  map[string]error
	clickErrs map[string][]error
	onClick   map[string]func()
	clicks    map[string]int

	waitForURLErr error
	screenshotErr error
	uploaded      []string
}

func newFakePage() *fakePage {
	return &fakePage{
		url:       "about:blank",
		visible:   make(map[string]func() bool),
		waitErrs:  make(map[string]error),
		clickErrs: make(map[string][]error),
		onClick:   make(map[string]func()),
		clicks:    make(map[string]int),
	}
}

// show makes sel always visible.
func (p *fakePage) show(sel browser.Selector) {
	p.visible[sel.String()] = func() bool { return true }
}

// showAfterClicks makes sel visible once trigger was clicked n times.
func (p *fakePage) showAfterClicks(sel, trigger browser.Selector, n int) {
	key := trigger.String()
	p.visible[sel.String()] = func() bool { return p.clicks[key] >= n }
}

func (p *fakePage) isVisible(key string) bool {
	fn, ok := p.visible[key]
	return ok && fn()
}

func (p *fakePage) record(format string, args ...interface{}) {
	p.events = append(p.events, fmt.Sprintf(format, args...))
}

// eventsWith returns the recorded events that start with prefix.
func (p *fakePage) eventsWith(prefix string) []string {
	var out []string
	for _, e := range p.events {
		if strings.HasPrefix(e, prefix) {
			out = append(out, e)
		}
	}
	return out
}

func (p *fakePage) Navigate(url string, _ browser.NavigateOptions) error {
	p.record("navigate:%s", url)
	p.url = url
	return nil
}

func (p *fakePage) Locate(sel browser.Selector) browser.Element {
	return &fakeElement{page: p, key: sel.String()}
}

func (p *fakePage) WaitForURL(url string, _ time.Duration) error {
	p.record("waitForURL:%s", url)
	if p.waitForURLErr != nil {
		return p.waitForURLErr
	}
	p.url = url
	return nil
}

func (p *fakePage) UploadViaChooser(trigger func() error, files ...string) error {
	if err := trigger(); err != nil {
		return err
	}
	p.record("upload:%s", strings.Join(files, ","))
	p.uploaded = append(p.uploaded, files...)
	return nil
}

func (p *fakePage) Screenshot(path string, fullPage bool) error {
	p.record("screenshot:%s:%t", path, fullPage)
	return p.screenshotErr
}

func (p *fakePage) URL() string {
	return p.url
}

type fakeElement struct {
	page *fakePage
	key  string
}

func (e *fakeElement) WaitVisible(timeout time.Duration) error {
	e.page.record("wait:%s", e.key)
	if err := e.page.waitErrs[e.key]; err != nil {
		return err
	}
	if e.page.isVisible(e.key) {
		return nil
	}
	return fmt.Errorf("waiting for %s (%s) failed: %w", e.key, timeout, browser.ErrTimeout)
}

func (e *fakeElement) IsVisible() (bool, error) {
	return e.page.isVisible(e.key), nil
}

func (e *fakeElement) Click() error {
	e.page.record("click:%s", e.key)
	// Queued click errors are returned once each
	if queued := e.page.clickErrs[e.key]; len(queued) > 0 {
		e.page.clickErrs[e.key] = queued[1:]
		return queued[0]
	}
	e.page.clicks[e.key]++
	if fn := e.page.onClick[e.key]; fn != nil {
		fn()
	}
	return nil
}

func (e *fakeElement) Fill(text string) error {
	e.page.record("fill:%s:%s", e.key, text)
	return nil
}

func (e *fakeElement) Clear() error {
	e.page.record("clear:%s", e.key)
	return nil
}

func (e *fakeElement) TypeSequentially(text string, opts browser.TypeOptions) error {
	e.page.record("type:%s:%s:%s", e.key, text, opts.Delay)
	return nil
}

func (e *fakeElement) Press(key string) error {
	e.page.record("press:%s:%s", e.key, key)
	return nil
}

// sleepRecorder replaces real waits and remembers every requested interval.
type sleepRecorder struct {
	durations []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.durations = append(s.durations, d)
	return ctx.Err()
}

func (s *sleepRecorder) count(d time.Duration) int {
	n := 0
	for _, got := range s.durations {
		if got == d {
			n++
		}
	}
	return n
}

// recordLogger keeps every line by level.
type recordLogger struct {
	mu    sync.Mutex
	lines map[string][]string
}

func newRecordLogger() *recordLogger {
	return &recordLogger{lines: make(map[string][]string)}
}

func (l *recordLogger) add(level, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines[level] = append(l.lines[level], fmt.Sprintf(format, v...))
}

func (l *recordLogger) Debugf(format string, v ...interface{}) { l.add("debug", format, v...) }
func (l *recordLogger) Infof(format string, v ...interface{})  { l.add("info", format, v...) }
func (l *recordLogger) Warnf(format string, v ...interface{})  { l.add("warn", format, v...) }
func (l *recordLogger) Errorf(format string, v ...interface{}) { l.add("error", format, v...) }

// testBackoff and testThumbnailSettle differ from every default settle so
// they can be counted.
const (
	testBackoff         = 1500 * time.Millisecond
	testThumbnailSettle = 2500 * time.Millisecond
)

func testConfig() config.Config {
	cfg := *config.DefaultConfig()
	cfg.Retry.Backoff = testBackoff
	cfg.Timings.ThumbnailSettle = testThumbnailSettle
	cfg.Timings.TagPacing = time.Millisecond
	return cfg
}

// pacerRecorder counts tag pacing waits instead of waiting.
type pacerRecorder struct {
	intervals []time.Duration
	waits     int
}

func (r *pacerRecorder) newPacer(interval time.Duration) pacer {
	r.intervals = append(r.intervals, interval)
	return r
}

func (r *pacerRecorder) Wait(ctx context.Context) error {
	r.waits++
	return ctx.Err()
}

func newTestPublisher(t *testing.T, cfg config.Config, opts ...Option) (*Publisher, *sleepRecorder) {
	t.Helper()

	p, rec, _ := newPacedTestPublisher(t, cfg, opts...)
	return p, rec
}

func newPacedTestPublisher(t *testing.T, cfg config.Config, opts ...Option) (*Publisher, *sleepRecorder, *pacerRecorder) {
	t.Helper()

	rec := &sleepRecorder{}
	pacing := &pacerRecorder{}
	p := NewPublisher(cfg, opts...)
	p.sleep = rec.sleep
	p.newPacer = pacing.newPacer
	return p, rec, pacing
}
