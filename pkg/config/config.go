// Package config builds the immutable configuration for a posting run.
//
// A Config is constructed once at startup by Load (defaults overlaid with an
// optional YAML file) and passed by value to every component. There is no
// package-level configuration state.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/entrhq/postnote/pkg/browser"
	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// Config represents the configuration for one posting run
type Config struct {
	// Target site URLs
	Site SiteConfig `yaml:"site" json:"site"`

	// Browser launch settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Waits, settle intervals and typing delays
	Timings TimingConfig `yaml:"timings" json:"timings"`

	// Element selectors for the editor UI
	Selectors SelectorConfig `yaml:"selectors" json:"selectors"`

	// Publish-confirmation retry budget
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Failure artifacts
	Diagnostics DiagnosticsConfig `yaml:"diagnostics" json:"diagnostics"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// SiteConfig defines the URLs the workflow navigates to
type SiteConfig struct {
	HomeURL    string `yaml:"home_url" json:"home_url"`
	NewPostURL string `yaml:"new_post_url" json:"new_post_url"`

	// PublishedURLPattern is a glob matched against the page URL after the final
	// submit. Empty disables verification and completion is best-effort.
	PublishedURLPattern string `yaml:"published_url_pattern" json:"published_url_pattern"`
}

// BrowserConfig defines how Chromium is launched
type BrowserConfig struct {
	Headless       bool             `yaml:"headless" json:"headless"`
	Args           []string         `yaml:"args" json:"args"`
	UserAgent      string           `yaml:"user_agent" json:"user_agent"`
	Viewport       browser.Viewport `yaml:"viewport" json:"viewport"`
	DefaultTimeout time.Duration    `yaml:"default_timeout" json:"default_timeout"`

	// StorageStatePath persists cookies between runs when set
	StorageStatePath string `yaml:"storage_state_path" json:"storage_state_path"`

	SkipInstall bool `yaml:"skip_install" json:"skip_install"`
}

// TimingConfig holds every wait used by the workflow
type TimingConfig struct {
	// Login
	LoginSettle     time.Duration `yaml:"login_settle" json:"login_settle"`
	LoginFormSettle time.Duration `yaml:"login_form_settle" json:"login_form_settle"`
	LoginTimeout    time.Duration `yaml:"login_timeout" json:"login_timeout"`

	// Editor population
	EditorLoadTimeout time.Duration `yaml:"editor_load_timeout" json:"editor_load_timeout"`
	ThumbnailSettle   time.Duration `yaml:"thumbnail_settle" json:"thumbnail_settle"`
	TitleKeyDelay     time.Duration `yaml:"title_key_delay" json:"title_key_delay"`
	BodyKeyDelay      time.Duration `yaml:"body_key_delay" json:"body_key_delay"`
	BodySyncSettle    time.Duration `yaml:"body_sync_settle" json:"body_sync_settle"`
	BlurSettle        time.Duration `yaml:"blur_settle" json:"blur_settle"`

	// Finalization
	FinalizeSettle      time.Duration `yaml:"finalize_settle" json:"finalize_settle"`
	DraftButtonTimeout  time.Duration `yaml:"draft_button_timeout" json:"draft_button_timeout"`
	DraftSettle         time.Duration `yaml:"draft_settle" json:"draft_settle"`
	TriggerTimeout      time.Duration `yaml:"trigger_timeout" json:"trigger_timeout"`
	WarningProbeTimeout time.Duration `yaml:"warning_probe_timeout" json:"warning_probe_timeout"`
	ModalTimeout        time.Duration `yaml:"modal_timeout" json:"modal_timeout"`
	TagPacing           time.Duration `yaml:"tag_pacing" json:"tag_pacing"`
	SubmitTimeout       time.Duration `yaml:"submit_timeout" json:"submit_timeout"`
	SubmitSettle        time.Duration `yaml:"submit_settle" json:"submit_settle"`
}

// SelectorConfig locates every element the workflow touches
type SelectorConfig struct {
	LoginLink     browser.Selector `yaml:"login_link" json:"login_link"`
	EmailInput    browser.Selector `yaml:"email_input" json:"email_input"`
	PasswordInput browser.Selector `yaml:"password_input" json:"password_input"`
	LoginButton   browser.Selector `yaml:"login_button" json:"login_button"`

	TitleInput      browser.Selector `yaml:"title_input" json:"title_input"`
	BodyEditor      browser.Selector `yaml:"body_editor" json:"body_editor"`
	AddImageButton  browser.Selector `yaml:"add_image_button" json:"add_image_button"`
	UploadImageText browser.Selector `yaml:"upload_image_text" json:"upload_image_text"`
	SaveImageButton browser.Selector `yaml:"save_image_button" json:"save_image_button"`

	DraftButton    browser.Selector `yaml:"draft_button" json:"draft_button"`
	PublishTrigger browser.Selector `yaml:"publish_trigger" json:"publish_trigger"`
	InputWarning   browser.Selector `yaml:"input_warning" json:"input_warning"`
	WarningClose   browser.Selector `yaml:"warning_close" json:"warning_close"`
	TagInput       browser.Selector `yaml:"tag_input" json:"tag_input"`
	SubmitButton   browser.Selector `yaml:"submit_button" json:"submit_button"`
}

// RetryConfig bounds the attempts to open the publish confirmation
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	Backoff     time.Duration `yaml:"backoff" json:"backoff"`
}

// DiagnosticsConfig defines failure artifacts
type DiagnosticsConfig struct {
	// ScreenshotPath receives a full-page capture when the confirmation never opens
	ScreenshotPath string `yaml:"screenshot_path" json:"screenshot_path"`

	// Run report (run.json + summary.md)
	ReportEnabled bool   `yaml:"report_enabled" json:"report_enabled"`
	ReportDir     string `yaml:"report_dir" json:"report_dir"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Verbosity controls console output: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity" json:"verbosity"`

	// File enables the per-session log file under ~/.postnote/logs
	File bool `yaml:"file" json:"file"`
}

// DefaultConfig returns the configuration for note.com
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			HomeURL:             "https://note.com/",
			NewPostURL:          "https://note.com/notes/new",
			PublishedURLPattern: "https://note.com/*/n/*",
		},
		Browser: BrowserConfig{
			Headless:       true,
			Args:           append([]string(nil), browser.DefaultArgs...),
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
			Viewport:       browser.Viewport{Width: browser.DefaultViewportWidth, Height: browser.DefaultViewportHeight},
			DefaultTimeout: browser.DefaultTimeout,
		},
		Timings: TimingConfig{
			LoginSettle:         1 * time.Second,
			LoginFormSettle:     2 * time.Second,
			LoginTimeout:        30 * time.Second,
			EditorLoadTimeout:   30 * time.Second,
			ThumbnailSettle:     3 * time.Second,
			TitleKeyDelay:       50 * time.Millisecond,
			BodyKeyDelay:        5 * time.Millisecond,
			BodySyncSettle:      3 * time.Second,
			BlurSettle:          1 * time.Second,
			FinalizeSettle:      2 * time.Second,
			DraftButtonTimeout:  10 * time.Second,
			DraftSettle:         3 * time.Second,
			TriggerTimeout:      5 * time.Second,
			WarningProbeTimeout: 2 * time.Second,
			ModalTimeout:        5 * time.Second,
			TagPacing:           500 * time.Millisecond,
			SubmitTimeout:       30 * time.Second,
			SubmitSettle:        5 * time.Second,
		},
		Selectors: SelectorConfig{
			LoginLink:     browser.Role("link", "ログイン"),
			EmailInput:    browser.CSS("#email"),
			PasswordInput: browser.CSS("#password"),
			LoginButton:   browser.Role("button", "ログイン"),

			TitleInput:      browser.Placeholder("記事タイトル"),
			BodyEditor:      browser.CSS(".ProseMirror"),
			AddImageButton:  browser.Role("button", "画像を追加"),
			UploadImageText: browser.Text("画像をアップロード"),
			SaveImageButton: browser.Selector{By: browser.ByRole, Role: "button", Value: "保存", Exact: true},

			DraftButton:    browser.Role("button", "下書き保存"),
			PublishTrigger: browser.Selector{By: browser.ByRole, Role: "button", Pattern: "公開(設定|に進む)"},
			InputWarning:   browser.Text("タイトル、本文を入力してください"),
			WarningClose:   browser.Role("button", "閉じる"),
			TagInput:       browser.Placeholder("ハッシュタグを追加する"),
			SubmitButton:   browser.Role("button", "投稿"),
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			Backoff:     2 * time.Second,
		},
		Diagnostics: DiagnosticsConfig{
			ScreenshotPath: "error_state.png",
			ReportEnabled:  false,
			ReportDir:      ".postnote/report",
		},
		Logging: LoggingConfig{
			Verbosity: "normal",
			File:      true,
		},
	}
}

// Load builds the run configuration: defaults, overlaid with the YAML file at
// path when path is non-empty, then validated.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return *cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	for name, raw := range map[string]string{
		"site.home_url":     c.Site.HomeURL,
		"site.new_post_url": c.Site.NewPostURL,
	} {
		if raw == "" {
			return fmt.Errorf("%s is required", name)
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL: %q", name, raw)
		}
	}

	if c.Site.PublishedURLPattern != "" {
		if _, err := glob.Compile(c.Site.PublishedURLPattern, '/'); err != nil {
			return fmt.Errorf("invalid site.published_url_pattern: %w", err)
		}
	}

	if c.Browser.DefaultTimeout < 0 {
		return fmt.Errorf("browser.default_timeout cannot be negative")
	}

	if err := c.Timings.validate(); err != nil {
		return err
	}

	if err := c.Selectors.validate(); err != nil {
		return err
	}

	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1")
	}
	if c.Retry.Backoff < 0 {
		return fmt.Errorf("retry.backoff cannot be negative")
	}

	if c.Diagnostics.ScreenshotPath == "" {
		return fmt.Errorf("diagnostics.screenshot_path is required")
	}
	if c.Diagnostics.ReportEnabled && c.Diagnostics.ReportDir == "" {
		return fmt.Errorf("diagnostics.report_dir is required when reports are enabled")
	}

	// Set default verbosity if not specified
	if c.Logging.Verbosity == "" {
		c.Logging.Verbosity = "normal"
	}

	validLevels := map[string]bool{
		"quiet":   true,
		"normal":  true,
		"verbose": true,
		"debug":   true,
	}
	if !validLevels[c.Logging.Verbosity] {
		return fmt.Errorf("invalid logging verbosity: %s (must be 'quiet', 'normal', 'verbose', or 'debug')", c.Logging.Verbosity)
	}

	return nil
}

func (t TimingConfig) validate() error {
	// Bounded waits must stay bounded; zero would mean "page default" or "forever"
	bounded := []struct {
		name  string
		value time.Duration
	}{
		{"timings.login_timeout", t.LoginTimeout},
		{"timings.editor_load_timeout", t.EditorLoadTimeout},
		{"timings.draft_button_timeout", t.DraftButtonTimeout},
		{"timings.trigger_timeout", t.TriggerTimeout},
		{"timings.warning_probe_timeout", t.WarningProbeTimeout},
		{"timings.modal_timeout", t.ModalTimeout},
		{"timings.submit_timeout", t.SubmitTimeout},
	}
	for _, b := range bounded {
		if b.value <= 0 {
			return fmt.Errorf("%s must be positive", b.name)
		}
	}

	settles := []struct {
		name  string
		value time.Duration
	}{
		{"timings.login_settle", t.LoginSettle},
		{"timings.login_form_settle", t.LoginFormSettle},
		{"timings.thumbnail_settle", t.ThumbnailSettle},
		{"timings.title_key_delay", t.TitleKeyDelay},
		{"timings.body_key_delay", t.BodyKeyDelay},
		{"timings.body_sync_settle", t.BodySyncSettle},
		{"timings.blur_settle", t.BlurSettle},
		{"timings.finalize_settle", t.FinalizeSettle},
		{"timings.draft_settle", t.DraftSettle},
		{"timings.tag_pacing", t.TagPacing},
		{"timings.submit_settle", t.SubmitSettle},
	}
	for _, s := range settles {
		if s.value < 0 {
			return fmt.Errorf("%s cannot be negative", s.name)
		}
	}

	return nil
}

func (s SelectorConfig) validate() error {
	selectors := map[string]browser.Selector{
		"login_link":        s.LoginLink,
		"email_input":       s.EmailInput,
		"password_input":    s.PasswordInput,
		"login_button":      s.LoginButton,
		"title_input":       s.TitleInput,
		"body_editor":       s.BodyEditor,
		"add_image_button":  s.AddImageButton,
		"upload_image_text": s.UploadImageText,
		"save_image_button": s.SaveImageButton,
		"draft_button":      s.DraftButton,
		"publish_trigger":   s.PublishTrigger,
		"input_warning":     s.InputWarning,
		"warning_close":     s.WarningClose,
		"tag_input":         s.TagInput,
		"submit_button":     s.SubmitButton,
	}
	for name, sel := range selectors {
		if err := sel.Validate(); err != nil {
			return fmt.Errorf("selectors.%s: %w", name, err)
		}
	}
	return nil
}

// BrowserOptions converts the browser section into session launch options.
func (c Config) BrowserOptions() browser.Options {
	viewport := c.Browser.Viewport
	return browser.Options{
		Headless:         c.Browser.Headless,
		Args:             c.Browser.Args,
		UserAgent:        c.Browser.UserAgent,
		Viewport:         &viewport,
		Timeout:          c.Browser.DefaultTimeout,
		StorageStatePath: c.Browser.StorageStatePath,
		SkipInstall:      c.Browser.SkipInstall,
	}
}
