// Package report writes the run.json and summary.md artifacts of a posting run.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/entrhq/postnote/pkg/note"
	"github.com/entrhq/postnote/pkg/post"
	"github.com/google/uuid"
)

// Run statuses
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// RunSummary is the record of one run. It never holds the article body or
// any credential; only the body length is kept.
type RunSummary struct {
	RunID          string        `json:"run_id"`
	Title          string        `json:"title"`
	Mode           string        `json:"mode"`
	Status         string        `json:"status"`
	ErrorCode      string        `json:"error_code,omitempty"`
	Error          string        `json:"error,omitempty"`
	ScreenshotPath string        `json:"screenshot_path,omitempty"`
	BodyLength     int           `json:"body_length"`
	Tags           []string      `json:"tags"`
	TagsSubmitted  []string      `json:"tags_submitted"`
	Thumbnail      bool          `json:"thumbnail"`
	LoggedIn       bool          `json:"logged_in"`
	Attempts       int           `json:"attempts"`
	Verified       bool          `json:"verified"`
	FinalURL       string        `json:"final_url,omitempty"`
	StartTime      time.Time     `json:"start_time"`
	EndTime        time.Time     `json:"end_time"`
	Duration       time.Duration `json:"duration"`
}

// NewRunSummary starts a summary for req.
func NewRunSummary(req post.Request, start time.Time) *RunSummary {
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	return &RunSummary{
		RunID:         uuid.New().String(),
		Title:         req.Title,
		Mode:          req.Mode(),
		BodyLength:    utf8.RuneCountInString(req.Body),
		Tags:          tags,
		TagsSubmitted: []string{},
		StartTime:     start,
	}
}

// Complete records the outcome of the run.
func (s *RunSummary) Complete(res *note.Result, runErr error, end time.Time) {
	s.EndTime = end
	s.Duration = end.Sub(s.StartTime)

	if res != nil {
		s.LoggedIn = res.LoggedIn
		s.Thumbnail = res.Thumbnail
		s.Attempts = res.Attempts
		s.Verified = res.Verified
		s.FinalURL = res.FinalURL
		if res.TagsSubmitted != nil {
			s.TagsSubmitted = res.TagsSubmitted
		}
	}

	if runErr == nil {
		s.Status = StatusSuccess
		return
	}

	s.Status = StatusFailed
	s.ErrorCode = note.ErrorCode(runErr)
	s.Error = runErr.Error()

	var perr *note.PublishError
	if errors.As(runErr, &perr) {
		s.ScreenshotPath = perr.ScreenshotPath
	}
}

// Writer writes run artifacts into a directory
type Writer struct {
	outputDir string
}

// NewWriter creates a writer for outputDir
func NewWriter(outputDir string) *Writer {
	return &Writer{
		outputDir: outputDir,
	}
}

// WriteAll writes run.json and summary.md
func (w *Writer) WriteAll(summary *RunSummary) error {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	if err := w.WriteRunJSON(summary); err != nil {
		return fmt.Errorf("failed to write run JSON: %w", err)
	}

	if err := w.WriteSummaryMarkdown(summary); err != nil {
		return fmt.Errorf("failed to write summary markdown: %w", err)
	}

	return nil
}

// WriteRunJSON writes the summary as JSON
func (w *Writer) WriteRunJSON(summary *RunSummary) error {
	path := filepath.Join(w.outputDir, "run.json")

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	if writeErr := os.WriteFile(path, data, 0600); writeErr != nil {
		return fmt.Errorf("failed to write run JSON: %w", writeErr)
	}

	return nil
}

// WriteSummaryMarkdown writes a human-readable summary
func (w *Writer) WriteSummaryMarkdown(summary *RunSummary) error {
	path := filepath.Join(w.outputDir, "summary.md")

	var md strings.Builder

	md.WriteString("# note.com Post Summary\n\n")
	md.WriteString(fmt.Sprintf("**Run:** %s\n\n", summary.RunID))
	md.WriteString(fmt.Sprintf("**Title:** %s\n\n", summary.Title))
	md.WriteString(fmt.Sprintf("**Mode:** %s\n\n", summary.Mode))
	md.WriteString(fmt.Sprintf("**Started:** %s\n\n", summary.StartTime.Format(time.RFC3339)))
	md.WriteString(fmt.Sprintf("**Completed:** %s\n\n", summary.EndTime.Format(time.RFC3339)))
	md.WriteString(fmt.Sprintf("**Duration:** %s\n\n", summary.Duration))

	md.WriteString("## Result\n\n")
	if summary.Status == StatusSuccess {
		md.WriteString("✅ **Success**\n\n")
	} else {
		md.WriteString(fmt.Sprintf("❌ **%s:** %s\n\n", summary.ErrorCode, summary.Error))
	}
	if summary.ScreenshotPath != "" {
		md.WriteString(fmt.Sprintf("Screenshot: `%s`\n\n", summary.ScreenshotPath))
	}
	if summary.FinalURL != "" {
		verified := "unverified"
		if summary.Verified {
			verified = "verified"
		}
		md.WriteString(fmt.Sprintf("Final URL: %s (%s)\n\n", summary.FinalURL, verified))
	}

	if len(summary.Tags) > 0 {
		md.WriteString("## Tags\n\n")
		submitted := make(map[string]bool, len(summary.TagsSubmitted))
		for _, tag := range summary.TagsSubmitted {
			submitted[tag] = true
		}
		for _, tag := range summary.Tags {
			status := "✅"
			if !submitted[tag] {
				status = "❌"
			}
			md.WriteString(fmt.Sprintf("- %s %s\n", status, tag))
		}
		md.WriteString("\n")
	}

	md.WriteString("## Details\n\n")
	md.WriteString(fmt.Sprintf("- **Body Length:** %d\n", summary.BodyLength))
	md.WriteString(fmt.Sprintf("- **Thumbnail:** %t\n", summary.Thumbnail))
	md.WriteString(fmt.Sprintf("- **Logged In This Run:** %t\n", summary.LoggedIn))
	md.WriteString(fmt.Sprintf("- **Confirmation Attempts:** %d\n", summary.Attempts))

	if writeErr := os.WriteFile(path, []byte(md.String()), 0600); writeErr != nil {
		return fmt.Errorf("failed to write summary markdown: %w", writeErr)
	}

	return nil
}
