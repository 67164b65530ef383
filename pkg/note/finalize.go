package note

import (
	"context"
	"fmt"
	"time"

	"github.com/entrhq/postnote/pkg/browser"
	"github.com/entrhq/postnote/pkg/post"
)

// AttemptResult is the outcome of one try at opening the publish confirmation.
type AttemptResult int

const (
	// ModalNotFound means the trigger or the tag input never appeared
	ModalNotFound AttemptResult = iota
	// Confirmed means the tag input is visible
	Confirmed
	// WarningBlocked means the app reported the title or body as empty
	WarningBlocked
)

func (r AttemptResult) String() string {
	switch r {
	case Confirmed:
		return "confirmed"
	case WarningBlocked:
		return "warning_blocked"
	default:
		return "modal_not_found"
	}
}

// FinalizeResult describes what Finalize did.
type FinalizeResult struct {
	Attempts      int
	TagsSubmitted []string
	Verified      bool
	FinalURL      string
}

// Finalize either saves the post as a draft or drives it through the publish
// confirmation, tag entry and final submit.
func (p *Publisher) Finalize(ctx context.Context, page browser.Page, req post.Request) (FinalizeResult, error) {
	var res FinalizeResult

	if err := p.settle(ctx, p.cfg.Timings.FinalizeSettle); err != nil {
		return res, err
	}

	if !req.Publish {
		return res, p.saveDraft(ctx, page)
	}

	attempts, err := p.openConfirmation(ctx, page)
	res.Attempts = attempts
	if err != nil {
		return res, err
	}

	submitted, err := p.submitTags(ctx, page, req.Tags)
	res.TagsSubmitted = submitted
	if err != nil {
		return res, err
	}

	if err := p.submit(ctx, page); err != nil {
		return res, err
	}

	res.FinalURL = page.URL()
	res.Verified = p.verifyPublished(res.FinalURL)
	return res, nil
}

func (p *Publisher) saveDraft(ctx context.Context, page browser.Page) error {
	p.log.Infof("Saving as draft")

	button := page.Locate(p.cfg.Selectors.DraftButton)
	if err := button.WaitVisible(p.cfg.Timings.DraftButtonTimeout); err != nil {
		return newDraftSaveError("draft button did not appear", err)
	}
	if err := button.Click(); err != nil {
		return newDraftSaveError("failed to click draft button", err)
	}
	if err := p.settle(ctx, p.cfg.Timings.DraftSettle); err != nil {
		return err
	}

	p.log.Infof("Draft saved")
	return nil
}

// openConfirmation retries attemptOpen within the configured budget and
// returns the number of attempts used.
func (p *Publisher) openConfirmation(ctx context.Context, page browser.Page) (int, error) {
	maxAttempts := p.cfg.Retry.MaxAttempts

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt - 1, err
		}

		p.log.Infof("Opening publish confirmation (attempt %d/%d)", attempt, maxAttempts)
		result, err := p.attemptOpen(page)
		if err != nil {
			return attempt, &PublishError{
				Code:     CodeConfirmation,
				Message:  fmt.Sprintf("driver error on attempt %d", attempt),
				Attempts: attempt,
				Err:      err,
			}
		}
		p.log.Debugf("Attempt %d: %s", attempt, result)

		switch result {
		case Confirmed:
			return attempt, nil
		case WarningBlocked:
			return attempt, &PublishError{
				Code:     CodeInputSync,
				Message:  "title or body was not registered by the editor; rerun the whole post",
				Attempts: attempt,
			}
		}

		p.log.Warnf("Publish confirmation did not open (attempt %d/%d)", attempt, maxAttempts)
		if attempt < maxAttempts {
			if err := p.sleep(ctx, p.cfg.Retry.Backoff); err != nil {
				return attempt, err
			}
		}
	}

	return maxAttempts, p.exhausted(page, maxAttempts)
}

// attemptOpen makes one try at reaching the tag input. Only expired waits
// count as "not there"; any other driver error is returned.
func (p *Publisher) attemptOpen(page browser.Page) (AttemptResult, error) {
	sel := p.cfg.Selectors
	timings := p.cfg.Timings

	tagInput := page.Locate(sel.TagInput)
	visible, err := tagInput.IsVisible()
	if err != nil {
		return ModalNotFound, fmt.Errorf("failed to check tag input: %w", err)
	}
	if visible {
		p.log.Debugf("Tag input already visible")
		return Confirmed, nil
	}

	trigger := page.Locate(sel.PublishTrigger)
	found, err := probe(trigger, timings.TriggerTimeout)
	if err != nil {
		return ModalNotFound, fmt.Errorf("failed waiting for publish button: %w", err)
	}
	if !found {
		p.log.Debugf("Publish button %s not found", sel.PublishTrigger)
		return ModalNotFound, nil
	}
	if err := trigger.Click(); err != nil {
		// A click that times out counts as the modal not opening
		if browser.IsTimeout(err) {
			p.log.Debugf("Publish button click timed out: %v", err)
			return ModalNotFound, nil
		}
		return ModalNotFound, fmt.Errorf("failed to click publish button: %w", err)
	}

	warned, err := p.detectInputWarning(page)
	if err != nil {
		return ModalNotFound, err
	}
	if warned {
		return WarningBlocked, nil
	}

	confirmed, err := probe(tagInput, timings.ModalTimeout)
	if err != nil {
		return ModalNotFound, fmt.Errorf("failed waiting for tag input: %w", err)
	}
	if confirmed {
		return Confirmed, nil
	}
	return ModalNotFound, nil
}

// detectInputWarning checks for the empty-content warning and dismisses it.
func (p *Publisher) detectInputWarning(page browser.Page) (bool, error) {
	sel := p.cfg.Selectors

	visible, err := probe(page.Locate(sel.InputWarning), p.cfg.Timings.WarningProbeTimeout)
	if err != nil {
		return false, fmt.Errorf("failed waiting for input warning: %w", err)
	}
	if !visible {
		return false, nil
	}

	p.log.Errorf("Editor reported empty title or body")
	if err := page.Locate(sel.WarningClose).Click(); err != nil {
		p.log.Warnf("Failed to dismiss input warning: %v", err)
	}
	return true, nil
}

// exhausted captures the page and builds the modal-not-found error.
func (p *Publisher) exhausted(page browser.Page, attempts int) error {
	path := p.cfg.Diagnostics.ScreenshotPath

	perr := &PublishError{
		Code:           CodeModalNotFound,
		Message:        fmt.Sprintf("publish confirmation did not open after %d attempts", attempts),
		ScreenshotPath: path,
		Attempts:       attempts,
	}

	if err := page.Screenshot(path, true); err != nil {
		p.log.Errorf("Failed to capture screenshot %s: %v", path, err)
		perr.Err = fmt.Errorf("screenshot failed: %w", err)
	} else {
		p.log.Infof("Saved screenshot to %s", path)
	}
	return perr
}

// submitTags enters each tag with its own fill and Enter. The pacer spaces
// the tags and leaves one interval after the last so the app can commit it.
func (p *Publisher) submitTags(ctx context.Context, page browser.Page, tags []string) ([]string, error) {
	submitted := make([]string, 0, len(tags))
	if len(tags) == 0 {
		return submitted, nil
	}

	limiter := p.newPacer(p.cfg.Timings.TagPacing)
	input := page.Locate(p.cfg.Selectors.TagInput)

	p.log.Infof("Adding %d tags", len(tags))
	for _, tag := range tags {
		if err := limiter.Wait(ctx); err != nil {
			return submitted, err
		}

		p.log.Debugf("Adding tag %q", tag)
		if err := input.Fill(tag); err != nil {
			return submitted, &PublishError{Code: CodeTagEntry, Message: fmt.Sprintf("failed to enter tag %q", tag), Err: err}
		}
		if err := input.Press("Enter"); err != nil {
			return submitted, &PublishError{Code: CodeTagEntry, Message: fmt.Sprintf("failed to confirm tag %q", tag), Err: err}
		}
		submitted = append(submitted, tag)
	}

	if err := limiter.Wait(ctx); err != nil {
		return submitted, err
	}
	return submitted, nil
}

func (p *Publisher) submit(ctx context.Context, page browser.Page) error {
	button := page.Locate(p.cfg.Selectors.SubmitButton)
	if err := button.WaitVisible(p.cfg.Timings.SubmitTimeout); err != nil {
		return &PublishError{Code: CodeSubmit, Message: "submit button did not appear", Err: err}
	}

	p.log.Infof("Submitting post")
	if err := button.Click(); err != nil {
		return &PublishError{Code: CodeSubmit, Message: "failed to click submit button", Err: err}
	}
	return p.settle(ctx, p.cfg.Timings.SubmitSettle)
}

func (p *Publisher) verifyPublished(url string) bool {
	if p.published == nil {
		p.log.Infof("Submitted; completion not verified")
		return false
	}

	if p.published.Match(url) {
		p.log.Infof("Published at %s", url)
		return true
	}

	p.log.Warnf("Submitted but %s does not look like a published article; completion is best-effort", url)
	return false
}

// probe waits for el to become visible. An expired wait is reported as not
// visible; other errors are returned.
func probe(el browser.Element, timeout time.Duration) (bool, error) {
	err := el.WaitVisible(timeout)
	switch {
	case err == nil:
		return true, nil
	case browser.IsTimeout(err):
		return false, nil
	default:
		return false, err
	}
}
