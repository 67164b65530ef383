package note

import (
	"context"

	"github.com/entrhq/postnote/pkg/browser"
	"github.com/entrhq/postnote/pkg/post"
)

// PopulateEditor opens a new post and enters the thumbnail, title and body.
// It reports whether a thumbnail was uploaded.
func (p *Publisher) PopulateEditor(ctx context.Context, page browser.Page, req post.Request) (bool, error) {
	if err := p.openEditor(page); err != nil {
		return false, err
	}

	uploaded, err := p.addThumbnail(ctx, page, req.ThumbnailPath)
	if err != nil {
		return false, err
	}

	if err := p.inputTitle(page, req.Title); err != nil {
		return uploaded, err
	}
	if err := p.inputBody(ctx, page, req.Body); err != nil {
		return uploaded, err
	}

	return uploaded, nil
}

func (p *Publisher) openEditor(page browser.Page) error {
	url := p.cfg.Site.NewPostURL

	p.log.Infof("Opening editor")
	p.log.Debugf("Navigating to %s", url)
	if err := page.Navigate(url, browser.NavigateOptions{}); err != nil {
		return newEditorLoadError("failed to open new post page", err)
	}

	if err := page.Locate(p.cfg.Selectors.TitleInput).WaitVisible(p.cfg.Timings.EditorLoadTimeout); err != nil {
		return newEditorLoadError("title field did not appear", err)
	}
	return nil
}

// addThumbnail uploads the header image. A missing file or a missing upload
// affordance skips the step; failures after the dialog was opened are fatal.
func (p *Publisher) addThumbnail(ctx context.Context, page browser.Page, path string) (bool, error) {
	thumb := post.ResolveThumbnail(path)
	if !thumb.Present() {
		if thumb.Requested {
			p.log.Warnf("Skipping thumbnail: %s", thumb.Reason)
		} else {
			p.log.Debugf("Skipping thumbnail: %s", thumb.Reason)
		}
		return false, nil
	}

	sel := p.cfg.Selectors

	addButton := page.Locate(sel.AddImageButton)
	visible, err := addButton.IsVisible()
	if err != nil {
		return false, newThumbnailError("failed to look for image button", err)
	}
	if !visible {
		p.log.Warnf("Image button not found, skipping thumbnail")
		return false, nil
	}

	p.log.Infof("Uploading thumbnail %s (%s %dx%d)", thumb.Path, thumb.Format, thumb.Width, thumb.Height)
	if err := addButton.Click(); err != nil {
		return false, newThumbnailError("failed to click image button", err)
	}

	trigger := func() error {
		return page.Locate(sel.UploadImageText).Click()
	}
	if err := page.UploadViaChooser(trigger, thumb.Path); err != nil {
		return false, newThumbnailError("failed to supply image file", err)
	}

	save := page.Locate(sel.SaveImageButton)
	if err := save.WaitVisible(0); err != nil {
		return false, newThumbnailError("save button did not appear", err)
	}
	if err := save.Click(); err != nil {
		return false, newThumbnailError("failed to save image", err)
	}

	if err := p.settle(ctx, p.cfg.Timings.ThumbnailSettle); err != nil {
		return false, err
	}

	p.log.Infof("Thumbnail uploaded")
	return true, nil
}

func (p *Publisher) inputTitle(page browser.Page, title string) error {
	p.log.Infof("Entering title")

	field := page.Locate(p.cfg.Selectors.TitleInput)
	if err := field.Click(); err != nil {
		return newEditorLoadError("failed to focus title field", err)
	}
	if err := field.Clear(); err != nil {
		return newEditorLoadError("failed to clear title field", err)
	}
	if err := field.TypeSequentially(title, browser.TypeOptions{Delay: p.cfg.Timings.TitleKeyDelay}); err != nil {
		return newEditorLoadError("failed to type title", err)
	}
	return nil
}

// inputBody types the body key by key so the editor registers every change.
// Typing has no timeout since long bodies take minutes at the key delay.
func (p *Publisher) inputBody(ctx context.Context, page browser.Page, body string) error {
	sel := p.cfg.Selectors
	timings := p.cfg.Timings

	p.log.Infof("Entering body (%d chars)", len([]rune(body)))

	editor := page.Locate(sel.BodyEditor)
	if err := editor.Click(); err != nil {
		return newEditorLoadError("failed to focus body editor", err)
	}
	if err := editor.TypeSequentially(body, browser.TypeOptions{Delay: timings.BodyKeyDelay}); err != nil {
		return newEditorLoadError("failed to type body", err)
	}
	if err := p.settle(ctx, timings.BodySyncSettle); err != nil {
		return err
	}

	// Blur the editor so it commits its state
	if err := page.Locate(sel.TitleInput).Click(); err != nil {
		return newEditorLoadError("failed to blur body editor", err)
	}
	return p.settle(ctx, timings.BlurSettle)
}
