package note

import (
	"context"
	"fmt"

	"github.com/entrhq/postnote/pkg/browser"
	"github.com/entrhq/postnote/pkg/config"
)

// EnsureAuthenticated makes sure the browser is logged in. It reports whether
// the login form had to be submitted; when the login link is absent the
// session is assumed to be valid already.
func (p *Publisher) EnsureAuthenticated(ctx context.Context, page browser.Page, creds config.Credentials) (bool, error) {
	home := p.cfg.Site.HomeURL
	sel := p.cfg.Selectors
	timings := p.cfg.Timings

	p.log.Debugf("Navigating to %s", home)
	if err := page.Navigate(home, browser.NavigateOptions{WaitUntil: "domcontentloaded"}); err != nil {
		return false, newAuthError("failed to open home page", err)
	}
	if err := p.settle(ctx, timings.LoginSettle); err != nil {
		return false, err
	}

	visible, err := page.Locate(sel.LoginLink).IsVisible()
	if err != nil {
		return false, newAuthError("failed to check login state", err)
	}
	if !visible {
		p.log.Infof("Already logged in")
		return false, nil
	}

	if creds.Empty() {
		return false, newAuthError(fmt.Sprintf("login required but %s/%s are not set", config.EnvEmail, config.EnvPassword), nil)
	}

	p.log.Infof("Logging in")
	if err := page.Locate(sel.LoginLink).Click(); err != nil {
		return false, newAuthError("failed to open login form", err)
	}
	if err := p.settle(ctx, timings.LoginFormSettle); err != nil {
		return false, err
	}

	if err := page.Locate(sel.EmailInput).Fill(creds.Email); err != nil {
		return false, newAuthError("failed to fill email", err)
	}
	if err := page.Locate(sel.PasswordInput).Fill(creds.Password); err != nil {
		return false, newAuthError("failed to fill password", err)
	}
	if err := page.Locate(sel.LoginButton).Click(); err != nil {
		return false, newAuthError("failed to submit login form", err)
	}

	if err := page.WaitForURL(home, timings.LoginTimeout); err != nil {
		return false, newAuthError(fmt.Sprintf("did not return to %s after login", home), err)
	}

	p.log.Infof("Login successful")
	return true, nil
}
