// Package browser provides the page driver used to automate the note.com editor.
//
// The package is built around three concepts:
//
//  1. Session: a Playwright driver, Chromium instance, browser context and page owned by one run
//  2. Page: the capability consumed by the posting workflow (navigate, locate, screenshot, uploads)
//  3. Element: a lazily resolved locator that can be waited on, clicked, filled and typed into
//
// # Session Lifecycle
//
// A Session is acquired once per process and must be released on every exit path:
//
//	session, err := browser.Launch(browser.Options{Headless: true})
//	if err != nil {
//	    return err
//	}
//	defer session.Close()
//
//	page := session.Page()
//	err = page.Navigate("https://note.com/", browser.NavigateOptions{})
//
// # Timeouts
//
// Every bounded wait that expires returns an error wrapping ErrTimeout. Callers that
// treat "not visible in time" as a normal outcome should test for it with errors.Is
// rather than swallowing every error.
package browser
