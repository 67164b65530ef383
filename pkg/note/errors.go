package note

import (
	"context"
	"errors"
	"fmt"
)

// Error codes attached to every workflow failure.
const (
	CodeAuth          = "AUTH_FAILED"
	CodeEditorLoad    = "EDITOR_LOAD_FAILED"
	CodeThumbnail     = "THUMBNAIL_UPLOAD_FAILED"
	CodeDraftSave     = "DRAFT_SAVE_FAILED"
	CodeInputSync     = "INPUT_SYNC_FAILED"
	CodeModalNotFound = "PUBLISH_MODAL_NOT_FOUND"
	CodeConfirmation  = "PUBLISH_CONFIRMATION_FAILED"
	CodeTagEntry      = "TAG_ENTRY_FAILED"
	CodeSubmit        = "SUBMIT_FAILED"
	CodeCanceled      = "CANCELED"
)

// stageError carries a code and the underlying driver error.
type stageError struct {
	Code    string
	Message string
	Err     error
}

func (e *stageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *stageError) Unwrap() error {
	return e.Err
}

// ErrorCode returns the machine-readable failure code.
func (e *stageError) ErrorCode() string {
	return e.Code
}

// AuthError means the login form was present but submitting it did not bring
// the browser back to the home page.
type AuthError struct{ stageError }

func newAuthError(message string, err error) *AuthError {
	return &AuthError{stageError{Code: CodeAuth, Message: message, Err: err}}
}

// EditorLoadError means the editor never became interactive.
type EditorLoadError struct{ stageError }

func newEditorLoadError(message string, err error) *EditorLoadError {
	return &EditorLoadError{stageError{Code: CodeEditorLoad, Message: message, Err: err}}
}

// ThumbnailError means the upload dialog was opened but the image could not be saved.
type ThumbnailError struct{ stageError }

func newThumbnailError(message string, err error) *ThumbnailError {
	return &ThumbnailError{stageError{Code: CodeThumbnail, Message: message, Err: err}}
}

// DraftSaveError means the draft button never appeared or could not be clicked.
type DraftSaveError struct{ stageError }

func newDraftSaveError(message string, err error) *DraftSaveError {
	return &DraftSaveError{stageError{Code: CodeDraftSave, Message: message, Err: err}}
}

// PublishError is a failure of the publish flow.
//
// CodeInputSync is never retried: the editor did not register the typed
// content, so the whole run has to be repeated. CodeModalNotFound is raised
// only after the retry budget is spent and names the diagnostic screenshot.
type PublishError struct {
	Code           string
	Message        string
	ScreenshotPath string
	Attempts       int
	Err            error
}

func (e *PublishError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// ErrorCode returns the machine-readable failure code.
func (e *PublishError) ErrorCode() string {
	return e.Code
}

// InputSync reports whether the target app rejected the post as empty.
func (e *PublishError) InputSync() bool {
	return e.Code == CodeInputSync
}

// ErrorCode extracts the failure code from err, looking through wrapping.
// It returns "" for nil and for errors raised outside the workflow.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var coded interface{ ErrorCode() string }
	if errors.As(err, &coded) {
		return coded.ErrorCode()
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCanceled
	}
	return ""
}

// ExitCode maps a run outcome to the process exit status.
func ExitCode(err error) int {
	if err != nil {
		return 1
	}
	return 0
}
