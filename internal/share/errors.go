package share

import (
	"errors"
)

var (
	ErrEmptySelection     = errors.New("no files selected")
	ErrAlreadyInProgress  = errors.New("request already in progress")
	ErrIncompleteCode     = errors.New("incomplete access code")
	ErrInvalidCode        = errors.New("invalid access code")
	ErrContentUnavailable = errors.New("content not found or expired")
	ErrTimeout            = errors.New("request timed out")

	errUnexpectedStatus = errors.New("unexpected status")
	errMalformed        = errors.New("malformed response")
)

// Messages shown to users. Server-side causes are never surfaced.
const (
	MsgUploadFailed       = "Upload failed"
	MsgTextFailed         = "Text sharing failed"
	MsgEmptySelection     = "Please select at least one file"
	MsgIncompleteCode     = "Please enter a complete 6-digit code"
	MsgInvalidCode        = "Invalid access code!"
	MsgContentUnavailable = "Content not found or expired!"
	MsgTimeout            = "The server took too long to respond"
)

// UploadError is returned for any failed upload. Message is safe to show to
// users; Cause is kept for logs.
type UploadError struct {
	Message string
	Cause   error
}

func (e *UploadError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *UploadError) Unwrap() error {
	return e.Cause
}

// UserMessage returns the text to show for err.
func UserMessage(err error) string {
	var uerr *UploadError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &uerr):
		if errors.Is(uerr.Cause, ErrTimeout) {
			return uerr.Message + ". " + MsgTimeout + "."
		}
		return uerr.Message + ". Please try again."
	case errors.Is(err, ErrEmptySelection):
		return MsgEmptySelection
	case errors.Is(err, ErrIncompleteCode):
		return MsgIncompleteCode
	case errors.Is(err, ErrInvalidCode):
		return MsgInvalidCode
	case errors.Is(err, ErrContentUnavailable):
		return MsgContentUnavailable
	case errors.Is(err, ErrTimeout):
		return MsgTimeout + ". Please try again."
	default:
		return err.Error()
	}
}
