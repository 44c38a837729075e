package share

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"sharebox-go/internal/selection"
)

// Submitter uploads a selection or a text snippet. One Submitter belongs to
// one view session and runs at most one upload at a time.
type Submitter struct {
	client *Client
	busy   atomic.Bool
}

func NewSubmitter(client *Client) *Submitter {
	return &Submitter{client: client}
}

// Busy reports whether an upload is outstanding.
func (s *Submitter) Busy() bool {
	return s.busy.Load()
}

// SubmitFiles uploads files in one multipart request.
func (s *Submitter) SubmitFiles(ctx context.Context, files []selection.SelectableFile) (*ShareResult, error) {
	if len(files) == 0 {
		return nil, ErrEmptySelection
	}
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrAlreadyInProgress
	}
	defer s.busy.Store(false)

	res, err := s.client.uploadFiles(ctx, files)
	if err != nil {
		log.Warn().
			Err(err).
			Int("files", len(files)).
			Msg("file upload failed")
		return nil, &UploadError{Message: MsgUploadFailed, Cause: err}
	}

	log.Info().
		Int("files", len(files)).
		Str("hash", res.Hash).
		Dur("expires_in", res.ExpiresIn).
		Msg("share created")
	return res, nil
}

// SubmitText uploads text as-is; an empty string is sent too.
func (s *Submitter) SubmitText(ctx context.Context, text string) (*ShareResult, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrAlreadyInProgress
	}
	defer s.busy.Store(false)

	res, err := s.client.uploadText(ctx, text)
	if err != nil {
		log.Warn().
			Err(err).
			Int("text_length", len(text)).
			Msg("text upload failed")
		return nil, &UploadError{Message: MsgTextFailed, Cause: err}
	}

	log.Info().
		Int("text_length", len(text)).
		Str("hash", res.Hash).
		Dur("expires_in", res.ExpiresIn).
		Msg("share created")
	return res, nil
}
