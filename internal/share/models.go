package share

import (
	"time"

	"sharebox-go/internal/countdown"
)

// ShareResult is what the backend hands back for a successful upload.
type ShareResult struct {
	Hash       string
	Link       string
	AccessCode string
	ExpiresIn  time.Duration
}

// Countdown returns a fresh, not yet started countdown for the share expiry.
func (r *ShareResult) Countdown() *countdown.Countdown {
	return countdown.New(r.ExpiresIn)
}

type ContentKind string

const (
	KindFiles ContentKind = "files"
	KindText  ContentKind = "text"
)

type RemoteFile struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// RedeemedContent is the payload behind an access code or hash.
type RedeemedContent struct {
	Kind  ContentKind
	Files []RemoteFile
	Text  string
}

// wire formats

type uploadResponse struct {
	Hash       string `json:"hash"`
	AccessCode string `json:"accessCode"`
	ExpiresIn  int64  `json:"expiresIn"`
}

type textUploadRequest struct {
	TextContent string `json:"textContent"`
}

type codeRequest struct {
	AccessCode string `json:"accessCode"`
}

type hashRequest struct {
	Hash string `json:"hash"`
}

type accessResponse struct {
	Type        ContentKind  `json:"type"`
	Files       []RemoteFile `json:"files"`
	TextContent string       `json:"textContent"`
}
