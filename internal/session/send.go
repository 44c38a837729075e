package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"sharebox-go/internal/countdown"
	"sharebox-go/internal/selection"
	"sharebox-go/internal/share"
)

type Mode string

const (
	ModeFiles Mode = "files"
	ModeText  Mode = "text"
)

const (
	linkCopiedFor = 5 * time.Second
	codeCopiedFor = 5 * time.Second
	textCopiedFor = 2 * time.Second
)

var ErrUnknownTarget = errors.New("unknown copy target")

// Copy targets shown with a "Copied!" label. Link and code belong to the send
// view, text to the receive view.
const (
	CopyLink = "link"
	CopyCode = "code"
	CopyText = "text"
)

// Send holds the state of the send view for one session.
type Send struct {
	mu        sync.Mutex
	mode      Mode
	selection *selection.State
	text      string
	errors    []string

	submitter *share.Submitter
	result    *share.ShareResult
	countdown *countdown.Countdown

	linkCopied *countdown.Flag
	codeCopied *countdown.Flag

	// spool holds copies of browser uploads until they are sent or removed
	spool string

	// generation changes on Reset; uploads started before it are discarded
	generation uint64
}

func NewSend(client *share.Client, limits selection.Limits) *Send {
	return &Send{
		mode:       ModeFiles,
		selection:  selection.NewState(limits),
		submitter:  share.NewSubmitter(client),
		linkCopied: countdown.NewFlag(linkCopiedFor),
		codeCopied: countdown.NewFlag(codeCopiedFor),
	}
}

// SendView is an immutable snapshot for rendering.
type SendView struct {
	Mode       Mode
	Files      []selection.SelectableFile
	TotalBytes int64
	Limits     selection.Limits
	Text       string
	Errors     []string
	Uploading  bool

	Result     *share.ShareResult
	Remaining  time.Duration
	LinkCopied bool
	CodeCopied bool
}

func (s *Send) View() SendView {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := SendView{
		Mode:       s.mode,
		Files:      s.selection.Files(),
		TotalBytes: s.selection.TotalBytes(),
		Limits:     s.selection.Limits(),
		Text:       s.text,
		Errors:     append([]string(nil), s.errors...),
		Uploading:  s.submitter.Busy(),
		Result:     s.result,
		LinkCopied: s.linkCopied.Active(),
		CodeCopied: s.codeCopied.Active(),
	}
	if s.countdown != nil {
		v.Remaining = s.countdown.Remaining()
	}
	return v
}

// AddFiles validates incoming against the current selection and keeps the
// accepted files. The returned error, if any, is a *selection.ValidationError.
func (s *Send) AddFiles(incoming []selection.SelectableFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.selection.Add(incoming)
	s.errors = res.Errors

	kept := make(map[string]bool, len(res.Accepted))
	for _, f := range res.Accepted {
		if path, ok := f.Handle.(string); ok {
			kept[path] = true
		}
	}
	for _, f := range incoming {
		if path, ok := f.Handle.(string); !ok || !kept[path] {
			s.release(f)
		}
	}
	return res.Err()
}

// Spool copies r into the session's spool directory so the file survives the
// request it arrived with. The returned path is meant as a SelectableFile
// handle; spooled files are deleted when they leave the selection.
func (s *Send) Spool(name string, r io.Reader) (string, error) {
	s.mu.Lock()
	if s.spool == "" {
		dir, err := os.MkdirTemp("", "sharebox-spool-*")
		if err != nil {
			s.mu.Unlock()
			return "", fmt.Errorf("creating spool directory: %w", err)
		}
		s.spool = dir
	}
	dir := s.spool
	s.mu.Unlock()

	f, err := os.CreateTemp(dir, "upload-*"+filepath.Ext(name))
	if err != nil {
		return "", fmt.Errorf("spooling %s: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("spooling %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("spooling %s: %w", name, err)
	}
	return f.Name(), nil
}

// release deletes the spooled copy behind f, if there is one.
func (s *Send) release(f selection.SelectableFile) {
	path, ok := f.Handle.(string)
	if !ok || s.spool == "" || filepath.Dir(path) != s.spool {
		return
	}
	os.Remove(path)
}

func (s *Send) RemoveFile(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files := s.selection.Files()
	if index >= 0 && index < len(files) {
		s.release(files[index])
	}
	s.selection.Remove(index)
}

func (s *Send) SetMode(m Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m != ModeText {
		m = ModeFiles
	}
	s.mode = m
	s.errors = nil
}

// SetErrors replaces the messages shown above the form.
func (s *Send) SetErrors(msgs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = msgs
}

func (s *Send) SetText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
}

// Submit uploads the selection or the text, depending on the mode. On
// success the countdown starts and runs until it expires or Reset is called.
// A Reset while the request is in flight wins: the late outcome is returned
// but not shown.
func (s *Send) Submit(ctx context.Context) (*share.ShareResult, error) {
	s.mu.Lock()
	mode, files, text := s.mode, s.selection.Files(), s.text
	generation := s.generation
	s.mu.Unlock()

	var (
		res *share.ShareResult
		err error
	)
	if mode == ModeText {
		res, err = s.submitter.SubmitText(ctx, text)
	} else {
		res, err = s.submitter.SubmitFiles(ctx, files)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		log.Debug().
			Bool("failed", err != nil).
			Msg("discarding upload outcome after reset")
		return res, err
	}
	if err != nil {
		s.errors = []string{share.UserMessage(err)}
		return nil, err
	}

	s.errors = nil
	s.result = res
	if s.countdown != nil {
		s.countdown.Stop()
	}
	s.countdown = res.Countdown()
	s.countdown.Start(context.Background(), nil)
	return res, nil
}

// MarkCopied raises the "Copied!" label of a result field.
func (s *Send) MarkCopied(target string) error {
	switch target {
	case CopyLink:
		s.linkCopied.Set()
	case CopyCode:
		s.codeCopied.Set()
	default:
		return ErrUnknownTarget
	}
	return nil
}

// Reset returns the view to an empty file selection.
func (s *Send) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++

	if s.countdown != nil {
		s.countdown.Stop()
		s.countdown = nil
	}
	s.result = nil
	s.text = ""
	s.mode = ModeFiles
	s.errors = nil
	for _, f := range s.selection.Files() {
		s.release(f)
	}
	s.selection.Reset()
	s.linkCopied.Clear()
	s.codeCopied.Clear()
}

func (s *Send) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countdown != nil {
		s.countdown.Stop()
	}
	if s.spool != "" {
		os.RemoveAll(s.spool)
	}
}
