package session

import (
	"context"
	"sync"

	"sharebox-go/internal/classifier"
	"sharebox-go/internal/countdown"
	"sharebox-go/internal/share"
	"sharebox-go/internal/validation"
)

type ViewMode string

const (
	ViewList   ViewMode = "list"
	ViewViewer ViewMode = "viewer"
)

// Receive holds the state of the receive view for one session. The same
// state backs the code form on the combined page and the standalone link
// page; only the way content is requested differs.
type Receive struct {
	mu            sync.Mutex
	input         *share.AccessCodeInput
	authenticated bool
	errorMsg      string
	content       *share.RedeemedContent
	selected      int
	mode          ViewMode

	redeemer   *share.Redeemer
	textCopied *countdown.Flag
}

func NewReceive(client *share.Client) *Receive {
	return &Receive{
		input:      &share.AccessCodeInput{},
		selected:   -1,
		mode:       ViewList,
		redeemer:   share.NewRedeemer(client),
		textCopied: countdown.NewFlag(textCopiedFor),
	}
}

// SelectedFile is a redeemed file together with how it is presented.
type SelectedFile struct {
	share.RemoteFile
	classifier.Classification
}

type ReceiveView struct {
	Code          string
	Digits        []string
	Authenticated bool
	ErrorMsg      string
	Content       *share.RedeemedContent
	Mode          ViewMode
	Selected      *SelectedFile
	TextCopied    bool
}

func (r *Receive) View() ReceiveView {
	r.mu.Lock()
	defer r.mu.Unlock()

	v := ReceiveView{
		Code:          r.input.Code(),
		Authenticated: r.authenticated,
		ErrorMsg:      r.errorMsg,
		Content:       r.content,
		Mode:          r.mode,
		TextCopied:    r.textCopied.Active(),
	}
	for i := 0; i < validation.AccessCodeLength; i++ {
		v.Digits = append(v.Digits, r.input.Digit(i))
	}
	if sel, ok := r.selectedLocked(); ok {
		v.Selected = &sel
	}
	return v
}

// SetDigit types into one digit box.
func (r *Receive) SetDigit(index int, value string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.input.Set(index, value)
}

// Paste fills the digit boxes from s and returns the box to focus next.
func (r *Receive) Paste(s string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.input.Paste(s)
}

// SetCode replaces all digits with those of code.
func (r *Receive) SetCode(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.input.Reset()
	r.input.Paste(code)
}

// Submit redeems the digits currently entered.
func (r *Receive) Submit(ctx context.Context) error {
	r.mu.Lock()
	code := r.input.Code()
	r.mu.Unlock()

	content, err := r.redeemer.RedeemCode(ctx, code)
	r.apply(content, err)
	return err
}

// Open redeems the content behind a share link hash.
func (r *Receive) Open(ctx context.Context, hash string) error {
	content, err := r.redeemer.RedeemHash(ctx, hash)
	r.apply(content, err)
	return err
}

func (r *Receive) apply(content *share.RedeemedContent, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		r.authenticated = false
		r.content = nil
		r.errorMsg = share.UserMessage(err)
		return
	}
	r.authenticated = true
	r.content = content
	r.errorMsg = ""
	r.selected = -1
	r.mode = ViewList
}

// Select opens file i of the redeemed content. Previewable files switch to
// the viewer; others stay in the list and are meant to be downloaded.
func (r *Receive) Select(i int) (SelectedFile, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.content == nil || i < 0 || i >= len(r.content.Files) {
		return SelectedFile{}, false
	}
	r.selected = i
	sel, _ := r.selectedLocked()
	if sel.Category.Previewable() {
		r.mode = ViewViewer
	}
	return sel, true
}

func (r *Receive) selectedLocked() (SelectedFile, bool) {
	if r.content == nil || r.selected < 0 || r.selected >= len(r.content.Files) {
		return SelectedFile{}, false
	}
	f := r.content.Files[r.selected]
	return SelectedFile{RemoteFile: f, Classification: classifier.Classify(f.Name)}, true
}

// Back leaves the viewer.
func (r *Receive) Back() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selected = -1
	r.mode = ViewList
}

func (r *Receive) MarkCopied(target string) error {
	if target != CopyText {
		return ErrUnknownTarget
	}
	r.textCopied.Set()
	return nil
}

// Reset returns the view to an empty code form.
func (r *Receive) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.input.Reset()
	r.authenticated = false
	r.errorMsg = ""
	r.content = nil
	r.selected = -1
	r.mode = ViewList
	r.textCopied.Clear()
}
