package share

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"sharebox-go/internal/selection"
)

const (
	pathUploadFiles = "/upload/files"
	pathUploadText  = "/upload/text"
	pathAccessCode  = "/access/code"
	pathAccessHash  = "/access"

	// cap on error bodies read for logging
	maxErrorBody = 4 << 10
)

// Client talks to the sharing backend. It holds no per-session state and is
// safe for concurrent use; the busy guards live in Submitter and Redeemer.
type Client struct {
	baseURL    *url.URL
	origin     string
	httpClient *http.Client
	timeout    time.Duration
	open       OpenFunc
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds every request. Zero means no deadline beyond ctx.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithOpener sets how SelectableFile handles are opened for upload.
func WithOpener(open OpenFunc) Option {
	return func(c *Client) { c.open = open }
}

// NewClient creates a client for the backend at apiURL. Share links are built
// as origin + "/" + hash.
func NewClient(apiURL, origin string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(apiURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing api url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api url %q must be absolute", apiURL)
	}

	c := &Client{
		baseURL:    base,
		origin:     strings.TrimRight(origin, "/"),
		httpClient: http.DefaultClient,
		open:       OpenHandle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Link returns the public link for a share hash.
func (c *Client) Link(hash string) string {
	return c.origin + "/" + url.PathEscape(hash)
}

func (c *Client) endpoint(path string) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	return u.String()
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

// OpenFunc opens the content behind a SelectableFile.
type OpenFunc func(f selection.SelectableFile) (io.ReadCloser, error)

// OpenHandle understands the handle types produced in this module: a local
// path, a multipart header, raw bytes or a reader.
func OpenHandle(f selection.SelectableFile) (io.ReadCloser, error) {
	switch h := f.Handle.(type) {
	case string:
		return os.Open(h)
	case *multipart.FileHeader:
		return h.Open()
	case []byte:
		return io.NopCloser(bytes.NewReader(h)), nil
	case io.ReadCloser:
		return h, nil
	case io.Reader:
		return io.NopCloser(h), nil
	default:
		return nil, fmt.Errorf("%s: unsupported file handle %T", f.Name, f.Handle)
	}
}

// uploadFiles streams files as one multipart request, field "files" repeated.
func (c *Client) uploadFiles(ctx context.Context, files []selection.SelectableFile) (*ShareResult, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	writeErr := make(chan error, 1)
	go func() {
		err := c.writeParts(mw, files)
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
		writeErr <- err
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(pathUploadFiles), pr)
	if err != nil {
		pr.Close()
		<-writeErr
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out uploadResponse
	err = c.do(req, &out)

	// unblock the writer if the request ended before the body was consumed
	pr.CloseWithError(io.ErrClosedPipe)
	if werr := <-writeErr; werr != nil && !errors.Is(werr, io.ErrClosedPipe) {
		err = fmt.Errorf("writing multipart body: %w", werr)
	}
	if err != nil {
		return nil, c.classify(ctx, err)
	}

	return c.shareResult(out)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (c *Client) writeParts(mw *multipart.Writer, files []selection.SelectableFile) error {
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="files"; filename="%s"`, quoteEscaper.Replace(f.Name)))
		contentType := f.MimeType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)

		part, err := mw.CreatePart(h)
		if err != nil {
			return err
		}

		src, err := c.open(f)
		if err != nil {
			return fmt.Errorf("opening %s: %w", f.Name, err)
		}
		_, err = io.Copy(part, src)
		src.Close()
		if err != nil {
			return fmt.Errorf("copying %s: %w", f.Name, err)
		}
	}
	return nil
}

func (c *Client) uploadText(ctx context.Context, text string) (*ShareResult, error) {
	var out uploadResponse
	if err := c.postJSON(ctx, pathUploadText, textUploadRequest{TextContent: text}, &out); err != nil {
		return nil, err
	}
	return c.shareResult(out)
}

func (c *Client) accessByCode(ctx context.Context, code string) (*RedeemedContent, error) {
	var out accessResponse
	if err := c.postJSON(ctx, pathAccessCode, codeRequest{AccessCode: code}, &out); err != nil {
		return nil, err
	}
	return redeemedContent(out)
}

func (c *Client) accessByHash(ctx context.Context, hash string) (*RedeemedContent, error) {
	var out accessResponse
	if err := c.postJSON(ctx, pathAccessHash, hashRequest{Hash: hash}, &out); err != nil {
		return nil, err
	}
	return redeemedContent(out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.classify(ctx, c.do(req, out))
}

// do sends req and decodes a 200 response into out.
func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("backend request completed")

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w %d: %s", errUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	return nil
}

// classify maps deadline errors onto ErrTimeout, leaving others untouched.
func (c *Client) classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

func (c *Client) shareResult(out uploadResponse) (*ShareResult, error) {
	if out.Hash == "" || out.AccessCode == "" {
		return nil, fmt.Errorf("%w: missing hash or access code", errMalformed)
	}
	if out.ExpiresIn < 0 {
		return nil, fmt.Errorf("%w: negative expiresIn %d", errMalformed, out.ExpiresIn)
	}
	return &ShareResult{
		Hash:       out.Hash,
		Link:       c.Link(out.Hash),
		AccessCode: out.AccessCode,
		ExpiresIn:  time.Duration(out.ExpiresIn) * time.Second,
	}, nil
}

func redeemedContent(out accessResponse) (*RedeemedContent, error) {
	switch out.Type {
	case KindFiles:
		files := out.Files
		if files == nil {
			files = []RemoteFile{}
		}
		return &RedeemedContent{Kind: KindFiles, Files: files}, nil
	case KindText:
		return &RedeemedContent{Kind: KindText, Text: out.TextContent}, nil
	default:
		return nil, fmt.Errorf("%w: unknown content type %q", errMalformed, out.Type)
	}
}

// Download streams a redeemed file into w. Relative URLs resolve against the
// API base.
func (c *Client) Download(ctx context.Context, f RemoteFile, w io.Writer) (int64, error) {
	ref, err := url.Parse(f.URL)
	if err != nil {
		return 0, fmt.Errorf("parsing url of %s: %w", f.Name, err)
	}
	target := c.baseURL.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("downloading %s: %w", f.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("downloading %s: %w %d", f.Name, errUnexpectedStatus, resp.StatusCode)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("downloading %s: %w", f.Name, err)
	}
	return n, nil
}
