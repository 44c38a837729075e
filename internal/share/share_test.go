package share

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sharebox-go/internal/selection"
)

const testOrigin = "https://share.example.com"

type fakeBackend struct {
	*httptest.Server
	requests atomic.Int32
}

func newBackend(t *testing.T, handler http.HandlerFunc) *fakeBackend {
	t.Helper()
	b := &fakeBackend{}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.requests.Add(1)
		handler(w, r)
	}))
	t.Cleanup(b.Close)
	return b
}

func newTestClient(t *testing.T, b *fakeBackend, opts ...Option) *Client {
	t.Helper()
	c, err := NewClient(b.URL, testOrigin, opts...)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestSubmitFilesEndToEnd(t *testing.T) {
	content := strings.Repeat("x", 10*1024*1024)

	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/upload/files", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		files := r.MultipartForm.File["files"]
		require.Len(t, files, 1)
		assert.Equal(t, "holiday.jpg", files[0].Filename)
		assert.Equal(t, "image/jpeg", files[0].Header.Get("Content-Type"))
		assert.Equal(t, int64(len(content)), files[0].Size)

		writeJSON(w, map[string]any{"hash": "abc123", "accessCode": "482913", "expiresIn": 600})
	})

	file := selection.SelectableFile{
		Name:     "holiday.jpg",
		Size:     int64(len(content)),
		MimeType: "image/jpeg",
		Handle:   strings.NewReader(content),
	}
	res := selection.Evaluate(selection.NewState(selection.DefaultLimits()), []selection.SelectableFile{file})
	require.Empty(t, res.Errors)
	require.Len(t, res.Accepted, 1)

	sub := NewSubmitter(newTestClient(t, b))
	share, err := sub.SubmitFiles(context.Background(), res.Accepted)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(share.Link, "/abc123"))
	assert.Equal(t, testOrigin+"/abc123", share.Link)
	assert.Equal(t, "482913", share.AccessCode)
	assert.Equal(t, 10*time.Minute, share.ExpiresIn)
	assert.Equal(t, "10:00", share.Countdown().String())
	assert.False(t, sub.Busy())
}

func TestSubmitFilesRepeatsFieldPerFile(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		files := r.MultipartForm.File["files"]
		require.Len(t, files, 2)
		assert.Equal(t, `a "quoted".txt`, files[0].Filename)
		assert.Equal(t, "b.pdf", files[1].Filename)
		writeJSON(w, map[string]any{"hash": "h", "accessCode": "111111", "expiresIn": 60})
	})

	sub := NewSubmitter(newTestClient(t, b))
	_, err := sub.SubmitFiles(context.Background(), []selection.SelectableFile{
		{Name: `a "quoted".txt`, Size: 2, MimeType: "text/plain", Handle: []byte("hi")},
		{Name: "b.pdf", Size: 3, MimeType: "application/pdf", Handle: []byte("pdf")},
	})
	require.NoError(t, err)
}

func TestSubmitFilesEmptySelection(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := NewSubmitter(newTestClient(t, b)).SubmitFiles(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptySelection)
	assert.Equal(t, "Please select at least one file", UserMessage(err))
	assert.Zero(t, b.requests.Load())
}

func TestSubmitFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"Server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"Created is not OK", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			writeJSON(w, map[string]any{"hash": "h", "accessCode": "111111", "expiresIn": 60})
		}},
		{"Malformed JSON", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "{not json")
		}},
		{"Missing fields", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]any{"expiresIn": 60})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend(t, tt.handler)
			sub := NewSubmitter(newTestClient(t, b))

			_, err := sub.SubmitFiles(context.Background(), []selection.SelectableFile{
				{Name: "a.txt", Size: 1, MimeType: "text/plain", Handle: []byte("a")},
			})
			var uerr *UploadError
			require.ErrorAs(t, err, &uerr)
			assert.Equal(t, "Upload failed", uerr.Message)
			assert.Equal(t, "Upload failed. Please try again.", UserMessage(err))

			_, err = sub.SubmitText(context.Background(), "hello")
			require.ErrorAs(t, err, &uerr)
			assert.Equal(t, "Text sharing failed", uerr.Message)
			assert.False(t, sub.Busy())
		})
	}
}

func TestSubmitFilesTransportFailure(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {})
	c := newTestClient(t, b)
	b.Close()

	_, err := NewSubmitter(c).SubmitFiles(context.Background(), []selection.SelectableFile{
		{Name: "a.txt", Size: 1, MimeType: "text/plain", Handle: []byte("a")},
	})
	var uerr *UploadError
	require.ErrorAs(t, err, &uerr)
	assert.Error(t, uerr.Cause)
}

func TestSubmitFilesUnopenableHandle(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		writeJSON(w, map[string]any{"hash": "h", "accessCode": "111111", "expiresIn": 60})
	})

	_, err := NewSubmitter(newTestClient(t, b)).SubmitFiles(context.Background(), []selection.SelectableFile{
		{Name: "ghost", Size: 1, MimeType: "text/plain", Handle: 42},
	})
	var uerr *UploadError
	require.ErrorAs(t, err, &uerr)
	assert.Contains(t, uerr.Error(), "unsupported file handle")
}

func TestSubmitText(t *testing.T) {
	var got textUploadRequest
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload/text", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, map[string]any{"hash": "t1", "accessCode": "000111", "expiresIn": 90})
	})

	sub := NewSubmitter(newTestClient(t, b))

	res, err := sub.SubmitText(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "", got.TextContent)
	assert.Equal(t, testOrigin+"/t1", res.Link)
	assert.Equal(t, "1:30", res.Countdown().String())
}

func TestSubmitRejectsConcurrentSubmit(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		writeJSON(w, map[string]any{"hash": "h", "accessCode": "111111", "expiresIn": 60})
	})

	sub := NewSubmitter(newTestClient(t, b))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := sub.SubmitText(context.Background(), "first")
		assert.NoError(t, err)
	}()

	<-entered
	assert.True(t, sub.Busy())

	_, err := sub.SubmitText(context.Background(), "second")
	assert.ErrorIs(t, err, ErrAlreadyInProgress)
	_, err = sub.SubmitFiles(context.Background(), []selection.SelectableFile{{Name: "a", Handle: []byte("a")}})
	assert.ErrorIs(t, err, ErrAlreadyInProgress)

	close(release)
	wg.Wait()
	assert.Equal(t, int32(1), b.requests.Load())
	assert.False(t, sub.Busy())
}

func TestSubmitTimeout(t *testing.T) {
	release := make(chan struct{})
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	sub := NewSubmitter(newTestClient(t, b, WithTimeout(50*time.Millisecond)))
	_, err := sub.SubmitText(context.Background(), "slow")

	var uerr *UploadError
	require.ErrorAs(t, err, &uerr)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, "Text sharing failed. The server took too long to respond.", UserMessage(err))
}

func TestRedeemIncompleteCode(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	r := NewRedeemer(newTestClient(t, b))

	_, err := r.RedeemCode(context.Background(), "12345")
	assert.ErrorIs(t, err, ErrIncompleteCode)
	assert.Equal(t, "Please enter a complete 6-digit code", UserMessage(err))

	in := &AccessCodeInput{}
	in.Set(0, "1")
	_, err = r.Redeem(context.Background(), in)
	assert.ErrorIs(t, err, ErrIncompleteCode)

	assert.Zero(t, b.requests.Load())
}

func TestRedeemFiles(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/access/code", r.URL.Path)
		var req codeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "123456", req.AccessCode)
		writeJSON(w, map[string]any{
			"type": "files",
			"files": []map[string]string{
				{"name": "a.png", "url": "https://cdn.example.com/a.png"},
				{"name": "b.zip", "url": "https://cdn.example.com/b.zip"},
			},
		})
	})

	content, err := NewRedeemer(newTestClient(t, b)).RedeemCode(context.Background(), "123456")
	require.NoError(t, err)
	assert.Equal(t, int32(1), b.requests.Load())
	assert.Equal(t, KindFiles, content.Kind)
	require.Len(t, content.Files, 2)
	assert.Equal(t, RemoteFile{Name: "a.png", URL: "https://cdn.example.com/a.png"}, content.Files[0])
}

func TestRedeemText(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"type": "text", "textContent": "hello\nworld"})
	})

	content, err := NewRedeemer(newTestClient(t, b)).Redeem(context.Background(), ParseAccessCode("654321"))
	require.NoError(t, err)
	assert.Equal(t, KindText, content.Kind)
	assert.Equal(t, "hello\nworld", content.Text)
	assert.Empty(t, content.Files)
}

func TestRedeemFailuresCollapse(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"Not found", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) }},
		{"Gone", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusGone) }},
		{"Server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"Unknown type", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]any{"type": "video"})
		}},
		{"Garbage", func(w http.ResponseWriter, r *http.Request) { _, _ = io.WriteString(w, "<html>") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend(t, tt.handler)
			_, err := NewRedeemer(newTestClient(t, b)).RedeemCode(context.Background(), "000000")
			assert.True(t, errors.Is(err, ErrInvalidCode))
			assert.Equal(t, "Invalid access code!", UserMessage(err))
		})
	}
}

func TestRedeemTimeoutIsDistinct(t *testing.T) {
	release := make(chan struct{})
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	_, err := NewRedeemer(newTestClient(t, b, WithTimeout(50*time.Millisecond))).
		RedeemCode(context.Background(), "123456")
	assert.ErrorIs(t, err, ErrTimeout)
	assert.NotErrorIs(t, err, ErrInvalidCode)
}

func TestRedeemHash(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/access", r.URL.Path)
		var req hashRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Hash != "abc123" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]any{"type": "text", "textContent": "hi"})
	})
	r := NewRedeemer(newTestClient(t, b))

	content, err := r.RedeemHash(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "hi", content.Text)

	_, err = r.RedeemHash(context.Background(), "zzz999")
	assert.ErrorIs(t, err, ErrContentUnavailable)
	assert.Equal(t, "Content not found or expired!", UserMessage(err))

	_, err = r.RedeemHash(context.Background(), "../etc")
	assert.ErrorIs(t, err, ErrContentUnavailable)
	assert.Equal(t, int32(2), b.requests.Load())
}

func TestRedeemHashOfOwnShare(t *testing.T) {
	const hash = "a.b~c"
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/upload/text":
			writeJSON(w, map[string]any{"hash": hash, "accessCode": "123456", "expiresIn": 60})
		case "/access":
			var req hashRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, hash, req.Hash)
			writeJSON(w, map[string]any{"type": "text", "textContent": "round trip"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	client := newTestClient(t, b)

	res, err := NewSubmitter(client).SubmitText(context.Background(), "round trip")
	require.NoError(t, err)
	assert.Equal(t, testOrigin+"/a.b~c", res.Link)

	content, err := NewRedeemer(client).RedeemHash(context.Background(), res.Hash)
	require.NoError(t, err)
	assert.Equal(t, "round trip", content.Text)
	assert.Equal(t, int32(2), b.requests.Load())
}

func TestClientPathPrefix(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/upload/text", r.URL.Path)
		writeJSON(w, map[string]any{"hash": "p", "accessCode": "222222", "expiresIn": 1})
	})

	c, err := NewClient(b.URL+"/api/v1/", testOrigin+"/")
	require.NoError(t, err)

	res, err := NewSubmitter(c).SubmitText(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, testOrigin+"/p", res.Link)
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	_, err := NewClient("/api", testOrigin)
	assert.Error(t, err)
}

func TestDownload(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/files/a.txt":
			_, _ = io.WriteString(w, "alpha")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	c := newTestClient(t, b)

	var sb strings.Builder
	n, err := c.Download(context.Background(), RemoteFile{Name: "a.txt", URL: "/files/a.txt"}, &sb)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, "alpha", sb.String())

	_, err = c.Download(context.Background(), RemoteFile{Name: "b.txt", URL: b.URL + "/files/b.txt"}, io.Discard)
	assert.Error(t, err)
}

func TestAccessCodeInput(t *testing.T) {
	in := &AccessCodeInput{}

	assert.True(t, in.Set(0, "4"))
	assert.False(t, in.Set(1, "12"), "multiple characters are refused")
	assert.False(t, in.Set(1, "a"))
	assert.False(t, in.Set(6, "1"))
	assert.Equal(t, "4", in.Code())
	assert.False(t, in.Complete())

	next := in.Paste("48-29 13xyz")
	assert.Equal(t, 5, next)
	assert.Equal(t, "482913", in.Code())
	assert.True(t, in.Complete())

	in.Set(5, "")
	assert.Equal(t, "48291", in.Code())
	assert.Equal(t, "1", in.Digit(4))

	in.Reset()
	assert.Equal(t, "", in.Code())

	in.Set(3, "7")
	assert.Equal(t, 2, in.Paste("12"))
	assert.Equal(t, "127", in.Code())
}
