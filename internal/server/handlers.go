package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	sessionctx "sharebox-go/internal/context"
	"sharebox-go/internal/selection"
	"sharebox-go/internal/session"
	"sharebox-go/internal/validation"
	"sharebox-go/internal/views"
)

// in-memory part of a multipart form; the rest spills to disk
const multipartMemory = 32 << 20

// Page Handlers
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	sess := sessionctx.GetSessionFromContext(r.Context())
	page := views.SharePage(views.SharePageData{
		Tab:     views.ParseTab(r.URL.Query().Get("tab")),
		Send:    sess.Send.View(),
		Receive: sess.Receive.View(),
	})
	templ.Handler(page).ServeHTTP(w, r)
}

func (s *Server) handleShareLink(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")
	if err := validation.ValidateShareHash(hash); err != nil {
		s.handleError404(w, r)
		return
	}

	recv := session.NewReceive(s.client)
	status := http.StatusOK
	if err := recv.Open(r.Context(), hash); err != nil {
		status = http.StatusNotFound
	} else if file := r.URL.Query().Get("file"); file != "" {
		if i, err := strconv.Atoi(file); err == nil {
			recv.Select(i)
		}
	}

	templ.Handler(views.LinkPage(hash, recv.View()), templ.WithStatus(status)).ServeHTTP(w, r)
}

// Send Handlers
func (s *Server) handleAddFiles(w http.ResponseWriter, r *http.Request) {
	sess := sessionctx.GetSessionFromContext(r.Context())
	limits := s.config.Limits()

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxTotalSize+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sess.Send.SetErrors(fmt.Sprintf("Total size exceeds %s limit", selection.FormatSize(limits.MaxTotalSize)))
		} else {
			log.Warn().Err(err).Msg("invalid file upload form")
			sess.Send.SetErrors("Invalid upload")
		}
		redirect(w, r, views.TabSend)
		return
	}
	defer r.MultipartForm.RemoveAll()

	var incoming []selection.SelectableFile
	for _, fh := range r.MultipartForm.File["files"] {
		f, err := fh.Open()
		if err != nil {
			log.Error().Err(err).Str("filename", fh.Filename).Msg("error opening uploaded file")
			continue
		}
		path, err := sess.Send.Spool(fh.Filename, f)
		f.Close()
		if err != nil {
			log.Error().Err(err).Str("filename", fh.Filename).Msg("error spooling uploaded file")
			continue
		}

		incoming = append(incoming, selection.SelectableFile{
			Name:     fh.Filename,
			Size:     fh.Size,
			MimeType: selection.BaseType(fh.Header.Get("Content-Type")),
			Handle:   path,
		})
	}

	if err := sess.Send.AddFiles(incoming); err != nil {
		log.Debug().Err(err).Int("files", len(incoming)).Msg("selection rejected files")
	}
	redirect(w, r, views.TabSend)
}

func (s *Server) handleRemoveFile(w http.ResponseWriter, r *http.Request) {
	sess := sessionctx.GetSessionFromContext(r.Context())
	if i, err := strconv.Atoi(chi.URLParam(r, "index")); err == nil {
		sess.Send.RemoveFile(i)
	}
	redirect(w, r, views.TabSend)
}

func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	sess := sessionctx.GetSessionFromContext(r.Context())
	sess.Send.SetMode(session.Mode(r.FormValue("mode")))
	redirect(w, r, views.TabSend)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	sess := sessionctx.GetSessionFromContext(r.Context())
	// failures are kept on the view
	_, _ = sess.Send.Submit(r.Context())
	redirect(w, r, views.TabSend)
}

func (s *Server) handleShareText(w http.ResponseWriter, r *http.Request) {
	sess := sessionctx.GetSessionFromContext(r.Context())
	sess.Send.SetMode(session.ModeText)
	sess.Send.SetText(r.FormValue("text"))
	_, _ = sess.Send.Submit(r.Context())
	redirect(w, r, views.TabSend)
}

func (s *Server) handleSendCopied(w http.ResponseWriter, r *http.Request) {
	sess := sessionctx.GetSessionFromContext(r.Context())
	if err := sess.Send.MarkCopied(chi.URLParam(r, "target")); err != nil {
		s.handleError404(w, r)
		return
	}
	redirect(w, r, views.TabSend)
}

func (s *Server) handleSendReset(w http.ResponseWriter, r *http.Request) {
	sess := sessionctx.GetSessionFromContext(r.Context())
	sess.Send.Reset()
	redirect(w, r, views.TabSend)
}

// Receive Handlers
func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	sess := sessionctx.GetSessionFromContext(r.Context())

	if code := r.FormValue("code"); code != "" {
		sess.Receive.SetCode(code)
	} else {
		for i := 0; i < validation.AccessCodeLength; i++ {
			if !sess.Receive.SetDigit(i, r.FormValue("d"+strconv.Itoa(i))) {
				sess.Receive.SetDigit(i, "")
			}
		}
	}

	// failures are kept on the view
	_ = sess.Receive.Submit(r.Context())
	redirect(w, r, views.TabReceive)
}

func (s *Server) handleSelectFile(w http.ResponseWriter, r *http.Request) {
	sess := sessionctx.GetSessionFromContext(r.Context())
	if i, err := strconv.Atoi(chi.URLParam(r, "index")); err == nil {
		sess.Receive.Select(i)
	}
	redirect(w, r, views.TabReceive)
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	sess := sessionctx.GetSessionFromContext(r.Context())
	sess.Receive.Back()
	redirect(w, r, views.TabReceive)
}

func (s *Server) handleReceiveCopied(w http.ResponseWriter, r *http.Request) {
	sess := sessionctx.GetSessionFromContext(r.Context())
	if err := sess.Receive.MarkCopied(chi.URLParam(r, "target")); err != nil {
		s.handleError404(w, r)
		return
	}
	redirect(w, r, views.TabReceive)
}

func (s *Server) handleReceiveReset(w http.ResponseWriter, r *http.Request) {
	sess := sessionctx.GetSessionFromContext(r.Context())
	sess.Receive.Reset()
	redirect(w, r, views.TabReceive)
}

// API Handlers
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, true, "Health check successful", HealthData{
		Status:   "up",
		Sessions: s.store.Len(),
	})
}

// Error Handlers
func (s *Server) handleError404(w http.ResponseWriter, r *http.Request) {
	templ.Handler(views.NotFound(), templ.WithStatus(http.StatusNotFound)).ServeHTTP(w, r)
}

func redirect(w http.ResponseWriter, r *http.Request, tab views.Tab) {
	http.Redirect(w, r, "/?tab="+string(tab), http.StatusSeeOther)
}
