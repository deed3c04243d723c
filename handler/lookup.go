package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Ezhil1K/ChemSure/middleware"
	"github.com/Ezhil1K/ChemSure/model"
	"github.com/Ezhil1K/ChemSure/pkg/logger"
	"github.com/Ezhil1K/ChemSure/service"
	"github.com/Ezhil1K/ChemSure/summary"
	"github.com/Ezhil1K/ChemSure/view"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// maxUploadRequestBytes bounds the whole multipart request, form overhead included
const maxUploadRequestBytes = 2 * model.MaxUploadBytes

const archiveTimeout = 30 * time.Second

// Archiver keeps a copy of accepted uploads
type Archiver interface {
	Save(ctx context.Context, filename string, content io.Reader, size int64) (string, error)
}

type LookupHandler struct {
	sessions *service.SessionStore
	lookup   service.Lookup
	archive  Archiver

	archiving sync.WaitGroup
}

// NewLookupHandler wires the page and API handlers. archive may be nil.
func NewLookupHandler(sessions *service.SessionStore, lookup service.Lookup, archive Archiver) *LookupHandler {
	return &LookupHandler{
		sessions: sessions,
		lookup:   lookup,
		archive:  archive,
	}
}

// LookupRequest is the JSON API search body
type LookupRequest struct {
	Kind  model.SearchKind `json:"kind"`
	Value string           `json:"value"`
}

// LookupResult is the JSON API answer for searches and uploads
type LookupResult struct {
	Results   []model.SubstanceRecord `json:"results"`
	Fragments []summary.Fragment      `json:"fragments"`
}

// Page renders the session's current display
func (h *LookupHandler) Page(c *gin.Context) {
	ctrl := h.sessions.Get(middleware.GetSessionID(c))
	c.HTML(http.StatusOK, view.PageTemplate, view.Page{Display: ctrl.Display()})
}

// Search handles the search form
func (h *LookupHandler) Search(c *gin.Context) {
	page := view.Page{
		CASRN:         c.PostForm("cas_rn"),
		SubstanceName: c.PostForm("substance_name"),
	}

	query := model.SearchQuery{Kind: model.SearchKind(c.PostForm("action"))}
	switch query.Normalized().Kind {
	case model.SearchByCAS:
		query.Value = page.CASRN
	case model.SearchByName:
		query.Value = page.SubstanceName
	}

	ctrl := h.sessions.Get(middleware.GetSessionID(c))
	page.Display = ctrl.Search(c.Request.Context(), query)
	c.HTML(http.StatusOK, view.PageTemplate, page)
}

// Upload handles the MSDS upload form
func (h *LookupHandler) Upload(c *gin.Context) {
	file, data := h.readUpload(c)

	ctrl := h.sessions.Get(middleware.GetSessionID(c))
	display := ctrl.Upload(c.Request.Context(), file)
	if display.Kind == service.DisplayResults || display.Kind == service.DisplayNoneInDocument {
		h.archiveUpload(c.Request.Context(), file.Filename, data)
	}

	c.HTML(http.StatusOK, view.PageTemplate, view.Page{Display: display})
}

// Clear resets the inputs and the display
func (h *LookupHandler) Clear(c *gin.Context) {
	ctrl := h.sessions.Get(middleware.GetSessionID(c))
	c.HTML(http.StatusOK, view.PageTemplate, view.Page{Display: ctrl.Clear()})
}

// State returns the session's display as JSON
func (h *LookupHandler) State(c *gin.Context) {
	display := service.Display{Kind: service.DisplayPlaceholder}
	if ctrl := h.sessions.Peek(middleware.GetSessionID(c)); ctrl != nil {
		display = ctrl.Display()
	}
	c.JSON(http.StatusOK, display)
}

// APILookup searches without touching any session display
func (h *LookupHandler) APILookup(c *gin.Context) {
	var req LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	query := model.SearchQuery{Kind: req.Kind, Value: req.Value}
	records, err := h.lookup.Search(c.Request.Context(), query)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": service.SearchMessage(query.Normalized().Kind, err)})
		return
	}

	c.JSON(http.StatusOK, LookupResult{Results: records, Fragments: summary.Render(records)})
}

// APIUpload scans an MSDS PDF without touching any session display
func (h *LookupHandler) APIUpload(c *gin.Context) {
	file, data := h.readUpload(c)

	records, err := h.lookup.Upload(c.Request.Context(), file)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": service.UploadMessage(err)})
		return
	}
	h.archiveUpload(c.Request.Context(), file.Filename, data)

	c.JSON(http.StatusOK, LookupResult{Results: records, Fragments: summary.Render(records)})
}

// readUpload streams the upload part and reads at most one byte past the
// upload limit. A missing or unreadable part yields an empty file, which the
// dispatcher rejects.
func (h *LookupHandler) readUpload(c *gin.Context) (model.UploadFile, []byte) {
	ctx := c.Request.Context()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadRequestBytes)

	reader, err := c.Request.MultipartReader()
	if err != nil {
		logger.Debug(ctx, "no upload in request", "error", err)
		return model.UploadFile{}, nil
	}

	for {
		part, err := reader.NextPart()
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return model.UploadFile{
					ContentType: model.MediaTypePDF,
					Size:        tooLarge.Limit,
					Content:     strings.NewReader(""),
				}, nil
			}
			logger.Debug(ctx, "no upload in request", "error", err)
			return model.UploadFile{}, nil
		}
		if part.FormName() != service.UploadField || part.FileName() == "" {
			part.Close()
			continue
		}
		defer part.Close()

		data, err := io.ReadAll(io.LimitReader(part, model.MaxUploadBytes+1))
		if err != nil {
			logger.Warn(ctx, "failed to read upload", "error", err)
			return model.UploadFile{}, nil
		}

		contentType := part.Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = mimetype.Detect(data).String()
		}

		return model.UploadFile{
			Filename:    part.FileName(),
			ContentType: contentType,
			Size:        int64(len(data)),
			Content:     bytes.NewReader(data),
		}, data
	}
}

// archiveUpload stores a copy in the background. Failures are logged and
// never reach the user.
func (h *LookupHandler) archiveUpload(ctx context.Context, filename string, data []byte) {
	if h.archive == nil || len(data) == 0 {
		return
	}

	ctx = context.WithoutCancel(ctx)
	h.archiving.Add(1)
	go func() {
		defer h.archiving.Done()

		ctx, cancel := context.WithTimeout(ctx, archiveTimeout)
		defer cancel()

		objectName, err := h.archive.Save(ctx, filename, bytes.NewReader(data), int64(len(data)))
		if err != nil {
			logger.Warn(ctx, "failed to archive upload", "filename", filename, "error", err)
			return
		}
		logger.Info(ctx, "upload archived", "object", objectName)
	}()
}

// Wait blocks until pending archive uploads finish or ctx is done
func (h *LookupHandler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.archiving.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func errorStatus(err error) int {
	if service.IsLocal(err) {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}
