package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Ezhil1K/ChemSure/model"
	"github.com/Ezhil1K/ChemSure/pkg/logger"
	"github.com/Ezhil1K/ChemSure/summary"
)

// DisplayKind is the state of the result surface. Kinds are mutually exclusive.
type DisplayKind string

const (
	DisplayPlaceholder    DisplayKind = "placeholder"
	DisplayLoading        DisplayKind = "loading"
	DisplayResults        DisplayKind = "results"
	DisplayNotListed      DisplayKind = "not_listed"
	DisplayNoneInDocument DisplayKind = "none_in_document"
	DisplayError          DisplayKind = "error"
)

// User-facing messages
const (
	MsgEnterCAS      = "Please enter a CAS Number."
	MsgEnterName     = "Please enter a Substance Name."
	MsgInvalidSearch = "Invalid search action."
	MsgSelectPDF     = "Please select a PDF file."
	MsgInvalidPDF    = "Upload a valid PDF file."
	MsgSearchFailed  = "An error occurred while searching. Check the server logs for details."
	MsgUploadFailed  = "An error occurred during PDF processing. Check the server logs."
	MsgInterrupted   = "The previous operation did not complete."
)

// MsgFileTooLarge is shown for uploads over model.MaxUploadBytes
var MsgFileTooLarge = fmt.Sprintf("File size exceeds %dMB. Please upload a smaller file.", model.MaxUploadBytes/(1024*1024))

// Display is the whole result surface. It is replaced, never edited in place.
type Display struct {
	Kind      DisplayKind        `json:"kind"`
	Fragments []summary.Fragment `json:"fragments,omitempty"`
	Message   string             `json:"message,omitempty"`
	Version   uint64             `json:"version"`
}

// Lookup is the dispatcher a Controller drives
type Lookup interface {
	Search(ctx context.Context, query model.SearchQuery) ([]model.SubstanceRecord, error)
	Upload(ctx context.Context, file model.UploadFile) ([]model.SubstanceRecord, error)
}

// Controller owns one display surface.
// A new operation cancels the one in flight; results that arrive for a
// superseded operation are dropped.
type Controller struct {
	lookup Lookup

	mu       sync.Mutex
	display  Display
	seq      uint64
	cancel   context.CancelFunc
	lastSeen time.Time
}

func NewController(lookup Lookup) *Controller {
	return &Controller{
		lookup:   lookup,
		display:  Display{Kind: DisplayPlaceholder},
		lastSeen: time.Now(),
	}
}

// Display returns the current surface
func (c *Controller) Display() Display {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSeen = time.Now()
	return c.display
}

// LastSeen returns when the surface was last read or written
func (c *Controller) LastSeen() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}

// Search runs a lookup and returns the resulting surface
func (c *Controller) Search(ctx context.Context, query model.SearchQuery) Display {
	opCtx, id := c.begin(ctx)
	defer c.end(id)

	records, err := c.lookup.Search(opCtx, query)
	if err != nil {
		return c.fail(ctx, id, err, SearchMessage(query.Normalized().Kind, err))
	}
	if len(records) == 0 {
		return c.commit(id, Display{Kind: DisplayNotListed})
	}
	return c.commit(id, Display{Kind: DisplayResults, Fragments: summary.Render(records)})
}

// Upload sends a document and returns the resulting surface
func (c *Controller) Upload(ctx context.Context, file model.UploadFile) Display {
	opCtx, id := c.begin(ctx)
	defer c.end(id)

	records, err := c.lookup.Upload(opCtx, file)
	if err != nil {
		return c.fail(ctx, id, err, UploadMessage(err))
	}
	if len(records) == 0 {
		return c.commit(id, Display{Kind: DisplayNoneInDocument})
	}
	return c.commit(id, Display{Kind: DisplayResults, Fragments: summary.Render(records)})
}

// Clear cancels any operation in flight and restores the placeholder
func (c *Controller) Clear() Display {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.supersede()
	c.display = Display{Kind: DisplayPlaceholder, Version: c.seq}
	return c.display
}

// Close cancels any operation in flight
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// begin supersedes the previous operation and shows progress
func (c *Controller) begin(ctx context.Context) (context.Context, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.supersede()
	opCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.display = Display{Kind: DisplayLoading, Version: c.seq}
	return opCtx, c.seq
}

// supersede must be called with the lock held
func (c *Controller) supersede() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.seq++
	c.lastSeen = time.Now()
}

func (c *Controller) superseded(id uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return id != c.seq
}

// commit replaces the surface if id is still the current operation.
// A stale commit returns the surface that superseded it.
func (c *Controller) commit(id uint64, d Display) Display {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id != c.seq {
		return c.display
	}
	d.Version = id
	c.display = d
	return c.display
}

// end guarantees progress is never left showing once an operation returns
func (c *Controller) end(id uint64) {
	r := recover()

	c.mu.Lock()
	if id == c.seq {
		if c.cancel != nil {
			c.cancel()
			c.cancel = nil
		}
		if c.display.Kind == DisplayLoading {
			c.display = Display{Kind: DisplayError, Message: MsgInterrupted, Version: id}
		}
	}
	c.mu.Unlock()

	if r != nil {
		panic(r)
	}
}

func (c *Controller) fail(ctx context.Context, id uint64, err error, message string) Display {
	switch {
	case IsLocal(err):
		logger.Debug(ctx, "request rejected", "error", err)
	case c.superseded(id) || errors.Is(err, context.Canceled):
		logger.Debug(ctx, "lookup abandoned", "error", err)
	default:
		logger.Error(ctx, "lookup failed", "error", err)
	}
	return c.commit(id, Display{Kind: DisplayError, Message: message})
}

// SearchMessage is the single user-facing message for a failed search
func SearchMessage(kind model.SearchKind, err error) string {
	switch {
	case errors.Is(err, ErrEmptyInput) && kind == model.SearchByCAS:
		return MsgEnterCAS
	case errors.Is(err, ErrEmptyInput):
		return MsgEnterName
	case errors.Is(err, ErrInvalidSearch):
		return MsgInvalidSearch
	}
	return remoteMessage(err, MsgSearchFailed)
}

// UploadMessage is the single user-facing message for a failed upload
func UploadMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoFile):
		return MsgSelectPDF
	case errors.Is(err, ErrInvalidFileType):
		return MsgInvalidPDF
	case errors.Is(err, ErrFileTooLarge):
		return MsgFileTooLarge
	}
	return remoteMessage(err, MsgUploadFailed)
}

// remoteMessage prefers the backend's own message over the generic one
func remoteMessage(err error, generic string) string {
	var remote *RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		return remote.Message
	}
	return generic
}
