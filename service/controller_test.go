package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/Ezhil1K/ChemSure/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookup struct {
	search func(ctx context.Context, q model.SearchQuery) ([]model.SubstanceRecord, error)
	upload func(ctx context.Context, f model.UploadFile) ([]model.SubstanceRecord, error)
}

func (f *fakeLookup) Search(ctx context.Context, q model.SearchQuery) ([]model.SubstanceRecord, error) {
	return f.search(ctx, q)
}

func (f *fakeLookup) Upload(ctx context.Context, file model.UploadFile) ([]model.SubstanceRecord, error) {
	return f.upload(ctx, file)
}

func searchReturning(records []model.SubstanceRecord, err error) *fakeLookup {
	return &fakeLookup{search: func(context.Context, model.SearchQuery) ([]model.SubstanceRecord, error) {
		return records, err
	}}
}

func uploadReturning(records []model.SubstanceRecord, err error) *fakeLookup {
	return &fakeLookup{upload: func(context.Context, model.UploadFile) ([]model.SubstanceRecord, error) {
		return records, err
	}}
}

func TestControllerStartsWithPlaceholder(t *testing.T) {
	c := NewController(searchReturning(nil, nil))
	assert.Equal(t, DisplayPlaceholder, c.Display().Kind)
}

func TestControllerSearchResults(t *testing.T) {
	c := NewController(searchReturning([]model.SubstanceRecord{
		{SubstanceName: "Lead", Classification: "P", ReasonCode: "LR"},
		{SubstanceName: "Odd", Classification: "XYZ"},
	}, nil))

	d := c.Search(context.Background(), model.SearchQuery{Kind: model.SearchByName, Value: "Lead"})

	require.Equal(t, DisplayResults, d.Kind)
	require.Len(t, d.Fragments, 2)
	assert.Contains(t, d.Fragments[0].Summary, "Legally Regulated status")
	assert.True(t, d.Fragments[1].Fallback)
	assert.Empty(t, d.Message)
	assert.Equal(t, d, c.Display())
}

func TestControllerEmptyResults(t *testing.T) {
	c := NewController(searchReturning([]model.SubstanceRecord{}, nil))
	d := c.Search(context.Background(), model.SearchQuery{Kind: model.SearchByCAS, Value: "0-00-0"})
	assert.Equal(t, DisplayNotListed, d.Kind)
	assert.Empty(t, d.Message)

	c = NewController(uploadReturning(nil, nil))
	d = c.Upload(context.Background(), model.UploadFile{})
	assert.Equal(t, DisplayNoneInDocument, d.Kind)
}

func TestControllerSearchErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		kind     model.SearchKind
		err      error
		expected string
	}{
		{"empty cas", model.SearchByCAS, ErrEmptyInput, MsgEnterCAS},
		{"empty name", model.SearchByName, ErrEmptyInput, MsgEnterName},
		{"invalid action", "", ErrInvalidSearch, MsgInvalidSearch},
		{"remote message wins", model.SearchByCAS, &RemoteError{StatusCode: 503, Message: "Server data not ready."}, "Server data not ready."},
		{"remote status only", model.SearchByCAS, &RemoteError{StatusCode: 500, Message: "HTTP 500"}, "HTTP 500"},
		{"transport", model.SearchByCAS, &TransportError{Op: "search", Err: errors.New("refused")}, MsgSearchFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(searchReturning(nil, tt.err))
			d := c.Search(context.Background(), model.SearchQuery{Kind: tt.kind})
			assert.Equal(t, DisplayError, d.Kind)
			assert.Equal(t, tt.expected, d.Message)
			assert.Empty(t, d.Fragments)
		})
	}
}

func TestControllerUploadErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"no file", ErrNoFile, MsgSelectPDF},
		{"not pdf", ErrInvalidFileType, MsgInvalidPDF},
		{"too large", ErrFileTooLarge, "File size exceeds 5MB. Please upload a smaller file."},
		{"remote", &RemoteError{StatusCode: 400, Message: "No PDF file provided in the request."}, "No PDF file provided in the request."},
		{"transport", &TransportError{Op: "upload", Err: errors.New("reset")}, MsgUploadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(uploadReturning(nil, tt.err))
			d := c.Upload(context.Background(), model.UploadFile{})
			assert.Equal(t, DisplayError, d.Kind)
			assert.Equal(t, tt.expected, d.Message)
		})
	}
}

func TestControllerShowsLoadingWhileInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	c := NewController(&fakeLookup{search: func(ctx context.Context, q model.SearchQuery) ([]model.SubstanceRecord, error) {
		close(started)
		<-release
		return []model.SubstanceRecord{{SubstanceName: "x", Classification: "D"}}, nil
	}})

	done := make(chan Display)
	go func() { done <- c.Search(context.Background(), model.SearchQuery{Kind: model.SearchByCAS, Value: "1"}) }()

	<-started
	assert.Equal(t, DisplayLoading, c.Display().Kind)
	close(release)

	d := <-done
	assert.Equal(t, DisplayResults, d.Kind)
	assert.Equal(t, DisplayResults, c.Display().Kind)
}

func TestControllerNewSearchCancelsPrevious(t *testing.T) {
	firstStarted := make(chan struct{})
	firstCancelled := make(chan struct{})
	calls := 0
	c := NewController(&fakeLookup{search: func(ctx context.Context, q model.SearchQuery) ([]model.SubstanceRecord, error) {
		calls++
		if calls == 1 {
			close(firstStarted)
			<-ctx.Done()
			close(firstCancelled)
			// a late answer must not replace the newer surface
			return []model.SubstanceRecord{{SubstanceName: "stale", Classification: "D"}}, nil
		}
		return []model.SubstanceRecord{{SubstanceName: "fresh", Classification: "D"}}, nil
	}})

	firstDone := make(chan Display)
	go func() { firstDone <- c.Search(context.Background(), model.SearchQuery{Kind: model.SearchByName, Value: "stale"}) }()
	<-firstStarted

	second := c.Search(context.Background(), model.SearchQuery{Kind: model.SearchByName, Value: "fresh"})
	require.Equal(t, DisplayResults, second.Kind)
	assert.Contains(t, second.Fragments[0].Summary, "fresh")

	select {
	case <-firstCancelled:
	case <-time.After(time.Second):
		t.Fatal("Expected first search to be cancelled")
	}
	first := <-firstDone

	for _, f := range first.Fragments {
		assert.NotContains(t, f.Summary, "stale")
	}
	assert.Contains(t, c.Display().Fragments[0].Summary, "fresh")
	assert.Equal(t, second.Version, c.Display().Version)
}

func TestControllerClearCancelsInFlight(t *testing.T) {
	started := make(chan struct{})
	c := NewController(&fakeLookup{search: func(ctx context.Context, q model.SearchQuery) ([]model.SubstanceRecord, error) {
		close(started)
		<-ctx.Done()
		return nil, &TransportError{Op: "search", Err: ctx.Err()}
	}})

	done := make(chan Display)
	go func() { done <- c.Search(context.Background(), model.SearchQuery{Kind: model.SearchByCAS, Value: "1"}) }()
	<-started

	cleared := c.Clear()
	assert.Equal(t, DisplayPlaceholder, cleared.Kind)

	<-done
	assert.Equal(t, DisplayPlaceholder, c.Display().Kind)
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(previous) })
	return &buf
}

func TestControllerCancelledLookupLogsAtDebug(t *testing.T) {
	buf := captureLogs(t)
	started := make(chan struct{})
	c := NewController(&fakeLookup{search: func(ctx context.Context, q model.SearchQuery) ([]model.SubstanceRecord, error) {
		close(started)
		<-ctx.Done()
		return nil, &TransportError{Op: "search", Err: ctx.Err()}
	}})

	done := make(chan Display)
	go func() { done <- c.Search(context.Background(), model.SearchQuery{Kind: model.SearchByCAS, Value: "1"}) }()
	<-started
	c.Clear()
	<-done

	assert.Contains(t, buf.String(), "lookup abandoned")
	assert.NotContains(t, buf.String(), "level=ERROR")
}

func TestControllerBackendFailureLogsAtError(t *testing.T) {
	buf := captureLogs(t)
	c := NewController(searchReturning(nil, &TransportError{Op: "search", Err: errors.New("connection refused")}))

	d := c.Search(context.Background(), model.SearchQuery{Kind: model.SearchByCAS, Value: "1"})

	assert.Equal(t, DisplayError, d.Kind)
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "lookup failed")
}

func TestControllerLoadingClearedOnPanic(t *testing.T) {
	c := NewController(&fakeLookup{search: func(ctx context.Context, q model.SearchQuery) ([]model.SubstanceRecord, error) {
		panic("boom")
	}})

	assert.Panics(t, func() {
		c.Search(context.Background(), model.SearchQuery{Kind: model.SearchByCAS, Value: "1"})
	})

	d := c.Display()
	assert.NotEqual(t, DisplayLoading, d.Kind)
	assert.Equal(t, MsgInterrupted, d.Message)
}

func TestControllerErrorReplacesResults(t *testing.T) {
	results := []model.SubstanceRecord{{SubstanceName: "Lead", Classification: "P"}}
	var fail bool
	c := NewController(&fakeLookup{search: func(context.Context, model.SearchQuery) ([]model.SubstanceRecord, error) {
		if fail {
			return nil, ErrEmptyInput
		}
		return results, nil
	}})

	require.Equal(t, DisplayResults, c.Search(context.Background(), model.SearchQuery{Kind: model.SearchByCAS, Value: "1"}).Kind)
	fail = true
	d := c.Search(context.Background(), model.SearchQuery{Kind: model.SearchByCAS})

	assert.Equal(t, DisplayError, d.Kind)
	assert.Empty(t, d.Fragments)
}
