package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/drivemirror/internal/client/driveapi"
	"github.com/dmitrijs2005/drivemirror/internal/client/events"
	"github.com/dmitrijs2005/drivemirror/internal/client/models"
	"github.com/dmitrijs2005/drivemirror/internal/client/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), store.Options{Driver: store.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func record(fileID string, modified int64) models.IndexRecord {
	return models.IndexRecord{
		FileKey:   models.FileKey{IdentityID: "identity", DriveID: "drive", FileID: fileID},
		FileState: models.FileStateActive,
		FileType:  1,
		ByteCount: 100,
		Created:   1,
		Modified:  modified,
	}
}

func result(fileID string, updated int64, tags ...string) driveapi.SearchResult {
	return driveapi.SearchResult{
		FileID:    fileID,
		FileState: models.FileStateActive,
		FileMetadata: driveapi.FileMetadata{
			Created: 1,
			Updated: updated,
			AppData: driveapi.AppData{FileType: 7, Tags: tags},
		},
		ServerMetadata: &driveapi.ServerMetadata{FileByteCount: 512},
	}
}

// fakeProvider serves pages keyed by drive alias and incoming cursor state.
// Unknown keys yield an empty page that echoes the cursor.
type fakeProvider struct {
	mu       sync.Mutex
	pages    map[string]driveapi.QueryBatchResponse
	errs     map[string]error
	requests []driveapi.QueryBatchRequest
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{pages: map[string]driveapi.QueryBatchResponse{}, errs: map[string]error{}}
}

func pageKey(drive, cursorState string) string { return drive + "|" + cursorState }

func (f *fakeProvider) page(drive, cursorState, next string, results ...driveapi.SearchResult) {
	f.pages[pageKey(drive, cursorState)] = driveapi.QueryBatchResponse{CursorState: next, SearchResults: results}
}

func (f *fakeProvider) QueryBatch(_ context.Context, req driveapi.QueryBatchRequest, _ *driveapi.QueryBatchOptions) (*driveapi.QueryBatchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	drive := req.QueryParams.TargetDrive.Alias
	if err := f.errs[drive]; err != nil {
		return nil, err
	}

	p, ok := f.pages[pageKey(drive, req.ResultOptionsRequest.CursorState)]
	if !ok {
		return &driveapi.QueryBatchResponse{CursorState: req.ResultOptionsRequest.CursorState}, nil
	}
	p.SearchResults = append([]driveapi.SearchResult(nil), p.SearchResults...)
	return &p, nil
}

func (f *fakeProvider) Requests() []driveapi.QueryBatchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]driveapi.QueryBatchRequest(nil), f.requests...)
}

func drainEvents(ch <-chan events.Event) []events.Event {
	var out []events.Event
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}
