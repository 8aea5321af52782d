package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/drivemirror/internal/client/cursor"
	"github.com/dmitrijs2005/drivemirror/internal/client/driveapi"
	"github.com/dmitrijs2005/drivemirror/internal/client/events"
	"github.com/dmitrijs2005/drivemirror/internal/client/models"
	"github.com/dmitrijs2005/drivemirror/internal/client/repositories/cursors"
	"github.com/dmitrijs2005/drivemirror/internal/logging"
)

// QueryProvider fetches pages of remote file headers.
type QueryProvider interface {
	QueryBatch(ctx context.Context, req driveapi.QueryBatchRequest, opts *driveapi.QueryBatchOptions) (*driveapi.QueryBatchResponse, error)
}

// CursorStore reads and forgets saved cursors. Saving happens only through
// the processor.
type CursorStore interface {
	LoadCursor(ctx context.Context, streamKey string) (*cursor.Cursor, error)
	DeleteCursor(ctx context.Context, streamKey string) error
}

// Emitter publishes lifecycle events.
type Emitter interface {
	Emit(ctx context.Context, ev events.Event) error
}

// DriveTarget is one remote drive mirrored into the index.
type DriveTarget struct {
	IdentityID string
	DriveID    string
	DriveType  string
	FileTypes  []int
}

type SyncOptions struct {
	MaxRecords   int
	Parallelism  int
	Decrypt      bool
	PurgeDeleted bool
}

type SyncResult struct {
	DriveID         string
	Pages           int
	Records         int
	DecryptFailures int
	Cursor          *cursor.Cursor
}

type SyncService struct {
	api    QueryProvider
	store  CursorStore
	proc   *FileMetadataProcessor
	bus    Emitter
	log    logging.Logger
	opts   SyncOptions
	source events.Source
}

func NewSyncService(api QueryProvider, st CursorStore, proc *FileMetadataProcessor, bus Emitter, log logging.Logger, opts SyncOptions) *SyncService {
	if opts.MaxRecords <= 0 {
		opts.MaxRecords = driveapi.DefaultMaxRecords
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = 1
	}
	if log == nil {
		log = logging.Discard()
	}
	return &SyncService{api: api, store: st, proc: proc, bus: bus, log: log, opts: opts, source: events.SourceSync}
}

// SyncDrive pulls every page after the saved cursor and applies it. The
// cursor is committed with the last file of each page, so an interrupted
// run resumes after the last fully applied page.
func (s *SyncService) SyncDrive(ctx context.Context, d DriveTarget) (*SyncResult, error) {
	return s.syncDrive(ctx, d, s.source)
}

func (s *SyncService) syncDrive(ctx context.Context, d DriveTarget, src events.Source) (*SyncResult, error) {
	log := s.log.With("drive", d.DriveID)
	res := &SyncResult{DriveID: d.DriveID}

	s.emit(ctx, events.SyncStarted{DriveID: d.DriveID})

	key := cursors.StreamKey(d.IdentityID, d.DriveID)
	cur, err := s.store.LoadCursor(ctx, key)
	if err != nil {
		return res, s.fail(ctx, log, d, src, fmt.Errorf("load cursor: %w", err))
	}
	res.Cursor = cur

	for {
		req := driveapi.QueryBatchRequest{
			QueryParams: driveapi.FileQueryParams{
				TargetDrive: driveapi.TargetDrive{Alias: d.DriveID, Type: d.DriveType},
				FileType:    d.FileTypes,
			},
			ResultOptionsRequest: driveapi.ResultOptions{
				MaxRecords:           s.opts.MaxRecords,
				IncludeHeaderContent: true,
				Ordering:             driveapi.OrderingOldestFirst,
				Sorting:              driveapi.SortingAnyChangeDate,
			},
		}
		if cur != nil {
			req.ResultOptionsRequest.CursorState = cur.Token
		}

		resp, err := s.api.QueryBatch(ctx, req, &driveapi.QueryBatchOptions{Decrypt: s.opts.Decrypt})
		if err != nil {
			return res, s.fail(ctx, log, d, src, err)
		}

		n := len(resp.SearchResults)
		latest := int64(0)
		if cur != nil {
			latest = cur.LatestModified
		}

		batches := make([]Batch, 0, n)
		records := make([]models.IndexRecord, 0, n)
		for _, r := range resp.SearchResults {
			if r.DecryptError != nil {
				res.DecryptFailures++
			}
			b, err := ToBatch(d.IdentityID, d.DriveID, r)
			if err != nil {
				return res, s.fail(ctx, log, d, src, err)
			}
			b.Purge = s.opts.PurgeDeleted && r.FileState == models.FileStateDeleted
			batches = append(batches, b)
			records = append(records, b.Record)
			latest = max(latest, b.Record.Modified)
		}

		res.Pages++
		res.Records += n
		s.emit(ctx, events.BatchReceived{
			DriveID:        d.DriveID,
			TotalCount:     res.Records,
			BatchCount:     n,
			LatestModified: latest,
			Data:           records,
			Source:         src,
		})

		if n == 0 {
			break
		}

		next := cursor.New(resp.CursorState, latest)
		advanced := resp.CursorState != "" && (cur == nil || cur.Token != resp.CursorState)
		if advanced {
			batches[n-1].Cursor = next
			batches[n-1].StreamKey = key
		}

		if _, err := s.proc.ApplyBatches(ctx, batches); err != nil {
			return res, s.fail(ctx, log, d, src, err)
		}

		log.Debug(ctx, "page applied", "records", n, "advanced", advanced)

		if !advanced {
			break
		}
		cur = next
		res.Cursor = next

		if n < s.opts.MaxRecords {
			break
		}
	}

	log.Info(ctx, "sync completed", "records", res.Records, "pages", res.Pages, "decrypt_failures", res.DecryptFailures)
	s.emit(ctx, events.SyncCompleted{DriveID: d.DriveID, TotalCount: res.Records})
	return res, nil
}

func (s *SyncService) fail(ctx context.Context, log logging.Logger, d DriveTarget, src events.Source, err error) error {
	log.Error(ctx, "sync failed", "error", err)
	s.emit(context.WithoutCancel(ctx), events.SyncFailed{DriveID: d.DriveID, Message: err.Error(), Source: src})
	return fmt.Errorf("sync %s: %w", d.DriveID, err)
}

func (s *SyncService) emit(ctx context.Context, ev events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Emit(ctx, ev); err != nil {
		s.log.Warn(ctx, "event not published", "event", fmt.Sprintf("%T", ev), "error", err)
	}
}

// SyncAll syncs the drives concurrently, at most Parallelism at a time. The
// result slice follows the order of drives; failures are joined.
func (s *SyncService) SyncAll(ctx context.Context, drives []DriveTarget) ([]*SyncResult, error) {
	return s.syncAll(ctx, drives, s.source)
}

func (s *SyncService) syncAll(ctx context.Context, drives []DriveTarget, src events.Source) ([]*SyncResult, error) {
	results := make([]*SyncResult, len(drives))
	errs := make([]error, len(drives))

	var g errgroup.Group
	g.SetLimit(s.opts.Parallelism)

	for i, d := range drives {
		g.Go(func() error {
			results[i], errs[i] = s.syncDrive(ctx, d, src)
			return nil
		})
	}
	_ = g.Wait()

	return results, errors.Join(errs...)
}

// ResetCursor forgets the saved cursor so the next sync starts over.
func (s *SyncService) ResetCursor(ctx context.Context, identityID, driveID string) error {
	if err := s.store.DeleteCursor(ctx, cursors.StreamKey(identityID, driveID)); err != nil {
		return fmt.Errorf("reset cursor %s/%s: %w", identityID, driveID, err)
	}
	s.log.Info(ctx, "cursor reset", "identity", identityID, "drive", driveID)
	return nil
}

// DefaultSyncInterval replaces a non-positive Watch interval.
const DefaultSyncInterval = 30 * time.Second

// Watch syncs all drives now and then on every tick until ctx ends.
func (s *SyncService) Watch(ctx context.Context, drives []DriveTarget, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.syncAll(ctx, drives, events.SourceWatch); err != nil {
			s.log.Warn(ctx, "watch round failed", "error", err)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}
