// Package events defines the lifecycle notifications published by the sync
// services and the in-process bus that carries them to observers.
package events

import (
	"fmt"

	"github.com/dmitrijs2005/drivemirror/internal/client/models"
)

// Group is the sub-tag of an event.
type Group int

const (
	GroupSync Group = iota + 1
	GroupOutbox
	GroupConnectivity
)

func (g Group) String() string {
	switch g {
	case GroupSync:
		return "sync"
	case GroupOutbox:
		return "outbox"
	case GroupConnectivity:
		return "connectivity"
	}
	return fmt.Sprintf("group(%d)", int(g))
}

// Source names the component that produced an event.
type Source string

const (
	SourceSync  Source = "sync"
	SourceWatch Source = "watch"
)

// Event is implemented only by the types in this package.
type Event interface {
	Group() Group
	event()
}

type syncEvent struct{}

func (syncEvent) Group() Group { return GroupSync }
func (syncEvent) event()       {}

type outboxEvent struct{}

func (outboxEvent) Group() Group { return GroupOutbox }
func (outboxEvent) event()       {}

type connectivityEvent struct{}

func (connectivityEvent) Group() Group { return GroupConnectivity }
func (connectivityEvent) event()       {}

// BatchReceived is published after each page fetched from the remote.
// TotalCount is the running total for the current sync run.
type BatchReceived struct {
	syncEvent
	DriveID        string
	TotalCount     int
	BatchCount     int
	LatestModified int64
	Data           []models.IndexRecord
	Source         Source
}

type SyncStarted struct {
	syncEvent
	DriveID string
}

type SyncCompleted struct {
	syncEvent
	DriveID    string
	TotalCount int
}

type SyncFailed struct {
	syncEvent
	DriveID string
	Message string
	Source  Source
}

type OutboxProcessingStarted struct {
	outboxEvent
	DriveID string
}

type OutboxSending struct {
	outboxEvent
	DriveID string
	FileID  string
}

type OutboxSent struct {
	outboxEvent
	DriveID string
	FileID  string
}

type OutboxCompleted struct {
	outboxEvent
	DriveID string
	Count   int
}

type OutboxFailed struct {
	outboxEvent
	DriveID string
	FileID  string
	Message string
}

type GoingOnline struct {
	connectivityEvent
}

type GoingOffline struct {
	connectivityEvent
}

// Describe renders ev as one human readable line.
func Describe(ev Event) string {
	switch e := ev.(type) {
	case BatchReceived:
		return fmt.Sprintf("[%s] received %d records (%d total)", e.DriveID, e.BatchCount, e.TotalCount)
	case SyncStarted:
		return fmt.Sprintf("[%s] sync started", e.DriveID)
	case SyncCompleted:
		return fmt.Sprintf("[%s] sync completed, %d records", e.DriveID, e.TotalCount)
	case SyncFailed:
		return fmt.Sprintf("[%s] sync failed: %s", e.DriveID, e.Message)
	case OutboxProcessingStarted:
		return fmt.Sprintf("[%s] outbox processing started", e.DriveID)
	case OutboxSending:
		return fmt.Sprintf("[%s] sending %s", e.DriveID, e.FileID)
	case OutboxSent:
		return fmt.Sprintf("[%s] sent %s", e.DriveID, e.FileID)
	case OutboxCompleted:
		return fmt.Sprintf("[%s] outbox completed, %d sent", e.DriveID, e.Count)
	case OutboxFailed:
		return fmt.Sprintf("[%s] outbox failed on %s: %s", e.DriveID, e.FileID, e.Message)
	case GoingOnline:
		return "online"
	case GoingOffline:
		return "offline"
	}
	return fmt.Sprintf("unknown event %T", ev)
}
