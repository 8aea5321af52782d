package services

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/drivemirror/internal/client/events"
	"github.com/dmitrijs2005/drivemirror/internal/logging"
)

// DefaultOnlineCheckInterval replaces a non-positive check interval.
const DefaultOnlineCheckInterval = 3 * time.Second

type Mode string

const (
	ModeUnknown Mode = ""
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// Pinger checks that the remote answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConnectivityWatcher tracks whether the drive API is reachable and
// publishes GoingOnline and GoingOffline on changes.
type ConnectivityWatcher struct {
	pinger   Pinger
	bus      Emitter
	log      logging.Logger
	interval time.Duration
	timeout  time.Duration

	mu   sync.RWMutex
	mode Mode
}

func NewConnectivityWatcher(p Pinger, bus Emitter, interval time.Duration, log logging.Logger) *ConnectivityWatcher {
	if log == nil {
		log = logging.Discard()
	}
	if interval <= 0 {
		interval = DefaultOnlineCheckInterval
	}
	return &ConnectivityWatcher{
		pinger:   p,
		bus:      bus,
		log:      log,
		interval: interval,
		timeout:  3 * time.Second,
	}
}

func (w *ConnectivityWatcher) Mode() Mode {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.mode
}

// Check pings once and records the resulting mode.
func (w *ConnectivityWatcher) Check(ctx context.Context) Mode {
	pctx, cancel := context.WithTimeout(ctx, w.timeout)
	err := w.pinger.Ping(pctx)
	cancel()

	mode := ModeOnline
	if err != nil {
		mode = ModeOffline
	}
	w.setMode(ctx, mode)
	return mode
}

func (w *ConnectivityWatcher) setMode(ctx context.Context, mode Mode) {
	w.mu.Lock()
	changed := w.mode != mode
	w.mode = mode
	w.mu.Unlock()

	if !changed {
		return
	}

	w.log.Info(ctx, "connectivity changed", "mode", string(mode))
	if w.bus == nil {
		return
	}

	var ev events.Event = events.GoingOnline{}
	if mode == ModeOffline {
		ev = events.GoingOffline{}
	}
	if err := w.bus.Emit(ctx, ev); err != nil {
		w.log.Warn(ctx, "event not published", "error", err)
	}
}

// Run checks immediately and then every interval until ctx ends.
func (w *ConnectivityWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.Check(ctx)

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}
