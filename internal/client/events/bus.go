package events

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/drivemirror/internal/common"
)

type BusOptions struct {
	// Replay is how many of the latest events a new subscriber receives.
	Replay int
	// ExtraBuffer is the per-subscriber room beyond the replay window.
	ExtraBuffer int
}

// DefaultBusOptions keeps the last event for late subscribers.
var DefaultBusOptions = BusOptions{Replay: 1, ExtraBuffer: 64}

// Bus broadcasts events to every subscriber. It is best effort: a subscriber
// whose buffer is full loses its oldest undelivered event.
type Bus struct {
	opts BusOptions

	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	recent []Event
	closed bool
}

type subscriber struct {
	ch      chan Event
	quit    chan struct{}
	once    sync.Once
	dropped int
}

func NewBus(opts BusOptions) *Bus {
	if opts.Replay < 0 {
		opts.Replay = 0
	}
	if opts.ExtraBuffer < 0 {
		opts.ExtraBuffer = 0
	}
	return &Bus{opts: opts, subs: make(map[*subscriber]struct{})}
}

// Emit places ev into every subscriber buffer and returns.
func (b *Bus) Emit(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return common.ErrBusClosed
	}

	if b.opts.Replay > 0 {
		b.recent = append(b.recent, ev)
		if len(b.recent) > b.opts.Replay {
			b.recent = b.recent[len(b.recent)-b.opts.Replay:]
		}
	}

	for s := range b.subs {
		s.push(ev)
	}
	return nil
}

// push never blocks. Only the bus sends on s.ch and it does so under b.mu,
// so one receive always makes room.
func (s *subscriber) push(ev Event) {
	for {
		select {
		case s.ch <- ev:
			return
		default:
		}
		select {
		case <-s.ch:
			s.dropped++
		default:
		}
	}
}

// Subscribe returns a channel with the replay window followed by every later
// event. The channel is closed by the returned cancel func, by ctx ending or
// by Close.
func (b *Bus) Subscribe(ctx context.Context) (<-chan Event, func()) {
	size := b.opts.Replay + b.opts.ExtraBuffer
	if size < 1 {
		size = 1
	}
	s := &subscriber{ch: make(chan Event, size), quit: make(chan struct{})}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		s.close()
		return s.ch, func() {}
	}
	for _, ev := range b.recent {
		s.push(ev)
	}
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[s]; ok {
			delete(b.subs, s)
			s.close()
		}
	}

	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				cancel()
			case <-s.quit:
			}
		}()
	}

	return s.ch, cancel
}

func (s *subscriber) close() {
	s.once.Do(func() {
		close(s.ch)
		close(s.quit)
	})
}

// Close closes every subscriber channel. Later Emit calls fail with
// common.ErrBusClosed.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for s := range b.subs {
		s.close()
	}
	clear(b.subs)
	b.recent = nil
}
