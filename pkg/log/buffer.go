package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// Buffer hands entries to the transporters from a single background worker so
// that scrape loops never block on terminal or disk I/O. When the queue is
// full the oldest queued entry is discarded.
type Buffer struct {
	entries      chan Entry
	transporters []Transporter
	fallback     io.Writer

	dropped atomic.Int64
	closed  atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewBuffer starts a buffer holding up to capacity queued entries.
func NewBuffer(capacity int, transporters ...Transporter) *Buffer {
	if capacity < 1 {
		capacity = 1
	}

	b := &Buffer{
		entries:      make(chan Entry, capacity),
		transporters: transporters,
		fallback:     os.Stderr,
		done:         make(chan struct{}),
	}

	b.wg.Add(1)
	go b.run()

	return b
}

// Send queues an entry. It never blocks.
func (b *Buffer) Send(entry Entry) {
	if b.closed.Load() {
		return
	}

	select {
	case b.entries <- entry:
		return
	default:
	}

	// Full: evict the oldest entry and retry once.
	select {
	case <-b.entries:
		b.dropped.Add(1)
	default:
	}
	select {
	case b.entries <- entry:
	default:
		b.dropped.Add(1)
	}
}

// Dropped returns how many entries were discarded because the queue was full.
func (b *Buffer) Dropped() int64 {
	return b.dropped.Load()
}

// Close stops the worker, delivers whatever is still queued and closes the
// transporters. Calling Close more than once is a no-op.
func (b *Buffer) Close() {
	if !b.closed.CompareAndSwap(false, true) {
		return
	}

	close(b.done)
	b.wg.Wait()

	for {
		select {
		case entry := <-b.entries:
			b.deliver(entry)
		default:
			if n := b.dropped.Load(); n > 0 {
				fmt.Fprintf(b.fallback, "log buffer dropped %d entries\n", n)
			}
			for _, t := range b.transporters {
				_ = t.Close()
			}
			return
		}
	}
}

func (b *Buffer) run() {
	defer b.wg.Done()

	for {
		select {
		case entry := <-b.entries:
			b.deliver(entry)
		case <-b.done:
			return
		}
	}
}

func (b *Buffer) deliver(entry Entry) {
	for _, t := range b.transporters {
		if err := t.Write(entry); err != nil {
			fmt.Fprintf(b.fallback, "log transporter %q failed: %v\n", t.Name(), err)
		}
	}
}
