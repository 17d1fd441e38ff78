package event

import (
	"math/bits"
	"sync/atomic"

	"github.com/lixenwraith/collide/parameter"
	"github.com/lixenwraith/collide/status"
)

// slot pairs an event with its publication flag so a reader never sees a torn write
type slot struct {
	ev    Event
	ready atomic.Bool
}

// Queue is a lock-free MPSC ring carrying world events off the simulation goroutine
//
// Producers claim a sequence number by CAS on tail, fill the slot, then mark it ready.
// The single consumer copies ready slots in order and stops at the first unready one.
// When the ring is full the oldest unread event is overwritten and counted in Dropped
type Queue struct {
	slots []slot
	mask  uint64

	head    atomic.Uint64 // Next sequence to read
	tail    atomic.Uint64 // Next sequence to claim
	dropped *atomic.Uint64
}

// NewQueue returns a queue of parameter.EventQueueSize slots
func NewQueue() *Queue {
	return NewQueueSize(parameter.EventQueueSize)
}

// NewQueueSize returns a queue whose capacity is size rounded up to a power of two
func NewQueueSize(size int) *Queue {
	if size < 2 {
		size = 2
	}
	capacity := uint64(1) << bits.Len64(uint64(size-1))
	return &Queue{
		slots:   make([]slot, capacity),
		mask:    capacity - 1,
		dropped: new(atomic.Uint64),
	}
}

// Instrument moves the drop counter into reg; call before the first Push
func (q *Queue) Instrument(reg *status.Registry) {
	q.dropped = reg.Counter(status.EventsDropped)
}

// Cap returns the ring capacity
func (q *Queue) Cap() int {
	return len(q.slots)
}

// Push publishes ev; safe for concurrent producers and never blocks
func (q *Queue) Push(ev Event) {
	size := uint64(len(q.slots))
	seq := q.tail.Add(1) - 1

	s := &q.slots[seq&q.mask]
	s.ev = ev
	s.ready.Store(true) // MUST be after write

	// Overrun: drag head forward past the slot just overwritten
	for {
		head := q.head.Load()
		if seq+1-head <= size {
			return
		}
		if q.head.CompareAndSwap(head, seq+1-size) {
			q.dropped.Add(1)
			return
		}
	}
}

// Consume returns all pending events in FIFO order, or nil when empty
func (q *Queue) Consume() []Event {
	out := q.ConsumeInto(nil)
	if len(out) == 0 {
		return nil
	}
	return out
}

// ConsumeInto appends pending events to dst[:0] so a polling consumer can reuse one buffer
// Single consumer only
func (q *Queue) ConsumeInto(dst []Event) []Event {
	dst = dst[:0]
	size := uint64(len(q.slots))
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		if tail == head {
			return dst
		}

		n := tail - head
		if n > size {
			n = size
			head = tail - size
		}

		dst = dst[:0]
		for i := uint64(0); i < n; i++ {
			s := &q.slots[(head+i)&q.mask]
			if !s.ready.Load() {
				break // Writer incomplete
			}
			dst = append(dst, s.ev)
			s.ready.Store(false)
		}

		if q.head.CompareAndSwap(head, head+uint64(len(dst))) {
			return dst
		}
	}
}

// Len returns the approximate pending count
func (q *Queue) Len() int {
	head := q.head.Load()
	tail := q.tail.Load()
	if tail <= head {
		return 0
	}
	return int(min(tail-head, uint64(len(q.slots))))
}

// Dropped returns how many events were overwritten before being read
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}
