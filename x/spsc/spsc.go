// Package spsc provides a bounded single-producer, single-consumer queue.
//
// Both ends suspend rather than drop or spin: Send waits while the queue is
// full, Receive waits while it is empty. Wake-ups are edge notifications on
// 1-slot channels; every waiter re-checks the indices after waking, so stale
// notifications are harmless.
package spsc

import (
	"context"
	"sync/atomic"

	"weatherstation-go/errcode"
)

// ErrClosed is returned once the queue has been closed: by Send immediately,
// by Receive after the pending items have been drained.
const ErrClosed = errcode.Closed

// Queue is a fixed-capacity FIFO ring. At most one goroutine may send and at
// most one may receive.
type Queue[T any] struct {
	buf []T
	rd  atomic.Uint64 // consumer index (monotonic)
	wr  atomic.Uint64 // producer index (monotonic)

	closed atomic.Bool

	readable chan struct{} // item added
	writable chan struct{} // slot freed
}

// New allocates a queue holding at most capacity items.
func New[T any](capacity int) *Queue[T] {
	if capacity < 1 {
		panic("spsc: capacity must be >= 1")
	}
	return &Queue[T]{
		buf:      make([]T, capacity),
		readable: make(chan struct{}, 1),
		writable: make(chan struct{}, 1),
	}
}

func (q *Queue[T]) Cap() int { return len(q.buf) }

// Len is the number of items waiting. Never exceeds Cap.
func (q *Queue[T]) Len() int {
	rd := q.rd.Load()
	wr := q.wr.Load()
	if n := int(wr - rd); n < len(q.buf) {
		return n
	}
	return len(q.buf) // rd was stale
}

// Producer side

// TrySend enqueues v if there is room and reports whether it did.
func (q *Queue[T]) TrySend(v T) (bool, error) {
	if q.closed.Load() {
		return false, ErrClosed
	}
	rd := q.rd.Load()
	wr := q.wr.Load()
	if wr-rd >= uint64(len(q.buf)) {
		return false, nil
	}
	q.buf[wr%uint64(len(q.buf))] = v
	q.wr.Store(wr + 1) // release
	notify(q.readable)
	return true, nil
}

// Send enqueues v, waiting while the queue is full. It returns once v is in
// the queue, or with ErrClosed / ctx.Err().
func (q *Queue[T]) Send(ctx context.Context, v T) error {
	for {
		ok, err := q.TrySend(v)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-q.writable:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Consumer side

// TryReceive dequeues the oldest item if there is one.
func (q *Queue[T]) TryReceive() (T, bool, error) {
	var zero T
	rd := q.rd.Load()
	wr := q.wr.Load() // acquire
	if wr == rd {
		if q.closed.Load() {
			// A send may have landed between the index load and the close check.
			if q.wr.Load() == rd {
				return zero, false, ErrClosed
			}
			return q.TryReceive()
		}
		return zero, false, nil
	}
	i := rd % uint64(len(q.buf))
	v := q.buf[i]
	q.buf[i] = zero    // drop the reference; the consumer owns v now
	q.rd.Store(rd + 1) // release
	notify(q.writable)
	return v, true, nil
}

// Receive dequeues the oldest item, waiting while the queue is empty.
func (q *Queue[T]) Receive(ctx context.Context) (T, error) {
	for {
		v, ok, err := q.TryReceive()
		if err != nil || ok {
			return v, err
		}
		select {
		case <-q.readable:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// Close disconnects the queue. Waiters on both ends are woken.
func (q *Queue[T]) Close() {
	q.closed.Store(true)
	notify(q.readable)
	notify(q.writable)
}

func (q *Queue[T]) Closed() bool { return q.closed.Load() }

func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
