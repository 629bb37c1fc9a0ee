package player

import (
	"math"
	"sync"
	"time"
)

// dispatchQueue serializes cross-goroutine work onto the loop goroutine.
// Producers enqueue closures or interrupt the sleep from any goroutine;
// the loop drains everything inside Process. This is the single
// suspension point of the core.
type dispatchQueue struct {
	mu          sync.Mutex
	work        []func()
	interrupted bool
	wake        chan struct{}
}

func newDispatchQueue() *dispatchQueue {
	return &dispatchQueue{wake: make(chan struct{}, 1)}
}

// Enqueue schedules fn to run on the loop goroutine and wakes it.
func (q *dispatchQueue) Enqueue(fn func()) {
	q.mu.Lock()
	q.work = append(q.work, fn)
	q.mu.Unlock()
	q.signal()
}

// Interrupt makes the current or next Process call return immediately.
// Safe from any goroutine, and re-entrantly from a dispatched closure.
func (q *dispatchQueue) Interrupt() {
	q.mu.Lock()
	q.interrupted = true
	q.mu.Unlock()
	q.signal()
}

func (q *dispatchQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Process drains queued closures, then blocks until the timeout (in
// seconds, +Inf = until interrupted) elapses or Interrupt is called.
// A pending interrupt is consumed and causes an immediate return.
func (q *dispatchQueue) Process(timeout float64) {
	var timer *time.Timer
	var expire <-chan time.Time
	if !math.IsInf(timeout, 1) {
		d := time.Duration(math.Max(timeout, 0) * float64(time.Second))
		timer = time.NewTimer(d)
		expire = timer.C
		defer timer.Stop()
	}

	for {
		q.mu.Lock()
		work := q.work
		q.work = nil
		interrupted := q.interrupted
		q.interrupted = false
		q.mu.Unlock()

		for _, fn := range work {
			fn()
		}
		if interrupted {
			return
		}

		select {
		case <-q.wake:
			// Re-check queued work and the interrupt flag.
		case <-expire:
			return
		}
	}
}
