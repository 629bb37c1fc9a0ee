// Package input implements the thread-safe command queue the play loop
// drains every tick. Producers (HTTP API, MPRIS, key bindings) push
// commands from their own goroutines; the loop pops them one at a time.
package input

import (
	"math"
	"sync"
	"sync/atomic"

	"playercore/internal/domain/ports"
	"playercore/internal/metrics"
)

// Queue implements ports.Input.
type Queue struct {
	mu       sync.Mutex
	pending  []ports.Command
	delay    float64
	mouseCtr atomic.Uint32

	// wakeup is called after a push so the sleeping loop notices.
	wakeup func()
}

func NewQueue(wakeup func()) *Queue {
	return &Queue{
		delay:  math.Inf(1),
		wakeup: wakeup,
	}
}

// Push enqueues a command. Safe from any goroutine.
func (q *Queue) Push(cmd ports.Command) {
	q.mu.Lock()
	q.pending = append(q.pending, cmd)
	q.mu.Unlock()
	metrics.CommandsTotal.WithLabelValues(cmd.Name).Inc()
	if q.wakeup != nil {
		q.wakeup()
	}
}

// NoteMouseEvent bumps the pointer activity counter (cursor autohide).
func (q *Queue) NoteMouseEvent() {
	q.mouseCtr.Add(1)
	if q.wakeup != nil {
		q.wakeup()
	}
}

// SetDelay schedules the next re-poll (key auto-repeat). +Inf disables.
func (q *Queue) SetDelay(seconds float64) {
	q.mu.Lock()
	q.delay = seconds
	q.mu.Unlock()
}

func (q *Queue) ReadCommand() (ports.Command, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return ports.Command{}, false
	}
	cmd := q.pending[0]
	q.pending = q.pending[1:]
	return cmd, true
}

func (q *Queue) Delay() float64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.delay
}

func (q *Queue) MouseEventCounter() uint32 {
	return q.mouseCtr.Load()
}
