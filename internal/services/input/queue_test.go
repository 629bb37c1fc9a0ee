package input

import (
	"math"
	"testing"

	"playercore/internal/domain/ports"
)

func TestQueuePushAndDrain(t *testing.T) {
	wakeups := 0
	q := NewQueue(func() { wakeups++ })

	q.Push(ports.Command{Name: "seek", Args: []string{"5"}})
	q.Push(ports.Command{Name: "set-pause", Args: []string{"true"}})

	if wakeups != 2 {
		t.Errorf("wakeups = %d, want one per push", wakeups)
	}

	cmd, ok := q.ReadCommand()
	if !ok || cmd.Name != "seek" {
		t.Fatalf("first = %+v ok=%v, want seek", cmd, ok)
	}
	cmd, ok = q.ReadCommand()
	if !ok || cmd.Name != "set-pause" {
		t.Fatalf("second = %+v ok=%v, want set-pause", cmd, ok)
	}
	if _, ok := q.ReadCommand(); ok {
		t.Error("drained queue must report no commands")
	}
}

func TestQueueDelayDefaultsToInfinity(t *testing.T) {
	q := NewQueue(nil)
	if !math.IsInf(q.Delay(), 1) {
		t.Errorf("Delay = %v, want +Inf by default", q.Delay())
	}

	q.SetDelay(0.04)
	if q.Delay() != 0.04 {
		t.Errorf("Delay = %v, want 0.04", q.Delay())
	}
}

func TestQueueMouseCounter(t *testing.T) {
	q := NewQueue(nil)
	before := q.MouseEventCounter()
	q.NoteMouseEvent()
	q.NoteMouseEvent()
	if got := q.MouseEventCounter(); got != before+2 {
		t.Errorf("counter = %d, want %d", got, before+2)
	}
}
