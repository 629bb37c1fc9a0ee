package player

import (
	"math"
)

// waitEvents sleeps on the dispatch queue until the pending timeout
// elapses or the loop is woken. The only suspension point of the core.
func (p *Player) waitEvents() {
	p.inDispatch = true
	p.dispatch.Process(p.sleeptime)
	p.inDispatch = false
	p.sleeptime = math.Inf(1)
}

// setTimeout requests the loop to re-run within dt seconds. Multiple
// requests between sleeps coalesce to the minimum. Calling with 0 is
// equivalent to Wakeup.
func (p *Player) setTimeout(dt float64) {
	p.sleeptime = math.Min(p.sleeptime, dt)

	// A finite deadline requested from within a dispatched callback can't
	// shorten the sleep the queue is already in; force a wake so the
	// deadline is re-read.
	if p.inDispatch && !math.IsInf(dt, 1) {
		p.Wakeup()
	}
}

// processInput drains all ready commands and executes them against the
// command subsystem, then adopts the input layer's re-poll delay.
func (p *Player) processInput() {
	if p.input == nil {
		return
	}
	for {
		cmd, ok := p.input.ReadCommand()
		if !ok {
			break
		}
		p.runCommand(cmd)
	}
	p.setTimeout(p.input.Delay())
}
