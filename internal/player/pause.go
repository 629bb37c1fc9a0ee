package player

import (
	"playercore/internal/domain"
)

// updateCoreIdleState recomputes playbackActive and emits CORE_IDLE on
// transitions.
func (p *Player) updateCoreIdleState() {
	eof := p.videoStatus == domain.StatusEOF && p.audioStatus == domain.StatusEOF
	active := !p.paused && p.restartComplete && p.playing && p.inPlayloop && !eof

	if p.playbackActive != active {
		p.playbackActive = active
		p.updateScreensaverState()
		p.events.notify(domain.EventCoreIdle, nil)
	}
}

func (p *Player) updateScreensaverState() {
	if p.videoOut == nil {
		return
	}
	p.videoOut.InhibitScreensaver(p.playbackActive && p.opts.StopScreensaver)
}

// setPauseState arbitrates the user pause intent against the cache
// pause. The effective pause is propagated to both outputs before the
// tick completes; PAUSE/UNPAUSE fire only when the user intent changed.
func (p *Player) setPauseState(userPause bool) {
	sendUpdate := p.opts.Pause != userPause
	p.opts.Pause = userPause

	internalPaused := p.opts.Pause || p.pausedForCache
	if internalPaused != p.paused {
		p.paused = internalPaused

		if p.ao != nil && p.aoChain != nil {
			if internalPaused {
				p.ao.Pause()
			} else {
				p.ao.Resume()
			}
		}
		if p.videoOut != nil {
			p.videoOut.SetPaused(internalPaused)
		}

		p.osdFunction = ""
		p.osdForceUpdate = true
		p.Wakeup()

		if internalPaused {
			p.stepFrames = 0
			// Stop the frame timer from accumulating a catch-up burst
			// for the resume.
			p.timeFrame -= p.relativeTime()
		} else {
			// Time that passed while paused must not count into frame
			// pacing.
			_ = p.relativeTime()
		}
	}

	p.updateCoreIdleState()

	if sendUpdate {
		if p.opts.Pause {
			p.events.notify(domain.EventPause, nil)
		} else {
			p.events.notify(domain.EventUnpause, nil)
		}
	}
}

// updateInternalPauseState re-arbitrates after pausedForCache changed.
// Idempotent.
func (p *Player) updateInternalPauseState() {
	p.setPauseState(p.opts.Pause)
}

// addStepFrame advances (dir > 0) or steps back (dir < 0) by one frame.
func (p *Player) addStepFrame(dir int) {
	if p.voChain == nil {
		return
	}
	if dir > 0 {
		p.stepFrames++
		p.setPauseState(false)
	} else if dir < 0 {
		if !p.hrseekActive {
			p.queueSeek(domain.SeekBackstep, 0, domain.SeekVeryExact, 0)
			p.setPauseState(true)
		}
	}
}
