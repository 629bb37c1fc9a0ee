package player

import (
	"playercore/internal/domain"
)

// handleEOF flags the end of the entry once both chains drained. Paused
// with the last video frame still up is not EOF; and if the user
// disabled both streams at runtime, wait instead of stopping.
func (p *Player) handleEOF() {
	preventEOF := p.paused && p.videoOut != nil && p.videoOut.HasFrame()
	if (p.aoChain != nil || p.voChain != nil) && !preventEOF &&
		p.audioStatus == domain.StatusEOF &&
		p.videoStatus == domain.StatusEOF &&
		p.stopPlay == domain.KeepPlaying {
		p.stopPlay = domain.AtEndOfFile
	}
}

func (p *Player) abLoopStartTime() domain.PTS {
	return p.opts.ABLoop[0]
}

// handleLoopFile converts an end-of-file stop back into a seek when an
// A-B loop or file looping is configured. A-B looping wins; loop-file is
// not attempted while it is active.
func (p *Player) handleLoopFile() {
	if p.stopPlay == domain.AtEndOfFile &&
		(p.opts.ABLoop[0].Known() || p.opts.ABLoop[1].Known()) {
		// Relies on executeQueuedSeek running before the next tick
		// decodes anything.
		p.stopPlay = domain.KeepPlaying
		start := p.abLoopStartTime()
		if !start.Known() {
			start = 0
		}
		p.queueSeek(domain.SeekAbsolute, start.Seconds(), domain.SeekExact,
			domain.SeekFlagNoFlush)
		return
	}

	if p.opts.LoopFile != 0 && p.stopPlay == domain.AtEndOfFile {
		p.stopPlay = domain.KeepPlaying
		p.osdFunction = osdFunctionFFW
		p.queueSeek(domain.SeekAbsolute, 0, domain.SeekDefault, domain.SeekFlagNoFlush)
		if p.opts.LoopFile > 0 {
			p.opts.LoopFile--
		}
	}
}

// handleKeepOpen freezes on the last frame at end of file instead of
// advancing, when configured and nothing else wants the entry to end.
func (p *Player) handleKeepOpen() {
	if p.opts.KeepOpen == KeepOpenNo || p.stopPlay != domain.AtEndOfFile {
		return
	}
	if p.opts.KeepOpen != KeepOpenAlways && p.playlist.next(1) != nil {
		return
	}
	if p.opts.LoopTimes != 1 {
		return
	}
	p.stopPlay = domain.KeepPlaying
	if p.voChain != nil {
		if p.videoOut != nil && !p.videoOut.HasFrame() {
			// EOF was not reached normally (seek past the end).
			p.seekToLastFrame()
		}
		p.playbackPTS = p.lastVOPTS
	}
	if p.opts.KeepOpenPause {
		p.setPauseState(true)
	}
}

// handleSstep implements --sstep auto-advance and single-frame stepping.
func (p *Player) handleSstep() {
	if p.stopPlay != domain.KeepPlaying || !p.restartComplete {
		return
	}

	if p.opts.StepSec > 0 && !p.paused {
		p.osdFunction = osdFunctionFFW
		p.queueSeek(domain.SeekRelative, p.opts.StepSec, domain.SeekDefault, 0)
	}

	if p.videoStatus >= domain.StatusEOF {
		if p.maxFrames >= 0 && p.stopPlay == domain.KeepPlaying {
			p.stopPlay = domain.AtEndOfFile // force EOF even with audio left
		}
		if p.stepFrames > 0 && !p.paused {
			p.setPauseState(true)
		}
	}
}
