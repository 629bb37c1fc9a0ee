package player

import (
	"playercore/internal/domain"
	"playercore/internal/metrics"
)

// handlePlaybackTime refreshes playbackPTS from whichever chain is
// authoritative: video while it plays (cover art excluded), else audio.
func (p *Player) handlePlaybackTime() {
	if p.voChain != nil && !p.voChain.IsCoverArt() &&
		p.videoStatus >= domain.StatusPlaying &&
		p.videoStatus < domain.StatusEOF {
		p.playbackPTS = p.videoPTS
	} else if p.audioStatus >= domain.StatusPlaying &&
		p.audioStatus < domain.StatusEOF {
		p.playbackPTS = p.aoChain.PlayingPTS()
	}
}

// handlePlaybackRestart is the audio/video ready barrier. Audio and
// video buffers are always primed before playback actually starts; this
// starts them together and emits PLAYBACK_RESTART exactly once per
// load or seek.
func (p *Player) handlePlaybackRestart() {
	if p.audioStatus < domain.StatusReady || p.videoStatus < domain.StatusReady {
		return
	}

	if p.opts.CachePauseInitial && (p.videoStatus == domain.StatusReady ||
		p.audioStatus == domain.StatusReady) {
		// A chain is restarting and initial buffering is on: restart in
		// paused mode so no audio drops and video does not start early.
		p.pausedForCache = true
		p.cacheBuffer = 0
		p.updateInternalPauseState()
	}

	if p.videoStatus == domain.StatusReady {
		p.videoStatus = domain.StatusPlaying
		if p.voChain != nil {
			p.voChain.Start()
		}
		p.relativeTime()
		p.Wakeup()
	}

	if p.audioStatus == domain.StatusReady {
		// A new seek queued while this one finishes: skip starting audio
		// and resume seeking immediately.
		if p.seek.Type != domain.SeekNone && p.videoStatus == domain.StatusPlaying {
			p.handlePlaybackTime()
			p.executeQueuedSeek()
			return
		}
		p.aoChain.Start()
		p.fillAudioOutBuffers() // actually play the prepared buffer
	}

	if !p.restartComplete {
		p.hrseekActive = false
		p.restartComplete = true
		p.currentSeek = domain.SeekRequest{}
		p.audioAllowSecondChanceSeek = false
		p.handlePlaybackTime()
		p.events.notify(domain.EventPlaybackRestart, nil)
		metrics.PlaybackRestartsTotal.Inc()
		p.updateCoreIdleState()
		if !p.playingMsgShown {
			if p.opts.PlayingMsg != "" {
				p.log.Info(p.opts.PlayingMsg)
			}
			if p.opts.OSDPlayingMsg != "" {
				p.setOSDMsg(p.opts.OSDPlayingMsg, p.opts.OSDDuration)
			}
		}
		p.playingMsgShown = true
		p.Wakeup()
		p.abLoopClip = p.playbackPTS < p.opts.ABLoop[1]
		p.log.Debug("playback restart complete")
	}
}
