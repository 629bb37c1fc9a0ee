package player

import (
	"log/slog"
	"math"

	"playercore/internal/domain"
	"playercore/internal/metrics"
)

// queueSeek merges a seek request into the pending record. Consecutive
// relative seeks accumulate; absolute, factor and backstep requests
// replace the record wholesale. Every call clears an end-of-file stop
// and wakes the loop.
func (p *Player) queueSeek(seekType domain.SeekType, amount float64, exact domain.SeekPrecision, flags domain.SeekFlags) {
	p.Wakeup()

	if p.stopPlay == domain.AtEndOfFile {
		p.stopPlay = domain.KeepPlaying
	}

	switch seekType {
	case domain.SeekRelative:
		p.seek.Flags |= flags
		if p.seek.Type == domain.SeekFactor {
			return // not common enough to bother combining
		}
		p.seek.Amount += amount
		if exact > p.seek.Exact {
			p.seek.Exact = exact
		}
		if p.seek.Type == domain.SeekNone {
			p.seek.Exact = exact
		}
		if p.seek.Type == domain.SeekAbsolute {
			return
		}
		p.seek.Type = domain.SeekRelative
	case domain.SeekAbsolute, domain.SeekFactor, domain.SeekBackstep:
		p.seek = domain.SeekRequest{
			Type:   seekType,
			Amount: amount,
			Exact:  exact,
			Flags:  flags,
		}
	case domain.SeekNone:
		p.seek = domain.SeekRequest{}
	}
}

// executeQueuedSeek commits the pending seek at the end of a loop tick.
// Continuous DELAY-flagged seeking is deferred until a frame had 0.3s to
// show, unless an imprecise seek cancels an active precise one.
func (p *Player) executeQueuedSeek() {
	if p.seek.Type == domain.SeekNone {
		return
	}
	if p.hrseekActive && p.seek.Exact == domain.SeekKeyframe {
		p.startTimestamp = math.Inf(-1)
	}
	delay := p.seek.Flags&domain.SeekFlagDelay != 0
	if delay && p.videoStatus < domain.StatusPlaying &&
		p.timeSec()-p.startTimestamp < 0.3 {
		return
	}
	p.doSeek(p.seek)
	p.seek = domain.SeekRequest{}
}

// doSeek translates one seek request into demuxer commands and resets
// playback state. This is the only place a seek actually happens.
func (p *Player) doSeek(seek domain.SeekRequest) {
	if p.demuxer == nil || seek.Type == domain.SeekNone || seek.Amount == float64(domain.NoPTS) {
		return
	}

	hrSeekVeryExact := seek.Exact == domain.SeekVeryExact
	currentTime := p.currentTime()
	if !currentTime.Known() && seek.Type == domain.SeekRelative {
		return
	}
	if !currentTime.Known() {
		currentTime = 0
	}

	seekPTS := domain.NoPTS
	var demuxFlags domain.DemuxSeekFlags

	switch seek.Type {
	case domain.SeekAbsolute:
		seekPTS = domain.PTS(seek.Amount)
	case domain.SeekBackstep:
		seekPTS = currentTime
		hrSeekVeryExact = true
	case domain.SeekRelative:
		if seek.Amount > 0 {
			demuxFlags = domain.DemuxSeekForward
		}
		seekPTS = currentTime + domain.PTS(seek.Amount)
	case domain.SeekFactor:
		if length := p.timeLength(); length.Known() && length >= 0 {
			seekPTS = domain.PTS(seek.Amount) * length
		}
	}

	demuxPTS := seekPTS

	hrSeek := p.opts.CorrectPTS && seek.Exact != domain.SeekKeyframe &&
		((p.opts.HRSeek == HRSeekAbsolute && seek.Type == domain.SeekAbsolute) ||
			p.opts.HRSeek == HRSeekAlways || seek.Exact >= domain.SeekExact) &&
		seekPTS.Known()

	if seek.Type == domain.SeekFactor || seek.Amount < 0 ||
		(seek.Type == domain.SeekAbsolute && domain.PTS(seek.Amount) < p.lastChapterPTS) {
		p.lastChapterSeek = domain.ChapterNone
	}

	// An unseekable-timeline factor seek goes to the demuxer as a raw
	// fraction instead.
	if seek.Type == domain.SeekFactor && !hrSeek &&
		(p.demuxer.TSResetsPossible() || !seekPTS.Known()) {
		demuxPTS = domain.PTS(seek.Amount)
		demuxFlags |= domain.DemuxSeekFactor
	}

	if hrSeek {
		hrSeekOffset := p.opts.HRSeekDemuxerOffset
		// Demuxers that cut too late after a keyframe need extra slack in
		// the "must land exactly" modes. The value is arbitrary but has
		// held up.
		if hrSeekVeryExact {
			hrSeekOffset = math.Max(hrSeekOffset, 0.5)
		}
		for _, track := range p.tracks {
			if !track.External {
				hrSeekOffset = math.Max(hrSeekOffset, -track.SeekOffset)
			}
		}
		demuxPTS -= domain.PTS(hrSeekOffset)
		demuxFlags = (demuxFlags | domain.DemuxSeekHR) &^ domain.DemuxSeekForward
	}

	if !p.demuxer.Seekable() {
		demuxFlags |= domain.DemuxSeekCached
	}

	if err := p.demuxer.Seek(demuxPTS.Seconds(), demuxFlags); err != nil {
		if !p.demuxer.Seekable() {
			p.log.Error("cannot seek in this file", slog.String("error", err.Error()))
		} else {
			p.log.Error("demuxer seek failed", slog.String("error", err.Error()))
		}
		return
	}

	// Seek external tracks' own demuxers too.
	if p.extDemux != nil {
		for _, track := range p.tracks {
			if !track.Selected || !track.External {
				continue
			}
			td := p.extDemux.TrackDemuxer(track.ID)
			if td == nil {
				continue
			}
			mainNewPos := demuxPTS
			if !hrSeek || track.External {
				mainNewPos += domain.PTS(track.SeekOffset)
			}
			if demuxFlags&domain.DemuxSeekFactor != 0 {
				mainNewPos = seekPTS
			}
			if err := td.Seek(mainNewPos.Seconds(), 0); err != nil {
				p.log.Warn("external track seek failed",
					slog.Int("track", track.ID),
					slog.String("error", err.Error()))
			}
		}
	}

	if seek.Flags&domain.SeekFlagNoFlush == 0 {
		if p.ao != nil {
			p.ao.ClearBuffers()
		}
	}

	p.resetPlaybackState()

	// The seek target acts as "current position" for further relative
	// seeks until a new frame is decoded.
	p.lastSeekPTS = seekPTS

	if hrSeek {
		p.hrseekActive = true
		p.hrseekFramedrop = !hrSeekVeryExact && p.opts.HRSeekFramedrop
		p.hrseekBackstep = seek.Type == domain.SeekBackstep
		p.hrseekPTS = seekPTS
		p.log.Debug("hr-seek",
			slog.Float64("pts", p.hrseekPTS.Seconds()),
			slog.Bool("framedrop", p.hrseekFramedrop),
			slog.Bool("backstep", p.hrseekBackstep))
	}

	if p.stopPlay == domain.AtEndOfFile {
		p.stopPlay = domain.KeepPlaying
	}

	p.startTimestamp = p.timeSec()
	p.Wakeup()

	p.events.notify(domain.EventSeek, nil)
	p.events.notify(domain.EventTick, nil)
	metrics.SeeksTotal.WithLabelValues(seek.Type.String()).Inc()

	p.audioAllowSecondChanceSeek = !hrSeek && demuxFlags&domain.DemuxSeekForward == 0

	// Raw comparison on purpose: NoPTS is most-negative, which reproduces
	// the documented behavior for degenerate loop windows.
	p.abLoopClip = p.lastSeekPTS < p.opts.ABLoop[1]

	p.currentSeek = seek
}

// resetPlaybackState clears per-position state on file load and after
// seeks: decoders, chains, hr-seek flags, timestamps, step counters.
func (p *Player) resetPlaybackState() {
	if p.aoChain != nil {
		p.aoChain.Reset()
	}
	if p.voChain != nil {
		p.voChain.Reset()
	}
	p.resetAudioState()
	p.resetVideoState()

	p.hrseekActive = false
	p.hrseekFramedrop = false
	p.hrseekLastframe = false
	p.hrseekBackstep = false
	p.currentSeek = domain.SeekRequest{}
	p.playbackPTS = domain.NoPTS
	p.lastSeekPTS = domain.NoPTS
	p.stepFrames = 0
	p.abLoopClip = true
	p.restartComplete = false

	p.updateCoreIdleState()
}

func (p *Player) resetAudioState() {
	if p.aoChain != nil {
		p.audioStatus = domain.StatusNone
	} else {
		p.audioStatus = domain.StatusEOF
	}
}

func (p *Player) resetVideoState() {
	if p.voChain != nil {
		p.videoStatus = domain.StatusNone
	} else {
		p.videoStatus = domain.StatusEOF
	}
	p.videoPTS = domain.NoPTS
	p.timeFrame = 0
}

// seekToLastFrame approximately seeks to the end and pins the hr-seek on
// the final decoded frame. Runs at most once per position.
func (p *Player) seekToLastFrame() {
	if p.voChain == nil {
		return
	}
	if p.hrseekLastframe { // already tried
		return
	}
	p.log.Debug("seeking to last frame")
	end := p.playEndPTS()
	if !end.Known() {
		end = p.timeLength()
	}
	p.doSeek(domain.SeekRequest{
		Type:   domain.SeekAbsolute,
		Amount: end.Seconds(),
		Exact:  domain.SeekVeryExact,
	})
	// Keep the hr-seek filter holding the last decoded frame instead of
	// dropping past the target.
	if p.hrseekActive {
		p.hrseekPTS = domain.PTS(math.Inf(1))
		p.hrseekLastframe = true
	}
}
