package player

import (
	"context"
	"log/slog"

	"playercore/internal/domain"
	"playercore/internal/metrics"
)

// runPlayLoop is one tick of the cooperative loop. The handler order is
// a contract: handlers observe each other's side effects within a tick.
// Do not reorder.
func (p *Player) runPlayLoop() {
	p.inPlayloop = true
	defer func() { p.inPlayloop = false }()

	metrics.LoopTicksTotal.Inc()

	p.updateDemuxerProperties()

	if p.filterGraph != nil {
		p.filterGraph.FeedDecoders()
	}

	p.handleCursorAutohide()
	p.handleVOEvents()
	p.updateStatusProperties()

	if p.filterGraph != nil {
		if p.filterGraph.Process() {
			p.Wakeup()
		}
		if p.filterGraph.Failed() {
			p.stopPlay = domain.AtEndOfFile
		}
	}

	p.fillAudioOutBuffers()
	p.writeVideo()

	p.handlePlaybackRestart()

	p.handlePlaybackTime()

	p.handleDummyTicks()

	p.updateOSDMsg()
	if p.videoStatus == domain.StatusEOF && p.subtitles != nil {
		p.subtitles.Update(p.playbackPTS)
	}

	p.handleEOF()

	p.handleLoopFile()

	p.handleKeepOpen()

	p.handleSstep()

	p.updateCoreIdleState()

	if p.stopPlay != domain.KeepPlaying {
		return
	}

	p.handleOSDRedraw()

	p.waitEvents()

	p.handlePauseOnLowCache()

	p.processInput()

	p.handleChapterChange()

	p.handleForceWindow(false)

	p.executeQueuedSeek()

	p.maybeSavePosition()
}

// idle is the reduced tick used while no entry is loaded.
func (p *Player) idle() {
	p.handleDummyTicks()
	p.waitEvents()
	p.processInput()
	p.updateStatusProperties()
	p.handleCursorAutohide()
	p.handleVOEvents()
	p.updateOSDMsg()
	p.handleOSDRedraw()
}

// idleLoop waits for a playlist entry while the player is in idle mode.
func (p *Player) idleLoop() {
	needReinit := true
	for p.opts.IdleMode && p.playlist.current() == nil && p.stopPlay != domain.PTQuit {
		if needReinit {
			if p.ao != nil {
				p.ao.Uninit()
			}
			p.handleForceWindow(true)
			p.Wakeup()
			p.events.notify(domain.EventIdle, nil)
			needReinit = false
		}
		p.idle()
	}
}

// updateDemuxerProperties refreshes demuxer-exposed metadata the rest of
// the tick reads (tracks and chapters can appear mid-stream).
func (p *Player) updateDemuxerProperties() {
	if p.demuxer == nil {
		return
	}
	p.tracks = p.demuxer.Tracks()
	p.chapters = p.demuxer.Chapters()
}

// updateStatusProperties mirrors observable position state into gauges.
func (p *Player) updateStatusProperties() {
	if pos := p.playbackTime(); pos.Known() {
		metrics.PlaybackPositionSeconds.Set(pos.Seconds())
	}
	metrics.CacheBufferPercent.Set(float64(p.cacheBuffer))
}

// maybeSavePosition feeds the resume persistence hook at a low cadence.
func (p *Player) maybeSavePosition() {
	if p.onPositionUpdate == nil || !p.playbackActive {
		return
	}
	now := p.timeSec()
	if now-p.lastResumeSave < 10 {
		return
	}
	p.lastResumeSave = now
	entry := p.playlist.current()
	pos := p.playbackTime()
	if entry == nil || !pos.Known() {
		return
	}
	p.onPositionUpdate(*entry, pos.Seconds(), p.timeLength().Seconds())
}

// Run drives the playlist until quit. It owns the loop goroutine: no
// other goroutine may touch the context while it runs.
func (p *Player) Run(ctx context.Context) {
	stopWatch := context.AfterFunc(ctx, func() {
		p.Dispatch(func() {
			p.stopPlay = domain.PTQuit
		})
	})
	defer stopWatch()

	for p.stopPlay != domain.PTQuit {
		if p.playlist.current() == nil {
			if p.playlist.index < 0 && len(p.playlist.entries) > 0 {
				p.playlist.index = 0
				continue
			}
			if !p.opts.IdleMode {
				break
			}
			p.idleLoop()
			if p.stopPlay == domain.PTQuit {
				break
			}
			continue
		}

		entry := *p.playlist.current()
		stop := p.playEntry(ctx, entry)

		switch stop {
		case domain.PTQuit:
			return
		case domain.PTCurrentEntry:
			// Replay the same entry.
		case domain.PTStop:
			p.playlist.index = len(p.playlist.entries)
		default:
			// EOF, error and next-entry all advance.
			p.playlist.advance(1)
		}
	}
}

// playEntry loads one playlist entry, runs the play loop until a stop
// reason appears, then unloads. Returns the final stop reason.
func (p *Player) playEntry(ctx context.Context, entry domain.PlaylistEntry) domain.StopReason {
	p.stopPlay = domain.KeepPlaying
	p.playing = true
	p.playbackInitialized = false
	p.playingMsgShown = false
	p.prefetchDone = false
	p.maxFrames = -1
	if p.opts.PlayFrames > 0 {
		p.maxFrames = p.opts.PlayFrames
	}

	p.events.notify(domain.EventStartFile, entry)
	p.log.Info("playing", slog.String("media", string(entry.MediaID)))

	loaded, err := p.loader.Load(ctx, entry)
	if err != nil {
		p.log.Error("failed to load media",
			slog.String("media", string(entry.MediaID)),
			slog.String("error", err.Error()))
		p.playing = false
		p.events.notify(domain.EventEndFile, domain.PTError)
		return domain.PTError
	}

	p.demuxer = loaded.Demuxer
	p.extDemux = loaded.ExternalDemuxers
	p.aoChain = loaded.AudioChain
	p.voChain = loaded.VideoChain
	p.filterGraph = loaded.FilterGraph
	p.subtitles = loaded.Subtitles
	p.mediaClose = loaded.Close
	p.updateDemuxerProperties()

	if p.voChain != nil && p.videoOut == nil && p.voFactory != nil {
		if vo, err := p.voFactory(); err == nil {
			p.videoOut = vo
		} else {
			p.log.Error("video output init failed", slog.String("error", err.Error()))
		}
	}

	p.resetPlaybackState()
	p.lastChapter = domain.ChapterNone
	p.lastChapterSeek = domain.ChapterNone
	p.lastChapterPTS = domain.NoPTS
	p.playbackInitialized = true
	p.startTimestamp = p.timeSec()

	// Initial seeks: configured start position, then a saved resume
	// position (the later queue_seek wins).
	if p.opts.PlayStart.Known() {
		p.queueSeek(domain.SeekAbsolute, p.opts.PlayStart.Seconds(), domain.SeekDefault, 0)
	}
	if p.resumeLookup != nil {
		if pos, ok := p.resumeLookup(entry); ok {
			p.queueSeek(domain.SeekAbsolute, pos, domain.SeekExact, 0)
		}
	}
	p.executeQueuedSeek()
	p.updateInternalPauseState()

	for p.stopPlay == domain.KeepPlaying {
		p.runPlayLoop()
	}

	stop := p.stopPlay
	p.savePositionFinal(entry)
	p.unloadEntry()
	p.events.notify(domain.EventEndFile, stop)
	return stop
}

func (p *Player) savePositionFinal(entry domain.PlaylistEntry) {
	if p.onPositionUpdate == nil {
		return
	}
	pos := p.playbackTime()
	if !pos.Known() {
		return
	}
	p.onPositionUpdate(entry, pos.Seconds(), p.timeLength().Seconds())
}

func (p *Player) unloadEntry() {
	if p.aoChain != nil {
		p.aoChain.Uninit()
		p.aoChain = nil
	}
	if p.voChain != nil {
		p.voChain.Uninit()
		p.voChain = nil
	}
	if p.mediaClose != nil {
		if err := p.mediaClose(); err != nil {
			p.log.Warn("media close failed", slog.String("error", err.Error()))
		}
		p.mediaClose = nil
	}
	p.demuxer = nil
	p.extDemux = nil
	p.filterGraph = nil
	p.subtitles = nil
	p.tracks = nil
	p.chapters = nil
	p.playing = false
	p.playbackInitialized = false
	p.restartComplete = false
	p.playbackPTS = domain.NoPTS
	p.lastSeekPTS = domain.NoPTS
	p.seek = domain.SeekRequest{}
	p.currentSeek = domain.SeekRequest{}
	p.pausedForCache = false
	p.cacheBuffer = 100
	p.audioStatus = domain.StatusEOF
	p.videoStatus = domain.StatusEOF
	p.updateCoreIdleState()
}
