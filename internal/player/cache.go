package player

import (
	"log/slog"

	"playercore/internal/domain"
	"playercore/internal/metrics"
)

// handlePauseOnLowCache drives the buffering state machine from the
// demuxer's cache and reader snapshots. Engages only after the restart
// barrier and only for cache-capable sources.
func (p *Player) handlePauseOnLowCache() {
	if p.demuxer == nil {
		return
	}
	forceUpdate := false
	now := p.timeSec()

	c := p.demuxer.CacheInfo()
	s := p.demuxer.ReaderState()

	cacheBuffer := 100
	usePauseOnLowCache := c.Size > 0 || p.demuxer.IsNetwork()

	if p.restartComplete && usePauseOnLowCache {
		if p.paused && p.pausedForCache {
			if !s.Underrun && (!p.opts.CachePause || s.Idle ||
				s.TSDuration >= p.opts.CachePauseWait) {
				p.pausedForCache = false
				p.updateInternalPauseState()
				forceUpdate = true
			}
			p.setTimeout(0.2)
		} else {
			if p.opts.CachePause && s.Underrun {
				p.pausedForCache = true
				p.updateInternalPauseState()
				p.cacheStopTime = now
				forceUpdate = true
			}
		}
		if p.pausedForCache {
			cacheBuffer = int(100 * clampFloat(s.TSDuration/p.opts.CachePauseWait, 0, 0.99))
		}
	}

	// Keep cache properties fresh while either side is working.
	busy := !s.Idle || !c.Idle
	if busy || p.nextCacheUpdate > 0 {
		if p.nextCacheUpdate <= now {
			if busy {
				p.nextCacheUpdate = now + 0.25
			} else {
				p.nextCacheUpdate = 0
			}
			forceUpdate = true
		}
		if p.nextCacheUpdate > 0 {
			p.setTimeout(p.nextCacheUpdate - now)
		}
	}

	if p.cacheBuffer != cacheBuffer {
		if (p.cacheBuffer == 100) != (cacheBuffer == 100) {
			if cacheBuffer < 100 {
				p.log.Debug("enter buffering")
				metrics.BufferingEventsTotal.Inc()
			} else {
				p.log.Debug("end buffering",
					slog.Float64("waitedSeconds", now-p.cacheStopTime))
			}
		}
		p.cacheBuffer = cacheBuffer
		metrics.CacheBufferPercent.Set(float64(cacheBuffer))
		forceUpdate = true
	}

	if s.EOF && !busy {
		p.prefetchNext()
	}

	if forceUpdate {
		p.events.notify(domain.EventCacheUpdate, nil)
	}
}

// cacheBufferingPercentage is 0-100, or -1 without a demuxer.
func (p *Player) cacheBufferingPercentage() int {
	if p.demuxer == nil {
		return -1
	}
	return p.cacheBuffer
}
