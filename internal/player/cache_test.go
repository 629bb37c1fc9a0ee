package player

import (
	"math"
	"testing"

	"playercore/internal/domain"
)

// Scenario: unpaused network playback underruns, buffering engages,
// then enough demuxed data accumulates and playback resumes.
func TestCacheBufferingCycle(t *testing.T) {
	tp := newTestPlayer(testPlayerConfig{})
	tp.demuxer.network = true
	p := tp.p
	p.restartComplete = true

	tp.demuxer.readerState.Idle = false
	tp.demuxer.readerState.Underrun = true
	tp.demuxer.readerState.TSDuration = 0.1
	tp.events.reset()

	p.handlePauseOnLowCache()

	if !p.pausedForCache {
		t.Fatal("underrun must engage cache pause")
	}
	if !p.paused {
		t.Fatal("cache pause must pause playback")
	}
	if tp.ao.pauses != 1 {
		t.Errorf("audio output pauses = %d, want 1", tp.ao.pauses)
	}
	if tp.events.count(domain.EventCacheUpdate) == 0 {
		t.Error("CACHE_UPDATE must fire when buffering starts")
	}
	if p.cacheBuffer < 0 || p.cacheBuffer > 100 {
		t.Errorf("cacheBuffer = %d, out of [0,100]", p.cacheBuffer)
	}
	if p.cacheBuffer == 100 {
		t.Error("cacheBuffer must reflect buffering progress")
	}

	// Enough demuxed-ahead data: resume.
	tp.demuxer.readerState.Underrun = false
	tp.demuxer.readerState.TSDuration = p.opts.CachePauseWait + 0.5
	p.handlePauseOnLowCache()

	if p.pausedForCache {
		t.Fatal("cache pause must release once the wait threshold is met")
	}
	if p.paused {
		t.Error("playback must resume")
	}
	if tp.ao.resumes != 1 {
		t.Errorf("audio output resumes = %d, want 1", tp.ao.resumes)
	}
	if p.cacheBuffer != 100 {
		t.Errorf("cacheBuffer = %d, want 100 after recovery", p.cacheBuffer)
	}
}

func TestCachePauseRequiresCacheCapableSource(t *testing.T) {
	tp := newTestPlayer(testPlayerConfig{})
	// Local file: no cache, not network.
	tp.demuxer.network = false
	tp.demuxer.cacheInfo.Size = 0
	p := tp.p
	p.restartComplete = true
	tp.demuxer.readerState.Underrun = true

	p.handlePauseOnLowCache()

	if p.pausedForCache {
		t.Error("cache pause must not engage on a local source")
	}
}

func TestCachePauseWaitsForRestartComplete(t *testing.T) {
	tp := newTestPlayer(testPlayerConfig{})
	tp.demuxer.network = true
	p := tp.p
	p.restartComplete = false
	tp.demuxer.readerState.Underrun = true

	p.handlePauseOnLowCache()

	if p.pausedForCache {
		t.Error("cache pause must not engage before the restart barrier")
	}
}

func TestCachePauseRepollTimeout(t *testing.T) {
	tp := newTestPlayer(testPlayerConfig{})
	tp.demuxer.network = true
	p := tp.p
	p.restartComplete = true
	p.pausedForCache = true
	p.paused = true
	tp.demuxer.readerState.Underrun = true
	tp.demuxer.readerState.TSDuration = 0.1
	p.sleeptime = math.Inf(1)

	p.handlePauseOnLowCache()

	if p.sleeptime > 0.2 {
		t.Errorf("sleeptime = %v, want <= 0.2 while buffering", p.sleeptime)
	}
}

func TestCacheUpdateCadenceWhileBusy(t *testing.T) {
	tp := newTestPlayer(testPlayerConfig{})
	p := tp.p
	tp.demuxer.readerState.Idle = false
	p.sleeptime = math.Inf(1)
	tp.events.reset()

	p.handlePauseOnLowCache()

	if p.nextCacheUpdate <= 0 {
		t.Fatal("busy cache must schedule the next property update")
	}
	if math.IsInf(p.sleeptime, 1) || p.sleeptime > 0.25 {
		t.Errorf("sleeptime = %v, want <= 0.25 while cache is busy", p.sleeptime)
	}
	if tp.events.count(domain.EventCacheUpdate) != 1 {
		t.Error("CACHE_UPDATE must fire on the cadence edge")
	}
}

func TestPrefetchOnReaderEOF(t *testing.T) {
	tp := newTestPlayer(testPlayerConfig{})
	p := tp.p
	p.playlist = playlist{entries: []domain.PlaylistEntry{{MediaID: "a"}, {MediaID: "b"}}, index: 0}
	var prefetched []domain.PlaylistEntry
	p.SetPrefetcher(func(e domain.PlaylistEntry) { prefetched = append(prefetched, e) })

	tp.demuxer.readerState.EOF = true
	tp.demuxer.readerState.Idle = true
	tp.demuxer.cacheInfo.Idle = true

	p.handlePauseOnLowCache()
	p.handlePauseOnLowCache()

	if len(prefetched) != 1 {
		t.Fatalf("prefetch calls = %d, want exactly 1", len(prefetched))
	}
	if prefetched[0].MediaID != "b" {
		t.Errorf("prefetched %q, want next entry b", prefetched[0].MediaID)
	}
}

func TestCacheBufferingPercentageWithoutDemuxer(t *testing.T) {
	tp := newTestPlayer(testPlayerConfig{})
	p := tp.p
	p.demuxer = nil

	if got := p.cacheBufferingPercentage(); got != -1 {
		t.Errorf("percentage = %d, want -1 without demuxer", got)
	}
}
