package player

import (
	"testing"

	"playercore/internal/domain"
)

// tick runs one loop iteration with a pre-latched wakeup so waitEvents
// never blocks the test.
func tick(tp *testPlayer) {
	tp.p.Wakeup()
	tp.p.runPlayLoop()
}

func TestPlayLoopFullCycle(t *testing.T) {
	tp := newTestPlayer(testPlayerConfig{})
	p := tp.p

	// Chains are syncing: nothing happens yet.
	tick(tp)
	if p.restartComplete {
		t.Fatal("restart must not complete while chains sync")
	}

	// Both chains prime their buffers.
	tp.aoChain.status = domain.StatusReady
	tp.voChain.status = domain.StatusReady
	tick(tp)

	if !p.restartComplete {
		t.Fatal("restart must complete once both chains are ready")
	}
	if tp.events.count(domain.EventPlaybackRestart) != 1 {
		t.Fatal("PLAYBACK_RESTART must fire once")
	}

	// Playback progresses; video drives the clock.
	tp.aoChain.status = domain.StatusPlaying
	tp.voChain.status = domain.StatusPlaying
	tp.voChain.pts = 1.5
	tp.aoChain.pts = 1.4
	tick(tp)

	if p.playbackPTS != 1.5 {
		t.Errorf("playbackPTS = %v, want video 1.5", p.playbackPTS)
	}
	if !p.playbackActive {
		t.Error("playbackActive must hold during normal playback")
	}

	// Both chains end the file.
	tp.aoChain.status = domain.StatusEOF
	tp.voChain.status = domain.StatusEOF
	tick(tp)

	if p.stopPlay != domain.AtEndOfFile {
		t.Errorf("stopPlay = %v, want at-end-of-file", p.stopPlay)
	}
}

func TestPlayLoopABLoopEndToEnd(t *testing.T) {
	opts := DefaultOptions()
	opts.ABLoop = [2]domain.PTS{30, 60}
	tp := newTestPlayer(testPlayerConfig{opts: &opts})
	p := tp.p
	p.restartComplete = true
	p.playbackPTS = 60
	tp.aoChain.status = domain.StatusEOF
	tp.voChain.status = domain.StatusEOF
	tp.aoChain.pts = 60

	tick(tp)

	// EOF was detected, converted to a NOFLUSH seek back to A, and the
	// end-of-tick commit executed it against the demuxer.
	if p.stopPlay != domain.KeepPlaying {
		t.Fatalf("stopPlay = %v, want keep-playing after the loop wrap", p.stopPlay)
	}
	if len(tp.demuxer.seeks) != 1 {
		t.Fatalf("demuxer seeks = %d, want the loop seek committed", len(tp.demuxer.seeks))
	}
	if tp.ao.clears != 0 {
		t.Error("NOFLUSH loop seek must keep audio buffers")
	}
	if !p.hrseekActive {
		t.Error("exact loop seek must hr-seek")
	}
}

func TestPlayLoopStopsBeforeWaitOnStopPlay(t *testing.T) {
	tp := newTestPlayer(testPlayerConfig{})
	p := tp.p
	p.stopPlay = domain.PTQuit

	// Must return without blocking in waitEvents even with no wakeup.
	p.runPlayLoop()

	if p.stopPlay != domain.PTQuit {
		t.Error("stop reason must survive the tick")
	}
}

func TestDummyTickCadence(t *testing.T) {
	tp := newTestPlayer(testPlayerConfig{})
	p := tp.p
	p.paused = true
	tp.events.reset()

	p.handleDummyTicks()
	if tp.events.count(domain.EventTick) != 1 {
		t.Fatal("paused player must emit dummy TICKs")
	}

	// Within 50ms: no new tick.
	tp.clock.advance(20e6)
	p.handleDummyTicks()
	if tp.events.count(domain.EventTick) != 1 {
		t.Error("dummy TICKs must be rate-limited to 50ms")
	}

	tp.clock.advance(40e6)
	p.handleDummyTicks()
	if tp.events.count(domain.EventTick) != 2 {
		t.Error("next dummy TICK must fire after 50ms")
	}
}

func TestIdleLoopExitsWhenEntryArrives(t *testing.T) {
	opts := DefaultOptions()
	opts.IdleMode = true
	tp := newTestPlayer(testPlayerConfig{opts: &opts, noAudio: true, noVideo: true})
	p := tp.p
	p.playing = false
	p.demuxer = nil
	p.playlist = playlist{index: -1}
	tp.events.reset()

	done := make(chan struct{})
	go func() {
		p.idleLoop()
		close(done)
	}()

	p.Dispatch(func() {
		p.SetPlaylist([]domain.PlaylistEntry{{MediaID: "a"}})
	})

	select {
	case <-done:
	case <-timeoutC(t):
		t.Fatal("idle loop did not exit when an entry arrived")
	}
	if tp.events.count(domain.EventIdle) != 1 {
		t.Errorf("IDLE events = %d, want 1", tp.events.count(domain.EventIdle))
	}
	if tp.ao.uninits != 1 {
		t.Errorf("audio output uninits = %d, want 1 on idle entry", tp.ao.uninits)
	}
}

func TestUnloadEntryClearsState(t *testing.T) {
	tp := newTestPlayer(testPlayerConfig{})
	p := tp.p
	p.playbackPTS = 50
	p.restartComplete = true
	p.pausedForCache = true

	p.unloadEntry()

	if p.demuxer != nil || p.aoChain != nil || p.voChain != nil {
		t.Error("collaborators must be released")
	}
	if p.playbackPTS.Known() {
		t.Error("playbackPTS must clear")
	}
	if p.playing || p.restartComplete || p.pausedForCache {
		t.Error("per-entry flags must clear")
	}
	if tp.aoChain.uninits != 1 || tp.voChain.uninits != 1 {
		t.Error("chains must be uninitialized")
	}
}
