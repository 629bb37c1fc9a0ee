package player

import (
	"testing"

	"playercore/internal/domain"
)

func TestSetPauseStatePropagatesToOutputs(t *testing.T) {
	tp := newTestPlayer(testPlayerConfig{})
	p := tp.p

	p.setPauseState(true)

	if !p.paused {
		t.Fatal("paused must be true")
	}
	if tp.ao.pauses != 1 {
		t.Errorf("audio output pauses = %d, want 1", tp.ao.pauses)
	}
	if !tp.vo.paused {
		t.Error("video output must be paused")
	}
	if tp.events.count(domain.EventPause) != 1 {
		t.Errorf("PAUSE events = %d, want 1", tp.events.count(domain.EventPause))
	}

	p.setPauseState(false)
	if tp.ao.resumes != 1 {
		t.Errorf("audio output resumes = %d, want 1", tp.ao.resumes)
	}
	if tp.events.count(domain.EventUnpause) != 1 {
		t.Errorf("UNPAUSE events = %d, want 1", tp.events.count(domain.EventUnpause))
	}
}

func TestSetPauseStateIdempotent(t *testing.T) {
	tp := newTestPlayer(testPlayerConfig{})
	p := tp.p

	p.setPauseState(true)
	pauses, events := tp.ao.pauses, tp.events.count(domain.EventPause)

	p.setPauseState(true)

	if tp.ao.pauses != pauses {
		t.Error("second identical set_pause must not touch outputs")
	}
	if tp.events.count(domain.EventPause) != events {
		t.Error("second identical set_pause must not emit events")
	}
}

func TestPauseInvariantWithCachePause(t *testing.T) {
	tp := newTestPlayer(testPlayerConfig{})
	p := tp.p

	// Cache pause alone keeps the user intent false but pauses playback.
	p.pausedForCache = true
	p.updateInternalPauseState()

	if !p.paused {
		t.Fatal("paused must follow pausedForCache")
	}
	if p.opts.Pause {
		t.Fatal("user pause intent must stay false")
	}
	if got := p.opts.Pause || p.pausedForCache; got != p.paused {
		t.Error("invariant paused == opts.pause || pausedForCache violated")
	}

	// User unpause while cache-paused keeps effective pause.
	p.setPauseState(false)
	if !p.paused {
		t.Error("cache pause must survive a user unpause")
	}

	// Cache recovery releases it.
	p.pausedForCache = false
	p.updateInternalPauseState()
	if p.paused {
		t.Error("clearing pausedForCache must resume")
	}
}

func TestPauseEntersClearStepFrames(t *testing.T) {
	tp := newTestPlayer(testPlayerConfig{})
	p := tp.p
	p.stepFrames = 2

	p.setPauseState(true)

	if p.stepFrames != 0 {
		t.Errorf("stepFrames = %d, want 0 on pause", p.stepFrames)
	}
}

func TestAddStepFrameForward(t *testing.T) {
	tp := newTestPlayer(testPlayerConfig{})
	p := tp.p
	p.setPauseState(true)
	tp.events.reset()

	p.addStepFrame(1)

	if p.stepFrames != 1 {
		t.Errorf("stepFrames = %d, want 1", p.stepFrames)
	}
	if p.paused {
		t.Error("forward step must unpause")
	}
}

func TestAddStepFrameBackward(t *testing.T) {
	tp := newTestPlayer(testPlayerConfig{})
	p := tp.p
	p.playbackPTS = 30

	p.addStepFrame(-1)

	if p.seek.Type != domain.SeekBackstep {
		t.Fatalf("pending seek type = %v, want backstep", p.seek.Type)
	}
	if p.seek.Exact != domain.SeekVeryExact {
		t.Errorf("backstep exact = %v, want very-exact", p.seek.Exact)
	}
	if !p.opts.Pause {
		t.Error("backward step must pause")
	}
}

func TestAddStepFrameBackwardBlockedDuringHRSeek(t *testing.T) {
	tp := newTestPlayer(testPlayerConfig{})
	p := tp.p
	p.hrseekActive = true

	p.addStepFrame(-1)

	if p.seek.Type != domain.SeekNone {
		t.Error("backstep during active hr-seek must be ignored")
	}
}

func TestAddStepFrameNoVideo(t *testing.T) {
	tp := newTestPlayer(testPlayerConfig{noVideo: true})
	p := tp.p

	p.addStepFrame(1)

	if p.stepFrames != 0 {
		t.Error("frame step without a video chain must be a no-op")
	}
}

func TestCoreIdleStateTransitions(t *testing.T) {
	tp := newTestPlayer(testPlayerConfig{})
	p := tp.p
	p.restartComplete = true
	p.inPlayloop = true
	p.audioStatus = domain.StatusPlaying
	p.videoStatus = domain.StatusPlaying
	tp.events.reset()

	p.updateCoreIdleState()
	if !p.playbackActive {
		t.Fatal("playbackActive must be true while unpaused and playing")
	}
	if tp.events.count(domain.EventCoreIdle) != 1 {
		t.Error("CORE_IDLE must fire on transition")
	}

	p.setPauseState(true)
	if p.playbackActive {
		t.Error("pause must clear playbackActive")
	}
}
