package player

import (
	"log/slog"
	"math"
	"testing"
	"time"

	"playercore/internal/domain"
	"playercore/internal/domain/ports"
)

// fakeClock drives the player's monotonic time in tests.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type seekCall struct {
	pts   float64
	flags domain.DemuxSeekFlags
}

type fakeDemuxer struct {
	duration    float64
	seekable    bool
	network     bool
	tsResets    bool
	size        int64
	sizeOK      bool
	filePos     int64
	tracks      []*domain.Track
	chapters    []domain.Chapter
	readerState ports.ReaderState
	cacheInfo   ports.CacheInfo

	seeks   []seekCall
	seekErr error
}

func newFakeDemuxer() *fakeDemuxer {
	return &fakeDemuxer{
		duration: 120,
		seekable: true,
		size:     1 << 20,
		sizeOK:   true,
		readerState: ports.ReaderState{
			Idle:       true,
			TSDuration: 10,
		},
		cacheInfo: ports.CacheInfo{Idle: true},
	}
}

func (d *fakeDemuxer) Seek(pts float64, flags domain.DemuxSeekFlags) error {
	if d.seekErr != nil {
		return d.seekErr
	}
	d.seeks = append(d.seeks, seekCall{pts: pts, flags: flags})
	return nil
}

func (d *fakeDemuxer) ReaderState() ports.ReaderState { return d.readerState }
func (d *fakeDemuxer) CacheInfo() ports.CacheInfo     { return d.cacheInfo }
func (d *fakeDemuxer) StreamSize() (int64, bool)      { return d.size, d.sizeOK }
func (d *fakeDemuxer) FilePos() int64                 { return d.filePos }
func (d *fakeDemuxer) Duration() float64              { return d.duration }
func (d *fakeDemuxer) Seekable() bool                 { return d.seekable }
func (d *fakeDemuxer) TSResetsPossible() bool         { return d.tsResets }
func (d *fakeDemuxer) IsNetwork() bool                { return d.network }
func (d *fakeDemuxer) Tracks() []*domain.Track        { return d.tracks }
func (d *fakeDemuxer) Chapters() []domain.Chapter     { return d.chapters }

type fakeAudioOutput struct {
	pauses  int
	resumes int
	clears  int
	uninits int
}

func (a *fakeAudioOutput) Pause()        { a.pauses++ }
func (a *fakeAudioOutput) Resume()       { a.resumes++ }
func (a *fakeAudioOutput) ClearBuffers() { a.clears++ }
func (a *fakeAudioOutput) Uninit()       { a.uninits++ }

type fakeAudioChain struct {
	status  domain.PlaybackStatus
	pts     domain.PTS
	err     error
	started bool
	resets  int
	uninits int
	lastCtl ports.ChainControl
}

func (c *fakeAudioChain) Start() { c.started = true }

func (c *fakeAudioChain) Advance(ctl ports.ChainControl) (domain.PlaybackStatus, error) {
	c.lastCtl = ctl
	return c.status, c.err
}

func (c *fakeAudioChain) PlayingPTS() domain.PTS { return c.pts }
func (c *fakeAudioChain) Reset()                 { c.resets++; c.started = false }
func (c *fakeAudioChain) Uninit()                { c.uninits++ }

type fakeVideoChain struct {
	status   domain.PlaybackStatus
	pts      domain.PTS
	err      error
	coverArt bool
	started  bool
	resets   int
	uninits  int
}

func (c *fakeVideoChain) Start() { c.started = true }

func (c *fakeVideoChain) Advance(ports.ChainControl) (domain.PlaybackStatus, error) {
	return c.status, c.err
}

func (c *fakeVideoChain) VideoPTS() domain.PTS { return c.pts }
func (c *fakeVideoChain) IsCoverArt() bool     { return c.coverArt }
func (c *fakeVideoChain) Reset()               { c.resets++; c.started = false }
func (c *fakeVideoChain) Uninit()              { c.uninits++ }

type fakeVO struct {
	configOK   bool
	hasFrame   bool
	wantRedraw bool
	fullscreen bool
	paused     bool
	cursor     bool
	events     ports.VOEvents
	redraws    int
	reconfigs  int
	uninits    int
	failNext   bool
}

func (v *fakeVO) SetPaused(paused bool) { v.paused = paused }
func (v *fakeVO) Redraw()               { v.redraws++ }
func (v *fakeVO) WantRedraw() bool      { return v.wantRedraw }
func (v *fakeVO) HasFrame() bool        { return v.hasFrame }
func (v *fakeVO) ConfigOK() bool        { return v.configOK }

func (v *fakeVO) QueryAndResetEvents() ports.VOEvents {
	ev := v.events
	v.events = 0
	return ev
}

func (v *fakeVO) QueryFormats() []ports.PixelFormat { return []ports.PixelFormat{7} }

func (v *fakeVO) Reconfig(ports.ImageParams) error {
	if v.failNext {
		return domain.ErrUnsupported
	}
	v.reconfigs++
	v.configOK = true
	return nil
}

func (v *fakeVO) SetCursorVisibility(visible bool) { v.cursor = visible }
func (v *fakeVO) InhibitScreensaver(bool)          {}
func (v *fakeVO) Fullscreen() bool                 { return v.fullscreen }
func (v *fakeVO) Uninit()                          { v.uninits++; v.configOK = false }

type fakeInput struct {
	cmds     []ports.Command
	delay    float64
	mouseCtr uint32
}

func (i *fakeInput) ReadCommand() (ports.Command, bool) {
	if len(i.cmds) == 0 {
		return ports.Command{}, false
	}
	cmd := i.cmds[0]
	i.cmds = i.cmds[1:]
	return cmd, true
}

func (i *fakeInput) Delay() float64 {
	if i.delay == 0 {
		return inf()
	}
	return i.delay
}

func (i *fakeInput) MouseEventCounter() uint32 { return i.mouseCtr }

// eventRecorder captures emitted events in order.
type eventRecorder struct {
	events []domain.Event
}

func (r *eventRecorder) record(event domain.Event, _ any) {
	r.events = append(r.events, event)
}

func (r *eventRecorder) count(event domain.Event) int {
	n := 0
	for _, e := range r.events {
		if e == event {
			n++
		}
	}
	return n
}

func (r *eventRecorder) reset() { r.events = nil }

// testPlayer bundles a player with its fakes in a loaded-entry state.
type testPlayer struct {
	p       *Player
	clock   *fakeClock
	demuxer *fakeDemuxer
	ao      *fakeAudioOutput
	aoChain *fakeAudioChain
	voChain *fakeVideoChain
	vo      *fakeVO
	input   *fakeInput
	events  *eventRecorder
}

type testPlayerConfig struct {
	opts    *Options
	noAudio bool
	noVideo bool
}

func newTestPlayer(cfg testPlayerConfig) *testPlayer {
	clock := newFakeClock()
	input := &fakeInput{}
	ao := &fakeAudioOutput{}
	events := &eventRecorder{}

	opts := DefaultOptions()
	if cfg.opts != nil {
		opts = *cfg.opts
	}

	p := New(opts, Deps{
		Logger:      slog.New(slog.DiscardHandler),
		Input:       input,
		AudioOutput: ao,
		Now:         clock.now,
	})
	p.Subscribe(events.record)

	tp := &testPlayer{
		p:       p,
		clock:   clock,
		demuxer: newFakeDemuxer(),
		ao:      ao,
		input:   input,
		events:  events,
	}

	p.demuxer = tp.demuxer
	p.playing = true
	p.playbackInitialized = true
	if !cfg.noAudio {
		tp.aoChain = &fakeAudioChain{status: domain.StatusNone, pts: domain.NoPTS}
		p.aoChain = tp.aoChain
		p.audioStatus = domain.StatusNone
	}
	if !cfg.noVideo {
		tp.voChain = &fakeVideoChain{status: domain.StatusNone, pts: domain.NoPTS}
		tp.vo = &fakeVO{configOK: true}
		p.voChain = tp.voChain
		p.videoOut = tp.vo
		p.videoStatus = domain.StatusNone
	}
	return tp
}

func inf() float64 { return math.Inf(1) }

// timeoutC guards goroutine-based tests against hangs.
func timeoutC(t *testing.T) <-chan time.Time {
	t.Helper()
	return time.After(2 * time.Second)
}
