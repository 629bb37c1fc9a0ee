package player

import (
	"context"
	"log/slog"
	"math"
	"time"

	"playercore/internal/domain"
	"playercore/internal/domain/ports"
)

// LoadedMedia is everything the media loader hands the core for one
// playlist entry. Chains may be nil when the entry has no stream of that
// kind.
type LoadedMedia struct {
	Demuxer          ports.Demuxer
	ExternalDemuxers ports.ExternalTrackDemuxers
	AudioChain       ports.AudioChain
	VideoChain       ports.VideoChain
	FilterGraph      ports.FilterGraph
	Subtitles        ports.SubtitleUpdater
	// Close releases everything the loader opened. May be nil.
	Close func() error
}

// MediaLoader opens a playlist entry and builds its demuxer and chains.
type MediaLoader interface {
	Load(ctx context.Context, entry domain.PlaylistEntry) (*LoadedMedia, error)
}

// Deps are the process-lifetime collaborators of the core.
type Deps struct {
	Logger      *slog.Logger
	Input       ports.Input
	AudioOutput ports.AudioOutput
	Loader      MediaLoader
	// VOFactory creates the video output on demand (force-window or a
	// real video chain). May be nil on pure-audio builds.
	VOFactory func() (ports.VideoOutput, error)
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Player is the single player context. All fields are owned by the loop
// goroutine; other goroutines interact only through Dispatch, Wakeup and
// the input queue.
type Player struct {
	log      *slog.Logger
	opts     Options
	dispatch *dispatchQueue
	events   notifier

	input  ports.Input
	ao     ports.AudioOutput
	loader MediaLoader

	voFactory func() (ports.VideoOutput, error)
	videoOut  ports.VideoOutput

	// Per-entry collaborators, nil between entries.
	demuxer     ports.Demuxer
	extDemux    ports.ExternalTrackDemuxers
	aoChain     ports.AudioChain
	voChain     ports.VideoChain
	filterGraph ports.FilterGraph
	subtitles   ports.SubtitleUpdater
	tracks      []*domain.Track
	chapters    []domain.Chapter
	mediaClose  func() error

	playlist playlist

	// Clock. timeSec is monotonic seconds since player creation.
	now       func() time.Time
	startWall time.Time
	lastTime  float64 // last relativeTime observation, in timeSec units

	// Wakeup gate state.
	sleeptime  float64 // pending sleep deadline in seconds from now, +Inf = none
	inDispatch bool

	// Derived pause/activity state.
	paused         bool
	pausedForCache bool
	playbackActive bool

	// Per-entry lifecycle.
	playing             bool // an entry is loaded
	playbackInitialized bool
	inPlayloop          bool
	stopPlay            domain.StopReason

	videoStatus domain.PlaybackStatus
	audioStatus domain.PlaybackStatus

	restartComplete  bool
	playingMsgShown  bool
	playbackPTS      domain.PTS
	lastSeekPTS      domain.PTS
	lastVOPTS        domain.PTS
	videoPTS         domain.PTS
	startTimestamp float64
	lastIdleTick   float64
	timeFrame      float64 // frame pacing debt in seconds
	maxFrames      int     // remaining video frame budget, -1 = unlimited

	// Seek state.
	seek        domain.SeekRequest // pending
	currentSeek domain.SeekRequest // active, for introspection

	hrseekActive    bool
	hrseekFramedrop bool
	hrseekBackstep  bool
	hrseekLastframe bool
	hrseekPTS       domain.PTS

	audioAllowSecondChanceSeek bool

	stepFrames int

	// Buffering state.
	cacheBuffer     int
	cacheStopTime   float64
	nextCacheUpdate float64

	// Cursor autohide.
	mouseEventTS       uint32
	mouseTimer         float64
	mouseCursorVisible bool

	// Chapter tracking.
	lastChapter     int
	lastChapterSeek int
	lastChapterPTS  domain.PTS

	abLoopClip bool

	// OSD housekeeping.
	osdForceUpdate bool
	osdFunction    string
	osdMsg         string
	osdMsgUntil    float64

	// Resume persistence hook, invoked from the loop with the current
	// position. Wired by the daemon, may be nil.
	onPositionUpdate func(entry domain.PlaylistEntry, pos, duration float64)
	resumeLookup     func(entry domain.PlaylistEntry) (float64, bool)
	lastResumeSave   float64

	// Next-entry prefetch.
	prefetcher   func(entry domain.PlaylistEntry)
	prefetchDone bool
}

// New creates the player context. It does not start the loop; call Run.
func New(opts Options, deps Deps) *Player {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	p := &Player{
		log:         log,
		opts:        opts,
		dispatch:    newDispatchQueue(),
		input:       deps.Input,
		ao:          deps.AudioOutput,
		loader:      deps.Loader,
		voFactory:   deps.VOFactory,
		now:         now,
		sleeptime:   math.Inf(1),
		playbackPTS: domain.NoPTS,
		lastSeekPTS: domain.NoPTS,
		lastVOPTS:   domain.NoPTS,
		videoPTS:    domain.NoPTS,
		hrseekPTS:   domain.NoPTS,
		lastChapter: domain.ChapterNone,
		lastChapterSeek: domain.ChapterNone,
		lastChapterPTS:  domain.NoPTS,
		cacheBuffer: 100,
		videoStatus: domain.StatusEOF,
		audioStatus: domain.StatusEOF,
		abLoopClip:  true,
		maxFrames:   -1,
		lastIdleTick: math.Inf(-1),
	}
	p.startWall = now()
	p.mouseCursorVisible = true
	return p
}

// Subscribe registers an event listener. Must be called before Run.
func (p *Player) Subscribe(l Listener) { p.events.subscribe(l) }

// Dispatch runs fn on the loop goroutine. Safe from any goroutine.
func (p *Player) Dispatch(fn func()) { p.dispatch.Enqueue(fn) }

// Wakeup forces the loop to run. Safe from any goroutine; when called
// from within the loop, the next waitEvents returns without sleeping.
func (p *Player) Wakeup() { p.dispatch.Interrupt() }

// SetOnPositionUpdate installs the resume persistence hook.
func (p *Player) SetOnPositionUpdate(fn func(entry domain.PlaylistEntry, pos, duration float64)) {
	p.onPositionUpdate = fn
}

// SetResumeLookup installs the saved-position lookup consulted when an
// entry is loaded.
func (p *Player) SetResumeLookup(fn func(entry domain.PlaylistEntry) (float64, bool)) {
	p.resumeLookup = fn
}

// timeSec is the monotonic player clock in seconds.
func (p *Player) timeSec() float64 {
	return p.now().Sub(p.startWall).Seconds()
}

// relativeTime returns seconds since its previous call. Pause handling
// calls it to discard time that passed while paused.
func (p *Player) relativeTime() float64 {
	t := p.timeSec()
	delta := t - p.lastTime
	p.lastTime = t
	return delta
}
