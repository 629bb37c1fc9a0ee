package player

import "playercore/internal/domain"

// HRSeekMode controls when seeks become high-resolution.
type HRSeekMode int

const (
	HRSeekNever    HRSeekMode = -1
	HRSeekAbsolute HRSeekMode = 0 // hr-seek absolute seeks only
	HRSeekAlways   HRSeekMode = 1
)

// KeepOpen modes.
const (
	KeepOpenNo     = 0
	KeepOpenYes    = 1 // keep open when there is no next playlist entry
	KeepOpenAlways = 2
)

// ForceVO modes.
const (
	ForceVOOff    = 0
	ForceVOIdle   = 1 // create a window while idle or loading
	ForceVOAlways = 2
)

// Options are the runtime playback options the core consults. They are
// owned by the loop goroutine; external mutation goes through commands.
type Options struct {
	Pause bool

	CachePause        bool
	CachePauseWait    float64 // seconds of demuxed data to resume at
	CachePauseInitial bool

	CorrectPTS          bool
	HRSeek              HRSeekMode
	HRSeekDemuxerOffset float64
	HRSeekFramedrop     bool

	ABLoop    [2]domain.PTS
	LoopFile  int // 0 = off, >0 = remaining loops, -1 = forever
	LoopTimes int // playlist loop count, 1 = no looping

	KeepOpen      int
	KeepOpenPause bool

	ForceVO         int
	StopScreensaver bool

	CursorAutohideDelay float64 // seconds; -1 always visible, -2 always hidden
	CursorAutohideFS    bool    // autohide only while fullscreen

	StepSec float64 // auto-advance seek interval, 0 = off

	PlayStart  domain.PTS
	PlayEnd    domain.PTS
	PlayFrames int // max frames to decode, 0 = unlimited

	PlayingMsg    string
	OSDPlayingMsg string
	OSDDuration   float64

	IdleMode bool // stay alive with an empty playlist
}

// DefaultOptions mirror the daemon defaults before configuration is
// applied.
func DefaultOptions() Options {
	return Options{
		CachePause:          true,
		CachePauseWait:      1.0,
		CorrectPTS:          true,
		HRSeek:              HRSeekAbsolute,
		HRSeekFramedrop:     true,
		ABLoop:              [2]domain.PTS{domain.NoPTS, domain.NoPTS},
		LoopTimes:           1,
		StopScreensaver:     true,
		CursorAutohideDelay: 1.0,
		PlayStart:           domain.NoPTS,
		PlayEnd:             domain.NoPTS,
		OSDDuration:         1.0,
	}
}
