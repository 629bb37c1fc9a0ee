package ports

import (
	"playercore/internal/domain"
)

// AudioOutput is the audio device. Control operations are thread-safe;
// the device signals readiness changes by waking the core.
type AudioOutput interface {
	Pause()
	Resume()
	// ClearBuffers drops all queued audio immediately (seek flush).
	ClearBuffers()
	Uninit()
}

// VOEvents is the bitset returned by QueryAndResetEvents.
type VOEvents int

const (
	VOEventResize VOEvents = 1 << iota
	VOEventWinState
	VOEventFullscreenState
)

// PixelFormat identifies a VO-supported image format.
type PixelFormat int

// ImageParams configures the video output surface.
type ImageParams struct {
	Format        PixelFormat
	W, H          int
	SampleAspectW int
	SampleAspectH int
}

// VideoOutput is the window/display device. It may be created and torn
// down independently of any video chain (force-window).
type VideoOutput interface {
	SetPaused(paused bool)
	Redraw()
	WantRedraw() bool
	HasFrame() bool
	ConfigOK() bool

	QueryAndResetEvents() VOEvents
	// QueryFormats lists supported formats in preference order.
	QueryFormats() []PixelFormat
	Reconfig(params ImageParams) error

	SetCursorVisibility(visible bool)
	// InhibitScreensaver is asynchronous; false restores the screensaver.
	InhibitScreensaver(inhibit bool)
	Fullscreen() bool

	Uninit()
}

// ChainControl is the per-tick snapshot of core state the chains observe
// while advancing. The core owns all of it; chains never write back.
type ChainControl struct {
	Paused          bool
	HRSeekActive    bool
	HRSeekPTS       domain.PTS
	HRSeekFramedrop bool
	HRSeekBackstep  bool
	HRSeekLastFrame bool
	// AllowSecondChanceSeek authorizes one corrective micro-seek if the
	// audio decoder lands past the target.
	AllowSecondChanceSeek bool
	// SeekBasePTS is the last seek target; chains restarting a decoder
	// adopt it as their timestamp base until real timestamps flow.
	SeekBasePTS domain.PTS
}

// AudioChain feeds decoded audio to the audio output. Advance is called
// once per tick and must not block. Chains own their status except the
// Ready -> Playing promotion, which the core commands through Start once
// the restart barrier opens; after Start, Advance reports Playing or
// later.
type AudioChain interface {
	// Start releases the primed buffer to the device.
	Start()
	Advance(ctl ChainControl) (domain.PlaybackStatus, error)
	// PlayingPTS is the timestamp of the sample currently audible,
	// NoPTS before the first sample after a reset.
	PlayingPTS() domain.PTS
	// Reset flushes decoder state after a seek.
	Reset()
	Uninit()
}

// VideoChain writes decoded frames to the video output. Start follows
// the same barrier contract as AudioChain.
type VideoChain interface {
	Start()
	Advance(ctl ChainControl) (domain.PlaybackStatus, error)
	// VideoPTS is the timestamp of the frame on screen, NoPTS before the
	// first frame after a reset.
	VideoPTS() domain.PTS
	// IsCoverArt marks a still-image chain excluded from time-based
	// behavior.
	IsCoverArt() bool
	Reset()
	Uninit()
}
