package domain

// Event names emitted by the playback core. Delivery order within one
// loop tick follows the program order of the handlers that produced them.
type Event string

const (
	EventPause           Event = "pause"
	EventUnpause         Event = "unpause"
	EventSeek            Event = "seek"
	EventTick            Event = "tick"
	EventPlaybackRestart Event = "playback-restart"
	EventChapterChange   Event = "chapter-change"
	EventCoreIdle        Event = "core-idle"
	EventCacheUpdate     Event = "cache-update"
	EventIdle            Event = "idle"
	EventVideoReconfig   Event = "video-reconfig"
	EventWinResize       Event = "win-resize"
	EventWinState        Event = "win-state"
	EventEndFile         Event = "end-file"
	EventStartFile       Event = "start-file"
)
