package player

import (
	"playercore/internal/domain"
)

// Status is an externally visible snapshot of the player context.
type Status struct {
	MediaID        domain.MediaID `json:"mediaId,omitempty"`
	Title          string         `json:"title,omitempty"`
	Paused         bool           `json:"paused"`
	UserPaused     bool           `json:"userPaused"`
	PausedForCache bool           `json:"pausedForCache"`
	CoreIdle       bool           `json:"coreIdle"`
	Position       float64        `json:"position"`
	Duration       float64        `json:"duration"`
	PercentPos     int            `json:"percentPos"`
	Chapter        int            `json:"chapter"`
	ChapterCount   int            `json:"chapterCount"`
	CacheBuffer    int            `json:"cacheBuffer"`
	AudioStatus    string         `json:"audioStatus"`
	VideoStatus    string         `json:"videoStatus"`
	StopReason     string         `json:"stopReason"`
	SeekActive     bool           `json:"seekActive"`
}

// snapshotStatus must run on the loop goroutine.
func (p *Player) snapshotStatus() Status {
	s := Status{
		Paused:         p.paused,
		UserPaused:     p.opts.Pause,
		PausedForCache: p.pausedForCache,
		CoreIdle:       !p.playbackActive,
		Position:       -1,
		Duration:       -1,
		PercentPos:     p.percentPos(),
		Chapter:        p.currentChapter(),
		ChapterCount:   p.chapterCount(),
		CacheBuffer:    p.cacheBufferingPercentage(),
		AudioStatus:    p.audioStatus.String(),
		VideoStatus:    p.videoStatus.String(),
		StopReason:     p.stopPlay.String(),
		SeekActive:     p.currentSeek.Type != domain.SeekNone || p.seek.Type != domain.SeekNone,
	}
	if entry := p.playlist.current(); entry != nil {
		s.MediaID = entry.MediaID
		s.Title = entry.Title
	}
	if pos := p.playbackTime(); pos.Known() {
		s.Position = pos.Seconds()
	}
	if d := p.timeLength(); d.Known() {
		s.Duration = d.Seconds()
	}
	return s
}

// LoopStatus returns the current status. It must be called from the
// loop goroutine, i.e. from an event listener or a dispatched closure.
func (p *Player) LoopStatus() Status { return p.snapshotStatus() }

// LoopChapters returns the chapter list. Loop goroutine only.
func (p *Player) LoopChapters() []domain.Chapter {
	return append([]domain.Chapter(nil), p.chapters...)
}

// ChaptersSnapshot fetches the chapter list from any goroutine.
func (p *Player) ChaptersSnapshot() []domain.Chapter {
	done := make(chan []domain.Chapter, 1)
	p.Dispatch(func() {
		done <- p.LoopChapters()
	})
	return <-done
}

// StatusSnapshot fetches a consistent snapshot from any goroutine by
// round-tripping through the dispatch queue.
func (p *Player) StatusSnapshot() Status {
	done := make(chan Status, 1)
	p.Dispatch(func() {
		done <- p.snapshotStatus()
	})
	return <-done
}
