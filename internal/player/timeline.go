package player

import (
	"fmt"

	"playercore/internal/domain"
)

// timeLength is the entry duration in seconds, NoPTS when unknown.
func (p *Player) timeLength() domain.PTS {
	if p.demuxer != nil && p.demuxer.Duration() >= 0 {
		return domain.PTS(p.demuxer.Duration())
	}
	return domain.NoPTS
}

// currentTime is the canonical playback position: the last played PTS,
// or the last seek target while no frame has come out yet.
func (p *Player) currentTime() domain.PTS {
	if p.demuxer != nil {
		if p.playbackPTS.Known() {
			return p.playbackPTS
		}
		if p.lastSeekPTS.Known() {
			return p.lastSeekPTS
		}
	}
	return domain.NoPTS
}

// playbackTime is currentTime with cosmetics: while a seek is in flight
// the seek target is clamped into [0, duration] for display continuity.
func (p *Player) playbackTime() domain.PTS {
	cur := p.currentTime()
	if !cur.Known() {
		return cur
	}
	if !p.playbackPTS.Known() {
		if length := p.timeLength(); length.Known() {
			cur = cur.Clamp(0, length)
		}
	}
	return cur
}

// playStartPTS returns the configured playback window start, NoPTS when
// unset.
func (p *Player) playStartPTS() domain.PTS { return p.opts.PlayStart }

// playEndPTS returns the configured playback window end; the A-B loop
// end also bounds it when set.
func (p *Player) playEndPTS() domain.PTS {
	end := p.opts.PlayEnd
	if ab := p.opts.ABLoop[1]; ab.Known() && (!end.Known() || ab < end) {
		end = ab
	}
	return end
}

// currentPosRatio returns playback position as 0..1, or -1 when unknown.
// With useRange the configured play-start/play-end window rescales the
// ratio. Falls back to byte position when timestamps are unusable.
func (p *Player) currentPosRatio(useRange bool) float64 {
	if p.demuxer == nil {
		return -1
	}
	ans := -1.0
	start := domain.PTS(0)
	length := p.timeLength()
	if useRange {
		startpos := p.playStartPTS()
		endpos := p.playEndPTS()
		maxLen := domain.PTS(0)
		if length.Known() && length > 0 {
			maxLen = length
		}
		if !endpos.Known() || endpos > maxLen {
			endpos = maxLen
		}
		if !startpos.Known() || startpos < 0 {
			startpos = 0
		}
		if endpos < startpos {
			endpos = startpos
		}
		start = startpos
		length = endpos - startpos
	}
	pos := p.currentTime()
	if length.Known() && length > 0 && pos.Known() {
		ans = clampFloat(float64(pos-start)/float64(length), 0, 1)
	}
	if ans < 0 || p.demuxer.TSResetsPossible() {
		if size, ok := p.demuxer.StreamSize(); ok && size > 0 && p.demuxer.FilePos() >= 0 {
			ans = clampFloat(float64(p.demuxer.FilePos())/float64(size), 0, 1)
		}
	}
	if useRange && p.opts.PlayFrames > 0 {
		ans = maxFloat(ans, 1.0-float64(p.framesRemaining())/float64(p.opts.PlayFrames))
	}
	return ans
}

// framesRemaining is the video frame budget left under PlayFrames.
func (p *Player) framesRemaining() int {
	if p.maxFrames < 0 {
		return p.opts.PlayFrames
	}
	return p.maxFrames
}

// percentPos is the 0-100 integer position, -1 when unknown.
func (p *Player) percentPos() int {
	pos := p.currentPosRatio(false)
	if pos < 0 {
		return -1
	}
	return int(pos * 100)
}

// currentChapter returns the greatest chapter index whose start is at or
// before the current time, never below lastChapterSeek. ChapterNone when
// the entry has no chapters, ChapterBeforeFirst before the first one.
func (p *Player) currentChapter() int {
	if len(p.chapters) == 0 {
		return domain.ChapterNone
	}
	cur := p.currentTime()
	i := 0
	for ; i < len(p.chapters); i++ {
		if !cur.Known() || cur < p.chapters[i].Start {
			break
		}
	}
	if p.lastChapterSeek > i-1 {
		return p.lastChapterSeek
	}
	return i - 1
}

func (p *Player) chapterCount() int { return len(p.chapters) }

// chapterName returns the chapter title, "" when out of range or untitled.
func (p *Player) chapterName(chapter int) string {
	if chapter < 0 || chapter >= len(p.chapters) {
		return ""
	}
	return p.chapters[chapter].Title
}

// chapterStartTime is the chapter start, NoPTS when unavailable; chapter
// -1 maps to the start of the timeline.
func (p *Player) chapterStartTime(chapter int) domain.PTS {
	if chapter == domain.ChapterBeforeFirst {
		return 0
	}
	if chapter >= 0 && chapter < len(p.chapters) {
		return p.chapters[chapter].Start
	}
	return domain.NoPTS
}

// chapterDisplayName formats a chapter for OSD and logs.
func (p *Player) chapterDisplayName(chapter int) string {
	if name := p.chapterName(chapter); name != "" {
		return fmt.Sprintf("(%d) %s", chapter+1, name)
	}
	if chapter < domain.ChapterBeforeFirst {
		return "(unavailable)"
	}
	if len(p.chapters) == 0 {
		return fmt.Sprintf("(%d)", chapter+1)
	}
	return fmt.Sprintf("(%d) of %d", chapter+1, len(p.chapters))
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
