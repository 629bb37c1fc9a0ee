package player

import (
	"playercore/internal/domain"
	"playercore/internal/domain/ports"
)

// OSD "function" markers shown next to the status line.
const (
	osdFunctionFFW = "ffw"
	osdFunctionRew = "rew"
)

// setOSDMsg shows a transient on-screen message for duration seconds.
func (p *Player) setOSDMsg(text string, duration float64) {
	p.osdMsg = text
	p.osdMsgUntil = p.timeSec() + duration
	p.osdForceUpdate = true
}

// updateOSDMsg expires transient messages and schedules the next update.
func (p *Player) updateOSDMsg() {
	if p.osdMsg == "" {
		return
	}
	now := p.timeSec()
	if now >= p.osdMsgUntil {
		p.osdMsg = ""
		p.osdForceUpdate = true
		return
	}
	p.setTimeout(p.osdMsgUntil - now)
}

// handleOSDRedraw redraws the VO outside normal video display, with the
// anti-thrash guards: skip while video plays normally, and defer briefly
// right after a seek started.
func (p *Player) handleOSDRedraw() {
	if p.videoOut == nil || !p.videoOut.ConfigOK() {
		return
	}
	// While playing normally the OSD is composited with video frames.
	if !p.paused {
		if p.sleeptime < 0.1 && p.videoStatus == domain.StatusPlaying {
			return
		}
	}
	// Redrawing immediately during a seek makes the seek slower.
	useVideo := p.voChain != nil && !p.voChain.IsCoverArt()
	if useVideo && p.timeSec()-p.startTimestamp < 0.1 {
		p.setTimeout(0.1)
		return
	}
	wantRedraw := p.osdForceUpdate || p.videoOut.WantRedraw()
	if !wantRedraw {
		return
	}
	p.osdForceUpdate = false
	p.videoOut.Redraw()
}

// handleDummyTicks keeps TICK flowing for clients while nothing plays.
func (p *Player) handleDummyTicks() {
	if p.videoStatus == domain.StatusEOF || p.paused {
		if p.timeSec()-p.lastIdleTick > 0.050 {
			p.lastIdleTick = p.timeSec()
			p.events.notify(domain.EventTick, nil)
		}
	}
}

// handleCursorAutohide hides the pointer after inactivity; the special
// delays -1 (never hide) and -2 (always hide) and the fullscreen-only
// mode override the timer.
func (p *Player) handleCursorAutohide() {
	if p.videoOut == nil || p.input == nil {
		return
	}

	visible := p.mouseCursorVisible
	now := p.timeSec()

	mouseEventTS := p.input.MouseEventCounter()
	if p.mouseEventTS != mouseEventTS {
		p.mouseEventTS = mouseEventTS
		p.mouseTimer = now + p.opts.CursorAutohideDelay
		visible = true
	}

	if p.mouseTimer > now {
		p.setTimeout(p.mouseTimer - now)
	} else {
		visible = false
	}

	if p.opts.CursorAutohideDelay == -1 {
		visible = true
	}
	if p.opts.CursorAutohideDelay == -2 {
		visible = false
	}
	if p.opts.CursorAutohideFS && !p.videoOut.Fullscreen() {
		visible = true
	}

	if visible != p.mouseCursorVisible {
		p.videoOut.SetCursorVisibility(visible)
	}
	p.mouseCursorVisible = visible
}

// handleVOEvents forwards window events from the VO to clients.
func (p *Player) handleVOEvents() {
	if p.videoOut == nil {
		return
	}
	events := p.videoOut.QueryAndResetEvents()
	if events&ports.VOEventResize != 0 {
		p.events.notify(domain.EventWinResize, nil)
	}
	if events&ports.VOEventWinState != 0 {
		p.events.notify(domain.EventWinState, nil)
	}
}

// handleChapterChange notifies on chapter transitions.
func (p *Player) handleChapterChange() {
	chapter := p.currentChapter()
	if chapter != p.lastChapter {
		p.lastChapter = chapter
		p.events.notify(domain.EventChapterChange, nil)
	}
}
