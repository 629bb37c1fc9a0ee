package player

import (
	"log/slog"

	"playercore/internal/domain"
	"playercore/internal/domain/ports"
)

func (p *Player) uninitVideoOut() {
	if p.videoOut == nil {
		return
	}
	p.videoOut.Uninit()
	p.videoOut = nil
}

// handleForceWindow creates or destroys the window-only video output for
// states with no real video. force also reconfigures an existing window
// (used when entering idle mode, where the previous video must be
// cleared).
func (p *Player) handleForceWindow(force bool) int {
	// In idle mode, or file loading finished, or forced by a loading
	// stage.
	act := !p.playing || p.playbackInitialized || force

	// A selected video track that never produces a frame still needs a
	// window.
	stalledVideo := p.playbackInitialized && p.restartComplete &&
		p.videoStatus == domain.StatusEOF && p.voChain != nil &&
		(p.videoOut == nil || !p.videoOut.ConfigOK())

	// Don't interfere with real video playback.
	if p.voChain != nil && !stalledVideo {
		return 0
	}

	if p.opts.ForceVO == ForceVOOff {
		if act && p.voChain == nil {
			p.uninitVideoOut()
		}
		return 0
	}

	if p.opts.ForceVO != ForceVOAlways && !act {
		return 0
	}

	if p.videoOut == nil {
		if p.voFactory == nil {
			return 0
		}
		vo, err := p.voFactory()
		if err != nil {
			return p.forceWindowFailed(err)
		}
		p.videoOut = vo
		p.mouseCursorVisible = true
	}

	if !p.videoOut.ConfigOK() || force {
		vo := p.videoOut
		// Pick whatever format works.
		var configFormat ports.PixelFormat
		formats := vo.QueryFormats()
		if len(formats) > 0 {
			configFormat = formats[0]
		}
		params := ports.ImageParams{
			Format:        configFormat,
			W:             960,
			H:             480,
			SampleAspectW: 1,
			SampleAspectH: 1,
		}
		if err := vo.Reconfig(params); err != nil {
			return p.forceWindowFailed(err)
		}
		p.updateScreensaverState()
		vo.SetPaused(true)
		vo.Redraw()
		p.events.notify(domain.EventVideoReconfig, nil)
	}

	return 0
}

func (p *Player) forceWindowFailed(err error) int {
	p.opts.ForceVO = ForceVOOff
	p.uninitVideoOut()
	p.log.Error("error opening/initializing the forced window",
		slog.String("error", err.Error()))
	return -1
}
