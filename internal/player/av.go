package player

import (
	"log/slog"

	"playercore/internal/domain"
	"playercore/internal/domain/ports"
)

// chainControl snapshots the core state the chains are allowed to see.
func (p *Player) chainControl() ports.ChainControl {
	return ports.ChainControl{
		Paused:                p.paused,
		HRSeekActive:          p.hrseekActive,
		HRSeekPTS:             p.hrseekPTS,
		HRSeekFramedrop:       p.hrseekFramedrop,
		HRSeekBackstep:        p.hrseekBackstep,
		HRSeekLastFrame:       p.hrseekLastframe,
		AllowSecondChanceSeek: p.audioAllowSecondChanceSeek,
		SeekBasePTS:           p.lastSeekPTS,
	}
}

// fillAudioOutBuffers advances the audio chain and mirrors its status.
func (p *Player) fillAudioOutBuffers() {
	if p.aoChain == nil {
		return
	}
	status, err := p.aoChain.Advance(p.chainControl())
	if err != nil {
		p.log.Error("audio chain failed", slog.String("error", err.Error()))
		status = domain.StatusEOF
	}
	if status != p.audioStatus {
		p.audioStatus = status
		p.Wakeup()
	}
}

// writeVideo advances the video chain, mirrors its status and tracks the
// on-screen PTS and the frame budget.
func (p *Player) writeVideo() {
	if p.voChain == nil {
		return
	}
	status, err := p.voChain.Advance(p.chainControl())
	if err != nil {
		p.log.Error("video chain failed", slog.String("error", err.Error()))
		status = domain.StatusEOF
	}
	if pts := p.voChain.VideoPTS(); pts.Known() && pts != p.videoPTS {
		p.videoPTS = pts
		p.lastVOPTS = pts
		if p.maxFrames > 0 {
			p.maxFrames--
		}
	}
	if status != p.videoStatus {
		p.videoStatus = status
		p.Wakeup()
	}
}
