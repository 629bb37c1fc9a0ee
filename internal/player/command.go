package player

import (
	"log/slog"
	"strconv"

	"playercore/internal/domain"
	"playercore/internal/domain/ports"
)

// runCommand executes one input command synchronously on the loop
// goroutine. Unknown commands and malformed seek and ab-loop arguments
// are logged and dropped; other malformed arguments are dropped silently.
// Commands never fail the loop.
func (p *Player) runCommand(cmd ports.Command) {
	switch cmd.Name {
	case "seek":
		p.cmdSeek(cmd.Args)
	case "set-pause":
		if v, ok := parseBool(arg(cmd.Args, 0)); ok {
			p.setPauseState(v)
		}
	case "cycle-pause":
		p.setPauseState(!p.opts.Pause)
	case "frame-step":
		p.addStepFrame(1)
	case "frame-back-step":
		p.addStepFrame(-1)
	case "ab-loop":
		p.cmdABLoop(cmd.Args)
	case "seek-chapter":
		p.cmdSeekChapter(cmd.Args)
	case "playlist-next":
		p.stopPlay = domain.PTNextEntry
		p.Wakeup()
	case "playlist-prev":
		p.playlist.index -= 2 // compensate for the driver's own advance
		p.stopPlay = domain.PTNextEntry
		p.Wakeup()
	case "stop":
		p.stopPlay = domain.PTStop
		p.Wakeup()
	case "quit":
		p.stopPlay = domain.PTQuit
		p.Wakeup()
	default:
		p.log.Warn("unknown command", slog.String("name", cmd.Name))
	}
}

// cmdSeek parses: seek <target> [relative|absolute|absolute-percent]
// [exact|keyframe] [delay].
func (p *Player) cmdSeek(args []string) {
	target, err := strconv.ParseFloat(arg(args, 0), 64)
	if err != nil {
		p.log.Warn("seek: bad target", slog.String("arg", arg(args, 0)))
		return
	}
	seekType := domain.SeekRelative
	exact := domain.SeekDefault
	var flags domain.SeekFlags
	for _, a := range args[1:] {
		switch a {
		case "relative":
			seekType = domain.SeekRelative
		case "absolute":
			seekType = domain.SeekAbsolute
		case "absolute-percent":
			seekType = domain.SeekFactor
			target /= 100
		case "exact":
			exact = domain.SeekExact
		case "keyframe":
			exact = domain.SeekKeyframe
		case "delay":
			flags |= domain.SeekFlagDelay
		}
	}
	p.osdFunction = osdFunctionFFW
	if seekType == domain.SeekRelative && target < 0 {
		p.osdFunction = osdFunctionRew
	}
	p.queueSeek(seekType, target, exact, flags)
}

// cmdABLoop: "ab-loop a b" sets endpoints, "ab-loop clear" removes them.
func (p *Player) cmdABLoop(args []string) {
	if arg(args, 0) == "clear" {
		p.opts.ABLoop = [2]domain.PTS{domain.NoPTS, domain.NoPTS}
		p.abLoopClip = true
		return
	}
	a, errA := strconv.ParseFloat(arg(args, 0), 64)
	b, errB := strconv.ParseFloat(arg(args, 1), 64)
	if errA != nil || errB != nil {
		p.log.Warn("ab-loop: bad endpoints")
		return
	}
	p.opts.ABLoop = [2]domain.PTS{domain.PTS(a), domain.PTS(b)}
	p.abLoopClip = p.currentTime() < p.opts.ABLoop[1]
}

// cmdSeekChapter jumps by a relative chapter count.
func (p *Player) cmdSeekChapter(args []string) {
	dir, err := strconv.Atoi(arg(args, 0))
	if err != nil || len(p.chapters) == 0 {
		return
	}
	chapter := p.currentChapter() + dir
	if chapter < 0 {
		chapter = 0
	}
	if chapter >= len(p.chapters) {
		p.stopPlay = domain.PTNextEntry
		p.Wakeup()
		return
	}
	start := p.chapterStartTime(chapter)
	if !start.Known() {
		return
	}
	// Pin the chapter property so the display doesn't flap while the
	// seek is in flight.
	p.lastChapterSeek = chapter
	p.lastChapterPTS = start
	p.queueSeek(domain.SeekAbsolute, start.Seconds(), domain.SeekDefault, 0)
	p.setOSDMsg(p.chapterDisplayName(chapter), p.opts.OSDDuration)
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func parseBool(s string) (bool, bool) {
	switch s {
	case "true", "yes", "1":
		return true, true
	case "false", "no", "0":
		return false, true
	}
	return false, false
}
