package domain

import "fmt"

// PlaybackStatus tracks one output chain (audio or video) through a
// restart cycle. The values form a total order and gates are written as
// comparisons (e.g. status >= StatusPlaying), so the ordering is part of
// the contract.
type PlaybackStatus int

const (
	StatusNone     PlaybackStatus = iota // no data yet after load/seek
	StatusReady                          // buffers primed, waiting for the restart barrier
	StatusPlaying                        // actively producing output
	StatusDraining                       // no more input, buffered output still playing out
	StatusEOF                            // chain fully finished (or absent)
)

var playbackStatusNames = [...]string{
	"none", "ready", "playing", "draining", "eof",
}

func (s PlaybackStatus) String() string {
	if int(s) >= 0 && int(s) < len(playbackStatusNames) {
		return playbackStatusNames[s]
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}
