package domain

import "fmt"

// StopReason says why (and whether) the current playlist entry should
// stop. KeepPlaying is the zero value; anything else makes the outer
// driver unload the entry.
type StopReason int

const (
	KeepPlaying  StopReason = iota
	AtEndOfFile             // regular end of file, may be overridden by loop/keep-open
	PTStop                  // stop command, return to idle
	PTQuit                  // quit the player
	PTError                 // unrecoverable error on this entry
	PTNextEntry             // advance to the next playlist entry
	PTCurrentEntry          // reload the current playlist entry
)

var stopReasonNames = [...]string{
	"keep-playing", "eof", "stop", "quit", "error", "next-entry", "current-entry",
}

func (r StopReason) String() string {
	if int(r) >= 0 && int(r) < len(stopReasonNames) {
		return stopReasonNames[r]
	}
	return fmt.Sprintf("unknown(%d)", int(r))
}
