package domain

import "math"

// PTS is a presentation timestamp in seconds on the playback timeline.
type PTS float64

// NoPTS marks an unknown timestamp. It is a sentinel, not a valid time;
// never conflate it with 0.
const NoPTS PTS = math.MinInt64

// Known reports whether the timestamp carries a real value.
func (p PTS) Known() bool { return p != NoPTS }

// Seconds returns the timestamp as a plain float64.
func (p PTS) Seconds() float64 { return float64(p) }

// Clamp bounds a known timestamp into [lo, hi]. NoPTS passes through.
func (p PTS) Clamp(lo, hi PTS) PTS {
	if !p.Known() {
		return p
	}
	if p < lo {
		return lo
	}
	if p > hi {
		return hi
	}
	return p
}
