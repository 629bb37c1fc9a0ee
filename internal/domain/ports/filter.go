package ports

import "playercore/internal/domain"

// FilterGraph is a complex filter graph inserted between decoders and
// outputs. Optional; most entries play without one.
type FilterGraph interface {
	// FeedDecoders pulls decoder output into graph inputs that want data.
	FeedDecoders()
	// Process pumps the graph; reports whether progress was made.
	Process() bool
	// Failed reports a graph error; the core treats it as end of file.
	Failed() bool
}

// SubtitleUpdater advances subtitle display to a timestamp. The core
// only drives it directly once video is at EOF; during video playback
// the video chain does.
type SubtitleUpdater interface {
	Update(pts domain.PTS)
}
