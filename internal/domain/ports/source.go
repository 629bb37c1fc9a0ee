package ports

import (
	"context"
	"io"
)

// Source is the byte stream a demuxer reads from. Network-backed sources
// carry cache semantics the buffering controller consumes.
type Source interface {
	io.ReadSeekCloser

	SetContext(ctx context.Context)
	// SetReadahead hints how far ahead of the read position the source
	// should buffer.
	SetReadahead(bytes int64)

	CacheInfo() CacheInfo
	Size() (int64, bool)
	IsNetwork() bool
}
