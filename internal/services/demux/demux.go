// Package demux adapts a byte source into the demuxer control surface
// the play loop consumes. A background reader goroutine keeps a ring
// buffer filled ahead of the consumer; the loop polls its state for the
// buffering controller, and seeks reposition the source by a bitrate
// estimate (the decoder downstream resynchronizes on container data).
package demux

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"playercore/internal/domain"
	"playercore/internal/domain/ports"
)

const (
	defaultBufSize = 8 * 1024 * 1024
	readChunk      = 256 * 1024
)

type Demuxer struct {
	src    ports.Source
	log    *slog.Logger
	wakeup func()

	duration float64
	tracks   []*domain.Track
	chapters []domain.Chapter
	size     int64
	sizeOK   bool

	// ioMu serializes raw source access between the fill goroutine and
	// Seek; never held together with mu in reverse order.
	ioMu sync.Mutex

	mu     sync.Mutex
	cond   *sync.Cond
	buf    []byte
	rPos   int
	wPos   int
	count  int
	gen    int // bumps on seek so stale fill reads are discarded
	srcErr error // sticky source error, io.EOF included
	closed bool

	filePos int64 // consumer byte offset into the stream

	ctx    context.Context
	cancel context.CancelFunc
}

// Config carries the probed metadata and tuning for one demuxer.
type Config struct {
	Duration float64
	Tracks   []*domain.Track
	Chapters []domain.Chapter
	BufSize  int
}

// New starts the reader goroutine. wakeup pokes the play loop whenever
// the reader state changes in a way the buffering controller cares
// about.
func New(src ports.Source, cfg Config, logger *slog.Logger, wakeup func()) *Demuxer {
	bufSize := cfg.BufSize
	if bufSize <= 0 {
		bufSize = defaultBufSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Demuxer{
		src:      src,
		log:      logger,
		wakeup:   wakeup,
		duration: cfg.Duration,
		tracks:   cfg.Tracks,
		chapters: cfg.Chapters,
		buf:      make([]byte, bufSize),
		ctx:      ctx,
		cancel:   cancel,
	}
	d.size, d.sizeOK = src.Size()
	d.cond = sync.NewCond(&d.mu)
	src.SetContext(ctx)
	go d.fillLoop()
	return d
}

// fillLoop keeps the ring buffer ahead of the consumer.
func (d *Demuxer) fillLoop() {
	chunk := make([]byte, readChunk)
	for {
		d.mu.Lock()
		for !d.closed && (d.count == len(d.buf) || d.srcErr != nil) {
			d.cond.Wait()
		}
		if d.closed {
			d.mu.Unlock()
			return
		}
		space := len(d.buf) - d.count
		if space > len(chunk) {
			space = len(chunk)
		}
		gen := d.gen
		d.mu.Unlock()

		d.ioMu.Lock()
		n, err := d.src.Read(chunk[:space])
		d.ioMu.Unlock()

		d.mu.Lock()
		if gen != d.gen {
			// A seek repositioned the source; this chunk belongs to the
			// old position.
			d.mu.Unlock()
			continue
		}
		for i := 0; i < n; i++ {
			d.buf[d.wPos] = chunk[i]
			d.wPos = (d.wPos + 1) % len(d.buf)
		}
		d.count += n
		if err != nil {
			d.srcErr = err
			if err != io.EOF {
				d.log.Warn("source read failed", slog.String("error", err.Error()))
			}
		}
		d.cond.Broadcast()
		d.mu.Unlock()

		if d.wakeup != nil {
			d.wakeup()
		}
	}
}

// Read hands buffered bytes to the decoder feeder. Blocks until data or
// a sticky source error; never called from the loop goroutine.
func (d *Demuxer) Read(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for d.count == 0 && d.srcErr == nil && !d.closed {
		d.cond.Wait()
	}
	if d.count == 0 {
		if d.srcErr != nil {
			return 0, d.srcErr
		}
		return 0, io.ErrClosedPipe
	}
	n := 0
	for n < len(p) && d.count > 0 {
		p[n] = d.buf[d.rPos]
		d.rPos = (d.rPos + 1) % len(d.buf)
		d.count--
		n++
	}
	d.filePos += int64(n)
	d.cond.Broadcast()
	return n, nil
}

// byteRate estimates the container bitrate in bytes per second.
func (d *Demuxer) byteRate() float64 {
	if d.duration > 0 && d.sizeOK && d.size > 0 {
		return float64(d.size) / d.duration
	}
	return 0
}

// Seek repositions the source by the bitrate estimate and drops the
// buffer. HR seeks land early by construction (the core already
// subtracted its offset); Factor seeks interpret pts as a 0..1 fraction.
func (d *Demuxer) Seek(pts float64, flags domain.DemuxSeekFlags) error {
	if !d.Seekable() && flags&domain.DemuxSeekCached == 0 {
		return domain.ErrUnseekable
	}

	var offset int64
	switch {
	case flags&domain.DemuxSeekFactor != 0:
		if !d.sizeOK {
			return domain.ErrUnsupported
		}
		offset = int64(clamp01(pts) * float64(d.size))
	default:
		rate := d.byteRate()
		if rate <= 0 {
			return domain.ErrUnsupported
		}
		if pts < 0 {
			pts = 0
		}
		offset = int64(pts * rate)
		if d.sizeOK && offset > d.size {
			offset = d.size
		}
	}

	d.ioMu.Lock()
	_, err := d.src.Seek(offset, io.SeekStart)
	d.ioMu.Unlock()
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	d.rPos, d.wPos, d.count = 0, 0, 0
	d.srcErr = nil
	d.filePos = offset
	d.cond.Broadcast()
	return nil
}

// ReaderState snapshots the reader for the buffering controller.
func (d *Demuxer) ReaderState() ports.ReaderState {
	d.mu.Lock()
	defer d.mu.Unlock()
	eof := d.srcErr == io.EOF && d.count == 0
	full := d.count == len(d.buf)
	tsDuration := -1.0
	if rate := d.byteRate(); rate > 0 {
		tsDuration = float64(d.count) / rate
	}
	return ports.ReaderState{
		Idle:       full || d.srcErr != nil,
		Underrun:   d.count == 0 && d.srcErr == nil,
		EOF:        eof,
		TSDuration: tsDuration,
	}
}

func (d *Demuxer) CacheInfo() ports.CacheInfo { return d.src.CacheInfo() }

func (d *Demuxer) StreamSize() (int64, bool) { return d.size, d.sizeOK }

func (d *Demuxer) FilePos() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.filePos
}

func (d *Demuxer) Duration() float64 {
	if d.duration > 0 {
		return d.duration
	}
	return -1
}

func (d *Demuxer) Seekable() bool         { return true }
func (d *Demuxer) TSResetsPossible() bool { return false }
func (d *Demuxer) IsNetwork() bool        { return d.src.IsNetwork() }

func (d *Demuxer) Tracks() []*domain.Track      { return d.tracks }
func (d *Demuxer) Chapters() []domain.Chapter   { return d.chapters }

func (d *Demuxer) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.cond.Broadcast()
	d.mu.Unlock()
	d.cancel()
	return d.src.Close()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
