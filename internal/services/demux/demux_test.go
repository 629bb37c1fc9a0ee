package demux

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"playercore/internal/domain"
	"playercore/internal/domain/ports"
)

// memSource is an in-memory ports.Source.
type memSource struct {
	*bytes.Reader
	network bool
	cache   ports.CacheInfo
}

func newMemSource(data []byte) *memSource {
	return &memSource{
		Reader: bytes.NewReader(data),
		cache:  ports.CacheInfo{Idle: true},
	}
}

func (s *memSource) Close() error                 { return nil }
func (s *memSource) SetContext(context.Context)   {}
func (s *memSource) SetReadahead(int64)           {}
func (s *memSource) CacheInfo() ports.CacheInfo   { return s.cache }
func (s *memSource) Size() (int64, bool)          { return int64(s.Reader.Size()), true }
func (s *memSource) IsNetwork() bool              { return s.network }

func testLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestDemuxerReadsThroughBuffer(t *testing.T) {
	data := bytes.Repeat([]byte{0xAB}, 4096)
	d := New(newMemSource(data), Config{Duration: 4, BufSize: 1024}, testLogger(), nil)
	defer d.Close()

	out := make([]byte, 0, len(data))
	buf := make([]byte, 512)
	for len(out) < len(data) {
		n, err := d.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("read: %v", err)
		}
	}
	if !bytes.Equal(out, data) {
		t.Fatalf("read %d bytes, corrupted or short (want %d)", len(out), len(data))
	}
	if d.FilePos() != int64(len(data)) {
		t.Errorf("FilePos = %d, want %d", d.FilePos(), len(data))
	}
}

func TestDemuxerReaderStateEOF(t *testing.T) {
	data := []byte("tiny")
	d := New(newMemSource(data), Config{BufSize: 64}, testLogger(), nil)
	defer d.Close()

	buf := make([]byte, 16)
	for {
		if _, err := d.Read(buf); err != nil {
			break
		}
	}

	waitFor(t, func() bool { return d.ReaderState().EOF })
	st := d.ReaderState()
	if st.Underrun {
		t.Error("EOF must not read as underrun")
	}
	if !st.Idle {
		t.Error("reader must be idle at EOF")
	}
}

func TestDemuxerSeekByBitrate(t *testing.T) {
	// 1000 bytes over 10 seconds -> 100 bytes/sec.
	data := make([]byte, 1000)
	d := New(newMemSource(data), Config{Duration: 10, BufSize: 64}, testLogger(), nil)
	defer d.Close()

	if err := d.Seek(5, 0); err != nil {
		t.Fatalf("seek: %v", err)
	}
	if d.FilePos() != 500 {
		t.Errorf("FilePos = %d, want 500 after 5s seek", d.FilePos())
	}
}

func TestDemuxerFactorSeek(t *testing.T) {
	data := make([]byte, 1000)
	d := New(newMemSource(data), Config{Duration: 10, BufSize: 64}, testLogger(), nil)
	defer d.Close()

	if err := d.Seek(0.25, domain.DemuxSeekFactor); err != nil {
		t.Fatalf("seek: %v", err)
	}
	if d.FilePos() != 250 {
		t.Errorf("FilePos = %d, want 250 for factor 0.25", d.FilePos())
	}
}

func TestDemuxerSeekClampsPastEnd(t *testing.T) {
	data := make([]byte, 1000)
	d := New(newMemSource(data), Config{Duration: 10, BufSize: 64}, testLogger(), nil)
	defer d.Close()

	if err := d.Seek(60, 0); err != nil {
		t.Fatalf("seek: %v", err)
	}
	if d.FilePos() != 1000 {
		t.Errorf("FilePos = %d, want clamped to size", d.FilePos())
	}
}

func TestDemuxerSeekWithoutDurationUnsupported(t *testing.T) {
	d := New(newMemSource(make([]byte, 100)), Config{BufSize: 64}, testLogger(), nil)
	defer d.Close()

	if err := d.Seek(5, 0); err == nil {
		t.Error("time seek without a bitrate estimate must fail")
	}
	if err := d.Seek(0.5, domain.DemuxSeekFactor); err != nil {
		t.Errorf("factor seek must still work: %v", err)
	}
}

func TestDemuxerTSDuration(t *testing.T) {
	data := make([]byte, 1000)
	d := New(newMemSource(data), Config{Duration: 10, BufSize: 200}, testLogger(), nil)
	defer d.Close()

	// Reader fills the 200-byte buffer: 2 seconds of demuxed-ahead data.
	waitFor(t, func() bool { return d.ReaderState().TSDuration >= 1.9 })
}

func TestDemuxerDurationUnknown(t *testing.T) {
	d := New(newMemSource(nil), Config{}, testLogger(), nil)
	defer d.Close()
	if d.Duration() >= 0 {
		t.Errorf("Duration = %v, want negative for unknown", d.Duration())
	}
}
