package ffmpegaudio

import (
	"log/slog"
	"strings"
	"testing"

	"playercore/internal/domain"
	"playercore/internal/domain/ports"
)

type fakeDevice struct {
	written  []byte
	buffered int
	plays    int
	accept   int // max bytes accepted per Write, 0 = all
}

func (d *fakeDevice) Write(p []byte) int {
	n := len(p)
	if d.accept > 0 && n > d.accept {
		n = d.accept
	}
	d.written = append(d.written, p[:n]...)
	return n
}

func (d *fakeDevice) Buffered() int   { return d.buffered }
func (d *fakeDevice) Play()           { d.plays++ }
func (d *fakeDevice) SampleRate() int { return 48000 }
func (d *fakeDevice) Channels() int   { return 2 }

func newTestChain(dev *fakeDevice) *Chain {
	c := New(Config{SampleRate: 48000, Channels: 2}, strings.NewReader(""), dev,
		slog.New(slog.DiscardHandler), nil)
	// Pretend the decoder already ran; unit tests drive the PCM queue
	// directly.
	c.needRestart = false
	return c
}

func TestDropUntilDiscardsEarlyAudio(t *testing.T) {
	dev := &fakeDevice{}
	c := newTestChain(dev)
	c.basePTS = 10
	// One second of s16le stereo at 48 kHz.
	c.pcm = make([]byte, 48000*2*2)

	c.dropUntil(10.5)

	if got := len(c.pcm); got != 48000*2 {
		t.Errorf("remaining pcm = %d bytes, want half a second (%d)", got, 48000*2)
	}
	if c.consumed != 48000*2 {
		t.Errorf("consumed = %d, want the dropped half second", c.consumed)
	}
}

func TestDropUntilKeepsFrameAlignment(t *testing.T) {
	dev := &fakeDevice{}
	c := newTestChain(dev)
	c.pcm = make([]byte, 1024)

	c.dropUntil(0.0000301) // an uneven byte count

	if c.consumed%4 != 0 {
		t.Errorf("consumed %d bytes breaks the 4-byte frame alignment", c.consumed)
	}
}

func TestPlayingPTSAccountsForDeviceBuffer(t *testing.T) {
	dev := &fakeDevice{}
	c := newTestChain(dev)
	c.started = true
	c.basePTS = 5
	c.consumed = 48000 * 2 * 2 // 1s handed to the device
	dev.buffered = 48000 * 2   // 0.5s still queued

	got := c.PlayingPTS()
	if got < 5.49 || got > 5.51 {
		t.Errorf("PlayingPTS = %v, want ~5.5", got)
	}
}

func TestPlayingPTSUnknownBeforeStart(t *testing.T) {
	c := newTestChain(&fakeDevice{})
	if c.PlayingPTS().Known() {
		t.Error("PlayingPTS must be unknown before any playback")
	}
}

func TestAdvanceStatusProgression(t *testing.T) {
	dev := &fakeDevice{}
	c := newTestChain(dev)

	// Not enough decoded data yet.
	c.pcm = make([]byte, 16)
	status, err := c.Advance(ctl())
	if err != nil || status != domain.StatusNone {
		t.Fatalf("status = %v err = %v, want none", status, err)
	}

	// Primed: ready, but not started.
	c.pcm = make([]byte, primeBytes)
	status, _ = c.Advance(ctl())
	if status != domain.StatusReady {
		t.Fatalf("status = %v, want ready when primed", status)
	}
	if len(dev.written) != 0 {
		t.Error("no audio may reach the device before Start")
	}

	// The barrier opens.
	c.Start()
	if dev.plays != 1 {
		t.Error("Start must release the device")
	}
	status, _ = c.Advance(ctl())
	if status != domain.StatusPlaying {
		t.Fatalf("status = %v, want playing after Start", status)
	}
	if len(dev.written) == 0 {
		t.Error("audio must flow after Start")
	}

	// Decoder finishes; device still has queued audio: draining.
	c.decEOF = true
	c.pcm = nil
	dev.buffered = 128
	status, _ = c.Advance(ctl())
	if status != domain.StatusDraining {
		t.Fatalf("status = %v, want draining", status)
	}

	// Device ran dry: eof.
	dev.buffered = 0
	status, _ = c.Advance(ctl())
	if status != domain.StatusEOF {
		t.Fatalf("status = %v, want eof", status)
	}
}

func TestAdvancePausedWritesNothing(t *testing.T) {
	dev := &fakeDevice{}
	c := newTestChain(dev)
	c.started = true
	c.pcm = make([]byte, 1024)

	p := ctl()
	p.Paused = true
	if _, err := c.Advance(p); err != nil {
		t.Fatal(err)
	}
	if len(dev.written) != 0 {
		t.Error("paused chain must not feed the device")
	}
}

func TestAdvanceDropsDuringHRSeek(t *testing.T) {
	dev := &fakeDevice{}
	c := newTestChain(dev)
	c.basePTS = 0
	c.pcm = make([]byte, 48000*2*2) // 1s

	p := ctl()
	p.HRSeekActive = true
	p.HRSeekPTS = 0.5
	if _, err := c.Advance(p); err != nil {
		t.Fatal(err)
	}
	if got := len(c.pcm); got != 48000*2 {
		t.Errorf("pcm after hr-seek drop = %d, want half left", got)
	}
}

func ctl() ports.ChainControl {
	return ports.ChainControl{HRSeekPTS: domain.NoPTS, SeekBasePTS: domain.NoPTS}
}
