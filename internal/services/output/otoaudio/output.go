// Package otoaudio is the audio output device, backed by oto. It holds a
// small PCM ring the device drains; the audio chain tops it up from the
// play loop without blocking.
package otoaudio

import (
	"fmt"
	"sync"

	"github.com/hajimehoshi/oto/v2"
)

const (
	DefaultSampleRate = 48000
	DefaultChannels   = 2
	bytesPerSample    = 2 // s16le

	// Cap the device-side buffer; anything larger makes pause and seek
	// flushes audibly late.
	maxBuffered = 1 << 18
)

type Output struct {
	ctx    *oto.Context
	player oto.Player

	sampleRate int
	channels   int

	mu     sync.Mutex
	buf    []byte
	paused bool
	closed bool

	// wakeup pokes the play loop when the device drains low.
	wakeup func()
}

func New(sampleRate, channels int, wakeup func()) (*Output, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if channels <= 0 {
		channels = DefaultChannels
	}
	ctx, ready, err := oto.NewContext(sampleRate, channels, bytesPerSample)
	if err != nil {
		return nil, fmt.Errorf("audio device: %w", err)
	}
	<-ready

	o := &Output{
		ctx:        ctx,
		sampleRate: sampleRate,
		channels:   channels,
		wakeup:     wakeup,
	}
	o.player = ctx.NewPlayer(o)
	return o, nil
}

func (o *Output) SampleRate() int { return o.sampleRate }
func (o *Output) Channels() int   { return o.channels }

// Read feeds the device. Silence is produced while paused or empty so
// the device never starves into an error state.
func (o *Output) Read(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.paused || len(o.buf) == 0 {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}
	n := copy(p, o.buf)
	o.buf = o.buf[n:]
	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	if o.wakeup != nil && len(o.buf) < maxBuffered/4 {
		o.wakeup()
	}
	return len(p), nil
}

// Write queues PCM without blocking; returns bytes accepted.
func (o *Output) Write(p []byte) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return 0
	}
	space := maxBuffered - len(o.buf)
	if space <= 0 {
		return 0
	}
	if space > len(p) {
		space = len(p)
	}
	o.buf = append(o.buf, p[:space]...)
	return space
}

// Buffered is the queued byte count not yet read by the device.
func (o *Output) Buffered() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.buf)
}

// Play starts the device pulling (idempotent).
func (o *Output) Play() {
	if !o.player.IsPlaying() {
		o.player.Play()
	}
}

func (o *Output) Pause() {
	o.mu.Lock()
	o.paused = true
	o.mu.Unlock()
}

func (o *Output) Resume() {
	o.mu.Lock()
	o.paused = false
	o.mu.Unlock()
	o.Play()
}

func (o *Output) ClearBuffers() {
	o.mu.Lock()
	o.buf = nil
	o.mu.Unlock()
}

// Uninit releases the queue and suspends output. The device context
// itself stays usable, so a later entry can play again.
func (o *Output) Uninit() {
	o.mu.Lock()
	o.buf = nil
	o.paused = true
	o.mu.Unlock()
}
