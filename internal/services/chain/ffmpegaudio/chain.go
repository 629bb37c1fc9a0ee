// Package ffmpegaudio decodes the demuxed stream to PCM through an
// ffmpeg child process and feeds the audio output. It implements the
// audio chain status machine the restart barrier synchronizes on:
// none -> ready once the decode buffer is primed, playing after Start,
// draining when the decoder is done, eof when the device ran dry.
package ffmpegaudio

import (
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"sync"

	"playercore/internal/domain"
	"playercore/internal/domain/ports"
)

// Device is the slice of the audio output the chain drives.
type Device interface {
	Write(p []byte) int
	Buffered() int
	Play()
	SampleRate() int
	Channels() int
}

const (
	// primeBytes of decoded PCM before the chain reports ready.
	primeBytes = 1 << 16
	// decodeBufMax bounds the decoded-but-unconsumed PCM queue.
	decodeBufMax = 1 << 21
)

type Config struct {
	FFmpegPath string
	SampleRate int
	Channels   int
}

type Chain struct {
	cfg    Config
	src    io.Reader // demuxer byte stream
	out    Device
	log    *slog.Logger
	wakeup func()

	mu      sync.Mutex
	pcm     []byte
	decEOF  bool
	decErr  error
	proc    *exec.Cmd
	stdin   io.WriteCloser
	gen     int // decoder generation, bumps on restart

	started     bool // Start() was called since the last reset
	needRestart bool
	basePTS     domain.PTS
	consumed    int64 // bytes handed to the device since basePTS
	bytesPerSec float64
}

func New(cfg Config, src io.Reader, out Device, logger *slog.Logger, wakeup func()) *Chain {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = out.SampleRate()
	}
	if cfg.Channels <= 0 {
		cfg.Channels = out.Channels()
	}
	c := &Chain{
		cfg:         cfg,
		src:         src,
		out:         out,
		log:         logger,
		wakeup:      wakeup,
		basePTS:     0,
		bytesPerSec: float64(cfg.SampleRate * cfg.Channels * 2),
		needRestart: true,
	}
	return c
}

// startDecoder spawns ffmpeg and the pump goroutines for one generation.
func (c *Chain) startDecoder() error {
	cmd := exec.Command(c.cfg.FFmpegPath,
		"-v", "quiet",
		"-i", "pipe:0",
		"-vn", "-sn",
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(c.cfg.SampleRate),
		"-ac", strconv.Itoa(c.cfg.Channels),
		"pipe:1",
	)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}

	c.proc = cmd
	c.stdin = stdin
	gen := c.gen

	// Feed the demuxed container into the decoder.
	go func() {
		_, _ = io.Copy(stdin, c.src)
		_ = stdin.Close()
	}()

	// Collect decoded PCM.
	go func() {
		buf := make([]byte, 64*1024)
		for {
			n, err := stdout.Read(buf)
			c.mu.Lock()
			if gen != c.gen {
				c.mu.Unlock()
				return
			}
			if n > 0 && len(c.pcm) < decodeBufMax {
				c.pcm = append(c.pcm, buf[:n]...)
			}
			if err != nil {
				c.decEOF = true
				if err != io.EOF {
					c.decErr = err
				}
			}
			c.mu.Unlock()
			if c.wakeup != nil {
				c.wakeup()
			}
			if err != nil {
				_ = cmd.Wait()
				return
			}
		}
	}()
	return nil
}

func (c *Chain) stopDecoder() {
	c.gen++
	if c.proc != nil && c.proc.Process != nil {
		_ = c.stdin.Close()
		_ = c.proc.Process.Kill()
	}
	c.proc = nil
	c.stdin = nil
	c.pcm = nil
	c.decEOF = false
	c.decErr = nil
}

// Start releases the primed buffer to the device (restart barrier).
func (c *Chain) Start() {
	c.mu.Lock()
	c.started = true
	c.mu.Unlock()
	c.out.Play()
}

// Reset flushes decoder state after a seek; the next Advance restarts
// the decoder at the demuxer's new position.
func (c *Chain) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopDecoder()
	c.started = false
	c.needRestart = true
	c.consumed = 0
}

// Advance runs once per loop tick, never blocking.
func (c *Chain) Advance(ctl ports.ChainControl) (domain.PlaybackStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.needRestart {
		c.needRestart = false
		c.basePTS = 0
		if ctl.SeekBasePTS.Known() {
			c.basePTS = ctl.SeekBasePTS
		}
		c.consumed = 0
		if err := c.startDecoder(); err != nil {
			c.decErr = err
			c.log.Error("audio decoder start failed", slog.String("error", err.Error()))
			return domain.StatusEOF, err
		}
	}
	if c.decErr != nil {
		return domain.StatusEOF, c.decErr
	}

	// During an hr-seek, decoded audio before the target is dropped.
	if ctl.HRSeekActive && ctl.HRSeekPTS.Known() {
		c.dropUntil(ctl.HRSeekPTS)
	}

	if !c.started {
		if len(c.pcm) >= primeBytes || c.decEOF {
			return domain.StatusReady, nil
		}
		return domain.StatusNone, nil
	}

	// Top up the device unless paused.
	if !ctl.Paused && len(c.pcm) > 0 {
		n := c.out.Write(c.pcm)
		c.pcm = c.pcm[n:]
		c.consumed += int64(n)
	}

	if c.decEOF && len(c.pcm) == 0 {
		if c.out.Buffered() > 0 {
			return domain.StatusDraining, nil
		}
		return domain.StatusEOF, nil
	}
	return domain.StatusPlaying, nil
}

// dropUntil discards decoded PCM with timestamps before target.
func (c *Chain) dropUntil(target domain.PTS) {
	pos := c.basePTS + domain.PTS(float64(c.consumed)/c.bytesPerSec)
	if pos >= target {
		return
	}
	deficit := int64(float64(target-pos) * c.bytesPerSec)
	deficit -= deficit % int64(c.cfg.Channels*2) // keep frame alignment
	if deficit > int64(len(c.pcm)) {
		deficit = int64(len(c.pcm))
	}
	c.pcm = c.pcm[deficit:]
	c.consumed += deficit
}

// PlayingPTS is the timestamp of the sample currently audible.
func (c *Chain) PlayingPTS() domain.PTS {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.consumed == 0 && !c.started {
		return domain.NoPTS
	}
	audible := c.consumed - int64(c.out.Buffered())
	if audible < 0 {
		audible = 0
	}
	return c.basePTS + domain.PTS(float64(audible)/c.bytesPerSec)
}

func (c *Chain) Uninit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopDecoder()
}
