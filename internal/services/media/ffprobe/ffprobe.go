// Package ffprobe extracts container metadata (duration, chapters,
// tracks) the demuxer control surface exposes to the play loop.
package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"playercore/internal/domain"
)

type Prober struct {
	binary string
}

func New(binary string) *Prober {
	bin := strings.TrimSpace(binary)
	if bin == "" {
		bin = "ffprobe"
	}
	return &Prober{binary: bin}
}

// Info is the probed metadata the demuxer needs.
type Info struct {
	Duration  float64 // seconds, 0 when unknown
	StartTime float64
	Tracks    []*domain.Track
	Chapters  []domain.Chapter
}

const maxProbeTimeout = 30 * time.Second

func (p *Prober) Probe(ctx context.Context, filePath string) (Info, error) {
	path := strings.TrimSpace(filePath)
	if path == "" {
		return Info{}, errors.New("file path is required")
	}
	return p.runProbe(ctx, []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		"-show_chapters",
		path,
	}, nil)
}

// ProbeReader probes a stream head piped through stdin. Chapters near
// the container tail may be missing; callers treat the result as a hint.
func (p *Prober) ProbeReader(ctx context.Context, reader io.Reader) (Info, error) {
	if reader == nil {
		return Info{}, errors.New("reader is required")
	}
	return p.runProbe(ctx, []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		"-show_chapters",
		"-i", "pipe:0",
	}, reader)
}

func (p *Prober) runProbe(ctx context.Context, args []string, stdin io.Reader) (Info, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, maxProbeTimeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, p.binary, args...)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdin = stdin
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	info, parseErr := parseProbeOutput(stdout.Bytes())
	if parseErr != nil || (runErr != nil && len(info.Tracks) == 0) {
		// ffprobe can exit non-zero for truncated files and still print
		// usable metadata; only fail when nothing was recovered.
		msg := strings.TrimSpace(stderr.String())
		if runErr != nil && msg != "" {
			return Info{}, fmt.Errorf("ffprobe failed: %w: %s", runErr, msg)
		}
		if runErr != nil {
			return Info{}, fmt.Errorf("ffprobe failed: %w", runErr)
		}
		return Info{}, fmt.Errorf("ffprobe output parse failed: %w", parseErr)
	}
	return info, nil
}

// probePayload is the subset of ffprobe JSON output we parse.
type probePayload struct {
	Streams  []probeStream  `json:"streams"`
	Format   probeFormat    `json:"format"`
	Chapters []probeChapter `json:"chapters"`
}

type probeStream struct {
	CodecType string            `json:"codec_type"`
	Tags      map[string]string `json:"tags"`
	Disposition struct {
		Default int `json:"default"`
	} `json:"disposition"`
}

type probeFormat struct {
	Duration  string `json:"duration"`
	StartTime string `json:"start_time"`
}

type probeChapter struct {
	StartTime string            `json:"start_time"`
	Tags      map[string]string `json:"tags"`
}

func parseProbeOutput(data []byte) (Info, error) {
	var payload probePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return Info{}, err
	}

	var info Info
	id := 0
	for _, stream := range payload.Streams {
		var kind domain.TrackKind
		switch stream.CodecType {
		case "video":
			kind = domain.TrackVideo
		case "audio":
			kind = domain.TrackAudio
		case "subtitle":
			kind = domain.TrackSubtitle
		default:
			continue
		}
		info.Tracks = append(info.Tracks, &domain.Track{
			ID:       id,
			Kind:     kind,
			Title:    strings.TrimSpace(getTag(stream.Tags, "title")),
			Language: strings.TrimSpace(getTag(stream.Tags, "language")),
			Selected: stream.Disposition.Default == 1,
		})
		id++
	}

	if payload.Format.Duration != "" {
		if d, err := strconv.ParseFloat(payload.Format.Duration, 64); err == nil && d > 0 {
			info.Duration = d
		}
	}
	if payload.Format.StartTime != "" {
		if st, err := strconv.ParseFloat(payload.Format.StartTime, 64); err == nil && st > 0 {
			info.StartTime = st
		}
	}

	for _, ch := range payload.Chapters {
		start, err := strconv.ParseFloat(ch.StartTime, 64)
		if err != nil {
			continue
		}
		info.Chapters = append(info.Chapters, domain.Chapter{
			Start: domain.PTS(start),
			Title: strings.TrimSpace(getTag(ch.Tags, "title")),
		})
	}

	return info, nil
}

func getTag(tags map[string]string, key string) string {
	if len(tags) == 0 {
		return ""
	}
	if value, ok := tags[key]; ok {
		return value
	}
	if value, ok := tags[strings.ToUpper(key)]; ok {
		return value
	}
	if value, ok := tags[strings.ToLower(key)]; ok {
		return value
	}
	return ""
}
