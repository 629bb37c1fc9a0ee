package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"playercore/internal/domain"
	"playercore/internal/domain/ports"
	"playercore/internal/player"
	"playercore/internal/services/chain/ffmpegaudio"
	"playercore/internal/services/demux"
	"playercore/internal/services/media/ffprobe"
	"playercore/internal/services/output/otoaudio"
	"playercore/internal/services/source/filesource"
	"playercore/internal/services/source/torrentsource"
)

// mediaLoader builds the per-entry collaborators: a source (local file
// or torrent), the demuxer control surface over it, and an ffmpeg audio
// chain feeding the shared output device.
type mediaLoader struct {
	logger   *slog.Logger
	prober   *ffprobe.Prober
	torrents *torrentsource.Provider
	audioOut *otoaudio.Output
	wakeup   func()

	ffmpegPath   string
	dataDir      string
	demuxBufSize int
}

func (l *mediaLoader) Load(ctx context.Context, entry domain.PlaylistEntry) (*player.LoadedMedia, error) {
	id := string(entry.MediaID)

	var (
		src  ports.Source
		info ffprobe.Info
		err  error
	)
	if torrentsource.Handles(id) {
		if l.torrents == nil {
			return nil, fmt.Errorf("torrent playback disabled")
		}
		var ts *torrentsource.Source
		ts, err = l.torrents.Open(ctx, id)
		if err != nil {
			return nil, err
		}
		probe := ts.ProbeReader()
		info, err = l.prober.ProbeReader(ctx, probe)
		_ = probe.Close()
		if err != nil {
			l.logger.Warn("torrent probe failed, playing without metadata",
				slog.String("error", err.Error()))
			info = ffprobe.Info{}
		}
		src = ts
	} else {
		path := id
		if !filepath.IsAbs(path) {
			path = filepath.Join(l.dataDir, path)
		}
		src, err = filesource.Open(path)
		if err != nil {
			return nil, err
		}
		info, err = l.prober.Probe(ctx, path)
		if err != nil {
			_ = src.Close()
			return nil, fmt.Errorf("probe media: %w", err)
		}
	}

	d := demux.New(src, demux.Config{
		Duration: info.Duration,
		Tracks:   info.Tracks,
		Chapters: info.Chapters,
		BufSize:  l.demuxBufSize,
	}, l.logger, l.wakeup)

	var audio ports.AudioChain
	if hasTrack(info.Tracks, domain.TrackAudio) || len(info.Tracks) == 0 {
		audio = ffmpegaudio.New(ffmpegaudio.Config{
			FFmpegPath: l.ffmpegPath,
		}, d, l.audioOut, l.logger, l.wakeup)
	}

	return &player.LoadedMedia{
		Demuxer:    d,
		AudioChain: audio,
		Close:      d.Close,
	}, nil
}

func hasTrack(tracks []*domain.Track, kind domain.TrackKind) bool {
	for _, t := range tracks {
		if t.Kind == kind {
			return true
		}
	}
	return false
}
