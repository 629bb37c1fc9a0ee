package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
	"golang.org/x/time/rate"

	apihttp "playercore/internal/api/http"
	"playercore/internal/app"
	"playercore/internal/domain"
	"playercore/internal/domain/ports"
	"playercore/internal/metrics"
	"playercore/internal/player"
	mongorepo "playercore/internal/repository/mongo"
	"playercore/internal/services/input"
	"playercore/internal/services/input/mpris"
	"playercore/internal/services/media/ffprobe"
	"playercore/internal/services/output/nullvo"
	"playercore/internal/services/output/otoaudio"
	"playercore/internal/services/source/torrentsource"
	"playercore/internal/telemetry"
)

func main() {
	cfg := app.LoadConfig()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	metrics.Register(prometheus.DefaultRegisterer)

	shutdownTracer, err := telemetry.Init(context.Background(), "playercore")
	if err != nil {
		logger.Warn("otel init failed", slog.String("error", err.Error()))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	logger.Info("configuration loaded",
		slog.String("service", "playercore"),
		slog.String("httpAddr", cfg.HTTPAddr),
		slog.String("logLevel", cfg.LogLevel),
		slog.String("logFormat", cfg.LogFormat),
		slog.String("dataDir", cfg.DataDir),
		slog.Bool("idleMode", cfg.IdleMode),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(rootCtx, 10*time.Second)
	defer cancel()

	mongoMonitor := otelmongo.NewMonitor()
	mongoClient, err := mongorepo.Connect(ctx, cfg.MongoURI, options.Client().SetMonitor(mongoMonitor))
	if err != nil {
		logger.Error("mongo connect failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := mongoClient.Ping(ctx, readpref.Primary()); err != nil {
		logger.Error("mongo ping failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	resumeRepo := mongorepo.NewResumeRepository(mongoClient, cfg.MongoDatabase)
	settingsRepo := mongorepo.NewPlayerSettingsRepository(mongoClient, cfg.MongoDatabase)
	if err := resumeRepo.EnsureIndexes(ctx); err != nil {
		logger.Warn("mongo ensure indexes failed", slog.String("error", err.Error()))
	}

	opts := playerOptions(cfg)
	if saved, ok, err := settingsRepo.Get(ctx); err != nil {
		logger.Warn("player settings load failed", slog.String("error", err.Error()))
	} else if ok {
		opts.Pause = saved.Pause
		opts.LoopFile = saved.LoopFile
		opts.KeepOpen = keepOpenMode(saved.KeepOpen)
		opts.KeepOpenPause = saved.KeepOpenPause
	}

	// Collaborators built before the core hold the wakeup through an
	// atomic so early device callbacks stay race-free.
	var coreRef atomic.Pointer[player.Player]
	wakeup := func() {
		if c := coreRef.Load(); c != nil {
			c.Wakeup()
		}
	}

	queue := input.NewQueue(wakeup)

	audioOut, err := otoaudio.New(cfg.AudioSampleRate, cfg.AudioChannels, wakeup)
	if err != nil {
		logger.Error("audio output init failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var torrents *torrentsource.Provider
	torrents, err = torrentsource.NewProvider(cfg.DataDir, int64(cfg.TorrentReadaheadMB)<<20, logger)
	if err != nil {
		logger.Warn("torrent provider init failed, magnet playback disabled",
			slog.String("error", err.Error()))
		torrents = nil
	} else {
		defer func() { _ = torrents.Close() }()
	}

	loader := &mediaLoader{
		logger:       logger,
		prober:       ffprobe.New(cfg.FFProbePath),
		torrents:     torrents,
		audioOut:     audioOut,
		wakeup:       wakeup,
		ffmpegPath:   cfg.FFMPEGPath,
		dataDir:      cfg.DataDir,
		demuxBufSize: cfg.DemuxBufferMB << 20,
	}

	core := player.New(opts, player.Deps{
		Logger:      logger,
		Input:       queue,
		AudioOutput: audioOut,
		Loader:      loader,
		VOFactory: func() (ports.VideoOutput, error) {
			return nullvo.New(), nil
		},
	})

	coreRef.Store(core)

	core.SetOnPositionUpdate(func(entry domain.PlaylistEntry, pos, duration float64) {
		// Runs on the loop goroutine; persist off-thread.
		go func() {
			saveCtx, saveCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer saveCancel()
			err := resumeRepo.Upsert(saveCtx, domain.ResumePosition{
				MediaID:  entry.MediaID,
				Title:    entry.Title,
				Position: pos,
				Duration: duration,
			})
			if err != nil {
				logger.Warn("resume save failed", slog.String("error", err.Error()))
			}
		}()
	})
	core.SetResumeLookup(func(entry domain.PlaylistEntry) (float64, bool) {
		lookupCtx, lookupCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer lookupCancel()
		pos, err := resumeRepo.Get(lookupCtx, entry.MediaID)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				logger.Warn("resume lookup failed", slog.String("error", err.Error()))
			}
			return 0, false
		}
		// Near-complete entries restart from the top.
		if pos.Duration > 0 && pos.Position > pos.Duration*0.95 {
			return 0, false
		}
		return pos.Position, pos.Position > 10
	})

	srv := apihttp.NewServer(core, queue,
		apihttp.WithLogger(logger),
		apihttp.WithResumeStore(resumeRepo),
	)
	defer srv.Close()

	// Bridge core events to WebSocket clients. TICK fires on every frame
	// of progress, so it is throttled; everything else passes through.
	tickLimiter := rate.NewLimiter(rate.Every(500*time.Millisecond), 1)
	core.Subscribe(func(event domain.Event, data any) {
		if event == domain.EventTick && !tickLimiter.Allow() {
			return
		}
		srv.PublishEvent(event, core.LoopStatus())
	})

	if cfg.MPRISEnabled {
		if mp, err := mpris.New(queue); err != nil {
			logger.Warn("mpris init failed", slog.String("error", err.Error()))
		} else {
			defer func() { _ = mp.Close() }()
			logger.Info("mpris service registered")
		}
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	// The play loop owns the main goroutine.
	core.Run(rootCtx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown failed", slog.String("error", err.Error()))
	}
	logger.Info("player stopped")
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func playerOptions(cfg app.Config) player.Options {
	opts := player.DefaultOptions()
	opts.Pause = cfg.Pause
	opts.CachePause = cfg.CachePause
	if cfg.CachePauseWait > 0 {
		opts.CachePauseWait = cfg.CachePauseWait
	}
	opts.CachePauseInitial = cfg.CachePauseInitial
	switch cfg.HRSeekMode {
	case "never":
		opts.HRSeek = player.HRSeekNever
	case "always":
		opts.HRSeek = player.HRSeekAlways
	default:
		opts.HRSeek = player.HRSeekAbsolute
	}
	opts.HRSeekDemuxerOffset = cfg.HRSeekOffset
	opts.LoopFile = cfg.LoopFile
	opts.KeepOpen = keepOpenMode(cfg.KeepOpen)
	opts.KeepOpenPause = cfg.KeepOpenPause
	opts.ForceVO = cfg.ForceVO
	opts.IdleMode = cfg.IdleMode
	opts.StepSec = cfg.StepSec
	opts.PlayingMsg = cfg.PlayingMsg
	return opts
}

func keepOpenMode(s string) int {
	switch s {
	case "yes":
		return player.KeepOpenYes
	case "always":
		return player.KeepOpenAlways
	default:
		return player.KeepOpenNo
	}
}
