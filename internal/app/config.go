package app

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr      string
	MongoURI      string
	MongoDatabase string
	LogLevel      string
	LogFormat     string

	DataDir    string
	FFMPEGPath string
	FFProbePath string

	AudioSampleRate int
	AudioChannels   int

	// Source tuning.
	TorrentReadaheadMB int
	DemuxBufferMB      int

	// Playback options (env defaults; runtime changes go through
	// commands and the settings store).
	Pause             bool
	CachePause        bool
	CachePauseWait    float64
	CachePauseInitial bool
	HRSeekMode        string // "never", "absolute", "always"
	HRSeekOffset      float64
	LoopFile          int
	KeepOpen          string // "no", "yes", "always"
	KeepOpenPause     bool
	ForceVO           int
	IdleMode          bool
	StepSec           float64
	PlayingMsg        string

	MPRISEnabled bool

	CORSAllowedOrigins []string // loaded but not consulted: the CORS middleware allows any origin
}

func LoadConfig() Config {
	return Config{
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DB", "playercore"),
		LogLevel:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:     strings.ToLower(getEnv("LOG_FORMAT", "text")),

		DataDir:     getEnv("PLAYER_DATA_DIR", "data"),
		FFMPEGPath:  getEnv("FFMPEG_PATH", "ffmpeg"),
		FFProbePath: getEnv("FFPROBE_PATH", "ffprobe"),

		AudioSampleRate: int(getEnvInt64("AUDIO_SAMPLE_RATE", 48000)),
		AudioChannels:   int(getEnvInt64("AUDIO_CHANNELS", 2)),

		TorrentReadaheadMB: int(getEnvInt64("TORRENT_READAHEAD_MB", 16)),
		DemuxBufferMB:      int(getEnvInt64("DEMUX_BUFFER_MB", 8)),

		Pause:             getEnvBool("PLAYER_PAUSE", false),
		CachePause:        getEnvBool("PLAYER_CACHE_PAUSE", true),
		CachePauseWait:    getEnvFloat("PLAYER_CACHE_PAUSE_WAIT", 1.0),
		CachePauseInitial: getEnvBool("PLAYER_CACHE_PAUSE_INITIAL", false),
		HRSeekMode:        strings.ToLower(getEnv("PLAYER_HR_SEEK", "absolute")),
		HRSeekOffset:      getEnvFloat("PLAYER_HR_SEEK_OFFSET", 0),
		LoopFile:          int(getEnvInt64("PLAYER_LOOP_FILE", 0)),
		KeepOpen:          strings.ToLower(getEnv("PLAYER_KEEP_OPEN", "no")),
		KeepOpenPause:     getEnvBool("PLAYER_KEEP_OPEN_PAUSE", true),
		ForceVO:           int(getEnvInt64("PLAYER_FORCE_WINDOW", 0)),
		IdleMode:          getEnvBool("PLAYER_IDLE", true),
		StepSec:           getEnvFloat("PLAYER_SSTEP", 0),
		PlayingMsg:        getEnv("PLAYER_PLAYING_MSG", ""),

		MPRISEnabled: getEnvBool("PLAYER_MPRIS", false),

		CORSAllowedOrigins: parseCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}
}

func parseCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return fallback
	}
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}
