package config

const (
	defaultLogDir             = "~/.local/share/tapeshelf/logs"
	defaultStateDir           = "~/.local/share/tapeshelf/state"
	defaultBatchSize          = 10
	defaultSegmentWorkers     = 10
	defaultFinalWorkers       = 4
	defaultSynchronizedStatus = "Synchronized"
	defaultAACBitrate         = "256k"
	defaultAACQuality         = 2
	defaultMP3Bitrate         = "256k"
	defaultSyncTimeout        = 60
	defaultSyncDownloadDir    = "input"
	defaultSyncOutputPath     = "new_archives.tsv"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLogMaxSizeMB       = 20
	defaultLogMaxBackups      = 5
	defaultLogMaxAgeDays      = 60
	defaultNtfyTimeout        = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Export: Export{
			BatchSize:          defaultBatchSize,
			SegmentWorkers:     defaultSegmentWorkers,
			FinalWorkers:       defaultFinalWorkers,
			TolerateMissing:    true,
			SynchronizedStatus: defaultSynchronizedStatus,
			AACBitrate:         defaultAACBitrate,
			AACQuality:         defaultAACQuality,
			MP3Bitrate:         defaultMP3Bitrate,
		},
		FFmpeg: FFmpeg{
			FFmpegBinary:  "ffmpeg",
			FFprobeBinary: "ffprobe",
		},
		Sync: Sync{
			DownloadDir:    defaultSyncDownloadDir,
			OutputPath:     defaultSyncOutputPath,
			RequestTimeout: defaultSyncTimeout,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
		Journal: Journal{
			Enabled: true,
		},
	}
}
