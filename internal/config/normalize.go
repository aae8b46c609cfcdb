package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeExport()
	c.normalizeFFmpeg()
	if err := c.normalizeSync(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeNotifications()
	return nil
}

func (c *Config) normalizePaths() error {
	envFallback(&c.Paths.Catalog, "TAPESHELF_CATALOG")
	envFallback(&c.Paths.AudioRoot, "TAPESHELF_AUDIO_ROOT")
	envFallback(&c.Paths.OutputRoot, "TAPESHELF_OUTPUT_ROOT")
	envFallback(&c.Paths.FinalRoot, "TAPESHELF_FINAL_ROOT")

	var err error
	if c.Paths.Catalog, err = expandPath(strings.TrimSpace(c.Paths.Catalog)); err != nil {
		return fmt.Errorf("paths.catalog: %w", err)
	}
	if c.Paths.AudioRoot, err = expandPath(strings.TrimSpace(c.Paths.AudioRoot)); err != nil {
		return fmt.Errorf("paths.audio_root: %w", err)
	}
	if c.Paths.OutputRoot, err = expandPath(strings.TrimSpace(c.Paths.OutputRoot)); err != nil {
		return fmt.Errorf("paths.output_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.FinalRoot) == "" {
		c.Paths.FinalRoot = c.Paths.OutputRoot
	}
	if c.Paths.FinalRoot, err = expandPath(strings.TrimSpace(c.Paths.FinalRoot)); err != nil {
		return fmt.Errorf("paths.final_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeExport() {
	if c.Export.BatchSize <= 0 {
		c.Export.BatchSize = defaultBatchSize
	}
	if c.Export.SegmentWorkers <= 0 {
		c.Export.SegmentWorkers = defaultSegmentWorkers
	}
	if c.Export.FinalWorkers <= 0 {
		c.Export.FinalWorkers = defaultFinalWorkers
	}
	c.Export.SynchronizedStatus = strings.TrimSpace(c.Export.SynchronizedStatus)
	if c.Export.SynchronizedStatus == "" {
		c.Export.SynchronizedStatus = defaultSynchronizedStatus
	}
	c.Export.AACBitrate = strings.TrimSpace(c.Export.AACBitrate)
	if c.Export.AACBitrate == "" {
		c.Export.AACBitrate = defaultAACBitrate
	}
	c.Export.MP3Bitrate = strings.TrimSpace(c.Export.MP3Bitrate)
	if c.Export.MP3Bitrate == "" {
		c.Export.MP3Bitrate = defaultMP3Bitrate
	}
}

func (c *Config) normalizeFFmpeg() {
	c.FFmpeg.FFmpegBinary = strings.TrimSpace(c.FFmpeg.FFmpegBinary)
	if c.FFmpeg.FFmpegBinary == "" {
		c.FFmpeg.FFmpegBinary = "ffmpeg"
	}
	c.FFmpeg.FFprobeBinary = strings.TrimSpace(c.FFmpeg.FFprobeBinary)
	if c.FFmpeg.FFprobeBinary == "" {
		c.FFmpeg.FFprobeBinary = "ffprobe"
	}
}

func (c *Config) normalizeSync() error {
	envFallback(&c.Sync.SessionsURL, "TAPESHELF_SESSIONS_URL")
	envFallback(&c.Sync.ArchivesURL, "TAPESHELF_ARCHIVES_URL")
	c.Sync.SessionsURL = strings.TrimSpace(c.Sync.SessionsURL)
	c.Sync.ArchivesURL = strings.TrimSpace(c.Sync.ArchivesURL)

	var err error
	if strings.TrimSpace(c.Sync.DownloadDir) == "" {
		c.Sync.DownloadDir = defaultSyncDownloadDir
	}
	if c.Sync.DownloadDir, err = expandPath(c.Sync.DownloadDir); err != nil {
		return fmt.Errorf("sync.download_dir: %w", err)
	}
	if strings.TrimSpace(c.Sync.OutputPath) == "" {
		c.Sync.OutputPath = defaultSyncOutputPath
	}
	if c.Sync.OutputPath, err = expandPath(c.Sync.OutputPath); err != nil {
		return fmt.Errorf("sync.output_path: %w", err)
	}
	if c.Sync.RequestTimeout <= 0 {
		c.Sync.RequestTimeout = defaultSyncTimeout
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = defaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = 0
	}
	if c.Logging.MaxAgeDays < 0 {
		c.Logging.MaxAgeDays = 0
	}
}

func (c *Config) normalizeNotifications() {
	envFallback(&c.Notifications.NtfyTopic, "TAPESHELF_NTFY_TOPIC")
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
}

func envFallback(dst *string, key string) {
	if strings.TrimSpace(*dst) != "" {
		return
	}
	if value, ok := os.LookupEnv(key); ok {
		*dst = strings.TrimSpace(value)
	}
}
