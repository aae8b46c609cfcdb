package audio

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"tapeshelf/internal/failures"
	"tapeshelf/internal/fileutil"
	"tapeshelf/internal/logging"
)

// Encoder defaults.
const (
	DefaultAACBitrate = "256k"
	DefaultAACQuality = 2
	DefaultMP3Bitrate = "256k"
)

// Writer encodes a buffer to path, choosing the format from its extension.
type Writer interface {
	Write(ctx context.Context, buf *Buffer, path string, tags *Tags) error
}

// FFmpegWriter pipes PCM into ffmpeg. Output is written to "<path>.part" and
// renamed into place, so a path that exists is always a complete file.
type FFmpegWriter struct {
	FFmpeg     string
	AACBitrate string
	AACQuality int
	MP3Bitrate string
	Logger     *slog.Logger
}

// NewWriter builds a writer with the default encoder settings.
func NewWriter(ffmpegBin string, logger *slog.Logger) *FFmpegWriter {
	return &FFmpegWriter{
		FFmpeg:     ffmpegBin,
		AACBitrate: DefaultAACBitrate,
		AACQuality: DefaultAACQuality,
		MP3Bitrate: DefaultMP3Bitrate,
		Logger:     logging.NewComponentLogger(logger, "writer"),
	}
}

// codecArgs returns the encoder and muxer arguments for an output extension.
func (w *FFmpegWriter) codecArgs(ext string) ([]string, error) {
	switch strings.ToLower(ext) {
	case ".wav":
		return []string{"-c:a", "pcm_s16le", "-f", "wav"}, nil
	case ".m4a":
		return []string{"-c:a", "aac", "-b:a", orDefault(w.AACBitrate, DefaultAACBitrate),
			"-q:a", strconv.Itoa(w.aacQuality()), "-f", "ipod"}, nil
	case ".mp3":
		return []string{"-c:a", "libmp3lame", "-b:a", orDefault(w.MP3Bitrate, DefaultMP3Bitrate), "-f", "mp3"}, nil
	case ".flac":
		return []string{"-c:a", "flac", "-f", "flac"}, nil
	case ".ogg":
		return []string{"-c:a", "libvorbis", "-f", "ogg"}, nil
	case ".opus":
		return []string{"-c:a", "libopus", "-f", "opus"}, nil
	default:
		return nil, fmt.Errorf("unsupported output extension %q", ext)
	}
}

// Write encodes buf to path. Tags are applied to MP3 outputs only.
func (w *FFmpegWriter) Write(ctx context.Context, buf *Buffer, path string, tags *Tags) error {
	if buf == nil || buf.SampleRate <= 0 || buf.Channels <= 0 {
		return failures.Wrap(failures.ErrExportWrite, "writer", "encode", path+": empty audio layout", nil)
	}
	codec, err := w.codecArgs(filepath.Ext(path))
	if err != nil {
		return failures.Wrap(failures.ErrExportWrite, "writer", "encode", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return failures.Wrap(failures.ErrExportWrite, "writer", "mkdir", filepath.Dir(path), err)
	}

	tmp := path + fileutil.PartSuffix
	args := []string{
		"-hide_banner", "-nostdin", "-v", "error", "-y",
		"-f", "s16le",
		"-ar", strconv.Itoa(buf.SampleRate),
		"-ac", strconv.Itoa(buf.Channels),
		"-i", "pipe:0",
	}
	args = append(args, codec...)
	args = append(args, tmp)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, orDefault(w.FFmpeg, "ffmpeg"), args...)
	cmd.Stdin = bytes.NewReader(buf.Data)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		_ = os.Remove(tmp)
		return failures.Wrap(failures.ErrExportWrite, "writer", "ffmpeg encode", toolMessage(path, &stderr), err)
	}

	if tags != nil && strings.EqualFold(filepath.Ext(path), ".mp3") {
		if err := WriteID3(tmp, *tags); err != nil {
			_ = os.Remove(tmp)
			return failures.Wrap(failures.ErrExportWrite, "writer", "id3 tags", path, err)
		}
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return failures.Wrap(failures.ErrExportWrite, "writer", "rename", path, err)
	}
	if w.Logger != nil {
		w.Logger.Debug("session audio written",
			logging.String("path", path),
			logging.Int64("duration_ms", buf.DurationMillis()),
		)
	}
	return nil
}

func (w *FFmpegWriter) aacQuality() int {
	if w.AACQuality <= 0 {
		return DefaultAACQuality
	}
	return w.AACQuality
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
