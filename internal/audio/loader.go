package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"tapeshelf/internal/failures"
	"tapeshelf/internal/fileutil"
	"tapeshelf/internal/logging"
	"tapeshelf/internal/media/ffprobe"
)

// FallbackSuffix is appended to the stem of the PCM copy made for sources
// ffmpeg cannot decode cleanly (legacy ADPCM WAV files, mostly).
const FallbackSuffix = "_pcm16"

// Loader decodes a recording into memory.
type Loader interface {
	Load(ctx context.Context, path string) (*Buffer, error)
}

// FFmpegLoader decodes with ffmpeg after reading the stream layout with ffprobe.
type FFmpegLoader struct {
	FFmpeg  string
	FFprobe string
	Logger  *slog.Logger
}

// NewLoader builds a loader around the given binaries.
func NewLoader(ffmpegBin, ffprobeBin string, logger *slog.Logger) *FFmpegLoader {
	return &FFmpegLoader{
		FFmpeg:  ffmpegBin,
		FFprobe: ffprobeBin,
		Logger:  logging.NewComponentLogger(logger, "loader"),
	}
}

// FallbackPath returns the sibling PCM WAV used when direct decoding fails.
func FallbackPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + FallbackSuffix + ".wav"
}

// Load decodes path. A missing file yields ErrMissingSource. When decoding
// fails, the source is transcoded once to FallbackPath (kept if it already
// exists) and decoded again; a second failure is returned as ErrDecode.
func (l *FFmpegLoader) Load(ctx context.Context, path string) (*Buffer, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, failures.Wrap(failures.ErrMissingSource, "loader", "stat", path, err)
		}
		return nil, failures.Wrap(failures.ErrDecode, "loader", "stat", path, err)
	}
	if info.IsDir() {
		return nil, failures.Wrap(failures.ErrMissingSource, "loader", "stat", path+" is a directory", nil)
	}

	buf, err := l.decode(ctx, path)
	if err == nil {
		return buf, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	fallback := FallbackPath(path)
	logging.WarnWithContext(l.logger(), "direct decode failed; using PCM fallback", "decode_fallback",
		logging.String("source", path),
		logging.String("fallback", fallback),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "legacy ADPCM sources are transcoded once and cached"),
		logging.String(logging.FieldImpact, "a PCM copy is kept next to the source"),
	)
	if err := l.ensureFallback(ctx, path, fallback); err != nil {
		return nil, err
	}
	buf, err = l.decode(ctx, fallback)
	if err != nil {
		return nil, failures.Wrap(failures.ErrDecode, "loader", "decode fallback", fallback, err)
	}
	return buf, nil
}

func (l *FFmpegLoader) decode(ctx context.Context, path string) (*Buffer, error) {
	probe, err := ffprobe.Inspect(ctx, l.ffprobe(), path)
	if err != nil {
		return nil, failures.Wrap(failures.ErrDecode, "loader", "probe", path, err)
	}
	layout, err := probe.AudioLayout()
	if err != nil {
		return nil, failures.Wrap(failures.ErrDecode, "loader", "probe", path, err)
	}
	if n := probe.AudioStreamCount(); n > 1 {
		l.logger().Info("source has several audio streams; decoding the first",
			logging.String("source", path),
			logging.Int("audio_streams", n),
		)
	}

	args := []string{
		"-hide_banner", "-nostdin", "-v", "error",
		"-i", path,
		"-vn",
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(layout.SampleRate),
		"-ac", strconv.Itoa(layout.Channels),
		"pipe:1",
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, l.ffmpeg(), args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, failures.Wrap(failures.ErrDecode, "loader", "ffmpeg decode", toolMessage(path, &stderr), err)
	}

	data := stdout.Bytes()
	frame := layout.Channels * BytesPerSample
	data = data[:len(data)-len(data)%frame]
	l.logger().Debug("recording decoded",
		logging.String("source", path),
		logging.String("codec", layout.Codec),
		logging.Int("sample_rate", layout.SampleRate),
		logging.Int("channels", layout.Channels),
		logging.Int("bytes", len(data)),
	)
	return &Buffer{SampleRate: layout.SampleRate, Channels: layout.Channels, Data: data}, nil
}

func (l *FFmpegLoader) ensureFallback(ctx context.Context, src, dst string) error {
	if info, err := os.Stat(dst); err == nil && info.Mode().IsRegular() {
		return nil
	}
	tmp := dst + fileutil.PartSuffix
	args := []string{
		"-hide_banner", "-nostdin", "-v", "error", "-y",
		"-err_detect", "ignore_err",
		"-i", src,
		"-vn",
		"-acodec", "pcm_s16le",
		"-f", "wav",
		tmp,
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, l.ffmpeg(), args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		_ = os.Remove(tmp)
		return failures.Wrap(failures.ErrDecode, "loader", "transcode fallback", toolMessage(src, &stderr), err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return failures.Wrap(failures.ErrDecode, "loader", "transcode fallback", dst, err)
	}
	return nil
}

func (l *FFmpegLoader) logger() *slog.Logger {
	if l.Logger == nil {
		return logging.NewNop()
	}
	return l.Logger
}

func (l *FFmpegLoader) ffmpeg() string {
	if bin := strings.TrimSpace(l.FFmpeg); bin != "" {
		return bin
	}
	return "ffmpeg"
}

func (l *FFmpegLoader) ffprobe() string {
	if bin := strings.TrimSpace(l.FFprobe); bin != "" {
		return bin
	}
	return "ffprobe"
}

func toolMessage(path string, stderr *bytes.Buffer) string {
	detail := strings.TrimSpace(stderr.String())
	if detail == "" {
		return path
	}
	if len(detail) > 512 {
		detail = detail[len(detail)-512:]
	}
	return fmt.Sprintf("%s: %s", path, detail)
}
