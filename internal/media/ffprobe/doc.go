// Package ffprobe runs ffprobe and decodes the subset of its JSON report used
// to lay out decoded PCM and to measure durations.
package ffprobe
