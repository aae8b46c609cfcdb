// Package subtitles reads and writes SRT files and realigns edited transcript
// text onto existing cue timings.
package subtitles
