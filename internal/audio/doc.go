// Package audio decodes recordings into memory, assembles session tracks from
// timecoded slices, and encodes them back to disk.
//
// Decoding and encoding go through ffmpeg; the in-memory representation is
// interleaved signed 16-bit little-endian PCM so slicing is byte arithmetic.
// Buffers loaded for a batch are shared read-only between export workers.
package audio
