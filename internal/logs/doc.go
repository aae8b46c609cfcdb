// Package logs reads the rotated tapeshelf log file: the last N lines, then
// optionally everything appended afterwards until the context ends.
package logs
