// Package exportpath computes where a session's exported audio lives.
//
// Resolve is pure: it never touches the filesystem, so the completion check
// and the exporter agree on output locations for identical inputs.
package exportpath
