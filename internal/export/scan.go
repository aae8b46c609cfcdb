package export

import (
	"tapeshelf/internal/catalog"
	"tapeshelf/internal/exportpath"
)

// SessionState is the scan verdict for one session.
type SessionState struct {
	RecordingKey string
	Session      string
	Paths        exportpath.Paths
	Pending      bool
	Err          error
}

// ScanResult sizes the work of a run before any audio is loaded.
type ScanResult struct {
	Recordings      int
	Complete        int
	Pending         []*catalog.Recording
	PendingSessions int
	Sessions        []SessionState
}

// Scan checks every session of every recording. Recordings with no pending
// session are counted as complete and never scheduled. Sessions whose paths
// cannot be resolved count as pending so the batch pass reports them.
func Scan(recordings []*catalog.Recording, outputRoot string, resolver exportpath.Resolver, mode exportpath.Mode) ScanResult {
	result := ScanResult{Recordings: len(recordings)}
	for _, rec := range recordings {
		pending := 0
		for _, s := range rec.Sessions {
			paths, err := resolver.Resolve(rec.Key, s.Label, s.Parts, outputRoot, mode)
			state := SessionState{RecordingKey: rec.Key, Session: s.Label, Paths: paths, Err: err}
			state.Pending = err != nil || NeedsExport(paths)
			if state.Pending {
				pending++
			}
			result.Sessions = append(result.Sessions, state)
		}
		if pending == 0 {
			result.Complete++
			continue
		}
		result.PendingSessions += pending
		result.Pending = append(result.Pending, rec)
	}
	return result
}
