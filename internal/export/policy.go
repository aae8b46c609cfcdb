package export

import (
	"fmt"

	"tapeshelf/internal/config"
	"tapeshelf/internal/exportpath"
	"tapeshelf/internal/failures"
)

// Policy parametrizes a run.
type Policy struct {
	// Name labels the run in logs and the journal.
	Name string
	// Mode selects raw or final output naming.
	Mode exportpath.Mode
	// RenamedExport enables the synthetic session "1" when parsing.
	RenamedExport bool
	// TolerateMissing skips recordings whose source file is absent instead
	// of stopping the run.
	TolerateMissing bool
	// Workers bounds concurrent session exports.
	Workers int
	// TagOutputs writes ID3 tags from catalog metadata into MP3 outputs.
	TagOutputs bool
}

const (
	// DefaultSegmentWorkers is the pool width for segmentation runs.
	DefaultSegmentWorkers = 10
	// DefaultFinalWorkers is the pool width for final runs.
	DefaultFinalWorkers = 4
	// DefaultBatchSize is the number of recordings decoded per batch.
	DefaultBatchSize = 10
)

// Segmentation slices raw recordings into numbered sessions.
func Segmentation() Policy {
	return Policy{
		Name:            "segments",
		Mode:            exportpath.Raw,
		TolerateMissing: true,
		Workers:         DefaultSegmentWorkers,
	}
}

// Final exports editorially finished sessions under their catalog names.
func Final() Policy {
	return Policy{
		Name:          "final",
		Mode:          exportpath.Final,
		RenamedExport: true,
		Workers:       DefaultFinalWorkers,
		TagOutputs:    true,
	}
}

// ForConfig returns the named policy with pool widths from cfg. Segmentation
// runs also take their missing-source tolerance from cfg.
func ForConfig(cfg *config.Config, name string) (Policy, error) {
	switch name {
	case "segments":
		p := Segmentation()
		p.TolerateMissing = cfg.Export.TolerateMissing
		if cfg.Export.SegmentWorkers > 0 {
			p.Workers = cfg.Export.SegmentWorkers
		}
		return p, nil
	case "final":
		p := Final()
		if cfg.Export.FinalWorkers > 0 {
			p.Workers = cfg.Export.FinalWorkers
		}
		return p, nil
	default:
		return Policy{}, failures.Wrap(failures.ErrConfig, "export", "policy", fmt.Sprintf("unknown policy %q", name), nil)
	}
}
