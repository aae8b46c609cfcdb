package export

import (
	"fmt"
	"time"

	"tapeshelf/internal/catalog"
	"tapeshelf/internal/exportpath"
)

// Task is one session scheduled for export.
type Task struct {
	RecordingKey string
	Session      catalog.Session
	Paths        exportpath.Paths
}

func (t Task) String() string {
	return fmt.Sprintf("%s#%s", t.RecordingKey, t.Session.Label)
}

// Status is the result class of a task.
type Status int

const (
	// Exported means at least one output was written.
	Exported Status = iota
	// Skipped means nothing was written and nothing failed.
	Skipped
	// Failed means the task recorded an error.
	Failed
)

func (s Status) String() string {
	switch s {
	case Exported:
		return "exported"
	case Skipped:
		return "skipped"
	default:
		return "error"
	}
}

// Outcome is reported once per task.
type Outcome struct {
	Task     Task
	Status   Status
	Reason   string
	Err      error
	Elapsed  time.Duration
	Finished time.Time
}
