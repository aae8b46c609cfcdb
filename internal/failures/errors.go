package failures

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfig          = errors.New("configuration error")
	ErrParse           = errors.New("catalog parse error")
	ErrMissingSource   = errors.New("missing source")
	ErrDecode          = errors.New("decode failure")
	ErrMissingTimecode = errors.New("missing timecode")
	ErrExportWrite     = errors.New("export write failure")
	ErrExternalTool    = errors.New("external tool error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether err belongs to the fatal class that stops a run.
// A tolerated missing source never reaches the caller as an error, so any
// ErrMissingSource returned from a run is fatal. The CLI maps fatal errors
// to their own exit status.
func IsFatal(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrConfig), errors.Is(err, ErrParse), errors.Is(err, ErrMissingSource):
		return true
	default:
		return false
	}
}

// Kind returns a short label for the marker carried by err, used in reports.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfig):
		return "ConfigError"
	case errors.Is(err, ErrParse):
		return "ParseError"
	case errors.Is(err, ErrMissingSource):
		return "MissingSource"
	case errors.Is(err, ErrDecode):
		return "DecodeFailure"
	case errors.Is(err, ErrMissingTimecode):
		return "MissingTimecode"
	case errors.Is(err, ErrExportWrite):
		return "ExportWriteFailure"
	case errors.Is(err, ErrExternalTool):
		return "ExternalToolError"
	default:
		return "Error"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "failure"
	}
	return strings.Join(parts, ": ")
}
